package handler

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"

	"supplierapi/internal/brdoc"
	"supplierapi/internal/http/middleware"
	"supplierapi/internal/model"
	"supplierapi/internal/repository"
	"supplierapi/internal/service"
	"supplierapi/internal/validation"
)

// listResponse is the paginated envelope of list endpoints.
type listResponse[T any] struct {
	Count    int     `json:"count"`
	Next     *string `json:"next"`
	Previous *string `json:"previous"`
	Results  []T     `json:"results"`
}

func newListResponse[T any](c *fiber.Ctx, items []T, total int, p service.Page) listResponse[T] {
	if items == nil {
		items = []T{}
	}
	res := listResponse[T]{Count: total, Results: items}
	if p.Number*p.Size < total {
		res.Next = pageLink(c, p.Number+1)
	}
	if p.Number > 1 {
		res.Previous = pageLink(c, p.Number-1)
	}
	return res
}

// pageLink rebuilds the request URL with another page number. The first page is
// linked without a page parameter.
func pageLink(c *fiber.Ctx, page int) *string {
	args := fasthttp.AcquireArgs()
	defer fasthttp.ReleaseArgs(args)
	c.Context().QueryArgs().CopyTo(args)
	if page <= 1 {
		args.Del("page")
	} else {
		args.SetUint("page", page)
	}

	u := c.BaseURL() + c.Path()
	if qs := args.QueryString(); len(qs) > 0 {
		u += "?" + string(qs)
	}
	return &u
}

// queryInt parses an optional integer query parameter, recording a field error
// when it is present but malformed.
func queryInt(c *fiber.Ctx, key string, verr *validation.Error) *int {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		verr.Add(key, msgIntegerInvalid)
		return nil
	}
	return &n
}

func parsePage(c *fiber.Ctx, verr *validation.Error) service.Page {
	var p service.Page
	if n := queryInt(c, "page", verr); n != nil {
		p.Number = *n
	}
	if n := queryInt(c, "size", verr); n != nil {
		p.Size = *n
	}
	return p.Normalize()
}

// supplierFilter reads search, name, cnpj, risk and status. status accepts a comma
// separated list of situation ids.
func supplierFilter(c *fiber.Ctx, verr *validation.Error) repository.SupplierFilter {
	f := repository.SupplierFilter{
		Search:      strings.TrimSpace(c.Query("search")),
		LegalName:   strings.TrimSpace(c.Query("name")),
		TaxID:       brdoc.OnlyDigits(c.Query("cnpj")),
		RiskLevelID: queryInt(c, "risk", verr),
	}
	for _, part := range strings.Split(c.Query("status"), ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			if !verr.Has("status") {
				verr.Add("status", msgIntegerInvalid)
			}
			continue
		}
		f.StatusIDs = append(f.StatusIDs, id)
	}
	return f
}

func currentUser(c *fiber.Ctx) *model.User {
	return middleware.UserFromCtx(c)
}
