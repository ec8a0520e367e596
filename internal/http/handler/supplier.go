package handler

import (
	"bytes"
	"mime"

	"github.com/gofiber/fiber/v2"

	"supplierapi/internal/service"
	"supplierapi/internal/validation"
)

const (
	xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	exportFileName  = "fornecedores.xlsx"
)

func CreateSupplier(svc service.SupplierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.SupplierInput
		if err := validation.DecodeJSON(c.Body(), &in); err != nil {
			return respondError(c, err)
		}
		sup, err := svc.Create(c.UserContext(), &in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(sup)
	}
}

func GetSupplier(svc service.SupplierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sup, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sup)
	}
}

func UpdateSupplier(svc service.SupplierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.SupplierInput
		if err := validation.DecodeJSON(c.Body(), &in); err != nil {
			return respondError(c, err)
		}
		sup, err := svc.Update(c.UserContext(), c.Params("id"), &in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sup)
	}
}

// PatchSupplier hands the raw body to the service so that only the keys present
// in it are applied.
func PatchSupplier(svc service.SupplierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		sup, err := svc.Patch(c.UserContext(), c.Params("id"), c.Body())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(sup)
	}
}

func DeleteSupplier(svc service.SupplierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// ListSuppliers serves one page of suppliers filtered by search, name, cnpj, risk
// and status.
func ListSuppliers(svc service.SupplierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		verr := &validation.Error{}
		page := parsePage(c, verr)
		filter := supplierFilter(c, verr)
		if err := verr.OrNil(); err != nil {
			return respondError(c, err)
		}

		res, err := svc.List(c.UserContext(), filter, page)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(newListResponse(c, res.Items, res.Total, res.Page))
	}
}

// ImportSuppliers reads the "file" part of a multipart request as an .xlsx workbook.
func ImportSuppliers(svc service.SupplierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fh, err := c.FormFile("file")
		if err != nil {
			return respondError(c, validation.NewError("file", service.MsgFileRequired))
		}
		f, err := fh.Open()
		if err != nil {
			return respondError(c, err)
		}
		defer f.Close()

		report, err := svc.Import(c.UserContext(), f)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(report)
	}
}

// ExportSuppliers renders the whole filtered list into a workbook before sending
// it, so a failure halfway still produces a JSON error.
func ExportSuppliers(svc service.SupplierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		verr := &validation.Error{}
		filter := supplierFilter(c, verr)
		if err := verr.OrNil(); err != nil {
			return respondError(c, err)
		}

		var buf bytes.Buffer
		if err := svc.Export(c.UserContext(), filter, &buf); err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, xlsxContentType)
		c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": exportFileName}))
		return c.Send(buf.Bytes())
	}
}

func LookupCEP(svc service.SupplierService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		addr, err := svc.LookupCEP(c.UserContext(), c.Params("cep"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(addr)
	}
}

func ListSupplierSituations(svc service.SituationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		entries, err := svc.History(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(nonNil(entries))
	}
}
