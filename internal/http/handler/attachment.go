package handler

import (
	"mime"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"supplierapi/internal/model"
	"supplierapi/internal/service"
	"supplierapi/internal/validation"
)

// attachmentListItem is the listing view of an attachment.
type attachmentListItem struct {
	ID                 string    `json:"id"`
	AttachmentTypeName string    `json:"attachmentTypeName"`
	FileName           string    `json:"fileName"`
	Description        string    `json:"description"`
	CreatedAt          time.Time `json:"createdAt"`
}

// UploadAttachment accepts multipart fields supplier, attachmentType, description
// and file. A missing file is reported by the service together with the other
// field errors.
func UploadAttachment(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		in := service.AttachmentUpload{
			SupplierID:  strings.TrimSpace(c.FormValue("supplier")),
			Description: c.FormValue("description"),
		}

		raw := strings.TrimSpace(c.FormValue("attachmentType"))
		switch typeID, err := strconv.Atoi(raw); {
		case raw == "":
			return respondError(c, validation.NewError("attachmentType", msgFieldRequired))
		case err != nil:
			return respondError(c, validation.NewError("attachmentType", msgIntegerInvalid))
		default:
			in.AttachmentTypeID = typeID
		}

		if fh, err := c.FormFile("file"); err == nil {
			f, err := fh.Open()
			if err != nil {
				return respondError(c, err)
			}
			defer f.Close()
			in.Content = f
			in.FileName = fh.Filename
			in.Size = fh.Size
			// Multipart writers default to octet-stream; let the service guess instead.
			if ct := fh.Header.Get(fiber.HeaderContentType); ct != fiber.MIMEOctetStream {
				in.ContentType = ct
			}
		}

		a, err := svc.Upload(c.UserContext(), in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(a)
	}
}

func ListAttachments(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		items, err := svc.ListBySupplier(c.UserContext(), c.Params("supplierId"))
		if err != nil {
			return respondError(c, err)
		}
		out := make([]attachmentListItem, 0, len(items))
		for _, a := range items {
			out = append(out, attachmentListItem{
				ID:                 a.ID,
				AttachmentTypeName: a.AttachmentTypeName,
				FileName:           a.FileName,
				Description:        a.Description,
				CreatedAt:          a.CreatedAt,
			})
		}
		return c.JSON(out)
	}
}

// DownloadAttachment streams the stored object. The body stream is closed by
// fasthttp once it has been written.
func DownloadAttachment(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.Download(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		c.Set(fiber.HeaderContentType, d.ContentType)
		c.Set(fiber.HeaderContentDisposition, mime.FormatMediaType("attachment", map[string]string{"filename": d.FileName}))

		size := -1
		if d.Size > 0 {
			size = int(d.Size)
		}
		return c.SendStream(d.Content, size)
	}
}

func DeleteAttachment(svc service.AttachmentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func ListAttachmentTypes(svc service.DomainService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		types, err := svc.AttachmentTypes(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(nonNil(types))
	}
}

func ListDomain(svc service.DomainService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		values, err := svc.List(c.UserContext(), model.DomainKind(c.Params("kind")))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(nonNil(values))
	}
}

// nonNil makes empty lists encode as [] rather than null.
func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
