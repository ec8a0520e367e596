package handler

import (
	"github.com/gofiber/fiber/v2"

	"supplierapi/internal/service"
	"supplierapi/internal/validation"
)

func CreateMatrix(svc service.MatrixService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.MatrixInput
		if err := validation.DecodeJSON(c.Body(), &in); err != nil {
			return respondError(c, err)
		}
		m, err := svc.Create(c.UserContext(), &in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(m)
	}
}

func GetMatrix(svc service.MatrixService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		m, err := svc.Get(c.UserContext(), c.Params("supplierId"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(m)
	}
}

// UpdateMatrix serves PUT (replace) and PATCH (merge) on the same route.
func UpdateMatrix(svc service.MatrixService, replace bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.MatrixInput
		if err := validation.DecodeJSON(c.Body(), &in); err != nil {
			return respondError(c, err)
		}
		update := svc.Patch
		if replace {
			update = svc.Replace
		}
		m, err := update(c.UserContext(), c.Params("supplierId"), &in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(m)
	}
}

// MatrixNotAllowed answers matrix deletion and listing with 405.
func MatrixNotAllowed(message string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return respondError(c, &service.Error{Kind: service.ErrMethodNotAllowed, Message: message})
	}
}
