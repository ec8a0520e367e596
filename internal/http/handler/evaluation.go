package handler

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"supplierapi/internal/repository"
	"supplierapi/internal/service"
	"supplierapi/internal/validation"
)

func ListCriteria(svc service.EvaluationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		criteria, err := svc.ListCriteria(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(nonNil(criteria))
	}
}

func GetCriterion(svc service.EvaluationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cr, err := svc.GetCriterion(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(cr)
	}
}

func CreateCriterion(svc service.EvaluationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CriterionInput
		if err := validation.DecodeJSON(c.Body(), &in); err != nil {
			return respondError(c, err)
		}
		cr, err := svc.CreateCriterion(c.UserContext(), &in)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(cr)
	}
}

func UpdateCriterion(svc service.EvaluationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.CriterionInput
		if err := validation.DecodeJSON(c.Body(), &in); err != nil {
			return respondError(c, err)
		}
		cr, err := svc.UpdateCriterion(c.UserContext(), c.Params("id"), &in)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(cr)
	}
}

func PatchCriterion(svc service.EvaluationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		cr, err := svc.PatchCriterion(c.UserContext(), c.Params("id"), c.Body())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(cr)
	}
}

func DeleteCriterion(svc service.EvaluationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.DeleteCriterion(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

func ListPeriods(svc service.EvaluationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		periods, err := svc.ListPeriods(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(nonNil(periods))
	}
}

// ListEvaluations filters by the supplier and period query parameters.
func ListEvaluations(svc service.EvaluationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		evals, err := svc.List(c.UserContext(), repository.EvaluationFilter{
			SupplierID: strings.TrimSpace(c.Query("supplier")),
			PeriodID:   strings.TrimSpace(c.Query("period")),
		})
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(nonNil(evals))
	}
}

func GetEvaluation(svc service.EvaluationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		d, err := svc.Get(c.UserContext(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(d)
	}
}

// CreateEvaluation defaults the evaluator to the authenticated user, if any.
func CreateEvaluation(svc service.EvaluationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.EvaluationInput
		if err := validation.DecodeJSON(c.Body(), &in); err != nil {
			return respondError(c, err)
		}
		e, err := svc.Create(c.UserContext(), &in, currentUser(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(e)
	}
}

func UpdateEvaluation(svc service.EvaluationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var in service.EvaluationInput
		if err := validation.DecodeJSON(c.Body(), &in); err != nil {
			return respondError(c, err)
		}
		e, err := svc.Update(c.UserContext(), c.Params("id"), &in, currentUser(c))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(e)
	}
}

func DeleteEvaluation(svc service.EvaluationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := svc.Delete(c.UserContext(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// AddScores takes a JSON array of criterion scores.
func AddScores(svc service.EvaluationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var scores []service.ScoreInput
		if err := validation.DecodeJSON(c.Body(), &scores); err != nil {
			return respondError(c, err)
		}
		d, err := svc.AddScores(c.UserContext(), c.Params("id"), scores)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(d)
	}
}

func EvaluationSummary(svc service.EvaluationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		rows, err := svc.Summary(c.UserContext())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(nonNil(rows))
	}
}

func SupplierEvaluationHistory(svc service.EvaluationService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		evals, err := svc.SupplierHistory(c.UserContext(), strings.TrimSpace(c.Query("supplier")))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(nonNil(evals))
	}
}
