package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"supplierapi/internal/model"
)

// EvaluationFilter narrows evaluation listings.
type EvaluationFilter struct {
	SupplierID string
	PeriodID   string
}

// EvaluationRepository persists criteria, periods, evaluations and their scores.
type EvaluationRepository interface {
	CreateCriterion(ctx context.Context, c *model.EvaluationCriterion) error
	UpdateCriterion(ctx context.Context, c *model.EvaluationCriterion) error
	FindCriterion(ctx context.Context, id string) (*model.EvaluationCriterion, error)
	ListCriteria(ctx context.Context) ([]model.EvaluationCriterion, error)
	DeleteCriterion(ctx context.Context, id string) error
	// CriterionInUse reports whether any score references the criterion.
	CriterionInUse(ctx context.Context, id string) (bool, error)

	// EnsurePeriod returns the stored period for (year, number), inserting p when absent.
	EnsurePeriod(ctx context.Context, p model.EvaluationPeriod) (*model.EvaluationPeriod, error)
	FindPeriod(ctx context.Context, id string) (*model.EvaluationPeriod, error)
	ListPeriods(ctx context.Context) ([]model.EvaluationPeriod, error)

	// Create returns ErrDuplicate when the supplier was already evaluated in the period.
	Create(ctx context.Context, e *model.SupplierEvaluation) error
	// Update rewrites the header; with replaceScores it also swaps the stored scores
	// for e.CriterionScores, atomically.
	Update(ctx context.Context, e *model.SupplierEvaluation, replaceScores bool) error
	// FindByID returns the evaluation with its scores.
	FindByID(ctx context.Context, id string) (*model.SupplierEvaluation, error)
	// List returns evaluations without scores, newest evaluation date first.
	List(ctx context.Context, f EvaluationFilter) ([]model.SupplierEvaluation, error)
	Delete(ctx context.Context, id string) error

	// AddScores inserts scores and sets the final score atomically; ErrDuplicate when
	// a criterion was already scored.
	AddScores(ctx context.Context, evaluationID string, scores []model.CriterionScore, final decimal.NullDecimal) error
}
