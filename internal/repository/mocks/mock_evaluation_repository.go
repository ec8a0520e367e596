package mocks

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"

	"supplierapi/internal/model"
	"supplierapi/internal/repository"
)

type MockEvaluationRepository struct {
	mock.Mock
}

func (m *MockEvaluationRepository) CreateCriterion(ctx context.Context, c *model.EvaluationCriterion) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockEvaluationRepository) UpdateCriterion(ctx context.Context, c *model.EvaluationCriterion) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockEvaluationRepository) FindCriterion(ctx context.Context, id string) (*model.EvaluationCriterion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EvaluationCriterion), args.Error(1)
}

func (m *MockEvaluationRepository) ListCriteria(ctx context.Context) ([]model.EvaluationCriterion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EvaluationCriterion), args.Error(1)
}

func (m *MockEvaluationRepository) DeleteCriterion(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEvaluationRepository) CriterionInUse(ctx context.Context, id string) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockEvaluationRepository) EnsurePeriod(ctx context.Context, p model.EvaluationPeriod) (*model.EvaluationPeriod, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EvaluationPeriod), args.Error(1)
}

func (m *MockEvaluationRepository) FindPeriod(ctx context.Context, id string) (*model.EvaluationPeriod, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EvaluationPeriod), args.Error(1)
}

func (m *MockEvaluationRepository) ListPeriods(ctx context.Context) ([]model.EvaluationPeriod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EvaluationPeriod), args.Error(1)
}

func (m *MockEvaluationRepository) Create(ctx context.Context, e *model.SupplierEvaluation) error {
	args := m.Called(ctx, e)
	return args.Error(0)
}

func (m *MockEvaluationRepository) Update(ctx context.Context, e *model.SupplierEvaluation, replaceScores bool) error {
	args := m.Called(ctx, e, replaceScores)
	return args.Error(0)
}

func (m *MockEvaluationRepository) FindByID(ctx context.Context, id string) (*model.SupplierEvaluation, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SupplierEvaluation), args.Error(1)
}

func (m *MockEvaluationRepository) List(ctx context.Context, f repository.EvaluationFilter) ([]model.SupplierEvaluation, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SupplierEvaluation), args.Error(1)
}

func (m *MockEvaluationRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEvaluationRepository) AddScores(ctx context.Context, evaluationID string, scores []model.CriterionScore, final decimal.NullDecimal) error {
	args := m.Called(ctx, evaluationID, scores, final)
	return args.Error(0)
}
