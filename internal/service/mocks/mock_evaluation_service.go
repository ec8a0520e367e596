package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"supplierapi/internal/model"
	"supplierapi/internal/repository"
	"supplierapi/internal/service"
)

type MockEvaluationService struct {
	mock.Mock
}

func (m *MockEvaluationService) ListCriteria(ctx context.Context) ([]model.EvaluationCriterion, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EvaluationCriterion), args.Error(1)
}

func (m *MockEvaluationService) GetCriterion(ctx context.Context, id string) (*model.EvaluationCriterion, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EvaluationCriterion), args.Error(1)
}

func (m *MockEvaluationService) CreateCriterion(ctx context.Context, in *service.CriterionInput) (*model.EvaluationCriterion, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EvaluationCriterion), args.Error(1)
}

func (m *MockEvaluationService) UpdateCriterion(ctx context.Context, id string, in *service.CriterionInput) (*model.EvaluationCriterion, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EvaluationCriterion), args.Error(1)
}

func (m *MockEvaluationService) PatchCriterion(ctx context.Context, id string, body []byte) (*model.EvaluationCriterion, error) {
	args := m.Called(ctx, id, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.EvaluationCriterion), args.Error(1)
}

func (m *MockEvaluationService) DeleteCriterion(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEvaluationService) ListPeriods(ctx context.Context) ([]model.EvaluationPeriod, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.EvaluationPeriod), args.Error(1)
}

func (m *MockEvaluationService) List(ctx context.Context, f repository.EvaluationFilter) ([]model.SupplierEvaluation, error) {
	args := m.Called(ctx, f)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SupplierEvaluation), args.Error(1)
}

func (m *MockEvaluationService) Get(ctx context.Context, id string) (*service.EvaluationDetail, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EvaluationDetail), args.Error(1)
}

func (m *MockEvaluationService) Create(ctx context.Context, in *service.EvaluationInput, by *model.User) (*model.SupplierEvaluation, error) {
	args := m.Called(ctx, in, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SupplierEvaluation), args.Error(1)
}

func (m *MockEvaluationService) Update(ctx context.Context, id string, in *service.EvaluationInput, by *model.User) (*model.SupplierEvaluation, error) {
	args := m.Called(ctx, id, in, by)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SupplierEvaluation), args.Error(1)
}

func (m *MockEvaluationService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockEvaluationService) AddScores(ctx context.Context, id string, scores []service.ScoreInput) (*service.EvaluationDetail, error) {
	args := m.Called(ctx, id, scores)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.EvaluationDetail), args.Error(1)
}

func (m *MockEvaluationService) Summary(ctx context.Context) ([]service.EvaluationSummary, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.EvaluationSummary), args.Error(1)
}

func (m *MockEvaluationService) SupplierHistory(ctx context.Context, supplierID string) ([]model.SupplierEvaluation, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SupplierEvaluation), args.Error(1)
}
