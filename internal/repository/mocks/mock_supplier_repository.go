package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"supplierapi/internal/model"
	"supplierapi/internal/repository"
)

type MockSupplierRepository struct {
	mock.Mock
}

func (m *MockSupplierRepository) Create(ctx context.Context, s *model.Supplier) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSupplierRepository) Update(ctx context.Context, s *model.Supplier) error {
	args := m.Called(ctx, s)
	return args.Error(0)
}

func (m *MockSupplierRepository) FindByID(ctx context.Context, id string) (*model.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supplier), args.Error(1)
}

func (m *MockSupplierRepository) List(ctx context.Context, f repository.SupplierFilter, pq repository.PageQuery) (*repository.PageResult[model.Supplier], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Supplier]), args.Error(1)
}

func (m *MockSupplierRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSupplierRepository) ExistsByLegalName(ctx context.Context, legalName, excludeID string) (bool, error) {
	args := m.Called(ctx, legalName, excludeID)
	return args.Bool(0), args.Error(1)
}

func (m *MockSupplierRepository) ExistsByTaxID(ctx context.Context, taxID, excludeID string) (bool, error) {
	args := m.Called(ctx, taxID, excludeID)
	return args.Bool(0), args.Error(1)
}

type MockDomainRepository struct {
	mock.Mock
}

func (m *MockDomainRepository) ListByKind(ctx context.Context, kind model.DomainKind) ([]model.DomainValue, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DomainValue), args.Error(1)
}

func (m *MockDomainRepository) FindByIDs(ctx context.Context, ids []int) (map[int]model.DomainValue, error) {
	args := m.Called(ctx, ids)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[int]model.DomainValue), args.Error(1)
}

func (m *MockDomainRepository) FindSituation(ctx context.Context, name string, pendency *model.PendencyType) (*model.DomainValue, error) {
	args := m.Called(ctx, name, pendency)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.DomainValue), args.Error(1)
}

type MockSituationRepository struct {
	mock.Mock
}

func (m *MockSituationRepository) Current(ctx context.Context, supplierID string) (*model.SituationEntry, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SituationEntry), args.Error(1)
}

func (m *MockSituationRepository) Append(ctx context.Context, supplierID string, situationID int) error {
	args := m.Called(ctx, supplierID, situationID)
	return args.Error(0)
}

func (m *MockSituationRepository) ListBySupplier(ctx context.Context, supplierID string) ([]model.SituationEntry, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SituationEntry), args.Error(1)
}
