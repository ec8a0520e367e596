package mocks

import (
	"context"
	"io"

	"github.com/stretchr/testify/mock"

	"supplierapi/internal/cep"
	"supplierapi/internal/model"
	"supplierapi/internal/repository"
	"supplierapi/internal/service"
)

type MockSupplierService struct {
	mock.Mock
}

func (m *MockSupplierService) Create(ctx context.Context, in *service.SupplierInput) (*model.Supplier, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supplier), args.Error(1)
}

func (m *MockSupplierService) Get(ctx context.Context, id string) (*model.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supplier), args.Error(1)
}

func (m *MockSupplierService) Update(ctx context.Context, id string, in *service.SupplierInput) (*model.Supplier, error) {
	args := m.Called(ctx, id, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supplier), args.Error(1)
}

func (m *MockSupplierService) Patch(ctx context.Context, id string, body []byte) (*model.Supplier, error) {
	args := m.Called(ctx, id, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Supplier), args.Error(1)
}

func (m *MockSupplierService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockSupplierService) List(ctx context.Context, f repository.SupplierFilter, p service.Page) (*service.SupplierListResult, error) {
	args := m.Called(ctx, f, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.SupplierListResult), args.Error(1)
}

func (m *MockSupplierService) LookupCEP(ctx context.Context, raw string) (*cep.Address, error) {
	args := m.Called(ctx, raw)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*cep.Address), args.Error(1)
}

func (m *MockSupplierService) Import(ctx context.Context, r io.Reader) (*service.ImportReport, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ImportReport), args.Error(1)
}

func (m *MockSupplierService) Export(ctx context.Context, f repository.SupplierFilter, w io.Writer) error {
	args := m.Called(ctx, f, w)
	return args.Error(0)
}

type MockSituationService struct {
	mock.Mock
}

func (m *MockSituationService) Refresh(ctx context.Context, s *model.Supplier) (*model.SituationEntry, error) {
	args := m.Called(ctx, s)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SituationEntry), args.Error(1)
}

func (m *MockSituationService) History(ctx context.Context, supplierID string) ([]model.SituationEntry, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.SituationEntry), args.Error(1)
}
