package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"supplierapi/internal/model"
)

type MockAttachmentRepository struct {
	mock.Mock
}

func (m *MockAttachmentRepository) Create(ctx context.Context, a *model.Attachment) (*model.Attachment, error) {
	args := m.Called(ctx, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) Replace(ctx context.Context, previousID string, a *model.Attachment) (*model.Attachment, error) {
	args := m.Called(ctx, previousID, a)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) FindByID(ctx context.Context, id string) (*model.Attachment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) FindBySupplierAndType(ctx context.Context, supplierID string, typeID int) (*model.Attachment, error) {
	args := m.Called(ctx, supplierID, typeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) ListBySupplier(ctx context.Context, supplierID string) ([]model.Attachment, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Attachment), args.Error(1)
}

func (m *MockAttachmentRepository) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMatrixRepository struct {
	mock.Mock
}

func (m *MockMatrixRepository) Create(ctx context.Context, mx *model.ResponsibilityMatrix) error {
	args := m.Called(ctx, mx)
	return args.Error(0)
}

func (m *MockMatrixRepository) FindBySupplier(ctx context.Context, supplierID string) (*model.ResponsibilityMatrix, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ResponsibilityMatrix), args.Error(1)
}

func (m *MockMatrixRepository) Update(ctx context.Context, mx *model.ResponsibilityMatrix) error {
	args := m.Called(ctx, mx)
	return args.Error(0)
}
