package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"supplierapi/internal/model"
	"supplierapi/internal/service"
)

type MockAttachmentService struct {
	mock.Mock
}

func (m *MockAttachmentService) Upload(ctx context.Context, in service.AttachmentUpload) (*model.Attachment, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Attachment), args.Error(1)
}

func (m *MockAttachmentService) ListBySupplier(ctx context.Context, supplierID string) ([]model.Attachment, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Attachment), args.Error(1)
}

func (m *MockAttachmentService) Download(ctx context.Context, id string) (*service.AttachmentDownload, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.AttachmentDownload), args.Error(1)
}

func (m *MockAttachmentService) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

type MockMatrixService struct {
	mock.Mock
}

func (m *MockMatrixService) Create(ctx context.Context, in *service.MatrixInput) (*model.ResponsibilityMatrix, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ResponsibilityMatrix), args.Error(1)
}

func (m *MockMatrixService) Get(ctx context.Context, supplierID string) (*model.ResponsibilityMatrix, error) {
	args := m.Called(ctx, supplierID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ResponsibilityMatrix), args.Error(1)
}

func (m *MockMatrixService) Replace(ctx context.Context, supplierID string, in *service.MatrixInput) (*model.ResponsibilityMatrix, error) {
	args := m.Called(ctx, supplierID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ResponsibilityMatrix), args.Error(1)
}

func (m *MockMatrixService) Patch(ctx context.Context, supplierID string, in *service.MatrixInput) (*model.ResponsibilityMatrix, error) {
	args := m.Called(ctx, supplierID, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ResponsibilityMatrix), args.Error(1)
}

type MockDomainService struct {
	mock.Mock
}

func (m *MockDomainService) List(ctx context.Context, kind model.DomainKind) ([]model.DomainValue, error) {
	args := m.Called(ctx, kind)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DomainValue), args.Error(1)
}

func (m *MockDomainService) AttachmentTypes(ctx context.Context) ([]model.DomainValue, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.DomainValue), args.Error(1)
}
