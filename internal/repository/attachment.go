package repository

import (
	"context"

	"supplierapi/internal/model"
)

// AttachmentRepository defines data access for supplier attachments.
type AttachmentRepository interface {
	// Create inserts a new attachment and returns the stored record.
	Create(ctx context.Context, a *model.Attachment) (*model.Attachment, error)

	// Replace atomically swaps the row previousID for a. On error the previous row
	// is untouched.
	Replace(ctx context.Context, previousID string, a *model.Attachment) (*model.Attachment, error)

	// FindByID returns an attachment with its type name.
	FindByID(ctx context.Context, id string) (*model.Attachment, error)

	// FindBySupplierAndType returns sql.ErrNoRows when the supplier has no file of that type.
	FindBySupplierAndType(ctx context.Context, supplierID string, typeID int) (*model.Attachment, error)

	ListBySupplier(ctx context.Context, supplierID string) ([]model.Attachment, error)

	// Delete removes an attachment by ID. It returns nil if the row was deleted or did not exist.
	Delete(ctx context.Context, id string) error
}

// MatrixRepository stores one responsibility matrix per supplier.
type MatrixRepository interface {
	// Create returns ErrDuplicate when the supplier already has a matrix.
	Create(ctx context.Context, m *model.ResponsibilityMatrix) error

	FindBySupplier(ctx context.Context, supplierID string) (*model.ResponsibilityMatrix, error)

	// Update replaces every assignment of the matrix.
	Update(ctx context.Context, m *model.ResponsibilityMatrix) error
}
