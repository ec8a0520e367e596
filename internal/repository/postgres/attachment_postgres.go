package postgres

import (
	"context"
	"database/sql"

	"supplierapi/internal/model"
	"supplierapi/internal/repository"
)

// AttachmentPostgres is a PostgreSQL implementation of repository.AttachmentRepository.
type AttachmentPostgres struct {
	db *sql.DB
}

// NewAttachmentPostgres creates a new AttachmentPostgres repository.
func NewAttachmentPostgres(db *sql.DB) *AttachmentPostgres {
	return &AttachmentPostgres{db: db}
}

var _ repository.AttachmentRepository = (*AttachmentPostgres)(nil)

const attachmentSelect = `
	SELECT a.id, a.supplier_id, a.attachment_type_id, dv.name, a.file_name, a.storage_path,
		a.size, a.content_type, a.description, a.created_at
	FROM attachments a
	JOIN domain_values dv ON dv.id = a.attachment_type_id`

func scanAttachment(row rowScanner) (*model.Attachment, error) {
	var a model.Attachment
	if err := row.Scan(
		&a.ID,
		&a.SupplierID,
		&a.AttachmentTypeID,
		&a.AttachmentTypeName,
		&a.FileName,
		&a.StoragePath,
		&a.Size,
		&a.ContentType,
		&a.Description,
		&a.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &a, nil
}

// Create inserts a new attachment row and returns the stored record.
func (r *AttachmentPostgres) Create(ctx context.Context, a *model.Attachment) (*model.Attachment, error) {
	out, err := insertAttachment(ctx, r.db, a)
	if err != nil {
		return nil, mapError(err)
	}
	return out, nil
}

// Replace deletes the previous row and inserts a in one transaction, so a failed
// insert leaves the previous attachment in place.
func (r *AttachmentPostgres) Replace(ctx context.Context, previousID string, a *model.Attachment) (*model.Attachment, error) {
	var out *model.Attachment
	err := withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, previousID); err != nil {
			return err
		}
		var err error
		out, err = insertAttachment(ctx, tx, a)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

type rowQuerier interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func insertAttachment(ctx context.Context, q rowQuerier, a *model.Attachment) (*model.Attachment, error) {
	const stmt = `
		INSERT INTO attachments (id, supplier_id, attachment_type_id, file_name, storage_path,
			size, content_type, description, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, supplier_id, attachment_type_id,
			(SELECT name FROM domain_values WHERE id = $3), file_name, storage_path,
			size, content_type, description, created_at
	`
	return scanAttachment(q.QueryRowContext(ctx, stmt,
		a.ID,
		a.SupplierID,
		a.AttachmentTypeID,
		a.FileName,
		a.StoragePath,
		a.Size,
		a.ContentType,
		a.Description,
		a.CreatedAt,
	))
}

// FindByID fetches a single attachment by its ID.
func (r *AttachmentPostgres) FindByID(ctx context.Context, id string) (*model.Attachment, error) {
	return scanAttachment(r.db.QueryRowContext(ctx, attachmentSelect+"\n\tWHERE a.id = $1", id))
}

func (r *AttachmentPostgres) FindBySupplierAndType(ctx context.Context, supplierID string, typeID int) (*model.Attachment, error) {
	q := attachmentSelect + "\n\tWHERE a.supplier_id = $1 AND a.attachment_type_id = $2"
	return scanAttachment(r.db.QueryRowContext(ctx, q, supplierID, typeID))
}

// ListBySupplier returns the supplier's attachments, newest first.
func (r *AttachmentPostgres) ListBySupplier(ctx context.Context, supplierID string) ([]model.Attachment, error) {
	q := attachmentSelect + "\n\tWHERE a.supplier_id = $1\n\tORDER BY a.created_at DESC, a.id DESC"
	rows, err := r.db.QueryContext(ctx, q, supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Attachment, 0)
	for rows.Next() {
		a, err := scanAttachment(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return items, nil
}

// Delete removes an attachment by ID. It does not return an error if the row does not exist.
func (r *AttachmentPostgres) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM attachments WHERE id = $1`, id)
	return err
}
