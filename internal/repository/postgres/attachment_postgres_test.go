package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"

	"supplierapi/internal/model"
	"supplierapi/internal/repository"
)

var attachmentCols = []string{
	"id", "supplier_id", "attachment_type_id", "name", "file_name", "storage_path",
	"size", "content_type", "description", "created_at",
}

func TestAttachmentPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAttachmentPostgres(db)
	ctx := context.Background()

	now := time.Now().UTC()
	a := &model.Attachment{
		ID:               "att-1",
		SupplierID:       "sup-1",
		AttachmentTypeID: 40,
		FileName:         "contrato.pdf",
		StoragePath:      "supplier_files/sup-1/abc.pdf",
		Size:             2048,
		ContentType:      "application/pdf",
		Description:      "assinado",
		CreatedAt:        now,
	}

	t.Run("success", func(t *testing.T) {
		rows := sqlmock.NewRows(attachmentCols).
			AddRow(a.ID, a.SupplierID, a.AttachmentTypeID, "Contrato Social", a.FileName, a.StoragePath,
				a.Size, a.ContentType, a.Description, a.CreatedAt)

		mock.ExpectQuery("INSERT INTO attachments").
			WithArgs(a.ID, a.SupplierID, a.AttachmentTypeID, a.FileName, a.StoragePath, a.Size, a.ContentType, a.Description, a.CreatedAt).
			WillReturnRows(rows)

		result, err := repo.Create(ctx, a)

		assert.NoError(t, err)
		assert.Equal(t, "att-1", result.ID)
		assert.Equal(t, "Contrato Social", result.AttachmentTypeName)
	})

	t.Run("duplicate type", func(t *testing.T) {
		mock.ExpectQuery("INSERT INTO attachments").
			WillReturnError(&pgconn.PgError{Code: "23505"})

		result, err := repo.Create(ctx, a)

		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.Nil(t, result)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachmentPostgres_Replace(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAttachmentPostgres(db)
	ctx := context.Background()
	a := &model.Attachment{
		ID:               "att-2",
		SupplierID:       "sup-1",
		AttachmentTypeID: 40,
		FileName:         "contrato-v2.pdf",
		StoragePath:      "supplier_files/sup-1/def.pdf",
		Size:             4096,
		ContentType:      "application/pdf",
		CreatedAt:        time.Now().UTC(),
	}

	t.Run("swaps the rows in one transaction", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM attachments WHERE id = ").
			WithArgs("att-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO attachments").
			WithArgs(a.ID, a.SupplierID, a.AttachmentTypeID, a.FileName, a.StoragePath, a.Size, a.ContentType, a.Description, a.CreatedAt).
			WillReturnRows(sqlmock.NewRows(attachmentCols).
				AddRow(a.ID, a.SupplierID, a.AttachmentTypeID, "Contrato Social", a.FileName, a.StoragePath,
					a.Size, a.ContentType, a.Description, a.CreatedAt))
		mock.ExpectCommit()

		result, err := repo.Replace(ctx, "att-1", a)

		assert.NoError(t, err)
		assert.Equal(t, "att-2", result.ID)
	})

	t.Run("failed insert rolls back the delete", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("DELETE FROM attachments WHERE id = ").
			WithArgs("att-1").
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectQuery("INSERT INTO attachments").
			WillReturnError(&pgconn.PgError{Code: "23505"})
		mock.ExpectRollback()

		result, err := repo.Replace(ctx, "att-1", a)

		assert.ErrorIs(t, err, repository.ErrDuplicate)
		assert.Nil(t, result)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachmentPostgres_Find(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAttachmentPostgres(db)
	ctx := context.Background()

	t.Run("by id", func(t *testing.T) {
		mock.ExpectQuery("SELECT (.+) FROM attachments a (.+) WHERE a.id = ?").
			WithArgs("att-1").
			WillReturnRows(sqlmock.NewRows(attachmentCols).
				AddRow("att-1", "sup-1", 40, "Contrato Social", "c.pdf", "p/c.pdf", 10, "application/pdf", "", time.Now()))

		a, err := repo.FindByID(ctx, "att-1")

		assert.NoError(t, err)
		assert.Equal(t, "p/c.pdf", a.StoragePath)
	})

	t.Run("by supplier and type not found", func(t *testing.T) {
		mock.ExpectQuery("WHERE a.supplier_id = (.+) AND a.attachment_type_id = ").
			WithArgs("sup-1", 41).
			WillReturnError(sql.ErrNoRows)

		a, err := repo.FindBySupplierAndType(ctx, "sup-1", 41)

		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, a)
	})

	t.Run("list", func(t *testing.T) {
		mock.ExpectQuery("WHERE a.supplier_id = (.+) ORDER BY a.created_at DESC").
			WithArgs("sup-1").
			WillReturnRows(sqlmock.NewRows(attachmentCols).
				AddRow("att-1", "sup-1", 40, "Contrato Social", "c.pdf", "p/c.pdf", 10, "application/pdf", "", time.Now()).
				AddRow("att-2", "sup-1", 41, "Cartão CNPJ", "d.pdf", "p/d.pdf", 20, "application/pdf", "", time.Now()))

		items, err := repo.ListBySupplier(ctx, "sup-1")

		assert.NoError(t, err)
		assert.Len(t, items, 2)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttachmentPostgres_Delete(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("an error '%s' was not expected when opening a stub database connection", err)
	}
	defer db.Close()

	repo := NewAttachmentPostgres(db)

	mock.ExpectExec("DELETE FROM attachments WHERE id = ?").
		WithArgs("att-1").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.NoError(t, repo.Delete(context.Background(), "att-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}
