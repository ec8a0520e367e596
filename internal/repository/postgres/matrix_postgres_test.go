package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplierapi/internal/model"
	"supplierapi/internal/repository"
)

func TestMatrixPostgres_Create(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMatrixPostgres(db)
	now := time.Now().UTC()
	m := model.NewResponsibilityMatrix("sup-1")
	m.ID = "mx-1"
	m.CreatedAt, m.UpdatedAt = now, now
	m.Set(model.ActivityContractRequest, model.AreaRequesting, model.RACIAccountableResponsible)

	t.Run("success", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO responsibility_matrices").
			WithArgs("mx-1", "sup-1", now, now).
			WillReturnResult(sqlmock.NewResult(0, 1))
		mock.ExpectExec(`INSERT INTO responsibility_assignments (.+) ON CONFLICT`).
			WillReturnResult(sqlmock.NewResult(0, 72))
		mock.ExpectCommit()

		assert.NoError(t, repo.Create(context.Background(), m))
	})

	t.Run("supplier already has a matrix", func(t *testing.T) {
		mock.ExpectBegin()
		mock.ExpectExec("INSERT INTO responsibility_matrices").
			WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "responsibility_matrices_supplier_id_key"})
		mock.ExpectRollback()

		assert.ErrorIs(t, repo.Create(context.Background(), m), repository.ErrDuplicate)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatrixPostgres_FindBySupplier(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMatrixPostgres(db)
	ctx := context.Background()
	now := time.Now()

	t.Run("found", func(t *testing.T) {
		mock.ExpectQuery("FROM responsibility_matrices WHERE supplier_id = ?").
			WithArgs("sup-1").
			WillReturnRows(sqlmock.NewRows([]string{"id", "supplier_id", "created_at", "updated_at"}).
				AddRow("mx-1", "sup-1", now, now))
		mock.ExpectQuery("FROM responsibility_assignments WHERE matrix_id = ?").
			WithArgs("mx-1").
			WillReturnRows(sqlmock.NewRows([]string{"activity", "area", "value"}).
				AddRow("contractRequest", "requestingArea", "A/R").
				AddRow("contractRequest", "legal", "C").
				AddRow("retiredActivity", "legal", "A"))

		m, err := repo.FindBySupplier(ctx, "sup-1")
		require.NoError(t, err)
		assert.Equal(t, "mx-1", m.ID)
		assert.Equal(t, model.RACIAccountableResponsible, m.Get(model.ActivityContractRequest, model.AreaRequesting))
		assert.Equal(t, model.RACIConsulted, m.Get(model.ActivityContractRequest, model.AreaLegal))
		assert.Equal(t, model.RACINone, m.Get(model.ActivityPaymentRelease, model.AreaBoard))
		assert.Len(t, m.Activities, len(model.Activities))
	})

	t.Run("none", func(t *testing.T) {
		mock.ExpectQuery("FROM responsibility_matrices").
			WithArgs("sup-2").
			WillReturnError(sql.ErrNoRows)

		m, err := repo.FindBySupplier(ctx, "sup-2")
		assert.ErrorIs(t, err, sql.ErrNoRows)
		assert.Nil(t, m)
	})

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMatrixPostgres_Update(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := NewMatrixPostgres(db)
	m := model.NewResponsibilityMatrix("sup-1")
	m.ID = "mx-1"

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE responsibility_matrices SET updated_at").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO responsibility_assignments").
		WillReturnResult(sqlmock.NewResult(0, 72))
	mock.ExpectCommit()

	assert.NoError(t, repo.Update(context.Background(), m))
	assert.NoError(t, mock.ExpectationsWereMet())
}
