package postgres

import (
	"context"
	"database/sql"

	"supplierapi/internal/model"
	"supplierapi/internal/repository"
)

// MatrixPostgres stores a matrix row plus one assignment row per (activity, area).
type MatrixPostgres struct {
	db *sql.DB
}

func NewMatrixPostgres(db *sql.DB) *MatrixPostgres {
	return &MatrixPostgres{db: db}
}

var _ repository.MatrixRepository = (*MatrixPostgres)(nil)

// Create inserts the matrix and every assignment.
func (r *MatrixPostgres) Create(ctx context.Context, m *model.ResponsibilityMatrix) error {
	const q = `
		INSERT INTO responsibility_matrices (id, supplier_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
	`
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, q, m.ID, m.SupplierID, m.CreatedAt, m.UpdatedAt); err != nil {
			return err
		}
		return writeAssignments(ctx, tx, m)
	})
}

// Update rewrites every assignment and bumps updated_at.
func (r *MatrixPostgres) Update(ctx context.Context, m *model.ResponsibilityMatrix) error {
	const q = `UPDATE responsibility_matrices SET updated_at = $2 WHERE id = $1`
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q, m.ID, m.UpdatedAt)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		return writeAssignments(ctx, tx, m)
	})
}

func writeAssignments(ctx context.Context, tx *sql.Tx, m *model.ResponsibilityMatrix) error {
	args := make([]any, 0, len(model.Activities)*len(model.Areas)*4)
	values := ""
	for _, act := range model.Activities {
		for _, area := range model.Areas {
			if values != "" {
				values += ", "
			}
			values += "(" + placeholders(len(args)+1, 4) + ")"
			args = append(args, m.ID, string(act), string(area), string(m.Get(act, area)))
		}
	}
	q := `INSERT INTO responsibility_assignments (matrix_id, activity, area, value) VALUES ` + values +
		` ON CONFLICT (matrix_id, activity, area) DO UPDATE SET value = EXCLUDED.value`
	_, err := tx.ExecContext(ctx, q, args...)
	return err
}

// FindBySupplier returns sql.ErrNoRows when the supplier has no matrix.
func (r *MatrixPostgres) FindBySupplier(ctx context.Context, supplierID string) (*model.ResponsibilityMatrix, error) {
	const qMatrix = `
		SELECT id, supplier_id, created_at, updated_at
		FROM responsibility_matrices
		WHERE supplier_id = $1
	`
	m := model.NewResponsibilityMatrix(supplierID)
	if err := r.db.QueryRowContext(ctx, qMatrix, supplierID).Scan(
		&m.ID, &m.SupplierID, &m.CreatedAt, &m.UpdatedAt,
	); err != nil {
		return nil, err
	}

	const qAssignments = `
		SELECT activity, area, value
		FROM responsibility_assignments
		WHERE matrix_id = $1
	`
	rows, err := r.db.QueryContext(ctx, qAssignments, m.ID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var act, area, value string
		if err := rows.Scan(&act, &area, &value); err != nil {
			return nil, err
		}
		// rows for activities no longer tracked are ignored
		if model.Activity(act).Valid() && model.Area(area).Valid() {
			m.Set(model.Activity(act), model.Area(area), model.RACI(value))
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return m, nil
}
