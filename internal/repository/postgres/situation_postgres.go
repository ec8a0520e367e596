package postgres

import (
	"context"
	"database/sql"

	"supplierapi/internal/model"
	"supplierapi/internal/repository"
)

// SituationPostgres keeps the supplier_situations history.
type SituationPostgres struct {
	db *sql.DB
}

func NewSituationPostgres(db *sql.DB) *SituationPostgres {
	return &SituationPostgres{db: db}
}

var _ repository.SituationRepository = (*SituationPostgres)(nil)

const situationSelect = `
	SELECT ss.id, ss.situation_id, dv.name, dv.pendency_type, ss.created_at
	FROM supplier_situations ss
	JOIN domain_values dv ON dv.id = ss.situation_id
	WHERE ss.supplier_id = $1
	ORDER BY ss.created_at DESC, ss.id DESC`

func scanSituation(row rowScanner) (model.SituationEntry, error) {
	var e model.SituationEntry
	if err := row.Scan(&e.ID, &e.SituationID, &e.Name, &e.PendencyType, &e.CreatedAt); err != nil {
		return e, err
	}
	if e.PendencyType != nil {
		e.Pendency = e.PendencyType.String()
	}
	return e, nil
}

func (r *SituationPostgres) Current(ctx context.Context, supplierID string) (*model.SituationEntry, error) {
	e, err := scanSituation(r.db.QueryRowContext(ctx, situationSelect+"\n\tLIMIT 1", supplierID))
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (r *SituationPostgres) Append(ctx context.Context, supplierID string, situationID int) error {
	const q = `INSERT INTO supplier_situations (supplier_id, situation_id) VALUES ($1, $2)`
	_, err := r.db.ExecContext(ctx, q, supplierID, situationID)
	return err
}

func (r *SituationPostgres) ListBySupplier(ctx context.Context, supplierID string) ([]model.SituationEntry, error) {
	rows, err := r.db.QueryContext(ctx, situationSelect, supplierID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.SituationEntry, 0)
	for rows.Next() {
		e, err := scanSituation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, e)
	}
	return items, rows.Err()
}
