package postgres

import (
	"context"
	"database/sql"

	"supplierapi/internal/model"
	"supplierapi/internal/repository"
)

// DomainPostgres reads the domain_values lookup table.
type DomainPostgres struct {
	db *sql.DB
}

func NewDomainPostgres(db *sql.DB) *DomainPostgres {
	return &DomainPostgres{db: db}
}

var _ repository.DomainRepository = (*DomainPostgres)(nil)

const domainColumns = `id, kind, name, pendency_type, risk_level_id`

func scanDomainValue(row rowScanner) (model.DomainValue, error) {
	var v model.DomainValue
	err := row.Scan(&v.ID, &v.Kind, &v.Name, &v.PendencyType, &v.RiskLevelID)
	return v, err
}

func (r *DomainPostgres) ListByKind(ctx context.Context, kind model.DomainKind) ([]model.DomainValue, error) {
	const q = `SELECT ` + domainColumns + ` FROM domain_values WHERE kind = $1 ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.DomainValue, 0)
	for rows.Next() {
		v, err := scanDomainValue(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func (r *DomainPostgres) FindByIDs(ctx context.Context, ids []int) (map[int]model.DomainValue, error) {
	out := make(map[int]model.DomainValue, len(ids))
	if len(ids) == 0 {
		return out, nil
	}
	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	q := `SELECT ` + domainColumns + ` FROM domain_values WHERE id IN (` + placeholders(1, len(ids)) + `)`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		v, err := scanDomainValue(rows)
		if err != nil {
			return nil, err
		}
		out[v.ID] = v
	}
	return out, rows.Err()
}

func (r *DomainPostgres) FindSituation(ctx context.Context, name string, pendency *model.PendencyType) (*model.DomainValue, error) {
	const q = `
		SELECT ` + domainColumns + `
		FROM domain_values
		WHERE kind = $1 AND name = $2 AND pendency_type IS NOT DISTINCT FROM $3
	`
	var pt sql.NullInt64
	if pendency != nil {
		pt = sql.NullInt64{Int64: int64(*pendency), Valid: true}
	}
	v, err := scanDomainValue(r.db.QueryRowContext(ctx, q, string(model.KindSupplierSituation), name, pt))
	if err != nil {
		return nil, err
	}
	return &v, nil
}
