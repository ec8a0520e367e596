package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"supplierapi/internal/model"
	"supplierapi/internal/repository"
)

// EvaluationPostgres is a PostgreSQL implementation of repository.EvaluationRepository.
type EvaluationPostgres struct {
	db *sql.DB
}

func NewEvaluationPostgres(db *sql.DB) *EvaluationPostgres {
	return &EvaluationPostgres{db: db}
}

var _ repository.EvaluationRepository = (*EvaluationPostgres)(nil)

// criteria

const criterionColumns = `id, name, description, weight, sort_order, created_at, updated_at`

func scanCriterion(row rowScanner) (*model.EvaluationCriterion, error) {
	var c model.EvaluationCriterion
	if err := row.Scan(&c.ID, &c.Name, &c.Description, &c.Weight, &c.Order, &c.CreatedAt, &c.UpdatedAt); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *EvaluationPostgres) CreateCriterion(ctx context.Context, c *model.EvaluationCriterion) error {
	const q = `
		INSERT INTO evaluation_criteria (` + criterionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.Description, c.Weight, c.Order, c.CreatedAt, c.UpdatedAt)
	return mapError(err)
}

func (r *EvaluationPostgres) UpdateCriterion(ctx context.Context, c *model.EvaluationCriterion) error {
	const q = `
		UPDATE evaluation_criteria
		SET name = $2, description = $3, weight = $4, sort_order = $5, updated_at = $6
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, c.ID, c.Name, c.Description, c.Weight, c.Order, c.UpdatedAt)
	if err != nil {
		return mapError(err)
	}
	return requireAffected(res)
}

func (r *EvaluationPostgres) FindCriterion(ctx context.Context, id string) (*model.EvaluationCriterion, error) {
	const q = `SELECT ` + criterionColumns + ` FROM evaluation_criteria WHERE id = $1`
	return scanCriterion(r.db.QueryRowContext(ctx, q, id))
}

// ListCriteria returns criteria by display order, then name.
func (r *EvaluationPostgres) ListCriteria(ctx context.Context) ([]model.EvaluationCriterion, error) {
	const q = `SELECT ` + criterionColumns + ` FROM evaluation_criteria ORDER BY sort_order, name`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.EvaluationCriterion, 0)
	for rows.Next() {
		c, err := scanCriterion(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *c)
	}
	return items, rows.Err()
}

func (r *EvaluationPostgres) DeleteCriterion(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM evaluation_criteria WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *EvaluationPostgres) CriterionInUse(ctx context.Context, id string) (bool, error) {
	var used bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM criterion_scores WHERE criterion_id = $1)`, id,
	).Scan(&used)
	return used, err
}

// periods

const periodColumns = `id, year, period_number, name, start_date, end_date`

func scanPeriod(row rowScanner) (*model.EvaluationPeriod, error) {
	var p model.EvaluationPeriod
	if err := row.Scan(&p.ID, &p.Year, &p.PeriodNumber, &p.Name, &p.StartDate, &p.EndDate); err != nil {
		return nil, err
	}
	return &p, nil
}

// EnsurePeriod inserts p unless (year, period_number) exists, then returns the stored row.
func (r *EvaluationPostgres) EnsurePeriod(ctx context.Context, p model.EvaluationPeriod) (*model.EvaluationPeriod, error) {
	const qInsert = `
		INSERT INTO evaluation_periods (year, period_number, name, start_date, end_date)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (year, period_number) DO NOTHING
	`
	if _, err := r.db.ExecContext(ctx, qInsert, p.Year, p.PeriodNumber, p.Name, p.StartDate, p.EndDate); err != nil {
		return nil, err
	}
	const q = `SELECT ` + periodColumns + ` FROM evaluation_periods WHERE year = $1 AND period_number = $2`
	return scanPeriod(r.db.QueryRowContext(ctx, q, p.Year, p.PeriodNumber))
}

func (r *EvaluationPostgres) FindPeriod(ctx context.Context, id string) (*model.EvaluationPeriod, error) {
	const q = `SELECT ` + periodColumns + ` FROM evaluation_periods WHERE id = $1`
	return scanPeriod(r.db.QueryRowContext(ctx, q, id))
}

// ListPeriods returns the newest period first.
func (r *EvaluationPostgres) ListPeriods(ctx context.Context) ([]model.EvaluationPeriod, error) {
	const q = `SELECT ` + periodColumns + ` FROM evaluation_periods ORDER BY year DESC, period_number DESC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.EvaluationPeriod, 0)
	for rows.Next() {
		p, err := scanPeriod(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *p)
	}
	return items, rows.Err()
}

// evaluations

const evaluationSelect = `
	SELECT e.id, e.supplier_id, s.legal_name, s.trade_name,
		p.id, p.year, p.period_number, p.name, p.start_date, p.end_date,
		e.evaluator_name, e.evaluation_date, e.comments, e.final_score, e.created_at, e.updated_at
	FROM supplier_evaluations e
	JOIN suppliers s ON s.id = e.supplier_id
	JOIN evaluation_periods p ON p.id = e.period_id`

func scanEvaluation(row rowScanner) (*model.SupplierEvaluation, error) {
	var e model.SupplierEvaluation
	if err := row.Scan(
		&e.ID, &e.SupplierID, &e.SupplierName, &e.SupplierTradeName,
		&e.Period.ID, &e.Period.Year, &e.Period.PeriodNumber, &e.Period.Name,
		&e.Period.StartDate, &e.Period.EndDate,
		&e.EvaluatorName, &e.EvaluationDate, &e.Comments, &e.FinalScore, &e.CreatedAt, &e.UpdatedAt,
	); err != nil {
		return nil, err
	}
	return &e, nil
}

// Create inserts the evaluation and its scores in one transaction.
func (r *EvaluationPostgres) Create(ctx context.Context, e *model.SupplierEvaluation) error {
	const q = `
		INSERT INTO supplier_evaluations (id, supplier_id, period_id, evaluator_name,
			evaluation_date, comments, final_score, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, q,
			e.ID, e.SupplierID, e.Period.ID, e.EvaluatorName, e.EvaluationDate, e.Comments,
			e.FinalScore, e.CreatedAt, e.UpdatedAt,
		); err != nil {
			return err
		}
		return insertScores(ctx, tx, e.ID, e.CriterionScores)
	})
}

// Update rewrites the evaluation header. With replaceScores the stored scores are
// swapped for e.CriterionScores in the same transaction.
func (r *EvaluationPostgres) Update(ctx context.Context, e *model.SupplierEvaluation, replaceScores bool) error {
	const q = `
		UPDATE supplier_evaluations
		SET period_id = $2, evaluator_name = $3, evaluation_date = $4, comments = $5,
			final_score = $6, updated_at = $7
		WHERE id = $1
	`
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q,
			e.ID, e.Period.ID, e.EvaluatorName, e.EvaluationDate, e.Comments, e.FinalScore, e.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		if !replaceScores {
			return nil
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM criterion_scores WHERE evaluation_id = $1`, e.ID); err != nil {
			return err
		}
		return insertScores(ctx, tx, e.ID, e.CriterionScores)
	})
}

func (r *EvaluationPostgres) FindByID(ctx context.Context, id string) (*model.SupplierEvaluation, error) {
	e, err := scanEvaluation(r.db.QueryRowContext(ctx, evaluationSelect+"\n\tWHERE e.id = $1", id))
	if err != nil {
		return nil, err
	}

	const qScores = `
		SELECT cs.id, cs.evaluation_id, cs.criterion_id, c.name, c.weight, cs.score, cs.comments
		FROM criterion_scores cs
		JOIN evaluation_criteria c ON c.id = cs.criterion_id
		WHERE cs.evaluation_id = $1
		ORDER BY c.sort_order, c.name
	`
	rows, err := r.db.QueryContext(ctx, qScores, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	e.CriterionScores = make([]model.CriterionScore, 0)
	for rows.Next() {
		var s model.CriterionScore
		if err := rows.Scan(&s.ID, &s.EvaluationID, &s.CriterionID, &s.CriterionName, &s.Weight, &s.Score, &s.Comments); err != nil {
			return nil, err
		}
		e.CriterionScores = append(e.CriterionScores, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return e, nil
}

// List returns evaluations without scores, newest evaluation date first.
func (r *EvaluationPostgres) List(ctx context.Context, f repository.EvaluationFilter) ([]model.SupplierEvaluation, error) {
	var (
		conds []string
		args  []any
	)
	if f.SupplierID != "" {
		args = append(args, f.SupplierID)
		conds = append(conds, fmt.Sprintf("e.supplier_id = $%d", len(args)))
	}
	if f.PeriodID != "" {
		args = append(args, f.PeriodID)
		conds = append(conds, fmt.Sprintf("e.period_id = $%d", len(args)))
	}
	q := evaluationSelect
	if len(conds) > 0 {
		q += "\n\tWHERE " + strings.Join(conds, " AND ")
	}
	q += "\n\tORDER BY e.evaluation_date DESC, e.created_at DESC"

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.SupplierEvaluation, 0)
	for rows.Next() {
		e, err := scanEvaluation(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *e)
	}
	return items, rows.Err()
}

func (r *EvaluationPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM supplier_evaluations WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func insertScores(ctx context.Context, tx *sql.Tx, evaluationID string, scores []model.CriterionScore) error {
	const q = `
		INSERT INTO criterion_scores (id, evaluation_id, criterion_id, score, comments)
		VALUES ($1, $2, $3, $4, $5)
	`
	for _, s := range scores {
		if _, err := tx.ExecContext(ctx, q, s.ID, evaluationID, s.CriterionID, s.Score, s.Comments); err != nil {
			return err
		}
	}
	return nil
}

// AddScores inserts scores and stores the recomputed final score in one transaction.
func (r *EvaluationPostgres) AddScores(ctx context.Context, evaluationID string, scores []model.CriterionScore, final decimal.NullDecimal) error {
	const q = `UPDATE supplier_evaluations SET final_score = $2, updated_at = now() WHERE id = $1`
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if err := insertScores(ctx, tx, evaluationID, scores); err != nil {
			return err
		}
		res, err := tx.ExecContext(ctx, q, evaluationID, final)
		if err != nil {
			return err
		}
		return requireAffected(res)
	})
}
