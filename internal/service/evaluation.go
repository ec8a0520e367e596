package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"supplierapi/internal/logger"
	"supplierapi/internal/model"
	"supplierapi/internal/repository"
	"supplierapi/internal/validation"
)

const (
	MsgSupplierIDRequired = "É necessário fornecer um ID de fornecedor."

	msgCriterionInUse      = "Este critério possui pontuações registradas e não pode ser excluído."
	msgCriterionNameTaken  = "Já existe um critério com este nome."
	msgCriterionRepeated   = "Este critério já foi pontuado nesta avaliação."
	msgAlreadyEvaluated    = "Este fornecedor já foi avaliado neste período."
	msgScoreRange          = "A pontuação deve estar entre 0 e 100."
	msgWeightRange         = "O peso deve estar entre 0 e 100."
	msgEvaluationDateRange = "A data da avaliação deve estar dentro do período."
)

var hundred = decimal.NewFromInt(100)

// CriterionInput is the inbound criterion payload.
type CriterionInput struct {
	Name        string          `json:"name" validate:"required,max=100"`
	Description string          `json:"description"`
	Weight      decimal.Decimal `json:"weight"`
	Order       int             `json:"order" validate:"gte=0"`
}

// ScoreInput scores one criterion.
type ScoreInput struct {
	Criterion string          `json:"criterion" validate:"required"`
	Score     decimal.Decimal `json:"score"`
	Comments  string          `json:"comments"`
}

// EvaluationInput is the inbound evaluation payload. Period, evaluator name and
// date fall back to the current period, the authenticated user and today.
type EvaluationInput struct {
	Supplier        string       `json:"supplier"`
	Period          string       `json:"period"`
	EvaluatorName   string       `json:"evaluatorName" validate:"max=255"`
	EvaluationDate  *model.Date  `json:"evaluationDate"`
	Comments        string       `json:"comments"`
	CriterionScores []ScoreInput `json:"criterionScores" validate:"dive"`
}

// ScoreStats summarizes the other scored evaluations of the same supplier.
type ScoreStats struct {
	PreviousEvaluationsCount int                 `json:"previousEvaluationsCount"`
	Average                  decimal.NullDecimal `json:"average"`
	Min                      decimal.NullDecimal `json:"min"`
	Max                      decimal.NullDecimal `json:"max"`
}

// EvaluationDetail is an evaluation with its scores and the supplier's history stats.
type EvaluationDetail struct {
	model.SupplierEvaluation
	AverageScore ScoreStats `json:"averageScore"`
}

// EvaluationSummary is one line of the evaluations overview.
type EvaluationSummary struct {
	ID                string              `json:"id"`
	Supplier          string              `json:"supplier"`
	SupplierName      string              `json:"supplierName"`
	SupplierTradeName string              `json:"supplierTradeName"`
	PeriodName        string              `json:"periodName"`
	PeriodYear        int                 `json:"periodYear"`
	PeriodNumber      int                 `json:"periodNumber"`
	FinalScore        decimal.NullDecimal `json:"finalScore"`
	EvaluationDate    model.Date          `json:"evaluationDate"`
}

// EvaluationService manages criteria, periods and supplier evaluations.
type EvaluationService interface {
	ListCriteria(ctx context.Context) ([]model.EvaluationCriterion, error)
	GetCriterion(ctx context.Context, id string) (*model.EvaluationCriterion, error)
	CreateCriterion(ctx context.Context, in *CriterionInput) (*model.EvaluationCriterion, error)
	UpdateCriterion(ctx context.Context, id string, in *CriterionInput) (*model.EvaluationCriterion, error)
	// PatchCriterion changes only the JSON keys present in body.
	PatchCriterion(ctx context.Context, id string, body []byte) (*model.EvaluationCriterion, error)
	// DeleteCriterion refuses with ErrConflict while scores reference the criterion.
	DeleteCriterion(ctx context.Context, id string) error

	// ListPeriods makes sure the current year's periods exist and lists all periods.
	ListPeriods(ctx context.Context) ([]model.EvaluationPeriod, error)

	List(ctx context.Context, f repository.EvaluationFilter) ([]model.SupplierEvaluation, error)
	Get(ctx context.Context, id string) (*EvaluationDetail, error)
	Create(ctx context.Context, in *EvaluationInput, by *model.User) (*model.SupplierEvaluation, error)
	// Update replaces the header; scores are replaced only when the input has them.
	Update(ctx context.Context, id string, in *EvaluationInput, by *model.User) (*model.SupplierEvaluation, error)
	Delete(ctx context.Context, id string) error

	// AddScores scores more criteria and recalculates the final score.
	AddScores(ctx context.Context, id string, scores []ScoreInput) (*EvaluationDetail, error)

	Summary(ctx context.Context) ([]EvaluationSummary, error)

	// SupplierHistory lists the supplier's evaluations, newest evaluation date first.
	SupplierHistory(ctx context.Context, supplierID string) ([]model.SupplierEvaluation, error)
}

type evaluationService struct {
	repo      repository.EvaluationRepository
	suppliers repository.SupplierRepository
	validator *validation.Validator
	now       func() time.Time
}

// NewEvaluationService constructs a new EvaluationService.
func NewEvaluationService(
	repo repository.EvaluationRepository,
	suppliers repository.SupplierRepository,
	v *validation.Validator,
) EvaluationService {
	return &evaluationService{repo: repo, suppliers: suppliers, validator: v, now: time.Now}
}

func (s *evaluationService) ListCriteria(ctx context.Context) ([]model.EvaluationCriterion, error) {
	return s.repo.ListCriteria(ctx)
}

func (s *evaluationService) GetCriterion(ctx context.Context, id string) (*model.EvaluationCriterion, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	c, err := s.repo.FindCriterion(ctx, id)
	if err != nil {
		return nil, orNotFound(err, msgCriterionNotFound)
	}
	return c, nil
}

func (s *evaluationService) checkCriterion(in *CriterionInput) error {
	verr := &validation.Error{}
	if err := verr.Merge(s.validator.Struct(in)); err != nil {
		return err
	}
	if in.Weight.IsNegative() || in.Weight.GreaterThan(hundred) {
		verr.Add("weight", msgWeightRange)
	}
	return verr.OrNil()
}

func (s *evaluationService) CreateCriterion(ctx context.Context, in *CriterionInput) (*model.EvaluationCriterion, error) {
	if err := s.checkCriterion(in); err != nil {
		return nil, err
	}
	now := s.now().UTC()
	c := &model.EvaluationCriterion{
		ID:          uuid.NewString(),
		Name:        in.Name,
		Description: in.Description,
		Weight:      in.Weight,
		Order:       in.Order,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.CreateCriterion(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validation.NewError("name", msgCriterionNameTaken)
		}
		return nil, err
	}
	return c, nil
}

func (s *evaluationService) UpdateCriterion(ctx context.Context, id string, in *CriterionInput) (*model.EvaluationCriterion, error) {
	c, err := s.GetCriterion(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.saveCriterion(ctx, c, in)
}

func (s *evaluationService) PatchCriterion(ctx context.Context, id string, body []byte) (*model.EvaluationCriterion, error) {
	c, err := s.GetCriterion(ctx, id)
	if err != nil {
		return nil, err
	}
	in := CriterionInput{Name: c.Name, Description: c.Description, Weight: c.Weight, Order: c.Order}
	if err := validation.DecodeJSON(body, &in); err != nil {
		return nil, err
	}
	return s.saveCriterion(ctx, c, &in)
}

func (s *evaluationService) saveCriterion(ctx context.Context, c *model.EvaluationCriterion, in *CriterionInput) (*model.EvaluationCriterion, error) {
	if err := s.checkCriterion(in); err != nil {
		return nil, err
	}
	c.Name = in.Name
	c.Description = in.Description
	c.Weight = in.Weight
	c.Order = in.Order
	c.UpdatedAt = s.now().UTC()
	if err := s.repo.UpdateCriterion(ctx, c); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validation.NewError("name", msgCriterionNameTaken)
		}
		return nil, orNotFound(err, msgCriterionNotFound)
	}
	return c, nil
}

func (s *evaluationService) DeleteCriterion(ctx context.Context, id string) error {
	c, err := s.GetCriterion(ctx, id)
	if err != nil {
		return err
	}
	used, err := s.repo.CriterionInUse(ctx, c.ID)
	if err != nil {
		return err
	}
	if used {
		return conflict(msgCriterionInUse)
	}
	return orNotFound(s.repo.DeleteCriterion(ctx, c.ID), msgCriterionNotFound)
}

func (s *evaluationService) ListPeriods(ctx context.Context) ([]model.EvaluationPeriod, error) {
	year := s.now().Year()
	for n := 1; n <= 3; n++ {
		p, err := model.NewEvaluationPeriod(year, n)
		if err != nil {
			return nil, err
		}
		if _, err := s.repo.EnsurePeriod(ctx, p); err != nil {
			return nil, fmt.Errorf("ensure period %d/%d: %w", n, year, err)
		}
	}
	return s.repo.ListPeriods(ctx)
}

func (s *evaluationService) List(ctx context.Context, f repository.EvaluationFilter) ([]model.SupplierEvaluation, error) {
	if f.SupplierID != "" && uuid.Validate(f.SupplierID) != nil {
		return nil, ErrInvalidID
	}
	if f.PeriodID != "" && uuid.Validate(f.PeriodID) != nil {
		return nil, ErrInvalidID
	}
	return s.repo.List(ctx, f)
}

func (s *evaluationService) Get(ctx context.Context, id string) (*EvaluationDetail, error) {
	e, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, e)
}

func (s *evaluationService) find(ctx context.Context, id string) (*model.SupplierEvaluation, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, msgEvaluationNotFound)
	}
	return e, nil
}

// detail adds the stats of the supplier's other scored evaluations.
func (s *evaluationService) detail(ctx context.Context, e *model.SupplierEvaluation) (*EvaluationDetail, error) {
	others, err := s.repo.List(ctx, repository.EvaluationFilter{SupplierID: e.SupplierID})
	if err != nil {
		return nil, err
	}
	var stats ScoreStats
	sum := decimal.Zero
	for _, o := range others {
		if o.ID == e.ID || !o.FinalScore.Valid {
			continue
		}
		v := o.FinalScore.Decimal
		stats.PreviousEvaluationsCount++
		sum = sum.Add(v)
		if !stats.Min.Valid || v.LessThan(stats.Min.Decimal) {
			stats.Min = decimal.NewNullDecimal(v)
		}
		if !stats.Max.Valid || v.GreaterThan(stats.Max.Decimal) {
			stats.Max = decimal.NewNullDecimal(v)
		}
	}
	if stats.PreviousEvaluationsCount > 0 {
		stats.Average = decimal.NewNullDecimal(sum.DivRound(decimal.NewFromInt(int64(stats.PreviousEvaluationsCount)), 2))
	}
	return &EvaluationDetail{SupplierEvaluation: *e, AverageScore: stats}, nil
}

func (s *evaluationService) Create(ctx context.Context, in *EvaluationInput, by *model.User) (*model.SupplierEvaluation, error) {
	verr := &validation.Error{}
	if err := verr.Merge(s.validator.Struct(in)); err != nil {
		return nil, err
	}

	switch err := checkID(in.Supplier); {
	case errors.Is(err, ErrIDRequired):
		verr.Add("supplier", msgRequired)
	case err != nil:
		verr.Add("supplier", msgSupplierNotFound)
	default:
		if _, err := s.suppliers.FindByID(ctx, in.Supplier); err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return nil, err
			}
			verr.Add("supplier", msgSupplierNotFound)
		}
	}

	now := s.now().UTC()
	e := &model.SupplierEvaluation{
		ID:         uuid.NewString(),
		SupplierID: in.Supplier,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.fill(ctx, e, in, by, verr); err != nil {
		return nil, err
	}
	scores, err := s.scores(ctx, in.CriterionScores, nil, verr)
	if err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}
	e.CriterionScores = scores
	e.FinalScore = model.FinalScore(scores)

	if err := s.repo.Create(ctx, e); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validation.NewError(validation.NonFieldErrors, msgAlreadyEvaluated)
		}
		return nil, err
	}
	logger.FromContext(ctx).Info("supplier_evaluated",
		zap.String("supplier_id", e.SupplierID),
		zap.String("evaluation_id", e.ID),
		zap.String("period", e.Period.Name),
		zap.Stringer("final_score", e.FinalScore.Decimal),
	)
	return s.reload(ctx, e.ID)
}

func (s *evaluationService) Update(ctx context.Context, id string, in *EvaluationInput, by *model.User) (*model.SupplierEvaluation, error) {
	e, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	verr := &validation.Error{}
	if err := verr.Merge(s.validator.Struct(in)); err != nil {
		return nil, err
	}
	if in.Supplier != "" && in.Supplier != e.SupplierID {
		verr.Add("supplier", "O fornecedor de uma avaliação não pode ser alterado.")
	}
	if err := s.fill(ctx, e, in, by, verr); err != nil {
		return nil, err
	}

	var scores []model.CriterionScore
	if in.CriterionScores != nil {
		if scores, err = s.scores(ctx, in.CriterionScores, nil, verr); err != nil {
			return nil, err
		}
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	replaceScores := in.CriterionScores != nil
	if replaceScores {
		e.CriterionScores = scores
	}
	e.FinalScore = model.FinalScore(e.CriterionScores)
	e.UpdatedAt = s.now().UTC()
	if err := s.repo.Update(ctx, e, replaceScores); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validation.NewError(validation.NonFieldErrors, msgAlreadyEvaluated)
		}
		return nil, orNotFound(err, msgEvaluationNotFound)
	}
	return s.reload(ctx, e.ID)
}

func (s *evaluationService) Delete(ctx context.Context, id string) error {
	e, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	return orNotFound(s.repo.Delete(ctx, e.ID), msgEvaluationNotFound)
}

func (s *evaluationService) AddScores(ctx context.Context, id string, in []ScoreInput) (*EvaluationDetail, error) {
	e, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	verr := &validation.Error{}
	for i := range in {
		err := s.validator.Struct(&in[i])
		var fe *validation.Error
		if err != nil && !errors.As(err, &fe) {
			return nil, err
		}
		if fe != nil {
			for _, f := range fe.Fields {
				verr.Add(fmt.Sprintf("[%d].%s", i, f.Field), f.Message)
			}
		}
	}
	scored := make(map[string]bool, len(e.CriterionScores))
	for _, sc := range e.CriterionScores {
		scored[sc.CriterionID] = true
	}
	scores, err := s.scores(ctx, in, scored, verr)
	if err != nil {
		return nil, err
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	all := append(append([]model.CriterionScore{}, e.CriterionScores...), scores...)
	if err := s.repo.AddScores(ctx, e.ID, scores, model.FinalScore(all)); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, validation.NewError("criterionScores", msgCriterionRepeated)
		}
		return nil, orNotFound(err, msgEvaluationNotFound)
	}

	e, err = s.reload(ctx, e.ID)
	if err != nil {
		return nil, err
	}
	return s.detail(ctx, e)
}

func (s *evaluationService) Summary(ctx context.Context) ([]EvaluationSummary, error) {
	items, err := s.repo.List(ctx, repository.EvaluationFilter{})
	if err != nil {
		return nil, err
	}
	out := make([]EvaluationSummary, 0, len(items))
	for _, e := range items {
		out = append(out, EvaluationSummary{
			ID:                e.ID,
			Supplier:          e.SupplierID,
			SupplierName:      e.SupplierName,
			SupplierTradeName: e.SupplierTradeName,
			PeriodName:        e.Period.Name,
			PeriodYear:        e.Period.Year,
			PeriodNumber:      e.Period.PeriodNumber,
			FinalScore:        e.FinalScore,
			EvaluationDate:    e.EvaluationDate,
		})
	}
	return out, nil
}

func (s *evaluationService) SupplierHistory(ctx context.Context, supplierID string) ([]model.SupplierEvaluation, error) {
	if supplierID == "" {
		return nil, &Error{Kind: ErrIDRequired, Message: MsgSupplierIDRequired}
	}
	if err := checkID(supplierID); err != nil {
		return nil, err
	}
	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		return nil, orNotFound(err, msgSupplierNotFound)
	}
	return s.repo.List(ctx, repository.EvaluationFilter{SupplierID: supplierID})
}

func (s *evaluationService) reload(ctx context.Context, id string) (*model.SupplierEvaluation, error) {
	e, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, msgEvaluationNotFound)
	}
	return e, nil
}

// fill sets period, evaluator, date and comments on e, applying the defaults.
func (s *evaluationService) fill(ctx context.Context, e *model.SupplierEvaluation, in *EvaluationInput, by *model.User, verr *validation.Error) error {
	date := model.DateOf(s.now())
	if in.EvaluationDate != nil {
		date = *in.EvaluationDate
	}

	switch {
	case in.Period == "":
		year, n := model.PeriodFor(date.Time)
		p, err := model.NewEvaluationPeriod(year, n)
		if err != nil {
			return err
		}
		stored, err := s.repo.EnsurePeriod(ctx, p)
		if err != nil {
			return fmt.Errorf("ensure period: %w", err)
		}
		e.Period = *stored
	case uuid.Validate(in.Period) != nil:
		verr.Add("period", msgPeriodNotFound)
	default:
		p, err := s.repo.FindPeriod(ctx, in.Period)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			verr.Add("period", msgPeriodNotFound)
		case err != nil:
			return err
		default:
			e.Period = *p
			if date.Before(p.StartDate.Time) || date.After(p.EndDate.Time) {
				verr.Add("evaluationDate", msgEvaluationDateRange)
			}
		}
	}

	e.EvaluatorName = in.EvaluatorName
	if e.EvaluatorName == "" && by != nil {
		e.EvaluatorName = by.FullName
	}
	e.EvaluationDate = date
	e.Comments = in.Comments
	return nil
}

// scores resolves criteria and checks score ranges. Criteria in already, or
// repeated in the input, are rejected.
func (s *evaluationService) scores(ctx context.Context, in []ScoreInput, already map[string]bool, verr *validation.Error) ([]model.CriterionScore, error) {
	if len(in) == 0 {
		return nil, nil
	}
	criteria, err := s.repo.ListCriteria(ctx)
	if err != nil {
		return nil, err
	}
	byID := make(map[string]model.EvaluationCriterion, len(criteria))
	for _, c := range criteria {
		byID[c.ID] = c
	}

	seen := make(map[string]bool, len(in))
	out := make([]model.CriterionScore, 0, len(in))
	for i, sc := range in {
		field := fmt.Sprintf("criterionScores[%d]", i)
		c, ok := byID[sc.Criterion]
		switch {
		case sc.Criterion == "":
			continue
		case !ok:
			verr.Add(field+".criterion", msgCriterionNotFound)
			continue
		case seen[sc.Criterion] || already[sc.Criterion]:
			verr.Add(field+".criterion", msgCriterionRepeated)
			continue
		}
		seen[sc.Criterion] = true
		if sc.Score.IsNegative() || sc.Score.GreaterThan(hundred) {
			verr.Add(field+".score", msgScoreRange)
		}
		out = append(out, model.CriterionScore{
			ID:            uuid.NewString(),
			CriterionID:   c.ID,
			CriterionName: c.Name,
			Weight:        c.Weight,
			Score:         sc.Score,
			Comments:      sc.Comments,
		})
	}
	return out, nil
}
