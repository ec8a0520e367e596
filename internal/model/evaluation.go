package model

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EvaluationCriterion is a weighted item suppliers are scored on.
type EvaluationCriterion struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Weight      decimal.Decimal `json:"weight"`
	Order       int             `json:"order"`
	CreatedAt   time.Time       `json:"createdAt"`
	UpdatedAt   time.Time       `json:"updatedAt"`
}

// EvaluationPeriod is one quadrimester of a year.
type EvaluationPeriod struct {
	ID           string `json:"id"`
	Year         int    `json:"year"`
	PeriodNumber int    `json:"periodNumber"`
	Name         string `json:"name"`
	StartDate    Date   `json:"startDate"`
	EndDate      Date   `json:"endDate"`
}

var quadrimesterNames = [3]string{"Primeiro", "Segundo", "Terceiro"}

// PeriodFor returns the quadrimester (1..3) of the year containing d.
func PeriodFor(d time.Time) (year, number int) {
	return d.Year(), (int(d.Month())-1)/4 + 1
}

// NewEvaluationPeriod builds quadrimester number (1..3) of year.
func NewEvaluationPeriod(year, number int) (EvaluationPeriod, error) {
	if number < 1 || number > 3 {
		return EvaluationPeriod{}, fmt.Errorf("invalid period number %d", number)
	}
	startMonth := time.Month((number-1)*4 + 1)
	start := NewDate(year, startMonth, 1)
	end := DateOf(start.AddDate(0, 4, -1))
	return EvaluationPeriod{
		Year:         year,
		PeriodNumber: number,
		Name:         fmt.Sprintf("%s Quadrimestre %d", quadrimesterNames[number-1], year),
		StartDate:    start,
		EndDate:      end,
	}, nil
}

// SupplierEvaluation is the evaluation of one supplier in one period.
type SupplierEvaluation struct {
	ID                string              `json:"id"`
	SupplierID        string              `json:"supplier"`
	SupplierName      string              `json:"supplierName"`
	SupplierTradeName string              `json:"supplierTradeName"`
	Period            EvaluationPeriod    `json:"period"`
	EvaluatorName     string              `json:"evaluatorName"`
	EvaluationDate    Date                `json:"evaluationDate"`
	Comments          string              `json:"comments"`
	FinalScore        decimal.NullDecimal `json:"finalScore"`
	CriterionScores   []CriterionScore    `json:"criterionScores"`
	CreatedAt         time.Time           `json:"createdAt"`
	UpdatedAt         time.Time           `json:"updatedAt"`
}

// CriterionScore is the score (0..100) given to one criterion.
type CriterionScore struct {
	ID            string          `json:"id"`
	EvaluationID  string          `json:"-"`
	CriterionID   string          `json:"criterion"`
	CriterionName string          `json:"criterionName"`
	Weight        decimal.Decimal `json:"weight"`
	Score         decimal.Decimal `json:"score"`
	Comments      string          `json:"comments"`
}

// FinalScore is the weight-averaged score rounded to two places.
// It is null without scores and zero when the total weight is not positive.
func FinalScore(scores []CriterionScore) decimal.NullDecimal {
	if len(scores) == 0 {
		return decimal.NullDecimal{}
	}
	total := decimal.Zero
	weights := decimal.Zero
	for _, s := range scores {
		total = total.Add(s.Score.Mul(s.Weight))
		weights = weights.Add(s.Weight)
	}
	if !weights.IsPositive() {
		return decimal.NewNullDecimal(decimal.Zero)
	}
	return decimal.NewNullDecimal(total.DivRound(weights, 2))
}
