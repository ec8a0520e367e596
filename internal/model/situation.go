package model

import "time"

// Situation names stored in the supplier-situations domain.
const (
	SituationActive   = "ATIVO"
	SituationPending  = "PENDENTE"
	SituationInactive = "INATIVO"
)

// PendencyType tells which part of the registration keeps a supplier pending.
type PendencyType int

const (
	PendencyRegistration  PendencyType = 1
	PendencyDocumentation PendencyType = 2
	PendencyMatrix        PendencyType = 3
	PendencyEvaluation    PendencyType = 4
)

var pendencyNames = map[PendencyType]string{
	PendencyRegistration:  "PENDÊNCIA DE CADASTRO",
	PendencyDocumentation: "PENDÊNCIA DE DOCUMENTAÇÃO",
	PendencyMatrix:        "PENDÊNCIA DE MATRIZ DE RESPONSABILIDADE",
	PendencyEvaluation:    "PENDÊNCIA DE AVALIAÇÃO",
}

func (p PendencyType) String() string {
	return pendencyNames[p]
}

// SituationEntry is one row of a supplier's situation history.
type SituationEntry struct {
	ID           int64         `json:"-"`
	SituationID  int           `json:"id"`
	Name         string        `json:"name"`
	PendencyType *PendencyType `json:"pendencyType"`
	Pendency     string        `json:"pendency,omitempty"`
	CreatedAt    time.Time     `json:"since"`
}

// SituationTarget is the situation a supplier should be in.
type SituationTarget struct {
	Name     string
	Pendency *PendencyType
}

// Matches reports whether the current entry already reflects t.
func (t SituationTarget) Matches(cur *SituationEntry) bool {
	if cur == nil || cur.Name != t.Name {
		return false
	}
	if t.Pendency == nil || cur.PendencyType == nil {
		return t.Pendency == nil && cur.PendencyType == nil
	}
	return *t.Pendency == *cur.PendencyType
}

// TargetSituation derives the situation from the three completeness checks.
// The first failing check, in registration, documentation, matrix order, wins.
func TargetSituation(registration, documentation, matrix bool) SituationTarget {
	var p PendencyType
	switch {
	case !registration:
		p = PendencyRegistration
	case !documentation:
		p = PendencyDocumentation
	case !matrix:
		p = PendencyMatrix
	default:
		return SituationTarget{Name: SituationActive}
	}
	return SituationTarget{Name: SituationPending, Pendency: &p}
}
