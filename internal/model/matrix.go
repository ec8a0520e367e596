package model

import (
	"fmt"
	"time"
)

// Activity is one of the fixed contracting activities of the responsibility matrix.
type Activity string

const (
	ActivityContractRequest      Activity = "contractRequest"
	ActivityDocumentAnalysis     Activity = "documentAnalysis"
	ActivityRiskConsultation     Activity = "riskConsultation"
	ActivityRiskAssessment       Activity = "riskAssessment"
	ActivitySystemRegistration   Activity = "systemRegistration"
	ActivityFormHandling         Activity = "formHandling"
	ActivityContractDraft        Activity = "contractDraft"
	ActivityComplianceValidation Activity = "complianceValidation"
	ActivityFinalApproval        Activity = "finalApproval"
	ActivityContractSigning      Activity = "contractSigning"
	ActivityDocumentManagement   Activity = "documentManagement"
	ActivityPaymentRelease       Activity = "paymentRelease"
)

// Activities lists the twelve activities in workflow order.
var Activities = []Activity{
	ActivityContractRequest,
	ActivityDocumentAnalysis,
	ActivityRiskConsultation,
	ActivityRiskAssessment,
	ActivitySystemRegistration,
	ActivityFormHandling,
	ActivityContractDraft,
	ActivityComplianceValidation,
	ActivityFinalApproval,
	ActivityContractSigning,
	ActivityDocumentManagement,
	ActivityPaymentRelease,
}

// Area is an organizational area taking part in an activity.
type Area string

const (
	AreaRequesting     Area = "requestingArea"
	AreaAdministrative Area = "administrative"
	AreaLegal          Area = "legal"
	AreaFinancial      Area = "financial"
	AreaIntegrity      Area = "integrity"
	AreaBoard          Area = "board"
)

var Areas = []Area{AreaRequesting, AreaAdministrative, AreaLegal, AreaFinancial, AreaIntegrity, AreaBoard}

// RACI is the role of an area in an activity.
type RACI string

const (
	RACIAccountable            RACI = "A"
	RACIResponsible            RACI = "R"
	RACIConsulted              RACI = "C"
	RACIInformed               RACI = "I"
	RACINone                   RACI = "-"
	RACIAccountableResponsible RACI = "A/R"
)

var RACIValues = []RACI{RACIAccountable, RACIResponsible, RACIConsulted, RACIInformed, RACINone, RACIAccountableResponsible}

func (v RACI) Valid() bool {
	for _, r := range RACIValues {
		if v == r {
			return true
		}
	}
	return false
}

// Accountable reports whether v makes the area the single owner of the activity.
func (v RACI) Accountable() bool {
	return v == RACIAccountable || v == RACIAccountableResponsible
}

func (a Activity) Valid() bool {
	for _, x := range Activities {
		if a == x {
			return true
		}
	}
	return false
}

func (a Area) Valid() bool {
	for _, x := range Areas {
		if a == x {
			return true
		}
	}
	return false
}

const (
	MsgSingleAccountable = "Só pode haver um responsável (A ou A/R) por atividade."
	MsgAreaInvolved      = "Pelo menos uma área deve estar envolvida na atividade."
	MsgInvalidRACI       = "Valor inválido. Use A, R, C, I, - ou A/R."
)

// Assignment maps every area to its role in one activity.
type Assignment map[Area]RACI

// NewAssignment returns an assignment with every area set to "-".
func NewAssignment() Assignment {
	a := make(Assignment, len(Areas))
	for _, area := range Areas {
		a[area] = RACINone
	}
	return a
}

// Check returns the rule message violated by a, or "" when a is acceptable.
func (a Assignment) Check() string {
	accountable := 0
	involved := false
	for _, area := range Areas {
		v := a[area]
		if v == "" {
			v = RACINone
		}
		if !v.Valid() {
			return MsgInvalidRACI
		}
		if v.Accountable() {
			accountable++
		}
		if v != RACINone {
			involved = true
		}
	}
	if accountable > 1 {
		return MsgSingleAccountable
	}
	if !involved {
		return MsgAreaInvolved
	}
	return ""
}

// ResponsibilityMatrix assigns RACI roles for every activity of one supplier.
type ResponsibilityMatrix struct {
	ID         string                  `json:"id"`
	SupplierID string                  `json:"supplier"`
	Activities map[Activity]Assignment `json:"activities"`
	CreatedAt  time.Time               `json:"createdAt"`
	UpdatedAt  time.Time               `json:"updatedAt"`
}

// NewResponsibilityMatrix returns a matrix with all twelve activities set to "-".
func NewResponsibilityMatrix(supplierID string) *ResponsibilityMatrix {
	m := &ResponsibilityMatrix{SupplierID: supplierID, Activities: make(map[Activity]Assignment, len(Activities))}
	for _, act := range Activities {
		m.Activities[act] = NewAssignment()
	}
	return m
}

// Set assigns one cell, creating the activity row when missing.
func (m *ResponsibilityMatrix) Set(act Activity, area Area, v RACI) {
	if m.Activities == nil {
		m.Activities = make(map[Activity]Assignment, len(Activities))
	}
	row, ok := m.Activities[act]
	if !ok {
		row = NewAssignment()
		m.Activities[act] = row
	}
	row[area] = v
}

// Get returns the role of area in act, "-" when unset.
func (m *ResponsibilityMatrix) Get(act Activity, area Area) RACI {
	if v, ok := m.Activities[act][area]; ok && v != "" {
		return v
	}
	return RACINone
}

// Normalize fills every missing activity and area with "-".
func (m *ResponsibilityMatrix) Normalize() {
	for _, act := range Activities {
		for _, area := range Areas {
			m.Set(act, area, m.Get(act, area))
		}
	}
}

// Complete reports whether every activity has exactly one accountable area.
func (m *ResponsibilityMatrix) Complete() bool {
	for _, act := range Activities {
		n := 0
		for _, area := range Areas {
			if m.Get(act, area).Accountable() {
				n++
			}
		}
		if n != 1 {
			return false
		}
	}
	return true
}

// Field returns the JSON path of one cell, used in validation errors.
func (act Activity) Field(area Area) string {
	return fmt.Sprintf("activities.%s.%s", act, area)
}
