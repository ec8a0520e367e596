package model

import (
	"database/sql/driver"
	"fmt"
)

// DomainKind names one lookup list. The value doubles as the URL slug.
type DomainKind string

const (
	KindClassification         DomainKind = "classifications"
	KindCategory               DomainKind = "categories"
	KindRiskLevel              DomainKind = "risk-levels"
	KindSupplierType           DomainKind = "supplier-types"
	KindSupplierSituation      DomainKind = "supplier-situations"
	KindPixType                DomainKind = "pix-types"
	KindPaymentMethod          DomainKind = "payment-methods"
	KindPayerType              DomainKind = "payer-types"
	KindBusinessSector         DomainKind = "business-sectors"
	KindCompanySize            DomainKind = "company-sizes"
	KindCustomerType           DomainKind = "customer-types"
	KindTaxpayerClassification DomainKind = "taxpayer-classifications"
	KindTaxationRegime         DomainKind = "taxation-regimes"
	KindTaxationMethod         DomainKind = "taxation-methods"
	KindIcmsTaxpayer           DomainKind = "icms-taxpayers"
	KindWithholdingTax         DomainKind = "withholding-taxes"
	KindIssWithholding         DomainKind = "iss-withholdings"
	KindIssRegime              DomainKind = "iss-regimes"
	KindIncomeType             DomainKind = "income-types"
	KindPublicEntity           DomainKind = "public-entities"
	KindAttachmentType         DomainKind = "attachment-types"
)

// ListedDomainKinds are the kinds served under /api/domain/<kind>/.
var ListedDomainKinds = []DomainKind{
	KindClassification,
	KindCategory,
	KindRiskLevel,
	KindSupplierType,
	KindSupplierSituation,
	KindPixType,
	KindPaymentMethod,
	KindPayerType,
	KindBusinessSector,
	KindCompanySize,
	KindCustomerType,
	KindTaxpayerClassification,
	KindTaxationRegime,
	KindTaxationMethod,
	KindIcmsTaxpayer,
	KindWithholdingTax,
	KindIssWithholding,
	KindIssRegime,
	KindIncomeType,
	KindPublicEntity,
}

// IsListed reports whether k may be requested through the generic domain endpoint.
func (k DomainKind) IsListed() bool {
	for _, kind := range ListedDomainKinds {
		if kind == k {
			return true
		}
	}
	return false
}

// DomainValue is one row of a lookup list.
type DomainValue struct {
	ID           int        `json:"id"`
	Kind         DomainKind `json:"-"`
	Name         string     `json:"name"`
	PendencyType *int       `json:"pendencyType,omitempty"`
	RiskLevelID  *int       `json:"riskLevel,omitempty"`
}

// Ref returns the embedded representation of v.
func (v DomainValue) Ref() *DomainRef {
	return &DomainRef{ID: v.ID, Name: v.Name}
}

// DomainRef is a reference from a record to a domain value.
// It is stored as the integer id and rendered as {id, name}.
type DomainRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// RefID returns the referenced id, or nil for an unset reference.
func RefID(r *DomainRef) *int {
	if r == nil {
		return nil
	}
	id := r.ID
	return &id
}

// RefOf builds an unnamed reference from an optional id.
func RefOf(id *int) *DomainRef {
	if id == nil {
		return nil
	}
	return &DomainRef{ID: *id}
}

// Scan implements sql.Scanner.
func (r *DomainRef) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		r.ID = int(v)
	case int32:
		r.ID = int(v)
	case int:
		r.ID = v
	default:
		return fmt.Errorf("domain ref: cannot scan %T", src)
	}
	return nil
}

// Value implements driver.Valuer.
func (r DomainRef) Value() (driver.Value, error) {
	return int64(r.ID), nil
}
