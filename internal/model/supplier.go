package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Supplier is the registration aggregate. Sections are one-to-one with the supplier
// and always present once the supplier is stored.
type Supplier struct {
	ID                            string                `json:"id"`
	TradeName                     string                `json:"tradeName"`
	LegalName                     string                `json:"legalName"`
	TaxID                         string                `json:"taxId"`
	StateBusinessRegistration     string                `json:"stateBusinessRegistration"`
	MunicipalBusinessRegistration string                `json:"municipalBusinessRegistration"`
	Classification                *DomainRef            `json:"classification"`
	Category                      *DomainRef            `json:"category"`
	RiskLevel                     *DomainRef            `json:"riskLevel"`
	Type                          *DomainRef            `json:"type"`
	Address                       Address               `json:"address"`
	Contact                       Contact               `json:"contact"`
	Contract                      Contract              `json:"contract"`
	PaymentDetails                PaymentDetails        `json:"paymentDetails"`
	OrganizationalDetails         OrganizationalDetails `json:"organizationalDetails"`
	FiscalDetails                 FiscalDetails         `json:"fiscalDetails"`
	CompanyInformation            CompanyInformation    `json:"companyInformation"`
	Situation                     *SituationEntry       `json:"situation"`
	IsCompletedRegistration       bool                  `json:"isCompletedRegistration"`
	CreatedAt                     time.Time             `json:"createdAt"`
	UpdatedAt                     time.Time             `json:"updatedAt"`
}

// Address street, neighbourhood, city and state come from the postal code lookup.
type Address struct {
	PostalCode    string `json:"postalCode"`
	Street        string `json:"street"`
	Number        int    `json:"number"`
	Complement    string `json:"complement"`
	Neighbourhood string `json:"neighbourhood"`
	City          string `json:"city"`
	State         string `json:"state"`
}

type Contact struct {
	Email string `json:"email"`
	Phone string `json:"phone"`
}

type Contract struct {
	ObjectContract         string `json:"objectContract"`
	ExecutedActivities     string `json:"executedActivities"`
	ContractStartDate      *Date  `json:"contractStartDate"`
	ContractEndDate        *Date  `json:"contractEndDate"`
	ContractType           string `json:"contractType"`
	ContractPeriod         string `json:"contractPeriod"`
	HasContractRenewal     bool   `json:"hasContractRenewal"`
	WarningContractRenewal bool   `json:"warningContractRenewal"`
	WarningContractPeriod  string `json:"warningContractPeriod"`
	WarningOnTermination   bool   `json:"warningOnTermination"`
	WarningOnRenewal       bool   `json:"warningOnRenewal"`
	WarningOnPeriod        bool   `json:"warningOnPeriod"`
}

type PaymentDetails struct {
	PaymentFrequency     string          `json:"paymentFrequency"`
	PaymentDate          *Date           `json:"paymentDate"`
	ContractTotalValue   decimal.Decimal `json:"contractTotalValue"`
	ContractMonthlyValue decimal.Decimal `json:"contractMonthlyValue"`
	CheckingAccount      string          `json:"checkingAccount"`
	Bank                 string          `json:"bank"`
	Agency               string          `json:"agency"`
	PaymentMethod        *DomainRef      `json:"paymentMethod"`
	PixKeyType           *DomainRef      `json:"pixKeyType"`
	PixKey               string          `json:"pixKey"`
}

type OrganizationalDetails struct {
	CostCenter             string     `json:"costCenter"`
	BusinessUnit           string     `json:"businessUnit"`
	ResponsibleExecutive   string     `json:"responsibleExecutive"`
	PayerType              *DomainRef `json:"payerType"`
	BusinessSector         *DomainRef `json:"businessSector"`
	TaxpayerClassification *DomainRef `json:"taxpayerClassification"`
	PublicEntity           *DomainRef `json:"publicEntity"`
}

type FiscalDetails struct {
	IssWithholding             *DomainRef `json:"issWithholding"`
	IssRegime                  *DomainRef `json:"issRegime"`
	IssTaxpayer                bool       `json:"issTaxpayer"`
	SimplesNacionalParticipant bool       `json:"simplesNacionalParticipant"`
	CooperativeMember          bool       `json:"cooperativeMember"`
	WithholdingTaxNature       *DomainRef `json:"withholdingTaxNature"`
}

type CompanyInformation struct {
	CompanySize    *DomainRef `json:"companySize"`
	IcmsTaxpayer   *DomainRef `json:"icmsTaxpayer"`
	TaxationRegime *DomainRef `json:"taxationRegime"`
	IncomeType     *DomainRef `json:"incomeType"`
	TaxationMethod *DomainRef `json:"taxationMethod"`
	CustomerType   *DomainRef `json:"customerType"`
	Nit            string     `json:"nit"`
}

// DomainRefSlot pairs a supplier reference with the kind it must point to.
type DomainRefSlot struct {
	Field string
	Kind  DomainKind
	Ref   **DomainRef
}

// DomainRefs lists every domain reference held by the aggregate, with its JSON path.
func (s *Supplier) DomainRefs() []DomainRefSlot {
	return []DomainRefSlot{
		{"classification", KindClassification, &s.Classification},
		{"category", KindCategory, &s.Category},
		{"riskLevel", KindRiskLevel, &s.RiskLevel},
		{"type", KindSupplierType, &s.Type},
		{"paymentDetails.paymentMethod", KindPaymentMethod, &s.PaymentDetails.PaymentMethod},
		{"paymentDetails.pixKeyType", KindPixType, &s.PaymentDetails.PixKeyType},
		{"organizationalDetails.payerType", KindPayerType, &s.OrganizationalDetails.PayerType},
		{"organizationalDetails.businessSector", KindBusinessSector, &s.OrganizationalDetails.BusinessSector},
		{"organizationalDetails.taxpayerClassification", KindTaxpayerClassification, &s.OrganizationalDetails.TaxpayerClassification},
		{"organizationalDetails.publicEntity", KindPublicEntity, &s.OrganizationalDetails.PublicEntity},
		{"fiscalDetails.issWithholding", KindIssWithholding, &s.FiscalDetails.IssWithholding},
		{"fiscalDetails.issRegime", KindIssRegime, &s.FiscalDetails.IssRegime},
		{"fiscalDetails.withholdingTaxNature", KindWithholdingTax, &s.FiscalDetails.WithholdingTaxNature},
		{"companyInformation.companySize", KindCompanySize, &s.CompanyInformation.CompanySize},
		{"companyInformation.icmsTaxpayer", KindIcmsTaxpayer, &s.CompanyInformation.IcmsTaxpayer},
		{"companyInformation.taxationRegime", KindTaxationRegime, &s.CompanyInformation.TaxationRegime},
		{"companyInformation.incomeType", KindIncomeType, &s.CompanyInformation.IncomeType},
		{"companyInformation.taxationMethod", KindTaxationMethod, &s.CompanyInformation.TaxationMethod},
		{"companyInformation.customerType", KindCustomerType, &s.CompanyInformation.CustomerType},
	}
}

// MissingFields returns the JSON paths that keep the registration incomplete.
// Booleans and monetary values are never considered missing.
func (s *Supplier) MissingFields() []string {
	var missing []string
	text := func(field, v string) {
		if v == "" {
			missing = append(missing, field)
		}
	}

	text("tradeName", s.TradeName)
	text("legalName", s.LegalName)
	text("taxId", s.TaxID)
	text("stateBusinessRegistration", s.StateBusinessRegistration)
	text("municipalBusinessRegistration", s.MunicipalBusinessRegistration)

	text("address.postalCode", s.Address.PostalCode)
	text("address.street", s.Address.Street)
	text("address.city", s.Address.City)
	text("address.state", s.Address.State)

	text("contact.email", s.Contact.Email)
	text("contact.phone", s.Contact.Phone)

	text("contract.objectContract", s.Contract.ObjectContract)
	text("contract.contractType", s.Contract.ContractType)
	if s.Contract.ContractStartDate == nil {
		missing = append(missing, "contract.contractStartDate")
	}
	if s.Contract.ContractEndDate == nil {
		missing = append(missing, "contract.contractEndDate")
	}

	text("paymentDetails.paymentFrequency", s.PaymentDetails.PaymentFrequency)
	text("paymentDetails.bank", s.PaymentDetails.Bank)
	text("paymentDetails.agency", s.PaymentDetails.Agency)
	text("paymentDetails.checkingAccount", s.PaymentDetails.CheckingAccount)

	text("organizationalDetails.costCenter", s.OrganizationalDetails.CostCenter)
	text("organizationalDetails.businessUnit", s.OrganizationalDetails.BusinessUnit)
	text("organizationalDetails.responsibleExecutive", s.OrganizationalDetails.ResponsibleExecutive)

	for _, slot := range s.DomainRefs() {
		// pix key type only matters when a pix key is informed
		if slot.Kind == KindPixType && s.PaymentDetails.PixKey == "" {
			continue
		}
		if *slot.Ref == nil {
			missing = append(missing, slot.Field)
		}
	}
	return missing
}

// RegistrationComplete reports whether every registration field is filled.
func (s *Supplier) RegistrationComplete() bool {
	return len(s.MissingFields()) == 0
}
