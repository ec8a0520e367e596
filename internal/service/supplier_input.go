package service

import (
	"github.com/shopspring/decimal"

	"supplierapi/internal/brdoc"
	"supplierapi/internal/model"
	"supplierapi/internal/validation"
)

// SupplierInput is the inbound supplier payload. Domain references are integer ids.
// Address fields other than postal code, number and complement come from the CEP lookup.
type SupplierInput struct {
	TradeName                     string                      `json:"tradeName" validate:"max=255"`
	LegalName                     string                      `json:"legalName" validate:"required,max=255"`
	TaxID                         string                      `json:"taxId" validate:"required,taxid"`
	StateBusinessRegistration     string                      `json:"stateBusinessRegistration" validate:"max=20"`
	MunicipalBusinessRegistration string                      `json:"municipalBusinessRegistration" validate:"max=20"`
	Classification                *int                        `json:"classification"`
	Category                      *int                        `json:"category"`
	RiskLevel                     *int                        `json:"riskLevel"`
	Type                          *int                        `json:"type"`
	Address                       *AddressInput               `json:"address"`
	Contact                       *ContactInput               `json:"contact"`
	Contract                      *ContractInput              `json:"contract"`
	PaymentDetails                *PaymentDetailsInput        `json:"paymentDetails"`
	OrganizationalDetails         *OrganizationalDetailsInput `json:"organizationalDetails"`
	FiscalDetails                 *FiscalDetailsInput         `json:"fiscalDetails"`
	CompanyInformation            *CompanyInformationInput    `json:"companyInformation"`
}

type AddressInput struct {
	PostalCode string `json:"postalCode" validate:"required,cep"`
	Number     int    `json:"number" validate:"gte=0"`
	Complement string `json:"complement" validate:"max=255"`
}

type ContactInput struct {
	Email string `json:"email" validate:"omitempty,email,max=254"`
	Phone string `json:"phone" validate:"omitempty,numeric,max=11"`
}

type ContractInput struct {
	ObjectContract         string      `json:"objectContract" validate:"max=255"`
	ExecutedActivities     string      `json:"executedActivities"`
	ContractStartDate      *model.Date `json:"contractStartDate"`
	ContractEndDate        *model.Date `json:"contractEndDate"`
	ContractType           string      `json:"contractType" validate:"max=50"`
	ContractPeriod         string      `json:"contractPeriod" validate:"max=3"`
	HasContractRenewal     bool        `json:"hasContractRenewal"`
	WarningContractRenewal bool        `json:"warningContractRenewal"`
	WarningContractPeriod  string      `json:"warningContractPeriod" validate:"max=3"`
	WarningOnTermination   bool        `json:"warningOnTermination"`
	WarningOnRenewal       bool        `json:"warningOnRenewal"`
	WarningOnPeriod        bool        `json:"warningOnPeriod"`
}

type PaymentDetailsInput struct {
	PaymentFrequency     string          `json:"paymentFrequency" validate:"max=50"`
	PaymentDate          *model.Date     `json:"paymentDate"`
	ContractTotalValue   decimal.Decimal `json:"contractTotalValue"`
	ContractMonthlyValue decimal.Decimal `json:"contractMonthlyValue"`
	CheckingAccount      string          `json:"checkingAccount" validate:"max=20"`
	Bank                 string          `json:"bank" validate:"max=50"`
	Agency               string          `json:"agency" validate:"max=20"`
	PaymentMethod        *int            `json:"paymentMethod"`
	PixKeyType           *int            `json:"pixKeyType"`
	PixKey               string          `json:"pixKey" validate:"max=255"`
}

type OrganizationalDetailsInput struct {
	CostCenter             string `json:"costCenter" validate:"max=50"`
	BusinessUnit           string `json:"businessUnit" validate:"max=100"`
	ResponsibleExecutive   string `json:"responsibleExecutive" validate:"max=255"`
	PayerType              *int   `json:"payerType"`
	BusinessSector         *int   `json:"businessSector"`
	TaxpayerClassification *int   `json:"taxpayerClassification"`
	PublicEntity           *int   `json:"publicEntity"`
}

type FiscalDetailsInput struct {
	IssWithholding             *int `json:"issWithholding"`
	IssRegime                  *int `json:"issRegime"`
	IssTaxpayer                bool `json:"issTaxpayer"`
	SimplesNacionalParticipant bool `json:"simplesNacionalParticipant"`
	CooperativeMember          bool `json:"cooperativeMember"`
	WithholdingTaxNature       *int `json:"withholdingTaxNature"`
}

type CompanyInformationInput struct {
	CompanySize    *int   `json:"companySize"`
	IcmsTaxpayer   *int   `json:"icmsTaxpayer"`
	TaxationRegime *int   `json:"taxationRegime"`
	IncomeType     *int   `json:"incomeType"`
	TaxationMethod *int   `json:"taxationMethod"`
	CustomerType   *int   `json:"customerType"`
	Nit            string `json:"nit" validate:"max=20"`
}

const (
	msgRequired       = "Este campo é obrigatório."
	msgEndBeforeStart = "A data de término deve ser posterior à data de início."
	msgNegativeValue  = "Certifique-se de que este valor seja maior ou igual a 0."
	msgMaxDigits      = "Certifique-se de que não tenha mais de 15 dígitos no total."
)

var maxMoney = decimal.RequireFromString("9999999999999.99")

// check runs the rules struct tags cannot express. Address and contact are only
// required when creating.
func (in *SupplierInput) check(verr *validation.Error, creating bool) {
	if creating && in.Address == nil {
		verr.Add("address", msgRequired)
	}
	if creating && in.Contact == nil {
		verr.Add("contact", msgRequired)
	}
	if c := in.Contract; c != nil && c.ContractStartDate != nil && c.ContractEndDate != nil &&
		c.ContractEndDate.Before(c.ContractStartDate.Time) {
		verr.Add("contract.contractEndDate", msgEndBeforeStart)
	}
	if p := in.PaymentDetails; p != nil {
		checkMoney(verr, "paymentDetails.contractTotalValue", p.ContractTotalValue)
		checkMoney(verr, "paymentDetails.contractMonthlyValue", p.ContractMonthlyValue)
	}
}

func checkMoney(verr *validation.Error, field string, v decimal.Decimal) {
	switch {
	case v.IsNegative():
		verr.Add(field, msgNegativeValue)
	case v.GreaterThan(maxMoney):
		verr.Add(field, msgMaxDigits)
	}
}

// normalize strips punctuation from the tax id and postal code.
func (in *SupplierInput) normalize() {
	in.TaxID = brdoc.OnlyDigits(in.TaxID)
	if in.Address != nil {
		if cep, ok := brdoc.NormalizeCEP(in.Address.PostalCode); ok {
			in.Address.PostalCode = cep
		}
	}
}

// apply writes the input over s. Top-level fields are replaced; a nil section
// leaves the stored one untouched.
func (in *SupplierInput) apply(s *model.Supplier) {
	s.TradeName = in.TradeName
	s.LegalName = in.LegalName
	s.TaxID = in.TaxID
	s.StateBusinessRegistration = in.StateBusinessRegistration
	s.MunicipalBusinessRegistration = in.MunicipalBusinessRegistration
	s.Classification = model.RefOf(in.Classification)
	s.Category = model.RefOf(in.Category)
	s.RiskLevel = model.RefOf(in.RiskLevel)
	s.Type = model.RefOf(in.Type)

	if a := in.Address; a != nil {
		if a.PostalCode != s.Address.PostalCode {
			// resolved again from the new code
			s.Address.Street, s.Address.Neighbourhood, s.Address.City, s.Address.State = "", "", "", ""
		}
		s.Address.PostalCode = a.PostalCode
		s.Address.Number = a.Number
		s.Address.Complement = a.Complement
	}
	if c := in.Contact; c != nil {
		s.Contact = model.Contact{Email: c.Email, Phone: c.Phone}
	}
	if c := in.Contract; c != nil {
		s.Contract = model.Contract{
			ObjectContract:         c.ObjectContract,
			ExecutedActivities:     c.ExecutedActivities,
			ContractStartDate:      c.ContractStartDate,
			ContractEndDate:        c.ContractEndDate,
			ContractType:           c.ContractType,
			ContractPeriod:         c.ContractPeriod,
			HasContractRenewal:     c.HasContractRenewal,
			WarningContractRenewal: c.WarningContractRenewal,
			WarningContractPeriod:  c.WarningContractPeriod,
			WarningOnTermination:   c.WarningOnTermination,
			WarningOnRenewal:       c.WarningOnRenewal,
			WarningOnPeriod:        c.WarningOnPeriod,
		}
	}
	if p := in.PaymentDetails; p != nil {
		s.PaymentDetails = model.PaymentDetails{
			PaymentFrequency:     p.PaymentFrequency,
			PaymentDate:          p.PaymentDate,
			ContractTotalValue:   p.ContractTotalValue,
			ContractMonthlyValue: p.ContractMonthlyValue,
			CheckingAccount:      p.CheckingAccount,
			Bank:                 p.Bank,
			Agency:               p.Agency,
			PaymentMethod:        model.RefOf(p.PaymentMethod),
			PixKeyType:           model.RefOf(p.PixKeyType),
			PixKey:               p.PixKey,
		}
	}
	if o := in.OrganizationalDetails; o != nil {
		s.OrganizationalDetails = model.OrganizationalDetails{
			CostCenter:             o.CostCenter,
			BusinessUnit:           o.BusinessUnit,
			ResponsibleExecutive:   o.ResponsibleExecutive,
			PayerType:              model.RefOf(o.PayerType),
			BusinessSector:         model.RefOf(o.BusinessSector),
			TaxpayerClassification: model.RefOf(o.TaxpayerClassification),
			PublicEntity:           model.RefOf(o.PublicEntity),
		}
	}
	if f := in.FiscalDetails; f != nil {
		s.FiscalDetails = model.FiscalDetails{
			IssWithholding:             model.RefOf(f.IssWithholding),
			IssRegime:                  model.RefOf(f.IssRegime),
			IssTaxpayer:                f.IssTaxpayer,
			SimplesNacionalParticipant: f.SimplesNacionalParticipant,
			CooperativeMember:          f.CooperativeMember,
			WithholdingTaxNature:       model.RefOf(f.WithholdingTaxNature),
		}
	}
	if c := in.CompanyInformation; c != nil {
		s.CompanyInformation = model.CompanyInformation{
			CompanySize:    model.RefOf(c.CompanySize),
			IcmsTaxpayer:   model.RefOf(c.IcmsTaxpayer),
			TaxationRegime: model.RefOf(c.TaxationRegime),
			IncomeType:     model.RefOf(c.IncomeType),
			TaxationMethod: model.RefOf(c.TaxationMethod),
			CustomerType:   model.RefOf(c.CustomerType),
			Nit:            c.Nit,
		}
	}
}

// inputOf renders a stored supplier as a complete input, the base a partial
// update is merged onto.
func inputOf(s *model.Supplier) SupplierInput {
	return SupplierInput{
		TradeName:                     s.TradeName,
		LegalName:                     s.LegalName,
		TaxID:                         s.TaxID,
		StateBusinessRegistration:     s.StateBusinessRegistration,
		MunicipalBusinessRegistration: s.MunicipalBusinessRegistration,
		Classification:                model.RefID(s.Classification),
		Category:                      model.RefID(s.Category),
		RiskLevel:                     model.RefID(s.RiskLevel),
		Type:                          model.RefID(s.Type),
		Address: &AddressInput{
			PostalCode: s.Address.PostalCode,
			Number:     s.Address.Number,
			Complement: s.Address.Complement,
		},
		Contact: &ContactInput{Email: s.Contact.Email, Phone: s.Contact.Phone},
		Contract: &ContractInput{
			ObjectContract:         s.Contract.ObjectContract,
			ExecutedActivities:     s.Contract.ExecutedActivities,
			ContractStartDate:      s.Contract.ContractStartDate,
			ContractEndDate:        s.Contract.ContractEndDate,
			ContractType:           s.Contract.ContractType,
			ContractPeriod:         s.Contract.ContractPeriod,
			HasContractRenewal:     s.Contract.HasContractRenewal,
			WarningContractRenewal: s.Contract.WarningContractRenewal,
			WarningContractPeriod:  s.Contract.WarningContractPeriod,
			WarningOnTermination:   s.Contract.WarningOnTermination,
			WarningOnRenewal:       s.Contract.WarningOnRenewal,
			WarningOnPeriod:        s.Contract.WarningOnPeriod,
		},
		PaymentDetails: &PaymentDetailsInput{
			PaymentFrequency:     s.PaymentDetails.PaymentFrequency,
			PaymentDate:          s.PaymentDetails.PaymentDate,
			ContractTotalValue:   s.PaymentDetails.ContractTotalValue,
			ContractMonthlyValue: s.PaymentDetails.ContractMonthlyValue,
			CheckingAccount:      s.PaymentDetails.CheckingAccount,
			Bank:                 s.PaymentDetails.Bank,
			Agency:               s.PaymentDetails.Agency,
			PaymentMethod:        model.RefID(s.PaymentDetails.PaymentMethod),
			PixKeyType:           model.RefID(s.PaymentDetails.PixKeyType),
			PixKey:               s.PaymentDetails.PixKey,
		},
		OrganizationalDetails: &OrganizationalDetailsInput{
			CostCenter:             s.OrganizationalDetails.CostCenter,
			BusinessUnit:           s.OrganizationalDetails.BusinessUnit,
			ResponsibleExecutive:   s.OrganizationalDetails.ResponsibleExecutive,
			PayerType:              model.RefID(s.OrganizationalDetails.PayerType),
			BusinessSector:         model.RefID(s.OrganizationalDetails.BusinessSector),
			TaxpayerClassification: model.RefID(s.OrganizationalDetails.TaxpayerClassification),
			PublicEntity:           model.RefID(s.OrganizationalDetails.PublicEntity),
		},
		FiscalDetails: &FiscalDetailsInput{
			IssWithholding:             model.RefID(s.FiscalDetails.IssWithholding),
			IssRegime:                  model.RefID(s.FiscalDetails.IssRegime),
			IssTaxpayer:                s.FiscalDetails.IssTaxpayer,
			SimplesNacionalParticipant: s.FiscalDetails.SimplesNacionalParticipant,
			CooperativeMember:          s.FiscalDetails.CooperativeMember,
			WithholdingTaxNature:       model.RefID(s.FiscalDetails.WithholdingTaxNature),
		},
		CompanyInformation: &CompanyInformationInput{
			CompanySize:    model.RefID(s.CompanyInformation.CompanySize),
			IcmsTaxpayer:   model.RefID(s.CompanyInformation.IcmsTaxpayer),
			TaxationRegime: model.RefID(s.CompanyInformation.TaxationRegime),
			IncomeType:     model.RefID(s.CompanyInformation.IncomeType),
			TaxationMethod: model.RefID(s.CompanyInformation.TaxationMethod),
			CustomerType:   model.RefID(s.CompanyInformation.CustomerType),
			Nit:            s.CompanyInformation.Nit,
		},
	}
}
