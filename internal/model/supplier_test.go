package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ref(id int) *DomainRef { return &DomainRef{ID: id, Name: "x"} }

func completeSupplier() *Supplier {
	start := NewDate(2025, 1, 1)
	end := NewDate(2026, 1, 1)
	return &Supplier{
		TradeName:                     "Acme",
		LegalName:                     "Acme Ltda",
		TaxID:                         "11222333000181",
		StateBusinessRegistration:     "123",
		MunicipalBusinessRegistration: "456",
		Classification:                ref(1),
		Category:                      ref(2),
		RiskLevel:                     ref(3),
		Type:                          ref(4),
		Address:                       Address{PostalCode: "01001000", Street: "Praça da Sé", City: "São Paulo", State: "SP"},
		Contact:                       Contact{Email: "a@acme.com", Phone: "11999999999"},
		Contract: Contract{
			ObjectContract: "Limpeza", ContractType: "Serviço",
			ContractStartDate: &start, ContractEndDate: &end,
		},
		PaymentDetails: PaymentDetails{
			PaymentFrequency: "Mensal", Bank: "001", Agency: "1234", CheckingAccount: "5678",
			PaymentMethod: ref(5),
		},
		OrganizationalDetails: OrganizationalDetails{
			CostCenter: "CC1", BusinessUnit: "BU", ResponsibleExecutive: "Maria",
			PayerType: ref(6), BusinessSector: ref(7), TaxpayerClassification: ref(8), PublicEntity: ref(9),
		},
		FiscalDetails: FiscalDetails{IssWithholding: ref(10), IssRegime: ref(11), WithholdingTaxNature: ref(12)},
		CompanyInformation: CompanyInformation{
			CompanySize: ref(13), IcmsTaxpayer: ref(14), TaxationRegime: ref(15),
			IncomeType: ref(16), TaxationMethod: ref(17), CustomerType: ref(18),
		},
	}
}

func TestSupplier_MissingFields(t *testing.T) {
	s := completeSupplier()
	assert.Empty(t, s.MissingFields())
	assert.True(t, s.RegistrationComplete())

	s.PaymentDetails.PixKey = "chave"
	assert.Equal(t, []string{"paymentDetails.pixKeyType"}, s.MissingFields())

	s.PaymentDetails.PixKey = ""
	s.Contact.Phone = ""
	s.RiskLevel = nil
	assert.Equal(t, []string{"contact.phone", "riskLevel"}, s.MissingFields())
	assert.False(t, s.RegistrationComplete())
}

func TestSupplier_DomainRefs(t *testing.T) {
	s := &Supplier{}
	slots := s.DomainRefs()
	require.Len(t, slots, 19)

	*slots[0].Ref = &DomainRef{ID: 7}
	assert.Equal(t, 7, s.Classification.ID)
	assert.Equal(t, KindClassification, slots[0].Kind)
}

func TestSupplier_JSONShape(t *testing.T) {
	s := completeSupplier()
	s.CreatedAt = time.Date(2025, 2, 1, 10, 0, 0, 0, time.UTC)

	b, err := json.Marshal(s)
	require.NoError(t, err)

	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	assert.Equal(t, "Acme Ltda", out["legalName"])
	assert.Equal(t, "01001000", out["address"].(map[string]any)["postalCode"])
	assert.Equal(t, "2025-01-01", out["contract"].(map[string]any)["contractStartDate"])
	assert.Equal(t, "0", out["paymentDetails"].(map[string]any)["contractTotalValue"])
	assert.Equal(t, float64(3), out["riskLevel"].(map[string]any)["id"])
}

func TestDocumentationComplete(t *testing.T) {
	low, high := 1, 2
	types := []DomainValue{
		{ID: 10, Name: "Contrato social"},
		{ID: 11, Name: "Certidão", RiskLevelID: &high},
		{ID: 12, Name: "Alvará", RiskLevelID: &low},
	}

	assert.False(t, DocumentationComplete(types, &DomainRef{ID: low}, nil))
	assert.False(t, DocumentationComplete(types, &DomainRef{ID: low}, []Attachment{{AttachmentTypeID: 10}}))
	assert.True(t, DocumentationComplete(types, &DomainRef{ID: low}, []Attachment{{AttachmentTypeID: 10}, {AttachmentTypeID: 12}}))
	assert.True(t, DocumentationComplete(types, nil, []Attachment{{AttachmentTypeID: 10}}))
}

func TestTargetSituation(t *testing.T) {
	active := TargetSituation(true, true, true)
	assert.Equal(t, SituationActive, active.Name)
	assert.Nil(t, active.Pendency)

	pending := TargetSituation(true, false, false)
	assert.Equal(t, SituationPending, pending.Name)
	require.NotNil(t, pending.Pendency)
	assert.Equal(t, PendencyDocumentation, *pending.Pendency)

	reg := TargetSituation(false, true, false)
	assert.Equal(t, PendencyRegistration, *reg.Pendency)

	p := PendencyDocumentation
	assert.True(t, pending.Matches(&SituationEntry{Name: SituationPending, PendencyType: &p}))
	assert.False(t, reg.Matches(&SituationEntry{Name: SituationPending, PendencyType: &p}))
	assert.False(t, active.Matches(nil))
	assert.True(t, active.Matches(&SituationEntry{Name: SituationActive}))
}

func TestDate(t *testing.T) {
	var d Date
	require.NoError(t, json.Unmarshal([]byte(`"2025-03-09"`), &d))
	assert.Equal(t, "2025-03-09", d.String())

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2025-03-09"`, string(b))

	assert.Error(t, json.Unmarshal([]byte(`"09/03/2025"`), &d))

	var scanned Date
	require.NoError(t, scanned.Scan(time.Date(2025, 3, 9, 15, 0, 0, 0, time.UTC)))
	assert.Equal(t, "2025-03-09", scanned.String())
}
