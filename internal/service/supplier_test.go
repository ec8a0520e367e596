package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"supplierapi/internal/cep"
	"supplierapi/internal/model"
	"supplierapi/internal/repository"
	repoMocks "supplierapi/internal/repository/mocks"
	storeMocks "supplierapi/internal/storage/mocks"
	"supplierapi/internal/validation"
)

const (
	validCNPJ = "11222333000181"
	validCEP  = "01001000"
)

type stubCEP struct {
	addr  *cep.Address
	err   error
	calls int
}

func (s *stubCEP) Lookup(context.Context, string) (*cep.Address, error) {
	s.calls++
	return s.addr, s.err
}

type stubSituations struct {
	entry     *model.SituationEntry
	err       error
	refreshed []string
}

func (s *stubSituations) Refresh(_ context.Context, sup *model.Supplier) (*model.SituationEntry, error) {
	s.refreshed = append(s.refreshed, sup.ID)
	return s.entry, s.err
}

func (s *stubSituations) History(context.Context, string) ([]model.SituationEntry, error) {
	return nil, nil
}

type supplierFixture struct {
	suppliers   *repoMocks.MockSupplierRepository
	domains     *repoMocks.MockDomainRepository
	attachments *repoMocks.MockAttachmentRepository
	store       *storeMocks.MockStorage
	cep         *stubCEP
	situations  *stubSituations
	svc         SupplierService
}

func newSupplierFixture() *supplierFixture {
	f := &supplierFixture{
		suppliers:   new(repoMocks.MockSupplierRepository),
		domains:     new(repoMocks.MockDomainRepository),
		attachments: new(repoMocks.MockAttachmentRepository),
		store:       new(storeMocks.MockStorage),
		cep: &stubCEP{addr: &cep.Address{
			CEP: validCEP, Street: "Praça da Sé", Neighbourhood: "Sé", City: "São Paulo", State: "SP",
		}},
		situations: &stubSituations{entry: &model.SituationEntry{SituationID: 21, Name: model.SituationPending}},
	}
	f.svc = NewSupplierService(SupplierDeps{
		Suppliers:   f.suppliers,
		Domains:     f.domains,
		Attachments: f.attachments,
		Store:       f.store,
		Situations:  f.situations,
		CEP:         f.cep,
		Validator:   validation.New(),
	})
	return f
}

func (f *supplierFixture) assertExpectations(t *testing.T) {
	f.suppliers.AssertExpectations(t)
	f.domains.AssertExpectations(t)
	f.attachments.AssertExpectations(t)
	f.store.AssertExpectations(t)
}

func intPtr(v int) *int { return &v }

func minimalInput() *SupplierInput {
	return &SupplierInput{
		LegalName: "Acme Comércio LTDA",
		TradeName: "Acme",
		TaxID:     "11.222.333/0001-81",
		RiskLevel: intPtr(3),
		Address:   &AddressInput{PostalCode: "01001-000", Number: 100},
		Contact:   &ContactInput{Email: "contato@acme.com.br", Phone: "11999990000"},
	}
}

func fieldsOf(t *testing.T, err error) map[string]string {
	t.Helper()
	var verr *validation.Error
	require.ErrorAs(t, err, &verr)
	out := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		out[f.Field] = f.Message
	}
	return out
}

func TestSupplierService_Create(t *testing.T) {
	ctx := context.Background()
	riskLevels := map[int]model.DomainValue{3: {ID: 3, Kind: model.KindRiskLevel, Name: "Alto"}}

	t.Run("happy path", func(t *testing.T) {
		f := newSupplierFixture()
		f.domains.On("FindByIDs", ctx, []int{3}).Return(riskLevels, nil)
		f.suppliers.On("ExistsByLegalName", ctx, "Acme Comércio LTDA", "").Return(false, nil)
		f.suppliers.On("ExistsByTaxID", ctx, validCNPJ, "").Return(false, nil)
		f.suppliers.On("Create", ctx, mock.MatchedBy(func(s *model.Supplier) bool {
			return uuid.Validate(s.ID) == nil &&
				s.TaxID == validCNPJ &&
				s.Address.PostalCode == validCEP &&
				s.Address.City == "São Paulo" &&
				s.RiskLevel.Name == "Alto"
		})).Return(nil)

		sup, err := f.svc.Create(ctx, minimalInput())
		require.NoError(t, err)
		assert.Equal(t, "Praça da Sé", sup.Address.Street)
		assert.Equal(t, model.SituationPending, sup.Situation.Name)
		assert.False(t, sup.IsCompletedRegistration)
		assert.Equal(t, []string{sup.ID}, f.situations.refreshed)
		assert.Equal(t, 1, f.cep.calls)
		f.assertExpectations(t)
	})

	t.Run("payload errors are reported together", func(t *testing.T) {
		f := newSupplierFixture()
		in := &SupplierInput{TaxID: "11111111111"}

		_, err := f.svc.Create(ctx, in)
		fields := fieldsOf(t, err)
		assert.Equal(t, "Este campo é obrigatório.", fields["legalName"])
		assert.Equal(t, "CPF/CNPJ inválido.", fields["taxId"])
		assert.Equal(t, "Este campo é obrigatório.", fields["address"])
		assert.Equal(t, "Este campo é obrigatório.", fields["contact"])
		assert.Zero(t, f.cep.calls)
	})

	t.Run("cep not found", func(t *testing.T) {
		f := newSupplierFixture()
		f.cep.addr, f.cep.err = nil, cep.ErrCEPNotFound
		f.domains.On("FindByIDs", ctx, []int{3}).Return(riskLevels, nil)
		f.suppliers.On("ExistsByLegalName", ctx, mock.Anything, "").Return(false, nil)
		f.suppliers.On("ExistsByTaxID", ctx, mock.Anything, "").Return(false, nil)

		_, err := f.svc.Create(ctx, minimalInput())
		assert.Equal(t, "CEP não encontrado.", fieldsOf(t, err)["address.postalCode"])
		f.suppliers.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("unknown or mismatched domain reference", func(t *testing.T) {
		f := newSupplierFixture()
		in := minimalInput()
		in.Category = intPtr(99)
		f.domains.On("FindByIDs", ctx, []int{99, 3}).
			Return(map[int]model.DomainValue{3: {ID: 3, Kind: model.KindCategory, Name: "Serviços"}}, nil)
		f.suppliers.On("ExistsByLegalName", ctx, mock.Anything, "").Return(false, nil)
		f.suppliers.On("ExistsByTaxID", ctx, mock.Anything, "").Return(false, nil)

		_, err := f.svc.Create(ctx, in)
		fields := fieldsOf(t, err)
		assert.Equal(t, `Pk inválido "99" - objeto não existe.`, fields["category"])
		assert.Equal(t, `Pk inválido "3" - objeto não existe.`, fields["riskLevel"])
	})

	t.Run("legal name and tax id already taken", func(t *testing.T) {
		f := newSupplierFixture()
		f.domains.On("FindByIDs", ctx, []int{3}).Return(riskLevels, nil)
		f.suppliers.On("ExistsByLegalName", ctx, mock.Anything, "").Return(true, nil)
		f.suppliers.On("ExistsByTaxID", ctx, mock.Anything, "").Return(true, nil)

		_, err := f.svc.Create(ctx, minimalInput())
		fields := fieldsOf(t, err)
		assert.Equal(t, msgLegalNameTaken, fields["legalName"])
		assert.Equal(t, msgTaxIDTaken, fields["taxId"])
	})

	t.Run("unique violation on insert", func(t *testing.T) {
		f := newSupplierFixture()
		f.domains.On("FindByIDs", ctx, []int{3}).Return(riskLevels, nil)
		f.suppliers.On("ExistsByLegalName", ctx, mock.Anything, "").Return(false, nil)
		f.suppliers.On("ExistsByTaxID", ctx, mock.Anything, "").Return(false, nil)
		f.suppliers.On("Create", ctx, mock.Anything).
			Return(fmt.Errorf("%w: suppliers_tax_id_key", repository.ErrDuplicate))

		_, err := f.svc.Create(ctx, minimalInput())
		assert.Equal(t, msgTaxIDTaken, fieldsOf(t, err)["taxId"])
	})

	t.Run("situation refresh failure keeps the supplier", func(t *testing.T) {
		f := newSupplierFixture()
		f.situations.entry, f.situations.err = nil, errors.New("db fail")
		f.domains.On("FindByIDs", ctx, []int{3}).Return(riskLevels, nil)
		f.suppliers.On("ExistsByLegalName", ctx, mock.Anything, "").Return(false, nil)
		f.suppliers.On("ExistsByTaxID", ctx, mock.Anything, "").Return(false, nil)
		f.suppliers.On("Create", ctx, mock.Anything).Return(nil)

		sup, err := f.svc.Create(ctx, minimalInput())
		require.NoError(t, err)
		assert.Nil(t, sup.Situation)
	})
}

func TestSupplierService_Get(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()

	tests := []struct {
		name       string
		id         string
		setupMocks func(f *supplierFixture)
		wantErr    error
	}{
		{
			name: "happy path",
			id:   id,
			setupMocks: func(f *supplierFixture) {
				f.suppliers.On("FindByID", ctx, id).
					Return(&model.Supplier{ID: id, Category: &model.DomainRef{ID: 2}}, nil)
				f.domains.On("FindByIDs", ctx, []int{2}).
					Return(map[int]model.DomainValue{2: {ID: 2, Kind: model.KindCategory, Name: "Serviços"}}, nil)
			},
		},
		{
			name:       "validation - empty id",
			id:         "",
			setupMocks: func(f *supplierFixture) {},
			wantErr:    ErrIDRequired,
		},
		{
			name:       "validation - malformed id",
			id:         "not-a-uuid",
			setupMocks: func(f *supplierFixture) {},
			wantErr:    ErrInvalidID,
		},
		{
			name: "not found - mapping sql.ErrNoRows",
			id:   id,
			setupMocks: func(f *supplierFixture) {
				f.suppliers.On("FindByID", ctx, id).Return(nil, sql.ErrNoRows)
			},
			wantErr: ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSupplierFixture()
			tt.setupMocks(f)

			sup, err := f.svc.Get(ctx, tt.id)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, sup)
			} else {
				require.NoError(t, err)
				assert.Equal(t, "Serviços", sup.Category.Name)
			}
			f.assertExpectations(t)
		})
	}
}

func TestSupplierService_Patch(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()

	stored := func() *model.Supplier {
		return &model.Supplier{
			ID:        id,
			LegalName: "Acme Comércio LTDA",
			TradeName: "Acme",
			TaxID:     validCNPJ,
			Address: model.Address{
				PostalCode: validCEP, Number: 10, Street: "Praça da Sé", City: "São Paulo", State: "SP",
			},
			Contact: model.Contact{Email: "old@acme.com.br"},
		}
	}

	t.Run("only given keys change", func(t *testing.T) {
		f := newSupplierFixture()
		f.suppliers.On("FindByID", ctx, id).Return(stored(), nil)
		f.suppliers.On("ExistsByLegalName", ctx, "Acme Comércio LTDA", id).Return(false, nil)
		f.suppliers.On("ExistsByTaxID", ctx, validCNPJ, id).Return(false, nil)
		f.suppliers.On("Update", ctx, mock.MatchedBy(func(s *model.Supplier) bool {
			return s.Contact.Email == "new@acme.com.br" && s.TradeName == "Acme" && s.Address.Number == 10
		})).Return(nil)

		sup, err := f.svc.Patch(ctx, id, []byte(`{"contact":{"email":"new@acme.com.br"}}`))
		require.NoError(t, err)
		assert.Equal(t, "São Paulo", sup.Address.City)
		assert.Zero(t, f.cep.calls)
		f.assertExpectations(t)
	})

	t.Run("changed postal code is resolved again", func(t *testing.T) {
		f := newSupplierFixture()
		f.cep.addr = &cep.Address{CEP: "20040020", Street: "Av. Rio Branco", City: "Rio de Janeiro", State: "RJ"}
		f.suppliers.On("FindByID", ctx, id).Return(stored(), nil)
		f.suppliers.On("ExistsByLegalName", ctx, mock.Anything, id).Return(false, nil)
		f.suppliers.On("ExistsByTaxID", ctx, mock.Anything, id).Return(false, nil)
		f.suppliers.On("Update", ctx, mock.Anything).Return(nil)

		sup, err := f.svc.Patch(ctx, id, []byte(`{"address":{"postalCode":"20040-020"}}`))
		require.NoError(t, err)
		assert.Equal(t, "20040020", sup.Address.PostalCode)
		assert.Equal(t, "Rio de Janeiro", sup.Address.City)
		assert.Equal(t, 1, f.cep.calls)
	})

	t.Run("mistyped value", func(t *testing.T) {
		f := newSupplierFixture()
		f.suppliers.On("FindByID", ctx, id).Return(stored(), nil)

		_, err := f.svc.Patch(ctx, id, []byte(`{"address":{"number":"ten"}}`))
		assert.Equal(t, "Tipo de dado inválido.", fieldsOf(t, err)["address.number"])
	})
}

func TestSupplierService_Delete(t *testing.T) {
	ctx := context.Background()
	id := uuid.NewString()

	tests := []struct {
		name       string
		setupMocks func(f *supplierFixture)
		wantErr    string
	}{
		{
			name: "happy path",
			setupMocks: func(f *supplierFixture) {
				f.suppliers.On("FindByID", ctx, id).Return(&model.Supplier{ID: id}, nil)
				f.attachments.On("ListBySupplier", ctx, id).Return([]model.Attachment{
					{ID: "a1", StoragePath: "supplier_files/x/1.pdf"},
					{ID: "a2", StoragePath: "supplier_files/x/2.pdf"},
				}, nil)
				f.store.On("Delete", ctx, "supplier_files/x/1.pdf").Return(nil)
				f.store.On("Delete", ctx, "supplier_files/x/2.pdf").Return(nil)
				f.suppliers.On("Delete", ctx, id).Return(nil)
			},
		},
		{
			name: "storage delete error keeps the row",
			setupMocks: func(f *supplierFixture) {
				f.suppliers.On("FindByID", ctx, id).Return(&model.Supplier{ID: id}, nil)
				f.attachments.On("ListBySupplier", ctx, id).Return([]model.Attachment{{ID: "a1", StoragePath: "p"}}, nil)
				f.store.On("Delete", ctx, "p").Return(errors.New("storage fail"))
			},
			wantErr: "delete storage: storage fail",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSupplierFixture()
			tt.setupMocks(f)

			err := f.svc.Delete(ctx, id)
			if tt.wantErr != "" {
				assert.EqualError(t, err, tt.wantErr)
				f.suppliers.AssertNotCalled(t, "Delete", mock.Anything, mock.Anything)
			} else {
				assert.NoError(t, err)
			}
			f.assertExpectations(t)
		})
	}
}

func TestSupplierService_List(t *testing.T) {
	ctx := context.Background()
	f := newSupplierFixture()
	filter := repository.SupplierFilter{Search: "acme"}

	f.suppliers.On("List", ctx, filter, repository.PageQuery{Limit: 12, Offset: 12}).
		Return(&repository.PageResult[model.Supplier]{
			Items: []model.Supplier{
				{ID: "1", RiskLevel: &model.DomainRef{ID: 3}},
				{ID: "2", RiskLevel: &model.DomainRef{ID: 3}},
			},
			Total: 14,
		}, nil)
	f.domains.On("FindByIDs", ctx, []int{3, 3}).
		Return(map[int]model.DomainValue{3: {ID: 3, Kind: model.KindRiskLevel, Name: "Alto"}}, nil)

	res, err := f.svc.List(ctx, filter, Page{Number: 2})
	require.NoError(t, err)
	assert.Equal(t, 14, res.Total)
	assert.Equal(t, Page{Number: 2, Size: 12}, res.Page)
	require.Len(t, res.Items, 2)
	assert.Equal(t, "Alto", res.Items[1].RiskLevel.Name)
	f.assertExpectations(t)
}

func TestSupplierService_LookupCEP(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name  string
		err   error
		check func(t *testing.T, err error)
	}{
		{name: "found"},
		{
			name: "invalid format",
			err:  cep.ErrInvalidCEP,
			check: func(t *testing.T, err error) {
				assert.Equal(t, "Formato de CEP inválido.", fieldsOf(t, err)["cep"])
			},
		},
		{
			name: "not found",
			err:  cep.ErrCEPNotFound,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrNotFound)
				assert.EqualError(t, err, "CEP não encontrado.")
			},
		},
		{
			name: "all providers down",
			err:  cep.ErrCEPUnavailable,
			check: func(t *testing.T, err error) {
				assert.ErrorIs(t, err, ErrUnavailable)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSupplierFixture()
			if tt.err != nil {
				f.cep.addr, f.cep.err = nil, tt.err
			}
			addr, err := f.svc.LookupCEP(ctx, validCEP)
			if tt.check == nil {
				require.NoError(t, err)
				assert.Equal(t, "SP", addr.State)
				return
			}
			tt.check(t, err)
		})
	}
}
