package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"supplierapi/internal/model"
	"supplierapi/internal/repository"
)

func workbook(t *testing.T, rows ...[]any) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}
	buf := new(bytes.Buffer)
	require.NoError(t, f.Write(buf))
	return buf
}

func header() []any {
	out := make([]any, len(importColumns))
	for i, c := range importColumns {
		out[i] = c
	}
	return out
}

func TestSupplierService_Import(t *testing.T) {
	ctx := context.Background()

	t.Run("creates, skips and reports rows", func(t *testing.T) {
		f := newSupplierFixture()
		buf := workbook(t,
			header(),
			[]any{"Acme Comércio LTDA", "Acme", "11.222.333/0001-81", "", "", "01001-000", "10", "", "contato@acme.com.br", "(11) 99999-0000"},
			[]any{"Existente SA", "", "529.982.247-25", "", "", "01001000", "1"},
			[]any{},
			[]any{"Quebrada LTDA", "", "123", "", "", "01001000", "dez"},
			[]any{"Sem CPF LTDA", "", "00000000000", "", "", "01001000", "5"},
		)

		f.suppliers.On("ExistsByTaxID", ctx, validCNPJ, "").Return(false, nil)
		f.suppliers.On("ExistsByTaxID", ctx, "52998224725", "").Return(true, nil)
		f.suppliers.On("ExistsByTaxID", ctx, "00000000000", "").Return(false, nil)
		f.suppliers.On("ExistsByLegalName", ctx, "Acme Comércio LTDA", "").Return(false, nil)
		f.suppliers.On("ExistsByLegalName", ctx, "Sem CPF LTDA", "").Return(false, nil)
		f.suppliers.On("Create", ctx, mock.MatchedBy(func(s *model.Supplier) bool {
			return s.TaxID == validCNPJ && s.Contact.Phone == "11999990000" && s.Address.Number == 10
		})).Return(nil).Once()

		report, err := f.svc.Import(ctx, buf)
		require.NoError(t, err)
		assert.Equal(t, 4, report.TotalRows)
		assert.Equal(t, 1, report.SuccessCount)
		assert.Equal(t, 1, report.SkippedCount)
		assert.Equal(t, []string{"52998224725"}, report.SkippedItems)
		assert.Equal(t, 2, report.ErrorCount)
		require.Len(t, report.ErrorMessages, 2)
		assert.Equal(t, "Linha 5: Número: Informe um número inteiro válido.", report.ErrorMessages[0])
		assert.Equal(t, "Linha 6: taxId: CPF/CNPJ inválido.", report.ErrorMessages[1])
		f.assertExpectations(t)
	})

	t.Run("header only", func(t *testing.T) {
		f := newSupplierFixture()
		_, err := f.svc.Import(ctx, workbook(t, header()))
		assert.Contains(t, fieldsOf(t, err), "file")
	})

	t.Run("not a workbook", func(t *testing.T) {
		f := newSupplierFixture()
		_, err := f.svc.Import(ctx, strings.NewReader("razao;cnpj"))
		assert.Equal(t, "Não foi possível ler a planilha.", fieldsOf(t, err)["file"])
	})

	t.Run("nil reader", func(t *testing.T) {
		f := newSupplierFixture()
		_, err := f.svc.Import(ctx, nil)
		assert.ErrorIs(t, err, ErrReaderNil)
	})
}

func TestSupplierService_Export(t *testing.T) {
	ctx := context.Background()
	f := newSupplierFixture()
	filter := repository.SupplierFilter{RiskLevelID: intPtr(3)}
	created := time.Date(2025, 3, 2, 14, 30, 0, 0, time.UTC)

	f.suppliers.On("List", ctx, filter, repository.PageQuery{Limit: exportPageSize, Offset: 0}).
		Return(&repository.PageResult[model.Supplier]{
			Items: []model.Supplier{{
				LegalName: "Acme Comércio LTDA",
				TaxID:     validCNPJ,
				RiskLevel: &model.DomainRef{ID: 3},
				Situation: &model.SituationEntry{Name: model.SituationPending, Pendency: "PENDÊNCIA DE CADASTRO"},
				CreatedAt: created,
			}},
			Total: 1,
		}, nil)
	f.domains.On("FindByIDs", ctx, []int{3}).
		Return(map[int]model.DomainValue{3: {ID: 3, Kind: model.KindRiskLevel, Name: "Alto"}}, nil)

	buf := new(bytes.Buffer)
	require.NoError(t, f.svc.Export(ctx, filter, buf))

	wb, err := excelize.OpenReader(buf)
	require.NoError(t, err)
	defer wb.Close()
	rows, err := wb.GetRows(exportSheet)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "Razão Social", rows[0][0])
	assert.Equal(t, "Acme Comércio LTDA", rows[1][0])
	assert.Equal(t, "11.222.333/0001-81", rows[1][2])
	assert.Equal(t, "Alto", rows[1][16])
	assert.Equal(t, "PENDENTE - PENDÊNCIA DE CADASTRO", rows[1][18])
	assert.Equal(t, "Não", rows[1][19])
	assert.Equal(t, "02/03/2025 14:30", rows[1][20])
	f.assertExpectations(t)
}
