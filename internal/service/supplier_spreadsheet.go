package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"supplierapi/internal/brdoc"
	"supplierapi/internal/logger"
	"supplierapi/internal/model"
	"supplierapi/internal/repository"
	"supplierapi/internal/validation"
)

// ImportReport summarizes a spreadsheet import.
type ImportReport struct {
	TotalRows     int      `json:"totalRows"`
	SuccessCount  int      `json:"successCount"`
	SkippedCount  int      `json:"skippedCount"`
	ErrorCount    int      `json:"errorCount"`
	SkippedItems  []string `json:"skippedItems"`
	ErrorMessages []string `json:"errorMessages"`
}

// importColumns is the expected header of an import sheet, in order.
var importColumns = []string{
	"Razão Social",
	"Nome Fantasia",
	"CPF/CNPJ",
	"Inscrição Estadual",
	"Inscrição Municipal",
	"CEP",
	"Número",
	"Complemento",
	"E-mail",
	"Telefone",
}

const (
	exportSheet    = "Fornecedores"
	exportPageSize = 100
)

var exportColumns = []string{
	"Razão Social",
	"Nome Fantasia",
	"CPF/CNPJ",
	"Inscrição Estadual",
	"Inscrição Municipal",
	"CEP",
	"Logradouro",
	"Número",
	"Complemento",
	"Bairro",
	"Cidade",
	"UF",
	"E-mail",
	"Telefone",
	"Classificação",
	"Categoria",
	"Nível de Risco",
	"Tipo",
	"Situação",
	"Cadastro Completo",
	"Criado em",
}

func (s *supplierService) Import(ctx context.Context, r io.Reader) (*ImportReport, error) {
	if r == nil {
		return nil, ErrReaderNil
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, validation.NewError("file", "Não foi possível ler a planilha.")
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, validation.NewError("file", "A planilha não possui abas.")
	}
	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	if len(rows) < 2 {
		return nil, validation.NewError("file", "A planilha deve conter o cabeçalho e pelo menos uma linha.")
	}

	report := &ImportReport{
		TotalRows:     len(rows) - 1,
		SkippedItems:  []string{},
		ErrorMessages: []string{},
	}
	fail := func(rowNum int, msg string) {
		report.ErrorCount++
		report.ErrorMessages = append(report.ErrorMessages, fmt.Sprintf("Linha %d: %s", rowNum, msg))
	}

	for i, row := range rows[1:] {
		rowNum := i + 2
		if blankRow(row) {
			report.TotalRows--
			continue
		}

		in, err := inputFromRow(row)
		if err != nil {
			fail(rowNum, err.Error())
			continue
		}

		taxID := brdoc.OnlyDigits(in.TaxID)
		if taxID != "" {
			exists, err := s.Suppliers.ExistsByTaxID(ctx, taxID, "")
			if err != nil {
				return nil, err
			}
			if exists {
				report.SkippedCount++
				report.SkippedItems = append(report.SkippedItems, taxID)
				continue
			}
		}

		if _, err := s.Create(ctx, in); err != nil {
			var verr *validation.Error
			if !errors.As(err, &verr) {
				return nil, fmt.Errorf("row %d: %w", rowNum, err)
			}
			for _, fe := range verr.Fields {
				fail(rowNum, fe.Field+": "+fe.Message)
			}
			continue
		}
		report.SuccessCount++
	}

	logger.FromContext(ctx).Info("suppliers_imported",
		zap.Int("total", report.TotalRows),
		zap.Int("success", report.SuccessCount),
		zap.Int("skipped", report.SkippedCount),
		zap.Int("errors", report.ErrorCount),
	)
	return report, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// inputFromRow maps one sheet row, laid out as importColumns, to a supplier input.
func inputFromRow(row []string) (*SupplierInput, error) {
	cell := func(i int) string {
		if i < len(row) {
			return strings.TrimSpace(row[i])
		}
		return ""
	}

	in := &SupplierInput{
		LegalName:                     cell(0),
		TradeName:                     cell(1),
		TaxID:                         cell(2),
		StateBusinessRegistration:     cell(3),
		MunicipalBusinessRegistration: cell(4),
		Address:                       &AddressInput{PostalCode: cell(5), Complement: cell(7)},
		Contact:                       &ContactInput{Email: cell(8), Phone: brdoc.OnlyDigits(cell(9))},
	}
	if n := cell(6); n != "" {
		num, err := strconv.Atoi(n)
		if err != nil {
			return nil, fmt.Errorf("%s: Informe um número inteiro válido.", importColumns[6])
		}
		in.Address.Number = num
	}
	return in, nil
}

func (s *supplierService) Export(ctx context.Context, filter repository.SupplierFilter, w io.Writer) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), exportSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	if err := writeRow(f, 1, toCells(exportColumns)); err != nil {
		return err
	}

	rowNum := 2
	for offset := 0; ; offset += exportPageSize {
		res, err := s.Suppliers.List(ctx, filter, repository.PageQuery{Limit: exportPageSize, Offset: offset})
		if err != nil {
			return err
		}
		if err := s.hydrate(ctx, pointers(res.Items)...); err != nil {
			return err
		}
		for i := range res.Items {
			if err := writeRow(f, rowNum, exportCells(&res.Items[i])); err != nil {
				return err
			}
			rowNum++
		}
		if len(res.Items) < exportPageSize || offset+len(res.Items) >= res.Total {
			break
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	logger.FromContext(ctx).Info("suppliers_exported", zap.Int("rows", rowNum-2))
	return nil
}

func writeRow(f *excelize.File, row int, values []any) error {
	for col, v := range values {
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(exportSheet, cell, v); err != nil {
			return fmt.Errorf("set cell %s: %w", cell, err)
		}
	}
	return nil
}

func toCells(values []string) []any {
	out := make([]any, len(values))
	for i, v := range values {
		out[i] = v
	}
	return out
}

func refName(r *model.DomainRef) string {
	if r == nil {
		return ""
	}
	return r.Name
}

func exportCells(sup *model.Supplier) []any {
	situation := ""
	if sup.Situation != nil {
		situation = sup.Situation.Name
		if sup.Situation.Pendency != "" {
			situation += " - " + sup.Situation.Pendency
		}
	}
	complete := "Não"
	if sup.IsCompletedRegistration {
		complete = "Sim"
	}
	return []any{
		sup.LegalName,
		sup.TradeName,
		brdoc.FormatTaxID(sup.TaxID),
		sup.StateBusinessRegistration,
		sup.MunicipalBusinessRegistration,
		sup.Address.PostalCode,
		sup.Address.Street,
		sup.Address.Number,
		sup.Address.Complement,
		sup.Address.Neighbourhood,
		sup.Address.City,
		sup.Address.State,
		sup.Contact.Email,
		sup.Contact.Phone,
		refName(sup.Classification),
		refName(sup.Category),
		refName(sup.RiskLevel),
		refName(sup.Type),
		situation,
		complete,
		sup.CreatedAt.Format("02/01/2006 15:04"),
	}
}
