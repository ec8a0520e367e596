package migration

import (
	"fmt"
	"strings"

	"supplierapi/internal/model"
)

// domainSeeds holds the initial values of each lookup list, inserted in order.
var domainSeeds = []struct {
	Kind  model.DomainKind
	Names []string
}{
	{model.KindClassification, []string{"Produto", "Serviço", "Produto e Serviço"}},
	{model.KindCategory, []string{"Tecnologia", "Facilities", "Consultoria", "Logística", "Marketing", "Jurídico"}},
	{model.KindRiskLevel, []string{"Baixo", "Médio", "Alto"}},
	{model.KindSupplierType, []string{"Pessoa Jurídica", "Pessoa Física", "Estrangeiro"}},
	{model.KindPixType, []string{"CPF", "CNPJ", "E-mail", "Telefone", "Chave Aleatória"}},
	{model.KindPaymentMethod, []string{"Boleto", "Transferência Bancária", "PIX", "Cartão de Crédito"}},
	{model.KindPayerType, []string{"Matriz", "Filial"}},
	{model.KindBusinessSector, []string{"Indústria", "Comércio", "Serviços", "Agronegócio"}},
	{model.KindCompanySize, []string{"MEI", "Microempresa", "Empresa de Pequeno Porte", "Médio Porte", "Grande Porte"}},
	{model.KindCustomerType, []string{"Nacional", "Internacional"}},
	{model.KindTaxpayerClassification, []string{"Contribuinte", "Não Contribuinte", "Isento"}},
	{model.KindTaxationRegime, []string{"Simples Nacional", "Lucro Presumido", "Lucro Real"}},
	{model.KindTaxationMethod, []string{"Regime de Caixa", "Regime de Competência"}},
	{model.KindIcmsTaxpayer, []string{"Contribuinte ICMS", "Contribuinte Isento", "Não Contribuinte"}},
	{model.KindWithholdingTax, []string{"Serviços Profissionais", "Limpeza e Conservação", "Sem Retenção"}},
	{model.KindIssWithholding, []string{"Retido na Fonte", "Não Retido"}},
	{model.KindIssRegime, []string{"Normal", "Estimativa", "Sociedade de Profissionais", "Microempreendedor Individual"}},
	{model.KindIncomeType, []string{"Rendimento do Trabalho", "Aluguéis", "Serviços"}},
	{model.KindPublicEntity, []string{"Sim", "Não"}},
}

// attachmentTypeSeeds maps attachment type names to the risk level that requires them.
// An empty risk level means the document is required from every supplier.
var attachmentTypeSeeds = []struct {
	Name      string
	RiskLevel string
}{
	{"Contrato Social", ""},
	{"Cartão CNPJ", ""},
	{"Comprovante de Dados Bancários", ""},
	{"Certidão Negativa de Débitos", "Médio"},
	{"Certidão de Regularidade Trabalhista", "Alto"},
	{"Relatório de Due Diligence", "Alto"},
}

func quote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func seedSteps() []migrationStep {
	out := make([]migrationStep, 0, len(domainSeeds)+2)
	for _, seed := range domainSeeds {
		rows := make([]string, 0, len(seed.Names))
		for _, name := range seed.Names {
			rows = append(rows, fmt.Sprintf("(%s, %s)", quote(string(seed.Kind)), quote(name)))
		}
		out = append(out, migrationStep{
			Name: "seed_" + strings.ReplaceAll(string(seed.Kind), "-", "_"),
			SQL:  "INSERT INTO domain_values (kind, name) VALUES " + strings.Join(rows, ", ") + ";",
		})
	}

	situations := []string{
		fmt.Sprintf("(%s, %s, NULL)", quote(string(model.KindSupplierSituation)), quote(model.SituationActive)),
	}
	for _, p := range []model.PendencyType{
		model.PendencyRegistration, model.PendencyDocumentation, model.PendencyMatrix, model.PendencyEvaluation,
	} {
		situations = append(situations, fmt.Sprintf("(%s, %s, %d)",
			quote(string(model.KindSupplierSituation)), quote(model.SituationPending), int(p)))
	}
	situations = append(situations,
		fmt.Sprintf("(%s, %s, NULL)", quote(string(model.KindSupplierSituation)), quote(model.SituationInactive)))
	out = append(out, migrationStep{
		Name: "seed_supplier_situations",
		SQL:  "INSERT INTO domain_values (kind, name, pendency_type) VALUES " + strings.Join(situations, ", ") + ";",
	})

	types := make([]string, 0, len(attachmentTypeSeeds))
	for _, at := range attachmentTypeSeeds {
		risk := "NULL"
		if at.RiskLevel != "" {
			risk = fmt.Sprintf("(SELECT id FROM domain_values WHERE kind = %s AND name = %s)",
				quote(string(model.KindRiskLevel)), quote(at.RiskLevel))
		}
		types = append(types, fmt.Sprintf("(%s, %s, %s)", quote(string(model.KindAttachmentType)), quote(at.Name), risk))
	}
	out = append(out, migrationStep{
		Name: "seed_attachment_types",
		SQL:  "INSERT INTO domain_values (kind, name, risk_level_id) VALUES " + strings.Join(types, ", ") + ";",
	})
	return out
}
