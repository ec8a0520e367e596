package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"supplierapi/internal/brdoc"
	"supplierapi/internal/model"
	"supplierapi/internal/repository"
)

// SupplierPostgres is a PostgreSQL implementation of repository.SupplierRepository.
// The supplier row and its seven sections are written in one transaction.
type SupplierPostgres struct {
	db *sql.DB
}

// NewSupplierPostgres creates a new SupplierPostgres repository.
func NewSupplierPostgres(db *sql.DB) *SupplierPostgres {
	return &SupplierPostgres{db: db}
}

var _ repository.SupplierRepository = (*SupplierPostgres)(nil)

const supplierColumns = `
	s.id, s.trade_name, s.legal_name, s.tax_id, s.state_business_registration,
	s.municipal_business_registration, s.classification_id, s.category_id, s.risk_level_id,
	s.type_id, s.created_at, s.updated_at,
	a.postal_code, a.street, a.number, a.complement, a.neighbourhood, a.city, a.state,
	c.email, c.phone,
	ct.object_contract, ct.executed_activities, ct.contract_start_date, ct.contract_end_date,
	ct.contract_type, ct.contract_period, ct.has_contract_renewal, ct.warning_contract_renewal,
	ct.warning_contract_period, ct.warning_on_termination, ct.warning_on_renewal, ct.warning_on_period,
	p.payment_frequency, p.payment_date, p.contract_total_value, p.contract_monthly_value,
	p.checking_account, p.bank, p.agency, p.payment_method_id, p.pix_key_type_id, p.pix_key,
	o.cost_center, o.business_unit, o.responsible_executive, o.payer_type_id, o.business_sector_id,
	o.taxpayer_classification_id, o.public_entity_id,
	f.iss_withholding_id, f.iss_regime_id, f.iss_taxpayer, f.simples_nacional_participant,
	f.cooperative_member, f.withholding_tax_nature_id,
	ci.company_size_id, ci.icms_taxpayer_id, ci.taxation_regime_id, ci.income_type_id,
	ci.taxation_method_id, ci.customer_type_id, ci.nit,
	sit.id, sit.situation_id, sdv.name, sdv.pendency_type, sit.created_at`

// supplierFrom joins the sections and the latest situation entry.
const supplierFrom = `
	FROM suppliers s
	JOIN supplier_addresses a ON a.supplier_id = s.id
	JOIN supplier_contacts c ON c.supplier_id = s.id
	JOIN supplier_contracts ct ON ct.supplier_id = s.id
	JOIN supplier_payment_details p ON p.supplier_id = s.id
	JOIN supplier_organizational_details o ON o.supplier_id = s.id
	JOIN supplier_fiscal_details f ON f.supplier_id = s.id
	JOIN supplier_company_information ci ON ci.supplier_id = s.id
	LEFT JOIN LATERAL (
		SELECT ss.id, ss.situation_id, ss.created_at
		FROM supplier_situations ss
		WHERE ss.supplier_id = s.id
		ORDER BY ss.created_at DESC, ss.id DESC
		LIMIT 1
	) sit ON TRUE
	LEFT JOIN domain_values sdv ON sdv.id = sit.situation_id`

func scanSupplier(row rowScanner) (*model.Supplier, error) {
	var (
		s      model.Supplier
		sitID  sql.NullInt64
		sitRef sql.NullInt64
		sitNm  sql.NullString
		sitPT  sql.NullInt64
		sitAt  sql.NullTime
	)
	err := row.Scan(
		&s.ID, &s.TradeName, &s.LegalName, &s.TaxID, &s.StateBusinessRegistration,
		&s.MunicipalBusinessRegistration, &s.Classification, &s.Category, &s.RiskLevel,
		&s.Type, &s.CreatedAt, &s.UpdatedAt,
		&s.Address.PostalCode, &s.Address.Street, &s.Address.Number, &s.Address.Complement,
		&s.Address.Neighbourhood, &s.Address.City, &s.Address.State,
		&s.Contact.Email, &s.Contact.Phone,
		&s.Contract.ObjectContract, &s.Contract.ExecutedActivities, &s.Contract.ContractStartDate,
		&s.Contract.ContractEndDate, &s.Contract.ContractType, &s.Contract.ContractPeriod,
		&s.Contract.HasContractRenewal, &s.Contract.WarningContractRenewal,
		&s.Contract.WarningContractPeriod, &s.Contract.WarningOnTermination,
		&s.Contract.WarningOnRenewal, &s.Contract.WarningOnPeriod,
		&s.PaymentDetails.PaymentFrequency, &s.PaymentDetails.PaymentDate,
		&s.PaymentDetails.ContractTotalValue, &s.PaymentDetails.ContractMonthlyValue,
		&s.PaymentDetails.CheckingAccount, &s.PaymentDetails.Bank, &s.PaymentDetails.Agency,
		&s.PaymentDetails.PaymentMethod, &s.PaymentDetails.PixKeyType, &s.PaymentDetails.PixKey,
		&s.OrganizationalDetails.CostCenter, &s.OrganizationalDetails.BusinessUnit,
		&s.OrganizationalDetails.ResponsibleExecutive, &s.OrganizationalDetails.PayerType,
		&s.OrganizationalDetails.BusinessSector, &s.OrganizationalDetails.TaxpayerClassification,
		&s.OrganizationalDetails.PublicEntity,
		&s.FiscalDetails.IssWithholding, &s.FiscalDetails.IssRegime, &s.FiscalDetails.IssTaxpayer,
		&s.FiscalDetails.SimplesNacionalParticipant, &s.FiscalDetails.CooperativeMember,
		&s.FiscalDetails.WithholdingTaxNature,
		&s.CompanyInformation.CompanySize, &s.CompanyInformation.IcmsTaxpayer,
		&s.CompanyInformation.TaxationRegime, &s.CompanyInformation.IncomeType,
		&s.CompanyInformation.TaxationMethod, &s.CompanyInformation.CustomerType,
		&s.CompanyInformation.Nit,
		&sitID, &sitRef, &sitNm, &sitPT, &sitAt,
	)
	if err != nil {
		return nil, err
	}
	if sitID.Valid {
		entry := &model.SituationEntry{
			ID:          sitID.Int64,
			SituationID: int(sitRef.Int64),
			Name:        sitNm.String,
			CreatedAt:   sitAt.Time,
		}
		if sitPT.Valid {
			pt := model.PendencyType(sitPT.Int64)
			entry.PendencyType = &pt
			entry.Pendency = pt.String()
		}
		s.Situation = entry
	}
	return &s, nil
}

// Create inserts the supplier and its sections.
func (r *SupplierPostgres) Create(ctx context.Context, s *model.Supplier) error {
	const q = `
		INSERT INTO suppliers (id, trade_name, legal_name, tax_id, state_business_registration,
			municipal_business_registration, classification_id, category_id, risk_level_id, type_id,
			created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, q,
			s.ID, s.TradeName, s.LegalName, s.TaxID, s.StateBusinessRegistration,
			s.MunicipalBusinessRegistration, model.RefID(s.Classification), model.RefID(s.Category),
			model.RefID(s.RiskLevel), model.RefID(s.Type), s.CreatedAt, s.UpdatedAt,
		); err != nil {
			return err
		}
		return upsertSections(ctx, tx, s)
	})
}

// Update rewrites the supplier and its sections. sql.ErrNoRows when the supplier is absent.
func (r *SupplierPostgres) Update(ctx context.Context, s *model.Supplier) error {
	const q = `
		UPDATE suppliers SET trade_name = $2, legal_name = $3, tax_id = $4,
			state_business_registration = $5, municipal_business_registration = $6,
			classification_id = $7, category_id = $8, risk_level_id = $9, type_id = $10,
			updated_at = $11
		WHERE id = $1
	`
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx, q,
			s.ID, s.TradeName, s.LegalName, s.TaxID, s.StateBusinessRegistration,
			s.MunicipalBusinessRegistration, model.RefID(s.Classification), model.RefID(s.Category),
			model.RefID(s.RiskLevel), model.RefID(s.Type), s.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if err := requireAffected(res); err != nil {
			return err
		}
		return upsertSections(ctx, tx, s)
	})
}

func upsertSections(ctx context.Context, tx *sql.Tx, s *model.Supplier) error {
	const qAddress = `
		INSERT INTO supplier_addresses (supplier_id, postal_code, street, number, complement,
			neighbourhood, city, state)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (supplier_id) DO UPDATE SET postal_code = EXCLUDED.postal_code,
			street = EXCLUDED.street, number = EXCLUDED.number, complement = EXCLUDED.complement,
			neighbourhood = EXCLUDED.neighbourhood, city = EXCLUDED.city, state = EXCLUDED.state
	`
	const qContact = `
		INSERT INTO supplier_contacts (supplier_id, email, phone)
		VALUES ($1, $2, $3)
		ON CONFLICT (supplier_id) DO UPDATE SET email = EXCLUDED.email, phone = EXCLUDED.phone
	`
	const qContract = `
		INSERT INTO supplier_contracts (supplier_id, object_contract, executed_activities,
			contract_start_date, contract_end_date, contract_type, contract_period,
			has_contract_renewal, warning_contract_renewal, warning_contract_period,
			warning_on_termination, warning_on_renewal, warning_on_period)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (supplier_id) DO UPDATE SET object_contract = EXCLUDED.object_contract,
			executed_activities = EXCLUDED.executed_activities,
			contract_start_date = EXCLUDED.contract_start_date,
			contract_end_date = EXCLUDED.contract_end_date, contract_type = EXCLUDED.contract_type,
			contract_period = EXCLUDED.contract_period,
			has_contract_renewal = EXCLUDED.has_contract_renewal,
			warning_contract_renewal = EXCLUDED.warning_contract_renewal,
			warning_contract_period = EXCLUDED.warning_contract_period,
			warning_on_termination = EXCLUDED.warning_on_termination,
			warning_on_renewal = EXCLUDED.warning_on_renewal,
			warning_on_period = EXCLUDED.warning_on_period
	`
	const qPayment = `
		INSERT INTO supplier_payment_details (supplier_id, payment_frequency, payment_date,
			contract_total_value, contract_monthly_value, checking_account, bank, agency,
			payment_method_id, pix_key_type_id, pix_key)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (supplier_id) DO UPDATE SET payment_frequency = EXCLUDED.payment_frequency,
			payment_date = EXCLUDED.payment_date, contract_total_value = EXCLUDED.contract_total_value,
			contract_monthly_value = EXCLUDED.contract_monthly_value,
			checking_account = EXCLUDED.checking_account, bank = EXCLUDED.bank,
			agency = EXCLUDED.agency, payment_method_id = EXCLUDED.payment_method_id,
			pix_key_type_id = EXCLUDED.pix_key_type_id, pix_key = EXCLUDED.pix_key
	`
	const qOrganizational = `
		INSERT INTO supplier_organizational_details (supplier_id, cost_center, business_unit,
			responsible_executive, payer_type_id, business_sector_id, taxpayer_classification_id,
			public_entity_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (supplier_id) DO UPDATE SET cost_center = EXCLUDED.cost_center,
			business_unit = EXCLUDED.business_unit,
			responsible_executive = EXCLUDED.responsible_executive,
			payer_type_id = EXCLUDED.payer_type_id, business_sector_id = EXCLUDED.business_sector_id,
			taxpayer_classification_id = EXCLUDED.taxpayer_classification_id,
			public_entity_id = EXCLUDED.public_entity_id
	`
	const qFiscal = `
		INSERT INTO supplier_fiscal_details (supplier_id, iss_withholding_id, iss_regime_id,
			iss_taxpayer, simples_nacional_participant, cooperative_member, withholding_tax_nature_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (supplier_id) DO UPDATE SET iss_withholding_id = EXCLUDED.iss_withholding_id,
			iss_regime_id = EXCLUDED.iss_regime_id, iss_taxpayer = EXCLUDED.iss_taxpayer,
			simples_nacional_participant = EXCLUDED.simples_nacional_participant,
			cooperative_member = EXCLUDED.cooperative_member,
			withholding_tax_nature_id = EXCLUDED.withholding_tax_nature_id
	`
	const qCompany = `
		INSERT INTO supplier_company_information (supplier_id, company_size_id, icms_taxpayer_id,
			taxation_regime_id, income_type_id, taxation_method_id, customer_type_id, nit)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (supplier_id) DO UPDATE SET company_size_id = EXCLUDED.company_size_id,
			icms_taxpayer_id = EXCLUDED.icms_taxpayer_id,
			taxation_regime_id = EXCLUDED.taxation_regime_id, income_type_id = EXCLUDED.income_type_id,
			taxation_method_id = EXCLUDED.taxation_method_id,
			customer_type_id = EXCLUDED.customer_type_id, nit = EXCLUDED.nit
	`

	a, c, ct, p := s.Address, s.Contact, s.Contract, s.PaymentDetails
	o, f, ci := s.OrganizationalDetails, s.FiscalDetails, s.CompanyInformation
	writes := []struct {
		q    string
		args []any
	}{
		{qAddress, []any{s.ID, a.PostalCode, a.Street, a.Number, a.Complement, a.Neighbourhood, a.City, a.State}},
		{qContact, []any{s.ID, c.Email, c.Phone}},
		{qContract, []any{s.ID, ct.ObjectContract, ct.ExecutedActivities, ct.ContractStartDate,
			ct.ContractEndDate, ct.ContractType, ct.ContractPeriod, ct.HasContractRenewal,
			ct.WarningContractRenewal, ct.WarningContractPeriod, ct.WarningOnTermination,
			ct.WarningOnRenewal, ct.WarningOnPeriod}},
		{qPayment, []any{s.ID, p.PaymentFrequency, p.PaymentDate, p.ContractTotalValue,
			p.ContractMonthlyValue, p.CheckingAccount, p.Bank, p.Agency,
			model.RefID(p.PaymentMethod), model.RefID(p.PixKeyType), p.PixKey}},
		{qOrganizational, []any{s.ID, o.CostCenter, o.BusinessUnit, o.ResponsibleExecutive,
			model.RefID(o.PayerType), model.RefID(o.BusinessSector),
			model.RefID(o.TaxpayerClassification), model.RefID(o.PublicEntity)}},
		{qFiscal, []any{s.ID, model.RefID(f.IssWithholding), model.RefID(f.IssRegime), f.IssTaxpayer,
			f.SimplesNacionalParticipant, f.CooperativeMember, model.RefID(f.WithholdingTaxNature)}},
		{qCompany, []any{s.ID, model.RefID(ci.CompanySize), model.RefID(ci.IcmsTaxpayer),
			model.RefID(ci.TaxationRegime), model.RefID(ci.IncomeType),
			model.RefID(ci.TaxationMethod), model.RefID(ci.CustomerType), ci.Nit}},
	}
	for _, w := range writes {
		if _, err := tx.ExecContext(ctx, w.q, w.args...); err != nil {
			return err
		}
	}
	return nil
}

// FindByID fetches the aggregate with its current situation.
func (r *SupplierPostgres) FindByID(ctx context.Context, id string) (*model.Supplier, error) {
	q := "SELECT" + supplierColumns + supplierFrom + "\n\tWHERE s.id = $1"
	return scanSupplier(r.db.QueryRowContext(ctx, q, id))
}

func supplierWhere(f repository.SupplierFilter) (string, []any) {
	var (
		conds []string
		args  []any
	)
	arg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if search := strings.TrimSpace(f.Search); search != "" {
		like := arg("%" + search + "%")
		cond := fmt.Sprintf("s.trade_name ILIKE %s OR s.legal_name ILIKE %s OR s.tax_id ILIKE %s", like, like, like)
		if digits := brdoc.OnlyDigits(search); digits != "" && digits != search {
			cond += " OR s.tax_id LIKE " + arg("%"+digits+"%")
		}
		conds = append(conds, "("+cond+")")
	}
	if name := strings.TrimSpace(f.LegalName); name != "" {
		conds = append(conds, "s.legal_name ILIKE "+arg("%"+name+"%"))
	}
	if f.TaxID != "" {
		conds = append(conds, "s.tax_id LIKE "+arg("%"+f.TaxID+"%"))
	}
	if f.RiskLevelID != nil {
		conds = append(conds, "s.risk_level_id = "+arg(*f.RiskLevelID))
	}
	if len(f.StatusIDs) > 0 {
		ps := make([]string, len(f.StatusIDs))
		for i, id := range f.StatusIDs {
			ps[i] = arg(id)
		}
		conds = append(conds, "sit.situation_id IN ("+strings.Join(ps, ", ")+")")
	}

	if len(conds) == 0 {
		return "", args
	}
	return "\n\tWHERE " + strings.Join(conds, " AND "), args
}

// List returns suppliers using LIMIT/OFFSET pagination and a total count.
func (r *SupplierPostgres) List(ctx context.Context, f repository.SupplierFilter, pq repository.PageQuery) (*repository.PageResult[model.Supplier], error) {
	where, args := supplierWhere(f)

	var total int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*)"+supplierFrom+where, args...).Scan(&total); err != nil {
		return nil, err
	}

	n := len(args)
	qList := "SELECT" + supplierColumns + supplierFrom + where +
		fmt.Sprintf("\n\tORDER BY s.created_at DESC, s.id DESC\n\tLIMIT $%d OFFSET $%d", n+1, n+2)
	rows, err := r.db.QueryContext(ctx, qList, append(args, pq.Limit, pq.Offset)...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Supplier, 0)
	for rows.Next() {
		s, err := scanSupplier(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Supplier]{
		Items: items,
		Total: total,
	}, nil
}

// Delete removes a supplier. Sections and dependent rows go with it through
// ON DELETE CASCADE. sql.ErrNoRows when the supplier is absent.
func (r *SupplierPostgres) Delete(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM suppliers WHERE id = $1`, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

// ExistsByLegalName compares legal names case-insensitively.
func (r *SupplierPostgres) ExistsByLegalName(ctx context.Context, legalName, excludeID string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM suppliers
			WHERE lower(legal_name) = lower($1) AND ($2 = '' OR id::text <> $2)
		)
	`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, legalName, excludeID).Scan(&exists)
	return exists, err
}

func (r *SupplierPostgres) ExistsByTaxID(ctx context.Context, taxID, excludeID string) (bool, error) {
	const q = `
		SELECT EXISTS (
			SELECT 1 FROM suppliers
			WHERE tax_id = $1 AND ($2 = '' OR id::text <> $2)
		)
	`
	var exists bool
	err := r.db.QueryRowContext(ctx, q, taxID, excludeID).Scan(&exists)
	return exists, err
}
