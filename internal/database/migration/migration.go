package migration

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"go.uber.org/zap"
)

type migrationStep struct {
	Name string
	SQL  string
}

var schemaSteps = []migrationStep{
	{
		Name: "create_extension_uuid_ossp",
		SQL:  `CREATE EXTENSION IF NOT EXISTS "uuid-ossp";`,
	},
	{
		Name: "create_table_domain_values",
		SQL: `CREATE TABLE IF NOT EXISTS domain_values (
  id            SERIAL PRIMARY KEY,
  kind          TEXT   NOT NULL,
  name          TEXT   NOT NULL,
  pendency_type INT    NULL CHECK (pendency_type BETWEEN 1 AND 4),
  risk_level_id INT    NULL REFERENCES domain_values (id)
);`,
	},
	{
		Name: "create_index_domain_values_kind_name",
		SQL:  `CREATE UNIQUE INDEX IF NOT EXISTS idx_domain_values_kind_name ON domain_values (kind, name, COALESCE(pendency_type, 0));`,
	},
	{
		Name: "create_table_suppliers",
		SQL: `CREATE TABLE IF NOT EXISTS suppliers (
  id                              UUID         PRIMARY KEY DEFAULT uuid_generate_v4(),
  trade_name                      VARCHAR(255) NOT NULL DEFAULT '',
  legal_name                      VARCHAR(255) NOT NULL UNIQUE,
  tax_id                          VARCHAR(16)  NOT NULL UNIQUE,
  state_business_registration     VARCHAR(20)  NOT NULL DEFAULT '',
  municipal_business_registration VARCHAR(20)  NOT NULL DEFAULT '',
  classification_id               INT          NULL REFERENCES domain_values (id),
  category_id                     INT          NULL REFERENCES domain_values (id),
  risk_level_id                   INT          NULL REFERENCES domain_values (id),
  type_id                         INT          NULL REFERENCES domain_values (id),
  created_at                      TIMESTAMPTZ  NOT NULL DEFAULT now(),
  updated_at                      TIMESTAMPTZ  NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_supplier_addresses",
		SQL: `CREATE TABLE IF NOT EXISTS supplier_addresses (
  supplier_id   UUID         PRIMARY KEY REFERENCES suppliers (id) ON DELETE CASCADE,
  postal_code   VARCHAR(8)   NOT NULL DEFAULT '',
  street        VARCHAR(255) NOT NULL DEFAULT '',
  number        INT          NOT NULL DEFAULT 0 CHECK (number >= 0),
  complement    VARCHAR(255) NOT NULL DEFAULT '',
  neighbourhood VARCHAR(255) NOT NULL DEFAULT '',
  city          VARCHAR(255) NOT NULL DEFAULT '',
  state         VARCHAR(2)   NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_supplier_contacts",
		SQL: `CREATE TABLE IF NOT EXISTS supplier_contacts (
  supplier_id UUID         PRIMARY KEY REFERENCES suppliers (id) ON DELETE CASCADE,
  email       VARCHAR(254) NOT NULL DEFAULT '',
  phone       VARCHAR(11)  NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_supplier_contracts",
		SQL: `CREATE TABLE IF NOT EXISTS supplier_contracts (
  supplier_id              UUID         PRIMARY KEY REFERENCES suppliers (id) ON DELETE CASCADE,
  object_contract          VARCHAR(255) NOT NULL DEFAULT '',
  executed_activities      TEXT         NOT NULL DEFAULT '',
  contract_start_date      DATE         NULL,
  contract_end_date        DATE         NULL,
  contract_type            VARCHAR(50)  NOT NULL DEFAULT '',
  contract_period          VARCHAR(3)   NOT NULL DEFAULT '',
  has_contract_renewal     BOOLEAN      NOT NULL DEFAULT FALSE,
  warning_contract_renewal BOOLEAN      NOT NULL DEFAULT FALSE,
  warning_contract_period  VARCHAR(3)   NOT NULL DEFAULT '',
  warning_on_termination   BOOLEAN      NOT NULL DEFAULT FALSE,
  warning_on_renewal       BOOLEAN      NOT NULL DEFAULT FALSE,
  warning_on_period        BOOLEAN      NOT NULL DEFAULT FALSE
);`,
	},
	{
		Name: "create_table_supplier_payment_details",
		SQL: `CREATE TABLE IF NOT EXISTS supplier_payment_details (
  supplier_id            UUID          PRIMARY KEY REFERENCES suppliers (id) ON DELETE CASCADE,
  payment_frequency      VARCHAR(50)   NOT NULL DEFAULT '',
  payment_date           DATE          NULL,
  contract_total_value   NUMERIC(15,2) NOT NULL DEFAULT 0 CHECK (contract_total_value >= 0),
  contract_monthly_value NUMERIC(15,2) NOT NULL DEFAULT 0 CHECK (contract_monthly_value >= 0),
  checking_account       VARCHAR(20)   NOT NULL DEFAULT '',
  bank                   VARCHAR(50)   NOT NULL DEFAULT '',
  agency                 VARCHAR(20)   NOT NULL DEFAULT '',
  payment_method_id      INT           NULL REFERENCES domain_values (id),
  pix_key_type_id        INT           NULL REFERENCES domain_values (id),
  pix_key                VARCHAR(255)  NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_supplier_organizational_details",
		SQL: `CREATE TABLE IF NOT EXISTS supplier_organizational_details (
  supplier_id                UUID         PRIMARY KEY REFERENCES suppliers (id) ON DELETE CASCADE,
  cost_center                VARCHAR(50)  NOT NULL DEFAULT '',
  business_unit              VARCHAR(100) NOT NULL DEFAULT '',
  responsible_executive      VARCHAR(255) NOT NULL DEFAULT '',
  payer_type_id              INT          NULL REFERENCES domain_values (id),
  business_sector_id         INT          NULL REFERENCES domain_values (id),
  taxpayer_classification_id INT          NULL REFERENCES domain_values (id),
  public_entity_id           INT          NULL REFERENCES domain_values (id)
);`,
	},
	{
		Name: "create_table_supplier_fiscal_details",
		SQL: `CREATE TABLE IF NOT EXISTS supplier_fiscal_details (
  supplier_id                  UUID    PRIMARY KEY REFERENCES suppliers (id) ON DELETE CASCADE,
  iss_withholding_id           INT     NULL REFERENCES domain_values (id),
  iss_regime_id                INT     NULL REFERENCES domain_values (id),
  iss_taxpayer                 BOOLEAN NOT NULL DEFAULT FALSE,
  simples_nacional_participant BOOLEAN NOT NULL DEFAULT FALSE,
  cooperative_member           BOOLEAN NOT NULL DEFAULT FALSE,
  withholding_tax_nature_id    INT     NULL REFERENCES domain_values (id)
);`,
	},
	{
		Name: "create_table_supplier_company_information",
		SQL: `CREATE TABLE IF NOT EXISTS supplier_company_information (
  supplier_id        UUID        PRIMARY KEY REFERENCES suppliers (id) ON DELETE CASCADE,
  company_size_id    INT         NULL REFERENCES domain_values (id),
  icms_taxpayer_id   INT         NULL REFERENCES domain_values (id),
  taxation_regime_id INT         NULL REFERENCES domain_values (id),
  income_type_id     INT         NULL REFERENCES domain_values (id),
  taxation_method_id INT         NULL REFERENCES domain_values (id),
  customer_type_id   INT         NULL REFERENCES domain_values (id),
  nit                VARCHAR(20) NOT NULL DEFAULT ''
);`,
	},
	{
		Name: "create_table_attachments",
		SQL: `CREATE TABLE IF NOT EXISTS attachments (
  id                 UUID         PRIMARY KEY DEFAULT uuid_generate_v4(),
  supplier_id        UUID         NOT NULL REFERENCES suppliers (id) ON DELETE CASCADE,
  attachment_type_id INT          NOT NULL REFERENCES domain_values (id),
  file_name          TEXT         NOT NULL,
  storage_path       TEXT         NOT NULL UNIQUE,
  size               BIGINT       NOT NULL CHECK (size >= 0),
  content_type       TEXT         NOT NULL,
  description        VARCHAR(255) NOT NULL DEFAULT '',
  created_at         TIMESTAMPTZ  NOT NULL DEFAULT now(),
  UNIQUE (supplier_id, attachment_type_id)
);`,
	},
	{
		Name: "create_table_responsibility_matrices",
		SQL: `CREATE TABLE IF NOT EXISTS responsibility_matrices (
  id          UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  supplier_id UUID        NOT NULL UNIQUE REFERENCES suppliers (id) ON DELETE CASCADE,
  created_at  TIMESTAMPTZ NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_responsibility_assignments",
		SQL: `CREATE TABLE IF NOT EXISTS responsibility_assignments (
  matrix_id UUID       NOT NULL REFERENCES responsibility_matrices (id) ON DELETE CASCADE,
  activity  TEXT       NOT NULL,
  area      TEXT       NOT NULL,
  value     VARCHAR(3) NOT NULL DEFAULT '-' CHECK (value IN ('A', 'R', 'C', 'I', '-', 'A/R')),
  PRIMARY KEY (matrix_id, activity, area)
);`,
	},
	{
		Name: "create_table_supplier_situations",
		SQL: `CREATE TABLE IF NOT EXISTS supplier_situations (
  id           BIGSERIAL   PRIMARY KEY,
  supplier_id  UUID        NOT NULL REFERENCES suppliers (id) ON DELETE CASCADE,
  situation_id INT         NOT NULL REFERENCES domain_values (id),
  created_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_evaluation_criteria",
		SQL: `CREATE TABLE IF NOT EXISTS evaluation_criteria (
  id          UUID         PRIMARY KEY DEFAULT uuid_generate_v4(),
  name        VARCHAR(100) NOT NULL UNIQUE,
  description TEXT         NOT NULL DEFAULT '',
  weight      NUMERIC(5,2) NOT NULL DEFAULT 1 CHECK (weight BETWEEN 0 AND 100),
  sort_order  INT          NOT NULL DEFAULT 0,
  created_at  TIMESTAMPTZ  NOT NULL DEFAULT now(),
  updated_at  TIMESTAMPTZ  NOT NULL DEFAULT now()
);`,
	},
	{
		Name: "create_table_evaluation_periods",
		SQL: `CREATE TABLE IF NOT EXISTS evaluation_periods (
  id            UUID        PRIMARY KEY DEFAULT uuid_generate_v4(),
  year          INT         NOT NULL,
  period_number INT         NOT NULL CHECK (period_number BETWEEN 1 AND 3),
  name          VARCHAR(50) NOT NULL,
  start_date    DATE        NOT NULL,
  end_date      DATE        NOT NULL,
  UNIQUE (year, period_number)
);`,
	},
	{
		Name: "create_table_supplier_evaluations",
		SQL: `CREATE TABLE IF NOT EXISTS supplier_evaluations (
  id              UUID         PRIMARY KEY DEFAULT uuid_generate_v4(),
  supplier_id     UUID         NOT NULL REFERENCES suppliers (id) ON DELETE CASCADE,
  period_id       UUID         NOT NULL REFERENCES evaluation_periods (id),
  evaluator_name  VARCHAR(255) NOT NULL DEFAULT '',
  evaluation_date DATE         NOT NULL,
  comments        TEXT         NOT NULL DEFAULT '',
  final_score     NUMERIC(5,2) NULL,
  created_at      TIMESTAMPTZ  NOT NULL DEFAULT now(),
  updated_at      TIMESTAMPTZ  NOT NULL DEFAULT now(),
  UNIQUE (supplier_id, period_id)
);`,
	},
	{
		Name: "create_table_criterion_scores",
		SQL: `CREATE TABLE IF NOT EXISTS criterion_scores (
  id            UUID         PRIMARY KEY DEFAULT uuid_generate_v4(),
  evaluation_id UUID         NOT NULL REFERENCES supplier_evaluations (id) ON DELETE CASCADE,
  criterion_id  UUID         NOT NULL REFERENCES evaluation_criteria (id),
  score         NUMERIC(5,2) NOT NULL CHECK (score BETWEEN 0 AND 100),
  comments      TEXT         NOT NULL DEFAULT '',
  UNIQUE (evaluation_id, criterion_id)
);`,
	},
	{
		Name: "create_index_suppliers_created_at",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_suppliers_created_at ON suppliers (created_at);`,
	},
	{
		Name: "create_index_supplier_situations_latest",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_supplier_situations_latest ON supplier_situations (supplier_id, created_at DESC, id DESC);`,
	},
	{
		Name: "create_index_attachments_supplier",
		SQL:  `CREATE INDEX IF NOT EXISTS idx_attachments_supplier ON attachments (supplier_id);`,
	},
}

// steps is the full ordered list: schema first, then seeds.
var steps = append(append([]migrationStep{}, schemaSteps...), seedSteps()...)

// EnsureMigrated checks if the 'suppliers' table exists and runs migrations if it doesn't.
// All steps run in one transaction.
func EnsureMigrated(ctx context.Context, db *sql.DB, log *zap.Logger, dbHost string) error {
	start := time.Now()
	log = log.With(zap.String("component", "database"), zap.String("db_host", dbHost))

	log.Info("db_migration_check", zap.String("status", "starting"))

	var exists bool
	query := "SELECT to_regclass('public.suppliers') IS NOT NULL"
	if err := db.QueryRowContext(ctx, query).Scan(&exists); err != nil {
		log.Error("db_migration_failed",
			zap.String("status", "error"),
			zap.String("error_message", fmt.Sprintf("failed to check sentinel table: %v", err)),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return fmt.Errorf("failed to check sentinel table: %w", err)
	}

	if exists {
		log.Info("db_migration_skip",
			zap.String("status", "success"),
			zap.String("detail", "schema already exists, skipping migration"),
			zap.Int64("duration_ms", time.Since(start).Milliseconds()),
		)
		return nil
	}

	log.Info("db_migration_start", zap.String("status", "in_progress"), zap.Int("steps", len(steps)))

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin migration: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, step := range steps {
		stepStart := time.Now()
		if _, err := tx.ExecContext(ctx, step.SQL); err != nil {
			log.Error("db_migration_failed",
				zap.String("status", "error"),
				zap.String("migration_step", step.Name),
				zap.String("error_message", err.Error()),
				zap.Int64("duration_ms", time.Since(start).Milliseconds()),
				zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
			)
			return fmt.Errorf("migration step %s failed: %w", step.Name, err)
		}

		log.Debug("db_migration_step",
			zap.String("status", "success"),
			zap.String("migration_step", step.Name),
			zap.Int64("step_duration_ms", time.Since(stepStart).Milliseconds()),
		)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit migration: %w", err)
	}

	log.Info("db_migration_success",
		zap.String("status", "success"),
		zap.Int64("duration_ms", time.Since(start).Milliseconds()),
	)
	return nil
}
