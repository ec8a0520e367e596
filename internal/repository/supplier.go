package repository

import (
	"context"

	"supplierapi/internal/model"
)

// SupplierFilter narrows supplier listings. Empty fields do not filter.
type SupplierFilter struct {
	Search      string // trade name, legal name or tax id
	LegalName   string
	TaxID       string // digits only
	RiskLevelID *int
	StatusIDs   []int // current situation ids
}

// SupplierRepository persists the supplier aggregate. Create and Update write the
// supplier row and its sections in a single transaction.
type SupplierRepository interface {
	Create(ctx context.Context, s *model.Supplier) error

	Update(ctx context.Context, s *model.Supplier) error

	// FindByID returns the aggregate with its current situation. Domain reference
	// names are not resolved.
	FindByID(ctx context.Context, id string) (*model.Supplier, error)

	List(ctx context.Context, f SupplierFilter, pq PageQuery) (*PageResult[model.Supplier], error)

	// Delete removes the supplier and every dependent row.
	Delete(ctx context.Context, id string) error

	// ExistsByLegalName and ExistsByTaxID ignore the supplier excludeID, if any.
	ExistsByLegalName(ctx context.Context, legalName, excludeID string) (bool, error)
	ExistsByTaxID(ctx context.Context, taxID, excludeID string) (bool, error)
}

// DomainRepository reads the seeded lookup lists.
type DomainRepository interface {
	ListByKind(ctx context.Context, kind model.DomainKind) ([]model.DomainValue, error)

	// FindByIDs returns the values found, keyed by id. Missing ids are absent from the map.
	FindByIDs(ctx context.Context, ids []int) (map[int]model.DomainValue, error)

	// FindSituation returns the supplier situation with the given name and pendency type.
	FindSituation(ctx context.Context, name string, pendency *model.PendencyType) (*model.DomainValue, error)
}

// SituationRepository keeps the append-only situation history of suppliers.
type SituationRepository interface {
	// Current returns the latest entry, or sql.ErrNoRows when the history is empty.
	Current(ctx context.Context, supplierID string) (*model.SituationEntry, error)

	Append(ctx context.Context, supplierID string, situationID int) error

	ListBySupplier(ctx context.Context, supplierID string) ([]model.SituationEntry, error)
}
