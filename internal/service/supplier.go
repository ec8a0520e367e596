package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"supplierapi/internal/cep"
	"supplierapi/internal/logger"
	"supplierapi/internal/model"
	"supplierapi/internal/repository"
	"supplierapi/internal/storage"
	"supplierapi/internal/validation"
)

var ErrUnavailable = errors.New("upstream unavailable")

const (
	msgLegalNameTaken = "Já existe um fornecedor com esta razão social."
	msgTaxIDTaken     = "Já existe um fornecedor com este CPF/CNPJ."
)

// SupplierListResult is one page of suppliers.
type SupplierListResult struct {
	Items []model.Supplier
	Total int
	Page  Page
}

// SupplierService manages the supplier aggregate.
type SupplierService interface {
	// Create validates the payload, resolves the postal code, checks domain references
	// and uniqueness, stores the aggregate and derives its first situation.
	Create(ctx context.Context, in *SupplierInput) (*model.Supplier, error)

	Get(ctx context.Context, id string) (*model.Supplier, error)

	// Update replaces top-level fields and every section present in the input.
	Update(ctx context.Context, id string, in *SupplierInput) (*model.Supplier, error)

	// Patch changes only the JSON keys present in body, at any depth.
	Patch(ctx context.Context, id string, body []byte) (*model.Supplier, error)

	// Delete removes the supplier's attachment objects, then the supplier and everything that depends on it.
	Delete(ctx context.Context, id string) error

	List(ctx context.Context, f repository.SupplierFilter, p Page) (*SupplierListResult, error)

	// LookupCEP resolves a postal code with the same client used during validation.
	LookupCEP(ctx context.Context, raw string) (*cep.Address, error)

	// Import creates one supplier per spreadsheet row, skipping known tax ids.
	Import(ctx context.Context, r io.Reader) (*ImportReport, error)

	// Export writes the filtered suppliers as an .xlsx workbook.
	Export(ctx context.Context, f repository.SupplierFilter, w io.Writer) error
}

// SupplierDeps are the collaborators of the supplier service.
type SupplierDeps struct {
	Suppliers   repository.SupplierRepository
	Domains     repository.DomainRepository
	Attachments repository.AttachmentRepository
	Store       storage.Storage
	Situations  SituationService
	CEP         cep.Resolver
	Validator   *validation.Validator
}

type supplierService struct {
	SupplierDeps
}

// NewSupplierService constructs a new SupplierService.
func NewSupplierService(deps SupplierDeps) SupplierService {
	return &supplierService{SupplierDeps: deps}
}

func (s *supplierService) Create(ctx context.Context, in *SupplierInput) (*model.Supplier, error) {
	sup := &model.Supplier{}
	if err := s.prepare(ctx, in, sup, "", true); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	sup.ID = uuid.NewString()
	sup.CreatedAt = now
	sup.UpdatedAt = now
	if err := s.Suppliers.Create(ctx, sup); err != nil {
		return nil, duplicateAsValidation(err)
	}
	logger.FromContext(ctx).Info("supplier_created",
		zap.String("supplier_id", sup.ID),
		zap.String("tax_id", sup.TaxID),
	)
	return s.finish(ctx, sup), nil
}

func (s *supplierService) Get(ctx context.Context, id string) (*model.Supplier, error) {
	sup, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, sup); err != nil {
		return nil, err
	}
	return sup, nil
}

func (s *supplierService) Update(ctx context.Context, id string, in *SupplierInput) (*model.Supplier, error) {
	sup, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.save(ctx, in, sup)
}

func (s *supplierService) Patch(ctx context.Context, id string, body []byte) (*model.Supplier, error) {
	sup, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	in := inputOf(sup)
	if err := validation.DecodeJSON(body, &in); err != nil {
		return nil, err
	}
	return s.save(ctx, &in, sup)
}

func (s *supplierService) save(ctx context.Context, in *SupplierInput, sup *model.Supplier) (*model.Supplier, error) {
	if err := s.prepare(ctx, in, sup, sup.ID, false); err != nil {
		return nil, err
	}
	sup.UpdatedAt = time.Now().UTC()
	if err := s.Suppliers.Update(ctx, sup); err != nil {
		return nil, orNotFound(duplicateAsValidation(err), msgSupplierNotFound)
	}
	return s.finish(ctx, sup), nil
}

func (s *supplierService) Delete(ctx context.Context, id string) error {
	sup, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	attachments, err := s.Attachments.ListBySupplier(ctx, sup.ID)
	if err != nil {
		return fmt.Errorf("list attachments: %w", err)
	}
	for _, a := range attachments {
		if err := s.Store.Delete(ctx, a.StoragePath); err != nil {
			return fmt.Errorf("delete storage: %w", err)
		}
	}
	if err := s.Suppliers.Delete(ctx, sup.ID); err != nil {
		return orNotFound(err, msgSupplierNotFound)
	}
	logger.FromContext(ctx).Info("supplier_deleted",
		zap.String("supplier_id", sup.ID),
		zap.Int("attachments", len(attachments)),
	)
	return nil
}

func (s *supplierService) List(ctx context.Context, f repository.SupplierFilter, p Page) (*SupplierListResult, error) {
	p = p.Normalize()
	res, err := s.Suppliers.List(ctx, f, repository.PageQuery{Limit: p.Size, Offset: p.offset()})
	if err != nil {
		return nil, err
	}
	if err := s.hydrate(ctx, pointers(res.Items)...); err != nil {
		return nil, err
	}
	return &SupplierListResult{Items: res.Items, Total: res.Total, Page: p}, nil
}

func (s *supplierService) LookupCEP(ctx context.Context, raw string) (*cep.Address, error) {
	addr, err := s.CEP.Lookup(ctx, raw)
	switch {
	case err == nil:
		return addr, nil
	case errors.Is(err, cep.ErrInvalidCEP):
		return nil, validation.NewError("cep", cep.Message(err))
	case errors.Is(err, cep.ErrCEPNotFound):
		return nil, notFound(cep.Message(err))
	default:
		logger.FromContext(ctx).Warn("cep_lookup_failed", zap.String("cep", raw), zap.Error(err))
		return nil, &Error{Kind: ErrUnavailable, Message: cep.Message(err)}
	}
}

func (s *supplierService) find(ctx context.Context, id string) (*model.Supplier, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	sup, err := s.Suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, msgSupplierNotFound)
	}
	return sup, nil
}

// prepare validates in, applies it to sup and resolves everything derived from it.
// All field problems are reported together.
func (s *supplierService) prepare(ctx context.Context, in *SupplierInput, sup *model.Supplier, excludeID string, creating bool) error {
	in.normalize()

	verr := &validation.Error{}
	if err := verr.Merge(s.Validator.Struct(in)); err != nil {
		return err
	}
	in.check(verr, creating)
	in.apply(sup)

	s.resolveAddress(ctx, sup, verr)
	if err := s.checkRefs(ctx, sup, verr); err != nil {
		return err
	}
	if err := s.checkUnique(ctx, sup, excludeID, verr); err != nil {
		return err
	}
	return verr.OrNil()
}

// resolveAddress fills street, neighbourhood, city and state when the postal code
// is new or changed.
func (s *supplierService) resolveAddress(ctx context.Context, sup *model.Supplier, verr *validation.Error) {
	if sup.Address.PostalCode == "" || sup.Address.City != "" || verr.Has("address.postalCode") {
		return
	}
	addr, err := s.CEP.Lookup(ctx, sup.Address.PostalCode)
	if err != nil {
		logger.FromContext(ctx).Warn("cep_lookup_failed",
			zap.String("cep", sup.Address.PostalCode),
			zap.Error(err),
		)
		verr.Add("address.postalCode", cep.Message(err))
		return
	}
	sup.Address.Street = addr.Street
	sup.Address.Neighbourhood = addr.Neighbourhood
	sup.Address.City = addr.City
	sup.Address.State = addr.State
}

// checkRefs verifies every domain reference exists in the expected list and
// fills in its name.
func (s *supplierService) checkRefs(ctx context.Context, sup *model.Supplier, verr *validation.Error) error {
	slots := sup.DomainRefs()
	ids := make([]int, 0, len(slots))
	for _, slot := range slots {
		if *slot.Ref != nil {
			ids = append(ids, (*slot.Ref).ID)
		}
	}
	if len(ids) == 0 {
		return nil
	}
	values, err := s.Domains.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("find domain values: %w", err)
	}
	for _, slot := range slots {
		ref := *slot.Ref
		if ref == nil {
			continue
		}
		v, ok := values[ref.ID]
		if !ok || v.Kind != slot.Kind {
			verr.Add(slot.Field, fmt.Sprintf("Pk inválido %q - objeto não existe.", fmt.Sprint(ref.ID)))
			continue
		}
		ref.Name = v.Name
	}
	return nil
}

func (s *supplierService) checkUnique(ctx context.Context, sup *model.Supplier, excludeID string, verr *validation.Error) error {
	if sup.LegalName != "" && !verr.Has("legalName") {
		exists, err := s.Suppliers.ExistsByLegalName(ctx, sup.LegalName, excludeID)
		if err != nil {
			return err
		}
		if exists {
			verr.Add("legalName", msgLegalNameTaken)
		}
	}
	if sup.TaxID != "" && !verr.Has("taxId") {
		exists, err := s.Suppliers.ExistsByTaxID(ctx, sup.TaxID, excludeID)
		if err != nil {
			return err
		}
		if exists {
			verr.Add("taxId", msgTaxIDTaken)
		}
	}
	return nil
}

// duplicateAsValidation reports a unique violation that slipped past checkUnique
// as a field error.
func duplicateAsValidation(err error) error {
	if !errors.Is(err, repository.ErrDuplicate) {
		return err
	}
	if strings.Contains(err.Error(), "tax_id") {
		return validation.NewError("taxId", msgTaxIDTaken)
	}
	return validation.NewError("legalName", msgLegalNameTaken)
}

// finish refreshes the situation after a write. The write already succeeded, so a
// refresh failure is logged rather than returned.
func (s *supplierService) finish(ctx context.Context, sup *model.Supplier) *model.Supplier {
	sit, err := s.Situations.Refresh(ctx, sup)
	if err != nil {
		logger.FromContext(ctx).Error("supplier_situation_refresh_failed",
			zap.String("supplier_id", sup.ID),
			zap.Error(err),
		)
	} else {
		sup.Situation = sit
	}
	sup.IsCompletedRegistration = sup.RegistrationComplete()
	return sup
}

// hydrate fills domain reference names with a single query for all suppliers.
func (s *supplierService) hydrate(ctx context.Context, sups ...*model.Supplier) error {
	var ids []int
	for _, sup := range sups {
		for _, slot := range sup.DomainRefs() {
			if *slot.Ref != nil {
				ids = append(ids, (*slot.Ref).ID)
			}
		}
	}
	values, err := s.Domains.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("find domain values: %w", err)
	}
	for _, sup := range sups {
		for _, slot := range sup.DomainRefs() {
			if ref := *slot.Ref; ref != nil {
				ref.Name = values[ref.ID].Name
			}
		}
		sup.IsCompletedRegistration = sup.RegistrationComplete()
	}
	return nil
}

func pointers[T any](items []T) []*T {
	out := make([]*T, len(items))
	for i := range items {
		out[i] = &items[i]
	}
	return out
}
