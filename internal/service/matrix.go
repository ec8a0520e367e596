package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"supplierapi/internal/logger"
	"supplierapi/internal/model"
	"supplierapi/internal/repository"
	"supplierapi/internal/validation"
)

const (
	MsgMatrixDeleteNotAllowed = "Operação DELETE não permitida para matrizes de responsabilidade."
	MsgMatrixListNotAllowed   = "Listagem não permitida. Use GET com ID específico para recuperar uma matriz."

	msgMatrixExists    = "Este fornecedor já possui uma matriz de responsabilidade."
	msgInvalidActivity = "Atividade inválida."
	msgInvalidArea     = "Área inválida."
)

// MatrixInput is the inbound matrix payload. Activities maps activity to area to RACI value.
type MatrixInput struct {
	Supplier   string                       `json:"supplier"`
	Activities map[string]map[string]string `json:"activities"`
}

// MatrixService manages the responsibility matrix of suppliers.
type MatrixService interface {
	Create(ctx context.Context, in *MatrixInput) (*model.ResponsibilityMatrix, error)

	Get(ctx context.Context, supplierID string) (*model.ResponsibilityMatrix, error)

	// Replace sets every cell; cells missing from the input become "-".
	Replace(ctx context.Context, supplierID string, in *MatrixInput) (*model.ResponsibilityMatrix, error)

	// Patch changes only the cells present in the input.
	Patch(ctx context.Context, supplierID string, in *MatrixInput) (*model.ResponsibilityMatrix, error)
}

type matrixService struct {
	repo       repository.MatrixRepository
	suppliers  repository.SupplierRepository
	situations SituationService
}

// NewMatrixService constructs a new MatrixService.
func NewMatrixService(
	repo repository.MatrixRepository,
	suppliers repository.SupplierRepository,
	situations SituationService,
) MatrixService {
	return &matrixService{repo: repo, suppliers: suppliers, situations: situations}
}

func (s *matrixService) Create(ctx context.Context, in *MatrixInput) (*model.ResponsibilityMatrix, error) {
	sup, err := s.supplierField(ctx, in.Supplier)
	if err != nil {
		return nil, err
	}
	if _, err := s.repo.FindBySupplier(ctx, sup.ID); err == nil {
		return nil, conflict(msgMatrixExists)
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find matrix: %w", err)
	}

	m := model.NewResponsibilityMatrix(sup.ID)
	if err := applyMatrix(m, in.Activities); err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	m.ID = uuid.NewString()
	m.CreatedAt = now
	m.UpdatedAt = now
	if err := s.repo.Create(ctx, m); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict(msgMatrixExists)
		}
		return nil, err
	}
	logger.FromContext(ctx).Info("responsibility_matrix_created",
		zap.String("supplier_id", sup.ID),
		zap.Bool("complete", m.Complete()),
	)
	s.refresh(ctx, sup)
	return m, nil
}

func (s *matrixService) Get(ctx context.Context, supplierID string) (*model.ResponsibilityMatrix, error) {
	if _, err := s.supplier(ctx, supplierID); err != nil {
		return nil, err
	}
	m, err := s.repo.FindBySupplier(ctx, supplierID)
	if err != nil {
		return nil, orNotFound(err, msgMatrixNotFound)
	}
	return m, nil
}

func (s *matrixService) Replace(ctx context.Context, supplierID string, in *MatrixInput) (*model.ResponsibilityMatrix, error) {
	return s.update(ctx, supplierID, in, true)
}

func (s *matrixService) Patch(ctx context.Context, supplierID string, in *MatrixInput) (*model.ResponsibilityMatrix, error) {
	return s.update(ctx, supplierID, in, false)
}

func (s *matrixService) update(ctx context.Context, supplierID string, in *MatrixInput, reset bool) (*model.ResponsibilityMatrix, error) {
	sup, err := s.supplier(ctx, supplierID)
	if err != nil {
		return nil, err
	}
	m, err := s.repo.FindBySupplier(ctx, sup.ID)
	if err != nil {
		return nil, orNotFound(err, msgMatrixNotFound)
	}

	if reset {
		fresh := model.NewResponsibilityMatrix(sup.ID)
		fresh.ID, fresh.CreatedAt = m.ID, m.CreatedAt
		m = fresh
	}
	if err := applyMatrix(m, in.Activities); err != nil {
		return nil, err
	}
	m.UpdatedAt = time.Now().UTC()
	if err := s.repo.Update(ctx, m); err != nil {
		return nil, orNotFound(err, msgMatrixNotFound)
	}
	logger.FromContext(ctx).Info("responsibility_matrix_updated",
		zap.String("supplier_id", sup.ID),
		zap.Bool("replace", reset),
		zap.Bool("complete", m.Complete()),
	)
	s.refresh(ctx, sup)
	return m, nil
}

// applyMatrix writes the given cells over m and checks the rules of every activity
// present in cells, on the resulting matrix.
func applyMatrix(m *model.ResponsibilityMatrix, cells map[string]map[string]string) error {
	verr := &validation.Error{}
	var touched []model.Activity
	for _, act := range model.Activities {
		if _, ok := cells[string(act)]; ok {
			touched = append(touched, act)
		}
	}
	for _, key := range slices.Sorted(maps.Keys(cells)) {
		if !model.Activity(key).Valid() {
			verr.Add("activities."+key, msgInvalidActivity)
		}
	}

	for _, act := range touched {
		row := cells[string(act)]
		for _, key := range slices.Sorted(maps.Keys(row)) {
			value := row[key]
			area := model.Area(key)
			if !area.Valid() {
				verr.Add(act.Field(area), msgInvalidArea)
				continue
			}
			v := model.RACI(value)
			if !v.Valid() {
				verr.Add(act.Field(area), model.MsgInvalidRACI)
				continue
			}
			m.Set(act, area, v)
		}
	}
	if err := verr.OrNil(); err != nil {
		return err
	}

	for _, act := range touched {
		if msg := m.Activities[act].Check(); msg != "" {
			verr.Add("activities."+string(act), msg)
		}
	}
	return verr.OrNil()
}

// supplierField resolves the supplier named in a request body, reporting problems
// as a field error.
func (s *matrixService) supplierField(ctx context.Context, id string) (*model.Supplier, error) {
	switch err := checkID(id); {
	case errors.Is(err, ErrIDRequired):
		return nil, validation.NewError("supplier", msgRequired)
	case err != nil:
		return nil, validation.NewError("supplier", msgSupplierNotFound)
	}
	sup, err := s.suppliers.FindByID(ctx, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, validation.NewError("supplier", msgSupplierNotFound)
	}
	return sup, err
}

func (s *matrixService) supplier(ctx context.Context, id string) (*model.Supplier, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	sup, err := s.suppliers.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, msgSupplierNotFound)
	}
	return sup, nil
}

func (s *matrixService) refresh(ctx context.Context, sup *model.Supplier) {
	if _, err := s.situations.Refresh(ctx, sup); err != nil {
		logger.FromContext(ctx).Error("supplier_situation_refresh_failed",
			zap.String("supplier_id", sup.ID),
			zap.Error(err),
		)
	}
}
