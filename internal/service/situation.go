package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"supplierapi/internal/logger"
	"supplierapi/internal/model"
	"supplierapi/internal/repository"
)

// SituationService keeps a supplier's situation in line with its registration,
// documentation and responsibility matrix.
type SituationService interface {
	// Refresh appends a history entry when the derived situation differs from the
	// current one and returns the situation in force afterwards.
	Refresh(ctx context.Context, s *model.Supplier) (*model.SituationEntry, error)

	// History lists every situation the supplier went through, newest first.
	History(ctx context.Context, supplierID string) ([]model.SituationEntry, error)
}

type situationService struct {
	suppliers   repository.SupplierRepository
	domains     repository.DomainRepository
	situations  repository.SituationRepository
	attachments repository.AttachmentRepository
	matrices    repository.MatrixRepository
}

func NewSituationService(
	suppliers repository.SupplierRepository,
	domains repository.DomainRepository,
	situations repository.SituationRepository,
	attachments repository.AttachmentRepository,
	matrices repository.MatrixRepository,
) SituationService {
	return &situationService{
		suppliers:   suppliers,
		domains:     domains,
		situations:  situations,
		attachments: attachments,
		matrices:    matrices,
	}
}

func (s *situationService) Refresh(ctx context.Context, sup *model.Supplier) (*model.SituationEntry, error) {
	types, err := s.domains.ListByKind(ctx, model.KindAttachmentType)
	if err != nil {
		return nil, fmt.Errorf("list attachment types: %w", err)
	}
	attachments, err := s.attachments.ListBySupplier(ctx, sup.ID)
	if err != nil {
		return nil, fmt.Errorf("list attachments: %w", err)
	}

	matrixComplete := false
	m, err := s.matrices.FindBySupplier(ctx, sup.ID)
	switch {
	case err == nil:
		matrixComplete = m.Complete()
	case errors.Is(err, sql.ErrNoRows):
	default:
		return nil, fmt.Errorf("find matrix: %w", err)
	}

	target := model.TargetSituation(
		sup.RegistrationComplete(),
		model.DocumentationComplete(types, sup.RiskLevel, attachments),
		matrixComplete,
	)

	cur, err := s.situations.Current(ctx, sup.ID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("current situation: %w", err)
	}
	if target.Matches(cur) {
		return cur, nil
	}

	dv, err := s.domains.FindSituation(ctx, target.Name, target.Pendency)
	if err != nil {
		return nil, fmt.Errorf("find situation %s: %w", target.Name, err)
	}
	if err := s.situations.Append(ctx, sup.ID, dv.ID); err != nil {
		return nil, fmt.Errorf("append situation: %w", err)
	}

	next := &model.SituationEntry{
		SituationID:  dv.ID,
		Name:         dv.Name,
		PendencyType: target.Pendency,
		CreatedAt:    time.Now().UTC(),
	}
	if target.Pendency != nil {
		next.Pendency = target.Pendency.String()
	}

	fields := []zap.Field{
		zap.String("supplier_id", sup.ID),
		zap.String("situation", next.Name),
		zap.String("pendency", next.Pendency),
	}
	if cur != nil {
		fields = append(fields, zap.String("previous", cur.Name), zap.String("previous_pendency", cur.Pendency))
	}
	logger.FromContext(ctx).Info("supplier_situation_changed", fields...)
	return next, nil
}

func (s *situationService) History(ctx context.Context, supplierID string) ([]model.SituationEntry, error) {
	if err := checkID(supplierID); err != nil {
		return nil, err
	}
	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		return nil, orNotFound(err, msgSupplierNotFound)
	}
	return s.situations.ListBySupplier(ctx, supplierID)
}
