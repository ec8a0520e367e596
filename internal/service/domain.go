package service

import (
	"context"

	"supplierapi/internal/model"
	"supplierapi/internal/repository"
)

const msgDomainNotFound = "Lista de domínio não encontrada."

// DomainService serves the lookup lists used by the registration forms.
type DomainService interface {
	// List returns the values of one of the listed kinds, sorted by id.
	List(ctx context.Context, kind model.DomainKind) ([]model.DomainValue, error)

	AttachmentTypes(ctx context.Context) ([]model.DomainValue, error)
}

type domainService struct {
	repo repository.DomainRepository
}

func NewDomainService(repo repository.DomainRepository) DomainService {
	return &domainService{repo: repo}
}

func (s *domainService) List(ctx context.Context, kind model.DomainKind) ([]model.DomainValue, error) {
	if !kind.IsListed() {
		return nil, notFound(msgDomainNotFound)
	}
	return s.repo.ListByKind(ctx, kind)
}

func (s *domainService) AttachmentTypes(ctx context.Context) ([]model.DomainValue, error) {
	return s.repo.ListByKind(ctx, model.KindAttachmentType)
}
