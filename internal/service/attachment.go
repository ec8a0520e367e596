package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"supplierapi/internal/logger"
	"supplierapi/internal/model"
	"supplierapi/internal/repository"
	"supplierapi/internal/storage"
	"supplierapi/internal/validation"
)

// MaxAttachmentSize is the largest accepted upload, in bytes.
const MaxAttachmentSize = 10 << 20

// AllowedAttachmentExtensions are the accepted file extensions, lowercase.
var AllowedAttachmentExtensions = []string{".pdf", ".doc", ".docx", ".jpg", ".jpeg", ".png"}

// MsgFileRequired is reported when a multipart request carries no file.
const MsgFileRequired = "Arquivo é obrigatório."

const (
	msgFileTooLarge         = "Arquivo muito grande. Tamanho máximo: 10MB."
	msgFileTypeNotAllowed   = "Tipo de arquivo não permitido."
	msgAttachmentTypeAbsent = "Tipo de anexo não encontrado."
	msgFileMissing          = "Arquivo não existe no servidor."
	msgAttachmentConcurrent = "Outro envio deste tipo de anexo está em andamento. Tente novamente."
)

// AttachmentUpload is one multipart upload.
type AttachmentUpload struct {
	SupplierID       string
	AttachmentTypeID int
	FileName         string
	ContentType      string
	Size             int64
	Description      string
	Content          io.Reader
}

// AttachmentDownload is an open attachment object. The caller closes Content.
type AttachmentDownload struct {
	FileName    string
	ContentType string
	Size        int64
	Content     io.ReadCloser
}

// AttachmentService defines the use cases for supplier attachments.
type AttachmentService interface {
	// Upload stores the file, then its record, removing the object again if the record
	// cannot be saved. A previous attachment of the same type is swapped out in the same
	// transaction and its object deleted after commit.
	Upload(ctx context.Context, in AttachmentUpload) (*model.Attachment, error)

	// ListBySupplier returns the supplier's attachments, newest first.
	ListBySupplier(ctx context.Context, supplierID string) ([]model.Attachment, error)

	Download(ctx context.Context, id string) (*AttachmentDownload, error)

	// Delete removes the object, then the record.
	Delete(ctx context.Context, id string) error
}

type attachmentService struct {
	store      storage.Storage
	repo       repository.AttachmentRepository
	suppliers  repository.SupplierRepository
	domains    repository.DomainRepository
	situations SituationService
}

// NewAttachmentService constructs a new AttachmentService.
func NewAttachmentService(
	store storage.Storage,
	repo repository.AttachmentRepository,
	suppliers repository.SupplierRepository,
	domains repository.DomainRepository,
	situations SituationService,
) AttachmentService {
	return &attachmentService{
		store:      store,
		repo:       repo,
		suppliers:  suppliers,
		domains:    domains,
		situations: situations,
	}
}

func allowedExtension(fileName string) bool {
	ext := strings.ToLower(path.Ext(fileName))
	for _, allowed := range AllowedAttachmentExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

func (s *attachmentService) Upload(ctx context.Context, in AttachmentUpload) (*model.Attachment, error) {
	verr := &validation.Error{}
	switch {
	case in.Content == nil || in.FileName == "":
		verr.Add("file", MsgFileRequired)
	case in.Size > MaxAttachmentSize:
		verr.Add("file", msgFileTooLarge)
	case !allowedExtension(in.FileName):
		verr.Add("file", msgFileTypeNotAllowed)
	}

	var sup *model.Supplier
	switch err := checkID(in.SupplierID); {
	case errors.Is(err, ErrIDRequired):
		verr.Add("supplier", msgRequired)
	case err != nil:
		verr.Add("supplier", msgSupplierNotFound)
	default:
		found, err := s.suppliers.FindByID(ctx, in.SupplierID)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			verr.Add("supplier", msgSupplierNotFound)
		case err != nil:
			return nil, err
		}
		sup = found
	}

	types, err := s.domains.FindByIDs(ctx, []int{in.AttachmentTypeID})
	if err != nil {
		return nil, fmt.Errorf("find attachment type: %w", err)
	}
	if t, ok := types[in.AttachmentTypeID]; !ok || t.Kind != model.KindAttachmentType {
		verr.Add("attachmentType", msgAttachmentTypeAbsent)
	}
	if err := verr.OrNil(); err != nil {
		return nil, err
	}

	previous, err := s.repo.FindBySupplierAndType(ctx, sup.ID, in.AttachmentTypeID)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("find previous attachment: %w", err)
	}

	key := storage.AttachmentKey(sup.ID, in.FileName)
	contentType := in.ContentType
	if contentType == "" {
		contentType = guessContentType(in.FileName)
	}
	objInfo, err := s.store.Put(ctx, key, in.Content, storage.PutObjectOptions{
		Size:        in.Size,
		ContentType: contentType,
		Metadata: map[string]string{
			"original-filename": in.FileName,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("upload to storage: %w", err)
	}

	a := &model.Attachment{
		ID:               uuid.NewString(),
		SupplierID:       sup.ID,
		AttachmentTypeID: in.AttachmentTypeID,
		FileName:         in.FileName,
		StoragePath:      objInfo.Key,
		Size:             objInfo.Size,
		ContentType:      contentType,
		Description:      in.Description,
		CreatedAt:        time.Now().UTC(),
	}
	var stored *model.Attachment
	if previous != nil {
		stored, err = s.repo.Replace(ctx, previous.ID, a)
	} else {
		stored, err = s.repo.Create(ctx, a)
	}
	if err != nil {
		if delErr := s.store.Delete(ctx, key); delErr != nil {
			logger.FromContext(ctx).Warn("attachment_rollback_failed",
				zap.String("key", key), zap.Error(delErr))
			err = fmt.Errorf("%w; rollback delete failed: %v", err, delErr)
		}
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, conflict(msgAttachmentConcurrent)
		}
		return nil, fmt.Errorf("db save failed: %w", err)
	}

	// Old object goes after commit; failing here only leaves an orphan behind.
	if previous != nil && previous.StoragePath != key {
		if err := s.store.Delete(ctx, previous.StoragePath); err != nil {
			logger.FromContext(ctx).Warn("attachment_orphaned",
				zap.String("key", previous.StoragePath), zap.Error(err))
		}
	}

	logger.FromContext(ctx).Info("attachment_uploaded",
		zap.String("supplier_id", sup.ID),
		zap.String("attachment_id", stored.ID),
		zap.Int("attachment_type", stored.AttachmentTypeID),
		zap.Int64("size", stored.Size),
		zap.Bool("replaced", previous != nil),
	)
	s.refresh(ctx, sup)
	return stored, nil
}

func (s *attachmentService) ListBySupplier(ctx context.Context, supplierID string) ([]model.Attachment, error) {
	if err := checkID(supplierID); err != nil {
		return nil, err
	}
	if _, err := s.suppliers.FindByID(ctx, supplierID); err != nil {
		return nil, orNotFound(err, msgSupplierNotFound)
	}
	return s.repo.ListBySupplier(ctx, supplierID)
}

func (s *attachmentService) Download(ctx context.Context, id string) (*AttachmentDownload, error) {
	a, err := s.find(ctx, id)
	if err != nil {
		return nil, err
	}
	rc, info, err := s.store.Get(ctx, a.StoragePath)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotFound) {
			return nil, notFound(msgFileMissing)
		}
		return nil, fmt.Errorf("get object: %w", err)
	}

	contentType := a.ContentType
	if contentType == "" {
		contentType = guessContentType(a.FileName)
	}
	fileName := a.FileName
	if fileName == "" {
		fileName = "download"
	}
	return &AttachmentDownload{
		FileName:    fileName,
		ContentType: contentType,
		Size:        info.Size,
		Content:     rc,
	}, nil
}

func (s *attachmentService) Delete(ctx context.Context, id string) error {
	a, err := s.find(ctx, id)
	if err != nil {
		return err
	}
	if err := s.remove(ctx, a); err != nil {
		return err
	}
	logger.FromContext(ctx).Info("attachment_deleted",
		zap.String("supplier_id", a.SupplierID),
		zap.String("attachment_id", a.ID),
	)

	sup, err := s.suppliers.FindByID(ctx, a.SupplierID)
	if err != nil {
		return orNotFound(err, msgSupplierNotFound)
	}
	s.refresh(ctx, sup)
	return nil
}

func (s *attachmentService) find(ctx context.Context, id string) (*model.Attachment, error) {
	if err := checkID(id); err != nil {
		return nil, err
	}
	a, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, orNotFound(err, msgAttachmentNotFound)
	}
	return a, nil
}

// remove deletes the object first so a failure keeps the record pointing at it.
func (s *attachmentService) remove(ctx context.Context, a *model.Attachment) error {
	if err := s.store.Delete(ctx, a.StoragePath); err != nil {
		return fmt.Errorf("delete storage: %w", err)
	}
	return s.repo.Delete(ctx, a.ID)
}

func (s *attachmentService) refresh(ctx context.Context, sup *model.Supplier) {
	if _, err := s.situations.Refresh(ctx, sup); err != nil {
		logger.FromContext(ctx).Error("supplier_situation_refresh_failed",
			zap.String("supplier_id", sup.ID),
			zap.Error(err),
		)
	}
}

func guessContentType(fileName string) string {
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(fileName))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}
