// Package service holds the use cases behind the HTTP handlers. Services depend on
// repository and storage interfaces and report failures with the sentinel errors below.
package service

import (
	"database/sql"
	"errors"

	"github.com/google/uuid"
)

var (
	ErrIDRequired       = errors.New("id is required")
	ErrInvalidID        = errors.New("invalid id")
	ErrNotFound         = errors.New("not found")
	ErrConflict         = errors.New("conflict")
	ErrMethodNotAllowed = errors.New("method not allowed")
	ErrReaderNil        = errors.New("reader is nil")
)

// Error pairs a sentinel kind with the message shown to API clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func notFound(msg string) error { return &Error{Kind: ErrNotFound, Message: msg} }

func conflict(msg string) error { return &Error{Kind: ErrConflict, Message: msg} }

const (
	msgSupplierNotFound   = "Fornecedor não encontrado."
	msgAttachmentNotFound = "Anexo não encontrado."
	msgMatrixNotFound     = "Matriz de responsabilidade não encontrada."
	msgCriterionNotFound  = "Critério de avaliação não encontrado."
	msgEvaluationNotFound = "Avaliação não encontrada."
	msgPeriodNotFound     = "Período de avaliação não encontrado."
)

// checkID rejects empty and malformed record ids before they reach the database.
func checkID(id string) error {
	if id == "" {
		return ErrIDRequired
	}
	if uuid.Validate(id) != nil {
		return ErrInvalidID
	}
	return nil
}

// orNotFound maps sql.ErrNoRows to a not-found error carrying msg.
func orNotFound(err error, msg string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return notFound(msg)
	}
	return err
}

const (
	DefaultPageSize = 12
	MaxPageSize     = 100
)

// Page is a 1-based page request.
type Page struct {
	Number int
	Size   int
}

// Normalize applies the default size, caps it and clamps the page number.
func (p Page) Normalize() Page {
	if p.Size <= 0 {
		p.Size = DefaultPageSize
	}
	if p.Size > MaxPageSize {
		p.Size = MaxPageSize
	}
	if p.Number < 1 {
		p.Number = 1
	}
	return p
}

func (p Page) offset() int { return (p.Number - 1) * p.Size }
