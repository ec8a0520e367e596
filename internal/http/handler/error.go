package handler

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"supplierapi/internal/http/middleware"
	"supplierapi/internal/logger"
	"supplierapi/internal/service"
	"supplierapi/internal/validation"
)

const (
	msgInvalidID      = "ID inválido."
	msgNotFound       = "Recurso não encontrado."
	msgConflict       = "Conflito com o estado atual do recurso."
	msgNotAllowed     = "Método não permitido."
	msgUnavailable    = "Serviço indisponível."
	msgInternal       = "Erro interno do servidor."
	msgBadRequest     = "Requisição inválida."
	msgPayloadTooBig  = "Requisição muito grande."
	msgValidation     = "Dados inválidos."
	msgFieldRequired  = "Este campo é obrigatório."
	msgIntegerInvalid = "Um número inteiro válido é necessário."
)

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"requestId"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string                  `json:"code"`
	Message string                  `json:"message"`
	Fields  []validation.FieldError `json:"fields,omitempty"`
}

// requestIDFromCtx extracts request_id previously stored by middleware.RequestID.
func requestIDFromCtx(c *fiber.Ctx) string {
	if v := c.Locals(middleware.RequestIDLocalKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	return c.Status(status).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error:     errorEnvelope{Code: code, Message: message},
	})
}

func writeValidation(c *fiber.Ctx, verr *validation.Error) error {
	return c.Status(fiber.StatusBadRequest).JSON(errorPayload{
		RequestID: requestIDFromCtx(c),
		Error: errorEnvelope{
			Code:    "VALIDATION_ERROR",
			Message: msgValidation,
			Fields:  verr.Fields,
		},
	})
}

// respondError maps an error returned by a service onto the envelope. Anything
// unrecognized is logged with the request logger and reported as INTERNAL_ERROR.
func respondError(c *fiber.Ctx, err error) error {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return writeValidation(c, verr)
	}

	message := func(fallback string) string {
		var se *service.Error
		if errors.As(err, &se) && se.Message != "" {
			return se.Message
		}
		return fallback
	}

	switch {
	case errors.Is(err, service.ErrIDRequired):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", message(msgFieldRequired))
	case errors.Is(err, service.ErrInvalidID):
		return writeError(c, fiber.StatusBadRequest, "INVALID_ID", message(msgInvalidID))
	case errors.Is(err, service.ErrReaderNil):
		return writeError(c, fiber.StatusBadRequest, "VALIDATION_ERROR", service.MsgFileRequired)
	case errors.Is(err, service.ErrNotFound):
		return writeError(c, fiber.StatusNotFound, "NOT_FOUND", message(msgNotFound))
	case errors.Is(err, service.ErrConflict):
		return writeError(c, fiber.StatusConflict, "CONFLICT", message(msgConflict))
	case errors.Is(err, service.ErrMethodNotAllowed):
		return writeError(c, fiber.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", message(msgNotAllowed))
	case errors.Is(err, service.ErrUnavailable):
		return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", message(msgUnavailable))
	}

	logger.FromContext(c.UserContext()).Error("request_failed",
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Error(err),
	)
	return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", msgInternal)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// Middleware errors carry their own status and code; service errors returned from a
// handler go through respondError.
func ErrorHandler() fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var merr *middleware.Error
		if errors.As(err, &merr) {
			return writeError(c, merr.Status, merr.Code, merr.Message)
		}

		var ferr *fiber.Error
		if !errors.As(err, &ferr) {
			return respondError(c, err)
		}

		switch ferr.Code {
		case fiber.StatusBadRequest:
			return writeError(c, ferr.Code, "BAD_REQUEST", msgBadRequest)
		case fiber.StatusNotFound:
			return writeError(c, ferr.Code, "NOT_FOUND", msgNotFound)
		case fiber.StatusMethodNotAllowed:
			return writeError(c, ferr.Code, "METHOD_NOT_ALLOWED", msgNotAllowed)
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, ferr.Code, "PAYLOAD_TOO_LARGE", msgPayloadTooBig)
		default:
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", msgInternal)
		}
	}
}
