package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
)

// Error rejects a request before it reaches a handler. The application error
// handler renders it with its own status and code.
type Error struct {
	Status  int
	Code    string
	Message string
}

func (e *Error) Error() string { return e.Code + ": " + e.Message }

func unauthorized(message string) error {
	return &Error{Status: fiber.StatusUnauthorized, Code: "UNAUTHORIZED", Message: message}
}

// statusOf returns the status the client will receive once the error handler has
// rendered err.
func statusOf(c *fiber.Ctx, err error) int {
	if err == nil {
		return c.Response().StatusCode()
	}
	var merr *Error
	if errors.As(err, &merr) {
		return merr.Status
	}
	var ferr *fiber.Error
	if errors.As(err, &ferr) {
		return ferr.Code
	}
	return fiber.StatusInternalServerError
}
