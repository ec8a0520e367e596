package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
)

const msgDisallowedHost = "Host não permitido."

// AllowedHosts rejects requests whose Host header fails allowed. Paths listed in
// exempt are served regardless so that local health checks keep working.
func AllowedHosts(allowed func(host string) bool, exempt ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := strings.TrimRight(c.Path(), "/")
		for _, p := range exempt {
			if path == strings.TrimRight(p, "/") {
				return c.Next()
			}
		}
		if !allowed(c.Hostname()) {
			return &Error{Status: fiber.StatusBadRequest, Code: "DISALLOWED_HOST", Message: msgDisallowedHost}
		}
		return c.Next()
	}
}
