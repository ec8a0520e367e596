package middleware

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"supplierapi/internal/model"
)

// UserLocalKey stores the authenticated *model.User in Fiber's context locals.
const UserLocalKey = "user"

// Identity headers set by the authenticating proxy in front of the API.
const (
	HeaderUserID       = "X-Authenticated-User-Id"
	HeaderUserEmail    = "X-Authenticated-User-Email"
	HeaderUserFullName = "X-Authenticated-User-Full-Name"
	HeaderUserGroup    = "X-Authenticated-User-Group"
)

const (
	msgInvalidAuthHeader = "Invalid authorization header."
	msgInvalidPayload    = "Invalid token payload."
	msgNoCredentials     = "Authentication credentials were not provided."
)

// ProxyAuth trusts the identity headers of the proxy whenever the request carries
// a Bearer token; the token itself was already verified upstream. Requests without
// a Bearer token stay anonymous unless required is set.
func ProxyAuth(required bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		fields := strings.Fields(c.Get(fiber.HeaderAuthorization))
		if len(fields) == 0 || !strings.EqualFold(fields[0], "bearer") {
			if required {
				return unauthorized(msgNoCredentials)
			}
			return c.Next()
		}
		if len(fields) != 2 {
			return unauthorized(msgInvalidAuthHeader)
		}

		user, ok := userFromHeaders(c)
		if !ok {
			return unauthorized(msgInvalidPayload)
		}
		c.Locals(UserLocalKey, user)
		return c.Next()
	}
}

func userFromHeaders(c *fiber.Ctx) (*model.User, bool) {
	id, err := strconv.Atoi(strings.TrimSpace(c.Get(HeaderUserID)))
	if err != nil {
		return nil, false
	}
	u := &model.User{ID: id}
	for _, h := range []struct {
		name string
		dst  *string
	}{
		{HeaderUserEmail, &u.Email},
		{HeaderUserFullName, &u.FullName},
		{HeaderUserGroup, &u.Group},
	} {
		v := headerValue(c.Get(h.name))
		if v == "" {
			return nil, false
		}
		*h.dst = v
	}
	return u, true
}

// headerValue percent-decodes a proxy header. Values that are not valid escapes,
// like a literal "100%", are kept as sent.
func headerValue(raw string) string {
	raw = strings.TrimSpace(raw)
	if v, err := url.PathUnescape(raw); err == nil {
		return v
	}
	return raw
}

// UserFromCtx returns the user stored by ProxyAuth, or nil for anonymous requests.
func UserFromCtx(c *fiber.Ctx) *model.User {
	u, _ := c.Locals(UserLocalKey).(*model.User)
	return u
}
