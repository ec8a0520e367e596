package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"supplierapi/internal/logger"
	"supplierapi/internal/model"
)

// newApp renders middleware errors the way the application error handler does,
// minus the JSON envelope.
func newApp() *fiber.App {
	return fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var merr *Error
			if errors.As(err, &merr) {
				return c.Status(merr.Status).SendString(merr.Code)
			}
			return c.Status(statusOf(c, err)).SendString(err.Error())
		},
	})
}

func body(t *testing.T, r io.Reader) string {
	t.Helper()
	b, err := io.ReadAll(r)
	require.NoError(t, err)
	return string(b)
}

func TestRequestID(t *testing.T) {
	var buf bytes.Buffer
	app := newApp()
	app.Use(RequestID(logger.NewWithWriter(logger.DefaultConfig(), &buf)))

	app.Get("/test", func(c *fiber.Ctx) error {
		logger.FromContext(c.UserContext()).Info("inside")
		return c.SendString(c.Locals(RequestIDLocalKey).(string))
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		buf.Reset()
		resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)
		assert.Equal(t, ridHeader, body(t, resp.Body))
		assert.Contains(t, buf.String(), `"request_id":"`+ridHeader+`"`)
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, "test-id-123")

		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, "test-id-123", resp.Header.Get(RequestIDHeader))
		assert.Equal(t, "test-id-123", body(t, resp.Body))
		assert.Contains(t, buf.String(), `"request_id":"test-id-123"`)
	})
}

func TestRequestID_TraceID(t *testing.T) {
	var buf bytes.Buffer
	traceID, err := trace.TraceIDFromHex("4bf92f3577b34da6a3ce929d0e0e4736")
	require.NoError(t, err)
	spanID, err := trace.SpanIDFromHex("00f067aa0ba902b7")
	require.NoError(t, err)

	app := newApp()
	app.Use(func(c *fiber.Ctx) error {
		sc := trace.NewSpanContext(trace.SpanContextConfig{TraceID: traceID, SpanID: spanID, TraceFlags: trace.FlagsSampled})
		c.SetUserContext(trace.ContextWithSpanContext(c.UserContext(), sc))
		return c.Next()
	})
	app.Use(RequestID(logger.NewWithWriter(logger.DefaultConfig(), &buf)))
	app.Get("/test", func(c *fiber.Ctx) error {
		logger.FromContext(c.UserContext()).Info("inside")
		return c.SendStatus(fiber.StatusOK)
	})

	_, err = app.Test(httptest.NewRequest("GET", "/test", nil))
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `"trace_id":"4bf92f3577b34da6a3ce929d0e0e4736"`)
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := newApp()
	app.Use(RequestID(zap.NewNop()))
	app.Use(Logger(logger.NewWithWriter(logger.DefaultConfig(), &buf)))
	app.Use(func(c *fiber.Ctx) error {
		c.Locals(UserLocalKey, &model.User{ID: 7})
		return c.Next()
	})

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))

	assert.Equal(t, "http_request", logData["msg"])
	assert.Equal(t, "info", logData["level"])
	assert.NotEmpty(t, logData["request_id"])
	assert.Equal(t, "GET", logData["method"])
	assert.Equal(t, "/test", logData["path"])
	assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
	assert.Equal(t, float64(7), logData["user_id"])
	assert.NotNil(t, logData["latency_ms"])
	assert.NotEmpty(t, logData["ts"])

	buf.Reset()
	resp, err = app.Test(httptest.NewRequest("GET", "/boom", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

	line, _, _ := strings.Cut(buf.String(), "\n")
	require.NoError(t, json.Unmarshal([]byte(line), &logData))
	assert.Equal(t, "error", logData["level"])
	assert.Equal(t, float64(fiber.StatusInternalServerError), logData["status"])
}

func TestProxyAuth(t *testing.T) {
	fullHeaders := map[string]string{
		fiber.HeaderAuthorization: "Bearer abc.def",
		HeaderUserID:              "42",
		HeaderUserEmail:           "maria%40acme.com.br",
		HeaderUserFullName:        "Maria%20Jos%C3%A9",
		HeaderUserGroup:           "compras",
	}
	with := func(overrides map[string]string) map[string]string {
		h := make(map[string]string, len(fullHeaders))
		for k, v := range fullHeaders {
			h[k] = v
		}
		for k, v := range overrides {
			h[k] = v
		}
		return h
	}

	tests := []struct {
		name       string
		required   bool
		headers    map[string]string
		wantStatus int
		wantBody   string
	}{
		{
			name:       "happy path decodes the identity",
			headers:    fullHeaders,
			wantStatus: fiber.StatusOK,
			wantBody:   "42|maria@acme.com.br|Maria José|compras",
		},
		{
			name:       "anonymous without authorization",
			headers:    map[string]string{},
			wantStatus: fiber.StatusOK,
			wantBody:   "anonymous",
		},
		{
			name:       "other schemes stay anonymous",
			headers:    map[string]string{fiber.HeaderAuthorization: "Basic dXNlcjpwYXNz"},
			wantStatus: fiber.StatusOK,
			wantBody:   "anonymous",
		},
		{
			name:       "required - missing credentials",
			required:   true,
			headers:    map[string]string{},
			wantStatus: fiber.StatusUnauthorized,
			wantBody:   "UNAUTHORIZED",
		},
		{
			name:       "bearer without token",
			headers:    with(map[string]string{fiber.HeaderAuthorization: "Bearer"}),
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "non numeric user id",
			headers:    with(map[string]string{HeaderUserID: "abc"}),
			wantStatus: fiber.StatusUnauthorized,
		},
		{
			name:       "malformed escape kept as sent",
			headers:    with(map[string]string{HeaderUserFullName: "Loja 100%", HeaderUserGroup: "compras%zz"}),
			wantStatus: fiber.StatusOK,
			wantBody:   "42|maria@acme.com.br|Loja 100%|compras%zz",
		},
		{
			name:       "missing group",
			headers:    with(map[string]string{HeaderUserGroup: ""}),
			wantStatus: fiber.StatusUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp()
			app.Use(ProxyAuth(tt.required))
			app.Get("/me", func(c *fiber.Ctx) error {
				u := UserFromCtx(c)
				if u == nil {
					return c.SendString("anonymous")
				}
				return c.SendString(strings.Join([]string{
					strconv.Itoa(u.ID), u.Email, u.FullName, u.Group,
				}, "|"))
			})

			req := httptest.NewRequest("GET", "/me", nil)
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)

			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, body(t, resp.Body))
			}
		})
	}
}

func TestAllowedHosts(t *testing.T) {
	allowed := func(host string) bool { return host == "api.acme.com.br" }

	app := newApp()
	app.Use(AllowedHosts(allowed, "/api/"))
	app.Get("/api", func(c *fiber.Ctx) error { return c.SendString("root") })
	app.Get("/api/suppliers-list", func(c *fiber.Ctx) error { return c.SendString("list") })

	tests := []struct {
		name       string
		host       string
		path       string
		wantStatus int
	}{
		{name: "allowed host", host: "api.acme.com.br", path: "/api/suppliers-list", wantStatus: fiber.StatusOK},
		{name: "disallowed host", host: "evil.example", path: "/api/suppliers-list", wantStatus: fiber.StatusBadRequest},
		{name: "exempt health path", host: "127.0.0.1:8081", path: "/api/", wantStatus: fiber.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", tt.path, nil)
			req.Host = tt.host
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}
