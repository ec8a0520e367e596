// Package cep resolves Brazilian postal codes (CEP) into addresses using public web services.
package cep

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"supplierapi/internal/brdoc"
)

var (
	ErrInvalidCEP     = errors.New("invalid cep format")
	ErrCEPNotFound    = errors.New("cep not found")
	ErrCEPUnavailable = errors.New("cep service unavailable")
)

// Message returns the user facing message for a lookup error.
func Message(err error) string {
	switch {
	case errors.Is(err, ErrInvalidCEP):
		return "Formato de CEP inválido."
	case errors.Is(err, ErrCEPNotFound):
		return "CEP não encontrado."
	default:
		return "Não foi possível conectar ao serviço de CEP."
	}
}

// Address is the part of an address a postal code determines.
type Address struct {
	CEP           string `json:"cep"`
	Street        string `json:"street"`
	Neighbourhood string `json:"neighbourhood"`
	City          string `json:"city"`
	State         string `json:"state"`
}

// Provider queries one web service. Lookup returns ErrCEPNotFound when the service
// answered that the code does not exist; any other error lets the next provider try.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, cep string) (*Address, error)
}

// Cache stores resolved addresses by CEP digits.
type Cache interface {
	Get(ctx context.Context, cep string) (*Address, bool, error)
	Set(ctx context.Context, cep string, addr *Address) error
}

// Resolver is what the rest of the application depends on.
type Resolver interface {
	Lookup(ctx context.Context, raw string) (*Address, error)
}

// Client tries its providers in order until one answers.
type Client struct {
	providers []Provider
	cache     Cache
	log       *zap.Logger
	lookups   *prometheus.CounterVec
}

type Option func(*Client)

func WithCache(c Cache) Option { return func(cl *Client) { cl.cache = c } }

func WithLogger(l *zap.Logger) Option { return func(cl *Client) { cl.log = l } }

// WithMetrics registers the cep_lookups_total counter on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(cl *Client) {
		if err := reg.Register(cl.lookups); err != nil {
			var already prometheus.AlreadyRegisteredError
			if errors.As(err, &already) {
				if existing, ok := already.ExistingCollector.(*prometheus.CounterVec); ok {
					cl.lookups = existing
				}
			}
		}
	}
}

// NewClient builds a client over providers, tried in the given order.
func NewClient(providers []Provider, opts ...Option) *Client {
	c := &Client{
		providers: providers,
		log:       zap.NewNop(),
		lookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "cep_lookups_total",
				Help: "Postal code lookups by provider and result.",
			},
			[]string{"provider", "result"},
		),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// NewHTTPClient returns an HTTP client with tracing and a per request timeout.
func NewHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
}

// DefaultProviders returns ApiCEP, ViaCEP and OpenCEP in that order.
func DefaultProviders(hc *http.Client) []Provider {
	return []Provider{
		NewAPICEP(hc, ""),
		NewViaCEP(hc, ""),
		NewOpenCEP(hc, ""),
	}
}

// Lookup validates raw and resolves it. Providers are tried in order until one
// returns an address; a not-found answer is remembered but the next provider is
// still asked. The result is ErrCEPNotFound only when no provider succeeded and at
// least one reported not-found.
func (c *Client) Lookup(ctx context.Context, raw string) (*Address, error) {
	cep, ok := brdoc.NormalizeCEP(raw)
	if !ok {
		return nil, ErrInvalidCEP
	}

	if c.cache != nil {
		addr, hit, err := c.cache.Get(ctx, cep)
		if err != nil {
			c.log.Warn("cep_cache_get_failed", zap.String("cep", cep), zap.Error(err))
		} else if hit {
			c.lookups.WithLabelValues("cache", "success").Inc()
			return addr, nil
		}
	}

	notFound := false
	for _, p := range c.providers {
		addr, err := p.Lookup(ctx, cep)
		switch {
		case err == nil:
			c.lookups.WithLabelValues(p.Name(), "success").Inc()
			addr.CEP = cep
			if c.cache != nil {
				if err := c.cache.Set(ctx, cep, addr); err != nil {
					c.log.Warn("cep_cache_set_failed", zap.String("cep", cep), zap.Error(err))
				}
			}
			return addr, nil
		case errors.Is(err, ErrCEPNotFound):
			c.lookups.WithLabelValues(p.Name(), "not_found").Inc()
			notFound = true
		default:
			c.lookups.WithLabelValues(p.Name(), "error").Inc()
			c.log.Warn("cep_provider_failed",
				zap.String("provider", p.Name()),
				zap.String("cep", cep),
				zap.Error(err),
			)
		}
		if ctx.Err() != nil {
			break
		}
	}

	if notFound {
		return nil, ErrCEPNotFound
	}
	return nil, ErrCEPUnavailable
}
