package cep

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"supplierapi/internal/config"
)

type memCache struct {
	mu   sync.Mutex
	data map[string]*Address
}

func newMemCache() *memCache { return &memCache{data: map[string]*Address{}} }

func (m *memCache) Get(_ context.Context, cep string) (*Address, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.data[cep]
	return a, ok, nil
}

func (m *memCache) Set(_ context.Context, cep string, addr *Address) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[cep] = addr
	return nil
}

type stubProvider struct {
	name  string
	addr  *Address
	err   error
	calls int
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Lookup(context.Context, string) (*Address, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	a := *s.addr
	return &a, nil
}

func TestClient_Lookup(t *testing.T) {
	ctx := context.Background()
	se := &Address{Street: "Praça da Sé", Neighbourhood: "Sé", City: "São Paulo", State: "SP"}

	t.Run("invalid format never reaches providers", func(t *testing.T) {
		p := &stubProvider{name: "a", addr: se}
		_, err := NewClient([]Provider{p}).Lookup(ctx, "123")
		assert.ErrorIs(t, err, ErrInvalidCEP)
		assert.Zero(t, p.calls)
	})

	t.Run("falls back to next provider", func(t *testing.T) {
		first := &stubProvider{name: "a", err: errors.New("timeout")}
		second := &stubProvider{name: "b", addr: se}
		reg := prometheus.NewRegistry()
		c := NewClient([]Provider{first, second}, WithMetrics(reg))

		addr, err := c.Lookup(ctx, "01001-000")
		require.NoError(t, err)
		assert.Equal(t, "01001000", addr.CEP)
		assert.Equal(t, "São Paulo", addr.City)
		assert.Equal(t, 1, first.calls)
		assert.Equal(t, float64(1), testutil.ToFloat64(c.lookups.WithLabelValues("a", "error")))
		assert.Equal(t, float64(1), testutil.ToFloat64(c.lookups.WithLabelValues("b", "success")))
	})

	t.Run("not found when a provider says so and none succeeds", func(t *testing.T) {
		first := &stubProvider{name: "a", err: errors.New("down")}
		second := &stubProvider{name: "b", err: ErrCEPNotFound}
		_, err := NewClient([]Provider{first, second}).Lookup(ctx, "99999999")
		assert.ErrorIs(t, err, ErrCEPNotFound)
		assert.Equal(t, "CEP não encontrado.", Message(err))
	})

	t.Run("not found from one provider does not stop the next", func(t *testing.T) {
		first := &stubProvider{name: "a", err: ErrCEPNotFound}
		second := &stubProvider{name: "b", addr: se}
		third := &stubProvider{name: "c", addr: se}

		addr, err := NewClient([]Provider{first, second, third}).Lookup(ctx, "01001000")
		require.NoError(t, err)
		assert.Equal(t, "Sé", addr.Neighbourhood)
		assert.Equal(t, 1, first.calls)
		assert.Equal(t, 1, second.calls)
		assert.Zero(t, third.calls)
	})

	t.Run("unavailable when every provider fails", func(t *testing.T) {
		p := &stubProvider{name: "a", err: errors.New("down")}
		_, err := NewClient([]Provider{p}).Lookup(ctx, "01001000")
		assert.ErrorIs(t, err, ErrCEPUnavailable)
		assert.Equal(t, "Não foi possível conectar ao serviço de CEP.", Message(err))
	})

	t.Run("cache hit skips providers", func(t *testing.T) {
		p := &stubProvider{name: "a", addr: se}
		cache := newMemCache()
		c := NewClient([]Provider{p}, WithCache(cache))

		_, err := c.Lookup(ctx, "01001000")
		require.NoError(t, err)
		_, err = c.Lookup(ctx, "01001-000")
		require.NoError(t, err)
		assert.Equal(t, 1, p.calls)
	})
}

func TestViaCEP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/01001000/json/":
			w.Write([]byte(`{"cep":"01001-000","logradouro":"Praça da Sé","bairro":"Sé","localidade":"São Paulo","uf":"SP"}`))
		case "/99999999/json/":
			w.Write([]byte(`{"erro": true}`))
		case "/88888888/json/":
			w.Write([]byte(`{"erro": "true"}`))
		default:
			w.WriteHeader(http.StatusBadRequest)
		}
	}))
	defer srv.Close()

	p := NewViaCEP(srv.Client(), srv.URL)
	ctx := context.Background()

	addr, err := p.Lookup(ctx, "01001000")
	require.NoError(t, err)
	assert.Equal(t, "Praça da Sé", addr.Street)
	assert.Equal(t, "Sé", addr.Neighbourhood)
	assert.Equal(t, "SP", addr.State)

	_, err = p.Lookup(ctx, "99999999")
	assert.ErrorIs(t, err, ErrCEPNotFound)
	_, err = p.Lookup(ctx, "88888888")
	assert.ErrorIs(t, err, ErrCEPNotFound)
}

func TestOpenCEP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/01001000" {
			w.Write([]byte(`{"logradouro":"Praça da Sé","bairro":"Sé","localidade":"São Paulo","uf":"SP"}`))
			return
		}
		if r.URL.Path == "/50000000" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	p := NewOpenCEP(srv.Client(), srv.URL)

	addr, err := p.Lookup(context.Background(), "01001000")
	require.NoError(t, err)
	assert.Equal(t, "São Paulo", addr.City)

	_, err = p.Lookup(context.Background(), "99999999")
	assert.ErrorIs(t, err, ErrCEPNotFound)

	_, err = p.Lookup(context.Background(), "50000000")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, ErrCEPNotFound)
}

func TestAPICEP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/01001-000.json":
			w.Write([]byte(`{"status":200,"ok":true,"code":"01001-000","state":"SP","city":"São Paulo","district":"Sé","address":"Praça da Sé"}`))
		case "/99999-999.json":
			w.Write([]byte(`{"status":404,"ok":false,"message":"CEP not found"}`))
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))
	defer srv.Close()

	p := NewAPICEP(srv.Client(), srv.URL)

	addr, err := p.Lookup(context.Background(), "01001000")
	require.NoError(t, err)
	assert.Equal(t, "Praça da Sé", addr.Street)
	assert.Equal(t, "Sé", addr.Neighbourhood)

	_, err = p.Lookup(context.Background(), "99999999")
	assert.ErrorIs(t, err, ErrCEPNotFound)

	_, err = p.Lookup(context.Background(), "12345678")
	assert.Error(t, err)
}

func TestDefaultProvidersOrder(t *testing.T) {
	ps := DefaultProviders(NewHTTPClient(time.Second))
	require.Len(t, ps, 3)
	assert.Equal(t, "apicep", ps[0].Name())
	assert.Equal(t, "viacep", ps[1].Name())
	assert.Equal(t, "opencep", ps[2].Name())
}

func TestNewRedisCache_Unreachable(t *testing.T) {
	_, err := NewRedisCache(config.RedisConfig{Addr: "127.0.0.1:1"}, time.Minute)
	assert.Error(t, err)
}
