package cep

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"supplierapi/internal/brdoc"
)

const (
	apiCEPBaseURL  = "https://cdn.apicep.com/file/apicep"
	viaCEPBaseURL  = "https://viacep.com.br/ws"
	openCEPBaseURL = "https://opencep.com/v1"
)

// getJSON performs a GET and decodes a JSON body into out. Bodies of non 2xx
// responses are not decoded; the status code is returned for the caller to map.
func getJSON(ctx context.Context, hc *http.Client, url string, out any) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := hc.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}

func unexpectedStatus(provider string, status int) error {
	return fmt.Errorf("%s: unexpected status %d", provider, status)
}

type viaCEP struct {
	hc      *http.Client
	baseURL string
}

// NewViaCEP queries viacep.com.br. An empty baseURL selects the public service.
func NewViaCEP(hc *http.Client, baseURL string) Provider {
	if baseURL == "" {
		baseURL = viaCEPBaseURL
	}
	return &viaCEP{hc: hc, baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *viaCEP) Name() string { return "viacep" }

type viaCEPResponse struct {
	Logradouro string `json:"logradouro"`
	Bairro     string `json:"bairro"`
	Localidade string `json:"localidade"`
	UF         string `json:"uf"`
	Erro       any    `json:"erro"`
}

func (p *viaCEP) Lookup(ctx context.Context, cep string) (*Address, error) {
	var body viaCEPResponse
	status, err := getJSON(ctx, p.hc, fmt.Sprintf("%s/%s/json/", p.baseURL, cep), &body)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusBadRequest:
		return nil, ErrInvalidCEP
	case status != http.StatusOK:
		return nil, unexpectedStatus(p.Name(), status)
	case body.Erro != nil && body.Erro != false && body.Erro != "false":
		return nil, ErrCEPNotFound
	}
	return &Address{
		Street:        body.Logradouro,
		Neighbourhood: body.Bairro,
		City:          body.Localidade,
		State:         body.UF,
	}, nil
}

type openCEP struct {
	hc      *http.Client
	baseURL string
}

// NewOpenCEP queries opencep.com. An empty baseURL selects the public service.
func NewOpenCEP(hc *http.Client, baseURL string) Provider {
	if baseURL == "" {
		baseURL = openCEPBaseURL
	}
	return &openCEP{hc: hc, baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *openCEP) Name() string { return "opencep" }

func (p *openCEP) Lookup(ctx context.Context, cep string) (*Address, error) {
	var body viaCEPResponse
	status, err := getJSON(ctx, p.hc, fmt.Sprintf("%s/%s", p.baseURL, cep), &body)
	if err != nil {
		return nil, err
	}
	switch status {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrCEPNotFound
	default:
		return nil, unexpectedStatus(p.Name(), status)
	}
	return &Address{
		Street:        body.Logradouro,
		Neighbourhood: body.Bairro,
		City:          body.Localidade,
		State:         body.UF,
	}, nil
}

type apiCEP struct {
	hc      *http.Client
	baseURL string
}

// NewAPICEP queries the apicep.com CDN. An empty baseURL selects the public service.
func NewAPICEP(hc *http.Client, baseURL string) Provider {
	if baseURL == "" {
		baseURL = apiCEPBaseURL
	}
	return &apiCEP{hc: hc, baseURL: strings.TrimRight(baseURL, "/")}
}

func (p *apiCEP) Name() string { return "apicep" }

type apiCEPResponse struct {
	Status   int    `json:"status"`
	Address  string `json:"address"`
	District string `json:"district"`
	City     string `json:"city"`
	State    string `json:"state"`
}

func (p *apiCEP) Lookup(ctx context.Context, cep string) (*Address, error) {
	var body apiCEPResponse
	status, err := getJSON(ctx, p.hc, fmt.Sprintf("%s/%s.json", p.baseURL, brdoc.FormatCEP(cep)), &body)
	if err != nil {
		return nil, err
	}
	switch {
	case status == http.StatusNotFound, body.Status == http.StatusNotFound:
		return nil, ErrCEPNotFound
	case status != http.StatusOK:
		return nil, unexpectedStatus(p.Name(), status)
	case body.Status != 0 && body.Status != http.StatusOK:
		return nil, unexpectedStatus(p.Name(), body.Status)
	}
	return &Address{
		Street:        body.Address,
		Neighbourhood: body.District,
		City:          body.City,
		State:         body.State,
	}, nil
}
