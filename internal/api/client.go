package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/tariffnom/tariffnom/internal/core"
	"github.com/tariffnom/tariffnom/internal/core/errx"
	logx "github.com/tariffnom/tariffnom/pkg/logger"
)

// resolvePath is exempt from global auth-expiry handling: a 400 from the
// resolver is a domain validation message, not a session problem.
const resolvePath = "/hs/resolve"

// CredentialSource supplies the bearer token attached to every request,
// when one is present in the client-side session store.
type CredentialSource interface {
	Token() (string, bool)
}

// Client is the single HTTP boundary to the tariff backend. Every 401/403
// response triggers the configured auth-expiry handler, which is expected
// to clear stored credentials and force the navigation machine to login.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	creds         CredentialSource
	onAuthExpired func()
}

// Option customises a Client.
type Option func(*Client)

// WithCredentialSource wires the session store the bearer token is read from.
func WithCredentialSource(src CredentialSource) Option {
	return func(c *Client) { c.creds = src }
}

// WithAuthExpiredHandler registers the global session-expiry hook.
func WithAuthExpiredHandler(fn func()) Option {
	return func(c *Client) { c.onAuthExpired = fn }
}

// WithHTTPClient replaces the underlying transport, mainly for tests.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New builds a Client for the configured base URL. The timeout is generous
// to tolerate slow backend scraping during first-time calculations.
func New(cfg core.APIConfig, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: cfg.HTTPTimeout()},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// errorBody covers the backend's inconsistent error shapes: sometimes
// {message}, sometimes {details}, sometimes plain text.
type errorBody struct {
	Message string `json:"message"`
	Details string `json:"details"`
}

// decodeErrorBody normalises a failed response body to one display string.
// An empty return means the caller's endpoint fallback should be used.
func decodeErrorBody(b []byte) string {
	if len(b) == 0 {
		return ""
	}
	var eb errorBody
	if err := json.Unmarshal(b, &eb); err == nil {
		if eb.Message != "" {
			return eb.Message
		}
		if eb.Details != "" {
			return eb.Details
		}
		return ""
	}
	return strings.TrimSpace(string(b))
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any, fallback string) error {
	var reqBody io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(b)
	}

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reqBody)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.creds != nil {
		if token, ok := c.creds.Token(); ok {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		logx.Error().Err(err).Str("method", method).Str("path", path).Msg("request failed")
		return errx.FromTransport(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))

		isAuthError := resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden
		isResolverValidation := resp.StatusCode == http.StatusBadRequest && path == resolvePath
		if isAuthError && !isResolverValidation && c.onAuthExpired != nil {
			c.onAuthExpired()
		}

		msg := decodeErrorBody(raw)
		if msg == "" {
			msg = fallback
		}
		logx.Warn().Int("status", resp.StatusCode).Str("path", path).Msg("backend returned error")
		return errx.FromStatus(resp.StatusCode, msg)
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		logx.Error().Err(err).Str("path", path).Msg("failed to decode response body")
		return errx.New(err, errx.KindUnknown, resp.StatusCode, fallback)
	}
	return nil
}

// Countries fetches the full country option list, mapped to {code, name}.
func (c *Client) Countries(ctx context.Context) ([]Country, error) {
	var wire []countryWire
	if err := c.do(ctx, http.MethodGet, "/countries/all", nil, nil, &wire, "Failed to load countries"); err != nil {
		return nil, err
	}
	countries := make([]Country, 0, len(wire))
	for _, w := range wire {
		countries = append(countries, Country{Code: w.CountryCode, Name: w.CountryName})
	}
	return countries, nil
}

// Products fetches the full product catalog. Missing categories are
// normalised to "Uncategorized" so filtering never sees empty fields.
func (c *Client) Products(ctx context.Context) ([]Product, error) {
	var products []Product
	if err := c.do(ctx, http.MethodGet, "/products/all", nil, nil, &products, "Failed to load products"); err != nil {
		return nil, err
	}
	for i := range products {
		if products[i].Category == "" {
			products[i].Category = "Uncategorized"
		}
	}
	return products, nil
}

// ProductByHsCode fetches a single product, or a not-found error.
func (c *Client) ProductByHsCode(ctx context.Context, hsCode string) (*Product, error) {
	var product Product
	if err := c.do(ctx, http.MethodGet, "/products/"+url.PathEscape(hsCode), nil, nil, &product, "Failed to load product"); err != nil {
		return nil, err
	}
	if product.Category == "" {
		product.Category = "Uncategorized"
	}
	return &product, nil
}

// CalculateTariff runs the full cost calculation for a validated draft.
func (c *Client) CalculateTariff(ctx context.Context, req TariffRequest) (*TariffResult, error) {
	var result TariffResult
	if err := c.do(ctx, http.MethodPost, "/tariff/calculate", nil, req, &result, "Failed to calculate tariff"); err != nil {
		return nil, err
	}
	return &result, nil
}

// AnalyzeExchangeRates fetches the rate trend analysis between two countries.
func (c *Client) AnalyzeExchangeRates(ctx context.Context, importingCountry, exportingCountry string) (*ExchangeRateAnalysis, error) {
	if importingCountry == "" || exportingCountry == "" {
		return nil, errx.Validation("Please select both importing and exporting countries")
	}
	body := map[string]string{
		"importingCountry": importingCountry,
		"exportingCountry": exportingCountry,
	}
	var analysis ExchangeRateAnalysis
	if err := c.do(ctx, http.MethodPost, "/exchange-rates/analyze", nil, body, &analysis, "Failed to fetch exchange rate analysis"); err != nil {
		return nil, err
	}
	return &analysis, nil
}

// Predict fetches the sentiment-driven purchase recommendation.
func (c *Client) Predict(ctx context.Context, importingCountry, exportingCountry string, enableNewsAnalysis bool) (*Prediction, error) {
	query := url.Values{}
	query.Set("importingCountry", importingCountry)
	query.Set("exportingCountry", exportingCountry)
	query.Set("enableNewsAnalysis", fmt.Sprintf("%t", enableNewsAnalysis))
	var prediction Prediction
	if err := c.do(ctx, http.MethodGet, "/predictive-analysis/predict", query, nil, &prediction, "Failed to fetch predictive analysis"); err != nil {
		return nil, err
	}
	return &prediction, nil
}

// ResolveHs sends one disambiguation turn to the HS resolver.
func (c *Client) ResolveHs(ctx context.Context, req HsResolveRequest) (*HsResolveResponse, error) {
	var resp HsResolveResponse
	if err := c.do(ctx, http.MethodPost, resolvePath, nil, req, &resp, "Unable to resolve HS code at the moment"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Login authenticates and returns the token/user pair to persist.
func (c *Client) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/login", nil, req, &resp, "Login failed"); err != nil {
		return nil, err
	}
	return &resp, nil
}

// Register creates an account and returns the token/user pair to persist.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	var resp AuthResponse
	if err := c.do(ctx, http.MethodPost, "/auth/register", nil, req, &resp, "Registration failed"); err != nil {
		return nil, err
	}
	return &resp, nil
}
