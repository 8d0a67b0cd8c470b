// Package remote talks to the backend functions over HTTP/JSON.
package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"projecthub/internal/core"
	"projecthub/internal/log"
)

// maxErrorBody bounds how much of a failed response is read for its message.
const maxErrorBody = 64 << 10

// Client implements the backend ports against the remote endpoints.
type Client struct {
	http      *http.Client
	endpoints Endpoints
	logger    *log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the pooled default client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithTimeout sets the overall per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

func WithLogger(l *log.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent(log.ComponentBackend) }
}

// New returns a client for the given endpoints.
func New(endpoints Endpoints, opts ...Option) *Client {
	c := &Client{
		http:      newHTTPClientWithPooling(),
		endpoints: endpoints,
		logger:    log.Discard(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// newHTTPClientWithPooling keeps connections to the function host alive
// between the dashboard's parallel fetches.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   10 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           dialer.DialContext,
		MaxIdleConns:          50,
		MaxIdleConnsPerHost:   10,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
		ExpectContinueTimeout: time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   30 * time.Second,
	}
}

func (c *Client) Stats(ctx context.Context) (core.Stats, error) {
	var out core.Stats
	err := c.get(ctx, c.endpoints.Stats, nil, &out)
	return out, err
}

func (c *Client) ListProjects(ctx context.Context) ([]core.ProjectSummary, error) {
	var out []core.ProjectSummary
	err := c.get(ctx, c.endpoints.Projects, nil, &out)
	return out, err
}

func (c *Client) ListEstimates(ctx context.Context) ([]core.EstimateSummary, error) {
	var out []core.EstimateSummary
	err := c.get(ctx, c.endpoints.Estimates, nil, &out)
	return out, err
}

func (c *Client) ListContractors(ctx context.Context) ([]core.ContractorSummary, error) {
	var out []core.ContractorSummary
	err := c.get(ctx, c.endpoints.Contractors, nil, &out)
	return out, err
}

func (c *Client) ListCompanies(ctx context.Context) ([]core.CompanyRef, error) {
	var out []core.CompanyRef
	err := c.get(ctx, c.endpoints.Management, url.Values{"action": {"companies"}}, &out)
	return out, err
}

func (c *Client) ListItems(ctx context.Context) ([]core.CatalogItem, error) {
	var out []core.CatalogItem
	err := c.get(ctx, c.endpoints.Management, url.Values{"action": {"items"}}, &out)
	return out, err
}

func (c *Client) CompaniesWithStats(ctx context.Context) ([]core.CompanyStats, error) {
	var out []core.CompanyStats
	err := c.get(ctx, c.endpoints.Companies, url.Values{"action": {"companies-with-stats"}}, &out)
	return out, err
}

func (c *Client) CompanyProjects(ctx context.Context, companyID int64) ([]core.ProjectSummary, error) {
	var out []core.ProjectSummary
	params := url.Values{
		"action":     {"company-projects"},
		"company_id": {strconv.FormatInt(companyID, 10)},
	}
	err := c.get(ctx, c.endpoints.Companies, params, &out)
	return out, err
}

// Create posts payload as JSON to the endpoint serving action. Exactly one
// request is made; failures are never retried.
func (c *Client) Create(ctx context.Context, action core.Action, payload any) (core.Created, error) {
	var out core.Created
	body, err := json.Marshal(payload)
	if err != nil {
		return out, fmt.Errorf("encode %s payload: %w", action, err)
	}
	target, err := withQuery(c.endpoints.ForAction(action), url.Values{"action": {string(action)}})
	if err != nil {
		return out, err
	}
	if err := c.do(ctx, http.MethodPost, target, bytes.NewReader(body), &out); err != nil {
		return out, err
	}
	c.logger.InfoContext(ctx, "Backend record created",
		log.FieldAction, string(action),
		log.FieldEntityID, out.ID)
	return out, nil
}

func (c *Client) get(ctx context.Context, endpoint string, params url.Values, out any) error {
	target, err := withQuery(endpoint, params)
	if err != nil {
		return err
	}
	return c.do(ctx, http.MethodGet, target, nil, out)
}

func (c *Client) do(ctx context.Context, method, target string, body io.Reader, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, target, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := log.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.WarnContext(ctx, "Backend request failed",
			log.FieldMethod, method,
			log.FieldEndpoint, target,
			log.FieldErrorType, log.ErrorTypeNetwork,
			log.FieldError, err)
		return &TransportError{Method: method, URL: target, Err: err}
	}
	defer resp.Body.Close()

	c.logger.DebugContext(ctx, "Backend request completed",
		log.FieldMethod, method,
		log.FieldEndpoint, target,
		log.FieldStatusCode, resp.StatusCode,
		log.FieldDuration, time.Since(start).Milliseconds())

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		statusErr := &StatusError{Method: method, URL: target, Code: resp.StatusCode}
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(raw, &payload) == nil {
			statusErr.Message = payload.Error
		}
		c.logger.WarnContext(ctx, "Backend returned error status",
			log.FieldMethod, method,
			log.FieldEndpoint, target,
			log.FieldStatusCode, resp.StatusCode,
			log.FieldErrorType, log.ErrorTypeUpstream,
			log.FieldError, statusErr.Message)
		return statusErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		c.logger.WarnContext(ctx, "Backend response decode failed",
			log.FieldEndpoint, target,
			log.FieldErrorType, log.ErrorTypeDecode,
			log.FieldError, err)
		return &DecodeError{URL: target, Err: err}
	}
	return nil
}
