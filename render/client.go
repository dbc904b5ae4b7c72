package render

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"iter"
	"net"
	"net/http"
	"net/url"
	"slices"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultBaseURL is the public Render API host.
const DefaultBaseURL = "https://api.render.com"

// DeployService is the set of Render operations used by activities and the CLI.
type DeployService interface {
	ServiceID() string
	TriggerDeploy(ctx context.Context) (*Deploy, error)
	GetDeployStatus(ctx context.Context, deployID string) (*DeployStatus, error)
	ListLogs(ctx context.Context) (iter.Seq[LogEntry], error)
}

// Client calls the Render deploy API for a single service. It is safe for
// concurrent use; all fields are read-only after NewClient returns.
type Client struct {
	baseURL    string
	apiKey     string
	serviceID  string
	httpClient *http.Client
	logger     zerolog.Logger
}

var _ DeployService = (*Client)(nil)

// Option customises client construction.
type Option func(*Client)

// WithBaseURL points the client at a different API host.
func WithBaseURL(base string) Option {
	return func(c *Client) {
		if base != "" {
			c.baseURL = strings.TrimRight(strings.TrimSpace(base), "/")
		}
	}
}

// WithHTTPClient overrides the HTTP client. Timeouts belong here.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithLogger sets the logger used for request tracing.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient binds a client to apiKey and serviceID. It does not touch the
// network.
func NewClient(apiKey, serviceID string, opts ...Option) (*Client, error) {
	apiKey = strings.TrimSpace(apiKey)
	serviceID = strings.TrimSpace(serviceID)
	if apiKey == "" {
		return nil, fmt.Errorf("%w: api key is required", ErrConfiguration)
	}
	if serviceID == "" {
		return nil, fmt.Errorf("%w: service id is required", ErrConfiguration)
	}

	c := &Client{
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		serviceID:  serviceID,
		httpClient: &http.Client{},
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	u, err := url.Parse(c.baseURL)
	if err != nil || u.Host == "" {
		return nil, fmt.Errorf("%w: invalid base url %q", ErrConfiguration, c.baseURL)
	}
	if u.Scheme != "https" && !(u.Scheme == "http" && isLoopback(u.Hostname())) {
		return nil, fmt.Errorf("%w: base url must use https", ErrConfiguration)
	}

	return c, nil
}

// ServiceID returns the service the client is bound to.
func (c *Client) ServiceID() string {
	return c.serviceID
}

// TriggerDeploy starts a new deploy of the bound service. Every successful
// call starts a real deploy, so callers must not retry it blindly.
func (c *Client) TriggerDeploy(ctx context.Context) (*Deploy, error) {
	const op = "trigger deploy"
	path := "/v1/services/" + url.PathEscape(c.serviceID) + "/deploys"

	body, err := c.do(ctx, op, http.MethodPost, path)
	if err != nil {
		return nil, err
	}

	var payload deployPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &DecodingError{Op: op, Body: string(body), Err: err}
	}
	if payload.ID == "" {
		return nil, &DecodingError{Op: op, Body: string(body), Err: errors.New("missing deploy id")}
	}

	deploy := payload.deploy()
	c.logger.Info().
		Str("deploy_id", deploy.ID).
		Str("status", deploy.Status).
		Msg("Render deploy triggered")
	return deploy, nil
}

// GetDeployStatus reads the current status of a deploy.
func (c *Client) GetDeployStatus(ctx context.Context, deployID string) (*DeployStatus, error) {
	const op = "get deploy status"
	deployID = strings.TrimSpace(deployID)
	if deployID == "" {
		return nil, fmt.Errorf("%w: deploy id is required", ErrInvalidArgument)
	}
	path := "/v1/services/" + url.PathEscape(c.serviceID) + "/deploys/" + url.PathEscape(deployID)

	body, err := c.do(ctx, op, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	var payload deployPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, &DecodingError{Op: op, Body: string(body), Err: err}
	}
	if payload.Status == "" {
		return nil, &DecodingError{Op: op, Body: string(body), Err: errors.New("missing status")}
	}

	return &DeployStatus{
		Status:     payload.Status,
		FinishedAt: payload.FinishedAt.ptr(),
	}, nil
}

// ListLogs fetches the service logs in the order the API returns them. The
// sequence can be ranged over repeatedly; call ListLogs again for fresh data.
func (c *Client) ListLogs(ctx context.Context) (iter.Seq[LogEntry], error) {
	const op = "list logs"
	path := "/v1/services/" + url.PathEscape(c.serviceID) + "/logs"

	body, err := c.do(ctx, op, http.MethodGet, path)
	if err != nil {
		return nil, err
	}

	if !json.Valid(body) {
		return nil, &DecodingError{Op: op, Body: string(body), Err: errors.New("invalid JSON")}
	}

	entries, ok := parseLogs(body)
	if !ok {
		c.logger.Warn().Int("bytes", len(body)).Msg("Render logs response is not a list")
		return slices.Values([]LogEntry{}), ErrUnrecognizedResponse
	}
	return slices.Values(entries), nil
}

func parseLogs(body []byte) ([]LogEntry, bool) {
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil || raw == nil {
		return nil, false
	}
	entries := make([]LogEntry, 0, len(raw))
	for _, item := range raw {
		trimmed := bytes.TrimSpace(item)
		if len(trimmed) == 0 || trimmed[0] != '{' {
			return nil, false
		}
		var p logPayload
		if err := json.Unmarshal(trimmed, &p); err != nil {
			return nil, false
		}
		entries = append(entries, LogEntry{Timestamp: p.Timestamp.t, Message: p.Message})
	}
	return entries, true
}

// do performs one request and returns the body of a 2xx response.
func (c *Client) do(ctx context.Context, op, method, path string) ([]byte, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("create request: %w", err)}
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Msg("Calling Render API")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, Err: fmt.Errorf("read response: %w", err)}
	}

	c.logger.Debug().
		Str("method", method).
		Str("path", path).
		Int("status_code", resp.StatusCode).
		Msg("Render API responded")

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &AuthenticationError{StatusCode: resp.StatusCode, Body: string(body)}
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &RemoteError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return body, nil
}

func isLoopback(host string) bool {
	if host == "localhost" {
		return true
	}
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
