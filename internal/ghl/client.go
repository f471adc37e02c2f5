// Package ghl is the GoHighLevel CRM collaborator. Besides the REST wrapper
// it owns the normalization adapter for the CRM's inconsistent field naming,
// so the rest of the system only ever sees canonical shapes.
package ghl

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/scottvalleyhvac/voice-agent/pkg/logging"
)

const (
	defaultBaseURL = "https://services.leadconnectorhq.com"
	apiVersion     = "2021-07-28"
)

var tracer = otel.Tracer("voiceagent.internal.ghl")

// Config controls how the GHL client behaves.
type Config struct {
	BaseURL    string
	APIKey     string
	LocationID string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client wraps the GHL REST endpoints the voice agent needs. Calls are not
// retried; failures surface as *APIError or a wrapped transport error.
type Client struct {
	apiKey     string
	baseURL    string
	locationID string
	httpClient *http.Client
	logger     *logging.Logger
}

// New creates a configured Client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("ghl: API key is required")
	}
	if strings.TrimSpace(cfg.LocationID) == "" {
		return nil, errors.New("ghl: location id is required")
	}
	baseURL := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 30 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		locationID: cfg.LocationID,
		httpClient: httpClient,
		logger:     logger.Component("ghl"),
	}, nil
}

// LocationID returns the configured tenant identifier, used to validate
// inbound webhooks.
func (c *Client) LocationID() string {
	return c.locationID
}

// APIError is a non-2xx response from the CRM. Body keeps the raw response
// text because duplicate-contact resolution digs identifiers out of it.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("ghl: http status %d: %s", e.StatusCode, truncate(e.Body, 200))
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

func (c *Client) invoke(ctx context.Context, method, path string, query url.Values, payload any) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "ghl.invoke")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("ghl.path", path),
	)

	var bodyReader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("ghl: marshal %s body: %w", path, err)
		}
		bodyReader = bytes.NewReader(body)
	}
	fullURL := c.baseURL + "/" + strings.TrimLeft(path, "/")
	if len(query) > 0 {
		fullURL += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, fullURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("ghl: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Version", apiVersion)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("ghl: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("ghl: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(data)}
		span.RecordError(apiErr)
		c.logger.Error("api error", "method", method, "path", path, "status", resp.StatusCode)
		return nil, apiErr
	}
	return data, nil
}

func (c *Client) locationQuery() url.Values {
	q := url.Values{}
	q.Set("locationId", c.locationID)
	return q
}

// statusOf extracts the HTTP status from err when it is an *APIError.
func statusOf(err error) (int, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode, true
	}
	return 0, false
}
