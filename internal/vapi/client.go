// Package vapi is the voice-AI collaborator: it places outbound calls and
// reports call status. The platform itself (assistants, prompts, telephony)
// is a black box behind this client.
package vapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/scottvalleyhvac/voice-agent/pkg/logging"
)

const defaultBaseURL = "https://api.vapi.ai"

var tracer = otel.Tracer("voiceagent.internal.vapi")

// Config controls the Vapi client.
type Config struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client wraps the Vapi call endpoints.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// New creates a configured Client.
func New(cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("vapi: API key is required")
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
		httpClient: httpClient,
		logger:     logger.Component("vapi"),
	}, nil
}

// APIError is a non-2xx response from Vapi.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("vapi: http status %d: %s", e.StatusCode, e.Body)
}

// Call is the subset of a Vapi call record the lead flow needs.
type Call struct {
	ID      string `json:"id"`
	Status  string `json:"status"`
	EndedAt string `json:"endedAt"`
}

// terminalFailureStatuses are the call outcomes that trigger SMS fallback.
var terminalFailureStatuses = map[string]struct{}{
	"failed":    {},
	"no-answer": {},
	"busy":      {},
	"canceled":  {},
}

// IsTerminalFailure reports whether the status means the call will never
// connect.
func IsTerminalFailure(status string) bool {
	_, ok := terminalFailureStatuses[strings.ToLower(strings.TrimSpace(status))]
	return ok
}

// CallRequest describes an outbound call to place.
type CallRequest struct {
	AssistantID string
	Number      string
	// PhoneNumberID selects the platform number to dial from. Empty defers
	// to the assistant's default number.
	PhoneNumberID string
}

// CreateCall places an outbound call to the customer number.
func (c *Client) CreateCall(ctx context.Context, req CallRequest) (*Call, error) {
	if req.AssistantID == "" {
		return nil, errors.New("vapi: assistant id is required")
	}
	if req.Number == "" {
		return nil, errors.New("vapi: customer number is required")
	}
	payload := map[string]any{
		"assistantId": req.AssistantID,
		"customer":    map[string]string{"number": req.Number},
	}
	if req.PhoneNumberID != "" {
		payload["phoneNumberId"] = req.PhoneNumberID
	}
	data, err := c.invoke(ctx, http.MethodPost, "/call", payload)
	if err != nil {
		return nil, err
	}
	var call Call
	if err := json.Unmarshal(data, &call); err != nil {
		return nil, fmt.Errorf("vapi: decode call: %w", err)
	}
	c.logger.Info("outbound call created", "call_id", call.ID, "status", call.Status)
	return &call, nil
}

// GetCall fetches the current status of a call.
func (c *Client) GetCall(ctx context.Context, callID string) (*Call, error) {
	if strings.TrimSpace(callID) == "" {
		return nil, errors.New("vapi: call id is required")
	}
	data, err := c.invoke(ctx, http.MethodGet, "/call/"+callID, nil)
	if err != nil {
		return nil, err
	}
	var call Call
	if err := json.Unmarshal(data, &call); err != nil {
		return nil, fmt.Errorf("vapi: decode call: %w", err)
	}
	return &call, nil
}

func (c *Client) invoke(ctx context.Context, method, path string, payload any) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "vapi.invoke")
	defer span.End()
	span.SetAttributes(
		attribute.String("http.method", method),
		attribute.String("vapi.path", path),
	)

	var bodyReader io.Reader
	if payload != nil {
		body, err := json.Marshal(payload)
		if err != nil {
			return nil, fmt.Errorf("vapi: marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("vapi: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("vapi: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("vapi: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(data)}
		span.RecordError(apiErr)
		return nil, apiErr
	}
	return data, nil
}
