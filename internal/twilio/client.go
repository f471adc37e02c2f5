// Package twilio sends SMS messages and drives warm transfers over the
// Twilio REST API.
package twilio

import (
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

const defaultBaseURL = "https://api.twilio.com"

var tracer = otel.Tracer("voiceagent.internal.twilio")

// Config controls the Twilio client.
type Config struct {
	AccountSID string
	AuthToken  string
	FromNumber string
	BaseURL    string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *logging.Logger
}

// Client wraps the Twilio messaging and call endpoints.
type Client struct {
	accountSID string
	authToken  string
	fromNumber string
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// New creates a configured Client.
func New(cfg Config) (*Client, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" {
		return nil, errors.New("twilio: account SID and auth token are required")
	}
	if cfg.FromNumber == "" {
		return nil, errors.New("twilio: from number is required")
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
		accountSID: cfg.AccountSID,
		authToken:  cfg.AuthToken,
		fromNumber: cfg.FromNumber,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     logger.Component("twilio"),
	}, nil
}

// APIError is a non-2xx response from Twilio.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("twilio: http status %d: %s", e.StatusCode, e.Body)
}

// Message is the delivered SMS record.
type Message struct {
	SID    string `json:"sid"`
	Status string `json:"status"`
	To     string `json:"to"`
}

// SendSMS sends an SMS from the configured business number.
func (c *Client) SendSMS(ctx context.Context, to, body string) (*Message, error) {
	if to == "" {
		return nil, errors.New("twilio: destination number is required")
	}
	if body == "" {
		return nil, errors.New("twilio: message body is required")
	}
	form := url.Values{}
	form.Set("To", to)
	form.Set("From", c.fromNumber)
	form.Set("Body", body)

	data, err := c.invoke(ctx, http.MethodPost, "/2010-04-01/Accounts/"+c.accountSID+"/Messages.json", form)
	if err != nil {
		return nil, err
	}
	var msg Message
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, fmt.Errorf("twilio: decode message: %w", err)
	}
	c.logger.Info("sms sent", "sid", msg.SID, "status", msg.Status)
	return &msg, nil
}

// Call is a Twilio call resource.
type Call struct {
	SID      string `json:"sid"`
	Status   string `json:"status"`
	From     string `json:"from"`
	To       string `json:"to"`
	Duration string `json:"duration"`
}

// InitiateWarmTransfer redirects an in-progress call to a staff number by
// updating the live call with dial TwiML.
func (c *Client) InitiateWarmTransfer(ctx context.Context, callSID, to string) (*Call, error) {
	if callSID == "" {
		return nil, errors.New("twilio: call SID is required")
	}
	if to == "" {
		return nil, errors.New("twilio: transfer target is required")
	}
	form := url.Values{}
	form.Set("Twiml", fmt.Sprintf("<Response><Dial><Number>%s</Number></Dial></Response>", to))

	data, err := c.invoke(ctx, http.MethodPost, "/2010-04-01/Accounts/"+c.accountSID+"/Calls/"+callSID+".json", form)
	if err != nil {
		return nil, err
	}
	var call Call
	if err := json.Unmarshal(data, &call); err != nil {
		return nil, fmt.Errorf("twilio: decode call: %w", err)
	}
	c.logger.Info("warm transfer initiated", "call_sid", callSID, "to", to)
	return &call, nil
}

// GetCall fetches a call resource.
func (c *Client) GetCall(ctx context.Context, callSID string) (*Call, error) {
	if callSID == "" {
		return nil, errors.New("twilio: call SID is required")
	}
	data, err := c.invoke(ctx, http.MethodGet, "/2010-04-01/Accounts/"+c.accountSID+"/Calls/"+callSID+".json", nil)
	if err != nil {
		return nil, err
	}
	var call Call
	if err := json.Unmarshal(data, &call); err != nil {
		return nil, fmt.Errorf("twilio: decode call: %w", err)
	}
	return &call, nil
}

func (c *Client) invoke(ctx context.Context, method, path string, form url.Values) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "twilio.invoke")
	defer span.End()
	span.SetAttributes(attribute.String("http.method", method))

	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("twilio: build request: %w", err)
	}
	req.SetBasicAuth(c.accountSID, c.authToken)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		span.RecordError(err)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("twilio: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()
	span.SetAttributes(attribute.Int("http.status_code", resp.StatusCode))
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("twilio: read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &APIError{StatusCode: resp.StatusCode, Body: string(data)}
		span.RecordError(apiErr)
		return nil, apiErr
	}
	return data, nil
}
