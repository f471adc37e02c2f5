package vapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(Config{APIKey: "test-key", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestNewRequiresAPIKey(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Fatal("expected error for missing API key")
	}
}

func TestCreateCallPayload(t *testing.T) {
	var got map[string]any
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/call" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("unexpected auth header %q", auth)
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			t.Fatalf("decode: %v", err)
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"id": "call-1", "status": "queued"}`))
	})

	call, err := client.CreateCall(context.Background(), CallRequest{
		AssistantID: "asst-1",
		Number:      "+15035550100",
	})
	if err != nil {
		t.Fatalf("CreateCall: %v", err)
	}
	if call.ID != "call-1" || call.Status != "queued" {
		t.Errorf("unexpected call %+v", call)
	}
	if got["assistantId"] != "asst-1" {
		t.Errorf("assistantId = %v", got["assistantId"])
	}
	customer, _ := got["customer"].(map[string]any)
	if customer["number"] != "+15035550100" {
		t.Errorf("customer = %v", got["customer"])
	}
	if _, present := got["phoneNumberId"]; present {
		t.Error("phoneNumberId must be omitted when empty")
	}
}

func TestCreateCallIncludesPhoneNumberID(t *testing.T) {
	var got map[string]any
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewDecoder(r.Body).Decode(&got)
		w.Write([]byte(`{"id": "call-2", "status": "queued"}`))
	})

	_, err := client.CreateCall(context.Background(), CallRequest{
		AssistantID:   "asst-1",
		Number:        "+15035550100",
		PhoneNumberID: "pn-9",
	})
	if err != nil {
		t.Fatalf("CreateCall: %v", err)
	}
	if got["phoneNumberId"] != "pn-9" {
		t.Errorf("phoneNumberId = %v", got["phoneNumberId"])
	}
}

func TestCreateCallValidatesInput(t *testing.T) {
	client, _ := New(Config{APIKey: "k"})
	if _, err := client.CreateCall(context.Background(), CallRequest{Number: "+1503"}); err == nil {
		t.Error("expected error for missing assistant id")
	}
	if _, err := client.CreateCall(context.Background(), CallRequest{AssistantID: "a"}); err == nil {
		t.Error("expected error for missing number")
	}
}

func TestCreateCallSurfacesAPIError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error": "bad key"}`))
	})

	_, err := client.CreateCall(context.Background(), CallRequest{AssistantID: "a", Number: "+1"})
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}

func TestGetCall(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/call/call-3" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"id": "call-3", "status": "no-answer", "endedAt": "2025-03-10T17:05:00Z"}`))
	})

	call, err := client.GetCall(context.Background(), "call-3")
	if err != nil {
		t.Fatalf("GetCall: %v", err)
	}
	if call.Status != "no-answer" {
		t.Errorf("status = %q", call.Status)
	}
}

func TestIsTerminalFailure(t *testing.T) {
	for _, status := range []string{"failed", "no-answer", "busy", "canceled", " FAILED "} {
		if !IsTerminalFailure(status) {
			t.Errorf("%q should be terminal", status)
		}
	}
	for _, status := range []string{"queued", "ringing", "in-progress", "ended", ""} {
		if IsTerminalFailure(status) {
			t.Errorf("%q should not be terminal", status)
		}
	}
}
