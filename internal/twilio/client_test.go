package twilio

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := New(Config{
		AccountSID: "AC123",
		AuthToken:  "token",
		FromNumber: "+19717126763",
		BaseURL:    srv.URL,
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return client
}

func TestNewValidatesCredentials(t *testing.T) {
	if _, err := New(Config{FromNumber: "+1"}); err == nil {
		t.Error("expected error for missing credentials")
	}
	if _, err := New(Config{AccountSID: "AC", AuthToken: "t"}); err == nil {
		t.Error("expected error for missing from number")
	}
}

func TestSendSMS(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2010-04-01/Accounts/AC123/Messages.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		sid, token, ok := r.BasicAuth()
		if !ok || sid != "AC123" || token != "token" {
			t.Error("expected basic auth with account credentials")
		}
		if err := r.ParseForm(); err != nil {
			t.Fatalf("parse form: %v", err)
		}
		if r.PostForm.Get("To") != "+15035550100" {
			t.Errorf("To = %q", r.PostForm.Get("To"))
		}
		if r.PostForm.Get("From") != "+19717126763" {
			t.Errorf("From = %q", r.PostForm.Get("From"))
		}
		if !strings.Contains(r.PostForm.Get("Body"), "Scott Valley") {
			t.Errorf("Body = %q", r.PostForm.Get("Body"))
		}
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"sid": "SM1", "status": "queued", "to": "+15035550100"}`))
	})

	msg, err := client.SendSMS(context.Background(), "+15035550100", "Hi! This is Scott Valley HVAC.")
	if err != nil {
		t.Fatalf("SendSMS: %v", err)
	}
	if msg.SID != "SM1" || msg.Status != "queued" {
		t.Errorf("unexpected message %+v", msg)
	}
}

func TestSendSMSValidatesInput(t *testing.T) {
	client, _ := New(Config{AccountSID: "AC", AuthToken: "t", FromNumber: "+1"})
	if _, err := client.SendSMS(context.Background(), "", "body"); err == nil {
		t.Error("expected error for empty destination")
	}
	if _, err := client.SendSMS(context.Background(), "+1", ""); err == nil {
		t.Error("expected error for empty body")
	}
}

func TestSendSMSSurfacesAPIError(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"code": 21211, "message": "Invalid 'To' Phone Number"}`))
	})

	_, err := client.SendSMS(context.Background(), "+0", "body")
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", apiErr.StatusCode)
	}
}

func TestInitiateWarmTransfer(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/2010-04-01/Accounts/AC123/Calls/CA1.json" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		r.ParseForm()
		twiml := r.PostForm.Get("Twiml")
		if !strings.Contains(twiml, "<Dial><Number>+15034772696</Number></Dial>") {
			t.Errorf("Twiml = %q", twiml)
		}
		w.Write([]byte(`{"sid": "CA1", "status": "in-progress"}`))
	})

	call, err := client.InitiateWarmTransfer(context.Background(), "CA1", "+15034772696")
	if err != nil {
		t.Fatalf("InitiateWarmTransfer: %v", err)
	}
	if call.SID != "CA1" {
		t.Errorf("unexpected call %+v", call)
	}
}

func TestGetCall(t *testing.T) {
	client := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/2010-04-01/Accounts/AC123/Calls/CA2.json" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Write([]byte(`{"sid": "CA2", "status": "completed", "duration": "45"}`))
	})

	call, err := client.GetCall(context.Background(), "CA2")
	if err != nil {
		t.Fatalf("GetCall: %v", err)
	}
	if call.Status != "completed" || call.Duration != "45" {
		t.Errorf("unexpected call %+v", call)
	}
}
