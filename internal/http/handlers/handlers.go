// Package handlers exposes the webhook and agent-function HTTP endpoints.
package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/scottvalleyhvac/voice-agent/internal/availability"
	"github.com/scottvalleyhvac/voice-agent/internal/booking"
	"github.com/scottvalleyhvac/voice-agent/internal/contacts"
	"github.com/scottvalleyhvac/voice-agent/internal/ghl"
	"github.com/scottvalleyhvac/voice-agent/internal/leadflow"
	"github.com/scottvalleyhvac/voice-agent/internal/observability/metrics"
	"github.com/scottvalleyhvac/voice-agent/internal/schedule"
	"github.com/scottvalleyhvac/voice-agent/pkg/logging"
)

// LeadIntake processes raw webhook bodies.
type LeadIntake interface {
	Handle(ctx context.Context, raw []byte) (*leadflow.Result, error)
}

// ContactService creates or updates contacts.
type ContactService interface {
	CreateOrUpdate(ctx context.Context, in contacts.Input) (*contacts.Result, error)
}

// BookingService is the agent-function facade.
type BookingService interface {
	CheckAvailability(ctx context.Context, serviceType, startDate, endDate, calendarID string) (availability.Result, error)
	Book(ctx context.Context, req ghl.BookingRequest) (*booking.BookingResult, error)
	SendConfirmation(ctx context.Context, contactID, method, message string) (*booking.ConfirmationResult, error)
	WarmTransfer(ctx context.Context, callSID, staffPhone string) (*booking.TransferResult, error)
}

// Handlers holds the endpoint dependencies.
type Handlers struct {
	intake        LeadIntake
	contacts      ContactService
	booking       BookingService
	fieldHours    schedule.Schedule
	officeHours   schedule.Schedule
	webhookSecret string
	metrics       *metrics.Metrics
	logger        *logging.Logger
}

// New wires the handlers.
func New(intake LeadIntake, contactSvc ContactService, bookingSvc BookingService, webhookSecret string, m *metrics.Metrics, logger *logging.Logger) *Handlers {
	if logger == nil {
		logger = logging.Default()
	}
	return &Handlers{
		intake:        intake,
		contacts:      contactSvc,
		booking:       bookingSvc,
		fieldHours:    schedule.FieldHours(),
		officeHours:   schedule.OfficeHours(),
		webhookSecret: webhookSecret,
		metrics:       m,
		logger:        logger.Component("http"),
	}
}

// timeNow is a seam for the business-hours tests.
var timeNow = time.Now

// Health reports liveness.
func (h *Handlers) Health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeJSON parses the request body into dst, answering 400 on failure.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}
