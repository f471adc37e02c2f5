package handlers

import (
	"errors"
	"net/http"

	"github.com/scottvalleyhvac/voice-agent/internal/calltype"
	"github.com/scottvalleyhvac/voice-agent/internal/contacts"
	"github.com/scottvalleyhvac/voice-agent/internal/ghl"
	"github.com/scottvalleyhvac/voice-agent/internal/servicearea"
)

// CheckAvailability handles POST /functions/check-availability.
func (h *Handlers) CheckAvailability(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ServiceType string `json:"serviceType"`
		StartDate   string `json:"startDate"`
		EndDate     string `json:"endDate"`
		CalendarID  string `json:"calendarId"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.booking.CheckAvailability(r.Context(), req.ServiceType, req.StartDate, req.EndDate, req.CalendarID)
	if err != nil {
		h.logger.Error("availability lookup failed", "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// CreateContact handles POST /functions/create-contact.
func (h *Handlers) CreateContact(w http.ResponseWriter, r *http.Request) {
	var req struct {
		FirstName    string            `json:"firstName"`
		LastName     string            `json:"lastName"`
		Email        string            `json:"email"`
		Phone        string            `json:"phone"`
		Address1     string            `json:"address1"`
		PostalCode   string            `json:"postalCode"`
		CustomFields map[string]string `json:"customFields"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.contacts.CreateOrUpdate(r.Context(), contacts.Input{
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Email:      req.Email,
		Phone:      req.Phone,
		Address1:   req.Address1,
		PostalCode: req.PostalCode,
		Fields:     req.CustomFields,
	})
	if err != nil {
		if errors.Is(err, contacts.ErrInvalidInput) {
			respondError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.Error("contact upsert failed", "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"contactId": result.ContactID,
		"success":   true,
		"isNew":     result.IsNew,
	})
}

// BookAppointment handles POST /functions/book-appointment.
func (h *Handlers) BookAppointment(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CalendarID string `json:"calendarId"`
		ContactID  string `json:"contactId"`
		StartTime  string `json:"startTime"`
		EndTime    string `json:"endTime"`
		Title      string `json:"title"`
		Notes      string `json:"notes"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.booking.Book(r.Context(), ghl.BookingRequest{
		CalendarID: req.CalendarID,
		ContactID:  req.ContactID,
		StartTime:  req.StartTime,
		EndTime:    req.EndTime,
		Title:      req.Title,
		Notes:      req.Notes,
	})
	if err != nil {
		h.logger.Error("booking failed", "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// ClassifyCallType handles POST /functions/classify-call-type.
func (h *Handlers) ClassifyCallType(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Transcript          string `json:"transcript"`
		ConversationSummary string `json:"conversationSummary"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	respondJSON(w, http.StatusOK, calltype.Classify(req.Transcript, req.ConversationSummary))
}

// SendConfirmation handles POST /functions/send-confirmation.
func (h *Handlers) SendConfirmation(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ContactID string `json:"contactId"`
		Method    string `json:"method"`
		Message   string `json:"message"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.booking.SendConfirmation(r.Context(), req.ContactID, req.Method, req.Message)
	if err != nil {
		h.logger.Error("confirmation failed", "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// CheckServiceArea handles POST /functions/check-service-area.
func (h *Handlers) CheckServiceArea(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ZipCode string `json:"zipCode"`
		City    string `json:"city"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	inArea, reason := servicearea.Check(req.ZipCode, req.City)
	respondJSON(w, http.StatusOK, map[string]any{
		"inServiceArea": inArea,
		"reason":        reason,
	})
}

// InitiateWarmTransfer handles POST /functions/initiate-warm-transfer.
func (h *Handlers) InitiateWarmTransfer(w http.ResponseWriter, r *http.Request) {
	var req struct {
		CallSID    string `json:"callSid"`
		StaffPhone string `json:"staffPhone"`
	}
	if !decodeJSON(w, r, &req) {
		return
	}
	result, err := h.booking.WarmTransfer(r.Context(), req.CallSID, req.StaffPhone)
	if err != nil {
		h.logger.Error("warm transfer failed", "error", err)
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}
	respondJSON(w, http.StatusOK, result)
}

// BusinessHours handles GET /functions/business-hours?schedule=field|office.
func (h *Handlers) BusinessHours(w http.ResponseWriter, r *http.Request) {
	sched := h.fieldHours
	if r.URL.Query().Get("schedule") == "office" {
		sched = h.officeHours
	}
	respondJSON(w, http.StatusOK, sched.StatusAt(timeNow()))
}
