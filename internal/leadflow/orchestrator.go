// Package leadflow turns CRM webhook events into outbound voice calls, with
// an SMS fallback when the call cannot connect. Lifecycle state lives on the
// CRM contact's custom fields; this package owns no storage.
package leadflow

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/scottvalleyhvac/voice-agent/internal/contacts"
	"github.com/scottvalleyhvac/voice-agent/internal/ghl"
	"github.com/scottvalleyhvac/voice-agent/internal/observability/metrics"
	"github.com/scottvalleyhvac/voice-agent/internal/schedule"
	"github.com/scottvalleyhvac/voice-agent/internal/scoring"
	"github.com/scottvalleyhvac/voice-agent/internal/twilio"
	"github.com/scottvalleyhvac/voice-agent/internal/vapi"
	"github.com/scottvalleyhvac/voice-agent/pkg/logging"
)

// defaultAssistantID is the outbound assistant used when neither the event
// payload nor the config names one.
const defaultAssistantID = "d6c74f74-de2a-420d-ae59-aab8fa7cbabe"

// CRM is the contact surface the orchestrator needs.
type CRM interface {
	GetContact(ctx context.Context, contactID string) (*ghl.Contact, error)
	UpdateContactFields(ctx context.Context, contactID string, fields map[string]string) error
}

// Voice places and inspects outbound calls.
type Voice interface {
	CreateCall(ctx context.Context, req vapi.CallRequest) (*vapi.Call, error)
	GetCall(ctx context.Context, callID string) (*vapi.Call, error)
}

// Messenger sends SMS.
type Messenger interface {
	SendSMS(ctx context.Context, to, body string) (*twilio.Message, error)
}

// Config carries the orchestrator's business settings.
type Config struct {
	LocationID    string
	AssistantID   string
	PhoneNumberID string
	FallbackDelay time.Duration
	BusinessName  string
	BusinessPhone string
}

// Orchestrator drives the lead intake flow.
type Orchestrator struct {
	cfg       Config
	crm       CRM
	voice     Voice
	sms       Messenger
	scheduler FallbackScheduler
	metrics   *metrics.Metrics
	logger    *logging.Logger
	now       func() time.Time
}

// New wires the orchestrator. A nil scheduler gets the production timer
// scheduler; nil metrics disables instrumentation.
func New(cfg Config, crm CRM, voice Voice, sms Messenger, scheduler FallbackScheduler, m *metrics.Metrics, logger *logging.Logger) *Orchestrator {
	if cfg.FallbackDelay <= 0 {
		cfg.FallbackDelay = 30 * time.Second
	}
	if scheduler == nil {
		scheduler = TimerScheduler{}
	}
	if logger == nil {
		logger = logging.Default()
	}
	return &Orchestrator{
		cfg:       cfg,
		crm:       crm,
		voice:     voice,
		sms:       sms,
		scheduler: scheduler,
		metrics:   m,
		logger:    logger.Component("leadflow"),
		now:       time.Now,
	}
}

// Outcome statuses returned to the webhook caller.
const (
	StatusOK      = "ok"
	StatusIgnored = "ignored"
)

// Reasons attached to ignored outcomes.
const (
	ReasonLocationMismatch = "location_mismatch"
	ReasonMissingContactID = "missing_contact_id"
	ReasonContactNotFound  = "contact_not_found"
	ReasonMissingPhone     = "missing_phone"
	ReasonInvalidPhone     = "invalid_phone"
	ReasonAlreadyCalled    = "already_called"
	ReasonUnhandledEvent   = "unhandled_event_type"
)

// Result is the webhook acknowledgement body.
type Result struct {
	Status string `json:"status"`
	Event  string `json:"event,omitempty"`
	Reason string `json:"reason,omitempty"`
}

func ignored(event, reason string) *Result {
	return &Result{Status: StatusIgnored, Event: event, Reason: reason}
}

// Handle processes one raw webhook body. Recoverable conditions come back as
// an ignored Result; only unexpected collaborator failures return an error.
func (o *Orchestrator) Handle(ctx context.Context, raw []byte) (*Result, error) {
	ev, err := ParseEvent(raw)
	if err != nil {
		return nil, err
	}

	// A webhook without a location id is allowed through on the configured
	// location. An explicit mismatch is someone else's traffic.
	if ev.LocationID != "" && ev.LocationID != o.cfg.LocationID {
		o.logger.Warn("webhook from different location",
			"received", ev.LocationID, "expected", o.cfg.LocationID)
		return ignored(ev.Type, ReasonLocationMismatch), nil
	}

	switch {
	case ev.Type == EventContactCreated || ev.Type == EventContactUpdated ||
		ev.Type == EventFormSubmitted || isChatEvent(ev.Type) || isAdEvent(ev.Type):
		return o.intake(ctx, ev)
	case ev.Type == EventAppointmentMade:
		o.logger.Info("appointment created", "contact_id", ev.ContactID)
		return &Result{Status: StatusOK, Event: ev.Type}, nil
	default:
		o.logger.Info("unhandled webhook event type", "event_type", ev.Type)
		return ignored(ev.Type, ReasonUnhandledEvent), nil
	}
}

// intake places the outbound call for a fresh lead and schedules the SMS
// fallback check.
func (o *Orchestrator) intake(ctx context.Context, ev *Event) (*Result, error) {
	if ev.ContactID == "" {
		o.logger.Warn("no contact id in webhook data", "event_type", ev.Type)
		return ignored(ev.Type, ReasonMissingContactID), nil
	}

	contact, err := o.crm.GetContact(ctx, ev.ContactID)
	if err != nil {
		if errors.Is(err, ghl.ErrContactNotFound) {
			o.logger.Warn("contact not found", "contact_id", ev.ContactID)
			return ignored(ev.Type, ReasonContactNotFound), nil
		}
		return nil, fmt.Errorf("leadflow: fetch contact %s: %w", ev.ContactID, err)
	}

	if contact.Phone == "" {
		o.logger.Warn("no phone number for contact", "contact_id", ev.ContactID)
		return ignored(ev.Type, ReasonMissingPhone), nil
	}
	phone, err := contacts.NormalizePhone(contact.Phone)
	if err != nil {
		// Fail closed: never dial a guessed number.
		o.logger.Warn("invalid phone number for contact",
			"contact_id", ev.ContactID, "phone", contact.Phone, "error", err)
		return ignored(ev.Type, ReasonInvalidPhone), nil
	}

	if !contacts.CanInitiateCall(contact.Fields) {
		o.logger.Info("contact already called, skipping", "contact_id", ev.ContactID)
		return ignored(ev.Type, ReasonAlreadyCalled), nil
	}

	assistantID := ev.AssistantID
	if assistantID == "" {
		assistantID = o.cfg.AssistantID
	}
	if assistantID == "" {
		assistantID = defaultAssistantID
	}
	phoneNumberID := ev.PhoneNumberID
	if phoneNumberID == "" {
		phoneNumberID = o.cfg.PhoneNumberID
	}

	call, err := o.voice.CreateCall(ctx, vapi.CallRequest{
		AssistantID:   assistantID,
		Number:        phone,
		PhoneNumberID: phoneNumberID,
	})
	if err != nil {
		return nil, fmt.Errorf("leadflow: create call for %s: %w", ev.ContactID, err)
	}
	if o.metrics != nil {
		o.metrics.CallsInitiatedTotal.Inc()
	}
	o.logger.Info("outbound call initiated",
		"contact_id", ev.ContactID, "call_id", call.ID)

	score := scoring.LeadQuality(contact, &scoring.CallInfo{CallTime: o.now()})
	fields := map[string]string{
		contacts.FieldVapiCalled:       "true",
		contacts.FieldVapiCallID:       call.ID,
		contacts.FieldLeadQualityScore: strconv.Itoa(score),
	}
	if ev.LeadSource != "" {
		fields[contacts.FieldLeadSource] = ev.LeadSource
	}
	// One request: the idempotency guard and the call id land together.
	if err := o.crm.UpdateContactFields(ctx, ev.ContactID, fields); err != nil {
		return nil, fmt.Errorf("leadflow: mark contact %s called: %w", ev.ContactID, err)
	}

	callID, contactID := call.ID, ev.ContactID
	o.scheduler.Schedule(o.cfg.FallbackDelay, func(taskCtx context.Context) {
		o.fallbackCheck(taskCtx, callID, contactID, phone)
	})
	return &Result{Status: StatusOK, Event: ev.Type}, nil
}

// fallbackCheck runs after the fallback delay. Every failure here is logged
// and swallowed; the webhook was acknowledged long ago.
func (o *Orchestrator) fallbackCheck(ctx context.Context, callID, contactID, phone string) {
	logger := o.logger.With("call_id", callID, "contact_id", contactID)

	call, err := o.voice.GetCall(ctx, callID)
	if err != nil {
		logger.Error("fallback check: fetch call failed", "error", err)
		return
	}
	if !vapi.IsTerminalFailure(call.Status) {
		logger.Info("call did not fail, no sms fallback needed", "status", call.Status)
		return
	}

	contact, err := o.crm.GetContact(ctx, contactID)
	if err != nil {
		logger.Error("fallback check: fetch contact failed", "error", err)
		return
	}
	if !contacts.CanSendFallback(contact.Fields) {
		logger.Info("sms fallback not eligible",
			"consent", contact.Fields.Bool(contacts.FieldSMSConsent),
			"already_sent", contact.Fields.Bool(contacts.FieldSMSFallbackSent))
		return
	}

	body := fmt.Sprintf(
		"Hi! This is %s. We tried to reach you but couldn't connect. "+
			"Would you like to schedule an appointment? Reply YES or call us at %s. Thank you!",
		o.cfg.BusinessName, o.cfg.BusinessPhone)
	msg, err := o.sms.SendSMS(ctx, phone, body)
	if err != nil {
		logger.Error("sms fallback send failed", "error", err)
		return
	}
	if o.metrics != nil {
		o.metrics.SMSFallbacksTotal.WithLabelValues(call.Status).Inc()
	}
	logger.Info("sms fallback sent", "sms_sid", msg.SID, "reason", call.Status)

	err = o.crm.UpdateContactFields(ctx, contactID, map[string]string{
		contacts.FieldSMSFallbackSent:   "true",
		contacts.FieldSMSFallbackDate:   o.now().In(schedule.Pacific).Format(time.RFC3339),
		contacts.FieldSMSFallbackReason: call.Status,
	})
	if err != nil {
		logger.Error("sms fallback field update failed", "error", err)
	}
}
