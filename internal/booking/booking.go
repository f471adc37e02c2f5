// Package booking is the facade behind the voice agent's scheduling
// functions: availability lookup, appointment creation, confirmations, and
// warm transfer to staff.
package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/scottvalleyhvac/voice-agent/internal/availability"
	"github.com/scottvalleyhvac/voice-agent/internal/contacts"
	"github.com/scottvalleyhvac/voice-agent/internal/ghl"
	"github.com/scottvalleyhvac/voice-agent/internal/observability/metrics"
	"github.com/scottvalleyhvac/voice-agent/internal/schedule"
	"github.com/scottvalleyhvac/voice-agent/internal/twilio"
	"github.com/scottvalleyhvac/voice-agent/pkg/logging"
)

// CRM is the booking surface of the CRM client.
type CRM interface {
	BookAppointment(ctx context.Context, req ghl.BookingRequest) (*ghl.BookingRecord, error)
	GetContact(ctx context.Context, contactID string) (*ghl.Contact, error)
	AddTimelineNote(ctx context.Context, contactID, note string) error
}

// Messenger sends SMS confirmations.
type Messenger interface {
	SendSMS(ctx context.Context, to, body string) (*twilio.Message, error)
}

// Transferer redirects a live call to a staff number.
type Transferer interface {
	InitiateWarmTransfer(ctx context.Context, callSID, to string) (*twilio.Call, error)
}

// Availability resolves open slots.
type Availability interface {
	Resolve(ctx context.Context, serviceType, startDate, endDate, calendarID string) (availability.Result, error)
}

// StaffMember is a transfer target.
type StaffMember struct {
	Name        string
	Phone       string
	CanTransfer bool
}

// defaultStaff is the transfer directory; the first transferable entry is
// the default target.
var defaultStaff = []StaffMember{
	{Name: "Scott", Phone: "+15034772696", CanTransfer: true},
	{Name: "Austin", Phone: "+15034374134", CanTransfer: true},
	{Name: "David", Phone: "", CanTransfer: false},
}

// Service wires the scheduling functions together.
type Service struct {
	crm          CRM
	sms          Messenger
	transfer     Transferer
	availability Availability
	office       schedule.Schedule
	staff        []StaffMember
	metrics      *metrics.Metrics
	logger       *logging.Logger
	now          func() time.Time
}

// NewService builds the facade. now is overridable for tests; nil means
// time.Now.
func NewService(crm CRM, sms Messenger, transfer Transferer, avail Availability, m *metrics.Metrics, logger *logging.Logger, now func() time.Time) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{
		crm:          crm,
		sms:          sms,
		transfer:     transfer,
		availability: avail,
		office:       schedule.OfficeHours(),
		staff:        defaultStaff,
		metrics:      m,
		logger:       logger.Component("booking"),
		now:          now,
	}
}

// CheckAvailability resolves open slots, timing the lookup.
func (s *Service) CheckAvailability(ctx context.Context, serviceType, startDate, endDate, calendarID string) (availability.Result, error) {
	start := s.now()
	result, err := s.availability.Resolve(ctx, serviceType, startDate, endDate, calendarID)
	if s.metrics != nil {
		s.metrics.AvailabilitySeconds.Observe(s.now().Sub(start).Seconds())
	}
	return result, err
}

// BookingResult is the agent-facing outcome of a booking attempt.
type BookingResult struct {
	AppointmentID string `json:"appointmentId"`
	Success       bool   `json:"success"`
	Message       string `json:"message"`
}

// Book creates the appointment. The CRM cannot always create appointments
// through its public API; when every endpoint variant 404s the client hands
// back a pending-manual record and this surfaces as success=false with
// operator guidance rather than an error.
func (s *Service) Book(ctx context.Context, req ghl.BookingRequest) (*BookingResult, error) {
	record, err := s.crm.BookAppointment(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("booking: %w", err)
	}
	if record.PendingManual() {
		s.logger.Warn("appointment requires manual creation",
			"contact_id", req.ContactID, "calendar_id", req.CalendarID)
		return &BookingResult{
			AppointmentID: record.ID,
			Success:       false,
			Message: fmt.Sprintf(
				"Appointment scheduling initiated. The calendar API does not support direct "+
					"appointment creation; please create it manually in the dashboard. "+
					"Contact ID: %s, Calendar ID: %s, Time: %s",
				req.ContactID, req.CalendarID, req.StartTime),
		}, nil
	}
	s.logger.Info("appointment booked",
		"appointment_id", record.ID, "contact_id", req.ContactID)
	return &BookingResult{
		AppointmentID: record.ID,
		Success:       true,
		Message:       fmt.Sprintf("Appointment booked successfully for %s", req.StartTime),
	}, nil
}

// ConfirmationResult reports how a confirmation went out.
type ConfirmationResult struct {
	Success   bool   `json:"success"`
	Method    string `json:"method"`
	MessageID string `json:"messageId,omitempty"`
}

const defaultConfirmation = "Your appointment has been confirmed. We'll see you soon!"

// SendConfirmation delivers an appointment confirmation by SMS or, for
// email, records a timeline note for the CRM's email automation to pick up.
// SMS requires recorded consent.
func (s *Service) SendConfirmation(ctx context.Context, contactID, method, message string) (*ConfirmationResult, error) {
	contact, err := s.crm.GetContact(ctx, contactID)
	if err != nil {
		return nil, fmt.Errorf("booking: confirmation contact lookup: %w", err)
	}
	if message == "" {
		message = defaultConfirmation
	}

	switch method {
	case "sms":
		if !contact.Fields.Bool(contacts.FieldSMSConsent) {
			s.logger.Info("sms confirmation blocked, no consent", "contact_id", contactID)
			return &ConfirmationResult{Success: false, Method: "sms"}, nil
		}
		msg, err := s.sms.SendSMS(ctx, contact.Phone, message)
		if err != nil {
			return nil, fmt.Errorf("booking: confirmation sms: %w", err)
		}
		return &ConfirmationResult{Success: true, Method: "sms", MessageID: msg.SID}, nil
	case "email":
		if contact.Email == "" {
			return &ConfirmationResult{Success: false, Method: "email"}, nil
		}
		note := "Confirmation email sent: " + message
		if err := s.crm.AddTimelineNote(ctx, contactID, note); err != nil {
			return nil, fmt.Errorf("booking: confirmation note: %w", err)
		}
		return &ConfirmationResult{Success: true, Method: "email"}, nil
	default:
		return nil, fmt.Errorf("booking: unknown confirmation method %q", method)
	}
}

// TransferResult reports a warm transfer attempt.
type TransferResult struct {
	Success     bool   `json:"success"`
	TransferSID string `json:"transferSid,omitempty"`
	Message     string `json:"message"`
}

// ErrNoTransferTarget means no staff number is available.
var ErrNoTransferTarget = errors.New("booking: no staff phone number available for transfer")

// WarmTransfer hands a live call to staff. Transfers are gated on office
// hours; after hours the caller is told when to try again.
func (s *Service) WarmTransfer(ctx context.Context, callSID, staffPhone string) (*TransferResult, error) {
	status := s.office.StatusAt(s.now())
	if !status.IsBusinessHours {
		return &TransferResult{
			Success: false,
			Message: "We are currently closed. Transfers are only available between 7:00 AM and 8:30 PM Pacific Time.",
		}, nil
	}

	target := staffPhone
	targetName := "staff member"
	if target == "" {
		for _, member := range s.staff {
			if member.CanTransfer && member.Phone != "" {
				target = member.Phone
				targetName = member.Name
				break
			}
		}
	}
	if target == "" {
		return nil, ErrNoTransferTarget
	}

	call, err := s.transfer.InitiateWarmTransfer(ctx, callSID, target)
	if err != nil {
		return nil, fmt.Errorf("booking: warm transfer: %w", err)
	}
	return &TransferResult{
		Success:     true,
		TransferSID: call.SID,
		Message:     fmt.Sprintf("Transferring call to %s...", targetName),
	}, nil
}
