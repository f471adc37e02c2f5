package availability

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/scottvalleyhvac/voice-agent/internal/schedule"
	"github.com/scottvalleyhvac/voice-agent/pkg/logging"
)

// Calendar is an upstream CRM calendar grouping appointments by service
// category.
type Calendar struct {
	ID   string
	Name string
}

// CalendarDirectory is the slice of the CRM the availability engine needs.
type CalendarDirectory interface {
	ListCalendars(ctx context.Context) ([]Calendar, error)
	ListAppointments(ctx context.Context, calendarID string, start, end time.Time) ([]Appointment, error)
}

// calendarKeywords maps a requested service type to the substrings matched
// against calendar names, first hit wins.
var calendarKeywords = map[string][]string{
	"repair":       {"diagnostic", "service call", "repair", "service"},
	"maintenance":  {"diagnostic", "service call", "repair", "service"},
	"estimate":     {"proposal", "estimate", "sales"},
	"installation": {"install"},
}

// Service resolves open slots for a service type over a date range.
type Service struct {
	crm    CalendarDirectory
	hours  schedule.Schedule
	logger *logging.Logger
	now    func() time.Time
}

// NewService builds an availability service over the given CRM directory and
// business-hours schedule. now is injectable for deterministic tests; nil
// means the wall clock.
func NewService(crm CalendarDirectory, hours schedule.Schedule, logger *logging.Logger, now func() time.Time) *Service {
	if logger == nil {
		logger = logging.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Service{crm: crm, hours: hours, logger: logger, now: now}
}

// Result is the outcome of an availability query: the calendar consulted and
// the open future slots, ascending.
type Result struct {
	CalendarID string `json:"calendarId"`
	Slots      []Slot `json:"slots"`
}

// Resolve selects the calendar for the service type (unless one is given),
// normalizes the query window to the operating timezone, generates candidate
// slots, removes booked conflicts, and returns only future available slots.
// A CRM failure propagates whole: no partial slot lists.
func (s *Service) Resolve(ctx context.Context, serviceType, startDate, endDate, calendarID string) (Result, error) {
	now := s.now().In(s.hours.Location)

	if calendarID == "" {
		calendars, err := s.crm.ListCalendars(ctx)
		if err != nil {
			return Result{}, fmt.Errorf("availability: list calendars: %w", err)
		}
		calendarID = selectCalendar(serviceType, calendars)
		if calendarID == "" {
			s.logger.Warn("no calendar available for service type", "service_type", serviceType)
			return Result{Slots: []Slot{}}, nil
		}
	}

	start, end, err := s.parseWindow(now, startDate, endDate)
	if err != nil {
		return Result{}, err
	}
	start, end = s.hours.NormalizeWindow(now, start, end)

	appts, err := s.crm.ListAppointments(ctx, calendarID, start, end.AddDate(0, 0, 1))
	if err != nil {
		return Result{}, fmt.Errorf("availability: list appointments: %w", err)
	}

	generated := s.hours.Generate(start, end, schedule.DefaultSlotDuration)
	marked := MarkConflicts(generated, appts, s.logger)

	open := make([]Slot, 0, len(marked))
	for _, slot := range marked {
		if slot.Available && slot.Start.After(now) {
			open = append(open, slot)
		}
	}
	s.logger.Info("availability resolved",
		"calendar_id", calendarID,
		"generated", len(generated),
		"open", len(open),
	)
	return Result{CalendarID: calendarID, Slots: open}, nil
}

func (s *Service) parseWindow(now time.Time, startDate, endDate string) (time.Time, time.Time, error) {
	start := now
	if startDate != "" {
		parsed, err := schedule.ParseDate(startDate, s.hours.Location)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		start = parsed
	}
	// A missing end date sorts before start, which NormalizeWindow expands to
	// the default one-week window.
	end := start.AddDate(0, 0, -1)
	if endDate != "" {
		parsed, err := schedule.ParseDate(endDate, s.hours.Location)
		if err != nil {
			return time.Time{}, time.Time{}, err
		}
		end = parsed
	}
	return start, end, nil
}

func selectCalendar(serviceType string, calendars []Calendar) string {
	if keywords, ok := calendarKeywords[strings.ToLower(strings.TrimSpace(serviceType))]; ok {
		for _, cal := range calendars {
			name := strings.ToLower(cal.Name)
			for _, kw := range keywords {
				if strings.Contains(name, kw) {
					return cal.ID
				}
			}
		}
	}
	if len(calendars) > 0 {
		return calendars[0].ID
	}
	return ""
}
