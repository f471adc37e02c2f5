package ghl

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/scottvalleyhvac/voice-agent/internal/availability"
	"github.com/scottvalleyhvac/voice-agent/internal/schedule"
)

// ListCalendars returns the location's calendars.
func (c *Client) ListCalendars(ctx context.Context) ([]availability.Calendar, error) {
	data, err := c.invoke(ctx, http.MethodGet, "calendars/", c.locationQuery(), nil)
	if err != nil {
		return nil, err
	}
	var wrapper struct {
		Calendars []struct {
			ID   string `json:"id"`
			Name string `json:"name"`
		} `json:"calendars"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("ghl: decode calendars: %w", err)
	}
	out := make([]availability.Calendar, 0, len(wrapper.Calendars))
	for _, cal := range wrapper.Calendars {
		out = append(out, availability.Calendar{ID: cal.ID, Name: cal.Name})
	}
	return out, nil
}

// ListAppointments fetches booked appointments for a calendar in a date
// range. The primary endpoint 404s on some accounts, so a 404 falls through
// to the flat appointments endpoint; if that also 404s the result is an
// empty list rather than an error, because slot generation can still proceed
// without conflict data. Transport failures and other HTTP errors propagate.
func (c *Client) ListAppointments(ctx context.Context, calendarID string, start, end time.Time) ([]availability.Appointment, error) {
	q := c.locationQuery()
	q.Set("startDate", start.Format(schedule.DateLayout))
	q.Set("endDate", end.Format(schedule.DateLayout))

	data, err := c.invoke(ctx, http.MethodGet, "calendars/"+calendarID+"/appointments", q, nil)
	if err != nil {
		status, ok := statusOf(err)
		if !ok || status != http.StatusNotFound {
			return nil, err
		}
		alt := url.Values{}
		alt.Set("locationId", c.locationID)
		alt.Set("calendarId", calendarID)
		alt.Set("startDate", start.Format(schedule.DateLayout))
		alt.Set("endDate", end.Format(schedule.DateLayout))
		data, err = c.invoke(ctx, http.MethodGet, "appointments", alt, nil)
		if err != nil {
			if status, ok := statusOf(err); ok && status == http.StatusNotFound {
				c.logger.Warn("no appointments endpoint available, proceeding without conflict data",
					"calendar_id", calendarID)
				return []availability.Appointment{}, nil
			}
			return nil, err
		}
	}
	return decodeAppointments(data)
}

func decodeAppointments(data []byte) ([]availability.Appointment, error) {
	type rawAppointment struct {
		StartTime string `json:"startTime"`
		EndTime   string `json:"endTime"`
		StartAlt  string `json:"start_time"`
		EndAlt    string `json:"end_time"`
	}
	var asList []rawAppointment
	if err := json.Unmarshal(data, &asList); err != nil {
		var wrapper struct {
			Appointments []rawAppointment `json:"appointments"`
			Data         []rawAppointment `json:"data"`
		}
		if err := json.Unmarshal(data, &wrapper); err != nil {
			return nil, fmt.Errorf("ghl: decode appointments: %w", err)
		}
		asList = wrapper.Appointments
		if len(asList) == 0 {
			asList = wrapper.Data
		}
	}
	out := make([]availability.Appointment, 0, len(asList))
	for _, raw := range asList {
		start := raw.StartTime
		if start == "" {
			start = raw.StartAlt
		}
		end := raw.EndTime
		if end == "" {
			end = raw.EndAlt
		}
		out = append(out, availability.Appointment{Start: start, End: end})
	}
	return out, nil
}

// BookingRequest describes an appointment to create.
type BookingRequest struct {
	CalendarID string
	ContactID  string
	StartTime  string
	EndTime    string
	Title      string
	Notes      string
}

// BookingRecord is the outcome of a booking attempt.
type BookingRecord struct {
	ID         string `json:"id"`
	Status     string `json:"status"`
	CalendarID string `json:"calendarId"`
	ContactID  string `json:"contactId"`
	StartTime  string `json:"startTime"`
	EndTime    string `json:"endTime"`
}

// StatusPendingManual marks a booking the upstream API refused to create
// directly; the appointment has to be entered through the CRM dashboard.
// This is an upstream limitation: GHL exposes no reliable appointment-create
// endpoint.
const StatusPendingManual = "pending_manual_creation"

// PendingManual reports whether the record requires manual entry upstream.
func (r *BookingRecord) PendingManual() bool {
	return r.Status == StatusPendingManual || strings.HasPrefix(r.ID, "manual-")
}

// BookAppointment tries the known appointment-create endpoint variants in
// order, skipping past 404s. When every variant 404s, it returns a
// pending-manual record instead of failing, so the call flow can tell the
// caller their slot is reserved pending confirmation.
func (c *Client) BookAppointment(ctx context.Context, req BookingRequest) (*BookingRecord, error) {
	start := normalizeBookingTime(req.StartTime)
	end := normalizeBookingTime(req.EndTime)

	attempts := []struct {
		path    string
		payload map[string]any
	}{
		{"appointments/", map[string]any{
			"locationId": c.locationID,
			"calendarId": req.CalendarID,
			"contactId":  req.ContactID,
			"startTime":  start,
			"endTime":    end,
			"title":      req.Title,
			"notes":      req.Notes,
		}},
		{"calendars/" + req.CalendarID + "/appointments/", map[string]any{
			"locationId": c.locationID,
			"contactId":  req.ContactID,
			"startTime":  start,
			"endTime":    end,
			"title":      req.Title,
			"notes":      req.Notes,
		}},
		{"appointments/", map[string]any{
			"locationId":    c.locationID,
			"calendarId":    req.CalendarID,
			"contactId":     req.ContactID,
			"startDateTime": start,
			"endDateTime":   end,
			"title":         req.Title,
			"notes":         req.Notes,
		}},
	}

	for _, attempt := range attempts {
		data, err := c.invoke(ctx, http.MethodPost, attempt.path, nil, attempt.payload)
		if err != nil {
			if status, ok := statusOf(err); ok && status == http.StatusNotFound {
				continue
			}
			return nil, err
		}
		var record BookingRecord
		if err := json.Unmarshal(data, &record); err != nil {
			return nil, fmt.Errorf("ghl: decode booking: %w", err)
		}
		if record.CalendarID == "" {
			record.CalendarID = req.CalendarID
		}
		if record.ContactID == "" {
			record.ContactID = req.ContactID
		}
		return &record, nil
	}

	c.logger.Warn("appointment create endpoints exhausted, handing off to manual entry",
		"contact_id", req.ContactID,
		"calendar_id", req.CalendarID,
		"start", start,
	)
	return &BookingRecord{
		ID:         "manual-" + req.CalendarID + "-" + req.ContactID,
		Status:     StatusPendingManual,
		CalendarID: req.CalendarID,
		ContactID:  req.ContactID,
		StartTime:  start,
		EndTime:    end,
	}, nil
}

// normalizeBookingTime coerces the loose time formats the voice assistant
// produces into RFC 3339. Values it cannot interpret pass through unchanged.
func normalizeBookingTime(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return value
	}
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.Format(time.RFC3339)
	}
	if t, err := time.ParseInLocation("2006-01-02T15:04:05", value, schedule.Pacific); err == nil {
		return t.Format(time.RFC3339)
	}
	// Bare clock time means today in the operating timezone.
	if t, err := time.ParseInLocation("15:04", value, schedule.Pacific); err == nil {
		now := time.Now().In(schedule.Pacific)
		return time.Date(now.Year(), now.Month(), now.Day(), t.Hour(), t.Minute(), 0, 0, schedule.Pacific).Format(time.RFC3339)
	}
	// Bare date means midnight.
	if t, err := time.ParseInLocation(schedule.DateLayout, value, schedule.Pacific); err == nil {
		return t.Format(time.RFC3339)
	}
	return value
}
