package schedule

import (
	"fmt"
	"time"
)

// Status describes whether the business is open at a reference time, with
// caller-facing context the voice assistant reads back to the caller.
type Status struct {
	IsBusinessHours bool   `json:"isBusinessHours"`
	Message         string `json:"message"`
	Day             string `json:"day"`
	Timezone        string `json:"timezone"`
	CurrentTime     string `json:"currentTime"`
	CurrentDate     string `json:"currentDate"`
	HoursToday      string `json:"businessHoursToday"`
}

// StatusAt evaluates the schedule at the given instant.
func (s Schedule) StatusAt(now time.Time) Status {
	now = now.In(s.Location)
	base := Status{
		Day:         now.Weekday().String(),
		Timezone:    s.Location.String(),
		CurrentTime: formatClock(now),
		CurrentDate: now.Format(DateLayout),
	}

	if s.IsHoliday(now) {
		base.Message = "We're closed today for a holiday."
		base.HoursToday = "Closed (Holiday)"
		return base
	}

	span, open := s.Span(now)
	if !open {
		base.Message = "We're closed on weekends."
		base.HoursToday = "Closed (Weekend)"
		return base
	}

	openAt := span.Open.On(now, s.Location)
	closeAt := span.Close.On(now, s.Location)
	base.HoursToday = fmt.Sprintf("%s - %s", formatClock(openAt), formatClock(closeAt))

	if !now.Before(openAt) && !now.After(closeAt) {
		base.IsBusinessHours = true
		base.Message = fmt.Sprintf("We're open now until %s Pacific Time today.", formatClock(closeAt))
		return base
	}

	var nextOpen string
	switch {
	case now.Before(openAt):
		nextOpen = fmt.Sprintf("today at %s", formatClock(openAt))
	case now.Weekday() == time.Friday:
		nextOpen = fmt.Sprintf("Monday at %s", formatClock(openAt))
	default:
		nextOpen = fmt.Sprintf("tomorrow at %s", formatClock(openAt))
	}
	base.Message = fmt.Sprintf(
		"We're currently closed. Our hours today are %s to %s Pacific Time. We'll be open %s.",
		formatClock(openAt), formatClock(closeAt), nextOpen,
	)
	return base
}

// formatClock renders "8:00 AM" style times without a leading zero.
func formatClock(t time.Time) string {
	return t.Format("3:04 PM")
}
