// Package schedule models the business-hours calendar: per-weekday open
// intervals, the holiday set, and the fixed operating timezone. All slot
// math anchors to Pacific time because the business operates in one market.
package schedule

import (
	"fmt"
	"time"
)

// Pacific is the single operating timezone. It is not configurable.
var Pacific = mustLoadLocation("America/Los_Angeles")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic(fmt.Sprintf("schedule: time zone data for %q not found: %v", name, err))
	}
	return loc
}

// ClockTime is a wall-clock time of day within the operating timezone.
type ClockTime struct {
	Hour   int
	Minute int
}

// Minutes returns minutes since midnight.
func (c ClockTime) Minutes() int {
	return c.Hour*60 + c.Minute
}

// On anchors the clock time to a calendar day in the schedule's location.
func (c ClockTime) On(day time.Time, loc *time.Location) time.Time {
	return time.Date(day.Year(), day.Month(), day.Day(), c.Hour, c.Minute, 0, 0, loc)
}

func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", c.Hour, c.Minute)
}

// DaySpan is the open interval for a single weekday.
type DaySpan struct {
	Open  ClockTime
	Close ClockTime
}

// Schedule is an immutable named business-hours schedule plus holidays.
// Weekdays absent from Days are closed.
type Schedule struct {
	Name     string
	Days     map[time.Weekday]DaySpan
	Holidays map[string]struct{}
	Location *time.Location
}

// Span returns the open interval for the weekday of day, if any.
func (s Schedule) Span(day time.Time) (DaySpan, bool) {
	span, ok := s.Days[day.In(s.Location).Weekday()]
	return span, ok
}

// IsHoliday reports whether the calendar day is in the holiday set.
func (s Schedule) IsHoliday(day time.Time) bool {
	_, ok := s.Holidays[day.In(s.Location).Format(DateLayout)]
	return ok
}

// DateLayout is the calendar-day format used for holidays and API dates.
const DateLayout = "2006-01-02"

// weekdaySpans builds a Monday-Friday schedule with the same open interval.
func weekdaySpans(span DaySpan) map[time.Weekday]DaySpan {
	days := make(map[time.Weekday]DaySpan, 5)
	for wd := time.Monday; wd <= time.Friday; wd++ {
		days[wd] = span
	}
	return days
}

// defaultHolidays are the days the business is closed.
func defaultHolidays() map[string]struct{} {
	dates := []string{
		"2025-01-01", // New Year's Day
		"2025-07-04", // Independence Day
		"2025-12-25", // Christmas Day
		"2026-01-01",
		"2026-07-04",
		"2026-12-25",
	}
	set := make(map[string]struct{}, len(dates))
	for _, d := range dates {
		set[d] = struct{}{}
	}
	return set
}

// FieldHours is the technician dispatch schedule: 8:00 AM - 4:30 PM, Mon-Fri.
// Appointment slots are generated against this schedule.
func FieldHours() Schedule {
	return Schedule{
		Name:     "field",
		Days:     weekdaySpans(DaySpan{Open: ClockTime{8, 0}, Close: ClockTime{16, 30}}),
		Holidays: defaultHolidays(),
		Location: Pacific,
	}
}

// OfficeHours is the phone-answering schedule: 7:00 AM - 8:30 PM, Mon-Fri.
// Warm transfers are only attempted inside these hours.
func OfficeHours() Schedule {
	return Schedule{
		Name:     "office",
		Days:     weekdaySpans(DaySpan{Open: ClockTime{7, 0}, Close: ClockTime{20, 30}}),
		Holidays: defaultHolidays(),
		Location: Pacific,
	}
}

// ParseDate accepts a calendar date or an RFC 3339 timestamp and returns the
// calendar day at midnight in the schedule timezone. Upstream callers send
// both forms.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if t, err := time.ParseInLocation(DateLayout, s, loc); err == nil {
		return t, nil
	}
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("schedule: unparseable date %q: %w", s, err)
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc), nil
}
