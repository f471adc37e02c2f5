package schedule

import "time"

// DefaultSlotDuration is the fixed appointment length offered to callers.
const DefaultSlotDuration = time.Hour

// Slot is a candidate appointment window inside business hours.
type Slot struct {
	Start time.Time
	End   time.Time
}

// Generate produces every fixed-duration slot that fits entirely within the
// schedule's open interval, for each open weekday in [startDate, endDate].
// Weekends, days without a span, and holidays yield nothing. The sequence is
// deterministic: ascending by day, then by start time. Slots never cross the
// close boundary.
func (s Schedule) Generate(startDate, endDate time.Time, duration time.Duration) []Slot {
	if duration <= 0 {
		duration = DefaultSlotDuration
	}
	start := midnight(startDate, s.Location)
	end := midnight(endDate, s.Location)

	var slots []Slot
	for day := start; !day.After(end); day = day.AddDate(0, 0, 1) {
		span, open := s.Span(day)
		if !open || s.IsHoliday(day) {
			continue
		}
		cursor := span.Open.On(day, s.Location)
		close := span.Close.On(day, s.Location)
		for {
			slotEnd := cursor.Add(duration)
			if slotEnd.After(close) {
				break
			}
			slots = append(slots, Slot{Start: cursor, End: slotEnd})
			cursor = cursor.Add(duration)
		}
	}
	return slots
}

// NormalizeWindow applies the query-window rules before generation: when the
// requested start is today and the clock is already past that day's close,
// generation starts tomorrow; when the end precedes the (possibly advanced)
// start, the window defaults to one week.
func (s Schedule) NormalizeWindow(now, startDate, endDate time.Time) (time.Time, time.Time) {
	now = now.In(s.Location)
	start := midnight(startDate, s.Location)
	end := midnight(endDate, s.Location)

	if sameDay(start, now) {
		if span, open := s.Span(start); open {
			if !now.Before(span.Close.On(start, s.Location)) {
				start = start.AddDate(0, 0, 1)
			}
		}
	}
	if end.Before(start) {
		end = start.AddDate(0, 0, 7)
	}
	return start, end
}

func midnight(t time.Time, loc *time.Location) time.Time {
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

func sameDay(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}
