// Package availability computes open appointment slots. The CRM has no
// free/busy endpoint, so slots are generated locally from the business-hours
// schedule and reconciled against the appointments already booked upstream.
package availability

import (
	"time"

	"github.com/scottvalleyhvac/voice-agent/internal/schedule"
	"github.com/scottvalleyhvac/voice-agent/pkg/logging"
)

// Slot is a candidate appointment window with its computed availability.
// Slots are created fresh on every query and never persisted.
type Slot struct {
	Start     time.Time `json:"startTime"`
	End       time.Time `json:"endTime"`
	Available bool      `json:"available"`
}

// Appointment is an already-booked interval fetched from the CRM. The
// timestamps stay as the raw upstream strings; parsing happens at overlap
// time so one malformed record cannot poison the whole query.
type Appointment struct {
	Start string
	End   string
}

// appointment timestamp layouts observed upstream, tried in order.
var apptLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
}

func parseApptTime(s string) (time.Time, bool) {
	for _, layout := range apptLayouts {
		if layout == time.RFC3339 {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
			continue
		}
		// Layouts without an offset are wall-clock times in the operating zone.
		if t, err := time.ParseInLocation(layout, s, schedule.Pacific); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// MarkConflicts intersects generated slots with booked appointments. A slot
// becomes unavailable iff the half-open intervals [slot.Start, slot.End) and
// [appt.Start, appt.End) overlap; a slot ending exactly when an appointment
// starts stays available.
//
// Appointments with unparseable timestamps are logged and treated as
// non-conflicting. This fails open on purpose: bad upstream data should not
// hide real availability. The cost is that a malformed booked appointment can
// be double-offered; that tradeoff is accepted, not accidental.
func MarkConflicts(generated []schedule.Slot, appts []Appointment, logger *logging.Logger) []Slot {
	type interval struct{ start, end time.Time }
	booked := make([]interval, 0, len(appts))
	for _, a := range appts {
		start, okStart := parseApptTime(a.Start)
		end, okEnd := parseApptTime(a.End)
		if !okStart || !okEnd {
			if logger != nil {
				logger.Warn("skipping appointment with unparseable timestamps",
					"start", a.Start, "end", a.End)
			}
			continue
		}
		booked = append(booked, interval{start: start, end: end})
	}

	slots := make([]Slot, 0, len(generated))
	for _, g := range generated {
		available := true
		for _, b := range booked {
			if g.Start.Before(b.end) && b.start.Before(g.End) {
				available = false
				break
			}
		}
		slots = append(slots, Slot{Start: g.Start, End: g.End, Available: available})
	}
	return slots
}
