package availability

import (
	"testing"
	"time"

	"github.com/scottvalleyhvac/voice-agent/internal/schedule"
	"github.com/scottvalleyhvac/voice-agent/pkg/logging"
)

func pacific(y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, schedule.Pacific)
}

func genSlots(t *testing.T, day time.Time) []schedule.Slot {
	t.Helper()
	return schedule.FieldHours().Generate(day, day, time.Hour)
}

func TestMarkConflictsOverlap(t *testing.T) {
	day := pacific(2025, time.March, 10, 0, 0)
	slots := genSlots(t, day)

	appt := Appointment{
		Start: pacific(2025, time.March, 10, 10, 0).Format(time.RFC3339),
		End:   pacific(2025, time.March, 10, 11, 0).Format(time.RFC3339),
	}
	marked := MarkConflicts(slots, []Appointment{appt}, logging.Default())

	for _, s := range marked {
		switch s.Start.Hour() {
		case 10:
			if s.Available {
				t.Error("10:00 slot should be unavailable")
			}
		default:
			if !s.Available {
				t.Errorf("slot at %s should be available", s.Start)
			}
		}
	}
}

func TestMarkConflictsAdjacencyIsNotConflict(t *testing.T) {
	day := pacific(2025, time.March, 10, 0, 0)
	slots := genSlots(t, day)

	// Appointment 11:00-12:00: the 10:00-11:00 slot ends exactly at its start
	// and the 12:00-13:00 slot starts exactly at its end.
	appt := Appointment{
		Start: pacific(2025, time.March, 10, 11, 0).Format(time.RFC3339),
		End:   pacific(2025, time.March, 10, 12, 0).Format(time.RFC3339),
	}
	marked := MarkConflicts(slots, []Appointment{appt}, logging.Default())

	for _, s := range marked {
		switch s.Start.Hour() {
		case 11:
			if s.Available {
				t.Error("11:00 slot should conflict")
			}
		case 10, 12:
			if !s.Available {
				t.Errorf("adjacent slot at %d:00 should stay available", s.Start.Hour())
			}
		}
	}
}

func TestMarkConflictsPartialOverlap(t *testing.T) {
	day := pacific(2025, time.March, 10, 0, 0)
	slots := genSlots(t, day)

	// 10:30-11:30 straddles two slots.
	appt := Appointment{
		Start: pacific(2025, time.March, 10, 10, 30).Format(time.RFC3339),
		End:   pacific(2025, time.March, 10, 11, 30).Format(time.RFC3339),
	}
	marked := MarkConflicts(slots, []Appointment{appt}, logging.Default())

	for _, s := range marked {
		switch s.Start.Hour() {
		case 10, 11:
			if s.Available {
				t.Errorf("slot at %d:00 should conflict", s.Start.Hour())
			}
		}
	}
}

func TestMarkConflictsFailsOpenOnMalformedTimestamps(t *testing.T) {
	day := pacific(2025, time.March, 10, 0, 0)
	slots := genSlots(t, day)

	appts := []Appointment{
		{Start: "garbage", End: "also garbage"},
		{Start: pacific(2025, time.March, 10, 9, 0).Format(time.RFC3339), End: ""},
	}
	marked := MarkConflicts(slots, appts, logging.Default())

	for _, s := range marked {
		if !s.Available {
			t.Errorf("malformed appointments must not block slot %s", s.Start)
		}
	}
}

func TestMarkConflictsParsesNaiveTimestampsAsPacific(t *testing.T) {
	day := pacific(2025, time.March, 10, 0, 0)
	slots := genSlots(t, day)

	appt := Appointment{Start: "2025-03-10T13:00:00", End: "2025-03-10T14:00:00"}
	marked := MarkConflicts(slots, []Appointment{appt}, logging.Default())

	var found bool
	for _, s := range marked {
		if s.Start.Hour() == 13 {
			found = true
			if s.Available {
				t.Error("13:00 slot should conflict with naive-timestamp appointment")
			}
		}
	}
	if !found {
		t.Fatal("expected a 13:00 slot")
	}
}
