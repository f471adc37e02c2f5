package availability

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/scottvalleyhvac/voice-agent/internal/schedule"
	"github.com/scottvalleyhvac/voice-agent/pkg/logging"
)

type fakeDirectory struct {
	calendars    []Calendar
	appointments map[string][]Appointment
	listErr      error
	apptErr      error
	apptCalls    int
}

func (f *fakeDirectory) ListCalendars(context.Context) ([]Calendar, error) {
	return f.calendars, f.listErr
}

func (f *fakeDirectory) ListAppointments(_ context.Context, calendarID string, _, _ time.Time) ([]Appointment, error) {
	f.apptCalls++
	if f.apptErr != nil {
		return nil, f.apptErr
	}
	return f.appointments[calendarID], nil
}

func fixedNow() time.Time {
	// Monday 2025-03-10, 09:00 Pacific.
	return time.Date(2025, time.March, 10, 9, 0, 0, 0, schedule.Pacific)
}

func newTestService(dir *fakeDirectory) *Service {
	return NewService(dir, schedule.FieldHours(), logging.Default(), fixedNow)
}

func TestResolveSelectsCalendarByKeyword(t *testing.T) {
	dir := &fakeDirectory{calendars: []Calendar{
		{ID: "cal-sales", Name: "Proposal Visits"},
		{ID: "cal-diag", Name: "Diagnostic Calls"},
		{ID: "cal-install", Name: "Installation Crew"},
	}}
	svc := newTestService(dir)

	cases := []struct {
		serviceType string
		want        string
	}{
		{"repair", "cal-diag"},
		{"maintenance", "cal-diag"},
		{"estimate", "cal-sales"},
		{"installation", "cal-install"},
		{"something-else", "cal-sales"}, // falls back to first calendar
	}
	for _, tc := range cases {
		res, err := svc.Resolve(context.Background(), tc.serviceType, "2025-03-12", "2025-03-13", "")
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tc.serviceType, err)
		}
		if res.CalendarID != tc.want {
			t.Errorf("%s: expected calendar %s, got %s", tc.serviceType, tc.want, res.CalendarID)
		}
	}
}

func TestResolveExplicitCalendarSkipsDirectory(t *testing.T) {
	dir := &fakeDirectory{listErr: errors.New("should not be called")}
	svc := newTestService(dir)

	res, err := svc.Resolve(context.Background(), "repair", "2025-03-12", "2025-03-13", "cal-given")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CalendarID != "cal-given" {
		t.Errorf("expected cal-given, got %s", res.CalendarID)
	}
}

func TestResolveNoCalendars(t *testing.T) {
	svc := newTestService(&fakeDirectory{})

	res, err := svc.Resolve(context.Background(), "repair", "2025-03-12", "", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.CalendarID != "" || len(res.Slots) != 0 {
		t.Errorf("expected empty result, got %+v", res)
	}
}

func TestResolvePropagatesDirectoryFailure(t *testing.T) {
	upstream := errors.New("upstream down")

	if _, err := newTestService(&fakeDirectory{listErr: upstream}).Resolve(
		context.Background(), "repair", "2025-03-12", "", ""); !errors.Is(err, upstream) {
		t.Errorf("expected calendar error to propagate, got %v", err)
	}

	dir := &fakeDirectory{calendars: []Calendar{{ID: "c1", Name: "Repair"}}, apptErr: upstream}
	if _, err := newTestService(dir).Resolve(
		context.Background(), "repair", "2025-03-12", "", ""); !errors.Is(err, upstream) {
		t.Errorf("expected appointment error to propagate, got %v", err)
	}
}

func TestResolveMarksBookedSlotUnavailable(t *testing.T) {
	// Availability request two days out with one existing appointment
	// 10:00-11:00 on day one: that slot disappears, everything else is open.
	day1 := "2025-03-12"
	day2 := "2025-03-13"
	dir := &fakeDirectory{
		calendars: []Calendar{{ID: "cal-diag", Name: "Diagnostic"}},
		appointments: map[string][]Appointment{
			"cal-diag": {{
				Start: time.Date(2025, time.March, 12, 10, 0, 0, 0, schedule.Pacific).Format(time.RFC3339),
				End:   time.Date(2025, time.March, 12, 11, 0, 0, 0, schedule.Pacific).Format(time.RFC3339),
			}},
		},
	}
	svc := newTestService(dir)

	res, err := svc.Resolve(context.Background(), "repair", day1, day2, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Two full weekdays of 8 slots each, minus the booked one.
	if len(res.Slots) != 15 {
		t.Fatalf("expected 15 open slots, got %d", len(res.Slots))
	}
	for _, s := range res.Slots {
		if !s.Available {
			t.Errorf("resolve must only return available slots, got %+v", s)
		}
		if s.Start.Day() == 12 && s.Start.Hour() == 10 {
			t.Error("booked 10:00 slot should be absent")
		}
	}
}

func TestResolveFiltersPastSlotsToday(t *testing.T) {
	// now is Monday 09:00; a same-day query must not include the 08:00 slot.
	dir := &fakeDirectory{calendars: []Calendar{{ID: "c1", Name: "Repair"}}}
	svc := newTestService(dir)

	res, err := svc.Resolve(context.Background(), "repair", "2025-03-10", "2025-03-10", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, s := range res.Slots {
		if !s.Start.After(fixedNow()) {
			t.Errorf("slot %s is not strictly in the future", s.Start)
		}
	}
	// Starts are 08:00..15:00; the 09:00 slot starts exactly at now and is
	// excluded by the strictly-after rule.
	if len(res.Slots) != 6 {
		t.Errorf("expected 6 remaining slots after 09:00, got %d", len(res.Slots))
	}
}

func TestResolveAdvancesWindowPastClose(t *testing.T) {
	dir := &fakeDirectory{calendars: []Calendar{{ID: "c1", Name: "Repair"}}}
	lateNow := func() time.Time {
		return time.Date(2025, time.March, 10, 17, 0, 0, 0, schedule.Pacific)
	}
	svc := NewService(dir, schedule.FieldHours(), logging.Default(), lateNow)

	res, err := svc.Resolve(context.Background(), "repair", "2025-03-10", "2025-03-10", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Slots) == 0 {
		t.Fatal("expected slots from the advanced window")
	}
	for _, s := range res.Slots {
		if s.Start.Day() == 10 {
			t.Errorf("no slots should be offered for the closed remainder of today: %s", s.Start)
		}
	}
}

func TestResolveRejectsBadDates(t *testing.T) {
	dir := &fakeDirectory{calendars: []Calendar{{ID: "c1", Name: "Repair"}}}
	svc := newTestService(dir)

	if _, err := svc.Resolve(context.Background(), "repair", "not-a-date", "", ""); err == nil {
		t.Error("expected error for unparseable start date")
	}
}
