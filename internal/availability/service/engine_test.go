package service

import (
	"errors"
	"io"
	"testing"
	"time"

	"pitchside/pkg/clock"
	apperrors "pitchside/pkg/errors"
	"pitchside/pkg/logger"
	"pitchside/pkg/model"
)

var testNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func testEngine() *Engine {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	return NewEngine(clock.Fixed{T: testNow}, 30, log)
}

// configuredSnapshot builds a monday snapshot with every increment of the
// 08:00-22:00 window persisted as an available slot.
func configuredSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	f := testFacility()

	bounds, err := BoundariesFor(f, monday, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	slots := make([]*model.Slot, 0, len(bounds))
	for _, inc := range bounds {
		slots = append(slots, &model.Slot{
			FacilityID:  f.ID,
			Date:        "2026-03-02",
			Start:       model.FormatMinuteOfDay(inc.StartMin),
			End:         model.FormatMinuteOfDay(inc.EndMin),
			IsAvailable: true,
		})
	}

	return &Snapshot{Facility: f, Date: monday, Slots: slots}
}

func errCode(t *testing.T, err error) string {
	t.Helper()
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %v", err)
	}
	return appErr.Code
}

func TestIsRangeAvailable_OpenRange(t *testing.T) {
	e := testEngine()
	snap := configuredSnapshot(t)

	if err := e.IsRangeAvailable(snap, 570, 600, ""); err != nil {
		t.Errorf("09:30-10:00 should be available, got %v", err)
	}
}

func TestIsRangeAvailable_BookingConflict(t *testing.T) {
	e := testEngine()
	snap := configuredSnapshot(t)
	snap.Bookings = []*model.Booking{
		{Start: "10:00", End: "11:00", Status: model.BookingConfirmed},
	}

	// Spec-level example: booking 10:00-11:00 on an 08:00-22:00 day.
	if err := e.IsRangeAvailable(snap, 570, 600, ""); err != nil {
		t.Errorf("09:30-10:00 should stay available, got %v", err)
	}

	err := e.IsRangeAvailable(snap, 570, 630, "")
	if err == nil {
		t.Fatal("09:30-10:30 overlaps the booking and must be rejected")
	}
	if code := errCode(t, err); code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT, got %s", code)
	}
}

func TestIsRangeAvailable_MalformedRange(t *testing.T) {
	e := testEngine()
	snap := configuredSnapshot(t)

	if code := errCode(t, e.IsRangeAvailable(snap, 600, 600, "")); code != apperrors.CodeInvalidInput {
		t.Errorf("end == start should be INVALID_INPUT, got %s", code)
	}
	if code := errCode(t, e.IsRangeAvailable(snap, 630, 600, "")); code != apperrors.CodeInvalidInput {
		t.Errorf("end < start should be INVALID_INPUT, got %s", code)
	}
	if code := errCode(t, e.IsRangeAvailable(snap, 605, 635, "")); code != apperrors.CodeInvalidInput {
		t.Errorf("misaligned endpoints should be INVALID_INPUT, got %s", code)
	}
}

func TestIsRangeAvailable_NotConfigured(t *testing.T) {
	e := testEngine()
	snap := configuredSnapshot(t)
	snap.Slots = nil

	if code := errCode(t, e.IsRangeAvailable(snap, 570, 600, "")); code != apperrors.CodeNotConfigured {
		t.Errorf("date without slots should be NOT_CONFIGURED, got %s", code)
	}
}

func TestIsRangeAvailable_RecurringBlockWinsOverAvailableFlag(t *testing.T) {
	e := testEngine()
	snap := configuredSnapshot(t)
	snap.Rules = []*model.RecurringBlockRule{mondayRule(true, nil)}

	// Underlying slots are all is_available=true; the rule blocks anyway.
	err := e.IsRangeAvailable(snap, 18*60, 19*60, "")
	if err == nil {
		t.Fatal("recurring rule must block regardless of the slot flag")
	}
	if code := errCode(t, err); code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT, got %s", code)
	}
}

func TestIsRangeAvailable_HoldSemantics(t *testing.T) {
	e := testEngine()
	snap := configuredSnapshot(t)
	snap.Holds = []*model.Hold{{
		ID:        "hold-1",
		Start:     "14:00",
		End:       "15:00",
		SessionID: "session-a",
		HoldUntil: testNow.Add(10 * time.Minute),
	}}

	if err := e.IsRangeAvailable(snap, 14*60, 15*60, "session-b"); err == nil {
		t.Error("another session's live hold must block")
	}
	if err := e.IsRangeAvailable(snap, 14*60, 15*60, "session-a"); err != nil {
		t.Errorf("the holding session must pass its own hold, got %v", err)
	}
}

func TestIsRangeAvailable_ExpiredHoldIsInvisible(t *testing.T) {
	e := testEngine()
	snap := configuredSnapshot(t)
	snap.Holds = []*model.Hold{{
		ID:        "hold-1",
		Start:     "14:00",
		End:       "15:00",
		SessionID: "session-a",
		HoldUntil: testNow.Add(-time.Minute),
	}}

	if err := e.IsRangeAvailable(snap, 14*60, 15*60, "session-b"); err != nil {
		t.Errorf("an expired hold behaves like no hold at all, got %v", err)
	}
}

func TestIsRangeAvailable_ManualUnavailable(t *testing.T) {
	e := testEngine()
	snap := configuredSnapshot(t)
	for _, s := range snap.Slots {
		if s.Start == "12:00" {
			s.IsAvailable = false
			s.UnavailabilityReason = "pitch maintenance"
		}
	}

	err := e.IsRangeAvailable(snap, 11*60+30, 12*60+30, "")
	if err == nil {
		t.Fatal("range covering a manually closed slot must be rejected")
	}
	if code := errCode(t, err); code != apperrors.CodeConflict {
		t.Errorf("expected CONFLICT, got %s", code)
	}
}

func TestReachableEndTimes_StopsAtFirstBlock(t *testing.T) {
	e := testEngine()
	snap := configuredSnapshot(t)
	snap.Bookings = []*model.Booking{
		{Start: "10:00", End: "11:00", Status: model.BookingPending},
	}

	// Spec-level example: from 09:00 with a 10:00-11:00 booking the walk
	// reaches 09:30 and 10:00, then stops. Nothing after the booking is
	// offered even though 11:00+ is free.
	ends, err := e.ReachableEndTimes(snap, 9*60, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	want := []string{"09:30", "10:00"}
	if len(ends) != len(want) {
		t.Fatalf("expected %v, got %v", want, ends)
	}
	for i := range want {
		if ends[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, ends)
		}
	}
}

func TestReachableEndTimes_EmptyWhenStartBlocked(t *testing.T) {
	e := testEngine()
	snap := configuredSnapshot(t)
	snap.Bookings = []*model.Booking{
		{Start: "09:00", End: "10:00", Status: model.BookingConfirmed},
	}

	ends, err := e.ReachableEndTimes(snap, 9*60, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ends) != 0 {
		t.Errorf("blocked start must yield an empty sequence, got %v", ends)
	}
}

func TestReachableEndTimes_StrictlyIncreasing(t *testing.T) {
	e := testEngine()
	snap := configuredSnapshot(t)

	ends, err := e.ReachableEndTimes(snap, 8*60, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(ends) == 0 {
		t.Fatal("fully open day should reach at least one end time")
	}

	prev := -1
	for _, s := range ends {
		min, perr := model.ParseEndMinute(s)
		if perr != nil {
			t.Fatalf("unparseable end time %q", s)
		}
		if min <= prev {
			t.Fatalf("end times must be strictly increasing, got %v", ends)
		}
		prev = min
	}
}

func TestDayStatus_Precedence(t *testing.T) {
	e := testEngine()
	snap := configuredSnapshot(t)
	snap.Rules = []*model.RecurringBlockRule{mondayRule(true, nil)}
	snap.Bookings = []*model.Booking{
		// Overlaps the rule window 18:00-20:00 partially and extends past it.
		{Start: "19:30", End: "20:30", Status: model.BookingConfirmed},
	}

	views, err := e.DayStatus(snap, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	byStart := make(map[string]SlotView, len(views))
	for _, v := range views {
		byStart[v.Start] = v
	}

	if got := byStart["18:00"].Status; got != model.StatusRecurringBlocked {
		t.Errorf("18:00 should be recurring_blocked, got %s", got)
	}
	// Inside the rule window the rule wins even over the booking.
	if got := byStart["19:30"].Status; got != model.StatusRecurringBlocked {
		t.Errorf("19:30 should be recurring_blocked (rule beats booking), got %s", got)
	}
	if got := byStart["20:00"].Status; got != model.StatusBooked {
		t.Errorf("20:00 should be booked, got %s", got)
	}
	if got := byStart["08:00"].Status; got != model.StatusAvailable {
		t.Errorf("08:00 should be available, got %s", got)
	}
}

func TestOpenCount_ExcludesBlockedIncrements(t *testing.T) {
	e := testEngine()
	snap := configuredSnapshot(t)

	views, err := e.DayStatus(snap, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	open, err := e.OpenCount(snap, views)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if open != 28 {
		t.Fatalf("fully open 08:00-22:00 day at 30min should count 28, got %d", open)
	}

	// Rule blocks 18:00-20:00 (4 increments), booking 19:30-20:30 adds one
	// more past the rule window.
	snap.Rules = []*model.RecurringBlockRule{mondayRule(true, nil)}
	snap.Bookings = []*model.Booking{
		{Start: "19:30", End: "20:30", Status: model.BookingConfirmed},
	}

	views, err = e.DayStatus(snap, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	open, err = e.OpenCount(snap, views)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if open != 23 {
		t.Errorf("expected 23 open increments, got %d", open)
	}
}

func TestDayStatus_NotConfiguredGaps(t *testing.T) {
	e := testEngine()
	snap := configuredSnapshot(t)

	// Drop the 08:00 record: owner never opened it.
	snap.Slots = snap.Slots[1:]

	views, err := e.DayStatus(snap, "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if views[0].Status != model.StatusNotConfigured {
		t.Errorf("missing record should render not_configured, got %s", views[0].Status)
	}
}
