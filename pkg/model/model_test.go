package model

import (
	"testing"
	"time"
)

func TestParseMinuteOfDay(t *testing.T) {
	tests := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00", 0, false},
		{"08:00", 480, false},
		{"23:59", 1439, false},
		{"24:00", 0, true},
		{"8:00", 480, false},
		{"08:60", 0, true},
		{"0800", 0, true},
		{"", 0, true},
	}

	for _, tt := range tests {
		got, err := ParseMinuteOfDay(tt.in)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseMinuteOfDay(%q): expected error", tt.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseMinuteOfDay(%q): unexpected error %v", tt.in, err)
			continue
		}
		if got != tt.want {
			t.Errorf("ParseMinuteOfDay(%q) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestParseEndMinute_MidnightMeansEndOfDay(t *testing.T) {
	got, err := ParseEndMinute("00:00")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != MinutesPerDay {
		t.Errorf("expected %d, got %d", MinutesPerDay, got)
	}
}

func TestFormatMinuteOfDay(t *testing.T) {
	if got := FormatMinuteOfDay(570); got != "09:30" {
		t.Errorf("expected 09:30, got %s", got)
	}
	if got := FormatMinuteOfDay(MinutesPerDay); got != "00:00" {
		t.Errorf("expected 00:00 for end of day, got %s", got)
	}
}

func TestBookingIsActive(t *testing.T) {
	active := []BookingStatus{BookingPending, BookingConfirmed, BookingOwnerConfirmed}
	inactive := []BookingStatus{BookingCompleted, BookingCancelled, BookingRefunded}

	for _, s := range active {
		b := Booking{Status: s}
		if !b.IsActive() {
			t.Errorf("expected status %s to be active", s)
		}
	}
	for _, s := range inactive {
		b := Booking{Status: s}
		if b.IsActive() {
			t.Errorf("expected status %s to be inactive", s)
		}
	}
}

func TestBookingTransitions_OneDirectional(t *testing.T) {
	b := Booking{Status: BookingPending}
	if !b.CanTransitionTo(BookingConfirmed) {
		t.Error("pending should allow confirmed")
	}
	if b.CanTransitionTo(BookingCompleted) {
		t.Error("pending should not jump straight to completed")
	}

	done := Booking{Status: BookingCompleted}
	if !done.IsTerminal() {
		t.Error("completed should be terminal")
	}
	if done.CanTransitionTo(BookingPending) {
		t.Error("terminal status should not transition anywhere")
	}
}

func TestHoldLazyExpiry(t *testing.T) {
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	live := Hold{SessionID: "s1", HoldUntil: now.Add(5 * time.Minute)}
	expired := Hold{SessionID: "s1", HoldUntil: now.Add(-5 * time.Minute)}

	if !live.BlocksSession(now, "s2") {
		t.Error("live hold should block a different session")
	}
	if live.BlocksSession(now, "s1") {
		t.Error("live hold should not block its own session")
	}
	if expired.BlocksSession(now, "s2") {
		t.Error("expired hold should behave as if absent, no release required")
	}
}

func TestRecurringRuleValidityWindow(t *testing.T) {
	to := "2026-06-30"
	rule := RecurringBlockRule{
		Weekdays:  []string{"monday"},
		ValidFrom: "2026-01-01",
		ValidTo:   &to,
		Active:    true,
	}

	inside := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC) // a monday
	before := time.Date(2025, 12, 29, 0, 0, 0, 0, time.UTC)
	after := time.Date(2026, 7, 6, 0, 0, 0, 0, time.UTC)

	if !rule.InValidityWindow(inside) {
		t.Error("date inside window should match")
	}
	if rule.InValidityWindow(before) || rule.InValidityWindow(after) {
		t.Error("dates outside [valid_from, valid_to] must never match, even on the right weekday")
	}
	if !rule.AppliesOn(time.Monday) {
		t.Error("rule should apply on monday")
	}
	if rule.AppliesOn(time.Tuesday) {
		t.Error("rule should not apply on tuesday")
	}
}

func TestPromoAppliesTo(t *testing.T) {
	monday := time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC)

	promo := PromoRule{
		Type:        DiscountPercent,
		Value:       15,
		Weekdays:    []string{"monday"},
		WindowStart: "18:00",
		WindowEnd:   "22:00",
		ValidFrom:   "2026-01-01",
		Active:      true,
	}

	if !promo.AppliesTo("f1", monday, 18*60) {
		t.Error("promo should apply inside its weekday and window")
	}
	if promo.AppliesTo("f1", monday, 10*60) {
		t.Error("promo should not apply outside its time window")
	}
	if promo.AppliesTo("f1", monday.AddDate(0, 0, 1), 18*60) {
		t.Error("promo should not apply on the wrong weekday")
	}

	promo.MaxUses = 3
	promo.Uses = 3
	if promo.AppliesTo("f1", monday, 18*60) {
		t.Error("exhausted promo should not apply")
	}
}
