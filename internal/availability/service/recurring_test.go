package service

import (
	"testing"

	"pitchside/pkg/model"
)

func mondayRule(active bool, validTo *string) *model.RecurringBlockRule {
	return &model.RecurringBlockRule{
		FacilityID: "64a000000000000000000001",
		Weekdays:   []string{"monday"},
		Start:      "18:00",
		End:        "20:00",
		ValidFrom:  "2026-01-01",
		ValidTo:    validTo,
		Active:     active,
		Label:      "school lease",
	}
}

func TestRecurringBlocks_Matching(t *testing.T) {
	rules := []*model.RecurringBlockRule{mondayRule(true, nil)}

	res := RecurringBlocks(rules, monday, 18*60, 19*60)
	if !res.Blocked {
		t.Fatal("rule should block monday 18:00-19:00")
	}
	if res.Label != "school lease" {
		t.Errorf("expected label 'school lease', got %q", res.Label)
	}
}

func TestRecurringBlocks_WrongWeekday(t *testing.T) {
	rules := []*model.RecurringBlockRule{mondayRule(true, nil)}
	tuesday := monday.AddDate(0, 0, 1)

	if RecurringBlocks(rules, tuesday, 18*60, 19*60).Blocked {
		t.Error("monday rule must not block tuesday")
	}
}

func TestRecurringBlocks_InactiveRule(t *testing.T) {
	rules := []*model.RecurringBlockRule{mondayRule(false, nil)}

	if RecurringBlocks(rules, monday, 18*60, 19*60).Blocked {
		t.Error("inactive rule must not block")
	}
}

func TestRecurringBlocks_OutsideValidityWindow(t *testing.T) {
	validTo := "2026-02-28"
	rules := []*model.RecurringBlockRule{mondayRule(true, &validTo)}

	// monday is 2026-03-02, past the window; matching weekday and time must
	// not matter.
	if RecurringBlocks(rules, monday, 18*60, 19*60).Blocked {
		t.Error("rule outside its validity window must never block")
	}
}

func TestRecurringBlocks_NoOverlap(t *testing.T) {
	rules := []*model.RecurringBlockRule{mondayRule(true, nil)}

	if RecurringBlocks(rules, monday, 16*60, 18*60).Blocked {
		t.Error("range ending exactly at the rule's start does not overlap")
	}
	if RecurringBlocks(rules, monday, 20*60, 21*60).Blocked {
		t.Error("range starting exactly at the rule's end does not overlap")
	}
}
