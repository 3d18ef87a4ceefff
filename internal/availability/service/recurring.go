package service

import (
	"time"

	"pitchside/pkg/model"
)

// BlockResult carries the outcome of a recurring-rule check, including the
// owner-facing label of the first matching rule.
type BlockResult struct {
	Blocked bool
	Label   string
}

// RecurringBlocks evaluates weekly blackout rules against a concrete date and
// range. A rule blocks when it is active, covers the weekday, the date falls
// inside its validity window, and its time window overlaps [startMin,endMin).
// Recurring blocks take precedence over every other slot state and cannot be
// toggled per-instance.
func RecurringBlocks(rules []*model.RecurringBlockRule, date time.Time, startMin, endMin int) BlockResult {
	for _, r := range rules {
		if !r.Active {
			continue
		}
		if !r.AppliesOn(date.Weekday()) {
			continue
		}
		if !r.InValidityWindow(date) {
			continue
		}

		rs, err := model.ParseMinuteOfDay(r.Start)
		if err != nil {
			continue
		}
		re, err := model.ParseEndMinute(r.End)
		if err != nil {
			continue
		}

		if Overlaps(startMin, endMin, rs, re) {
			return BlockResult{Blocked: true, Label: r.Label}
		}
	}
	return BlockResult{}
}
