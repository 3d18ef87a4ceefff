package service

import (
	"testing"

	apperrors "pitchside/pkg/errors"
	"pitchside/pkg/model"
)

func priceTestFacility() *model.Facility {
	p90 := int64(14000)
	p120 := int64(18000)
	return &model.Facility{
		ID:             "64a000000000000000000001",
		PriceNet1h:     10000,
		PriceNet1h30:   &p90,
		PriceNet2h:     &p120,
		CommissionRate: 0.03,
	}
}

func TestNetForDuration_ExactAnchors(t *testing.T) {
	f := priceTestFacility()

	cases := []struct {
		minutes int
		want    int64
	}{
		{60, 10000},
		{90, 14000},
		{120, 18000},
	}
	for _, tc := range cases {
		got, err := NetForDuration(f, tc.minutes)
		if err != nil {
			t.Fatalf("duration %d: unexpected error: %v", tc.minutes, err)
		}
		if got != tc.want {
			t.Errorf("duration %d: expected %d, got %d", tc.minutes, tc.want, got)
		}
	}
}

func TestNetForDuration_InterpolatesBetweenAnchors(t *testing.T) {
	f := priceTestFacility()

	// Halfway along the 60->90 segment.
	got, err := NetForDuration(f, 75)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 12000 {
		t.Errorf("expected 12000 at 75min, got %d", got)
	}

	// Below the first paid anchor the segment is (0,0)->(60,10000).
	got, err = NetForDuration(f, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5000 {
		t.Errorf("expected 5000 at 30min, got %d", got)
	}
}

func TestNetForDuration_ExtrapolatesPastLastAnchor(t *testing.T) {
	f := priceTestFacility()

	// 90->120 segment slope continues past 120.
	got, err := NetForDuration(f, 150)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 22000 {
		t.Errorf("expected 22000 at 150min, got %d", got)
	}
}

func TestNetForDuration_OnlyHourAnchorFallsBackToPerMinute(t *testing.T) {
	f := &model.Facility{PriceNet1h: 12000}

	cases := []struct {
		minutes int
		want    int64
	}{
		{30, 6000},
		{90, 18000},
		{120, 24000},
	}
	for _, tc := range cases {
		got, err := NetForDuration(f, tc.minutes)
		if err != nil {
			t.Fatalf("duration %d: unexpected error: %v", tc.minutes, err)
		}
		if got != tc.want {
			t.Errorf("duration %d: expected %d, got %d", tc.minutes, tc.want, got)
		}
	}
}

func TestNetForDuration_MonotonicNonDecreasing(t *testing.T) {
	f := priceTestFacility()

	var prev int64 = -1
	for minutes := 30; minutes <= 240; minutes += 30 {
		got, err := NetForDuration(f, minutes)
		if err != nil {
			t.Fatalf("duration %d: unexpected error: %v", minutes, err)
		}
		if got < prev {
			t.Errorf("price decreased from %d to %d at %dmin", prev, got, minutes)
		}
		prev = got
	}
}

func TestNetForDuration_MalformedInput(t *testing.T) {
	if _, err := NetForDuration(priceTestFacility(), 0); err == nil {
		t.Error("expected error for zero duration")
	}
	if _, err := NetForDuration(priceTestFacility(), -30); err == nil {
		t.Error("expected error for negative duration")
	}

	_, err := NetForDuration(&model.Facility{}, 60)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT without anchors, got %v", err)
	}
}

func TestPublicPrice(t *testing.T) {
	if got := PublicPrice(10000, 0.03); got != 10300 {
		t.Errorf("expected 10300, got %d", got)
	}
	if got := PublicPrice(10000, 0); got != 10000 {
		t.Errorf("expected 10000 with zero commission, got %d", got)
	}
}

func TestApplyPromo(t *testing.T) {
	cases := []struct {
		name  string
		base  int64
		promo *model.PromoRule
		want  int64
	}{
		{"nil promo", 10300, nil, 10300},
		{"percent 15", 10300, &model.PromoRule{Type: model.DiscountPercent, Value: 15}, 8755},
		{"fixed 2000", 10300, &model.PromoRule{Type: model.DiscountFixed, Value: 2000}, 8300},
		{"fixed beyond base floors at zero", 10300, &model.PromoRule{Type: model.DiscountFixed, Value: 99999}, 0},
		{"percent 100 floors at zero", 10300, &model.PromoRule{Type: model.DiscountPercent, Value: 100}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ApplyPromo(tc.base, tc.promo)
			if got != tc.want {
				t.Errorf("expected %d, got %d", tc.want, got)
			}
			if got < 0 {
				t.Error("discounted price must never be negative")
			}
		})
	}
}

func TestFeesAndTotal(t *testing.T) {
	fee, total := FeesAndTotal(8755, 0.03)
	if fee != 263 {
		t.Errorf("expected fee 263, got %d", fee)
	}
	if total != 9018 {
		t.Errorf("expected total 9018, got %d", total)
	}
}

func TestGuaranteeBreakdown(t *testing.T) {
	got := GuaranteeBreakdown(10000, 20, 0.03, 0.03, 500)

	want := Breakdown{
		DepositNet:        2000,
		DepositPublic:     2000,
		DepositCommission: 0,
		OperatorFee:       60,
		TotalOnline:       2060,
		BalanceCash:       8000,
	}
	if got != want {
		t.Errorf("expected %+v, got %+v", want, got)
	}
}

func TestGuaranteeBreakdown_CoversNetTake(t *testing.T) {
	for _, pct := range []float64{10, 20, 30, 50} {
		b := GuaranteeBreakdown(10000, pct, 0.03, 0.03, 500)
		if b.DepositNet+b.BalanceCash != 10000 {
			t.Errorf("deposit %v%%: net take not covered, deposit %d + balance %d", pct, b.DepositNet, b.BalanceCash)
		}
	}
}

func TestRoundToIncrement(t *testing.T) {
	cases := []struct {
		v, inc, want int64
	}{
		{2060, 500, 2000},
		{2310, 500, 2500},
		{2250, 500, 2500},
		{2000, 500, 2000},
		{1234, 0, 1234},
	}
	for _, tc := range cases {
		if got := RoundToIncrement(tc.v, tc.inc); got != tc.want {
			t.Errorf("round(%d, %d): expected %d, got %d", tc.v, tc.inc, tc.want, got)
		}
	}
}
