package service

import (
	"math"

	apperrors "pitchside/pkg/errors"
	"pitchside/pkg/model"
)

// anchor is one point of the duration-to-net-price curve. The curve always
// starts at (0,0); 1h is mandatory, 1h30 and 2h exist only when configured.
type anchor struct {
	minutes int
	net     int64
}

func anchorsFor(f *model.Facility) []anchor {
	anchors := []anchor{{0, 0}, {60, f.PriceNet1h}}
	if f.PriceNet1h30 != nil {
		anchors = append(anchors, anchor{90, *f.PriceNet1h30})
	}
	if f.PriceNet2h != nil {
		anchors = append(anchors, anchor{120, *f.PriceNet2h})
	}
	return anchors
}

// NetForDuration prices an arbitrary duration off the anchor curve: exact at
// anchors, linear between bracketing anchors, extrapolated past the last one
// with the final segment's per-minute slope. With only the 1h anchor set this
// degenerates to a flat per-minute rate.
func NetForDuration(f *model.Facility, durationMin int) (int64, error) {
	if durationMin <= 0 {
		return 0, apperrors.InvalidInput("duration must be positive")
	}
	if f.PriceNet1h <= 0 {
		return 0, apperrors.InvalidInput("facility has no anchor prices configured")
	}

	anchors := anchorsFor(f)

	for _, a := range anchors {
		if a.minutes == durationMin {
			return a.net, nil
		}
	}

	for i := 1; i < len(anchors); i++ {
		if durationMin < anchors[i].minutes {
			return interpolate(anchors[i-1], anchors[i], durationMin), nil
		}
	}

	last := anchors[len(anchors)-1]
	prev := anchors[len(anchors)-2]
	return interpolate(prev, last, durationMin), nil
}

func interpolate(from, to anchor, minutes int) int64 {
	slope := float64(to.net-from.net) / float64(to.minutes-from.minutes)
	return int64(math.Round(float64(from.net) + slope*float64(minutes-from.minutes)))
}

// PublicPrice converts the owner's net take into what the payer is charged.
func PublicPrice(net int64, commissionRate float64) int64 {
	return int64(math.Round(float64(net) * (1 + commissionRate)))
}

// ApplyPromo discounts the public price. Percent discounts multiply, fixed
// discounts subtract; the result never goes below zero.
func ApplyPromo(basePublic int64, promo *model.PromoRule) int64 {
	if promo == nil {
		return basePublic
	}

	var discounted int64
	switch promo.Type {
	case model.DiscountPercent:
		discounted = int64(math.Round(float64(basePublic) * (1 - float64(promo.Value)/100)))
	case model.DiscountFixed:
		discounted = basePublic - promo.Value
	default:
		return basePublic
	}

	if discounted < 0 {
		return 0
	}
	return discounted
}

// FeesAndTotal adds the payment-processor surcharge on top of the (possibly
// discounted) public price.
func FeesAndTotal(discountedPublic int64, feeRate float64) (fee, total int64) {
	fee = int64(math.Ceil(float64(discountedPublic) * feeRate))
	return fee, discountedPublic + fee
}

// Breakdown is the deposit/balance split for guarantee mode. The owner's net
// take is always fully covered between the online deposit and the cash
// balance.
type Breakdown struct {
	DepositNet        int64 `json:"deposit_net"`
	DepositPublic     int64 `json:"deposit_public"`
	DepositCommission int64 `json:"deposit_commission"`
	OperatorFee       int64 `json:"operator_fee"`
	TotalOnline       int64 `json:"total_online"`
	BalanceCash       int64 `json:"balance_cash"`
}

// GuaranteeBreakdown splits the net price into an online deposit and an
// in-person balance. DepositPublic is the deposit's public equivalent rounded
// to the display increment so quoted deposits look clean.
func GuaranteeBreakdown(net int64, depositPercent, commissionRate, feeRate float64, increment int64) Breakdown {
	depositNet := int64(math.Round(float64(net) * depositPercent / 100))
	depositPublic := RoundToIncrement(PublicPrice(depositNet, commissionRate), increment)
	fee, total := FeesAndTotal(depositPublic, feeRate)

	return Breakdown{
		DepositNet:        depositNet,
		DepositPublic:     depositPublic,
		DepositCommission: depositPublic - depositNet,
		OperatorFee:       fee,
		TotalOnline:       total,
		BalanceCash:       net - depositNet,
	}
}

// RoundToIncrement rounds to the nearest multiple of the increment.
func RoundToIncrement(v, increment int64) int64 {
	if increment <= 0 {
		return v
	}
	half := increment / 2
	return ((v + half) / increment) * increment
}
