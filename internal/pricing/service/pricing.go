package service

import (
	"context"
	"errors"
	"time"

	pricingerrors "pitchside/internal/pricing/errors"
	"pitchside/internal/pricing/repository"
	"pitchside/pkg/config"
	apperrors "pitchside/pkg/errors"
	"pitchside/pkg/logger"
	"pitchside/pkg/model"
)

// QuoteRequest prices an exact range, optionally with a redemption code.
type QuoteRequest struct {
	FacilityID string `json:"facility_id" validate:"required,mongodb"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Start      string `json:"start" validate:"required,hhmm"`
	End        string `json:"end" validate:"required,hhmm"`
	PromoCode  string `json:"promo_code,omitempty" validate:"omitempty,min=3,max=40"`
}

// Quote is the full price breakdown for a range. Guarantee is present only
// when the facility has deposit mode enabled.
type Quote struct {
	FacilityID  string `json:"facility_id"`
	Date        string `json:"date"`
	Start       string `json:"start"`
	End         string `json:"end"`
	DurationMin int    `json:"duration_min"`

	PriceNet    int64 `json:"price_net"`
	PricePublic int64 `json:"price_public"`

	PromoCode       string `json:"promo_code,omitempty"`
	PromoSavings    int64  `json:"promo_savings"`
	PriceAfterPromo int64  `json:"price_after_promo"`

	OperatorFee int64 `json:"operator_fee"`
	TotalOnline int64 `json:"total_online"`

	Guarantee *Breakdown `json:"guarantee,omitempty"`

	promoRuleID string
}

type QuoteValidator interface {
	ValidateQuote(req *QuoteRequest) error
}

type PricingService interface {
	Quote(ctx context.Context, req *QuoteRequest) (*Quote, error)
	PriceSnapshot(ctx context.Context, facilityID, date, start, end, promoCode string) (net int64, public int64, err error)
}

type pricingService struct {
	repo      repository.PromoRepository
	validator QuoteValidator
	cfg       *config.Config
	log       *logger.Logger
}

func NewPricingService(repo repository.PromoRepository, validator QuoteValidator, cfg *config.Config, log *logger.Logger) PricingService {
	return &pricingService{
		repo:      repo,
		validator: validator,
		cfg:       cfg,
		log:       log,
	}
}

func (s *pricingService) Quote(ctx context.Context, req *QuoteRequest) (*Quote, error) {
	if err := s.validator.ValidateQuote(req); err != nil {
		return nil, apperrors.Validation("Invalid quote request", map[string]any{"error": err.Error()})
	}

	day, err := model.ParseDate(req.Date)
	if err != nil {
		return nil, apperrors.InvalidInput("date must be formatted as YYYY-MM-DD")
	}
	startMin, err := model.ParseMinuteOfDay(req.Start)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	endMin, err := model.ParseEndMinute(req.End)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	if endMin <= startMin {
		return nil, apperrors.InvalidInput("end must be after start")
	}

	facility, err := s.repo.FindFacility(ctx, req.FacilityID)
	if err != nil {
		if errors.Is(err, pricingerrors.ErrFacilityNotFound) {
			return nil, apperrors.NotFoundWithID("Facility", req.FacilityID)
		}
		if errors.Is(err, pricingerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid facility ID format")
		}
		return nil, apperrors.Internal("Failed to find facility", err)
	}

	duration := endMin - startMin
	net, err := NetForDuration(facility, duration)
	if err != nil {
		return nil, err
	}
	public := PublicPrice(net, facility.CommissionRate)

	promo, err := s.selectPromo(ctx, req, day, startMin, public)
	if err != nil {
		return nil, err
	}

	afterPromo := ApplyPromo(public, promo)
	fee, total := FeesAndTotal(afterPromo, s.cfg.OperatorFeeRate)

	quote := &Quote{
		FacilityID:      req.FacilityID,
		Date:            req.Date,
		Start:           req.Start,
		End:             req.End,
		DurationMin:     duration,
		PriceNet:        net,
		PricePublic:     public,
		PromoSavings:    public - afterPromo,
		PriceAfterPromo: afterPromo,
		OperatorFee:     fee,
		TotalOnline:     total,
	}
	if promo != nil {
		quote.PromoCode = promo.Code
		quote.promoRuleID = promo.ID
	}

	if facility.Guarantee.Enabled {
		increment := facility.RoundingIncrement
		if increment <= 0 {
			increment = s.cfg.PriceRoundingIncrement
		}
		breakdown := GuaranteeBreakdown(net, facility.Guarantee.DepositPercent, facility.CommissionRate, s.cfg.OperatorFeeRate, increment)
		quote.Guarantee = &breakdown
	}

	return quote, nil
}

// selectPromo resolves the discount for the request. An explicit code must
// exist and apply or the whole quote fails; without a code the best-saving
// applicable automatic rule wins, and none applying is fine.
func (s *pricingService) selectPromo(ctx context.Context, req *QuoteRequest, day time.Time, startMin int, basePublic int64) (*model.PromoRule, error) {
	if req.PromoCode != "" {
		promo, err := s.repo.FindByCode(ctx, req.PromoCode)
		if err != nil {
			if errors.Is(err, pricingerrors.ErrPromoNotFound) {
				return nil, apperrors.InvalidInput("Unknown promo code")
			}
			return nil, apperrors.Internal("Failed to find promo rule", err)
		}
		if !promo.AppliesTo(req.FacilityID, day, startMin) {
			return nil, apperrors.InvalidInput("Promo code does not apply to this booking")
		}
		return promo, nil
	}

	automatic, err := s.repo.FindAutomatic(ctx)
	if err != nil {
		return nil, apperrors.Internal("Failed to find promo rules", err)
	}

	var best *model.PromoRule
	var bestSavings int64
	for _, promo := range automatic {
		if !promo.AppliesTo(req.FacilityID, day, startMin) {
			continue
		}
		savings := basePublic - ApplyPromo(basePublic, promo)
		if best == nil || savings > bestSavings {
			best = promo
			bestSavings = savings
		}
	}
	return best, nil
}

// PriceSnapshot is the redemption-time entry point: it resolves the price
// pair stored on a booking and burns one use of the applied promo rule.
func (s *pricingService) PriceSnapshot(ctx context.Context, facilityID, date, start, end, promoCode string) (int64, int64, error) {
	quote, err := s.Quote(ctx, &QuoteRequest{
		FacilityID: facilityID,
		Date:       date,
		Start:      start,
		End:        end,
		PromoCode:  promoCode,
	})
	if err != nil {
		return 0, 0, err
	}

	if quote.promoRuleID != "" {
		if err := s.repo.IncrementUses(ctx, quote.promoRuleID); err != nil {
			s.log.Warn("Failed to increment promo uses", "promo_id", quote.promoRuleID, "error", err)
		}
	}

	return quote.PriceNet, quote.PriceAfterPromo, nil
}
