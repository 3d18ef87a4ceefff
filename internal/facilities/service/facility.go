package service

import (
	"context"
	"errors"
	"fmt"

	availservice "pitchside/internal/availability/service"
	facilitieserrors "pitchside/internal/facilities/errors"
	"pitchside/internal/facilities/repository"
	"pitchside/internal/facilities/validator"
	"pitchside/pkg/config"
	apperrors "pitchside/pkg/errors"
	"pitchside/pkg/model"
)

// maxGenerationDays bounds one batch generation request. Owners configure a
// season at a time, not years.
const maxGenerationDays = 366

type FacilityService interface {
	Create(ctx context.Context, facility *model.Facility) error
	GetByID(ctx context.Context, id string) (*model.Facility, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Facility, int64, error)
	Update(ctx context.Context, id string, updates *model.FacilityUpdate) (*model.Facility, error)
	Delete(ctx context.Context, id string) error

	GenerateSlots(ctx context.Context, facilityID, fromDate, toDate string) (int64, error)
	GetSlots(ctx context.Context, facilityID, date string) ([]*model.Slot, error)
	SetSlotAvailability(ctx context.Context, facilityID, date, start string, isAvailable bool, reason string) error

	CreateRule(ctx context.Context, rule *model.RecurringBlockRule) error
	ListRules(ctx context.Context, facilityID string) ([]*model.RecurringBlockRule, error)
	UpdateRule(ctx context.Context, id string, updates *model.RecurringBlockRuleUpdate) (*model.RecurringBlockRule, error)
	DeleteRule(ctx context.Context, id string) error
}

type facilityService struct {
	repo      repository.FacilityRepository
	slots     repository.SlotRepository
	rules     repository.RuleRepository
	validator *validator.FacilityValidator
	cfg       *config.Config
}

func NewFacilityService(
	repo repository.FacilityRepository,
	slots repository.SlotRepository,
	rules repository.RuleRepository,
	validator *validator.FacilityValidator,
	cfg *config.Config,
) FacilityService {
	return &facilityService{
		repo:      repo,
		slots:     slots,
		rules:     rules,
		validator: validator,
		cfg:       cfg,
	}
}

func (s *facilityService) Create(ctx context.Context, facility *model.Facility) error {
	if facility.SlotGranularityMin == 0 {
		facility.SlotGranularityMin = s.cfg.SlotGranularityMin
	}
	if facility.CreatedAt.IsZero() {
		facility.CreatedAt = s.cfg.Clock.Now()
	}

	if err := s.validator.ValidateFacility(facility); err != nil {
		return apperrors.Validation("Invalid facility", map[string]any{"error": err.Error()})
	}

	if err := s.repo.Create(ctx, facility); err != nil {
		return apperrors.Internal("Failed to create facility", err)
	}
	return nil
}

func (s *facilityService) GetByID(ctx context.Context, id string) (*model.Facility, error) {
	facility, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, mapFacilityError(err, id)
	}
	return facility, nil
}

func (s *facilityService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Facility, int64, error) {
	limit = config.NormalizePaginationLimit(limit)
	offset = config.NormalizeOffset(offset)

	facilities, err := s.repo.FindAll(ctx, limit, offset)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to list facilities", err)
	}
	count, err := s.repo.Count(ctx)
	if err != nil {
		return nil, 0, apperrors.Internal("Failed to count facilities", err)
	}
	return facilities, count, nil
}

func (s *facilityService) Update(ctx context.Context, id string, updates *model.FacilityUpdate) (*model.Facility, error) {
	facility, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	applyFacilityUpdate(facility, updates)

	if err := s.validator.ValidateFacility(facility); err != nil {
		return nil, apperrors.Validation("Invalid facility update", map[string]any{"error": err.Error()})
	}

	if _, err := s.repo.Update(ctx, id, facility); err != nil {
		return nil, mapFacilityError(err, id)
	}
	return facility, nil
}

func (s *facilityService) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return mapFacilityError(err, id)
	}
	return nil
}

// GenerateSlots replaces the facility's slot records for the inclusive date
// period with a fresh grid derived from its opening hours. Dates the facility
// is closed simply produce no records.
func (s *facilityService) GenerateSlots(ctx context.Context, facilityID, fromDate, toDate string) (int64, error) {
	facility, err := s.GetByID(ctx, facilityID)
	if err != nil {
		return 0, err
	}

	from, err := model.ParseDate(fromDate)
	if err != nil {
		return 0, apperrors.InvalidInput("from date must be formatted as YYYY-MM-DD")
	}
	to, err := model.ParseDate(toDate)
	if err != nil {
		return 0, apperrors.InvalidInput("to date must be formatted as YYYY-MM-DD")
	}
	if to.Before(from) {
		return 0, apperrors.InvalidInput("to date must not precede from date")
	}
	days := int(to.Sub(from).Hours()/24) + 1
	if days > maxGenerationDays {
		return 0, apperrors.InvalidInput(fmt.Sprintf("period exceeds %d days", maxGenerationDays))
	}

	now := s.cfg.Clock.Now()
	var slots []*model.Slot
	for day := from; !day.After(to); day = day.AddDate(0, 0, 1) {
		bounds, err := availservice.BoundariesFor(facility, day, s.cfg.SlotGranularityMin)
		if err != nil {
			return 0, apperrors.InvalidInput(err.Error())
		}
		for _, inc := range bounds {
			slots = append(slots, &model.Slot{
				FacilityID:  facility.ID,
				Date:        day.Format(model.DateLayout),
				Start:       model.FormatMinuteOfDay(inc.StartMin),
				End:         model.FormatMinuteOfDay(inc.EndMin),
				IsAvailable: true,
				CreatedAt:   now,
			})
		}
	}

	if _, err := s.slots.DeleteForPeriod(ctx, facilityID, fromDate, toDate); err != nil {
		return 0, apperrors.Internal("Failed to clear existing slots", err)
	}
	if len(slots) == 0 {
		return 0, nil
	}

	inserted, err := s.slots.InsertMany(ctx, slots)
	if err != nil {
		return 0, apperrors.Internal("Failed to insert slots", err)
	}
	return inserted, nil
}

func (s *facilityService) GetSlots(ctx context.Context, facilityID, date string) ([]*model.Slot, error) {
	if _, err := model.ParseDate(date); err != nil {
		return nil, apperrors.InvalidInput("date must be formatted as YYYY-MM-DD")
	}
	slots, err := s.slots.FindByFacilityDate(ctx, facilityID, date)
	if err != nil {
		return nil, apperrors.Internal("Failed to list slots", err)
	}
	return slots, nil
}

func (s *facilityService) SetSlotAvailability(ctx context.Context, facilityID, date, start string, isAvailable bool, reason string) error {
	if !isAvailable && reason == "" {
		return apperrors.InvalidInput("a reason is required when closing a slot")
	}

	err := s.slots.SetAvailability(ctx, facilityID, date, start, isAvailable, reason)
	if err != nil {
		if errors.Is(err, facilitieserrors.ErrSlotNotFound) {
			return apperrors.NotFound("Slot")
		}
		return apperrors.Internal("Failed to update slot", err)
	}
	return nil
}

func (s *facilityService) CreateRule(ctx context.Context, rule *model.RecurringBlockRule) error {
	if _, err := s.GetByID(ctx, rule.FacilityID); err != nil {
		return err
	}

	if rule.CreatedAt.IsZero() {
		rule.CreatedAt = s.cfg.Clock.Now()
	}
	if err := s.validator.ValidateRule(rule); err != nil {
		return apperrors.Validation("Invalid recurring rule", map[string]any{"error": err.Error()})
	}

	if err := s.rules.Create(ctx, rule); err != nil {
		return apperrors.Internal("Failed to create recurring rule", err)
	}
	return nil
}

func (s *facilityService) ListRules(ctx context.Context, facilityID string) ([]*model.RecurringBlockRule, error) {
	rules, err := s.rules.FindByFacility(ctx, facilityID)
	if err != nil {
		return nil, apperrors.Internal("Failed to list recurring rules", err)
	}
	return rules, nil
}

func (s *facilityService) UpdateRule(ctx context.Context, id string, updates *model.RecurringBlockRuleUpdate) (*model.RecurringBlockRule, error) {
	rule, err := s.rules.FindByID(ctx, id)
	if err != nil {
		return nil, mapRuleError(err, id)
	}

	applyRuleUpdate(rule, updates)

	if err := s.validator.ValidateRule(rule); err != nil {
		return nil, apperrors.Validation("Invalid rule update", map[string]any{"error": err.Error()})
	}

	if err := s.rules.Update(ctx, id, rule); err != nil {
		return nil, mapRuleError(err, id)
	}
	return rule, nil
}

func (s *facilityService) DeleteRule(ctx context.Context, id string) error {
	if err := s.rules.Delete(ctx, id); err != nil {
		return mapRuleError(err, id)
	}
	return nil
}

func applyFacilityUpdate(f *model.Facility, u *model.FacilityUpdate) {
	if u.Name != "" {
		f.Name = u.Name
	}
	if u.City != "" {
		f.City = u.City
	}
	if u.Hours != nil {
		f.Hours = *u.Hours
	}
	if u.Overrides != nil {
		f.Overrides = *u.Overrides
	}
	if u.PriceNet1h != nil {
		f.PriceNet1h = *u.PriceNet1h
	}
	if u.PriceNet1h30 != nil {
		f.PriceNet1h30 = u.PriceNet1h30
	}
	if u.PriceNet2h != nil {
		f.PriceNet2h = u.PriceNet2h
	}
	if u.CommissionRate != nil {
		f.CommissionRate = *u.CommissionRate
	}
	if u.RoundingIncrement != nil {
		f.RoundingIncrement = *u.RoundingIncrement
	}
	if u.FullPaymentEnabled != nil {
		f.FullPaymentEnabled = *u.FullPaymentEnabled
	}
	if u.Guarantee != nil {
		f.Guarantee = *u.Guarantee
	}
}

func applyRuleUpdate(r *model.RecurringBlockRule, u *model.RecurringBlockRuleUpdate) {
	if u.Weekdays != nil {
		r.Weekdays = u.Weekdays
	}
	if u.Start != "" {
		r.Start = u.Start
	}
	if u.End != "" {
		r.End = u.End
	}
	if u.ValidFrom != "" {
		r.ValidFrom = u.ValidFrom
	}
	if u.ValidTo != nil {
		r.ValidTo = u.ValidTo
	}
	if u.Active != nil {
		r.Active = *u.Active
	}
	if u.Label != "" {
		r.Label = u.Label
	}
}

func mapFacilityError(err error, id string) error {
	if errors.Is(err, facilitieserrors.ErrFacilityNotFound) {
		return apperrors.NotFoundWithID("Facility", id)
	}
	if errors.Is(err, facilitieserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid facility ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal("Facility storage failure", err)
}

func mapRuleError(err error, id string) error {
	if errors.Is(err, facilitieserrors.ErrRuleNotFound) {
		return apperrors.NotFoundWithID("Recurring rule", id)
	}
	if errors.Is(err, facilitieserrors.ErrInvalidID) {
		return apperrors.InvalidInput("Invalid rule ID format")
	}
	if apperrors.IsAppError(err) {
		return err
	}
	return apperrors.Internal("Rule storage failure", err)
}
