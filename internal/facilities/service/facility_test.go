package service

import (
	"context"
	"io"
	"testing"
	"time"

	facilitieserrors "pitchside/internal/facilities/errors"
	"pitchside/internal/facilities/validator"
	"pitchside/pkg/clock"
	"pitchside/pkg/config"
	apperrors "pitchside/pkg/errors"
	"pitchside/pkg/logger"
	"pitchside/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

var facilityTestNow = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

type mockFacilityRepository struct {
	createFunc   func(ctx context.Context, facility *model.Facility) error
	findByIDFunc func(ctx context.Context, id string) (*model.Facility, error)
	findAllFunc  func(ctx context.Context, limit int, offset int64) ([]*model.Facility, error)
	updateFunc   func(ctx context.Context, id string, facility *model.Facility) (*mongo.UpdateResult, error)
}

func (m *mockFacilityRepository) Create(ctx context.Context, facility *model.Facility) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, facility)
	}
	return nil
}

func (m *mockFacilityRepository) FindByID(ctx context.Context, id string) (*model.Facility, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, facilitieserrors.ErrFacilityNotFound
}

func (m *mockFacilityRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Facility, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx, limit, offset)
	}
	return nil, nil
}

func (m *mockFacilityRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockFacilityRepository) Update(ctx context.Context, id string, facility *model.Facility) (*mongo.UpdateResult, error) {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, facility)
	}
	return &mongo.UpdateResult{MatchedCount: 1}, nil
}

func (m *mockFacilityRepository) Delete(ctx context.Context, id string) error {
	return nil
}

type mockSlotRepository struct {
	insertManyFunc      func(ctx context.Context, slots []*model.Slot) (int64, error)
	deleteForPeriodFunc func(ctx context.Context, facilityID, fromDate, toDate string) (int64, error)
	setAvailabilityFunc func(ctx context.Context, facilityID, date, start string, isAvailable bool, reason string) error
}

func (m *mockSlotRepository) InsertMany(ctx context.Context, slots []*model.Slot) (int64, error) {
	if m.insertManyFunc != nil {
		return m.insertManyFunc(ctx, slots)
	}
	return int64(len(slots)), nil
}

func (m *mockSlotRepository) FindByFacilityDate(ctx context.Context, facilityID, date string) ([]*model.Slot, error) {
	return nil, nil
}

func (m *mockSlotRepository) SetAvailability(ctx context.Context, facilityID, date, start string, isAvailable bool, reason string) error {
	if m.setAvailabilityFunc != nil {
		return m.setAvailabilityFunc(ctx, facilityID, date, start, isAvailable, reason)
	}
	return nil
}

func (m *mockSlotRepository) DeleteForPeriod(ctx context.Context, facilityID, fromDate, toDate string) (int64, error) {
	if m.deleteForPeriodFunc != nil {
		return m.deleteForPeriodFunc(ctx, facilityID, fromDate, toDate)
	}
	return 0, nil
}

func (m *mockSlotRepository) CountForPeriod(ctx context.Context, facilityID, fromDate, toDate string) (int64, error) {
	return 0, nil
}

type mockRuleRepository struct {
	createFunc   func(ctx context.Context, rule *model.RecurringBlockRule) error
	findByIDFunc func(ctx context.Context, id string) (*model.RecurringBlockRule, error)
	updateFunc   func(ctx context.Context, id string, rule *model.RecurringBlockRule) error
}

func (m *mockRuleRepository) Create(ctx context.Context, rule *model.RecurringBlockRule) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, rule)
	}
	return nil
}

func (m *mockRuleRepository) FindByID(ctx context.Context, id string) (*model.RecurringBlockRule, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, facilitieserrors.ErrRuleNotFound
}

func (m *mockRuleRepository) FindByFacility(ctx context.Context, facilityID string) ([]*model.RecurringBlockRule, error) {
	return nil, nil
}

func (m *mockRuleRepository) Update(ctx context.Context, id string, rule *model.RecurringBlockRule) error {
	if m.updateFunc != nil {
		return m.updateFunc(ctx, id, rule)
	}
	return nil
}

func (m *mockRuleRepository) Delete(ctx context.Context, id string) error {
	return nil
}

func validFacility() *model.Facility {
	open := model.DayHours{Open: "08:00", Close: "22:00"}
	return &model.Facility{
		ID:      "64a000000000000000000001",
		OwnerID: "owner-1",
		Name:    "North Pitch",
		City:    "Rotterdam",
		Hours: model.WeekHours{
			Monday:    open,
			Tuesday:   open,
			Wednesday: open,
			Thursday:  open,
			Friday:    open,
			Saturday:  open,
			Sunday:    model.DayHours{Closed: true},
		},
		SlotGranularityMin: 30,
		PriceNet1h:         10000,
		FullPaymentEnabled: true,
	}
}

func newTestFacilityService(repo *mockFacilityRepository, slots *mockSlotRepository, rules *mockRuleRepository) FacilityService {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	cfg := &config.Config{
		Log:                log,
		Clock:              clock.Fixed{T: facilityTestNow},
		SlotGranularityMin: 30,
	}
	return NewFacilityService(repo, slots, rules, validator.NewFacilityValidator(log), cfg)
}

func TestCreate_DefaultsGranularity(t *testing.T) {
	var created *model.Facility
	repo := &mockFacilityRepository{
		createFunc: func(ctx context.Context, facility *model.Facility) error {
			created = facility
			return nil
		},
	}
	svc := newTestFacilityService(repo, &mockSlotRepository{}, &mockRuleRepository{})

	f := validFacility()
	f.SlotGranularityMin = 0

	if err := svc.Create(context.Background(), f); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created.SlotGranularityMin != 30 {
		t.Errorf("expected default granularity 30, got %d", created.SlotGranularityMin)
	}
	if created.CreatedAt.IsZero() {
		t.Error("expected created_at stamped")
	}
}

func TestCreate_RequiresPaymentMode(t *testing.T) {
	svc := newTestFacilityService(&mockFacilityRepository{}, &mockSlotRepository{}, &mockRuleRepository{})

	f := validFacility()
	f.FullPaymentEnabled = false
	f.Guarantee = model.GuaranteeConfig{}

	err := svc.Create(context.Background(), f)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR without a payment mode, got %v", err)
	}
}

func TestCreate_RejectsInvertedHours(t *testing.T) {
	svc := newTestFacilityService(&mockFacilityRepository{}, &mockSlotRepository{}, &mockRuleRepository{})

	f := validFacility()
	f.Hours.Monday = model.DayHours{Open: "22:00", Close: "08:00"}

	err := svc.Create(context.Background(), f)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for inverted hours, got %v", err)
	}
}

func TestCreate_RejectsUnevenGranularity(t *testing.T) {
	svc := newTestFacilityService(&mockFacilityRepository{}, &mockSlotRepository{}, &mockRuleRepository{})

	f := validFacility()
	f.SlotGranularityMin = 37

	err := svc.Create(context.Background(), f)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR for granularity 37, got %v", err)
	}
}

func TestGetAll_NormalizesPagination(t *testing.T) {
	var gotLimit int
	var gotOffset int64
	repo := &mockFacilityRepository{
		findAllFunc: func(ctx context.Context, limit int, offset int64) ([]*model.Facility, error) {
			gotLimit = limit
			gotOffset = offset
			return nil, nil
		},
	}
	svc := newTestFacilityService(repo, &mockSlotRepository{}, &mockRuleRepository{})

	if _, _, err := svc.GetAll(context.Background(), 0, -5); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotLimit != 10 {
		t.Errorf("expected zero limit normalized to 10, got %d", gotLimit)
	}
	if gotOffset != 0 {
		t.Errorf("expected negative offset normalized to 0, got %d", gotOffset)
	}
}

func TestGenerateSlots_BuildsGridForPeriod(t *testing.T) {
	repo := &mockFacilityRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Facility, error) {
			return validFacility(), nil
		},
	}
	var inserted []*model.Slot
	cleared := false
	slots := &mockSlotRepository{
		insertManyFunc: func(ctx context.Context, s []*model.Slot) (int64, error) {
			inserted = s
			return int64(len(s)), nil
		},
		deleteForPeriodFunc: func(ctx context.Context, facilityID, fromDate, toDate string) (int64, error) {
			cleared = true
			return 0, nil
		},
	}
	svc := newTestFacilityService(repo, slots, &mockRuleRepository{})

	// Monday and tuesday, 08:00-22:00 at 30min granularity = 28 slots a day.
	count, err := svc.GenerateSlots(context.Background(), "64a000000000000000000001", "2026-03-02", "2026-03-03")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 56 {
		t.Errorf("expected 56 slots, got %d", count)
	}
	if !cleared {
		t.Error("expected the period cleared before regeneration")
	}
	if inserted[0].Start != "08:00" || inserted[0].End != "08:30" {
		t.Errorf("expected first slot 08:00-08:30, got %s-%s", inserted[0].Start, inserted[0].End)
	}
	if !inserted[0].IsAvailable {
		t.Error("generated slots start out available")
	}
}

func TestGenerateSlots_ClosedDayProducesNothing(t *testing.T) {
	repo := &mockFacilityRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Facility, error) {
			return validFacility(), nil
		},
	}
	svc := newTestFacilityService(repo, &mockSlotRepository{}, &mockRuleRepository{})

	// 2026-03-08 is a sunday and the facility closes sundays.
	count, err := svc.GenerateSlots(context.Background(), "64a000000000000000000001", "2026-03-08", "2026-03-08")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 0 {
		t.Errorf("expected no slots on a closed day, got %d", count)
	}
}

func TestGenerateSlots_RejectsInvertedPeriod(t *testing.T) {
	repo := &mockFacilityRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Facility, error) {
			return validFacility(), nil
		},
	}
	svc := newTestFacilityService(repo, &mockSlotRepository{}, &mockRuleRepository{})

	_, err := svc.GenerateSlots(context.Background(), "64a000000000000000000001", "2026-03-03", "2026-03-02")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestGenerateSlots_RejectsExcessiveHorizon(t *testing.T) {
	repo := &mockFacilityRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Facility, error) {
			return validFacility(), nil
		},
	}
	svc := newTestFacilityService(repo, &mockSlotRepository{}, &mockRuleRepository{})

	_, err := svc.GenerateSlots(context.Background(), "64a000000000000000000001", "2026-01-01", "2028-01-01")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT for a two year period, got %v", err)
	}
}

func TestSetSlotAvailability_RequiresReasonWhenClosing(t *testing.T) {
	svc := newTestFacilityService(&mockFacilityRepository{}, &mockSlotRepository{}, &mockRuleRepository{})

	err := svc.SetSlotAvailability(context.Background(), "64a000000000000000000001", "2026-03-02", "10:00", false, "")
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestCreateRule_RejectsInvertedWindow(t *testing.T) {
	repo := &mockFacilityRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Facility, error) {
			return validFacility(), nil
		},
	}
	svc := newTestFacilityService(repo, &mockSlotRepository{}, &mockRuleRepository{})

	rule := &model.RecurringBlockRule{
		FacilityID: "64a000000000000000000001",
		Weekdays:   []string{"monday"},
		Start:      "20:00",
		End:        "18:00",
		ValidFrom:  "2026-03-01",
		Active:     true,
		Label:      "school lease",
	}
	err := svc.CreateRule(context.Background(), rule)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeValidation {
		t.Fatalf("expected VALIDATION_ERROR, got %v", err)
	}
}

func TestUpdateRule_AppliesPartialUpdate(t *testing.T) {
	existing := &model.RecurringBlockRule{
		ID:         "64a0000000000000000000aa",
		FacilityID: "64a000000000000000000001",
		Weekdays:   []string{"monday"},
		Start:      "18:00",
		End:        "20:00",
		ValidFrom:  "2026-03-01",
		Active:     true,
		Label:      "school lease",
	}
	var saved *model.RecurringBlockRule
	rules := &mockRuleRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.RecurringBlockRule, error) {
			copied := *existing
			return &copied, nil
		},
		updateFunc: func(ctx context.Context, id string, rule *model.RecurringBlockRule) error {
			saved = rule
			return nil
		},
	}
	svc := newTestFacilityService(&mockFacilityRepository{}, &mockSlotRepository{}, rules)

	inactive := false
	updated, err := svc.UpdateRule(context.Background(), existing.ID, &model.RecurringBlockRuleUpdate{
		Weekdays: []string{"monday", "wednesday"},
		Active:   &inactive,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(saved.Weekdays) != 2 {
		t.Errorf("expected weekday set updated, got %v", saved.Weekdays)
	}
	if updated.Active {
		t.Error("expected rule deactivated")
	}
	if updated.Start != "18:00" || updated.End != "20:00" {
		t.Errorf("untouched fields must survive, got %s-%s", updated.Start, updated.End)
	}
}
