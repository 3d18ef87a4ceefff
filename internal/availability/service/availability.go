package service

import (
	"context"
	"errors"
	"time"

	availerrors "pitchside/internal/availability/errors"
	apperrors "pitchside/pkg/errors"
	"pitchside/pkg/logger"
	"pitchside/pkg/model"
)

// SnapshotRepository fetches everything the engine needs for one facility
// day in a single call.
type SnapshotRepository interface {
	LoadSnapshot(ctx context.Context, facilityID string, date time.Time) (*Snapshot, error)
}

// CheckRequest asks whether an exact range is bookable for a session.
type CheckRequest struct {
	FacilityID string `json:"facility_id" validate:"required,mongodb"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Start      string `json:"start" validate:"required,hhmm"`
	End        string `json:"end" validate:"required,hhmm"`
	SessionID  string `json:"session_id,omitempty" validate:"omitempty,max=100"`
}

// RangeDecision is the binary answer plus enough context for the caller to
// explain a rejection. Expected rejections (CONFLICT, NOT_CONFIGURED) arrive
// here, not as errors; malformed input still fails fast.
type RangeDecision struct {
	Available bool   `json:"available"`
	Code      string `json:"code,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

// DayView is the per-slot calendar for one facility day.
type DayView struct {
	FacilityID string     `json:"facility_id"`
	Date       string     `json:"date"`
	Slots      []SlotView `json:"slots"`
	OpenCount  int        `json:"open_count"`
}

type CheckValidator interface {
	ValidateCheck(req *CheckRequest) error
}

type AvailabilityService interface {
	DayStatus(ctx context.Context, facilityID, date, sessionID string) (*DayView, error)
	CheckRange(ctx context.Context, req *CheckRequest) (*RangeDecision, error)
	EndTimes(ctx context.Context, facilityID, date, start, sessionID string) ([]string, error)
}

type availabilityService struct {
	repo      SnapshotRepository
	engine    *Engine
	validator CheckValidator
	log       *logger.Logger
}

func NewAvailabilityService(repo SnapshotRepository, engine *Engine, validator CheckValidator, log *logger.Logger) AvailabilityService {
	return &availabilityService{
		repo:      repo,
		engine:    engine,
		validator: validator,
		log:       log,
	}
}

func (s *availabilityService) loadSnapshot(ctx context.Context, facilityID, date string) (*Snapshot, error) {
	day, err := model.ParseDate(date)
	if err != nil {
		return nil, apperrors.InvalidInput("date must be formatted as YYYY-MM-DD")
	}

	snap, err := s.repo.LoadSnapshot(ctx, facilityID, day)
	if err != nil {
		if errors.Is(err, availerrors.ErrFacilityNotFound) {
			return nil, apperrors.NotFoundWithID("Facility", facilityID)
		}
		if errors.Is(err, availerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid facility ID format")
		}
		s.log.Error("Failed to load availability snapshot", "facility_id", facilityID, "date", date, "error", err)
		return nil, apperrors.Internal("Failed to load availability data", err)
	}
	return snap, nil
}

func (s *availabilityService) DayStatus(ctx context.Context, facilityID, date, sessionID string) (*DayView, error) {
	snap, err := s.loadSnapshot(ctx, facilityID, date)
	if err != nil {
		return nil, err
	}

	views, err := s.engine.DayStatus(snap, sessionID)
	if err != nil {
		return nil, err
	}

	open, err := s.engine.OpenCount(snap, views)
	if err != nil {
		return nil, err
	}

	return &DayView{
		FacilityID: facilityID,
		Date:       date,
		Slots:      views,
		OpenCount:  open,
	}, nil
}

func (s *availabilityService) CheckRange(ctx context.Context, req *CheckRequest) (*RangeDecision, error) {
	if err := s.validator.ValidateCheck(req); err != nil {
		return nil, apperrors.Validation("Invalid availability check", map[string]any{"error": err.Error()})
	}

	snap, err := s.loadSnapshot(ctx, req.FacilityID, req.Date)
	if err != nil {
		return nil, err
	}

	startMin, err := model.ParseMinuteOfDay(req.Start)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	endMin, err := model.ParseEndMinute(req.End)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	checkErr := s.engine.IsRangeAvailable(snap, startMin, endMin, req.SessionID)
	if checkErr == nil {
		return &RangeDecision{Available: true}, nil
	}

	var appErr *apperrors.AppError
	if errors.As(checkErr, &appErr) {
		switch appErr.Code {
		case apperrors.CodeConflict, apperrors.CodeNotConfigured:
			return &RangeDecision{Available: false, Code: appErr.Code, Reason: appErr.Message}, nil
		}
	}
	return nil, checkErr
}

func (s *availabilityService) EndTimes(ctx context.Context, facilityID, date, start, sessionID string) ([]string, error) {
	snap, err := s.loadSnapshot(ctx, facilityID, date)
	if err != nil {
		return nil, err
	}

	startMin, err := model.ParseMinuteOfDay(start)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	return s.engine.ReachableEndTimes(snap, startMin, sessionID)
}
