package service

import (
	"context"
	"errors"
	"time"

	availerrors "pitchside/internal/availability/errors"
	availservice "pitchside/internal/availability/service"
	holdserrors "pitchside/internal/holds/errors"
	"pitchside/internal/holds/repository"
	"pitchside/pkg/clock"
	"pitchside/pkg/config"
	apperrors "pitchside/pkg/errors"
	"pitchside/pkg/kafka"
	"pitchside/pkg/model"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

// PlaceRequest asks for a time-bound exclusive lease over a range while a
// group payment is collected. TTLSeconds of zero takes the configured default.
type PlaceRequest struct {
	FacilityID string `json:"facility_id" validate:"required,mongodb"`
	Date       string `json:"date" validate:"required,datetime=2006-01-02"`
	Start      string `json:"start" validate:"required,hhmm"`
	End        string `json:"end" validate:"required,hhmm"`
	SessionID  string `json:"session_id" validate:"required,max=100"`
	TTLSeconds int    `json:"ttl_seconds" validate:"gte=0"`
}

// ConvertRequest turns a live hold into a pending booking for the same range.
type ConvertRequest struct {
	HoldID      string `json:"hold_id" validate:"required"`
	SessionID   string `json:"session_id" validate:"required,max=100"`
	UserID      string `json:"user_id" validate:"required,max=100"`
	PaymentMode string `json:"payment_mode" validate:"required,oneof=full guarantee"`
	PromoCode   string `json:"promo_code,omitempty" validate:"omitempty,max=40"`
}

type HoldValidator interface {
	ValidatePlace(req *PlaceRequest) error
	ValidateConvert(req *ConvertRequest) error
}

// Pricer resolves the price snapshot stored on a converted booking.
type Pricer interface {
	PriceSnapshot(ctx context.Context, facilityID, date, start, end, promoCode string) (net int64, public int64, err error)
}

type HoldService interface {
	Place(ctx context.Context, req *PlaceRequest) (*model.Hold, error)
	GetByID(ctx context.Context, id string) (*model.Hold, error)
	Release(ctx context.Context, id string) error
	Convert(ctx context.Context, req *ConvertRequest) (*model.Booking, error)
	ReleaseExpired(ctx context.Context) (int64, error)
}

type holdService struct {
	repo      repository.HoldRepository
	snapshots availservice.SnapshotRepository
	engine    *availservice.Engine
	pricer    Pricer
	validator HoldValidator
	events    *kafka.Events
	clk       clock.Clock
	cfg       *config.Config
}

func NewHoldService(
	repo repository.HoldRepository,
	snapshots availservice.SnapshotRepository,
	engine *availservice.Engine,
	pricer Pricer,
	validator HoldValidator,
	events *kafka.Events,
	clk clock.Clock,
	cfg *config.Config,
) HoldService {
	return &holdService{
		repo:      repo,
		snapshots: snapshots,
		engine:    engine,
		pricer:    pricer,
		validator: validator,
		events:    events,
		clk:       clk,
		cfg:       cfg,
	}
}

func (s *holdService) ttl(requested int) time.Duration {
	ttl := time.Duration(requested) * time.Second
	if ttl <= 0 {
		ttl = s.cfg.HoldTTL
	}
	if ttl > s.cfg.MaxHoldTTL {
		ttl = s.cfg.MaxHoldTTL
	}
	return ttl
}

func (s *holdService) loadSnapshot(ctx context.Context, facilityID, date string) (*availservice.Snapshot, error) {
	day, err := model.ParseDate(date)
	if err != nil {
		return nil, apperrors.InvalidInput("date must be formatted as YYYY-MM-DD")
	}

	snap, err := s.snapshots.LoadSnapshot(ctx, facilityID, day)
	if err != nil {
		if errors.Is(err, availerrors.ErrFacilityNotFound) {
			return nil, apperrors.NotFoundWithID("Facility", facilityID)
		}
		if errors.Is(err, availerrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid facility ID format")
		}
		return nil, apperrors.Internal("Failed to load availability data", err)
	}
	return snap, nil
}

// coveredStarts lists the start times of every canonical increment inside the
// range, for stamping the lease onto slot records.
func (s *holdService) coveredStarts(snap *availservice.Snapshot, startMin, endMin int) []string {
	granularity := availservice.Granularity(snap.Facility, s.cfg.SlotGranularityMin)
	starts := make([]string, 0, (endMin-startMin)/granularity)
	for m := startMin; m < endMin; m += granularity {
		starts = append(starts, model.FormatMinuteOfDay(m))
	}
	return starts
}

// Place grants or extends the lease. A live hold by another session rejects
// with a conflict; the same session re-placing its own range gets a fresh
// holdUntil instead of a second document.
func (s *holdService) Place(ctx context.Context, req *PlaceRequest) (*model.Hold, error) {
	if err := s.validator.ValidatePlace(req); err != nil {
		return nil, apperrors.Validation("Invalid hold request", map[string]any{"error": err.Error()})
	}

	startMin, err := model.ParseMinuteOfDay(req.Start)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	endMin, err := model.ParseEndMinute(req.End)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	ttl := s.ttl(req.TTLSeconds)

	var placed *model.Hold
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		snap, err := s.loadSnapshot(sessCtx, req.FacilityID, req.Date)
		if err != nil {
			return err
		}

		// The engine sees the caller's own live holds as available, so an
		// extension passes and a foreign hold conflicts.
		if err := s.engine.IsRangeAvailable(snap, startMin, endMin, req.SessionID); err != nil {
			return err
		}

		now := s.clk.Now()
		holdUntil := now.Add(ttl)

		for _, h := range snap.Holds {
			if h.SessionID == req.SessionID && h.IsActive(now) && h.Start == req.Start && h.End == req.End {
				if err := s.repo.ExtendLease(sessCtx, h.ID, holdUntil); err != nil {
					return apperrors.Internal("Failed to extend hold", err)
				}
				extended := *h
				extended.HoldUntil = holdUntil
				placed = &extended
				return s.stampLease(sessCtx, snap, req, startMin, endMin, holdUntil)
			}
		}

		hold := &model.Hold{
			ID:         uuid.NewString(),
			FacilityID: req.FacilityID,
			Date:       req.Date,
			Start:      req.Start,
			End:        req.End,
			SessionID:  req.SessionID,
			HoldUntil:  holdUntil,
			CreatedAt:  now,
		}
		if err := s.repo.Create(sessCtx, hold); err != nil {
			return apperrors.Internal("Failed to create hold", err)
		}
		placed = hold
		return s.stampLease(sessCtx, snap, req, startMin, endMin, holdUntil)
	})
	if err != nil {
		return nil, err
	}

	s.events.Emit(ctx, kafka.EventHoldPlaced, placed.FacilityID, placed)
	return placed, nil
}

func (s *holdService) stampLease(ctx context.Context, snap *availservice.Snapshot, req *PlaceRequest, startMin, endMin int, holdUntil time.Time) error {
	starts := s.coveredStarts(snap, startMin, endMin)
	if err := s.repo.SetSlotLease(ctx, req.FacilityID, req.Date, starts, req.SessionID, holdUntil); err != nil {
		return apperrors.Internal("Failed to stamp slot lease", err)
	}
	return nil
}

func (s *holdService) GetByID(ctx context.Context, id string) (*model.Hold, error) {
	hold, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, holdserrors.ErrHoldNotFound) {
			return nil, apperrors.NotFoundWithID("Hold", id)
		}
		return nil, apperrors.Internal("Failed to find hold", err)
	}
	return hold, nil
}

// Release discards the hold unconditionally. A hold that is already gone is
// a success, not an error, so retries and the reaper can call this blindly.
func (s *holdService) Release(ctx context.Context, id string) error {
	hold, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, holdserrors.ErrHoldNotFound) {
			return nil
		}
		return apperrors.Internal("Failed to find hold", err)
	}

	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		if err := s.repo.Delete(sessCtx, hold.ID); err != nil {
			return apperrors.Internal("Failed to delete hold", err)
		}
		if err := s.repo.ClearSlotLease(sessCtx, hold.FacilityID, hold.Date, hold.SessionID); err != nil {
			return apperrors.Internal("Failed to clear slot lease", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.events.Emit(ctx, kafka.EventHoldReleased, hold.FacilityID, hold)
	return nil
}

// Convert atomically replaces the hold with a pending booking over the same
// range. The availability re-check and both writes share one transaction, so
// two concurrent conversions cannot both win.
func (s *holdService) Convert(ctx context.Context, req *ConvertRequest) (*model.Booking, error) {
	if err := s.validator.ValidateConvert(req); err != nil {
		return nil, apperrors.Validation("Invalid conversion request", map[string]any{"error": err.Error()})
	}

	hold, err := s.GetByID(ctx, req.HoldID)
	if err != nil {
		return nil, err
	}
	if hold.SessionID != req.SessionID {
		return nil, apperrors.Conflict("Hold belongs to a different session")
	}
	if !hold.IsActive(s.clk.Now()) {
		return nil, apperrors.HoldExpired("Hold expired, restart the funding flow")
	}

	net, public, err := s.pricer.PriceSnapshot(ctx, hold.FacilityID, hold.Date, hold.Start, hold.End, req.PromoCode)
	if err != nil {
		return nil, err
	}

	startMin, err := model.ParseMinuteOfDay(hold.Start)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}
	endMin, err := model.ParseEndMinute(hold.End)
	if err != nil {
		return nil, apperrors.InvalidInput(err.Error())
	}

	var booking *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		current, err := s.repo.FindByID(sessCtx, hold.ID)
		if err != nil {
			if errors.Is(err, holdserrors.ErrHoldNotFound) {
				return apperrors.HoldExpired("Hold expired before conversion")
			}
			return apperrors.Internal("Failed to re-read hold", err)
		}

		now := s.clk.Now()
		if !current.IsActive(now) {
			return apperrors.HoldExpired("Hold expired before conversion")
		}

		snap, err := s.loadSnapshot(sessCtx, current.FacilityID, current.Date)
		if err != nil {
			return err
		}
		if !snap.Facility.SupportsPaymentMode(req.PaymentMode) {
			return apperrors.InvalidInput("Facility does not offer this payment mode")
		}
		if err := s.engine.IsRangeAvailable(snap, startMin, endMin, current.SessionID); err != nil {
			return err
		}

		booking = &model.Booking{
			ID:          primitive.NewObjectID().Hex(),
			FacilityID:  current.FacilityID,
			UserID:      req.UserID,
			Date:        current.Date,
			Start:       current.Start,
			End:         current.End,
			Status:      model.BookingPending,
			PriceNet:    net,
			PricePublic: public,
			PromoCode:   req.PromoCode,
			PaymentMode: req.PaymentMode,
			CreatedAt:   now,
		}
		if err := s.repo.InsertBooking(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to insert booking", err)
		}
		if err := s.repo.Delete(sessCtx, current.ID); err != nil {
			return apperrors.Internal("Failed to delete hold", err)
		}
		if err := s.repo.ClearSlotLease(sessCtx, current.FacilityID, current.Date, current.SessionID); err != nil {
			return apperrors.Internal("Failed to clear slot lease", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.Emit(ctx, kafka.EventHoldConverted, booking.FacilityID, map[string]any{
		"hold_id":    hold.ID,
		"booking_id": booking.ID,
	})
	s.events.Emit(ctx, kafka.EventBookingCreated, booking.FacilityID, booking)
	return booking, nil
}

// ReleaseExpired clears stale hold documents and slot leases. Correctness
// never depends on this running; it only keeps calendar reads and storage
// tidy, so an external scheduler calls it on whatever cadence it likes.
func (s *holdService) ReleaseExpired(ctx context.Context) (int64, error) {
	now := s.clk.Now()

	removed, err := s.repo.DeleteExpired(ctx, now)
	if err != nil {
		return 0, apperrors.Internal("Failed to delete expired holds", err)
	}
	if _, err := s.repo.ClearExpiredSlotLeases(ctx, now); err != nil {
		return removed, apperrors.Internal("Failed to clear expired slot leases", err)
	}
	return removed, nil
}
