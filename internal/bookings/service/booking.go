package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	availerrors "pitchside/internal/availability/errors"
	availservice "pitchside/internal/availability/service"
	bookingserrors "pitchside/internal/bookings/errors"
	"pitchside/internal/bookings/repository"
	"pitchside/pkg/clock"
	"pitchside/pkg/config"
	apperrors "pitchside/pkg/errors"
	"pitchside/pkg/kafka"
	"pitchside/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

// ReserveRequest books a range directly, without a prior hold.
type ReserveRequest struct {
	FacilityID  string `json:"facility_id" validate:"required,mongodb"`
	Date        string `json:"date" validate:"required,datetime=2006-01-02"`
	Start       string `json:"start" validate:"required,hhmm"`
	End         string `json:"end" validate:"required,hhmm"`
	UserID      string `json:"user_id" validate:"required,max=100"`
	PaymentMode string `json:"payment_mode" validate:"required,oneof=full guarantee"`
	PromoCode   string `json:"promo_code,omitempty" validate:"omitempty,max=40"`
}

type ReserveValidator interface {
	ValidateReserve(req *ReserveRequest) error
}

// Pricer resolves the price snapshot stored on a new booking.
type Pricer interface {
	PriceSnapshot(ctx context.Context, facilityID, date, start, end, promoCode string) (net int64, public int64, err error)
}

type BookingService interface {
	Reserve(ctx context.Context, req *ReserveRequest) (*model.Booking, error)
	GetByID(ctx context.Context, id string) (*model.Booking, error)
	GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error)
	GetForFacilityDate(ctx context.Context, facilityID, date string) ([]*model.Booking, error)
	UpdateStatus(ctx context.Context, id string, next model.BookingStatus) (*model.Booking, error)
	Cancel(ctx context.Context, id string) (*model.Booking, error)
}

type bookingService struct {
	repo      repository.BookingRepository
	lockRepo  repository.ReservationLockRepository
	snapshots availservice.SnapshotRepository
	engine    *availservice.Engine
	pricer    Pricer
	validator ReserveValidator
	events    *kafka.Events
	clk       clock.Clock
	cfg       *config.Config
}

func NewBookingService(
	repo repository.BookingRepository,
	lockRepo repository.ReservationLockRepository,
	snapshots availservice.SnapshotRepository,
	engine *availservice.Engine,
	pricer Pricer,
	validator ReserveValidator,
	events *kafka.Events,
	clk clock.Clock,
	cfg *config.Config,
) BookingService {
	return &bookingService{
		repo:      repo,
		lockRepo:  lockRepo,
		snapshots: snapshots,
		engine:    engine,
		pricer:    pricer,
		validator: validator,
		events:    events,
		clk:       clk,
		cfg:       cfg,
	}
}

// Reserve checks the range strictly and writes a pending booking. The check
// and the insert share one transaction, and an advisory lock over the slot
// coordinates keeps two identical concurrent requests from racing the
// transaction retry loop.
func (s *bookingService) Reserve(ctx context.Context, req *ReserveRequest) (*model.Booking, error) {
	if err := s.validator.ValidateReserve(req); err != nil {
		return nil, apperrors.Validation("Invalid reservation request", map[string]any{"error": err.Error()})
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

	lockID, err := s.acquireSlotLock(ctx, req.FacilityID, req.Date, req.Start)
	if err != nil {
		return nil, err
	}
	defer func() {
		if releaseErr := s.releaseSlotLock(ctx, lockID); releaseErr != nil {
			s.cfg.Log.Warn("Failed to release reservation lock", "lock_id", lockID, "error", releaseErr)
		}
	}()

	net, public, err := s.pricer.PriceSnapshot(ctx, req.FacilityID, req.Date, req.Start, req.End, req.PromoCode)
	if err != nil {
		return nil, err
	}

	var booking *model.Booking
	err = s.repo.ExecuteTransaction(ctx, func(sessCtx mongo.SessionContext) error {
		snap, err := s.loadSnapshot(sessCtx, req.FacilityID, req.Date)
		if err != nil {
			return err
		}
		if !snap.Facility.SupportsPaymentMode(req.PaymentMode) {
			return apperrors.InvalidInput("Facility does not offer this payment mode")
		}

		// No session id here: a live hold by anyone blocks a direct
		// reservation.
		if err := s.engine.IsRangeAvailable(snap, startMin, endMin, ""); err != nil {
			return err
		}

		booking = &model.Booking{
			FacilityID:  req.FacilityID,
			UserID:      req.UserID,
			Date:        req.Date,
			Start:       req.Start,
			End:         req.End,
			Status:      model.BookingPending,
			PriceNet:    net,
			PricePublic: public,
			PromoCode:   req.PromoCode,
			PaymentMode: req.PaymentMode,
			CreatedAt:   s.clk.Now(),
		}
		if err := s.repo.Create(sessCtx, booking); err != nil {
			return apperrors.Internal("Failed to create booking", err)
		}
		return nil
	})
	if err != nil {
		s.cfg.Log.Error("Failed to reserve range", "facility_id", req.FacilityID, "date", req.Date, "error", err)
		return nil, err
	}

	s.cfg.Log.Info("Booking created",
		"id", booking.ID,
		"facility_id", booking.FacilityID,
		"date", booking.Date,
		"start", booking.Start,
		"end", booking.End,
	)
	s.events.Emit(ctx, kafka.EventBookingCreated, booking.FacilityID, booking)
	return booking, nil
}

func (s *bookingService) GetByID(ctx context.Context, id string) (*model.Booking, error) {
	if id == "" {
		return nil, apperrors.InvalidInput("Booking ID cannot be empty")
	}

	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingserrors.ErrBookingNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		if errors.Is(err, bookingserrors.ErrInvalidID) {
			return nil, apperrors.InvalidInput("Invalid booking ID format")
		}
		return nil, apperrors.Internal("Failed to retrieve booking", err)
	}
	return booking, nil
}

func (s *bookingService) GetAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, int64, error) {
	var count int64
	var bookings []*model.Booking
	var errCount, errFind error
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		count, errCount = s.repo.Count(ctx)
		if errCount != nil {
			s.cfg.Log.Error("Failed to count bookings", "error", errCount)
			errCount = apperrors.Internal("Failed to count bookings", errCount)
		}
	}()

	go func() {
		defer wg.Done()
		bookings, errFind = s.repo.FindAll(ctx, limit, offset)
		if errFind != nil {
			s.cfg.Log.Error("Failed to list bookings", "error", errFind)
			errFind = apperrors.Internal("Failed to retrieve bookings", errFind)
		}
	}()

	wg.Wait()
	if errCount != nil {
		return nil, 0, errCount
	}
	if errFind != nil {
		return nil, 0, errFind
	}

	return bookings, count, nil
}

func (s *bookingService) GetForFacilityDate(ctx context.Context, facilityID, date string) ([]*model.Booking, error) {
	if _, err := model.ParseDate(date); err != nil {
		return nil, apperrors.InvalidInput("date must be formatted as YYYY-MM-DD")
	}

	bookings, err := s.repo.FindByFacilityDate(ctx, facilityID, date)
	if err != nil {
		return nil, apperrors.Internal("Failed to list bookings", err)
	}
	return bookings, nil
}

// UpdateStatus moves the booking along the one-directional status graph.
// Any step the graph does not allow conflicts, including every step out of
// a terminal status.
func (s *bookingService) UpdateStatus(ctx context.Context, id string, next model.BookingStatus) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if booking.Status == next {
		return booking, nil
	}
	if !booking.CanTransitionTo(next) {
		return nil, apperrors.Conflict(fmt.Sprintf("Cannot move booking from %s to %s", booking.Status, next))
	}

	now := s.clk.Now()
	if err := s.repo.UpdateStatus(ctx, id, next, now); err != nil {
		if errors.Is(err, bookingserrors.ErrBookingNotFound) {
			return nil, apperrors.NotFoundWithID("Booking", id)
		}
		return nil, apperrors.Internal("Failed to update booking status", err)
	}

	booking.Status = next
	booking.UpdatedAt = now
	s.cfg.Log.Info("Booking status updated", "id", id, "status", next)

	if next == model.BookingCancelled {
		s.events.Emit(ctx, kafka.EventBookingCancelled, booking.FacilityID, booking)
	}
	return booking, nil
}

// Cancel is idempotent: cancelling an already cancelled booking succeeds
// without a second write or event.
func (s *bookingService) Cancel(ctx context.Context, id string) (*model.Booking, error) {
	booking, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.Status == model.BookingCancelled {
		return booking, nil
	}
	return s.UpdateStatus(ctx, id, model.BookingCancelled)
}

func (s *bookingService) loadSnapshot(ctx context.Context, facilityID, date string) (*availservice.Snapshot, error) {
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

// acquireSlotLock creates an advisory lock keyed by the slot coordinates.
// Returns a conflict when another request holds the same coordinates.
func (s *bookingService) acquireSlotLock(ctx context.Context, facilityID, date, start string) (string, error) {
	lockID := fmt.Sprintf("reservation_lock_%s_%s_%s", facilityID, date, start)

	lock := &model.ReservationLock{
		ID:        lockID,
		ExpiresAt: s.clk.Now().Add(10 * time.Second),
	}

	if _, err := s.lockRepo.Create(ctx, lock); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return "", apperrors.Conflict("This range is currently being reserved by another request. Please try again.")
		}
		return "", apperrors.Internal("Failed to acquire reservation lock", err)
	}
	return lockID, nil
}

func (s *bookingService) releaseSlotLock(ctx context.Context, lockID string) error {
	return s.lockRepo.Delete(ctx, lockID)
}
