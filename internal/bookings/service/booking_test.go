package service

import (
	"context"
	"io"
	"testing"
	"time"

	availservice "pitchside/internal/availability/service"
	bookingserrors "pitchside/internal/bookings/errors"
	"pitchside/pkg/clock"
	"pitchside/pkg/config"
	mongotx "pitchside/pkg/db/mongo"
	apperrors "pitchside/pkg/errors"
	"pitchside/pkg/kafka"
	"pitchside/pkg/logger"
	"pitchside/pkg/model"

	"go.mongodb.org/mongo-driver/mongo"
)

var bookingTestNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

const (
	testFacilityID = "64a000000000000000000001"
	testBookingID  = "64a0000000000000000000b1"
	testDate       = "2026-03-02"
)

type mockBookingRepository struct {
	createFunc       func(ctx context.Context, booking *model.Booking) error
	findByIDFunc     func(ctx context.Context, id string) (*model.Booking, error)
	updateStatusFunc func(ctx context.Context, id string, status model.BookingStatus, updatedAt time.Time) error
}

func (m *mockBookingRepository) Create(ctx context.Context, booking *model.Booking) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, booking)
	}
	return nil
}

func (m *mockBookingRepository) FindByID(ctx context.Context, id string) (*model.Booking, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, id)
	}
	return nil, bookingserrors.ErrBookingNotFound
}

func (m *mockBookingRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) Count(ctx context.Context) (int64, error) {
	return 0, nil
}

func (m *mockBookingRepository) FindByFacilityDate(ctx context.Context, facilityID, date string) ([]*model.Booking, error) {
	return nil, nil
}

func (m *mockBookingRepository) UpdateStatus(ctx context.Context, id string, status model.BookingStatus, updatedAt time.Time) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, status, updatedAt)
	}
	return nil
}

func (m *mockBookingRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	var sessCtx mongo.SessionContext
	return fn(sessCtx)
}

type mockLockRepository struct {
	createFunc func(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error)
	deleted    []string
}

func (m *mockLockRepository) Create(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error) {
	if m.createFunc != nil {
		return m.createFunc(ctx, lock)
	}
	return lock, nil
}

func (m *mockLockRepository) Delete(ctx context.Context, lockID string) error {
	m.deleted = append(m.deleted, lockID)
	return nil
}

type mockSnapshotRepository struct {
	loadFunc func(ctx context.Context, facilityID string, date time.Time) (*availservice.Snapshot, error)
}

func (m *mockSnapshotRepository) LoadSnapshot(ctx context.Context, facilityID string, date time.Time) (*availservice.Snapshot, error) {
	return m.loadFunc(ctx, facilityID, date)
}

type mockPricer struct {
	net    int64
	public int64
}

func (m *mockPricer) PriceSnapshot(ctx context.Context, facilityID, date, start, end, promoCode string) (int64, int64, error) {
	return m.net, m.public, nil
}

type passValidator struct{}

func (passValidator) ValidateReserve(req *ReserveRequest) error { return nil }

func bookingTestFacility() *model.Facility {
	open := model.DayHours{Open: "08:00", Close: "22:00"}
	return &model.Facility{
		ID:                 testFacilityID,
		SlotGranularityMin: 30,
		Hours: model.WeekHours{
			Monday:    open,
			Tuesday:   open,
			Wednesday: open,
			Thursday:  open,
			Friday:    open,
			Saturday:  open,
			Sunday:    model.DayHours{Closed: true},
		},
		PriceNet1h:         10000,
		FullPaymentEnabled: true,
	}
}

func bookingTestSnapshot(t *testing.T) *availservice.Snapshot {
	t.Helper()
	f := bookingTestFacility()

	day, err := model.ParseDate(testDate)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	bounds, err := availservice.BoundariesFor(f, day, 30)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	slots := make([]*model.Slot, 0, len(bounds))
	for _, inc := range bounds {
		slots = append(slots, &model.Slot{
			FacilityID:  f.ID,
			Date:        testDate,
			Start:       model.FormatMinuteOfDay(inc.StartMin),
			End:         model.FormatMinuteOfDay(inc.EndMin),
			IsAvailable: true,
		})
	}

	return &availservice.Snapshot{Facility: f, Date: day, Slots: slots}
}

func newTestBookingService(repo *mockBookingRepository, locks *mockLockRepository, snap *availservice.Snapshot) BookingService {
	log := logger.New(logger.Config{Level: logger.ERROR, Output: io.Discard})
	clk := clock.Fixed{T: bookingTestNow}
	cfg := &config.Config{
		Log:                log,
		SlotGranularityMin: 30,
	}
	snapshots := &mockSnapshotRepository{
		loadFunc: func(ctx context.Context, facilityID string, date time.Time) (*availservice.Snapshot, error) {
			return snap, nil
		},
	}
	engine := availservice.NewEngine(clk, 30, log)
	events := kafka.NewEvents(nil, log)
	pricer := &mockPricer{net: 10000, public: 10300}

	return NewBookingService(repo, locks, snapshots, engine, pricer, passValidator{}, events, clk, cfg)
}

func reserveRequest() *ReserveRequest {
	return &ReserveRequest{
		FacilityID:  testFacilityID,
		Date:        testDate,
		Start:       "10:00",
		End:         "11:00",
		UserID:      "user-1",
		PaymentMode: model.PaymentModeFull,
	}
}

func TestReserve_CreatesPendingBooking(t *testing.T) {
	var created *model.Booking
	repo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			created = booking
			return nil
		},
	}
	locks := &mockLockRepository{}
	svc := newTestBookingService(repo, locks, bookingTestSnapshot(t))

	booking, err := svc.Reserve(context.Background(), reserveRequest())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created == nil {
		t.Fatal("expected booking persisted")
	}
	if booking.Status != model.BookingPending {
		t.Errorf("expected pending booking, got %s", booking.Status)
	}
	if booking.PriceNet != 10000 || booking.PricePublic != 10300 {
		t.Errorf("expected price snapshot 10000/10300, got %d/%d", booking.PriceNet, booking.PricePublic)
	}
	if len(locks.deleted) != 1 {
		t.Errorf("expected the advisory lock released, got %v", locks.deleted)
	}
}

func TestReserve_ConflictsWithActiveBooking(t *testing.T) {
	snap := bookingTestSnapshot(t)
	snap.Bookings = []*model.Booking{{
		FacilityID: testFacilityID,
		Date:       testDate,
		Start:      "10:30",
		End:        "12:00",
		Status:     model.BookingConfirmed,
	}}

	repo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			t.Fatal("insert must not run on a conflicting range")
			return nil
		},
	}
	svc := newTestBookingService(repo, &mockLockRepository{}, snap)

	_, err := svc.Reserve(context.Background(), reserveRequest())
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestReserve_BlockedByLiveHold(t *testing.T) {
	snap := bookingTestSnapshot(t)
	snap.Holds = []*model.Hold{{
		ID:         "hold-1",
		FacilityID: testFacilityID,
		Date:       testDate,
		Start:      "10:00",
		End:        "11:00",
		SessionID:  "someone-else",
		HoldUntil:  bookingTestNow.Add(10 * time.Minute),
	}}

	svc := newTestBookingService(&mockBookingRepository{}, &mockLockRepository{}, snap)

	_, err := svc.Reserve(context.Background(), reserveRequest())
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected CONFLICT behind a live hold, got %v", err)
	}
}

func TestReserve_LockContention(t *testing.T) {
	locks := &mockLockRepository{
		createFunc: func(ctx context.Context, lock *model.ReservationLock) (*model.ReservationLock, error) {
			return nil, mongo.WriteException{WriteErrors: mongo.WriteErrors{{Code: 11000}}}
		},
	}
	repo := &mockBookingRepository{
		createFunc: func(ctx context.Context, booking *model.Booking) error {
			t.Fatal("insert must not run without the lock")
			return nil
		},
	}
	svc := newTestBookingService(repo, locks, bookingTestSnapshot(t))

	_, err := svc.Reserve(context.Background(), reserveRequest())
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected CONFLICT on lock contention, got %v", err)
	}
}

func TestReserve_UnsupportedPaymentMode(t *testing.T) {
	svc := newTestBookingService(&mockBookingRepository{}, &mockLockRepository{}, bookingTestSnapshot(t))

	req := reserveRequest()
	req.PaymentMode = model.PaymentModeGuarantee

	_, err := svc.Reserve(context.Background(), req)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeInvalidInput {
		t.Fatalf("expected INVALID_INPUT, got %v", err)
	}
}

func TestUpdateStatus_FollowsTransitionGraph(t *testing.T) {
	var savedStatus model.BookingStatus
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: testBookingID, FacilityID: testFacilityID, Status: model.BookingPending}, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status model.BookingStatus, updatedAt time.Time) error {
			savedStatus = status
			return nil
		},
	}
	svc := newTestBookingService(repo, &mockLockRepository{}, nil)

	booking, err := svc.UpdateStatus(context.Background(), testBookingID, model.BookingConfirmed)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if savedStatus != model.BookingConfirmed || booking.Status != model.BookingConfirmed {
		t.Errorf("expected confirmed, got %s", booking.Status)
	}
	if booking.UpdatedAt.IsZero() {
		t.Error("expected updated_at stamped")
	}
}

func TestUpdateStatus_RejectsLeavingTerminalStatus(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: testBookingID, Status: model.BookingCompleted}, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status model.BookingStatus, updatedAt time.Time) error {
			t.Fatal("terminal bookings must not be rewritten")
			return nil
		},
	}
	svc := newTestBookingService(repo, &mockLockRepository{}, nil)

	_, err := svc.UpdateStatus(context.Background(), testBookingID, model.BookingConfirmed)
	appErr := apperrors.AsAppError(err)
	if appErr == nil || appErr.Code != apperrors.CodeConflict {
		t.Fatalf("expected CONFLICT, got %v", err)
	}
}

func TestCancel_IsIdempotent(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: testBookingID, Status: model.BookingCancelled}, nil
		},
		updateStatusFunc: func(ctx context.Context, id string, status model.BookingStatus, updatedAt time.Time) error {
			t.Fatal("cancelling twice must not write")
			return nil
		},
	}
	svc := newTestBookingService(repo, &mockLockRepository{}, nil)

	booking, err := svc.Cancel(context.Background(), testBookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.BookingCancelled {
		t.Errorf("expected cancelled, got %s", booking.Status)
	}
}

func TestCancel_FromConfirmed(t *testing.T) {
	repo := &mockBookingRepository{
		findByIDFunc: func(ctx context.Context, id string) (*model.Booking, error) {
			return &model.Booking{ID: testBookingID, FacilityID: testFacilityID, Status: model.BookingConfirmed}, nil
		},
	}
	svc := newTestBookingService(repo, &mockLockRepository{}, nil)

	booking, err := svc.Cancel(context.Background(), testBookingID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if booking.Status != model.BookingCancelled {
		t.Errorf("expected cancelled, got %s", booking.Status)
	}
}
