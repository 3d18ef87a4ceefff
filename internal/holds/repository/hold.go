package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	holdserrors "pitchside/internal/holds/errors"
	"pitchside/pkg/config"
	mongotx "pitchside/pkg/db/mongo"
	"pitchside/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName      = "Holds"
	slotsCollectionName = "Slots"
)

type mongoHoldRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

type HoldRepository interface {
	Create(ctx context.Context, hold *model.Hold) error
	FindByID(ctx context.Context, id string) (*model.Hold, error)
	FindForDate(ctx context.Context, facilityID, date string) ([]*model.Hold, error)
	ExtendLease(ctx context.Context, id string, holdUntil time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteExpired(ctx context.Context, now time.Time) (int64, error)

	SetSlotLease(ctx context.Context, facilityID, date string, starts []string, sessionID string, holdUntil time.Time) error
	ClearSlotLease(ctx context.Context, facilityID, date, sessionID string) error
	ClearExpiredSlotLeases(ctx context.Context, now time.Time) (int64, error)

	InsertBooking(ctx context.Context, booking *model.Booking) error

	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

func NewMongoHoldRepository(cfg *config.Config) HoldRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoHoldRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoHoldRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoHoldRepository) Create(ctx context.Context, hold *model.Hold) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.InsertOne(ctx, hold); err != nil {
		return fmt.Errorf("failed to insert hold: %w", err)
	}
	return nil
}

func (r *mongoHoldRepository) FindByID(ctx context.Context, id string) (*model.Hold, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var hold model.Hold
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&hold)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, holdserrors.ErrHoldNotFound
		}
		return nil, fmt.Errorf("failed to find hold: %w", err)
	}
	return &hold, nil
}

// FindForDate returns every hold document for the facility day, expired ones
// included. Expiry is the caller's call to make against its own clock.
func (r *mongoHoldRepository) FindForDate(ctx context.Context, facilityID, date string) ([]*model.Hold, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	cursor, err := r.collection.Find(ctx, bson.M{"facility_id": facilityID, "date": date})
	if err != nil {
		return nil, fmt.Errorf("failed to find holds: %w", err)
	}
	defer cursor.Close(ctx)

	var holds []*model.Hold
	if err := cursor.All(ctx, &holds); err != nil {
		return nil, fmt.Errorf("failed to decode holds: %w", err)
	}
	return holds, nil
}

func (r *mongoHoldRepository) ExtendLease(ctx context.Context, id string, holdUntil time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"hold_until": holdUntil}},
	)
	if err != nil {
		return fmt.Errorf("failed to extend hold: %w", err)
	}
	if result.MatchedCount == 0 {
		return holdserrors.ErrHoldNotFound
	}
	return nil
}

func (r *mongoHoldRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.collection.DeleteOne(ctx, bson.M{"_id": id}); err != nil {
		return fmt.Errorf("failed to delete hold: %w", err)
	}
	return nil
}

func (r *mongoHoldRepository) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{"hold_until": bson.M{"$lte": now}})
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired holds: %w", err)
	}
	return result.DeletedCount, nil
}

// SetSlotLease stamps the lease onto the covered slot records so calendar
// reads see the hold without joining the holds collection.
func (r *mongoHoldRepository) SetSlotLease(ctx context.Context, facilityID, date string, starts []string, sessionID string, holdUntil time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.db.Collection(slotsCollectionName).UpdateMany(ctx,
		bson.M{"facility_id": facilityID, "date": date, "start": bson.M{"$in": starts}},
		bson.M{"$set": bson.M{"hold_until": holdUntil, "hold_session_id": sessionID}},
	)
	if err != nil {
		return fmt.Errorf("failed to set slot lease: %w", err)
	}
	return nil
}

func (r *mongoHoldRepository) ClearSlotLease(ctx context.Context, facilityID, date, sessionID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	_, err := r.db.Collection(slotsCollectionName).UpdateMany(ctx,
		bson.M{"facility_id": facilityID, "date": date, "hold_session_id": sessionID},
		bson.M{"$unset": bson.M{"hold_until": "", "hold_session_id": ""}},
	)
	if err != nil {
		return fmt.Errorf("failed to clear slot lease: %w", err)
	}
	return nil
}

func (r *mongoHoldRepository) ClearExpiredSlotLeases(ctx context.Context, now time.Time) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.db.Collection(slotsCollectionName).UpdateMany(ctx,
		bson.M{"hold_until": bson.M{"$lte": now}},
		bson.M{"$unset": bson.M{"hold_until": "", "hold_session_id": ""}},
	)
	if err != nil {
		return 0, fmt.Errorf("failed to clear expired slot leases: %w", err)
	}
	return result.ModifiedCount, nil
}

// InsertBooking writes the booking a conversion produces. It lives here so
// the hold delete and the booking insert share one transaction.
func (r *mongoHoldRepository) InsertBooking(ctx context.Context, booking *model.Booking) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if _, err := r.db.Collection("Bookings").InsertOne(ctx, booking); err != nil {
		return fmt.Errorf("failed to insert booking: %w", err)
	}
	return nil
}

func (r *mongoHoldRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}
