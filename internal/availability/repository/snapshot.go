package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	availerrors "pitchside/internal/availability/errors"
	"pitchside/internal/availability/service"
	"pitchside/pkg/config"
	"pitchside/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	facilitiesCollection = "Facilities"
	slotsCollection      = "Slots"
	bookingsCollection   = "Bookings"
	rulesCollection      = "RecurringRules"
	holdsCollection      = "Holds"
)

// mongoSnapshotRepository assembles the engine's input from the collections
// owned by the other features. Read-only by design.
type mongoSnapshotRepository struct {
	cfg *config.Config
	db  *mongo.Database
}

func NewMongoSnapshotRepository(cfg *config.Config) service.SnapshotRepository {
	return &mongoSnapshotRepository{
		cfg: cfg,
		db:  cfg.Client.Mongo.Database(cfg.MongoDatabaseName),
	}
}

func (r *mongoSnapshotRepository) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, r.cfg.ReadTimeout)
}

func (r *mongoSnapshotRepository) LoadSnapshot(ctx context.Context, facilityID string, date time.Time) (*service.Snapshot, error) {
	ctx, cancel := r.withTimeout(ctx)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(facilityID); err != nil {
		return nil, fmt.Errorf("%w: %s", availerrors.ErrInvalidID, facilityID)
	}

	var facility model.Facility
	err := r.db.Collection(facilitiesCollection).
		FindOne(ctx, bson.M{"_id": facilityID}).
		Decode(&facility)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, availerrors.ErrFacilityNotFound
		}
		return nil, fmt.Errorf("failed to find facility: %w", err)
	}

	day := date.Format(model.DateLayout)
	dayFilter := bson.M{"facility_id": facilityID, "date": day}

	slots, err := findAll[model.Slot](ctx, r.db.Collection(slotsCollection), dayFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to load slots: %w", err)
	}

	bookingFilter := bson.M{
		"facility_id": facilityID,
		"date":        day,
		"status":      bson.M{"$in": model.ActiveBookingStatuses},
	}
	bookings, err := findAll[model.Booking](ctx, r.db.Collection(bookingsCollection), bookingFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to load bookings: %w", err)
	}

	rules, err := findAll[model.RecurringBlockRule](ctx, r.db.Collection(rulesCollection), bson.M{"facility_id": facilityID})
	if err != nil {
		return nil, fmt.Errorf("failed to load recurring rules: %w", err)
	}

	holds, err := findAll[model.Hold](ctx, r.db.Collection(holdsCollection), dayFilter)
	if err != nil {
		return nil, fmt.Errorf("failed to load holds: %w", err)
	}

	return &service.Snapshot{
		Facility: &facility,
		Date:     date,
		Slots:    slots,
		Bookings: bookings,
		Rules:    rules,
		Holds:    holds,
	}, nil
}

func findAll[T any](ctx context.Context, coll *mongo.Collection, filter bson.M) ([]*T, error) {
	cursor, err := coll.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*T
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
