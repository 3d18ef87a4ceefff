package repository

import (
	"context"
	"fmt"

	facilitieserrors "pitchside/internal/facilities/errors"
	"pitchside/pkg/config"
	"pitchside/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	SlotCollectionName = "Slots"
)

type mongoSlotRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type SlotRepository interface {
	InsertMany(ctx context.Context, slots []*model.Slot) (int64, error)
	FindByFacilityDate(ctx context.Context, facilityID, date string) ([]*model.Slot, error)
	SetAvailability(ctx context.Context, facilityID, date, start string, isAvailable bool, reason string) error
	DeleteForPeriod(ctx context.Context, facilityID, fromDate, toDate string) (int64, error)
	CountForPeriod(ctx context.Context, facilityID, fromDate, toDate string) (int64, error)
}

func NewMongoSlotRepository(cfg *config.Config) SlotRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoSlotRepository{
		cfg:        cfg,
		collection: db.Collection(SlotCollectionName),
	}
}

func (r *mongoSlotRepository) InsertMany(ctx context.Context, slots []*model.Slot) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	docs := make([]interface{}, 0, len(slots))
	for _, slot := range slots {
		if slot.ID == "" {
			slot.ID = primitive.NewObjectID().Hex()
		}
		docs = append(docs, slot)
	}

	result, err := r.collection.InsertMany(ctx, docs, options.InsertMany().SetOrdered(false))
	if err != nil {
		return 0, fmt.Errorf("failed to insert slots: %w", err)
	}
	return int64(len(result.InsertedIDs)), nil
}

func (r *mongoSlotRepository) FindByFacilityDate(ctx context.Context, facilityID, date string) ([]*model.Slot, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "start", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"facility_id": facilityID, "date": date}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find slots: %w", err)
	}
	defer cursor.Close(ctx)

	var slots []*model.Slot
	if err := cursor.All(ctx, &slots); err != nil {
		return nil, fmt.Errorf("failed to decode slots: %w", err)
	}
	return slots, nil
}

func (r *mongoSlotRepository) SetAvailability(ctx context.Context, facilityID, date, start string, isAvailable bool, reason string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	update := bson.M{"$set": bson.M{"is_available": isAvailable}}
	if isAvailable {
		update["$unset"] = bson.M{"unavailability_reason": ""}
	} else {
		update["$set"].(bson.M)["unavailability_reason"] = reason
	}

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"facility_id": facilityID, "date": date, "start": start},
		update,
	)
	if err != nil {
		return fmt.Errorf("failed to update slot: %w", err)
	}
	if result.MatchedCount == 0 {
		return facilitieserrors.ErrSlotNotFound
	}
	return nil
}

// DeleteForPeriod removes every slot in the inclusive date range. Only
// explicit reconfiguration goes through here.
func (r *mongoSlotRepository) DeleteForPeriod(ctx context.Context, facilityID, fromDate, toDate string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteMany(ctx, bson.M{
		"facility_id": facilityID,
		"date":        bson.M{"$gte": fromDate, "$lte": toDate},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to delete slots: %w", err)
	}
	return result.DeletedCount, nil
}

func (r *mongoSlotRepository) CountForPeriod(ctx context.Context, facilityID, fromDate, toDate string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{
		"facility_id": facilityID,
		"date":        bson.M{"$gte": fromDate, "$lte": toDate},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count slots: %w", err)
	}
	return count, nil
}
