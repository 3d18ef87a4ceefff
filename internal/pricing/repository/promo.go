package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pricingerrors "pitchside/internal/pricing/errors"
	"pitchside/pkg/config"
	"pitchside/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	CollectionName           = "PromoRules"
	facilitiesCollectionName = "Facilities"
)

type mongoPromoRepository struct {
	cfg        *config.Config
	db         *mongo.Database
	collection *mongo.Collection
}

type PromoRepository interface {
	FindFacility(ctx context.Context, id string) (*model.Facility, error)
	FindByCode(ctx context.Context, code string) (*model.PromoRule, error)
	FindAutomatic(ctx context.Context) ([]*model.PromoRule, error)
	IncrementUses(ctx context.Context, id string) error
}

func NewMongoPromoRepository(cfg *config.Config) PromoRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPromoRepository{
		cfg:        cfg,
		db:         db,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoPromoRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoPromoRepository) FindFacility(ctx context.Context, id string) (*model.Facility, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", pricingerrors.ErrInvalidID, id)
	}

	var facility model.Facility
	err := r.db.Collection(facilitiesCollectionName).
		FindOne(ctx, bson.M{"_id": id}).
		Decode(&facility)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pricingerrors.ErrFacilityNotFound
		}
		return nil, fmt.Errorf("failed to find facility: %w", err)
	}
	return &facility, nil
}

func (r *mongoPromoRepository) FindByCode(ctx context.Context, code string) (*model.PromoRule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var promo model.PromoRule
	err := r.collection.FindOne(ctx, bson.M{"code": code, "active": true}).Decode(&promo)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, pricingerrors.ErrPromoNotFound
		}
		return nil, fmt.Errorf("failed to find promo rule: %w", err)
	}
	return &promo, nil
}

// FindAutomatic returns every active code-less rule. Applicability filtering
// happens in the service against the concrete request.
func (r *mongoPromoRepository) FindAutomatic(ctx context.Context) ([]*model.PromoRule, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"active": true,
		"$or": []bson.M{
			{"code": ""},
			{"code": bson.M{"$exists": false}},
		},
	}
	cursor, err := r.collection.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to find automatic promo rules: %w", err)
	}
	defer cursor.Close(ctx)

	var promos []*model.PromoRule
	if err := cursor.All(ctx, &promos); err != nil {
		return nil, fmt.Errorf("failed to decode promo rules: %w", err)
	}
	return promos, nil
}

func (r *mongoPromoRepository) IncrementUses(ctx context.Context, id string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"uses": 1}},
	)
	if err != nil {
		return fmt.Errorf("failed to increment promo uses: %w", err)
	}
	if result.MatchedCount == 0 {
		return pricingerrors.ErrPromoNotFound
	}
	return nil
}
