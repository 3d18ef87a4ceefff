package repository

import (
	"context"
	"errors"
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
	RuleCollectionName = "RecurringRules"
)

type mongoRuleRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

type RuleRepository interface {
	Create(ctx context.Context, rule *model.RecurringBlockRule) error
	FindByID(ctx context.Context, id string) (*model.RecurringBlockRule, error)
	FindByFacility(ctx context.Context, facilityID string) ([]*model.RecurringBlockRule, error)
	Update(ctx context.Context, id string, rule *model.RecurringBlockRule) error
	Delete(ctx context.Context, id string) error
}

func NewMongoRuleRepository(cfg *config.Config) RuleRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoRuleRepository{
		cfg:        cfg,
		collection: db.Collection(RuleCollectionName),
	}
}

func (r *mongoRuleRepository) Create(ctx context.Context, rule *model.RecurringBlockRule) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	if rule.ID == "" {
		rule.ID = primitive.NewObjectID().Hex()
	}
	if _, err := r.collection.InsertOne(ctx, rule); err != nil {
		return fmt.Errorf("failed to insert recurring rule: %w", err)
	}
	return nil
}

func (r *mongoRuleRepository) FindByID(ctx context.Context, id string) (*model.RecurringBlockRule, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	if _, err := primitive.ObjectIDFromHex(id); err != nil {
		return nil, fmt.Errorf("%w: %s", facilitieserrors.ErrInvalidID, id)
	}

	var rule model.RecurringBlockRule
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&rule)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, facilitieserrors.ErrRuleNotFound
		}
		return nil, fmt.Errorf("failed to find recurring rule: %w", err)
	}
	return &rule, nil
}

func (r *mongoRuleRepository) FindByFacility(ctx context.Context, facilityID string) ([]*model.RecurringBlockRule, error) {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{"facility_id": facilityID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find recurring rules: %w", err)
	}
	defer cursor.Close(ctx)

	var rules []*model.RecurringBlockRule
	if err := cursor.All(ctx, &rules); err != nil {
		return nil, fmt.Errorf("failed to decode recurring rules: %w", err)
	}
	return rules, nil
}

func (r *mongoRuleRepository) Update(ctx context.Context, id string, rule *model.RecurringBlockRule) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": rule})
	if err != nil {
		return fmt.Errorf("failed to update recurring rule: %w", err)
	}
	if result.MatchedCount == 0 {
		return facilitieserrors.ErrRuleNotFound
	}
	return nil
}

func (r *mongoRuleRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete recurring rule: %w", err)
	}
	if result.DeletedCount == 0 {
		return facilitieserrors.ErrRuleNotFound
	}
	return nil
}
