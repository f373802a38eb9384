package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyd/internal/model"
)

type QuotaRepo interface {
	Create(ctx context.Context, rule *model.QuotaRule) error
	ListBySurvey(ctx context.Context, surveyID string) ([]model.QuotaRule, error)
}

type quotaRepo struct {
	collection *mongo.Collection
}

func NewQuotaRepo(db *mongo.Database) QuotaRepo {
	return &quotaRepo{
		collection: db.Collection("quota_rules"),
	}
}

func (r *quotaRepo) Create(ctx context.Context, rule *model.QuotaRule) error {
	_, err := r.collection.InsertOne(ctx, rule)
	return err
}

func (r *quotaRepo) ListBySurvey(ctx context.Context, surveyID string) ([]model.QuotaRule, error) {
	cursor, err := r.collection.Find(ctx,
		bson.M{"surveyId": surveyID, "active": true},
		options.Find().SetSort(bson.M{"orderIndex": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var rules []model.QuotaRule
	if err = cursor.All(ctx, &rules); err != nil {
		return nil, err
	}
	return rules, nil
}
