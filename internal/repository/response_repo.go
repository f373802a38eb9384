package repository

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"surveyd/internal/model"
)

// ErrCompleted rejects writes against an already-completed response.
var ErrCompleted = errors.New("response already complete")

type ResponseRepo interface {
	Create(ctx context.Context, resp *model.Response) error
	GetByID(ctx context.Context, id string) (*model.Response, error)

	// SaveAnswer upserts one answer cell; last value wins per (response, key).
	SaveAnswer(ctx context.Context, responseID, key, value string) error

	// Autosave overwrites the stored position and all answer cells.
	Autosave(ctx context.Context, responseID string, answers model.AnswerSnapshot, groupIndex int) error

	// GetAnswers reassembles the snapshot from the stored cells.
	GetAnswers(ctx context.Context, responseID string) (model.AnswerSnapshot, error)

	// MarkComplete flips the response to complete. It is idempotent; the
	// return value reports whether this call performed the transition.
	MarkComplete(ctx context.Context, responseID string) (bool, error)

	MarkScreenedOut(ctx context.Context, responseID string) error
}

type responseRepo struct {
	responses *mongo.Collection
	answers   *mongo.Collection
}

func NewResponseRepo(db *mongo.Database) ResponseRepo {
	return &responseRepo{
		responses: db.Collection("responses"),
		answers:   db.Collection("response_data"),
	}
}

func (r *responseRepo) Create(ctx context.Context, resp *model.Response) error {
	if resp.StartedAt.IsZero() {
		resp.StartedAt = time.Now()
	}
	if resp.Status == "" {
		resp.Status = model.ResponseIncomplete
	}
	_, err := r.responses.InsertOne(ctx, resp)
	return err
}

func (r *responseRepo) GetByID(ctx context.Context, id string) (*model.Response, error) {
	var resp model.Response
	err := r.responses.FindOne(ctx, bson.M{"_id": id}).Decode(&resp)
	if err != nil {
		return nil, err
	}
	return &resp, nil
}

func (r *responseRepo) SaveAnswer(ctx context.Context, responseID, key, value string) error {
	resp, err := r.GetByID(ctx, responseID)
	if err != nil {
		return err
	}
	if resp.Status == model.ResponseComplete {
		return ErrCompleted
	}

	_, err = r.answers.UpdateOne(ctx,
		bson.M{"responseId": responseID, "key": key},
		bson.M{"$set": bson.M{"value": value, "updatedAt": time.Now()}},
		options.Update().SetUpsert(true),
	)
	return err
}

func (r *responseRepo) Autosave(ctx context.Context, responseID string, answers model.AnswerSnapshot, groupIndex int) error {
	resp, err := r.GetByID(ctx, responseID)
	if err != nil {
		return err
	}
	if resp.Status == model.ResponseComplete {
		return ErrCompleted
	}

	now := time.Now()
	_, err = r.responses.UpdateOne(ctx,
		bson.M{"_id": responseID},
		bson.M{"$set": bson.M{"currentGroupIndex": groupIndex, "lastAutosaveAt": now}},
	)
	if err != nil {
		return err
	}

	if len(answers) == 0 {
		return nil
	}

	writes := make([]mongo.WriteModel, 0, len(answers))
	for key, v := range answers {
		writes = append(writes, mongo.NewUpdateOneModel().
			SetFilter(bson.M{"responseId": responseID, "key": key}).
			SetUpdate(bson.M{"$set": bson.M{"value": v.String(), "updatedAt": now}}).
			SetUpsert(true))
	}
	_, err = r.answers.BulkWrite(ctx, writes)
	return err
}

func (r *responseRepo) GetAnswers(ctx context.Context, responseID string) (model.AnswerSnapshot, error) {
	cursor, err := r.answers.Find(ctx, bson.M{"responseId": responseID})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var cells []model.AnswerCell
	if err = cursor.All(ctx, &cells); err != nil {
		return nil, err
	}

	snapshot := make(model.AnswerSnapshot, len(cells))
	for _, c := range cells {
		snapshot[c.Key] = model.TextValue(c.Value)
	}
	return snapshot, nil
}

func (r *responseRepo) MarkComplete(ctx context.Context, responseID string) (bool, error) {
	now := time.Now()
	result, err := r.responses.UpdateOne(ctx,
		bson.M{"_id": responseID, "status": bson.M{"$ne": model.ResponseComplete}},
		bson.M{"$set": bson.M{"status": model.ResponseComplete, "completedAt": now}},
	)
	if err != nil {
		return false, err
	}
	if result.MatchedCount == 0 {
		// Already complete (or missing); calling again is not an error.
		if _, getErr := r.GetByID(ctx, responseID); getErr != nil {
			return false, getErr
		}
		return false, nil
	}
	return true, nil
}

func (r *responseRepo) MarkScreenedOut(ctx context.Context, responseID string) error {
	_, err := r.responses.UpdateOne(ctx,
		bson.M{"_id": responseID, "status": model.ResponseIncomplete},
		bson.M{"$set": bson.M{"status": model.ResponseScreenedOut}},
	)
	return err
}
