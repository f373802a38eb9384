package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"surveyd/internal/model"
)

// ResumeCache holds the latest autosaved state per response so a reload
// can restore without rebuilding the snapshot from Mongo. Entries expire;
// a miss falls back to the answer cells.
type ResumeCache interface {
	Set(ctx context.Context, state *model.ResumeState) error
	Get(ctx context.Context, responseID string) (*model.ResumeState, error)
	Delete(ctx context.Context, responseID string) error
}

type resumeCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewResumeCache(client *redis.Client) ResumeCache {
	return &resumeCache{
		client: client,
		ttl:    24 * time.Hour,
	}
}

func resumeKey(responseID string) string {
	return "resume:" + responseID
}

func (c *resumeCache) Set(ctx context.Context, state *model.ResumeState) error {
	state.SavedAt = time.Now()
	data, err := json.Marshal(state)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, resumeKey(state.ResponseID), data, c.ttl).Err()
}

func (c *resumeCache) Get(ctx context.Context, responseID string) (*model.ResumeState, error) {
	data, err := c.client.Get(ctx, resumeKey(responseID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var state model.ResumeState
	if err := json.Unmarshal([]byte(data), &state); err != nil {
		return nil, err
	}
	return &state, nil
}

func (c *resumeCache) Delete(ctx context.Context, responseID string) error {
	return c.client.Del(ctx, resumeKey(responseID)).Err()
}
