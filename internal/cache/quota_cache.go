package cache

import (
	"context"
	"strconv"

	"github.com/redis/go-redis/v9"
)

// QuotaCache keeps the live completion tally per quota rule. The counter
// lives in Redis so concurrent completions increment atomically; Mongo's
// stored count is only a periodic snapshot.
type QuotaCache interface {
	Count(ctx context.Context, ruleID string) (int, error)
	Increment(ctx context.Context, ruleID string) (int, error)
	Counts(ctx context.Context, ruleIDs []string) (map[string]int, error)
}

type quotaCache struct {
	client *redis.Client
}

func NewQuotaCache(client *redis.Client) QuotaCache {
	return &quotaCache{
		client: client,
	}
}

func quotaKey(ruleID string) string {
	return "quota:count:" + ruleID
}

func (c *quotaCache) Count(ctx context.Context, ruleID string) (int, error) {
	n, err := c.client.Get(ctx, quotaKey(ruleID)).Int()
	if err == redis.Nil {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (c *quotaCache) Increment(ctx context.Context, ruleID string) (int, error) {
	n, err := c.client.Incr(ctx, quotaKey(ruleID)).Result()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func (c *quotaCache) Counts(ctx context.Context, ruleIDs []string) (map[string]int, error) {
	counts := make(map[string]int, len(ruleIDs))
	if len(ruleIDs) == 0 {
		return counts, nil
	}

	keys := make([]string, len(ruleIDs))
	for i, id := range ruleIDs {
		keys[i] = quotaKey(id)
	}
	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, raw := range values {
		if raw == nil {
			continue
		}
		if s, ok := raw.(string); ok {
			if n, convErr := strconv.Atoi(s); convErr == nil {
				counts[ruleIDs[i]] = n
			}
		}
	}
	return counts, nil
}
