package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/abhisek/assessor/internal/ability"
)

// DefaultTTL bounds how long a derived estimate is kept.
const DefaultTTL = 24 * time.Hour

// AbilityCache stores derived ability estimates. Entries are keyed by the
// latest response sequence, so a new response makes older entries
// unreachable without explicit invalidation.
type AbilityCache interface {
	// Get returns the cached estimate. ok is false on a miss.
	Get(ctx context.Context, learnerID, objectiveID string, seq int64) (est *ability.Estimate, ok bool, err error)
	Set(ctx context.Context, learnerID, objectiveID string, seq int64, est *ability.Estimate) error
}

// Key returns the cache key for an estimate.
func Key(learnerID, objectiveID string, seq int64) string {
	return fmt.Sprintf("ability:%s:%s:%d", learnerID, objectiveID, seq)
}

type abilityCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewAbilityCache creates a Redis-backed cache. A non-positive ttl uses DefaultTTL.
func NewAbilityCache(client *redis.Client, ttl time.Duration) AbilityCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &abilityCache{client: client, ttl: ttl}
}

func (c *abilityCache) Get(ctx context.Context, learnerID, objectiveID string, seq int64) (*ability.Estimate, bool, error) {
	data, err := c.client.Get(ctx, Key(learnerID, objectiveID, seq)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	var est ability.Estimate
	if err := json.Unmarshal([]byte(data), &est); err != nil {
		return nil, false, fmt.Errorf("decode cached estimate: %w", err)
	}
	return &est, true, nil
}

func (c *abilityCache) Set(ctx context.Context, learnerID, objectiveID string, seq int64, est *ability.Estimate) error {
	data, err := json.Marshal(est)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, Key(learnerID, objectiveID, seq), data, c.ttl).Err()
}

// Nop is an AbilityCache that never stores anything.
type Nop struct{}

func (Nop) Get(context.Context, string, string, int64) (*ability.Estimate, bool, error) {
	return nil, false, nil
}

func (Nop) Set(context.Context, string, string, int64, *ability.Estimate) error {
	return nil
}
