package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"moreminutes/internal/subscription/models"
)

// RedisCache caches derived subscription status. Webhooks invalidate the
// entry, so a short TTL only bounds staleness after missed invalidations.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func statusKey(userID uuid.UUID) string {
	return "subscription:status:" + userID.String()
}

func (c *RedisCache) GetStatus(ctx context.Context, userID uuid.UUID) (*models.StatusResponse, error) {
	payload, err := c.client.Get(ctx, statusKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached status: %w", err)
	}
	var status models.StatusResponse
	if err := json.Unmarshal(payload, &status); err != nil {
		return nil, nil
	}
	return &status, nil
}

func (c *RedisCache) SetStatus(ctx context.Context, userID uuid.UUID, status *models.StatusResponse) error {
	if status == nil {
		return nil
	}
	payload, err := json.Marshal(status)
	if err != nil {
		return fmt.Errorf("marshal cached status: %w", err)
	}
	if err := c.client.Set(ctx, statusKey(userID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached status: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if err := c.client.Del(ctx, statusKey(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate cached status: %w", err)
	}
	return nil
}
