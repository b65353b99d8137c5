package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"moreminutes/internal/prediction/models"
)

// RedisCache caches each user's latest prediction. Safe to serve slightly
// stale data: the estimate is deterministic and saves refresh the entry.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache constructs the cache with the given entry TTL.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	return &RedisCache{client: client, ttl: ttl}
}

func latestKey(userID uuid.UUID) string {
	return "prediction:latest:" + userID.String()
}

func (c *RedisCache) GetLatest(ctx context.Context, userID uuid.UUID) (*models.PredictionRecord, error) {
	payload, err := c.client.Get(ctx, latestKey(userID)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("get cached prediction: %w", err)
	}
	var record models.PredictionRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		// Treat a corrupt entry as a miss; it will be rewritten.
		return nil, nil
	}
	return &record, nil
}

func (c *RedisCache) SetLatest(ctx context.Context, record *models.PredictionRecord) error {
	if record == nil {
		return nil
	}
	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("marshal cached prediction: %w", err)
	}
	if err := c.client.Set(ctx, latestKey(record.UserID), payload, c.ttl).Err(); err != nil {
		return fmt.Errorf("set cached prediction: %w", err)
	}
	return nil
}

func (c *RedisCache) Invalidate(ctx context.Context, userID uuid.UUID) error {
	if err := c.client.Del(ctx, latestKey(userID)).Err(); err != nil {
		return fmt.Errorf("invalidate cached prediction: %w", err)
	}
	return nil
}
