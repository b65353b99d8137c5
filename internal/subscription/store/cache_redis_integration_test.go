//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"moreminutes/internal/subscription/models"
	"moreminutes/internal/subscription/store"
	"moreminutes/pkg/testutil/containers"
)

type RedisCacheSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	cache *store.RedisCache
}

func TestRedisCacheSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCacheSuite))
}

func (s *RedisCacheSuite) SetupSuite() {
	s.redis = containers.NewRedisContainer(s.T())
	s.cache = store.NewRedisCache(s.redis.Client, time.Minute)
}

func (s *RedisCacheSuite) TearDownSuite() {
	if s.redis == nil {
		return
	}
	_ = s.redis.Client.Close()
	_ = s.redis.Container.Terminate(context.Background())
}

func (s *RedisCacheSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCacheSuite) TestSetAndGetStatus() {
	ctx := context.Background()
	userID := uuid.New()
	renewAt := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	status := &models.StatusResponse{
		Status:   models.StatusActive,
		Tier:     models.TierPlus,
		IsActive: true,
		RenewAt:  &renewAt,
	}

	s.Require().NoError(s.cache.SetStatus(ctx, userID, status))

	got, err := s.cache.GetStatus(ctx, userID)
	s.Require().NoError(err)
	s.Require().NotNil(got)
	s.Equal(models.StatusActive, got.Status)
	s.Equal(models.TierPlus, got.Tier)
	s.Require().NotNil(got.RenewAt)
	s.True(renewAt.Equal(*got.RenewAt))
}

func (s *RedisCacheSuite) TestGetStatusMissReturnsNil() {
	got, err := s.cache.GetStatus(context.Background(), uuid.New())
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *RedisCacheSuite) TestCorruptEntryIsTreatedAsMiss() {
	ctx := context.Background()
	userID := uuid.New()
	key := "subscription:status:" + userID.String()
	s.Require().NoError(s.redis.Client.Set(ctx, key, "not-json", time.Minute).Err())

	got, err := s.cache.GetStatus(ctx, userID)
	s.Require().NoError(err)
	s.Nil(got)
}

func (s *RedisCacheSuite) TestInvalidate() {
	ctx := context.Background()
	userID := uuid.New()
	status := &models.StatusResponse{Status: models.StatusFree, Tier: models.TierFree}

	s.Require().NoError(s.cache.SetStatus(ctx, userID, status))
	s.Require().NoError(s.cache.Invalidate(ctx, userID))

	got, err := s.cache.GetStatus(ctx, userID)
	s.Require().NoError(err)
	s.Nil(got)
}
