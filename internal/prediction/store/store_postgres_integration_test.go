//go:build integration

package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/suite"

	"moreminutes/internal/lifecalc"
	"moreminutes/internal/platform/postgres"
	"moreminutes/internal/prediction/models"
	"moreminutes/internal/prediction/store"
	userstore "moreminutes/internal/user/store"
	"moreminutes/pkg/testutil/containers"
)

type PredictionPostgresSuite struct {
	suite.Suite
	postgres *containers.PostgresContainer
	store    *store.PostgresStore
	users    *userstore.PostgresStore
	userID   uuid.UUID
}

func TestPredictionPostgresSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(PredictionPostgresSuite))
}

func (s *PredictionPostgresSuite) SetupSuite() {
	s.postgres = containers.NewPostgresContainer(s.T())
	db := &postgres.DB{Pool: s.postgres.Pool}
	s.Require().NoError(db.Migrate(context.Background()))
	s.store = store.NewPostgres(s.postgres.Pool)
	s.users = userstore.NewPostgres(s.postgres.Pool)
}

func (s *PredictionPostgresSuite) TearDownSuite() {
	if s.postgres == nil {
		return
	}
	s.postgres.Pool.Close()
	_ = s.postgres.Container.Terminate(context.Background())
}

func (s *PredictionPostgresSuite) SetupTest() {
	ctx := context.Background()
	s.Require().NoError(s.postgres.TruncateAll(ctx, "users"))
	s.userID = uuid.New()
	s.Require().NoError(s.users.EnsureExists(ctx, s.userID, "ada@example.com"))
}

func (s *PredictionPostgresSuite) record(created time.Time) *models.PredictionRecord {
	return &models.PredictionRecord{
		ID:                 uuid.New(),
		UserID:             s.userID,
		PredictedDOD:       time.Date(2056, time.July, 4, 0, 0, 0, 0, time.UTC),
		BaseRemainingYears: 41,
		Factors: lifecalc.Factors{
			Sex:             lifecalc.SexFemale,
			CurrentAgeYears: 34,
		},
		CreatedAt: created,
	}
}

func (s *PredictionPostgresSuite) TestSaveWithoutAdjustedYears() {
	// The common case: a plain estimate carries no adjusted years and the
	// column must accept the NULL.
	ctx := context.Background()
	rec := s.record(time.Now().UTC())

	s.Require().NoError(s.store.Save(ctx, rec))

	got, err := s.store.Latest(ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(rec.ID, got.ID)
	s.Nil(got.AdjustedYears)
	s.Equal(41.0, got.BaseRemainingYears)
	s.Equal(34, got.Factors.CurrentAgeYears)
}

func (s *PredictionPostgresSuite) TestSaveWithAdjustedYears() {
	ctx := context.Background()
	rec := s.record(time.Now().UTC())
	adjusted := 30.668
	rec.AdjustedYears = &adjusted

	s.Require().NoError(s.store.Save(ctx, rec))

	got, err := s.store.Latest(ctx, s.userID)
	s.Require().NoError(err)
	s.Require().NotNil(got.AdjustedYears)
	s.InDelta(adjusted, *got.AdjustedYears, 1e-9)
}

func (s *PredictionPostgresSuite) TestLatestPicksNewest() {
	ctx := context.Background()
	older := s.record(time.Now().UTC().Add(-time.Hour))
	newer := s.record(time.Now().UTC())

	s.Require().NoError(s.store.Save(ctx, older))
	s.Require().NoError(s.store.Save(ctx, newer))

	got, err := s.store.Latest(ctx, s.userID)
	s.Require().NoError(err)
	s.Equal(newer.ID, got.ID)
}

func (s *PredictionPostgresSuite) TestLatestNotFound() {
	_, err := s.store.Latest(context.Background(), uuid.New())
	s.ErrorIs(err, store.ErrNotFound)
}

func (s *PredictionPostgresSuite) TestListAndDeleteByUser() {
	ctx := context.Background()
	first := s.record(time.Now().UTC().Add(-time.Hour))
	second := s.record(time.Now().UTC())

	s.Require().NoError(s.store.Save(ctx, first))
	s.Require().NoError(s.store.Save(ctx, second))

	records, err := s.store.ListByUser(ctx, s.userID)
	s.Require().NoError(err)
	s.Require().Len(records, 2)
	s.Equal(first.ID, records[0].ID)
	s.Equal(second.ID, records[1].ID)

	s.Require().NoError(s.store.DeleteByUser(ctx, s.userID))
	records, err = s.store.ListByUser(ctx, s.userID)
	s.Require().NoError(err)
	s.Empty(records)
}
