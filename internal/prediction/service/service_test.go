package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"moreminutes/internal/lifecalc"
	"moreminutes/internal/prediction/metrics"
	"moreminutes/internal/prediction/models"
	"moreminutes/internal/prediction/store"
	dErrors "moreminutes/pkg/domain-errors"
	"moreminutes/pkg/requestcontext"
)

// Prometheus collectors register once per process, so every suite run shares
// this instance.
var testMetrics = metrics.New()

type PredictionServiceSuite struct {
	suite.Suite
	ctx     context.Context
	now     time.Time
	store   *store.InMemoryStore
	service *Service
}

func (s *PredictionServiceSuite) SetupTest() {
	s.now = time.Date(2026, 9, 1, 12, 0, 0, 0, time.UTC)
	s.ctx = requestcontext.WithTime(context.Background(), s.now)
	s.store = store.NewInMemory()
	s.service = New(lifecalc.Estimator{Salt: "test-salt"}, s.store, nil, nil, testMetrics)
}

func TestPredictionServiceSuite(t *testing.T) {
	suite.Run(t, new(PredictionServiceSuite))
}

func (s *PredictionServiceSuite) TestEstimateAnonymous() {
	resp, err := s.service.Estimate(s.ctx, models.EstimateRequest{DOB: "1990-04-15", Sex: "female"})
	require.NoError(s.T(), err)

	assert.Equal(s.T(), models.IdentityAnonymous, resp.Identity)
	assert.Equal(s.T(), 36, resp.Prediction.CurrentAgeYears)
	assert.True(s.T(), resp.Prediction.PredictedDeathDate.After(s.now.AddDate(-1, 0, 0)))
}

func (s *PredictionServiceSuite) TestEstimateDeterministic() {
	req := models.EstimateRequest{DOB: "1985-11-02", Sex: "male"}
	first, err := s.service.Estimate(s.ctx, req)
	require.NoError(s.T(), err)

	for i := 0; i < 5; i++ {
		again, err := s.service.Estimate(s.ctx, req)
		require.NoError(s.T(), err)
		assert.Equal(s.T(), first.Prediction, again.Prediction)
	}
}

func (s *PredictionServiceSuite) TestEstimateIdentityPrecedence() {
	req := models.EstimateRequest{DOB: "1985-11-02", Sex: "male"}

	deviceCtx := requestcontext.WithDeviceID(s.ctx, "device-abc")
	fromDevice, err := s.service.Estimate(deviceCtx, req)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.IdentityDevice, fromDevice.Identity)

	userCtx := requestcontext.WithUserID(deviceCtx, uuid.NewString())
	fromUser, err := s.service.Estimate(userCtx, req)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), models.IdentityUser, fromUser.Identity)
}

func (s *PredictionServiceSuite) TestEstimateRejectsBadInput() {
	cases := []struct {
		name string
		req  models.EstimateRequest
	}{
		{"malformed dob", models.EstimateRequest{DOB: "15/04/1990", Sex: "male"}},
		{"future dob", models.EstimateRequest{DOB: "2030-01-01", Sex: "male"}},
		{"unknown sex", models.EstimateRequest{DOB: "1990-04-15", Sex: "other"}},
		{"missing sex", models.EstimateRequest{DOB: "1990-04-15"}},
	}
	for _, tc := range cases {
		s.Run(tc.name, func() {
			_, err := s.service.Estimate(s.ctx, tc.req)
			require.Error(s.T(), err)
			assert.True(s.T(), dErrors.Is(err, dErrors.CodeBadRequest))
		})
	}
}

func (s *PredictionServiceSuite) TestEstimateWithRisks() {
	base, err := s.service.Estimate(s.ctx, models.EstimateRequest{DOB: "1980-06-20", Sex: "male"})
	require.NoError(s.T(), err)
	require.Nil(s.T(), base.Prediction.AdjustedRemainingYears)

	risky, err := s.service.Estimate(s.ctx, models.EstimateRequest{
		DOB:   "1980-06-20",
		Sex:   "male",
		Risks: lifecalc.RiskFactors{Smoking: true},
	})
	require.NoError(s.T(), err)
	require.NotNil(s.T(), risky.Prediction.AdjustedRemainingYears)
	assert.Less(s.T(), *risky.Prediction.AdjustedRemainingYears, risky.Prediction.BaseRemainingYears)
	assert.Equal(s.T(), base.Prediction.BaseRemainingYears, risky.Prediction.BaseRemainingYears)
}

func (s *PredictionServiceSuite) TestNudge() {
	est, err := s.service.Estimate(s.ctx, models.EstimateRequest{DOB: "1990-04-15", Sex: "female"})
	require.NoError(s.T(), err)

	resp, err := s.service.Nudge(s.ctx, models.NudgeRequest{
		Prediction:    est.Prediction,
		Interventions: []lifecalc.Intervention{lifecalc.InterventionDailyWalk, lifecalc.InterventionSleepHygiene},
	})
	require.NoError(s.T(), err)

	assert.Greater(s.T(), resp.CombinedFactor, 1.0)
	assert.LessOrEqual(s.T(), resp.CombinedFactor, lifecalc.MaxCombinedImprovement)
	require.NotNil(s.T(), resp.Prediction.AdjustedRemainingYears)
	assert.GreaterOrEqual(s.T(), resp.DeltaDays, 0.0)
	assert.Equal(s.T(), est.Prediction.BaseRemainingYears, resp.Prediction.BaseRemainingYears)
}

func (s *PredictionServiceSuite) TestNudgeRequiresInterventions() {
	_, err := s.service.Nudge(s.ctx, models.NudgeRequest{})
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.Is(err, dErrors.CodeBadRequest))
}

func (s *PredictionServiceSuite) TestSaveAndLatest() {
	userID := uuid.New()

	first, err := s.service.Save(s.ctx, userID, models.SaveRequest{
		PredictedDOD:       "2070-01-15",
		BaseRemainingYears: 44,
	})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), userID, first.UserID)
	assert.Equal(s.T(), s.now, first.CreatedAt)

	laterCtx := requestcontext.WithTime(context.Background(), s.now.Add(time.Hour))
	second, err := s.service.Save(laterCtx, userID, models.SaveRequest{
		PredictedDOD:       "2072-03-02",
		BaseRemainingYears: 46,
	})
	require.NoError(s.T(), err)

	latest, err := s.service.Latest(s.ctx, userID)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), second.ID, latest.ID)
	assert.Equal(s.T(), 46.0, latest.BaseRemainingYears)
}

func (s *PredictionServiceSuite) TestSaveRejectsBadInput() {
	userID := uuid.New()

	_, err := s.service.Save(s.ctx, userID, models.SaveRequest{PredictedDOD: "someday"})
	assert.True(s.T(), dErrors.Is(err, dErrors.CodeBadRequest))

	_, err = s.service.Save(s.ctx, userID, models.SaveRequest{
		PredictedDOD:       "2070-01-15",
		BaseRemainingYears: -1,
	})
	assert.True(s.T(), dErrors.Is(err, dErrors.CodeBadRequest))
}

func (s *PredictionServiceSuite) TestLatestNotFound() {
	_, err := s.service.Latest(s.ctx, uuid.New())
	require.Error(s.T(), err)
	assert.True(s.T(), dErrors.Is(err, dErrors.CodeNotFound))
}
