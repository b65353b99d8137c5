package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"moreminutes/internal/analytics"
	"moreminutes/internal/lifecalc"
	"moreminutes/internal/prediction/metrics"
	"moreminutes/internal/prediction/models"
	"moreminutes/internal/prediction/store"
	dErrors "moreminutes/pkg/domain-errors"
	"moreminutes/pkg/requestcontext"
)

// Store persists prediction history.
type Store interface {
	Save(ctx context.Context, record *models.PredictionRecord) error
	Latest(ctx context.Context, userID uuid.UUID) (*models.PredictionRecord, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.PredictionRecord, error)
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	Count(ctx context.Context) (int64, error)
}

// Cache holds the latest prediction per user so the countdown screen skips a
// DB round trip. Determinism makes stale entries harmless; they are replaced
// on the next save.
type Cache interface {
	GetLatest(ctx context.Context, userID uuid.UUID) (*models.PredictionRecord, error)
	SetLatest(ctx context.Context, record *models.PredictionRecord) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// Service runs estimations and manages prediction history. The estimator
// itself is pure; everything stateful lives behind the Store and Cache.
type Service struct {
	estimator lifecalc.Estimator
	store     Store
	cache     Cache
	events    *analytics.Publisher
	metrics   *metrics.Metrics
	tracer    trace.Tracer
}

// New constructs the prediction service. cache may be nil when Redis is not
// configured.
func New(estimator lifecalc.Estimator, store Store, cache Cache, events *analytics.Publisher, m *metrics.Metrics) *Service {
	return &Service{
		estimator: estimator,
		store:     store,
		cache:     cache,
		events:    events,
		metrics:   m,
		tracer:    otel.Tracer("moreminutes/prediction"),
	}
}

// Estimate validates the request, resolves the seeding identity, and runs
// the survival walk at the request-scoped clock.
func (s *Service) Estimate(ctx context.Context, req models.EstimateRequest) (*models.EstimateResponse, error) {
	ctx, span := s.tracer.Start(ctx, "prediction.estimate")
	defer span.End()

	now := requestcontext.Now(ctx)

	dob, err := time.ParseInLocation("2006-01-02", req.DOB, time.UTC)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "dob must be a YYYY-MM-DD date")
	}
	if !dob.Before(now) {
		return nil, dErrors.New(dErrors.CodeBadRequest, "dob must be in the past")
	}
	sex := lifecalc.Sex(req.Sex)
	if !sex.Valid() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "sex must be male or female")
	}

	identity, kind := s.resolveIdentity(ctx)
	span.SetAttributes(attribute.String("identity_kind", string(kind)))

	start := time.Now()
	pred := s.estimator.EstimateAt(lifecalc.Input{
		DOB:          dob,
		Sex:          sex,
		IdentitySeed: identity,
		Risks:        req.Risks,
	}, now)
	s.metrics.ObserveEstimate(string(kind), time.Since(start))
	span.SetAttributes(
		attribute.Int("current_age_years", pred.CurrentAgeYears),
		attribute.Float64("base_remaining_years", pred.BaseRemainingYears),
	)

	s.events.Publish(ctx, analytics.Event{
		Name:   analytics.EventPredictionCalculated,
		UserID: requestcontext.UserID(ctx),
		Props: map[string]any{
			"current_age":     pred.CurrentAgeYears,
			"remaining_years": pred.BaseRemainingYears,
			"identity_kind":   string(kind),
		},
	})

	return &models.EstimateResponse{Prediction: pred, Identity: kind}, nil
}

// Nudge applies selected interventions to a prediction as a capped what-if
// overlay. Pure given its inputs; repeated calls return identical results.
func (s *Service) Nudge(ctx context.Context, req models.NudgeRequest) (*models.NudgeResponse, error) {
	if len(req.Interventions) == 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "at least one intervention is required")
	}

	factor := lifecalc.CombinedFactor(req.Interventions)
	adjusted := lifecalc.ApplyImprovement(req.Prediction, factor)
	s.metrics.NudgesTotal.Inc()

	s.events.Publish(ctx, analytics.Event{
		Name:   analytics.EventNudgeApplied,
		UserID: requestcontext.UserID(ctx),
		Props: map[string]any{
			"combined_factor": factor,
			"delta_days":      lifecalc.DeltaDays(adjusted),
		},
	})

	return &models.NudgeResponse{
		Prediction:     adjusted,
		CombinedFactor: factor,
		DeltaDays:      lifecalc.DeltaDays(adjusted),
	}, nil
}

// Save stores a prediction in the authenticated user's history.
func (s *Service) Save(ctx context.Context, userID uuid.UUID, req models.SaveRequest) (*models.PredictionRecord, error) {
	dod, err := time.ParseInLocation("2006-01-02", req.PredictedDOD, time.UTC)
	if err != nil {
		return nil, dErrors.New(dErrors.CodeBadRequest, "predicted_dod must be a YYYY-MM-DD date")
	}
	if req.BaseRemainingYears < 0 {
		return nil, dErrors.New(dErrors.CodeBadRequest, "base_remaining_years must be non-negative")
	}

	record := &models.PredictionRecord{
		ID:                 uuid.New(),
		UserID:             userID,
		PredictedDOD:       dod,
		BaseRemainingYears: req.BaseRemainingYears,
		AdjustedYears:      req.AdjustedYears,
		Factors:            req.Factors,
		CreatedAt:          requestcontext.Now(ctx),
	}
	if err := s.store.Save(ctx, record); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to save prediction")
	}
	s.metrics.SavesTotal.Inc()

	if s.cache != nil {
		_ = s.cache.SetLatest(ctx, record)
	}
	return record, nil
}

// Latest returns the newest saved prediction, read through the cache.
func (s *Service) Latest(ctx context.Context, userID uuid.UUID) (*models.PredictionRecord, error) {
	if s.cache != nil {
		if record, err := s.cache.GetLatest(ctx, userID); err == nil && record != nil {
			return record, nil
		}
	}
	record, err := s.store.Latest(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no prediction saved")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load prediction")
	}
	if s.cache != nil {
		_ = s.cache.SetLatest(ctx, record)
	}
	return record, nil
}

// resolveIdentity picks the most stable identity available: authenticated
// user, then device fingerprint, then the shared anonymous token.
func (s *Service) resolveIdentity(ctx context.Context) (string, models.IdentityKind) {
	if userID := requestcontext.UserID(ctx); userID != "" {
		return userID, models.IdentityUser
	}
	if deviceID := requestcontext.DeviceID(ctx); deviceID != "" {
		return deviceID, models.IdentityDevice
	}
	return lifecalc.AnonymousIdentity, models.IdentityAnonymous
}
