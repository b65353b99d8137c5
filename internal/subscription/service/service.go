package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"moreminutes/internal/analytics"
	"moreminutes/internal/paypal"
	"moreminutes/internal/subscription/metrics"
	"moreminutes/internal/subscription/models"
	"moreminutes/internal/subscription/store"
	dErrors "moreminutes/pkg/domain-errors"
	"moreminutes/pkg/requestcontext"
)

// Store persists subscription rows.
type Store interface {
	Upsert(ctx context.Context, sub *models.Subscription) error
	Newest(ctx context.Context, userID uuid.UUID) (*models.Subscription, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Subscription, error)
	Deactivate(ctx context.Context, userID uuid.UUID) error
	DeleteByUser(ctx context.Context, userID uuid.UUID) error
	CountByTier(ctx context.Context) (map[models.Tier]int64, error)
}

// Cache holds derived status responses.
type Cache interface {
	GetStatus(ctx context.Context, userID uuid.UUID) (*models.StatusResponse, error)
	SetStatus(ctx context.Context, userID uuid.UUID, status *models.StatusResponse) error
	Invalidate(ctx context.Context, userID uuid.UUID) error
}

// UserEnsurer guarantees a user row exists before the subscription insert.
// Guest checkouts can complete before the first profile sync.
type UserEnsurer interface {
	EnsureExists(ctx context.Context, userID uuid.UUID, email string) error
}

// Service derives subscription status and applies billing webhooks.
type Service struct {
	logger  *slog.Logger
	store   Store
	cache   Cache
	users   UserEnsurer
	events  *analytics.Publisher
	metrics *metrics.Metrics
}

func New(store Store, cache Cache, users UserEnsurer, events *analytics.Publisher, m *metrics.Metrics, logger *slog.Logger) *Service {
	return &Service{
		logger:  logger,
		store:   store,
		cache:   cache,
		users:   users,
		events:  events,
		metrics: m,
	}
}

// Status derives the user's current state from the newest subscription row.
func (s *Service) Status(ctx context.Context, userID uuid.UUID) (*models.StatusResponse, error) {
	if s.cache != nil {
		if status, err := s.cache.GetStatus(ctx, userID); err == nil && status != nil {
			return status, nil
		}
	}

	sub, err := s.store.Newest(ctx, userID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			status := &models.StatusResponse{Status: models.StatusFree, Tier: models.TierFree}
			s.metrics.StatusLookupsTotal.WithLabelValues(string(status.Status)).Inc()
			return status, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load subscription")
	}

	status := deriveStatus(sub, requestcontext.Now(ctx))
	s.metrics.StatusLookupsTotal.WithLabelValues(string(status.Status)).Inc()
	if s.cache != nil {
		_ = s.cache.SetStatus(ctx, userID, status)
	}
	return status, nil
}

// ProcessWebhook applies one verified PayPal billing event. Unknown event
// types are acknowledged and dropped so PayPal stops retrying them.
func (s *Service) ProcessWebhook(ctx context.Context, event paypal.WebhookEvent) error {
	switch event.EventType {
	case paypal.EventSubscriptionCreated,
		paypal.EventSubscriptionActivated,
		paypal.EventPaymentCompleted:
		return s.activate(ctx, event)
	case paypal.EventSubscriptionCancelled,
		paypal.EventSubscriptionSuspended:
		return s.deactivate(ctx, event)
	default:
		s.metrics.WebhooksTotal.WithLabelValues(event.EventType, "ignored").Inc()
		return nil
	}
}

func (s *Service) activate(ctx context.Context, event paypal.WebhookEvent) error {
	userID, err := uuid.Parse(event.Resource.CustomID)
	if err != nil {
		s.metrics.WebhooksTotal.WithLabelValues(event.EventType, "rejected").Inc()
		return dErrors.New(dErrors.CodeBadRequest, "missing or invalid custom_id")
	}

	// Placeholder email; the next profile sync overwrites it.
	if err := s.users.EnsureExists(ctx, userID, fmt.Sprintf("%s@placeholder.local", userID)); err != nil {
		s.logger.WarnContext(ctx, "ensure user for subscription",
			"user_id", userID.String(),
			"error", err.Error(),
		)
	}

	var renewAt *time.Time
	if event.Resource.BillingInfo != nil && event.Resource.BillingInfo.NextBillingTime != "" {
		if t, err := time.Parse(time.RFC3339, event.Resource.BillingInfo.NextBillingTime); err == nil {
			day := t.UTC().Truncate(24 * time.Hour)
			renewAt = &day
		}
	}

	var paypalID *string
	if event.Resource.ID != "" {
		paypalID = &event.Resource.ID
	}

	sub := &models.Subscription{
		ID:       uuid.New(),
		UserID:   userID,
		PayPalID: paypalID,
		Tier:     models.TierPlus,
		RenewAt:  renewAt,
		Platform: "paypal",
		IsActive: true,
	}
	if err := s.store.Upsert(ctx, sub); err != nil {
		s.metrics.WebhooksTotal.WithLabelValues(event.EventType, "error").Inc()
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to record subscription")
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
	s.metrics.WebhooksTotal.WithLabelValues(event.EventType, "ok").Inc()
	s.events.Publish(ctx, analytics.Event{
		Name:   analytics.EventSubscriptionActivated,
		UserID: userID.String(),
		Props:  map[string]any{"tier": string(models.TierPlus), "event_type": event.EventType},
	})
	return nil
}

func (s *Service) deactivate(ctx context.Context, event paypal.WebhookEvent) error {
	userID, err := uuid.Parse(event.Resource.CustomID)
	if err != nil {
		// Cancellation without a usable custom_id is acknowledged; there is
		// nothing to update.
		s.metrics.WebhooksTotal.WithLabelValues(event.EventType, "ignored").Inc()
		return nil
	}

	if err := s.store.Deactivate(ctx, userID); err != nil {
		s.metrics.WebhooksTotal.WithLabelValues(event.EventType, "error").Inc()
		return dErrors.Wrap(err, dErrors.CodeInternal, "failed to deactivate subscription")
	}

	if s.cache != nil {
		_ = s.cache.Invalidate(ctx, userID)
	}
	s.metrics.WebhooksTotal.WithLabelValues(event.EventType, "ok").Inc()
	s.events.Publish(ctx, analytics.Event{
		Name:   analytics.EventSubscriptionCancelled,
		UserID: userID.String(),
		Props:  map[string]any{"event_type": event.EventType},
	})
	return nil
}

func deriveStatus(sub *models.Subscription, now time.Time) *models.StatusResponse {
	resp := &models.StatusResponse{
		Tier:     sub.Tier,
		RenewAt:  sub.RenewAt,
		Platform: &sub.Platform,
		IsActive: sub.IsActive,
	}
	switch {
	case sub.IsActive && sub.RenewAt != nil && sub.RenewAt.After(now):
		resp.Status = models.StatusActive
	case sub.IsActive && sub.RenewAt != nil:
		resp.Status = models.StatusExpired
		resp.IsActive = false
	case sub.IsActive:
		resp.Status = models.StatusActive
	default:
		resp.Status = models.StatusCancelled
	}
	return resp
}
