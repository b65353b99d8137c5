// Package admin exposes operator-facing endpoints: product stats and the
// manual user-sync trigger.
package admin

import (
	"context"
	"time"

	subModels "moreminutes/internal/subscription/models"
	vaultModels "moreminutes/internal/vault/models"
	dErrors "moreminutes/pkg/domain-errors"
	"moreminutes/pkg/requestcontext"
)

// signupWindow is the lookback for the recent-signups figure.
const signupWindow = 30 * 24 * time.Hour

// UserCounts provides the user-table aggregates.
type UserCounts interface {
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
}

// PredictionCounts provides the prediction-table aggregates.
type PredictionCounts interface {
	Count(ctx context.Context) (int64, error)
}

// VaultCounts provides the vault-table aggregates.
type VaultCounts interface {
	CountByType(ctx context.Context) (map[vaultModels.ItemType]int64, error)
}

// SubscriptionCounts provides the subscription-table aggregates.
type SubscriptionCounts interface {
	CountByTier(ctx context.Context) (map[subModels.Tier]int64, error)
}

// Stats is the operator dashboard payload.
type Stats struct {
	Users               int64                          `json:"users"`
	SignupsLast30Days   int64                          `json:"signups_last_30_days"`
	Predictions         int64                          `json:"predictions"`
	VaultItemsByType    map[vaultModels.ItemType]int64 `json:"vault_items_by_type"`
	SubscriptionsByTier map[subModels.Tier]int64       `json:"subscriptions_by_tier"`
	GeneratedAt         time.Time                      `json:"generated_at"`
}

// Service aggregates cross-domain counts.
type Service struct {
	users         UserCounts
	predictions   PredictionCounts
	vault         VaultCounts
	subscriptions SubscriptionCounts
}

func NewService(users UserCounts, predictions PredictionCounts, vault VaultCounts, subscriptions SubscriptionCounts) *Service {
	return &Service{
		users:         users,
		predictions:   predictions,
		vault:         vault,
		subscriptions: subscriptions,
	}
}

// Stats assembles the dashboard counts.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	now := requestcontext.Now(ctx)

	users, err := s.users.Count(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count users")
	}
	signups, err := s.users.CountSince(ctx, now.Add(-signupWindow))
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count signups")
	}
	predictions, err := s.predictions.Count(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count predictions")
	}
	vaultByType, err := s.vault.CountByType(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count vault items")
	}
	subsByTier, err := s.subscriptions.CountByTier(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to count subscriptions")
	}

	return &Stats{
		Users:               users,
		SignupsLast30Days:   signups,
		Predictions:         predictions,
		VaultItemsByType:    vaultByType,
		SubscriptionsByTier: subsByTier,
		GeneratedAt:         now,
	}, nil
}
