package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"moreminutes/internal/subscription/models"
)

// PostgresStore persists subscriptions in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// Upsert inserts or updates the user's subscription row. One row per user;
// webhooks replay freely because the write is idempotent.
func (s *PostgresStore) Upsert(ctx context.Context, sub *models.Subscription) error {
	if sub == nil {
		return fmt.Errorf("subscription is required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO subscriptions (id, user_id, paypal_id, tier, renew_at, platform, is_active)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (user_id) DO UPDATE SET
			paypal_id = COALESCE(EXCLUDED.paypal_id, subscriptions.paypal_id),
			tier = EXCLUDED.tier,
			renew_at = EXCLUDED.renew_at,
			is_active = EXCLUDED.is_active`,
		sub.ID, sub.UserID, sub.PayPalID, sub.Tier, sub.RenewAt, sub.Platform, sub.IsActive,
	)
	if err != nil {
		return fmt.Errorf("upsert subscription: %w", err)
	}
	return nil
}

func (s *PostgresStore) Newest(ctx context.Context, userID uuid.UUID) (*models.Subscription, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, paypal_id, tier, renew_at, platform, is_active
		FROM subscriptions
		WHERE user_id = $1
		ORDER BY renew_at DESC NULLS LAST
		LIMIT 1`, userID)
	sub, err := scanSubscription(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("newest subscription: %w", err)
	}
	return sub, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Subscription, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, paypal_id, tier, renew_at, platform, is_active
		FROM subscriptions
		WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("list subscriptions: %w", err)
	}
	defer rows.Close()

	var subs []*models.Subscription
	for rows.Next() {
		sub, err := scanSubscription(rows)
		if err != nil {
			return nil, fmt.Errorf("scan subscription: %w", err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

func (s *PostgresStore) Deactivate(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `UPDATE subscriptions SET is_active = false WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("deactivate subscription: %w", err)
	}
	return nil
}

func (s *PostgresStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM subscriptions WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete subscriptions: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountByTier(ctx context.Context) (map[models.Tier]int64, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT tier, count(*)
		FROM subscriptions
		WHERE is_active = true
		GROUP BY tier`)
	if err != nil {
		return nil, fmt.Errorf("count subscriptions: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.Tier]int64)
	for rows.Next() {
		var tier models.Tier
		var n int64
		if err := rows.Scan(&tier, &n); err != nil {
			return nil, fmt.Errorf("scan subscription count: %w", err)
		}
		counts[tier] = n
	}
	return counts, rows.Err()
}

func scanSubscription(row pgx.Row) (*models.Subscription, error) {
	var sub models.Subscription
	err := row.Scan(&sub.ID, &sub.UserID, &sub.PayPalID, &sub.Tier,
		&sub.RenewAt, &sub.Platform, &sub.IsActive)
	if err != nil {
		return nil, err
	}
	return &sub, nil
}
