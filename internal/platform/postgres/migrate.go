package postgres

import (
	"context"
	"fmt"
)

// statements are applied in order at startup. Every statement is idempotent
// so reapplying on each boot is safe.
var statements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id           uuid PRIMARY KEY,
		email        text NOT NULL,
		display_name text,
		dob          date,
		sex          text,
		created_at   timestamptz NOT NULL DEFAULT now(),
		last_seen_at timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE TABLE IF NOT EXISTS death_prediction (
		id                   uuid PRIMARY KEY,
		user_id              uuid NOT NULL REFERENCES users (id),
		predicted_dod        timestamptz NOT NULL,
		base_remaining_years double precision NOT NULL,
		adjusted_years       double precision,
		factors              jsonb NOT NULL DEFAULT '{}'::jsonb,
		created_at           timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS death_prediction_user_created_idx
		ON death_prediction (user_id, created_at DESC)`,
	`CREATE TABLE IF NOT EXISTS legacy_vault (
		id            uuid PRIMARY KEY,
		user_id       uuid NOT NULL REFERENCES users (id),
		type          text NOT NULL,
		storage_path  text NOT NULL,
		"trigger"     text NOT NULL,
		trigger_value timestamptz,
		delivered     boolean NOT NULL DEFAULT false,
		created_at    timestamptz NOT NULL DEFAULT now()
	)`,
	`CREATE INDEX IF NOT EXISTS legacy_vault_pending_idx
		ON legacy_vault (delivered, "trigger")`,
	`CREATE TABLE IF NOT EXISTS subscriptions (
		id        uuid PRIMARY KEY,
		user_id   uuid NOT NULL UNIQUE REFERENCES users (id),
		paypal_id text,
		tier      text NOT NULL,
		renew_at  timestamptz,
		platform  text NOT NULL,
		is_active boolean NOT NULL DEFAULT false
	)`,
}

// Migrate brings the schema up to date.
func (db *DB) Migrate(ctx context.Context) error {
	for i, stmt := range statements {
		if _, err := db.Pool.Exec(ctx, stmt); err != nil {
			return fmt.Errorf("apply schema statement %d: %w", i+1, err)
		}
	}
	return nil
}
