package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"moreminutes/internal/vault/models"
)

// PostgresStore persists vault metadata in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const itemColumns = `id, user_id, type, storage_path, "trigger", trigger_value, delivered, created_at`

func (s *PostgresStore) Insert(ctx context.Context, item *models.Item) error {
	if item == nil {
		return fmt.Errorf("vault item is required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO legacy_vault (id, user_id, type, storage_path, "trigger", trigger_value, delivered, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		item.ID, item.UserID, item.Type, item.StoragePath,
		item.Trigger, item.TriggerValue, item.Delivered, item.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert vault item: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id, userID uuid.UUID) (*models.Item, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT `+itemColumns+`
		FROM legacy_vault
		WHERE id = $1 AND user_id = $2`, id, userID)
	item, err := scanItem(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get vault item: %w", err)
	}
	return item, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM legacy_vault
		WHERE user_id = $1
		ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list vault items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func (s *PostgresStore) ListDueFixedDate(ctx context.Context, now time.Time) ([]*models.Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM legacy_vault
		WHERE delivered = false
		  AND "trigger" = 'fixed_date'
		  AND trigger_value IS NOT NULL
		  AND trigger_value <= $1`, now)
	if err != nil {
		return nil, fmt.Errorf("list due vault items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func (s *PostgresStore) ListUndeliveredInactivity(ctx context.Context) ([]*models.Item, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+itemColumns+`
		FROM legacy_vault
		WHERE delivered = false
		  AND "trigger" = 'inactivity'`)
	if err != nil {
		return nil, fmt.Errorf("list inactivity vault items: %w", err)
	}
	defer rows.Close()
	return collectItems(rows)
}

func (s *PostgresStore) MarkDelivered(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `UPDATE legacy_vault SET delivered = true WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("mark vault item delivered: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) Delete(ctx context.Context, id, userID uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM legacy_vault WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return fmt.Errorf("delete vault item: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM legacy_vault WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete vault items: %w", err)
	}
	return nil
}

func (s *PostgresStore) CountByType(ctx context.Context) (map[models.ItemType]int64, error) {
	rows, err := s.pool.Query(ctx, `SELECT type, count(*) FROM legacy_vault GROUP BY type`)
	if err != nil {
		return nil, fmt.Errorf("count vault items: %w", err)
	}
	defer rows.Close()

	counts := make(map[models.ItemType]int64)
	for rows.Next() {
		var t models.ItemType
		var n int64
		if err := rows.Scan(&t, &n); err != nil {
			return nil, fmt.Errorf("scan vault count: %w", err)
		}
		counts[t] = n
	}
	return counts, rows.Err()
}

func collectItems(rows pgx.Rows) ([]*models.Item, error) {
	var items []*models.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan vault item: %w", err)
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanItem(row pgx.Row) (*models.Item, error) {
	var item models.Item
	err := row.Scan(&item.ID, &item.UserID, &item.Type, &item.StoragePath,
		&item.Trigger, &item.TriggerValue, &item.Delivered, &item.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &item, nil
}
