package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/google/uuid"

	"moreminutes/internal/lifecalc"
	"moreminutes/internal/prediction/models"
)

// PostgresStore persists prediction history in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgres constructs a PostgreSQL-backed prediction store.
func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) Save(ctx context.Context, record *models.PredictionRecord) error {
	if record == nil {
		return fmt.Errorf("prediction record is required")
	}
	factors, err := json.Marshal(record.Factors)
	if err != nil {
		return fmt.Errorf("marshal factors: %w", err)
	}
	_, err = s.pool.Exec(ctx, `
		INSERT INTO death_prediction (id, user_id, predicted_dod, base_remaining_years, adjusted_years, factors, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		record.ID, record.UserID, record.PredictedDOD, record.BaseRemainingYears,
		record.AdjustedYears, factors, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("save prediction: %w", err)
	}
	return nil
}

func (s *PostgresStore) Latest(ctx context.Context, userID uuid.UUID) (*models.PredictionRecord, error) {
	row := s.pool.QueryRow(ctx, `
		SELECT id, user_id, predicted_dod, base_remaining_years, adjusted_years, factors, created_at
		FROM death_prediction
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT 1`, userID)
	record, err := scanRecord(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("latest prediction: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]*models.PredictionRecord, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, user_id, predicted_dod, base_remaining_years, adjusted_years, factors, created_at
		FROM death_prediction
		WHERE user_id = $1
		ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("list predictions: %w", err)
	}
	defer rows.Close()

	var records []*models.PredictionRecord
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prediction: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}

func (s *PostgresStore) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := s.pool.Exec(ctx, `DELETE FROM death_prediction WHERE user_id = $1`, userID)
	if err != nil {
		return fmt.Errorf("delete predictions: %w", err)
	}
	return nil
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM death_prediction`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count predictions: %w", err)
	}
	return n, nil
}

func scanRecord(row pgx.Row) (*models.PredictionRecord, error) {
	var record models.PredictionRecord
	var factors []byte
	err := row.Scan(&record.ID, &record.UserID, &record.PredictedDOD,
		&record.BaseRemainingYears, &record.AdjustedYears, &factors, &record.CreatedAt)
	if err != nil {
		return nil, err
	}
	if len(factors) > 0 {
		if err := json.Unmarshal(factors, &record.Factors); err != nil {
			record.Factors = lifecalc.Factors{}
		}
	}
	return &record, nil
}
