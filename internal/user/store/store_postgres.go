package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"moreminutes/internal/user/models"
)

// PostgresStore persists user rows in PostgreSQL.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// dob is a date column; it travels as text so the YYYY-MM-DD wire format
// survives the round trip untouched.
const userColumns = `id, email, display_name, dob::text, sex, created_at, last_seen_at`

func (s *PostgresStore) Upsert(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, display_name, dob, sex, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			dob = EXCLUDED.dob,
			sex = EXCLUDED.sex,
			last_seen_at = EXCLUDED.last_seen_at`,
		user.ID, user.Email, user.DisplayName, user.DOB, user.Sex,
		user.CreatedAt, user.LastSeenAt,
	)
	if err != nil {
		return fmt.Errorf("upsert user: %w", err)
	}
	return nil
}

// Mirror is the background-sync variant of Upsert: on conflict the identity
// fields update but last_seen_at keeps its stored value, so mirrored rows
// never count as activity against the vault inactivity trigger.
func (s *PostgresStore) Mirror(ctx context.Context, user *models.User) error {
	if user == nil {
		return fmt.Errorf("user is required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, display_name, dob, sex, created_at, last_seen_at)
		VALUES ($1, $2, $3, $4::date, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			email = EXCLUDED.email,
			display_name = EXCLUDED.display_name,
			dob = EXCLUDED.dob,
			sex = EXCLUDED.sex`,
		user.ID, user.Email, user.DisplayName, user.DOB, user.Sex,
		user.CreatedAt, user.LastSeenAt,
	)
	if err != nil {
		return fmt.Errorf("mirror user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) Update(ctx context.Context, id uuid.UUID, req models.UpdateProfileRequest) (*models.User, error) {
	row := s.pool.QueryRow(ctx, `
		UPDATE users SET
			display_name = COALESCE($2, display_name),
			dob = COALESCE($3::date, dob),
			sex = COALESCE($4, sex)
		WHERE id = $1
		RETURNING `+userColumns,
		id, req.DisplayName, req.DOB, req.Sex,
	)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	return user, nil
}

func (s *PostgresStore) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *PostgresStore) EnsureExists(ctx context.Context, id uuid.UUID, email string) error {
	now := time.Now().UTC()
	_, err := s.pool.Exec(ctx, `
		INSERT INTO users (id, email, created_at, last_seen_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (id) DO NOTHING`,
		id, email, now,
	)
	if err != nil {
		return fmt.Errorf("ensure user: %w", err)
	}
	return nil
}

func (s *PostgresStore) Contact(ctx context.Context, id uuid.UUID) (string, time.Time, error) {
	var email string
	var lastSeen time.Time
	err := s.pool.QueryRow(ctx, `SELECT email, last_seen_at FROM users WHERE id = $1`, id).
		Scan(&email, &lastSeen)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", time.Time{}, ErrNotFound
		}
		return "", time.Time{}, fmt.Errorf("user contact: %w", err)
	}
	return email, lastSeen, nil
}

func (s *PostgresStore) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pool.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count users: %w", err)
	}
	return n, nil
}

func (s *PostgresStore) CountSince(ctx context.Context, since time.Time) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT count(*) FROM users WHERE created_at >= $1`, since).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count recent users: %w", err)
	}
	return n, nil
}

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(&user.ID, &user.Email, &user.DisplayName, &user.DOB,
		&user.Sex, &user.CreatedAt, &user.LastSeenAt)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
