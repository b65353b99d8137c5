package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"moreminutes/internal/user/models"
)

// InMemoryStore keeps user rows in memory for dev and unit tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	users map[uuid.UUID]*models.User
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{users: make(map[uuid.UUID]*models.User)}
}

// Upsert inserts or updates the row, refreshing last_seen_at. CreatedAt is
// preserved on update.
func (s *InMemoryStore) Upsert(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *user
	if existing, ok := s.users[user.ID]; ok {
		copied.CreatedAt = existing.CreatedAt
	}
	s.users[user.ID] = &copied
	return nil
}

// Mirror inserts or updates identity fields. CreatedAt and LastSeenAt are
// preserved on update so a background sweep never resets the activity clock.
func (s *InMemoryStore) Mirror(_ context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *user
	if existing, ok := s.users[user.ID]; ok {
		copied.CreatedAt = existing.CreatedAt
		copied.LastSeenAt = existing.LastSeenAt
	}
	s.users[user.ID] = &copied
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id uuid.UUID) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	copied := *user
	return &copied, nil
}

// Update applies a partial profile update. Nil fields are left untouched.
func (s *InMemoryStore) Update(_ context.Context, id uuid.UUID, req models.UpdateProfileRequest) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	user, ok := s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	if req.DisplayName != nil {
		user.DisplayName = req.DisplayName
	}
	if req.DOB != nil {
		user.DOB = req.DOB
	}
	if req.Sex != nil {
		user.Sex = req.Sex
	}
	copied := *user
	return &copied, nil
}

func (s *InMemoryStore) Delete(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; !ok {
		return ErrNotFound
	}
	delete(s.users, id)
	return nil
}

// EnsureExists inserts a minimal row when none exists yet.
func (s *InMemoryStore) EnsureExists(_ context.Context, id uuid.UUID, email string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[id]; ok {
		return nil
	}
	now := time.Now().UTC()
	s.users[id] = &models.User{ID: id, Email: email, CreatedAt: now, LastSeenAt: now}
	return nil
}

// Contact returns the user's email and last activity timestamp.
func (s *InMemoryStore) Contact(_ context.Context, id uuid.UUID) (string, time.Time, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[id]
	if !ok {
		return "", time.Time{}, ErrNotFound
	}
	return user.Email, user.LastSeenAt, nil
}

func (s *InMemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return int64(len(s.users)), nil
}

func (s *InMemoryStore) CountSince(_ context.Context, since time.Time) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, user := range s.users {
		if !user.CreatedAt.Before(since) {
			n++
		}
	}
	return n, nil
}
