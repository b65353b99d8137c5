package store

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"moreminutes/internal/subscription/models"
)

// InMemoryStore keeps subscriptions in memory for dev and unit tests.
type InMemoryStore struct {
	mu   sync.RWMutex
	subs map[uuid.UUID][]*models.Subscription
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{subs: make(map[uuid.UUID][]*models.Subscription)}
}

// Upsert replaces the user's newest subscription row or appends the first
// one, mirroring the Postgres on-conflict behavior.
func (s *InMemoryStore) Upsert(_ context.Context, sub *models.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	copied := *sub
	existing := s.subs[sub.UserID]
	if len(existing) == 0 {
		s.subs[sub.UserID] = []*models.Subscription{&copied}
		return nil
	}
	copied.ID = existing[len(existing)-1].ID
	existing[len(existing)-1] = &copied
	return nil
}

// Newest returns the row with the latest renewal date.
func (s *InMemoryStore) Newest(_ context.Context, userID uuid.UUID) (*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := s.subs[userID]
	if len(subs) == 0 {
		return nil, ErrNotFound
	}
	newest := subs[0]
	for _, sub := range subs[1:] {
		if laterRenewal(sub, newest) {
			newest = sub
		}
	}
	copied := *newest
	return &copied, nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	subs := s.subs[userID]
	out := make([]*models.Subscription, 0, len(subs))
	for _, sub := range subs {
		copied := *sub
		out = append(out, &copied)
	}
	return out, nil
}

func (s *InMemoryStore) Deactivate(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, sub := range s.subs[userID] {
		sub.IsActive = false
	}
	return nil
}

func (s *InMemoryStore) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.subs, userID)
	return nil
}

// CountByTier counts active subscriptions grouped by tier.
func (s *InMemoryStore) CountByTier(_ context.Context) (map[models.Tier]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[models.Tier]int64)
	for _, subs := range s.subs {
		for _, sub := range subs {
			if sub.IsActive {
				counts[sub.Tier]++
			}
		}
	}
	return counts, nil
}

func laterRenewal(a, b *models.Subscription) bool {
	if a.RenewAt == nil {
		return false
	}
	if b.RenewAt == nil {
		return true
	}
	return a.RenewAt.After(*b.RenewAt)
}
