package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"moreminutes/internal/vault/models"
)

// InMemoryStore keeps vault metadata in memory for dev and unit tests.
type InMemoryStore struct {
	mu    sync.RWMutex
	items map[uuid.UUID]*models.Item
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{items: make(map[uuid.UUID]*models.Item)}
}

func (s *InMemoryStore) Insert(_ context.Context, item *models.Item) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *item
	s.items[item.ID] = &copied
	return nil
}

func (s *InMemoryStore) Get(_ context.Context, id, userID uuid.UUID) (*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	item, ok := s.items[id]
	if !ok || item.UserID != userID {
		return nil, ErrNotFound
	}
	copied := *item
	return &copied, nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Item
	for _, item := range s.items {
		if item.UserID == userID {
			copied := *item
			out = append(out, &copied)
		}
	}
	return out, nil
}

// ListDueFixedDate returns undelivered fixed-date items whose release date
// has passed.
func (s *InMemoryStore) ListDueFixedDate(_ context.Context, now time.Time) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Item
	for _, item := range s.items {
		if item.Delivered || item.Trigger != models.TriggerFixedDate || item.TriggerValue == nil {
			continue
		}
		if !item.TriggerValue.After(now) {
			copied := *item
			out = append(out, &copied)
		}
	}
	return out, nil
}

// ListUndeliveredInactivity returns undelivered inactivity-triggered items.
// The caller decides which owners have actually gone quiet.
func (s *InMemoryStore) ListUndeliveredInactivity(_ context.Context) ([]*models.Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []*models.Item
	for _, item := range s.items {
		if !item.Delivered && item.Trigger == models.TriggerInactivity {
			copied := *item
			out = append(out, &copied)
		}
	}
	return out, nil
}

func (s *InMemoryStore) MarkDelivered(_ context.Context, id uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok {
		return ErrNotFound
	}
	item.Delivered = true
	return nil
}

func (s *InMemoryStore) Delete(_ context.Context, id, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	item, ok := s.items[id]
	if !ok || item.UserID != userID {
		return ErrNotFound
	}
	delete(s.items, id)
	return nil
}

func (s *InMemoryStore) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, item := range s.items {
		if item.UserID == userID {
			delete(s.items, id)
		}
	}
	return nil
}

func (s *InMemoryStore) CountByType(_ context.Context) (map[models.ItemType]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	counts := make(map[models.ItemType]int64)
	for _, item := range s.items {
		counts[item.Type]++
	}
	return counts, nil
}
