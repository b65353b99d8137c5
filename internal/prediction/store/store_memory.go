package store

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"

	"moreminutes/internal/prediction/models"
)

// InMemoryStore keeps prediction history in memory. Used in dev and unit
// tests; the Postgres store is the production path.
type InMemoryStore struct {
	mu      sync.RWMutex
	records map[uuid.UUID][]*models.PredictionRecord
}

func NewInMemory() *InMemoryStore {
	return &InMemoryStore{records: make(map[uuid.UUID][]*models.PredictionRecord)}
}

func (s *InMemoryStore) Save(_ context.Context, record *models.PredictionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *record
	s.records[record.UserID] = append(s.records[record.UserID], &copied)
	return nil
}

func (s *InMemoryStore) Latest(_ context.Context, userID uuid.UUID) (*models.PredictionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.records[userID]
	if len(records) == 0 {
		return nil, ErrNotFound
	}
	latest := records[0]
	for _, r := range records[1:] {
		if r.CreatedAt.After(latest.CreatedAt) {
			latest = r
		}
	}
	copied := *latest
	return &copied, nil
}

func (s *InMemoryStore) ListByUser(_ context.Context, userID uuid.UUID) ([]*models.PredictionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	records := s.records[userID]
	out := make([]*models.PredictionRecord, 0, len(records))
	for _, r := range records {
		copied := *r
		out = append(out, &copied)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *InMemoryStore) DeleteByUser(_ context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.records, userID)
	return nil
}

func (s *InMemoryStore) Count(_ context.Context) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var n int64
	for _, records := range s.records {
		n += int64(len(records))
	}
	return n, nil
}
