package report

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation for development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*Report
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory report store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*Report)}
}

func (s *MemoryStore) Create(ctx context.Context, r *Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := *r
	s.items[r.ID] = &cp
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, status Status) (*Report, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	r, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	r.Status = status
	r.UpdatedAt = time.Now().UTC()
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) ListByStatus(ctx context.Context, status Status) ([]*Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Report
	for _, r := range s.items {
		if status != "" && r.Status != status {
			continue
		}
		cp := *r
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) CountOpenAgainst(ctx context.Context, influencerUserID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	count := 0
	for _, r := range s.items {
		if r.InfluencerUserID == influencerUserID &&
			(r.Status == StatusOpen || r.Status == StatusUnderReview) {
			count++
		}
	}
	return count, nil
}
