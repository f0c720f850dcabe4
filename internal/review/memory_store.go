package review

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is an in-memory Store implementation for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	byCollab map[string]*Review
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory review store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byCollab: make(map[string]*Review)}
}

func (s *MemoryStore) Create(ctx context.Context, r *Review) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byCollab[r.CollaborationID]; ok {
		return ErrAlreadyExists
	}
	cp := *r
	s.byCollab[r.CollaborationID] = &cp
	return nil
}

func (s *MemoryStore) GetByCollaboration(ctx context.Context, collaborationID string) (*Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	r, ok := s.byCollab[collaborationID]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *r
	return &cp, nil
}

func (s *MemoryStore) ListByInfluencer(ctx context.Context, influencerUserID string) ([]*Review, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Review
	for _, r := range s.byCollab {
		if r.InfluencerUserID == influencerUserID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) RatingStats(ctx context.Context, influencerUserID string) (float64, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var sum, count int
	for _, r := range s.byCollab {
		if r.InfluencerUserID == influencerUserID {
			sum += r.Rating
			count++
		}
	}
	if count == 0 {
		return 0, 0, nil
	}
	return float64(sum) / float64(count), count, nil
}
