package collab

import (
	"context"
	"sort"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation for development and tests.
type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]*Collaboration
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory collaboration store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]*Collaboration)}
}

func (s *MemoryStore) Create(ctx context.Context, c *Collaboration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items[c.ID] = cloneCollab(c)
	return nil
}

func (s *MemoryStore) Get(ctx context.Context, id string) (*Collaboration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	return cloneCollab(c), nil
}

func (s *MemoryStore) Update(ctx context.Context, c *Collaboration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.items[c.ID]; !ok {
		return ErrNotFound
	}
	s.items[c.ID] = cloneCollab(c)
	return nil
}

func (s *MemoryStore) UpdateStatus(ctx context.Context, id string, from, to Status) (*Collaboration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.items[id]
	if !ok {
		return nil, ErrNotFound
	}
	if c.Status != from {
		return nil, ErrConflict
	}
	c.Status = to
	c.UpdatedAt = time.Now().UTC()
	return cloneCollab(c), nil
}

func (s *MemoryStore) List(ctx context.Context, f ListFilter) ([]*Collaboration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Collaboration
	for _, c := range s.items {
		if f.UserID != "" && !c.Participant(f.UserID) {
			continue
		}
		if f.Status != "" && c.Status != f.Status {
			continue
		}
		out = append(out, cloneCollab(c))
	}
	sortNewestFirst(out)
	return out, nil
}

func (s *MemoryStore) ListByInfluencer(ctx context.Context, influencerID string) ([]*Collaboration, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []*Collaboration
	for _, c := range s.items {
		if c.InfluencerID == influencerID {
			out = append(out, cloneCollab(c))
		}
	}
	sortNewestFirst(out)
	return out, nil
}

func sortNewestFirst(cs []*Collaboration) {
	sort.Slice(cs, func(i, j int) bool {
		if !cs[i].CreatedAt.Equal(cs[j].CreatedAt) {
			return cs[i].CreatedAt.After(cs[j].CreatedAt)
		}
		return cs[i].ID < cs[j].ID
	})
}

func cloneCollab(c *Collaboration) *Collaboration {
	cp := *c
	if c.ProposedTerms != nil {
		cp.ProposedTerms = make(map[string]any, len(c.ProposedTerms))
		for k, v := range c.ProposedTerms {
			cp.ProposedTerms[k] = v
		}
	}
	if c.ProofURLs != nil {
		cp.ProofURLs = make([]string, len(c.ProofURLs))
		copy(cp.ProofURLs, c.ProofURLs)
	}
	if c.StartDate != nil {
		d := *c.StartDate
		cp.StartDate = &d
	}
	if c.EndDate != nil {
		d := *c.EndDate
		cp.EndDate = &d
	}
	if c.ProofSubmittedAt != nil {
		d := *c.ProofSubmittedAt
		cp.ProofSubmittedAt = &d
	}
	return &cp
}
