package influencer

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"
)

// MemoryStore is an in-memory Store implementation for development and tests.
type MemoryStore struct {
	mu       sync.RWMutex
	byUserID map[string]*Profile
	byID     map[string]*Profile
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty in-memory profile store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byUserID: make(map[string]*Profile),
		byID:     make(map[string]*Profile),
	}
}

func (s *MemoryStore) Create(ctx context.Context, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	cp := clone(p)
	s.byUserID[cp.UserID] = cp
	s.byID[cp.ID] = cp
	return nil
}

func (s *MemoryStore) GetByUserID(ctx context.Context, userID string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byUserID[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return clone(p), nil
}

func (s *MemoryStore) GetByID(ctx context.Context, id string) (*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p, ok := s.byID[id]
	if !ok {
		return nil, ErrProfileNotFound
	}
	return clone(p), nil
}

func (s *MemoryStore) Update(ctx context.Context, p *Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byUserID[p.UserID]; !ok {
		return ErrProfileNotFound
	}
	cp := clone(p)
	s.byUserID[cp.UserID] = cp
	s.byID[cp.ID] = cp
	return nil
}

func (s *MemoryStore) UpdateRanking(ctx context.Context, userID string, score float64, tier string, avgRating float64, totalReviews int) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byUserID[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	p.RankingScore = score
	p.RankingTier = tier
	p.AvgRating = avgRating
	p.TotalReviews = totalReviews
	p.UpdatedAt = time.Now().UTC()
	return clone(p), nil
}

func (s *MemoryStore) UpdateRatingStats(ctx context.Context, userID string, avgRating float64, totalReviews int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byUserID[userID]
	if !ok {
		return ErrProfileNotFound
	}
	p.AvgRating = avgRating
	p.TotalReviews = totalReviews
	p.UpdatedAt = time.Now().UTC()
	return nil
}

func (s *MemoryStore) SetVerified(ctx context.Context, userID string, verified bool) (*Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	p, ok := s.byUserID[userID]
	if !ok {
		return nil, ErrProfileNotFound
	}
	p.Verified = verified
	p.UpdatedAt = time.Now().UTC()
	return clone(p), nil
}

func (s *MemoryStore) List(ctx context.Context) ([]*Profile, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]*Profile, 0, len(s.byUserID))
	for _, p := range s.byUserID {
		out = append(out, clone(p))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *MemoryStore) Search(ctx context.Context, q SearchQuery) ([]*Profile, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var matched []*Profile
	for _, p := range s.byUserID {
		if !matches(p, q) {
			continue
		}
		matched = append(matched, clone(p))
	}

	sort.Slice(matched, func(i, j int) bool {
		if matched[i].RankingScore != matched[j].RankingScore {
			return matched[i].RankingScore > matched[j].RankingScore
		}
		return matched[i].CreatedAt.Before(matched[j].CreatedAt)
	})

	total := len(matched)
	start := (q.Page - 1) * q.Limit
	if start >= total {
		return []*Profile{}, total, nil
	}
	end := start + q.Limit
	if end > total {
		end = total
	}
	return matched[start:end], total, nil
}

func matches(p *Profile, q SearchQuery) bool {
	if q.Niche != "" && !strings.EqualFold(p.Niche, q.Niche) {
		return false
	}
	if q.MinFollowers > 0 && p.FollowersCount < q.MinFollowers {
		return false
	}
	if q.Platform != "" {
		found := false
		for _, pl := range p.Platforms {
			if strings.EqualFold(string(pl.Kind), q.Platform) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func clone(p *Profile) *Profile {
	cp := *p
	if p.Platforms != nil {
		cp.Platforms = make([]Platform, len(p.Platforms))
		copy(cp.Platforms, p.Platforms)
	}
	if p.CollaborationTypes != nil {
		cp.CollaborationTypes = make([]string, len(p.CollaborationTypes))
		copy(cp.CollaborationTypes, p.CollaborationTypes)
	}
	return &cp
}
