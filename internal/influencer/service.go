package influencer

import (
	"context"
	"errors"
	"time"

	"github.com/kollabary/backend/internal/idgen"
	"github.com/kollabary/backend/internal/logging"
)

// Recalculator triggers a ranking recalculation without blocking the caller.
// The ranking service implements it.
type Recalculator interface {
	RecalculateAsync(userID string)
}

// Service implements influencer profile business logic.
type Service struct {
	store  Store
	recalc Recalculator
}

// NewService creates an influencer service. recalc may be nil in tests.
func NewService(store Store, recalc Recalculator) *Service {
	return &Service{store: store, recalc: recalc}
}

// Get returns the profile for a user ID.
func (s *Service) Get(ctx context.Context, userID string) (*Profile, error) {
	return s.store.GetByUserID(ctx, userID)
}

// GetByID returns a profile by its entity ID.
func (s *Service) GetByID(ctx context.Context, id string) (*Profile, error) {
	return s.store.GetByID(ctx, id)
}

// Save creates or updates the caller's profile. Ranking fields and the
// verification flag are never writable through this path.
func (s *Service) Save(ctx context.Context, userID string, req SaveProfileRequest) (*Profile, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	availability := req.Availability
	if availability == "" {
		availability = string(AvailabilityOpen)
	}

	existing, err := s.store.GetByUserID(ctx, userID)
	switch {
	case err == nil:
		existing.Niche = req.Niche
		existing.Platforms = req.Platforms
		existing.FollowersCount = req.FollowersCount
		existing.EngagementRate = req.EngagementRate
		existing.CollaborationTypes = req.CollaborationTypes
		existing.Availability = availability
		existing.UpdatedAt = now
		if err := s.store.Update(ctx, existing); err != nil {
			return nil, err
		}
		logging.L(ctx).Debug("influencer profile updated", "userId", userID)
		return existing, nil

	case errors.Is(err, ErrProfileNotFound):
		p := &Profile{
			ID:                 idgen.WithPrefix("inf_"),
			UserID:             userID,
			Niche:              req.Niche,
			Platforms:          req.Platforms,
			FollowersCount:     req.FollowersCount,
			EngagementRate:     req.EngagementRate,
			CollaborationTypes: req.CollaborationTypes,
			Availability:       availability,
			CreatedAt:          now,
			UpdatedAt:          now,
		}
		if err := s.store.Create(ctx, p); err != nil {
			return nil, err
		}
		logging.L(ctx).Info("influencer profile created", "userId", userID, "profileId", p.ID)
		return p, nil

	default:
		return nil, err
	}
}

// Search returns a page of the influencer directory ordered by ranking score.
func (s *Service) Search(ctx context.Context, q SearchQuery) (*SearchResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 || q.Limit > 100 {
		q.Limit = 20
	}

	items, total, err := s.store.Search(ctx, q)
	if err != nil {
		return nil, err
	}

	totalPages := 0
	if total > 0 {
		totalPages = (total + q.Limit - 1) / q.Limit
	}
	return &SearchResult{
		Items: items,
		Meta:  PageMeta{Total: total, Page: q.Page, Limit: q.Limit, TotalPages: totalPages},
	}, nil
}

// SetVerified records an admin verification decision and kicks off a ranking
// recalculation, since verification gates the upper tiers.
func (s *Service) SetVerified(ctx context.Context, userID string, verified bool) (*Profile, error) {
	p, err := s.store.SetVerified(ctx, userID, verified)
	if err != nil {
		return nil, err
	}
	logging.L(ctx).Info("verification decision recorded", "userId", userID, "verified", verified)
	if s.recalc != nil {
		s.recalc.RecalculateAsync(userID)
	}
	return p, nil
}
