package review

import (
	"context"
	"fmt"
	"time"

	"github.com/kollabary/backend/internal/collab"
	"github.com/kollabary/backend/internal/idgen"
	"github.com/kollabary/backend/internal/logging"
	"github.com/kollabary/backend/internal/metrics"
	"github.com/kollabary/backend/internal/validation"
)

// CollaborationSource looks up the collaboration being reviewed.
type CollaborationSource interface {
	Get(ctx context.Context, id string) (*collab.Collaboration, error)
}

// ProfileStats writes review aggregates back to the influencer profile.
type ProfileStats interface {
	UpdateRatingStats(ctx context.Context, userID string, avgRating float64, totalReviews int) error
}

// Recalculator triggers a ranking recalculation without blocking the caller.
type Recalculator interface {
	RecalculateAsync(userID string)
}

// Service implements review business logic.
type Service struct {
	store    Store
	collabs  CollaborationSource
	profiles ProfileStats
	recalc   Recalculator
}

// NewService creates a review service. profiles and recalc may be nil in tests.
func NewService(store Store, collabs CollaborationSource, profiles ProfileStats, recalc Recalculator) *Service {
	return &Service{store: store, collabs: collabs, profiles: profiles, recalc: recalc}
}

// Create records a review. Only the requester of a COMPLETED collaboration
// may review it, once. The influencer's rating aggregates are refreshed and a
// ranking recalculation is kicked off.
func (s *Service) Create(ctx context.Context, reviewerID string, req CreateRequest) (*Review, error) {
	if !validation.IsValidRating(req.Rating) {
		return nil, fmt.Errorf("%w: rating must be between 1 and 5", ErrInvalidReview)
	}

	c, err := s.collabs.Get(ctx, req.CollaborationID)
	if err != nil {
		return nil, err
	}
	if c.RequesterID != reviewerID {
		return nil, fmt.Errorf("%w: only the requester can leave a review", ErrForbidden)
	}
	if c.Status != collab.StatusCompleted {
		return nil, fmt.Errorf("%w: collaboration is not completed", ErrInvalidReview)
	}

	r := &Review{
		ID:               idgen.WithPrefix("rev_"),
		CollaborationID:  c.ID,
		ReviewerID:       reviewerID,
		InfluencerUserID: c.InfluencerID,
		Rating:           req.Rating,
		Comment:          validation.SanitizeString(req.Comment, validation.MaxStringLength),
		CreatedAt:        time.Now().UTC(),
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	metrics.ReviewsCreatedTotal.Inc()

	avg, count, err := s.store.RatingStats(ctx, c.InfluencerID)
	if err != nil {
		logging.L(ctx).Error("rating stats refresh failed", "influencerId", c.InfluencerID, "error", err)
		return r, nil
	}
	if s.profiles != nil {
		if err := s.profiles.UpdateRatingStats(ctx, c.InfluencerID, avg, count); err != nil {
			logging.L(ctx).Error("profile rating update failed", "influencerId", c.InfluencerID, "error", err)
		}
	}
	if s.recalc != nil {
		s.recalc.RecalculateAsync(c.InfluencerID)
	}

	logging.L(ctx).Info("review created",
		"reviewId", r.ID, "collabId", c.ID, "rating", r.Rating)
	return r, nil
}

// ListForInfluencer returns all reviews left for an influencer, newest first.
func (s *Service) ListForInfluencer(ctx context.Context, influencerUserID string) ([]*Review, error) {
	return s.store.ListByInfluencer(ctx, influencerUserID)
}

// GetForCollaboration returns the review of a collaboration, if any.
func (s *Service) GetForCollaboration(ctx context.Context, collaborationID string) (*Review, error) {
	return s.store.GetByCollaboration(ctx, collaborationID)
}
