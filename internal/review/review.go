// Package review handles post-collaboration reviews left by requesters.
// Ratings feed the influencer's avgRating/totalReviews aggregates and, through
// them, the ranking engine.
package review

import (
	"context"
	"errors"
	"time"
)

// Errors
var (
	ErrNotFound      = errors.New("review not found")
	ErrForbidden     = errors.New("caller cannot review this collaboration")
	ErrAlreadyExists = errors.New("collaboration already reviewed")
	ErrInvalidReview = errors.New("invalid review")
)

// Review is one requester's rating of a completed collaboration.
type Review struct {
	ID               string    `json:"id"`
	CollaborationID  string    `json:"collaborationId"`
	ReviewerID       string    `json:"reviewerId"`
	InfluencerUserID string    `json:"influencerUserId"`
	Rating           int       `json:"rating"`
	Comment          string    `json:"comment,omitempty"`
	CreatedAt        time.Time `json:"createdAt"`
}

// Store persists reviews.
type Store interface {
	Create(ctx context.Context, r *Review) error
	GetByCollaboration(ctx context.Context, collaborationID string) (*Review, error)
	ListByInfluencer(ctx context.Context, influencerUserID string) ([]*Review, error)
	// RatingStats returns the average rating and review count for an
	// influencer, (0, 0) when there are no reviews.
	RatingStats(ctx context.Context, influencerUserID string) (avg float64, count int, err error)
}

// CreateRequest is the request body for POST /v1/reviews.
type CreateRequest struct {
	CollaborationID string `json:"collaborationId" binding:"required"`
	Rating          int    `json:"rating" binding:"required"`
	Comment         string `json:"comment"`
}
