// Package report handles trust-and-safety reports filed against influencers.
// Open reports count toward the ranking engine's penalty tally.
package report

import (
	"context"
	"errors"
	"time"
)

// Errors
var (
	ErrNotFound      = errors.New("report not found")
	ErrInvalidReport = errors.New("invalid report")
	ErrInvalidStatus = errors.New("invalid report status")
)

// Status is the triage state of a report.
type Status string

const (
	StatusOpen        Status = "OPEN"
	StatusUnderReview Status = "UNDER_REVIEW"
	StatusResolved    Status = "RESOLVED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusOpen, StatusUnderReview, StatusResolved:
		return true
	}
	return false
}

// Report is one complaint filed against an influencer.
type Report struct {
	ID               string    `json:"id"`
	ReporterID       string    `json:"reporterId"`
	InfluencerUserID string    `json:"influencerUserId"`
	Reason           string    `json:"reason"`
	Details          string    `json:"details,omitempty"`
	Status           Status    `json:"status"`
	CreatedAt        time.Time `json:"createdAt"`
	UpdatedAt        time.Time `json:"updatedAt"`
}

// Store persists reports.
type Store interface {
	Create(ctx context.Context, r *Report) error
	Get(ctx context.Context, id string) (*Report, error)
	UpdateStatus(ctx context.Context, id string, status Status) (*Report, error)
	ListByStatus(ctx context.Context, status Status) ([]*Report, error)
	// CountOpenAgainst counts reports against an influencer that are still
	// OPEN or UNDER_REVIEW.
	CountOpenAgainst(ctx context.Context, influencerUserID string) (int, error)
}

// CreateRequest is the request body for POST /v1/reports.
type CreateRequest struct {
	InfluencerUserID string `json:"influencerUserId" binding:"required"`
	Reason           string `json:"reason" binding:"required"`
	Details          string `json:"details"`
}

// UpdateStatusRequest is the request body for the admin triage endpoint.
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}
