// Package collab implements the collaboration lifecycle between brands and
// influencers: creation, the status state machine, content edits and proof
// submission.
package collab

import (
	"context"
	"errors"
	"time"
)

// Errors
var (
	ErrNotFound          = errors.New("collaboration not found")
	ErrForbidden         = errors.New("caller is not allowed to perform this action")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrInvalidUpdate     = errors.New("invalid collaboration update")
	ErrConflict          = errors.New("collaboration was modified concurrently")
)

// Status is the lifecycle state of a collaboration.
type Status string

const (
	StatusRequested  Status = "REQUESTED"
	StatusAccepted   Status = "ACCEPTED"
	StatusRejected   Status = "REJECTED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCancelled  Status = "CANCELLED"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusRequested, StatusAccepted, StatusRejected,
		StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// Terminal reports whether a collaboration in this status can still change
// status. COMPLETED collaborations accept proof edits but no transitions.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusRejected, StatusCancelled:
		return true
	}
	return false
}

// Collaboration is one brand-to-influencer engagement.
type Collaboration struct {
	ID               string         `json:"id"`
	RequesterID      string         `json:"requesterId"`
	InfluencerID     string         `json:"influencerId"`
	Title            string         `json:"title"`
	Description      string         `json:"description,omitempty"`
	CollabType       string         `json:"collabType,omitempty"`
	ProposedTerms    map[string]any `json:"proposedTerms,omitempty"`
	StartDate        *time.Time     `json:"startDate,omitempty"`
	EndDate          *time.Time     `json:"endDate,omitempty"`
	Status           Status         `json:"status"`
	ProofURLs        []string       `json:"proofUrls,omitempty"`
	ProofSubmittedAt *time.Time     `json:"proofSubmittedAt,omitempty"`
	CreatedAt        time.Time      `json:"createdAt"`
	UpdatedAt        time.Time      `json:"updatedAt"`
}

// Participant reports whether userID is a party to the collaboration.
func (c *Collaboration) Participant(userID string) bool {
	return userID != "" && (userID == c.RequesterID || userID == c.InfluencerID)
}

// ListFilter narrows a collaboration listing.
type ListFilter struct {
	UserID string // participant on either side
	Status Status // optional
}

// Store persists collaborations.
type Store interface {
	Create(ctx context.Context, c *Collaboration) error
	Get(ctx context.Context, id string) (*Collaboration, error)
	Update(ctx context.Context, c *Collaboration) error
	// UpdateStatus applies a status change only if the stored status still
	// equals from, so concurrent transitions cannot clobber each other.
	UpdateStatus(ctx context.Context, id string, from, to Status) (*Collaboration, error)
	List(ctx context.Context, f ListFilter) ([]*Collaboration, error)
	ListByInfluencer(ctx context.Context, influencerID string) ([]*Collaboration, error)
}

// CreateRequest is the request body for POST /v1/collaborations.
type CreateRequest struct {
	InfluencerID  string         `json:"influencerId" binding:"required"`
	Title         string         `json:"title" binding:"required"`
	Description   string         `json:"description"`
	CollabType    string         `json:"collabType"`
	ProposedTerms map[string]any `json:"proposedTerms"`
	StartDate     *time.Time     `json:"startDate"`
	EndDate       *time.Time     `json:"endDate"`
}

// UpdateRequest is a partial edit. Nil fields are left untouched.
type UpdateRequest struct {
	Title            *string         `json:"title"`
	Description      *string         `json:"description"`
	CollabType       *string         `json:"collabType"`
	ProposedTerms    *map[string]any `json:"proposedTerms"`
	StartDate        *time.Time      `json:"startDate"`
	EndDate          *time.Time      `json:"endDate"`
	ProofURLs        *[]string       `json:"proofUrls"`
	ProofSubmittedAt *time.Time      `json:"proofSubmittedAt"`
}

// hasContentFields reports whether the edit touches anything beyond proof.
func (r UpdateRequest) hasContentFields() bool {
	return r.Title != nil || r.Description != nil || r.CollabType != nil ||
		r.ProposedTerms != nil || r.StartDate != nil || r.EndDate != nil
}

// hasProofFields reports whether the edit touches the proof fields.
func (r UpdateRequest) hasProofFields() bool {
	return r.ProofURLs != nil || r.ProofSubmittedAt != nil
}

// UpdateStatusRequest is the request body for the status transition endpoint.
type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}
