package collab

import (
	"context"
	"fmt"
	"time"

	"github.com/kollabary/backend/internal/idgen"
	"github.com/kollabary/backend/internal/logging"
	"github.com/kollabary/backend/internal/metrics"
	"github.com/kollabary/backend/internal/traces"
	"github.com/kollabary/backend/internal/validation"
)

// Recalculator triggers a ranking recalculation for an influencer without
// blocking the caller. The ranking service implements it.
type Recalculator interface {
	RecalculateAsync(userID string)
}

// Notifier pushes collaboration status changes to connected clients. The
// realtime hub implements it.
type Notifier interface {
	CollaborationStatusChanged(collabID, influencerID string, status string)
}

// Service implements collaboration business logic on top of a Store.
type Service struct {
	store    Store
	recalc   Recalculator
	notifier Notifier
}

// NewService creates a collaboration service. recalc and notifier may be nil
// in tests.
func NewService(store Store, recalc Recalculator, notifier Notifier) *Service {
	return &Service{store: store, recalc: recalc, notifier: notifier}
}

// Create opens a new collaboration request against an influencer. It always
// starts in REQUESTED.
func (s *Service) Create(ctx context.Context, requesterID string, req CreateRequest) (*Collaboration, error) {
	if requesterID == req.InfluencerID {
		return nil, fmt.Errorf("%w: cannot open a collaboration with yourself", ErrInvalidUpdate)
	}
	if errs := validation.Validate(
		validation.Required("title", req.Title),
		validation.MaxLength("title", req.Title, 200),
		validation.MaxLength("description", req.Description, validation.MaxStringLength),
	); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidUpdate, errs.Error())
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return nil, fmt.Errorf("%w: endDate is before startDate", ErrInvalidUpdate)
	}

	now := time.Now().UTC()
	c := &Collaboration{
		ID:            idgen.WithPrefix("col_"),
		RequesterID:   requesterID,
		InfluencerID:  req.InfluencerID,
		Title:         validation.SanitizeString(req.Title, 200),
		Description:   validation.SanitizeString(req.Description, validation.MaxStringLength),
		CollabType:    req.CollabType,
		ProposedTerms: req.ProposedTerms,
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Status:        StatusRequested,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.store.Create(ctx, c); err != nil {
		return nil, err
	}

	logging.L(ctx).Info("collaboration created",
		"collabId", c.ID, "requesterId", requesterID, "influencerId", c.InfluencerID)
	return c, nil
}

// Get returns a collaboration, visible only to its participants.
func (s *Service) Get(ctx context.Context, id, callerID string) (*Collaboration, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.Participant(callerID) {
		return nil, ErrForbidden
	}
	return c, nil
}

// ListMine returns the caller's collaborations on either side, newest first.
func (s *Service) ListMine(ctx context.Context, callerID string, status Status) ([]*Collaboration, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: unknown status %q", ErrInvalidUpdate, status)
	}
	return s.store.List(ctx, ListFilter{UserID: callerID, Status: status})
}

// UpdateStatus moves a collaboration through the lifecycle state machine.
// Role checks are enforced per transition; a successful change triggers an
// async ranking recalculation for the influencer.
func (s *Service) UpdateStatus(ctx context.Context, id, callerID string, to Status) (*Collaboration, error) {
	ctx, span := traces.StartSpan(ctx, "collab.transition",
		traces.CollaborationID(id), traces.Status(string(to)))
	defer span.End()

	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(traces.InfluencerID(c.InfluencerID))
	if !c.Participant(callerID) {
		return nil, ErrForbidden
	}
	if err := CheckTransition(c, callerID, to); err != nil {
		return nil, err
	}

	updated, err := s.store.UpdateStatus(ctx, id, c.Status, to)
	if err != nil {
		return nil, err
	}

	metrics.CollaborationTransitionsTotal.WithLabelValues(string(to)).Inc()
	logging.L(ctx).Info("collaboration status changed",
		"collabId", id, "from", c.Status, "to", to, "callerId", callerID)

	s.afterChange(updated)
	return updated, nil
}

// Update applies a partial content edit. Content fields are writable by the
// requester only and never once the collaboration is CANCELLED; after
// COMPLETED only the proof fields may change, and mixing in anything else
// rejects the whole request.
func (s *Service) Update(ctx context.Context, id, callerID string, req UpdateRequest) (*Collaboration, error) {
	c, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.Participant(callerID) {
		return nil, ErrForbidden
	}

	if c.Status == StatusCancelled {
		return nil, fmt.Errorf("%w: cancelled collaborations cannot be edited", ErrInvalidUpdate)
	}
	if c.Status == StatusCompleted && req.hasContentFields() {
		return nil, fmt.Errorf("%w: only proof fields may change after completion", ErrInvalidUpdate)
	}
	if req.hasContentFields() && callerID != c.RequesterID {
		return nil, fmt.Errorf("%w: only the requester can edit collaboration content", ErrForbidden)
	}

	proofSubmitted := req.hasProofFields()
	if req.Title != nil {
		title := validation.SanitizeString(*req.Title, 200)
		if title == "" {
			return nil, fmt.Errorf("%w: title cannot be empty", ErrInvalidUpdate)
		}
		c.Title = title
	}
	if req.Description != nil {
		c.Description = validation.SanitizeString(*req.Description, validation.MaxStringLength)
	}
	if req.CollabType != nil {
		c.CollabType = *req.CollabType
	}
	if req.ProposedTerms != nil {
		c.ProposedTerms = *req.ProposedTerms
	}
	if req.StartDate != nil {
		c.StartDate = req.StartDate
	}
	if req.EndDate != nil {
		c.EndDate = req.EndDate
	}
	if c.StartDate != nil && c.EndDate != nil && c.EndDate.Before(*c.StartDate) {
		return nil, fmt.Errorf("%w: endDate is before startDate", ErrInvalidUpdate)
	}
	if req.ProofURLs != nil {
		c.ProofURLs = *req.ProofURLs
	}
	if req.ProofSubmittedAt != nil {
		c.ProofSubmittedAt = req.ProofSubmittedAt
	} else if req.ProofURLs != nil && c.ProofSubmittedAt == nil {
		now := time.Now().UTC()
		c.ProofSubmittedAt = &now
	}

	c.UpdatedAt = time.Now().UTC()
	if err := s.store.Update(ctx, c); err != nil {
		return nil, err
	}

	if proofSubmitted {
		logging.L(ctx).Info("collaboration proof submitted", "collabId", id)
		if s.recalc != nil {
			s.recalc.RecalculateAsync(c.InfluencerID)
		}
	}
	return c, nil
}

// afterChange fans out side effects of a status change. Recalculation runs
// async; a failure there is logged by the ranking service, never rolled back
// into the transition.
func (s *Service) afterChange(c *Collaboration) {
	if s.recalc != nil {
		s.recalc.RecalculateAsync(c.InfluencerID)
	}
	if s.notifier != nil {
		s.notifier.CollaborationStatusChanged(c.ID, c.InfluencerID, string(c.Status))
	}
}
