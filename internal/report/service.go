package report

import (
	"context"
	"fmt"
	"time"

	"github.com/kollabary/backend/internal/idgen"
	"github.com/kollabary/backend/internal/logging"
	"github.com/kollabary/backend/internal/metrics"
	"github.com/kollabary/backend/internal/validation"
)

// Recalculator triggers a ranking recalculation without blocking the caller.
type Recalculator interface {
	RecalculateAsync(userID string)
}

// Service implements report business logic.
type Service struct {
	store  Store
	recalc Recalculator
}

// NewService creates a report service. recalc may be nil in tests.
func NewService(store Store, recalc Recalculator) *Service {
	return &Service{store: store, recalc: recalc}
}

// Create files a report against an influencer. New reports start OPEN and
// immediately weigh on the influencer's penalty tally.
func (s *Service) Create(ctx context.Context, reporterID string, req CreateRequest) (*Report, error) {
	if reporterID == req.InfluencerUserID {
		return nil, fmt.Errorf("%w: cannot report yourself", ErrInvalidReport)
	}
	if errs := validation.Validate(
		validation.Required("reason", req.Reason),
		validation.MaxLength("reason", req.Reason, 200),
		validation.MaxLength("details", req.Details, validation.MaxStringLength),
	); len(errs) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidReport, errs.Error())
	}

	now := time.Now().UTC()
	r := &Report{
		ID:               idgen.WithPrefix("rpt_"),
		ReporterID:       reporterID,
		InfluencerUserID: req.InfluencerUserID,
		Reason:           validation.SanitizeString(req.Reason, 200),
		Details:          validation.SanitizeString(req.Details, validation.MaxStringLength),
		Status:           StatusOpen,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if err := s.store.Create(ctx, r); err != nil {
		return nil, err
	}
	metrics.ReportsCreatedTotal.Inc()

	logging.L(ctx).Info("report filed",
		"reportId", r.ID, "influencerId", r.InfluencerUserID)
	if s.recalc != nil {
		s.recalc.RecalculateAsync(r.InfluencerUserID)
	}
	return r, nil
}

// UpdateStatus moves a report through triage. Resolving a report lifts its
// penalty, so a recalculation follows.
func (s *Service) UpdateStatus(ctx context.Context, id string, status Status) (*Report, error) {
	if !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	r, err := s.store.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	logging.L(ctx).Info("report status changed", "reportId", id, "status", status)
	if s.recalc != nil {
		s.recalc.RecalculateAsync(r.InfluencerUserID)
	}
	return r, nil
}

// List returns reports, optionally filtered by status, newest first.
func (s *Service) List(ctx context.Context, status Status) ([]*Report, error) {
	if status != "" && !status.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.store.ListByStatus(ctx, status)
}
