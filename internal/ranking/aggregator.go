package ranking

import (
	"context"
	"fmt"
	"sort"

	"github.com/kollabary/backend/internal/collab"
	"github.com/kollabary/backend/internal/influencer"
)

// responseSampleSize caps how many recent collaborations feed the response
// speed average so ancient history stops mattering.
const responseSampleSize = 50

// defaultResponseHours is assumed until an influencer has answered anything.
const defaultResponseHours = 48.0

// ProfileSource reads influencer profiles.
type ProfileSource interface {
	GetByUserID(ctx context.Context, userID string) (*influencer.Profile, error)
	List(ctx context.Context) ([]*influencer.Profile, error)
}

// CollaborationSource reads an influencer's collaboration history.
type CollaborationSource interface {
	ListByInfluencer(ctx context.Context, influencerID string) ([]*collab.Collaboration, error)
}

// ReviewSource reads review aggregates.
type ReviewSource interface {
	RatingStats(ctx context.Context, influencerUserID string) (avg float64, count int, err error)
}

// ReportSource counts unresolved reports.
type ReportSource interface {
	CountOpenAgainst(ctx context.Context, influencerUserID string) (int, error)
}

// Aggregator assembles scoring stats from the domain stores.
type Aggregator struct {
	profiles ProfileSource
	collabs  CollaborationSource
	reviews  ReviewSource
	reports  ReportSource
}

// NewAggregator wires the aggregator to its sources.
func NewAggregator(profiles ProfileSource, collabs CollaborationSource, reviews ReviewSource, reports ReportSource) *Aggregator {
	return &Aggregator{profiles: profiles, collabs: collabs, reviews: reviews, reports: reports}
}

// Stats builds the scoring input for one influencer. It returns
// influencer.ErrProfileNotFound when no profile exists.
func (a *Aggregator) Stats(ctx context.Context, userID string) (Stats, *influencer.Profile, error) {
	profile, err := a.profiles.GetByUserID(ctx, userID)
	if err != nil {
		return Stats{}, nil, err
	}

	collabs, err := a.collabs.ListByInfluencer(ctx, userID)
	if err != nil {
		return Stats{}, nil, fmt.Errorf("load collaborations: %w", err)
	}

	var completed, cancelled, rejected, accepted, inProgress int
	var responded []*collab.Collaboration
	for _, c := range collabs {
		switch c.Status {
		case collab.StatusCompleted:
			completed++
		case collab.StatusCancelled:
			cancelled++
		case collab.StatusRejected:
			rejected++
		case collab.StatusAccepted:
			accepted++
		case collab.StatusInProgress:
			inProgress++
		}
		if c.Status != collab.StatusRequested {
			responded = append(responded, c)
		}
	}

	// Completion rate over everything that got past the request stage and
	// was not rejected outright.
	completionRate := 0.0
	if denom := accepted + inProgress + completed + cancelled; denom > 0 {
		completionRate = float64(completed) / float64(denom) * 100
	}

	avg, count, err := a.reviews.RatingStats(ctx, userID)
	if err != nil {
		return Stats{}, nil, fmt.Errorf("load rating stats: %w", err)
	}

	openReports, err := a.reports.CountOpenAgainst(ctx, userID)
	if err != nil {
		return Stats{}, nil, fmt.Errorf("count open reports: %w", err)
	}

	return Stats{
		CompletedCollaborations: completed,
		// Payment tracking is out of scope for now, so every completed
		// collaboration counts as a paid promotion.
		PaidPromotions:   completed,
		AverageRating:    avg,
		ReviewCount:      count,
		CompletionRate:   completionRate,
		AvgResponseHours: avgResponseHours(responded),
		Verified:         profile.Verified,
		CancelledCount:   cancelled,
		RejectedCount:    rejected,
		OpenReportCount:  openReports,
	}, profile, nil
}

// avgResponseHours averages request-to-first-answer latency over the most
// recent sample of answered collaborations.
func avgResponseHours(responded []*collab.Collaboration) float64 {
	if len(responded) == 0 {
		return defaultResponseHours
	}

	sort.Slice(responded, func(i, j int) bool {
		return responded[i].CreatedAt.After(responded[j].CreatedAt)
	})
	if len(responded) > responseSampleSize {
		responded = responded[:responseSampleSize]
	}

	var total float64
	for _, c := range responded {
		total += c.UpdatedAt.Sub(c.CreatedAt).Hours()
	}
	return total / float64(len(responded))
}
