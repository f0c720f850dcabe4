package ranking

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/kollabary/backend/internal/collab"
	"github.com/kollabary/backend/internal/influencer"
)

func TestStatsCompletionRate(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedProfile(t, "creator", false)

	// 3 completed, 1 cancelled, 1 in progress: 3/5 = 60%.
	// The rejected and requested ones stay out of the denominator.
	f.seedCollab(t, "col_a", "creator", collab.StatusCompleted, 2*time.Hour)
	f.seedCollab(t, "col_b", "creator", collab.StatusCompleted, 2*time.Hour)
	f.seedCollab(t, "col_c", "creator", collab.StatusCompleted, 2*time.Hour)
	f.seedCollab(t, "col_d", "creator", collab.StatusCancelled, 2*time.Hour)
	f.seedCollab(t, "col_e", "creator", collab.StatusInProgress, 2*time.Hour)
	f.seedCollab(t, "col_f", "creator", collab.StatusRejected, 2*time.Hour)
	f.seedCollab(t, "col_g", "creator", collab.StatusRequested, 0)

	agg := NewAggregator(f.profiles, f.collabs, f.reviews, f.reports)
	stats, _, err := agg.Stats(ctx, "creator")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}

	if stats.CompletedCollaborations != 3 {
		t.Errorf("completed = %d, want 3", stats.CompletedCollaborations)
	}
	if stats.CompletionRate != 60 {
		t.Errorf("completion rate = %g, want 60", stats.CompletionRate)
	}
	if stats.CancelledCount != 1 || stats.RejectedCount != 1 {
		t.Errorf("penalty counts wrong: %d cancelled, %d rejected",
			stats.CancelledCount, stats.RejectedCount)
	}
	if stats.PaidPromotions != stats.CompletedCollaborations {
		t.Errorf("paid promotions should mirror completed for now: %d vs %d",
			stats.PaidPromotions, stats.CompletedCollaborations)
	}
}

func TestStatsDefaultResponseHours(t *testing.T) {
	f := newFixture()
	f.seedProfile(t, "creator", false)
	// Only an unanswered request: no response signal yet.
	f.seedCollab(t, "col_a", "creator", collab.StatusRequested, 0)

	agg := NewAggregator(f.profiles, f.collabs, f.reviews, f.reports)
	stats, _, err := agg.Stats(context.Background(), "creator")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.AvgResponseHours != defaultResponseHours {
		t.Errorf("expected default %g hours, got %g", defaultResponseHours, stats.AvgResponseHours)
	}
	if stats.CompletionRate != 0 {
		t.Errorf("no concluded collaborations means 0%% completion, got %g", stats.CompletionRate)
	}
}

func TestStatsResponseSampleIsRecent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	f.seedProfile(t, "creator", false)

	// 60 old slow answers followed by 50 recent fast ones. Only the most
	// recent 50 may count.
	base := time.Now().UTC().Add(-1000 * time.Hour)
	for i := 0; i < 110; i++ {
		delay := time.Hour
		if i < 60 {
			delay = 80 * time.Hour
		}
		created := base.Add(time.Duration(i) * time.Hour)
		err := f.collabs.Create(ctx, &collab.Collaboration{
			ID:           fmt.Sprintf("col_%03d", i),
			RequesterID:  "brand",
			InfluencerID: "creator",
			Title:        "Campaign",
			Status:       collab.StatusAccepted,
			CreatedAt:    created,
			UpdatedAt:    created.Add(delay),
		})
		if err != nil {
			t.Fatalf("seed: %v", err)
		}
	}

	agg := NewAggregator(f.profiles, f.collabs, f.reviews, f.reports)
	stats, _, err := agg.Stats(ctx, "creator")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if stats.AvgResponseHours != 1 {
		t.Errorf("old slow answers should age out of the sample, got %g hours", stats.AvgResponseHours)
	}
}

func TestStatsMissingProfile(t *testing.T) {
	f := newFixture()
	agg := NewAggregator(f.profiles, f.collabs, f.reviews, f.reports)

	_, _, err := agg.Stats(context.Background(), "nobody")
	if !errors.Is(err, influencer.ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestStatsReadsVerificationFromProfile(t *testing.T) {
	f := newFixture()
	f.seedProfile(t, "creator", true)

	agg := NewAggregator(f.profiles, f.collabs, f.reviews, f.reports)
	stats, profile, err := agg.Stats(context.Background(), "creator")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if !stats.Verified || !profile.Verified {
		t.Error("verification flag should flow from the profile")
	}
}
