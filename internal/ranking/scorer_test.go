package ranking

import (
	"math"
	"testing"
)

func TestScoreZeroHistory(t *testing.T) {
	b := Score(Stats{AvgResponseHours: defaultResponseHours}, DefaultWeights)

	if b.TotalScore != 0 {
		t.Errorf("empty history should score 0, got %d", b.TotalScore)
	}
	if b.RankingTier != TierRisingCreator {
		t.Errorf("empty history should sit at the base tier, got %s", b.RankingTier)
	}
	if b.NextTier == nil || *b.NextTier != TierEmergingPartner {
		t.Errorf("next tier should be Emerging Partner, got %v", b.NextTier)
	}
}

func TestScoreTopPerformer(t *testing.T) {
	b := Score(Stats{
		CompletedCollaborations: 120,
		PaidPromotions:          120,
		AverageRating:           4.9,
		ReviewCount:             80,
		CompletionRate:          99,
		AvgResponseHours:        4,
		Verified:                true,
	}, DefaultWeights)

	// 25 + 15 + 24.5 + 19.8 + 10 + 5 = 99.3
	if b.TotalScore != 99 {
		t.Errorf("expected total 99, got %d", b.TotalScore)
	}
	if b.RankingTier != TierKollabaryIcon {
		t.Errorf("expected Kollabary Icon, got %s", b.RankingTier)
	}
	if b.NextTier != nil {
		t.Errorf("top tier has no next tier, got %v", *b.NextTier)
	}
	if b.TierProgress != 100 {
		t.Errorf("top tier progress must be 100, got %d", b.TierProgress)
	}
	for dim, met := range b.RequirementsMet {
		if !met {
			t.Errorf("dimension %s should be met at the top", dim)
		}
	}
}

func TestScoreMidCareer(t *testing.T) {
	b := Score(Stats{
		CompletedCollaborations: 12,
		PaidPromotions:          12,
		AverageRating:           4.2,
		ReviewCount:             10,
		CompletionRate:          88,
		AvgResponseHours:        30,
		CancelledCount:          1,
		RejectedCount:           1,
	}, DefaultWeights)

	// 12.25 + 10.39 + 21 + 17.6 + 4.29 - 40 = 25.53
	if b.TotalScore != 26 {
		t.Errorf("expected total 26, got %d", b.TotalScore)
	}
	// Trusted Collaborator needs score 45; the penalties keep this influencer
	// at Emerging Partner despite 12 completed collaborations.
	if b.RankingTier != TierEmergingPartner {
		t.Errorf("expected Emerging Partner, got %s", b.RankingTier)
	}
	if b.Penalties.Score != -40 {
		t.Errorf("expected penalty score -40, got %g", b.Penalties.Score)
	}
	if b.Penalties.Count != 2 {
		t.Errorf("expected 2 penalties, got %d", b.Penalties.Count)
	}
}

func TestScoreClampedAtZero(t *testing.T) {
	b := Score(Stats{
		CompletedCollaborations: 2,
		AverageRating:           2.0,
		ReviewCount:             4,
		CompletionRate:          20,
		AvgResponseHours:        60,
		CancelledCount:          10,
		RejectedCount:           5,
	}, DefaultWeights)

	if b.TotalScore != 0 {
		t.Errorf("heavily penalized score must clamp at 0, got %d", b.TotalScore)
	}
	if b.RankingTier != TierRisingCreator {
		t.Errorf("expected base tier, got %s", b.RankingTier)
	}
}

func TestScoreNeverExceeds100(t *testing.T) {
	b := Score(Stats{
		CompletedCollaborations: 100000,
		PaidPromotions:          100000,
		AverageRating:           5,
		ReviewCount:             1000,
		CompletionRate:          100,
		AvgResponseHours:        0.1,
		Verified:                true,
	}, DefaultWeights)

	if b.TotalScore > 100 {
		t.Errorf("score must clamp at 100, got %d", b.TotalScore)
	}
}

func TestLowRatingPenaltyNeedsReviews(t *testing.T) {
	noReviews := Score(Stats{AverageRating: 0, ReviewCount: 0, AvgResponseHours: 48}, DefaultWeights)
	withReviews := Score(Stats{AverageRating: 2.5, ReviewCount: 3, AvgResponseHours: 48}, DefaultWeights)

	if noReviews.Penalties.Score != 0 {
		t.Errorf("no reviews means no low-rating penalty, got %g", noReviews.Penalties.Score)
	}
	if withReviews.Penalties.Score != DefaultWeights.LowRatingPenalty {
		t.Errorf("expected low-rating penalty %g, got %g",
			DefaultWeights.LowRatingPenalty, withReviews.Penalties.Score)
	}
}

func TestDiminishingReturnsCurve(t *testing.T) {
	if got := diminishing(0, completedSaturation, maxCompletedScore); got != 0 {
		t.Errorf("zero count must score 0, got %g", got)
	}
	if got := diminishing(50, completedSaturation, maxCompletedScore); math.Abs(got-25) > 1e-9 {
		t.Errorf("saturation count must score the max, got %g", got)
	}
	if got := diminishing(500, completedSaturation, maxCompletedScore); got != 25 {
		t.Errorf("curve must cap at the max, got %g", got)
	}

	// Strictly increasing below saturation.
	prev := -1.0
	for count := 0; count <= 50; count += 5 {
		got := diminishing(float64(count), completedSaturation, maxCompletedScore)
		if got <= prev {
			t.Fatalf("curve not increasing at count %d: %g <= %g", count, got, prev)
		}
		prev = got
	}
}

func TestResponseCurve(t *testing.T) {
	tests := []struct {
		hours float64
		want  float64
	}{
		{0, 10},
		{5.9, 10},
		{6, 10},
		{27, 5},
		{48, 0},
		{100, 0},
	}
	for _, tc := range tests {
		if got := responseCurve(tc.hours); math.Abs(got-tc.want) > 1e-9 {
			t.Errorf("responseCurve(%g) = %g, want %g", tc.hours, got, tc.want)
		}
	}
}

func TestScoreMonotonicInCompletedCollaborations(t *testing.T) {
	base := Stats{
		AverageRating:    4.0,
		ReviewCount:      5,
		CompletionRate:   90,
		AvgResponseHours: 12,
	}

	prev := -1
	for completed := 0; completed <= 60; completed += 3 {
		s := base
		s.CompletedCollaborations = completed
		s.PaidPromotions = completed
		b := Score(s, DefaultWeights)
		if b.TotalScore < prev {
			t.Fatalf("score decreased at %d completed: %d < %d", completed, b.TotalScore, prev)
		}
		prev = b.TotalScore
	}
}

func TestScoreIdempotent(t *testing.T) {
	s := Stats{
		CompletedCollaborations: 30,
		PaidPromotions:          30,
		AverageRating:           4.5,
		ReviewCount:             20,
		CompletionRate:          93,
		AvgResponseHours:        10,
		Verified:                true,
		CancelledCount:          1,
	}
	first := Score(s, DefaultWeights)
	second := Score(s, DefaultWeights)

	if first.TotalScore != second.TotalScore || first.RankingTier != second.RankingTier {
		t.Errorf("scoring is not deterministic: %d/%s vs %d/%s",
			first.TotalScore, first.RankingTier, second.TotalScore, second.RankingTier)
	}
}

func TestVerificationGatesUpperTiers(t *testing.T) {
	s := Stats{
		CompletedCollaborations: 60,
		PaidPromotions:          60,
		AverageRating:           4.7,
		ReviewCount:             40,
		CompletionRate:          96,
		AvgResponseHours:        8,
		Verified:                false,
	}

	unverified := Score(s, DefaultWeights)
	if unverified.RankingTier != TierTrustedCollaborator {
		t.Errorf("unverified influencer must stop at Trusted Collaborator, got %s", unverified.RankingTier)
	}

	s.Verified = true
	verified := Score(s, DefaultWeights)
	if verified.RankingTier != TierEliteCreator {
		t.Errorf("verification should unlock Elite Creator, got %s", verified.RankingTier)
	}
}

func TestTierProgressBounds(t *testing.T) {
	cases := []Stats{
		{AvgResponseHours: 48},
		{CompletedCollaborations: 5, AverageRating: 3.8, ReviewCount: 4, CompletionRate: 80, AvgResponseHours: 24},
		{CompletedCollaborations: 40, AverageRating: 4.5, ReviewCount: 30, CompletionRate: 93, AvgResponseHours: 10, Verified: true},
	}
	for i, s := range cases {
		b := Score(s, DefaultWeights)
		if b.TierProgress < 0 || b.TierProgress > 100 {
			t.Errorf("case %d: tier progress out of range: %d", i, b.TierProgress)
		}
	}
}

func TestTierProgressGrowsWithStats(t *testing.T) {
	weak := Score(Stats{AvgResponseHours: 48}, DefaultWeights)
	strong := Score(Stats{
		CompletedCollaborations: 2,
		PaidPromotions:          2,
		AverageRating:           3.4,
		ReviewCount:             2,
		CompletionRate:          70,
		AvgResponseHours:        10,
	}, DefaultWeights)

	if weak.RankingTier != TierRisingCreator || strong.RankingTier != TierRisingCreator {
		t.Fatalf("both fixtures should sit at the base tier: %s, %s", weak.RankingTier, strong.RankingTier)
	}
	if strong.TierProgress <= weak.TierProgress {
		t.Errorf("progress should grow with stats: %d <= %d", strong.TierProgress, weak.TierProgress)
	}
}

func TestZeroBreakdown(t *testing.T) {
	b := zeroBreakdown()

	if b.TotalScore != 0 || b.TierProgress != 0 {
		t.Errorf("zero breakdown must be all zero, got score %d progress %d", b.TotalScore, b.TierProgress)
	}
	if b.RankingTier != TierRisingCreator {
		t.Errorf("zero breakdown must sit at the base tier, got %s", b.RankingTier)
	}
	if b.ResponseSpeed.Hours != 0 || b.ResponseSpeed.Score != 0 {
		t.Errorf("zero breakdown response factor must be zero: %+v", b.ResponseSpeed)
	}
}

func TestTierGuideOrdering(t *testing.T) {
	guide := TierGuide()
	if len(guide) != 6 {
		t.Fatalf("expected 6 tiers, got %d", len(guide))
	}
	if guide[0].Name != TierRisingCreator || guide[5].Name != TierKollabaryIcon {
		t.Errorf("ladder out of order: %s ... %s", guide[0].Name, guide[5].Name)
	}
	for i := 1; i < len(guide); i++ {
		if guide[i].Requirements.MinScore <= guide[i-1].Requirements.MinScore {
			t.Errorf("minScore must strictly increase at %s", guide[i].Name)
		}
	}
}
