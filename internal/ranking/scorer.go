// Package ranking implements the influencer reputation engine: the scoring
// formula, the tier ladder, the tunable weight table and the recalculation
// service that keeps profile scores fresh.
package ranking

import "math"

// Curve maxima. Each factor saturates at its maximum so no single dimension
// can dominate the 0-100 total.
const (
	maxCompletedScore    = 25.0
	maxPaidScore         = 15.0
	maxRatingScore       = 25.0
	maxResponseScore     = 10.0
	maxCompletionScore   = 20.0
	maxVerificationScore = 5.0

	// Saturation points for the diminishing-returns curves.
	completedSaturation = 50.0
	paidSaturation      = 25.0

	// Response speed anchors, in hours.
	fastResponseHours = 6.0
	slowResponseHours = 48.0

	lowRatingThreshold = 3.0
)

// Stats is everything the scorer needs about one influencer, assembled by
// the Aggregator.
type Stats struct {
	CompletedCollaborations int
	PaidPromotions          int
	AverageRating           float64
	ReviewCount             int
	CompletionRate          float64 // percentage, 0-100
	AvgResponseHours        float64
	Verified                bool
	CancelledCount          int
	RejectedCount           int
	OpenReportCount         int
}

// CountFactor is a factor driven by an event count.
type CountFactor struct {
	Count    int     `json:"count"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"maxScore"`
}

// ValueFactor is a factor driven by a continuous value.
type ValueFactor struct {
	Value    float64 `json:"value"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"maxScore"`
}

// HoursFactor is a factor driven by a duration in hours.
type HoursFactor struct {
	Hours    float64 `json:"hours"`
	Score    float64 `json:"score"`
	MaxScore float64 `json:"maxScore"`
}

// PercentFactor is a factor driven by a percentage.
type PercentFactor struct {
	Percentage float64 `json:"percentage"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"maxScore"`
}

// VerifiedFactor is the binary verification bonus.
type VerifiedFactor struct {
	IsVerified bool    `json:"isVerified"`
	Score      float64 `json:"score"`
	MaxScore   float64 `json:"maxScore"`
}

// PenaltyBreakdown itemizes what the penalty tally is made of.
type PenaltyBreakdown struct {
	Cancellations int `json:"cancellations"`
	Rejections    int `json:"rejections"`
	OpenReports   int `json:"openReports"`
}

// Penalties is the negative side of the score.
type Penalties struct {
	Count     int              `json:"count"`
	Score     float64          `json:"score"`
	Breakdown PenaltyBreakdown `json:"breakdown"`
}

// Breakdown is the full ranking result for one influencer.
type Breakdown struct {
	CompletedCollaborations CountFactor     `json:"completedCollaborations"`
	PaidPromotions          CountFactor     `json:"paidPromotions"`
	AverageRating           ValueFactor     `json:"averageRating"`
	ResponseSpeed           HoursFactor     `json:"responseSpeed"`
	CompletionRate          PercentFactor   `json:"completionRate"`
	VerificationBonus       VerifiedFactor  `json:"verificationBonus"`
	Penalties               Penalties       `json:"penalties"`
	TotalScore              int             `json:"totalScore"`
	RankingTier             Tier            `json:"rankingTier"`
	NextTier                *Tier           `json:"nextTier"`
	TierProgress            int             `json:"tierProgress"`
	RequirementsMet         map[string]bool `json:"requirementsMet"`
	TierRequirements        Requirements    `json:"tierRequirements"`
}

// Score runs the full formula: per-factor curves, weighted penalties, total
// clamped to [0, 100], then tier assignment and progress.
func Score(s Stats, w Weights) *Breakdown {
	completedScore := diminishing(float64(s.CompletedCollaborations), completedSaturation, maxCompletedScore)
	paidScore := diminishing(float64(s.PaidPromotions), paidSaturation, maxPaidScore)
	ratingScore := s.AverageRating / 5 * maxRatingScore
	completionScore := s.CompletionRate / 100 * maxCompletionScore
	responseScore := responseCurve(s.AvgResponseHours)

	verificationScore := 0.0
	if s.Verified {
		verificationScore = maxVerificationScore
	}

	penaltyScore := float64(s.CancelledCount)*w.CancellationPenalty +
		float64(s.RejectedCount)*w.RejectionPenalty
	if s.AverageRating < lowRatingThreshold && s.ReviewCount > 0 {
		penaltyScore += w.LowRatingPenalty
	}

	raw := completedScore + paidScore + ratingScore + completionScore +
		responseScore + verificationScore + penaltyScore
	total := clampScore(int(math.Round(raw)))

	idx := assignTier(s, total)
	level := tierLadder[idx]

	var nextTier *Tier
	if idx < len(tierLadder)-1 {
		nt := tierLadder[idx+1].Name
		nextTier = &nt
	}

	return &Breakdown{
		CompletedCollaborations: CountFactor{s.CompletedCollaborations, completedScore, maxCompletedScore},
		PaidPromotions:          CountFactor{s.PaidPromotions, paidScore, maxPaidScore},
		AverageRating:           ValueFactor{s.AverageRating, ratingScore, maxRatingScore},
		ResponseSpeed:           HoursFactor{s.AvgResponseHours, responseScore, maxResponseScore},
		CompletionRate:          PercentFactor{s.CompletionRate, completionScore, maxCompletionScore},
		VerificationBonus:       VerifiedFactor{s.Verified, verificationScore, maxVerificationScore},
		Penalties: Penalties{
			Count: totalPenalties(s),
			Score: penaltyScore,
			Breakdown: PenaltyBreakdown{
				Cancellations: s.CancelledCount,
				Rejections:    s.RejectedCount,
				OpenReports:   s.OpenReportCount,
			},
		},
		TotalScore:       total,
		RankingTier:      level.Name,
		NextTier:         nextTier,
		TierProgress:     tierProgress(s, total, idx),
		RequirementsMet:  requirementsMet(s, total, level.Requirements),
		TierRequirements: level.Requirements,
	}
}

// zeroBreakdown is the result for an influencer with no profile yet: every
// factor at zero, base tier, no progress.
func zeroBreakdown() *Breakdown {
	base := tierLadder[0]
	next := tierLadder[1].Name
	return &Breakdown{
		CompletedCollaborations: CountFactor{0, 0, maxCompletedScore},
		PaidPromotions:          CountFactor{0, 0, maxPaidScore},
		AverageRating:           ValueFactor{0, 0, maxRatingScore},
		ResponseSpeed:           HoursFactor{0, 0, maxResponseScore},
		CompletionRate:          PercentFactor{0, 0, maxCompletionScore},
		VerificationBonus:       VerifiedFactor{false, 0, maxVerificationScore},
		Penalties:               Penalties{},
		TotalScore:              0,
		RankingTier:             base.Name,
		NextTier:                &next,
		TierProgress:            0,
		RequirementsMet:         requirementsMet(Stats{}, 0, base.Requirements),
		TierRequirements:        base.Requirements,
	}
}

// diminishing maps a count onto a square-root curve that reaches max at the
// saturation point and stays there.
func diminishing(count, saturation, max float64) float64 {
	if count <= 0 {
		return 0
	}
	score := math.Sqrt(count/saturation) * max
	return math.Min(score, max)
}

// responseCurve rewards fast answers: full marks under 6 hours, nothing past
// 48, linear in between.
func responseCurve(hours float64) float64 {
	if hours < fastResponseHours {
		return maxResponseScore
	}
	if hours > slowResponseHours {
		return 0
	}
	return (slowResponseHours - hours) / (slowResponseHours - fastResponseHours) * maxResponseScore
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
