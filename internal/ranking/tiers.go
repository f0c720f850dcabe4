package ranking

// Tier is a named reputation level.
type Tier string

const (
	TierRisingCreator       Tier = "Rising Creator"
	TierEmergingPartner     Tier = "Emerging Partner"
	TierTrustedCollaborator Tier = "Trusted Collaborator"
	TierProInfluencer       Tier = "Pro Influencer"
	TierEliteCreator        Tier = "Elite Creator"
	TierKollabaryIcon       Tier = "Kollabary Icon"
)

// Requirements are the gates an influencer must clear to hold a tier.
// MaxTotalPenalties of -1 means no limit.
type Requirements struct {
	MinScore             int     `json:"minScore"`
	MinCollaborations    int     `json:"minCollaborations"`
	MinAvgRating         float64 `json:"minAvgRating"`
	MinCompletionRate    float64 `json:"minCompletionRate"`
	MaxAvgResponseHours  float64 `json:"maxAvgResponseHours"`
	RequiresVerification bool    `json:"requiresVerification"`
	MaxTotalPenalties    int     `json:"maxTotalPenalties"`
}

// TierLevel pairs a tier name with its requirements.
type TierLevel struct {
	Name         Tier         `json:"name"`
	Description  string       `json:"description"`
	Requirements Requirements `json:"requirements"`
}

// tierLadder is ordered lowest to highest. The bottom tier gates nothing so
// every influencer holds at least Rising Creator.
var tierLadder = []TierLevel{
	{
		Name:        TierRisingCreator,
		Description: "New to the platform, building a first track record",
		Requirements: Requirements{
			MinScore: 0, MinCollaborations: 0, MinAvgRating: 0, MinCompletionRate: 0,
			MaxAvgResponseHours: 999, RequiresVerification: false, MaxTotalPenalties: -1,
		},
	},
	{
		Name:        TierEmergingPartner,
		Description: "Proven first collaborations with reliable delivery",
		Requirements: Requirements{
			MinScore: 25, MinCollaborations: 3, MinAvgRating: 3.5, MinCompletionRate: 75,
			MaxAvgResponseHours: 48, RequiresVerification: false, MaxTotalPenalties: 12,
		},
	},
	{
		Name:        TierTrustedCollaborator,
		Description: "Consistent quality work across a growing portfolio",
		Requirements: Requirements{
			MinScore: 45, MinCollaborations: 10, MinAvgRating: 4.0, MinCompletionRate: 85,
			MaxAvgResponseHours: 36, RequiresVerification: false, MaxTotalPenalties: 8,
		},
	},
	{
		Name:        TierProInfluencer,
		Description: "Verified professional with a strong completion record",
		Requirements: Requirements{
			MinScore: 65, MinCollaborations: 25, MinAvgRating: 4.3, MinCompletionRate: 90,
			MaxAvgResponseHours: 24, RequiresVerification: true, MaxTotalPenalties: 5,
		},
	},
	{
		Name:        TierEliteCreator,
		Description: "Top-rated creator brands actively seek out",
		Requirements: Requirements{
			MinScore: 80, MinCollaborations: 50, MinAvgRating: 4.6, MinCompletionRate: 95,
			MaxAvgResponseHours: 12, RequiresVerification: true, MaxTotalPenalties: 2,
		},
	},
	{
		Name:        TierKollabaryIcon,
		Description: "The highest distinction on Kollabary, near-flawless history",
		Requirements: Requirements{
			MinScore: 92, MinCollaborations: 100, MinAvgRating: 4.8, MinCompletionRate: 98,
			MaxAvgResponseHours: 6, RequiresVerification: true, MaxTotalPenalties: 0,
		},
	},
}

// TierGuide returns the full ladder, lowest tier first.
func TierGuide() []TierLevel {
	out := make([]TierLevel, len(tierLadder))
	copy(out, tierLadder)
	return out
}

// totalPenalties is the tally the ladder gates on.
func totalPenalties(s Stats) int {
	return s.CancelledCount + s.RejectedCount + s.OpenReportCount
}

// meetsRequirements checks every gate of one tier.
func meetsRequirements(s Stats, score int, req Requirements) bool {
	if score < req.MinScore {
		return false
	}
	if s.CompletedCollaborations < req.MinCollaborations {
		return false
	}
	if s.AverageRating < req.MinAvgRating {
		return false
	}
	if s.CompletionRate < req.MinCompletionRate {
		return false
	}
	if s.AvgResponseHours > req.MaxAvgResponseHours {
		return false
	}
	if req.RequiresVerification && !s.Verified {
		return false
	}
	if req.MaxTotalPenalties >= 0 && totalPenalties(s) > req.MaxTotalPenalties {
		return false
	}
	return true
}

// assignTier walks the ladder from the top and returns the index of the first
// tier whose gates all hold. The bottom tier is the unconditional fallback.
func assignTier(s Stats, score int) int {
	for i := len(tierLadder) - 1; i > 0; i-- {
		if meetsRequirements(s, score, tierLadder[i].Requirements) {
			return i
		}
	}
	return 0
}

// requirementsMet reports, per gating dimension, whether the influencer meets
// the given tier's own thresholds.
func requirementsMet(s Stats, score int, req Requirements) map[string]bool {
	return map[string]bool{
		"score":                   score >= req.MinScore,
		"completedCollaborations": s.CompletedCollaborations >= req.MinCollaborations,
		"averageRating":           s.AverageRating >= req.MinAvgRating,
		"completionRate":          s.CompletionRate >= req.MinCompletionRate,
		"responseTime":            s.AvgResponseHours <= req.MaxAvgResponseHours,
		"verified":                !req.RequiresVerification || s.Verified,
		"penalties":               req.MaxTotalPenalties < 0 || totalPenalties(s) <= req.MaxTotalPenalties,
	}
}

// tierProgress measures advancement toward the next tier as the mean of the
// normalized progress on every dimension whose threshold tightens. Binary
// dimensions contribute 0 or 100. At the top tier progress is always 100.
func tierProgress(s Stats, score int, idx int) int {
	if idx >= len(tierLadder)-1 {
		return 100
	}
	cur := tierLadder[idx].Requirements
	next := tierLadder[idx+1].Requirements

	var parts []float64

	if next.MinScore != cur.MinScore {
		parts = append(parts, ratio(float64(score), float64(cur.MinScore), float64(next.MinScore)))
	}
	if next.MinCollaborations != cur.MinCollaborations {
		parts = append(parts, ratio(float64(s.CompletedCollaborations),
			float64(cur.MinCollaborations), float64(next.MinCollaborations)))
	}
	if next.MinAvgRating != cur.MinAvgRating {
		parts = append(parts, ratio(s.AverageRating, cur.MinAvgRating, next.MinAvgRating))
	}
	if next.MinCompletionRate != cur.MinCompletionRate {
		parts = append(parts, ratio(s.CompletionRate, cur.MinCompletionRate, next.MinCompletionRate))
	}
	if next.MaxAvgResponseHours != cur.MaxAvgResponseHours {
		// Inverted dimension, lower is better. The same normalization works
		// because the thresholds descend.
		parts = append(parts, ratio(s.AvgResponseHours, cur.MaxAvgResponseHours, next.MaxAvgResponseHours))
	}
	if next.RequiresVerification != cur.RequiresVerification {
		if s.Verified {
			parts = append(parts, 100)
		} else {
			parts = append(parts, 0)
		}
	}
	if next.MaxTotalPenalties != cur.MaxTotalPenalties {
		if cur.MaxTotalPenalties < 0 {
			// No finite baseline to interpolate from, so the dimension is
			// binary: within the next tier's limit or not.
			if totalPenalties(s) <= next.MaxTotalPenalties {
				parts = append(parts, 100)
			} else {
				parts = append(parts, 0)
			}
		} else {
			parts = append(parts, ratio(float64(totalPenalties(s)),
				float64(cur.MaxTotalPenalties), float64(next.MaxTotalPenalties)))
		}
	}

	if len(parts) == 0 {
		return 100
	}
	var sum float64
	for _, p := range parts {
		sum += p
	}
	return int(sum/float64(len(parts)) + 0.5)
}

// ratio normalizes value between the current and next threshold, clamped to
// [0, 100]. It handles inverted dimensions where to < from.
func ratio(value, from, to float64) float64 {
	p := (value - from) / (to - from) * 100
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
