package ranking

import (
	"errors"
	"fmt"
	"sync/atomic"
)

// ErrInvalidWeights marks a weight update that falls outside the allowed
// bounds. The table is left untouched when any field fails.
var ErrInvalidWeights = errors.New("invalid ranking weights")

// Weights tunes the scoring formula. Positive weights reward activity,
// negative ones punish cancellations, rejections and bad ratings.
type Weights struct {
	CompletedCollaborations float64 `json:"completedCollaborations"`
	PaidPromotions          float64 `json:"paidPromotions"`
	AverageRating           float64 `json:"averageRating"`
	ResponseSpeed           float64 `json:"responseSpeed"`
	CompletionRate          float64 `json:"completionRate"`
	VerificationBonus       float64 `json:"verificationBonus"`
	CancellationPenalty     float64 `json:"cancellationPenalty"`
	RejectionPenalty        float64 `json:"rejectionPenalty"`
	LowRatingPenalty        float64 `json:"lowRatingPenalty"`
}

// DefaultWeights is the production tuning the table starts with.
var DefaultWeights = Weights{
	CompletedCollaborations: 10,
	PaidPromotions:          15,
	AverageRating:           50,
	ResponseSpeed:           20,
	CompletionRate:          30,
	VerificationBonus:       100,
	CancellationPenalty:     -25,
	RejectionPenalty:        -15,
	LowRatingPenalty:        -50,
}

// WeightsUpdate is a partial weight change. Nil fields keep their current
// value.
type WeightsUpdate struct {
	CompletedCollaborations *float64 `json:"completedCollaborations"`
	PaidPromotions          *float64 `json:"paidPromotions"`
	AverageRating           *float64 `json:"averageRating"`
	ResponseSpeed           *float64 `json:"responseSpeed"`
	CompletionRate          *float64 `json:"completionRate"`
	VerificationBonus       *float64 `json:"verificationBonus"`
	CancellationPenalty     *float64 `json:"cancellationPenalty"`
	RejectionPenalty        *float64 `json:"rejectionPenalty"`
	LowRatingPenalty        *float64 `json:"lowRatingPenalty"`
}

// Table holds the live weight configuration. Readers get a consistent
// snapshot; updates swap the whole struct atomically so a recalculation
// never sees a half-applied change.
type Table struct {
	current atomic.Pointer[Weights]
}

// NewTable creates a table seeded with DefaultWeights.
func NewTable() *Table {
	t := &Table{}
	w := DefaultWeights
	t.current.Store(&w)
	return t
}

// Get returns a snapshot of the current weights.
func (t *Table) Get() Weights {
	return *t.current.Load()
}

// Update validates and applies a partial change. On any bounds violation the
// whole update is rejected and the table keeps its previous values.
func (t *Table) Update(u WeightsUpdate) (Weights, error) {
	next := t.Get()
	apply(&next.CompletedCollaborations, u.CompletedCollaborations)
	apply(&next.PaidPromotions, u.PaidPromotions)
	apply(&next.AverageRating, u.AverageRating)
	apply(&next.ResponseSpeed, u.ResponseSpeed)
	apply(&next.CompletionRate, u.CompletionRate)
	apply(&next.VerificationBonus, u.VerificationBonus)
	apply(&next.CancellationPenalty, u.CancellationPenalty)
	apply(&next.RejectionPenalty, u.RejectionPenalty)
	apply(&next.LowRatingPenalty, u.LowRatingPenalty)

	if err := next.validate(); err != nil {
		return Weights{}, err
	}
	t.current.Store(&next)
	return next, nil
}

func apply(dst *float64, src *float64) {
	if src != nil {
		*dst = *src
	}
}

func (w Weights) validate() error {
	checks := []struct {
		name     string
		value    float64
		min, max float64
	}{
		{"completedCollaborations", w.CompletedCollaborations, 0, 100},
		{"paidPromotions", w.PaidPromotions, 0, 100},
		{"averageRating", w.AverageRating, 0, 200},
		{"responseSpeed", w.ResponseSpeed, 0, 100},
		{"completionRate", w.CompletionRate, 0, 100},
		{"verificationBonus", w.VerificationBonus, 0, 500},
		{"cancellationPenalty", w.CancellationPenalty, -200, 0},
		{"rejectionPenalty", w.RejectionPenalty, -200, 0},
		{"lowRatingPenalty", w.LowRatingPenalty, -200, 0},
	}
	for _, c := range checks {
		if c.value < c.min || c.value > c.max {
			return fmt.Errorf("%w: %s must be between %g and %g, got %g",
				ErrInvalidWeights, c.name, c.min, c.max, c.value)
		}
	}
	return nil
}
