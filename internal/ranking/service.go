package ranking

import (
	"context"
	"errors"
	"time"

	"github.com/kollabary/backend/internal/influencer"
	"github.com/kollabary/backend/internal/logging"
	"github.com/kollabary/backend/internal/metrics"
	"github.com/kollabary/backend/internal/traces"
)

// asyncTimeout bounds background recalculations kicked off by lifecycle
// events.
const asyncTimeout = 30 * time.Second

// ProfileWriter persists the ranking-owned profile fields.
type ProfileWriter interface {
	UpdateRanking(ctx context.Context, userID string, score float64, tier string, avgRating float64, totalReviews int) (*influencer.Profile, error)
}

// Notifier pushes ranking updates to connected clients. The realtime hub
// implements it.
type Notifier interface {
	RankingUpdated(userID string, score int, tier string)
}

// SweepResult summarizes a full recalculation pass.
type SweepResult struct {
	Processed int `json:"processed"`
	Errors    int `json:"errors"`
}

// Service is the ranking engine: it aggregates stats, scores them against
// the live weight table and writes the result back to profiles.
type Service struct {
	agg      *Aggregator
	weights  *Table
	profiles ProfileWriter
	notifier Notifier
}

// NewService creates a ranking service. notifier may be nil in tests.
func NewService(agg *Aggregator, weights *Table, profiles ProfileWriter, notifier Notifier) *Service {
	return &Service{agg: agg, weights: weights, profiles: profiles, notifier: notifier}
}

// ComputeBreakdown scores an influencer without persisting anything. An
// influencer with no profile gets the all-zero base tier result instead of
// an error.
func (s *Service) ComputeBreakdown(ctx context.Context, userID string) (*Breakdown, error) {
	stats, _, err := s.agg.Stats(ctx, userID)
	if errors.Is(err, influencer.ErrProfileNotFound) {
		return zeroBreakdown(), nil
	}
	if err != nil {
		return nil, err
	}
	return Score(stats, s.weights.Get()), nil
}

// Recalculate scores an influencer and persists the score, tier and rating
// aggregates onto the profile.
func (s *Service) Recalculate(ctx context.Context, userID string) (*influencer.Profile, error) {
	ctx, span := traces.StartSpan(ctx, "ranking.recalculate", traces.InfluencerID(userID))
	defer span.End()

	stats, _, err := s.agg.Stats(ctx, userID)
	if err != nil {
		metrics.RankingsRecalculatedTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	b := Score(stats, s.weights.Get())
	profile, err := s.profiles.UpdateRanking(ctx, userID,
		float64(b.TotalScore), string(b.RankingTier), stats.AverageRating, stats.ReviewCount)
	if err != nil {
		metrics.RankingsRecalculatedTotal.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.RankingsRecalculatedTotal.WithLabelValues("success").Inc()
	span.SetAttributes(traces.Tier(string(b.RankingTier)))
	logging.L(ctx).Debug("ranking recalculated",
		"userId", userID, "score", b.TotalScore, "tier", b.RankingTier)

	if s.notifier != nil {
		s.notifier.RankingUpdated(userID, b.TotalScore, string(b.RankingTier))
	}
	return profile, nil
}

// RecalculateAsync runs Recalculate in the background. Failures are logged,
// never surfaced to the event that triggered them.
func (s *Service) RecalculateAsync(userID string) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), asyncTimeout)
		defer cancel()
		if _, err := s.Recalculate(ctx, userID); err != nil {
			logging.L(ctx).Error("async recalculation failed", "userId", userID, "error", err)
		}
	}()
}

// RecalculateAll sweeps every profile sequentially. One bad profile does not
// stop the sweep; failures are counted and logged.
func (s *Service) RecalculateAll(ctx context.Context) (SweepResult, error) {
	start := time.Now()
	profiles, err := s.agg.profiles.List(ctx)
	if err != nil {
		return SweepResult{}, err
	}

	var result SweepResult
	for _, p := range profiles {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		if _, err := s.Recalculate(ctx, p.UserID); err != nil {
			result.Errors++
			logging.L(ctx).Error("sweep recalculation failed", "userId", p.UserID, "error", err)
			continue
		}
		result.Processed++
	}

	metrics.RankingSweepsTotal.Inc()
	metrics.RankingSweepDuration.Observe(time.Since(start).Seconds())
	logging.L(ctx).Info("ranking sweep finished",
		"processed", result.Processed, "errors", result.Errors,
		"duration", time.Since(start))
	return result, nil
}

// RecalculateAllAsync starts a sweep in the background and returns
// immediately.
func (s *Service) RecalculateAllAsync() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
		defer cancel()
		if _, err := s.RecalculateAll(ctx); err != nil {
			logging.L(ctx).Error("async ranking sweep failed", "error", err)
		}
	}()
}

// Weights returns a snapshot of the live weight table.
func (s *Service) Weights() Weights {
	return s.weights.Get()
}

// UpdateWeights applies a partial weight change. Future recalculations pick
// up the new table; existing scores are untouched until they recalculate.
func (s *Service) UpdateWeights(ctx context.Context, u WeightsUpdate) (Weights, error) {
	w, err := s.weights.Update(u)
	if err != nil {
		return Weights{}, err
	}
	metrics.WeightUpdatesTotal.Inc()
	logging.L(ctx).Info("ranking weights updated")
	return w, nil
}
