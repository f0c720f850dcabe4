package ranking

import (
	"errors"
	"sync"
	"testing"
)

func f(v float64) *float64 { return &v }

func TestTableStartsWithDefaults(t *testing.T) {
	table := NewTable()
	if table.Get() != DefaultWeights {
		t.Errorf("table must start with defaults, got %+v", table.Get())
	}
}

func TestPartialUpdateKeepsOtherFields(t *testing.T) {
	table := NewTable()

	w, err := table.Update(WeightsUpdate{AverageRating: f(80)})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if w.AverageRating != 80 {
		t.Errorf("averageRating not applied: %g", w.AverageRating)
	}
	if w.CancellationPenalty != DefaultWeights.CancellationPenalty {
		t.Errorf("untouched field changed: %g", w.CancellationPenalty)
	}
}

func TestInvalidUpdateLeavesTableUnchanged(t *testing.T) {
	table := NewTable()
	before := table.Get()

	// A valid field mixed with an out-of-bounds one must not be applied.
	_, err := table.Update(WeightsUpdate{
		CompletedCollaborations: f(50),
		AverageRating:           f(300),
	})
	if !errors.Is(err, ErrInvalidWeights) {
		t.Fatalf("expected ErrInvalidWeights, got %v", err)
	}
	if table.Get() != before {
		t.Errorf("table changed after rejected update: %+v", table.Get())
	}
}

func TestPenaltyWeightsMustBeNegative(t *testing.T) {
	table := NewTable()

	_, err := table.Update(WeightsUpdate{CancellationPenalty: f(10)})
	if !errors.Is(err, ErrInvalidWeights) {
		t.Fatalf("positive penalty should be rejected, got %v", err)
	}
	if _, err := table.Update(WeightsUpdate{CancellationPenalty: f(-100)}); err != nil {
		t.Errorf("in-bounds penalty should pass: %v", err)
	}
}

func TestBoundsPerField(t *testing.T) {
	cases := []struct {
		name string
		u    WeightsUpdate
		ok   bool
	}{
		{"verification upper", WeightsUpdate{VerificationBonus: f(500)}, true},
		{"verification over", WeightsUpdate{VerificationBonus: f(501)}, false},
		{"rating upper", WeightsUpdate{AverageRating: f(200)}, true},
		{"rating negative", WeightsUpdate{AverageRating: f(-1)}, false},
		{"completion over", WeightsUpdate{CompletionRate: f(101)}, false},
		{"penalty lower", WeightsUpdate{LowRatingPenalty: f(-200)}, true},
		{"penalty under", WeightsUpdate{LowRatingPenalty: f(-201)}, false},
	}
	for _, tc := range cases {
		_, err := NewTable().Update(tc.u)
		if tc.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tc.name, err)
		}
		if !tc.ok && !errors.Is(err, ErrInvalidWeights) {
			t.Errorf("%s: expected ErrInvalidWeights, got %v", tc.name, err)
		}
	}
}

func TestConcurrentReadersSeeConsistentSnapshots(t *testing.T) {
	table := NewTable()
	done := make(chan struct{})
	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := 0; i < 500; i++ {
			v := float64(i % 100)
			if _, err := table.Update(WeightsUpdate{
				CompletedCollaborations: &v,
				PaidPromotions:          &v,
			}); err != nil {
				t.Errorf("update: %v", err)
				return
			}
		}
		close(done)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-done:
				return
			default:
			}
			// Both fields are written together, so a snapshot must never
			// show them apart.
			w := table.Get()
			if w.CompletedCollaborations != w.PaidPromotions {
				t.Errorf("torn read: %g vs %g", w.CompletedCollaborations, w.PaidPromotions)
				return
			}
		}
	}()

	wg.Wait()
}

func TestWeightsChangeScoring(t *testing.T) {
	s := Stats{
		CompletedCollaborations: 10,
		AverageRating:           4.0,
		ReviewCount:             5,
		CompletionRate:          90,
		AvgResponseHours:        12,
		CancelledCount:          2,
	}

	strict := DefaultWeights
	lenient := DefaultWeights
	lenient.CancellationPenalty = 0

	if Score(s, strict).TotalScore >= Score(s, lenient).TotalScore {
		t.Error("harsher cancellation penalty should lower the score")
	}
}
