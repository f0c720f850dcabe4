package collab

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type recalcRecorder struct {
	mu    sync.Mutex
	calls []string
}

func (r *recalcRecorder) RecalculateAsync(userID string) {
	r.mu.Lock()
	r.calls = append(r.calls, userID)
	r.mu.Unlock()
}

func (r *recalcRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func newTestService() (*Service, *recalcRecorder) {
	rec := &recalcRecorder{}
	return NewService(NewMemoryStore(), rec, nil), rec
}

func mustCreate(t *testing.T, svc *Service) *Collaboration {
	t.Helper()
	c, err := svc.Create(context.Background(), "brand", CreateRequest{
		InfluencerID: "creator",
		Title:        "Spring campaign",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	return c
}

func TestCreateStartsRequested(t *testing.T) {
	svc, rec := newTestService()
	c := mustCreate(t, svc)

	if c.Status != StatusRequested {
		t.Errorf("new collaboration must be REQUESTED, got %s", c.Status)
	}
	if rec.count() != 0 {
		t.Error("creation must not trigger a recalculation")
	}
}

func TestCreateRejectsSelfCollaboration(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.Create(context.Background(), "brand", CreateRequest{
		InfluencerID: "brand",
		Title:        "Self deal",
	})
	if !errors.Is(err, ErrInvalidUpdate) {
		t.Fatalf("expected ErrInvalidUpdate, got %v", err)
	}
}

func TestGetHiddenFromOutsiders(t *testing.T) {
	svc, _ := newTestService()
	c := mustCreate(t, svc)
	ctx := context.Background()

	if _, err := svc.Get(ctx, c.ID, "creator"); err != nil {
		t.Errorf("participant read should pass: %v", err)
	}
	if _, err := svc.Get(ctx, c.ID, "stranger"); !errors.Is(err, ErrForbidden) {
		t.Errorf("outsider read should be forbidden, got %v", err)
	}
}

func TestFullLifecycleTriggersRecalc(t *testing.T) {
	svc, rec := newTestService()
	c := mustCreate(t, svc)
	ctx := context.Background()

	steps := []struct {
		caller string
		to     Status
	}{
		{"creator", StatusAccepted},
		{"brand", StatusInProgress},
		{"creator", StatusCompleted},
	}
	for _, step := range steps {
		updated, err := svc.UpdateStatus(ctx, c.ID, step.caller, step.to)
		if err != nil {
			t.Fatalf("%s -> %s: %v", step.caller, step.to, err)
		}
		if updated.Status != step.to {
			t.Fatalf("status not applied, got %s", updated.Status)
		}
	}

	if got := rec.count(); got != len(steps) {
		t.Errorf("expected %d recalculations, got %d", len(steps), got)
	}
}

func TestUpdateStatusRejectsInvalidEdge(t *testing.T) {
	svc, _ := newTestService()
	c := mustCreate(t, svc)

	_, err := svc.UpdateStatus(context.Background(), c.ID, "creator", StatusCompleted)
	if !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}

func TestUpdateStatusRejectsOutsider(t *testing.T) {
	svc, _ := newTestService()
	c := mustCreate(t, svc)

	_, err := svc.UpdateStatus(context.Background(), c.ID, "stranger", StatusCancelled)
	if !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestContentEditRequesterOnly(t *testing.T) {
	svc, _ := newTestService()
	c := mustCreate(t, svc)
	ctx := context.Background()
	title := "Updated title"

	if _, err := svc.Update(ctx, c.ID, "creator", UpdateRequest{Title: &title}); !errors.Is(err, ErrForbidden) {
		t.Errorf("influencer content edit should be forbidden, got %v", err)
	}

	updated, err := svc.Update(ctx, c.ID, "brand", UpdateRequest{Title: &title})
	if err != nil {
		t.Fatalf("requester edit: %v", err)
	}
	if updated.Title != title {
		t.Errorf("title not applied: %q", updated.Title)
	}
}

func TestNoEditsAfterCancellation(t *testing.T) {
	svc, _ := newTestService()
	c := mustCreate(t, svc)
	ctx := context.Background()

	if _, err := svc.UpdateStatus(ctx, c.ID, "brand", StatusCancelled); err != nil {
		t.Fatalf("cancel: %v", err)
	}

	title := "too late"
	if _, err := svc.Update(ctx, c.ID, "brand", UpdateRequest{Title: &title}); !errors.Is(err, ErrInvalidUpdate) {
		t.Fatalf("expected ErrInvalidUpdate, got %v", err)
	}
}

func TestProofOnlyAfterCompletion(t *testing.T) {
	svc, rec := newTestService()
	c := mustCreate(t, svc)
	ctx := context.Background()

	for _, step := range []struct {
		caller string
		to     Status
	}{
		{"creator", StatusAccepted},
		{"creator", StatusCompleted},
	} {
		if _, err := svc.UpdateStatus(ctx, c.ID, step.caller, step.to); err != nil {
			t.Fatalf("%s: %v", step.to, err)
		}
	}
	before := rec.count()

	// Mixing content with proof after completion is rejected wholesale.
	title := "sneaky"
	proof := []string{"https://example.com/post"}
	_, err := svc.Update(ctx, c.ID, "brand", UpdateRequest{Title: &title, ProofURLs: &proof})
	if !errors.Is(err, ErrInvalidUpdate) {
		t.Fatalf("mixed edit should fail, got %v", err)
	}

	updated, err := svc.Update(ctx, c.ID, "creator", UpdateRequest{ProofURLs: &proof})
	if err != nil {
		t.Fatalf("proof submission: %v", err)
	}
	if len(updated.ProofURLs) != 1 {
		t.Errorf("proof urls not stored: %v", updated.ProofURLs)
	}
	if updated.ProofSubmittedAt == nil {
		t.Error("proofSubmittedAt should default to submission time")
	}
	if rec.count() != before+1 {
		t.Error("proof submission should trigger a recalculation")
	}
}

func TestConcurrentTransitionLosesCleanly(t *testing.T) {
	store := NewMemoryStore()
	svc := NewService(store, nil, nil)
	c := mustCreate(t, svc)
	ctx := context.Background()

	if _, err := store.UpdateStatus(ctx, c.ID, StatusRequested, StatusCancelled); err != nil {
		t.Fatalf("seed race: %v", err)
	}

	// The stale accept sees REQUESTED but the store has moved on.
	_, err := store.UpdateStatus(ctx, c.ID, StatusRequested, StatusAccepted)
	if !errors.Is(err, ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
}

func TestListMineFiltersByStatus(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	a := mustCreate(t, svc)
	if _, err := svc.Create(ctx, "brand", CreateRequest{InfluencerID: "creator", Title: "Second"}); err != nil {
		t.Fatalf("create second: %v", err)
	}
	if _, err := svc.UpdateStatus(ctx, a.ID, "creator", StatusAccepted); err != nil {
		t.Fatalf("accept: %v", err)
	}

	accepted, err := svc.ListMine(ctx, "creator", StatusAccepted)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(accepted) != 1 || accepted[0].ID != a.ID {
		t.Errorf("expected only the accepted collaboration, got %v", accepted)
	}

	all, err := svc.ListMine(ctx, "creator", "")
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("expected 2 collaborations, got %d", len(all))
	}

	none, err := svc.ListMine(ctx, "stranger", "")
	if err != nil {
		t.Fatalf("list stranger: %v", err)
	}
	if len(none) != 0 {
		t.Errorf("stranger should see nothing, got %d", len(none))
	}
}

func TestUpdateValidatesDates(t *testing.T) {
	svc, _ := newTestService()
	c := mustCreate(t, svc)

	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	end := start.Add(-24 * time.Hour)
	_, err := svc.Update(context.Background(), c.ID, "brand", UpdateRequest{StartDate: &start, EndDate: &end})
	if !errors.Is(err, ErrInvalidUpdate) {
		t.Fatalf("expected ErrInvalidUpdate for inverted dates, got %v", err)
	}
}
