package collab

import (
	"errors"
	"testing"
)

func TestTransitionGraph(t *testing.T) {
	allowed := []struct{ from, to Status }{
		{StatusRequested, StatusAccepted},
		{StatusRequested, StatusRejected},
		{StatusRequested, StatusCancelled},
		{StatusAccepted, StatusInProgress},
		{StatusAccepted, StatusCompleted},
		{StatusAccepted, StatusCancelled},
		{StatusInProgress, StatusCompleted},
		{StatusInProgress, StatusCancelled},
	}
	for _, e := range allowed {
		if !CanTransition(e.from, e.to) {
			t.Errorf("%s -> %s should be allowed", e.from, e.to)
		}
	}

	denied := []struct{ from, to Status }{
		{StatusRequested, StatusInProgress},
		{StatusRequested, StatusCompleted},
		{StatusAccepted, StatusRejected},
		{StatusInProgress, StatusAccepted},
		{StatusCompleted, StatusCancelled},
		{StatusCompleted, StatusInProgress},
		{StatusRejected, StatusAccepted},
		{StatusCancelled, StatusRequested},
	}
	for _, e := range denied {
		if CanTransition(e.from, e.to) {
			t.Errorf("%s -> %s should be denied", e.from, e.to)
		}
	}
}

func TestTerminalStatuses(t *testing.T) {
	for _, s := range []Status{StatusCompleted, StatusRejected, StatusCancelled} {
		if !s.Terminal() {
			t.Errorf("%s should be terminal", s)
		}
	}
	for _, s := range []Status{StatusRequested, StatusAccepted, StatusInProgress} {
		if s.Terminal() {
			t.Errorf("%s should not be terminal", s)
		}
	}
}

func TestCheckTransitionRoles(t *testing.T) {
	c := &Collaboration{
		RequesterID:  "brand",
		InfluencerID: "creator",
		Status:       StatusRequested,
	}

	// Only the influencer answers a request.
	if err := CheckTransition(c, "creator", StatusAccepted); err != nil {
		t.Errorf("influencer accept should pass: %v", err)
	}
	if err := CheckTransition(c, "brand", StatusAccepted); !errors.Is(err, ErrForbidden) {
		t.Errorf("requester accept should be forbidden, got %v", err)
	}
	if err := CheckTransition(c, "brand", StatusRejected); !errors.Is(err, ErrForbidden) {
		t.Errorf("requester reject should be forbidden, got %v", err)
	}

	// Either party may cancel.
	if err := CheckTransition(c, "brand", StatusCancelled); err != nil {
		t.Errorf("requester cancel should pass: %v", err)
	}
	if err := CheckTransition(c, "creator", StatusCancelled); err != nil {
		t.Errorf("influencer cancel should pass: %v", err)
	}

	// Only the influencer completes.
	c.Status = StatusInProgress
	if err := CheckTransition(c, "brand", StatusCompleted); !errors.Is(err, ErrForbidden) {
		t.Errorf("requester complete should be forbidden, got %v", err)
	}
	if err := CheckTransition(c, "creator", StatusCompleted); err != nil {
		t.Errorf("influencer complete should pass: %v", err)
	}
}

func TestCheckTransitionRejectsUnknownStatus(t *testing.T) {
	c := &Collaboration{RequesterID: "brand", InfluencerID: "creator", Status: StatusRequested}
	if err := CheckTransition(c, "creator", Status("SHIPPED")); !errors.Is(err, ErrInvalidTransition) {
		t.Fatalf("expected ErrInvalidTransition, got %v", err)
	}
}
