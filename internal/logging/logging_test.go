package logging

import (
	"context"
	"testing"
)

func TestRequestIDRoundTrip(t *testing.T) {
	ctx := context.Background()

	if got := RequestID(ctx); got != "" {
		t.Errorf("expected empty request ID on fresh context, got %q", got)
	}

	ctx = WithRequestID(ctx, "req_123")
	if got := RequestID(ctx); got != "req_123" {
		t.Errorf("expected req_123, got %q", got)
	}
}

func TestFromContextFallsBackToDefault(t *testing.T) {
	if FromContext(context.Background()) == nil {
		t.Fatal("FromContext should never return nil")
	}
}

func TestNewLevels(t *testing.T) {
	for _, level := range []string{"debug", "info", "warn", "error", "bogus"} {
		if logger := New(level, "text"); logger == nil {
			t.Errorf("New(%q) returned nil", level)
		}
	}
	if logger := New("info", "json"); logger == nil {
		t.Error("New with json format returned nil")
	}
}

func TestLAddsRequestID(t *testing.T) {
	ctx := WithRequestID(context.Background(), "req_abc")
	ctx = WithLogger(ctx, New("info", "text"))
	if L(ctx) == nil {
		t.Fatal("L returned nil")
	}
}
