package health

import (
	"context"
	"errors"
	"testing"
)

func TestRunAllProbesPass(t *testing.T) {
	r := NewRegistry()
	r.Register("database", func(ctx context.Context) error { return nil })
	r.Register("ranking_worker", func(ctx context.Context) error { return nil })

	report := r.Run(context.Background())
	if !report.Healthy {
		t.Error("all probes pass, report should be healthy")
	}
	if len(report.Checks) != 2 {
		t.Fatalf("expected 2 results, got %d", len(report.Checks))
	}
	if report.Checks[0].Name != "database" || report.Checks[1].Name != "ranking_worker" {
		t.Errorf("registration order not preserved: %+v", report.Checks)
	}
}

func TestRunFailingProbeFailsReport(t *testing.T) {
	r := NewRegistry()
	r.Register("database", func(ctx context.Context) error {
		return errors.New("connection refused")
	})
	r.Register("ranking_worker", func(ctx context.Context) error { return nil })

	report := r.Run(context.Background())
	if report.Healthy {
		t.Error("one failing probe must fail the report")
	}
	if report.Checks[0].Error != "connection refused" {
		t.Errorf("failure reason should be preserved, got %q", report.Checks[0].Error)
	}
	if !report.Checks[1].Healthy {
		t.Error("passing probe must stay healthy in a failing report")
	}
}

func TestRunProbeTimeout(t *testing.T) {
	r := NewRegistry()
	r.Register("slow", func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})

	report := r.Run(context.Background())
	if report.Healthy {
		t.Error("a probe that outlives its deadline must report unhealthy")
	}
}

func TestRegisterReplacesByName(t *testing.T) {
	r := NewRegistry()
	r.Register("database", func(ctx context.Context) error {
		return errors.New("down")
	})
	r.Register("database", func(ctx context.Context) error { return nil })

	report := r.Run(context.Background())
	if !report.Healthy || len(report.Checks) != 1 {
		t.Errorf("re-registering a name should replace the probe, got %+v", report)
	}
}

func TestEmptyRegistryIsHealthy(t *testing.T) {
	report := NewRegistry().Run(context.Background())
	if !report.Healthy || len(report.Checks) != 0 {
		t.Errorf("empty registry should be healthy with no results, got %+v", report)
	}
}
