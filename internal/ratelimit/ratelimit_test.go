package ratelimit

import (
	"testing"
	"time"
)

func TestAllowWithinBurst(t *testing.T) {
	l := New(Config{RequestsPerMinute: 60, BurstSize: 5, CleanupInterval: time.Minute})
	defer l.Stop()

	for i := 0; i < 5; i++ {
		if !l.Allow("client") {
			t.Fatalf("request %d should be allowed within burst", i)
		}
	}

	if l.Allow("client") {
		t.Error("request beyond burst should be denied")
	}
}

func TestRefillOverTime(t *testing.T) {
	l := New(Config{RequestsPerMinute: 6000, BurstSize: 1, CleanupInterval: time.Minute})
	defer l.Stop()

	if !l.Allow("client") {
		t.Fatal("first request should be allowed")
	}
	if l.Allow("client") {
		t.Fatal("bucket should be empty")
	}

	// 100 req/sec refill rate: ~20ms restores a token
	time.Sleep(30 * time.Millisecond)
	if !l.Allow("client") {
		t.Error("token should have refilled")
	}
}

func TestIndependentKeys(t *testing.T) {
	l := New(Config{RequestsPerMinute: 60, BurstSize: 1, CleanupInterval: time.Minute})
	defer l.Stop()

	if !l.Allow("a") {
		t.Fatal("first request for a should pass")
	}
	if !l.Allow("b") {
		t.Error("key b should have its own bucket")
	}
}
