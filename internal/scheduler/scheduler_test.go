package scheduler

import (
	"context"
	"testing"
	"time"
)

func TestNextIntervalInRange(t *testing.T) {
	s := New(10, 5)
	seen := make(map[time.Duration]bool)
	for i := 0; i < 200; i++ {
		d := s.NextInterval()
		if d < 10*time.Second || d > 15*time.Second {
			t.Fatalf("interval %v out of range [10s, 15s]", d)
		}
		seen[d] = true
	}
	if len(seen) < 2 {
		t.Fatalf("expected non-degenerate jitter distribution, got %d distinct values", len(seen))
	}
}

func TestNextIntervalNoJitterIsExact(t *testing.T) {
	s := New(10, 0)
	if got := s.NextInterval(); got != 10*time.Second {
		t.Fatalf("NextInterval() = %v, want 10s", got)
	}
}

func TestSleepCancellable(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	start := time.Now()
	err := Sleep(ctx, time.Minute)
	if err == nil {
		t.Fatalf("expected cancellation error")
	}
	if time.Since(start) > time.Second {
		t.Fatalf("sleep did not return promptly on cancellation")
	}
}
