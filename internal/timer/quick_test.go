package timer

import (
	"context"
	"testing"
	"time"

	"github.com/hammamikhairi/ottolift/internal/logger"
)

func TestQuickTimerSurvivesSuspension(t *testing.T) {
	clk := newFakeClock()
	sched := &mockScheduler{}
	q := NewQuick(clk, sched, logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	if err := q.Start(ctx, 300, ""); err != nil {
		t.Fatalf("start: %v", err)
	}
	clk.Advance(250 * time.Second)
	q.Pause()

	// Process suspended for ten minutes.
	clk.Advance(600 * time.Second)
	if q.Tick() {
		t.Fatal("paused timer finished during suspension")
	}

	q.Resume(ctx)
	if got := q.Remaining(); got != 50_000 {
		t.Fatalf("remaining after resume = %dms, want 50000", got)
	}
	if got := sched.lastDelay(); got != 50*time.Second {
		t.Fatalf("notification delay = %s, want 50s", got)
	}

	clk.Advance(50 * time.Second)
	if !q.Tick() {
		t.Fatal("expected finish")
	}
	if q.Status() != nil {
		t.Fatal("finished timer still reports status")
	}
}

func TestQuickTimerStopCancelsNotification(t *testing.T) {
	sched := &mockScheduler{}
	q := NewQuick(newFakeClock(), sched, logger.New(logger.LevelOff, nil))

	q.Start(context.Background(), 60, "Plank")
	q.Stop()

	scheduled, cancelled := sched.counts()
	if scheduled != 1 || cancelled != 1 {
		t.Fatalf("scheduled=%d cancelled=%d, want 1/1", scheduled, cancelled)
	}
	if q.Running() {
		t.Fatal("stopped timer still running")
	}
}
