package timer

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

type stubView struct {
	session *domain.WorkoutSession
	running bool
}

func (v *stubView) Snapshot() *domain.WorkoutSession { return v.session.Clone() }
func (v *stubView) TimersRunning() bool              { return v.running }

func TestWatcherNudgesOncePerQuietStretch(t *testing.T) {
	clk := newFakeClock()
	view := &stubView{session: &domain.WorkoutSession{ID: "s1", LastUpdated: t0}}
	notifier := &mockNotifier{}
	w := NewWatcher(view, notifier, clk, logger.New(logger.LevelOff, nil), WithIdleAfter(10*time.Minute))

	tests := []struct {
		name    string
		advance time.Duration
		running bool
		want    bool
	}{
		{"fresh session", 2 * time.Minute, false, false},
		{"timer running", 20 * time.Minute, true, false},
		{"quiet", 0, false, true},
		{"already nudged", 5 * time.Minute, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clk.Advance(tt.advance)
			view.running = tt.running
			msg := w.buildMessage()
			if (msg != "") != tt.want {
				t.Fatalf("message %q, want nudge=%v", msg, tt.want)
			}
			if tt.want && !strings.Contains(msg, "Still training?") {
				t.Fatalf("unexpected message %q", msg)
			}
		})
	}

	// Activity resets the stretch.
	view.session.LastUpdated = clk.Now().UnixMilli()
	clk.Advance(11 * time.Minute)
	w.check(context.Background())
	if notifier.count() != 1 {
		t.Fatalf("expected one nudge for the new quiet stretch, got %d", notifier.count())
	}
}

func TestWatcherNoSession(t *testing.T) {
	w := NewWatcher(&stubView{}, &mockNotifier{}, newFakeClock(), logger.New(logger.LevelOff, nil))
	if msg := w.buildMessage(); msg != "" {
		t.Fatalf("expected silence, got %q", msg)
	}
}
