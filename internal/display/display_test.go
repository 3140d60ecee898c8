package display

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/google/go-cmp/cmp"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/engine"
	"github.com/hammamikhairi/ottolift/internal/superset"
)

func TestFmtDuration(t *testing.T) {
	tests := []struct {
		in   time.Duration
		want string
	}{
		{0, "0s"},
		{-3 * time.Second, "0s"},
		{45 * time.Second, "45s"},
		{1499 * time.Millisecond, "1s"},
		{90 * time.Second, "1m30s"},
		{10*time.Minute + 5*time.Second, "10m05s"},
	}
	for _, tt := range tests {
		if got := fmtDuration(tt.in); got != tt.want {
			t.Errorf("fmtDuration(%v) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestBarItems(t *testing.T) {
	st := engine.Status{
		Timers: []domain.TimerStatus{
			{Kind: "rest", Label: "Rest", RemainingMs: 75_000},
			{Kind: "quick", RemainingMs: 30_000, Paused: true},
		},
		Superset: &superset.State{Name: "Arms", Phase: superset.PhaseWork, Round: 1, DisplayRounds: 3},
	}

	got := barItems(st)
	want := []barItem{
		{label: "Rest", remaining: 75 * time.Second},
		{label: "Quick", remaining: 30 * time.Second, paused: true},
		{label: "Arms 2/3", work: true},
	}
	if diff := cmp.Diff(want, got, cmp.AllowUnexported(barItem{})); diff != "" {
		t.Fatalf("bar items mismatch (-want +got):\n%s", diff)
	}

	title := titleStr(got)
	for _, part := range []string{"Rest: 1m15s", "Quick: paused 30s", "Arms 2/3"} {
		if !strings.Contains(title, part) {
			t.Errorf("title %q missing %q", title, part)
		}
	}
}

func TestBarItemsSkipsTransitionPlayer(t *testing.T) {
	// The transition countdown already arrives as a timer status.
	st := engine.Status{
		Timers:   []domain.TimerStatus{{Kind: "superset", Label: "Next: dips", RemainingMs: 8_000}},
		Superset: &superset.State{Name: "Arms", Phase: superset.PhaseTransition},
	}
	if got := barItems(st); len(got) != 1 || got[0].label != "Next: dips" {
		t.Fatalf("got %+v", got)
	}
}

func TestCentre(t *testing.T) {
	out := centre("ab\nabcd\n", 10)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines", len(lines))
	}
	for _, l := range lines {
		if !strings.HasPrefix(l, "   ") {
			t.Errorf("line %q not padded", l)
		}
	}
}

// visibilitySource records focus changes forwarded by the model.
type visibilitySource struct {
	mu      sync.Mutex
	changes []bool
}

func (s *visibilitySource) Status() engine.Status { return engine.Status{} }

func (s *visibilitySource) SetVisible(_ context.Context, visible bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.changes = append(s.changes, visible)
}

func TestFocusChangesReachSource(t *testing.T) {
	src := &visibilitySource{}
	var m tea.Model = model{source: src}

	for _, msg := range []tea.Msg{tea.BlurMsg{}, tea.FocusMsg{}} {
		var cmd tea.Cmd
		m, cmd = m.Update(msg)
		if cmd == nil {
			t.Fatalf("%T produced no command", msg)
		}
		cmd()
	}

	if diff := cmp.Diff([]bool{false, true}, src.changes); diff != "" {
		t.Fatalf("visibility changes (-want +got):\n%s", diff)
	}
}
