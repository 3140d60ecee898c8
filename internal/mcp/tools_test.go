package mcp

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/engine"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

type fakeStatus struct{ st engine.Status }

func (f fakeStatus) Status() engine.Status { return f.st }

type fakeHistory struct{ entries []domain.HistoryEntry }

func (f *fakeHistory) Append(_ context.Context, e *domain.HistoryEntry) error {
	f.entries = append([]domain.HistoryEntry{*e}, f.entries...)
	return nil
}

func (f *fakeHistory) List(context.Context) ([]domain.HistoryEntry, error) {
	return f.entries, nil
}

func newHandlers(st engine.Status, entries ...domain.HistoryEntry) *handlers {
	return &handlers{
		status:  fakeStatus{st},
		history: &fakeHistory{entries: entries},
		log:     logger.New(logger.LevelOff, nil),
	}
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("got %d content items", len(res.Content))
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content is %T, want text", res.Content[0])
	}
	return tc.Text
}

func entry(id, routine string, bench ...domain.PerformedSet) domain.HistoryEntry {
	return domain.HistoryEntry{
		ID:          id,
		RoutineName: routine,
		Exercises:   []domain.WorkoutExercise{{ID: "e1", ExerciseID: "bench-press", Sets: bench}},
	}
}

func TestGetActiveSessionWithoutWorkout(t *testing.T) {
	h := newHandlers(engine.Status{})
	res, err := h.getActiveSession(context.Background(), call(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultText(t, res); got != "No workout in progress." {
		t.Errorf("text = %q", got)
	}
}

func TestGetTimers(t *testing.T) {
	h := newHandlers(engine.Status{Timers: []domain.TimerStatus{{Kind: "rest", RemainingMs: 5000}}})
	res, err := h.getTimers(context.Background(), call(nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out struct {
		Timers []domain.TimerStatus `json:"timers"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(out.Timers) != 1 || out.Timers[0].RemainingMs != 5000 {
		t.Errorf("timers = %+v", out.Timers)
	}
}

func TestListHistory(t *testing.T) {
	h := newHandlers(engine.Status{},
		entry("h3", "Push Day"),
		entry("h2", "Full Body"),
		entry("h1", "Push Day"),
	)

	tests := []struct {
		name string
		args map[string]any
		want []string
	}{
		{"defaults", nil, []string{"h3", "h2", "h1"}},
		{"limit", map[string]any{"limit": 2}, []string{"h3", "h2"}},
		{"filter", map[string]any{"routine": "push"}, []string{"h3", "h1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res, err := h.listHistory(context.Background(), call(tt.args))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var out []struct {
				ID string `json:"id"`
			}
			if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if len(out) != len(tt.want) {
				t.Fatalf("got %d entries, want %d", len(out), len(tt.want))
			}
			for i, id := range tt.want {
				if out[i].ID != id {
					t.Errorf("entry %d = %s, want %s", i, out[i].ID, id)
				}
			}
		})
	}

	res, _ := h.listHistory(context.Background(), call(map[string]any{"limit": 0}))
	if !res.IsError {
		t.Error("limit 0 should be rejected")
	}
}

func TestGetPersonalBests(t *testing.T) {
	h := newHandlers(engine.Status{},
		entry("h2", "Push Day",
			domain.PerformedSet{ID: "a", Weight: 100, Reps: 5, IsComplete: true, Type: domain.SetNormal},
			domain.PerformedSet{ID: "b", Weight: 120, Reps: 1, IsComplete: false, Type: domain.SetNormal},
		),
		entry("h1", "Push Day",
			domain.PerformedSet{ID: "c", Weight: 80, Reps: 10, IsComplete: true, Type: domain.SetNormal},
		),
	)

	res, err := h.getPersonalBests(context.Background(), call(map[string]any{"exercise": "bench-press"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	var out map[string]struct {
		Weight float64 `json:"weight"`
		Reps   int     `json:"reps"`
		Volume float64 `json:"volume"`
	}
	if err := json.Unmarshal([]byte(resultText(t, res)), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	b := out["bench-press"]
	if b.Weight != 100 || b.Reps != 10 || b.Volume != 800 {
		t.Errorf("bests = %+v, want weight 100, reps 10, volume 800", b)
	}

	res, _ = h.getPersonalBests(context.Background(), call(map[string]any{"exercise": "squat"}))
	if !res.IsError {
		t.Error("unknown exercise should be an error result")
	}
}

func TestActiveSessionResource(t *testing.T) {
	h := newHandlers(engine.Status{Session: &domain.WorkoutSession{ID: "s1", RoutineName: "Push Day"}})
	var req mcp.ReadResourceRequest
	req.Params.URI = activeSessionURI

	contents, err := h.activeSession(context.Background(), req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	tc, ok := contents[0].(mcp.TextResourceContents)
	if !ok {
		t.Fatalf("contents is %T", contents[0])
	}
	var s domain.WorkoutSession
	if err := json.Unmarshal([]byte(tc.Text), &s); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if s.ID != "s1" || tc.URI != activeSessionURI {
		t.Errorf("resource = %+v (uri %s)", s, tc.URI)
	}
}
