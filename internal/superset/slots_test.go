package superset

import (
	"testing"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/idgen"
)

func TestEnsureSlotsFillsGaps(t *testing.T) {
	s := &domain.WorkoutSession{Exercises: []domain.WorkoutExercise{
		{ID: "A", Sets: []domain.PerformedSet{{ID: "a1", Reps: 5, Weight: 100, Type: domain.SetWarmup, IsComplete: true}}},
		{ID: "B"},
	}}

	created := EnsureSlots(s, []string{"A", "B", "missing"}, 2, idgen.Sequence("n"))
	if created != 5 {
		t.Fatalf("created %d slots, want 5", created)
	}

	a := s.Exercises[0].Sets
	if len(a) != 3 || a[2].Weight != 100 || a[2].Type != domain.SetWarmup || a[2].IsComplete {
		t.Fatalf("A slots %+v", a)
	}
	b := s.Exercises[1].Sets
	if len(b) != 3 || b[0].Type != domain.SetNormal || !b[0].IsWeightInherited {
		t.Fatalf("B slots %+v", b)
	}

	if again := EnsureSlots(s, []string{"A", "B"}, 2, idgen.Sequence("n")); again != 0 {
		t.Fatalf("second call created %d slots", again)
	}
}

func TestTotalRoundsIsStable(t *testing.T) {
	s := &domain.WorkoutSession{Exercises: []domain.WorkoutExercise{
		{ID: "A", SupersetID: "g", Sets: make([]domain.PerformedSet, 2)},
		{ID: "X", Sets: make([]domain.PerformedSet, 9)},
		{ID: "B", SupersetID: "g", Sets: make([]domain.PerformedSet, 4)},
	}}
	first := TotalRounds(s, "g")
	if first != 4 || TotalRounds(s, "g") != first {
		t.Fatalf("TotalRounds = %d, want 4 on every call", first)
	}
}

func TestDisplayRounds(t *testing.T) {
	tests := []struct {
		configured, round, want int
	}{
		{3, 0, 3},
		{3, 2, 3},
		{3, 3, 4},
		{0, 0, 1},
	}
	for _, tt := range tests {
		if got := DisplayRounds(tt.configured, tt.round); got != tt.want {
			t.Errorf("DisplayRounds(%d, %d) = %d, want %d", tt.configured, tt.round, got, tt.want)
		}
	}
}
