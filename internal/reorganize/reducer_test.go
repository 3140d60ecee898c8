package reorganize

import (
	"errors"
	"strings"
	"testing"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/idgen"
)

// layoutOf builds a layout from a compact notation like "A B:g C:g D".
func layoutOf(notation string) Layout {
	l := Layout{Supersets: map[string]domain.Superset{}}
	for _, tok := range strings.Fields(notation) {
		id, group, _ := strings.Cut(tok, ":")
		l.Exercises = append(l.Exercises, domain.WorkoutExercise{ID: id, SupersetID: group})
		if group != "" {
			l.Supersets[group] = domain.Superset{Name: strings.ToUpper(group)}
		}
	}
	return l
}

// render prints a layout in the same compact form.
func render(l Layout) string {
	parts := make([]string, len(l.Exercises))
	for i, ex := range l.Exercises {
		parts[i] = ex.ID
		if ex.SupersetID != "" {
			parts[i] += ":" + ex.SupersetID
		}
	}
	return strings.Join(parts, " ")
}

func TestApply(t *testing.T) {
	tests := []struct {
		name  string
		start string
		move  Move
		want  string
	}{
		{
			name:  "move down adjusts for removal",
			start: "A B C D",
			move:  Move{Source: []int{0}, Target: []int{2}, Mode: ModeAfter},
			want:  "B C A D",
		},
		{
			name:  "move up before",
			start: "A B C D",
			move:  Move{Source: []int{3}, Target: []int{1}, Mode: ModeBefore},
			want:  "A D B C",
		},
		{
			name:  "drop between members joins group",
			start: "A B:g C:g D",
			move:  Move{Source: []int{3}, Target: []int{2}, Mode: ModeBefore},
			want:  "A B:g D:g C:g",
		},
		{
			name:  "drag out of group leaves it",
			start: "A B:g C:g D:g",
			move:  Move{Source: []int{2}, Target: []int{0}, Mode: ModeBefore},
			want:  "C A B:g D:g",
		},
		{
			name:  "group of two dissolves when one leaves",
			start: "A:g B:g C",
			move:  Move{Source: []int{0}, Target: []int{2}, Mode: ModeAfter},
			want:  "B C A",
		},
		{
			name:  "reorder at edge of own group",
			start: "X A:g B:g C:g",
			move:  Move{Source: []int{3}, Target: []int{1}, Mode: ModeBefore},
			want:  "X C:g A:g B:g",
		},
		{
			name:  "whole group moves together",
			start: "A B:g C:g D",
			move:  Move{Source: []int{1, 2}, Target: []int{3}, Mode: ModeAfter},
			want:  "A D B:g C:g",
		},
		{
			name:  "whole group slides past another group",
			start: "A:g B:g C:h D:h",
			move:  Move{Source: []int{0, 1}, Target: []int{3}, Mode: ModeBefore},
			want:  "C:h D:h A:g B:g",
		},
		{
			name:  "group into standalone creates a group",
			start: "A B C",
			move:  Move{Source: []int{2}, Target: []int{0}, Mode: ModeGroup},
			want:  "A:n-1 C:n-1 B",
		},
		{
			name:  "group into existing group",
			start: "A B:g C:g D",
			move:  Move{Source: []int{0}, Target: []int{1, 2}, Mode: ModeGroup},
			want:  "B:g C:g A:g D",
		},
		{
			name:  "ungroup middle member keeps group contiguous",
			start: "A:g B:g C:g",
			move:  Move{Source: []int{1}, Mode: ModeUngroup},
			want:  "A:g C:g B",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(layoutOf(tt.start), tt.move, idgen.Sequence("n"))
			if err != nil {
				t.Fatalf("apply: %v", err)
			}
			if r := render(got); r != tt.want {
				t.Fatalf("got %q, want %q", r, tt.want)
			}
			for id := range got.Supersets {
				if len(got.Exercises) > 0 && !strings.Contains(render(got), ":"+id) {
					t.Fatalf("metadata kept for dissolved group %s", id)
				}
			}
		})
	}
}

func TestApplyRejectsBadMoves(t *testing.T) {
	start := layoutOf("A B C")
	tests := []struct {
		name string
		move Move
	}{
		{"empty source", Move{Target: []int{0}, Mode: ModeBefore}},
		{"out of range", Move{Source: []int{5}, Target: []int{0}, Mode: ModeBefore}},
		{"not contiguous", Move{Source: []int{0, 2}, Target: []int{1}, Mode: ModeAfter}},
		{"onto itself", Move{Source: []int{1}, Target: []int{1}, Mode: ModeAfter}},
		{"unknown mode", Move{Source: []int{0}, Target: []int{2}, Mode: "sideways"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Apply(start, tt.move, idgen.Sequence("n"))
			if !errors.Is(err, domain.ErrInvalidMove) {
				t.Fatalf("expected ErrInvalidMove, got %v", err)
			}
			if render(got) != "A B C" {
				t.Fatalf("layout changed on error: %s", render(got))
			}
		})
	}
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	start := layoutOf("A B:g C:g")
	Apply(start, Move{Source: []int{0}, Target: []int{1}, Mode: ModeGroup}, idgen.Sequence("n"))
	if render(start) != "A B:g C:g" {
		t.Fatalf("input mutated: %s", render(start))
	}
}
