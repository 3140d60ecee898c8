// Package reorganize reorders and regroups a session's exercises in a
// scratch buffer and merges the result back onto the live session.
package reorganize

import (
	"fmt"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/idgen"
)

// Mode says where a dragged item lands relative to its target.
type Mode string

const (
	// ModeBefore drops the source in front of the target.
	ModeBefore Mode = "before"
	// ModeAfter drops the source behind the target.
	ModeAfter Mode = "after"
	// ModeGroup makes the source part of the target's superset, creating
	// one if the target is standalone.
	ModeGroup Mode = "group"
	// ModeUngroup takes the source out of its superset. Target is ignored.
	ModeUngroup Mode = "ungroup"
)

// Move is one drag-and-drop. Source and Target are contiguous index
// ranges: a single exercise or a whole superset.
type Move struct {
	Source []int `json:"source"`
	Target []int `json:"target,omitempty"`
	Mode   Mode  `json:"mode"`
}

// Layout is the structural view of a session: order and grouping.
type Layout struct {
	Exercises []domain.WorkoutExercise   `json:"exercises"`
	Supersets map[string]domain.Superset `json:"supersets"`
}

// Clone returns a deep copy.
func (l Layout) Clone() Layout {
	return Layout{
		Exercises: domain.CloneExercises(l.Exercises),
		Supersets: domain.CloneSupersets(l.Supersets),
	}
}

// Apply returns the layout after mv. l is not modified.
func Apply(l Layout, mv Move, newID idgen.Func) (Layout, error) {
	out := l.Clone()
	if out.Supersets == nil {
		out.Supersets = make(map[string]domain.Superset)
	}
	n := len(out.Exercises)

	lo, hi, err := span(mv.Source, n)
	if err != nil {
		return l, fmt.Errorf("source: %w", err)
	}

	if mv.Mode == ModeUngroup {
		for i := lo; i <= hi; i++ {
			out.Exercises[i].SupersetID = ""
		}
		return normalize(out), nil
	}

	tlo, thi, err := span(mv.Target, n)
	if err != nil {
		return l, fmt.Errorf("target: %w", err)
	}
	if tlo <= hi && lo <= thi {
		return l, fmt.Errorf("source %d-%d overlaps target %d-%d: %w", lo, hi, tlo, thi, domain.ErrInvalidMove)
	}

	wholeGroup := isWholeGroup(out.Exercises, lo, hi)

	moved := append([]domain.WorkoutExercise(nil), out.Exercises[lo:hi+1]...)
	rest := make([]domain.WorkoutExercise, 0, n-len(moved))
	rest = append(rest, out.Exercises[:lo]...)
	rest = append(rest, out.Exercises[hi+1:]...)

	// Target indices shift left once the source is taken out in front of them.
	if tlo > hi {
		tlo -= len(moved)
		thi -= len(moved)
	}

	var at int
	switch mv.Mode {
	case ModeBefore:
		at = tlo
	case ModeAfter, ModeGroup:
		at = thi + 1
	default:
		return l, fmt.Errorf("mode %q: %w", mv.Mode, domain.ErrInvalidMove)
	}

	if mv.Mode == ModeGroup {
		group := rest[tlo].SupersetID
		if group == "" {
			group = newID()
			out.Supersets[group] = domain.Superset{Name: "Superset"}
			for i := tlo; i <= thi; i++ {
				rest[i].SupersetID = group
			}
		}
		for i := range moved {
			moved[i].SupersetID = group
		}
	} else {
		var left, right string
		if at > 0 {
			left = rest[at-1].SupersetID
		}
		if at < len(rest) {
			right = rest[at].SupersetID
		}
		inside := left != "" && left == right

		targetGroup := rest[tlo].SupersetID
		if mv.Mode == ModeAfter {
			targetGroup = rest[thi].SupersetID
		}

		switch {
		case wholeGroup && inside:
			// A group never lands inside another one; slide past it.
			for at < len(rest) && rest[at].SupersetID == left {
				at++
			}
		case wholeGroup:
		default:
			group := ""
			if inside {
				group = left
			} else if targetGroup != "" && allIn(moved, targetGroup) {
				// Reordered at the edge of its own group.
				group = targetGroup
			}
			for i := range moved {
				moved[i].SupersetID = group
			}
		}
	}

	next := make([]domain.WorkoutExercise, 0, n)
	next = append(next, rest[:at]...)
	next = append(next, moved...)
	next = append(next, rest[at:]...)
	out.Exercises = next
	return normalize(out), nil
}

// span validates a contiguous ascending index range.
func span(idx []int, n int) (int, int, error) {
	if len(idx) == 0 {
		return 0, 0, fmt.Errorf("empty range: %w", domain.ErrInvalidMove)
	}
	for i, v := range idx {
		if v < 0 || v >= n {
			return 0, 0, fmt.Errorf("index %d out of range: %w", v, domain.ErrInvalidMove)
		}
		if i > 0 && v != idx[i-1]+1 {
			return 0, 0, fmt.Errorf("indices not contiguous: %w", domain.ErrInvalidMove)
		}
	}
	return idx[0], idx[len(idx)-1], nil
}

// isWholeGroup reports whether exs[lo..hi] is exactly one superset.
func isWholeGroup(exs []domain.WorkoutExercise, lo, hi int) bool {
	g := exs[lo].SupersetID
	if g == "" || hi == lo {
		return false
	}
	for i, ex := range exs {
		in := i >= lo && i <= hi
		if in != (ex.SupersetID == g) {
			return false
		}
	}
	return true
}

func allIn(exs []domain.WorkoutExercise, group string) bool {
	for _, ex := range exs {
		if ex.SupersetID != group {
			return false
		}
	}
	return true
}

// normalize pulls every superset's members together at the position of its
// first member, dissolves groups left with a single exercise, and keeps
// metadata only for groups that still exist.
func normalize(l Layout) Layout {
	count := make(map[string]int)
	for _, ex := range l.Exercises {
		if ex.SupersetID != "" {
			count[ex.SupersetID]++
		}
	}

	out := make([]domain.WorkoutExercise, 0, len(l.Exercises))
	emitted := make(map[string]bool)
	for _, ex := range l.Exercises {
		g := ex.SupersetID
		if g == "" || count[g] < 2 {
			ex.SupersetID = ""
			out = append(out, ex)
			continue
		}
		if emitted[g] {
			continue
		}
		emitted[g] = true
		for _, member := range l.Exercises {
			if member.SupersetID == g {
				out = append(out, member)
			}
		}
	}

	meta := make(map[string]domain.Superset, len(emitted))
	for g := range emitted {
		m, ok := l.Supersets[g]
		if !ok {
			m = domain.Superset{Name: "Superset"}
		}
		meta[g] = m
	}
	return Layout{Exercises: out, Supersets: meta}
}
