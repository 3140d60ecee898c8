package reorganize

import (
	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/idgen"
)

// Buffer is an open reorganize operation: a private copy of the session's
// structure that moves are applied to until it is saved or cancelled.
type Buffer struct {
	layout Layout
	newID  idgen.Func
	moves  int
}

// Begin snapshots the session's exercises into a new buffer.
func Begin(s *domain.WorkoutSession, newID idgen.Func) *Buffer {
	return &Buffer{
		layout: normalize(Layout{
			Exercises: domain.CloneExercises(s.Exercises),
			Supersets: domain.CloneSupersets(s.Supersets),
		}),
		newID: newID,
	}
}

// Apply performs one move on the buffer. On error the buffer is unchanged.
func (b *Buffer) Apply(mv Move) error {
	next, err := Apply(b.layout, mv, b.newID)
	if err != nil {
		return err
	}
	b.layout = next
	b.moves++
	return nil
}

// Layout returns a copy of the buffer's current structure.
func (b *Buffer) Layout() Layout {
	return b.layout.Clone()
}

// Moves returns how many moves have been applied.
func (b *Buffer) Moves() int {
	return b.moves
}

// Commit merges the buffer onto live, replacing its exercise order and
// superset metadata.
func (b *Buffer) Commit(live *domain.WorkoutSession) {
	merged := Merge(live, b.layout)
	live.Exercises = merged.Exercises
	live.Supersets = merged.Supersets
}
