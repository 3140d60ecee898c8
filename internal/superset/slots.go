// Package superset drives a superset group through guided rounds: work on
// one exercise, a short transition, the next exercise, and so on until
// every round is done.
package superset

import (
	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/idgen"
)

// EnsureSlots makes sure each listed exercise has a set at index round,
// appending slots where they are missing. A new slot copies the values of
// the exercise's last set and marks them inherited. All exercises are
// updated in the same call so no reader can see a partly filled round.
// It returns how many slots were created.
func EnsureSlots(s *domain.WorkoutSession, exerciseIDs []string, round int, newID idgen.Func) int {
	created := 0
	for _, id := range exerciseIDs {
		_, ex := s.FindExercise(id)
		if ex == nil {
			continue
		}
		for len(ex.Sets) <= round {
			ex.Sets = append(ex.Sets, nextSlot(ex, newID()))
			created++
		}
	}
	return created
}

func nextSlot(ex *domain.WorkoutExercise, id string) domain.PerformedSet {
	slot := domain.PerformedSet{ID: id, Type: domain.SetNormal}
	if n := len(ex.Sets); n > 0 {
		last := ex.Sets[n-1]
		slot.Reps = last.Reps
		slot.Weight = last.Weight
		slot.Time = last.Time
		slot.Type = last.Type
	}
	slot.IsWeightInherited = true
	slot.IsRepsInherited = true
	slot.IsTimeInherited = true
	return slot
}

// Members returns the IDs of the exercises in a group, in session order.
func Members(s *domain.WorkoutSession, supersetID string) []string {
	idx := s.SupersetMembers(supersetID)
	out := make([]string, len(idx))
	for i, j := range idx {
		out[i] = s.Exercises[j].ID
	}
	return out
}

// TotalRounds is the largest set count among the group's exercises. Sets
// can be added outside the player, so callers recompute it on every read.
func TotalRounds(s *domain.WorkoutSession, supersetID string) int {
	total := 0
	for _, i := range s.SupersetMembers(supersetID) {
		if n := len(s.Exercises[i].Sets); n > total {
			total = n
		}
	}
	return total
}

// DisplayRounds never undercounts: a round the user has already reached
// is always shown, even beyond the configured plan.
func DisplayRounds(configured, round int) int {
	return max(configured, round+1)
}
