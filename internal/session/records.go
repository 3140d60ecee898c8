package session

import "github.com/hammamikhairi/ottolift/internal/domain"

// Bests are the best normal-set values seen for one exercise.
type Bests struct {
	Weight float64 `json:"weight"`
	Reps   int     `json:"reps"`
	Volume float64 `json:"volume"`
}

func (b *Bests) observe(s *domain.PerformedSet) {
	b.Weight = max(b.Weight, s.Weight)
	b.Reps = max(b.Reps, s.Reps)
	b.Volume = max(b.Volume, s.Volume())
}

// beats reports whether s improves on any single metric.
func (b Bests) beats(s *domain.PerformedSet) bool {
	return s.Weight > b.Weight || s.Reps > b.Reps || s.Volume() > b.Volume
}

// PersonalBests folds history into per-exercise bests, keyed by catalog
// exercise ID. Only completed normal sets count.
func PersonalBests(history []domain.HistoryEntry) map[string]Bests {
	out := make(map[string]Bests)
	for _, h := range history {
		for _, ex := range h.Exercises {
			for i := range ex.Sets {
				set := &ex.Sets[i]
				if !set.IsComplete || set.Type != domain.SetNormal {
					continue
				}
				b := out[ex.ExerciseID]
				b.observe(set)
				out[ex.ExerciseID] = b
			}
		}
	}
	return out
}

// CountPRs counts the completed normal sets that beat the baseline on
// weight, reps or volume. The baseline is fixed, so every set is judged
// only against prior sessions and the order of sets does not matter.
func CountPRs(baseline map[string]Bests, exercises []domain.WorkoutExercise) int {
	n := 0
	for _, ex := range exercises {
		b := baseline[ex.ExerciseID]
		for i := range ex.Sets {
			set := &ex.Sets[i]
			if set.IsComplete && set.Type == domain.SetNormal && b.beats(set) {
				n++
			}
		}
	}
	return n
}
