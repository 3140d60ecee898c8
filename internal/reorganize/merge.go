package reorganize

import "github.com/hammamikhairi/ottolift/internal/domain"

// Merge lays the scratch structure over the live session. Set data always
// comes from live; only order and superset membership come from scratch.
// Exercises deleted from live meanwhile are dropped; exercises added to
// live meanwhile are appended in their live order.
func Merge(live *domain.WorkoutSession, scratch Layout) Layout {
	byID := make(map[string]*domain.WorkoutExercise, len(live.Exercises))
	for i := range live.Exercises {
		byID[live.Exercises[i].ID] = &live.Exercises[i]
	}

	out := Layout{
		Exercises: make([]domain.WorkoutExercise, 0, len(live.Exercises)),
		Supersets: domain.CloneSupersets(live.Supersets),
	}
	if out.Supersets == nil {
		out.Supersets = make(map[string]domain.Superset)
	}
	for id, meta := range scratch.Supersets {
		out.Supersets[id] = meta
	}

	placed := make(map[string]bool, len(scratch.Exercises))
	for _, s := range scratch.Exercises {
		ex, ok := byID[s.ID]
		if !ok {
			continue
		}
		merged := ex.Clone()
		merged.SupersetID = s.SupersetID
		out.Exercises = append(out.Exercises, merged)
		placed[s.ID] = true
	}
	for _, ex := range live.Exercises {
		if !placed[ex.ID] {
			out.Exercises = append(out.Exercises, ex.Clone())
		}
	}
	return normalize(out)
}
