package routine

import (
	"fmt"

	"github.com/hammamikhairi/ottolift/internal/domain"
)

func (l *Library) seed() {
	for _, r := range []*domain.Routine{pushDay(), fullBody()} {
		l.routines[r.ID] = r
	}
	l.log.Debug("seeded %d routines", len(l.routines))
}

// straight builds n identical normal sets.
func straight(prefix string, n, reps int, weight float64) []domain.PerformedSet {
	out := make([]domain.PerformedSet, n)
	for i := range out {
		out[i] = domain.PerformedSet{
			ID:     fmt.Sprintf("%s-%d", prefix, i+1),
			Reps:   reps,
			Weight: weight,
			Type:   domain.SetNormal,
		}
	}
	return out
}

func pushDay() *domain.Routine {
	warmup := domain.PerformedSet{ID: "bench-w", Reps: 12, Weight: 20, Type: domain.SetWarmup}
	return &domain.Routine{
		ID:   "push-day",
		Name: "Push Day",
		Kind: domain.RoutineTemplate,
		Exercises: []domain.WorkoutExercise{
			{
				ID:         "bench",
				ExerciseID: "bench-press",
				Sets:       append([]domain.PerformedSet{warmup}, straight("bench", 3, 8, 60)...),
				RestTime:   domain.RestTimes{domain.SetNormal: 120, domain.SetWarmup: 60},
			},
			{ID: "ohp", ExerciseID: "overhead-press", Sets: straight("ohp", 3, 8, 40), SupersetID: "arms"},
			{ID: "dips", ExerciseID: "dips", Sets: straight("dips", 3, 10, 0), SupersetID: "arms"},
			{
				ID:         "plank",
				ExerciseID: "plank",
				Sets: []domain.PerformedSet{
					{ID: "plank-1", Time: 45, Type: domain.SetTimed},
					{ID: "plank-2", Time: 45, Type: domain.SetTimed},
				},
			},
		},
		Supersets: map[string]domain.Superset{
			"arms": {Name: "Press & Dip", Color: "#e07a5f"},
		},
	}
}

func fullBody() *domain.Routine {
	return &domain.Routine{
		ID:   "full-body",
		Name: "Full Body",
		Kind: domain.RoutineTemplate,
		Exercises: []domain.WorkoutExercise{
			{ID: "squat", ExerciseID: "back-squat", Sets: straight("squat", 3, 5, 80)},
			{ID: "row", ExerciseID: "barbell-row", Sets: straight("row", 3, 8, 50), SupersetID: "pair"},
			{ID: "pullup", ExerciseID: "pull-up", Sets: straight("pullup", 3, 6, 0), SupersetID: "pair"},
			{ID: "rdl", ExerciseID: "romanian-deadlift", Sets: straight("rdl", 2, 10, 60)},
		},
		Supersets: map[string]domain.Superset{
			"pair": {Name: "Row & Pull", Color: "#3d405b"},
		},
	}
}
