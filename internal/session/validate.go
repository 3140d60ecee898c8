package session

import (
	"context"

	"github.com/hammamikhairi/ottolift/internal/domain"
)

// Validate lists the completed sets that are missing required values.
// Timed sets need a time; other sets need reps, and a weight unless the
// catalog marks the exercise as bodyweight. Exercises the catalog does
// not know skip the weight check.
func Validate(ctx context.Context, s *domain.WorkoutSession, catalog domain.ExerciseCatalog) []domain.SetIssue {
	var issues []domain.SetIssue
	for _, ex := range s.Exercises {
		entry := lookup(ctx, catalog, ex.ExerciseID)
		for i, set := range ex.Sets {
			if !set.IsComplete {
				continue
			}
			issue := domain.SetIssue{ExerciseID: ex.ID, SetID: set.ID, SetIndex: i}
			switch {
			case set.Type == domain.SetTimed || (entry != nil && entry.Timed):
				if set.Time <= 0 {
					issue.Reason = "missing time"
				}
			case set.Reps <= 0:
				issue.Reason = "missing reps"
			case set.Weight <= 0 && entry != nil && !entry.Bodyweight:
				issue.Reason = "missing weight"
			}
			if issue.Reason != "" {
				issues = append(issues, issue)
			}
		}
	}
	return issues
}

func lookup(ctx context.Context, catalog domain.ExerciseCatalog, id string) *domain.Exercise {
	if catalog == nil {
		return nil
	}
	ex, err := catalog.Get(ctx, id)
	if err != nil {
		return nil
	}
	return ex
}
