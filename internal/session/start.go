package session

import (
	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/idgen"
)

// RestSettings are the user's rest-time preferences. With Override set,
// the defaults replace every routine's own rest times; otherwise they only
// fill in set types a routine leaves unspecified.
type RestSettings struct {
	Defaults domain.RestTimes
	Override bool
}

// DefaultRestSettings are used when no settings are configured.
func DefaultRestSettings() RestSettings {
	return RestSettings{Defaults: domain.RestTimes{
		domain.SetNormal:  90,
		domain.SetWarmup:  60,
		domain.SetDrop:    30,
		domain.SetTimed:   60,
		domain.SetEffort:  120,
		domain.SetFailure: 180,
	}}
}

// Apply returns the rest times an exercise should use.
func (r RestSettings) Apply(own domain.RestTimes) domain.RestTimes {
	if r.Override || len(own) == 0 {
		return r.Defaults.Clone()
	}
	out := own.Clone()
	for k, v := range r.Defaults {
		if _, ok := out[k]; !ok {
			out[k] = v
		}
	}
	return out
}

// FromRoutine builds a fresh session from a routine. Exercises, sets and
// superset groups are deep-copied and re-keyed; completion state is reset.
// Every prepopulated value is marked inherited. For templates, set values
// are refreshed by index from the most recent history entry that contains
// the same catalog exercise; history must be ordered most recent first.
func FromRoutine(r *domain.Routine, history []domain.HistoryEntry, rest RestSettings, newID idgen.Func, now int64) *domain.WorkoutSession {
	s := &domain.WorkoutSession{
		ID:          newID(),
		RoutineID:   templateID(r),
		RoutineName: r.Name,
		StartTime:   now,
		LastUpdated: now,
		Exercises:   make([]domain.WorkoutExercise, 0, len(r.Exercises)),
	}

	groups := make(map[string]string, len(r.Supersets))
	if len(r.Supersets) > 0 {
		s.Supersets = make(map[string]domain.Superset, len(r.Supersets))
		for old, meta := range r.Supersets {
			id := newID()
			groups[old] = id
			s.Supersets[id] = meta
		}
	}

	for _, src := range r.Exercises {
		ex := src.Clone()
		ex.ID = newID()
		ex.RestTime = rest.Apply(src.RestTime)
		if ex.SupersetID != "" {
			id, ok := groups[ex.SupersetID]
			if !ok {
				// Group without metadata; give it some.
				id = newID()
				groups[ex.SupersetID] = id
				if s.Supersets == nil {
					s.Supersets = make(map[string]domain.Superset)
				}
				s.Supersets[id] = domain.Superset{Name: "Superset"}
			}
			ex.SupersetID = id
		}

		var prev []domain.PerformedSet
		if r.IsTemplate() {
			prev = lastPerformed(history, src.ExerciseID)
		}
		for i := range ex.Sets {
			set := &ex.Sets[i]
			set.ID = newID()
			set.IsComplete = false
			set.CompletedAt = 0
			set.ActualRest = 0
			if i < len(prev) {
				set.Reps = prev[i].Reps
				set.Weight = prev[i].Weight
				set.Time = prev[i].Time
			}
			set.IsWeightInherited = true
			set.IsRepsInherited = true
			set.IsTimeInherited = true
		}
		s.Exercises = append(s.Exercises, ex)
	}
	return s
}

// lastPerformed returns the sets of the most recent history entry that
// contains the catalog exercise.
func lastPerformed(history []domain.HistoryEntry, exerciseID string) []domain.PerformedSet {
	for _, h := range history {
		for _, ex := range h.Exercises {
			if ex.ExerciseID == exerciseID && len(ex.Sets) > 0 {
				return ex.Sets
			}
		}
	}
	return nil
}

// LastPerformedRoutine snapshots a session's full exercise list, including
// incomplete sets, so it can be resumed next time.
func LastPerformedRoutine(s *domain.WorkoutSession, now int64) *domain.Routine {
	return &domain.Routine{
		ID:        LastPerformedID(s.RoutineID),
		Name:      s.RoutineName,
		Kind:      domain.RoutineLastPerformed,
		Exercises: domain.CloneExercises(s.Exercises),
		Supersets: domain.CloneSupersets(s.Supersets),
		SourceID:  s.RoutineID,
		LastUsed:  now,
	}
}

// templateID resolves a last-performed snapshot back to its template so
// that resuming a snapshot replaces it instead of snapshotting it.
func templateID(r *domain.Routine) string {
	if r.Kind == domain.RoutineLastPerformed && r.SourceID != "" {
		return r.SourceID
	}
	return r.ID
}

// LastPerformedID is the routine ID of a template's last-performed snapshot.
func LastPerformedID(routineID string) string {
	return "last:" + routineID
}
