package domain

// RoutineKind tells a reusable template apart from a "last performed"
// snapshot synthesized when a session ends.
type RoutineKind string

const (
	RoutineTemplate      RoutineKind = "template"
	RoutineLastPerformed RoutineKind = "last_performed"
)

// Routine is the blueprint a session is started from.
type Routine struct {
	ID        string              `json:"id"`
	Name      string              `json:"name"`
	Kind      RoutineKind         `json:"kind"`
	Exercises []WorkoutExercise   `json:"exercises"`
	Supersets map[string]Superset `json:"supersets,omitempty"`
	// SourceID points at the template a last-performed snapshot came from.
	SourceID string `json:"sourceId,omitempty"`
	LastUsed int64  `json:"lastUsed,omitempty"`
}

// IsTemplate reports whether values should be refreshed from history on start.
func (r *Routine) IsTemplate() bool {
	return r.Kind != RoutineLastPerformed
}

// RoutineSummary is a lightweight view of a routine for listing.
type RoutineSummary struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Kind          RoutineKind `json:"kind"`
	ExerciseCount int         `json:"exerciseCount"`
}

// HistoryEntry is a finished session as written to history. Only
// completed sets survive; exercises left without one are dropped.
type HistoryEntry struct {
	ID          string              `json:"id"`
	RoutineID   string              `json:"routineId"`
	RoutineName string              `json:"routineName"`
	StartTime   int64               `json:"startTime"`
	EndTime     int64               `json:"endTime"`
	Exercises   []WorkoutExercise   `json:"exercises"`
	Supersets   map[string]Superset `json:"supersets,omitempty"`
	PRCount     int                 `json:"prCount"`
	TotalVolume float64             `json:"totalVolume"`
}

// Exercise is a catalog entry. The catalog is owned outside the engine.
type Exercise struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Bodyweight bool   `json:"bodyweight"`
	Timed      bool   `json:"timed"`
}
