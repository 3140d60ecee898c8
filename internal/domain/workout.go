// Package domain defines the core types and interfaces for the workout tracker.
// All other packages depend on domain; domain depends on nothing.
package domain

// SetType classifies a set. Rest durations are keyed by it.
type SetType string

const (
	SetNormal  SetType = "normal"
	SetWarmup  SetType = "warmup"
	SetDrop    SetType = "drop"
	SetTimed   SetType = "timed"
	SetEffort  SetType = "effort"
	SetFailure SetType = "failure"
)

// RestTimes maps a set type to its rest duration in seconds.
type RestTimes map[SetType]int

// For returns the rest duration for a set type, falling back to the
// normal-set value when the type has no entry.
func (r RestTimes) For(t SetType) int {
	if v, ok := r[t]; ok {
		return v
	}
	return r[SetNormal]
}

// Clone returns an independent copy.
func (r RestTimes) Clone() RestTimes {
	if r == nil {
		return nil
	}
	out := make(RestTimes, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// PerformedSet is one set of an exercise.
type PerformedSet struct {
	ID          string  `json:"id"`
	Reps        int     `json:"reps"`
	Weight      float64 `json:"weight"`
	Time        int     `json:"time,omitempty"` // seconds, timed sets only
	Type        SetType `json:"type"`
	IsComplete  bool    `json:"isComplete"`
	CompletedAt int64   `json:"completedAt,omitempty"`
	ActualRest  int     `json:"actualRest,omitempty"` // seconds

	IsWeightInherited bool `json:"isWeightInherited,omitempty"`
	IsRepsInherited   bool `json:"isRepsInherited,omitempty"`
	IsTimeInherited   bool `json:"isTimeInherited,omitempty"`
}

// Volume is weight times reps.
func (s *PerformedSet) Volume() float64 {
	return s.Weight * float64(s.Reps)
}

// ClearInherited marks every value as explicitly entered.
func (s *PerformedSet) ClearInherited() {
	s.IsWeightInherited = false
	s.IsRepsInherited = false
	s.IsTimeInherited = false
}

// WorkoutExercise is one exercise instance inside a session.
type WorkoutExercise struct {
	ID         string         `json:"id"`
	ExerciseID string         `json:"exerciseId"`
	Sets       []PerformedSet `json:"sets"`
	RestTime   RestTimes      `json:"restTime,omitempty"`
	SupersetID string         `json:"supersetId,omitempty"`
	Notes      string         `json:"notes,omitempty"`
}

// FindSet returns the index and a pointer to the set with the given ID.
// Returns -1, nil when absent.
func (e *WorkoutExercise) FindSet(id string) (int, *PerformedSet) {
	for i := range e.Sets {
		if e.Sets[i].ID == id {
			return i, &e.Sets[i]
		}
	}
	return -1, nil
}

// Clone returns a deep copy.
func (e WorkoutExercise) Clone() WorkoutExercise {
	out := e
	out.Sets = append([]PerformedSet(nil), e.Sets...)
	out.RestTime = e.RestTime.Clone()
	return out
}

// Superset is display metadata for a superset group. Membership lives on
// each WorkoutExercise.SupersetID.
type Superset struct {
	Name  string `json:"name"`
	Color string `json:"color,omitempty"`
}

// WorkoutSession is one in-progress or completed training session.
// Timestamps are epoch milliseconds; EndTime is 0 while active.
type WorkoutSession struct {
	ID          string              `json:"id"`
	RoutineID   string              `json:"routineId"`
	RoutineName string              `json:"routineName"`
	StartTime   int64               `json:"startTime"`
	EndTime     int64               `json:"endTime"`
	LastUpdated int64               `json:"lastUpdated"`
	Exercises   []WorkoutExercise   `json:"exercises"`
	Supersets   map[string]Superset `json:"supersets,omitempty"`
}

// FindExercise returns the index and a pointer to the exercise with the
// given ID. Returns -1, nil when absent.
func (s *WorkoutSession) FindExercise(id string) (int, *WorkoutExercise) {
	for i := range s.Exercises {
		if s.Exercises[i].ID == id {
			return i, &s.Exercises[i]
		}
	}
	return -1, nil
}

// HasSet reports whether the (exerciseID, setID) pair is present.
func (s *WorkoutSession) HasSet(exerciseID, setID string) bool {
	_, ex := s.FindExercise(exerciseID)
	if ex == nil {
		return false
	}
	_, set := ex.FindSet(setID)
	return set != nil
}

// SupersetMembers returns the indices of exercises in the given group,
// in session order.
func (s *WorkoutSession) SupersetMembers(supersetID string) []int {
	if supersetID == "" {
		return nil
	}
	var out []int
	for i := range s.Exercises {
		if s.Exercises[i].SupersetID == supersetID {
			out = append(out, i)
		}
	}
	return out
}

// Clone returns a deep copy.
func (s *WorkoutSession) Clone() *WorkoutSession {
	if s == nil {
		return nil
	}
	out := *s
	out.Exercises = CloneExercises(s.Exercises)
	out.Supersets = CloneSupersets(s.Supersets)
	return &out
}

// CloneExercises deep-copies an exercise list.
func CloneExercises(in []WorkoutExercise) []WorkoutExercise {
	if in == nil {
		return nil
	}
	out := make([]WorkoutExercise, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

// CloneSupersets copies superset metadata.
func CloneSupersets(in map[string]Superset) map[string]Superset {
	if in == nil {
		return nil
	}
	out := make(map[string]Superset, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

// CompletedSetCount counts completed sets across all exercises.
func (s *WorkoutSession) CompletedSetCount() int {
	n := 0
	for i := range s.Exercises {
		for j := range s.Exercises[i].Sets {
			if s.Exercises[i].Sets[j].IsComplete {
				n++
			}
		}
	}
	return n
}
