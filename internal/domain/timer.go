package domain

// ActiveTimerInfo is the persisted state of the single rest timer.
// TargetTime and RunStart are epoch ms; durations are seconds except
// TimeLeftWhenPaused and ElapsedMs, which are kept in milliseconds so
// pause/resume cycles never round.
type ActiveTimerInfo struct {
	ExerciseID         string `json:"exerciseId"`
	SetID              string `json:"setId"`
	TargetTime         int64  `json:"targetTime"`
	TotalDuration      int    `json:"totalDuration"`
	InitialDuration    int    `json:"initialDuration"`
	IsPaused           bool   `json:"isPaused"`
	TimeLeftWhenPaused int64  `json:"timeLeftWhenPaused"`
	RunStart           int64  `json:"runStart,omitempty"`
	ElapsedMs          int64  `json:"elapsedMs,omitempty"`
}

// TimerStatus is a read-only view of a running timer for display surfaces.
type TimerStatus struct {
	Kind          string `json:"kind"` // rest, quick, interval, superset
	Label         string `json:"label"`
	RemainingMs   int64  `json:"remainingMs"`
	TotalDuration int    `json:"totalDuration"`
	Paused        bool   `json:"paused"`
}
