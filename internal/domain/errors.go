package domain

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors used across layers.
var (
	ErrNotFound         = errors.New("not found")
	ErrNoActiveSession  = errors.New("no active session")
	ErrSessionActive    = errors.New("a session is already active")
	ErrInvalidPhase     = errors.New("invalid phase for this command")
	ErrInvalidMove      = errors.New("invalid move")
	ErrNotReorganizing  = errors.New("not in reorganize mode")
	ErrNoTimer          = errors.New("no active timer")
	ErrEmptySuperset    = errors.New("superset has no exercises")
	ErrInvalidInput     = errors.New("invalid input")
	ErrNotImplemented   = errors.New("not implemented")
	ErrCapabilityDenied = errors.New("platform capability unavailable")
)

// SetIssue names one completed set that cannot be finalized.
type SetIssue struct {
	ExerciseID string `json:"exerciseId"`
	SetID      string `json:"setId"`
	SetIndex   int    `json:"setIndex"`
	Reason     string `json:"reason"`
}

// ValidationError blocks finalization and lists every offending set.
type ValidationError struct {
	Issues []SetIssue
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Issues))
	for _, is := range e.Issues {
		parts = append(parts, fmt.Sprintf("%s set %d: %s", is.ExerciseID, is.SetIndex+1, is.Reason))
	}
	return "cannot finish workout: " + strings.Join(parts, "; ")
}
