package engine

import (
	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/reorganize"
	"github.com/hammamikhairi/ottolift/internal/superset"
)

// Status is a consistent snapshot of everything the engine tracks.
type Status struct {
	Session   *domain.WorkoutSession  `json:"session,omitempty"`
	Minimized bool                    `json:"minimized"`
	RestTimer *domain.ActiveTimerInfo `json:"restTimer,omitempty"`
	Timers    []domain.TimerStatus    `json:"timers"`
	Superset  *superset.State         `json:"superset,omitempty"`
	// Scratch is the reorganize buffer while reorganize mode is open.
	Scratch *reorganize.Layout `json:"scratch,omitempty"`
}

// Status returns the current snapshot.
func (e *Engine) Status() Status {
	e.mu.Lock()
	defer e.mu.Unlock()

	s := e.sessions.Active()
	st := Status{
		Session:   s,
		Minimized: e.sessions.Minimized(),
		RestTimer: e.rest.Info(),
		Timers:    []domain.TimerStatus{},
	}
	for _, ts := range []*domain.TimerStatus{e.rest.Status(), e.quick.Status(), e.interval.Status()} {
		if ts != nil {
			st.Timers = append(st.Timers, *ts)
		}
	}
	if e.player != nil {
		ps := e.player.State(s)
		st.Superset = &ps
		if ps.Phase == superset.PhaseTransition {
			st.Timers = append(st.Timers, domain.TimerStatus{
				Kind:          "superset",
				Label:         ps.Name,
				RemainingMs:   ps.TimeLeftMs,
				TotalDuration: e.transition,
				Paused:        ps.Paused,
			})
		}
	}
	if e.reorg != nil {
		l := e.reorg.Layout()
		st.Scratch = &l
	}
	return st
}
