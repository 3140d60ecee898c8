package timer

import (
	"fmt"

	"github.com/hammamikhairi/ottolift/internal/clock"
	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

// IntervalPhase is the current part of an interval round.
type IntervalPhase string

const (
	IntervalWork IntervalPhase = "work"
	IntervalRest IntervalPhase = "rest"
	IntervalDone IntervalPhase = "done"
)

// IntervalEvent reports a phase change observed on Tick.
type IntervalEvent struct {
	Phase IntervalPhase
	Round int // 1-based
}

// Interval runs work/rest rounds (HIIT). Each phase's target is chained
// from the previous phase's target rather than from the tick that noticed
// it, so a suspended process catches up without drifting.
type Interval struct {
	clock clock.Clock
	log   *logger.Logger

	work, rest, rounds int

	active bool
	phase  IntervalPhase
	round  int // 0-based
	cd     Countdown
}

// NewInterval creates an idle interval timer.
func NewInterval(clk clock.Clock, log *logger.Logger) *Interval {
	return &Interval{clock: clk, log: log}
}

// Start begins round 1 of work.
func (iv *Interval) Start(work, rest, rounds int) error {
	if work <= 0 || rest < 0 || rounds <= 0 {
		return fmt.Errorf("interval %d/%dx%d: %w", work, rest, rounds, domain.ErrInvalidInput)
	}
	iv.work, iv.rest, iv.rounds = work, rest, rounds
	iv.active = true
	iv.phase = IntervalWork
	iv.round = 0
	iv.cd = NewCountdown(clock.Millis(iv.clock), work)
	iv.log.Info("interval started: %ds work / %ds rest x%d", work, rest, rounds)
	return nil
}

// Pause freezes the current phase.
func (iv *Interval) Pause() error {
	if !iv.active {
		return domain.ErrNoTimer
	}
	iv.cd.Pause(clock.Millis(iv.clock))
	return nil
}

// Resume continues the current phase.
func (iv *Interval) Resume() error {
	if !iv.active {
		return domain.ErrNoTimer
	}
	iv.cd.Resume(clock.Millis(iv.clock))
	return nil
}

// Stop discards the timer.
func (iv *Interval) Stop() {
	iv.active = false
}

// Running reports whether the timer is live and unpaused.
func (iv *Interval) Running() bool {
	return iv.active && !iv.cd.IsPaused
}

// Phase returns the current phase and 1-based round.
func (iv *Interval) Phase() (IntervalPhase, int) {
	if !iv.active {
		return IntervalDone, iv.round + 1
	}
	return iv.phase, iv.round + 1
}

// Tick advances through every phase boundary that has passed and returns
// the phases entered, in order.
func (iv *Interval) Tick() []IntervalEvent {
	if !iv.active {
		return nil
	}
	now := clock.Millis(iv.clock)

	var events []IntervalEvent
	for iv.active && iv.cd.Expired(now) {
		prevTarget := iv.cd.TargetTime
		next := iv.advance()
		if !iv.active {
			events = append(events, IntervalEvent{Phase: IntervalDone, Round: iv.rounds})
			break
		}
		iv.cd = Countdown{
			TargetTime:      prevTarget + int64(next)*1000,
			TotalDuration:   next,
			InitialDuration: next,
			RunStart:        prevTarget,
		}
		events = append(events, IntervalEvent{Phase: iv.phase, Round: iv.round + 1})
	}
	return events
}

// advance moves to the next phase and returns its duration.
func (iv *Interval) advance() int {
	if iv.phase == IntervalWork {
		if iv.round == iv.rounds-1 {
			iv.phase = IntervalDone
			iv.active = false
			iv.log.Info("interval finished")
			return 0
		}
		if iv.rest > 0 {
			iv.phase = IntervalRest
			return iv.rest
		}
	}
	iv.phase = IntervalWork
	iv.round++
	return iv.work
}

// Status returns a display view, or nil when idle.
func (iv *Interval) Status() *domain.TimerStatus {
	if !iv.active {
		return nil
	}
	return &domain.TimerStatus{
		Kind:          "interval",
		Label:         fmt.Sprintf("%s %d/%d", iv.phase, iv.round+1, iv.rounds),
		RemainingMs:   iv.cd.Remaining(clock.Millis(iv.clock)),
		TotalDuration: iv.cd.TotalDuration,
		Paused:        iv.cd.IsPaused,
	}
}
