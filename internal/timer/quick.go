package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/hammamikhairi/ottolift/internal/clock"
	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

// QuickTag identifies the quick timer's notification.
const QuickTag = "quick-timer-finished"

// Quick is a free-standing countdown that is not tied to any set. It is
// not persisted. Access is serialized by the engine.
type Quick struct {
	clock     clock.Clock
	log       *logger.Logger
	scheduler domain.NotificationScheduler

	active bool
	label  string
	cd     Countdown
}

// NewQuick creates an idle quick timer. scheduler may be nil.
func NewQuick(clk clock.Clock, scheduler domain.NotificationScheduler, log *logger.Logger) *Quick {
	return &Quick{clock: clk, scheduler: scheduler, log: log}
}

// Start begins a countdown of seconds, replacing any running one.
func (q *Quick) Start(ctx context.Context, seconds int, label string) error {
	if seconds <= 0 {
		return fmt.Errorf("quick timer %ds: %w", seconds, domain.ErrInvalidInput)
	}
	if label == "" {
		label = "Timer"
	}
	q.active = true
	q.label = label
	q.cd = NewCountdown(clock.Millis(q.clock), seconds)
	q.log.Info("quick timer started: %ds", seconds)
	q.schedule(ctx)
	return nil
}

// Pause freezes the countdown.
func (q *Quick) Pause() error {
	if !q.active {
		return domain.ErrNoTimer
	}
	q.cd.Pause(clock.Millis(q.clock))
	q.cancel()
	return nil
}

// Resume continues a paused countdown.
func (q *Quick) Resume(ctx context.Context) error {
	if !q.active {
		return domain.ErrNoTimer
	}
	if !q.cd.IsPaused {
		return nil
	}
	q.cd.Resume(clock.Millis(q.clock))
	q.schedule(ctx)
	return nil
}

// AddTime extends the countdown by delta seconds.
func (q *Quick) AddTime(ctx context.Context, delta int) error {
	if !q.active {
		return domain.ErrNoTimer
	}
	q.cd.AddTime(clock.Millis(q.clock), delta)
	if !q.cd.IsPaused {
		q.schedule(ctx)
	}
	return nil
}

// Stop discards the timer.
func (q *Quick) Stop() {
	if !q.active {
		return
	}
	q.active = false
	q.cancel()
}

// Running reports whether the countdown is live and unpaused.
func (q *Quick) Running() bool {
	return q.active && !q.cd.IsPaused
}

// Remaining returns the milliseconds left.
func (q *Quick) Remaining() int64 {
	if !q.active {
		return 0
	}
	return q.cd.Remaining(clock.Millis(q.clock))
}

// Tick reports whether the timer finished on this call.
func (q *Quick) Tick() bool {
	if !q.active || !q.cd.Expired(clock.Millis(q.clock)) {
		return false
	}
	q.active = false
	q.log.Info("quick timer finished")
	return true
}

// Status returns a display view, or nil when idle.
func (q *Quick) Status() *domain.TimerStatus {
	if !q.active {
		return nil
	}
	return &domain.TimerStatus{
		Kind:          "quick",
		Label:         q.label,
		RemainingMs:   q.cd.Remaining(clock.Millis(q.clock)),
		TotalDuration: q.cd.TotalDuration,
		Paused:        q.cd.IsPaused,
	}
}

func (q *Quick) schedule(ctx context.Context) {
	if q.scheduler == nil {
		return
	}
	delay := time.Duration(q.cd.Remaining(clock.Millis(q.clock))) * time.Millisecond
	err := q.scheduler.Schedule(ctx, delay, q.label+" finished", domain.NotificationOptions{
		Tag: QuickTag,
	})
	if err != nil {
		q.log.Warn("scheduling quick timer notification: %v", err)
	}
}

func (q *Quick) cancel() {
	if q.scheduler != nil {
		q.scheduler.Cancel(QuickTag)
	}
}
