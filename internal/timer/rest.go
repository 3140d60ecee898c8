// Package timer implements the countdowns that run next to a live
// workout: the persisted rest timer, quick and interval timers, the
// activity tracker feeding the audio keep-alive, and the background tick
// loop that drives them all.
package timer

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/hammamikhairi/ottolift/internal/clock"
	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

// RestTag identifies the rest timer's notification. Every schedule and
// cancel for the rest timer goes through it.
const RestTag = "rest-timer-finished"

// SessionWriter is the single mutation entry point of the active session.
type SessionWriter interface {
	Update(ctx context.Context, fn func(*domain.WorkoutSession) error) error
}

// RestOption configures the rest timer.
type RestOption func(*Rest)

// WithScheduler sets where finish notifications are scheduled.
func WithScheduler(s domain.NotificationScheduler) RestOption {
	return func(r *Rest) {
		r.scheduler = s
	}
}

// WithStore persists the timer through s.
func WithStore(s *TimerStore) RestOption {
	return func(r *Rest) {
		r.store = s
	}
}

// Rest is the single rest timer of the active session. It is owned by the
// engine, which serializes every call; Rest itself does no locking.
type Rest struct {
	sessions  SessionWriter
	clock     clock.Clock
	log       *logger.Logger
	scheduler domain.NotificationScheduler
	store     *TimerStore

	active     bool
	exerciseID string
	setID      string
	cd         Countdown

	// scheduledTarget is the target time the pending notification was
	// scheduled for; 0 when nothing is scheduled.
	scheduledTarget int64
}

// NewRest creates an idle rest timer.
func NewRest(sessions SessionWriter, clk clock.Clock, log *logger.Logger, opts ...RestOption) *Rest {
	r := &Rest{
		sessions: sessions,
		clock:    clk,
		log:      log,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Info returns a copy of the timer state, or nil when idle.
func (r *Rest) Info() *domain.ActiveTimerInfo {
	if !r.active {
		return nil
	}
	return toInfo(r.exerciseID, r.setID, r.cd)
}

// Running reports whether a rest timer is counting down.
func (r *Rest) Running() bool {
	return r.active && !r.cd.IsPaused
}

// Remaining returns the milliseconds left on the timer.
func (r *Rest) Remaining() int64 {
	if !r.active {
		return 0
	}
	return r.cd.Remaining(clock.Millis(r.clock))
}

// Status returns a display view of the timer, or nil when idle.
func (r *Rest) Status() *domain.TimerStatus {
	if !r.active {
		return nil
	}
	return &domain.TimerStatus{
		Kind:          "rest",
		Label:         "Rest",
		RemainingMs:   r.cd.Remaining(clock.Millis(r.clock)),
		TotalDuration: r.cd.TotalDuration,
		Paused:        r.cd.IsPaused,
	}
}

// Start begins resting after the given set. A timer that is already
// running is superseded: its elapsed time is written to its own set as
// actualRest before it is discarded.
func (r *Rest) Start(ctx context.Context, exerciseID, setID string, seconds int) error {
	if seconds <= 0 {
		return fmt.Errorf("rest duration %ds: %w", seconds, domain.ErrInvalidInput)
	}
	now := clock.Millis(r.clock)

	if r.active {
		r.log.Debug("superseding rest timer for %s/%s", r.exerciseID, r.setID)
		r.recordActualRest(ctx, now)
	}

	r.active = true
	r.exerciseID = exerciseID
	r.setID = setID
	r.cd = NewCountdown(now, seconds)

	r.log.Info("rest started: %ds after %s/%s", seconds, exerciseID, setID)
	r.changed(ctx)
	return nil
}

// Pause freezes the timer and withdraws its notification.
func (r *Rest) Pause(ctx context.Context) error {
	if !r.active {
		return domain.ErrNoTimer
	}
	if r.cd.IsPaused {
		return nil
	}
	r.cd.Pause(clock.Millis(r.clock))
	r.changed(ctx)
	return nil
}

// Resume restarts a paused timer.
func (r *Rest) Resume(ctx context.Context) error {
	if !r.active {
		return domain.ErrNoTimer
	}
	if !r.cd.IsPaused {
		return nil
	}
	r.cd.Resume(clock.Millis(r.clock))
	r.changed(ctx)
	return nil
}

// AddTime extends the timer by delta seconds (negative shortens it).
func (r *Rest) AddTime(ctx context.Context, delta int) error {
	if !r.active {
		return domain.ErrNoTimer
	}
	r.cd.AddTime(clock.Millis(r.clock), delta)
	r.changed(ctx)
	return nil
}

// ChangeDuration sets a new total duration, keeping the elapsed time.
func (r *Rest) ChangeDuration(ctx context.Context, total int) error {
	if !r.active {
		return domain.ErrNoTimer
	}
	if total < 0 {
		return fmt.Errorf("rest duration %ds: %w", total, domain.ErrInvalidInput)
	}
	r.cd.ChangeDuration(clock.Millis(r.clock), total)
	r.changed(ctx)
	return nil
}

// Skip ends the rest early, recording the time actually rested.
func (r *Rest) Skip(ctx context.Context) error {
	if !r.active {
		return domain.ErrNoTimer
	}
	r.recordActualRest(ctx, clock.Millis(r.clock))
	r.clear(ctx)
	return nil
}

// Cancel drops the timer without touching the session. Used when its set
// is un-completed, its exercise is removed, or the session ends.
func (r *Rest) Cancel(ctx context.Context) {
	if !r.active {
		return
	}
	r.log.Debug("rest timer cancelled for %s/%s", r.exerciseID, r.setID)
	r.clear(ctx)
}

// Tick finishes the timer once it has reached zero while running. It
// reports whether the timer finished on this call.
func (r *Rest) Tick(ctx context.Context) bool {
	if !r.active {
		return false
	}
	now := clock.Millis(r.clock)
	if !r.cd.Expired(now) {
		return false
	}

	r.log.Info("rest finished for %s/%s", r.exerciseID, r.setID)
	r.recordActualRest(ctx, now)

	// The notification worker owns delivery of the finish notice, so the
	// pending notification is left alone here.
	r.scheduledTarget = 0
	r.active = false
	r.persist(ctx)
	return true
}

// Refers reports whether the timer belongs to the given exercise.
func (r *Rest) Refers(exerciseID string) bool {
	return r.active && r.exerciseID == exerciseID
}

// Reconcile cancels the timer if its set is no longer in the session.
func (r *Rest) Reconcile(ctx context.Context, session *domain.WorkoutSession) {
	if !r.active {
		return
	}
	if session != nil && session.HasSet(r.exerciseID, r.setID) {
		return
	}
	r.log.Debug("rest timer refers to a removed set, cancelling")
	r.clear(ctx)
}

// Restore loads the persisted timer after a restart. A timer that expired
// while the process was down finishes on the next Tick.
func (r *Rest) Restore(ctx context.Context) error {
	if r.store == nil {
		return nil
	}
	info, err := r.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("restoring rest timer: %w", err)
	}
	r.adopt(ctx, info)
	return nil
}

// ApplyExternal replaces local state with a timer written by another
// process. nil means the other writer cleared it.
func (r *Rest) ApplyExternal(ctx context.Context, info *domain.ActiveTimerInfo) {
	r.adopt(ctx, info)
}

func (r *Rest) adopt(ctx context.Context, info *domain.ActiveTimerInfo) {
	if info == nil {
		r.active = false
		r.syncNotification(ctx)
		return
	}
	r.active = true
	r.exerciseID = info.ExerciseID
	r.setID = info.SetID
	r.cd = fromInfo(info)
	r.syncNotification(ctx)
}

func (r *Rest) clear(ctx context.Context) {
	r.active = false
	r.changed(ctx)
}

// changed persists the timer and brings the scheduled notification in
// line with it.
func (r *Rest) changed(ctx context.Context) {
	r.persist(ctx)
	r.syncNotification(ctx)
}

func (r *Rest) persist(ctx context.Context) {
	if r.store == nil {
		return
	}
	if err := r.store.Save(ctx, r.Info()); err != nil {
		r.log.Warn("persisting rest timer: %v", err)
	}
}

// syncNotification schedules a finish notification for a running timer
// and cancels it otherwise. Repeat calls for the same target are dropped.
func (r *Rest) syncNotification(ctx context.Context) {
	if r.scheduler == nil {
		return
	}
	if !r.Running() {
		if r.scheduledTarget != 0 {
			r.scheduler.Cancel(RestTag)
			r.scheduledTarget = 0
		}
		return
	}
	if r.scheduledTarget == r.cd.TargetTime {
		return
	}

	delay := time.Duration(r.cd.TargetTime-clock.Millis(r.clock)) * time.Millisecond
	if delay < 0 {
		delay = 0
	}
	err := r.scheduler.Schedule(ctx, delay, "Rest finished", domain.NotificationOptions{
		Body:               "Time for your next set.",
		Tag:                RestTag,
		RequireInteraction: true,
	})
	if err != nil {
		r.log.Warn("scheduling rest notification: %v", err)
		return
	}
	r.scheduledTarget = r.cd.TargetTime
}

// recordActualRest writes the elapsed rest onto the timer's set. A set
// that no longer exists is skipped silently.
func (r *Rest) recordActualRest(ctx context.Context, now int64) {
	exerciseID, setID := r.exerciseID, r.setID
	secs := int((r.cd.Elapsed(now) + 500) / 1000)

	err := r.sessions.Update(ctx, func(s *domain.WorkoutSession) error {
		_, ex := s.FindExercise(exerciseID)
		if ex == nil {
			return nil
		}
		_, set := ex.FindSet(setID)
		if set == nil {
			return nil
		}
		set.ActualRest = secs
		return nil
	})
	switch {
	case errors.Is(err, domain.ErrNoActiveSession):
		r.log.Debug("no session to record rest on")
	case err != nil:
		r.log.Warn("recording actual rest: %v", err)
	}
}
