// Package engine coordinates the live workout: the active session, the
// rest timer, the superset player, reorganize mode, and the free-standing
// quick and interval timers. Every user command and every tick goes
// through one Engine, which serializes them.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/hammamikhairi/ottolift/internal/clock"
	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/idgen"
	"github.com/hammamikhairi/ottolift/internal/logger"
	"github.com/hammamikhairi/ottolift/internal/reorganize"
	"github.com/hammamikhairi/ottolift/internal/session"
	"github.com/hammamikhairi/ottolift/internal/superset"
	"github.com/hammamikhairi/ottolift/internal/timer"
)

// ScreenGuard keeps the screen awake while a screen-critical view is open.
type ScreenGuard interface {
	Start(ctx context.Context)
	Stop()
	SetVisible(ctx context.Context, visible bool)
}

// Option configures the engine.
type Option func(*Engine)

// WithScheduler routes finish notifications through s.
func WithScheduler(s domain.NotificationScheduler) Option {
	return func(e *Engine) {
		e.scheduler = s
	}
}

// WithNotifier sets where in-app notices go. Without a scheduler it also
// announces finished timers.
func WithNotifier(n domain.Notifier) Option {
	return func(e *Engine) {
		e.notifier = n
	}
}

// WithTimerStore persists the rest timer through s.
func WithTimerStore(s *timer.TimerStore) Option {
	return func(e *Engine) {
		e.timerStore = s
	}
}

// WithKeepAlive sets the audio keep-alive driver.
func WithKeepAlive(k domain.AudioKeepAlive) Option {
	return func(e *Engine) {
		e.keepAlive = k
	}
}

// WithScreenGuard sets the wake-lock guard used by the superset player.
func WithScreenGuard(g ScreenGuard) Option {
	return func(e *Engine) {
		e.guard = g
	}
}

// WithSupersetTransition sets the rest between superset exercises.
func WithSupersetTransition(seconds int) Option {
	return func(e *Engine) {
		e.transition = seconds
	}
}

// WithIDs sets the ID generator for sets and groups the engine creates.
func WithIDs(f idgen.Func) Option {
	return func(e *Engine) {
		e.newID = f
	}
}

// errUnchanged aborts a session update that would not change anything.
var errUnchanged = errors.New("unchanged")

// Engine is the session-scoped coordinator. All methods are safe for
// concurrent use. Lock order is Engine, then session.Manager.
type Engine struct {
	sessions   *session.Manager
	clock      clock.Clock
	log        *logger.Logger
	newID      idgen.Func
	scheduler  domain.NotificationScheduler
	notifier   domain.Notifier
	timerStore *timer.TimerStore
	keepAlive  domain.AudioKeepAlive
	guard      ScreenGuard
	transition int
	events     *Broadcaster

	mu       sync.Mutex
	rest     *timer.Rest
	quick    *timer.Quick
	interval *timer.Interval
	activity *timer.Activity
	player   *superset.Player
	reorg    *reorganize.Buffer
}

// New creates an engine around a session manager.
func New(sessions *session.Manager, clk clock.Clock, log *logger.Logger, opts ...Option) *Engine {
	e := &Engine{
		sessions:   sessions,
		clock:      clk,
		log:        log,
		newID:      idgen.New,
		transition: superset.DefaultTransition,
		events:     NewBroadcaster(),
	}
	for _, opt := range opts {
		opt(e)
	}

	var restOpts []timer.RestOption
	if e.scheduler != nil {
		restOpts = append(restOpts, timer.WithScheduler(e.scheduler))
	}
	if e.timerStore != nil {
		restOpts = append(restOpts, timer.WithStore(e.timerStore))
	}
	e.rest = timer.NewRest(sessions, clk, log.Named("rest"), restOpts...)
	e.quick = timer.NewQuick(clk, e.scheduler, log.Named("quick"))
	e.interval = timer.NewInterval(clk, log.Named("interval"))
	e.activity = timer.NewActivity(e.keepAlive, log.Named("activity"))
	return e
}

// Subscribe returns a channel of change events and a function that stops
// the subscription.
func (e *Engine) Subscribe() (<-chan Event, func()) {
	return e.events.Subscribe()
}

// Restore reloads the session and rest timer persisted by a previous run.
func (e *Engine) Restore(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sessions.Restore(ctx); err != nil {
		return err
	}
	if err := e.rest.Restore(ctx); err != nil {
		return err
	}
	e.settle(ctx, EventSession)
	return nil
}

// --- Session lifecycle ---

// StartWorkout starts a session from a routine.
func (e *Engine) StartWorkout(ctx context.Context, routineID string) (*domain.WorkoutSession, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	s, err := e.sessions.Start(ctx, routineID)
	if err != nil {
		return nil, err
	}
	e.settle(ctx, EventSession)
	return s, nil
}

// EndWorkout finishes the session. A *domain.ValidationError means the
// session was left untouched.
func (e *Engine) EndWorkout(ctx context.Context) (*session.EndResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	res, err := e.sessions.End(ctx, 0)
	if err != nil {
		return nil, err
	}
	e.teardown(ctx)
	return res, nil
}

// DiscardWorkout drops the session without writing history.
func (e *Engine) DiscardWorkout(ctx context.Context) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sessions.Discard(ctx); err != nil {
		return err
	}
	e.teardown(ctx)
	return nil
}

// SetMinimized records whether the session view is minimized.
func (e *Engine) SetMinimized(ctx context.Context, minimized bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.sessions.SetMinimized(ctx, minimized); err != nil {
		return err
	}
	e.events.Publish(Event{Kind: EventSession})
	return nil
}

// teardown clears everything tied to the session that just ended.
func (e *Engine) teardown(ctx context.Context) {
	e.rest.Cancel(ctx)
	e.closePlayer()
	e.reorg = nil
	e.settle(ctx, EventSession)
}

// --- Set editing ---

// SetPatch holds the fields of a set to change. Nil fields are left alone.
type SetPatch struct {
	Reps   *int            `json:"reps,omitempty"`
	Weight *float64        `json:"weight,omitempty"`
	Time   *int            `json:"time,omitempty"`
	Type   *domain.SetType `json:"type,omitempty"`
}

// SetCompletion marks a set complete or incomplete. Completing a set
// starts its rest timer, unless the set belongs to the superset being
// played; un-completing the set a rest timer belongs to cancels it.
// Writing the state a set already has does nothing.
func (e *Engine) SetCompletion(ctx context.Context, exerciseID, setID string, complete bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	now := clock.Millis(e.clock)
	var restFor int
	err := e.sessions.Update(ctx, func(s *domain.WorkoutSession) error {
		_, ex := s.FindExercise(exerciseID)
		if ex == nil {
			return fmt.Errorf("exercise %s: %w", exerciseID, domain.ErrNotFound)
		}
		_, set := ex.FindSet(setID)
		if set == nil {
			return fmt.Errorf("set %s: %w", setID, domain.ErrNotFound)
		}
		if set.IsComplete == complete {
			return errUnchanged
		}

		set.IsComplete = complete
		if complete {
			set.CompletedAt = now
			set.ClearInherited()
			if e.player == nil || ex.SupersetID != e.player.SupersetID() {
				restFor = ex.RestTime.For(set.Type)
			}
		} else {
			set.CompletedAt = 0
		}
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return nil
	}
	if err != nil {
		return err
	}

	switch {
	case complete && restFor > 0:
		if err := e.rest.Start(ctx, exerciseID, setID, restFor); err != nil {
			e.log.Warn("starting rest: %v", err)
		}
	case !complete && e.rest.Refers(exerciseID):
		if info := e.rest.Info(); info != nil && info.SetID == setID {
			e.rest.Cancel(ctx)
		}
	}
	e.settle(ctx, EventSession)
	return nil
}

// UpdateSet edits a set's values. Edited values stop being inherited.
func (e *Engine) UpdateSet(ctx context.Context, exerciseID, setID string, patch SetPatch) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.sessions.Update(ctx, func(s *domain.WorkoutSession) error {
		set, err := findSet(s, exerciseID, setID)
		if err != nil {
			return err
		}
		if patch.Reps != nil {
			set.Reps = *patch.Reps
			set.IsRepsInherited = false
		}
		if patch.Weight != nil {
			set.Weight = *patch.Weight
			set.IsWeightInherited = false
		}
		if patch.Time != nil {
			set.Time = *patch.Time
			set.IsTimeInherited = false
		}
		if patch.Type != nil {
			set.Type = *patch.Type
		}
		return nil
	})
	if err != nil {
		return err
	}
	e.settle(ctx, EventSession)
	return nil
}

// AddSet appends a set to an exercise, copying the last set's values.
func (e *Engine) AddSet(ctx context.Context, exerciseID string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	var id string
	err := e.sessions.Update(ctx, func(s *domain.WorkoutSession) error {
		_, ex := s.FindExercise(exerciseID)
		if ex == nil {
			return fmt.Errorf("exercise %s: %w", exerciseID, domain.ErrNotFound)
		}
		superset.EnsureSlots(s, []string{exerciseID}, len(ex.Sets), e.newID)
		id = ex.Sets[len(ex.Sets)-1].ID
		return nil
	})
	if err != nil {
		return "", err
	}
	e.settle(ctx, EventSession)
	return id, nil
}

// RemoveSet deletes a set. A rest timer on it is cancelled.
func (e *Engine) RemoveSet(ctx context.Context, exerciseID, setID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.sessions.Update(ctx, func(s *domain.WorkoutSession) error {
		_, ex := s.FindExercise(exerciseID)
		if ex == nil {
			return fmt.Errorf("exercise %s: %w", exerciseID, domain.ErrNotFound)
		}
		i, set := ex.FindSet(setID)
		if set == nil {
			return fmt.Errorf("set %s: %w", setID, domain.ErrNotFound)
		}
		ex.Sets = append(ex.Sets[:i], ex.Sets[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	e.settle(ctx, EventSession)
	return nil
}

// RemoveExercise deletes an exercise. Timers pointing into it cancel
// silently.
func (e *Engine) RemoveExercise(ctx context.Context, exerciseID string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	err := e.sessions.Update(ctx, func(s *domain.WorkoutSession) error {
		i, ex := s.FindExercise(exerciseID)
		if ex == nil {
			return fmt.Errorf("exercise %s: %w", exerciseID, domain.ErrNotFound)
		}
		s.Exercises = append(s.Exercises[:i], s.Exercises[i+1:]...)
		return nil
	})
	if err != nil {
		return err
	}
	e.settle(ctx, EventSession)
	return nil
}

func findSet(s *domain.WorkoutSession, exerciseID, setID string) (*domain.PerformedSet, error) {
	_, ex := s.FindExercise(exerciseID)
	if ex == nil {
		return nil, fmt.Errorf("exercise %s: %w", exerciseID, domain.ErrNotFound)
	}
	_, set := ex.FindSet(setID)
	if set == nil {
		return nil, fmt.Errorf("set %s: %w", setID, domain.ErrNotFound)
	}
	return set, nil
}

// --- Rest timer ---

// PauseRest pauses the rest timer.
func (e *Engine) PauseRest(ctx context.Context) error {
	return e.timerCommand(ctx, func() error { return e.rest.Pause(ctx) })
}

// ResumeRest resumes the rest timer.
func (e *Engine) ResumeRest(ctx context.Context) error {
	return e.timerCommand(ctx, func() error { return e.rest.Resume(ctx) })
}

// AddRestTime extends the rest timer by delta seconds.
func (e *Engine) AddRestTime(ctx context.Context, delta int) error {
	return e.timerCommand(ctx, func() error { return e.rest.AddTime(ctx, delta) })
}

// ChangeRestDuration sets a new total rest, keeping the elapsed time.
func (e *Engine) ChangeRestDuration(ctx context.Context, total int) error {
	return e.timerCommand(ctx, func() error { return e.rest.ChangeDuration(ctx, total) })
}

// SkipRest ends the rest early.
func (e *Engine) SkipRest(ctx context.Context) error {
	return e.timerCommand(ctx, func() error { return e.rest.Skip(ctx) })
}

// --- Quick and interval timers ---

// StartQuickTimer starts a free-standing countdown.
func (e *Engine) StartQuickTimer(ctx context.Context, seconds int, label string) error {
	return e.timerCommand(ctx, func() error { return e.quick.Start(ctx, seconds, label) })
}

// PauseQuickTimer pauses the quick timer.
func (e *Engine) PauseQuickTimer(ctx context.Context) error {
	return e.timerCommand(ctx, e.quick.Pause)
}

// AddQuickTime extends the quick timer by delta seconds.
func (e *Engine) AddQuickTime(ctx context.Context, delta int) error {
	return e.timerCommand(ctx, func() error { return e.quick.AddTime(ctx, delta) })
}

// ResumeQuickTimer resumes the quick timer.
func (e *Engine) ResumeQuickTimer(ctx context.Context) error {
	return e.timerCommand(ctx, func() error { return e.quick.Resume(ctx) })
}

// StopQuickTimer discards the quick timer.
func (e *Engine) StopQuickTimer(ctx context.Context) error {
	return e.timerCommand(ctx, func() error {
		e.quick.Stop()
		return nil
	})
}

// StartInterval starts work/rest rounds.
func (e *Engine) StartInterval(ctx context.Context, work, rest, rounds int) error {
	return e.timerCommand(ctx, func() error { return e.interval.Start(work, rest, rounds) })
}

// PauseInterval pauses the interval timer.
func (e *Engine) PauseInterval(ctx context.Context) error {
	return e.timerCommand(ctx, e.interval.Pause)
}

// ResumeInterval resumes the interval timer.
func (e *Engine) ResumeInterval(ctx context.Context) error {
	return e.timerCommand(ctx, e.interval.Resume)
}

// StopInterval discards the interval timer.
func (e *Engine) StopInterval(ctx context.Context) error {
	return e.timerCommand(ctx, func() error {
		e.interval.Stop()
		return nil
	})
}

func (e *Engine) timerCommand(ctx context.Context, fn func() error) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := fn(); err != nil {
		return err
	}
	e.settle(ctx, EventTimer)
	return nil
}

// --- Tick ---

// Tick polls every timer for expiry. Called by the supervisor.
func (e *Engine) Tick(ctx context.Context) {
	e.mu.Lock()
	defer e.mu.Unlock()

	changed := false
	if e.rest.Tick(ctx) {
		changed = true
		e.announce(ctx, "Rest finished. Time for your next set.")
	}
	if e.quick.Tick() {
		changed = true
		e.announce(ctx, "Timer finished.")
	}
	for _, ev := range e.interval.Tick() {
		changed = true
		e.say(ctx, fmt.Sprintf("[HIIT] %s, round %d", ev.Phase, ev.Round))
	}
	if e.player != nil && e.player.Tick(ctx) {
		changed = true
	}

	if changed {
		e.settle(ctx, EventTimer)
		return
	}
	e.activity.Set(e.timersRunning())
}

// announce tells the user a timer finished when no scheduler will.
func (e *Engine) announce(ctx context.Context, msg string) {
	if e.scheduler != nil || e.notifier == nil {
		return
	}
	if err := e.notifier.NotifyUrgent(ctx, msg); err != nil {
		e.log.Warn("notify: %v", err)
	}
}

func (e *Engine) say(ctx context.Context, msg string) {
	if e.notifier == nil {
		return
	}
	if err := e.notifier.Notify(ctx, msg); err != nil {
		e.log.Warn("notify: %v", err)
	}
}

// --- Shared bookkeeping ---

// settle brings derived state in line with the session after a change:
// stale timers and players are dropped, the keep-alive is updated, and
// subscribers are told.
func (e *Engine) settle(ctx context.Context, kind EventKind) {
	s := e.sessions.Active()

	e.rest.Reconcile(ctx, s)
	if e.player != nil {
		e.player.Reconcile(s)
		if e.player.Closed() {
			e.closePlayer()
		}
	}
	if s == nil {
		e.reorg = nil
	}
	e.activity.Set(e.timersRunning())
	e.events.Publish(Event{Kind: kind, At: clock.Millis(e.clock)})
}

func (e *Engine) timersRunning() bool {
	return e.rest.Running() || e.quick.Running() || e.interval.Running() ||
		(e.player != nil && e.player.Running())
}

// TimersRunning reports whether any timer is counting down.
func (e *Engine) TimersRunning() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.timersRunning()
}

// Snapshot returns a copy of the active session, or nil.
func (e *Engine) Snapshot() *domain.WorkoutSession {
	return e.sessions.Active()
}
