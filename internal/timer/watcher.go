package timer

import (
	"context"
	"fmt"
	"time"

	"github.com/hammamikhairi/ottolift/internal/clock"
	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

// SessionView is what the watcher needs to know about the live workout.
type SessionView interface {
	// Snapshot returns a copy of the active session, or nil.
	Snapshot() *domain.WorkoutSession
	// TimersRunning reports whether any timer is counting down.
	TimersRunning() bool
}

// WatcherOption configures the watcher.
type WatcherOption func(*Watcher)

// WithWatchInterval sets how often the watcher checks session state.
func WithWatchInterval(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.interval = d
	}
}

// WithIdleAfter sets how long a session may go untouched before a nudge.
func WithIdleAfter(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		w.idleAfter = d
	}
}

// Watcher nudges the user when an active session has gone quiet: no set
// logged, nothing edited, and no timer running. It nudges once per quiet
// stretch. Runs on a slower cycle than the supervisor (default: 1 minute).
type Watcher struct {
	view      SessionView
	notifier  domain.Notifier
	clock     clock.Clock
	log       *logger.Logger
	interval  time.Duration
	idleAfter time.Duration

	nudgedAt int64 // LastUpdated of the session when last nudged
}

// NewWatcher creates a watcher with the given dependencies.
func NewWatcher(view SessionView, notifier domain.Notifier, clk clock.Clock, log *logger.Logger, opts ...WatcherOption) *Watcher {
	w := &Watcher{
		view:      view,
		notifier:  notifier,
		clock:     clk,
		log:       log,
		interval:  1 * time.Minute,
		idleAfter: 15 * time.Minute,
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Run starts the watcher loop. Blocks until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.log.Info("watcher started (interval=%s, idle after %s)", w.interval, w.idleAfter)

	for {
		select {
		case <-ctx.Done():
			w.log.Info("watcher stopped")
			return
		case <-ticker.C:
			w.check(ctx)
		}
	}
}

// check runs one watcher cycle.
func (w *Watcher) check(ctx context.Context) {
	msg := w.buildMessage()
	if msg == "" {
		return
	}
	if err := w.notifier.Notify(ctx, msg); err != nil {
		w.log.Error("watcher: notify: %v", err)
	}
}

// buildMessage decides whether the session deserves a nudge.
func (w *Watcher) buildMessage() string {
	session := w.view.Snapshot()
	if session == nil || w.view.TimersRunning() {
		return ""
	}
	if session.LastUpdated == w.nudgedAt {
		return ""
	}

	quiet := time.Duration(clock.Millis(w.clock)-session.LastUpdated) * time.Millisecond
	w.log.Debug("watcher: session %s quiet for %s", session.ID, quiet.Round(time.Second))
	if quiet < w.idleAfter {
		return ""
	}

	w.nudgedAt = session.LastUpdated
	done := session.CompletedSetCount()
	return fmt.Sprintf("[Watcher] Nothing logged for %s (%d sets done). Still training? Say \"finish\" when you're through.",
		quiet.Round(time.Minute), done)
}
