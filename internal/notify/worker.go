package notify

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

// Compile-time interface check.
var _ domain.NotificationScheduler = (*Worker)(nil)

// Worker fires notifications after a delay. It holds at most one pending
// notification per tag: scheduling a tag again replaces the earlier one.
type Worker struct {
	notifier domain.Notifier
	log      *logger.Logger

	mu      sync.Mutex
	pending map[string]*pending
	closed  bool
}

// pending is one scheduled notification. Its identity, not the timer's,
// decides whether a firing is still current.
type pending struct {
	timer *time.Timer
}

// NewWorker creates a worker that delivers through notifier.
func NewWorker(notifier domain.Notifier, log *logger.Logger) *Worker {
	return &Worker{
		notifier: notifier,
		log:      log,
		pending:  make(map[string]*pending),
	}
}

// Schedule delivers the notification after delay.
func (w *Worker) Schedule(ctx context.Context, delay time.Duration, title string, opts domain.NotificationOptions) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return domain.ErrCapabilityDenied
	}
	if prev, ok := w.pending[opts.Tag]; ok {
		prev.timer.Stop()
	}
	if delay < 0 {
		delay = 0
	}

	p := &pending{}
	w.pending[opts.Tag] = p
	p.timer = time.AfterFunc(delay, func() { w.deliver(p, title, opts) })
	w.log.Debug("scheduled %q in %s (tag %s)", title, delay.Round(time.Millisecond), opts.Tag)
	return nil
}

// Cancel drops the pending notification for tag, if any.
func (w *Worker) Cancel(tag string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if p, ok := w.pending[tag]; ok {
		p.timer.Stop()
		delete(w.pending, tag)
		w.log.Debug("cancelled %s", tag)
	}
}

// Pending returns the number of notifications waiting to fire.
func (w *Worker) Pending() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending)
}

// Close cancels everything pending. Later schedules are refused.
func (w *Worker) Close() {
	w.mu.Lock()
	defer w.mu.Unlock()
	for tag, p := range w.pending {
		p.timer.Stop()
		delete(w.pending, tag)
	}
	w.closed = true
}

func (w *Worker) deliver(p *pending, title string, opts domain.NotificationOptions) {
	w.mu.Lock()
	if w.pending[opts.Tag] != p {
		// Replaced or cancelled after the timer fired.
		w.mu.Unlock()
		return
	}
	delete(w.pending, opts.Tag)
	w.mu.Unlock()

	msg := title
	if opts.Body != "" {
		msg = fmt.Sprintf("%s %s", title, opts.Body)
	}

	ctx := context.Background()
	var err error
	if opts.RequireInteraction {
		err = w.notifier.NotifyUrgent(ctx, msg)
	} else {
		err = w.notifier.Notify(ctx, msg)
	}
	if err != nil {
		w.log.Warn("delivering %s: %v", opts.Tag, err)
	}
}
