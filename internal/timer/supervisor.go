package timer

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/ottolift/internal/logger"
)

// Ticker is driven by the supervisor on every tick.
type Ticker interface {
	Tick(ctx context.Context)
}

// Option configures the supervisor.
type Option func(*Supervisor)

// WithTickInterval sets how often the supervisor polls for expiry.
func WithTickInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.tickInterval = d
	}
}

// WithWatcher runs an idle-session watcher next to the tick loop.
func WithWatcher(w *Watcher) Option {
	return func(s *Supervisor) {
		s.watcher = w
	}
}

// Supervisor runs in the background and polls the engine for expired
// timers. Polling only notices expiry; the remaining time is always read
// from the timers' absolute targets.
type Supervisor struct {
	target       Ticker
	log          *logger.Logger
	tickInterval time.Duration
	watcher      *Watcher

	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// New creates a supervisor that ticks target.
func New(target Ticker, log *logger.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		target:       target,
		log:          log,
		tickInterval: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start begins the background loop. Non-blocking.
func (s *Supervisor) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.log.Warn("timer supervisor already running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.done = make(chan struct{})

	go s.loop(childCtx, s.done)

	if s.watcher != nil {
		go s.watcher.Run(childCtx)
	}

	s.log.Info("timer supervisor started (tick=%s)", s.tickInterval)
}

// Stop shuts the loop down and waits for an in-flight tick to return.
func (s *Supervisor) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.cancel()
	s.running = false
	done := s.done
	s.mu.Unlock()

	<-done
	s.log.Info("timer supervisor stopped")
}

func (s *Supervisor) loop(ctx context.Context, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.target.Tick(ctx)
		}
	}
}
