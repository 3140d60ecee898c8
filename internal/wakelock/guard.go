package wakelock

import (
	"context"
	"sync"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

// Guard ties a wake lock to a view's lifetime and visibility. The lock is
// held while the view is open and visible. The platform drops locks when
// the screen goes away, so the guard re-acquires when it comes back.
// Acquire failures are logged and otherwise ignored.
type Guard struct {
	lock domain.WakeLock
	log  *logger.Logger

	mu      sync.Mutex
	open    bool
	visible bool
	held    bool
}

// NewGuard creates a guard over lock. The view starts out visible.
func NewGuard(lock domain.WakeLock, log *logger.Logger) *Guard {
	return &Guard{lock: lock, log: log, visible: true}
}

// Start marks the view open.
func (g *Guard) Start(ctx context.Context) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = true
	g.syncLocked(ctx)
}

// Stop marks the view closed.
func (g *Guard) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.open = false
	g.syncLocked(context.Background())
}

// SetVisible records whether the screen is showing.
func (g *Guard) SetVisible(ctx context.Context, visible bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.visible = visible
	g.syncLocked(ctx)
}

// Held reports whether the guard currently holds the lock.
func (g *Guard) Held() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.held
}

func (g *Guard) syncLocked(ctx context.Context) {
	want := g.open && g.visible
	switch {
	case want && !g.held:
		if err := g.lock.Acquire(ctx); err != nil {
			g.log.Debug("wake lock unavailable: %v", err)
			return
		}
		g.held = true
	case !want && g.held:
		if err := g.lock.Release(); err != nil {
			g.log.Warn("releasing wake lock: %v", err)
		}
		g.held = false
	}
}
