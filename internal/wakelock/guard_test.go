package wakelock

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/hammamikhairi/ottolift/internal/logger"
)

type mockLock struct {
	mu       sync.Mutex
	acquired int
	released int
	fail     bool
}

func (m *mockLock) Acquire(context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.fail {
		return errors.New("denied")
	}
	m.acquired++
	return nil
}

func (m *mockLock) Release() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.released++
	return nil
}

func TestGuardFollowsVisibility(t *testing.T) {
	lock := &mockLock{}
	g := NewGuard(lock, logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	g.Start(ctx)
	if !g.Held() || lock.acquired != 1 {
		t.Fatalf("after start: held=%v acquired=%d", g.Held(), lock.acquired)
	}

	g.SetVisible(ctx, false)
	if g.Held() || lock.released != 1 {
		t.Fatalf("after hide: held=%v released=%d", g.Held(), lock.released)
	}

	g.SetVisible(ctx, true)
	if !g.Held() || lock.acquired != 2 {
		t.Fatalf("after show: held=%v acquired=%d", g.Held(), lock.acquired)
	}

	g.Stop()
	if g.Held() || lock.released != 2 {
		t.Fatalf("after stop: held=%v released=%d", g.Held(), lock.released)
	}

	// Visibility changes with the view closed do nothing.
	g.SetVisible(ctx, true)
	if lock.acquired != 2 {
		t.Fatalf("acquired while closed")
	}
}

func TestGuardDegradesSilently(t *testing.T) {
	lock := &mockLock{fail: true}
	g := NewGuard(lock, logger.New(logger.LevelOff, nil))

	g.Start(context.Background())
	if g.Held() {
		t.Fatal("guard claims a lock it could not get")
	}
	g.Stop()
	if lock.released != 0 {
		t.Fatal("released a lock that was never held")
	}
}

func TestInhibitorMissingCommand(t *testing.T) {
	i := NewInhibitor("definitely-not-a-real-binary-xyz --flag", logger.New(logger.LevelOff, nil))
	if err := i.Acquire(context.Background()); err == nil {
		t.Fatal("expected error")
	}
	if i.Held() {
		t.Fatal("held after failed acquire")
	}
	if err := i.Release(); err != nil {
		t.Fatalf("release of free lock: %v", err)
	}
}
