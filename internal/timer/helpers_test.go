package timer

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/ottolift/internal/clock"
	"github.com/hammamikhairi/ottolift/internal/domain"
)

var epoch = time.UnixMilli(t0)

// fakeSessions is a SessionWriter over a single in-memory session.
type fakeSessions struct {
	mu      sync.Mutex
	session *domain.WorkoutSession
	updates int
}

func newFakeSessions(exercises ...domain.WorkoutExercise) *fakeSessions {
	return &fakeSessions{session: &domain.WorkoutSession{ID: "s1", Exercises: exercises}}
}

func (f *fakeSessions) Update(_ context.Context, fn func(*domain.WorkoutSession) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.session == nil {
		return domain.ErrNoActiveSession
	}
	f.updates++
	return fn(f.session)
}

func (f *fakeSessions) set(exerciseID, setID string) domain.PerformedSet {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ex := f.session.FindExercise(exerciseID)
	_, s := ex.FindSet(setID)
	return *s
}

// scheduledCall records one Schedule.
type scheduledCall struct {
	delay time.Duration
	title string
	opts  domain.NotificationOptions
}

// mockScheduler collects schedule and cancel calls.
type mockScheduler struct {
	mu        sync.Mutex
	scheduled []scheduledCall
	cancelled []string
}

func (m *mockScheduler) Schedule(_ context.Context, delay time.Duration, title string, opts domain.NotificationOptions) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduled = append(m.scheduled, scheduledCall{delay: delay, title: title, opts: opts})
	return nil
}

func (m *mockScheduler) Cancel(tag string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelled = append(m.cancelled, tag)
}

func (m *mockScheduler) counts() (int, int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.scheduled), len(m.cancelled)
}

func (m *mockScheduler) lastDelay() time.Duration {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.scheduled[len(m.scheduled)-1].delay
}

// mockNotifier collects notifications for testing.
type mockNotifier struct {
	mu       sync.Mutex
	messages []string
	urgent   []string
}

func (m *mockNotifier) Notify(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, msg)
	return nil
}

func (m *mockNotifier) NotifyUrgent(_ context.Context, msg string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.urgent = append(m.urgent, msg)
	return nil
}

func (m *mockNotifier) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages) + len(m.urgent)
}

func exercise(id string, setIDs ...string) domain.WorkoutExercise {
	ex := domain.WorkoutExercise{ID: id, ExerciseID: "cat-" + id}
	for _, sid := range setIDs {
		ex.Sets = append(ex.Sets, domain.PerformedSet{ID: sid, Reps: 8, Weight: 60, Type: domain.SetNormal})
	}
	return ex
}

func newFakeClock() *clock.Fake {
	return clock.NewFake(epoch)
}
