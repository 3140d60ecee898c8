package timer

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/hammamikhairi/ottolift/internal/clock"
	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
	"github.com/hammamikhairi/ottolift/internal/storage"
)

type restFixture struct {
	rest     *Rest
	sessions *fakeSessions
	sched    *mockScheduler
	store    *TimerStore
	clock    *clock.Fake
}

func setupRest(t *testing.T) *restFixture {
	t.Helper()
	log := logger.New(logger.LevelOff, nil)
	f := &restFixture{
		sessions: newFakeSessions(exercise("a", "a1", "a2"), exercise("b", "b1")),
		sched:    &mockScheduler{},
		store:    NewTimerStore(storage.NewMemoryStore(log), nil),
		clock:    newFakeClock(),
	}
	f.rest = NewRest(f.sessions, f.clock, log, WithScheduler(f.sched), WithStore(f.store))
	return f
}

func TestRestStartAndFinishOnce(t *testing.T) {
	f := setupRest(t)
	r, sessions := f.rest, f.sessions
	ctx := context.Background()

	if err := r.Start(ctx, "a", "a1", 90); err != nil {
		t.Fatalf("start: %v", err)
	}
	if !r.Running() {
		t.Fatal("expected running timer")
	}

	f.clock.Advance(89 * time.Second)
	if r.Tick(ctx) {
		t.Fatal("finished early")
	}

	f.clock.Advance(2 * time.Second)
	if !r.Tick(ctx) {
		t.Fatal("expected finish")
	}
	if r.Tick(ctx) {
		t.Fatal("finished twice")
	}
	if r.Info() != nil {
		t.Fatal("timer not cleared after finish")
	}
	if got := sessions.set("a", "a1").ActualRest; got != 90 {
		t.Fatalf("actualRest = %d, want 90", got)
	}
}

func TestRestPausedNeverFinishes(t *testing.T) {
	f := setupRest(t)
	r, sched := f.rest, f.sched
	ctx := context.Background()

	r.Start(ctx, "a", "a1", 30)
	f.clock.Advance(10 * time.Second)
	if err := r.Pause(ctx); err != nil {
		t.Fatalf("pause: %v", err)
	}
	_, cancels := sched.counts()
	if cancels != 1 {
		t.Fatalf("expected pause to cancel the notification, got %d cancels", cancels)
	}

	f.clock.Advance(time.Hour)
	if r.Tick(ctx) {
		t.Fatal("paused timer finished")
	}
	if got := r.Remaining(); got != 20_000 {
		t.Fatalf("remaining = %d, want 20000", got)
	}

	r.Resume(ctx)
	if got := sched.lastDelay(); got != 20*time.Second {
		t.Fatalf("rescheduled delay = %s, want 20s", got)
	}
}

func TestRestSupersedeWritesActualRest(t *testing.T) {
	f := setupRest(t)
	r, sessions := f.rest, f.sessions
	ctx := context.Background()

	r.Start(ctx, "a", "a1", 120)
	f.clock.Advance(42 * time.Second)
	r.Start(ctx, "b", "b1", 60)

	if got := sessions.set("a", "a1").ActualRest; got != 42 {
		t.Fatalf("superseded actualRest = %d, want 42", got)
	}
	info := r.Info()
	if info.ExerciseID != "b" || info.SetID != "b1" || info.TotalDuration != 60 {
		t.Fatalf("unexpected timer %+v", info)
	}
}

func TestRestSkipRecordsElapsed(t *testing.T) {
	f := setupRest(t)
	r, sessions := f.rest, f.sessions
	ctx := context.Background()

	r.Start(ctx, "a", "a2", 90)
	f.clock.Advance(15 * time.Second)
	if err := r.Skip(ctx); err != nil {
		t.Fatalf("skip: %v", err)
	}
	if got := sessions.set("a", "a2").ActualRest; got != 15 {
		t.Fatalf("actualRest = %d, want 15", got)
	}
	if err := r.Skip(ctx); !errors.Is(err, domain.ErrNoTimer) {
		t.Fatalf("second skip: expected ErrNoTimer, got %v", err)
	}
}

func TestRestReconcileCancelsRemovedExercise(t *testing.T) {
	f := setupRest(t)
	r, sessions, sched := f.rest, f.sessions, f.sched
	ctx := context.Background()

	r.Start(ctx, "a", "a1", 60)
	f.clock.Advance(5 * time.Second)

	// Exercise removed mid-rest.
	sessions.session.Exercises = sessions.session.Exercises[1:]
	r.Reconcile(ctx, sessions.session)

	if r.Info() != nil {
		t.Fatal("timer survived removal of its exercise")
	}
	_, cancels := sched.counts()
	if cancels != 1 {
		t.Fatalf("expected notification cancel, got %d", cancels)
	}

	f.clock.Advance(time.Minute)
	if r.Tick(ctx) {
		t.Fatal("cancelled timer finished")
	}
}

func TestRestFinishOnRemovedSetIsSilent(t *testing.T) {
	f := setupRest(t)
	r, sessions := f.rest, f.sessions
	ctx := context.Background()

	r.Start(ctx, "a", "a1", 10)
	sessions.session.Exercises = nil
	f.clock.Advance(11 * time.Second)

	if !r.Tick(ctx) {
		t.Fatal("expected the timer to finish")
	}
}

func TestRestSuppressesDuplicateSchedules(t *testing.T) {
	f := setupRest(t)
	r, sched := f.rest, f.sched
	ctx := context.Background()

	r.Start(ctx, "a", "a1", 60)
	r.ApplyExternal(ctx, r.Info())
	r.ApplyExternal(ctx, r.Info())

	scheduled, _ := sched.counts()
	if scheduled != 1 {
		t.Fatalf("expected 1 schedule for the same target, got %d", scheduled)
	}

	r.AddTime(ctx, 30)
	scheduled, _ = sched.counts()
	if scheduled != 2 {
		t.Fatalf("expected a reschedule after the target moved, got %d", scheduled)
	}
}

func TestRestChangeDurationKeepsElapsed(t *testing.T) {
	f := setupRest(t)
	r := f.rest
	ctx := context.Background()

	r.Start(ctx, "a", "a1", 60)
	f.clock.Advance(20 * time.Second)
	r.ChangeDuration(ctx, 180)

	if got := r.Remaining(); got != 160_000 {
		t.Fatalf("remaining = %d, want 160000", got)
	}
	if got := r.Info().InitialDuration; got != 60 {
		t.Fatalf("initial duration changed to %d", got)
	}
}

func TestRestShrinkBelowElapsedRecordsRealRest(t *testing.T) {
	f := setupRest(t)
	r, sessions := f.rest, f.sessions
	ctx := context.Background()

	r.Start(ctx, "a", "a1", 90)
	f.clock.Advance(60 * time.Second)
	r.ChangeDuration(ctx, 30)

	if !r.Tick(ctx) {
		t.Fatal("expected the timer to finish")
	}
	if got := sessions.set("a", "a1").ActualRest; got != 60 {
		t.Fatalf("actualRest = %d, want 60", got)
	}
}

func TestRestRestoreAfterRestart(t *testing.T) {
	f := setupRest(t)
	r, sessions, store := f.rest, f.sessions, f.store
	ctx := context.Background()

	r.Start(ctx, "a", "a1", 60)
	f.clock.Advance(10 * time.Second)
	r.Pause(ctx)

	log := logger.New(logger.LevelOff, nil)
	again := NewRest(sessions, f.clock, log, WithStore(store))
	if err := again.Restore(ctx); err != nil {
		t.Fatalf("restore: %v", err)
	}

	info := again.Info()
	if info == nil || !info.IsPaused || info.TimeLeftWhenPaused != 50_000 {
		t.Fatalf("restored %+v", info)
	}
}

func TestRestRejectsBadDurations(t *testing.T) {
	f := setupRest(t)
	r := f.rest
	ctx := context.Background()

	if err := r.Start(ctx, "a", "a1", 0); !errors.Is(err, domain.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
	if err := r.Pause(ctx); !errors.Is(err, domain.ErrNoTimer) {
		t.Fatalf("expected ErrNoTimer, got %v", err)
	}
}
