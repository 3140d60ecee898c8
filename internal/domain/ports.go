package domain

import (
	"context"
	"time"
)

// DocumentStore is a keyed document store. The engine keeps one document
// per concern (active session, active rest timer, history, routines).
// Implementations can be in-memory, SQLite, Postgres, or anything else
// that can hold a byte slice under a key.
type DocumentStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	// Watch streams write events until ctx is cancelled. Events carry the
	// writer's origin so a process can ignore its own writes.
	Watch(ctx context.Context) (<-chan DocumentEvent, error)
	// Origin identifies this process's writes.
	Origin() string
}

// DocumentEvent reports a write (or delete) of a key.
type DocumentEvent struct {
	Key     string
	Origin  string
	Deleted bool
}

// RoutineSource provides routines. Routine CRUD is owned outside the engine.
type RoutineSource interface {
	List(ctx context.Context) ([]RoutineSummary, error)
	Get(ctx context.Context, id string) (*Routine, error)
	Save(ctx context.Context, routine *Routine) error
}

// HistoryStore records finished sessions.
type HistoryStore interface {
	Append(ctx context.Context, entry *HistoryEntry) error
	// List returns entries, most recent first.
	List(ctx context.Context) ([]HistoryEntry, error)
}

// ExerciseCatalog answers questions about catalog exercises.
type ExerciseCatalog interface {
	Get(ctx context.Context, id string) (*Exercise, error)
}

// Notifier delivers messages to the user. Implementations can write to
// stdout, push notifications, or play a sound.
type Notifier interface {
	Notify(ctx context.Context, message string) error
	NotifyUrgent(ctx context.Context, message string) error
}

// NotificationOptions mirror what a notification worker understands.
type NotificationOptions struct {
	Body               string
	Tag                string
	RequireInteraction bool
}

// NotificationScheduler fires a notification after a delay. Every
// schedule/cancel pair is routed through the same tag.
type NotificationScheduler interface {
	Schedule(ctx context.Context, delay time.Duration, title string, opts NotificationOptions) error
	Cancel(tag string)
}

// AudioKeepAlive is told when at least one timer is running so a silent
// audio loop can keep the process scheduled.
type AudioKeepAlive interface {
	SetActive(active bool)
}

// WakeLock keeps the screen (or the machine) awake.
type WakeLock interface {
	Acquire(ctx context.Context) error
	Release() error
}
