// Package session owns the single active workout: starting it from a
// routine, applying every mutation through one entry point, and turning
// it into a history record (or dropping it) at the end.
package session

import (
	"context"
	"fmt"
	"sync"

	"github.com/hammamikhairi/ottolift/internal/clock"
	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/idgen"
	"github.com/hammamikhairi/ottolift/internal/logger"
	"github.com/hammamikhairi/ottolift/internal/storage"
)

// Option configures the manager.
type Option func(*Manager)

// WithRestSettings sets the rest-time preferences applied on start.
func WithRestSettings(r RestSettings) Option {
	return func(m *Manager) {
		m.rest = r
	}
}

// WithCatalog sets the catalog used to validate sets on finish.
func WithCatalog(c domain.ExerciseCatalog) Option {
	return func(m *Manager) {
		m.catalog = c
	}
}

// WithIDs sets the ID generator for sessions, exercises and sets.
func WithIDs(f idgen.Func) Option {
	return func(m *Manager) {
		m.newID = f
	}
}

// WithQueue debounces writes of the active session through q.
func WithQueue(q *storage.WriteQueue) Option {
	return func(m *Manager) {
		m.queue = q
	}
}

// activeDoc is the persisted form of the active session.
type activeDoc struct {
	Session   *domain.WorkoutSession `json:"session"`
	Minimized bool                   `json:"minimized"`
}

// EndResult describes a finished session.
type EndResult struct {
	// Entry is nil when nothing was completed and no history was written.
	Entry   *domain.HistoryEntry `json:"entry,omitempty"`
	PRCount int                  `json:"prCount"`
}

// Manager owns the active session. All methods are safe for concurrent use.
type Manager struct {
	docs     domain.DocumentStore
	queue    *storage.WriteQueue
	routines domain.RoutineSource
	history  domain.HistoryStore
	catalog  domain.ExerciseCatalog
	clock    clock.Clock
	log      *logger.Logger
	newID    idgen.Func
	rest     RestSettings

	mu        sync.Mutex
	session   *domain.WorkoutSession
	minimized bool
}

// NewManager creates a manager with no active session.
func NewManager(docs domain.DocumentStore, routines domain.RoutineSource, history domain.HistoryStore, clk clock.Clock, log *logger.Logger, opts ...Option) *Manager {
	m := &Manager{
		docs:     docs,
		routines: routines,
		history:  history,
		clock:    clk,
		log:      log,
		newID:    idgen.New,
		rest:     DefaultRestSettings(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Start begins a session from the routine with the given ID.
func (m *Manager) Start(ctx context.Context, routineID string) (*domain.WorkoutSession, error) {
	r, err := m.routines.Get(ctx, routineID)
	if err != nil {
		return nil, fmt.Errorf("loading routine %s: %w", routineID, err)
	}
	return m.StartRoutine(ctx, r)
}

// StartRoutine begins a session from r.
func (m *Manager) StartRoutine(ctx context.Context, r *domain.Routine) (*domain.WorkoutSession, error) {
	var past []domain.HistoryEntry
	if r.IsTemplate() {
		var err error
		past, err = m.history.List(ctx)
		if err != nil {
			m.log.Warn("loading history for %s, starting from template values: %v", r.Name, err)
		}
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session != nil {
		return nil, domain.ErrSessionActive
	}

	s := FromRoutine(r, past, m.rest, m.newID, clock.Millis(m.clock))
	m.session = s
	m.minimized = false
	m.persistLocked(ctx)

	m.log.Info("started %q (%d exercises)", s.RoutineName, len(s.Exercises))
	return s.Clone(), nil
}

// Active returns a copy of the active session, or nil.
func (m *Manager) Active() *domain.WorkoutSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session.Clone()
}

// Minimized reports whether the session view is minimized.
func (m *Manager) Minimized() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.minimized
}

// Update applies fn to the active session and stamps LastUpdated. fn works
// on a copy; if it returns an error the session is left untouched.
func (m *Manager) Update(ctx context.Context, fn func(*domain.WorkoutSession) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return domain.ErrNoActiveSession
	}
	next := m.session.Clone()
	if err := fn(next); err != nil {
		return err
	}
	next.LastUpdated = clock.Millis(m.clock)
	m.session = next
	m.persistLocked(ctx)
	return nil
}

// Replace swaps in a whole new version of the active session.
func (m *Manager) Replace(ctx context.Context, s *domain.WorkoutSession) error {
	return m.Update(ctx, func(cur *domain.WorkoutSession) error {
		*cur = *s.Clone()
		return nil
	})
}

// SetMinimized records whether the session view is minimized.
func (m *Manager) SetMinimized(ctx context.Context, minimized bool) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return domain.ErrNoActiveSession
	}
	m.minimized = minimized
	m.persistLocked(ctx)
	return nil
}

// End finalizes the session. Completed sets that miss required values
// block finishing with a *domain.ValidationError and leave the session as
// it is. A session with no completed set writes no history.
func (m *Manager) End(ctx context.Context, endTime int64) (*EndResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return nil, domain.ErrNoActiveSession
	}
	s := m.session
	if issues := Validate(ctx, s, m.catalog); len(issues) > 0 {
		return nil, &domain.ValidationError{Issues: issues}
	}
	if endTime == 0 {
		endTime = clock.Millis(m.clock)
	}

	res := &EndResult{}
	if len(s.Exercises) > 0 && s.CompletedSetCount() > 0 {
		entry, err := m.finalize(ctx, s, endTime)
		if err != nil {
			return nil, err
		}
		res.Entry = entry
		res.PRCount = entry.PRCount
	} else {
		m.log.Info("ending %q with nothing completed, history unchanged", s.RoutineName)
	}

	m.session = nil
	m.minimized = false
	m.persistLocked(ctx)
	return res, nil
}

func (m *Manager) finalize(ctx context.Context, s *domain.WorkoutSession, endTime int64) (*domain.HistoryEntry, error) {
	past, err := m.history.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	baseline := PersonalBests(past)

	entry := &domain.HistoryEntry{
		ID:          s.ID,
		RoutineID:   s.RoutineID,
		RoutineName: s.RoutineName,
		StartTime:   s.StartTime,
		EndTime:     endTime,
		Supersets:   domain.CloneSupersets(s.Supersets),
	}
	for _, ex := range s.Exercises {
		done := ex.Clone()
		done.Sets = done.Sets[:0]
		for _, set := range ex.Sets {
			if set.IsComplete {
				done.Sets = append(done.Sets, set)
				entry.TotalVolume += set.Volume()
			}
		}
		if len(done.Sets) > 0 {
			entry.Exercises = append(entry.Exercises, done)
		}
	}
	entry.PRCount = CountPRs(baseline, entry.Exercises)

	if err := m.history.Append(ctx, entry); err != nil {
		return nil, fmt.Errorf("writing history: %w", err)
	}

	if err := m.routines.Save(ctx, LastPerformedRoutine(s, endTime)); err != nil {
		m.log.Warn("saving last-performed routine: %v", err)
	}

	m.log.Info("finished %q: %d exercises, %.0f volume, %d PRs",
		entry.RoutineName, len(entry.Exercises), entry.TotalVolume, entry.PRCount)
	return entry, nil
}

// Discard drops the active session without writing history.
func (m *Manager) Discard(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.session == nil {
		return domain.ErrNoActiveSession
	}
	m.log.Info("discarded %q", m.session.RoutineName)
	m.session = nil
	m.minimized = false
	m.persistLocked(ctx)
	return nil
}

// Restore loads the persisted session after a restart.
func (m *Manager) Restore(ctx context.Context) error {
	var doc activeDoc
	ok, err := storage.LoadJSON(ctx, m.docs, storage.KeyActiveSession, &doc)
	if err != nil {
		return fmt.Errorf("restoring session: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if ok && doc.Session != nil {
		m.session = doc.Session
		m.minimized = doc.Minimized
		m.log.Info("restored %q", doc.Session.RoutineName)
	}
	return nil
}

// ApplyExternal reloads the session written by another process, replacing
// local state. It returns the new session (nil if the other writer ended
// it).
func (m *Manager) ApplyExternal(ctx context.Context) (*domain.WorkoutSession, error) {
	var doc activeDoc
	ok, err := storage.LoadJSON(ctx, m.docs, storage.KeyActiveSession, &doc)
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if !ok {
		doc = activeDoc{}
	}
	m.session = doc.Session
	m.minimized = doc.Minimized
	return m.session.Clone(), nil
}

// persistLocked writes the current state. Errors are logged; the
// in-memory session stays authoritative.
func (m *Manager) persistLocked(ctx context.Context) {
	if m.session == nil {
		if m.queue != nil {
			m.queue.Delete(storage.KeyActiveSession)
			return
		}
		if err := m.docs.Delete(ctx, storage.KeyActiveSession); err != nil {
			m.log.Warn("clearing active session: %v", err)
		}
		return
	}

	doc := activeDoc{Session: m.session, Minimized: m.minimized}
	var err error
	if m.queue != nil {
		err = storage.QueueJSON(m.queue, storage.KeyActiveSession, doc)
	} else {
		err = storage.SaveJSON(ctx, m.docs, storage.KeyActiveSession, doc)
	}
	if err != nil {
		m.log.Warn("persisting active session: %v", err)
	}
}
