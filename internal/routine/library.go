// Package routine provides the routine library and exercise catalog the
// session engine starts workouts from.
package routine

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
	"github.com/hammamikhairi/ottolift/internal/storage"
)

// Compile-time interface check.
var _ domain.RoutineSource = (*Library)(nil)

// Library holds routines in memory and mirrors them to one document.
// Safe for concurrent use.
type Library struct {
	mu       sync.RWMutex
	routines map[string]*domain.Routine
	docs     domain.DocumentStore
	log      *logger.Logger
}

// NewLibrary creates a library preloaded with the built-in templates. If
// docs already holds routines, they are loaded on top.
func NewLibrary(ctx context.Context, docs domain.DocumentStore, log *logger.Logger) (*Library, error) {
	l := &Library{
		routines: make(map[string]*domain.Routine),
		docs:     docs,
		log:      log,
	}
	l.seed()

	if docs != nil {
		var saved []*domain.Routine
		if _, err := storage.LoadJSON(ctx, docs, storage.KeyRoutines, &saved); err != nil {
			return nil, fmt.Errorf("loading routines: %w", err)
		}
		for _, r := range saved {
			l.routines[r.ID] = r
		}
	}
	return l, nil
}

// List returns summaries of all routines, templates first, then by name.
func (l *Library) List(ctx context.Context) ([]domain.RoutineSummary, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	l.log.Debug("listing routines, count=%d", len(l.routines))

	out := make([]domain.RoutineSummary, 0, len(l.routines))
	for _, r := range l.routines {
		out = append(out, domain.RoutineSummary{
			ID:            r.ID,
			Name:          r.Name,
			Kind:          r.Kind,
			ExerciseCount: len(r.Exercises),
		})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Kind != out[j].Kind {
			return out[i].Kind == domain.RoutineTemplate
		}
		return out[i].Name < out[j].Name
	})
	return out, nil
}

// Get returns a copy of a routine by ID.
func (l *Library) Get(ctx context.Context, id string) (*domain.Routine, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	r, ok := l.routines[id]
	if !ok {
		l.log.Debug("routine not found: %s", id)
		return nil, domain.ErrNotFound
	}
	return clone(r), nil
}

// Save inserts or replaces a routine and persists the library.
func (l *Library) Save(ctx context.Context, r *domain.Routine) error {
	if r.ID == "" {
		return fmt.Errorf("routine without id: %w", domain.ErrInvalidInput)
	}

	l.mu.Lock()
	l.routines[r.ID] = clone(r)
	snapshot := make([]*domain.Routine, 0, len(l.routines))
	for _, r := range l.routines {
		snapshot = append(snapshot, r)
	}
	l.mu.Unlock()

	l.log.Info("routine saved: %s (%s)", r.Name, r.Kind)
	if l.docs == nil {
		return nil
	}
	sort.Slice(snapshot, func(i, j int) bool { return snapshot[i].ID < snapshot[j].ID })
	return storage.SaveJSON(ctx, l.docs, storage.KeyRoutines, snapshot)
}

// Find resolves a routine by ID or by case-insensitive name prefix.
func (l *Library) Find(ctx context.Context, query string) (*domain.Routine, error) {
	if r, err := l.Get(ctx, query); err == nil {
		return r, nil
	}

	l.mu.RLock()
	defer l.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	var best *domain.Routine
	for _, r := range l.routines {
		if !strings.HasPrefix(strings.ToLower(r.Name), q) {
			continue
		}
		// Prefer templates, then the alphabetically first name.
		if best == nil || (r.IsTemplate() && !best.IsTemplate()) ||
			(r.IsTemplate() == best.IsTemplate() && r.Name < best.Name) {
			best = r
		}
	}
	if best == nil {
		return nil, domain.ErrNotFound
	}
	return clone(best), nil
}

func clone(r *domain.Routine) *domain.Routine {
	out := *r
	out.Exercises = domain.CloneExercises(r.Exercises)
	out.Supersets = domain.CloneSupersets(r.Supersets)
	return &out
}
