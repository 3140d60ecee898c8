package routine

import (
	"context"
	"sort"
	"sync"

	"github.com/hammamikhairi/ottolift/internal/domain"
)

// Compile-time interface check.
var _ domain.ExerciseCatalog = (*Catalog)(nil)

// Catalog is an in-memory exercise catalog.
type Catalog struct {
	mu        sync.RWMutex
	exercises map[string]domain.Exercise
}

// NewCatalog creates a catalog with the built-in exercises.
func NewCatalog() *Catalog {
	c := &Catalog{exercises: make(map[string]domain.Exercise)}
	for _, ex := range []domain.Exercise{
		{ID: "bench-press", Name: "Bench Press"},
		{ID: "overhead-press", Name: "Overhead Press"},
		{ID: "dips", Name: "Dips", Bodyweight: true},
		{ID: "plank", Name: "Plank", Bodyweight: true, Timed: true},
		{ID: "back-squat", Name: "Back Squat"},
		{ID: "barbell-row", Name: "Barbell Row"},
		{ID: "pull-up", Name: "Pull-up", Bodyweight: true},
		{ID: "romanian-deadlift", Name: "Romanian Deadlift"},
	} {
		c.exercises[ex.ID] = ex
	}
	return c
}

// Get returns a catalog entry.
func (c *Catalog) Get(ctx context.Context, id string) (*domain.Exercise, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	ex, ok := c.exercises[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return &ex, nil
}

// Add inserts or replaces an entry.
func (c *Catalog) Add(ex domain.Exercise) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.exercises[ex.ID] = ex
}

// Name returns the display name of an exercise, or the ID if unknown.
func (c *Catalog) Name(id string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if ex, ok := c.exercises[id]; ok {
		return ex.Name
	}
	return id
}

// All returns every entry sorted by name.
func (c *Catalog) All() []domain.Exercise {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Exercise, 0, len(c.exercises))
	for _, ex := range c.exercises {
		out = append(out, ex)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
