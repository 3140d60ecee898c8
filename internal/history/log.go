// Package history keeps the record of finished workouts.
package history

import (
	"context"
	"fmt"
	"sync"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
	"github.com/hammamikhairi/ottolift/internal/storage"
)

// Compile-time interface check.
var _ domain.HistoryStore = (*Log)(nil)

// Log is the workout history, most recent first, persisted as a single
// document. Safe for concurrent use.
type Log struct {
	mu      sync.RWMutex
	entries []domain.HistoryEntry
	docs    domain.DocumentStore
	log     *logger.Logger
}

// Open loads the history from docs. A missing document is an empty log.
func Open(ctx context.Context, docs domain.DocumentStore, log *logger.Logger) (*Log, error) {
	l := &Log{docs: docs, log: log}
	if _, err := storage.LoadJSON(ctx, docs, storage.KeyHistory, &l.entries); err != nil {
		return nil, fmt.Errorf("loading history: %w", err)
	}
	log.Debug("loaded %d history entries", len(l.entries))
	return l, nil
}

// Append records a finished session at the front of the log. The
// document is written immediately; on failure the log is unchanged.
func (l *Log) Append(ctx context.Context, entry *domain.HistoryEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	next := make([]domain.HistoryEntry, 0, len(l.entries)+1)
	next = append(next, *entry)
	next = append(next, l.entries...)

	if err := storage.SaveJSON(ctx, l.docs, storage.KeyHistory, next); err != nil {
		return err
	}
	l.entries = next
	return nil
}

// List returns the entries, most recent first.
func (l *Log) List(ctx context.Context) ([]domain.HistoryEntry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return append([]domain.HistoryEntry(nil), l.entries...), nil
}

// Reload re-reads the document after another process wrote it.
func (l *Log) Reload(ctx context.Context) error {
	var entries []domain.HistoryEntry
	if _, err := storage.LoadJSON(ctx, l.docs, storage.KeyHistory, &entries); err != nil {
		return fmt.Errorf("reloading history: %w", err)
	}
	l.mu.Lock()
	l.entries = entries
	l.mu.Unlock()
	return nil
}
