package engine

import (
	"context"
	"fmt"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/storage"
)

// Reloader is implemented by stores that cache a document in memory.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Follow watches docs for writes made by other processes and merges them
// into local state; the last writer outside the process wins. It returns
// once the watch is established and keeps following until ctx ends.
// reloaders are refreshed when their document changes, keyed by document.
func (e *Engine) Follow(ctx context.Context, docs domain.DocumentStore, reloaders map[string]Reloader) error {
	events, err := docs.Watch(ctx)
	if err != nil {
		return fmt.Errorf("watching documents: %w", err)
	}
	own := docs.Origin()

	go func() {
		for ev := range events {
			if ev.Origin == own {
				continue
			}
			e.applyExternal(ctx, ev, reloaders)
		}
	}()
	return nil
}

func (e *Engine) applyExternal(ctx context.Context, ev domain.DocumentEvent, reloaders map[string]Reloader) {
	e.log.Debug("external write to %s from %s", ev.Key, ev.Origin)

	switch ev.Key {
	case storage.KeyActiveSession:
		e.mu.Lock()
		defer e.mu.Unlock()
		if _, err := e.sessions.ApplyExternal(ctx); err != nil {
			e.log.Warn("applying external session: %v", err)
			return
		}
		e.settle(ctx, EventSession)

	case storage.KeyRestTimer:
		if e.timerStore == nil {
			return
		}
		info, err := e.timerStore.Load(ctx)
		if err != nil {
			e.log.Warn("applying external rest timer: %v", err)
			return
		}
		e.mu.Lock()
		defer e.mu.Unlock()
		e.rest.ApplyExternal(ctx, info)
		e.settle(ctx, EventTimer)

	default:
		if r, ok := reloaders[ev.Key]; ok {
			if err := r.Reload(ctx); err != nil {
				e.log.Warn("reloading %s: %v", ev.Key, err)
			}
		}
	}
}
