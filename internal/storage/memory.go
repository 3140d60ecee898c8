// Package storage provides keyed document store implementations and the
// debounced write queue that sits in front of them.
package storage

import (
	"context"
	"sync"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

// Compile-time interface check.
var _ domain.DocumentStore = (*MemoryStore)(nil)

// MemoryStore is an in-memory document store. Safe for concurrent access.
// Several MemoryStores can share one Hub to simulate separate processes
// writing the same keys.
type MemoryStore struct {
	hub    *Hub
	origin string
	log    *logger.Logger
}

// Hub holds the documents and fans write events out to watchers.
type Hub struct {
	mu       sync.RWMutex
	docs     map[string][]byte
	watchers map[chan domain.DocumentEvent]struct{}
}

// NewHub creates an empty shared document space.
func NewHub() *Hub {
	return &Hub{
		docs:     make(map[string][]byte),
		watchers: make(map[chan domain.DocumentEvent]struct{}),
	}
}

// NewMemoryStore creates an empty in-memory store with its own hub.
func NewMemoryStore(log *logger.Logger) *MemoryStore {
	return NewMemoryStoreOn(NewHub(), "local", log)
}

// NewMemoryStoreOn creates a store attached to an existing hub, writing
// under the given origin.
func NewMemoryStoreOn(hub *Hub, origin string, log *logger.Logger) *MemoryStore {
	return &MemoryStore{hub: hub, origin: origin, log: log}
}

// Origin identifies this store's writes.
func (s *MemoryStore) Origin() string { return s.origin }

// Get returns a copy of the document stored under key.
func (s *MemoryStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.hub.mu.RLock()
	defer s.hub.mu.RUnlock()

	doc, ok := s.hub.docs[key]
	if !ok {
		s.log.Debug("document not found: %s", key)
		return nil, domain.ErrNotFound
	}
	return append([]byte(nil), doc...), nil
}

// Put stores a document. Overwrites if it already exists.
func (s *MemoryStore) Put(ctx context.Context, key string, value []byte) error {
	s.hub.mu.Lock()
	s.hub.docs[key] = append([]byte(nil), value...)
	s.hub.mu.Unlock()

	s.log.Debug("saved document %s (%d bytes)", key, len(value))
	s.hub.broadcast(domain.DocumentEvent{Key: key, Origin: s.origin})
	return nil
}

// Delete removes a document. Deleting a missing key is not an error.
func (s *MemoryStore) Delete(ctx context.Context, key string) error {
	s.hub.mu.Lock()
	_, existed := s.hub.docs[key]
	delete(s.hub.docs, key)
	s.hub.mu.Unlock()

	if existed {
		s.log.Debug("deleted document %s", key)
		s.hub.broadcast(domain.DocumentEvent{Key: key, Origin: s.origin, Deleted: true})
	}
	return nil
}

// Watch streams write events until ctx is cancelled.
func (s *MemoryStore) Watch(ctx context.Context) (<-chan domain.DocumentEvent, error) {
	ch := make(chan domain.DocumentEvent, 16)

	s.hub.mu.Lock()
	s.hub.watchers[ch] = struct{}{}
	s.hub.mu.Unlock()

	go func() {
		<-ctx.Done()
		s.hub.mu.Lock()
		delete(s.hub.watchers, ch)
		s.hub.mu.Unlock()
		close(ch)
	}()
	return ch, nil
}

func (h *Hub) broadcast(ev domain.DocumentEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.watchers {
		select {
		case ch <- ev:
		default:
			// Slow watcher; it will re-read on the next event.
		}
	}
}
