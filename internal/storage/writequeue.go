package storage

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

// WriteQueue coalesces writes per key and hands only the latest value to
// the store once the key has been quiet for the debounce window. Flush
// writes everything still pending and must be called before shutdown.
// Write failures are logged; the caller's in-memory state stays valid.
type WriteQueue struct {
	store    domain.DocumentStore
	log      *logger.Logger
	debounce time.Duration

	mu      sync.Mutex
	pending map[string]*pendingWrite
	closed  bool
}

type pendingWrite struct {
	value  []byte
	delete bool
	timer  *time.Timer
}

// NewWriteQueue creates a queue in front of store.
func NewWriteQueue(store domain.DocumentStore, debounce time.Duration, log *logger.Logger) *WriteQueue {
	return &WriteQueue{
		store:    store,
		log:      log,
		debounce: debounce,
		pending:  make(map[string]*pendingWrite),
	}
}

// Put schedules value to be written under key.
func (q *WriteQueue) Put(key string, value []byte) {
	q.enqueue(key, &pendingWrite{value: append([]byte(nil), value...)})
}

// Delete schedules key for removal.
func (q *WriteQueue) Delete(key string) {
	q.enqueue(key, &pendingWrite{delete: true})
}

func (q *WriteQueue) enqueue(key string, w *pendingWrite) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if prev, ok := q.pending[key]; ok {
		prev.timer.Stop()
	}

	if q.closed || q.debounce <= 0 {
		delete(q.pending, key)
		q.write(context.Background(), key, w)
		return
	}

	w.timer = time.AfterFunc(q.debounce, func() { q.fire(key, w) })
	q.pending[key] = w
}

// fire writes w if it is still the latest pending write for key.
func (q *WriteQueue) fire(key string, w *pendingWrite) {
	q.mu.Lock()
	if q.pending[key] != w {
		q.mu.Unlock()
		return
	}
	delete(q.pending, key)
	q.mu.Unlock()

	q.write(context.Background(), key, w)
}

// Pending returns the number of keys waiting to be written.
func (q *WriteQueue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.pending)
}

// Flush writes every pending key immediately.
func (q *WriteQueue) Flush(ctx context.Context) {
	q.mu.Lock()
	batch := q.pending
	q.pending = make(map[string]*pendingWrite)
	q.mu.Unlock()

	for key, w := range batch {
		w.timer.Stop()
		q.write(ctx, key, w)
	}
}

// Close flushes and switches the queue to write-through.
func (q *WriteQueue) Close(ctx context.Context) {
	q.Flush(ctx)
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

func (q *WriteQueue) write(ctx context.Context, key string, w *pendingWrite) {
	var err error
	if w.delete {
		err = q.store.Delete(ctx, key)
	} else {
		err = q.store.Put(ctx, key, w.value)
	}
	if err != nil {
		q.log.Error("persisting %s: %v", key, err)
	}
}
