package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hammamikhairi/ottolift/internal/domain"
)

// Document keys, one per concern.
const (
	KeyActiveSession = "active-session"
	KeyRestTimer     = "active-rest-timer"
	KeyHistory       = "history"
	KeyRoutines      = "routines"
)

// LoadJSON reads key into dst. Returns false without error when the key
// does not exist.
func LoadJSON(ctx context.Context, store domain.DocumentStore, key string, dst any) (bool, error) {
	data, err := store.Get(ctx, key)
	if errors.Is(err, domain.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("reading %s: %w", key, err)
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return false, fmt.Errorf("decoding %s: %w", key, err)
	}
	return true, nil
}

// SaveJSON writes v under key immediately.
func SaveJSON(ctx context.Context, store domain.DocumentStore, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	if err := store.Put(ctx, key, data); err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}
	return nil
}

// QueueJSON encodes v and hands it to the write queue.
func QueueJSON(q *WriteQueue, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding %s: %w", key, err)
	}
	q.Put(key, data)
	return nil
}
