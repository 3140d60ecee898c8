package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
	"github.com/hammamikhairi/ottolift/internal/storage/migrations"
)

// Compile-time interface check.
var _ domain.DocumentStore = (*PostgresStore)(nil)

// notifyChannel carries one JSON payload per document write.
const notifyChannel = "ottolift_documents"

// PostgresStore keeps documents in Postgres and publishes every write with
// NOTIFY so other clients of the same database see it immediately.
type PostgresStore struct {
	pool   *pgxpool.Pool
	origin string
	log    *logger.Logger
}

// OpenPostgres connects, pings, and migrates.
func OpenPostgres(ctx context.Context, dsn, origin string, log *logger.Logger) (*PostgresStore, error) {
	if err := migrations.UpPostgres(dsn); err != nil {
		return nil, err
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("creating pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	log.Debug("postgres store connected (origin=%s)", origin)
	return &PostgresStore{pool: pool, origin: origin, log: log}, nil
}

// Origin identifies this store's writes.
func (s *PostgresStore) Origin() string { return s.origin }

// Close closes the pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Get returns the document stored under key.
func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.pool.QueryRow(ctx, `SELECT value FROM documents WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return value, nil
}

// Put upserts a document and notifies listeners in the same transaction.
func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	return s.write(ctx, domain.DocumentEvent{Key: key, Origin: s.origin}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO documents (key, value, origin, updated_at) VALUES ($1, $2, $3, now())
			 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, origin = EXCLUDED.origin, updated_at = now()`,
			key, value, s.origin)
		return err
	})
}

// Delete removes a document.
func (s *PostgresStore) Delete(ctx context.Context, key string) error {
	return s.write(ctx, domain.DocumentEvent{Key: key, Origin: s.origin, Deleted: true}, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, `DELETE FROM documents WHERE key = $1`, key)
		return err
	})
}

func (s *PostgresStore) write(ctx context.Context, ev domain.DocumentEvent, fn func(pgx.Tx) error) error {
	payload, err := json.Marshal(notification{Key: ev.Key, Origin: ev.Origin, Deleted: ev.Deleted})
	if err != nil {
		return fmt.Errorf("encoding notification: %w", err)
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := fn(tx); err != nil {
		return fmt.Errorf("writing %s: %w", ev.Key, err)
	}
	if _, err := tx.Exec(ctx, `SELECT pg_notify($1, $2)`, notifyChannel, string(payload)); err != nil {
		return fmt.Errorf("notify: %w", err)
	}
	return tx.Commit(ctx)
}

type notification struct {
	Key     string `json:"key"`
	Origin  string `json:"origin"`
	Deleted bool   `json:"deleted,omitempty"`
}

// Watch holds one pooled connection in LISTEN mode until ctx is cancelled.
func (s *PostgresStore) Watch(ctx context.Context) (<-chan domain.DocumentEvent, error) {
	conn, err := s.pool.Acquire(ctx)
	if err != nil {
		return nil, fmt.Errorf("acquiring listen connection: %w", err)
	}
	if _, err := conn.Exec(ctx, "LISTEN "+notifyChannel); err != nil {
		conn.Release()
		return nil, fmt.Errorf("listen: %w", err)
	}

	ch := make(chan domain.DocumentEvent, 16)
	go func() {
		defer close(ch)
		defer conn.Release()

		for {
			n, err := conn.Conn().WaitForNotification(ctx)
			if err != nil {
				if ctx.Err() == nil {
					s.log.Warn("postgres watch stopped: %v", err)
				}
				return
			}
			var msg notification
			if err := json.Unmarshal([]byte(n.Payload), &msg); err != nil {
				s.log.Warn("postgres watch: bad payload %q: %v", n.Payload, err)
				continue
			}
			select {
			case ch <- domain.DocumentEvent{Key: msg.Key, Origin: msg.Origin, Deleted: msg.Deleted}:
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch, nil
}
