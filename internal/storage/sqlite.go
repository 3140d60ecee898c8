package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
	"github.com/hammamikhairi/ottolift/internal/storage/migrations"
)

// Compile-time interface check.
var _ domain.DocumentStore = (*SQLiteStore)(nil)

// SQLiteStore keeps documents in a single SQLite file. Every write also
// appends to document_log so other processes sharing the file can observe
// it by polling.
type SQLiteStore struct {
	db           *sql.DB
	origin       string
	log          *logger.Logger
	pollInterval time.Duration
}

// OpenSQLite opens (or creates) the database at path, enables WAL mode and
// applies migrations.
func OpenSQLite(path, origin string, log *logger.Logger) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.ExecContext(context.Background(), "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(context.Background(), "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}

	// A single connection serializes writers inside this process.
	db.SetMaxOpenConns(1)

	if err := db.PingContext(context.Background()); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := migrations.UpSQLite(db); err != nil {
		db.Close()
		return nil, err
	}

	log.Debug("sqlite store opened at %s (origin=%s)", path, origin)
	return &SQLiteStore{db: db, origin: origin, log: log, pollInterval: time.Second}, nil
}

// SetPollInterval changes how often Watch checks for foreign writes.
func (s *SQLiteStore) SetPollInterval(d time.Duration) { s.pollInterval = d }

// Origin identifies this store's writes.
func (s *SQLiteStore) Origin() string { return s.origin }

// Close closes the database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

// Get returns the document stored under key.
func (s *SQLiteStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.db.QueryRowContext(ctx, `SELECT value FROM documents WHERE key = ?`, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get document: %w", err)
	}
	return value, nil
}

// Put upserts a document and logs the write.
func (s *SQLiteStore) Put(ctx context.Context, key string, value []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO documents (key, value, origin, revision, updated_at) VALUES (?, ?, ?, 1, ?)
		 ON CONFLICT(key) DO UPDATE SET value = excluded.value, origin = excluded.origin,
		 revision = documents.revision + 1, updated_at = excluded.updated_at`,
		key, value, s.origin, time.Now().UnixMilli())
	if err != nil {
		return fmt.Errorf("upsert document: %w", err)
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO document_log (key, origin, deleted) VALUES (?, ?, 0)`, key, s.origin); err != nil {
		return fmt.Errorf("log write: %w", err)
	}
	return tx.Commit()
}

// Delete removes a document. Deleting a missing key is not an error.
func (s *SQLiteStore) Delete(ctx context.Context, key string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return nil
	}
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO document_log (key, origin, deleted) VALUES (?, ?, 1)`, key, s.origin); err != nil {
		return fmt.Errorf("log delete: %w", err)
	}
	return tx.Commit()
}

// Watch polls document_log and streams every entry written after the
// call. The channel closes when ctx is cancelled.
func (s *SQLiteStore) Watch(ctx context.Context) (<-chan domain.DocumentEvent, error) {
	var last int64
	if err := s.db.QueryRowContext(ctx, `SELECT COALESCE(MAX(seq), 0) FROM document_log`).Scan(&last); err != nil {
		return nil, fmt.Errorf("read log position: %w", err)
	}

	ch := make(chan domain.DocumentEvent, 16)
	go func() {
		defer close(ch)
		ticker := time.NewTicker(s.pollInterval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				events, next, err := s.readLog(ctx, last)
				if err != nil {
					if ctx.Err() == nil {
						s.log.Warn("sqlite watch: %v", err)
					}
					continue
				}
				last = next
				for _, ev := range events {
					select {
					case ch <- ev:
					case <-ctx.Done():
						return
					}
				}
			}
		}
	}()
	return ch, nil
}

func (s *SQLiteStore) readLog(ctx context.Context, after int64) ([]domain.DocumentEvent, int64, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT seq, key, origin, deleted FROM document_log WHERE seq > ? ORDER BY seq`, after)
	if err != nil {
		return nil, after, err
	}
	defer rows.Close()

	var out []domain.DocumentEvent
	last := after
	for rows.Next() {
		var ev domain.DocumentEvent
		if err := rows.Scan(&last, &ev.Key, &ev.Origin, &ev.Deleted); err != nil {
			return nil, after, err
		}
		out = append(out, ev)
	}
	return out, last, rows.Err()
}
