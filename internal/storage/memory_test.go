package storage

import (
	"context"
	"testing"
	"time"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

func TestMemoryStoreCRUD(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	store := NewMemoryStore(log)
	ctx := context.Background()

	// Put.
	if err := store.Put(ctx, KeyActiveSession, []byte(`{"id":"s1"}`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Get.
	got, err := store.Get(ctx, KeyActiveSession)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if string(got) != `{"id":"s1"}` {
		t.Fatalf("got %s", got)
	}

	// Returned slices are copies.
	got[0] = 'X'
	again, _ := store.Get(ctx, KeyActiveSession)
	if again[0] != '{' {
		t.Fatal("store handed out its internal buffer")
	}

	// Get nonexistent.
	if _, err := store.Get(ctx, "nonexistent"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	// Delete, then delete again.
	if err := store.Delete(ctx, KeyActiveSession); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := store.Get(ctx, KeyActiveSession); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := store.Delete(ctx, KeyActiveSession); err != nil {
		t.Fatalf("deleting a missing key should be a no-op, got %v", err)
	}
}

func TestMemoryStoreWatchSeesForeignWrites(t *testing.T) {
	log := logger.New(logger.LevelOff, nil)
	hub := NewHub()
	mine := NewMemoryStoreOn(hub, "tab-a", log)
	theirs := NewMemoryStoreOn(hub, "tab-b", log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	events, err := mine.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}

	if err := theirs.Put(ctx, KeyRestTimer, []byte(`{}`)); err != nil {
		t.Fatalf("put: %v", err)
	}

	select {
	case ev := <-events:
		if ev.Key != KeyRestTimer || ev.Origin != "tab-b" {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatal("no event received")
	}

	if data, err := mine.Get(ctx, KeyRestTimer); err != nil || string(data) != `{}` {
		t.Fatalf("shared hub not visible: %q, %v", data, err)
	}
}
