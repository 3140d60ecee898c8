package routine

import (
	"context"
	"testing"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
	"github.com/hammamikhairi/ottolift/internal/storage"
)

func setupLibrary(t *testing.T, docs domain.DocumentStore) *Library {
	t.Helper()
	lib, err := NewLibrary(context.Background(), docs, logger.New(logger.LevelOff, nil))
	if err != nil {
		t.Fatalf("new library: %v", err)
	}
	return lib
}

func TestLibraryGet(t *testing.T) {
	lib := setupLibrary(t, nil)
	ctx := context.Background()

	tests := []struct {
		id      string
		wantErr error
	}{
		{"push-day", nil},
		{"full-body", nil},
		{"nonexistent", domain.ErrNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.id, func(t *testing.T) {
			r, err := lib.Get(ctx, tt.id)
			if tt.wantErr != nil {
				if err != tt.wantErr {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if r.ID != tt.id || len(r.Exercises) == 0 {
				t.Fatalf("bad routine %+v", r)
			}
		})
	}
}

func TestLibraryGetReturnsCopies(t *testing.T) {
	lib := setupLibrary(t, nil)
	ctx := context.Background()

	r, _ := lib.Get(ctx, "push-day")
	r.Exercises[0].Sets[0].Reps = 999

	again, _ := lib.Get(ctx, "push-day")
	if again.Exercises[0].Sets[0].Reps == 999 {
		t.Fatal("library handed out shared sets")
	}
}

func TestLibrarySavePersists(t *testing.T) {
	docs := storage.NewMemoryStore(logger.New(logger.LevelOff, nil))
	lib := setupLibrary(t, docs)
	ctx := context.Background()

	snap := &domain.Routine{ID: "last:push-day", Name: "Push Day", Kind: domain.RoutineLastPerformed, SourceID: "push-day"}
	if err := lib.Save(ctx, snap); err != nil {
		t.Fatalf("save: %v", err)
	}

	reloaded := setupLibrary(t, docs)
	got, err := reloaded.Get(ctx, "last:push-day")
	if err != nil {
		t.Fatalf("get after reload: %v", err)
	}
	if got.Kind != domain.RoutineLastPerformed || got.SourceID != "push-day" {
		t.Fatalf("reloaded %+v", got)
	}

	list, _ := reloaded.List(ctx)
	if list[len(list)-1].Kind != domain.RoutineLastPerformed {
		t.Fatalf("templates should list first: %+v", list)
	}
}

func TestLibraryFind(t *testing.T) {
	lib := setupLibrary(t, nil)
	ctx := context.Background()

	tests := []struct {
		query string
		want  string
	}{
		{"push-day", "push-day"},
		{"push", "push-day"},
		{"FULL", "full-body"},
	}
	for _, tt := range tests {
		r, err := lib.Find(ctx, tt.query)
		if err != nil || r.ID != tt.want {
			t.Errorf("Find(%q) = %v, %v; want %s", tt.query, r, err, tt.want)
		}
	}
	if _, err := lib.Find(ctx, "yoga"); err != domain.ErrNotFound {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCatalog(t *testing.T) {
	c := NewCatalog()
	ex, err := c.Get(context.Background(), "pull-up")
	if err != nil || !ex.Bodyweight {
		t.Fatalf("pull-up = %+v, %v", ex, err)
	}
	if c.Name("mystery") != "mystery" {
		t.Fatal("unknown exercise should fall back to its id")
	}
}
