package timer

import (
	"sync"
	"testing"

	"github.com/hammamikhairi/ottolift/internal/logger"
)

type recordingDriver struct {
	mu    sync.Mutex
	calls []bool
}

func (d *recordingDriver) SetActive(active bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.calls = append(d.calls, active)
}

func TestActivityOnlySignalsEdges(t *testing.T) {
	d := &recordingDriver{}
	a := NewActivity(d, logger.New(logger.LevelOff, nil))

	for _, running := range []bool{false, true, true, true, false, false, true} {
		a.Set(running)
	}

	want := []bool{true, false, true}
	if len(d.calls) != len(want) {
		t.Fatalf("calls = %v, want %v", d.calls, want)
	}
	for i := range want {
		if d.calls[i] != want[i] {
			t.Fatalf("calls = %v, want %v", d.calls, want)
		}
	}
}

func TestActivityNilDriver(t *testing.T) {
	a := NewActivity(nil, logger.New(logger.LevelOff, nil))
	a.Set(true)
	if !a.Active() {
		t.Fatal("expected active")
	}
}
