package notify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/ottolift/internal/domain"
	"github.com/hammamikhairi/ottolift/internal/logger"
)

// collector records delivered messages.
type collector struct {
	mu     sync.Mutex
	normal []string
	urgent []string
}

func (c *collector) Notify(_ context.Context, msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.normal = append(c.normal, msg)
	return nil
}

func (c *collector) NotifyUrgent(_ context.Context, msg string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.urgent = append(c.urgent, msg)
	return nil
}

func (c *collector) snapshot() ([]string, []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.normal...), append([]string(nil), c.urgent...)
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met in time")
}

func TestWorkerDeliversOncePerTag(t *testing.T) {
	c := &collector{}
	w := NewWorker(c, logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	opts := domain.NotificationOptions{Tag: "rest-timer-finished", Body: "Next set.", RequireInteraction: true}
	w.Schedule(ctx, time.Hour, "Rest over", opts)
	w.Schedule(ctx, 10*time.Millisecond, "Rest over", opts)

	waitFor(t, func() bool { return w.Pending() == 0 })
	time.Sleep(20 * time.Millisecond)

	normal, urgent := c.snapshot()
	if len(normal) != 0 || len(urgent) != 1 {
		t.Fatalf("normal %v urgent %v", normal, urgent)
	}
	if urgent[0] != "Rest over Next set." {
		t.Fatalf("message %q", urgent[0])
	}
}

func TestWorkerZeroDelayAlwaysDelivers(t *testing.T) {
	c := &collector{}
	w := NewWorker(c, logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	const n = 200
	for i := 0; i < n; i++ {
		tag := fmt.Sprintf("expired-%d", i)
		if err := w.Schedule(ctx, 0, "Rest over", domain.NotificationOptions{Tag: tag}); err != nil {
			t.Fatalf("schedule %s: %v", tag, err)
		}
	}

	waitFor(t, func() bool {
		normal, _ := c.snapshot()
		return len(normal) == n
	})
	if w.Pending() != 0 {
		t.Fatalf("%d notifications still pending", w.Pending())
	}
}

func TestWorkerCancel(t *testing.T) {
	c := &collector{}
	w := NewWorker(c, logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	w.Schedule(ctx, 20*time.Millisecond, "Timer", domain.NotificationOptions{Tag: "quick-timer-finished"})
	w.Schedule(ctx, 20*time.Millisecond, "Rest", domain.NotificationOptions{Tag: "rest-timer-finished"})
	w.Cancel("rest-timer-finished")
	w.Cancel("nothing-pending")

	waitFor(t, func() bool { return w.Pending() == 0 })
	time.Sleep(30 * time.Millisecond)

	normal, urgent := c.snapshot()
	if len(normal) != 1 || !strings.HasPrefix(normal[0], "Timer") || len(urgent) != 0 {
		t.Fatalf("normal %v urgent %v", normal, urgent)
	}
}

func TestWorkerClosedRefusesSchedules(t *testing.T) {
	w := NewWorker(&collector{}, logger.New(logger.LevelOff, nil))
	w.Schedule(context.Background(), time.Hour, "x", domain.NotificationOptions{Tag: "a"})
	w.Close()

	if w.Pending() != 0 {
		t.Fatal("close left pending notifications")
	}
	err := w.Schedule(context.Background(), time.Second, "x", domain.NotificationOptions{Tag: "a"})
	if !errors.Is(err, domain.ErrCapabilityDenied) {
		t.Fatalf("got %v", err)
	}
}

type countingChime struct {
	mu sync.Mutex
	n  int
}

func (c *countingChime) Chime() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.n++
	return nil
}

func TestChimeNotifierOnlyChimesUrgent(t *testing.T) {
	c := &collector{}
	chime := &countingChime{}
	n := NewChimeNotifier(c, chime, logger.New(logger.LevelOff, nil))
	ctx := context.Background()

	n.Notify(ctx, "info")
	n.NotifyUrgent(ctx, "rest over")

	if chime.n != 1 {
		t.Fatalf("chimed %d times", chime.n)
	}
	normal, urgent := c.snapshot()
	if len(normal) != 1 || len(urgent) != 1 {
		t.Fatalf("normal %v urgent %v", normal, urgent)
	}
}

func TestCLINotifierFormats(t *testing.T) {
	var lines []string
	n := NewCLINotifier(logger.New(logger.LevelOff, nil), func(format string, a ...interface{}) {
		lines = append(lines, fmt.Sprintf(format, a...))
	})
	ctx := context.Background()
	n.Notify(ctx, "Round 2")
	n.NotifyUrgent(ctx, "Rest finished")

	if len(lines) != 2 {
		t.Fatalf("printed %v", lines)
	}
	if !strings.Contains(lines[0], cyan) || !strings.Contains(lines[0], "Round 2") {
		t.Fatalf("normal line %q", lines[0])
	}
	if !strings.Contains(lines[1], red) || !strings.HasSuffix(lines[1], reset) {
		t.Fatalf("urgent line %q", lines[1])
	}
}
