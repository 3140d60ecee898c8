package timer

import (
	"testing"
)

const t0 = int64(1_700_000_000_000)

func TestCountdownRemaining(t *testing.T) {
	c := NewCountdown(t0, 90)

	tests := []struct {
		name string
		at   int64
		want int64
	}{
		{"at start", t0, 90_000},
		{"mid", t0 + 30_000, 60_000},
		{"exact end", t0 + 90_000, 0},
		{"long after", t0 + 10*60_000, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Remaining(tt.at); got != tt.want {
				t.Errorf("Remaining = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCountdownPauseNeverExpires(t *testing.T) {
	c := NewCountdown(t0, 10)
	c.Pause(t0 + 4_000)

	if c.Expired(t0 + 60_000) {
		t.Fatal("paused countdown expired")
	}
	if got := c.Remaining(t0 + 60_000); got != 6_000 {
		t.Fatalf("Remaining while paused = %d, want 6000", got)
	}

	c.Resume(t0 + 60_000)
	if got := c.Remaining(t0 + 61_000); got != 5_000 {
		t.Fatalf("Remaining after resume = %d, want 5000", got)
	}
	if !c.Expired(t0 + 66_000) {
		t.Fatal("expected expiry after resume")
	}
}

func TestCountdownChangeDurationKeepsElapsed(t *testing.T) {
	c := NewCountdown(t0, 60)
	now := t0 + 20_000

	c.ChangeDuration(now, 120)
	if got := c.Remaining(now); got != 100_000 {
		t.Fatalf("Remaining = %d, want 100000", got)
	}

	c.ChangeDuration(now, 15)
	if got := c.Remaining(now); got != 0 {
		t.Fatalf("shrinking below elapsed: Remaining = %d, want 0", got)
	}
	if !c.Expired(now) {
		t.Fatal("expected expiry")
	}
}

func TestCountdownAddTimeWhilePaused(t *testing.T) {
	c := NewCountdown(t0, 60)
	c.Pause(t0 + 10_000)
	c.AddTime(t0+99_000, 30)

	if c.TotalDuration != 90 {
		t.Fatalf("TotalDuration = %d, want 90", c.TotalDuration)
	}
	if got := c.Remaining(t0 + 500_000); got != 80_000 {
		t.Fatalf("Remaining = %d, want 80000", got)
	}
}

// For any pause/resume/addTime sequence, unpaused wall time equals
// initial + added - final remaining.
func TestCountdownNoDrift(t *testing.T) {
	type step struct {
		wait  int64 // ms of wall time before the action
		pause bool  // toggle pause
		add   int   // seconds added
	}
	sequences := map[string][]step{
		"many toggles": {
			{wait: 333, pause: true}, {wait: 5_000, pause: true},
			{wait: 777, pause: true}, {wait: 1, pause: true},
			{wait: 1_499, pause: true}, {wait: 60_000, pause: true},
		},
		"adds while running and paused": {
			{wait: 1_234, add: 15}, {wait: 999, pause: true},
			{wait: 12_000, add: -5}, {wait: 10, pause: true},
			{wait: 2_501, add: 30},
		},
		"odd milliseconds": {
			{wait: 1, pause: true}, {wait: 1, pause: true},
			{wait: 3, pause: true}, {wait: 7, pause: true},
			{wait: 11, add: 1}, {wait: 13, pause: true},
		},
	}

	for name, seq := range sequences {
		t.Run(name, func(t *testing.T) {
			now := t0
			c := NewCountdown(now, 120)
			var running int64
			added := 0

			for _, s := range seq {
				if !c.IsPaused {
					running += s.wait
				}
				now += s.wait
				if s.add != 0 {
					c.AddTime(now, s.add)
					added += s.add
				}
				if s.pause {
					if c.IsPaused {
						c.Resume(now)
					} else {
						c.Pause(now)
					}
				}
			}

			want := int64(c.InitialDuration+added)*1000 - c.Remaining(now)
			if running != want {
				t.Fatalf("unpaused time %dms, want %dms", running, want)
			}
		})
	}
}

func TestCountdownShrinkKeepsElapsed(t *testing.T) {
	tests := []struct {
		name  string
		apply func(c *Countdown, now int64)
		want  int64
	}{
		{"change duration below elapsed", func(c *Countdown, now int64) { c.ChangeDuration(now, 30) }, 60_000},
		{"negative add below elapsed", func(c *Countdown, now int64) { c.AddTime(now, -75) }, 60_000},
		{"shrink while paused", func(c *Countdown, now int64) {
			c.Pause(now)
			c.ChangeDuration(now+5_000, 10)
		}, 60_000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCountdown(t0, 90)
			now := t0 + 60_000
			tt.apply(&c, now)

			if got := c.Remaining(now); got != 0 {
				t.Fatalf("Remaining = %d, want 0", got)
			}
			if got := c.Elapsed(now + 30_000); got != tt.want {
				t.Fatalf("Elapsed = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestCountdownElapsedStopsAtTarget(t *testing.T) {
	c := NewCountdown(t0, 10)
	c.Pause(t0 + 4_000)
	c.Resume(t0 + 100_000)

	if got := c.Elapsed(t0 + 500_000); got != 10_000 {
		t.Fatalf("Elapsed = %d, want 10000", got)
	}
}
