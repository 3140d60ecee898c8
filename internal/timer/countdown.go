package timer

// Countdown is an absolute-target countdown. Remaining time is always
// TargetTime minus now; nothing is ever decremented, so a process that was
// suspended for minutes reads the correct value the moment it runs again.
//
// Elapsed time is tracked apart from the target: RunStart marks the start
// of the current unpaused stretch and ElapsedMs holds everything banked
// before it, so shortening the total never erases time already counted.
//
// TargetTime, TimeLeftWhenPaused, RunStart and ElapsedMs are milliseconds.
// Durations are whole seconds.
type Countdown struct {
	TargetTime         int64 `json:"targetTime"`
	TotalDuration      int   `json:"totalDuration"`
	InitialDuration    int   `json:"initialDuration"`
	IsPaused           bool  `json:"isPaused"`
	TimeLeftWhenPaused int64 `json:"timeLeftWhenPaused"`
	RunStart           int64 `json:"runStart"`
	ElapsedMs          int64 `json:"elapsedMs"`
}

// NewCountdown starts a countdown of seconds at now (epoch ms).
func NewCountdown(now int64, seconds int) Countdown {
	if seconds < 0 {
		seconds = 0
	}
	return Countdown{
		TargetTime:      now + int64(seconds)*1000,
		TotalDuration:   seconds,
		InitialDuration: seconds,
		RunStart:        now,
	}
}

// Remaining returns the milliseconds left, never negative.
func (c Countdown) Remaining(now int64) int64 {
	left := c.TargetTime - now
	if c.IsPaused {
		left = c.TimeLeftWhenPaused
	}
	if left < 0 {
		return 0
	}
	return left
}

// Elapsed returns the unpaused milliseconds since the countdown started.
// Time past the target does not count.
func (c Countdown) Elapsed(now int64) int64 {
	e := c.ElapsedMs
	if c.IsPaused {
		return e
	}
	end := now
	if c.TargetTime < end {
		end = c.TargetTime
	}
	if end > c.RunStart {
		e += end - c.RunStart
	}
	return e
}

// bank folds the current running stretch into ElapsedMs.
func (c *Countdown) bank(now int64) {
	c.ElapsedMs = c.Elapsed(now)
	c.RunStart = now
}

// Expired reports whether the countdown reached zero while running.
// A paused countdown never expires.
func (c Countdown) Expired(now int64) bool {
	return !c.IsPaused && c.TargetTime <= now
}

// Pause freezes the countdown. No-op when already paused.
func (c *Countdown) Pause(now int64) {
	if c.IsPaused {
		return
	}
	c.TimeLeftWhenPaused = c.Remaining(now)
	c.bank(now)
	c.IsPaused = true
}

// Resume restarts a paused countdown from where it stopped.
func (c *Countdown) Resume(now int64) {
	if !c.IsPaused {
		return
	}
	c.TargetTime = now + c.TimeLeftWhenPaused
	c.TimeLeftWhenPaused = 0
	c.RunStart = now
	c.IsPaused = false
}

// ChangeDuration sets a new total, keeping the time already elapsed.
// Shrinking below the elapsed time leaves nothing remaining but the
// elapsed time itself is kept.
func (c *Countdown) ChangeDuration(now int64, total int) {
	if total < 0 {
		total = 0
	}
	if !c.IsPaused {
		c.bank(now)
	}
	left := int64(total)*1000 - c.ElapsedMs
	if left < 0 {
		left = 0
	}
	c.TotalDuration = total
	if c.IsPaused {
		c.TimeLeftWhenPaused = left
		return
	}
	c.TargetTime = now + left
}

// AddTime extends (or, with a negative delta, shortens) the total.
func (c *Countdown) AddTime(now int64, delta int) {
	c.ChangeDuration(now, c.TotalDuration+delta)
}
