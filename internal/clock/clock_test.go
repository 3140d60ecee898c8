package clock

import (
	"testing"
	"time"
)

func TestFakeAdvance(t *testing.T) {
	start := time.UnixMilli(1_700_000_000_000)
	c := NewFake(start)

	if got := Millis(c); got != 1_700_000_000_000 {
		t.Fatalf("Millis = %d, want 1700000000000", got)
	}

	c.Advance(1500 * time.Millisecond)
	if got := Millis(c); got != 1_700_000_001_500 {
		t.Fatalf("Millis after advance = %d", got)
	}

	c.Set(start)
	if !c.Now().Equal(start) {
		t.Fatalf("Set did not rewind the clock")
	}
}
