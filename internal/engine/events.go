package engine

import "sync"

// EventKind says what part of the engine changed.
type EventKind string

const (
	EventSession    EventKind = "session"
	EventTimer      EventKind = "timer"
	EventSuperset   EventKind = "superset"
	EventReorganize EventKind = "reorganize"
)

// Event is a change notification. Subscribers re-read Status.
type Event struct {
	Kind EventKind `json:"kind"`
	At   int64     `json:"at"`
}

// Broadcaster fans events out to subscribers without blocking.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
}

// NewBroadcaster creates a broadcaster with no subscribers.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan Event]struct{})}
}

// Subscribe registers a subscriber. The returned function unsubscribes
// and closes the channel.
func (b *Broadcaster) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 32)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			b.mu.Lock()
			delete(b.subs, ch)
			b.mu.Unlock()
			close(ch)
		})
	}
}

// Publish delivers ev to every subscriber with room for it.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
