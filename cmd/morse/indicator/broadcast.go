package indicator

import (
	"sync"
	"time"
)

// Event is one command as seen by a Broadcaster subscriber.
type Event struct {
	Line Line      `json:"line"`
	On   bool      `json:"on"`
	At   time.Time `json:"at"`
}

// Broadcaster fans commands out to any number of subscribers. Slow
// subscribers lose events rather than stalling playback.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan Event]struct{}
	now  func() time.Time
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{
		subs: make(map[chan Event]struct{}),
		now:  time.Now,
	}
}

// Subscribe registers a new subscriber with the given channel buffer. The
// returned func unsubscribes and closes the channel.
func (b *Broadcaster) Subscribe(buffer int) (<-chan Event, func()) {
	ch := make(chan Event, buffer)

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

// Subscribers returns the number of active subscribers.
func (b *Broadcaster) Subscribers() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}

func (b *Broadcaster) TurnOn(line Line) error {
	b.publish(Event{Line: line, On: true})
	return nil
}

func (b *Broadcaster) TurnOff(line Line) error {
	b.publish(Event{Line: line, On: false})
	return nil
}

func (b *Broadcaster) publish(ev Event) {
	ev.At = b.now()

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}
