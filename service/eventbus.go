package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/jayvdb/platform-engine/value"
)

// Event is one occurrence published by a streaming service container,
// the payload a subscribed `when` block's body runs against. Name
// identifies the event kind the container emitted; Data holds the
// named outputs bound into the body's fresh child context.
type Event struct {
	Seq       uint64
	Name      string
	Data      map[string]value.Value
	Timestamp time.Time
}

// Bus is a single streaming service's event log: one Bus per running
// container. Adapted from the teacher's server/eventlog.go, trimmed
// to the single lifecycle/log stream a `when` subscription needs --
// there is no separate high-volume log-event split here, so a
// container's stdout/stderr lines share the stream with its other
// events.
type Bus struct {
	mu     sync.RWMutex
	events []Event
	seq    uint64
	notify chan struct{}
}

// NewBus creates an empty event bus.
func NewBus() *Bus {
	return &Bus{notify: make(chan struct{})}
}

// Publish appends event with the next sequence number and wakes every
// waiter. Never blocks on a slow subscriber.
func (b *Bus) Publish(event Event) {
	b.mu.Lock()
	b.seq++
	event.Seq = b.seq
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	b.events = append(b.events, event)
	ch := b.notify
	b.notify = make(chan struct{})
	b.mu.Unlock()

	close(ch)
}

// Subscribe returns a channel that replays events after fromSeq, then
// streams new ones as they're published. Closed when ctx is done. The
// channel is buffered; a subscriber that falls behind drops events
// rather than stalling the publisher.
func (b *Bus) Subscribe(ctx context.Context, fromSeq uint64) <-chan Event {
	ch := make(chan Event, 256)

	go func() {
		defer close(ch)
		cursor := fromSeq

		for {
			b.mu.RLock()
			batch := b.since(cursor)
			notify := b.notify
			b.mu.RUnlock()

			for _, e := range batch {
				select {
				case ch <- e:
				case <-ctx.Done():
					return
				default:
				}
				cursor = e.Seq
			}

			select {
			case <-notify:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}

// WaitFor blocks until an event matching match is published, or ctx
// is cancelled. Scans already-published events first.
func (b *Bus) WaitFor(ctx context.Context, match func(Event) bool) (Event, error) {
	b.mu.RLock()
	for _, e := range b.events {
		if match(e) {
			b.mu.RUnlock()
			return e, nil
		}
	}
	cursor := b.seq
	notify := b.notify
	b.mu.RUnlock()

	for {
		select {
		case <-notify:
			b.mu.RLock()
			batch := b.since(cursor)
			notify = b.notify
			b.mu.RUnlock()
			for _, e := range batch {
				if match(e) {
					return e, nil
				}
				cursor = e.Seq
			}
		case <-ctx.Done():
			return Event{}, ctx.Err()
		}
	}
}

// since returns events with Seq > seq. Caller must hold at least b.mu.RLock.
func (b *Bus) since(seq uint64) []Event {
	i := sort.Search(len(b.events), func(i int) bool { return b.events[i].Seq > seq })
	if i >= len(b.events) {
		return nil
	}
	out := make([]Event, len(b.events)-i)
	copy(out, b.events[i:])
	return out
}
