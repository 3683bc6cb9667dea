// Package notify carries background refresh results to application-layer listeners.
package notify

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"
)

const defaultBuffer = 64

// ErrBusClosed is returned by Subscribe after Close.
var ErrBusClosed = errors.New("notification bus closed")

// Event describes one completed background refresh.
type Event struct {
	// Entity is the entity kind, for example "article".
	Entity string
	// Query names the read that was refreshed, for example "all" or "id:42".
	Query string
	// IDs lists the entities of the refreshed result.
	IDs []string
	// Absent is set when the source no longer has the requested entity.
	Absent bool
}

// Bus is an in-process fan-out of events with bounded per-subscriber queues. When a
// subscriber queue is full the newest event is dropped for that subscriber.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	closed bool
	subs   map[int]*Subscription
	logger zerolog.Logger
}

// Subscription receives events on C until it is closed.
type Subscription struct {
	id   int
	name string
	bus  *Bus
	ch   chan Event
	once sync.Once
}

// NewBus creates an empty bus.
func NewBus(logger zerolog.Logger) *Bus {
	return &Bus{
		subs:   make(map[int]*Subscription),
		logger: logger,
	}
}

// Subscribe registers a listener. A non-positive buffer selects the default size.
func (b *Bus) Subscribe(name string, buffer int) (*Subscription, error) {
	if buffer <= 0 {
		buffer = defaultBuffer
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, fmt.Errorf("subscribe %s: %w", name, ErrBusClosed)
	}
	b.nextID++
	sub := &Subscription{
		id:   b.nextID,
		name: name,
		bus:  b,
		ch:   make(chan Event, buffer),
	}
	b.subs[sub.id] = sub
	return sub, nil
}

// Publish delivers event to every subscriber without blocking.
func (b *Bus) Publish(ctx context.Context, event Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return
	}
	for _, sub := range b.subs {
		select {
		case sub.ch <- event:
		default:
			b.logger.Warn().Ctx(ctx).Str("subscriber", sub.name).Str("entity", event.Entity).Msg("Dropped notification, subscriber queue full")
		}
	}
}

// Close closes every subscription. Later publishes are ignored.
func (b *Bus) Close() {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.closed = true
	subs := b.subs
	b.subs = make(map[int]*Subscription)
	b.mu.Unlock()

	for _, sub := range subs {
		sub.closeChannel()
	}
}

// C returns the channel events arrive on. It is closed when the subscription ends.
func (s *Subscription) C() <-chan Event {
	return s.ch
}

// Close removes the subscription from its bus.
func (s *Subscription) Close() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s.id)
	s.bus.mu.Unlock()
	s.closeChannel()
}

func (s *Subscription) closeChannel() {
	s.once.Do(func() { close(s.ch) })
}
