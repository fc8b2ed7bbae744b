package notify

import (
	"log/slog"
	"sync"

	"github.com/vzlabs/expense_tracker_app/internal/core/domain"
)

// subscriberBuffer is the number of undelivered events a subscriber may lag
// behind before further events are dropped for it.
const subscriberBuffer = 16

// Subscriber is one live listener on a channel. Events arrive on Events()
// until Unsubscribe closes it.
type Subscriber struct {
	events chan domain.Event
}

// Events returns the stream of events delivered to this subscriber.
func (s *Subscriber) Events() <-chan domain.Event {
	return s.events
}

// Bus is an in-memory notification fan-out. Channels are identified by key
// (user-{id} or admins) and hold zero or more live subscribers. Delivery is
// at-most-once and best-effort: a publish with no subscribers is silently
// dropped, and a subscriber whose buffer is full misses the event. The
// authoritative state lives in the expense repository, so a missed event
// costs a client nothing more than a manual refresh.
type Bus struct {
	mu       sync.RWMutex
	channels map[string]map[*Subscriber]struct{}
	logger   *slog.Logger
}

// NewBus creates an empty notification bus.
func NewBus(logger *slog.Logger) *Bus {
	if logger == nil {
		logger = slog.Default()
	}
	return &Bus{
		channels: make(map[string]map[*Subscriber]struct{}),
		logger:   logger,
	}
}

// Subscribe registers a new subscriber on the given channel and returns it.
// Safe to call concurrently with Publish on any channel.
func (b *Bus) Subscribe(channel string) *Subscriber {
	sub := &Subscriber{events: make(chan domain.Event, subscriberBuffer)}

	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.channels[channel]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		b.channels[channel] = subs
	}
	subs[sub] = struct{}{}
	return sub
}

// Unsubscribe removes the subscriber from the channel and closes its event
// stream. Unknown subscribers are ignored, so double-unsubscribe is safe.
func (b *Bus) Unsubscribe(channel string, sub *Subscriber) {
	b.mu.Lock()
	defer b.mu.Unlock()
	subs, ok := b.channels[channel]
	if !ok {
		return
	}
	if _, ok := subs[sub]; !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.channels, channel)
	}
	// Closing under the write lock cannot race a Publish send: sends happen
	// under the read lock.
	close(sub.events)
}

// Publish delivers the event to every current subscriber of the channel.
// It never blocks: each subscriber receives independently through its own
// buffered channel, and a full buffer means that subscriber misses the event.
func (b *Bus) Publish(channel string, event domain.Event) {
	event.Channel = channel

	b.mu.RLock()
	defer b.mu.RUnlock()
	for sub := range b.channels[channel] {
		select {
		case sub.events <- event:
		default:
			b.logger.Warn("Dropping event for slow subscriber",
				slog.String("channel", channel),
				slog.String("kind", string(event.Kind)))
		}
	}
}

// SubscriberCount returns the number of live subscribers on a channel.
func (b *Bus) SubscriberCount(channel string) int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.channels[channel])
}
