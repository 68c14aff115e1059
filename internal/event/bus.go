package event

import (
	"errors"
	"sort"

	"github.com/rs/zerolog/log"
)

// SubscriberID identifies a subscription.
type SubscriberID uint64

// Handler receives domain events.
type Handler func(Event)

// Publisher posts domain events.
type Publisher interface {
	Publish(ev Event)
}

// ErrDuplicateSubscriber is returned when an id is subscribed twice.
var ErrDuplicateSubscriber = errors.New("subscriber already registered")

// Bus delivers events synchronously, in subscription order, on the caller's
// goroutine. It is not safe for concurrent use.
type Bus struct {
	handlers map[SubscriberID]subscription
	seq      uint64
}

type subscription struct {
	seq     uint64
	handler Handler
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{handlers: make(map[SubscriberID]subscription)}
}

// Subscribe registers handler under id.
func (b *Bus) Subscribe(id SubscriberID, handler Handler) error {
	if handler == nil {
		return errors.New("handler cannot be nil")
	}
	if _, ok := b.handlers[id]; ok {
		return ErrDuplicateSubscriber
	}
	b.seq++
	b.handlers[id] = subscription{seq: b.seq, handler: handler}
	return nil
}

// Unsubscribe removes id. Unknown ids are ignored.
func (b *Bus) Unsubscribe(id SubscriberID) {
	delete(b.handlers, id)
}

// Subscribed reports whether id is registered.
func (b *Bus) Subscribed(id SubscriberID) bool {
	_, ok := b.handlers[id]
	return ok
}

// Len returns the number of subscribers.
func (b *Bus) Len() int {
	return len(b.handlers)
}

// Publish delivers ev to every subscriber registered when Publish was called.
// A handler unsubscribed by an earlier handler during the same delivery is
// skipped.
func (b *Bus) Publish(ev Event) {
	if ev == nil {
		return
	}
	ids := make([]SubscriberID, 0, len(b.handlers))
	for id := range b.handlers {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return b.handlers[ids[i]].seq < b.handlers[ids[j]].seq
	})
	log.Debug().Str("event", string(ev.Type())).Int("subscribers", len(ids)).Msg("publish")
	for _, id := range ids {
		sub, ok := b.handlers[id]
		if !ok {
			continue
		}
		sub.handler(ev)
	}
}
