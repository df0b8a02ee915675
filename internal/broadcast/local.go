package broadcast

import (
	"context"
	"errors"
	"sync"
)

var ErrBusClosed = errors.New("broadcast bus closed")

// LocalBus is the shared in-process medium. Each participant joins it
// with Channel(); two stores joined to one bus behave like two tabs on
// the same origin. Delivery is synchronous and in publish order.
type LocalBus struct {
	mu     sync.Mutex
	nextCh int
	subs   map[int]map[int]func(Message) // channel id -> sub id -> fn
	nextID int
	closed bool
}

func NewLocalBus() *LocalBus {
	return &LocalBus{subs: make(map[int]map[int]func(Message))}
}

// Channel joins the bus as a new participant.
func (b *LocalBus) Channel() *LocalChannel {
	b.mu.Lock()
	defer b.mu.Unlock()
	id := b.nextCh
	b.nextCh++
	b.subs[id] = make(map[int]func(Message))
	return &LocalChannel{bus: b, id: id}
}

func (b *LocalBus) publishFrom(origin int, msg Message) error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return ErrBusClosed
	}
	var fns []func(Message)
	for chID, chSubs := range b.subs {
		if chID == origin {
			continue
		}
		for _, fn := range chSubs {
			fns = append(fns, fn)
		}
	}
	b.mu.Unlock()

	for _, fn := range fns {
		fn(msg)
	}
	return nil
}

// LocalChannel is one participant's handle on a LocalBus. It never
// receives its own publishes.
type LocalChannel struct {
	bus *LocalBus
	id  int
}

func (c *LocalChannel) Publish(_ context.Context, msg Message) error {
	return c.bus.publishFrom(c.id, msg)
}

func (c *LocalChannel) Subscribe(fn func(Message)) (func(), error) {
	b := c.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil, ErrBusClosed
	}
	chSubs, ok := b.subs[c.id]
	if !ok {
		return nil, ErrBusClosed
	}
	id := b.nextID
	b.nextID++
	chSubs[id] = fn
	return func() {
		b.mu.Lock()
		if s, ok := b.subs[c.id]; ok {
			delete(s, id)
		}
		b.mu.Unlock()
	}, nil
}

// Close detaches the participant and drops its subscriptions.
func (c *LocalChannel) Close() error {
	c.bus.mu.Lock()
	delete(c.bus.subs, c.id)
	c.bus.mu.Unlock()
	return nil
}

// Close shuts the whole bus down; further publishes fail.
func (b *LocalBus) Close() {
	b.mu.Lock()
	b.closed = true
	b.subs = make(map[int]map[int]func(Message))
	b.mu.Unlock()
}
