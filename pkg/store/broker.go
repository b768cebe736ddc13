package store

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/mesh-intelligence/rolodex/pkg/types"
)

// broker fans snapshots out to listeners in subscription order. Callers
// serialize publish; the listener list has its own lock so listeners may
// unsubscribe while a publish is running.
type broker struct {
	mu        sync.Mutex
	nextID    uint64
	listeners []subscriber
	log       *logrus.Entry
}

type subscriber struct {
	id       uint64
	listener types.Listener
}

func newBroker(log *logrus.Entry) *broker {
	return &broker{log: log}
}

// add registers a listener and returns its handle.
func (b *broker) add(l types.Listener) uint64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.nextID++
	b.listeners = append(b.listeners, subscriber{id: b.nextID, listener: l})
	return b.nextID
}

// remove drops a listener. Unknown handles are ignored.
func (b *broker) remove(id uint64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, s := range b.listeners {
		if s.id == id {
			b.listeners = append(b.listeners[:i:i], b.listeners[i+1:]...)
			return
		}
	}
}

// clear drops every listener.
func (b *broker) clear() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.listeners = nil
}

func (b *broker) len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.listeners)
}

// publish delivers snap to every listener registered when publish began.
// Each listener gets its own copy. A listener removed mid-publish is
// skipped if it has not been reached yet.
func (b *broker) publish(snap types.Snapshot) {
	b.mu.Lock()
	targets := make([]subscriber, len(b.listeners))
	copy(targets, b.listeners)
	b.mu.Unlock()

	for _, s := range targets {
		if !b.active(s.id) {
			continue
		}
		b.deliver(s, snap.Clone())
	}
}

func (b *broker) active(id uint64) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	for _, s := range b.listeners {
		if s.id == id {
			return true
		}
	}
	return false
}

// deliver invokes one listener, recovering from a panic so the remaining
// listeners still hear about the change.
func (b *broker) deliver(s subscriber, snap types.Snapshot) {
	defer func() {
		if r := recover(); r != nil {
			b.log.WithFields(logrus.Fields{
				"subscriber": s.id,
				"version":    snap.Version,
				"panic":      r,
			}).Error("listener panicked")
		}
	}()
	s.listener(snap)
}

// Subscription is the handle returned by Store.Subscribe.
type Subscription struct {
	once   sync.Once
	id     uint64
	broker *broker
}

// Unsubscribe stops further deliveries. Safe to call more than once and
// from inside the listener itself.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.broker.remove(s.id)
	})
}
