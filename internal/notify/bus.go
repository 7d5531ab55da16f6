// Package notify is an in-process publish/subscribe bus for the client's
// same-session notifications: authentication changes and unread-count
// changes.
package notify

import (
	"sync"
)

// Topic names a notification.
type Topic string

const (
	// AuthChange fires after the stored session is saved or cleared.
	AuthChange Topic = "auth-change"

	// UnreadCountChanged fires after a local action that changes unread
	// message or pending request counts (send, read, accept, reject).
	UnreadCountChanged Topic = "unread-count-changed"
)

// Handler is invoked synchronously on Publish.
type Handler func(Topic)

type subscription struct {
	id int
	fn Handler
}

// Bus delivers topics to subscribers. The zero value is ready to use and
// safe for concurrent use.
type Bus struct {
	mu     sync.RWMutex
	nextID int
	subs   map[Topic][]subscription
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{}
}

// Subscribe registers fn for topic and returns a function that removes it.
func (b *Bus) Subscribe(topic Topic, fn Handler) func() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.subs == nil {
		b.subs = make(map[Topic][]subscription)
	}
	b.nextID++
	id := b.nextID
	b.subs[topic] = append(b.subs[topic], subscription{id: id, fn: fn})

	var once sync.Once
	return func() {
		once.Do(func() { b.unsubscribe(topic, id) })
	}
}

func (b *Bus) unsubscribe(topic Topic, id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs := b.subs[topic]
	for i, s := range subs {
		if s.id == id {
			b.subs[topic] = append(subs[:i:i], subs[i+1:]...)
			return
		}
	}
}

// Publish calls every handler subscribed to topic, in subscription order.
// Handlers run outside the lock and may subscribe or publish themselves.
func (b *Bus) Publish(topic Topic) {
	if b == nil {
		return
	}
	b.mu.RLock()
	handlers := make([]Handler, 0, len(b.subs[topic]))
	for _, s := range b.subs[topic] {
		handlers = append(handlers, s.fn)
	}
	b.mu.RUnlock()

	for _, fn := range handlers {
		fn(topic)
	}
}
