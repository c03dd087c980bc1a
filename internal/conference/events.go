package conference

import (
	"sync"
)

// Subscription is a scoped registration returned by Session.On. Close
// unregisters the handler; it is safe to call more than once and on nil.
type Subscription struct {
	once   sync.Once
	remove func()
}

func (s *Subscription) Close() {
	if s == nil || s.remove == nil {
		return
	}
	s.once.Do(s.remove)
}

// dispatcher fans conference events out to registered handlers. After close,
// subscribe returns inert subscriptions and dispatch is a no-op.
type dispatcher struct {
	mu       sync.RWMutex
	nextID   uint64
	handlers map[Event]map[uint64]Handler
	closed   bool
}

func newDispatcher() *dispatcher {
	return &dispatcher{
		handlers: make(map[Event]map[uint64]Handler),
	}
}

func (d *dispatcher) subscribe(event Event, fn Handler) *Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed || fn == nil {
		return &Subscription{}
	}

	d.nextID++
	id := d.nextID

	if d.handlers[event] == nil {
		d.handlers[event] = make(map[uint64]Handler)
	}
	d.handlers[event][id] = fn

	return &Subscription{
		remove: func() {
			d.mu.Lock()
			defer d.mu.Unlock()
			delete(d.handlers[event], id)
		},
	}
}

func (d *dispatcher) dispatch(payload EventPayload) {
	d.mu.RLock()
	if d.closed {
		d.mu.RUnlock()
		return
	}
	registered := d.handlers[payload.Event]
	handlers := make([]Handler, 0, len(registered))
	for _, fn := range registered {
		handlers = append(handlers, fn)
	}
	d.mu.RUnlock()

	// Handlers run outside the lock so they may subscribe/unsubscribe.
	for _, fn := range handlers {
		fn(payload)
	}
}

func (d *dispatcher) close() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.closed = true
	d.handlers = make(map[Event]map[uint64]Handler)
}
