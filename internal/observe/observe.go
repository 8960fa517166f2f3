// Package observe publishes controller state to any number of observers.
//
// State replays its current value to each new subscriber, the way a
// screen expects to render what is there now. Events never replay: an
// event is delivered to whoever is subscribed when it happens and is then
// gone, so a stale error cannot resurface on a later observation.
//
// Publishers never block. A subscriber whose buffer is full misses the
// value; the next one still arrives.
package observe

import "sync"

const DefaultBuffer = 16

type subscribers[T any] struct {
	mu   sync.RWMutex
	subs map[*subscription[T]]struct{}
}

type subscription[T any] struct {
	ch     chan T
	closed bool
}

func (s *subscribers[T]) add(sub *subscription[T]) {
	if s.subs == nil {
		s.subs = make(map[*subscription[T]]struct{})
	}
	s.subs[sub] = struct{}{}
}

// remove must be called with mu held for writing.
func (s *subscribers[T]) remove(sub *subscription[T]) {
	if _, ok := s.subs[sub]; ok {
		delete(s.subs, sub)
		if !sub.closed {
			sub.closed = true
			close(sub.ch)
		}
	}
}

// publish must be called with mu held.
func (s *subscribers[T]) publish(v T) {
	for sub := range s.subs {
		select {
		case sub.ch <- v:
		default:
			// Subscriber buffer full; drop rather than block the publisher.
		}
	}
}

func (s *subscribers[T]) count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.subs)
}

// State is an observable value with replay of the current value.
type State[T any] struct {
	subscribers[T]
	value T
}

// NewState creates a State holding initial.
func NewState[T any](initial T) *State[T] {
	return &State[T]{value: initial}
}

// Value returns the current value.
func (s *State[T]) Value() T {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.value
}

// Set replaces the value and publishes it.
func (s *State[T]) Set(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = v
	s.publish(v)
}

// Update applies fn to the current value atomically and publishes the
// result. It returns the new value.
func (s *State[T]) Update(fn func(T) T) T {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.value = fn(s.value)
	s.publish(s.value)
	return s.value
}

// UpdateIf applies fn atomically; the result is stored and published only
// when fn reports a change.
func (s *State[T]) UpdateIf(fn func(T) (T, bool)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	next, changed := fn(s.value)
	if !changed {
		return false
	}
	s.value = next
	s.publish(next)
	return true
}

// Subscribe returns a channel that receives the current value, then every
// later one, until cancel is called. cancel is safe to call more than once.
func (s *State[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	sub := &subscription[T]{ch: make(chan T, buffer)}

	s.mu.Lock()
	s.add(sub)
	sub.ch <- s.value
	s.mu.Unlock()

	return sub.ch, func() {
		s.mu.Lock()
		s.remove(sub)
		s.mu.Unlock()
	}
}

// SubscriberCount returns the number of active subscribers.
func (s *State[T]) SubscriberCount() int {
	return s.count()
}

// Events is a stream of one-shot values.
type Events[T any] struct {
	subscribers[T]
	last T
}

// NewEvents creates an event stream whose Last starts as initial.
func NewEvents[T any](initial T) *Events[T] {
	return &Events[T]{last: initial}
}

// Emit delivers v to the current subscribers and records it as Last.
func (e *Events[T]) Emit(v T) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.last = v
	e.publish(v)
}

// Last returns the most recently emitted value, for snapshot rendering.
// It is never delivered to subscribers.
func (e *Events[T]) Last() T {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.last
}

// Subscribe returns a channel receiving events emitted after the call.
func (e *Events[T]) Subscribe(buffer int) (<-chan T, func()) {
	if buffer < 1 {
		buffer = DefaultBuffer
	}
	sub := &subscription[T]{ch: make(chan T, buffer)}

	e.mu.Lock()
	e.add(sub)
	e.mu.Unlock()

	return sub.ch, func() {
		e.mu.Lock()
		e.remove(sub)
		e.mu.Unlock()
	}
}

func (e *Events[T]) SubscriberCount() int {
	return e.count()
}
