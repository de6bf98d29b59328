// Package store is a minimal synchronous state container.
//
// Dispatch runs the reducer and notifies listeners before it returns.
// Dispatches are serialized; GetState never blocks and always returns the
// last committed state.
package store

import (
	"sync"
	"sync/atomic"
)

// Reducer is a plain state transition.
type Reducer[S, M any] func(state S, msg M) S

// Store holds one state value and replaces it on every dispatch.
type Store[S, M any] interface {
	Dispatch(msg M)
	GetState() S
	// Subscribe registers a listener called after every committed dispatch.
	// The returned func removes it.
	Subscribe(listener func()) (unsubscribe func())
}

// Creator builds a Store. Enhancers wrap a Creator to change how the
// store is built.
type Creator[S, M any] func(reducer Reducer[S, M], initial S, enhancers ...Enhancer[S, M]) Store[S, M]

// Enhancer wraps a Creator.
type Enhancer[S, M any] func(next Creator[S, M]) Creator[S, M]

// New builds a store. Enhancers are applied so that the first one is the
// outermost wrapper.
//
// Listeners and reducers must not call Dispatch synchronously: dispatches
// are serialized and a nested call deadlocks.
func New[S, M any](reducer Reducer[S, M], initial S, enhancers ...Enhancer[S, M]) Store[S, M] {
	create := Creator[S, M](newStore[S, M])
	for i := len(enhancers) - 1; i >= 0; i-- {
		create = enhancers[i](create)
	}
	return create(reducer, initial)
}

type listener struct {
	fn func()
}

type store[S, M any] struct {
	reducer Reducer[S, M]

	dispatchMu sync.Mutex
	state      atomic.Pointer[S]

	listenersMu sync.RWMutex
	listeners   []*listener
}

func newStore[S, M any](reducer Reducer[S, M], initial S, _ ...Enhancer[S, M]) Store[S, M] {
	if reducer == nil {
		panic("store: nil reducer")
	}
	s := &store[S, M]{reducer: reducer}
	s.state.Store(&initial)
	return s
}

// Dispatch runs the reducer against the current state and commits the
// result. A panicking reducer leaves the state untouched and notifies
// nobody; the panic propagates to the caller.
func (s *store[S, M]) Dispatch(msg M) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()

	next := s.reducer(*s.state.Load(), msg)
	s.state.Store(&next)

	for _, l := range s.snapshot() {
		l.fn()
	}
}

func (s *store[S, M]) GetState() S {
	return *s.state.Load()
}

func (s *store[S, M]) Subscribe(fn func()) func() {
	if fn == nil {
		panic("store: nil listener")
	}
	l := &listener{fn: fn}

	s.listenersMu.Lock()
	next := make([]*listener, len(s.listeners), len(s.listeners)+1)
	copy(next, s.listeners)
	s.listeners = append(next, l)
	s.listenersMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() { s.unsubscribe(l) })
	}
}

func (s *store[S, M]) unsubscribe(l *listener) {
	s.listenersMu.Lock()
	defer s.listenersMu.Unlock()

	next := make([]*listener, 0, len(s.listeners))
	for _, cur := range s.listeners {
		if cur != l {
			next = append(next, cur)
		}
	}
	s.listeners = next
}

func (s *store[S, M]) snapshot() []*listener {
	s.listenersMu.RLock()
	defer s.listenersMu.RUnlock()
	return s.listeners
}
