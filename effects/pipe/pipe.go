// Package pipe provides the publish/subscribe channel that carries tasks
// from a reducer to the task runner.
//
// New returns the minimal synchronous subject. NewAsync and NewPartitioned
// return worker-backed substitutes with the same contract.
package pipe

import "sync"

// Subject is a stream of values with push-style subscribers.
//
// Emit delivers a value to every subscriber registered at the time of the
// call. A value emitted while nobody is subscribed is dropped.
type Subject[T any] interface {
	Emit(value T)
	Subscribe(fn func(T))
}

// Dropper is implemented by subjects that can lose a value after Emit
// returned, such as a closed Async.
type Dropper[T any] interface {
	OnDrop(fn func(T))
}

// Factory builds a fresh Subject. Each store gets its own instance.
type Factory[T any] func() Subject[T]

// Pipe is the minimal synchronous Subject: Emit calls every subscriber
// in registration order before returning.
type Pipe[T any] struct {
	mu          sync.RWMutex
	subscribers []func(T)
}

func New[T any]() *Pipe[T] {
	return &Pipe[T]{}
}

// NewFactory returns a Factory producing synchronous pipes.
func NewFactory[T any]() Factory[T] {
	return func() Subject[T] { return New[T]() }
}

func (p *Pipe[T]) Emit(value T) {
	for _, fn := range p.snapshot() {
		fn(value)
	}
}

func (p *Pipe[T]) Subscribe(fn func(T)) {
	if fn == nil {
		panic("pipe: nil subscriber")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	// copy-on-write: an Emit in flight keeps iterating its own snapshot
	next := make([]func(T), len(p.subscribers), len(p.subscribers)+1)
	copy(next, p.subscribers)
	p.subscribers = append(next, fn)
}

func (p *Pipe[T]) snapshot() []func(T) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.subscribers
}

// Map returns a pipe that emits fn(v) whenever src emits v.
// fn runs on the emitting goroutine.
func Map[T, U any](src Subject[T], fn func(T) U) *Pipe[U] {
	out := New[U]()
	src.Subscribe(func(v T) {
		out.Emit(fn(v))
	})
	return out
}
