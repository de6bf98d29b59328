package worker

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

// Scope couples a dispatcher with the cancel func of its workers.
//
// The scope closes when Close is called or when its parent context ends.
// Messages still buffered at that point are handed to onDrop.
type Scope[T any] struct {
	ID         string
	dispatcher Dispatcher[T]
	ctx        context.Context
	cancel     context.CancelFunc
	teardown   func()
	onDrop     func(T)

	mu     sync.RWMutex // held shared by Send, exclusively by Close
	closed bool
}

func NewScope[T any](
	ctx context.Context,
	newDispatcher func(ctx context.Context) Dispatcher[T],
	teardown func(),
	onDrop func(T),
) *Scope[T] {
	if teardown == nil {
		teardown = func() {}
	}
	if onDrop == nil {
		onDrop = func(T) {}
	}
	ctx, cancelFn := context.WithCancel(ctx)
	s := &Scope[T]{
		ID:         uuid.New().String(),
		dispatcher: newDispatcher(ctx),
		ctx:        ctx,
		cancel:     cancelFn,
		teardown:   teardown,
		onDrop:     onDrop,
	}
	context.AfterFunc(ctx, s.Close)
	return s
}

// Send hands msg to its worker. It reports false when the scope is
// done before the worker accepted the message.
func (s *Scope[T]) Send(msg T) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed {
		return false
	}
	select {
	case <-s.ctx.Done():
		return false
	default:
	}
	select {
	case <-s.ctx.Done():
		return false
	case s.dispatcher.ChannelOf(msg) <- msg:
		return true
	}
}

func (s *Scope[T]) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Close stops the workers and drops what they had not picked up yet.
// It is idempotent.
func (s *Scope[T]) Close() {
	s.cancel()
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	for _, msg := range s.dispatcher.Pending() {
		s.onDrop(msg)
	}
	s.teardown()
}
