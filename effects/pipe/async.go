package pipe

import (
	"context"
	"sync"

	"github.com/on-the-ground/effect_ive_go/effects/internal/worker"
	"github.com/on-the-ground/effect_ive_go/effects/log"
	"go.uber.org/zap"
)

// Config sizes the worker scope behind an async subject.
// Zero values default to 1.
type Config struct {
	BufferSize int
	NumWorkers int
}

// Async is a Subject whose subscribers run on worker goroutines instead of
// the emitting goroutine. Emit only blocks while the worker buffer is full.
//
// Ordering: NewAsync delivers values in emission order. NewPartitioned
// keeps emission order per partition key only.
type Async[T any] struct {
	scope  *worker.Scope[T]
	logger *zap.Logger

	mu          sync.RWMutex
	subscribers []func(T)
	droppers    []func(T)
}

// NewAsync starts a single-worker subject bound to ctx.
func NewAsync[T any](ctx context.Context, bufferSize int, logger *zap.Logger) *Async[T] {
	a := newAsync[T](logger)
	a.scope = worker.NewScope(ctx, func(ctx context.Context) worker.Dispatcher[T] {
		return worker.NewSingleQueue(ctx, max(bufferSize, 1), a.deliver)
	}, a.teardown, a.dropped)
	a.logger.Debug("created async pipe", zap.String("scope", a.scope.ID))
	return a
}

// NewPartitioned starts cfg.NumWorkers workers; values are routed by key.
func NewPartitioned[T any](ctx context.Context, cfg Config, key func(T) string, logger *zap.Logger) *Async[T] {
	if key == nil {
		panic("pipe: nil partition key func")
	}
	scopeCfg := worker.NewScopeConfig(cfg.BufferSize, cfg.NumWorkers)
	a := newAsync[T](logger)
	a.scope = worker.NewScope(ctx, func(ctx context.Context) worker.Dispatcher[T] {
		return worker.NewPartitionedQueue(ctx, scopeCfg, key, a.deliver)
	}, a.teardown, a.dropped)
	a.logger.Debug("created partitioned pipe",
		zap.String("scope", a.scope.ID),
		zap.Int("workers", scopeCfg.NumWorkers),
	)
	return a
}

// NewAsyncFactory returns a Factory producing single-worker subjects bound to ctx.
func NewAsyncFactory[T any](ctx context.Context, bufferSize int, logger *zap.Logger) Factory[T] {
	return func() Subject[T] { return NewAsync[T](ctx, bufferSize, logger) }
}

func newAsync[T any](logger *zap.Logger) *Async[T] {
	return &Async[T]{logger: log.OrNop(logger)}
}

// ID identifies the worker scope in log lines.
func (a *Async[T]) ID() string {
	return a.scope.ID
}

func (a *Async[T]) Emit(value T) {
	if len(a.snapshot()) == 0 {
		return
	}
	if !a.scope.Send(value) {
		a.dropped(value)
	}
}

func (a *Async[T]) Subscribe(fn func(T)) {
	if fn == nil {
		panic("pipe: nil subscriber")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	next := make([]func(T), len(a.subscribers), len(a.subscribers)+1)
	copy(next, a.subscribers)
	a.subscribers = append(next, fn)
}

// OnDrop registers fn for values Emit accepted but the pipe never
// delivered: emitted after the pipe closed, or still buffered when it did.
func (a *Async[T]) OnDrop(fn func(T)) {
	if fn == nil {
		panic("pipe: nil drop handler")
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.droppers = append(a.droppers, fn)
}

// Close stops the workers. Values still buffered are dropped.
func (a *Async[T]) Close() {
	a.scope.Close()
}

func (a *Async[T]) snapshot() []func(T) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.subscribers
}

func (a *Async[T]) deliver(_ context.Context, value T) {
	for _, fn := range a.snapshot() {
		a.call(fn, value)
	}
}

func (a *Async[T]) call(fn func(T), value T) {
	defer func() {
		if r := recover(); r != nil {
			a.logger.Error("panic in pipe subscriber",
				zap.String("scope", a.scope.ID),
				zap.Any("error", r),
			)
		}
	}()
	fn(value)
}

func (a *Async[T]) dropped(value T) {
	a.logger.Warn("async pipe closed, dropped a value", zap.String("scope", a.scope.ID))
	a.mu.RLock()
	droppers := a.droppers
	a.mu.RUnlock()
	for _, fn := range droppers {
		a.call(fn, value)
	}
}

func (a *Async[T]) teardown() {
	a.logger.Debug("closed async pipe", zap.String("scope", a.scope.ID))
}

var _ Dropper[int] = (*Async[int])(nil)
