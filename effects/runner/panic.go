package runner

import (
	"context"
	"errors"
)

// ErrTaskPanicked wraps a panic raised by the function given to Func.
var ErrTaskPanicked = errors.New("task panicked")

// PanicHandler is told about a panic recovered on a goroutine started by
// the adapters of this package. task is the element being handled when the
// panic happened.
type PanicHandler func(task any, recovered any)

type panicHandlerKey struct{}

// WithPanicHandler registers h for every adapter running under ctx.
func WithPanicHandler(ctx context.Context, h PanicHandler) context.Context {
	return context.WithValue(ctx, panicHandlerKey{}, h)
}

// Recover is deferred by goroutines running host code for task. A panic is
// handed to the handler registered on ctx, or dropped when there is none;
// either way the goroutine returns normally.
func Recover(ctx context.Context, task any) {
	if r := recover(); r != nil {
		report(ctx, task, r)
	}
}

func report(ctx context.Context, task any, recovered any) {
	if h, ok := ctx.Value(panicHandlerKey{}).(PanicHandler); ok && h != nil {
		h(task, recovered)
	}
}

// guard runs fn for v and reports false when it panicked.
func guard[T any](ctx context.Context, v T, fn func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			report(ctx, v, r)
		}
	}()
	fn()
	return true
}
