// Package orderedbuffer holds a bounded sorting window: values go in in any
// order and come out smallest first once the window overflows.
package orderedbuffer

import (
	"context"
	"sort"
)

type CompareFunc[T any] func(a, b T) int

// Window keeps at most size values sorted by compare. Push and Flush must be
// called from a single goroutine; Out may be drained from another.
type Window[T any] struct {
	items   []T
	size    int
	compare CompareFunc[T]

	out    chan T
	closed bool
}

// NewWindow returns a window of size values (at least 1).
func NewWindow[T any](size int, cmp CompareFunc[T]) *Window[T] {
	size = max(size, 1)
	return &Window[T]{
		items:   make([]T, 0, size+1),
		size:    size,
		compare: cmp,
		out:     make(chan T, size),
	}
}

// Push inserts v after every value comparing equal to it. When the window
// overflows its smallest value is sent to Out. Push reports false once the
// window is flushed or ctx is done.
func (w *Window[T]) Push(ctx context.Context, v T) bool {
	if w.closed {
		return false
	}

	idx := sort.Search(len(w.items), func(i int) bool {
		return w.compare(v, w.items[i]) < 0
	})
	w.items = append(w.items, v)
	copy(w.items[idx+1:], w.items[idx:])
	w.items[idx] = v

	if len(w.items) <= w.size {
		return true
	}
	evicted := w.items[0]
	w.items = w.items[1:]
	select {
	case <-ctx.Done():
		return false
	case w.out <- evicted:
		return true
	}
}

// Out yields evicted values, then the flushed remainder. It is closed by Flush.
func (w *Window[T]) Out() <-chan T {
	return w.out
}

// Flush releases the remaining values in order and closes Out.
// Values still held when ctx ends are dropped.
func (w *Window[T]) Flush(ctx context.Context) {
	if w.closed {
		return
	}
	w.closed = true
	defer close(w.out)

	for _, v := range w.items {
		select {
		case <-ctx.Done():
			return
		case w.out <- v:
		}
	}
	w.items = nil
}
