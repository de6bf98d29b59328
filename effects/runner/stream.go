package runner

import (
	"context"
	"sync"

	"github.com/on-the-ground/effect_ive_go/shared/orderedbuffer"
)

// Stream is a stream-to-stream task runner: it reads tasks from source
// and writes messages to the returned channel, closing it when source is
// exhausted.
type Stream[T, M any] func(ctx context.Context, source <-chan T) <-chan M

// FromStream embeds a Stream as a Runner by feeding it a one-element
// stream per task.
func FromStream[T, M any](s Stream[T, M]) Runner[T, M] {
	return func(ctx context.Context, task T) <-chan M {
		source := make(chan T, 1)
		source <- task
		close(source)
		return s(ctx, source)
	}
}

// MapStream applies f to every element. An element on which f panics is
// dropped.
func MapStream[T, R any](f func(T) R) Stream[T, R] {
	return func(ctx context.Context, source <-chan T) <-chan R {
		sink := make(chan R)
		go mapFn(ctx, source, sink, f)
		return sink
	}
}

// FilterStream keeps the elements satisfying predicate. An element on which
// predicate panics is dropped.
func FilterStream[T any](predicate func(T) bool) Stream[T, T] {
	return func(ctx context.Context, source <-chan T) <-chan T {
		sink := make(chan T)
		go filterFn(ctx, source, sink, predicate)
		return sink
	}
}

// FlatMapStream runs a Runner for every element and merges the results in
// element order. An element whose runner panics or returns a nil channel
// yields nothing.
func FlatMapStream[T, R any](run Runner[T, R]) Stream[T, R] {
	return func(ctx context.Context, source <-chan T) <-chan R {
		sink := make(chan R)
		go func() {
			defer close(sink)
			for v := range source {
				var msgs <-chan R
				if !guard(ctx, v, func() { msgs = run(ctx, v) }) || msgs == nil {
					continue
				}
				for r := range msgs {
					select {
					case sink <- r:
					case <-ctx.Done():
						return
					}
				}
			}
		}()
		return sink
	}
}

// Then chains two streams.
func Then[T, U, V any](first Stream[T, U], second Stream[U, V]) Stream[T, V] {
	return func(ctx context.Context, source <-chan T) <-chan V {
		return second(ctx, first(ctx, source))
	}
}

// OrderByStream reorders elements within a window of size: an element is
// released once size newer ones are held, smallest first. The rest is
// released in order when the source is exhausted.
func OrderByStream[T any](size int, cmp func(a, b T) int) Stream[T, T] {
	return func(ctx context.Context, source <-chan T) <-chan T {
		sink := make(chan T)
		go orderBy(ctx, orderedbuffer.NewWindow(size, cmp), source, sink)
		return sink
	}
}

// MergeStreams hands every element to each stream and interleaves their
// output. Order across streams is not defined.
func MergeStreams[T, R any](streams ...Stream[T, R]) Stream[T, R] {
	return func(ctx context.Context, source <-chan T) <-chan R {
		sink := make(chan R)
		inputs := make([]chan T, len(streams))
		var wg sync.WaitGroup
		for i, s := range streams {
			inputs[i] = make(chan T)
			wg.Add(1)
			go func(out <-chan R) {
				defer wg.Done()
				pipe(ctx, out, sink)
			}(s(ctx, inputs[i]))
		}
		go broadcast(ctx, source, inputs)
		go func() {
			wg.Wait()
			close(sink)
		}()
		return sink
	}
}

func broadcast[T any](ctx context.Context, source <-chan T, sinks []chan T) {
	defer func() {
		for _, s := range sinks {
			close(s)
		}
	}()
	for v := range source {
		for _, s := range sinks {
			select {
			case s <- v:
			case <-ctx.Done():
				return
			}
		}
	}
}

// pipe forwards source into sink without closing sink.
func pipe[T any](ctx context.Context, source <-chan T, sink chan<- T) {
	for v := range source {
		select {
		case sink <- v:
		case <-ctx.Done():
			return
		}
	}
}

func orderBy[T any](ctx context.Context, w *orderedbuffer.Window[T], source <-chan T, sink chan<- T) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		defer close(sink)
		pipe(ctx, w.Out(), sink)
	}()

	defer func() {
		w.Flush(ctx)
		<-done
	}()
	for v := range source {
		if !w.Push(ctx, v) {
			return
		}
	}
}

func mapFn[T any, R any](ctx context.Context, source <-chan T, sink chan<- R, f func(T) R) {
	defer close(sink)
	for v := range source {
		var r R
		if !guard(ctx, v, func() { r = f(v) }) {
			continue
		}
		select {
		case sink <- r:
		case <-ctx.Done():
			return
		}
	}
}

func filterFn[T any](ctx context.Context, source <-chan T, sink chan<- T, predicate func(T) bool) {
	defer close(sink)
	for v := range source {
		var keep bool
		if !guard(ctx, v, func() { keep = predicate(v) }) {
			continue
		}
		if keep {
			select {
			case sink <- v:
			case <-ctx.Done():
				return
			}
		}
	}
}
