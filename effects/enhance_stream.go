package effects

import (
	"context"
	"sync"
)

// taskQueue buffers tasks between the dispatching goroutine, which must not
// block, and the stream input.
type taskQueue[T any] struct {
	mu      sync.Mutex
	pending []T
	closed  bool
	wake    chan struct{}
}

// push reports false once the queue is closed.
func (q *taskQueue[T]) push(task T) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.pending = append(q.pending, task)
	q.mu.Unlock()

	select {
	case q.wake <- struct{}{}:
	default:
	}
	return true
}

func (q *taskQueue[T]) take() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	batch := q.pending
	q.pending = nil
	return batch
}

// close refuses further pushes and returns what was never taken.
func (q *taskQueue[T]) close() []T {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	batch := q.pending
	q.pending = nil
	return batch
}

// startStream starts the store-wide stream and returns the task pipe
// subscriber feeding it.
func (l *loop[S, M, T]) startStream() func(T) {
	q := &taskQueue[T]{wake: make(chan struct{}, 1)}
	in := make(chan T)

	if !l.sup.Spawn(func(ctx context.Context) {
		l.pump(ctx, q, in)
	}, nil) {
		q.close()
	}
	l.sup.Spawn(func(ctx context.Context) {
		l.drain(ctx, l.opts.Stream(ctx, in))
	}, func(recovered any) {
		l.opts.Observer.RunnerPanicked(nil, recovered)
	})

	return func(task T) {
		if !q.push(task) {
			l.dropped(task)
		}
	}
}

// pump feeds queued tasks to the stream until ctx ends; whatever is left
// then is settled as dropped.
func (l *loop[S, M, T]) pump(ctx context.Context, q *taskQueue[T], in chan<- T) {
	defer close(in)
	var batch []T
	defer func() {
		for _, task := range append(batch, q.close()...) {
			l.dropped(task)
		}
	}()
	for {
		batch = q.take()
		for len(batch) > 0 {
			select {
			case in <- batch[0]:
				l.opts.Observer.TaskSettled(batch[0])
				batch = batch[1:]
			case <-ctx.Done():
				return
			}
		}
		select {
		case <-q.wake:
		case <-ctx.Done():
			return
		}
	}
}
