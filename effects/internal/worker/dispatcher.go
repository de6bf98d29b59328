package worker

import (
	"context"
	"sync"

	"github.com/cespare/xxhash/v2"
)

// ScopeConfig sizes a worker scope.
type ScopeConfig struct {
	BufferSize int // default: 1
	NumWorkers int // default: 1
}

func NewScopeConfig(bufferSize int, numWorkers int) ScopeConfig {
	if bufferSize <= 0 {
		bufferSize = 1
	}
	if numWorkers <= 0 {
		numWorkers = 1
	}
	return ScopeConfig{
		BufferSize: bufferSize,
		NumWorkers: numWorkers,
	}
}

// --- common interface ---

// Dispatcher routes a message to the channel of the worker that owns it.
type Dispatcher[T any] interface {
	ChannelOf(msg T) chan T
	// Pending empties the worker channels without blocking and returns
	// what was still buffered.
	Pending() []T
}

// --- single queue ---

type singleQueue[T any] struct {
	ch chan T
}

func (q singleQueue[T]) ChannelOf(_ T) chan T {
	return q.ch
}

func (q singleQueue[T]) Pending() []T {
	return drain(nil, q.ch)
}

// NewSingleQueue starts one worker. Messages are handled in send order.
// The worker exits when ctx is done; the channel is never closed so late
// senders must select on ctx as well.
func NewSingleQueue[T any](
	ctx context.Context,
	bufferSize int,
	handleFn func(context.Context, T),
) Dispatcher[T] {
	ch := make(chan T, bufferSize)
	ready := make(chan struct{})

	go func() {
		close(ready)
		loop(ctx, ch, handleFn)
	}()

	<-ready

	return singleQueue[T]{ch: ch}
}

// --- partitioned queue ---

type partitionedQueue[T any] struct {
	chs []chan T
	key func(T) string
}

func (pq partitionedQueue[T]) ChannelOf(msg T) chan T {
	return pq.chs[IndexOf(pq.key(msg), len(pq.chs))]
}

func (pq partitionedQueue[T]) Pending() []T {
	var out []T
	for _, ch := range pq.chs {
		out = drain(out, ch)
	}
	return out
}

// NewPartitionedQueue starts cfg.NumWorkers workers. Messages with the same
// key always land on the same worker and are therefore handled in order.
func NewPartitionedQueue[T any](
	ctx context.Context,
	cfg ScopeConfig,
	key func(T) string,
	handleFn func(context.Context, T),
) Dispatcher[T] {
	cfg = NewScopeConfig(cfg.BufferSize, cfg.NumWorkers)
	chs := make([]chan T, cfg.NumWorkers)
	ready := sync.WaitGroup{}
	for i := range chs {
		ready.Add(1)
		ch := make(chan T, cfg.BufferSize)
		go func() {
			ready.Done()
			loop(ctx, ch, handleFn)
		}()
		chs[i] = ch
	}
	ready.Wait()
	return partitionedQueue[T]{chs: chs, key: key}
}

func loop[T any](ctx context.Context, ch chan T, handleFn func(context.Context, T)) {
	for {
		select {
		case msg := <-ch:
			handleFn(ctx, msg)
		case <-ctx.Done():
			return
		}
	}
}

func drain[T any](out []T, ch chan T) []T {
	for {
		select {
		case msg := <-ch:
			out = append(out, msg)
		default:
			return out
		}
	}
}

// IndexOf maps a partition key onto one of n workers.
func IndexOf(key string, n int) int {
	switch n {
	case 0:
		panic("number of channels cannot be 0")
	case 1:
		return 0
	default:
		return int(xxhash.Sum64String(key) % uint64(n))
	}
}
