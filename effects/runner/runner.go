// Package runner defines the task runner contract: the host-supplied
// collaborator that turns a task into follow-up messages.
package runner

import (
	"context"
	"errors"
	"fmt"
)

// Runner starts the asynchronous computation for one task. The returned
// channel yields zero, one or many messages and is closed when the task is
// done. Run must not block: do the work on a goroutine.
//
// A runner that can fail should turn the failure into a message (see Func
// and Perform). A runner may panic for a task it does not understand.
type Runner[T, M any] func(ctx context.Context, task T) <-chan M

var ErrUnrecognizedTask = errors.New("unrecognized task")

// Func adapts a blocking single-result function. An error is turned into a
// message by onError; so is a panic in fn, wrapped in ErrTaskPanicked.
func Func[T, M any](fn func(context.Context, T) (M, error), onError func(T, error) M) Runner[T, M] {
	return func(ctx context.Context, task T) <-chan M {
		out := make(chan M, 1)
		go func() {
			defer close(out)
			defer Recover(ctx, task)
			msg, err := call(ctx, task, fn)
			if err != nil {
				msg = onError(task, err)
			}
			send(ctx, out, msg)
		}()
		return out
	}
}

// Many adapts a blocking function producing any number of messages.
func Many[T, M any](fn func(context.Context, T) []M) Runner[T, M] {
	return func(ctx context.Context, task T) <-chan M {
		out := make(chan M)
		go func() {
			defer close(out)
			defer Recover(ctx, task)
			for _, msg := range fn(ctx, task) {
				if !send(ctx, out, msg) {
					return
				}
			}
		}()
		return out
	}
}

// Const answers every task with the same messages.
func Const[T, M any](msgs ...M) Runner[T, M] {
	return Many(func(context.Context, T) []M { return msgs })
}

// Case pairs a predicate with the runner that handles matching tasks.
type Case[T, M any] struct {
	When func(T) bool
	Run  Runner[T, M]
}

// Typed matches tasks whose dynamic type is X.
func Typed[T, X, M any](run Runner[X, M]) Case[T, M] {
	return Case[T, M]{
		When: func(t T) bool {
			_, ok := any(t).(X)
			return ok
		},
		Run: func(ctx context.Context, t T) <-chan M {
			return run(ctx, any(t).(X))
		},
	}
}

// Match routes each task to the first case that accepts it and panics
// with ErrUnrecognizedTask when none does.
func Match[T, M any](cases ...Case[T, M]) Runner[T, M] {
	return func(ctx context.Context, task T) <-chan M {
		for _, c := range cases {
			if c.When(task) {
				return c.Run(ctx, task)
			}
		}
		panic(fmt.Errorf("%w: %T %+v", ErrUnrecognizedTask, task, task))
	}
}

func call[T, M any](ctx context.Context, task T, fn func(context.Context, T) (M, error)) (msg M, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrTaskPanicked, r)
		}
	}()
	return fn(ctx, task)
}

func send[M any](ctx context.Context, out chan<- M, msg M) bool {
	select {
	case out <- msg:
		return true
	case <-ctx.Done():
		return false
	}
}
