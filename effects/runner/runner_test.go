package runner_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/on-the-ground/effect_ive_go/effects/runner"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func collect[M any](ch <-chan M) []M {
	var out []M
	for m := range ch {
		out = append(out, m)
	}
	return out
}

func TestFunc_SuccessAndError(t *testing.T) {
	run := runner.Func(
		func(_ context.Context, n int) (string, error) {
			if n < 0 {
				return "", errors.New("negative")
			}
			return strings.Repeat("x", n), nil
		},
		func(n int, err error) string { return "error: " + err.Error() },
	)

	ctx := context.Background()
	assert.Equal(t, []string{"xxx"}, collect(run(ctx, 3)))
	assert.Equal(t, []string{"error: negative"}, collect(run(ctx, -1)))
}

func TestFunc_PanicIsHandedToOnError(t *testing.T) {
	run := runner.Func(
		func(context.Context, int) (string, error) { panic("lost connection") },
		func(n int, err error) string {
			if errors.Is(err, runner.ErrTaskPanicked) {
				return "recovered: " + err.Error()
			}
			return "error"
		},
	)

	assert.Equal(t, []string{"recovered: task panicked: lost connection"}, collect(run(context.Background(), 1)))
}

// panics records what a PanicHandler was told.
type panics struct {
	mu    sync.Mutex
	tasks []any
	recs  []any
}

func (p *panics) handle(task any, recovered any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.tasks = append(p.tasks, task)
	p.recs = append(p.recs, recovered)
}

func TestFunc_PanicInOnErrorIsReported(t *testing.T) {
	got := &panics{}
	ctx := runner.WithPanicHandler(context.Background(), got.handle)
	run := runner.Func(
		func(context.Context, int) (string, error) { return "", errors.New("failed") },
		func(int, error) string { panic("handler broke") },
	)

	assert.Empty(t, collect(run(ctx, 7)))
	assert.Equal(t, []any{7}, got.tasks)
	assert.Equal(t, []any{"handler broke"}, got.recs)
}

func TestMany_PanicClosesChannel(t *testing.T) {
	got := &panics{}
	ctx := runner.WithPanicHandler(context.Background(), got.handle)
	run := runner.Many(func(context.Context, int) []int { panic("no results") })

	assert.Empty(t, collect(run(ctx, 1)))
	assert.Equal(t, []any{"no results"}, got.recs)
}

func TestRecover_WithoutHandlerSwallowsPanic(t *testing.T) {
	run := runner.Many(func(context.Context, int) []int { panic("no results") })

	assert.Empty(t, collect(run(context.Background(), 1)))
}

func TestMany_YieldsInOrder(t *testing.T) {
	run := runner.Many(func(_ context.Context, n int) []int {
		out := make([]int, n)
		for i := range out {
			out[i] = i
		}
		return out
	})

	assert.Equal(t, []int{0, 1, 2}, collect(run(context.Background(), 3)))
	assert.Empty(t, collect(run(context.Background(), 0)))
}

type fetch struct{ topic string }
type tick struct{}

func TestMatch_RoutesByType(t *testing.T) {
	run := runner.Match(
		runner.Typed[any](runner.Const[fetch]("fetched")),
		runner.Typed[any](runner.Const[tick]("ticked")),
	)

	ctx := context.Background()
	assert.Equal(t, []string{"fetched"}, collect(run(ctx, fetch{"cats"})))
	assert.Equal(t, []string{"ticked"}, collect(run(ctx, tick{})))
}

func TestMatch_FirstCaseWins(t *testing.T) {
	run := runner.Match(
		runner.Case[int, string]{When: func(n int) bool { return n > 0 }, Run: runner.Const[int]("positive")},
		runner.Case[int, string]{When: func(int) bool { return true }, Run: runner.Const[int]("any")},
	)

	assert.Equal(t, []string{"positive"}, collect(run(context.Background(), 1)))
	assert.Equal(t, []string{"any"}, collect(run(context.Background(), -1)))
}

func TestMatch_UnrecognizedTaskPanics(t *testing.T) {
	run := runner.Match(runner.Typed[any](runner.Const[fetch]("fetched")))

	defer func() {
		r := recover()
		require.NotNil(t, r)
		err, ok := r.(error)
		require.True(t, ok)
		assert.ErrorIs(t, err, runner.ErrUnrecognizedTask)
	}()
	run(context.Background(), tick{})
}

func TestPerform_MapsOutcome(t *testing.T) {
	ok := runner.Perform(
		func(context.Context) (int, error) { return 42, nil },
		func(n int) string { return "got " + strings.Repeat("x", n%5) },
		func(err error) string { return "failed: " + err.Error() },
	)
	failed := runner.Perform(
		func(context.Context) (int, error) { return 0, errors.New("down") },
		func(int) string { return "got" },
		func(err error) string { return "failed: " + err.Error() },
	)

	run := runner.RunCmd[string]()
	ctx := context.Background()
	assert.Equal(t, []string{"got xx"}, collect(run(ctx, ok)))
	assert.Equal(t, []string{"failed: down"}, collect(run(ctx, failed)))
}
