package orderedbuffer_test

import (
	"context"
	"testing"

	"github.com/on-the-ground/effect_ive_go/shared/orderedbuffer"
	"github.com/stretchr/testify/assert"
)

func byValue(a, b int) int { return a - b }

// collect drains w.Out on its own goroutine; the returned func waits for
// Out to close.
func collect[T any](w *orderedbuffer.Window[T]) func() []T {
	done := make(chan []T, 1)
	go func() {
		var got []T
		for v := range w.Out() {
			got = append(got, v)
		}
		done <- got
	}()
	return func() []T { return <-done }
}

func TestWindow_EvictsSmallestThenFlushes(t *testing.T) {
	ctx := context.Background()
	w := orderedbuffer.NewWindow(3, byValue)
	wait := collect(w)

	for _, v := range []int{10, 5, 7, 3, 8} {
		assert.Truef(t, w.Push(ctx, v), "push %d", v)
	}
	w.Flush(ctx)

	// 3 and 5 are evicted on overflow, 7 8 10 are flushed
	assert.Equal(t, []int{3, 5, 7, 8, 10}, wait())
}

func TestWindow_EqualValuesKeepArrivalOrder(t *testing.T) {
	type item struct{ key, seq int }
	ctx := context.Background()
	w := orderedbuffer.NewWindow(4, func(a, b item) int { return a.key - b.key })
	wait := collect(w)

	for i, k := range []int{2, 1, 2, 1} {
		w.Push(ctx, item{key: k, seq: i})
	}
	w.Flush(ctx)

	assert.Equal(t, []item{{1, 1}, {1, 3}, {2, 0}, {2, 2}}, wait())
}

func TestWindow_PushAfterFlush(t *testing.T) {
	ctx := context.Background()
	w := orderedbuffer.NewWindow(2, byValue)
	wait := collect(w)

	assert.True(t, w.Push(ctx, 1))
	w.Flush(ctx)
	w.Flush(ctx)

	assert.False(t, w.Push(ctx, 2))
	assert.Equal(t, []int{1}, wait())
}

func TestWindow_SizeOneOnlySwapsNeighbours(t *testing.T) {
	ctx := context.Background()
	w := orderedbuffer.NewWindow(0, byValue)
	wait := collect(w)

	for _, v := range []int{3, 1, 2} {
		w.Push(ctx, v)
	}
	w.Flush(ctx)

	assert.Equal(t, []int{1, 2, 3}, wait())
}
