package tasks

import (
	"context"
	"time"

	"github.com/on-the-ground/effect_ive_go/effects/runner"
	"github.com/rickb777/date/v2/timespan"
)

// Delay is a timer task: after After has elapsed, Then turns the span that
// was actually waited into a message.
type Delay[M any] struct {
	After time.Duration
	Then  func(waited timespan.TimeSpan) M
}

// RunDelay is the Runner for Delay tasks. A cancelled context yields no
// message, and neither does a Then that panics.
func RunDelay[M any]() runner.Runner[Delay[M], M] {
	return func(ctx context.Context, d Delay[M]) <-chan M {
		out := make(chan M, 1)
		go func() {
			defer close(out)
			defer runner.Recover(ctx, d)
			start := time.Now()
			timer := time.NewTimer(d.After)
			defer timer.Stop()

			select {
			case <-ctx.Done():
			case end := <-timer.C:
				out <- d.Then(timespan.BetweenTimes(start, end))
			}
		}()
		return out
	}
}
