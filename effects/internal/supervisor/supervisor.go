package supervisor

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Supervisor manages the lifecycle of the goroutines that drain task results.
//
//   - Every child runs under a context derived from the supervisor's parent,
//     so cancelling the parent propagates to all children.
//   - A WaitGroup tracks children so Wait can join them.
//   - Panics are recovered per child and reported; they never reach the process.
type Supervisor struct {
	ID     string
	ctx    context.Context
	cancel context.CancelFunc
	logger *zap.Logger

	mu      sync.Mutex // guards stopped against wg.Add racing wg.Wait
	stopped bool
	wg      sync.WaitGroup
}

// New creates a supervisor bound to parent. When parent is done the
// supervisor logs the shutdown and waits for its children in the background.
func New(parent context.Context, logger *zap.Logger) *Supervisor {
	if logger == nil {
		logger = zap.NewNop()
	}
	ctx, cancel := context.WithCancel(parent)
	s := &Supervisor{
		ID:     uuid.New().String(),
		ctx:    ctx,
		cancel: cancel,
		logger: logger,
	}
	context.AfterFunc(ctx, func() {
		s.stop()
		s.logger.Debug("context cancelled, waiting for all routines to finish", zap.String("supervisor", s.ID))
		s.wg.Wait()
		s.logger.Debug("all routines finished", zap.String("supervisor", s.ID))
	})
	return s
}

// Spawn starts fn in its own goroutine. A panic inside fn is recovered,
// logged and handed to onPanic (which may be nil).
// Spawning on a cancelled supervisor is a no-op that reports false.
func (s *Supervisor) Spawn(fn func(context.Context), onPanic func(recovered any)) bool {
	s.mu.Lock()
	if s.stopped || s.ctx.Err() != nil {
		s.mu.Unlock()
		return false
	}
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				s.logger.Error("panic in child routine",
					zap.String("supervisor", s.ID),
					zap.Any("error", r),
				)
				if onPanic != nil {
					onPanic(r)
				}
			}
		}()
		fn(s.ctx)
	}()
	return true
}

// Wait blocks until all spawned children have returned.
func (s *Supervisor) Wait() {
	s.wg.Wait()
}

// Close cancels all children and waits for them.
func (s *Supervisor) Close() {
	s.cancel()
	s.stop()
	s.Wait()
}

func (s *Supervisor) stop() {
	s.mu.Lock()
	s.stopped = true
	s.mu.Unlock()
}
