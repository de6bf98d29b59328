package effects

import (
	"context"
	"errors"
	"fmt"

	"github.com/on-the-ground/effect_ive_go/effects/internal/supervisor"
	"github.com/on-the-ground/effect_ive_go/effects/log"
	"github.com/on-the-ground/effect_ive_go/effects/pipe"
	"github.com/on-the-ground/effect_ive_go/effects/reducer"
	"github.com/on-the-ground/effect_ive_go/effects/runner"
	"github.com/on-the-ground/effect_ive_go/effects/store"
	"go.uber.org/zap"
)

var (
	ErrNilRunner       = errors.New("effects: nil task runner")
	ErrAmbiguousRunner = errors.New("effects: both Runner and Stream are set")
)

// Scheduler decides when a produced message is re-dispatched.
type Scheduler func(thunk func())

// Immediate runs the thunk right away on the draining goroutine.
func Immediate(thunk func()) { thunk() }

// Deferred runs the thunk on a fresh goroutine.
func Deferred(thunk func()) { go thunk() }

// Options configures Enhance. Exactly one of Runner and Stream is required.
type Options[M, T any] struct {
	// NewPipe builds the task pipe of each store. Defaults to pipe.New.
	NewPipe pipe.Factory[T]
	// Runner is started once per task.
	Runner runner.Runner[T, M]
	// Stream is started once per store and receives every task of that
	// store in emission order. A task settles when the stream accepts it.
	Stream runner.Stream[T, M]
	// Scheduler defaults to Immediate.
	Scheduler Scheduler
	Logger    *zap.Logger
	Observer  Observer
}

func (o Options[M, T]) withDefaults() Options[M, T] {
	if o.NewPipe == nil {
		o.NewPipe = pipe.NewFactory[T]()
	}
	if o.Scheduler == nil {
		o.Scheduler = Immediate
	}
	o.Logger = log.OrNop(o.Logger)
	if o.Observer == nil {
		o.Observer = NopObserver{}
	}
	return o
}

// Creator builds a store from an effect-carrying reducer. The store's
// background work is bound to ctx.
type Creator[S, M, T any] func(
	ctx context.Context,
	r reducer.Reducer[S, M, T],
	initial S,
	enhancers ...store.Enhancer[S, M],
) store.Store[S, M]

// Enhance lifts a plain store creator into one that accepts effect-carrying
// reducers. Tasks returned by the reducer are run by opts.Runner or
// opts.Stream, and the resulting messages are dispatched back into the
// same store.
//
// Plain store enhancers passed to the returned Creator are forwarded to
// create unchanged, and the returned store is the one create built.
//
// Enhance panics with ErrNilRunner when neither opts.Runner nor opts.Stream
// is set, and with ErrAmbiguousRunner when both are.
func Enhance[S, M, T any](opts Options[M, T]) func(create store.Creator[S, M]) Creator[S, M, T] {
	opts = checkOptions(opts)

	return func(create store.Creator[S, M]) Creator[S, M, T] {
		return func(ctx context.Context, r reducer.Reducer[S, M, T], initial S, enhancers ...store.Enhancer[S, M]) store.Store[S, M] {
			return build(ctx, create, r, initial, opts, enhancers).store
		}
	}
}

// New builds an effect-carrying store on top of store.New.
func New[S, M, T any](
	ctx context.Context,
	r reducer.Reducer[S, M, T],
	initial S,
	opts Options[M, T],
	enhancers ...store.Enhancer[S, M],
) store.Store[S, M] {
	return Enhance[S, M, T](opts)(store.New[S, M])(ctx, r, initial, enhancers...)
}

// Start is New with a teardown. The teardown cancels the store's background
// work and blocks until every task started by the store has settled; tasks
// emitted afterwards are dropped.
//
//	s, teardown := effects.Start(ctx, r, initial, opts)
//	defer teardown()
func Start[S, M, T any](
	ctx context.Context,
	r reducer.Reducer[S, M, T],
	initial S,
	opts Options[M, T],
	enhancers ...store.Enhancer[S, M],
) (store.Store[S, M], func()) {
	l := build(ctx, store.New[S, M], r, initial, checkOptions(opts), enhancers)
	return l.store, func() {
		l.sup.Close()
		l.opts.Logger.Debug("store torn down", zap.String("supervisor", l.sup.ID))
	}
}

func checkOptions[M, T any](opts Options[M, T]) Options[M, T] {
	switch {
	case opts.Runner == nil && opts.Stream == nil:
		panic(ErrNilRunner)
	case opts.Runner != nil && opts.Stream != nil:
		panic(ErrAmbiguousRunner)
	}
	return opts.withDefaults()
}

func build[S, M, T any](
	ctx context.Context,
	create store.Creator[S, M],
	r reducer.Reducer[S, M, T],
	initial S,
	opts Options[M, T],
	enhancers []store.Enhancer[S, M],
) *loop[S, M, T] {
	if r == nil {
		panic("effects: nil reducer")
	}
	tasks := opts.NewPipe()
	lifted := liftReducer(r, func(task T) {
		opts.Observer.TaskEmitted(task)
		tasks.Emit(task)
	}, opts.Logger)

	l := &loop[S, M, T]{
		store: create(lifted, initial, enhancers...),
		opts:  opts,
	}
	l.sup = supervisor.New(runner.WithPanicHandler(ctx, l.runnerPanicked), opts.Logger)
	if d, ok := tasks.(pipe.Dropper[T]); ok {
		d.OnDrop(l.dropped)
	}
	if opts.Stream != nil {
		tasks.Subscribe(l.startStream())
	} else {
		jobs := pipe.Map(tasks, l.prepare)
		jobs.Subscribe(l.start)
	}
	return l
}

func liftReducer[S, M, T any](r reducer.Reducer[S, M, T], emit func(T), logger *zap.Logger) store.Reducer[S, M] {
	lifted := reducer.Lift(r, emit)
	return func(state S, msg M) S {
		defer func() {
			if rec := recover(); rec != nil {
				var cv *reducer.ContractViolation
				if err, ok := rec.(error); ok && errors.As(err, &cv) {
					log.Log(logger, log.LogError, "reducer broke its contract", map[string]interface{}{
						"reducer": cv.Reducer,
						"task":    cv.Task,
						"reason":  cv.Reason,
						"msg":     fmt.Sprintf("%T", msg),
					})
				}
				panic(rec)
			}
		}()
		return lifted(state, msg)
	}
}

// job is a task bound to its runner but not started yet.
type job[T, M any] struct {
	task T
	run  func(context.Context) <-chan M
}

// loop drains runner output back into the store.
type loop[S, M, T any] struct {
	store store.Store[S, M]
	opts  Options[M, T]
	sup   *supervisor.Supervisor
}

func (l *loop[S, M, T]) prepare(task T) job[T, M] {
	return job[T, M]{
		task: task,
		run: func(ctx context.Context) <-chan M {
			return l.opts.Runner(ctx, task)
		},
	}
}

// start is called while the originating dispatch still holds the store,
// so the job never runs inline. The job may begin before that dispatch
// notifies its listeners, but its messages are reduced only afterwards.
func (l *loop[S, M, T]) start(j job[T, M]) {
	spawned := l.sup.Spawn(func(ctx context.Context) {
		defer l.opts.Observer.TaskSettled(j.task)
		l.drain(ctx, j.run(ctx))
	}, func(recovered any) {
		l.opts.Observer.RunnerPanicked(j.task, recovered)
	})
	if !spawned {
		l.dropped(j.task)
	}
}

// dropped settles a task that will never run.
func (l *loop[S, M, T]) dropped(task T) {
	l.opts.Logger.Warn("store context done, dropped task",
		zap.String("task", fmt.Sprintf("%T", task)),
	)
	l.opts.Observer.TaskSettled(task)
}

// runnerPanicked receives panics the runner adapters recovered on their
// own goroutines.
func (l *loop[S, M, T]) runnerPanicked(task any, recovered any) {
	l.opts.Logger.Error("task runner panicked",
		zap.String("task", fmt.Sprintf("%T", task)),
		zap.Any("error", recovered),
	)
	l.opts.Observer.RunnerPanicked(task, recovered)
}

func (l *loop[S, M, T]) drain(ctx context.Context, msgs <-chan M) {
	if msgs == nil {
		return
	}
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			l.opts.Observer.MessageProduced(msg)
			l.opts.Scheduler(func() { l.dispatch(msg) })
		}
	}
}

func (l *loop[S, M, T]) dispatch(msg M) {
	defer func() {
		if r := recover(); r != nil {
			l.opts.Logger.Error("re-dispatch panicked",
				zap.String("msg", fmt.Sprintf("%T", msg)),
				zap.Any("error", r),
			)
			l.opts.Observer.DispatchPanicked(msg, r)
		}
	}()
	l.store.Dispatch(msg)
}
