package effects

// Observer receives lifecycle callbacks from an enhanced store. Callbacks
// run on the goroutine where the event happens and must not block.
//
// effects/metrics provides a Prometheus implementation.
type Observer interface {
	// TaskEmitted is called once per task, in emission order, while the
	// originating dispatch is still running.
	TaskEmitted(task any)
	// TaskSettled is called once per emitted task: when the runner's
	// message channel for it is closed, when the runner panicked, or when
	// the task was dropped because the store context ended or the task
	// pipe closed.
	TaskSettled(task any)
	// MessageProduced is called for every message a runner yields, before
	// it is handed to the scheduler.
	MessageProduced(msg any)
	// RunnerPanicked is called when running task panicked. For panics
	// recovered inside a stream, task is the stream element being handled.
	RunnerPanicked(task any, recovered any)
	// DispatchPanicked is called when re-dispatching a produced message
	// panicked.
	DispatchPanicked(msg any, recovered any)
}

// NopObserver ignores every event.
type NopObserver struct{}

func (NopObserver) TaskEmitted(any)           {}
func (NopObserver) TaskSettled(any)           {}
func (NopObserver) MessageProduced(any)       {}
func (NopObserver) RunnerPanicked(any, any)   {}
func (NopObserver) DispatchPanicked(any, any) {}

var _ Observer = NopObserver{}
