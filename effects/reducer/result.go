package reducer

// Reducer is an effect-carrying state transition. It must never return nil.
type Reducer[S, M, T any] func(state S, msg M) Result[S, T]

// Result is what a Reducer returns: either NoEffect or WithTasks.
// The interface is sealed: only the two variants in this package implement it.
type Result[S, T any] interface {
	unwrap() (S, []T)
}

// NoEffect carries the new state only.
type NoEffect[S, T any] struct {
	State S
}

func (r NoEffect[S, T]) unwrap() (S, []T) { return r.State, nil }

// WithTasks carries the new state and an ordered list of tasks.
type WithTasks[S, T any] struct {
	State S
	Tasks []T
}

func (r WithTasks[S, T]) unwrap() (S, []T) { return r.State, r.Tasks }

// State returns s without effects.
func State[S, T any](s S) Result[S, T] {
	return NoEffect[S, T]{State: s}
}

// Effect returns s together with tasks. A single task is the one-element
// call; with no tasks the canonical NoEffect form is returned.
func Effect[S, T any](s S, tasks ...T) Result[S, T] {
	if len(tasks) == 0 {
		return NoEffect[S, T]{State: s}
	}
	return WithTasks[S, T]{State: s, Tasks: tasks}
}

// IsEffectful reports whether r carries at least one task.
func IsEffectful[S, T any](r Result[S, T]) bool {
	return len(ExtractTasks(r)) > 0
}

// ExtractState returns the state of r whether or not tasks were attached.
func ExtractState[S, T any](r Result[S, T]) S {
	state, _ := r.unwrap()
	return state
}

// ExtractTasks returns the tasks of r in order, or nil when there are none.
// The returned slice is a copy.
func ExtractTasks[S, T any](r Result[S, T]) []T {
	_, tasks := r.unwrap()
	if len(tasks) == 0 {
		return nil
	}
	return append([]T(nil), tasks...)
}

// Normalize rewrites r into its canonical form: NoEffect when no task is
// attached, WithTasks otherwise.
func Normalize[S, T any](r Result[S, T]) Result[S, T] {
	return Effect(ExtractState(r), ExtractTasks(r)...)
}
