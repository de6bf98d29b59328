// Package effects lets a reducer describe side effects as data.
//
// A reducer built with package reducer returns its next state together with
// an ordered list of tasks. Enhance turns a plain store creator into one that
// accepts such reducers: tasks are handed to a task runner, and every
// message the runner produces is dispatched back into the same store.
//
// The reducer stays pure. The runner is the only place where effects
// happen, so it can be swapped out or mocked in tests.
//
// # Building blocks
//
//   - reducer: the result algebra (State, Effect), CombineReducers,
//     ComposeReducers and Lift.
//   - pipe: the publish/subscribe channel carrying tasks, synchronous by
//     default, worker-backed with NewAsync or NewPartitioned.
//   - runner: the task runner contract and adapters (Func, Match, Perform,
//     stream operators).
//   - store: the minimal store being enhanced.
//   - metrics: a Prometheus Observer.
//
// # Lifecycle
//
// The context passed to the Creator bounds all background work. Cancelling
// it stops forwarding runner output; tasks emitted afterwards are dropped.
//
// Example:
//
//	create := effects.Enhance[State, Msg, Task](effects.Options[Msg, Task]{
//	    Runner: run,
//	})(store.New[State, Msg])
//	s := create(ctx, update, State{})
//	s.Dispatch(Fetch{Topic: "cats"})
package effects
