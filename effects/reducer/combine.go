package reducer

import (
	"fmt"

	"github.com/on-the-ground/effect_ive_go/shared/helper"
)

// Slices is the keyed state a combined reducer works on.
// Each key holds the state of one sub-reducer.
type Slices map[string]any

// Slice binds one key of a Slices state to a sub-reducer.
// Build it with Bind.
type Slice[M, T any] struct {
	Key    string
	reduce func(prev any, present bool, msg M) (any, []T)
}

// Bind adapts a typed sub-reducer to the slice stored under key.
// A missing key hands the zero value of S to r; a value of another type
// is a contract violation.
func Bind[S, M, T any](key string, r Reducer[S, M, T]) Slice[M, T] {
	if r == nil {
		panic(fmt.Sprintf("Bind: reducer for key %q is nil", key))
	}
	name := fmt.Sprintf("combine[%q] %s", key, helper.FuncName(r))

	return Slice[M, T]{
		Key: key,
		reduce: func(prev any, present bool, msg M) (any, []T) {
			s, ok := helper.GetTypedValueOf2[S](func() (any, bool) { return prev, present })
			if present && !ok {
				var want S
				panic(&ContractViolation{
					Reducer: name,
					Task:    NoTask,
					Reason:  fmt.Sprintf("slice holds %T, reducer expects %T", prev, want),
				})
			}

			res := r(s, msg)
			if helper.IsNil(res) {
				panic(nilResult(name))
			}
			return ExtractState(res), ExtractTasks(res)
		},
	}
}

// CombineReducers fans msg out over the keyed slices, in the order the
// slices were given. Every call returns a freshly built Slices value and
// never mutates its input; keys that are not bound are not carried over.
//
// The aggregate is rebuilt even when no slice changed, so callers that
// want change detection must compare per key.
func CombineReducers[M, T any](slices ...Slice[M, T]) Reducer[Slices, M, T] {
	seen := make(map[string]struct{}, len(slices))
	for _, sl := range slices {
		if sl.Key == "" {
			panic("CombineReducers: empty slice key")
		}
		if sl.reduce == nil {
			panic(fmt.Sprintf("CombineReducers: slice %q was not built with Bind", sl.Key))
		}
		if _, dup := seen[sl.Key]; dup {
			panic(fmt.Sprintf("CombineReducers: duplicate slice key %q", sl.Key))
		}
		seen[sl.Key] = struct{}{}
	}

	return func(state Slices, msg M) Result[Slices, T] {
		next := make(Slices, len(slices))
		var tasks []T
		for _, sl := range slices {
			prev, present := state[sl.Key]
			s, ts := sl.reduce(prev, present, msg)
			next[sl.Key] = s
			tasks = append(tasks, ts...)
		}
		return Effect(next, tasks...)
	}
}
