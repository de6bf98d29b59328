package reducer

import (
	"github.com/on-the-ground/effect_ive_go/shared/helper"
)

// Lift turns r into a plain reducer. Every call runs r once, hands each
// task to emit in order and returns the extracted state.
//
// A nil result (typed nil pointers included) or a nil task panics with a *ContractViolation before
// anything is emitted, so the caller never commits a corrupted state.
func Lift[S, M, T any](r Reducer[S, M, T], emit func(T)) func(S, M) S {
	name := helper.FuncName(r)

	return func(state S, msg M) S {
		res := r(state, msg)
		if helper.IsNil(res) {
			panic(nilResult(name))
		}

		tasks := ExtractTasks(res)
		for i, t := range tasks {
			if helper.IsNil(t) {
				panic(nilTask(name, i))
			}
		}
		for _, t := range tasks {
			emit(t)
		}
		return ExtractState(res)
	}
}
