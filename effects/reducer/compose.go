package reducer

import (
	"fmt"

	"github.com/on-the-ground/effect_ive_go/shared/helper"
)

// accumulator folds sub-results into one state and one ordered task list.
// It lives for a single reducer call.
type accumulator[S, T any] struct {
	state S
	tasks []T
}

func (acc *accumulator[S, T]) add(name string, r Result[S, T]) {
	if helper.IsNil(r) {
		panic(nilResult(name))
	}
	acc.state = ExtractState(r)
	acc.tasks = append(acc.tasks, ExtractTasks(r)...)
}

func (acc *accumulator[S, T]) result() Result[S, T] {
	return Effect(acc.state, acc.tasks...)
}

// ComposeReducers folds reducers left to right over the same state.
// Each reducer sees the state produced by the previous one and the same msg;
// tasks are collected in fold order. With no reducers the state passes
// through unchanged.
func ComposeReducers[S, M, T any](reducers ...Reducer[S, M, T]) Reducer[S, M, T] {
	names := make([]string, len(reducers))
	for i, r := range reducers {
		if r == nil {
			panic(fmt.Sprintf("ComposeReducers: reducer #%d is nil", i))
		}
		names[i] = fmt.Sprintf("compose[%d] %s", i, helper.FuncName(r))
	}

	return func(state S, msg M) Result[S, T] {
		acc := accumulator[S, T]{state: state}
		for i, r := range reducers {
			acc.add(names[i], r(acc.state, msg))
		}
		return acc.result()
	}
}
