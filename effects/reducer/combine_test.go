package reducer_test

import (
	"testing"

	"github.com/on-the-ground/effect_ive_go/effects/reducer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func emitting(name string) reducer.Reducer[int, string, task] {
	return func(s int, _ string) reducer.Result[int, task] {
		return reducer.Effect(s+1, task{name})
	}
}

func plain(s string, msg string) reducer.Result[string, task] {
	return reducer.State[string, task](s + msg)
}

func TestCombineReducers_TasksFollowKeyOrder(t *testing.T) {
	combined := reducer.CombineReducers(
		reducer.Bind("a", emitting("X")),
		reducer.Bind("b", emitting("Y")),
	)

	for i := 0; i < 20; i++ {
		res := combined(reducer.Slices{"a": 0, "b": 0}, "tick")
		assert.Equal(t, []task{{"X"}, {"Y"}}, reducer.ExtractTasks(res))
	}

	reversed := reducer.CombineReducers(
		reducer.Bind("b", emitting("Y")),
		reducer.Bind("a", emitting("X")),
	)
	res := reversed(reducer.Slices{"a": 0, "b": 0}, "tick")
	assert.Equal(t, []task{{"Y"}, {"X"}}, reducer.ExtractTasks(res))
}

func TestCombineReducers_EachKeyGetsItsSlice(t *testing.T) {
	combined := reducer.CombineReducers(
		reducer.Bind("count", emitting("X")),
		reducer.Bind("text", plain),
	)

	res := combined(reducer.Slices{"count": 41, "text": "ab"}, "c")

	assert.Equal(t, reducer.Slices{"count": 42, "text": "abc"}, reducer.ExtractState(res))
	assert.Equal(t, []task{{"X"}}, reducer.ExtractTasks(res))
}

func TestCombineReducers_NoTasksYieldsNoEffect(t *testing.T) {
	combined := reducer.CombineReducers(
		reducer.Bind("x", plain),
		reducer.Bind("y", plain),
	)

	res := combined(reducer.Slices{"x": "", "y": ""}, "m")

	assert.IsType(t, reducer.NoEffect[reducer.Slices, task]{}, res)
	assert.Empty(t, reducer.ExtractTasks(res))
}

func TestCombineReducers_DoesNotMutateInput(t *testing.T) {
	combined := reducer.CombineReducers(reducer.Bind("count", emitting("X")))
	in := reducer.Slices{"count": 1, "stale": true}

	res := combined(in, "tick")

	assert.Equal(t, reducer.Slices{"count": 1, "stale": true}, in)
	assert.Equal(t, reducer.Slices{"count": 2}, reducer.ExtractState(res))
}

func TestCombineReducers_AlwaysBuildsFreshAggregate(t *testing.T) {
	combined := reducer.CombineReducers(reducer.Bind("x", plain))
	in := reducer.Slices{"x": "same"}

	out := reducer.ExtractState(combined(in, ""))
	out["x"] = "changed"

	assert.Equal(t, "same", in["x"])
}

func TestCombineReducers_MissingKeyStartsFromZeroValue(t *testing.T) {
	combined := reducer.CombineReducers(
		reducer.Bind("count", emitting("X")),
		reducer.Bind("text", plain),
	)

	res := combined(nil, "m")

	assert.Equal(t, reducer.Slices{"count": 1, "text": "m"}, reducer.ExtractState(res))
}

func TestCombineReducers_WrongSliceTypeIsContractViolation(t *testing.T) {
	combined := reducer.CombineReducers(reducer.Bind("count", emitting("X")))

	defer func() {
		cv, ok := recover().(*reducer.ContractViolation)
		require.True(t, ok)
		assert.Contains(t, cv.Reducer, `"count"`)
		assert.Contains(t, cv.Reason, "string")
	}()
	combined(reducer.Slices{"count": "not an int"}, "tick")
}

func TestCombineReducers_NilSubResultNamesKey(t *testing.T) {
	broken := func(int, string) reducer.Result[int, task] { return nil }
	combined := reducer.CombineReducers(
		reducer.Bind("ok", emitting("X")),
		reducer.Bind("broken", broken),
	)

	defer func() {
		cv, ok := recover().(*reducer.ContractViolation)
		require.True(t, ok)
		assert.Contains(t, cv.Reducer, `"broken"`)
	}()
	combined(reducer.Slices{}, "tick")
}

func TestCombineReducers_RejectsBadKeys(t *testing.T) {
	assert.Panics(t, func() {
		reducer.CombineReducers(
			reducer.Bind("a", plain),
			reducer.Bind("a", plain),
		)
	})
	assert.Panics(t, func() {
		reducer.CombineReducers(reducer.Bind("", plain))
	})
	assert.Panics(t, func() {
		reducer.CombineReducers(reducer.Slice[string, task]{Key: "raw"})
	})
}

func TestCombineAndCompose_Nest(t *testing.T) {
	combined := reducer.CombineReducers(
		reducer.Bind("a", reducer.ComposeReducers(emitting("A1"), emitting("A2"))),
		reducer.Bind("b", emitting("B")),
	)

	res := combined(reducer.Slices{"a": 0, "b": 10}, "tick")

	assert.Equal(t, reducer.Slices{"a": 2, "b": 11}, reducer.ExtractState(res))
	assert.Equal(t, []task{{"A1"}, {"A2"}, {"B"}}, reducer.ExtractTasks(res))
}
