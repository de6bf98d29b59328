// Package reducer defines the effect-carrying reducer contract.
//
// A Reducer returns either the new state alone (NoEffect) or the new state
// together with an ordered list of tasks (WithTasks). Tasks are opaque
// descriptions of deferred effects; a task runner interprets them later and
// turns them into follow-up messages.
//
// The package also provides the composition helpers CombineReducers and
// ComposeReducers, and Lift, which siphons tasks out of a Reducer and leaves
// a plain state transition a synchronous store can use.
//
// Example:
//
//	counter := func(s int, m string) reducer.Result[int, string] {
//	    switch m {
//	    case "asyncInc":
//	        return reducer.Effect(s, "asyncInc")
//	    case "increment":
//	        return reducer.State[int, string](s + 1)
//	    }
//	    return reducer.State[int, string](s)
//	}
package reducer
