package reducer

import (
	"errors"
	"fmt"
)

// ErrContractViolation is the sentinel wrapped by every ContractViolation.
var ErrContractViolation = errors.New("reducer contract violation")

// NoTask marks a violation that is not about a particular task.
const NoTask = -1

// ContractViolation describes a reducer that returned a nil result or
// emitted a nil task. It is raised with panic: the offending dispatch
// must not commit.
type ContractViolation struct {
	// Reducer names the implicated reducer: a function name, a slice key
	// or a position inside a composition.
	Reducer string
	// Task is the index of the offending task, or NoTask.
	Task   int
	Reason string
}

func (e *ContractViolation) Error() string {
	if e.Task == NoTask {
		return fmt.Sprintf("%v: %s: %s", ErrContractViolation, e.Reducer, e.Reason)
	}
	return fmt.Sprintf("%v: %s: task #%d: %s", ErrContractViolation, e.Reducer, e.Task, e.Reason)
}

func (e *ContractViolation) Unwrap() error {
	return ErrContractViolation
}

func nilResult(name string) *ContractViolation {
	return &ContractViolation{Reducer: name, Task: NoTask, Reason: "nil result returned from reducer"}
}

func nilTask(name string, idx int) *ContractViolation {
	return &ContractViolation{Reducer: name, Task: idx, Reason: "nil task returned from reducer"}
}
