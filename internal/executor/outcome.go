package executor

import (
	"encoding/json"
	"fmt"
)

// ErrorKind classifies why a step failed to produce a value.
type ErrorKind string

const (
	// ToolFailure means the tool invocation returned an error.
	ToolFailure ErrorKind = "tool_failure"
	// Timeout means the step exceeded its per-step deadline.
	Timeout ErrorKind = "timeout"
	// DependencySkipped means the step was never dispatched because a
	// transitive predecessor did not complete.
	DependencySkipped ErrorKind = "dependency_skipped"
	// Cancelled means the caller aborted the execution before the step ran
	// to completion.
	Cancelled ErrorKind = "cancelled"
)

// StepError is a step-local failure. It is recorded on the outcome rather
// than thrown, so one step's failure never unwinds the whole execution.
type StepError struct {
	Kind   ErrorKind `json:"kind"`
	Detail string    `json:"detail"`
}

func (e *StepError) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Detail)
}

// StepOutcome is the terminal result of one step: a structured value or an
// error, produced at most once per step.
type StepOutcome struct {
	StepID string          `json:"step_id"`
	Value  json.RawMessage `json:"value,omitempty"`
	Err    *StepError      `json:"error,omitempty"`
}
