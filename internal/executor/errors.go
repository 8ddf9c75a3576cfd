package executor

import "fmt"

// ExecutionError wraps an internal scheduling fault: a violated invariant
// rather than bad input. It should never occur for a plan that passed
// BuildGraph.
type ExecutionError struct {
	TaskID string
	Detail string
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("execution fault for task %s: %s", e.TaskID, e.Detail)
}
