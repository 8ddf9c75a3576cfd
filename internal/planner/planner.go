package planner

import (
	"context"
	"encoding/json"
	"fmt"
)

// ToolCall is a single capability invocation requested by a task.
type ToolCall struct {
	ToolName   string          `json:"tool_name"`
	Parameters json.RawMessage `json:"parameters"`
}

// Task is the unit of work submitted to the runtime. A task may carry
// explicit tool calls, a free-form description for the LLM planner, or both.
type Task struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	ToolCalls   []ToolCall `json:"tool_calls,omitempty"`
}

// Step is one node of an execution plan. Dependencies reference other step
// ids within the same plan.
type Step struct {
	ID           string          `json:"id"`
	ToolName     string          `json:"tool_name"`
	Parameters   json.RawMessage `json:"parameters"`
	Dependencies []string        `json:"dependencies,omitempty"`
	TimeoutMS    int64           `json:"timeout_ms,omitempty"`
}

// Plan is an ordered sequence of steps with declared dependencies.
type Plan struct {
	TaskID string `json:"task_id"`
	Steps  []Step `json:"steps"`
}

// StaticPlanner maps a task's explicit tool calls one-to-one onto plan
// steps with no dependencies between them. It is the fallback used when no
// language model is configured.
type StaticPlanner struct{}

func NewStaticPlanner() *StaticPlanner {
	return &StaticPlanner{}
}

func (p *StaticPlanner) Plan(ctx context.Context, task Task) (Plan, error) {
	steps := make([]Step, 0, len(task.ToolCalls))
	for i, call := range task.ToolCalls {
		steps = append(steps, Step{
			ID:         fmt.Sprintf("step-%d", i),
			ToolName:   call.ToolName,
			Parameters: call.Parameters,
		})
	}
	return Plan{TaskID: task.ID, Steps: steps}, nil
}
