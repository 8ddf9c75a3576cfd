package executor

import (
	"encoding/json"
	"time"

	"github.com/novahq/nova/internal/planner"
)

// TaskResult is the immutable record of one plan execution. Outputs holds
// one slot per plan step in declaration order; steps that produced no value
// contribute JSON null so no slot is ever silently omitted. Outcomes carries
// the per-step detail callers need to implement their own retry policy.
type TaskResult struct {
	TaskID     string            `json:"task_id"`
	Success    bool              `json:"success"`
	Outputs    []json.RawMessage `json:"outputs"`
	Outcomes   []StepOutcome     `json:"outcomes,omitempty"`
	DurationMS int64             `json:"duration_ms"`
}

// aggregate merges per-step outcomes into a single task result, projected
// back into the plan's declaration order regardless of completion order.
func aggregate(plan planner.Plan, outcomes map[string]StepOutcome, elapsed time.Duration) TaskResult {
	result := TaskResult{
		TaskID:     plan.TaskID,
		Success:    true,
		Outputs:    make([]json.RawMessage, 0, len(plan.Steps)),
		DurationMS: elapsed.Milliseconds(),
	}

	for _, step := range plan.Steps {
		outcome, ok := outcomes[step.ID]
		if !ok {
			outcome = StepOutcome{
				StepID: step.ID,
				Err:    &StepError{Kind: Cancelled, Detail: "no outcome recorded"},
			}
		}

		value := outcome.Value
		if outcome.Err != nil || len(value) == 0 {
			value = json.RawMessage("null")
		}
		if outcome.Err != nil {
			result.Success = false
		}

		result.Outputs = append(result.Outputs, value)
		result.Outcomes = append(result.Outcomes, outcome)
	}

	return result
}
