package executor

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/novahq/nova/internal/planner"
)

func TestAggregate_ProjectsPlanOrder(t *testing.T) {
	plan := planner.Plan{
		TaskID: "t1",
		Steps: []planner.Step{
			{ID: "s1"}, {ID: "s2"}, {ID: "s3"},
		},
	}
	// Outcomes recorded out of order.
	outcomes := map[string]StepOutcome{
		"s3": {StepID: "s3", Value: json.RawMessage(`3`)},
		"s1": {StepID: "s1", Value: json.RawMessage(`1`)},
		"s2": {StepID: "s2", Value: json.RawMessage(`2`)},
	}

	result := aggregate(plan, outcomes, 10*time.Millisecond)
	if !result.Success {
		t.Error("expected success")
	}
	for i, want := range []string{"1", "2", "3"} {
		if string(result.Outputs[i]) != want {
			t.Errorf("output %d: expected %s, got %s", i, want, result.Outputs[i])
		}
	}
	if result.DurationMS != 10 {
		t.Errorf("expected 10ms, got %d", result.DurationMS)
	}
}

func TestAggregate_FailedStepKeepsSlot(t *testing.T) {
	plan := planner.Plan{
		TaskID: "t1",
		Steps:  []planner.Step{{ID: "s1"}, {ID: "s2"}},
	}
	outcomes := map[string]StepOutcome{
		"s1": {StepID: "s1", Err: &StepError{Kind: ToolFailure, Detail: "boom"}},
		"s2": {StepID: "s2", Value: json.RawMessage(`"ok"`)},
	}

	result := aggregate(plan, outcomes, 0)
	if result.Success {
		t.Error("expected failure")
	}
	if len(result.Outputs) != 2 {
		t.Fatalf("failed step must keep its slot, got %d outputs", len(result.Outputs))
	}
	if string(result.Outputs[0]) != "null" {
		t.Errorf("failed slot should be null, got %s", result.Outputs[0])
	}
	if string(result.Outputs[1]) != `"ok"` {
		t.Errorf("surviving value dropped: %s", result.Outputs[1])
	}
}

func TestAggregate_MissingOutcomeIsCancelled(t *testing.T) {
	plan := planner.Plan{
		TaskID: "t1",
		Steps:  []planner.Step{{ID: "s1"}},
	}

	result := aggregate(plan, map[string]StepOutcome{}, 0)
	if result.Success {
		t.Error("expected failure")
	}
	if result.Outcomes[0].Err == nil || result.Outcomes[0].Err.Kind != Cancelled {
		t.Errorf("missing outcome should be recorded as cancelled, got %+v", result.Outcomes[0].Err)
	}
}
