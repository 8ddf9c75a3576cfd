package planner

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/tmc/langchaingo/llms"
)

func TestStaticPlanner_MapsToolCalls(t *testing.T) {
	p := NewStaticPlanner()

	task := Task{
		ID: "task-1",
		ToolCalls: []ToolCall{
			{ToolName: "filesystem", Parameters: json.RawMessage(`{"action":"read"}`)},
			{ToolName: "shell", Parameters: json.RawMessage(`{"command":"ls"}`)},
		},
	}

	plan, err := p.Plan(context.Background(), task)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if plan.TaskID != "task-1" {
		t.Errorf("TaskID = %s, want task-1", plan.TaskID)
	}
	if len(plan.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(plan.Steps))
	}
	if plan.Steps[0].ID != "step-0" || plan.Steps[1].ID != "step-1" {
		t.Errorf("unexpected step ids: %s, %s", plan.Steps[0].ID, plan.Steps[1].ID)
	}
	if plan.Steps[0].ToolName != "filesystem" || plan.Steps[1].ToolName != "shell" {
		t.Errorf("tool names did not carry over")
	}
	for _, s := range plan.Steps {
		if len(s.Dependencies) != 0 {
			t.Errorf("static steps must be independent, %s has deps %v", s.ID, s.Dependencies)
		}
	}
}

func TestStaticPlanner_EmptyTask(t *testing.T) {
	plan, err := NewStaticPlanner().Plan(context.Background(), Task{ID: "empty"})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(plan.Steps) != 0 {
		t.Errorf("expected no steps, got %d", len(plan.Steps))
	}
}

// fakeModel returns a canned GenerateContent response.
type fakeModel struct {
	resp *llms.ContentResponse
	err  error
}

func (m *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	return m.resp, m.err
}

func (m *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return "", nil
}

func TestLLMPlanner_ParsesProposedPlan(t *testing.T) {
	args := `{"steps":[
		{"id":"fetch","tool_name":"web_search","parameters":{"query":"go concurrency"}},
		{"tool_name":"filesystem","parameters":{"action":"write"},"dependencies":["fetch"]}
	]}`
	model := &fakeModel{
		resp: &llms.ContentResponse{
			Choices: []*llms.ContentChoice{
				{
					ToolCalls: []llms.ToolCall{
						{
							FunctionCall: &llms.FunctionCall{
								Name:      "propose_plan",
								Arguments: args,
							},
						},
					},
				},
			},
		},
	}

	p := NewLLMPlanner(model, nil)
	plan, err := p.Plan(context.Background(), Task{ID: "task-llm", Description: "research and save"})
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(plan.Steps) != 2 {
		t.Fatalf("expected 2 steps, got %d", len(plan.Steps))
	}
	if plan.Steps[0].ID != "fetch" {
		t.Errorf("explicit id should survive, got %s", plan.Steps[0].ID)
	}
	if plan.Steps[1].ID != "step-1" {
		t.Errorf("missing id should be assigned, got %s", plan.Steps[1].ID)
	}
	if len(plan.Steps[1].Dependencies) != 1 || plan.Steps[1].Dependencies[0] != "fetch" {
		t.Errorf("dependencies did not carry over: %v", plan.Steps[1].Dependencies)
	}
}

func TestLLMPlanner_FallsBackToExplicitToolCalls(t *testing.T) {
	// Model answers in prose instead of calling propose_plan.
	model := &fakeModel{
		resp: &llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: "I would read the file."}},
		},
	}

	p := NewLLMPlanner(model, nil)
	task := Task{
		ID: "task-fallback",
		ToolCalls: []ToolCall{
			{ToolName: "filesystem", Parameters: json.RawMessage(`{"action":"read"}`)},
		},
	}

	plan, err := p.Plan(context.Background(), task)
	if err != nil {
		t.Fatalf("Plan failed: %v", err)
	}
	if len(plan.Steps) != 1 || plan.Steps[0].ToolName != "filesystem" {
		t.Errorf("expected static fallback plan, got %+v", plan.Steps)
	}
}

func TestLLMPlanner_NoPlanNoToolCalls(t *testing.T) {
	model := &fakeModel{
		resp: &llms.ContentResponse{
			Choices: []*llms.ContentChoice{{Content: "nothing to do"}},
		},
	}

	if _, err := NewLLMPlanner(model, nil).Plan(context.Background(), Task{ID: "task-none"}); err == nil {
		t.Fatal("expected an error when the model proposes nothing")
	}
}
