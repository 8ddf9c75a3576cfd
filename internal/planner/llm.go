package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/novahq/nova/internal/tools"
	"github.com/tmc/langchaingo/llms"
)

// LLMPlanner decomposes a task description into a dependency-annotated plan
// by asking a language model to call the propose_plan function. Tasks that
// already carry explicit tool calls fall back to the static mapping when the
// model declines to produce a plan.
type LLMPlanner struct {
	Model    llms.Model
	Registry *tools.Registry
	Prompt   string
}

func NewLLMPlanner(model llms.Model, registry *tools.Registry) *LLMPlanner {
	return &LLMPlanner{
		Model:    model,
		Registry: registry,
		Prompt:   defaultPlannerPrompt,
	}
}

func (p *LLMPlanner) Plan(ctx context.Context, task Task) (Plan, error) {
	messages := []llms.MessageContent{
		{
			Role:  llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{llms.TextPart(p.systemPrompt())},
		},
		{
			Role:  llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{llms.TextPart(p.taskPrompt(task))},
		},
	}

	resp, err := p.Model.GenerateContent(ctx, messages, llms.WithTools(plannerTools))
	if err != nil {
		return Plan{}, fmt.Errorf("planner model call failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return Plan{}, fmt.Errorf("planner model returned no choices")
	}

	choice := resp.Choices[0]
	for _, tc := range choice.ToolCalls {
		if tc.FunctionCall == nil || tc.FunctionCall.Name != "propose_plan" {
			continue
		}
		var proposed struct {
			Steps []Step `json:"steps"`
		}
		if err := json.Unmarshal([]byte(tc.FunctionCall.Arguments), &proposed); err != nil {
			return Plan{}, fmt.Errorf("failed to parse propose_plan arguments: %w", err)
		}
		for i := range proposed.Steps {
			if proposed.Steps[i].ID == "" {
				proposed.Steps[i].ID = fmt.Sprintf("step-%d", i)
			}
		}
		return Plan{TaskID: task.ID, Steps: proposed.Steps}, nil
	}

	// No plan proposed. Explicit tool calls still give us something to run.
	if len(task.ToolCalls) > 0 {
		return NewStaticPlanner().Plan(ctx, task)
	}

	return Plan{}, fmt.Errorf("planner produced no plan for task %s", task.ID)
}

func (p *LLMPlanner) systemPrompt() string {
	prompt := p.Prompt
	if prompt == "" {
		prompt = defaultPlannerPrompt
	}

	var lines []string
	if p.Registry != nil {
		for _, t := range p.Registry.Tools {
			lines = append(lines, fmt.Sprintf("- %s: %s", t.Name(), t.Description()))
		}
	}
	if len(lines) == 0 {
		return prompt
	}
	return prompt + "\n\n## Available Tools:\n" + strings.Join(lines, "\n")
}

func (p *LLMPlanner) taskPrompt(task Task) string {
	var b strings.Builder
	b.WriteString("TASK: ")
	b.WriteString(task.Description)
	if len(task.ToolCalls) > 0 {
		b.WriteString("\n\nThe caller has requested these tool invocations:\n")
		for _, call := range task.ToolCalls {
			fmt.Fprintf(&b, "- %s %s\n", call.ToolName, string(call.Parameters))
		}
	}
	return b.String()
}

// plannerTools exposes the single propose_plan function the model must call
// to submit a structured plan.
var plannerTools = []llms.Tool{
	{
		Type: "function",
		Function: &llms.FunctionDefinition{
			Name:        "propose_plan",
			Description: "Submit a structured execution plan. Steps with no dependency between them run in parallel.",
			Parameters: map[string]any{
				"type": "object",
				"properties": map[string]any{
					"steps": map[string]any{
						"type": "array",
						"items": map[string]any{
							"type": "object",
							"properties": map[string]any{
								"id": map[string]any{
									"type":        "string",
									"description": "Unique step id within the plan",
								},
								"tool_name": map[string]any{
									"type":        "string",
									"description": "Name of the registered tool to invoke",
								},
								"parameters": map[string]any{
									"type":        "object",
									"description": "JSON arguments passed to the tool",
								},
								"dependencies": map[string]any{
									"type":        "array",
									"items":       map[string]any{"type": "string"},
									"description": "Ids of steps whose output this step needs",
								},
							},
							"required": []string{"id", "tool_name", "parameters"},
						},
					},
				},
				"required": []string{"steps"},
			},
		},
	},
}
