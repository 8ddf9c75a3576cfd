package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// ScheduleStore is the slice of the memory store the scheduling tool needs.
type ScheduleStore interface {
	AddScheduledTask(description string, toolCalls string, intervalSeconds int) error
	ClearScheduledTasks() error
}

// ScheduleTool registers recurring tasks that the background scheduler
// re-submits to the runtime when they come due.
type ScheduleTool struct {
	Store ScheduleStore
}

func NewScheduleTool(store ScheduleStore) *ScheduleTool {
	return &ScheduleTool{Store: store}
}

func (c *ScheduleTool) Name() string {
	return "schedule_task"
}

func (c *ScheduleTool) Description() string {
	return "Manage recurring tasks: 'schedule' a new task or 'clear' all scheduled ones."
}

func (c *ScheduleTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"action": map[string]any{
				"type":        "string",
				"enum":        []string{"schedule", "clear"},
				"description": "The action to perform: 'schedule' a new task or 'clear' all of them.",
			},
			"task_description": map[string]any{
				"type":        "string",
				"description": "What the runtime should do (only for 'schedule' action)",
			},
			"tool_calls": map[string]any{
				"type":        "array",
				"description": "Optional explicit tool invocations for the task",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"tool_name":  map[string]any{"type": "string"},
						"parameters": map[string]any{"type": "object"},
					},
					"required": []string{"tool_name"},
				},
			},
			"interval_seconds": map[string]any{
				"type":        "integer",
				"description": "The interval in seconds (minimum 60s; 0 for a one-time task)",
			},
		},
		"required": []string{"action"},
	}
}

func (c *ScheduleTool) Execute(ctx context.Context, input string) (string, error) {
	var args struct {
		Action    string          `json:"action"`
		Desc      string          `json:"task_description"`
		ToolCalls json.RawMessage `json:"tool_calls"`
		Interval  int             `json:"interval_seconds"`
	}
	if err := json.Unmarshal([]byte(input), &args); err != nil {
		return "", fmt.Errorf("invalid input: %v", err)
	}

	switch args.Action {
	case "clear":
		if err := c.Store.ClearScheduledTasks(); err != nil {
			return "", fmt.Errorf("failed to clear tasks: %v", err)
		}
		return "Successfully cleared all scheduled tasks.", nil

	case "schedule":
		if args.Interval != 0 && args.Interval < 60 {
			return "Error: Minimum interval is 60 seconds to prevent spamming.", nil
		}
		calls := "[]"
		if len(args.ToolCalls) > 0 {
			calls = string(args.ToolCalls)
		}
		if err := c.Store.AddScheduledTask(args.Desc, calls, args.Interval); err != nil {
			return "", fmt.Errorf("failed to schedule task: %v", err)
		}
		if args.Interval == 0 {
			return fmt.Sprintf("Successfully scheduled one-time task: '%s'.", args.Desc), nil
		}
		return fmt.Sprintf("Successfully scheduled task: '%s' every %d seconds.", args.Desc, args.Interval), nil

	default:
		return "Invalid action. Use 'schedule' or 'clear'.", nil
	}
}
