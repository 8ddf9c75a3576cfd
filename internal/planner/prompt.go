package planner

import (
	"os"
	"path/filepath"
	"strings"
)

const defaultPlannerPrompt = `You are the planning component of an agent-task
execution runtime. Decompose the given task into the smallest set of tool
invocations that fulfills it, then submit the plan with propose_plan.

Rules:
- Each step invokes exactly one available tool with JSON parameters.
- Declare a dependency only when a step genuinely needs another step's
  output. Independent steps run in parallel.
- Never invent tools that are not in the available list.`

// PromptManager resolves the planner directive from a prompts directory,
// falling back to the built-in default when no override file exists.
type PromptManager struct {
	Directory string
}

func NewPromptManager(dir string) *PromptManager {
	return &PromptManager{Directory: dir}
}

// PlannerPrompt returns the contents of planner.md from the prompts
// directory, or the default directive when the file is absent or empty.
func (pm *PromptManager) PlannerPrompt() string {
	if pm.Directory == "" {
		return defaultPlannerPrompt
	}
	data, err := os.ReadFile(filepath.Join(pm.Directory, "planner.md"))
	if err != nil || len(strings.TrimSpace(string(data))) == 0 {
		return defaultPlannerPrompt
	}
	return string(data)
}
