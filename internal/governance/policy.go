package governance

import (
	"context"
	"fmt"
	"regexp"

	"github.com/novahq/nova/internal/planner"
)

// Effect defines the result of a policy evaluation.
type Effect string

const (
	EffectAllow Effect = "allow"
	EffectDeny  Effect = "deny"
)

// Request contains the context of a tool call to be evaluated.
type Request struct {
	Tool      string
	Arguments string
	TaskID    string
}

// Result contains the outcome of a policy evaluation.
type Result struct {
	Effect Effect
	Reason string
}

// PolicyEngine evaluates tool calls against a set of rules.
type PolicyEngine interface {
	Evaluate(ctx context.Context, req Request) (Result, error)
}

// AuthorizationError reports a plan step rejected by policy. It is raised
// before any step is dispatched, so a rejection never leaves partial side
// effects behind.
type AuthorizationError struct {
	StepID string
	Tool   string
	Reason string
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("step %s (%s) rejected by policy: %s", e.StepID, e.Tool, e.Reason)
}

// Authorize evaluates every step of a plan against the engine. The whole
// plan is rejected on the first denial.
func Authorize(ctx context.Context, engine PolicyEngine, plan planner.Plan) error {
	for _, step := range plan.Steps {
		res, err := engine.Evaluate(ctx, Request{
			Tool:      step.ToolName,
			Arguments: string(step.Parameters),
			TaskID:    plan.TaskID,
		})
		if err != nil {
			return fmt.Errorf("policy evaluation failed for step %s: %w", step.ID, err)
		}
		if res.Effect == EffectDeny {
			return &AuthorizationError{StepID: step.ID, Tool: step.ToolName, Reason: res.Reason}
		}
	}
	return nil
}

// DefaultPolicyEngine is a capability-based implementation of PolicyEngine:
// an optional tool allowlist (empty means every tool is permitted), a tool
// denylist, and denied-argument patterns. The denylist wins over the
// allowlist.
type DefaultPolicyEngine struct {
	AllowedTools map[string]bool
	DeniedTools  map[string]bool
	DeniedRegex  []*regexp.Regexp
}

func NewDefaultPolicyEngine() *DefaultPolicyEngine {
	return &DefaultPolicyEngine{
		AllowedTools: make(map[string]bool),
		DeniedTools:  make(map[string]bool),
		DeniedRegex:  make([]*regexp.Regexp, 0),
	}
}

func (e *DefaultPolicyEngine) AllowTool(name string) {
	e.AllowedTools[name] = true
}

func (e *DefaultPolicyEngine) DenyTool(name string) {
	e.DeniedTools[name] = true
}

func (e *DefaultPolicyEngine) DenyArguments(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	e.DeniedRegex = append(e.DeniedRegex, re)
	return nil
}

func (e *DefaultPolicyEngine) Evaluate(ctx context.Context, req Request) (Result, error) {
	if e.DeniedTools[req.Tool] {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Tool '%s' is restricted by system policy", req.Tool),
		}, nil
	}

	if len(e.AllowedTools) > 0 && !e.AllowedTools[req.Tool] {
		return Result{
			Effect: EffectDeny,
			Reason: fmt.Sprintf("Tool '%s' is not in the capability allowlist", req.Tool),
		}, nil
	}

	for _, re := range e.DeniedRegex {
		if re.MatchString(req.Arguments) {
			return Result{
				Effect: EffectDeny,
				Reason: fmt.Sprintf("Arguments match restricted pattern: %s", re.String()),
			}, nil
		}
	}

	return Result{
		Effect: EffectAllow,
		Reason: "Approved by default policy",
	}, nil
}
