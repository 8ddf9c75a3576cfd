package runtime

import (
	"context"
	"log"

	"github.com/novahq/nova/internal/executor"
	"github.com/novahq/nova/internal/governance"
	"github.com/novahq/nova/internal/observability"
	"github.com/novahq/nova/internal/planner"
)

// Planner turns a task into an executable plan.
type Planner interface {
	Plan(ctx context.Context, task planner.Task) (planner.Plan, error)
}

// Recorder persists the record of a finished execution.
type Recorder interface {
	RecordExecution(task planner.Task, result executor.TaskResult) error
}

// Runtime is the facade tying the collaborators together: plan, authorize,
// execute, record. Gateways and the scheduler submit tasks through it.
type Runtime struct {
	Planner  Planner
	Policy   governance.PolicyEngine
	Executor *executor.Executor
	Tools    executor.Invoker
	Recorder Recorder
	Logger   *observability.Logger
}

func New(p Planner, policy governance.PolicyEngine, exec *executor.Executor, tools executor.Invoker, recorder Recorder, logger *observability.Logger) *Runtime {
	return &Runtime{
		Planner:  p,
		Policy:   policy,
		Executor: exec,
		Tools:    tools,
		Recorder: recorder,
		Logger:   logger,
	}
}

// Execute runs one task end to end. Planning and authorization failures
// abort before any tool is invoked. A recording failure does not fail the
// task: the result already exists, so it is logged and returned.
func (r *Runtime) Execute(ctx context.Context, task planner.Task) (executor.TaskResult, error) {
	observability.SetStatus(observability.PhasePlanning, task.Description)
	defer observability.SetStatus(observability.PhaseIdle, "")

	plan, err := r.Planner.Plan(ctx, task)
	if err != nil {
		return executor.TaskResult{}, err
	}
	plan.TaskID = task.ID
	r.Logger.LogPlan(task.ID, len(plan.Steps))

	if err := governance.Authorize(ctx, r.Policy, plan); err != nil {
		r.Logger.LogPolicyCheck(task.ID, false, err.Error())
		return executor.TaskResult{}, err
	}
	r.Logger.LogPolicyCheck(task.ID, true, "plan authorized")

	observability.SetStatus(observability.PhaseExecuting, task.Description)
	result, err := r.Executor.Execute(ctx, plan, r.Tools)
	if err != nil {
		return executor.TaskResult{}, err
	}
	r.Logger.LogTaskResult(task.ID, result.Success, result.DurationMS, len(result.Outputs))

	observability.SetStatus(observability.PhaseRecording, task.Description)
	if r.Recorder != nil {
		if err := r.Recorder.RecordExecution(task, result); err != nil {
			log.Printf("failed to record execution of task %s: %v", task.ID, err)
		}
	}

	return result, nil
}

// StepStatus exposes live step and task status from the executor.
func (r *Runtime) StepStatus(id string) (executor.Status, bool) {
	return r.Executor.StepStatus(id)
}
