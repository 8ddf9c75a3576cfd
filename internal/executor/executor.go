package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/novahq/nova/internal/planner"
)

// Invoker resolves a tool name and performs the invocation. The registry in
// internal/tools satisfies this; tests substitute instrumented fakes.
// Implementations must be safe for concurrent calls.
type Invoker interface {
	Invoke(ctx context.Context, tool string, args string) (string, error)
}

// Config holds the two tunables that affect resource usage. Neither is
// mutated mid-execution.
type Config struct {
	MaxParallel    int
	DefaultTimeout time.Duration
}

// DefaultConfig returns the stock limits: ten steps in flight, thirty
// seconds per step.
func DefaultConfig() Config {
	return Config{
		MaxParallel:    10,
		DefaultTimeout: 30 * time.Second,
	}
}

// Executor runs validated plans batch by batch: independent steps
// concurrently, dependent steps in causal order.
type Executor struct {
	cfg     Config
	tracker *StatusTracker
}

func New(cfg Config) *Executor {
	if cfg.MaxParallel <= 0 {
		cfg.MaxParallel = DefaultConfig().MaxParallel
	}
	if cfg.DefaultTimeout <= 0 {
		cfg.DefaultTimeout = DefaultConfig().DefaultTimeout
	}
	return &Executor{
		cfg:     cfg,
		tracker: NewStatusTracker(),
	}
}

// StepStatus exposes the live execution status for a step or task id. Safe
// to call at any time during execution.
func (e *Executor) StepStatus(id string) (Status, bool) {
	return e.tracker.Get(id)
}

// Statuses returns a snapshot of every tracked status.
func (e *Executor) Statuses() map[string]Status {
	return e.tracker.Snapshot()
}

// Execute runs a plan to the extent its dependencies allow and returns the
// aggregated result. Structural errors (graph validation, re-invocation of
// a running task) abort before any tool runs; step-level failures are
// contained in the result's outcomes.
//
// Batches run strictly sequentially. Within a batch every step is
// dispatched concurrently under the MaxParallel cap, joined before the next
// batch starts. Cancelling ctx stops dispatch at the next batch boundary.
func (e *Executor) Execute(ctx context.Context, plan planner.Plan, tools Invoker) (TaskResult, error) {
	graph, err := BuildGraph(plan)
	if err != nil {
		return TaskResult{}, err
	}

	if status, ok := e.tracker.Get(plan.TaskID); ok && status.State == StateRunning {
		return TaskResult{}, &ExecutionError{TaskID: plan.TaskID, Detail: "task is already running"}
	}
	e.tracker.Set(plan.TaskID, Status{State: StateRunning})

	for _, id := range graph.Order() {
		e.tracker.Set(id, Status{State: StatePending})
	}

	batches := graph.Batches()
	scheduled := 0
	for _, batch := range batches {
		scheduled += len(batch)
	}
	if scheduled != graph.Len() {
		e.tracker.Set(plan.TaskID, Status{State: StateFailed, Reason: "scheduler fault"})
		return TaskResult{}, &ExecutionError{TaskID: plan.TaskID, Detail: "batches do not cover every step"}
	}

	start := time.Now()
	outcomes := make(map[string]StepOutcome, graph.Len())
	sem := make(chan struct{}, e.cfg.MaxParallel)

	for _, batch := range batches {
		if ctx.Err() != nil {
			break
		}

		runnable := make([]string, 0, len(batch))
		for _, id := range batch {
			if failed := failedPredecessor(graph, outcomes, id); failed != "" {
				detail := fmt.Sprintf("dependency %s did not complete", failed)
				outcomes[id] = StepOutcome{
					StepID: id,
					Err:    &StepError{Kind: DependencySkipped, Detail: detail},
				}
				e.tracker.Set(id, Status{State: StateFailed, Reason: detail})
				continue
			}
			runnable = append(runnable, id)
		}

		if len(runnable) == 1 {
			// Single step: no goroutine overhead, same timeout and error
			// wrapping as the concurrent path.
			id := runnable[0]
			outcomes[id] = e.runStep(ctx, graph.Step(id), tools)
			continue
		}

		var mu sync.Mutex
		var wg sync.WaitGroup
		for _, id := range runnable {
			step := graph.Step(id)
			wg.Add(1)
			// Acquire before spawning so admission follows plan order even
			// when the batch is wider than the cap.
			sem <- struct{}{}
			go func() {
				defer wg.Done()
				defer func() { <-sem }()
				outcome := e.runStep(ctx, step, tools)
				mu.Lock()
				outcomes[step.ID] = outcome
				mu.Unlock()
			}()
		}
		wg.Wait()
	}

	// Anything still without an outcome was cut off by cancellation.
	for _, id := range graph.Order() {
		if _, ok := outcomes[id]; ok {
			continue
		}
		detail := "execution cancelled"
		if err := ctx.Err(); err != nil {
			detail = err.Error()
		}
		outcomes[id] = StepOutcome{
			StepID: id,
			Err:    &StepError{Kind: Cancelled, Detail: detail},
		}
		e.tracker.Set(id, Status{State: StateFailed, Reason: detail})
	}

	result := aggregate(plan, outcomes, time.Since(start))
	if result.Success {
		e.tracker.Set(plan.TaskID, Status{State: StateCompleted})
	} else {
		e.tracker.Set(plan.TaskID, Status{State: StateFailed, Reason: "one or more steps failed"})
	}
	return result, nil
}

// failedPredecessor returns the id of a direct predecessor that did not
// complete, or "" when the step is clear to run.
func failedPredecessor(g *Graph, outcomes map[string]StepOutcome, id string) string {
	for _, dep := range g.Predecessors(id) {
		if outcome, ok := outcomes[dep]; ok && outcome.Err != nil {
			return dep
		}
	}
	return ""
}

// runStep dispatches one tool invocation under the per-step deadline and
// records its lifecycle transitions.
func (e *Executor) runStep(ctx context.Context, step planner.Step, tools Invoker) StepOutcome {
	e.tracker.Set(step.ID, Status{State: StateRunning})

	timeout := e.cfg.DefaultTimeout
	if step.TimeoutMS > 0 {
		timeout = time.Duration(step.TimeoutMS) * time.Millisecond
	}
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type reply struct {
		output string
		err    error
	}
	done := make(chan reply, 1)
	go func() {
		output, err := tools.Invoke(stepCtx, step.ToolName, string(step.Parameters))
		done <- reply{output: output, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			e.tracker.Set(step.ID, Status{State: StateFailed, Reason: r.err.Error()})
			return StepOutcome{
				StepID: step.ID,
				Err:    &StepError{Kind: ToolFailure, Detail: r.err.Error()},
			}
		}
		e.tracker.Set(step.ID, Status{State: StateCompleted})
		return StepOutcome{StepID: step.ID, Value: wrapOutput(r.output)}

	case <-stepCtx.Done():
		kind := Timeout
		detail := fmt.Sprintf("step did not finish within %s", timeout)
		if ctx.Err() != nil {
			kind = Cancelled
			detail = "execution cancelled"
		}
		e.tracker.Set(step.ID, Status{State: StateFailed, Reason: detail})
		return StepOutcome{
			StepID: step.ID,
			Err:    &StepError{Kind: kind, Detail: detail},
		}
	}
}

// wrapOutput turns a tool's text output into a structured value: JSON
// output passes through untouched, anything else becomes a JSON string.
func wrapOutput(output string) json.RawMessage {
	trimmed := strings.TrimSpace(output)
	if trimmed != "" && json.Valid([]byte(trimmed)) {
		return json.RawMessage(trimmed)
	}
	encoded, err := json.Marshal(output)
	if err != nil {
		return json.RawMessage("null")
	}
	return encoded
}
