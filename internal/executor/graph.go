package executor

import (
	"fmt"
	"strings"

	"github.com/novahq/nova/internal/planner"
)

// UnknownDependencyError reports a step that references a dependency id
// absent from the plan.
type UnknownDependencyError struct {
	StepID  string
	Missing string
}

func (e *UnknownDependencyError) Error() string {
	return fmt.Sprintf("step %s depends on unknown step %s", e.StepID, e.Missing)
}

// DuplicateStepError reports a plan that declares the same step id twice.
type DuplicateStepError struct {
	StepID string
}

func (e *DuplicateStepError) Error() string {
	return fmt.Sprintf("duplicate step id %s in plan", e.StepID)
}

// CycleError reports a dependency cycle. Steps lists the members of the
// cycle in traversal order.
type CycleError struct {
	Steps []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("dependency cycle among steps: %s", strings.Join(e.Steps, " -> "))
}

// Graph is the validated, read-only dependency view over one plan. It keeps
// the original declaration order so results can be projected back later.
type Graph struct {
	order []string
	steps map[string]planner.Step
	preds map[string][]string
	succs map[string][]string
}

// BuildGraph validates a plan and derives its dependency graph. It rejects
// duplicate step ids, dependencies on ids outside the plan, and any
// dependency cycle. BuildGraph has no side effects.
func BuildGraph(plan planner.Plan) (*Graph, error) {
	g := &Graph{
		order: make([]string, 0, len(plan.Steps)),
		steps: make(map[string]planner.Step, len(plan.Steps)),
		preds: make(map[string][]string),
		succs: make(map[string][]string),
	}

	for _, step := range plan.Steps {
		if _, exists := g.steps[step.ID]; exists {
			return nil, &DuplicateStepError{StepID: step.ID}
		}
		g.steps[step.ID] = step
		g.order = append(g.order, step.ID)
	}

	for _, step := range plan.Steps {
		for _, dep := range step.Dependencies {
			if _, exists := g.steps[dep]; !exists {
				return nil, &UnknownDependencyError{StepID: step.ID, Missing: dep}
			}
			g.preds[step.ID] = append(g.preds[step.ID], dep)
			g.succs[dep] = append(g.succs[dep], step.ID)
		}
	}

	if cycle := g.findCycle(); cycle != nil {
		return nil, &CycleError{Steps: cycle}
	}

	return g, nil
}

// Len returns the number of steps in the graph.
func (g *Graph) Len() int { return len(g.order) }

// Order returns step ids in plan declaration order.
func (g *Graph) Order() []string {
	out := make([]string, len(g.order))
	copy(out, g.order)
	return out
}

// Step returns the step with the given id.
func (g *Graph) Step(id string) planner.Step { return g.steps[id] }

// Predecessors returns the ids a step directly depends on.
func (g *Graph) Predecessors(id string) []string { return g.preds[id] }

// Successors returns the ids that directly depend on a step.
func (g *Graph) Successors(id string) []string { return g.succs[id] }

// findCycle runs a depth-first traversal with color marking (white
// unvisited, gray on the current path, black done) and returns the members
// of the first cycle found, or nil. The current path is tracked explicitly
// so the cycle can be named exactly.
func (g *Graph) findCycle() []string {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	colors := make(map[string]int, len(g.order))
	var path []string
	var cycle []string

	var visit func(id string) bool
	visit = func(id string) bool {
		colors[id] = gray
		path = append(path, id)

		for _, next := range g.succs[id] {
			switch colors[next] {
			case gray:
				// Back edge: the cycle is the path suffix starting at next.
				for i, member := range path {
					if member == next {
						cycle = append(cycle, path[i:]...)
						break
					}
				}
				return true
			case white:
				if visit(next) {
					return true
				}
			}
		}

		colors[id] = black
		path = path[:len(path)-1]
		return false
	}

	for _, id := range g.order {
		if colors[id] == white {
			if visit(id) {
				return cycle
			}
		}
	}
	return nil
}
