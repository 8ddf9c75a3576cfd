package tools

import (
	"context"
	"fmt"
)

// Tool defines the interface for all runtime capabilities. Parameters
// returns the JSON Schema for the tool's inputs; Execute receives the raw
// JSON arguments of one step.
type Tool interface {
	Name() string
	Description() string
	Parameters() map[string]any
	Execute(ctx context.Context, input string) (string, error)
}

// Registry manages the set of available tools. It is immutable after the
// wiring phase and safe to call from concurrently running steps.
type Registry struct {
	Tools map[string]Tool
}

func NewRegistry() *Registry {
	return &Registry{
		Tools: make(map[string]Tool),
	}
}

func (r *Registry) Register(t Tool) {
	r.Tools[t.Name()] = t
}

func (r *Registry) Get(name string) Tool {
	return r.Tools[name]
}

// Invoke resolves a tool by name and executes it. The executor dispatches
// every plan step through this method.
func (r *Registry) Invoke(ctx context.Context, name string, args string) (string, error) {
	t := r.Get(name)
	if t == nil {
		return "", fmt.Errorf("tool %q is not registered", name)
	}
	return t.Execute(ctx, args)
}
