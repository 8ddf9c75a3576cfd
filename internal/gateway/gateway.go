package gateway

import (
	"context"

	"github.com/novahq/nova/internal/executor"
	"github.com/novahq/nova/internal/planner"
)

// TaskRunner is the slice of the runtime that gateways need: submit a task,
// get the aggregated result back.
type TaskRunner interface {
	Execute(ctx context.Context, task planner.Task) (executor.TaskResult, error)
}

// Messenger is a chat surface the runtime can receive tasks from and push
// notifications to.
type Messenger interface {
	Start() error
	Send(chatID string, text string) error
	Stop() error
}
