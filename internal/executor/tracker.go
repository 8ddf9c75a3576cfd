package executor

import "sync"

// State is a lifecycle stage of a step or task.
type State string

const (
	StatePending   State = "pending"
	StateRunning   State = "running"
	StateCompleted State = "completed"
	StateFailed    State = "failed"
)

// Terminal reports whether the state will not change again.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// Status is the current lifecycle status of a step or task. Reason is set
// only for failures.
type Status struct {
	State  State  `json:"state"`
	Reason string `json:"reason,omitempty"`
}

// StatusTracker is the shared execution status map, keyed by step id (and
// by task id at the top level). Transitions happen only through Set, so the
// pending -> running -> terminal lifecycle is enforced in one place.
type StatusTracker struct {
	mu       sync.RWMutex
	statuses map[string]Status
}

func NewStatusTracker() *StatusTracker {
	return &StatusTracker{statuses: make(map[string]Status)}
}

// Set records the status for an id, replacing any previous value.
func (t *StatusTracker) Set(id string, status Status) {
	t.mu.Lock()
	t.statuses[id] = status
	t.mu.Unlock()
}

// Get returns the status for an id, if one has been recorded.
func (t *StatusTracker) Get(id string) (Status, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	status, ok := t.statuses[id]
	return status, ok
}

// Snapshot returns a copy of every recorded status.
func (t *StatusTracker) Snapshot() map[string]Status {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[string]Status, len(t.statuses))
	for id, status := range t.statuses {
		out[id] = status
	}
	return out
}
