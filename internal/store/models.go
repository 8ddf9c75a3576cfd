package store

import "encoding/json"

// Memory is one durable record: an observation, a task execution, or any
// other fact worth recalling later. Importance and decay feed the search
// ranking.
type Memory struct {
	ID         string          `json:"id"`
	Content    string          `json:"content"`
	Timestamp  int64           `json:"timestamp"`
	Importance float64         `json:"importance"`
	DecayRate  float64         `json:"decay_rate"`
	Tags       []string        `json:"tags"`
	Source     string          `json:"source"`
	SessionID  string          `json:"session_id,omitempty"`
	Metadata   json.RawMessage `json:"metadata"`
}

// ScheduledTask is a recurring (or one-time, interval zero) task the
// background scheduler re-submits to the runtime.
type ScheduledTask struct {
	ID              int    `json:"id"`
	Description     string `json:"description"`
	ToolCalls       string `json:"tool_calls"`
	IntervalSeconds int    `json:"interval_seconds"`
}
