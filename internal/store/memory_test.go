package store

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/novahq/nova/internal/executor"
	"github.com/novahq/nova/internal/planner"
)

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	s, err := NewMemoryStore(":memory:")
	if err != nil {
		t.Fatalf("NewMemoryStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestMemoryStore_StoreAndSearch(t *testing.T) {
	s := newTestStore(t)

	mem := Memory{
		ID:         "test-1",
		Content:    "Test memory",
		Timestamp:  time.Now().Unix(),
		Importance: 0.8,
		DecayRate:  0.1,
		Tags:       []string{"test"},
		Source:     "test",
		Metadata:   json.RawMessage(`{}`),
	}
	if err := s.Store(mem); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	results, err := s.Search("Test", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected 1 result, got %d", len(results))
	}
	if results[0].Content != "Test memory" {
		t.Errorf("unexpected content: %s", results[0].Content)
	}
	if len(results[0].Tags) != 1 || results[0].Tags[0] != "test" {
		t.Errorf("tags did not round-trip: %v", results[0].Tags)
	}
}

func TestMemoryStore_SearchRanking(t *testing.T) {
	s := newTestStore(t)

	low := Memory{ID: "low", Content: "ranked entry low", Timestamp: 100, Importance: 0.2, Metadata: json.RawMessage(`{}`)}
	high := Memory{ID: "high", Content: "ranked entry high", Timestamp: 50, Importance: 0.9, Metadata: json.RawMessage(`{}`)}
	for _, mem := range []Memory{low, high} {
		if err := s.Store(mem); err != nil {
			t.Fatalf("Store failed: %v", err)
		}
	}

	results, err := s.Search("ranked entry", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("expected 2 results, got %d", len(results))
	}
	if results[0].ID != "high" {
		t.Errorf("importance should outrank recency, got %s first", results[0].ID)
	}
}

func TestMemoryStore_RecordExecution(t *testing.T) {
	s := newTestStore(t)

	task := planner.Task{ID: "task-1", Description: "read a file"}
	result := executor.TaskResult{TaskID: "task-1", Success: true, DurationMS: 42}

	if err := s.RecordExecution(task, result); err != nil {
		t.Fatalf("RecordExecution failed: %v", err)
	}

	results, err := s.Search("read a file", 10)
	if err != nil {
		t.Fatalf("Search failed: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("expected the execution record, got %d results", len(results))
	}

	var meta struct {
		TaskID     string `json:"task_id"`
		Success    bool   `json:"success"`
		DurationMS int64  `json:"duration_ms"`
	}
	if err := json.Unmarshal(results[0].Metadata, &meta); err != nil {
		t.Fatalf("metadata is not valid JSON: %v", err)
	}
	if meta.TaskID != "task-1" || !meta.Success || meta.DurationMS != 42 {
		t.Errorf("unexpected metadata: %+v", meta)
	}
}

func TestMemoryStore_ScheduledTasks(t *testing.T) {
	s := newTestStore(t)

	if err := s.AddScheduledTask("daily report", `[]`, 3600); err != nil {
		t.Fatalf("AddScheduledTask failed: %v", err)
	}

	tasks, err := s.PendingScheduledTasks()
	if err != nil {
		t.Fatalf("PendingScheduledTasks failed: %v", err)
	}
	if len(tasks) != 1 {
		t.Fatalf("expected 1 due task, got %d", len(tasks))
	}
	if tasks[0].Description != "daily report" || tasks[0].IntervalSeconds != 3600 {
		t.Errorf("unexpected task: %+v", tasks[0])
	}

	if err := s.UpdateTaskLastRun(tasks[0].ID); err != nil {
		t.Fatalf("UpdateTaskLastRun failed: %v", err)
	}
	tasks, err = s.PendingScheduledTasks()
	if err != nil {
		t.Fatalf("PendingScheduledTasks failed: %v", err)
	}
	if len(tasks) != 0 {
		t.Errorf("freshly run task should not be due, got %d", len(tasks))
	}

	if err := s.ClearScheduledTasks(); err != nil {
		t.Fatalf("ClearScheduledTasks failed: %v", err)
	}
}
