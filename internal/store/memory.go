package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/glebarez/go-sqlite"
	"github.com/google/uuid"
	"github.com/novahq/nova/internal/executor"
	"github.com/novahq/nova/internal/planner"
)

// MemoryStore is the persistence collaborator: it records memories and task
// executions in sqlite and keeps the scheduled-task table the background
// scheduler polls. Pass ":memory:" as the path for an ephemeral store.
type MemoryStore struct {
	DB *sql.DB
}

func NewMemoryStore(dbPath string) (*MemoryStore, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	queries := []string{
		`CREATE TABLE IF NOT EXISTS memories (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			timestamp INTEGER NOT NULL,
			importance REAL DEFAULT 0.5,
			decay_rate REAL DEFAULT 0.1,
			tags TEXT,
			source TEXT,
			session_id TEXT,
			metadata TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_memories_timestamp ON memories(timestamp);`,
		`CREATE INDEX IF NOT EXISTS idx_memories_importance ON memories(importance);`,
		`CREATE TABLE IF NOT EXISTS scheduled_tasks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			description TEXT,
			tool_calls TEXT,
			interval_seconds INTEGER,
			last_run DATETIME,
			status TEXT DEFAULT 'active'
		);`,
	}
	for _, q := range queries {
		if _, err := db.Exec(q); err != nil {
			return nil, err
		}
	}

	return &MemoryStore{DB: db}, nil
}

func (m *MemoryStore) Close() error {
	return m.DB.Close()
}

// Store persists one memory row.
func (m *MemoryStore) Store(mem Memory) error {
	tagsJSON, err := json.Marshal(mem.Tags)
	if err != nil {
		return err
	}
	metadata := string(mem.Metadata)
	if metadata == "" {
		metadata = "{}"
	}

	query := `INSERT INTO memories (id, content, timestamp, importance, decay_rate, tags, source, session_id, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = m.DB.Exec(query,
		mem.ID, mem.Content, mem.Timestamp, mem.Importance, mem.DecayRate,
		string(tagsJSON), mem.Source, mem.SessionID, metadata)
	return err
}

// Search retrieves memories by keyword match, ranked by importance then
// recency.
func (m *MemoryStore) Search(query string, limit int) ([]Memory, error) {
	rows, err := m.DB.Query(
		`SELECT id, content, timestamp, importance, decay_rate, tags, source, session_id, metadata
		FROM memories
		WHERE content LIKE ?
		ORDER BY importance DESC, timestamp DESC
		LIMIT ?`,
		"%"+query+"%", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memories []Memory
	for rows.Next() {
		var mem Memory
		var tagsJSON, metadata string
		var sessionID sql.NullString
		if err := rows.Scan(&mem.ID, &mem.Content, &mem.Timestamp, &mem.Importance,
			&mem.DecayRate, &tagsJSON, &mem.Source, &sessionID, &metadata); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(tagsJSON), &mem.Tags); err != nil {
			mem.Tags = nil
		}
		mem.SessionID = sessionID.String
		mem.Metadata = json.RawMessage(metadata)
		memories = append(memories, mem)
	}
	return memories, rows.Err()
}

// RecordExecution stores the immutable record of one task execution.
func (m *MemoryStore) RecordExecution(task planner.Task, result executor.TaskResult) error {
	metadata, err := json.Marshal(map[string]any{
		"task_id":     task.ID,
		"success":     result.Success,
		"duration_ms": result.DurationMS,
		"steps":       len(result.Outcomes),
	})
	if err != nil {
		return err
	}

	return m.Store(Memory{
		ID:         uuid.New().String(),
		Content:    fmt.Sprintf("Executed task: %s", task.Description),
		Timestamp:  time.Now().Unix(),
		Importance: 0.7,
		DecayRate:  0.1,
		Tags:       []string{"execution", "task"},
		Source:     "runtime",
		Metadata:   metadata,
	})
}

// AddScheduledTask registers a recurring task. Interval zero means the task
// runs once and is then removed by the scheduler.
func (m *MemoryStore) AddScheduledTask(description string, toolCalls string, intervalSeconds int) error {
	query := `INSERT INTO scheduled_tasks (description, tool_calls, interval_seconds, last_run)
		VALUES (?, ?, ?, datetime('now', '-365 days'))`
	_, err := m.DB.Exec(query, description, toolCalls, intervalSeconds)
	return err
}

// PendingScheduledTasks returns every active task whose interval has
// elapsed since its last run.
func (m *MemoryStore) PendingScheduledTasks() ([]ScheduledTask, error) {
	rows, err := m.DB.Query(`
		SELECT id, description, tool_calls, interval_seconds
		FROM scheduled_tasks
		WHERE status = 'active'
		AND (last_run IS NULL OR (julianday('now') - julianday(last_run)) * 86400 >= interval_seconds)`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var tasks []ScheduledTask
	for rows.Next() {
		var t ScheduledTask
		if err := rows.Scan(&t.ID, &t.Description, &t.ToolCalls, &t.IntervalSeconds); err != nil {
			return nil, err
		}
		tasks = append(tasks, t)
	}
	return tasks, rows.Err()
}

func (m *MemoryStore) UpdateTaskLastRun(id int) error {
	_, err := m.DB.Exec(`UPDATE scheduled_tasks SET last_run = datetime('now') WHERE id = ?`, id)
	return err
}

func (m *MemoryStore) DeleteScheduledTask(id int) error {
	_, err := m.DB.Exec(`DELETE FROM scheduled_tasks WHERE id = ?`, id)
	return err
}

func (m *MemoryStore) ClearScheduledTasks() error {
	_, err := m.DB.Exec(`DELETE FROM scheduled_tasks`)
	return err
}
