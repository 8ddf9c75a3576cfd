package runtime

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/novahq/nova/internal/planner"
	"github.com/novahq/nova/internal/store"
)

// Messenger is the notification slice of a gateway.
type Messenger interface {
	Send(chatID string, text string) error
}

// ScheduleStore is the slice of the store the scheduler polls.
type ScheduleStore interface {
	PendingScheduledTasks() ([]store.ScheduledTask, error)
	UpdateTaskLastRun(id int) error
	DeleteScheduledTask(id int) error
}

// Scheduler polls the store for due tasks and submits them to the runtime.
type Scheduler struct {
	Runtime  *Runtime
	Store    ScheduleStore
	Gateway  Messenger
	NotifyID string
	Interval time.Duration
}

func NewScheduler(rt *Runtime, s ScheduleStore, gateway Messenger, notifyID string) *Scheduler {
	return &Scheduler{
		Runtime:  rt,
		Store:    s,
		Gateway:  gateway,
		NotifyID: notifyID,
		Interval: 30 * time.Second,
	}
}

func (s *Scheduler) Start(ctx context.Context) {
	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	log.Println("Task scheduler started...")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.pollAndExecute(ctx)
		}
	}
}

func (s *Scheduler) pollAndExecute(ctx context.Context) {
	tasks, err := s.Store.PendingScheduledTasks()
	if err != nil {
		log.Printf("Error polling tasks: %v", err)
		return
	}

	for _, t := range tasks {
		log.Printf("Executing scheduled task %d: %s", t.ID, t.Description)

		task := planner.Task{
			ID:          uuid.New().String(),
			Description: t.Description,
		}
		if t.ToolCalls != "" {
			if err := json.Unmarshal([]byte(t.ToolCalls), &task.ToolCalls); err != nil {
				log.Printf("Scheduled task %d has malformed tool calls: %v", t.ID, err)
				continue
			}
		}

		result, err := s.Runtime.Execute(ctx, task)
		if err != nil {
			log.Printf("Error executing scheduled task %d: %v", t.ID, err)
			continue
		}

		if err := s.Store.UpdateTaskLastRun(t.ID); err != nil {
			log.Printf("Error updating last run for task %d: %v", t.ID, err)
		}

		// One-time tasks (interval = 0) run once and are removed.
		if t.IntervalSeconds == 0 {
			if err := s.Store.DeleteScheduledTask(t.ID); err != nil {
				log.Printf("Error deleting one-time task %d: %v", t.ID, err)
			}
		}

		if s.Gateway != nil && s.NotifyID != "" {
			status := "completed"
			if !result.Success {
				status = "finished with errors"
			}
			s.Gateway.Send(s.NotifyID, "⏰ Scheduled task \""+t.Description+"\" "+status+".")
		}
	}
}
