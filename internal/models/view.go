package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// TaskView is the denormalized task representation returned to clients. It is
// assembled from the task row plus its label and subtask rows on every read
// and after every mutation; it is never persisted.
type TaskView struct {
	ID               uuid.UUID     `json:"id"`
	UserID           uuid.UUID     `json:"user_id"`
	Title            string        `json:"title"`
	Description      string        `json:"description"`
	DueDate          *time.Time    `json:"due_date"`
	Priority         int           `json:"priority"`
	Status           TaskStatus    `json:"status"`
	Progress         int           `json:"progress"`
	CompletedAt      *time.Time    `json:"completed_at"`
	CreatedAt        time.Time     `json:"created_at"`
	UpdatedAt        time.Time     `json:"updated_at"`
	Labels           []string      `json:"labels"`
	Subtasks         []SubtaskView `json:"subtasks"`
	TimeSpentSeconds int64         `json:"time_spent_seconds"`
}

type SubtaskView struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Completed bool      `json:"completed"`
}
