package models

import (
	"time"

	"github.com/gofrs/uuid"
)

// TaskStatus is the lifecycle state of a task. The wire values are the
// display strings the frontend renders directly.
type TaskStatus string

const (
	StatusPending    TaskStatus = "Pending"
	StatusInProgress TaskStatus = "In Progress"
	StatusCompleted  TaskStatus = "Completed"
	StatusOverdue    TaskStatus = "Overdue"
)

// ValidStatus reports whether s is one of the four task states.
func ValidStatus(s TaskStatus) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusOverdue:
		return true
	}
	return false
}

const (
	MinPriority = 1
	MaxPriority = 5
)

type Task struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Title       string     `json:"title" gorm:"not null"`
	Description string     `json:"description"`
	DueDate     *time.Time `json:"due_date" gorm:"type:timestamp"`
	Priority    int        `json:"priority" gorm:"not null;default:3"`
	Status      TaskStatus `json:"status" gorm:"not null;default:'Pending'"`
	// Progress is persisted as a cache of the derived value; readers must
	// recompute it from the subtask rows before returning it to a client.
	Progress    int        `json:"progress" gorm:"not null;default:0"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Labels   []Label   `json:"-" gorm:"many2many:task_labels;constraint:OnDelete:CASCADE"`
	Subtasks []Subtask `json:"-" gorm:"constraint:OnDelete:CASCADE"`
}

type Subtask struct {
	ID        uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	TaskID    uuid.UUID `json:"task_id" gorm:"type:uuid;not null;index"`
	Title     string    `json:"title" gorm:"not null"`
	Completed bool      `json:"completed" gorm:"not null;default:false"`
	// Position preserves the order subtasks were supplied in.
	Position  int       `json:"-" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
}

type Label struct {
	ID          uuid.UUID `json:"id" gorm:"primaryKey;type:uuid"`
	UserID      uuid.UUID `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_labels_user_name"`
	Name        string    `json:"name" gorm:"not null;uniqueIndex:idx_labels_user_name"`
	Color       string    `json:"color" gorm:"not null"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TimeEntry struct {
	ID          uuid.UUID  `json:"id" gorm:"primaryKey;type:uuid"`
	TaskID      uuid.UUID  `json:"task_id" gorm:"type:uuid;not null;index"`
	UserID      uuid.UUID  `json:"user_id" gorm:"type:uuid;not null;index"`
	Description string     `json:"description"`
	StartedAt   time.Time  `json:"started_at" gorm:"not null"`
	EndedAt     *time.Time `json:"ended_at"`
	CreatedAt   time.Time  `json:"created_at"`
}

// DurationSeconds returns the entry length in whole seconds, or 0 while the
// entry is still running.
func (e *TimeEntry) DurationSeconds() int64 {
	if e.EndedAt == nil {
		return 0
	}
	return int64(e.EndedAt.Sub(e.StartedAt).Seconds())
}
