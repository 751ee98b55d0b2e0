package models

import (
	"encoding/json"
	"time"
)

// NullableString distinguishes "field absent from the payload" (Present
// false) from "field explicitly set to null" (Present true, Valid false).
// Plain pointer fields cannot represent both cases.
type NullableString struct {
	Present bool
	Valid   bool
	Value   string
}

func (n *NullableString) UnmarshalJSON(data []byte) error {
	n.Present = true
	if string(data) == "null" {
		n.Valid = false
		n.Value = ""
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// NullableTime follows the same absent / null / value convention for
// timestamp fields.
type NullableTime struct {
	Present bool
	Valid   bool
	Value   time.Time
}

func (n *NullableTime) UnmarshalJSON(data []byte) error {
	n.Present = true
	if string(data) == "null" {
		n.Valid = false
		n.Value = time.Time{}
		return nil
	}
	if err := json.Unmarshal(data, &n.Value); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// SubtaskInput is one subtask as supplied on task create or subtask replace.
type SubtaskInput struct {
	Title     string `json:"title" binding:"required"`
	Completed bool   `json:"completed"`
}

// TaskPatch is a partial task update. A nil pointer (or Present false for
// nullable fields) means "leave unchanged"; labels and subtasks, when
// present, replace the full set.
type TaskPatch struct {
	Title       *string        `json:"title"`
	Description NullableString `json:"description"`
	DueDate     NullableTime   `json:"due_date"`
	Priority    *int           `json:"priority"`
	Status      *TaskStatus    `json:"status"`
	Progress    *int           `json:"progress"`
	Labels      *[]string      `json:"labels"`
	Subtasks    *[]SubtaskInput `json:"subtasks"`
}

// TaskCreate is the payload for creating a task.
type TaskCreate struct {
	Title       string         `json:"title" binding:"required"`
	Description string         `json:"description"`
	DueDate     *time.Time     `json:"due_date"`
	Priority    int            `json:"priority"`
	Status      TaskStatus     `json:"status"`
	Labels      []string       `json:"labels"`
	Subtasks    []SubtaskInput `json:"subtasks"`
}
