package task

import (
	"errors"
	"time"
)

type Status string

const (
	StatusTodo  Status = "todo"
	StatusDoing Status = "doing"
	StatusDone  Status = "done"
)

type Task struct {
	ID          string     `json:"id"`
	UserID      string     `json:"userId"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Status      Status     `json:"status"`
	Priority    int        `json:"priority"`
	DueAt       *time.Time `json:"dueAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

var ErrNotFound = errors.New("task not found")

// with pointers if optional, it will be nil
type ListFilter struct {
	Status   *Status
	Priority *int
	DueFrom  *time.Time
	DueTo    *time.Time
	Limit    int
}

type CreateTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description string     `json:"description" binding:"omitempty,max=2000"`
	Status      Status     `json:"status" binding:"omitempty,oneof=todo doing done"`
	Priority    int        `json:"priority" binding:"omitempty,min=0,max=5"`
	DueAt       *time.Time `json:"dueAt"`
}

type UpdateTaskRequest struct {
	Title       string     `json:"title" binding:"required,min=1,max=200"`
	Description string     `json:"description" binding:"omitempty,max=2000"`
	Status      Status     `json:"status" binding:"required,oneof=todo doing done"`
	Priority    int        `json:"priority" binding:"omitempty,min=0,max=5"`
	DueAt       *time.Time `json:"dueAt"`
}
