package domain

import (
	"errors"
	"regexp"
	"time"
)

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	StatusPending    TaskStatus = "pending"
	StatusInProgress TaskStatus = "in_progress"
	StatusCompleted  TaskStatus = "completed"
)

// TaskPriority represents the urgency assigned to a task.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
)

var ErrTaskNotFound = errors.New("task not found")
var ErrInvalidTaskID = errors.New("invalid task id format")

// ValidStatus reports whether s is one of the enumerated task statuses.
func ValidStatus(s string) bool {
	switch TaskStatus(s) {
	case StatusPending, StatusInProgress, StatusCompleted:
		return true
	}
	return false
}

// ValidPriority reports whether p is one of the enumerated task priorities.
func ValidPriority(p string) bool {
	switch TaskPriority(p) {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// taskIDPattern matches a 24-character hex ObjectId string.
var taskIDPattern = regexp.MustCompile(`^[a-fA-F0-9]{24}$`)

// IsValidTaskID reports whether id has the shape of a Mongo ObjectId.
// Anything else is rejected before the store is ever queried.
func IsValidTaskID(id string) bool {
	return taskIDPattern.MatchString(id)
}

// Task is the core aggregate. A task belongs to exactly one user; OwnerID is
// set at creation and never changes. CompletedAt is non-nil iff Status is
// "completed".
type Task struct {
	ID          string       `json:"_id" bson:"_id,omitempty"`
	OwnerID     string       `json:"user_id" bson:"user_id"`
	Title       string       `json:"title" bson:"title"`
	Description string       `json:"description" bson:"description"`
	Status      TaskStatus   `json:"status" bson:"status"`
	Priority    TaskPriority `json:"priority" bson:"priority"`
	DueDate     *time.Time   `json:"due_date" bson:"due_date"`
	CompletedAt *time.Time   `json:"completed_at" bson:"completed_at"`
	CreatedAt   time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" bson:"updated_at"`
}
