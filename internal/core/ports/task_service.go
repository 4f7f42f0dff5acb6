package ports

import (
	"context"
	"time"

	"github.com/taskhive/task-api/internal/core/domain"
)

// CreateTaskInput carries all data needed to create a task. OwnerID comes
// from the authenticated caller, never from the request body.
type CreateTaskInput struct {
	OwnerID     string
	Title       string
	Description string
	Status      string // empty = default "pending"
	Priority    string // empty = default "medium"
	DueDate     *time.Time
}

// UpdateTaskInput carries a partial update. Nil pointers mean "not present
// in the request". DueDateSet is true whenever due_date appeared in the
// request at all, including as an explicit null.
type UpdateTaskInput struct {
	Title       *string
	Description *string
	Status      *string
	Priority    *string
	DueDate     *time.Time
	DueDateSet  bool
}

// ListTasksInput carries the list query as received from the API layer.
// Out-of-range pagination values are clamped by the service, not rejected.
type ListTasksInput struct {
	OwnerID  string
	Status   string
	Priority string
	Search   string
	SortBy   string
	SortDir  string
	Page     int
	PerPage  int
}

// PageMeta is the pagination metadata attached to list responses. From and
// To are nil for an empty page.
type PageMeta struct {
	CurrentPage int
	PerPage     int
	Total       int64
	LastPage    int
	From        *int
	To          *int
}

// TaskPage is one page of tasks plus its metadata.
type TaskPage struct {
	Items []*domain.Task
	Meta  PageMeta
}

// TaskService defines use-case operations for tasks. All by-id operations
// take the caller's owner id and report domain.ErrTaskNotFound for missing
// and not-owned alike.
type TaskService interface {
	List(ctx context.Context, input ListTasksInput) (*TaskPage, error)
	Create(ctx context.Context, input CreateTaskInput) (*domain.Task, error)
	GetByID(ctx context.Context, id, ownerID string) (*domain.Task, error)
	Update(ctx context.Context, id, ownerID string, input UpdateTaskInput) (*domain.Task, error)
	Delete(ctx context.Context, id, ownerID string) error
}
