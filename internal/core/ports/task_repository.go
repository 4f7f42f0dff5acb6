package ports

import (
	"context"
	"time"

	"github.com/taskhive/task-api/internal/core/domain"
)

// ListTasksFilter carries all query parameters for listing tasks.
// OwnerID is mandatory and is always applied first — tasks belonging to
// other users must never appear in a result.
type ListTasksFilter struct {
	OwnerID  string
	Status   string // optional: exact match
	Priority string // optional: exact match
	Search   string // optional: case-insensitive substring over title/description
	SortBy   string // task field name; defaults to created_at
	SortDir  string // "asc" or "desc"; defaults to desc
	Page     int    // 1-based
	PerPage  int    // rows per page
}

// TaskChanges describes a partial update. A nil pointer leaves the field
// untouched; the Clear flags distinguish "set to null" from "untouched" for
// the nullable date fields.
type TaskChanges struct {
	Title            *string
	Description      *string
	Status           *string
	Priority         *string
	DueDate          *time.Time
	ClearDueDate     bool
	CompletedAt      *time.Time
	ClearCompletedAt bool
}

// TaskRepository defines persistence operations for tasks. Every by-id
// operation is scoped by ownerID inside the query itself, so "doesn't exist"
// and "exists but not owned" are indistinguishable to callers.
type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	FindByID(ctx context.Context, id, ownerID string) (*domain.Task, error)
	// Update applies changes atomically and returns the updated task.
	Update(ctx context.Context, id, ownerID string, changes TaskChanges) (*domain.Task, error)
	Delete(ctx context.Context, id, ownerID string) error
	// List returns a page of tasks matching filter and the total count.
	List(ctx context.Context, filter ListTasksFilter) ([]*domain.Task, int64, error)
}
