package service

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
)

const (
	defaultPerPage = 15
	maxPerPage     = 100
	defaultSortBy  = "created_at"
)

// TaskService implements task CRUD on top of the repository, enforcing
// ownership scoping and the completed_at transition rule.
type TaskService struct {
	repo ports.TaskRepository
	log  zerolog.Logger
}

func NewTaskService(repo ports.TaskRepository, log zerolog.Logger) *TaskService {
	return &TaskService{repo: repo, log: log}
}

// List returns one page of the caller's tasks. Out-of-range pagination
// values are clamped silently rather than rejected.
func (s *TaskService) List(ctx context.Context, input ports.ListTasksInput) (*ports.TaskPage, error) {
	perPage := input.PerPage
	if perPage < 1 {
		perPage = defaultPerPage
	}
	if perPage > maxPerPage {
		perPage = maxPerPage
	}

	page := input.Page
	if page < 1 {
		page = 1
	}

	sortBy := input.SortBy
	if sortBy == "" {
		sortBy = defaultSortBy
	}
	sortDir := input.SortDir
	if sortDir != "asc" {
		sortDir = "desc"
	}

	items, total, err := s.repo.List(ctx, ports.ListTasksFilter{
		OwnerID:  input.OwnerID,
		Status:   input.Status,
		Priority: input.Priority,
		Search:   input.Search,
		SortBy:   sortBy,
		SortDir:  sortDir,
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		return nil, err
	}

	return &ports.TaskPage{
		Items: items,
		Meta:  pageMeta(page, perPage, total, len(items)),
	}, nil
}

// pageMeta computes Laravel-style pagination metadata. From and To stay nil
// when the page is empty.
func pageMeta(page, perPage int, total int64, count int) ports.PageMeta {
	lastPage := int((total + int64(perPage) - 1) / int64(perPage))
	if lastPage < 1 {
		lastPage = 1
	}

	meta := ports.PageMeta{
		CurrentPage: page,
		PerPage:     perPage,
		Total:       total,
		LastPage:    lastPage,
	}
	if count > 0 {
		from := (page-1)*perPage + 1
		to := from + count - 1
		meta.From = &from
		meta.To = &to
	}
	return meta
}

// Create persists a new task owned by the caller. Status and priority
// default to pending/medium when absent.
func (s *TaskService) Create(ctx context.Context, input ports.CreateTaskInput) (*domain.Task, error) {
	status := domain.TaskStatus(input.Status)
	if status == "" {
		status = domain.StatusPending
	}
	priority := domain.TaskPriority(input.Priority)
	if priority == "" {
		priority = domain.PriorityMedium
	}

	now := time.Now().UTC()
	task := &domain.Task{
		OwnerID:     input.OwnerID,
		Title:       input.Title,
		Description: input.Description,
		Status:      status,
		Priority:    priority,
		DueDate:     input.DueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if status == domain.StatusCompleted {
		task.CompletedAt = &now
	}

	created, err := s.repo.Create(ctx, task)
	if err != nil {
		s.log.Error().Err(err).Str("owner_id", input.OwnerID).Msg("failed to create task")
		return nil, err
	}

	s.log.Info().Str("task_id", created.ID).Str("owner_id", input.OwnerID).Msg("task created")
	return created, nil
}

// GetByID fetches one task scoped by owner. A malformed id never reaches
// the store; missing and not-owned both come back as ErrTaskNotFound.
func (s *TaskService) GetByID(ctx context.Context, id, ownerID string) (*domain.Task, error) {
	if !domain.IsValidTaskID(id) {
		return nil, domain.ErrInvalidTaskID
	}
	return s.repo.FindByID(ctx, id, ownerID)
}

// Update applies a partial update. Transitioning into "completed" stamps
// completed_at (unless already stamped); any other incoming status clears
// it. This runs on every update that carries a status, independently of the
// other fields in the call.
func (s *TaskService) Update(ctx context.Context, id, ownerID string, input ports.UpdateTaskInput) (*domain.Task, error) {
	if !domain.IsValidTaskID(id) {
		return nil, domain.ErrInvalidTaskID
	}

	task, err := s.repo.FindByID(ctx, id, ownerID)
	if err != nil {
		return nil, err
	}

	changes := ports.TaskChanges{
		Title:       input.Title,
		Description: input.Description,
		Status:      input.Status,
		Priority:    input.Priority,
	}

	if input.Status != nil {
		if *input.Status == string(domain.StatusCompleted) {
			if task.CompletedAt == nil {
				now := time.Now().UTC()
				changes.CompletedAt = &now
			}
		} else {
			changes.ClearCompletedAt = true
		}
	}

	if input.DueDateSet {
		if input.DueDate != nil {
			changes.DueDate = input.DueDate
		} else {
			changes.ClearDueDate = true
		}
	}

	updated, err := s.repo.Update(ctx, id, ownerID, changes)
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("task_id", id).Str("owner_id", ownerID).Msg("task updated")
	return updated, nil
}

// Delete removes a task under the same ownership rule as GetByID.
func (s *TaskService) Delete(ctx context.Context, id, ownerID string) error {
	if !domain.IsValidTaskID(id) {
		return domain.ErrInvalidTaskID
	}

	if err := s.repo.Delete(ctx, id, ownerID); err != nil {
		return err
	}

	s.log.Info().Str("task_id", id).Str("owner_id", ownerID).Msg("task deleted")
	return nil
}
