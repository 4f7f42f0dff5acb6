package handler

import (
	"time"

	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
)

// dueDateLayouts are the accepted due_date formats, tried in order.
var dueDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func parseDueDate(s string) (*time.Time, error) {
	var lastErr error
	for _, layout := range dueDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			utc := t.UTC()
			return &utc, nil
		}
		lastErr = err
	}
	return nil, lastErr
}

// dueDateError is the field-error map returned when due_date cannot be
// parsed; same 422 shape as the struct-tag rules produce.
func dueDateError() *ValidationError {
	return &ValidationError{Fields: map[string][]string{
		"due_date": {"The due_date is not a valid date."},
	}}
}

// --- Request → Service input ---

func toCreateInput(req createTaskRequest, ownerID string) (ports.CreateTaskInput, error) {
	input := ports.CreateTaskInput{
		OwnerID:     ownerID,
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if req.DueDate != nil && *req.DueDate != "" {
		due, err := parseDueDate(*req.DueDate)
		if err != nil {
			return ports.CreateTaskInput{}, dueDateError()
		}
		input.DueDate = due
	}
	return input, nil
}

func toUpdateInput(req updateTaskRequest) (ports.UpdateTaskInput, error) {
	input := ports.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		Status:      req.Status,
		Priority:    req.Priority,
	}
	if req.DueDate.Present {
		input.DueDateSet = true
		if req.DueDate.Value != nil && *req.DueDate.Value != "" {
			due, err := parseDueDate(*req.DueDate.Value)
			if err != nil {
				return ports.UpdateTaskInput{}, dueDateError()
			}
			input.DueDate = due
		}
	}
	return input, nil
}

// --- Service result → HTTP response ---

func toTaskResponse(t *domain.Task) taskResponse {
	return taskResponse{
		ID:          t.ID,
		UserID:      t.OwnerID,
		Title:       t.Title,
		Description: t.Description,
		Status:      string(t.Status),
		Priority:    string(t.Priority),
		DueDate:     t.DueDate,
		CompletedAt: t.CompletedAt,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toTaskListResponse(items []*domain.Task) []taskResponse {
	out := make([]taskResponse, len(items))
	for i, t := range items {
		out[i] = toTaskResponse(t)
	}
	return out
}

func toMetaResponse(m ports.PageMeta) *paginationMeta {
	return &paginationMeta{
		CurrentPage: m.CurrentPage,
		PerPage:     m.PerPage,
		Total:       m.Total,
		LastPage:    m.LastPage,
		From:        m.From,
		To:          m.To,
	}
}
