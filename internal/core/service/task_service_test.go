package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
)

type stubTaskRepo struct {
	tasks      map[string]*domain.Task
	nextID     int
	queried    bool
	lastFilter ports.ListTasksFilter
	listItems  []*domain.Task
	listTotal  int64
}

func newStubTaskRepo() *stubTaskRepo {
	return &stubTaskRepo{tasks: make(map[string]*domain.Task)}
}

func cloneTask(t *domain.Task) *domain.Task {
	if t == nil {
		return nil
	}
	clone := *t
	return &clone
}

func (r *stubTaskRepo) Create(_ context.Context, t *domain.Task) (*domain.Task, error) {
	r.nextID++
	created := cloneTask(t)
	created.ID = fmt.Sprintf("%024x", r.nextID)
	r.tasks[created.ID] = cloneTask(created)
	return created, nil
}

func (r *stubTaskRepo) FindByID(_ context.Context, id, ownerID string) (*domain.Task, error) {
	r.queried = true
	t, exists := r.tasks[id]
	if !exists || t.OwnerID != ownerID {
		return nil, domain.ErrTaskNotFound
	}
	return cloneTask(t), nil
}

func (r *stubTaskRepo) Update(_ context.Context, id, ownerID string, changes ports.TaskChanges) (*domain.Task, error) {
	r.queried = true
	t, exists := r.tasks[id]
	if !exists || t.OwnerID != ownerID {
		return nil, domain.ErrTaskNotFound
	}
	if changes.Title != nil {
		t.Title = *changes.Title
	}
	if changes.Description != nil {
		t.Description = *changes.Description
	}
	if changes.Status != nil {
		t.Status = domain.TaskStatus(*changes.Status)
	}
	if changes.Priority != nil {
		t.Priority = domain.TaskPriority(*changes.Priority)
	}
	if changes.DueDate != nil {
		t.DueDate = changes.DueDate
	}
	if changes.ClearDueDate {
		t.DueDate = nil
	}
	if changes.CompletedAt != nil {
		t.CompletedAt = changes.CompletedAt
	}
	if changes.ClearCompletedAt {
		t.CompletedAt = nil
	}
	t.UpdatedAt = time.Now().UTC()
	return cloneTask(t), nil
}

func (r *stubTaskRepo) Delete(_ context.Context, id, ownerID string) error {
	r.queried = true
	t, exists := r.tasks[id]
	if !exists || t.OwnerID != ownerID {
		return domain.ErrTaskNotFound
	}
	delete(r.tasks, id)
	return nil
}

func (r *stubTaskRepo) List(_ context.Context, filter ports.ListTasksFilter) ([]*domain.Task, int64, error) {
	r.queried = true
	r.lastFilter = filter
	return r.listItems, r.listTotal, nil
}

func newTaskService(repo *stubTaskRepo) *TaskService {
	return NewTaskService(repo, zerolog.Nop())
}

func TestTaskService_Create_Defaults(t *testing.T) {
	repo := newStubTaskRepo()
	svc := newTaskService(repo)

	task, err := svc.Create(context.Background(), ports.CreateTaskInput{
		OwnerID: "owner_1",
		Title:   "Buy milk",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if task.Status != domain.StatusPending {
		t.Fatalf("expected default status pending, got %s", task.Status)
	}
	if task.Priority != domain.PriorityMedium {
		t.Fatalf("expected default priority medium, got %s", task.Priority)
	}
	if task.CompletedAt != nil {
		t.Fatalf("expected nil completed_at, got %v", task.CompletedAt)
	}
	if task.OwnerID != "owner_1" {
		t.Fatalf("expected owner_1, got %s", task.OwnerID)
	}
	if task.ID == "" {
		t.Fatalf("expected assigned id")
	}
}

func TestTaskService_Create_CompletedStampsCompletedAt(t *testing.T) {
	repo := newStubTaskRepo()
	svc := newTaskService(repo)

	task, err := svc.Create(context.Background(), ports.CreateTaskInput{
		OwnerID: "owner_1",
		Title:   "Already done",
		Status:  "completed",
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if task.CompletedAt == nil {
		t.Fatalf("expected completed_at to be stamped for completed task")
	}
}

func TestTaskService_Create_RoundTrip(t *testing.T) {
	repo := newStubTaskRepo()
	svc := newTaskService(repo)

	due := time.Date(2026, 9, 1, 0, 0, 0, 0, time.UTC)
	created, err := svc.Create(context.Background(), ports.CreateTaskInput{
		OwnerID:     "owner_1",
		Title:       "Write report",
		Description: "Quarterly numbers",
		Status:      "in_progress",
		Priority:    "high",
		DueDate:     &due,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	got, err := svc.GetByID(context.Background(), created.ID, "owner_1")
	if err != nil {
		t.Fatalf("GetByID returned error: %v", err)
	}
	if got.Title != "Write report" || got.Description != "Quarterly numbers" {
		t.Fatalf("unexpected task: %+v", got)
	}
	if got.Status != domain.StatusInProgress || got.Priority != domain.PriorityHigh {
		t.Fatalf("unexpected status/priority: %s/%s", got.Status, got.Priority)
	}
	if got.DueDate == nil || !got.DueDate.Equal(due) {
		t.Fatalf("unexpected due date: %v", got.DueDate)
	}
}

func TestTaskService_GetByID_OtherOwnerIsNotFound(t *testing.T) {
	repo := newStubTaskRepo()
	svc := newTaskService(repo)

	created, _ := svc.Create(context.Background(), ports.CreateTaskInput{OwnerID: "owner_a", Title: "private"})

	if _, err := svc.GetByID(context.Background(), created.ID, "owner_b"); err != domain.ErrTaskNotFound {
		t.Fatalf("expected ErrTaskNotFound for foreign owner, got %v", err)
	}
}

func TestTaskService_MalformedID_NeverReachesStore(t *testing.T) {
	malformed := []string{"", "abc", "not-an-id", "507f1f77bcf86cd79943901", "507f1f77bcf86cd79943901z"}

	for _, id := range malformed {
		repo := newStubTaskRepo()
		svc := newTaskService(repo)

		if _, err := svc.GetByID(context.Background(), id, "owner_1"); err != domain.ErrInvalidTaskID {
			t.Fatalf("GetByID(%q): expected ErrInvalidTaskID, got %v", id, err)
		}
		if _, err := svc.Update(context.Background(), id, "owner_1", ports.UpdateTaskInput{}); err != domain.ErrInvalidTaskID {
			t.Fatalf("Update(%q): expected ErrInvalidTaskID, got %v", id, err)
		}
		if err := svc.Delete(context.Background(), id, "owner_1"); err != domain.ErrInvalidTaskID {
			t.Fatalf("Delete(%q): expected ErrInvalidTaskID, got %v", id, err)
		}
		if repo.queried {
			t.Fatalf("store was queried for malformed id %q", id)
		}
	}
}

func TestTaskService_Update_CompletedTransition(t *testing.T) {
	repo := newStubTaskRepo()
	svc := newTaskService(repo)

	created, _ := svc.Create(context.Background(), ports.CreateTaskInput{OwnerID: "owner_1", Title: "Buy milk"})

	completed := "completed"
	updated, err := svc.Update(context.Background(), created.ID, "owner_1", ports.UpdateTaskInput{Status: &completed})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.CompletedAt == nil {
		t.Fatalf("expected completed_at to be stamped")
	}
	firstStamp := *updated.CompletedAt

	// Completing an already-completed task must not move the stamp.
	updated, err = svc.Update(context.Background(), created.ID, "owner_1", ports.UpdateTaskInput{Status: &completed})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.CompletedAt == nil || !updated.CompletedAt.Equal(firstStamp) {
		t.Fatalf("expected completed_at to stay %v, got %v", firstStamp, updated.CompletedAt)
	}

	pending := "pending"
	updated, err = svc.Update(context.Background(), created.ID, "owner_1", ports.UpdateTaskInput{Status: &pending})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.CompletedAt != nil {
		t.Fatalf("expected completed_at cleared, got %v", updated.CompletedAt)
	}
}

func TestTaskService_Update_DueDateTriState(t *testing.T) {
	repo := newStubTaskRepo()
	svc := newTaskService(repo)

	created, _ := svc.Create(context.Background(), ports.CreateTaskInput{OwnerID: "owner_1", Title: "Buy milk"})

	due := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	updated, err := svc.Update(context.Background(), created.ID, "owner_1", ports.UpdateTaskInput{
		DueDate:    &due,
		DueDateSet: true,
	})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.DueDate == nil || !updated.DueDate.Equal(due) {
		t.Fatalf("expected due date set, got %v", updated.DueDate)
	}

	// Absent due_date leaves the stored value alone.
	title := "Buy oat milk"
	updated, err = svc.Update(context.Background(), created.ID, "owner_1", ports.UpdateTaskInput{Title: &title})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.DueDate == nil {
		t.Fatalf("due date should be untouched when absent from input")
	}

	// Explicit null clears it.
	updated, err = svc.Update(context.Background(), created.ID, "owner_1", ports.UpdateTaskInput{DueDateSet: true})
	if err != nil {
		t.Fatalf("Update returned error: %v", err)
	}
	if updated.DueDate != nil {
		t.Fatalf("expected due date cleared, got %v", updated.DueDate)
	}
}

func TestTaskService_Delete(t *testing.T) {
	repo := newStubTaskRepo()
	svc := newTaskService(repo)

	created, _ := svc.Create(context.Background(), ports.CreateTaskInput{OwnerID: "owner_1", Title: "temp"})

	if err := svc.Delete(context.Background(), created.ID, "owner_b"); err != domain.ErrTaskNotFound {
		t.Fatalf("expected ErrTaskNotFound for foreign owner, got %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID, "owner_1"); err != nil {
		t.Fatalf("Delete returned error: %v", err)
	}
	if err := svc.Delete(context.Background(), created.ID, "owner_1"); err != domain.ErrTaskNotFound {
		t.Fatalf("expected ErrTaskNotFound after delete, got %v", err)
	}
}

func TestTaskService_List_ClampsPagination(t *testing.T) {
	repo := newStubTaskRepo()
	svc := newTaskService(repo)

	if _, err := svc.List(context.Background(), ports.ListTasksInput{
		OwnerID: "owner_1",
		Page:    -3,
		PerPage: 500,
	}); err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if repo.lastFilter.PerPage != 100 {
		t.Fatalf("expected per_page clamped to 100, got %d", repo.lastFilter.PerPage)
	}
	if repo.lastFilter.Page != 1 {
		t.Fatalf("expected page clamped to 1, got %d", repo.lastFilter.Page)
	}
}

func TestTaskService_List_DefaultsAndPassThrough(t *testing.T) {
	repo := newStubTaskRepo()
	svc := newTaskService(repo)

	if _, err := svc.List(context.Background(), ports.ListTasksInput{
		OwnerID:  "owner_1",
		Status:   "completed",
		Priority: "high",
		Search:   "report",
		SortBy:   "due_date",
		SortDir:  "asc",
		Page:     2,
		PerPage:  5,
	}); err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	f := repo.lastFilter
	if f.OwnerID != "owner_1" || f.Status != "completed" || f.Priority != "high" || f.Search != "report" {
		t.Fatalf("filters not passed through: %+v", f)
	}
	if f.SortBy != "due_date" || f.SortDir != "asc" || f.Page != 2 || f.PerPage != 5 {
		t.Fatalf("sort/pagination not passed through: %+v", f)
	}

	// Zero values fall back to defaults.
	if _, err := svc.List(context.Background(), ports.ListTasksInput{OwnerID: "owner_1"}); err != nil {
		t.Fatalf("List returned error: %v", err)
	}
	f = repo.lastFilter
	if f.SortBy != "created_at" || f.SortDir != "desc" {
		t.Fatalf("expected created_at desc default, got %s %s", f.SortBy, f.SortDir)
	}
	if f.PerPage != defaultPerPage || f.Page != 1 {
		t.Fatalf("expected default pagination, got page=%d per_page=%d", f.Page, f.PerPage)
	}
}

func TestTaskService_List_Meta(t *testing.T) {
	repo := newStubTaskRepo()
	svc := newTaskService(repo)

	repo.listItems = []*domain.Task{
		{ID: "a", OwnerID: "owner_1"},
		{ID: "b", OwnerID: "owner_1"},
		{ID: "c", OwnerID: "owner_1"},
	}
	repo.listTotal = 23

	page, err := svc.List(context.Background(), ports.ListTasksInput{OwnerID: "owner_1", Page: 3, PerPage: 10})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	m := page.Meta
	if m.CurrentPage != 3 || m.PerPage != 10 || m.Total != 23 || m.LastPage != 3 {
		t.Fatalf("unexpected meta: %+v", m)
	}
	if m.From == nil || *m.From != 21 {
		t.Fatalf("expected from=21, got %v", m.From)
	}
	if m.To == nil || *m.To != 23 {
		t.Fatalf("expected to=23, got %v", m.To)
	}
}

func TestTaskService_List_EmptyPageMeta(t *testing.T) {
	repo := newStubTaskRepo()
	svc := newTaskService(repo)

	page, err := svc.List(context.Background(), ports.ListTasksInput{OwnerID: "owner_1"})
	if err != nil {
		t.Fatalf("List returned error: %v", err)
	}

	if len(page.Items) != 0 {
		t.Fatalf("expected empty page")
	}
	if page.Meta.From != nil || page.Meta.To != nil {
		t.Fatalf("expected nil from/to on empty page, got %+v", page.Meta)
	}
	if page.Meta.LastPage != 1 {
		t.Fatalf("expected last_page 1 for empty result, got %d", page.Meta.LastPage)
	}
}
