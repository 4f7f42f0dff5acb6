package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/taskhive/task-api/internal/api/metrics"
	"github.com/taskhive/task-api/internal/core/domain"
	"github.com/taskhive/task-api/internal/core/ports"
)

// TaskHandler handles HTTP requests for task operations. Every operation is
// scoped to the authenticated caller.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

// List handles GET /api/tasks with filtering, sorting, and pagination.
//
// @Summary      List tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status    query  string  false  "Filter by status"    Enums(pending, in_progress, completed)
// @Param        priority  query  string  false  "Filter by priority"  Enums(low, medium, high)
// @Param        search    query  string  false  "Substring match on title or description"
// @Param        sort_by   query  string  false  "Sort field"  default(created_at)
// @Param        sort_dir  query  string  false  "Sort direction"  Enums(asc, desc)
// @Param        page      query  int     false  "Page number"  default(1)
// @Param        per_page  query  int     false  "Rows per page (max 100)"  default(15)
// @Success      200  {object}  apiResponse
// @Failure      401  {object}  apiResponse
// @Router       /tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	page, _ := strconv.Atoi(c.QueryParam("page"))
	perPage, _ := strconv.Atoi(c.QueryParam("per_page"))

	result, err := h.service.List(c.Request().Context(), ports.ListTasksInput{
		OwnerID:  ownerID,
		Status:   c.QueryParam("status"),
		Priority: c.QueryParam("priority"),
		Search:   c.QueryParam("search"),
		SortBy:   c.QueryParam("sort_by"),
		SortDir:  c.QueryParam("sort_dir"),
		Page:     page,
		PerPage:  perPage,
	})
	if err != nil {
		return err
	}

	return c.JSON(http.StatusOK, apiResponse{
		Success: true,
		Message: "Tasks retrieved successfully",
		Data:    toTaskListResponse(result.Items),
		Meta:    toMetaResponse(result.Meta),
	})
}

// Create handles POST /api/tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task details"
// @Success      201   {object}  apiResponse
// @Failure      401   {object}  apiResponse
// @Failure      422   {object}  apiResponse
// @Router       /tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	input, err := toCreateInput(req, ownerID)
	if err != nil {
		return err
	}

	task, err := h.service.Create(c.Request().Context(), input)
	if err != nil {
		return err
	}

	metrics.TasksCreatedTotal.WithLabelValues(string(task.Priority)).Inc()
	return ok(c, http.StatusCreated, "Task created successfully", toTaskResponse(task))
}

// Get handles GET /api/tasks/:id.
//
// @Summary      Get a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id (24-char hex)"
// @Success      200  {object}  apiResponse
// @Failure      400  {object}  apiResponse
// @Failure      404  {object}  apiResponse
// @Router       /tasks/{id} [get]
func (h *TaskHandler) Get(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	task, err := h.service.GetByID(c.Request().Context(), c.Param("id"), ownerID)
	if err != nil {
		return taskError(c, err)
	}

	return ok(c, http.StatusOK, "Task retrieved successfully", toTaskResponse(task))
}

// Update handles PUT /api/tasks/:id with a partial payload.
//
// @Summary      Update a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path      string             true  "Task id (24-char hex)"
// @Param        body  body      updateTaskRequest  true  "Fields to update"
// @Success      200   {object}  apiResponse
// @Failure      400   {object}  apiResponse
// @Failure      404   {object}  apiResponse
// @Failure      422   {object}  apiResponse
// @Router       /tasks/{id} [put]
func (h *TaskHandler) Update(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return fail(c, http.StatusBadRequest, "Invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return err
	}

	input, err := toUpdateInput(req)
	if err != nil {
		return err
	}

	task, err := h.service.Update(c.Request().Context(), c.Param("id"), ownerID, input)
	if err != nil {
		return taskError(c, err)
	}

	if input.Status != nil {
		metrics.TaskStatusTransitionsTotal.WithLabelValues(*input.Status).Inc()
	}
	return ok(c, http.StatusOK, "Task updated successfully", toTaskResponse(task))
}

// Delete handles DELETE /api/tasks/:id.
//
// @Summary      Delete a task
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Task id (24-char hex)"
// @Success      200  {object}  apiResponse
// @Failure      400  {object}  apiResponse
// @Failure      404  {object}  apiResponse
// @Router       /tasks/{id} [delete]
func (h *TaskHandler) Delete(c echo.Context) error {
	ownerID, err := ctxUserID(c)
	if err != nil {
		return err
	}

	if err := h.service.Delete(c.Request().Context(), c.Param("id"), ownerID); err != nil {
		return taskError(c, err)
	}

	return ok(c, http.StatusOK, "Task deleted successfully", nil)
}

// taskError maps the two by-id failure kinds onto their responses. Missing
// and not-owned tasks are deliberately the same 404.
func taskError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, domain.ErrInvalidTaskID):
		return fail(c, http.StatusBadRequest, "Invalid task ID format")
	case errors.Is(err, domain.ErrTaskNotFound):
		return fail(c, http.StatusNotFound, "Task not found")
	}
	return err
}
