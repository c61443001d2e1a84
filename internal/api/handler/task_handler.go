package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/taskflow/taskflow-core/internal/api/metrics"
	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

// TaskHandler handles HTTP requests for the task lifecycle.
type TaskHandler struct {
	service ports.TaskService
}

func NewTaskHandler(service ports.TaskService) *TaskHandler {
	return &TaskHandler{service: service}
}

type createTaskRequest struct {
	Title          string    `json:"title" validate:"required"`
	Description    string    `json:"description"`
	Priority       string    `json:"priority" validate:"required,oneof=low medium high urgent"`
	AssigneeUserID string    `json:"assignee_user_id" validate:"required"`
	DepartmentID   string    `json:"department_id" validate:"required"`
	ProjectID      string    `json:"project_id"`
	DueDate        time.Time `json:"due_date"`
	StartAt        time.Time `json:"start_at"`
	EstimatedHours float64   `json:"estimated_hours" validate:"min=0"`
}

type updateTaskRequest struct {
	Title          *string    `json:"title"`
	Description    *string    `json:"description"`
	Priority       *string    `json:"priority"`
	AssigneeUserID *string    `json:"assignee_user_id"`
	DueDate        *time.Time `json:"due_date"`
	EstimatedHours *float64   `json:"estimated_hours"`
}

type transitionRequest struct {
	Status string `json:"status" validate:"required,oneof=upcoming pending in_progress completed"`
}

type logHoursRequest struct {
	CompletedHours float64 `json:"completed_hours" validate:"min=0"`
}

type commentRequest struct {
	Body string `json:"body" validate:"required"`
}

// Create handles POST /v1/tasks.
//
// @Summary      Create a task
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        body  body      createTaskRequest  true  "Task details"
// @Success      201   {object}  domain.Task
// @Failure      403   {object}  map[string]string
// @Failure      422   {object}  map[string]string
// @Router       /v1/tasks [post]
func (h *TaskHandler) Create(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req createTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	task, err := h.service.Create(c.Request().Context(), session, ports.CreateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		Priority:       domain.TaskPriority(req.Priority),
		AssigneeUserID: req.AssigneeUserID,
		DepartmentID:   req.DepartmentID,
		ProjectID:      req.ProjectID,
		DueDate:        req.DueDate,
		StartAt:        req.StartAt,
		EstimatedHours: req.EstimatedHours,
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, task)
}

// Get handles GET /v1/tasks/:id.
func (h *TaskHandler) Get(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	task, err := h.service.Get(c.Request().Context(), session, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// List handles GET /v1/tasks. All filter dimensions combine with AND;
// employees only ever see their own assignments regardless of the filter.
//
// @Summary      Query tasks
// @Tags         tasks
// @Produce      json
// @Security     BearerAuth
// @Param        status            query  string  false  "Filter by status"
// @Param        priority          query  string  false  "Filter by priority"
// @Param        department_id     query  string  false  "Filter by department"
// @Param        assignee_user_id  query  string  false  "Filter by assignee"
// @Param        project_id        query  string  false  "Filter by project"
// @Param        search            query  string  false  "Case-insensitive title/description match"
// @Success      200  {array}  domain.Task
// @Router       /v1/tasks [get]
func (h *TaskHandler) List(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	tasks, err := h.service.Query(c.Request().Context(), session, ports.TaskFilter{
		Status:         domain.TaskStatus(c.QueryParam("status")),
		Priority:       domain.TaskPriority(c.QueryParam("priority")),
		DepartmentID:   c.QueryParam("department_id"),
		AssigneeUserID: c.QueryParam("assignee_user_id"),
		ProjectID:      c.QueryParam("project_id"),
		Search:         c.QueryParam("search"),
	})
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, tasks)
}

// Update handles PATCH /v1/tasks/:id.
func (h *TaskHandler) Update(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req updateTaskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	in := ports.UpdateTaskInput{
		Title:          req.Title,
		Description:    req.Description,
		AssigneeUserID: req.AssigneeUserID,
		DueDate:        req.DueDate,
		EstimatedHours: req.EstimatedHours,
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		in.Priority = &priority
	}
	task, err := h.service.Update(c.Request().Context(), session, c.Param("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Transition handles POST /v1/tasks/:id/transition.
//
// @Summary      Move a task along its lifecycle
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string             true  "Task id"
// @Param        body  body  transitionRequest  true  "Target status"
// @Success      200  {object}  domain.Task
// @Failure      403  {object}  map[string]string
// @Failure      422  {object}  map[string]string
// @Router       /v1/tasks/{id}/transition [post]
func (h *TaskHandler) Transition(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req transitionRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	task, err := h.service.Transition(c.Request().Context(), session, c.Param("id"), domain.TaskStatus(req.Status))
	if err != nil {
		return err
	}

	if n := len(task.AuditLog); n > 0 {
		edge := task.AuditLog[n-1]
		metrics.TaskTransitionsTotal.WithLabelValues(string(edge.From), string(edge.To)).Inc()
	}
	return c.JSON(http.StatusOK, task)
}

// LogHours handles POST /v1/tasks/:id/hours.
//
// @Summary      Log completed hours
// @Tags         tasks
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path  string           true  "Task id"
// @Param        body  body  logHoursRequest  true  "New completed hours total"
// @Success      200  {object}  domain.Task
// @Failure      422  {object}  map[string]string
// @Router       /v1/tasks/{id}/hours [post]
func (h *TaskHandler) LogHours(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req logHoursRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	task, err := h.service.LogHours(c.Request().Context(), session, c.Param("id"), req.CompletedHours)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, task)
}

// Delete handles DELETE /v1/tasks/:id.
func (h *TaskHandler) Delete(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.service.Delete(c.Request().Context(), session, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}

// AddComment handles POST /v1/tasks/:id/comments.
func (h *TaskHandler) AddComment(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	var req commentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid payload")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	comment, err := h.service.AddComment(c.Request().Context(), session, c.Param("id"), req.Body)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusCreated, comment)
}

// ListComments handles GET /v1/tasks/:id/comments.
func (h *TaskHandler) ListComments(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	comments, err := h.service.ListComments(c.Request().Context(), session, c.Param("id"))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, comments)
}

// DeleteComment handles DELETE /v1/comments/:id.
func (h *TaskHandler) DeleteComment(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	if err := h.service.DeleteComment(c.Request().Context(), session, c.Param("id")); err != nil {
		return err
	}
	return c.NoContent(http.StatusNoContent)
}
