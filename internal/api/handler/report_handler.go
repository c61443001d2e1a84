package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/taskflow/taskflow-core/internal/api/metrics"
	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

// ReportHandler handles HTTP requests for the aggregation views.
type ReportHandler struct {
	service ports.ReportService
}

func NewReportHandler(service ports.ReportService) *ReportHandler {
	return &ReportHandler{service: service}
}

func observeReport(name string) func() {
	timer := prometheus.NewTimer(metrics.ReportDuration.WithLabelValues(name))
	return func() { timer.ObserveDuration() }
}

// Summary handles GET /v1/reports/summary. Accepts the same filter query
// parameters as the task list.
//
// @Summary      Task summary
// @Tags         reports
// @Produce      json
// @Security     BearerAuth
// @Param        status         query  string  false  "Filter by status"
// @Param        priority       query  string  false  "Filter by priority"
// @Param        department_id  query  string  false  "Filter by department"
// @Param        project_id     query  string  false  "Filter by project"
// @Param        search         query  string  false  "Case-insensitive title/description match"
// @Success      200  {object}  ports.TaskSummary
// @Router       /v1/reports/summary [get]
func (h *ReportHandler) Summary(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	defer observeReport("summary")()

	summary, err := h.service.Summary(c.Request().Context(), session, ports.TaskFilter{
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
	return c.JSON(http.StatusOK, summary)
}

// EmployeeRollups handles GET /v1/reports/employees.
func (h *ReportHandler) EmployeeRollups(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	defer observeReport("rollups")()

	rollups, err := h.service.EmployeeRollups(c.Request().Context(), session)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, rollups)
}

// DepartmentReports handles GET /v1/reports/departments. The department scan
// honors request cancellation, so slow clients that hang up do not keep the
// aggregation running.
func (h *ReportHandler) DepartmentReports(c echo.Context) error {
	session, err := ctxSession(c)
	if err != nil {
		return err
	}
	defer observeReport("departments")()

	start := time.Now()
	reports, err := h.service.DepartmentReports(c.Request().Context(), session)
	if err != nil {
		return err
	}
	c.Response().Header().Set("X-Report-Duration", time.Since(start).String())
	return c.JSON(http.StatusOK, reports)
}
