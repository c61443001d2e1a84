package ports

import (
	"context"

	"github.com/taskflow/taskflow-core/internal/core/domain"
)

// EmployeeRollup is the per-employee task breakdown used by team reports.
type EmployeeRollup struct {
	UserID     string `json:"user_id"`
	Assigned   int    `json:"assigned"`
	Completed  int    `json:"completed"`
	InProgress int    `json:"in_progress"`
	Pending    int    `json:"pending"`
}

// TaskSummary aggregates a task set for the dashboard.
type TaskSummary struct {
	Total          int                          `json:"total"`
	ByStatus       map[domain.TaskStatus]int    `json:"by_status"`
	ByPriority     map[domain.TaskPriority]int  `json:"by_priority"`
	CompletionRate float64                      `json:"completion_rate"`
}

// DepartmentReport combines a department with its derived task stats.
type DepartmentReport struct {
	DepartmentID string  `json:"department_id"`
	Name         string  `json:"name"`
	Members      int     `json:"members"`
	Projects     int     `json:"projects"`
	Tasks        TaskSummary `json:"tasks"`
}

// ProjectProgress is the derived completion view of a project. There is no
// stored progress field to drift from this.
type ProjectProgress struct {
	ProjectID      string  `json:"project_id"`
	TotalTasks     int     `json:"total_tasks"`
	CompletedTasks int     `json:"completed_tasks"`
	Percent        float64 `json:"percent"`
}

// ReportService computes derived views over the entity store. All methods
// read a snapshot and never block writers; results may be slightly stale.
type ReportService interface {
	Summary(ctx context.Context, session *domain.Session, f TaskFilter) (*TaskSummary, error)
	EmployeeRollups(ctx context.Context, session *domain.Session) ([]EmployeeRollup, error)
	DepartmentReports(ctx context.Context, session *domain.Session) ([]DepartmentReport, error)
	Progress(ctx context.Context, session *domain.Session, projectID string) (*ProjectProgress, error)
}
