package service

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

// CountByStatus tallies tasks per lifecycle state.
func CountByStatus(tasks []*domain.Task) map[domain.TaskStatus]int {
	out := make(map[domain.TaskStatus]int, 4)
	for _, t := range tasks {
		out[t.Status]++
	}
	return out
}

// CountByPriority tallies tasks per priority.
func CountByPriority(tasks []*domain.Task) map[domain.TaskPriority]int {
	out := make(map[domain.TaskPriority]int, 4)
	for _, t := range tasks {
		out[t.Priority]++
	}
	return out
}

// CompletionRate is completed/total, defined as 0 for an empty set.
func CompletionRate(tasks []*domain.Task) float64 {
	if len(tasks) == 0 {
		return 0
	}
	completed := 0
	for _, t := range tasks {
		if t.Status == domain.TaskCompleted {
			completed++
		}
	}
	return float64(completed) / float64(len(tasks))
}

// PerEmployeeRollup breaks a task set down by assignee.
func PerEmployeeRollup(tasks []*domain.Task) map[string]ports.EmployeeRollup {
	out := map[string]ports.EmployeeRollup{}
	for _, t := range tasks {
		r := out[t.AssigneeUserID]
		r.UserID = t.AssigneeUserID
		r.Assigned++
		switch t.Status {
		case domain.TaskCompleted:
			r.Completed++
		case domain.TaskInProgress:
			r.InProgress++
		case domain.TaskPending:
			r.Pending++
		}
		out[t.AssigneeUserID] = r
	}
	return out
}

// FilterTasks applies the filter to a snapshot. Pure: the input slice is
// never modified.
func FilterTasks(tasks []*domain.Task, f ports.TaskFilter) []*domain.Task {
	var out []*domain.Task
	for _, t := range tasks {
		if f.Matches(t) {
			out = append(out, t)
		}
	}
	return out
}

// ReportService computes derived views over store snapshots. Everything here
// is read-only; a report may be marginally stale with respect to in-flight
// writes, which is acceptable for dashboards.
type ReportService struct {
	store      ports.Store
	authorizer ports.Authorizer
	log        zerolog.Logger
}

func NewReportService(store ports.Store, authorizer ports.Authorizer, log zerolog.Logger) *ReportService {
	return &ReportService{store: store, authorizer: authorizer, log: log}
}

// scope narrows the filter to the caller's own tasks for employees.
func (s *ReportService) scope(session *domain.Session, f ports.TaskFilter) (ports.TaskFilter, error) {
	if err := s.authorizer.Authorize(session, domain.ActionViewReports, nil).Err(); err != nil {
		return f, err
	}
	if session.Role == domain.RoleEmployee {
		f.AssigneeUserID = session.UserID
	}
	return f, nil
}

func (s *ReportService) Summary(ctx context.Context, session *domain.Session, f ports.TaskFilter) (*ports.TaskSummary, error) {
	f, err := s.scope(session, f)
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.Tasks().List(ctx, f)
	if err != nil {
		return nil, err
	}
	return &ports.TaskSummary{
		Total:          len(tasks),
		ByStatus:       CountByStatus(tasks),
		ByPriority:     CountByPriority(tasks),
		CompletionRate: CompletionRate(tasks),
	}, nil
}

func (s *ReportService) EmployeeRollups(ctx context.Context, session *domain.Session) ([]ports.EmployeeRollup, error) {
	f, err := s.scope(session, ports.TaskFilter{})
	if err != nil {
		return nil, err
	}
	tasks, err := s.store.Tasks().List(ctx, f)
	if err != nil {
		return nil, err
	}

	rollups := PerEmployeeRollup(tasks)
	out := make([]ports.EmployeeRollup, 0, len(rollups))
	for _, r := range rollups {
		out = append(out, r)
	}
	return out, nil
}

// DepartmentReports walks every department, scanning members, projects, and
// tasks. The context is checked between department scans: a cancelled report
// returns the error and discards partial results.
func (s *ReportService) DepartmentReports(ctx context.Context, session *domain.Session) ([]ports.DepartmentReport, error) {
	if _, err := s.scope(session, ports.TaskFilter{}); err != nil {
		return nil, err
	}

	departments, err := s.store.Departments().List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]ports.DepartmentReport, 0, len(departments))
	for _, dep := range departments {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		members, err := s.store.Users().List(ctx, ports.UserFilter{DepartmentID: dep.ID})
		if err != nil {
			return nil, err
		}
		projects, err := s.store.Projects().List(ctx, ports.ProjectFilter{DepartmentID: dep.ID})
		if err != nil {
			return nil, err
		}
		filter := ports.TaskFilter{DepartmentID: dep.ID}
		if session.Role == domain.RoleEmployee {
			filter.AssigneeUserID = session.UserID
		}
		tasks, err := s.store.Tasks().List(ctx, filter)
		if err != nil {
			return nil, err
		}

		out = append(out, ports.DepartmentReport{
			DepartmentID: dep.ID,
			Name:         dep.Name,
			Members:      len(members),
			Projects:     len(projects),
			Tasks: ports.TaskSummary{
				Total:          len(tasks),
				ByStatus:       CountByStatus(tasks),
				ByPriority:     CountByPriority(tasks),
				CompletionRate: CompletionRate(tasks),
			},
		})
	}
	return out, nil
}

// Progress derives a project's completion percentage from its tasks. The
// value is computed on every call; no stored field can drift from it.
func (s *ReportService) Progress(ctx context.Context, session *domain.Session, projectID string) (*ports.ProjectProgress, error) {
	if err := s.authorizer.Authorize(session, domain.ActionViewReports, nil).Err(); err != nil {
		return nil, err
	}
	if _, err := s.store.Projects().GetByID(ctx, projectID); err != nil {
		return nil, err
	}

	tasks, err := s.store.Tasks().List(ctx, ports.TaskFilter{ProjectID: projectID})
	if err != nil {
		return nil, err
	}

	completed := 0
	for _, t := range tasks {
		if t.Status == domain.TaskCompleted {
			completed++
		}
	}
	percent := 0.0
	if len(tasks) > 0 {
		percent = float64(completed) / float64(len(tasks)) * 100
	}
	return &ports.ProjectProgress{
		ProjectID:      projectID,
		TotalTasks:     len(tasks),
		CompletedTasks: completed,
		Percent:        percent,
	}, nil
}
