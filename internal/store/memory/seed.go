package memory

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/taskflow/taskflow-core/internal/core/domain"
)

// Seed loads the development fixture: the four well-known login accounts,
// three departments, a client with two projects, and a handful of tasks.
// Entities go through the repositories so every referential invariant is
// checked the same way real writes are.
func Seed(ctx context.Context, s *Store) error {
	hash := func(pw string) string {
		h, err := bcrypt.GenerateFromPassword([]byte(pw), bcrypt.MinCost)
		if err != nil {
			panic(err)
		}
		return string(h)
	}

	now := time.Now().UTC()

	users := []*domain.User{
		{ID: "usr_superadmin", Username: "superadmin", DisplayName: "Super Admin", Email: "admin@taskflow.dev", Position: "Administrator", PasswordHash: hash("admin123"), Role: domain.RoleSuperAdmin, Status: domain.UserActive, JoinDate: now.AddDate(-3, 0, 0)},
		{ID: "usr_teamlead", Username: "teamlead", DisplayName: "Team Lead", Email: "lead@taskflow.dev", Position: "Team Lead", PasswordHash: hash("lead123"), Role: domain.RoleTeamLead, Status: domain.UserActive, JoinDate: now.AddDate(-2, 0, 0)},
		{ID: "usr_john", Username: "john.doe", DisplayName: "John Doe", Email: "john@taskflow.dev", Position: "Designer", PasswordHash: hash("john123"), Role: domain.RoleEmployee, Status: domain.UserActive, JoinDate: now.AddDate(-1, 0, 0)},
		{ID: "usr_jane", Username: "jane.smith", DisplayName: "Jane Smith", Email: "jane@taskflow.dev", Position: "Project Manager", PasswordHash: hash("jane123"), Role: domain.RoleProjectManager, Status: domain.UserActive, JoinDate: now.AddDate(-1, -6, 0)},
	}
	for _, u := range users {
		if _, err := s.users.Create(ctx, u); err != nil {
			return fmt.Errorf("seed user %s: %w", u.Username, err)
		}
	}

	departments := []*domain.Department{
		{ID: "dep_design", Name: "Design", HeadUserID: "usr_teamlead", Budget: 50000},
		{ID: "dep_dev", Name: "Development", HeadUserID: "usr_jane", Budget: 120000},
		{ID: "dep_hosting", Name: "Hosting", HeadUserID: "usr_superadmin", Budget: 30000},
	}
	for _, d := range departments {
		if _, err := s.departments.Create(ctx, d); err != nil {
			return fmt.Errorf("seed department %s: %w", d.Name, err)
		}
	}

	assign := map[string]string{
		"usr_teamlead": "dep_design",
		"usr_john":     "dep_design",
		"usr_jane":     "dep_dev",
	}
	for uid, did := range assign {
		if _, err := s.users.Update(ctx, uid, func(u *domain.User) error {
			u.DepartmentID = did
			return nil
		}); err != nil {
			return fmt.Errorf("seed assign %s: %w", uid, err)
		}
	}

	client := &domain.Client{
		ID:     "cli_statelife",
		Name:   "State Life",
		Status: domain.ClientActive,
		Contact: domain.ContactInfo{
			Company: "State Life Insurance",
			Email:   "contact@statelife.example",
			Phone:   "+1-555-0102",
		},
	}
	if _, err := s.clients.Create(ctx, client); err != nil {
		return fmt.Errorf("seed client: %w", err)
	}

	projects := []*domain.Project{
		{ID: "prj_redesign", Name: "State Life Website Redesign", DepartmentID: "dep_design", ClientID: "cli_statelife", Status: domain.ProjectInProgress, TeamMemberIDs: []string{"usr_john", "usr_teamlead"}, DueDate: now.AddDate(0, 2, 0)},
		{ID: "prj_portal", Name: "Customer Portal", DepartmentID: "dep_dev", ClientID: "cli_statelife", Status: domain.ProjectPlanning, TeamMemberIDs: []string{"usr_jane"}, DueDate: now.AddDate(0, 4, 0)},
	}
	for _, p := range projects {
		if _, err := s.projects.Create(ctx, p); err != nil {
			return fmt.Errorf("seed project %s: %w", p.Name, err)
		}
	}

	tasks := []*domain.Task{
		{ID: "tsk_homepage", Title: "Design homepage mockups", Description: "High fidelity mockups for the landing page", Priority: domain.PriorityHigh, Status: domain.TaskInProgress, AssigneeUserID: "usr_john", DepartmentID: "dep_design", ProjectID: "prj_redesign", DueDate: now.AddDate(0, 0, 7), EstimatedHours: 20, CompletedHours: 8},
		{ID: "tsk_api", Title: "Implement portal API", Description: "REST endpoints for the customer portal", Priority: domain.PriorityMedium, Status: domain.TaskPending, AssigneeUserID: "usr_jane", DepartmentID: "dep_dev", ProjectID: "prj_portal", DueDate: now.AddDate(0, 0, 14), EstimatedHours: 40},
		{ID: "tsk_review", Title: "Review brand guidelines", Description: "Check the new palette against accessibility rules", Priority: domain.PriorityLow, Status: domain.TaskCompleted, AssigneeUserID: "usr_john", DepartmentID: "dep_design", ProjectID: "prj_redesign", DueDate: now.AddDate(0, 0, -3), EstimatedHours: 4, CompletedHours: 4},
		{ID: "tsk_audit", Title: "Quarterly hosting audit", Description: "Capacity and cost review of hosting accounts", Priority: domain.PriorityMedium, Status: domain.TaskUpcoming, AssigneeUserID: "usr_jane", DepartmentID: "dep_dev", DueDate: now.AddDate(0, 1, 14), StartAt: now.AddDate(0, 1, 0), EstimatedHours: 12},
	}
	for _, t := range tasks {
		if _, err := s.tasks.Create(ctx, t); err != nil {
			return fmt.Errorf("seed task %s: %w", t.Title, err)
		}
	}

	return nil
}
