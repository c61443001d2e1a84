package memory

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

func seededStore(t *testing.T) *Store {
	t.Helper()
	s := New()
	if err := Seed(context.Background(), s); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return s
}

func TestTaskCreate_DanglingAssignee(t *testing.T) {
	s := seededStore(t)

	_, err := s.Tasks().Create(context.Background(), &domain.Task{
		Title:          "orphan",
		Priority:       domain.PriorityLow,
		Status:         domain.TaskPending,
		AssigneeUserID: "usr_ghost",
		DepartmentID:   "dep_design",
		DueDate:        time.Now().Add(24 * time.Hour),
		EstimatedHours: 1,
	})
	if !errors.Is(err, domain.ErrDanglingReference) {
		t.Fatalf("expected ErrDanglingReference, got %v", err)
	}
}

func TestTaskWrite_HoursInvariant(t *testing.T) {
	s := seededStore(t)

	_, err := s.Tasks().Update(context.Background(), "tsk_homepage", func(task *domain.Task) error {
		task.CompletedHours = task.EstimatedHours + 1
		return nil
	})
	if !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}

	// Failed write must not leave partial state behind.
	task, err := s.Tasks().GetByID(context.Background(), "tsk_homepage")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if task.CompletedHours != 8 {
		t.Fatalf("completed hours changed after rejected write: %v", task.CompletedHours)
	}
}

func TestUserCreate_DuplicateUsername(t *testing.T) {
	s := seededStore(t)

	_, err := s.Users().Create(context.Background(), &domain.User{
		Username:    "john.doe",
		DisplayName: "Impostor",
		Role:        domain.RoleEmployee,
		Status:      domain.UserActive,
	})
	if !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed, got %v", err)
	}
}

func TestDepartmentDelete_RequiresEmpty(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	err := s.Departments().Delete(ctx, "dep_hosting")
	if err != nil {
		t.Fatalf("hosting has no members or projects, delete should pass: %v", err)
	}

	// Design still has members and a project.
	err = s.Departments().Delete(ctx, "dep_design")
	if !errors.Is(err, domain.ErrDepartmentNotEmpty) {
		t.Fatalf("expected ErrDepartmentNotEmpty, got %v", err)
	}

	// Reassign members, detach tasks and delete the project, then retry.
	for _, uid := range []string{"usr_teamlead", "usr_john"} {
		if _, err := s.Users().Update(ctx, uid, func(u *domain.User) error {
			u.DepartmentID = "dep_dev"
			return nil
		}); err != nil {
			t.Fatalf("reassign %s: %v", uid, err)
		}
	}
	tasks, _ := s.Tasks().List(ctx, ports.TaskFilter{ProjectID: "prj_redesign"})
	for _, task := range tasks {
		if _, err := s.Tasks().Update(ctx, task.ID, func(x *domain.Task) error {
			x.ProjectID = ""
			x.DepartmentID = "dep_dev"
			return nil
		}); err != nil {
			t.Fatalf("detach task %s: %v", task.ID, err)
		}
	}
	if err := s.Projects().Delete(ctx, "prj_redesign"); err != nil {
		t.Fatalf("delete project: %v", err)
	}
	if err := s.Departments().Delete(ctx, "dep_design"); err != nil {
		t.Fatalf("delete after reassignment: %v", err)
	}
}

func TestTaskUpdate_SerializesPerID(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	const writers = 16
	var wg sync.WaitGroup
	wg.Add(writers)
	for i := 0; i < writers; i++ {
		go func() {
			defer wg.Done()
			_, _ = s.Tasks().Update(ctx, "tsk_homepage", func(task *domain.Task) error {
				task.CompletedHours++
				if task.CompletedHours > task.EstimatedHours {
					task.CompletedHours = task.EstimatedHours
				}
				return nil
			})
		}()
	}
	wg.Wait()

	task, err := s.Tasks().GetByID(ctx, "tsk_homepage")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	// 8 + 16 capped at the 20h estimate; lost updates would land lower.
	if task.CompletedHours != task.EstimatedHours {
		t.Fatalf("expected %v completed hours, got %v", task.EstimatedHours, task.CompletedHours)
	}
	if task.Version != 1+writers {
		t.Fatalf("expected version %d, got %d", 1+writers, task.Version)
	}
}

func TestGetByID_ReturnsCopy(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	task, _ := s.Tasks().GetByID(ctx, "tsk_homepage")
	task.Title = "mutated alias"

	again, _ := s.Tasks().GetByID(ctx, "tsk_homepage")
	if again.Title != "Design homepage mockups" {
		t.Fatalf("store leaked a mutable alias: %q", again.Title)
	}
}

func TestMarkAllRead_LaterNotificationStaysUnread(t *testing.T) {
	s := seededStore(t)
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		if _, err := s.Notifications().Create(ctx, &domain.Notification{
			RecipientUserID: "usr_john",
			Kind:            domain.NotifReminder,
			Priority:        domain.NotifLow,
			Title:           "reminder",
		}); err != nil {
			t.Fatalf("create: %v", err)
		}
	}

	n, err := s.Notifications().MarkAllRead(ctx, "usr_john")
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if n != 3 {
		t.Fatalf("expected 3 marked, got %d", n)
	}

	late, err := s.Notifications().Create(ctx, &domain.Notification{
		RecipientUserID: "usr_john",
		Kind:            domain.NotifComment,
		Priority:        domain.NotifMedium,
		Title:           "new comment",
	})
	if err != nil {
		t.Fatalf("late create: %v", err)
	}
	if late.IsRead {
		t.Fatal("notification created after mark-all-read must be unread")
	}

	unread := true
	list, _ := s.Notifications().ListByRecipient(ctx, "usr_john", ports.NotificationFilter{Unread: &unread})
	if len(list) != 1 || list[0].ID != late.ID {
		t.Fatalf("expected exactly the late notification unread, got %d", len(list))
	}
}
