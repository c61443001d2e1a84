package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
	"github.com/taskflow/taskflow-core/internal/store/memory"
)

// captureDispatcher records enqueued notifications instead of delivering them.
type captureDispatcher struct {
	mu     sync.Mutex
	events []ports.NotifyInput
}

func (d *captureDispatcher) Enqueue(in ports.NotifyInput) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, in)
}

func (d *captureDispatcher) byKind(kind domain.NotificationKind) []ports.NotifyInput {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []ports.NotifyInput
	for _, e := range d.events {
		if e.Kind == kind {
			out = append(out, e)
		}
	}
	return out
}

func newTaskFixture(t *testing.T) (*TaskService, *memory.Store, *captureDispatcher) {
	t.Helper()
	store := memory.New()
	if err := memory.Seed(context.Background(), store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	dispatcher := &captureDispatcher{}
	svc := NewTaskService(store, NewAuthorizer(), dispatcher, zerolog.Nop())
	return svc, store, dispatcher
}

var (
	superSession = &domain.Session{ID: "s1", UserID: "usr_superadmin", Username: "superadmin", Role: domain.RoleSuperAdmin}
	leadSession  = &domain.Session{ID: "s2", UserID: "usr_teamlead", Username: "teamlead", Role: domain.RoleTeamLead}
	janeSession  = &domain.Session{ID: "s3", UserID: "usr_jane", Username: "jane.smith", Role: domain.RoleProjectManager}
	johnSession  = &domain.Session{ID: "s4", UserID: "usr_john", Username: "john.doe", Role: domain.RoleEmployee}
)

func TestTaskCreate_EmployeeDenied(t *testing.T) {
	svc, _, _ := newTaskFixture(t)

	_, err := svc.Create(context.Background(), johnSession, ports.CreateTaskInput{
		Title:          "self-assigned",
		Priority:       domain.PriorityLow,
		AssigneeUserID: "usr_john",
		DepartmentID:   "dep_design",
		EstimatedHours: 1,
	})
	if !errors.Is(err, domain.ErrRoleInsufficient) {
		t.Fatalf("expected ErrRoleInsufficient, got %v", err)
	}
}

func TestTaskCreate_FutureStartIsUpcoming(t *testing.T) {
	svc, _, dispatcher := newTaskFixture(t)

	task, err := svc.Create(context.Background(), leadSession, ports.CreateTaskInput{
		Title:          "next sprint prep",
		Priority:       domain.PriorityMedium,
		AssigneeUserID: "usr_john",
		DepartmentID:   "dep_design",
		DueDate:        time.Now().AddDate(0, 1, 0),
		StartAt:        time.Now().AddDate(0, 0, 14),
		EstimatedHours: 6,
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if task.Status != domain.TaskUpcoming {
		t.Fatalf("expected upcoming, got %s", task.Status)
	}

	assigned := dispatcher.byKind(domain.NotifTaskAssigned)
	if len(assigned) != 1 || assigned[0].RecipientUserID != "usr_john" {
		t.Fatalf("expected one assignment notification for usr_john, got %+v", assigned)
	}
}

func TestTransition_ManagerCompletesForeignTask(t *testing.T) {
	// jane.smith (project manager) completes a task assigned to john.doe.
	svc, _, _ := newTaskFixture(t)

	task, err := svc.Transition(context.Background(), janeSession, "tsk_homepage", domain.TaskCompleted)
	if err != nil {
		t.Fatalf("transition: %v", err)
	}
	if task.Status != domain.TaskCompleted {
		t.Fatalf("expected completed, got %s", task.Status)
	}

	last := task.AuditLog[len(task.AuditLog)-1]
	if last.Actor != "jane.smith" || last.From != domain.TaskInProgress || last.To != domain.TaskCompleted {
		t.Fatalf("audit entry wrong: %+v", last)
	}
}

func TestTransition_EmployeeOwnAndForeign(t *testing.T) {
	svc, _, _ := newTaskFixture(t)
	ctx := context.Background()

	// John may move his own in-progress task back to pending.
	if _, err := svc.Transition(ctx, johnSession, "tsk_homepage", domain.TaskPending); err != nil {
		t.Fatalf("own task revert: %v", err)
	}

	// John may not touch jane's task.
	_, err := svc.Transition(ctx, johnSession, "tsk_api", domain.TaskInProgress)
	if !errors.Is(err, domain.ErrNotResourceOwner) {
		t.Fatalf("expected ErrNotResourceOwner, got %v", err)
	}
}

func TestTransition_IllegalEdge(t *testing.T) {
	svc, _, _ := newTaskFixture(t)

	// Completed -> Upcoming is not an edge of the state machine.
	_, err := svc.Transition(context.Background(), superSession, "tsk_review", domain.TaskUpcoming)
	if !errors.Is(err, domain.ErrIllegalTransition) {
		t.Fatalf("expected ErrIllegalTransition, got %v", err)
	}
}

func TestTransition_ReopenRequiresApproval(t *testing.T) {
	svc, _, _ := newTaskFixture(t)
	ctx := context.Background()

	// tsk_review is completed and assigned to john; even as owner he lacks
	// approveTask.
	_, err := svc.Transition(ctx, johnSession, "tsk_review", domain.TaskInProgress)
	if !errors.Is(err, domain.ErrRoleInsufficient) {
		t.Fatalf("expected ErrRoleInsufficient, got %v", err)
	}

	if _, err := svc.Transition(ctx, janeSession, "tsk_review", domain.TaskInProgress); err != nil {
		t.Fatalf("manager reopen: %v", err)
	}
}

func TestTransition_ConcurrentExclusiveTargets(t *testing.T) {
	svc, _, _ := newTaskFixture(t)
	ctx := context.Background()

	// tsk_homepage is in progress; Completed and Pending are both legal now,
	// but whichever lands second must be judged against the new state.
	results := make(chan error, 2)
	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		_, err := svc.Transition(ctx, janeSession, "tsk_homepage", domain.TaskCompleted)
		results <- err
	}()
	go func() {
		defer wg.Done()
		_, err := svc.Transition(ctx, leadSession, "tsk_homepage", domain.TaskPending)
		results <- err
	}()
	wg.Wait()
	close(results)

	var successes, illegal int
	for err := range results {
		switch {
		case err == nil:
			successes++
		case errors.Is(err, domain.ErrIllegalTransition):
			illegal++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || illegal != 1 {
		t.Fatalf("expected exactly one success and one illegal transition, got %d/%d", successes, illegal)
	}
}

func TestLogHours_Invariants(t *testing.T) {
	svc, _, _ := newTaskFixture(t)
	ctx := context.Background()

	// Pending task refuses hours.
	_, err := svc.LogHours(ctx, janeSession, "tsk_api", 2)
	if !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed for pending task, got %v", err)
	}

	// In-progress task accepts a raise.
	task, err := svc.LogHours(ctx, johnSession, "tsk_homepage", 10)
	if err != nil {
		t.Fatalf("log hours: %v", err)
	}
	if task.CompletedHours != 10 {
		t.Fatalf("expected 10 completed hours, got %v", task.CompletedHours)
	}

	// Hours never decrease.
	_, err = svc.LogHours(ctx, johnSession, "tsk_homepage", 9)
	if !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed on decrease, got %v", err)
	}

	// Hours never exceed the estimate.
	_, err = svc.LogHours(ctx, johnSession, "tsk_homepage", 21)
	if !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed above estimate, got %v", err)
	}
}

func TestStartDueTasks_PromotesArrivedOnly(t *testing.T) {
	svc, store, dispatcher := newTaskFixture(t)
	ctx := context.Background()

	// Before the start date nothing moves.
	n, err := svc.StartDueTasks(ctx, time.Now().UTC())
	if err != nil {
		t.Fatalf("start due: %v", err)
	}
	if n != 0 {
		t.Fatalf("expected no promotions yet, got %d", n)
	}

	// At the start date the audit task becomes pending.
	n, err = svc.StartDueTasks(ctx, time.Now().UTC().AddDate(0, 1, 1))
	if err != nil {
		t.Fatalf("start due: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected one promotion, got %d", n)
	}

	task, _ := store.Tasks().GetByID(ctx, "tsk_audit")
	if task.Status != domain.TaskPending {
		t.Fatalf("expected pending, got %s", task.Status)
	}
	if len(dispatcher.byKind(domain.NotifReminder)) != 1 {
		t.Fatal("expected a reminder notification for the promoted task")
	}
}

func TestComments_OwnershipRules(t *testing.T) {
	svc, _, dispatcher := newTaskFixture(t)
	ctx := context.Background()

	// John comments on his own task.
	comment, err := svc.AddComment(ctx, johnSession, "tsk_homepage", "halfway there")
	if err != nil {
		t.Fatalf("add comment: %v", err)
	}

	// John cannot comment on jane's task.
	_, err = svc.AddComment(ctx, johnSession, "tsk_api", "drive-by")
	if !errors.Is(err, domain.ErrNotResourceOwner) {
		t.Fatalf("expected ErrNotResourceOwner, got %v", err)
	}

	// Jane comments on john's task and john gets notified.
	if _, err := svc.AddComment(ctx, janeSession, "tsk_homepage", "looks good"); err != nil {
		t.Fatalf("manager comment: %v", err)
	}
	notes := dispatcher.byKind(domain.NotifComment)
	if len(notes) != 1 || notes[0].RecipientUserID != "usr_john" {
		t.Fatalf("expected comment notification for usr_john, got %+v", notes)
	}

	// Only the author or a super admin deletes a comment.
	if err := svc.DeleteComment(ctx, janeSession, comment.ID); !errors.Is(err, domain.ErrNotResourceOwner) {
		t.Fatalf("expected ErrNotResourceOwner, got %v", err)
	}
	if err := svc.DeleteComment(ctx, superSession, comment.ID); err != nil {
		t.Fatalf("super admin delete: %v", err)
	}
}

func TestQuery_EmployeeScopedToOwnTasks(t *testing.T) {
	svc, _, _ := newTaskFixture(t)

	tasks, err := svc.Query(context.Background(), johnSession, ports.TaskFilter{})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	for _, task := range tasks {
		if task.AssigneeUserID != "usr_john" {
			t.Fatalf("employee query leaked foreign task %s", task.ID)
		}
	}
	if len(tasks) != 2 {
		t.Fatalf("expected john's 2 tasks, got %d", len(tasks))
	}
}
