package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
	"github.com/taskflow/taskflow-core/internal/store/memory"
)

func sampleTasks() []*domain.Task {
	return []*domain.Task{
		{ID: "a", Title: "Design review", Status: domain.TaskCompleted, Priority: domain.PriorityHigh, AssigneeUserID: "u1"},
		{ID: "b", Title: "Deploy staging", Status: domain.TaskCompleted, Priority: domain.PriorityLow, AssigneeUserID: "u1"},
		{ID: "c", Title: "Design tokens", Description: "color palette", Status: domain.TaskPending, Priority: domain.PriorityHigh, AssigneeUserID: "u2"},
	}
}

func TestFilterTasks_AndSemantics(t *testing.T) {
	got := FilterTasks(sampleTasks(), ports.TaskFilter{
		Status:   domain.TaskCompleted,
		Priority: domain.PriorityHigh,
	})
	if len(got) != 1 || got[0].ID != "a" {
		t.Fatalf("expected exactly task a, got %+v", got)
	}
}

func TestFilterTasks_SearchCaseInsensitive(t *testing.T) {
	got := FilterTasks(sampleTasks(), ports.TaskFilter{Search: "DESIGN"})
	if len(got) != 2 {
		t.Fatalf("expected 2 matches on title, got %d", len(got))
	}
	got = FilterTasks(sampleTasks(), ports.TaskFilter{Search: "palette"})
	if len(got) != 1 || got[0].ID != "c" {
		t.Fatalf("expected description match on c, got %+v", got)
	}
}

func TestCompletionRate_EmptyIsZero(t *testing.T) {
	if rate := CompletionRate(nil); rate != 0 {
		t.Fatalf("empty set must be 0, got %v", rate)
	}
	if rate := CompletionRate(sampleTasks()); rate != 2.0/3.0 {
		t.Fatalf("expected 2/3, got %v", rate)
	}
}

func TestPerEmployeeRollup(t *testing.T) {
	rollups := PerEmployeeRollup(sampleTasks())
	u1 := rollups["u1"]
	if u1.Assigned != 2 || u1.Completed != 2 || u1.Pending != 0 {
		t.Fatalf("u1 rollup wrong: %+v", u1)
	}
	u2 := rollups["u2"]
	if u2.Assigned != 1 || u2.Pending != 1 {
		t.Fatalf("u2 rollup wrong: %+v", u2)
	}
}

func TestAggregation_Deterministic(t *testing.T) {
	tasks := sampleTasks()
	first := CountByStatus(tasks)
	second := CountByStatus(tasks)
	for k, v := range first {
		if second[k] != v {
			t.Fatalf("count by status not deterministic for %s", k)
		}
	}
}

func newReportFixture(t *testing.T) (*ReportService, *memory.Store) {
	t.Helper()
	store := memory.New()
	if err := memory.Seed(context.Background(), store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return NewReportService(store, NewAuthorizer(), zerolog.Nop()), store
}

func TestProjectProgress_DerivedNotStored(t *testing.T) {
	svc, store := newReportFixture(t)
	ctx := context.Background()

	// prj_redesign has one completed task out of two.
	progress, err := svc.Progress(ctx, leadSession, "prj_redesign")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.TotalTasks != 2 || progress.CompletedTasks != 1 || progress.Percent != 50 {
		t.Fatalf("unexpected progress: %+v", progress)
	}

	// Completing the other task moves the derived value with no extra write.
	if _, err := store.Tasks().Update(ctx, "tsk_homepage", func(task *domain.Task) error {
		task.Status = domain.TaskCompleted
		task.CompletedHours = task.EstimatedHours
		return nil
	}); err != nil {
		t.Fatalf("complete task: %v", err)
	}

	progress, err = svc.Progress(ctx, leadSession, "prj_redesign")
	if err != nil {
		t.Fatalf("progress: %v", err)
	}
	if progress.Percent != 100 {
		t.Fatalf("expected 100%%, got %v", progress.Percent)
	}
}

func TestSummary_EmployeeOwnScope(t *testing.T) {
	svc, _ := newReportFixture(t)

	summary, err := svc.Summary(context.Background(), johnSession, ports.TaskFilter{})
	if err != nil {
		t.Fatalf("summary: %v", err)
	}
	if summary.Total != 2 {
		t.Fatalf("employee summary must cover own tasks only, got %d", summary.Total)
	}
}

func TestDepartmentReports_Cancellation(t *testing.T) {
	svc, _ := newReportFixture(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.DepartmentReports(ctx, superSession)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestDepartmentReports_Counts(t *testing.T) {
	svc, _ := newReportFixture(t)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	reports, err := svc.DepartmentReports(ctx, superSession)
	if err != nil {
		t.Fatalf("reports: %v", err)
	}
	byName := map[string]ports.DepartmentReport{}
	for _, r := range reports {
		byName[r.Name] = r
	}
	design := byName["Design"]
	if design.Members != 2 || design.Projects != 1 || design.Tasks.Total != 2 {
		t.Fatalf("design report wrong: %+v", design)
	}
}
