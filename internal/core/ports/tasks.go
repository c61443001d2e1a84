package ports

import (
	"context"
	"time"

	"github.com/taskflow/taskflow-core/internal/core/domain"
)

// CreateTaskInput carries all data needed to create a task.
type CreateTaskInput struct {
	Title          string
	Description    string
	Priority       domain.TaskPriority
	AssigneeUserID string
	DepartmentID   string
	ProjectID      string
	DueDate        time.Time
	// StartAt in the future places the task in the upcoming state until the
	// scheduled check promotes it.
	StartAt        time.Time
	EstimatedHours float64
}

// UpdateTaskInput is a sparse patch; nil fields are left unchanged.
type UpdateTaskInput struct {
	Title          *string
	Description    *string
	Priority       *domain.TaskPriority
	AssigneeUserID *string
	DueDate        *time.Time
	EstimatedHours *float64
}

// TaskService is the task lifecycle manager.
type TaskService interface {
	Create(ctx context.Context, session *domain.Session, in CreateTaskInput) (*domain.Task, error)
	Get(ctx context.Context, session *domain.Session, id string) (*domain.Task, error)
	Query(ctx context.Context, session *domain.Session, f TaskFilter) ([]*domain.Task, error)
	Update(ctx context.Context, session *domain.Session, id string, in UpdateTaskInput) (*domain.Task, error)
	// Transition moves the task along a state machine edge, stamping an
	// audit entry and dispatching a notification on success.
	Transition(ctx context.Context, session *domain.Session, id string, target domain.TaskStatus) (*domain.Task, error)
	// LogHours raises completedHours; it never decreases and never exceeds
	// estimatedHours, and only tasks in progress or completed accept hours.
	LogHours(ctx context.Context, session *domain.Session, id string, completedHours float64) (*domain.Task, error)
	Delete(ctx context.Context, session *domain.Session, id string) error
	// StartDueTasks promotes upcoming tasks whose start time has arrived.
	// Invoked by the scheduler, not by user requests.
	StartDueTasks(ctx context.Context, now time.Time) (int, error)

	AddComment(ctx context.Context, session *domain.Session, taskID, body string) (*domain.Comment, error)
	ListComments(ctx context.Context, session *domain.Session, taskID string) ([]*domain.Comment, error)
	DeleteComment(ctx context.Context, session *domain.Session, commentID string) error
}
