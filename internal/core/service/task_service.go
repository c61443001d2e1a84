package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

// NotifyDispatcher is the interface the lifecycle manager uses to hand off
// notification side effects. Delivery happens after the store commit, never
// inside a lock-held critical section.
type NotifyDispatcher interface {
	Enqueue(in ports.NotifyInput)
}

// TaskService is the task lifecycle manager: it enforces the status state
// machine, assignment rules, and hour invariants, consulting the permission
// engine before every mutation.
type TaskService struct {
	store      ports.Store
	authorizer ports.Authorizer
	dispatcher NotifyDispatcher
	log        zerolog.Logger
}

func NewTaskService(store ports.Store, authorizer ports.Authorizer, dispatcher NotifyDispatcher, log zerolog.Logger) *TaskService {
	return &TaskService{store: store, authorizer: authorizer, dispatcher: dispatcher, log: log}
}

func taskResource(t *domain.Task) *ports.Resource {
	return &ports.Resource{Kind: "task", ID: t.ID, OwnerUserID: t.AssigneeUserID}
}

// notifyPriority maps task priority onto notification prominence.
func notifyPriority(p domain.TaskPriority) domain.NotificationPriority {
	switch p {
	case domain.PriorityUrgent, domain.PriorityHigh:
		return domain.NotifHigh
	case domain.PriorityMedium:
		return domain.NotifMedium
	default:
		return domain.NotifLow
	}
}

func (s *TaskService) Create(ctx context.Context, session *domain.Session, in ports.CreateTaskInput) (*domain.Task, error) {
	if err := s.authorizer.Authorize(session, domain.ActionCreateTask, nil).Err(); err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, fmt.Errorf("title is required: %w", domain.ErrValidationFailed)
	}
	if !in.Priority.Valid() {
		return nil, fmt.Errorf("priority %q: %w", in.Priority, domain.ErrValidationFailed)
	}

	now := time.Now().UTC()
	status := domain.TaskPending
	if !in.StartAt.IsZero() && in.StartAt.After(now) {
		status = domain.TaskUpcoming
	}

	task, err := s.store.Tasks().Create(ctx, &domain.Task{
		Title:          in.Title,
		Description:    in.Description,
		Priority:       in.Priority,
		Status:         status,
		AssigneeUserID: in.AssigneeUserID,
		DepartmentID:   in.DepartmentID,
		ProjectID:      in.ProjectID,
		DueDate:        in.DueDate,
		StartAt:        in.StartAt,
		EstimatedHours: in.EstimatedHours,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("task_id", task.ID).Str("assignee", task.AssigneeUserID).Str("actor", session.Username).Msg("task created")
	s.dispatcher.Enqueue(ports.NotifyInput{
		RecipientUserID: task.AssigneeUserID,
		Kind:            domain.NotifTaskAssigned,
		Priority:        notifyPriority(task.Priority),
		Title:           "New task assigned",
		Message:         fmt.Sprintf("You have been assigned %q", task.Title),
		RelatedEntityID: task.ID,
	})
	return task, nil
}

func (s *TaskService) Get(ctx context.Context, session *domain.Session, id string) (*domain.Task, error) {
	task, err := s.store.Tasks().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(session, task); err != nil {
		return nil, err
	}
	return task, nil
}

// Query returns tasks matching the filter. Employees always see their own
// scope regardless of the filter they pass.
func (s *TaskService) Query(ctx context.Context, session *domain.Session, f ports.TaskFilter) ([]*domain.Task, error) {
	if session.Role == domain.RoleEmployee {
		if err := s.authorizer.Authorize(session, domain.ActionViewOwnTasks, nil).Err(); err != nil {
			return nil, err
		}
		f.AssigneeUserID = session.UserID
	} else if err := s.authorizer.Authorize(session, domain.ActionViewReports, nil).Err(); err != nil {
		return nil, err
	}
	return s.store.Tasks().List(ctx, f)
}

func (s *TaskService) Update(ctx context.Context, session *domain.Session, id string, in ports.UpdateTaskInput) (*domain.Task, error) {
	var reassignedTo string

	task, err := s.store.Tasks().Update(ctx, id, func(t *domain.Task) error {
		action := domain.ActionEditTask
		if in.AssigneeUserID != nil && *in.AssigneeUserID != t.AssigneeUserID {
			action = domain.ActionAssignTask
		}
		if err := s.authorizer.Authorize(session, action, taskResource(t)).Err(); err != nil {
			return err
		}

		if in.Title != nil {
			if *in.Title == "" {
				return fmt.Errorf("title is required: %w", domain.ErrValidationFailed)
			}
			t.Title = *in.Title
		}
		if in.Description != nil {
			t.Description = *in.Description
		}
		if in.Priority != nil {
			if !in.Priority.Valid() {
				return fmt.Errorf("priority %q: %w", *in.Priority, domain.ErrValidationFailed)
			}
			t.Priority = *in.Priority
		}
		if in.AssigneeUserID != nil && *in.AssigneeUserID != t.AssigneeUserID {
			t.AssigneeUserID = *in.AssigneeUserID
			reassignedTo = *in.AssigneeUserID
		}
		if in.DueDate != nil {
			t.DueDate = *in.DueDate
		}
		if in.EstimatedHours != nil {
			t.EstimatedHours = *in.EstimatedHours
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if reassignedTo != "" {
		s.dispatcher.Enqueue(ports.NotifyInput{
			RecipientUserID: reassignedTo,
			Kind:            domain.NotifTaskAssigned,
			Priority:        notifyPriority(task.Priority),
			Title:           "Task reassigned to you",
			Message:         fmt.Sprintf("You are now the assignee of %q", task.Title),
			RelatedEntityID: task.ID,
		})
	}
	return task, nil
}

// Transition moves the task along a state machine edge. Authorization and
// edge validation run under the task's lock against the current state, so
// two racing transitions serialize and the loser is judged against the
// winner's result.
func (s *TaskService) Transition(ctx context.Context, session *domain.Session, id string, target domain.TaskStatus) (*domain.Task, error) {
	if !target.Valid() {
		return nil, fmt.Errorf("status %q: %w", target, domain.ErrValidationFailed)
	}

	var from domain.TaskStatus
	task, err := s.store.Tasks().Update(ctx, id, func(t *domain.Task) error {
		action := domain.ActionEditTask
		if t.Status == domain.TaskCompleted && target == domain.TaskInProgress {
			// Reopening a completed task needs approval rights.
			action = domain.ActionApproveTask
		}
		if err := s.authorizer.Authorize(session, action, taskResource(t)).Err(); err != nil {
			return err
		}
		if !t.Status.CanTransitionTo(target) {
			return fmt.Errorf("%s -> %s: %w", t.Status, target, domain.ErrIllegalTransition)
		}

		from = t.Status
		t.AuditLog = append(t.AuditLog, domain.AuditEntry{
			ActorID:   session.UserID,
			Actor:     session.Username,
			From:      t.Status,
			To:        target,
			Timestamp: time.Now().UTC(),
		})
		t.Status = target
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().
		Str("task_id", task.ID).
		Str("from", string(from)).
		Str("to", string(target)).
		Str("actor", session.Username).
		Msg("task transition")

	if task.AssigneeUserID != session.UserID {
		s.dispatcher.Enqueue(ports.NotifyInput{
			RecipientUserID: task.AssigneeUserID,
			Kind:            domain.NotifProjectUpdate,
			Priority:        notifyPriority(task.Priority),
			Title:           "Task status changed",
			Message:         fmt.Sprintf("%q moved from %s to %s", task.Title, from, target),
			RelatedEntityID: task.ID,
		})
	}
	return task, nil
}

// LogHours raises completedHours. Hours only move forward and only while the
// task is in progress or completed; the store enforces the estimate ceiling.
func (s *TaskService) LogHours(ctx context.Context, session *domain.Session, id string, completedHours float64) (*domain.Task, error) {
	return s.store.Tasks().Update(ctx, id, func(t *domain.Task) error {
		if err := s.authorizer.Authorize(session, domain.ActionEditTask, taskResource(t)).Err(); err != nil {
			return err
		}
		if t.Status != domain.TaskInProgress && t.Status != domain.TaskCompleted {
			return fmt.Errorf("hours only accrue in progress or completed, task is %s: %w", t.Status, domain.ErrValidationFailed)
		}
		if completedHours < t.CompletedHours {
			return fmt.Errorf("completed hours cannot decrease (%.1f -> %.1f): %w", t.CompletedHours, completedHours, domain.ErrValidationFailed)
		}
		t.CompletedHours = completedHours
		return nil
	})
}

func (s *TaskService) Delete(ctx context.Context, session *domain.Session, id string) error {
	task, err := s.store.Tasks().GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.authorizer.Authorize(session, domain.ActionEditTask, taskResource(task)).Err(); err != nil {
		return err
	}
	return s.store.Tasks().Delete(ctx, id)
}

// StartDueTasks promotes upcoming tasks whose start time has arrived. It is
// driven by the scheduler, acts as the system, and stamps audit entries under
// the scheduler's name.
func (s *TaskService) StartDueTasks(ctx context.Context, now time.Time) (int, error) {
	upcoming, err := s.store.Tasks().List(ctx, ports.TaskFilter{Status: domain.TaskUpcoming})
	if err != nil {
		return 0, err
	}

	started := 0
	for _, candidate := range upcoming {
		if err := ctx.Err(); err != nil {
			return started, err
		}
		if !candidate.StartAt.IsZero() && candidate.StartAt.After(now) {
			continue
		}

		task, err := s.store.Tasks().Update(ctx, candidate.ID, func(t *domain.Task) error {
			// Re-check under the lock; a user may have raced us.
			if !t.Status.CanTransitionTo(domain.TaskPending) {
				return fmt.Errorf("%s -> %s: %w", t.Status, domain.TaskPending, domain.ErrIllegalTransition)
			}
			t.AuditLog = append(t.AuditLog, domain.AuditEntry{
				Actor:     "scheduler",
				From:      t.Status,
				To:        domain.TaskPending,
				Timestamp: now,
			})
			t.Status = domain.TaskPending
			return nil
		})
		if err != nil {
			s.log.Warn().Err(err).Str("task_id", candidate.ID).Msg("skip promoting upcoming task")
			continue
		}

		started++
		s.dispatcher.Enqueue(ports.NotifyInput{
			RecipientUserID: task.AssigneeUserID,
			Kind:            domain.NotifReminder,
			Priority:        notifyPriority(task.Priority),
			Title:           "Task ready to start",
			Message:         fmt.Sprintf("%q is now pending", task.Title),
			RelatedEntityID: task.ID,
		})
	}
	return started, nil
}

func (s *TaskService) AddComment(ctx context.Context, session *domain.Session, taskID, body string) (*domain.Comment, error) {
	if body == "" {
		return nil, fmt.Errorf("comment body is required: %w", domain.ErrValidationFailed)
	}

	task, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	action := domain.ActionEditTask
	if session.Role == domain.RoleEmployee {
		action = domain.ActionCommentOnOwnTask
	}
	if err := s.authorizer.Authorize(session, action, taskResource(task)).Err(); err != nil {
		return nil, err
	}

	comment, err := s.store.Comments().Create(ctx, &domain.Comment{
		TaskID:       taskID,
		AuthorUserID: session.UserID,
		Body:         body,
	})
	if err != nil {
		return nil, err
	}

	if task.AssigneeUserID != session.UserID {
		s.dispatcher.Enqueue(ports.NotifyInput{
			RecipientUserID: task.AssigneeUserID,
			Kind:            domain.NotifComment,
			Priority:        domain.NotifLow,
			Title:           "New comment",
			Message:         fmt.Sprintf("%s commented on %q", session.Username, task.Title),
			RelatedEntityID: taskID,
		})
	}
	return comment, nil
}

func (s *TaskService) ListComments(ctx context.Context, session *domain.Session, taskID string) ([]*domain.Comment, error) {
	task, err := s.store.Tasks().GetByID(ctx, taskID)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeView(session, task); err != nil {
		return nil, err
	}
	return s.store.Comments().ListByTask(ctx, taskID)
}

// DeleteComment removes a comment. Comments are immutable otherwise; only
// the author or a super admin may delete one.
func (s *TaskService) DeleteComment(ctx context.Context, session *domain.Session, commentID string) error {
	comment, err := s.store.Comments().GetByID(ctx, commentID)
	if err != nil {
		return err
	}
	if session.Role != domain.RoleSuperAdmin && comment.AuthorUserID != session.UserID {
		return domain.ErrNotResourceOwner
	}
	return s.store.Comments().Delete(ctx, commentID)
}

func (s *TaskService) authorizeView(session *domain.Session, task *domain.Task) error {
	if session.Role == domain.RoleEmployee {
		return s.authorizer.Authorize(session, domain.ActionViewOwnTasks, taskResource(task)).Err()
	}
	return s.authorizer.Authorize(session, domain.ActionViewReports, nil).Err()
}
