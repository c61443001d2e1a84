package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

type taskRepo struct {
	store *Store
	mu    sync.RWMutex
	byID  map[string]*domain.Task
	locks *keyedLocks
}

func cloneTask(t *domain.Task) *domain.Task {
	c := *t
	if t.AuditLog != nil {
		c.AuditLog = append([]domain.AuditEntry(nil), t.AuditLog...)
	}
	return &c
}

// validateTaskRefs checks assignee, department, and project references plus
// the hours invariant. Referenced repos are lower in the lock order.
func validateTaskRefs(s *Store, t *domain.Task) error {
	if !s.users.exists(t.AssigneeUserID) {
		return fmt.Errorf("assignee %q: %w", t.AssigneeUserID, domain.ErrDanglingReference)
	}
	if !s.departments.exists(t.DepartmentID) {
		return fmt.Errorf("department %q: %w", t.DepartmentID, domain.ErrDanglingReference)
	}
	if t.ProjectID != "" && !s.projects.exists(t.ProjectID) {
		return fmt.Errorf("project %q: %w", t.ProjectID, domain.ErrDanglingReference)
	}
	if t.EstimatedHours < 0 || t.CompletedHours < 0 {
		return fmt.Errorf("hours must be non-negative: %w", domain.ErrValidationFailed)
	}
	if t.CompletedHours > t.EstimatedHours {
		return fmt.Errorf("completed hours %.1f exceed estimate %.1f: %w",
			t.CompletedHours, t.EstimatedHours, domain.ErrValidationFailed)
	}
	return nil
}

func (r *taskRepo) Create(ctx context.Context, t *domain.Task) (*domain.Task, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := validateTaskRefs(r.store, t); err != nil {
		return nil, err
	}

	c := cloneTask(t)
	if c.ID == "" {
		c.ID = newID("tsk")
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Version = 1
	r.byID[c.ID] = c
	return cloneTask(c), nil
}

func (r *taskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("task %q: %w", id, domain.ErrNotFound)
	}
	return cloneTask(t), nil
}

// List returns a snapshot of tasks matching the filter. It only holds the
// map read lock, so concurrent writers on individual tasks are not blocked.
func (r *taskRepo) List(ctx context.Context, f ports.TaskFilter) ([]*domain.Task, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Task
	for _, t := range r.byID {
		if f.Matches(t) {
			out = append(out, cloneTask(t))
		}
	}
	return out, nil
}

// Update serializes read-modify-write per task id: the per-id lock is held
// across the whole sequence, so two racing transitions on the same task are
// evaluated one after the other, the second against the first's result.
func (r *taskRepo) Update(ctx context.Context, id string, mutate func(*domain.Task) error) (*domain.Task, error) {
	unlock := r.locks.acquire(id)
	defer unlock()

	r.mu.RLock()
	current, ok := r.byID[id]
	var next *domain.Task
	if ok {
		next = cloneTask(current)
	}
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("task %q: %w", id, domain.ErrNotFound)
	}

	if err := mutate(next); err != nil {
		return nil, err
	}
	if err := validateTaskRefs(r.store, next); err != nil {
		return nil, err
	}

	next.ID = id
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	next.Version = current.Version + 1

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return nil, fmt.Errorf("task %q: %w", id, domain.ErrNotFound)
	}
	r.byID[id] = next
	return cloneTask(next), nil
}

func (r *taskRepo) Delete(ctx context.Context, id string) error {
	unlock := r.locks.acquire(id)
	defer unlock()

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("task %q: %w", id, domain.ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}

func (r *taskRepo) anyInDepartment(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.byID {
		if t.DepartmentID == id {
			return true
		}
	}
	return false
}

func (r *taskRepo) anyInProject(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, t := range r.byID {
		if t.ProjectID == id {
			return true
		}
	}
	return false
}

type commentRepo struct {
	store *Store
	mu    sync.RWMutex
	byID  map[string]*domain.Comment
}

func cloneComment(c *domain.Comment) *domain.Comment {
	cc := *c
	return &cc
}

func (r *commentRepo) Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, err := r.store.tasks.GetByID(ctx, c.TaskID); err != nil {
		return nil, fmt.Errorf("task %q: %w", c.TaskID, domain.ErrDanglingReference)
	}
	if !r.store.users.exists(c.AuthorUserID) {
		return nil, fmt.Errorf("author %q: %w", c.AuthorUserID, domain.ErrDanglingReference)
	}

	cc := cloneComment(c)
	if cc.ID == "" {
		cc.ID = newID("cmt")
	}
	cc.CreatedAt = time.Now().UTC()
	r.byID[cc.ID] = cc
	return cloneComment(cc), nil
}

func (r *commentRepo) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("comment %q: %w", id, domain.ErrNotFound)
	}
	return cloneComment(c), nil
}

func (r *commentRepo) ListByTask(ctx context.Context, taskID string) ([]*domain.Comment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*domain.Comment
	for _, c := range r.byID {
		if c.TaskID == taskID {
			out = append(out, cloneComment(c))
		}
	}
	return out, nil
}

func (r *commentRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("comment %q: %w", id, domain.ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}
