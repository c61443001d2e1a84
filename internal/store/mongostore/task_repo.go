package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

// casAttempts bounds the compare-and-swap retry loop on task updates. Version
// conflicts only occur under write contention on a single task, so a handful
// of retries is plenty.
const casAttempts = 5

type taskRepo struct {
	store *Store
	col   *mongo.Collection
}

func (r *taskRepo) validateRefs(ctx context.Context, t *domain.Task) error {
	ok, err := exists(ctx, r.store.users.col, t.AssigneeUserID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("assignee %q: %w", t.AssigneeUserID, domain.ErrDanglingReference)
	}
	ok, err = exists(ctx, r.store.departments.col, t.DepartmentID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("department %q: %w", t.DepartmentID, domain.ErrDanglingReference)
	}
	if t.ProjectID != "" {
		ok, err := exists(ctx, r.store.projects.col, t.ProjectID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("project %q: %w", t.ProjectID, domain.ErrDanglingReference)
		}
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
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := r.validateRefs(ctx, t); err != nil {
		return nil, err
	}

	c := *t
	if c.ID == "" {
		c.ID = newID("tsk")
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	c.Version = 1
	if _, err := r.col.InsertOne(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *taskRepo) GetByID(ctx context.Context, id string) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var t domain.Task
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&t); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("task %q: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &t, nil
}

func (r *taskRepo) List(ctx context.Context, f ports.TaskFilter) ([]*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.DepartmentID != "" {
		filter["department_id"] = f.DepartmentID
	}
	if f.AssigneeUserID != "" {
		filter["assignee_user_id"] = f.AssigneeUserID
	}
	if f.ProjectID != "" {
		filter["project_id"] = f.ProjectID
	}
	if f.Search != "" {
		needle := regexp.QuoteMeta(f.Search)
		filter["$or"] = bson.A{
			bson.M{"title": bson.M{"$regex": needle, "$options": "i"}},
			bson.M{"description": bson.M{"$regex": needle, "$options": "i"}},
		}
	}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var out []*domain.Task
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Update applies mutate under optimistic concurrency: the replace only
// succeeds when the stored version still matches the one read, otherwise the
// loop re-reads and re-runs mutate against the fresh state.
func (r *taskRepo) Update(ctx context.Context, id string, mutate func(*domain.Task) error) (*domain.Task, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for attempt := 0; attempt < casAttempts; attempt++ {
		current, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		next := *current
		next.AuditLog = append([]domain.AuditEntry(nil), current.AuditLog...)
		if err := mutate(&next); err != nil {
			return nil, err
		}
		if err := r.validateRefs(ctx, &next); err != nil {
			return nil, err
		}

		next.ID = id
		next.CreatedAt = current.CreatedAt
		next.UpdatedAt = time.Now().UTC()
		next.Version = current.Version + 1

		res, err := r.col.ReplaceOne(ctx, bson.M{"_id": id, "version": current.Version}, &next)
		if err != nil {
			return nil, err
		}
		if res.ModifiedCount == 1 {
			return &next, nil
		}
		// Version moved under us; retry against the new state.
	}
	return nil, fmt.Errorf("task %q: update contention not resolved after %d attempts", id, casAttempts)
}

func (r *taskRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("task %q: %w", id, domain.ErrNotFound)
	}
	_, err = r.store.comments.col.DeleteMany(ctx, bson.M{"task_id": id})
	return err
}

type commentRepo struct {
	store *Store
	col   *mongo.Collection
}

func (r *commentRepo) Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ok, err := exists(ctx, r.store.tasks.col, c.TaskID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("task %q: %w", c.TaskID, domain.ErrDanglingReference)
	}
	ok, err = exists(ctx, r.store.users.col, c.AuthorUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("author %q: %w", c.AuthorUserID, domain.ErrDanglingReference)
	}

	cc := *c
	if cc.ID == "" {
		cc.ID = newID("cmt")
	}
	cc.CreatedAt = time.Now().UTC()
	if _, err := r.col.InsertOne(ctx, &cc); err != nil {
		return nil, err
	}
	return &cc, nil
}

func (r *commentRepo) GetByID(ctx context.Context, id string) (*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Comment
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("comment %q: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

func (r *commentRepo) ListByTask(ctx context.Context, taskID string) ([]*domain.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{"task_id": taskID})
	if err != nil {
		return nil, err
	}
	var out []*domain.Comment
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *commentRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("comment %q: %w", id, domain.ErrNotFound)
	}
	return nil
}
