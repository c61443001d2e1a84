package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

type departmentRepo struct {
	store *Store
	col   *mongo.Collection
}

func (r *departmentRepo) Create(ctx context.Context, d *domain.Department) (*domain.Department, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ok, err := exists(ctx, r.store.users.col, d.HeadUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("head user %q: %w", d.HeadUserID, domain.ErrDanglingReference)
	}
	n, err := r.col.CountDocuments(ctx, bson.M{"name": d.Name})
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("department name %q already taken: %w", d.Name, domain.ErrValidationFailed)
	}

	c := *d
	if c.ID == "" {
		c.ID = newID("dep")
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *departmentRepo) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var d domain.Department
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("department %q: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &d, nil
}

func (r *departmentRepo) List(ctx context.Context) ([]*domain.Department, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var out []*domain.Department
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *departmentRepo) Update(ctx context.Context, id string, mutate func(*domain.Department) error) (*domain.Department, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *current
	if err := mutate(&next); err != nil {
		return nil, err
	}
	ok, err := exists(ctx, r.store.users.col, next.HeadUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("head user %q: %w", next.HeadUserID, domain.ErrDanglingReference)
	}
	n, err := r.col.CountDocuments(ctx, bson.M{"name": next.Name, "_id": bson.M{"$ne": id}})
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("department name %q already taken: %w", next.Name, domain.ErrValidationFailed)
	}

	next.ID = id
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": id}, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (r *departmentRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	for _, dep := range []*mongo.Collection{r.store.users.col, r.store.projects.col, r.store.tasks.col} {
		n, err := dep.CountDocuments(ctx, bson.M{"department_id": id})
		if err != nil {
			return err
		}
		if n > 0 {
			return fmt.Errorf("department %q: %w", id, domain.ErrDepartmentNotEmpty)
		}
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("department %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

type clientRepo struct {
	store *Store
	col   *mongo.Collection
}

func (r *clientRepo) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cc := *c
	if cc.ID == "" {
		cc.ID = newID("cli")
	}
	now := time.Now().UTC()
	cc.CreatedAt = now
	cc.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, &cc); err != nil {
		return nil, err
	}
	return &cc, nil
}

func (r *clientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var c domain.Client
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("client %q: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &c, nil
}

func (r *clientRepo) List(ctx context.Context) ([]*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	var out []*domain.Client
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *clientRepo) Update(ctx context.Context, id string, mutate func(*domain.Client) error) (*domain.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *current
	if err := mutate(&next); err != nil {
		return nil, err
	}
	next.ID = id
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": id}, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (r *clientRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.store.projects.col.CountDocuments(ctx, bson.M{"client_id": id})
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("client %q still has projects: %w", id, domain.ErrValidationFailed)
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("client %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

type projectRepo struct {
	store *Store
	col   *mongo.Collection
}

func (r *projectRepo) validateRefs(ctx context.Context, p *domain.Project) error {
	ok, err := exists(ctx, r.store.departments.col, p.DepartmentID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("department %q: %w", p.DepartmentID, domain.ErrDanglingReference)
	}
	if p.ClientID != "" {
		ok, err := exists(ctx, r.store.clients.col, p.ClientID)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("client %q: %w", p.ClientID, domain.ErrDanglingReference)
		}
	}
	for _, uid := range p.TeamMemberIDs {
		ok, err := exists(ctx, r.store.users.col, uid)
		if err != nil {
			return err
		}
		if !ok {
			return fmt.Errorf("team member %q: %w", uid, domain.ErrDanglingReference)
		}
	}
	return nil
}

func (r *projectRepo) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	if err := r.validateRefs(ctx, p); err != nil {
		return nil, err
	}

	c := *p
	if c.ID == "" {
		c.ID = newID("prj")
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var p domain.Project
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &p, nil
}

func (r *projectRepo) List(ctx context.Context, f ports.ProjectFilter) ([]*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.DepartmentID != "" {
		filter["department_id"] = f.DepartmentID
	}
	if f.ClientID != "" {
		filter["client_id"] = f.ClientID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var out []*domain.Project
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) Update(ctx context.Context, id string, mutate func(*domain.Project) error) (*domain.Project, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *current
	next.TeamMemberIDs = append([]string(nil), current.TeamMemberIDs...)
	if err := mutate(&next); err != nil {
		return nil, err
	}
	if err := r.validateRefs(ctx, &next); err != nil {
		return nil, err
	}
	next.ID = id
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": id}, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (r *projectRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.store.tasks.col.CountDocuments(ctx, bson.M{"project_id": id})
	if err != nil {
		return err
	}
	if n > 0 {
		return fmt.Errorf("project %q still has tasks: %w", id, domain.ErrValidationFailed)
	}

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
	}
	return nil
}
