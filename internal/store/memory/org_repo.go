package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

// Lock nesting between collections follows a fixed order so cross-collection
// referential checks cannot deadlock: notifications > comments > tasks >
// projects > users > clients > departments. A repo holding its own mutex only
// calls into repos lower in the order; dependent-count checks that would
// violate the order (department/client/project deletes) run before the
// deleting repo takes its own mutex.

type departmentRepo struct {
	store *Store
	mu    sync.RWMutex
	byID  map[string]*domain.Department
}

func cloneDepartment(d *domain.Department) *domain.Department {
	c := *d
	return &c
}

func (r *departmentRepo) Create(ctx context.Context, d *domain.Department) (*domain.Department, error) {
	// Head check runs outside r.mu: users sits above departments in the
	// lock order.
	if !r.store.users.exists(d.HeadUserID) {
		return nil, fmt.Errorf("head user %q: %w", d.HeadUserID, domain.ErrDanglingReference)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Name == d.Name {
			return nil, fmt.Errorf("department name %q already taken: %w", d.Name, domain.ErrValidationFailed)
		}
	}

	c := cloneDepartment(d)
	if c.ID == "" {
		c.ID = newID("dep")
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.byID[c.ID] = c
	return cloneDepartment(c), nil
}

func (r *departmentRepo) GetByID(ctx context.Context, id string) (*domain.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("department %q: %w", id, domain.ErrNotFound)
	}
	return cloneDepartment(d), nil
}

func (r *departmentRepo) List(ctx context.Context) ([]*domain.Department, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Department, 0, len(r.byID))
	for _, d := range r.byID {
		out = append(out, cloneDepartment(d))
	}
	return out, nil
}

func (r *departmentRepo) Update(ctx context.Context, id string, mutate func(*domain.Department) error) (*domain.Department, error) {
	r.mu.Lock()
	current, ok := r.byID[id]
	if !ok {
		r.mu.Unlock()
		return nil, fmt.Errorf("department %q: %w", id, domain.ErrNotFound)
	}
	next := cloneDepartment(current)
	r.mu.Unlock()

	if err := mutate(next); err != nil {
		return nil, err
	}
	if !r.store.users.exists(next.HeadUserID) {
		return nil, fmt.Errorf("head user %q: %w", next.HeadUserID, domain.ErrDanglingReference)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok = r.byID[id]
	if !ok {
		return nil, fmt.Errorf("department %q: %w", id, domain.ErrNotFound)
	}
	for _, existing := range r.byID {
		if existing.ID != id && existing.Name == next.Name {
			return nil, fmt.Errorf("department name %q already taken: %w", next.Name, domain.ErrValidationFailed)
		}
	}
	next.ID = id
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	r.byID[id] = next
	return cloneDepartment(next), nil
}

func (r *departmentRepo) Delete(ctx context.Context, id string) error {
	if !r.exists(id) {
		return fmt.Errorf("department %q: %w", id, domain.ErrNotFound)
	}
	if r.store.users.anyInDepartment(id) || r.store.projects.anyInDepartment(id) || r.store.tasks.anyInDepartment(id) {
		return fmt.Errorf("department %q: %w", id, domain.ErrDepartmentNotEmpty)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("department %q: %w", id, domain.ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}

func (r *departmentRepo) exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok
}

type clientRepo struct {
	store *Store
	mu    sync.RWMutex
	byID  map[string]*domain.Client
}

func cloneClient(c *domain.Client) *domain.Client {
	cc := *c
	return &cc
}

func (r *clientRepo) Create(ctx context.Context, c *domain.Client) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	cc := cloneClient(c)
	if cc.ID == "" {
		cc.ID = newID("cli")
	}
	now := time.Now().UTC()
	cc.CreatedAt = now
	cc.UpdatedAt = now
	r.byID[cc.ID] = cc
	return cloneClient(cc), nil
}

func (r *clientRepo) GetByID(ctx context.Context, id string) (*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("client %q: %w", id, domain.ErrNotFound)
	}
	return cloneClient(c), nil
}

func (r *clientRepo) List(ctx context.Context) ([]*domain.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*domain.Client, 0, len(r.byID))
	for _, c := range r.byID {
		out = append(out, cloneClient(c))
	}
	return out, nil
}

func (r *clientRepo) Update(ctx context.Context, id string, mutate func(*domain.Client) error) (*domain.Client, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("client %q: %w", id, domain.ErrNotFound)
	}
	next := cloneClient(current)
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.ID = id
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	r.byID[id] = next
	return cloneClient(next), nil
}

func (r *clientRepo) Delete(ctx context.Context, id string) error {
	if !r.exists(id) {
		return fmt.Errorf("client %q: %w", id, domain.ErrNotFound)
	}
	if r.store.projects.anyForClient(id) {
		return fmt.Errorf("client %q still has projects: %w", id, domain.ErrValidationFailed)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("client %q: %w", id, domain.ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}

func (r *clientRepo) exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok
}

type projectRepo struct {
	store *Store
	mu    sync.RWMutex
	byID  map[string]*domain.Project
}

func cloneProject(p *domain.Project) *domain.Project {
	c := *p
	if p.TeamMemberIDs != nil {
		c.TeamMemberIDs = append([]string(nil), p.TeamMemberIDs...)
	}
	return &c
}

// validateProjectRefs checks department, client, and team member references.
// Callers hold r.mu; every referenced repo is lower in the lock order.
func (r *projectRepo) validateProjectRefs(p *domain.Project) error {
	if !r.store.departments.exists(p.DepartmentID) {
		return fmt.Errorf("department %q: %w", p.DepartmentID, domain.ErrDanglingReference)
	}
	if p.ClientID != "" && !r.store.clients.exists(p.ClientID) {
		return fmt.Errorf("client %q: %w", p.ClientID, domain.ErrDanglingReference)
	}
	for _, uid := range p.TeamMemberIDs {
		if !r.store.users.exists(uid) {
			return fmt.Errorf("team member %q: %w", uid, domain.ErrDanglingReference)
		}
	}
	return nil
}

func (r *projectRepo) Create(ctx context.Context, p *domain.Project) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.validateProjectRefs(p); err != nil {
		return nil, err
	}

	c := cloneProject(p)
	if c.ID == "" {
		c.ID = newID("prj")
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.byID[c.ID] = c
	return cloneProject(c), nil
}

func (r *projectRepo) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
	}
	return cloneProject(p), nil
}

func (r *projectRepo) List(ctx context.Context, f ports.ProjectFilter) ([]*domain.Project, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Project
	for _, p := range r.byID {
		if f.DepartmentID != "" && p.DepartmentID != f.DepartmentID {
			continue
		}
		if f.ClientID != "" && p.ClientID != f.ClientID {
			continue
		}
		if f.Status != "" && p.Status != f.Status {
			continue
		}
		out = append(out, cloneProject(p))
	}
	return out, nil
}

func (r *projectRepo) Update(ctx context.Context, id string, mutate func(*domain.Project) error) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
	}
	next := cloneProject(current)
	if err := mutate(next); err != nil {
		return nil, err
	}
	if err := r.validateProjectRefs(next); err != nil {
		return nil, err
	}
	next.ID = id
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	r.byID[id] = next
	return cloneProject(next), nil
}

func (r *projectRepo) Delete(ctx context.Context, id string) error {
	if !r.exists(id) {
		return fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
	}
	if r.store.tasks.anyInProject(id) {
		return fmt.Errorf("project %q still has tasks: %w", id, domain.ErrValidationFailed)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("project %q: %w", id, domain.ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}

func (r *projectRepo) exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok
}

func (r *projectRepo) anyInDepartment(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.byID {
		if p.DepartmentID == id {
			return true
		}
	}
	return false
}

func (r *projectRepo) anyForClient(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.byID {
		if p.ClientID == id {
			return true
		}
	}
	return false
}
