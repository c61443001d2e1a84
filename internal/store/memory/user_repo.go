package memory

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

type userRepo struct {
	store *Store
	mu    sync.RWMutex
	byID  map[string]*domain.User
}

func cloneUser(u *domain.User) *domain.User {
	c := *u
	return &c
}

func (r *userRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.byID {
		if existing.Username == u.Username {
			return nil, fmt.Errorf("username %q already taken: %w", u.Username, domain.ErrValidationFailed)
		}
	}
	if u.DepartmentID != "" && !r.store.departments.exists(u.DepartmentID) {
		return nil, fmt.Errorf("department %q: %w", u.DepartmentID, domain.ErrDanglingReference)
	}

	c := cloneUser(u)
	if c.ID == "" {
		c.ID = newID("usr")
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	r.byID[c.ID] = c
	return cloneUser(c), nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", id, domain.ErrNotFound)
	}
	return cloneUser(u), nil
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
}

func (r *userRepo) List(ctx context.Context, f ports.UserFilter) ([]*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.User
	for _, u := range r.byID {
		if f.Role != "" && u.Role != f.Role {
			continue
		}
		if f.DepartmentID != "" && u.DepartmentID != f.DepartmentID {
			continue
		}
		if f.Status != "" && u.Status != f.Status {
			continue
		}
		out = append(out, cloneUser(u))
	}
	return out, nil
}

func (r *userRepo) Update(ctx context.Context, id string, mutate func(*domain.User) error) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("user %q: %w", id, domain.ErrNotFound)
	}

	next := cloneUser(current)
	if err := mutate(next); err != nil {
		return nil, err
	}

	if next.Username != current.Username {
		for _, existing := range r.byID {
			if existing.ID != id && existing.Username == next.Username {
				return nil, fmt.Errorf("username %q already taken: %w", next.Username, domain.ErrValidationFailed)
			}
		}
	}
	if next.DepartmentID != "" && !r.store.departments.exists(next.DepartmentID) {
		return nil, fmt.Errorf("department %q: %w", next.DepartmentID, domain.ErrDanglingReference)
	}

	next.ID = id
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	r.byID[id] = next
	return cloneUser(next), nil
}

// exists is used by sibling repos for referential checks.
func (r *userRepo) exists(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.byID[id]
	return ok
}

// anyInDepartment reports whether at least one user references the department.
func (r *userRepo) anyInDepartment(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.byID {
		if u.DepartmentID == id {
			return true
		}
	}
	return false
}
