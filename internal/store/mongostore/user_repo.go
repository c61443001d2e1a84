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

type userRepo struct {
	store *Store
	col   *mongo.Collection
}

func (r *userRepo) Create(ctx context.Context, u *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	n, err := r.col.CountDocuments(ctx, bson.M{"username": u.Username})
	if err != nil {
		return nil, err
	}
	if n > 0 {
		return nil, fmt.Errorf("username %q already taken: %w", u.Username, domain.ErrValidationFailed)
	}
	if u.DepartmentID != "" {
		ok, err := exists(ctx, r.store.departments.col, u.DepartmentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("department %q: %w", u.DepartmentID, domain.ErrDanglingReference)
		}
	}

	c := *u
	if c.ID == "" {
		c.ID = newID("usr")
	}
	now := time.Now().UTC()
	c.CreatedAt = now
	c.UpdatedAt = now
	if _, err := r.col.InsertOne(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *userRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.User
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %q: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var u domain.User
	if err := r.col.FindOne(ctx, bson.M{"username": username}).Decode(&u); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user %q: %w", username, domain.ErrNotFound)
		}
		return nil, err
	}
	return &u, nil
}

func (r *userRepo) List(ctx context.Context, f ports.UserFilter) ([]*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{}
	if f.Role != "" {
		filter["role"] = f.Role
	}
	if f.DepartmentID != "" {
		filter["department_id"] = f.DepartmentID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, err
	}
	var out []*domain.User
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *userRepo) Update(ctx context.Context, id string, mutate func(*domain.User) error) (*domain.User, error) {
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
	if next.DepartmentID != "" {
		ok, err := exists(ctx, r.store.departments.col, next.DepartmentID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("department %q: %w", next.DepartmentID, domain.ErrDanglingReference)
		}
	}
	if next.Username != current.Username {
		n, err := r.col.CountDocuments(ctx, bson.M{"username": next.Username, "_id": bson.M{"$ne": id}})
		if err != nil {
			return nil, err
		}
		if n > 0 {
			return nil, fmt.Errorf("username %q already taken: %w", next.Username, domain.ErrValidationFailed)
		}
	}

	next.ID = id
	next.CreatedAt = current.CreatedAt
	next.UpdatedAt = time.Now().UTC()
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": id}, &next); err != nil {
		return nil, err
	}
	return &next, nil
}
