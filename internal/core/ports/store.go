package ports

import (
	"context"
	"strings"

	"github.com/taskflow/taskflow-core/internal/core/domain"
)

// Store is the entity store: one repository per entity type. Implementations
// own all entity instances; callers receive copies and refer to entities by
// id only. Every Update runs its mutate function under the entity's lock so
// read-modify-write sequences on one id serialize.
type Store interface {
	Users() UserRepository
	Departments() DepartmentRepository
	Clients() ClientRepository
	Projects() ProjectRepository
	Tasks() TaskRepository
	Comments() CommentRepository
	Notifications() NotificationRepository
}

// UserFilter narrows user queries. Nil-equivalent zero values mean "any".
type UserFilter struct {
	Role         domain.Role
	DepartmentID string
	Status       domain.UserStatus
}

type UserRepository interface {
	Create(ctx context.Context, u *domain.User) (*domain.User, error)
	GetByID(ctx context.Context, id string) (*domain.User, error)
	FindByUsername(ctx context.Context, username string) (*domain.User, error)
	List(ctx context.Context, f UserFilter) ([]*domain.User, error)
	Update(ctx context.Context, id string, mutate func(*domain.User) error) (*domain.User, error)
}

type DepartmentRepository interface {
	Create(ctx context.Context, d *domain.Department) (*domain.Department, error)
	GetByID(ctx context.Context, id string) (*domain.Department, error)
	List(ctx context.Context) ([]*domain.Department, error)
	Update(ctx context.Context, id string, mutate func(*domain.Department) error) (*domain.Department, error)
	Delete(ctx context.Context, id string) error
}

type ClientRepository interface {
	Create(ctx context.Context, c *domain.Client) (*domain.Client, error)
	GetByID(ctx context.Context, id string) (*domain.Client, error)
	List(ctx context.Context) ([]*domain.Client, error)
	Update(ctx context.Context, id string, mutate func(*domain.Client) error) (*domain.Client, error)
	Delete(ctx context.Context, id string) error
}

// ProjectFilter narrows project queries.
type ProjectFilter struct {
	DepartmentID string
	ClientID     string
	Status       domain.ProjectStatus
}

type ProjectRepository interface {
	Create(ctx context.Context, p *domain.Project) (*domain.Project, error)
	GetByID(ctx context.Context, id string) (*domain.Project, error)
	List(ctx context.Context, f ProjectFilter) ([]*domain.Project, error)
	Update(ctx context.Context, id string, mutate func(*domain.Project) error) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

// TaskFilter narrows task queries. All provided dimensions combine with AND;
// Search matches case-insensitively against title and description.
type TaskFilter struct {
	Status         domain.TaskStatus
	Priority       domain.TaskPriority
	DepartmentID   string
	AssigneeUserID string
	ProjectID      string
	Search         string
}

// Matches reports whether a task satisfies every provided filter dimension
// (AND semantics). Deterministic and side-effect-free; repositories and the
// report engine share it so stored and in-memory filtering agree.
func (f TaskFilter) Matches(t *domain.Task) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Priority != "" && t.Priority != f.Priority {
		return false
	}
	if f.DepartmentID != "" && t.DepartmentID != f.DepartmentID {
		return false
	}
	if f.AssigneeUserID != "" && t.AssigneeUserID != f.AssigneeUserID {
		return false
	}
	if f.ProjectID != "" && t.ProjectID != f.ProjectID {
		return false
	}
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		inTitle := strings.Contains(strings.ToLower(t.Title), needle)
		inDesc := strings.Contains(strings.ToLower(t.Description), needle)
		if !inTitle && !inDesc {
			return false
		}
	}
	return true
}

type TaskRepository interface {
	Create(ctx context.Context, t *domain.Task) (*domain.Task, error)
	GetByID(ctx context.Context, id string) (*domain.Task, error)
	List(ctx context.Context, f TaskFilter) ([]*domain.Task, error)
	// Update applies mutate to the current task under the task's lock. When
	// mutate returns an error nothing is written and the error is returned
	// unchanged, so invariant checks inside mutate abort the commit.
	Update(ctx context.Context, id string, mutate func(*domain.Task) error) (*domain.Task, error)
	Delete(ctx context.Context, id string) error
}

type CommentRepository interface {
	Create(ctx context.Context, c *domain.Comment) (*domain.Comment, error)
	GetByID(ctx context.Context, id string) (*domain.Comment, error)
	ListByTask(ctx context.Context, taskID string) ([]*domain.Comment, error)
	Delete(ctx context.Context, id string) error
}

// NotificationFilter narrows inbox queries.
type NotificationFilter struct {
	Kind     domain.NotificationKind
	Priority domain.NotificationPriority
	Unread   *bool
}

type NotificationRepository interface {
	Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error)
	GetByID(ctx context.Context, id string) (*domain.Notification, error)
	ListByRecipient(ctx context.Context, userID string, f NotificationFilter) ([]*domain.Notification, error)
	Update(ctx context.Context, id string, mutate func(*domain.Notification) error) (*domain.Notification, error)
	Delete(ctx context.Context, id string) error
	// MarkAllRead flips every notification of the recipient to read in one
	// atomic step with respect to concurrent Create calls for the same
	// recipient: a notification appended after the call starts stays unread.
	MarkAllRead(ctx context.Context, userID string) (int, error)
}
