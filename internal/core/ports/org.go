package ports

import (
	"context"
	"time"

	"github.com/taskflow/taskflow-core/internal/core/domain"
)

// CreateUserInput onboards a new team member.
type CreateUserInput struct {
	Username     string
	Password     string
	DisplayName  string
	Email        string
	Phone        string
	Position     string
	Role         domain.Role
	DepartmentID string
	JoinDate     time.Time
}

// UpdateUserInput is a sparse profile patch. Role and status changes are
// gated by manageTeam.
type UpdateUserInput struct {
	DisplayName  *string
	Email        *string
	Phone        *string
	Position     *string
	Role         *domain.Role
	DepartmentID *string
	Status       *domain.UserStatus
}

// UserService manages team members. There is no hard delete; offboarding
// patches the status to inactive.
type UserService interface {
	Create(ctx context.Context, session *domain.Session, in CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, session *domain.Session, id string) (*domain.User, error)
	List(ctx context.Context, session *domain.Session, f UserFilter) ([]*domain.User, error)
	Update(ctx context.Context, session *domain.Session, id string, in UpdateUserInput) (*domain.User, error)
}

// CreateDepartmentInput creates a department under a head user.
type CreateDepartmentInput struct {
	Name       string
	HeadUserID string
	Budget     float64
}

// UpdateDepartmentInput is a sparse patch.
type UpdateDepartmentInput struct {
	Name       *string
	HeadUserID *string
	Budget     *float64
}

// DepartmentService manages departments. Delete refuses while users or
// projects still reference the department; callers must reassign first.
type DepartmentService interface {
	Create(ctx context.Context, session *domain.Session, in CreateDepartmentInput) (*domain.Department, error)
	Get(ctx context.Context, session *domain.Session, id string) (*domain.Department, error)
	List(ctx context.Context, session *domain.Session) ([]*domain.Department, error)
	Update(ctx context.Context, session *domain.Session, id string, in UpdateDepartmentInput) (*domain.Department, error)
	Delete(ctx context.Context, session *domain.Session, id string) error
}

// CreateClientInput registers a client account.
type CreateClientInput struct {
	Name    string
	Contact domain.ContactInfo
	Status  domain.ClientStatus
}

// UpdateClientInput is a sparse patch.
type UpdateClientInput struct {
	Name    *string
	Contact *domain.ContactInfo
	Status  *domain.ClientStatus
}

// ClientService manages client accounts. Delete requires the caller to
// confirm the cascade over the client's projects explicitly.
type ClientService interface {
	Create(ctx context.Context, session *domain.Session, in CreateClientInput) (*domain.Client, error)
	Get(ctx context.Context, session *domain.Session, id string) (*domain.Client, error)
	List(ctx context.Context, session *domain.Session) ([]*domain.Client, error)
	Update(ctx context.Context, session *domain.Session, id string, in UpdateClientInput) (*domain.Client, error)
	Delete(ctx context.Context, session *domain.Session, id string, cascade bool) error
}

// CreateProjectInput starts a project for a department, optionally a client.
type CreateProjectInput struct {
	Name          string
	DepartmentID  string
	ClientID      string
	TeamMemberIDs []string
	DueDate       time.Time
}

// UpdateProjectInput is a sparse patch.
type UpdateProjectInput struct {
	Name          *string
	Status        *domain.ProjectStatus
	ClientID      *string
	TeamMemberIDs *[]string
	DueDate       *time.Time
}

// ProjectService manages projects.
type ProjectService interface {
	Create(ctx context.Context, session *domain.Session, in CreateProjectInput) (*domain.Project, error)
	Get(ctx context.Context, session *domain.Session, id string) (*domain.Project, error)
	List(ctx context.Context, session *domain.Session, f ProjectFilter) ([]*domain.Project, error)
	Update(ctx context.Context, session *domain.Session, id string, in UpdateProjectInput) (*domain.Project, error)
	Delete(ctx context.Context, session *domain.Session, id string) error
}
