package ports

import (
	"context"
	"time"

	"github.com/taskflow/taskflow-core/internal/core/domain"
)

// SessionStore tracks live sessions server-side so logout actually revokes
// access. Implementations: Redis (production) and in-memory (tests, dev).
type SessionStore interface {
	Put(ctx context.Context, s *domain.Session, ttl time.Duration) error
	Get(ctx context.Context, id string) (*domain.Session, error)
	Delete(ctx context.Context, id string) error
}

// LoginResult carries the signed token plus the session it represents.
type LoginResult struct {
	Token   string
	Session *domain.Session
	User    *domain.User
}

// AuthService resolves credentials to sessions and tokens to sessions.
type AuthService interface {
	// Authenticate verifies a credential pair. Unknown username and wrong
	// password both fail with domain.ErrInvalidCredentials.
	Authenticate(ctx context.Context, username, password string) (*LoginResult, error)
	// Resolve verifies a token signature and checks the session is still
	// tracked and unexpired.
	Resolve(ctx context.Context, token string) (*domain.Session, error)
	// Logout revokes the session behind the token.
	Logout(ctx context.Context, token string) error
}

// Resource identifies the target of an authorization check. OwnerUserID is
// the user the resource belongs to (a task's assignee, a notification's
// recipient). A nil Resource means the action has no per-resource scope.
type Resource struct {
	Kind        string
	ID          string
	OwnerUserID string
}

// DenyReason explains a denial. Denial is an expected outcome, not an error.
type DenyReason string

const (
	DenyRoleInsufficient DenyReason = "role_insufficient"
	DenyNotResourceOwner DenyReason = "not_resource_owner"
)

// Decision is the result of an authorization check.
type Decision struct {
	Allowed bool
	Reason  DenyReason
}

// Err converts a denial into its sentinel error; nil when allowed.
func (d Decision) Err() error {
	if d.Allowed {
		return nil
	}
	if d.Reason == DenyNotResourceOwner {
		return domain.ErrNotResourceOwner
	}
	return domain.ErrRoleInsufficient
}

// Authorizer decides whether a session may perform an action on a resource.
// Pure with respect to the store: identical inputs yield identical decisions.
type Authorizer interface {
	Authorize(session *domain.Session, action domain.Action, resource *Resource) Decision
}
