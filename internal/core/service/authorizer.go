package service

import (
	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

// RoleAuthorizer is the permission engine: a pure function of role, action,
// and resource ownership. It never consults the store; callers pass the
// resource owner they already hold.
type RoleAuthorizer struct{}

func NewAuthorizer() *RoleAuthorizer {
	return &RoleAuthorizer{}
}

func allow() ports.Decision { return ports.Decision{Allowed: true} }

func deny(reason ports.DenyReason) ports.Decision {
	return ports.Decision{Allowed: false, Reason: reason}
}

// Authorize decides whether the session may perform action on resource.
//
// Super admins hold every action. Team leads and project managers are
// subject only to the role-level permission set. Employees are additionally
// resource-scoped: task mutations and task-scoped reads are granted only on
// tasks assigned to them, and a mismatch denies with NotResourceOwner rather
// than RoleInsufficient so callers can tell the two apart.
func (a *RoleAuthorizer) Authorize(session *domain.Session, action domain.Action, resource *ports.Resource) ports.Decision {
	if session == nil || !session.Role.Valid() {
		return deny(ports.DenyRoleInsufficient)
	}
	if session.Role == domain.RoleSuperAdmin {
		return allow()
	}

	if session.Role != domain.RoleEmployee {
		if session.Role.HasPermission(action) {
			return allow()
		}
		return deny(ports.DenyRoleInsufficient)
	}

	// Employee path.
	held := session.Role.HasPermission(action)
	if !held && !domain.TaskScoped(action) {
		return deny(ports.DenyRoleInsufficient)
	}
	if resource != nil && resource.OwnerUserID != session.UserID {
		return deny(ports.DenyNotResourceOwner)
	}
	if !held && resource == nil {
		// A task-scoped action with no resource to own cannot be granted.
		return deny(ports.DenyRoleInsufficient)
	}
	return allow()
}
