package service

import (
	"testing"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

func sessionFor(role domain.Role, userID string) *domain.Session {
	return &domain.Session{ID: "ses_test", UserID: userID, Username: string(role), Role: role}
}

func TestAuthorize_PermissionMatrix(t *testing.T) {
	a := NewAuthorizer()
	task := func(owner string) *ports.Resource {
		return &ports.Resource{Kind: "task", ID: "tsk_1", OwnerUserID: owner}
	}

	cases := []struct {
		name     string
		session  *domain.Session
		action   domain.Action
		resource *ports.Resource
		allowed  bool
		reason   ports.DenyReason
	}{
		{"super admin does anything", sessionFor(domain.RoleSuperAdmin, "u1"), domain.ActionManageClients, nil, true, ""},
		{"super admin edits foreign task", sessionFor(domain.RoleSuperAdmin, "u1"), domain.ActionEditTask, task("u2"), true, ""},

		{"team lead manages team", sessionFor(domain.RoleTeamLead, "u1"), domain.ActionManageTeam, nil, true, ""},
		{"team lead edits foreign task", sessionFor(domain.RoleTeamLead, "u1"), domain.ActionEditTask, task("u2"), true, ""},
		{"team lead cannot manage clients", sessionFor(domain.RoleTeamLead, "u1"), domain.ActionManageClients, nil, false, ports.DenyRoleInsufficient},

		{"pm approves task", sessionFor(domain.RoleProjectManager, "u1"), domain.ActionApproveTask, task("u2"), true, ""},
		{"pm cannot manage team", sessionFor(domain.RoleProjectManager, "u1"), domain.ActionManageTeam, nil, false, ports.DenyRoleInsufficient},

		{"employee edits own task", sessionFor(domain.RoleEmployee, "u1"), domain.ActionEditTask, task("u1"), true, ""},
		{"employee edits foreign task", sessionFor(domain.RoleEmployee, "u1"), domain.ActionEditTask, task("u2"), false, ports.DenyNotResourceOwner},
		{"employee comments own task", sessionFor(domain.RoleEmployee, "u1"), domain.ActionCommentOnOwnTask, task("u1"), true, ""},
		{"employee cannot create tasks", sessionFor(domain.RoleEmployee, "u1"), domain.ActionCreateTask, nil, false, ports.DenyRoleInsufficient},
		{"employee cannot approve", sessionFor(domain.RoleEmployee, "u1"), domain.ActionApproveTask, task("u1"), false, ports.DenyRoleInsufficient},
		{"employee views reports", sessionFor(domain.RoleEmployee, "u1"), domain.ActionViewReports, nil, true, ""},

		{"nil session denied", nil, domain.ActionViewReports, nil, false, ports.DenyRoleInsufficient},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := a.Authorize(tc.session, tc.action, tc.resource)
			if got.Allowed != tc.allowed {
				t.Fatalf("allowed = %v, want %v", got.Allowed, tc.allowed)
			}
			if !tc.allowed && got.Reason != tc.reason {
				t.Fatalf("reason = %q, want %q", got.Reason, tc.reason)
			}
		})
	}
}

func TestAuthorize_Deterministic(t *testing.T) {
	a := NewAuthorizer()
	s := sessionFor(domain.RoleEmployee, "u1")
	res := &ports.Resource{Kind: "task", ID: "tsk_1", OwnerUserID: "u2"}

	first := a.Authorize(s, domain.ActionEditTask, res)
	second := a.Authorize(s, domain.ActionEditTask, res)
	if first != second {
		t.Fatalf("authorize not deterministic: %+v vs %+v", first, second)
	}
}
