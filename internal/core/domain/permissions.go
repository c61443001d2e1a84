package domain

// Action is a named capability checked by the permission engine.
type Action string

const (
	ActionCreateTask        Action = "createTask"
	ActionAssignTask        Action = "assignTask"
	ActionEditTask          Action = "editTask"
	ActionApproveTask       Action = "approveTask"
	ActionManageTeam        Action = "manageTeam"
	ActionManageProjects    Action = "manageProjects"
	ActionManageDepartments Action = "manageDepartments"
	ActionManageClients     Action = "manageClients"
	ActionViewReports       Action = "viewReports"
	ActionViewOwnTasks      Action = "viewOwnTasks"
	ActionCommentOnOwnTask  Action = "commentOnOwnTask"
)

// rolePermissions enumerates the static permission set per role. SuperAdmin
// is handled separately (all actions) and has no entry here.
var rolePermissions = map[Role]map[Action]struct{}{
	RoleTeamLead: actionSet(
		ActionCreateTask, ActionAssignTask, ActionEditTask, ActionApproveTask,
		ActionManageTeam, ActionManageProjects, ActionManageDepartments,
		ActionViewReports,
	),
	RoleProjectManager: actionSet(
		ActionCreateTask, ActionAssignTask, ActionEditTask, ActionApproveTask,
		ActionManageProjects, ActionViewReports,
	),
	RoleEmployee: actionSet(
		ActionViewOwnTasks, ActionCommentOnOwnTask, ActionViewReports,
	),
}

// taskScopedActions are the mutations an employee may additionally perform on
// a task assigned to them. Ownership is verified by the permission engine.
var taskScopedActions = actionSet(
	ActionEditTask, ActionViewOwnTasks, ActionCommentOnOwnTask,
)

func actionSet(actions ...Action) map[Action]struct{} {
	set := make(map[Action]struct{}, len(actions))
	for _, a := range actions {
		set[a] = struct{}{}
	}
	return set
}

// HasPermission reports whether the role-level set grants the action.
// Resource-level ownership rules are layered on top by the permission engine.
func (r Role) HasPermission(action Action) bool {
	if r == RoleSuperAdmin {
		return true
	}
	_, ok := rolePermissions[r][action]
	return ok
}

// TaskScoped reports whether the action may be granted to an employee via
// ownership of the target task rather than via the role-level set.
func TaskScoped(action Action) bool {
	_, ok := taskScopedActions[action]
	return ok
}
