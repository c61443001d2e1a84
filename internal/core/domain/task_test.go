package domain

import "testing"

func TestTaskStatus_CanTransitionTo(t *testing.T) {
	cases := []struct {
		from, to TaskStatus
		want     bool
	}{
		{TaskUpcoming, TaskPending, true},
		{TaskPending, TaskInProgress, true},
		{TaskInProgress, TaskCompleted, true},
		{TaskInProgress, TaskPending, true},
		{TaskCompleted, TaskInProgress, true},

		{TaskUpcoming, TaskInProgress, false},
		{TaskUpcoming, TaskCompleted, false},
		{TaskPending, TaskCompleted, false},
		{TaskPending, TaskUpcoming, false},
		{TaskCompleted, TaskUpcoming, false},
		{TaskCompleted, TaskPending, false},
		{TaskInProgress, TaskUpcoming, false},
	}

	for _, tc := range cases {
		if got := tc.from.CanTransitionTo(tc.to); got != tc.want {
			t.Errorf("%s -> %s: got %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestRole_HasPermission(t *testing.T) {
	if !RoleSuperAdmin.HasPermission(ActionManageClients) {
		t.Error("super admin must hold every action")
	}
	if !RoleTeamLead.HasPermission(ActionManageTeam) {
		t.Error("team lead must hold manageTeam")
	}
	if RoleProjectManager.HasPermission(ActionManageTeam) {
		t.Error("project manager must not hold manageTeam")
	}
	if !RoleProjectManager.HasPermission(ActionApproveTask) {
		t.Error("project manager must hold approveTask")
	}
	if RoleEmployee.HasPermission(ActionCreateTask) {
		t.Error("employee must not hold createTask")
	}
	if !RoleEmployee.HasPermission(ActionViewOwnTasks) {
		t.Error("employee must hold viewOwnTasks")
	}
}
