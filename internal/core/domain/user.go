package domain

import "time"

// Role is the fixed category a user belongs to. It determines the default
// permission set; there is no per-user permission override.
type Role string

const (
	RoleSuperAdmin     Role = "super_admin"
	RoleTeamLead       Role = "team_lead"
	RoleProjectManager Role = "project_manager"
	RoleEmployee       Role = "employee"
)

// Valid reports whether r is one of the four known roles.
func (r Role) Valid() bool {
	switch r {
	case RoleSuperAdmin, RoleTeamLead, RoleProjectManager, RoleEmployee:
		return true
	}
	return false
}

// UserStatus is the activation state of an account. Users are never hard
// deleted; offboarding sets the status to inactive.
type UserStatus string

const (
	UserActive   UserStatus = "active"
	UserInactive UserStatus = "inactive"
	UserOnLeave  UserStatus = "on_leave"
)

// User models a member of the agency.
type User struct {
	ID           string     `json:"id" bson:"_id"`
	Username     string     `json:"username" bson:"username"`
	DisplayName  string     `json:"display_name" bson:"display_name"`
	Email        string     `json:"email,omitempty" bson:"email,omitempty"`
	Phone        string     `json:"phone,omitempty" bson:"phone,omitempty"`
	Position     string     `json:"position,omitempty" bson:"position,omitempty"`
	PasswordHash string     `json:"-" bson:"password_hash"`
	Role         Role       `json:"role" bson:"role"`
	DepartmentID string     `json:"department_id,omitempty" bson:"department_id,omitempty"`
	Status       UserStatus `json:"status" bson:"status"`
	JoinDate     time.Time  `json:"join_date" bson:"join_date"`
	CreatedAt    time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at" bson:"updated_at"`
}

// Session is the server-tracked authentication context. It is created at
// login, stored under its ID with a TTL, and revoked at logout. Every
// authorize/mutate call receives one; nothing reads ambient login state.
type Session struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	Username  string    `json:"username"`
	Role      Role      `json:"role"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Expired reports whether the session has passed its expiry.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
