package domain

import "time"

// Department groups users and projects under a head.
type Department struct {
	ID         string    `json:"id" bson:"_id"`
	Name       string    `json:"name" bson:"name"`
	HeadUserID string    `json:"head_user_id" bson:"head_user_id"`
	Budget     float64   `json:"budget" bson:"budget"`
	CreatedAt  time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt  time.Time `json:"updated_at" bson:"updated_at"`
}

// ClientStatus is the engagement state of a client account.
type ClientStatus string

const (
	ClientActive   ClientStatus = "active"
	ClientInactive ClientStatus = "inactive"
	ClientPending  ClientStatus = "pending"
)

// ContactInfo holds how a client is reached.
type ContactInfo struct {
	Company string `json:"company,omitempty" bson:"company,omitempty"`
	Email   string `json:"email,omitempty" bson:"email,omitempty"`
	Phone   string `json:"phone,omitempty" bson:"phone,omitempty"`
}

// Client owns zero or more projects.
type Client struct {
	ID        string       `json:"id" bson:"_id"`
	Name      string       `json:"name" bson:"name"`
	Contact   ContactInfo  `json:"contact" bson:"contact"`
	Status    ClientStatus `json:"status" bson:"status"`
	CreatedAt time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time    `json:"updated_at" bson:"updated_at"`
}

// ProjectStatus is the delivery state of a project.
type ProjectStatus string

const (
	ProjectPlanning   ProjectStatus = "planning"
	ProjectInProgress ProjectStatus = "in_progress"
	ProjectOnHold     ProjectStatus = "on_hold"
	ProjectCompleted  ProjectStatus = "completed"
)

// Valid reports whether s is a known project status.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectPlanning, ProjectInProgress, ProjectOnHold, ProjectCompleted:
		return true
	}
	return false
}

// Project ties a client engagement to a department and a team. It carries no
// progress field: completion percentage is always derived from its tasks.
type Project struct {
	ID            string        `json:"id" bson:"_id"`
	Name          string        `json:"name" bson:"name"`
	DepartmentID  string        `json:"department_id" bson:"department_id"`
	ClientID      string        `json:"client_id,omitempty" bson:"client_id,omitempty"`
	Status        ProjectStatus `json:"status" bson:"status"`
	TeamMemberIDs []string      `json:"team_member_ids,omitempty" bson:"team_member_ids,omitempty"`
	DueDate       time.Time     `json:"due_date" bson:"due_date"`
	CreatedAt     time.Time     `json:"created_at" bson:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at" bson:"updated_at"`
}
