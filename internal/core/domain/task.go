package domain

import "time"

// TaskStatus represents the lifecycle state of a task.
type TaskStatus string

const (
	TaskUpcoming   TaskStatus = "upcoming"
	TaskPending    TaskStatus = "pending"
	TaskInProgress TaskStatus = "in_progress"
	TaskCompleted  TaskStatus = "completed"
)

// validTransitions defines the allowed state machine transitions.
// Upcoming is a scheduling state: a task created with a future start waits
// there until the scheduled check promotes it to Pending.
var validTransitions = map[TaskStatus][]TaskStatus{
	TaskUpcoming:   {TaskPending},
	TaskPending:    {TaskInProgress},
	TaskInProgress: {TaskCompleted, TaskPending},
	TaskCompleted:  {TaskInProgress},
}

// CanTransitionTo reports whether a transition from the current status to
// next is a legal state machine edge.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	for _, allowed := range validTransitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known task status.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskUpcoming, TaskPending, TaskInProgress, TaskCompleted:
		return true
	}
	return false
}

// TaskPriority orders tasks by urgency.
type TaskPriority string

const (
	PriorityLow    TaskPriority = "low"
	PriorityMedium TaskPriority = "medium"
	PriorityHigh   TaskPriority = "high"
	PriorityUrgent TaskPriority = "urgent"
)

// Valid reports whether p is a known priority.
func (p TaskPriority) Valid() bool {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return true
	}
	return false
}

// AuditEntry records a single status transition on a task.
type AuditEntry struct {
	ActorID   string     `json:"actor_id" bson:"actor_id"`
	Actor     string     `json:"actor" bson:"actor"`
	From      TaskStatus `json:"from" bson:"from"`
	To        TaskStatus `json:"to" bson:"to"`
	Timestamp time.Time  `json:"timestamp" bson:"timestamp"`
}

// Task is the central work item. Progress on the owning project is always
// derived from its tasks, never stored alongside them.
type Task struct {
	ID             string       `json:"id" bson:"_id"`
	Title          string       `json:"title" bson:"title"`
	Description    string       `json:"description,omitempty" bson:"description,omitempty"`
	Priority       TaskPriority `json:"priority" bson:"priority"`
	Status         TaskStatus   `json:"status" bson:"status"`
	AssigneeUserID string       `json:"assignee_user_id" bson:"assignee_user_id"`
	DepartmentID   string       `json:"department_id" bson:"department_id"`
	ProjectID      string       `json:"project_id,omitempty" bson:"project_id,omitempty"`
	DueDate        time.Time    `json:"due_date" bson:"due_date"`
	StartAt        time.Time    `json:"start_at,omitempty" bson:"start_at,omitempty"`
	EstimatedHours float64      `json:"estimated_hours" bson:"estimated_hours"`
	CompletedHours float64      `json:"completed_hours" bson:"completed_hours"`
	AuditLog       []AuditEntry `json:"audit_log,omitempty" bson:"audit_log,omitempty"`
	Version        int64        `json:"-" bson:"version"`
	CreatedAt      time.Time    `json:"created_at" bson:"created_at"`
	UpdatedAt      time.Time    `json:"updated_at" bson:"updated_at"`
}

// Comment is an immutable note on a task. Only the author or a super admin
// may delete one; there is no edit.
type Comment struct {
	ID           string    `json:"id" bson:"_id"`
	TaskID       string    `json:"task_id" bson:"task_id"`
	AuthorUserID string    `json:"author_user_id" bson:"author_user_id"`
	Body         string    `json:"body" bson:"body"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}
