package domain

import "time"

// NotificationKind categorizes what a notification is about.
type NotificationKind string

const (
	NotifTaskAssigned  NotificationKind = "task_assigned"
	NotifReminder      NotificationKind = "reminder"
	NotifComment       NotificationKind = "comment"
	NotifProjectUpdate NotificationKind = "project_update"
	NotifMeeting       NotificationKind = "meeting"
	NotifTeamChange    NotificationKind = "team_change"
	NotifFeedback      NotificationKind = "feedback"
)

// NotificationPriority controls how prominently a notification is surfaced.
type NotificationPriority string

const (
	NotifLow    NotificationPriority = "low"
	NotifMedium NotificationPriority = "medium"
	NotifHigh   NotificationPriority = "high"
)

// Notification is an inbox record for a single recipient. Read state is the
// only mutable part; everything else is written once at dispatch.
type Notification struct {
	ID              string               `json:"id" bson:"_id"`
	RecipientUserID string               `json:"recipient_user_id" bson:"recipient_user_id"`
	Kind            NotificationKind     `json:"kind" bson:"kind"`
	Priority        NotificationPriority `json:"priority" bson:"priority"`
	Title           string               `json:"title" bson:"title"`
	Message         string               `json:"message,omitempty" bson:"message,omitempty"`
	IsRead          bool                 `json:"is_read" bson:"is_read"`
	RelatedEntityID string               `json:"related_entity_id,omitempty" bson:"related_entity_id,omitempty"`
	CreatedAt       time.Time            `json:"created_at" bson:"created_at"`
}
