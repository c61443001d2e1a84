package ports

import (
	"context"

	"github.com/taskflow/taskflow-core/internal/core/domain"
)

// NotifyInput describes a notification to append to a recipient's inbox.
type NotifyInput struct {
	RecipientUserID string
	Kind            domain.NotificationKind
	Priority        domain.NotificationPriority
	Title           string
	Message         string
	RelatedEntityID string
}

// NotificationService manages per-user inboxes. Read/unread/delete are gated
// by ownership: only the recipient or a super admin may touch a record.
type NotificationService interface {
	Notify(ctx context.Context, in NotifyInput) (*domain.Notification, error)
	List(ctx context.Context, session *domain.Session, f NotificationFilter) ([]*domain.Notification, error)
	MarkRead(ctx context.Context, session *domain.Session, id string) (*domain.Notification, error)
	MarkUnread(ctx context.Context, session *domain.Session, id string) (*domain.Notification, error)
	MarkAllRead(ctx context.Context, session *domain.Session) (int, error)
	Delete(ctx context.Context, session *domain.Session, id string) error
}
