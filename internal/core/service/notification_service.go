package service

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

// NotificationService manages per-user inboxes. Appends come from the
// dispatcher after lifecycle events commit; read-state changes come from the
// recipient (or a super admin acting on their behalf).
type NotificationService struct {
	store ports.Store
	log   zerolog.Logger
}

func NewNotificationService(store ports.Store, log zerolog.Logger) *NotificationService {
	return &NotificationService{store: store, log: log}
}

func (s *NotificationService) Notify(ctx context.Context, in ports.NotifyInput) (*domain.Notification, error) {
	if in.RecipientUserID == "" {
		return nil, fmt.Errorf("recipient is required: %w", domain.ErrValidationFailed)
	}
	priority := in.Priority
	if priority == "" {
		priority = domain.NotifLow
	}
	return s.store.Notifications().Create(ctx, &domain.Notification{
		RecipientUserID: in.RecipientUserID,
		Kind:            in.Kind,
		Priority:        priority,
		Title:           in.Title,
		Message:         in.Message,
		RelatedEntityID: in.RelatedEntityID,
	})
}

func (s *NotificationService) List(ctx context.Context, session *domain.Session, f ports.NotificationFilter) ([]*domain.Notification, error) {
	return s.store.Notifications().ListByRecipient(ctx, session.UserID, f)
}

// owned checks the recipient-or-super-admin rule shared by every read-state
// and delete operation.
func (s *NotificationService) owned(ctx context.Context, session *domain.Session, id string) (*domain.Notification, error) {
	n, err := s.store.Notifications().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.Role != domain.RoleSuperAdmin && n.RecipientUserID != session.UserID {
		return nil, domain.ErrNotResourceOwner
	}
	return n, nil
}

func (s *NotificationService) MarkRead(ctx context.Context, session *domain.Session, id string) (*domain.Notification, error) {
	return s.setRead(ctx, session, id, true)
}

func (s *NotificationService) MarkUnread(ctx context.Context, session *domain.Session, id string) (*domain.Notification, error) {
	return s.setRead(ctx, session, id, false)
}

func (s *NotificationService) setRead(ctx context.Context, session *domain.Session, id string, read bool) (*domain.Notification, error) {
	if _, err := s.owned(ctx, session, id); err != nil {
		return nil, err
	}
	return s.store.Notifications().Update(ctx, id, func(n *domain.Notification) error {
		n.IsRead = read
		return nil
	})
}

func (s *NotificationService) MarkAllRead(ctx context.Context, session *domain.Session) (int, error) {
	return s.store.Notifications().MarkAllRead(ctx, session.UserID)
}

func (s *NotificationService) Delete(ctx context.Context, session *domain.Session, id string) error {
	if _, err := s.owned(ctx, session, id); err != nil {
		return err
	}
	return s.store.Notifications().Delete(ctx, id)
}
