package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

func newNotifFixture(t *testing.T) *NotificationService {
	t.Helper()
	_, store, _ := newTaskFixture(t)
	return NewNotificationService(store, zerolog.Nop())
}

func TestNotifications_OwnershipGating(t *testing.T) {
	svc := newNotifFixture(t)
	ctx := context.Background()

	n, err := svc.Notify(ctx, ports.NotifyInput{
		RecipientUserID: "usr_john",
		Kind:            domain.NotifReminder,
		Title:           "standup in 10",
	})
	if err != nil {
		t.Fatalf("notify: %v", err)
	}

	// Jane is not the recipient.
	if _, err := svc.MarkRead(ctx, janeSession, n.ID); !errors.Is(err, domain.ErrNotResourceOwner) {
		t.Fatalf("expected ErrNotResourceOwner, got %v", err)
	}
	if err := svc.Delete(ctx, janeSession, n.ID); !errors.Is(err, domain.ErrNotResourceOwner) {
		t.Fatalf("expected ErrNotResourceOwner, got %v", err)
	}

	// The recipient may flip read state both ways.
	read, err := svc.MarkRead(ctx, johnSession, n.ID)
	if err != nil {
		t.Fatalf("mark read: %v", err)
	}
	if !read.IsRead {
		t.Fatal("expected read")
	}
	unread, err := svc.MarkUnread(ctx, johnSession, n.ID)
	if err != nil {
		t.Fatalf("mark unread: %v", err)
	}
	if unread.IsRead {
		t.Fatal("expected unread")
	}

	// A super admin may act on anyone's inbox.
	if _, err := svc.MarkRead(ctx, superSession, n.ID); err != nil {
		t.Fatalf("super admin mark read: %v", err)
	}
	if err := svc.Delete(ctx, superSession, n.ID); err != nil {
		t.Fatalf("super admin delete: %v", err)
	}
}

func TestNotifications_MarkAllReadScopedToCaller(t *testing.T) {
	svc := newNotifFixture(t)
	ctx := context.Background()

	for _, recipient := range []string{"usr_john", "usr_john", "usr_jane"} {
		if _, err := svc.Notify(ctx, ports.NotifyInput{
			RecipientUserID: recipient,
			Kind:            domain.NotifTeamChange,
			Title:           "roster update",
		}); err != nil {
			t.Fatalf("notify: %v", err)
		}
	}

	n, err := svc.MarkAllRead(ctx, johnSession)
	if err != nil {
		t.Fatalf("mark all read: %v", err)
	}
	if n != 2 {
		t.Fatalf("expected 2 marked, got %d", n)
	}

	janes, _ := svc.List(ctx, janeSession, ports.NotificationFilter{})
	if len(janes) != 1 || janes[0].IsRead {
		t.Fatalf("jane's inbox must be untouched: %+v", janes)
	}
}
