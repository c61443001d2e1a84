package memory

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

type notificationRepo struct {
	store *Store
	mu    sync.RWMutex
	byID  map[string]*domain.Notification
	// recipients serializes Create and MarkAllRead per recipient so a
	// mark-all-read pass cannot interleave with an append for the same user.
	recipients *keyedLocks
}

func cloneNotification(n *domain.Notification) *domain.Notification {
	c := *n
	return &c
}

func (r *notificationRepo) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	unlock := r.recipients.acquire(n.RecipientUserID)
	defer unlock()

	if !r.store.users.exists(n.RecipientUserID) {
		return nil, fmt.Errorf("recipient %q: %w", n.RecipientUserID, domain.ErrDanglingReference)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	c := cloneNotification(n)
	if c.ID == "" {
		c.ID = newID("ntf")
	}
	c.CreatedAt = time.Now().UTC()
	r.byID[c.ID] = c
	return cloneNotification(c), nil
}

func (r *notificationRepo) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	n, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("notification %q: %w", id, domain.ErrNotFound)
	}
	return cloneNotification(n), nil
}

func (r *notificationRepo) ListByRecipient(ctx context.Context, userID string, f ports.NotificationFilter) ([]*domain.Notification, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []*domain.Notification
	for _, n := range r.byID {
		if n.RecipientUserID != userID {
			continue
		}
		if f.Kind != "" && n.Kind != f.Kind {
			continue
		}
		if f.Priority != "" && n.Priority != f.Priority {
			continue
		}
		if f.Unread != nil && n.IsRead == *f.Unread {
			continue
		}
		out = append(out, cloneNotification(n))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *notificationRepo) Update(ctx context.Context, id string, mutate func(*domain.Notification) error) (*domain.Notification, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("notification %q: %w", id, domain.ErrNotFound)
	}
	next := cloneNotification(current)
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.ID = id
	next.RecipientUserID = current.RecipientUserID
	next.CreatedAt = current.CreatedAt
	r.byID[id] = next
	return cloneNotification(next), nil
}

func (r *notificationRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("notification %q: %w", id, domain.ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}

// MarkAllRead holds the recipient lock for the whole pass, so a concurrent
// Create for the same recipient lands strictly before or strictly after and
// a notification appended afterwards stays unread.
func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	unlock := r.recipients.acquire(userID)
	defer unlock()

	r.mu.Lock()
	defer r.mu.Unlock()

	count := 0
	for _, n := range r.byID {
		if n.RecipientUserID == userID && !n.IsRead {
			n.IsRead = true
			count++
		}
	}
	return count, nil
}
