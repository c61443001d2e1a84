package mongostore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

type notificationRepo struct {
	store *Store
	col   *mongo.Collection
}

func (r *notificationRepo) Create(ctx context.Context, n *domain.Notification) (*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	ok, err := exists(ctx, r.store.users.col, n.RecipientUserID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("recipient %q: %w", n.RecipientUserID, domain.ErrDanglingReference)
	}

	c := *n
	if c.ID == "" {
		c.ID = newID("ntf")
	}
	c.IsRead = false
	c.CreatedAt = time.Now().UTC()
	if _, err := r.col.InsertOne(ctx, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *notificationRepo) GetByID(ctx context.Context, id string) (*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	var n domain.Notification
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&n); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("notification %q: %w", id, domain.ErrNotFound)
		}
		return nil, err
	}
	return &n, nil
}

func (r *notificationRepo) ListByRecipient(ctx context.Context, userID string, f ports.NotificationFilter) ([]*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	filter := bson.M{"recipient_user_id": userID}
	if f.Kind != "" {
		filter["kind"] = f.Kind
	}
	if f.Priority != "" {
		filter["priority"] = f.Priority
	}
	if f.Unread != nil {
		filter["is_read"] = !*f.Unread
	}

	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	var out []*domain.Notification
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *notificationRepo) Update(ctx context.Context, id string, mutate func(*domain.Notification) error) (*domain.Notification, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	next := *current
	if err := mutate(&next); err != nil {
		return nil, err
	}
	// Identity and provenance are immutable.
	next.ID = id
	next.RecipientUserID = current.RecipientUserID
	next.CreatedAt = current.CreatedAt
	if _, err := r.col.ReplaceOne(ctx, bson.M{"_id": id}, &next); err != nil {
		return nil, err
	}
	return &next, nil
}

func (r *notificationRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return fmt.Errorf("notification %q: %w", id, domain.ErrNotFound)
	}
	return nil
}

func (r *notificationRepo) MarkAllRead(ctx context.Context, userID string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, defaultTimeout)
	defer cancel()

	res, err := r.col.UpdateMany(ctx,
		bson.M{"recipient_user_id": userID, "is_read": false},
		bson.M{"$set": bson.M{"is_read": true}},
	)
	if err != nil {
		return 0, err
	}
	return int(res.ModifiedCount), nil
}
