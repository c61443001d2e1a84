// Package mongostore implements the entity store on MongoDB. Repositories
// enforce the same referential rules as the in-memory store; task updates use
// compare-and-swap on the document version so concurrent read-modify-write
// sequences serialize without process-local locks.
package mongostore

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/taskflow/taskflow-core/internal/core/ports"
)

const (
	defaultTimeout = 10 * time.Second

	collectionUsers         = "users"
	collectionDepartments   = "departments"
	collectionClients       = "clients"
	collectionProjects      = "projects"
	collectionTasks         = "tasks"
	collectionComments      = "comments"
	collectionNotifications = "notifications"
)

// Store bundles one repository per entity type over a single database.
type Store struct {
	users         *userRepo
	departments   *departmentRepo
	clients       *clientRepo
	projects      *projectRepo
	tasks         *taskRepo
	comments      *commentRepo
	notifications *notificationRepo
}

func New(db *mongo.Database) *Store {
	s := &Store{}
	s.users = &userRepo{store: s, col: db.Collection(collectionUsers)}
	s.departments = &departmentRepo{store: s, col: db.Collection(collectionDepartments)}
	s.clients = &clientRepo{store: s, col: db.Collection(collectionClients)}
	s.projects = &projectRepo{store: s, col: db.Collection(collectionProjects)}
	s.tasks = &taskRepo{store: s, col: db.Collection(collectionTasks)}
	s.comments = &commentRepo{store: s, col: db.Collection(collectionComments)}
	s.notifications = &notificationRepo{store: s, col: db.Collection(collectionNotifications)}
	return s
}

func (s *Store) Users() ports.UserRepository                 { return s.users }
func (s *Store) Departments() ports.DepartmentRepository     { return s.departments }
func (s *Store) Clients() ports.ClientRepository             { return s.clients }
func (s *Store) Projects() ports.ProjectRepository           { return s.projects }
func (s *Store) Tasks() ports.TaskRepository                 { return s.tasks }
func (s *Store) Comments() ports.CommentRepository           { return s.comments }
func (s *Store) Notifications() ports.NotificationRepository { return s.notifications }

// EnsureIndexes creates the indexes every repository relies on.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	for _, ix := range []struct {
		col    *mongo.Collection
		models []mongo.IndexModel
	}{
		{s.users.col, []mongo.IndexModel{
			{Keys: bson.D{{Key: "username", Value: 1}}},
			{Keys: bson.D{{Key: "department_id", Value: 1}}},
		}},
		{s.projects.col, []mongo.IndexModel{
			{Keys: bson.D{{Key: "department_id", Value: 1}}},
			{Keys: bson.D{{Key: "client_id", Value: 1}}},
		}},
		{s.tasks.col, []mongo.IndexModel{
			{Keys: bson.D{{Key: "assignee_user_id", Value: 1}}},
			{Keys: bson.D{{Key: "department_id", Value: 1}}},
			{Keys: bson.D{{Key: "project_id", Value: 1}}},
			{Keys: bson.D{{Key: "status", Value: 1}}},
		}},
		{s.comments.col, []mongo.IndexModel{
			{Keys: bson.D{{Key: "task_id", Value: 1}}},
		}},
		{s.notifications.col, []mongo.IndexModel{
			{Keys: bson.D{{Key: "recipient_user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		}},
	} {
		if _, err := ix.col.Indexes().CreateMany(ctx, ix.models); err != nil {
			return err
		}
	}
	return nil
}

// newID returns a prefixed random identifier, e.g. "tsk_9f86d081a3b2c4d5".
func newID(prefix string) string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(err)
	}
	return prefix + "_" + hex.EncodeToString(b[:])
}

func exists(ctx context.Context, col *mongo.Collection, id string) (bool, error) {
	n, err := col.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return n > 0, nil
}
