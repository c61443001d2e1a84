// Package memory implements the entity store in process memory. It is the
// authoritative owner of all entity instances: every read hands out a copy
// and every write revalidates referential invariants before committing.
package memory

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

// Store holds every collection. Each collection guards its map with its own
// mutex and serializes read-modify-write per entity id through keyedLocks,
// so unrelated entities never contend on a global lock.
type Store struct {
	users         *userRepo
	departments   *departmentRepo
	clients       *clientRepo
	projects      *projectRepo
	tasks         *taskRepo
	comments      *commentRepo
	notifications *notificationRepo
}

// New returns an empty store.
func New() *Store {
	s := &Store{}
	s.users = &userRepo{store: s, byID: map[string]*domain.User{}}
	s.departments = &departmentRepo{store: s, byID: map[string]*domain.Department{}}
	s.clients = &clientRepo{store: s, byID: map[string]*domain.Client{}}
	s.projects = &projectRepo{store: s, byID: map[string]*domain.Project{}}
	s.tasks = &taskRepo{store: s, byID: map[string]*domain.Task{}, locks: newKeyedLocks()}
	s.comments = &commentRepo{store: s, byID: map[string]*domain.Comment{}}
	s.notifications = &notificationRepo{store: s, byID: map[string]*domain.Notification{}, recipients: newKeyedLocks()}
	return s
}

func (s *Store) Users() ports.UserRepository                 { return s.users }
func (s *Store) Departments() ports.DepartmentRepository     { return s.departments }
func (s *Store) Clients() ports.ClientRepository             { return s.clients }
func (s *Store) Projects() ports.ProjectRepository           { return s.projects }
func (s *Store) Tasks() ports.TaskRepository                 { return s.tasks }
func (s *Store) Comments() ports.CommentRepository           { return s.comments }
func (s *Store) Notifications() ports.NotificationRepository { return s.notifications }

// newID returns an opaque unique identifier in the format <prefix>_XXXXXXXXXXXX.
func newID(prefix string) string {
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%s_%012x", prefix, time.Now().UnixNano())
	}
	return fmt.Sprintf("%s_%x", prefix, b)
}

// keyedLocks hands out one mutex per key so writers on different entities
// proceed independently. Locks are never removed; the key space is bounded
// by the number of entities.
type keyedLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newKeyedLocks() *keyedLocks {
	return &keyedLocks{m: map[string]*sync.Mutex{}}
}

// acquire locks the mutex for key and returns its unlock func.
func (k *keyedLocks) acquire(key string) func() {
	k.mu.Lock()
	l, ok := k.m[key]
	if !ok {
		l = &sync.Mutex{}
		k.m[key] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}
