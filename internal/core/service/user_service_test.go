package service

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
	"github.com/taskflow/taskflow-core/internal/store/memory"
)

func newUserFixture(t *testing.T) (*UserService, *memory.Store, *captureDispatcher) {
	t.Helper()
	store := memory.New()
	if err := memory.Seed(context.Background(), store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	dispatcher := &captureDispatcher{}
	return NewUserService(store, NewAuthorizer(), dispatcher, zerolog.Nop()), store, dispatcher
}

func TestUserCreate_HashesPasswordAndDefaults(t *testing.T) {
	svc, _, _ := newUserFixture(t)

	u, err := svc.Create(context.Background(), leadSession, ports.CreateUserInput{
		Username:     "sam.lee",
		Password:     "sam123",
		DisplayName:  "Sam Lee",
		Role:         domain.RoleEmployee,
		DepartmentID: "dep_design",
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if u.Status != domain.UserActive {
		t.Fatalf("expected active, got %s", u.Status)
	}
	if u.JoinDate.IsZero() {
		t.Fatal("join date must default to now")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("sam123")); err != nil {
		t.Fatalf("stored hash must verify: %v", err)
	}
}

func TestUserCreate_GatedAndValidated(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	// Project managers hold no manageTeam permission.
	_, err := svc.Create(ctx, janeSession, ports.CreateUserInput{
		Username: "x", Password: "x", DisplayName: "X", Role: domain.RoleEmployee,
	})
	if !errors.Is(err, domain.ErrRoleInsufficient) {
		t.Fatalf("expected ErrRoleInsufficient, got %v", err)
	}

	_, err = svc.Create(ctx, leadSession, ports.CreateUserInput{
		Username: "no.role", Password: "pw", DisplayName: "No Role", Role: "director",
	})
	if !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed for unknown role, got %v", err)
	}

	// Usernames are unique.
	_, err = svc.Create(ctx, leadSession, ports.CreateUserInput{
		Username: "john.doe", Password: "pw", DisplayName: "Dup", Role: domain.RoleEmployee,
	})
	if !errors.Is(err, domain.ErrValidationFailed) {
		t.Fatalf("expected ErrValidationFailed for duplicate username, got %v", err)
	}
}

func TestUserGet_SelfAlwaysAllowed(t *testing.T) {
	svc, _, _ := newUserFixture(t)
	ctx := context.Background()

	if _, err := svc.Get(ctx, johnSession, "usr_john"); err != nil {
		t.Fatalf("self read: %v", err)
	}
	if _, err := svc.Get(ctx, johnSession, "usr_jane"); !errors.Is(err, domain.ErrRoleInsufficient) {
		t.Fatalf("expected ErrRoleInsufficient on foreign read, got %v", err)
	}
	if _, err := svc.Get(ctx, leadSession, "usr_jane"); err != nil {
		t.Fatalf("manageTeam read: %v", err)
	}
}

func TestUserUpdate_SelfServeVsGated(t *testing.T) {
	svc, _, dispatcher := newUserFixture(t)
	ctx := context.Background()

	// Profile fields are self-serve.
	phone := "+1-555-0199"
	u, err := svc.Update(ctx, johnSession, "usr_john", ports.UpdateUserInput{Phone: &phone})
	if err != nil {
		t.Fatalf("self update: %v", err)
	}
	if u.Phone != phone {
		t.Fatalf("phone not applied: %q", u.Phone)
	}

	// Role changes are not, even on one's own account.
	role := domain.RoleTeamLead
	if _, err := svc.Update(ctx, johnSession, "usr_john", ports.UpdateUserInput{Role: &role}); !errors.Is(err, domain.ErrRoleInsufficient) {
		t.Fatalf("expected ErrRoleInsufficient on self promotion, got %v", err)
	}

	// A department move notifies the moved user.
	dept := "dep_dev"
	if _, err := svc.Update(ctx, leadSession, "usr_john", ports.UpdateUserInput{DepartmentID: &dept}); err != nil {
		t.Fatalf("department move: %v", err)
	}
	events := dispatcher.byKind(domain.NotifTeamChange)
	if len(events) != 1 || events[0].RecipientUserID != "usr_john" {
		t.Fatalf("expected one team change notification for usr_john, got %+v", events)
	}

	// Offboarding is a status patch, not a delete.
	status := domain.UserInactive
	u, err = svc.Update(ctx, superSession, "usr_john", ports.UpdateUserInput{Status: &status})
	if err != nil {
		t.Fatalf("offboard: %v", err)
	}
	if u.Status != domain.UserInactive {
		t.Fatalf("expected inactive, got %s", u.Status)
	}
}
