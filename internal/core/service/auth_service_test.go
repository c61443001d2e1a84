package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/store/memory"
)

func newAuthFixture(t *testing.T) (*AuthService, *memory.Store) {
	t.Helper()
	store := memory.New()
	if err := memory.Seed(context.Background(), store); err != nil {
		t.Fatalf("seed: %v", err)
	}
	svc := NewAuthService(store.Users(), memory.NewSessionStore(), "test-secret", time.Hour, zerolog.Nop())
	return svc, store
}

func TestAuthenticate_Success(t *testing.T) {
	svc, _ := newAuthFixture(t)

	res, err := svc.Authenticate(context.Background(), "john.doe", "john123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if res.Token == "" {
		t.Error("token must not be empty")
	}
	if res.Session.Role != domain.RoleEmployee {
		t.Errorf("expected employee role, got %s", res.Session.Role)
	}
	if res.Session.UserID != res.User.ID {
		t.Error("session user id must match the user")
	}
	if res.Session.ExpiresAt.IsZero() {
		t.Error("session must carry an expiry")
	}
}

func TestAuthenticate_SameErrorForUnknownUserAndWrongPassword(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	_, unknownErr := svc.Authenticate(ctx, "nobody", "whatever")
	_, wrongPwErr := svc.Authenticate(ctx, "john.doe", "wrong")

	if !errors.Is(unknownErr, domain.ErrInvalidCredentials) {
		t.Fatalf("unknown user: expected ErrInvalidCredentials, got %v", unknownErr)
	}
	if !errors.Is(wrongPwErr, domain.ErrInvalidCredentials) {
		t.Fatalf("wrong password: expected ErrInvalidCredentials, got %v", wrongPwErr)
	}
}

func TestAuthenticate_InactiveUserRejected(t *testing.T) {
	svc, store := newAuthFixture(t)
	ctx := context.Background()

	if _, err := store.Users().Update(ctx, "usr_john", func(u *domain.User) error {
		u.Status = domain.UserInactive
		return nil
	}); err != nil {
		t.Fatalf("deactivate: %v", err)
	}

	_, err := svc.Authenticate(ctx, "john.doe", "john123")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}

func TestResolve_AfterLogout(t *testing.T) {
	svc, _ := newAuthFixture(t)
	ctx := context.Background()

	res, err := svc.Authenticate(ctx, "jane.smith", "jane123")
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	session, err := svc.Resolve(ctx, res.Token)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if session.Username != "jane.smith" {
		t.Errorf("resolved wrong session: %s", session.Username)
	}

	if err := svc.Logout(ctx, res.Token); err != nil {
		t.Fatalf("logout: %v", err)
	}

	_, err = svc.Resolve(ctx, res.Token)
	if !errors.Is(err, domain.ErrSessionExpired) {
		t.Fatalf("expected ErrSessionExpired after logout, got %v", err)
	}
}

func TestResolve_GarbageToken(t *testing.T) {
	svc, _ := newAuthFixture(t)

	_, err := svc.Resolve(context.Background(), "not-a-token")
	if !errors.Is(err, domain.ErrInvalidCredentials) {
		t.Fatalf("expected ErrInvalidCredentials, got %v", err)
	}
}
