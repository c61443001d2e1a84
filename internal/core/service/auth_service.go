package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

// dummyHash keeps the unknown-username path doing the same bcrypt work as
// the wrong-password path, so the two failures are indistinguishable by
// timing as well as by error kind.
var dummyHash, _ = bcrypt.GenerateFromPassword([]byte("taskflow-dummy"), bcrypt.DefaultCost)

// AuthService resolves credentials to server-tracked sessions.
type AuthService struct {
	users     ports.UserRepository
	sessions  ports.SessionStore
	jwtSecret string
	tokenTTL  time.Duration
	log       zerolog.Logger
}

func NewAuthService(users ports.UserRepository, sessions ports.SessionStore, jwtSecret string, tokenTTL time.Duration, log zerolog.Logger) *AuthService {
	if tokenTTL <= 0 {
		tokenTTL = 8 * time.Hour
	}
	return &AuthService{users: users, sessions: sessions, jwtSecret: jwtSecret, tokenTTL: tokenTTL, log: log}
}

// Authenticate verifies the credential pair and opens a session. Unknown
// username, wrong password, and deactivated account all fail with
// ErrInvalidCredentials — one error kind, no username enumeration.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*ports.LoginResult, error) {
	if username == "" || password == "" {
		return nil, domain.ErrInvalidCredentials
	}

	user, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			_ = bcrypt.CompareHashAndPassword(dummyHash, []byte(password))
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, domain.ErrInvalidCredentials
	}
	if user.Status != domain.UserActive {
		return nil, domain.ErrInvalidCredentials
	}

	session := &domain.Session{
		ID:        newSessionID(),
		UserID:    user.ID,
		Username:  user.Username,
		Role:      user.Role,
		ExpiresAt: time.Now().UTC().Add(s.tokenTTL),
	}
	if err := s.sessions.Put(ctx, session, s.tokenTTL); err != nil {
		return nil, fmt.Errorf("store session: %w", err)
	}

	token, err := s.signToken(session)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}

	s.log.Info().Str("username", user.Username).Str("role", string(user.Role)).Msg("login")
	return &ports.LoginResult{Token: token, Session: session, User: user}, nil
}

// Resolve verifies the token signature and checks the session behind it is
// still tracked. A logged-out or expired session fails with ErrSessionExpired
// even when the token itself is still within its exp claim.
func (s *AuthService) Resolve(ctx context.Context, token string) (*domain.Session, error) {
	sid, err := s.sessionID(token)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.Get(ctx, sid)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrSessionExpired
		}
		return nil, err
	}
	if session.Expired(time.Now().UTC()) {
		_ = s.sessions.Delete(ctx, sid)
		return nil, domain.ErrSessionExpired
	}
	return session, nil
}

// Logout revokes the session behind the token. Revoking an already-revoked
// session is a no-op, not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	sid, err := s.sessionID(token)
	if err != nil {
		return err
	}
	if err := s.sessions.Delete(ctx, sid); err != nil && !errors.Is(err, domain.ErrNotFound) {
		return err
	}
	return nil
}

func (s *AuthService) signToken(session *domain.Session) (string, error) {
	claims := jwt.MapClaims{
		"sub":      session.UserID,
		"username": session.Username,
		"role":     string(session.Role),
		"sid":      session.ID,
		"exp":      session.ExpiresAt.Unix(),
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString([]byte(s.jwtSecret))
}

func (s *AuthService) sessionID(token string) (string, error) {
	claims := jwt.MapClaims{}
	tkn, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, jwt.ErrTokenSignatureInvalid
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !tkn.Valid {
		return "", domain.ErrInvalidCredentials
	}
	sid, _ := claims["sid"].(string)
	if sid == "" {
		return "", domain.ErrInvalidCredentials
	}
	return sid, nil
}

func newSessionID() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("ses_%d", time.Now().UnixNano())
	}
	return "ses_" + hex.EncodeToString(b)
}
