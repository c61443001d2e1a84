package service

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/taskflow/taskflow-core/internal/core/domain"
	"github.com/taskflow/taskflow-core/internal/core/ports"
)

// UserService manages team members. Accounts are never hard-deleted;
// offboarding patches the status to inactive so history stays attributable.
type UserService struct {
	store      ports.Store
	authorizer ports.Authorizer
	dispatcher NotifyDispatcher
	log        zerolog.Logger
}

func NewUserService(store ports.Store, authorizer ports.Authorizer, dispatcher NotifyDispatcher, log zerolog.Logger) *UserService {
	return &UserService{store: store, authorizer: authorizer, dispatcher: dispatcher, log: log}
}

func (s *UserService) Create(ctx context.Context, session *domain.Session, in ports.CreateUserInput) (*domain.User, error) {
	if err := s.authorizer.Authorize(session, domain.ActionManageTeam, nil).Err(); err != nil {
		return nil, err
	}
	if in.Username == "" || in.Password == "" || in.DisplayName == "" {
		return nil, fmt.Errorf("username, password, and display name are required: %w", domain.ErrValidationFailed)
	}
	if !in.Role.Valid() {
		return nil, fmt.Errorf("role %q: %w", in.Role, domain.ErrValidationFailed)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	joinDate := in.JoinDate
	if joinDate.IsZero() {
		joinDate = time.Now().UTC()
	}

	user, err := s.store.Users().Create(ctx, &domain.User{
		Username:     in.Username,
		DisplayName:  in.DisplayName,
		Email:        in.Email,
		Phone:        in.Phone,
		Position:     in.Position,
		PasswordHash: string(hash),
		Role:         in.Role,
		DepartmentID: in.DepartmentID,
		Status:       domain.UserActive,
		JoinDate:     joinDate,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info().Str("username", user.Username).Str("role", string(user.Role)).Str("actor", session.Username).Msg("user onboarded")
	return user, nil
}

func (s *UserService) Get(ctx context.Context, session *domain.Session, id string) (*domain.User, error) {
	// Users may always read their own profile.
	if session.UserID != id {
		if err := s.authorizer.Authorize(session, domain.ActionManageTeam, nil).Err(); err != nil {
			return nil, err
		}
	}
	return s.store.Users().GetByID(ctx, id)
}

func (s *UserService) List(ctx context.Context, session *domain.Session, f ports.UserFilter) ([]*domain.User, error) {
	if err := s.authorizer.Authorize(session, domain.ActionManageTeam, nil).Err(); err != nil {
		return nil, err
	}
	return s.store.Users().List(ctx, f)
}

func (s *UserService) Update(ctx context.Context, session *domain.Session, id string, in ports.UpdateUserInput) (*domain.User, error) {
	// Profile fields are self-serve; role, status, and department moves
	// require manageTeam.
	gated := in.Role != nil || in.Status != nil || in.DepartmentID != nil
	if gated || session.UserID != id {
		if err := s.authorizer.Authorize(session, domain.ActionManageTeam, nil).Err(); err != nil {
			return nil, err
		}
	}

	var movedDepartment bool
	user, err := s.store.Users().Update(ctx, id, func(u *domain.User) error {
		if in.DisplayName != nil {
			u.DisplayName = *in.DisplayName
		}
		if in.Email != nil {
			u.Email = *in.Email
		}
		if in.Phone != nil {
			u.Phone = *in.Phone
		}
		if in.Position != nil {
			u.Position = *in.Position
		}
		if in.Role != nil {
			if !in.Role.Valid() {
				return fmt.Errorf("role %q: %w", *in.Role, domain.ErrValidationFailed)
			}
			u.Role = *in.Role
		}
		if in.DepartmentID != nil && *in.DepartmentID != u.DepartmentID {
			u.DepartmentID = *in.DepartmentID
			movedDepartment = true
		}
		if in.Status != nil {
			u.Status = *in.Status
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if movedDepartment {
		s.dispatcher.Enqueue(ports.NotifyInput{
			RecipientUserID: user.ID,
			Kind:            domain.NotifTeamChange,
			Priority:        domain.NotifMedium,
			Title:           "Department changed",
			Message:         fmt.Sprintf("You were moved by %s", session.Username),
			RelatedEntityID: user.DepartmentID,
		})
	}
	return user, nil
}
