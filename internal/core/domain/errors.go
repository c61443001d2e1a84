package domain

import "errors"

// Sentinel errors form the error taxonomy of the core. Transports map these
// to status codes; services wrap them with context via fmt.Errorf("%w").
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrSessionExpired     = errors.New("session expired or revoked")
	ErrRoleInsufficient   = errors.New("role lacks required permission")
	ErrNotResourceOwner   = errors.New("actor does not own the resource")
	ErrDanglingReference  = errors.New("referenced entity does not exist")
	ErrDepartmentNotEmpty = errors.New("department still has members or projects")
	ErrIllegalTransition  = errors.New("illegal task status transition")
	ErrValidationFailed   = errors.New("validation failed")
	ErrNotFound           = errors.New("entity not found")
)
