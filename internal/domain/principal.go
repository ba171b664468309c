package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// Role identifies the permission class of a principal.
type Role string

const (
	RoleReporter Role = "reporter"
	RoleEditor   Role = "editor"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a raw role value.
func ParseRole(raw string) (Role, error) {
	switch Role(raw) {
	case RoleReporter, RoleEditor, RoleAdmin:
		return Role(raw), nil
	}
	return "", fmt.Errorf("%w: unknown role %q", ErrValidation, raw)
}

// Principal is an authenticated actor, supplied by the identity collaborator.
type Principal struct {
	ID   uuid.UUID
	Role Role
}
