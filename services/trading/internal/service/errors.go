package service

import (
	"errors"

	"github.com/google/uuid"

	"github.com/Skotchmaster/tradefund/pkg/roles"
)

var (
	ErrValidation = errors.New("validation") // 400
	ErrForbidden  = errors.New("forbidden")  // 403
	ErrNotFound   = errors.New("not found")  // 404
	ErrConflict   = errors.New("conflict")   // 409
)

// Actor is the authenticated caller of a service operation.
type Actor struct {
	ID   uuid.UUID
	Role string
}

func (a Actor) Staff() bool { return roles.IsTradingStaff(a.Role) }
