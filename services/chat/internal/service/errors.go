package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/tradefund/pkg/roles"
	"github.com/Skotchmaster/tradefund/services/chat/internal/models"
)

var (
	ErrValidation = errors.New("validation")
	ErrForbidden  = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
	ErrConflict   = errors.New("conflict")
)

type Actor struct {
	ID   uuid.UUID
	Role string
}

// StaffFor reports whether the actor may read chats of the kind without being a participant.
func (a Actor) StaffFor(kind models.ChatKind) bool {
	switch kind {
	case models.ChatOrder:
		return roles.IsTradingStaff(a.Role)
	case models.ChatProject:
		return roles.IsInvestmentStaff(a.Role)
	}
	return a.Role == roles.SuperAdmin
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}
