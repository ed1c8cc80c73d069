package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/tradefund/pkg/roles"
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

// Staff is true for investment admins and super admins.
func (a Actor) Staff() bool { return roles.IsInvestmentStaff(a.Role) }

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

// uploaded checks that url points at a file the upload service stored under category.
func uploaded(url, category, field string) error {
	if !strings.HasPrefix(url, "/uploads/"+category+"/") || strings.Contains(url, "..") {
		return fmt.Errorf("%w: %s must be an /uploads/%s/ url", ErrValidation, field, category)
	}
	return nil
}
