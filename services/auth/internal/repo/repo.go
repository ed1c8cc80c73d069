package repo

import (
	"errors"

	"gorm.io/gorm"
)

var (
	ErrUserAlreadyExist   = errors.New("user already exist")
	ErrTokenRevoked       = errors.New("token expired or revoked")
)

type GormRepo struct {
	DB *gorm.DB
}
