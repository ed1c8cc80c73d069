package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/pkg/roles"
	"github.com/Skotchmaster/tradefund/services/auth/internal/models"
	"github.com/Skotchmaster/tradefund/services/auth/internal/repo"
	"github.com/Skotchmaster/tradefund/services/auth/internal/transport"
)

func (s *AuthService) Me(ctx context.Context, id uuid.UUID) (*models.User, error) {
	u, err := s.Repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("%w: user", ErrNotFound)
		}
		return nil, err
	}
	return u, nil
}

func (s *AuthService) UpdateProfile(ctx context.Context, id uuid.UUID, req transport.PatchProfileRequest) (*models.User, error) {
	u, err := s.Me(ctx, id)
	if err != nil {
		return nil, err
	}
	if req.FullName != nil {
		name := strings.TrimSpace(*req.FullName)
		if name == "" {
			return nil, fmt.Errorf("%w: full_name cannot be empty", ErrValidation)
		}
		u.FullName = name
	}
	if req.Phone != nil {
		u.Phone = strings.TrimSpace(*req.Phone)
	}
	if err := s.Repo.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) SubmitKYC(ctx context.Context, id uuid.UUID, documentURL string) (*models.User, error) {
	documentURL = strings.TrimSpace(documentURL)
	if !strings.HasPrefix(documentURL, "/uploads/kyc/") {
		return nil, fmt.Errorf("%w: document_url must point to an uploaded kyc file", ErrValidation)
	}
	u, err := s.Me(ctx, id)
	if err != nil {
		return nil, err
	}
	if !u.KYCStatus.CanTransition(models.KYCPending) {
		return nil, fmt.Errorf("%w: kyc is %s", ErrConflict, u.KYCStatus)
	}
	u.KYCStatus = models.KYCPending
	u.KYCDocumentURL = documentURL
	u.KYCNote = ""
	if err := s.Repo.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *AuthService) ReviewKYC(ctx context.Context, userID uuid.UUID, approve bool, note string) (*models.User, error) {
	u, err := s.Me(ctx, userID)
	if err != nil {
		return nil, err
	}
	to := models.KYCRejected
	if approve {
		to = models.KYCVerified
	}
	if u.KYCStatus != models.KYCPending || !u.KYCStatus.CanTransition(to) {
		return nil, fmt.Errorf("%w: kyc is %s", ErrConflict, u.KYCStatus)
	}
	if !approve && strings.TrimSpace(note) == "" {
		return nil, fmt.Errorf("%w: rejection note required", ErrValidation)
	}
	u.KYCStatus = to
	u.KYCNote = strings.TrimSpace(note)
	if err := s.Repo.SaveUser(ctx, u); err != nil {
		return nil, err
	}

	s.Events.Emit(ctx, events.TopicUser, events.KYCReviewed, u.ID.String(), events.UserChanged{
		UserID: u.ID,
		Email:  u.Email,
		Role:   u.Role,
		Status: string(u.KYCStatus),
	})
	return u, nil
}

func (s *AuthService) ListUsers(ctx context.Context, f repo.UserFilter, offset, limit int) (int64, []models.User, error) {
	return s.Repo.ListUsers(ctx, f, offset, limit)
}

// EnsureSuperAdmin creates the bootstrap super admin when no account uses the email yet.
func (s *AuthService) EnsureSuperAdmin(ctx context.Context, email, password string) error {
	if email == "" || password == "" {
		return nil
	}
	_, err := s.CreateUser(ctx, RegisterInput{
		Email:    email,
		Password: password,
		FullName: "Super Admin",
		Role:     roles.SuperAdmin,
	})
	if errors.Is(err, ErrConflict) {
		return nil
	}
	return err
}
