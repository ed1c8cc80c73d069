package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/tradefund/pkg/roles"
	"github.com/Skotchmaster/tradefund/services/trading/internal/models"
	"github.com/Skotchmaster/tradefund/services/trading/internal/repo"
	"github.com/Skotchmaster/tradefund/services/trading/internal/transport"
)

type SellerService struct {
	Repo *repo.GormRepo
}

func (s *SellerService) UpsertProfile(ctx context.Context, actor Actor, req transport.SellerProfileRequest) (*models.SellerProfile, error) {
	if actor.Role != roles.Seller {
		return nil, fmt.Errorf("%w: only sellers have a seller profile", ErrForbidden)
	}
	name := strings.TrimSpace(req.CompanyName)
	if name == "" {
		return nil, fmt.Errorf("%w: company_name required", ErrValidation)
	}
	p := &models.SellerProfile{
		SellerID:          actor.ID,
		CompanyName:       name,
		LogoURL:           strings.TrimSpace(req.LogoURL),
		Description:       strings.TrimSpace(req.Description),
		Country:           strings.TrimSpace(req.Country),
		Address:           strings.TrimSpace(req.Address),
		CompanyProfileURL: strings.TrimSpace(req.CompanyProfileURL),
	}
	if err := s.Repo.UpsertSellerProfile(ctx, p); err != nil {
		return nil, err
	}
	return s.Repo.GetSellerProfile(ctx, actor.ID)
}

func (s *SellerService) GetProfile(ctx context.Context, sellerID uuid.UUID) (*models.SellerProfile, error) {
	p, err := s.Repo.GetSellerProfile(ctx, sellerID)
	if err != nil {
		return nil, notFound(err, "seller profile")
	}
	return p, nil
}
