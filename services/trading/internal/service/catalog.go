package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/pkg/metrics"
	"github.com/Skotchmaster/tradefund/pkg/roles"
	"github.com/Skotchmaster/tradefund/services/trading/internal/models"
	"github.com/Skotchmaster/tradefund/services/trading/internal/repo"
	"github.com/Skotchmaster/tradefund/services/trading/internal/search"
	"github.com/Skotchmaster/tradefund/services/trading/internal/transport"
)

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

func normCurrency(c string) (string, error) {
	c = strings.ToUpper(strings.TrimSpace(c))
	if !currencyRe.MatchString(c) {
		return "", fmt.Errorf("%w: currency %q is not a 3-letter code", ErrValidation, c)
	}
	return c, nil
}

type CatalogService struct {
	Repo *repo.GormRepo
	// Index is nil when search is disabled; listing then falls back to LIKE queries.
	Index  search.Indexer
	Events *events.BestEffort
}

func buildPrices(in []transport.PriceInput) ([]models.ProductPrice, error) {
	if len(in) == 0 {
		return nil, fmt.Errorf("%w: at least one price is required", ErrValidation)
	}
	seen := make(map[string]bool, len(in))
	out := make([]models.ProductPrice, 0, len(in))
	for _, p := range in {
		cur, err := normCurrency(p.Currency)
		if err != nil {
			return nil, err
		}
		if seen[cur] {
			return nil, fmt.Errorf("%w: duplicate price for %s", ErrValidation, cur)
		}
		if p.Amount.IsNegative() {
			return nil, fmt.Errorf("%w: price for %s must be >= 0", ErrValidation, cur)
		}
		seen[cur] = true
		out = append(out, models.ProductPrice{Currency: cur, Amount: p.Amount})
	}
	return out, nil
}

func nonNegative(name string, d decimal.Decimal) error {
	if d.IsNegative() {
		return fmt.Errorf("%w: %s must be >= 0", ErrValidation, name)
	}
	return nil
}

func (s *CatalogService) CreateProduct(ctx context.Context, actor Actor, req transport.CreateProductRequest) (*models.Product, error) {
	if actor.Role != roles.Seller {
		return nil, fmt.Errorf("%w: only sellers list products", ErrForbidden)
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("%w: name required", ErrValidation)
	}
	prices, err := buildPrices(req.Prices)
	if err != nil {
		return nil, err
	}
	if err := nonNegative("weight_kg", req.WeightKg); err != nil {
		return nil, err
	}
	if err := nonNegative("volume_cbm", req.VolumeCBM); err != nil {
		return nil, err
	}
	unit := strings.TrimSpace(req.Unit)
	if unit == "" {
		unit = "pcs"
	}

	p := &models.Product{
		SellerID:      actor.ID,
		Name:          name,
		Description:   strings.TrimSpace(req.Description),
		Unit:          unit,
		WeightKg:      req.WeightKg,
		VolumeCBM:     req.VolumeCBM,
		Status:        models.ProductPending,
		CoverImageURL: req.CoverImageURL,
		PreviewImages: datatypes.JSONSlice[string](append([]string{}, req.PreviewImages...)),
		Prices:        prices,
	}
	if err := s.Repo.CreateProduct(ctx, p); err != nil {
		return nil, err
	}

	s.Events.Emit(ctx, events.TopicTrading, events.ProductSubmitted, p.ID.String(), moderated(p))
	return p, nil
}

func moderated(p *models.Product) events.ProductModerated {
	return events.ProductModerated{
		ProductID: p.ID,
		SellerID:  p.SellerID,
		Name:      p.Name,
		Status:    string(p.Status),
		Reason:    p.RejectReason,
	}
}

func (s *CatalogService) canManage(actor Actor, p *models.Product) bool {
	return actor.Staff() || (actor.Role == roles.Seller && p.SellerID == actor.ID)
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%w: %s", ErrNotFound, what)
	}
	return err
}

// UpdateProduct edits a product. An approved product goes back to PENDING for another review.
func (s *CatalogService) UpdateProduct(ctx context.Context, actor Actor, id uuid.UUID, req transport.PatchProductRequest) (*models.Product, error) {
	var prices []models.ProductPrice
	if req.Prices != nil {
		var err error
		if prices, err = buildPrices(*req.Prices); err != nil {
			return nil, err
		}
	}

	var (
		p           *models.Product
		resubmitted bool
	)
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		p, err = tx.LockProduct(ctx, id)
		if err != nil {
			return notFound(err, "product")
		}
		if !s.canManage(actor, p) {
			return fmt.Errorf("%w: product belongs to another seller", ErrForbidden)
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return fmt.Errorf("%w: name cannot be empty", ErrValidation)
			}
			p.Name = name
		}
		if req.Description != nil {
			p.Description = strings.TrimSpace(*req.Description)
		}
		if req.Unit != nil && strings.TrimSpace(*req.Unit) != "" {
			p.Unit = strings.TrimSpace(*req.Unit)
		}
		if req.WeightKg != nil {
			if err := nonNegative("weight_kg", *req.WeightKg); err != nil {
				return err
			}
			p.WeightKg = *req.WeightKg
		}
		if req.VolumeCBM != nil {
			if err := nonNegative("volume_cbm", *req.VolumeCBM); err != nil {
				return err
			}
			p.VolumeCBM = *req.VolumeCBM
		}
		if req.CoverImageURL != nil {
			p.CoverImageURL = *req.CoverImageURL
		}
		if req.PreviewImages != nil {
			p.PreviewImages = datatypes.JSONSlice[string](append([]string{}, (*req.PreviewImages)...))
		}

		if p.Status == models.ProductApproved && p.Status.CanTransition(models.ProductPending) && !actor.Staff() {
			p.Status = models.ProductPending
			resubmitted = true
		}
		if err := tx.SaveProduct(ctx, p); err != nil {
			return err
		}
		if prices != nil {
			if err := tx.ReplacePrices(ctx, p.ID, prices); err != nil {
				return err
			}
			p.Prices = prices
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case resubmitted:
		s.unindex(ctx, p.ID)
		s.Events.Emit(ctx, events.TopicTrading, events.ProductSubmitted, p.ID.String(), moderated(p))
	case p.Status == models.ProductApproved:
		s.index(ctx, p)
	}
	return p, nil
}

func (s *CatalogService) ApproveProduct(ctx context.Context, actor Actor, id uuid.UUID) (*models.Product, error) {
	p, err := s.moderate(ctx, actor, id, models.ProductApproved, "")
	if err != nil {
		return nil, err
	}
	s.index(ctx, p)
	s.Events.Emit(ctx, events.TopicTrading, events.ProductApproved, p.ID.String(), moderated(p))
	return p, nil
}

func (s *CatalogService) RejectProduct(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*models.Product, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason required", ErrValidation)
	}
	p, err := s.moderate(ctx, actor, id, models.ProductRejected, reason)
	if err != nil {
		return nil, err
	}
	s.unindex(ctx, p.ID)
	s.Events.Emit(ctx, events.TopicTrading, events.ProductRejected, p.ID.String(), moderated(p))
	return p, nil
}

func (s *CatalogService) moderate(ctx context.Context, actor Actor, id uuid.UUID, to models.ProductStatus, reason string) (*models.Product, error) {
	if !actor.Staff() {
		return nil, fmt.Errorf("%w: trading admin only", ErrForbidden)
	}
	var p *models.Product
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		p, err = tx.LockProduct(ctx, id)
		if err != nil {
			return notFound(err, "product")
		}
		if p.Status != models.ProductPending || !p.Status.CanTransition(to) {
			return fmt.Errorf("%w: product is %s", ErrConflict, p.Status)
		}
		p.Status = to
		p.RejectReason = reason
		return tx.SaveProduct(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *CatalogService) DeleteProduct(ctx context.Context, actor Actor, id uuid.UUID) error {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return notFound(err, "product")
	}
	if !s.canManage(actor, p) {
		return fmt.Errorf("%w: product belongs to another seller", ErrForbidden)
	}
	if err := s.Repo.DeleteProduct(ctx, id); err != nil {
		return notFound(err, "product")
	}
	s.unindex(ctx, id)
	return nil
}

// GetProduct hides unapproved products from everyone except their seller and trading staff.
func (s *CatalogService) GetProduct(ctx context.Context, viewer Actor, id uuid.UUID) (*models.Product, error) {
	p, err := s.Repo.GetProduct(ctx, id)
	if err != nil {
		return nil, notFound(err, "product")
	}
	if p.Status != models.ProductApproved && !s.canManage(viewer, p) {
		return nil, fmt.Errorf("%w: product", ErrNotFound)
	}
	return p, nil
}

func (s *CatalogService) ListApproved(ctx context.Context, sellerID *uuid.UUID, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, repo.ProductFilter{SellerID: sellerID, Status: models.ProductApproved}, offset, limit)
}

func (s *CatalogService) ListMine(ctx context.Context, actor Actor, status models.ProductStatus, offset, limit int) (int64, []models.Product, error) {
	return s.Repo.ListProducts(ctx, repo.ProductFilter{SellerID: &actor.ID, Status: status}, offset, limit)
}

// ListForModeration is the admin queue; it defaults to PENDING.
func (s *CatalogService) ListForModeration(ctx context.Context, actor Actor, status models.ProductStatus, offset, limit int) (int64, []models.Product, error) {
	if !actor.Staff() {
		return 0, nil, fmt.Errorf("%w: trading admin only", ErrForbidden)
	}
	if status == "" {
		status = models.ProductPending
	}
	return s.Repo.ListProducts(ctx, repo.ProductFilter{Status: status}, offset, limit)
}

// Search looks up approved products. Elasticsearch is used when configured; a failing
// index is counted and the query is answered from the database instead.
func (s *CatalogService) Search(ctx context.Context, q string, offset, limit int) (int64, []models.Product, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return 0, []models.Product{}, nil
	}
	if s.Index != nil {
		total, ids, err := s.Index.Search(ctx, q, offset, limit)
		if err == nil {
			items, err := s.Repo.ProductsByIDs(ctx, ids)
			if err != nil {
				return 0, nil, err
			}
			return total, items, nil
		}
		metrics.RecordSideEffectFailure("search")
		logging.FromContext(ctx).Warn("search_fallback", "reason", "index unavailable", "error", err)
	}
	return s.Repo.ListProducts(ctx, repo.ProductFilter{Status: models.ProductApproved, Query: q}, offset, limit)
}

func (s *CatalogService) index(ctx context.Context, p *models.Product) {
	if s.Index == nil {
		return
	}
	s.Events.Do(ctx, "search_index", func(ctx context.Context) error { return s.Index.Index(ctx, p) })
}

func (s *CatalogService) unindex(ctx context.Context, id uuid.UUID) {
	if s.Index == nil {
		return
	}
	s.Events.Do(ctx, "search_remove", func(ctx context.Context) error { return s.Index.Remove(ctx, id) })
}
