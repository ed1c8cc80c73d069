package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/pkg/roles"
	"github.com/Skotchmaster/tradefund/services/investment/internal/models"
	"github.com/Skotchmaster/tradefund/services/investment/internal/repo"
	"github.com/Skotchmaster/tradefund/services/investment/internal/transport"
)

type InvestmentService struct {
	Repo   *repo.GormRepo
	Events *events.BestEffort
}

// Invest records a pledge backed by a transfer proof. It stays PENDING until the desk checks the transfer.
func (s *InvestmentService) Invest(ctx context.Context, actor Actor, projectID uuid.UUID, req transport.InvestRequest) (*models.Investment, error) {
	if actor.Role != roles.Investor {
		return nil, fmt.Errorf("%w: only investors invest", ErrForbidden)
	}
	proof := strings.TrimSpace(req.TransferProofURL)
	if err := uploaded(proof, "transfer-proof", "transfer_proof_url"); err != nil {
		return nil, err
	}
	p, err := s.Repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, notFound(err, "project")
	}
	if p.Status != models.ProjectOpen {
		return nil, fmt.Errorf("%w: project is %s", ErrConflict, p.Status)
	}
	if req.Amount.LessThan(p.MinInvestment) {
		return nil, fmt.Errorf("%w: minimum investment is %s %s", ErrValidation, p.MinInvestment.StringFixed(2), p.Currency)
	}

	inv := &models.Investment{
		ProjectID:        p.ID,
		InvestorID:       actor.ID,
		Amount:           req.Amount,
		Currency:         p.Currency,
		TransferProofURL: proof,
		Status:           models.InvestmentPending,
	}
	if err := s.Repo.CreateInvestment(ctx, inv); err != nil {
		return nil, err
	}
	s.Events.Emit(ctx, events.TopicInvestment, events.InvestmentCreated, inv.ID.String(), investmentReviewed(inv, p.OwnerID))
	return inv, nil
}

// Confirm accepts the transfer and adds it to the raised amount in the same transaction.
// The project flips to FUNDED once the target is reached.
func (s *InvestmentService) Confirm(ctx context.Context, actor Actor, id uuid.UUID) (*models.Investment, error) {
	if !actor.Staff() {
		return nil, fmt.Errorf("%w: investment admin only", ErrForbidden)
	}
	var (
		inv    *models.Investment
		p      *models.Project
		funded bool
	)
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		if inv, err = tx.LockInvestment(ctx, id); err != nil {
			return notFound(err, "investment")
		}
		if !inv.Status.CanTransition(models.InvestmentConfirmed) {
			return fmt.Errorf("%w: investment is %s", ErrConflict, inv.Status)
		}
		if p, err = tx.LockProject(ctx, inv.ProjectID); err != nil {
			return notFound(err, "project")
		}
		if p.Status != models.ProjectOpen && p.Status != models.ProjectFunded {
			return fmt.Errorf("%w: project is %s", ErrConflict, p.Status)
		}

		now := time.Now().UTC()
		inv.Status = models.InvestmentConfirmed
		inv.ReviewedBy = &actor.ID
		inv.ReviewedAt = &now
		if err := tx.SaveInvestment(ctx, inv); err != nil {
			return err
		}

		p.RaisedAmount = p.RaisedAmount.Add(inv.Amount)
		if p.Status == models.ProjectOpen && p.RaisedAmount.GreaterThanOrEqual(p.TargetAmount) {
			p.Status = models.ProjectFunded
			funded = true
		}
		return tx.SaveProject(ctx, p)
	})
	if err != nil {
		return nil, err
	}

	s.Events.Emit(ctx, events.TopicInvestment, events.InvestmentConfirmed, inv.ID.String(), investmentReviewed(inv, p.OwnerID))
	if funded {
		s.Events.Emit(ctx, events.TopicInvestment, events.ProjectFunded, p.ID.String(), reviewed(p))
	}
	return inv, nil
}

func (s *InvestmentService) Reject(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*models.Investment, error) {
	if !actor.Staff() {
		return nil, fmt.Errorf("%w: investment admin only", ErrForbidden)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason required", ErrValidation)
	}
	var inv *models.Investment
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		if inv, err = tx.LockInvestment(ctx, id); err != nil {
			return notFound(err, "investment")
		}
		if !inv.Status.CanTransition(models.InvestmentRejected) {
			return fmt.Errorf("%w: investment is %s", ErrConflict, inv.Status)
		}
		now := time.Now().UTC()
		inv.Status = models.InvestmentRejected
		inv.RejectReason = reason
		inv.ReviewedBy = &actor.ID
		inv.ReviewedAt = &now
		return tx.SaveInvestment(ctx, inv)
	})
	if err != nil {
		return nil, err
	}
	var owner uuid.UUID
	if p, err := s.Repo.GetProject(ctx, inv.ProjectID); err == nil {
		owner = p.OwnerID
	}
	s.Events.Emit(ctx, events.TopicInvestment, events.InvestmentRejected, inv.ID.String(), investmentReviewed(inv, owner))
	return inv, nil
}

func investmentReviewed(inv *models.Investment, ownerID uuid.UUID) events.InvestmentReviewed {
	return events.InvestmentReviewed{
		InvestmentID: inv.ID,
		ProjectID:    inv.ProjectID,
		InvestorID:   inv.InvestorID,
		OwnerID:      ownerID,
		Amount:       inv.Amount,
		Currency:     inv.Currency,
		Status:       string(inv.Status),
	}
}

func (s *InvestmentService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.Investment, error) {
	inv, err := s.Repo.GetInvestment(ctx, id)
	if err != nil {
		return nil, notFound(err, "investment")
	}
	if actor.Staff() || inv.InvestorID == actor.ID {
		return inv, nil
	}
	p, err := s.Repo.GetProject(ctx, inv.ProjectID)
	if err != nil {
		return nil, notFound(err, "project")
	}
	if p.OwnerID != actor.ID {
		return nil, fmt.Errorf("%w: investment belongs to another investor", ErrForbidden)
	}
	return inv, nil
}

func (s *InvestmentService) ListMine(ctx context.Context, actor Actor, status models.InvestmentStatus, offset, limit int) (int64, []models.Investment, error) {
	return s.Repo.ListInvestments(ctx, repo.InvestmentFilter{InvestorID: &actor.ID, Status: status}, offset, limit)
}

// ListForProject is open to the project owner and the desk.
func (s *InvestmentService) ListForProject(ctx context.Context, actor Actor, projectID uuid.UUID, status models.InvestmentStatus, offset, limit int) (int64, []models.Investment, error) {
	p, err := s.Repo.GetProject(ctx, projectID)
	if err != nil {
		return 0, nil, notFound(err, "project")
	}
	if !actor.Staff() && p.OwnerID != actor.ID {
		return 0, nil, fmt.Errorf("%w: project belongs to another owner", ErrForbidden)
	}
	return s.Repo.ListInvestments(ctx, repo.InvestmentFilter{ProjectID: &projectID, Status: status}, offset, limit)
}

// ListForReview is the desk queue of transfers to check; it defaults to PENDING.
func (s *InvestmentService) ListForReview(ctx context.Context, actor Actor, status models.InvestmentStatus, offset, limit int) (int64, []models.Investment, error) {
	if !actor.Staff() {
		return 0, nil, fmt.Errorf("%w: investment admin only", ErrForbidden)
	}
	if status == "" {
		status = models.InvestmentPending
	}
	return s.Repo.ListInvestments(ctx, repo.InvestmentFilter{Status: status}, offset, limit)
}
