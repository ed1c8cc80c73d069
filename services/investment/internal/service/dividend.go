package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/services/investment/internal/models"
	"github.com/Skotchmaster/tradefund/services/investment/internal/repo"
	"github.com/Skotchmaster/tradefund/services/investment/internal/transport"
)

type DividendService struct {
	Repo   *repo.GormRepo
	Events *events.BestEffort
}

// Distribute splits a dividend across confirmed investors pro rata and stores every payout
// with the dividend in one transaction.
func (s *DividendService) Distribute(ctx context.Context, actor Actor, projectID uuid.UUID, req transport.DistributeRequest) (*models.Dividend, error) {
	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be > 0", ErrValidation)
	}
	period := strings.TrimSpace(req.Period)
	if period == "" {
		return nil, fmt.Errorf("%w: period required", ErrValidation)
	}

	var d *models.Dividend
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		p, err := tx.LockProject(ctx, projectID)
		if err != nil {
			return notFound(err, "project")
		}
		if !actor.Staff() && p.OwnerID != actor.ID {
			return fmt.Errorf("%w: project belongs to another owner", ErrForbidden)
		}
		if p.Status != models.ProjectFunded && p.Status != models.ProjectClosed && p.Status != models.ProjectOpen {
			return fmt.Errorf("%w: project is %s", ErrConflict, p.Status)
		}
		holdings, err := tx.Holdings(ctx, p.ID)
		if err != nil {
			return err
		}
		payouts := models.Split(req.Amount, holdings)
		if len(payouts) == 0 {
			return fmt.Errorf("%w: project has no confirmed investors", ErrValidation)
		}
		for i := range payouts {
			payouts[i].ProjectID = p.ID
			payouts[i].Currency = p.Currency
		}
		d = &models.Dividend{
			ProjectID:     p.ID,
			Period:        period,
			Amount:        req.Amount,
			Currency:      p.Currency,
			DistributedBy: actor.ID,
			Payouts:       payouts,
		}
		return tx.CreateDividend(ctx, d)
	})
	if err != nil {
		return nil, err
	}

	out := make([]events.DividendPayout, 0, len(d.Payouts))
	for _, po := range d.Payouts {
		out = append(out, events.DividendPayout{InvestorID: po.InvestorID, Amount: po.Amount})
	}
	s.Events.Emit(ctx, events.TopicInvestment, events.DividendDistributed, d.ProjectID.String(), events.DividendIssued{
		DividendID: d.ID,
		ProjectID:  d.ProjectID,
		Period:     d.Period,
		Currency:   d.Currency,
		Payouts:    out,
	})
	return d, nil
}

// ListForProject shows dividends with payouts to the owner and the desk. Investors see the
// dividends but only their own payout lines.
func (s *DividendService) ListForProject(ctx context.Context, actor Actor, projectID uuid.UUID) ([]models.Dividend, error) {
	p, err := s.Repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, notFound(err, "project")
	}
	full := actor.Staff() || p.OwnerID == actor.ID
	if !full {
		ok, err := s.Repo.HasConfirmed(ctx, projectID, actor.ID)
		if err != nil {
			return nil, err
		}
		if !ok {
			return nil, fmt.Errorf("%w: not an investor of this project", ErrForbidden)
		}
	}
	items, err := s.Repo.ListDividends(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !full {
		for i := range items {
			mine := items[i].Payouts[:0]
			for _, po := range items[i].Payouts {
				if po.InvestorID == actor.ID {
					mine = append(mine, po)
				}
			}
			items[i].Payouts = mine
		}
	}
	return items, nil
}

func (s *DividendService) MyPayouts(ctx context.Context, actor Actor, offset, limit int) (int64, []models.DividendPayout, error) {
	return s.Repo.ListPayouts(ctx, actor.ID, offset, limit)
}
