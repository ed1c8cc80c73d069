package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/pkg/roles"
	"github.com/Skotchmaster/tradefund/services/investment/internal/models"
	"github.com/Skotchmaster/tradefund/services/investment/internal/repo"
	"github.com/Skotchmaster/tradefund/services/investment/internal/transport"
)

var currencyRe = regexp.MustCompile(`^[A-Z]{3}$`)

type ProjectService struct {
	Repo   *repo.GormRepo
	Events *events.BestEffort
}

func validateAmounts(target, minimum decimal.Decimal) error {
	if !target.IsPositive() {
		return fmt.Errorf("%w: target_amount must be > 0", ErrValidation)
	}
	if !minimum.IsPositive() {
		return fmt.Errorf("%w: min_investment must be > 0", ErrValidation)
	}
	if minimum.GreaterThan(target) {
		return fmt.Errorf("%w: min_investment cannot exceed target_amount", ErrValidation)
	}
	return nil
}

func validateProject(p *models.Project) error {
	if p.Title == "" {
		return fmt.Errorf("%w: title required", ErrValidation)
	}
	if err := validateAmounts(p.TargetAmount, p.MinInvestment); err != nil {
		return err
	}
	if p.ProspectusURL != "" {
		if err := uploaded(p.ProspectusURL, "prospectus", "prospectus_url"); err != nil {
			return err
		}
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return fmt.Errorf("%w: end_date before start_date", ErrValidation)
	}
	return nil
}

func (s *ProjectService) CreateProject(ctx context.Context, actor Actor, req transport.CreateProjectRequest) (*models.Project, error) {
	if actor.Role != roles.ProjectOwner {
		return nil, fmt.Errorf("%w: only project owners create projects", ErrForbidden)
	}
	cur := strings.ToUpper(strings.TrimSpace(req.Currency))
	if !currencyRe.MatchString(cur) {
		return nil, fmt.Errorf("%w: currency %q is not a 3-letter code", ErrValidation, req.Currency)
	}
	p := &models.Project{
		OwnerID:       actor.ID,
		Title:         strings.TrimSpace(req.Title),
		Description:   strings.TrimSpace(req.Description),
		Sector:        strings.TrimSpace(req.Sector),
		Currency:      cur,
		TargetAmount:  req.TargetAmount,
		MinInvestment: req.MinInvestment,
		RaisedAmount:  decimal.Zero,
		ProspectusURL: strings.TrimSpace(req.ProspectusURL),
		StartDate:     req.StartDate,
		EndDate:       req.EndDate,
		Status:        models.ProjectDraft,
	}
	if err := validateProject(p); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *ProjectService) canManage(actor Actor, p *models.Project) bool {
	return actor.Staff() || (actor.Role == roles.ProjectOwner && p.OwnerID == actor.ID)
}

// UpdateProject edits the pitch. Owners may only edit before the project opens.
func (s *ProjectService) UpdateProject(ctx context.Context, actor Actor, id uuid.UUID, req transport.PatchProjectRequest) (*models.Project, error) {
	var p *models.Project
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		p, err = tx.LockProject(ctx, id)
		if err != nil {
			return notFound(err, "project")
		}
		if !s.canManage(actor, p) {
			return fmt.Errorf("%w: project belongs to another owner", ErrForbidden)
		}
		if !actor.Staff() && !p.Status.Editable() {
			return fmt.Errorf("%w: project is %s", ErrConflict, p.Status)
		}

		if req.Title != nil {
			p.Title = strings.TrimSpace(*req.Title)
		}
		if req.Description != nil {
			p.Description = strings.TrimSpace(*req.Description)
		}
		if req.Sector != nil {
			p.Sector = strings.TrimSpace(*req.Sector)
		}
		if req.TargetAmount != nil {
			p.TargetAmount = *req.TargetAmount
		}
		if req.MinInvestment != nil {
			p.MinInvestment = *req.MinInvestment
		}
		if req.ProspectusURL != nil {
			p.ProspectusURL = strings.TrimSpace(*req.ProspectusURL)
		}
		if req.StartDate != nil {
			p.StartDate = req.StartDate
		}
		if req.EndDate != nil {
			p.EndDate = req.EndDate
		}
		if err := validateProject(p); err != nil {
			return err
		}
		return tx.SaveProject(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

// SubmitProject sends a draft to the investment desk for review.
func (s *ProjectService) SubmitProject(ctx context.Context, actor Actor, id uuid.UUID) (*models.Project, error) {
	p, err := s.transition(ctx, id, models.ProjectPendingReview, "", func(p *models.Project) error {
		if p.OwnerID != actor.ID {
			return fmt.Errorf("%w: project belongs to another owner", ErrForbidden)
		}
		if p.ProspectusURL == "" {
			return fmt.Errorf("%w: a prospectus is required before review", ErrValidation)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.Events.Emit(ctx, events.TopicInvestment, events.ProjectSubmitted, p.ID.String(), reviewed(p))
	return p, nil
}

func (s *ProjectService) ApproveProject(ctx context.Context, actor Actor, id uuid.UUID) (*models.Project, error) {
	if !actor.Staff() {
		return nil, fmt.Errorf("%w: investment admin only", ErrForbidden)
	}
	p, err := s.transition(ctx, id, models.ProjectOpen, "", nil)
	if err != nil {
		return nil, err
	}
	s.Events.Emit(ctx, events.TopicInvestment, events.ProjectApproved, p.ID.String(), reviewed(p))
	return p, nil
}

func (s *ProjectService) RejectProject(ctx context.Context, actor Actor, id uuid.UUID, reason string) (*models.Project, error) {
	if !actor.Staff() {
		return nil, fmt.Errorf("%w: investment admin only", ErrForbidden)
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: rejection reason required", ErrValidation)
	}
	p, err := s.transition(ctx, id, models.ProjectRejected, reason, nil)
	if err != nil {
		return nil, err
	}
	s.Events.Emit(ctx, events.TopicInvestment, events.ProjectRejected, p.ID.String(), reviewed(p))
	return p, nil
}

// CloseProject stops fundraising. The owner or the investment desk may close an open or funded project.
func (s *ProjectService) CloseProject(ctx context.Context, actor Actor, id uuid.UUID) (*models.Project, error) {
	return s.transition(ctx, id, models.ProjectClosed, "", func(p *models.Project) error {
		if !s.canManage(actor, p) {
			return fmt.Errorf("%w: project belongs to another owner", ErrForbidden)
		}
		return nil
	})
}

func (s *ProjectService) transition(ctx context.Context, id uuid.UUID, to models.ProjectStatus, reason string, check func(*models.Project) error) (*models.Project, error) {
	var p *models.Project
	err := s.Repo.InTx(ctx, func(tx *repo.GormRepo) error {
		var err error
		p, err = tx.LockProject(ctx, id)
		if err != nil {
			return notFound(err, "project")
		}
		if check != nil {
			if err := check(p); err != nil {
				return err
			}
		}
		if !p.Status.CanTransition(to) {
			return fmt.Errorf("%w: project cannot go from %s to %s", ErrConflict, p.Status, to)
		}
		p.Status = to
		p.RejectReason = reason
		return tx.SaveProject(ctx, p)
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func reviewed(p *models.Project) events.ProjectReviewed {
	return events.ProjectReviewed{
		ProjectID: p.ID,
		OwnerID:   p.OwnerID,
		Title:     p.Title,
		Status:    string(p.Status),
		Reason:    p.RejectReason,
	}
}

// GetProject hides drafts and projects under review from everyone but their owner and the desk.
func (s *ProjectService) GetProject(ctx context.Context, viewer Actor, id uuid.UUID) (*models.Project, error) {
	p, err := s.Repo.GetProject(ctx, id)
	if err != nil {
		return nil, notFound(err, "project")
	}
	if !p.Status.Public() && !s.canManage(viewer, p) {
		return nil, fmt.Errorf("%w: project", ErrNotFound)
	}
	return p, nil
}

// ListPublic lists projects investors can see. status narrows to one public status.
func (s *ProjectService) ListPublic(ctx context.Context, status models.ProjectStatus, sector, q string, offset, limit int) (int64, []models.Project, error) {
	statuses := []models.ProjectStatus{models.ProjectOpen, models.ProjectFunded, models.ProjectClosed}
	if status != "" {
		if !status.Public() {
			return 0, nil, fmt.Errorf("%w: status %q is not public", ErrValidation, status)
		}
		statuses = []models.ProjectStatus{status}
	}
	return s.Repo.ListProjects(ctx, repo.ProjectFilter{Statuses: statuses, Sector: sector, Query: q}, offset, limit)
}

func (s *ProjectService) ListMine(ctx context.Context, actor Actor, offset, limit int) (int64, []models.Project, error) {
	return s.Repo.ListProjects(ctx, repo.ProjectFilter{OwnerID: &actor.ID}, offset, limit)
}

// ListForReview is the desk queue; it defaults to PENDING_REVIEW.
func (s *ProjectService) ListForReview(ctx context.Context, actor Actor, status models.ProjectStatus, offset, limit int) (int64, []models.Project, error) {
	if !actor.Staff() {
		return 0, nil, fmt.Errorf("%w: investment admin only", ErrForbidden)
	}
	if status == "" {
		status = models.ProjectPendingReview
	}
	if !status.Valid() {
		return 0, nil, fmt.Errorf("%w: unknown status %q", ErrValidation, status)
	}
	return s.Repo.ListProjects(ctx, repo.ProjectFilter{Statuses: []models.ProjectStatus{status}}, offset, limit)
}
