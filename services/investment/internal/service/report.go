package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/Skotchmaster/tradefund/pkg/events"
	"github.com/Skotchmaster/tradefund/pkg/logging"
	"github.com/Skotchmaster/tradefund/services/investment/internal/models"
	"github.com/Skotchmaster/tradefund/services/investment/internal/repo"
	"github.com/Skotchmaster/tradefund/services/investment/internal/transport"
)

type ReportService struct {
	Repo   *repo.GormRepo
	Events *events.BestEffort
}

func (s *ReportService) Create(ctx context.Context, actor Actor, projectID uuid.UUID, req transport.ReportRequest) (*models.FinancialReport, error) {
	p, err := s.Repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, notFound(err, "project")
	}
	if p.OwnerID != actor.ID {
		return nil, fmt.Errorf("%w: project belongs to another owner", ErrForbidden)
	}
	rep := &models.FinancialReport{
		ProjectID: p.ID,
		OwnerID:   actor.ID,
		Title:     strings.TrimSpace(req.Title),
		Period:    strings.TrimSpace(req.Period),
		Summary:   strings.TrimSpace(req.Summary),
		FileURL:   strings.TrimSpace(req.FileURL),
	}
	if err := validateReport(rep); err != nil {
		return nil, err
	}
	if err := s.Repo.CreateReport(ctx, rep); err != nil {
		return nil, err
	}

	investors, err := s.Repo.InvestorIDs(ctx, p.ID)
	if err != nil {
		logging.FromContext(ctx).Warn("report_investors_error", "report_id", rep.ID, "error", err)
	}
	s.Events.Emit(ctx, events.TopicInvestment, events.ReportPublished, rep.ID.String(), events.ReportIssued{
		ReportID:    rep.ID,
		ProjectID:   rep.ProjectID,
		Title:       rep.Title,
		InvestorIDs: investors,
	})
	return rep, nil
}

func validateReport(rep *models.FinancialReport) error {
	if rep.Title == "" {
		return fmt.Errorf("%w: title required", ErrValidation)
	}
	if rep.FileURL != "" {
		return uploaded(rep.FileURL, "financial-report", "file_url")
	}
	return nil
}

func (s *ReportService) owned(ctx context.Context, actor Actor, id uuid.UUID) (*models.FinancialReport, error) {
	rep, err := s.Repo.GetReport(ctx, id)
	if err != nil {
		return nil, notFound(err, "report")
	}
	if rep.OwnerID != actor.ID && !actor.Staff() {
		return nil, fmt.Errorf("%w: report belongs to another owner", ErrForbidden)
	}
	return rep, nil
}

func (s *ReportService) Update(ctx context.Context, actor Actor, id uuid.UUID, req transport.PatchReportRequest) (*models.FinancialReport, error) {
	rep, err := s.owned(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if req.Title != nil {
		rep.Title = strings.TrimSpace(*req.Title)
	}
	if req.Period != nil {
		rep.Period = strings.TrimSpace(*req.Period)
	}
	if req.Summary != nil {
		rep.Summary = strings.TrimSpace(*req.Summary)
	}
	if req.FileURL != nil {
		rep.FileURL = strings.TrimSpace(*req.FileURL)
	}
	if err := validateReport(rep); err != nil {
		return nil, err
	}
	if err := s.Repo.SaveReport(ctx, rep); err != nil {
		return nil, err
	}
	return rep, nil
}

func (s *ReportService) Delete(ctx context.Context, actor Actor, id uuid.UUID) error {
	if _, err := s.owned(ctx, actor, id); err != nil {
		return err
	}
	if err := s.Repo.DeleteReport(ctx, id); err != nil {
		return notFound(err, "report")
	}
	return nil
}

// canRead allows the owner, the desk and investors with a confirmed stake.
func (s *ReportService) canRead(ctx context.Context, actor Actor, p *models.Project) error {
	if actor.Staff() || p.OwnerID == actor.ID {
		return nil
	}
	ok, err := s.Repo.HasConfirmed(ctx, p.ID, actor.ID)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: reports are shared with investors only", ErrForbidden)
	}
	return nil
}

func (s *ReportService) List(ctx context.Context, actor Actor, projectID uuid.UUID) ([]models.FinancialReport, error) {
	p, err := s.Repo.GetProject(ctx, projectID)
	if err != nil {
		return nil, notFound(err, "project")
	}
	if err := s.canRead(ctx, actor, p); err != nil {
		return nil, err
	}
	return s.Repo.ListReports(ctx, projectID)
}

func (s *ReportService) Get(ctx context.Context, actor Actor, id uuid.UUID) (*models.FinancialReport, error) {
	rep, err := s.Repo.GetReport(ctx, id)
	if err != nil {
		return nil, notFound(err, "report")
	}
	p, err := s.Repo.GetProject(ctx, rep.ProjectID)
	if err != nil {
		return nil, notFound(err, "project")
	}
	if err := s.canRead(ctx, actor, p); err != nil {
		return nil, err
	}
	return rep, nil
}
