package emergency

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) Create(ctx context.Context, c *Case) error {
	if c.Description == "" {
		return apperr.Validation("description is required")
	}
	if !ValidSeverity(c.Severity) {
		return apperr.Validation("unknown severity %q", c.Severity)
	}
	c.Status = StatusOpen
	if c.ReportedAt.IsZero() {
		c.ReportedAt = s.now()
	}
	c.ResolvedAt = nil
	return s.repo.Create(ctx, c)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Case, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Case, int, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, 0, apperr.Validation("unknown status %q", filter.Status)
	}
	if filter.Severity != "" && !ValidSeverity(filter.Severity) {
		return nil, 0, apperr.Validation("unknown severity %q", filter.Severity)
	}
	return s.repo.List(ctx, filter, limit, offset)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in *Case) (*Case, error) {
	if in.Description == "" {
		return nil, apperr.Validation("description is required")
	}
	if !ValidSeverity(in.Severity) {
		return nil, apperr.Validation("unknown severity %q", in.Severity)
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	c.PatientID = in.PatientID
	c.Description = in.Description
	c.Severity = in.Severity
	c.Location = in.Location
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

// SetStatus moves a case along Open -> In Progress -> Resolved. Reopening a
// resolved case is rejected; resolution stamps ResolvedAt.
func (s *Service) SetStatus(ctx context.Context, id uuid.UUID, status Status) (*Case, error) {
	if !ValidStatus(status) {
		return nil, apperr.Validation("unknown status %q", status)
	}
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c.Status == StatusResolved && status != StatusResolved {
		return nil, apperr.Conflict("a resolved case cannot be reopened")
	}
	c.Status = status
	if status == StatusResolved && c.ResolvedAt == nil {
		now := s.now()
		c.ResolvedAt = &now
	}
	if err := s.repo.Update(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
