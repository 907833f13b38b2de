package leave

import (
	"context"

	"github.com/google/uuid"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validateWindow(r *Request) error {
	if r.StaffID == uuid.Nil {
		return apperr.Validation("staff_id is required")
	}
	if r.StartDate.IsZero() || r.EndDate.IsZero() {
		return apperr.Validation("start_date and end_date are required")
	}
	if r.EndDate.Before(r.StartDate) {
		return apperr.Validation("end_date must not be before start_date")
	}
	return nil
}

// Create files a new request. Requests always start Pending; approval is a
// separate decision.
func (s *Service) Create(ctx context.Context, r *Request) error {
	if err := s.validateWindow(r); err != nil {
		return err
	}
	r.Status = StatusPending
	return s.repo.Create(ctx, r)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Request, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Request, int, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, 0, apperr.Validation("unknown leave status %q", filter.Status)
	}
	return s.repo.List(ctx, filter, limit, offset)
}

// Approve grants a pending request after checking it does not overlap any
// leave already approved for the same staff member.
func (s *Service) Approve(ctx context.Context, id uuid.UUID) (*Request, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusPending {
		return nil, apperr.Conflict("leave request is already %s", r.Status)
	}

	approved, err := s.repo.ListApprovedByStaff(ctx, r.StaffID)
	if err != nil {
		return nil, err
	}
	for _, other := range approved {
		if other.ID != r.ID && other.Overlaps(r.StartDate, r.EndDate) {
			return nil, apperr.Conflict("overlaps an approved leave from %s to %s",
				other.StartDate.Format("2006-01-02"), other.EndDate.Format("2006-01-02"))
		}
	}

	r.Status = StatusApproved
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

func (s *Service) Reject(ctx context.Context, id uuid.UUID) (*Request, error) {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r.Status != StatusPending {
		return nil, apperr.Conflict("leave request is already %s", r.Status)
	}
	r.Status = StatusRejected
	if err := s.repo.Update(ctx, r); err != nil {
		return nil, err
	}
	return r, nil
}

// Delete removes a request. Approved leaves stay on record and cannot be
// deleted.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if r.Status == StatusApproved {
		return apperr.Conflict("approved leave cannot be deleted")
	}
	return s.repo.Delete(ctx, id)
}
