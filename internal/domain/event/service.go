package event

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) validate(e *Event) error {
	if e.Title == "" {
		return apperr.Validation("title is required")
	}
	if e.StartTime.IsZero() || e.EndTime.IsZero() {
		return apperr.Validation("start_time and end_time are required")
	}
	if !e.EndTime.After(e.StartTime) {
		return apperr.Validation("end_time must be after start_time")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, e *Event) error {
	if err := s.validate(e); err != nil {
		return err
	}
	if e.AssignedStaff == nil {
		e.AssignedStaff = []uuid.UUID{}
	}
	return s.repo.Create(ctx, e)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Event, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, from, to *time.Time, limit, offset int) ([]*Event, int, error) {
	return s.repo.List(ctx, from, to, limit, offset)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in *Event) (*Event, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	e.Title = in.Title
	e.Description = in.Description
	e.Location = in.Location
	e.StartTime = in.StartTime
	e.EndTime = in.EndTime
	e.AssignedStaff = in.AssignedStaff
	if e.AssignedStaff == nil {
		e.AssignedStaff = []uuid.UUID{}
	}
	if err := s.repo.Update(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
