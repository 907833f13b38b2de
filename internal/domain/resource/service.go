package resource

import (
	"context"

	"github.com/google/uuid"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
)

// Service enforces the administrative rules of the pool. Assignment itself
// goes through the allocation workflows, which talk to the repository's
// Claim/Release directly.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) Create(ctx context.Context, res *Resource) error {
	if !ValidType(res.Type) {
		return apperr.Validation("unknown resource type %q", res.Type)
	}
	if res.Status == "" {
		res.Status = StatusAvailable
	}
	if !ValidStatus(res.Status) {
		return apperr.Validation("unknown resource status %q", res.Status)
	}
	if res.Status == StatusOccupied {
		return apperr.Validation("a resource cannot be created as Occupied; assign it to a patient instead")
	}
	res.AssignedPatientID = nil
	return s.repo.Create(ctx, res)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Resource, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Resource, int, error) {
	if filter.Type != "" && !ValidType(filter.Type) {
		return nil, 0, apperr.Validation("unknown resource type %q", filter.Type)
	}
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, 0, apperr.Validation("unknown resource status %q", filter.Status)
	}
	return s.repo.List(ctx, filter, limit, offset)
}

// Update applies administrative edits. Occupancy is off limits: status may
// not be set to Occupied here, and an Occupied resource may not be pulled
// into maintenance while a patient is attached.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in *Resource) (*Resource, error) {
	if !ValidType(in.Type) {
		return nil, apperr.Validation("unknown resource type %q", in.Type)
	}
	if !ValidStatus(in.Status) {
		return nil, apperr.Validation("unknown resource status %q", in.Status)
	}

	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if in.Status == StatusOccupied && current.Status != StatusOccupied {
		return nil, apperr.Validation("status Occupied is set by assignment, not by update")
	}
	if current.Status == StatusOccupied && in.Status != StatusOccupied {
		return nil, apperr.Conflict("resource %s is assigned to a patient; release it before changing its status", id)
	}

	current.Type = in.Type
	current.Status = in.Status
	current.Location = in.Location
	current.IsFunctional = in.IsFunctional
	current.LastMaintenanceDate = in.LastMaintenanceDate
	if err := s.repo.Update(ctx, current); err != nil {
		return nil, err
	}
	return current, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if current.Status == StatusOccupied {
		return apperr.Conflict("resource %s is assigned to a patient and cannot be deleted", id)
	}
	return s.repo.Delete(ctx, id)
}
