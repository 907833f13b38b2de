package leave

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, r *Request) error
	GetByID(ctx context.Context, id uuid.UUID) (*Request, error)
	Update(ctx context.Context, r *Request) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Request, int, error)

	// ListApprovedByStaff returns the approved leaves of one staff member,
	// used for the overlap check on approval.
	ListApprovedByStaff(ctx context.Context, staffID uuid.UUID) ([]*Request, error)
}

// ListFilter narrows List results; zero values mean no constraint.
type ListFilter struct {
	StaffID *uuid.UUID
	Status  Status
}
