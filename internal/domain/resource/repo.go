package resource

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists resources. Claim and Release are the only paths that
// move a resource in or out of Occupied; administrative updates cannot.
type Repository interface {
	Create(ctx context.Context, r *Resource) error
	GetByID(ctx context.Context, id uuid.UUID) (*Resource, error)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*Resource, error)
	Update(ctx context.Context, r *Resource) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Resource, int, error)

	// Claim flips id from Available to Occupied for patientID only if the
	// row still reads Available, so two concurrent claims cannot both win.
	// Returns Conflict when the resource was taken in the meantime.
	Claim(ctx context.Context, id, patientID uuid.UUID) error

	// Release frees id if it is currently assigned to patientID. Releasing a
	// resource the patient does not hold is a no-op.
	Release(ctx context.Context, id, patientID uuid.UUID) error

	// ReleaseAllForPatient frees every resource assigned to patientID and
	// returns the ids it freed.
	ReleaseAllForPatient(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error)
}

// ListFilter narrows List results; zero values mean no constraint.
type ListFilter struct {
	Type   Type
	Status Status
}
