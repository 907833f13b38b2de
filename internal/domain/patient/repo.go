package patient

import (
	"context"

	"github.com/google/uuid"
)

// Repository persists patients. The set-valued operations are expressed in
// SQL so they compose with a request-scoped transaction.
type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	Update(ctx context.Context, p *Patient) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Patient, int, error)

	// AddResources unions ids into the patient's assigned set.
	AddResources(ctx context.Context, patientID uuid.UUID, ids []uuid.UUID) error

	// RemoveResource drops one id from the set; a non-member is a no-op.
	RemoveResource(ctx context.Context, patientID, resourceID uuid.UUID) error

	// Discharge marks the patient Discharged and empties the assigned set.
	Discharge(ctx context.Context, patientID uuid.UUID) error
}

// ListFilter narrows List results; zero values mean no constraint.
type ListFilter struct {
	Status   Status
	DoctorID *uuid.UUID
}
