// Package allocation implements the assignment and discharge workflows that
// span the resource pool, the patient record, the staff directory and the
// notification sink.
package allocation

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/notification"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/patient"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/resource"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/staff"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/db"
)

// ResourceStore is the slice of the resource repository the workflows need.
type ResourceStore interface {
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]*resource.Resource, error)
	Claim(ctx context.Context, id, patientID uuid.UUID) error
	Release(ctx context.Context, id, patientID uuid.UUID) error
	ReleaseAllForPatient(ctx context.Context, patientID uuid.UUID) ([]uuid.UUID, error)
}

// PatientStore is the slice of the patient repository the workflows need.
type PatientStore interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
	AddResources(ctx context.Context, patientID uuid.UUID, ids []uuid.UUID) error
	RemoveResource(ctx context.Context, patientID, resourceID uuid.UUID) error
	Discharge(ctx context.Context, patientID uuid.UUID) error
}

// StaffDirectory supplies the nurse roster for the discharge fan-out.
type StaffDirectory interface {
	ListByRole(ctx context.Context, role staff.Role) ([]*staff.Staff, error)
}

type Service struct {
	resources ResourceStore
	patients  PatientStore
	staff     StaffDirectory
	sink      notification.Sink
	runTx     func(ctx context.Context, fn func(context.Context) error) error
	log       zerolog.Logger
}

// NewService wires the workflows. A nil pool runs the mutations without a
// surrounding transaction; tests use that with in-memory stores.
func NewService(pool *pgxpool.Pool, res ResourceStore, pat PatientStore, dir StaffDirectory, sink notification.Sink, log zerolog.Logger) *Service {
	s := &Service{resources: res, patients: pat, staff: dir, sink: sink, log: log}
	if pool != nil {
		s.runTx = func(ctx context.Context, fn func(context.Context) error) error {
			return db.WithTx(ctx, pool, fn)
		}
	} else {
		s.runTx = func(ctx context.Context, fn func(context.Context) error) error {
			return fn(ctx)
		}
	}
	return s
}

// AssignResources binds every resource in ids to the patient, or none of
// them. Validation happens up front: a missing patient or resource and any
// non-assignable resource fail the whole request before anything mutates.
// The claims then run inside one transaction through the conditional write,
// so a race lost after validation still cannot double-book.
func (s *Service) AssignResources(ctx context.Context, patientID uuid.UUID, ids []uuid.UUID) (*patient.Patient, error) {
	if len(ids) == 0 {
		return nil, apperr.Validation("resources list is empty")
	}
	ids = dedupe(ids)

	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}
	if p.Status == patient.StatusDischarged {
		return nil, apperr.Validation("patient %s is discharged", patientID)
	}

	found, err := s.resources.GetByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]*resource.Resource, len(found))
	for _, r := range found {
		byID[r.ID] = r
	}
	for _, id := range ids {
		r, ok := byID[id]
		if !ok {
			return nil, apperr.NotFound("resource %s not found", id)
		}
		if !r.Assignable() {
			return nil, apperr.Conflict("resource %s is not available", id)
		}
	}

	err = s.runTx(ctx, func(ctx context.Context) error {
		for _, id := range ids {
			if err := s.resources.Claim(ctx, id, patientID); err != nil {
				return err
			}
		}
		return s.patients.AddResources(ctx, patientID, ids)
	})
	if err != nil {
		return nil, err
	}
	return s.patients.GetByID(ctx, patientID)
}

// ReleaseResource frees one resource from a patient. It is idempotent:
// releasing a resource the patient does not hold succeeds without touching
// anything.
func (s *Service) ReleaseResource(ctx context.Context, patientID, resourceID uuid.UUID) error {
	if _, err := s.patients.GetByID(ctx, patientID); err != nil {
		return err
	}
	return s.runTx(ctx, func(ctx context.Context) error {
		if err := s.resources.Release(ctx, resourceID, patientID); err != nil {
			return err
		}
		return s.patients.RemoveResource(ctx, patientID, resourceID)
	})
}

// DischargePatient frees everything the patient holds, marks the patient
// Discharged, and then tells every nurse which equipment kinds came back to
// the pool. The frees commit before any notification goes out; a sink
// failure is logged and never undoes the discharge.
func (s *Service) DischargePatient(ctx context.Context, patientID uuid.UUID) (*patient.Patient, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return nil, err
	}

	// Capture the equipment kinds before the set is cleared.
	held, err := s.resources.GetByIDs(ctx, p.AssignedResources)
	if err != nil {
		return nil, err
	}
	freedTypes := resourceTypes(held)

	err = s.runTx(ctx, func(ctx context.Context) error {
		if _, err := s.resources.ReleaseAllForPatient(ctx, patientID); err != nil {
			return err
		}
		return s.patients.Discharge(ctx, patientID)
	})
	if err != nil {
		return nil, err
	}

	// Nothing to announce when the patient held no equipment.
	if len(freedTypes) > 0 {
		s.notifyNurses(ctx, p, freedTypes)
	}
	return s.patients.GetByID(ctx, patientID)
}

func (s *Service) notifyNurses(ctx context.Context, p *patient.Patient, freedTypes []string) {
	nurses, err := s.staff.ListByRole(ctx, staff.RoleNurse)
	if err != nil {
		s.log.Error().Err(err).Str("patient_id", p.ID.String()).
			Msg("discharge fan-out: nurse roster unavailable")
		return
	}

	msg := fmt.Sprintf("Patient %s %s discharged. Resources freed: %s",
		p.FirstName, p.LastName, strings.Join(freedTypes, ", "))
	for _, n := range nurses {
		pid := p.ID
		err := s.sink.Notify(ctx, &notification.Notification{
			RecipientID:   n.ID,
			RecipientKind: notification.RecipientNurse,
			Message:       msg,
			PatientID:     &pid,
			ResourceTypes: freedTypes,
		})
		if err != nil {
			s.log.Error().Err(err).
				Str("patient_id", p.ID.String()).
				Str("nurse_id", n.ID.String()).
				Msg("discharge notification failed")
		}
	}
}

func resourceTypes(resources []*resource.Resource) []string {
	seen := make(map[string]bool)
	var types []string
	for _, r := range resources {
		t := string(r.Type)
		if !seen[t] {
			seen[t] = true
			types = append(types, t)
		}
	}
	sort.Strings(types)
	return types
}

func dedupe(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]bool, len(ids))
	out := ids[:0]
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}
