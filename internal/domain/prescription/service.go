package prescription

import (
	"context"

	"github.com/google/uuid"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/patient"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
)

// PatientDirectory resolves the patient whose coverage decides the discount.
type PatientDirectory interface {
	GetByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error)
}

// DiscountEngine evaluates a patient's coverage links. Implemented by the
// coverage service.
type DiscountEngine interface {
	DiscountForPatient(ctx context.Context, insuranceID, cnamID *uuid.UUID) (int, error)
}

// Input carries the client-settable fields. There is deliberately no
// discount field here.
type Input struct {
	PatientID    uuid.UUID  `json:"patient_id"`
	DoctorID     *uuid.UUID `json:"doctor_id"`
	Medication   string     `json:"medication"`
	Dosage       string     `json:"dosage"`
	Instructions string     `json:"instructions"`
}

type Service struct {
	repo     Repository
	patients PatientDirectory
	discount DiscountEngine
}

func NewService(repo Repository, patients PatientDirectory, discount DiscountEngine) *Service {
	return &Service{repo: repo, patients: patients, discount: discount}
}

func (s *Service) validate(in Input) error {
	if in.PatientID == uuid.Nil {
		return apperr.Validation("patient_id is required")
	}
	if in.Medication == "" {
		return apperr.Validation("medication is required")
	}
	return nil
}

// computeDiscount looks at the patient's coverage right now. It runs on
// every write so the stored discount reflects coverage at prescription time.
func (s *Service) computeDiscount(ctx context.Context, patientID uuid.UUID) (int, error) {
	p, err := s.patients.GetByID(ctx, patientID)
	if err != nil {
		return 0, err
	}
	return s.discount.DiscountForPatient(ctx, p.InsuranceID, p.CNAMID)
}

func (s *Service) Create(ctx context.Context, in Input) (*Prescription, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	discount, err := s.computeDiscount(ctx, in.PatientID)
	if err != nil {
		return nil, err
	}

	p := &Prescription{
		PatientID:    in.PatientID,
		DoctorID:     in.DoctorID,
		Medication:   in.Medication,
		Dosage:       in.Dosage,
		Instructions: in.Instructions,
		Discount:     discount,
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Prescription, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, patientID *uuid.UUID, limit, offset int) ([]*Prescription, int, error) {
	return s.repo.List(ctx, patientID, limit, offset)
}

// Update edits the prescription and re-evaluates the discount; a coverage
// change between create and update shows up here.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Prescription, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Medication == "" {
		return nil, apperr.Validation("medication is required")
	}

	discount, err := s.computeDiscount(ctx, p.PatientID)
	if err != nil {
		return nil, err
	}
	p.DoctorID = in.DoctorID
	p.Medication = in.Medication
	p.Dosage = in.Dosage
	p.Instructions = in.Instructions
	p.Discount = discount
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
