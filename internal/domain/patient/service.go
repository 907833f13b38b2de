package patient

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/domain/coverage"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
)

// CoverageResolver maps human-readable coverage codes to record ids.
// Implemented by the coverage service; unknown codes resolve to nil.
type CoverageResolver interface {
	ResolveCode(ctx context.Context, kind coverage.Kind, code string) (*uuid.UUID, error)
}

// Input carries the client-settable patient fields. Coverage is referenced
// by code, the way reception staff know it, and resolved to ids on write.
type Input struct {
	FirstName      string     `json:"first_name"`
	LastName       string     `json:"last_name"`
	DateOfBirth    *time.Time `json:"date_of_birth"`
	Gender         string     `json:"gender"`
	Phone          string     `json:"phone"`
	Address        string     `json:"address"`
	MedicalHistory string     `json:"medical_history"`
	Status         Status     `json:"status"`
	DoctorID       *uuid.UUID `json:"doctor_id"`
	InsuranceCode  string     `json:"insurance_code"`
	CNAMCode       string     `json:"cnam_code"`
}

type Service struct {
	repo     Repository
	coverage CoverageResolver
}

func NewService(repo Repository, cov CoverageResolver) *Service {
	return &Service{repo: repo, coverage: cov}
}

func (s *Service) validate(in Input) error {
	if in.FirstName == "" || in.LastName == "" {
		return apperr.Validation("first_name and last_name are required")
	}
	if in.Status != "" && !ValidStatus(in.Status) {
		return apperr.Validation("unknown patient status %q", in.Status)
	}
	return nil
}

// resolveCoverage turns codes into ids. Unresolvable codes degrade to a nil
// link rather than failing the write.
func (s *Service) resolveCoverage(ctx context.Context, in Input) (insurance, cnam *uuid.UUID, err error) {
	insurance, err = s.coverage.ResolveCode(ctx, coverage.KindInsurance, in.InsuranceCode)
	if err != nil {
		return nil, nil, err
	}
	cnam, err = s.coverage.ResolveCode(ctx, coverage.KindCNAM, in.CNAMCode)
	if err != nil {
		return nil, nil, err
	}
	return insurance, cnam, nil
}

func (s *Service) Create(ctx context.Context, in Input) (*Patient, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	insuranceID, cnamID, err := s.resolveCoverage(ctx, in)
	if err != nil {
		return nil, err
	}

	p := &Patient{
		FirstName:         in.FirstName,
		LastName:          in.LastName,
		DateOfBirth:       in.DateOfBirth,
		Gender:            in.Gender,
		Phone:             in.Phone,
		Address:           in.Address,
		MedicalHistory:    in.MedicalHistory,
		Status:            in.Status,
		DoctorID:          in.DoctorID,
		InsuranceID:       insuranceID,
		CNAMID:            cnamID,
		AssignedResources: []uuid.UUID{},
	}
	if p.Status == "" {
		p.Status = StatusWaitingForDoctor
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, filter ListFilter, limit, offset int) ([]*Patient, int, error) {
	if filter.Status != "" && !ValidStatus(filter.Status) {
		return nil, 0, apperr.Validation("unknown patient status %q", filter.Status)
	}
	return s.repo.List(ctx, filter, limit, offset)
}

// Update edits the record fields. The assigned-resource set is owned by the
// allocation workflows and is not touched here; for the same reason a
// transition to Discharged is rejected, since only the discharge workflow
// frees the held resources along with it.
func (s *Service) Update(ctx context.Context, id uuid.UUID, in Input) (*Patient, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Status == StatusDischarged && p.Status != StatusDischarged {
		return nil, apperr.Validation("patients are discharged through the discharge endpoint, not status updates")
	}
	insuranceID, cnamID, err := s.resolveCoverage(ctx, in)
	if err != nil {
		return nil, err
	}

	p.FirstName = in.FirstName
	p.LastName = in.LastName
	p.DateOfBirth = in.DateOfBirth
	p.Gender = in.Gender
	p.Phone = in.Phone
	p.Address = in.Address
	p.MedicalHistory = in.MedicalHistory
	p.DoctorID = in.DoctorID
	p.InsuranceID = insuranceID
	p.CNAMID = cnamID
	if in.Status != "" {
		p.Status = in.Status
	}
	if err := s.repo.Update(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Delete removes the patient record. A patient still holding resources
// cannot be deleted, because the pool rows would stay Occupied with no
// patient to release them; discharge frees them first.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if len(p.AssignedResources) > 0 {
		return apperr.Conflict("patient still holds %d assigned resources; discharge the patient first", len(p.AssignedResources))
	}
	return s.repo.Delete(ctx, id)
}
