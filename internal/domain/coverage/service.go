package coverage

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
)

// Input carries the client-settable fields of a coverage record. CutoffDate
// is a "2006-01-02" date string; empty means no cutoff.
type Input struct {
	Code       string `json:"code"`
	Percentage int    `json:"percentage"`
	CutoffDate string `json:"-"`
}

// Service owns validation and the activation rule for coverage records, and
// exposes the discount engine consumed by prescriptions.
type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) validate(in Input) (*time.Time, error) {
	if in.Code == "" {
		return nil, apperr.Validation("code is required")
	}
	if in.Percentage < 0 || in.Percentage > 100 {
		return nil, apperr.Validation("percentage must be between 0 and 100")
	}
	if in.CutoffDate == "" {
		return nil, nil
	}
	t, err := time.Parse("2006-01-02", in.CutoffDate)
	if err != nil {
		return nil, apperr.Validation("invalid date %q, expected YYYY-MM-DD", in.CutoffDate)
	}
	return &t, nil
}

func (s *Service) Create(ctx context.Context, kind Kind, in Input) (*Record, error) {
	cutoff, err := s.validate(in)
	if err != nil {
		return nil, err
	}
	if existing, err := s.repo.GetByCode(ctx, kind, in.Code); err == nil && existing != nil {
		return nil, apperr.Conflict("%s code %q already exists", kind, in.Code)
	} else if err != nil && !apperr.IsNotFound(err) {
		return nil, err
	}

	rec := &Record{Kind: kind, Code: in.Code, Percentage: in.Percentage, CutoffDate: cutoff}
	rec.IsActive = rec.ActiveAt(s.now())
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *Service) Get(ctx context.Context, kind Kind, id uuid.UUID) (*Record, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if rec.Kind != kind {
		return nil, apperr.NotFound("coverage record not found")
	}
	return rec, nil
}

func (s *Service) Update(ctx context.Context, kind Kind, id uuid.UUID, in Input) (*Record, error) {
	cutoff, err := s.validate(in)
	if err != nil {
		return nil, err
	}
	rec, err := s.Get(ctx, kind, id)
	if err != nil {
		return nil, err
	}
	if in.Code != rec.Code {
		if existing, err := s.repo.GetByCode(ctx, kind, in.Code); err == nil && existing != nil {
			return nil, apperr.Conflict("%s code %q already exists", kind, in.Code)
		} else if err != nil && !apperr.IsNotFound(err) {
			return nil, err
		}
	}

	rec.Code = in.Code
	rec.Percentage = in.Percentage
	rec.CutoffDate = cutoff
	rec.IsActive = rec.ActiveAt(s.now())
	if err := s.repo.Update(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

// Delete removes the record. Patients still referencing it keep their link;
// the discount engine treats the dangling reference as zero coverage.
func (s *Service) Delete(ctx context.Context, kind Kind, id uuid.UUID) error {
	if _, err := s.Get(ctx, kind, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) List(ctx context.Context, kind Kind, limit, offset int) ([]*Record, int, error) {
	return s.repo.List(ctx, kind, limit, offset)
}

// ResolveCode maps a human-readable coverage code to its record id. Unknown
// codes resolve to nil rather than an error so patient writes degrade to an
// unlinked record.
func (s *Service) ResolveCode(ctx context.Context, kind Kind, code string) (*uuid.UUID, error) {
	if code == "" {
		return nil, nil
	}
	rec, err := s.repo.GetByCode(ctx, kind, code)
	if apperr.IsNotFound(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec.ID, nil
}

// DiscountForPatient evaluates the discount a patient is entitled to right
// now, given their (possibly nil, possibly dangling) coverage links. A
// missing record contributes 0; it is never an error.
func (s *Service) DiscountForPatient(ctx context.Context, insuranceID, cnamID *uuid.UUID) (int, error) {
	var ins, cn *Record
	if insuranceID != nil {
		rec, err := s.repo.GetByID(ctx, *insuranceID)
		if err != nil && !apperr.IsNotFound(err) {
			return 0, err
		}
		ins = rec
	}
	if cnamID != nil {
		rec, err := s.repo.GetByID(ctx, *cnamID)
		if err != nil && !apperr.IsNotFound(err) {
			return 0, err
		}
		cn = rec
	}
	return ComputeDiscount(ins, cn, s.now()), nil
}
