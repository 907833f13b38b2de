package staff

import (
	"context"
	"encoding/json"
	"net/mail"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/cache"
)

const roleCacheTTL = 5 * time.Minute

// Service validates the tagged-union shape of staff records and caches the
// per-role listings that the discharge fan-out reads on its hot path.
type Service struct {
	repo  Repository
	cache cache.Cache
	log   zerolog.Logger
}

func NewService(repo Repository, c cache.Cache, log zerolog.Logger) *Service {
	return &Service{repo: repo, cache: c, log: log}
}

func (s *Service) validate(st *Staff) error {
	if st.FirstName == "" || st.LastName == "" {
		return apperr.Validation("first_name and last_name are required")
	}
	if _, err := mail.ParseAddress(st.Email); err != nil {
		return apperr.Validation("invalid email %q", st.Email)
	}
	if !ValidRole(st.Role) {
		return apperr.Validation("unknown role %q", st.Role)
	}
	switch st.Role {
	case RoleDoctor:
		if st.Doctor == nil {
			return apperr.Validation("a Doctor record requires a doctor profile")
		}
		st.Nurse = nil
	case RoleNurse:
		if st.Nurse == nil {
			return apperr.Validation("a Nurse record requires a nurse profile")
		}
		st.Doctor = nil
	default:
		st.Doctor, st.Nurse = nil, nil
	}
	return nil
}

func (s *Service) Create(ctx context.Context, st *Staff) error {
	if err := s.validate(st); err != nil {
		return err
	}
	if err := s.repo.Create(ctx, st); err != nil {
		return err
	}
	s.invalidateRole(ctx, st.Role)
	return nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Staff, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*Staff, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in *Staff) (*Staff, error) {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	in.ID = id
	if err := s.validate(in); err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, in); err != nil {
		return nil, err
	}
	s.invalidateRole(ctx, current.Role)
	if in.Role != current.Role {
		s.invalidateRole(ctx, in.Role)
	}
	return in, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.invalidateRole(ctx, current.Role)
	return nil
}

// ListByRole serves from cache when it can. A cache failure falls through to
// the repository; the listing must stay correct without Redis.
func (s *Service) ListByRole(ctx context.Context, role Role) ([]*Staff, error) {
	if !ValidRole(role) {
		return nil, apperr.Validation("unknown role %q", role)
	}

	key := cache.RoleKey(string(role))
	if raw, err := s.cache.Get(ctx, key); err == nil {
		var cached []*Staff
		if err := json.Unmarshal(raw, &cached); err == nil {
			return cached, nil
		}
	}

	items, err := s.repo.ListByRole(ctx, role)
	if err != nil {
		return nil, err
	}
	if raw, err := json.Marshal(items); err == nil {
		if err := s.cache.Set(ctx, key, raw, roleCacheTTL); err != nil {
			s.log.Warn().Err(err).Str("role", string(role)).Msg("role listing cache write failed")
		}
	}
	return items, nil
}

func (s *Service) invalidateRole(ctx context.Context, role Role) {
	if err := s.cache.Delete(ctx, cache.RoleKey(string(role))); err != nil {
		s.log.Warn().Err(err).Str("role", string(role)).Msg("role listing cache invalidation failed")
	}
}
