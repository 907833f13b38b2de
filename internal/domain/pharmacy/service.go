package pharmacy

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) validate(item *StockItem) error {
	if item.Name == "" {
		return apperr.Validation("name is required")
	}
	if item.Quantity < 0 {
		return apperr.Validation("quantity cannot be negative")
	}
	if item.UnitPrice < 0 {
		return apperr.Validation("unit_price cannot be negative")
	}
	return nil
}

func (s *Service) Create(ctx context.Context, item *StockItem) error {
	if err := s.validate(item); err != nil {
		return err
	}
	return s.repo.Create(ctx, item)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*StockItem, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, limit, offset int) ([]*StockItem, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) Update(ctx context.Context, id uuid.UUID, in *StockItem) (*StockItem, error) {
	if err := s.validate(in); err != nil {
		return nil, err
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	item.Name = in.Name
	item.Quantity = in.Quantity
	item.UnitPrice = in.UnitPrice
	item.ExpiryDate = in.ExpiryDate
	if err := s.repo.Update(ctx, item); err != nil {
		return nil, err
	}
	return item, nil
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Dispense removes qty units from stock. Expired medication and quantities
// beyond the remaining stock are refused.
func (s *Service) Dispense(ctx context.Context, id uuid.UUID, qty int) (*StockItem, error) {
	if qty <= 0 {
		return nil, apperr.Validation("quantity must be positive")
	}
	item, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if item.Expired(s.now()) {
		return nil, apperr.Conflict("stock item %s is expired", id)
	}
	if err := s.repo.Decrement(ctx, id, qty); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}
