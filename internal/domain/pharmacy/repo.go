package pharmacy

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *StockItem) error
	GetByID(ctx context.Context, id uuid.UUID) (*StockItem, error)
	Update(ctx context.Context, s *StockItem) error
	Delete(ctx context.Context, id uuid.UUID) error
	List(ctx context.Context, limit, offset int) ([]*StockItem, int, error)

	// Decrement takes qty units off the item only if enough stock remains;
	// the guard lives in the WHERE clause, the same shape as the resource
	// claim. Returns Conflict when stock would go negative.
	Decrement(ctx context.Context, id uuid.UUID, qty int) error
}
