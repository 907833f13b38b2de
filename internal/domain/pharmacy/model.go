package pharmacy

import (
	"time"

	"github.com/google/uuid"
)

// StockItem is one medication line in the pharmacy inventory.
type StockItem struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Name       string     `db:"name" json:"name"`
	Quantity   int        `db:"quantity" json:"quantity"`
	UnitPrice  float64    `db:"unit_price" json:"unit_price"`
	ExpiryDate *time.Time `db:"expiry_date" json:"expiry_date,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// Expired reports whether the item is past its expiry date.
func (s *StockItem) Expired(now time.Time) bool {
	return s.ExpiryDate != nil && !s.ExpiryDate.After(now)
}
