package pharmacy

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
)

type mockRepo struct {
	items map[uuid.UUID]*StockItem
}

func newMockRepo() *mockRepo {
	return &mockRepo{items: make(map[uuid.UUID]*StockItem)}
}

func (m *mockRepo) Create(_ context.Context, s *StockItem) error {
	s.ID = uuid.New()
	s.CreatedAt = time.Now()
	s.UpdatedAt = s.CreatedAt
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*StockItem, error) {
	s, ok := m.items[id]
	if !ok {
		return nil, apperr.NotFound("stock item not found")
	}
	cp := *s
	return &cp, nil
}

func (m *mockRepo) Update(_ context.Context, s *StockItem) error {
	if _, ok := m.items[s.ID]; !ok {
		return apperr.NotFound("stock item not found")
	}
	cp := *s
	m.items[s.ID] = &cp
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.items, id)
	return nil
}

func (m *mockRepo) List(_ context.Context, limit, offset int) ([]*StockItem, int, error) {
	var all []*StockItem
	for _, s := range m.items {
		cp := *s
		all = append(all, &cp)
	}
	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) Decrement(_ context.Context, id uuid.UUID, qty int) error {
	s, ok := m.items[id]
	if !ok {
		return apperr.NotFound("stock item not found")
	}
	if s.Quantity < qty {
		return apperr.Conflict("insufficient stock for item %s", id)
	}
	s.Quantity -= qty
	return nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	svc := NewService(repo)
	return svc, repo
}

func TestCreateStockItemValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		item *StockItem
	}{
		{"missing name", &StockItem{Quantity: 5}},
		{"negative quantity", &StockItem{Name: "Aspirin", Quantity: -1}},
		{"negative price", &StockItem{Name: "Aspirin", UnitPrice: -0.5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Create(ctx, tt.item); !apperr.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestDispense(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	item := &StockItem{Name: "Insulin", Quantity: 10, UnitPrice: 12.5}
	if err := svc.Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}

	got, err := svc.Dispense(ctx, item.ID, 4)
	if err != nil {
		t.Fatalf("Dispense: %v", err)
	}
	if got.Quantity != 6 {
		t.Errorf("quantity = %d, want 6", got.Quantity)
	}
}

func TestDispenseGuards(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	item := &StockItem{Name: "Morphine", Quantity: 3}
	if err := svc.Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}

	if _, err := svc.Dispense(ctx, item.ID, 0); !apperr.IsValidation(err) {
		t.Errorf("zero quantity should be a validation error, got %v", err)
	}
	if _, err := svc.Dispense(ctx, item.ID, 5); !apperr.IsConflict(err) {
		t.Errorf("overdraw should conflict, got %v", err)
	}
	got, _ := svc.Get(ctx, item.ID)
	if got.Quantity != 3 {
		t.Errorf("failed dispense must not change stock, quantity = %d", got.Quantity)
	}
	if _, err := svc.Dispense(ctx, uuid.New(), 1); !apperr.IsNotFound(err) {
		t.Errorf("unknown item should be not found, got %v", err)
	}
}

func TestDispenseExpired(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	past := time.Now().AddDate(0, -1, 0)
	item := &StockItem{Name: "Old batch", Quantity: 8, ExpiryDate: &past}
	if err := svc.Create(ctx, item); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if _, err := svc.Dispense(ctx, item.ID, 1); !apperr.IsConflict(err) {
		t.Errorf("dispensing expired stock should conflict, got %v", err)
	}
}
