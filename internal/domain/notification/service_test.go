package notification

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
)

type mockRepo struct {
	notifications map[uuid.UUID]*Notification
}

func newMockRepo() *mockRepo {
	return &mockRepo{notifications: make(map[uuid.UUID]*Notification)}
}

func (m *mockRepo) Notify(_ context.Context, n *Notification) error {
	n.ID = uuid.New()
	n.CreatedAt = time.Now()
	cp := *n
	m.notifications[n.ID] = &cp
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Notification, error) {
	n, ok := m.notifications[id]
	if !ok {
		return nil, apperr.NotFound("notification not found")
	}
	cp := *n
	return &cp, nil
}

func (m *mockRepo) ListByRecipient(_ context.Context, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	var all []*Notification
	for _, n := range m.notifications {
		if n.RecipientID != recipientID {
			continue
		}
		if unreadOnly && n.Read {
			continue
		}
		cp := *n
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

func (m *mockRepo) MarkRead(_ context.Context, id uuid.UUID) error {
	n, ok := m.notifications[id]
	if !ok {
		return apperr.NotFound("notification not found")
	}
	n.Read = true
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(m.notifications, id)
	return nil
}

func newTestService() (*Service, *mockRepo) {
	repo := newMockRepo()
	return NewService(repo), repo
}

func TestNotifyValidation(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	tests := []struct {
		name string
		n    *Notification
	}{
		{"missing recipient", &Notification{RecipientKind: RecipientNurse, Message: "hi"}},
		{"unknown kind", &Notification{RecipientID: uuid.New(), RecipientKind: "Visitor", Message: "hi"}},
		{"empty message", &Notification{RecipientID: uuid.New(), RecipientKind: RecipientNurse}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := svc.Notify(ctx, tt.n); !apperr.IsValidation(err) {
				t.Errorf("expected validation error, got %v", err)
			}
		})
	}
}

func TestNotifyAndListByRecipient(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	nurse := uuid.New()
	patient := uuid.New()
	n := &Notification{
		RecipientID:   nurse,
		RecipientKind: RecipientNurse,
		Message:       "Resources freed: Bed, Monitor",
		PatientID:     &patient,
		ResourceTypes: []string{"Bed", "Monitor"},
	}
	if err := svc.Notify(ctx, n); err != nil {
		t.Fatalf("Notify: %v", err)
	}
	// Noise for a different recipient.
	if err := svc.Notify(ctx, &Notification{
		RecipientID: uuid.New(), RecipientKind: RecipientDoctor, Message: "other",
	}); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	items, total, err := svc.ListByRecipient(ctx, nurse, false, 10, 0)
	if err != nil {
		t.Fatalf("ListByRecipient: %v", err)
	}
	if total != 1 || len(items) != 1 {
		t.Fatalf("got %d notifications, want 1", total)
	}
	if len(items[0].ResourceTypes) != 2 {
		t.Errorf("resource types = %v, want [Bed Monitor]", items[0].ResourceTypes)
	}
}

func TestMarkReadFiltersUnread(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()

	nurse := uuid.New()
	n := &Notification{RecipientID: nurse, RecipientKind: RecipientNurse, Message: "shift change"}
	if err := svc.Notify(ctx, n); err != nil {
		t.Fatalf("Notify: %v", err)
	}

	if err := svc.MarkRead(ctx, n.ID); err != nil {
		t.Fatalf("MarkRead: %v", err)
	}
	_, total, err := svc.ListByRecipient(ctx, nurse, true, 10, 0)
	if err != nil {
		t.Fatalf("ListByRecipient: %v", err)
	}
	if total != 0 {
		t.Errorf("unread count after MarkRead = %d, want 0", total)
	}

	if err := svc.MarkRead(ctx, uuid.New()); !apperr.IsNotFound(err) {
		t.Errorf("marking an unknown notification should be not found, got %v", err)
	}
}
