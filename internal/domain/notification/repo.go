package notification

import (
	"context"

	"github.com/google/uuid"
)

// Sink is what the workflows see: deliver one notification. The pg store
// implements it; tests substitute recording fakes.
type Sink interface {
	Notify(ctx context.Context, n *Notification) error
}

type Repository interface {
	Sink
	GetByID(ctx context.Context, id uuid.UUID) (*Notification, error)
	ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, error)
	MarkRead(ctx context.Context, id uuid.UUID) error
	Delete(ctx context.Context, id uuid.UUID) error
}
