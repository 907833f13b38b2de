package notification

import (
	"context"

	"github.com/google/uuid"

	"github.com/mohamedaminesabehy/pisonar-sub001/internal/platform/apperr"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Notify validates and stores one notification. The workflows call this
// through the Sink interface.
func (s *Service) Notify(ctx context.Context, n *Notification) error {
	if n.RecipientID == uuid.Nil {
		return apperr.Validation("recipient_id is required")
	}
	if !ValidRecipientKind(n.RecipientKind) {
		return apperr.Validation("unknown recipient kind %q", n.RecipientKind)
	}
	if n.Message == "" {
		return apperr.Validation("message is required")
	}
	return s.repo.Notify(ctx, n)
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*Notification, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByRecipient(ctx context.Context, recipientID uuid.UUID, unreadOnly bool, limit, offset int) ([]*Notification, int, error) {
	return s.repo.ListByRecipient(ctx, recipientID, unreadOnly, limit, offset)
}

func (s *Service) MarkRead(ctx context.Context, id uuid.UUID) error {
	return s.repo.MarkRead(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}
