package notification

import (
	"time"

	"github.com/google/uuid"
)

// RecipientKind mirrors the staff roles a notification can target.
type RecipientKind string

const (
	RecipientDoctor RecipientKind = "Doctor"
	RecipientNurse  RecipientKind = "Nurse"
	RecipientAdmin  RecipientKind = "Admin"
)

func ValidRecipientKind(k RecipientKind) bool {
	return k == RecipientDoctor || k == RecipientNurse || k == RecipientAdmin
}

// Notification is one message delivered to a staff member. ResourceTypes
// carries the freed equipment kinds on discharge notices.
type Notification struct {
	ID            uuid.UUID     `db:"id" json:"id"`
	RecipientID   uuid.UUID     `db:"recipient_id" json:"recipient_id"`
	RecipientKind RecipientKind `db:"recipient_kind" json:"recipient_kind"`
	Message       string        `db:"message" json:"message"`
	PatientID     *uuid.UUID    `db:"patient_id" json:"patient_id,omitempty"`
	ResourceTypes []string      `db:"resource_types" json:"resource_types,omitempty"`
	Read          bool          `db:"read" json:"read"`
	CreatedAt     time.Time     `db:"created_at" json:"created_at"`
}
