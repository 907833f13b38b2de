package event

import (
	"time"

	"github.com/google/uuid"
)

// Event is a scheduled ward entry: a meeting, a training session, a planned
// intervention. AssignedStaff lists the staff members expected to attend.
type Event struct {
	ID            uuid.UUID   `db:"id" json:"id"`
	Title         string      `db:"title" json:"title"`
	Description   string      `db:"description" json:"description,omitempty"`
	Location      string      `db:"location" json:"location,omitempty"`
	StartTime     time.Time   `db:"start_time" json:"start_time"`
	EndTime       time.Time   `db:"end_time" json:"end_time"`
	AssignedStaff []uuid.UUID `db:"assigned_staff" json:"assigned_staff"`
	CreatedAt     time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time   `db:"updated_at" json:"updated_at"`
}
