package emergency

import (
	"time"

	"github.com/google/uuid"
)

// Severity grades an emergency case.
type Severity string

const (
	SeverityLow      Severity = "Low"
	SeverityModerate Severity = "Moderate"
	SeverityHigh     Severity = "High"
	SeverityCritical Severity = "Critical"
)

func ValidSeverity(s Severity) bool {
	return s == SeverityLow || s == SeverityModerate || s == SeverityHigh || s == SeverityCritical
}

// Status tracks a case from report to resolution.
type Status string

const (
	StatusOpen       Status = "Open"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
)

func ValidStatus(s Status) bool {
	return s == StatusOpen || s == StatusInProgress || s == StatusResolved
}

// Case is one reported emergency. PatientID is nil until the person is
// identified and admitted.
type Case struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	PatientID   *uuid.UUID `db:"patient_id" json:"patient_id,omitempty"`
	Description string     `db:"description" json:"description"`
	Severity    Severity   `db:"severity" json:"severity"`
	Location    string     `db:"location" json:"location,omitempty"`
	Status      Status     `db:"status" json:"status"`
	ReportedAt  time.Time  `db:"reported_at" json:"reported_at"`
	ResolvedAt  *time.Time `db:"resolved_at" json:"resolved_at,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at" json:"updated_at"`
}
