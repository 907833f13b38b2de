package prescription

import (
	"time"

	"github.com/google/uuid"
)

// Prescription links a patient, a prescribing doctor and a medication.
// Discount is a percentage computed from the patient's coverage at write
// time; clients cannot set it.
type Prescription struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	DoctorID     *uuid.UUID `db:"doctor_id" json:"doctor_id,omitempty"`
	Medication   string     `db:"medication" json:"medication"`
	Dosage       string     `db:"dosage" json:"dosage,omitempty"`
	Instructions string     `db:"instructions" json:"instructions,omitempty"`
	Discount     int        `db:"discount" json:"discount"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updated_at"`
}
