package patient

import (
	"time"

	"github.com/google/uuid"
)

// Status is the patient's place in the care flow. The strings are part of
// the wire contract.
type Status string

const (
	StatusWaitingForDoctor Status = "Waiting for Doctor"
	StatusUnderExamination Status = "Under Examination"
	StatusDischarged       Status = "Discharged"
)

func ValidStatus(s Status) bool {
	return s == StatusWaitingForDoctor || s == StatusUnderExamination || s == StatusDischarged
}

// Patient is one admitted patient. InsuranceID and CNAMID link coverage
// records and may dangle after a coverage delete; the discount engine treats
// that as no coverage. AssignedResources holds the ids of resources currently
// bound back to this patient.
type Patient struct {
	ID                uuid.UUID   `db:"id" json:"id"`
	FirstName         string      `db:"first_name" json:"first_name"`
	LastName          string      `db:"last_name" json:"last_name"`
	DateOfBirth       *time.Time  `db:"date_of_birth" json:"date_of_birth,omitempty"`
	Gender            string      `db:"gender" json:"gender,omitempty"`
	Phone             string      `db:"phone" json:"phone,omitempty"`
	Address           string      `db:"address" json:"address,omitempty"`
	MedicalHistory    string      `db:"medical_history" json:"medical_history,omitempty"`
	Status            Status      `db:"status" json:"status"`
	DoctorID          *uuid.UUID  `db:"doctor_id" json:"doctor_id,omitempty"`
	InsuranceID       *uuid.UUID  `db:"insurance_id" json:"insurance_id,omitempty"`
	CNAMID            *uuid.UUID  `db:"cnam_id" json:"cnam_id,omitempty"`
	AssignedResources []uuid.UUID `db:"assigned_resources" json:"assigned_resources"`
	CreatedAt         time.Time   `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time   `db:"updated_at" json:"updated_at"`
}

// HasResource reports whether id is in the patient's assigned set.
func (p *Patient) HasResource(id uuid.UUID) bool {
	for _, r := range p.AssignedResources {
		if r == id {
			return true
		}
	}
	return false
}
