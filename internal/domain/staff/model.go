package staff

import (
	"time"

	"github.com/google/uuid"
)

// Role tags a staff member. The role decides which profile payload the
// record carries.
type Role string

const (
	RoleAdmin  Role = "Admin"
	RoleDoctor Role = "Doctor"
	RoleNurse  Role = "Nurse"
)

func ValidRole(r Role) bool {
	return r == RoleAdmin || r == RoleDoctor || r == RoleNurse
}

// DoctorProfile is the payload a Doctor record carries.
type DoctorProfile struct {
	Specialty     string `json:"specialty"`
	LicenseNumber string `json:"license_number"`
}

// NurseProfile is the payload a Nurse record carries.
type NurseProfile struct {
	Ward  string `json:"ward"`
	Shift string `json:"shift"`
}

// Staff is one directory entry. Exactly one of Doctor/Nurse is non-nil,
// matching Role; Admin records carry neither.
type Staff struct {
	ID        uuid.UUID      `db:"id" json:"id"`
	FirstName string         `db:"first_name" json:"first_name"`
	LastName  string         `db:"last_name" json:"last_name"`
	Email     string         `db:"email" json:"email"`
	Phone     string         `db:"phone" json:"phone,omitempty"`
	Role      Role           `db:"role" json:"role"`
	Doctor    *DoctorProfile `json:"doctor,omitempty"`
	Nurse     *NurseProfile  `json:"nurse,omitempty"`
	CreatedAt time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt time.Time      `db:"updated_at" json:"updated_at"`
}
