package resource

import (
	"time"

	"github.com/google/uuid"
)

// Type enumerates the equipment kinds the pool tracks.
type Type string

const (
	TypeVentilator       Type = "Ventilator"
	TypeDefibrillator    Type = "Defibrillator"
	TypeECGMachine       Type = "ECGMachine"
	TypeInfusionPump     Type = "InfusionPump"
	TypeStretcher        Type = "Stretcher"
	TypeMonitor          Type = "Monitor"
	TypeSuctionDevice    Type = "SuctionDevice"
	TypeCrashCart        Type = "CrashCart"
	TypeBed              Type = "Bed"
	TypeWheelchair       Type = "Wheelchair"
	TypeIVStand          Type = "IVStand"
	TypeMedicalCart      Type = "MedicalCart"
	TypeExaminationTable Type = "ExaminationTable"
)

var validTypes = map[Type]bool{
	TypeVentilator: true, TypeDefibrillator: true, TypeECGMachine: true,
	TypeInfusionPump: true, TypeStretcher: true, TypeMonitor: true,
	TypeSuctionDevice: true, TypeCrashCart: true, TypeBed: true,
	TypeWheelchair: true, TypeIVStand: true, TypeMedicalCart: true,
	TypeExaminationTable: true,
}

func ValidType(t Type) bool { return validTypes[t] }

// Status is the lifecycle state of a resource. The strings are part of the
// wire contract.
type Status string

const (
	StatusAvailable        Status = "Available"
	StatusOccupied         Status = "Occupied"
	StatusUnderMaintenance Status = "Under Maintenance"
)

func ValidStatus(s Status) bool {
	return s == StatusAvailable || s == StatusOccupied || s == StatusUnderMaintenance
}

// Resource is one piece of assignable equipment. AssignedPatientID is set
// exactly when Status is Occupied.
type Resource struct {
	ID                  uuid.UUID  `db:"id" json:"id"`
	Type                Type       `db:"type" json:"type"`
	Status              Status     `db:"status" json:"status"`
	Location            string     `db:"location" json:"location"`
	IsFunctional        bool       `db:"is_functional" json:"is_functional"`
	LastMaintenanceDate *time.Time `db:"last_maintenance_date" json:"last_maintenance_date,omitempty"`
	AssignedPatientID   *uuid.UUID `db:"assigned_patient_id" json:"assigned_patient_id,omitempty"`
	CreatedAt           time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt           time.Time  `db:"updated_at" json:"updated_at"`
}

// Assignable reports whether the resource can be claimed for a patient.
func (r *Resource) Assignable() bool {
	return r.Status == StatusAvailable && r.IsFunctional
}
