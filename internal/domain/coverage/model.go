package coverage

import (
	"time"

	"github.com/google/uuid"
)

// Kind discriminates the two coverage variants. They share one schema; only
// the name of the cutoff-date field differs on the wire.
type Kind string

const (
	KindInsurance Kind = "Insurance"
	KindCNAM      Kind = "CNAM"
)

// Record maps to the coverage_record table. CutoffDate is the insurance
// expiration date or the CNAM cancellation date; IsActive is a stored cache
// of the activation rule and is recomputed on every write.
type Record struct {
	ID         uuid.UUID  `db:"id" json:"id"`
	Kind       Kind       `db:"kind" json:"kind"`
	Code       string     `db:"code" json:"code"`
	Percentage int        `db:"percentage" json:"percentage"`
	CutoffDate *time.Time `db:"cutoff_date" json:"-"`
	IsActive   bool       `db:"is_active" json:"is_active"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at" json:"updated_at"`
}

// cutoffField returns the wire name of the cutoff date for this kind.
func (r *Record) cutoffField() string {
	if r.Kind == KindCNAM {
		return "cancellation_date"
	}
	return "expiration_date"
}

// ActiveAt reports whether the record grants coverage at the given instant:
// no cutoff date, or a cutoff date strictly in the future. The stored
// IsActive flag is a cache and is never consulted here.
func (r *Record) ActiveAt(now time.Time) bool {
	return r.CutoffDate == nil || r.CutoffDate.After(now)
}

// ToJSON renders the record with the kind-specific cutoff field name.
func (r *Record) ToJSON() map[string]interface{} {
	out := map[string]interface{}{
		"id":         r.ID,
		"kind":       r.Kind,
		"code":       r.Code,
		"percentage": r.Percentage,
		"is_active":  r.IsActive,
		"created_at": r.CreatedAt,
		"updated_at": r.UpdatedAt,
	}
	if r.CutoffDate != nil {
		out[r.cutoffField()] = r.CutoffDate.Format("2006-01-02")
	} else {
		out[r.cutoffField()] = nil
	}
	return out
}

// ActivePercentage returns the discount a record contributes at the given
// instant: its percentage while active, otherwise 0. A nil record (no
// coverage linked, or a dangling reference) contributes 0.
func ActivePercentage(r *Record, now time.Time) int {
	if r == nil || !r.ActiveAt(now) {
		return 0
	}
	return r.Percentage
}

// ComputeDiscount applies the max-of-available-coverages policy: the best
// active percentage among a patient's insurance and CNAM records.
func ComputeDiscount(insurance, cnam *Record, now time.Time) int {
	ins := ActivePercentage(insurance, now)
	cn := ActivePercentage(cnam, now)
	if ins > cn {
		return ins
	}
	return cn
}
