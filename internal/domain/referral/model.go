package referral

import (
	"time"

	"github.com/google/uuid"
)

// Entry is one row of the assignment audit trail, written whenever an
// ambulance is linked to a patient. Maps to the referrals table. Entries are
// immutable once written.
type Entry struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   string    `db:"patient_id" json:"patient_id"`
	AmbulanceID *string   `db:"ambulance_id" json:"ambulance_id,omitempty"`
	Status      string    `db:"status" json:"status"`
	CreatedBy   *string   `db:"created_by" json:"created_by,omitempty"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
}
