package comms

import (
	"time"

	"github.com/google/uuid"
)

// Message types. The first three are chosen by the sender; the rest are
// written by the referral pipeline itself.
const (
	TypeDriverHospital      = "driver_hospital"
	TypeHospitalHospital    = "hospital_hospital"
	TypeSystem              = "system"
	TypeVitalsUpdate        = "vitals_update"
	TypeEmergency           = "emergency"
	TypeArrivalNotification = "arrival_notification"
)

// ControlCenter is addressed on every emergency alert alongside the two
// hospitals on the mission.
const ControlCenter = "Control Center"

// ValidType reports whether t is a known message type.
func ValidType(t string) bool {
	switch t {
	case TypeDriverHospital, TypeHospitalHospital, TypeSystem,
		TypeVitalsUpdate, TypeEmergency, TypeArrivalNotification:
		return true
	}
	return false
}

// Message is one row of the communications log. Maps to the communications
// table.
type Message struct {
	ID          uuid.UUID `db:"id" json:"id"`
	PatientID   *string   `db:"patient_id" json:"patient_id,omitempty"`
	AmbulanceID *string   `db:"ambulance_id" json:"ambulance_id,omitempty"`
	Sender      string    `db:"sender" json:"sender"`
	Receiver    string    `db:"receiver" json:"receiver"`
	Message     string    `db:"message" json:"message"`
	MessageType string    `db:"message_type" json:"message_type"`
	Timestamp   time.Time `db:"timestamp" json:"timestamp"`
}
