package handover

import (
	"time"

	"github.com/google/uuid"
)

// Vital-sign keys recorded on every handover form.
const (
	VitalBloodPressure    = "blood_pressure"
	VitalHeartRate        = "heart_rate"
	VitalTemperature      = "temperature"
	VitalOxygenSaturation = "oxygen_saturation"
)

// Form maps to the handover_forms table. One immutable row per completed
// transfer; never updated or deleted after creation.
type Form struct {
	ID                 uuid.UUID         `db:"id" json:"id"`
	PatientID          string            `db:"patient_id" json:"patient_id"`
	PatientName        string            `db:"patient_name" json:"patient_name"`
	Condition          *string           `db:"condition" json:"condition,omitempty"`
	ReferringHospital  string            `db:"referring_hospital" json:"referring_hospital"`
	ReceivingHospital  string            `db:"receiving_hospital" json:"receiving_hospital"`
	ReferringPhysician *string           `db:"referring_physician" json:"referring_physician,omitempty"`
	ReceivingPhysician *string           `db:"receiving_physician" json:"receiving_physician,omitempty"`
	VitalSigns         map[string]string `db:"vital_signs" json:"vital_signs,omitempty"`
	Notes              *string           `db:"notes" json:"notes,omitempty"`
	AmbulanceID        *string           `db:"ambulance_id" json:"ambulance_id,omitempty"`
	TransferTime       time.Time         `db:"transfer_time" json:"transfer_time"`
	CreatedBy          *string           `db:"created_by" json:"created_by,omitempty"`
}
