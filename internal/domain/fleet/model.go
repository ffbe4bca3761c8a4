package fleet

import (
	"time"

	"github.com/google/uuid"
)

// Ambulance statuses. No terminal state: vehicles cycle between these for
// the life of the fleet.
const (
	StatusAvailable   = "Available"
	StatusOnTransfer  = "On Transfer"
	StatusOnBreak     = "On Break"
	StatusMaintenance = "Maintenance"
)

// ValidStatus reports whether s is one of the fleet states.
func ValidStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusOnTransfer, StatusOnBreak, StatusMaintenance:
		return true
	}
	return false
}

// Vehicle capability classes.
const (
	TypeAdvanced = "Advanced Life Support"
	TypeBasic    = "Basic Life Support"
)

// Ambulance maps to the ambulances table. CurrentPatient is set exactly
// when Status is On Transfer; every mutating operation maintains that.
type Ambulance struct {
	AmbulanceID        string     `db:"ambulance_id" json:"ambulance_id"`
	CurrentLocation    string     `db:"current_location" json:"current_location"`
	Latitude           float64    `db:"latitude" json:"latitude"`
	Longitude          float64    `db:"longitude" json:"longitude"`
	Status             string     `db:"status" json:"status"`
	DriverName         string     `db:"driver_name" json:"driver_name"`
	DriverContact      string     `db:"driver_contact" json:"driver_contact"`
	AmbulanceType      string     `db:"ambulance_type" json:"ambulance_type"`
	Equipment          string     `db:"equipment" json:"equipment"`
	CurrentPatient     *string    `db:"current_patient" json:"current_patient,omitempty"`
	Destination        *string    `db:"destination" json:"destination,omitempty"`
	MissionComplete    bool       `db:"mission_complete" json:"mission_complete"`
	EstimatedArrival   *time.Time `db:"estimated_arrival" json:"estimated_arrival,omitempty"`
	LastLocationUpdate *time.Time `db:"last_location_update" json:"last_location_update,omitempty"`
}

// LocationUpdate maps to the location_updates table. Append-only; the
// newest row by timestamp is the vehicle's authoritative position.
type LocationUpdate struct {
	ID           uuid.UUID `db:"id" json:"id"`
	AmbulanceID  string    `db:"ambulance_id" json:"ambulance_id"`
	Latitude     float64   `db:"latitude" json:"latitude"`
	Longitude    float64   `db:"longitude" json:"longitude"`
	LocationName string    `db:"location_name" json:"location_name"`
	PatientID    *string   `db:"patient_id" json:"patient_id,omitempty"`
	Timestamp    time.Time `db:"timestamp" json:"timestamp"`
}
