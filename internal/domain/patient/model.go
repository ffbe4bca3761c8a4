package patient

import (
	"encoding/hex"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Referral journey statuses, in transfer order.
const (
	StatusReferred     = "Referred"
	StatusAssigned     = "Ambulance Assigned"
	StatusDispatched   = "Ambulance Dispatched"
	StatusPickedUp     = "Patient Picked Up"
	StatusTransporting = "Transporting to Destination"
	StatusArrived      = "Arrived at Destination"
	StatusCompleted    = "Completed"
)

// statusPath is the canonical journey order. Transitions may skip ahead
// but never move backward or revisit a state.
var statusPath = []string{
	StatusReferred,
	StatusAssigned,
	StatusDispatched,
	StatusPickedUp,
	StatusTransporting,
	StatusArrived,
	StatusCompleted,
}

func statusRank(status string) int {
	for i, s := range statusPath {
		if s == status {
			return i
		}
	}
	return -1
}

// ValidStatus reports whether status is one of the journey states.
func ValidStatus(status string) bool { return statusRank(status) >= 0 }

// CanTransition reports whether a referral may move from one status to
// another. Only strictly forward moves along the journey are allowed.
func CanTransition(from, to string) bool {
	f, t := statusRank(from), statusRank(to)
	return f >= 0 && t >= 0 && t > f
}

// progressByStatus drives the tracking UI progress bar. Statuses not in
// the map (including Completed) report 0.
var progressByStatus = map[string]int{
	StatusReferred:     0,
	StatusDispatched:   25,
	StatusPickedUp:     50,
	StatusTransporting: 75,
	StatusArrived:      100,
}

// Progress returns the journey completion percentage for a status.
func Progress(status string) int { return progressByStatus[status] }

// Patient maps to the patients table. One row per referral.
type Patient struct {
	PatientID            string            `db:"patient_id" json:"patient_id"`
	Name                 string            `db:"name" json:"name"`
	Age                  int               `db:"age" json:"age"`
	Condition            string            `db:"condition" json:"condition"`
	ReferringHospital    string            `db:"referring_hospital" json:"referring_hospital"`
	ReceivingHospital    string            `db:"receiving_hospital" json:"receiving_hospital"`
	ReferringPhysician   string            `db:"referring_physician" json:"referring_physician"`
	ReceivingPhysician   *string           `db:"receiving_physician" json:"receiving_physician,omitempty"`
	Notes                *string           `db:"notes" json:"notes,omitempty"`
	VitalSigns           map[string]string `db:"vital_signs" json:"vital_signs,omitempty"`
	MedicalHistory       *string           `db:"medical_history" json:"medical_history,omitempty"`
	CurrentMedications   *string           `db:"current_medications" json:"current_medications,omitempty"`
	Allergies            *string           `db:"allergies" json:"allergies,omitempty"`
	ReferralTime         time.Time         `db:"referral_time" json:"referral_time"`
	Status               string            `db:"status" json:"status"`
	AssignedAmbulance    *string           `db:"assigned_ambulance" json:"assigned_ambulance,omitempty"`
	CreatedBy            *string           `db:"created_by" json:"created_by,omitempty"`
	UpdatedAt            time.Time         `db:"updated_at" json:"updated_at"`
	ReferringHospitalLat *float64          `db:"referring_hospital_lat" json:"referring_hospital_lat,omitempty"`
	ReferringHospitalLng *float64          `db:"referring_hospital_lng" json:"referring_hospital_lng,omitempty"`
	ReceivingHospitalLat *float64          `db:"receiving_hospital_lat" json:"receiving_hospital_lat,omitempty"`
	ReceivingHospitalLng *float64          `db:"receiving_hospital_lng" json:"receiving_hospital_lng,omitempty"`
}

// NewPatientID generates a referral id: PAT followed by 8 uppercase hex
// characters, e.g. PAT3FA9C21B.
func NewPatientID() string {
	u := uuid.New()
	return "PAT" + strings.ToUpper(hex.EncodeToString(u[:4]))
}
