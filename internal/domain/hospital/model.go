package hospital

// Facility names that carry special referral routing rules.
const (
	JOOTRH       = "Jaramogi Oginga Odinga Teaching & Referral Hospital (JOOTRH)"
	KisumuCounty = "Kisumu County Referral Hospital"

	// AllFacilities is the admin scope covering the whole network.
	AllFacilities = "All Facilities"
)

// Hospital maps to the hospitals table.
type Hospital struct {
	FacilityName      string  `db:"facility_name" json:"facility_name"`
	Latitude          float64 `db:"latitude" json:"latitude"`
	Longitude         float64 `db:"longitude" json:"longitude"`
	FacilityType      string  `db:"facility_type" json:"facility_type"`
	Capacity          int     `db:"capacity" json:"capacity"`
	AmbulanceServices string  `db:"ambulance_services" json:"ambulance_services"`
	ContactNumber     string  `db:"contact_number" json:"contact_number"`
}
