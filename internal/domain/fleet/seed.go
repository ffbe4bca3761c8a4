package fleet

import (
	"context"

	"github.com/hoslink/hoslink/internal/domain/hospital"
)

const (
	equipAdvanced = "Defibrillator, Ventilator, Monitor"
	equipBasic    = "Basic equipment"
)

// Registry is the county ambulance fleet, stationed across four facilities.
var Registry = []Ambulance{
	{AmbulanceID: "KBA 453D", CurrentLocation: hospital.JOOTRH, Latitude: -0.0754, Longitude: 34.7695, Status: StatusAvailable, DriverName: "John Omondi", DriverContact: "+254712345678", AmbulanceType: TypeAdvanced, Equipment: equipAdvanced},
	{AmbulanceID: "KBC 217F", CurrentLocation: hospital.JOOTRH, Latitude: -0.0754, Longitude: 34.7695, Status: StatusAvailable, DriverName: "Mary Achieng", DriverContact: "+254723456789", AmbulanceType: TypeBasic, Equipment: equipBasic},
	{AmbulanceID: "KBD 389G", CurrentLocation: hospital.JOOTRH, Latitude: -0.0754, Longitude: 34.7695, Status: StatusAvailable, DriverName: "Paul Otieno", DriverContact: "+254734567890", AmbulanceType: TypeBasic, Equipment: equipBasic},
	{AmbulanceID: "KBE 142H", CurrentLocation: hospital.JOOTRH, Latitude: -0.0754, Longitude: 34.7695, Status: StatusAvailable, DriverName: "Susan Akinyi", DriverContact: "+254745678901", AmbulanceType: TypeAdvanced, Equipment: equipAdvanced},
	{AmbulanceID: "KBF 561J", CurrentLocation: hospital.JOOTRH, Latitude: -0.0754, Longitude: 34.7695, Status: StatusAvailable, DriverName: "David Owino", DriverContact: "+254756789012", AmbulanceType: TypeBasic, Equipment: equipBasic},
	{AmbulanceID: "KBG 774K", CurrentLocation: hospital.JOOTRH, Latitude: -0.0754, Longitude: 34.7695, Status: StatusAvailable, DriverName: "James Okoth", DriverContact: "+254767890123", AmbulanceType: TypeBasic, Equipment: equipBasic},
	{AmbulanceID: "KBH 238L", CurrentLocation: hospital.JOOTRH, Latitude: -0.0754, Longitude: 34.7695, Status: StatusAvailable, DriverName: "Grace Atieno", DriverContact: "+254778901234", AmbulanceType: TypeAdvanced, Equipment: equipAdvanced},
	{AmbulanceID: "KBJ 965M", CurrentLocation: hospital.JOOTRH, Latitude: -0.0754, Longitude: 34.7695, Status: StatusAvailable, DriverName: "Peter Onyango", DriverContact: "+254789012345", AmbulanceType: TypeBasic, Equipment: equipBasic},
	{AmbulanceID: "KBK 482N", CurrentLocation: hospital.JOOTRH, Latitude: -0.0754, Longitude: 34.7695, Status: StatusAvailable, DriverName: "Alice Adhiambo", DriverContact: "+254790123456", AmbulanceType: TypeBasic, Equipment: equipBasic},
	{AmbulanceID: "KBL 751P", CurrentLocation: hospital.JOOTRH, Latitude: -0.0754, Longitude: 34.7695, Status: StatusAvailable, DriverName: "Robert Ochieng", DriverContact: "+254701234567", AmbulanceType: TypeAdvanced, Equipment: equipAdvanced},
	{AmbulanceID: "KBM 312Q", CurrentLocation: hospital.KisumuCounty, Latitude: -0.0754, Longitude: 34.7695, Status: StatusAvailable, DriverName: "Sarah Nyongesa", DriverContact: "+254712345679", AmbulanceType: TypeBasic, Equipment: equipBasic},
	{AmbulanceID: "KBN 864R", CurrentLocation: hospital.KisumuCounty, Latitude: -0.0754, Longitude: 34.7695, Status: StatusAvailable, DriverName: "Michael Odhiambo", DriverContact: "+254723456780", AmbulanceType: TypeBasic, Equipment: equipBasic},
	{AmbulanceID: "KBP 459S", CurrentLocation: hospital.KisumuCounty, Latitude: -0.0754, Longitude: 34.7695, Status: StatusAvailable, DriverName: "Elizabeth Awuor", DriverContact: "+254734567891", AmbulanceType: TypeAdvanced, Equipment: equipAdvanced},
	{AmbulanceID: "KBQ 287T", CurrentLocation: hospital.KisumuCounty, Latitude: -0.0754, Longitude: 34.7695, Status: StatusAvailable, DriverName: "Daniel Omondi", DriverContact: "+254745678902", AmbulanceType: TypeBasic, Equipment: equipBasic},
	{AmbulanceID: "KBR 913U", CurrentLocation: hospital.KisumuCounty, Latitude: -0.0754, Longitude: 34.7695, Status: StatusAvailable, DriverName: "Lucy Anyango", DriverContact: "+254756789013", AmbulanceType: TypeBasic, Equipment: equipBasic},
	{AmbulanceID: "KBS 506V", CurrentLocation: hospital.KisumuCounty, Latitude: -0.0754, Longitude: 34.7695, Status: StatusAvailable, DriverName: "Brian Ouma", DriverContact: "+254767890124", AmbulanceType: TypeAdvanced, Equipment: equipAdvanced},
	{AmbulanceID: "KBT 678W", CurrentLocation: hospital.KisumuCounty, Latitude: -0.0754, Longitude: 34.7695, Status: StatusAvailable, DriverName: "Patricia Adongo", DriverContact: "+254778901235", AmbulanceType: TypeBasic, Equipment: equipBasic},
	{AmbulanceID: "KBU 134X", CurrentLocation: "Lumumba Sub-County Hospital", Latitude: -0.1058, Longitude: 34.7568, Status: StatusAvailable, DriverName: "Samuel Owuor", DriverContact: "+254789012346", AmbulanceType: TypeBasic, Equipment: equipBasic},
	{AmbulanceID: "KBV 925Y", CurrentLocation: "Lumumba Sub-County Hospital", Latitude: -0.1058, Longitude: 34.7568, Status: StatusAvailable, DriverName: "Rebecca Aoko", DriverContact: "+254790123457", AmbulanceType: TypeBasic, Equipment: equipBasic},
	{AmbulanceID: "KBX 743Z", CurrentLocation: "Ahero Sub-County Hospital", Latitude: -0.1743, Longitude: 34.9169, Status: StatusAvailable, DriverName: "Kevin Onyango", DriverContact: "+254701234568", AmbulanceType: TypeAdvanced, Equipment: equipAdvanced},
}

// Seed upserts the fleet registry. Existing rows keep their live status and
// mission fields; only the static vehicle attributes are refreshed.
func Seed(ctx context.Context, repo Repository) error {
	for i := range Registry {
		a := Registry[i]
		if err := repo.Upsert(ctx, &a); err != nil {
			return err
		}
	}
	return nil
}
