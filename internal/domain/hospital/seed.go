package hospital

import "context"

// Registry is the Kisumu county facility network the service coordinates.
// Coordinates and capacities come from the county facility gazette.
var Registry = []Hospital{
	{FacilityName: JOOTRH, Latitude: -0.0754, Longitude: 34.7695, FacilityType: "Referral Hospital", Capacity: 500, AmbulanceServices: "Available", ContactNumber: "+254-57-2055000"},
	{FacilityName: KisumuCounty, Latitude: -0.0754, Longitude: 34.7695, FacilityType: "Referral Hospital", Capacity: 400, AmbulanceServices: "Available", ContactNumber: "+254-57-2021578"},
	{FacilityName: "Lumumba Sub-County Hospital", Latitude: -0.1058, Longitude: 34.7568, FacilityType: "Sub-County Hospital", Capacity: 100, AmbulanceServices: "Limited", ContactNumber: "+254-57-2023456"},
	{FacilityName: "Ahero Sub-County Hospital", Latitude: -0.1743, Longitude: 34.9169, FacilityType: "Sub-County Hospital", Capacity: 100, AmbulanceServices: "Limited", ContactNumber: "+254-57-2034567"},
	{FacilityName: "Kombewa Sub-County / District Hospital", Latitude: -0.1813, Longitude: 34.6326, FacilityType: "Sub-County Hospital", Capacity: 100, AmbulanceServices: "Limited", ContactNumber: "+254-57-2045678"},
	{FacilityName: "Muhoroni County Hospital", Latitude: -0.1551, Longitude: 35.1985, FacilityType: "County Hospital", Capacity: 75, AmbulanceServices: "Limited", ContactNumber: "+254-57-2056789"},
	{FacilityName: "Nyakach Sub-County Hospital", Latitude: -0.2670, Longitude: 35.0569, FacilityType: "Sub-County Hospital", Capacity: 75, AmbulanceServices: "Limited", ContactNumber: "+254-57-2067890"},
	{FacilityName: "Chulaimbo Sub-County Hospital", Latitude: -0.1848, Longitude: 34.6163, FacilityType: "Sub-County Hospital", Capacity: 78, AmbulanceServices: "Limited", ContactNumber: "+254-57-2078901"},
	{FacilityName: "Masogo Sub-County (Sub-District) Hospital", Latitude: -0.1855, Longitude: 35.0386, FacilityType: "Sub-County Hospital", Capacity: 77, AmbulanceServices: "Limited", ContactNumber: "+254-57-2089012"},
	{FacilityName: "Nyando District Hospital", Latitude: -0.3573, Longitude: 35.0006, FacilityType: "District Hospital", Capacity: 80, AmbulanceServices: "Limited", ContactNumber: "+254-57-2090123"},
	{FacilityName: "Ober Kamoth Sub-County Hospital", Latitude: -0.3789, Longitude: 35.0299, FacilityType: "Sub-County Hospital", Capacity: 70, AmbulanceServices: "Limited", ContactNumber: "+254-57-2101234"},
	{FacilityName: "Rabuor Sub-County Hospital", Latitude: -0.2138, Longitude: 34.8817, FacilityType: "Sub-County Hospital", Capacity: 60, AmbulanceServices: "Limited", ContactNumber: "+254-57-2112345"},
	{FacilityName: "Nyangoma Sub-County Hospital", Latitude: -0.1625, Longitude: 34.7794, FacilityType: "Sub-County Hospital", Capacity: 65, AmbulanceServices: "Limited", ContactNumber: "+254-57-2123456"},
	{FacilityName: "Nyahera Sub-County Hospital", Latitude: -0.1565, Longitude: 34.7508, FacilityType: "Sub-County Hospital", Capacity: 50, AmbulanceServices: "Limited", ContactNumber: "+254-57-2134567"},
	{FacilityName: "Katito Sub-County Hospital", Latitude: -0.4533, Longitude: 34.9561, FacilityType: "Sub-County Hospital", Capacity: 52, AmbulanceServices: "Limited", ContactNumber: "+254-57-2145678"},
	{FacilityName: "Gita Sub-County Hospital", Latitude: -0.3735, Longitude: 34.9676, FacilityType: "Sub-County Hospital", Capacity: 40, AmbulanceServices: "Limited", ContactNumber: "+254-57-2156789"},
	{FacilityName: "Masogo Health Centre", Latitude: -0.1855, Longitude: 35.0386, FacilityType: "Health Centre", Capacity: 42, AmbulanceServices: "Limited", ContactNumber: "+254-57-2167890"},
	{FacilityName: "Victoria Hospital (public) Kisumu", Latitude: -0.0878, Longitude: 34.7686, FacilityType: "Private Hospital", Capacity: 30, AmbulanceServices: "Limited", ContactNumber: "+254-57-2178901"},
	{FacilityName: "Kodiaga Prison Health Centre", Latitude: -0.0607, Longitude: 34.7509, FacilityType: "Prison Health Centre", Capacity: 35, AmbulanceServices: "Limited", ContactNumber: "+254-57-2189012"},
	{FacilityName: "Kisumu District Hospital", Latitude: -0.0916, Longitude: 34.7647, FacilityType: "District Hospital", Capacity: 20, AmbulanceServices: "Limited", ContactNumber: "+254-57-2190123"},
	{FacilityName: "Migosi Health Centre", Latitude: -0.1073, Longitude: 34.7794, FacilityType: "Health Centre", Capacity: 20, AmbulanceServices: "Limited", ContactNumber: "+254-57-2201234"},
	{FacilityName: "Katito Health Centre", Latitude: -0.4533, Longitude: 34.9561, FacilityType: "Health Centre", Capacity: 25, AmbulanceServices: "Limited", ContactNumber: "+254-57-2212345"},
	{FacilityName: "Mbaka Oromo Health Centre", Latitude: -0.2628, Longitude: 34.6061, FacilityType: "Health Centre", Capacity: 15, AmbulanceServices: "Limited", ContactNumber: "+254-57-2223456"},
	{FacilityName: "Migere Health Centre", Latitude: -0.1225, Longitude: 34.7553, FacilityType: "Health Centre", Capacity: 24, AmbulanceServices: "Limited", ContactNumber: "+254-57-2234567"},
	{FacilityName: "Milenye Health Centre", Latitude: -0.1872, Longitude: 34.7781, FacilityType: "Health Centre", Capacity: 15, AmbulanceServices: "Limited", ContactNumber: "+254-57-2245678"},
	{FacilityName: "Minyange Dispensary", Latitude: -0.2192, Longitude: 34.8331, FacilityType: "Dispensary", Capacity: 10, AmbulanceServices: "Limited", ContactNumber: "+254-57-2256789"},
	{FacilityName: "Nduru Kadero Health Centre", Latitude: -0.1356, Longitude: 34.7381, FacilityType: "Health Centre", Capacity: 19, AmbulanceServices: "Limited", ContactNumber: "+254-57-2267890"},
	{FacilityName: "Newa Dispensary", Latitude: -0.2014, Longitude: 34.8289, FacilityType: "Dispensary", Capacity: 5, AmbulanceServices: "Limited", ContactNumber: "+254-57-2278901"},
	{FacilityName: "Nyakoko Dispensary", Latitude: -0.2678, Longitude: 34.9981, FacilityType: "Dispensary", Capacity: 19, AmbulanceServices: "Limited", ContactNumber: "+254-57-2289012"},
	{FacilityName: "Ojola Sub-County Hospital", Latitude: -0.1578, Longitude: 34.8419, FacilityType: "Sub-County Hospital", Capacity: 10, AmbulanceServices: "Limited", ContactNumber: "+254-57-2290123"},
	{FacilityName: "Simba Opepo Health Centre", Latitude: -0.3381, Longitude: 34.9456, FacilityType: "Health Centre", Capacity: 5, AmbulanceServices: "Limited", ContactNumber: "+254-57-2301234"},
	{FacilityName: "Songhor Health Centre", Latitude: -0.2131, Longitude: 35.1611, FacilityType: "Health Centre", Capacity: 15, AmbulanceServices: "Limited", ContactNumber: "+254-57-2312345"},
	{FacilityName: "St Marks Lela Health Centre", Latitude: -0.0803, Longitude: 34.6569, FacilityType: "Health Centre", Capacity: 17, AmbulanceServices: "Limited", ContactNumber: "+254-57-2323456"},
	{FacilityName: "Maseno University Health Centre", Latitude: -0.0025, Longitude: 34.6053, FacilityType: "University Health Centre", Capacity: 16, AmbulanceServices: "Limited", ContactNumber: "+254-57-2334567"},
	{FacilityName: "Geta Health Centre", Latitude: -0.4739, Longitude: 34.9519, FacilityType: "Health Centre", Capacity: 45, AmbulanceServices: "Limited", ContactNumber: "+254-57-2345678"},
	{FacilityName: "Kadinda Health Centre", Latitude: -0.2167, Longitude: 34.8419, FacilityType: "Health Centre", Capacity: 30, AmbulanceServices: "Limited", ContactNumber: "+254-57-2356789"},
	{FacilityName: "Kochieng Health Centre", Latitude: -0.3658, Longitude: 34.9606, FacilityType: "Health Centre", Capacity: 29, AmbulanceServices: "Limited", ContactNumber: "+254-57-2367890"},
	{FacilityName: "Kodingo Health Centre", Latitude: -0.0956, Longitude: 34.7658, FacilityType: "Health Centre", Capacity: 55, AmbulanceServices: "Limited", ContactNumber: "+254-57-2378901"},
	{FacilityName: "Kolenyo Health Centre", Latitude: -0.4536, Longitude: 34.9564, FacilityType: "Health Centre", Capacity: 30, AmbulanceServices: "Limited", ContactNumber: "+254-57-2389012"},
	{FacilityName: "Kandu Health Centre", Latitude: -0.2314, Longitude: 34.8489, FacilityType: "Health Centre", Capacity: 30, AmbulanceServices: "Limited", ContactNumber: "+254-57-2390123"},
}

// Seed upserts the facility registry. Safe to run repeatedly.
func Seed(ctx context.Context, repo Repository) error {
	for i := range Registry {
		h := Registry[i]
		if err := repo.Upsert(ctx, &h); err != nil {
			return err
		}
	}
	return nil
}
