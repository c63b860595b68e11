package types

// GeoPoint is a WGS84 coordinate.
type GeoPoint struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Activity is a tourist attraction returned by the activities aggregator.
type Activity struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Rating      float64  `json:"rating"`
	ReviewCount int      `json:"reviewCount"`
	Address     string   `json:"address"`
	Location    GeoPoint `json:"location"`
	Website     string   `json:"website,omitempty"`
	BookingLink string   `json:"bookingLink"`
}

// ActivityPackage is a canned tour assembled from a slice of activities.
type ActivityPackage struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Duration    string   `json:"duration"`
	Price       float64  `json:"price"`
	Activities  []string `json:"activities"`
}

// ActivitySearch is the destination context returned alongside activities.
type ActivitySearch struct {
	Location GeoPoint          `json:"location"`
	Timezone string            `json:"timezone,omitempty"`
	Packages []ActivityPackage `json:"packages"`
}

// Restaurant is a place returned by the restaurants aggregator.
type Restaurant struct {
	ID               string   `json:"id"`
	Name             string   `json:"name"`
	Rating           float64  `json:"rating"`
	UserRatingsTotal int      `json:"userRatingsTotal"`
	Address          string   `json:"address"`
	Location         GeoPoint `json:"location"`
	OpenNow          *bool    `json:"openNow,omitempty"`
}
