package types

// HotelPrice carries both the requested-currency and hotel-currency totals.
type HotelPrice struct {
	Amount        float64 `json:"amount"`
	Currency      string  `json:"currency"`
	LocalAmount   float64 `json:"localAmount"`
	LocalCurrency string  `json:"localCurrency"`
}

// HotelOffer is one normalized bookable stay.
type HotelOffer struct {
	Name     string     `json:"name"`
	Location string     `json:"location"`
	Room     string     `json:"room"`
	CheckIn  string     `json:"checkIn"`
	CheckOut string     `json:"checkOut"`
	Price    HotelPrice `json:"price"`
	URL      string     `json:"url"`
}

type FlightPrice struct {
	Amount   float64 `json:"amount"`
	Currency string  `json:"currency"`
}

type FlightEndpoint struct {
	Time    string `json:"time"`
	Airport string `json:"airport"`
}

type FlightSegment struct {
	Departure FlightEndpoint `json:"departure"`
	Arrival   FlightEndpoint `json:"arrival"`
	Airline   string         `json:"airline,omitempty"`
	Duration  string         `json:"duration,omitempty"`
}

// FlightOffer is one normalized flight itinerary.
type FlightOffer struct {
	Price         FlightPrice     `json:"price"`
	Segments      []FlightSegment `json:"segments"`
	TotalDuration string          `json:"totalDuration,omitempty"`
	Stops         int             `json:"stops"`
	BookingLink   string          `json:"bookingLink"`
}

// FlightLocation is a location resolved by the flight search endpoint.
type FlightLocation struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}
