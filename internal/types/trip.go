package types

// Travelers is the party size for a trip.
type Travelers struct {
	Adults   int `json:"adults" validate:"gte=0"`
	Children int `json:"children" validate:"gte=0"`
}

// Total returns the number of people travelling.
func (t Travelers) Total() int {
	return t.Adults + t.Children
}

// TripRequest holds the parameters of one plan generation attempt.
// Dates are ISO calendar dates (YYYY-MM-DD).
type TripRequest struct {
	Origin      string    `json:"origin" validate:"required_if=NeedsFlight true"`
	Destination string    `json:"destination" validate:"required"`
	StartDate   string    `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string    `json:"endDate" validate:"required,datetime=2006-01-02"`
	Travelers   Travelers `json:"travelers"`
	Preferences string    `json:"preferences"`
	Budget      string    `json:"budget"`
	NeedsHotel  bool      `json:"needsHotel"`
	NeedsFlight bool      `json:"needsFlight"`
}
