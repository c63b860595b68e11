package types

import (
	"time"

	"github.com/google/uuid"
)

// TravelPlan is the persisted result of one generation, owned by a single user.
type TravelPlan struct {
	ID          uuid.UUID     `json:"id"`
	UserID      uuid.UUID     `json:"user"`
	Origin      string        `json:"origin,omitempty"`
	Destination string        `json:"destination"`
	StartDate   string        `json:"startDate"`
	EndDate     string        `json:"endDate"`
	Budget      string        `json:"budget,omitempty"`
	Preferences string        `json:"preferences,omitempty"`
	Travelers   Travelers     `json:"travelers"`
	Content     string        `json:"content"`
	Itinerary   Itinerary     `json:"itinerary"`
	HotelData   []HotelOffer  `json:"hotelData"`
	FlightData  []FlightOffer `json:"flightData"`
	CreatedAt   time.Time     `json:"createdAt"`
	UpdatedAt   time.Time     `json:"updatedAt"`
}

// CreateTravelPlanParams is the body accepted by the create endpoint.
type CreateTravelPlanParams struct {
	Origin      string        `json:"origin"`
	Destination string        `json:"destination" validate:"required"`
	StartDate   string        `json:"startDate" validate:"required,datetime=2006-01-02"`
	EndDate     string        `json:"endDate" validate:"required,datetime=2006-01-02"`
	Budget      string        `json:"budget"`
	Preferences string        `json:"preferences"`
	Travelers   Travelers     `json:"travelers"`
	Content     string        `json:"content"`
	HotelData   []HotelOffer  `json:"hotelData"`
	FlightData  []FlightOffer `json:"flightData"`
}

// UpdateTravelPlanParams uses pointers so only provided fields change.
type UpdateTravelPlanParams struct {
	Destination *string `json:"destination,omitempty"`
	StartDate   *string `json:"startDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	EndDate     *string `json:"endDate,omitempty" validate:"omitempty,datetime=2006-01-02"`
	Budget      *string `json:"budget,omitempty"`
	Preferences *string `json:"preferences,omitempty"`
	Content     *string `json:"content,omitempty"`
}

// GeneratedPlan is the response of the generation pipeline.
type GeneratedPlan struct {
	Plan         *TravelPlan   `json:"plan"`
	HotelSearch  SearchSummary `json:"hotelSearch"`
	FlightSearch SearchSummary `json:"flightSearch"`
}
