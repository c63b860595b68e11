package main

import (
	"fmt"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/api/itinerary"
	travelPlan "github.com/FACorreiaa/go-trip-planner-ai/internal/api/travel_plan"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

func benchRequest() types.TripRequest {
	return types.TripRequest{
		Origin:      "Lisbon",
		Destination: "Tokyo",
		StartDate:   "2025-10-01",
		EndDate:     "2025-10-14",
		Travelers:   types.Travelers{Adults: 2, Children: 2},
		Preferences: "food, temples, day trips",
		Budget:      "6000 EUR",
		NeedsHotel:  true,
		NeedsFlight: true,
	}
}

func benchOffers() ([]types.HotelOffer, []types.FlightOffer) {
	hotels := make([]types.HotelOffer, 3)
	for i := range hotels {
		hotels[i] = types.HotelOffer{
			Name:     fmt.Sprintf("Hotel %d", i+1),
			Location: "Shinjuku",
			Room:     "Family Room",
			Price:    types.HotelPrice{Amount: 1800 + float64(i)*150, Currency: "EUR"},
			URL:      fmt.Sprintf("https://www.booking.com/hotel/jp/h%d.html", i),
		}
	}
	flights := []types.FlightOffer{{
		Price: types.FlightPrice{Amount: 3400, Currency: "EUR"},
		Segments: []types.FlightSegment{{
			Departure: types.FlightEndpoint{Time: "2025-10-01T10:00:00", Airport: "LIS"},
			Arrival:   types.FlightEndpoint{Time: "2025-10-02T09:00:00", Airport: "HND"},
			Airline:   "TAP",
		}},
		Stops:       1,
		BookingLink: "https://flights.booking.com/",
	}}
	return hotels, flights
}

// fourteenDayPlan is a generated itinerary of realistic size.
func fourteenDayPlan() string {
	var b strings.Builder
	b.WriteString("1. Trip Overview\nTwo weeks across Tokyo and Kyoto.\n\n2. Tokyo Guide\nHuge, safe, efficient.\n\n3. Day-by-Day Itinerary\n")
	for d := 1; d <= 14; d++ {
		fmt.Fprintf(&b, "[Day %d] Neighbourhood %d\nMorning: Temple visit\nAfternoon: Market lunch\nEvening: Izakaya dinner\n", d, d)
	}
	b.WriteString("\n4. Travel Tips\nGet a Suica card.\n\n5. Accommodation Options\n- Hotel 1 [Book Now](https://www.booking.com/hotel/jp/h0.html)\n")
	b.WriteString("\n6. Flight Information\n- TAP [Book Now](https://flights.booking.com/)\n\n7. Budget Breakdown\nAbout 6000 EUR.\n")
	return b.String()
}

func BenchmarkBuildPrompt(b *testing.B) {
	req := benchRequest()
	hotels, flights := benchOffers()
	b.ReportAllocs()
	for b.Loop() {
		_ = itinerary.BuildPrompt(req, hotels, flights)
	}
}

func BenchmarkParseItinerary(b *testing.B) {
	text := fourteenDayPlan()
	hotels, flights := benchOffers()
	layout := itinerary.NewLayout(benchRequest(), hotels, flights)
	b.SetBytes(int64(len(text)))
	b.ReportAllocs()
	for b.Loop() {
		_ = itinerary.ParseItinerary(text, layout)
	}
}

func BenchmarkBuildCalendar(b *testing.B) {
	text := fourteenDayPlan()
	hotels, flights := benchOffers()
	plan := types.TravelPlan{
		ID:          uuid.New(),
		Destination: "Tokyo",
		StartDate:   "2025-10-01",
		EndDate:     "2025-10-14",
		Content:     text,
		Itinerary:   itinerary.ParseItinerary(text, itinerary.NewLayout(benchRequest(), hotels, flights)),
	}
	b.ReportAllocs()
	for b.Loop() {
		if _, err := travelPlan.BuildCalendar(plan); err != nil {
			b.Fatal(err)
		}
	}
}
