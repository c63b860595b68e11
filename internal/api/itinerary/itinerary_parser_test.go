package itinerary

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

const generatedParis = `Here is your plan!

1. Trip Overview
Recommended transportation: Metro and walking
Time zone: CET

2. Paris Guide
Suggested Activities:
1. Louvre Museum
2. Seine river cruise

3. Day-by-Day Itinerary
[Day 1]
Morning: Arrive at CDG and take the RER B
  - Check in at the hotel
Afternoon: Walk along the Seine
Evening: Dinner in Le Marais
[Day 2] Museums
Morning: Louvre
Afternoon: Musée d'Orsay
Evening: Eiffel Tower at night

4. Travel Tips
Buy a Navigo pass.

5. Accommodation Recommendations in Paris
- Hotel Lutetia 1250.5 / EUR
Booking Link: [Book Now](https://www.booking.com/hotel/fr/lutetia.html)

6. Budget Planning
Total Cost: 3000 EUR`

func TestParseItinerary_Paris(t *testing.T) {
	it := ParseItinerary(generatedParis, NewLayout(types.TripRequest{NeedsHotel: true}, []types.HotelOffer{lutetia}, nil))

	var kinds []types.SectionKind
	for _, s := range it.Sections {
		kinds = append(kinds, s.Kind)
	}
	assert.Equal(t, []types.SectionKind{
		types.SectionOther, types.SectionOverview, types.SectionGuide, types.SectionDaily,
		types.SectionTips, types.SectionAccommodation, types.SectionBudget,
	}, kinds)

	assert.Equal(t, []string{"Here is your plan!"}, it.Sections[0].Lines)

	guide, ok := it.Section(types.SectionGuide)
	require.True(t, ok)
	assert.Equal(t, 2, guide.Number)
	assert.Equal(t, "Paris Guide", guide.Title)
	assert.Contains(t, guide.Lines, "1. Louvre Museum", "numbered list items stay body text")

	daily, ok := it.Section(types.SectionDaily)
	require.True(t, ok)
	require.Len(t, daily.Days, 2)
	assert.Equal(t, types.ItineraryDay{
		Day:       1,
		Morning:   "Arrive at CDG and take the RER B",
		Afternoon: "Walk along the Seine",
		Evening:   "Dinner in Le Marais",
		Notes:     []string{"Check in at the hotel"},
	}, daily.Days[0])
	assert.Equal(t, 2, daily.Days[1].Day)
	assert.Equal(t, "Museums", daily.Days[1].Title)
	assert.Equal(t, "Louvre", daily.Days[1].Morning)

	acc, ok := it.Section(types.SectionAccommodation)
	require.True(t, ok)
	assert.Equal(t, 5, acc.Number)
	assert.Equal(t, []types.BookingLink{{Label: "Book Now", URL: "https://www.booking.com/hotel/fr/lutetia.html"}}, acc.Links)

	budget, ok := it.Section(types.SectionBudget)
	require.True(t, ok)
	assert.Equal(t, 6, budget.Number)
}

func TestParseItinerary_MarkdownHeaders(t *testing.T) {
	text := "**1. Trip Overview**\nFly in.\n## 2. Rome Guide\nPasta.\n**3. Day-by-Day Itinerary:**\n**Day 1: Colosseum**\n- **Morning:** Colosseum tour\n"
	it := ParseItinerary(text, Layout{Budget: 5})

	require.Len(t, it.Sections, 3)
	assert.Equal(t, "Trip Overview", it.Sections[0].Title)
	assert.Equal(t, "Rome Guide", it.Sections[1].Title)
	daily := it.Sections[2]
	assert.Equal(t, types.SectionDaily, daily.Kind)
	require.Len(t, daily.Days, 1)
	assert.Equal(t, "Colosseum", daily.Days[0].Title)
	assert.Equal(t, "Colosseum tour", daily.Days[0].Morning)
}

func TestParseItinerary_FlightBareLink(t *testing.T) {
	text := "5. Flight Information:\nPrice: 142 USD\nBooking Link: https://www.booking.com/flights\n6. Budget Planning\nTotal Cost: 1000"
	it := ParseItinerary(text, NewLayout(types.TripRequest{NeedsFlight: true}, nil, []types.FlightOffer{lisParis}))

	flight, ok := it.Section(types.SectionFlight)
	require.True(t, ok)
	assert.Equal(t, []types.BookingLink{{Label: "Booking Link", URL: "https://www.booking.com/flights"}}, flight.Links)
	_, ok = it.Section(types.SectionBudget)
	assert.True(t, ok)
}

func TestParseItinerary_NeverFails(t *testing.T) {
	for _, text := range []string{"", "   \n\n", "no structure at all", "7. Budget Planning"} {
		it := ParseItinerary(text, Layout{Budget: 5})
		assert.NotNil(t, it.Sections)
	}

	it := ParseItinerary("just prose\nmore prose", Layout{Budget: 5})
	require.Len(t, it.Sections, 1)
	assert.Equal(t, types.SectionOther, it.Sections[0].Kind)
	assert.Len(t, it.Sections[0].Lines, 2)
}
