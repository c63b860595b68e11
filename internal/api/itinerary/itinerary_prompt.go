package itinerary

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

// SystemInstruction is sent with every itinerary generation.
const SystemInstruction = "You are a professional travel planner. Create detailed, practical, and engaging travel itineraries."

// Layout records which number each optional section gets in a prompt.
// Zero means the section is absent.
type Layout struct {
	Accommodation int
	Flight        int
	Budget        int
}

// NewLayout numbers the optional sections after the four fixed ones. A
// section is present only when it was requested and its search returned
// offers, so an empty search moves Budget Planning up.
func NewLayout(req types.TripRequest, hotels []types.HotelOffer, flights []types.FlightOffer) Layout {
	next := 5
	var l Layout
	if req.NeedsHotel && len(hotels) > 0 {
		l.Accommodation = next
		next++
	}
	if req.NeedsFlight && len(flights) > 0 {
		l.Flight = next
		next++
	}
	l.Budget = next
	return l
}

// Kind returns the section kind a header number stands for in this layout.
func (l Layout) Kind(n int) types.SectionKind {
	switch {
	case n == 1:
		return types.SectionOverview
	case n == 2:
		return types.SectionGuide
	case n == 3:
		return types.SectionDaily
	case n == 4:
		return types.SectionTips
	case n == l.Accommodation && n != 0:
		return types.SectionAccommodation
	case n == l.Flight && n != 0:
		return types.SectionFlight
	case n == l.Budget:
		return types.SectionBudget
	default:
		return types.SectionOther
	}
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// BuildPrompt renders the generation prompt. The output depends only on its
// arguments.
func BuildPrompt(req types.TripRequest, hotels []types.HotelOffer, flights []types.FlightOffer) string {
	layout := NewLayout(req, hotels, flights)
	adults := req.Travelers.Adults
	if adults <= 0 {
		adults = 1
	}
	children := req.Travelers.Children
	if children < 0 {
		children = 0
	}
	family := children > 0
	when := func(cond bool, s string) string {
		if cond {
			return s
		}
		return ""
	}

	var b strings.Builder
	b.WriteString("Please format your response as follows:\n\n")

	b.WriteString("1. Trip Overview\n")
	b.WriteString("Recommended transportation methods\n")
	b.WriteString("Estimated travel time\n")
	b.WriteString("Time zone differences (if any)\n\n")

	fmt.Fprintf(&b, "2. %s Guide\n", req.Destination)
	fmt.Fprintf(&b, "Travel Style recommendations based on %s theme and group size of %d people\n\n",
		req.Preferences, adults+children)
	b.WriteString("Suggested Activities: \n")
	b.WriteString("[activities]\n")
	b.WriteString(when(family, "- Include child-friendly activities and considerations\n"))
	b.WriteString("\n")

	b.WriteString("3. Day-by-Day Itinerary\n\n")
	fmt.Fprintf(&b, "Based on the travel period (%s to %s), create a full itinerary for each day.\n\n", req.StartDate, req.EndDate)
	b.WriteString("For each day, include the following:\n")
	b.WriteString("[Day #]\n")
	b.WriteString("Morning: [activity]\n")
	b.WriteString("  - Consider arrival time and transportation from arrival point (on Day 1)\n")
	b.WriteString("Afternoon: [activity]\n")
	b.WriteString("Evening: [activity]\n")
	fmt.Fprintf(&b, "Recommended Restaurants%s\n", when(family, " (including family-friendly options)"))
	b.WriteString("Estimated Cost (for the group)\n\n")

	b.WriteString("4. Travel Tips\n")
	b.WriteString("Transportation Between Cities\n")
	fmt.Fprintf(&b, "Local transportation in %s%s\n\n", req.Destination,
		when(family, " (including stroller accessibility and family considerations)"))
	fmt.Fprintf(&b, "Essential Items to Pack%s\n\n", when(family, " (including child-specific items)"))
	b.WriteString("Weather Tips\n\n")
	b.WriteString("Travel documents needed\n\n")
	fmt.Fprintf(&b, "Important Safety Notes%s\n\n", when(family, " (with special attention to traveling with children)"))
	fmt.Fprintf(&b, "Cultural Tips for %s\n\n", req.Destination)

	if layout.Accommodation > 0 {
		fmt.Fprintf(&b, "%d. Accommodation Recommendations in %s\n", layout.Accommodation, req.Destination)
		b.WriteString("Recommended Areas to Stay\n\n")
		b.WriteString("Hotel Options:\n")
		for _, h := range hotels {
			fmt.Fprintf(&b, "\n- %s \n  %s / %s\n\n", h.Name, formatAmount(h.Price.Amount), h.Price.Currency)
			fmt.Fprintf(&b, "(Mandatory to add the booking link)Booking Link: [Book Now](%s)\n", h.URL)
		}
		fmt.Fprintf(&b, "\n\nSpecial Considerations for %s theme travelers\n\n", req.Preferences)
	}

	if layout.Flight > 0 {
		fmt.Fprintf(&b, "%d. Flight Information:\n", layout.Flight)
		if len(flights[0].Segments) == 0 {
			b.WriteString("No flight options available\n\n")
		} else {
			f := flights[0]
			seg := f.Segments[0]
			b.WriteString("\nFlight Details:\n")
			fmt.Fprintf(&b, "- Departure: %s at %s\n", seg.Departure.Airport, seg.Departure.Time)
			fmt.Fprintf(&b, "- Arrival: %s at %s\n", seg.Arrival.Airport, seg.Arrival.Time)
			fmt.Fprintf(&b, "Price: %s %s\n\n", formatAmount(f.Price.Amount), f.Price.Currency)
			fmt.Fprintf(&b, "(Mandatory to add the booking link)Booking Link: %s\n\n", f.BookingLink)
		}
	}

	fmt.Fprintf(&b, "%d. Budget Planning\n", layout.Budget)
	b.WriteString("Transportation between cities\n")
	b.WriteString("Local transportation\n")
	b.WriteString("Activities and attractions\n")
	b.WriteString("Food and dining\n")
	b.WriteString("Miscellaneous expenses \n\n")
	b.WriteString("Total Cost: [amount]")
	if req.Budget != "" {
		fmt.Fprintf(&b, "\n\nKeep the total within a budget of %s.", req.Budget)
	}
	return b.String()
}
