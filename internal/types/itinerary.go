package types

// SectionKind identifies a block of the generated itinerary.
type SectionKind string

const (
	SectionOverview      SectionKind = "overview"
	SectionGuide         SectionKind = "guide"
	SectionDaily         SectionKind = "daily"
	SectionTips          SectionKind = "tips"
	SectionAccommodation SectionKind = "accommodation"
	SectionFlight        SectionKind = "flight"
	SectionBudget        SectionKind = "budget"
	SectionOther         SectionKind = "other"
)

// BookingLink is a markdown link found in generated text, e.g. [Book Now](url).
type BookingLink struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// ItineraryDay is one [Day N] block of the day-by-day section.
type ItineraryDay struct {
	Day       int      `json:"day"`
	Title     string   `json:"title,omitempty"`
	Morning   string   `json:"morning,omitempty"`
	Afternoon string   `json:"afternoon,omitempty"`
	Evening   string   `json:"evening,omitempty"`
	Notes     []string `json:"notes,omitempty"`
}

// ItinerarySection is one numbered section of the generated plan.
type ItinerarySection struct {
	Number int            `json:"number,omitempty"`
	Kind   SectionKind    `json:"kind"`
	Title  string         `json:"title"`
	Lines  []string       `json:"lines"`
	Links  []BookingLink  `json:"links,omitempty"`
	Days   []ItineraryDay `json:"days,omitempty"`
}

// Itinerary is the structured form of a plan's generated content.
type Itinerary struct {
	Sections []ItinerarySection `json:"sections"`
}

// Section returns the first section of the given kind.
func (it Itinerary) Section(kind SectionKind) (ItinerarySection, bool) {
	for _, s := range it.Sections {
		if s.Kind == kind {
			return s, true
		}
	}
	return ItinerarySection{}, false
}
