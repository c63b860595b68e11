package itinerary

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

var (
	// "3. Day-by-Day Itinerary", "**5. Flight Information:**", "## 2. Paris Guide"
	headerRe = regexp.MustCompile(`^(?:#{1,6}\s*)?(?:\*\*)?(\d{1,2})\.\s+([\p{L}][\p{L}\s\-&',./()]*?)(?:\*\*)?:?(?:\*\*)?$`)
	// "[Day 2]", "**Day 2: Montmartre**", "Day 2 - Montmartre"
	dayRe      = regexp.MustCompile(`(?i)^(?:#{1,6}\s*)?(?:\*\*)?\[?day\s+(\d+)\]?(?:\*\*)?\s*(?:[:\-–]\s*)?(.*?)(?:\*\*)?$`)
	slotRe     = regexp.MustCompile(`(?i)^[-*•]?\s*(?:\*\*)?(morning|afternoon|evening)(?:\*\*)?\s*:\s*(?:\*\*)?\s*(.*)$`)
	mdLinkRe   = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^)\s]+)\)`)
	bareLinkRe = regexp.MustCompile(`(?i)booking link:\s*(https?://\S+)`)
)

var kindKeywords = []struct {
	keyword string
	kind    types.SectionKind
}{
	{"overview", types.SectionOverview},
	{"day-by-day", types.SectionDaily},
	{"itinerary", types.SectionDaily},
	{"accommodation", types.SectionAccommodation},
	{"hotel", types.SectionAccommodation},
	{"flight", types.SectionFlight},
	{"budget", types.SectionBudget},
	{"tips", types.SectionTips},
	{"guide", types.SectionGuide},
}

func kindFromTitle(title string) (types.SectionKind, bool) {
	t := strings.ToLower(title)
	for _, k := range kindKeywords {
		if strings.Contains(t, k.keyword) {
			return k.kind, true
		}
	}
	return "", false
}

// ParseItinerary splits generated text into typed sections. A numbered line is
// treated as a section header only when its number is the next one expected,
// so numbered lists inside a section stay body text. Parsing never fails:
// text before the first header lands in a leading "other" section.
func ParseItinerary(text string, layout Layout) types.Itinerary {
	it := types.Itinerary{Sections: []types.ItinerarySection{}}
	var cur *types.ItinerarySection
	var day *types.ItineraryDay
	nextHeader := 1

	flushDay := func() {
		if cur != nil && day != nil {
			cur.Days = append(cur.Days, *day)
		}
		day = nil
	}
	open := func(s types.ItinerarySection) {
		flushDay()
		it.Sections = append(it.Sections, s)
		cur = &it.Sections[len(it.Sections)-1]
	}

	for _, raw := range strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n") {
		line := strings.TrimSpace(raw)
		if line == "" {
			continue
		}

		if m := headerRe.FindStringSubmatch(line); m != nil {
			n, _ := strconv.Atoi(m[1])
			title := strings.TrimSpace(m[2])
			kind, known := kindFromTitle(title)
			// a skipped number is accepted only for a recognizable title
			if n == nextHeader || (n > nextHeader && known) {
				if !known {
					kind = layout.Kind(n)
				}
				open(types.ItinerarySection{Number: n, Kind: kind, Title: title, Lines: []string{}})
				nextHeader = n + 1
				continue
			}
		}

		if cur == nil {
			open(types.ItinerarySection{Kind: types.SectionOther, Lines: []string{}})
		}
		cur.Lines = append(cur.Lines, line)
		cur.Links = append(cur.Links, extractLinks(line)...)

		if cur.Kind != types.SectionDaily {
			continue
		}
		if m := dayRe.FindStringSubmatch(line); m != nil {
			flushDay()
			n, _ := strconv.Atoi(m[1])
			day = &types.ItineraryDay{Day: n, Title: strings.TrimSpace(m[2])}
			continue
		}
		if day == nil {
			continue
		}
		if m := slotRe.FindStringSubmatch(line); m != nil {
			value := strings.TrimSpace(m[2])
			switch strings.ToLower(m[1]) {
			case "morning":
				day.Morning = value
			case "afternoon":
				day.Afternoon = value
			case "evening":
				day.Evening = value
			}
			continue
		}
		day.Notes = append(day.Notes, strings.TrimLeft(line, "-*• "))
	}
	flushDay()
	return it
}

func extractLinks(line string) []types.BookingLink {
	var links []types.BookingLink
	for _, m := range mdLinkRe.FindAllStringSubmatch(line, -1) {
		links = append(links, types.BookingLink{Label: m[1], URL: m[2]})
	}
	if len(links) == 0 {
		if m := bareLinkRe.FindStringSubmatch(line); m != nil {
			links = append(links, types.BookingLink{Label: "Booking Link", URL: strings.TrimRight(m[1], ".,;")})
		}
	}
	return links
}
