package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

const (
	DefaultFlightBookingLink = "https://www.booking.com/flights"
	dateLayout               = "2006-01-02"
)

// FlightQuery is the input of a flight search. ReturnDate is optional.
type FlightQuery struct {
	Origin      string
	Destination string
	DepartDate  string
	ReturnDate  string
	Adults      int
	Children    int
}

type minPriceEntry struct {
	OffsetDays   *int `json:"offsetDays"`
	PriceRounded *struct {
		Units        flexFloat `json:"units"`
		CurrencyCode string    `json:"currencyCode"`
	} `json:"priceRounded"`
	Price *struct {
		Units flexFloat `json:"units"`
	} `json:"price"`
}

type namedRef struct {
	Name string `json:"name"`
}

type flightPoint struct {
	Time    flexString `json:"time"`
	Airport *namedRef  `json:"airport"`
}

type detailSegment struct {
	Departure        *flightPoint `json:"departure"`
	Arrival          *flightPoint `json:"arrival"`
	DepartureTime    flexString   `json:"departureTime"`
	ArrivalTime      flexString   `json:"arrivalTime"`
	DepartureAirport *namedRef    `json:"departureAirport"`
	ArrivalAirport   *namedRef    `json:"arrivalAirport"`
	Airline          *namedRef    `json:"airline"`
	Carrier          *namedRef    `json:"carrier"`
	Duration         flexString   `json:"duration"`
	FlightDuration   flexString   `json:"flightDuration"`
}

type flightDetailsResponse struct {
	Data *struct {
		FlightOffers []struct {
			Price *struct {
				Total    flexFloat `json:"total"`
				Amount   flexFloat `json:"amount"`
				Currency string    `json:"currency"`
			} `json:"price"`
			Segments      []detailSegment `json:"segments"`
			TotalDuration flexString      `json:"totalDuration"`
			BookingLink   string          `json:"bookingLink"`
		} `json:"flightOffers"`
		BookingLink string `json:"bookingLink"`
	} `json:"data"`
}

// NormalizeDate accepts an ISO date or timestamp and returns it as YYYY-MM-DD.
func NormalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range []string{dateLayout, time.RFC3339, "2006-01-02T15:04:05", "2006-01-02T15:04"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC().Format(dateLayout), nil
		}
	}
	return "", fmt.Errorf("invalid date %q: %w", s, types.ErrBadRequest)
}

// SearchFlights resolves both endpoints concurrently and returns the cheapest
// same-day fare as a single offer. Like SearchHotels it never returns an error.
func (c *Client) SearchFlights(ctx context.Context, q FlightQuery) types.SearchResult[types.FlightOffer] {
	ctx, span := otel.Tracer("BookingClient").Start(ctx, "SearchFlights", trace.WithAttributes(
		attribute.String("origin", q.Origin),
		attribute.String("destination", q.Destination),
		attribute.String("depart_date", q.DepartDate),
	))
	defer span.End()
	l := c.logger.With(slog.String("method", "SearchFlights"),
		slog.String("origin", q.Origin), slog.String("destination", q.Destination))

	fail := func(msg string, err error) types.SearchResult[types.FlightOffer] {
		l.ErrorContext(ctx, msg, slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, msg)
		return types.Failed[types.FlightOffer](err)
	}

	depart, err := NormalizeDate(q.DepartDate)
	if err != nil {
		return fail("Invalid departure date", err)
	}
	var ret string
	if q.ReturnDate != "" {
		if ret, err = NormalizeDate(q.ReturnDate); err != nil {
			return fail("Invalid return date", err)
		}
	}

	var (
		from, to       *types.FlightLocation
		fromErr, toErr error
		g, gctx        = errgroup.WithContext(ctx)
	)
	g.Go(func() error {
		from, fromErr = c.ResolveFlightLocation(gctx, q.Origin)
		return nil
	})
	g.Go(func() error {
		to, toErr = c.ResolveFlightLocation(gctx, q.Destination)
		return nil
	})
	_ = g.Wait()

	for _, e := range []error{fromErr, toErr} {
		if e != nil && !errors.Is(e, ErrLocationNotFound) {
			return fail("Flight location lookup failed", fmt.Errorf("resolve location: %w", e))
		}
	}
	if fromErr != nil || toErr != nil {
		l.InfoContext(ctx, "Flight location not found")
		span.SetStatus(codes.Ok, "location not found")
		return types.NotFound[types.FlightOffer]()
	}

	params := url.Values{
		"fromId":        {from.ID},
		"toId":          {to.ID},
		"departDate":    {depart},
		"cabinClass":    {"ECONOMY"},
		"currency_code": {"USD"},
	}
	if ret != "" {
		params.Set("returnDate", ret)
	}

	var resp listResponse[minPriceEntry]
	if err := c.get(ctx, pathMinPrice, params, &resp); err != nil {
		return fail("Flight price search failed", fmt.Errorf("min price: %w", err))
	}

	fare, ok := lo.Find(resp.Data, func(e minPriceEntry) bool {
		return e.OffsetDays != nil && *e.OffsetDays == 0
	})
	if !ok {
		l.InfoContext(ctx, "No same-day fare found", slog.Int("candidates", len(resp.Data)))
		span.SetStatus(codes.Ok, "no same-day fare")
		return types.NotFound[types.FlightOffer]()
	}

	offer := types.FlightOffer{
		Price: types.FlightPrice{Currency: "USD"},
		Segments: []types.FlightSegment{{
			Departure: types.FlightEndpoint{Time: depart, Airport: from.Name},
			Arrival:   types.FlightEndpoint{Time: lo.CoalesceOrEmpty(ret, depart), Airport: to.Name},
		}},
		BookingLink: DefaultFlightBookingLink,
	}
	if fare.PriceRounded != nil && fare.PriceRounded.Units != 0 {
		offer.Price.Amount = float64(fare.PriceRounded.Units)
	} else if fare.Price != nil {
		offer.Price.Amount = float64(fare.Price.Units)
	}
	if fare.PriceRounded != nil && fare.PriceRounded.CurrencyCode != "" {
		offer.Price.Currency = fare.PriceRounded.CurrencyCode
	}

	l.InfoContext(ctx, "Flight fare found", slog.Float64("amount", offer.Price.Amount))
	span.SetStatus(codes.Ok, "")
	return types.Found([]types.FlightOffer{offer})
}

// FlightDetails fetches the full itinerary behind an offer token. A nil offer
// with a nil error means the provider returned no offers.
func (c *Client) FlightDetails(ctx context.Context, token string) (*types.FlightOffer, error) {
	ctx, span := otel.Tracer("BookingClient").Start(ctx, "FlightDetails")
	defer span.End()

	var resp flightDetailsResponse
	if err := c.get(ctx, pathFlightDetails, url.Values{"token": {token}, "currency_code": {"USD"}}, &resp); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "flight details failed")
		return nil, fmt.Errorf("flight details: %w", err)
	}
	if resp.Data == nil || len(resp.Data.FlightOffers) == 0 {
		span.SetStatus(codes.Ok, "no offers")
		return nil, nil
	}

	fo := resp.Data.FlightOffers[0]
	offer := types.FlightOffer{
		Price:       types.FlightPrice{Currency: "USD"},
		Segments:    make([]types.FlightSegment, 0, len(fo.Segments)),
		Stops:       len(fo.Segments) - 1,
		BookingLink: lo.CoalesceOrEmpty(fo.BookingLink, resp.Data.BookingLink, DefaultFlightBookingLink),
	}
	if fo.Price != nil {
		offer.Price.Amount = float64(fo.Price.Total)
		if offer.Price.Amount == 0 {
			offer.Price.Amount = float64(fo.Price.Amount)
		}
		if fo.Price.Currency != "" {
			offer.Price.Currency = fo.Price.Currency
		}
	}
	for _, s := range fo.Segments {
		offer.Segments = append(offer.Segments, normalizeSegment(s))
	}
	offer.TotalDuration = totalDuration(fo.TotalDuration, fo.Segments)

	span.SetStatus(codes.Ok, "")
	return &offer, nil
}

func normalizeSegment(s detailSegment) types.FlightSegment {
	seg := types.FlightSegment{
		Departure: types.FlightEndpoint{Time: string(s.DepartureTime), Airport: refName(s.DepartureAirport)},
		Arrival:   types.FlightEndpoint{Time: string(s.ArrivalTime), Airport: refName(s.ArrivalAirport)},
		Airline:   lo.CoalesceOrEmpty(refName(s.Airline), refName(s.Carrier), "Unknown Airline"),
		Duration:  lo.CoalesceOrEmpty(string(s.Duration), string(s.FlightDuration), "N/A"),
	}
	if p := s.Departure; p != nil {
		seg.Departure.Time = lo.CoalesceOrEmpty(string(p.Time), seg.Departure.Time)
		seg.Departure.Airport = lo.CoalesceOrEmpty(refName(p.Airport), seg.Departure.Airport)
	}
	if p := s.Arrival; p != nil {
		seg.Arrival.Time = lo.CoalesceOrEmpty(string(p.Time), seg.Arrival.Time)
		seg.Arrival.Airport = lo.CoalesceOrEmpty(refName(p.Airport), seg.Arrival.Airport)
	}
	seg.Departure.Airport = lo.CoalesceOrEmpty(seg.Departure.Airport, "Unknown Airport")
	seg.Arrival.Airport = lo.CoalesceOrEmpty(seg.Arrival.Airport, "Unknown Airport")
	return seg
}

func refName(r *namedRef) string {
	if r == nil {
		return ""
	}
	return r.Name
}

// totalDuration prefers the provider's total, then the sum of numeric segment
// durations.
func totalDuration(total flexString, segments []detailSegment) string {
	if total != "" {
		return string(total)
	}
	var sum int64
	for _, s := range segments {
		if n, err := strconv.ParseInt(string(s.Duration), 10, 64); err == nil {
			sum += n
		}
	}
	if sum > 0 {
		return strconv.FormatInt(sum, 10)
	}
	return "N/A"
}
