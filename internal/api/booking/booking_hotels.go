package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

// maxHotelDetails is how many hotels from the search page get a details lookup.
const maxHotelDetails = 3

// HotelQuery is the input of a hotel search.
type HotelQuery struct {
	Destination string
	CheckIn     string
	CheckOut    string
	Adults      int
	Children    int
}

type searchHotelsResponse struct {
	Data struct {
		Hotels []struct {
			HotelID flexString `json:"hotel_id"`
		} `json:"hotels"`
	} `json:"data"`
}

type amount struct {
	Value    flexFloat `json:"value"`
	Currency string    `json:"currency"`
}

type hotelRoom struct {
	Name string `json:"name"`
}

type hotelDetails struct {
	HotelName     string                     `json:"hotel_name"`
	Address       string                     `json:"address"`
	City          string                     `json:"city"`
	CountryTrans  string                     `json:"country_trans"`
	ArrivalDate   string                     `json:"arrival_date"`
	DepartureDate string                     `json:"departure_date"`
	URL           string                     `json:"url"`
	Rooms         map[string]hotelRoom       `json:"rooms"`
	Breakdown     *struct {
		AllInclusive      *amount `json:"all_inclusive_amount"`
		AllInclusiveLocal *amount `json:"all_inclusive_amount_hotel_currency"`
	} `json:"composite_price_breakdown"`
}

type hotelDetailsResponse struct {
	Data *hotelDetails `json:"data"`
}

// SearchHotels resolves the destination, lists hotels and fetches details for
// the first few of them concurrently. It never returns an error: failures are
// carried in the result status.
func (c *Client) SearchHotels(ctx context.Context, q HotelQuery) types.SearchResult[types.HotelOffer] {
	ctx, span := otel.Tracer("BookingClient").Start(ctx, "SearchHotels", trace.WithAttributes(
		attribute.String("destination", q.Destination),
		attribute.String("check_in", q.CheckIn),
		attribute.String("check_out", q.CheckOut),
	))
	defer span.End()
	l := c.logger.With(slog.String("method", "SearchHotels"), slog.String("destination", q.Destination))

	if q.Adults <= 0 {
		q.Adults = 1
	}

	destID, err := c.ResolveHotelDestination(ctx, q.Destination)
	if err != nil {
		if errors.Is(err, ErrLocationNotFound) {
			l.InfoContext(ctx, "No hotel destination found")
			span.SetStatus(codes.Ok, "destination not found")
			return types.NotFound[types.HotelOffer]()
		}
		l.ErrorContext(ctx, "Hotel destination lookup failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "destination lookup failed")
		return types.Failed[types.HotelOffer](fmt.Errorf("resolve destination: %w", err))
	}

	var list searchHotelsResponse
	err = c.get(ctx, pathSearchHotels, url.Values{
		"dest_type":      {"city"},
		"dest_id":        {destID},
		"search_type":    {"city"},
		"arrival_date":   {q.CheckIn},
		"departure_date": {q.CheckOut},
		"adults":         {strconv.Itoa(q.Adults)},
		"children":       {strconv.Itoa(q.Children)},
		"room_qty":       {"1"},
		"page_number":    {"1"},
		"price_min":      {"50"},
		"price_max":      {"2000"},
		"currency_code":  {"USD"},
	}, &list)
	if err != nil {
		l.ErrorContext(ctx, "Hotel search failed", slog.Any("error", err))
		span.RecordError(err)
		span.SetStatus(codes.Error, "hotel search failed")
		return types.Failed[types.HotelOffer](fmt.Errorf("search hotels: %w", err))
	}

	hotels := list.Data.Hotels
	if len(hotels) > maxHotelDetails {
		hotels = hotels[:maxHotelDetails]
	}
	if len(hotels) == 0 {
		l.InfoContext(ctx, "No hotels returned")
		span.SetStatus(codes.Ok, "no hotels")
		return types.NotFound[types.HotelOffer]()
	}

	type indexed struct {
		idx   int
		offer types.HotelOffer
	}
	var (
		mu      sync.Mutex
		offers  []indexed
		errs    []error
		g, gctx = errgroup.WithContext(ctx)
	)
	for i, h := range hotels {
		i, id := i, string(h.HotelID)
		g.Go(func() error {
			offer, err := c.HotelDetails(gctx, id, q)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				// One failed detail call drops that hotel only.
				l.WarnContext(gctx, "Hotel details failed", slog.String("hotel_id", id), slog.Any("error", err))
				errs = append(errs, err)
				return nil
			}
			if offer != nil {
				offers = append(offers, indexed{idx: i, offer: *offer})
			}
			return nil
		})
	}
	_ = g.Wait()

	if len(offers) == 0 {
		if len(errs) == len(hotels) {
			err := fmt.Errorf("hotel details: %w", errors.Join(errs...))
			span.RecordError(err)
			span.SetStatus(codes.Error, "all detail lookups failed")
			return types.Failed[types.HotelOffer](err)
		}
		span.SetStatus(codes.Ok, "no hotel details")
		return types.NotFound[types.HotelOffer]()
	}

	sort.Slice(offers, func(a, b int) bool { return offers[a].idx < offers[b].idx })
	result := make([]types.HotelOffer, 0, len(offers))
	for _, o := range offers {
		result = append(result, o.offer)
	}
	l.InfoContext(ctx, "Hotels found", slog.Int("count", len(result)))
	span.SetAttributes(attribute.Int("hotels.count", len(result)))
	span.SetStatus(codes.Ok, "")
	return types.Found(result)
}

// HotelDetails fetches and normalizes one hotel. A nil offer with a nil error
// means the provider had no data for it.
func (c *Client) HotelDetails(ctx context.Context, hotelID string, q HotelQuery) (*types.HotelOffer, error) {
	var resp hotelDetailsResponse
	err := c.get(ctx, pathHotelDetails, url.Values{
		"hotel_id":       {hotelID},
		"arrival_date":   {q.CheckIn},
		"departure_date": {q.CheckOut},
		"adults":         {strconv.Itoa(q.Adults)},
		"children":       {strconv.Itoa(q.Children)},
		"room_qty":       {"1"},
	}, &resp)
	if err != nil {
		return nil, err
	}
	if resp.Data == nil {
		return nil, nil
	}
	offer := normalizeHotel(resp.Data)
	return &offer, nil
}

func normalizeHotel(d *hotelDetails) types.HotelOffer {
	offer := types.HotelOffer{
		Name:     d.HotelName,
		Location: fmt.Sprintf("%s, %s, %s", d.Address, d.City, d.CountryTrans),
		Room:     "Standard Room",
		CheckIn:  d.ArrivalDate,
		CheckOut: d.DepartureDate,
		URL:      d.URL,
		Price:    types.HotelPrice{Currency: "EUR", LocalCurrency: "INR"},
	}
	if len(d.Rooms) > 0 {
		// JSON object order is lost on decode; the smallest key is the stable choice.
		keys := make([]string, 0, len(d.Rooms))
		for k := range d.Rooms {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		if name := d.Rooms[keys[0]].Name; name != "" {
			offer.Room = name
		}
	}
	if d.Breakdown != nil {
		if a := d.Breakdown.AllInclusive; a != nil {
			offer.Price.Amount = float64(a.Value)
			if a.Currency != "" {
				offer.Price.Currency = a.Currency
			}
		}
		if a := d.Breakdown.AllInclusiveLocal; a != nil {
			offer.Price.LocalAmount = float64(a.Value)
			if a.Currency != "" {
				offer.Price.LocalCurrency = a.Currency
			}
		}
	}
	return offer
}
