package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"

	"github.com/samber/lo"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

// ErrLocationNotFound means the provider answered but nothing matched the query.
var ErrLocationNotFound = errors.New("booking: location not found")

const (
	pathHotelDestination  = "/api/v1/hotels/searchDestination"
	pathSearchHotels      = "/api/v1/hotels/searchHotels"
	pathHotelDetails      = "/api/v1/hotels/getHotelDetails"
	pathFlightDestination = "/api/v1/flights/searchDestination"
	pathSearchAirports    = "/api/v1/flights/searchAirports"
	pathSearchLocations   = "/api/v1/flights/searchLocations"
	pathMinPrice          = "/api/v1/flights/getMinPrice"
	pathFlightDetails     = "/api/v1/flights/getFlightDetails"
)

type hotelDestination struct {
	DestID      flexString `json:"dest_id"`
	DestType    string     `json:"dest_type"`
	Type        string     `json:"type"`
	Name        string     `json:"name"`
	AirportCode string     `json:"airport_code"`
}

type flightDestination struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Name string `json:"name"`
}

type airportEntry struct {
	IataCode    string `json:"iata_code"`
	AirportCode string `json:"airport_code"`
	Code        string `json:"code"`
	Type        string `json:"type"`
	IsMajor     bool   `json:"is_major"`
}

type listResponse[T any] struct {
	Data []T `json:"data"`
}

// ResolveHotelDestination returns the dest_id of the first hotel destination
// matching query.
func (c *Client) ResolveHotelDestination(ctx context.Context, query string) (string, error) {
	var resp listResponse[hotelDestination]
	if err := c.get(ctx, pathHotelDestination, url.Values{"query": {query}}, &resp); err != nil {
		return "", err
	}
	if len(resp.Data) == 0 || resp.Data[0].DestID == "" {
		return "", fmt.Errorf("hotel destination %q: %w", query, ErrLocationNotFound)
	}
	return string(resp.Data[0].DestID), nil
}

// ResolveFlightLocation returns the first airport or city matching query.
func (c *Client) ResolveFlightLocation(ctx context.Context, query string) (*types.FlightLocation, error) {
	var resp listResponse[flightDestination]
	if err := c.get(ctx, pathFlightDestination, url.Values{"query": {query}}, &resp); err != nil {
		return nil, err
	}
	loc, ok := lo.Find(resp.Data, func(d flightDestination) bool {
		return d.Type == "AIRPORT" || d.Type == "CITY" || d.ID != ""
	})
	if !ok || loc.ID == "" {
		return nil, fmt.Errorf("flight location %q: %w", query, ErrLocationNotFound)
	}
	name := loc.Name
	if name == "" {
		name = query
	}
	return &types.FlightLocation{ID: loc.ID, Type: loc.Type, Name: name}, nil
}

// ResolveAirportCode tries the hotel destination search, then the airport
// search, then the generic location search. The first code found wins; an
// upstream error stops the chain.
func (c *Client) ResolveAirportCode(ctx context.Context, city string) (string, error) {
	l := c.logger.With(slog.String("method", "ResolveAirportCode"), slog.String("city", city))
	q := url.Values{"query": {city}}

	var dests listResponse[hotelDestination]
	if err := c.get(ctx, pathHotelDestination, q, &dests); err != nil {
		return "", err
	}
	if d, ok := lo.Find(dests.Data, func(d hotelDestination) bool {
		return d.AirportCode != "" || d.Type == "AIRPORT" || d.DestType == "AIRPORT"
	}); ok && d.AirportCode != "" {
		l.DebugContext(ctx, "Airport code found in destination search", slog.String("code", d.AirportCode))
		return d.AirportCode, nil
	}

	var airports listResponse[airportEntry]
	if err := c.get(ctx, pathSearchAirports, q, &airports); err != nil {
		return "", err
	}
	if len(airports.Data) > 0 {
		main, ok := lo.Find(airports.Data, func(a airportEntry) bool {
			return a.IsMajor || a.Type == "AIRPORT" || a.IataCode != ""
		})
		if !ok {
			main = airports.Data[0]
		}
		if main.IataCode != "" {
			l.DebugContext(ctx, "Airport code found in airport search", slog.String("code", main.IataCode))
			return main.IataCode, nil
		}
	}

	var locations listResponse[airportEntry]
	if err := c.get(ctx, pathSearchLocations, q, &locations); err != nil {
		return "", err
	}
	if loc, ok := lo.Find(locations.Data, func(a airportEntry) bool {
		return a.IataCode != "" || a.AirportCode != "" || a.Code != ""
	}); ok {
		code := lo.CoalesceOrEmpty(loc.IataCode, loc.AirportCode, loc.Code)
		l.DebugContext(ctx, "Airport code found in location search", slog.String("code", code))
		return code, nil
	}

	l.InfoContext(ctx, "No airport code found")
	return "", fmt.Errorf("airport code %q: %w", city, ErrLocationNotFound)
}
