package places

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"googlemaps.github.io/maps"

	"github.com/FACorreiaa/go-trip-planner-ai/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner-ai/config"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

var (
	ErrLocationNotFound = errors.New("places: location not found")
	// ErrPlaceUnavailable is returned when a details call comes back without a place.
	ErrPlaceUnavailable = errors.New("places: place details unavailable")
	ErrNotConfigured    = errors.New("places: maps api key not configured")
)

// Place is the subset of a place result the aggregators read.
type Place struct {
	PlaceID          string
	Name             string
	Rating           float64
	UserRatingsTotal int
	ReviewCount      int
	FormattedAddress string
	Vicinity         string
	Website          string
	Location         types.GeoPoint
	OpenNow          *bool
}

// Client wraps the Google Maps web service client with tracing and metrics.
type Client struct {
	maps   *maps.Client
	logger *slog.Logger
}

// NewClient builds the Maps client. Without an API key every call fails with
// ErrNotConfigured instead of failing startup.
func NewClient(cfg config.MapsConfig, logger *slog.Logger) *Client {
	if cfg.APIKey == "" {
		logger.Warn("maps.apiKey is empty; activity and restaurant searches will fail until it is set")
		return &Client{logger: logger}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	opts := []maps.ClientOption{
		maps.WithAPIKey(cfg.APIKey),
		maps.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if base := strings.TrimRight(cfg.BaseURL, "/"); base != "" {
		opts = append(opts, maps.WithBaseURL(base))
	}
	mc, err := maps.NewClient(opts...)
	if err != nil {
		logger.Error("Failed to build maps client", slog.Any("error", err))
		return &Client{logger: logger}
	}
	return &Client{maps: mc, logger: logger}
}

// observe traces one Maps call and records provider metrics for it.
func (c *Client) observe(ctx context.Context, endpoint string, call func(ctx context.Context) error) error {
	ctx, span := otel.Tracer("PlacesClient").Start(ctx, "Maps."+endpoint, trace.WithAttributes(
		attribute.String("places.endpoint", endpoint),
	))
	defer span.End()

	start := time.Now()
	err := ErrNotConfigured
	if c.maps != nil {
		err = call(ctx)
	}

	status := "ok"
	if err != nil && !errors.Is(err, ErrLocationNotFound) && !errors.Is(err, ErrPlaceUnavailable) {
		status = "error"
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	attrs := metric.WithAttributes(
		attribute.String("provider", "google_maps"),
		attribute.String("endpoint", endpoint),
		attribute.String("status", status),
	)
	m := metrics.Get()
	m.ProviderRequestsTotal.Add(ctx, 1, attrs)
	m.ProviderDuration.Record(ctx, time.Since(start).Seconds(), attrs)

	if err != nil && status == "error" && !errors.Is(err, ErrNotConfigured) {
		return fmt.Errorf("places %s: %w", endpoint, err)
	}
	return err
}

// Geocode returns the coordinates of the first result for address.
func (c *Client) Geocode(ctx context.Context, address string) (types.GeoPoint, error) {
	var point types.GeoPoint
	err := c.observe(ctx, "geocode", func(ctx context.Context) error {
		results, err := c.maps.Geocode(ctx, &maps.GeocodingRequest{Address: address})
		if err != nil {
			return err
		}
		if len(results) == 0 {
			return fmt.Errorf("geocode %q: %w", address, ErrLocationNotFound)
		}
		point = geoPoint(results[0].Geometry.Location)
		return nil
	})
	return point, err
}

// NearbySearch lists places of placeType within radius meters of p. A
// ZERO_RESULTS answer is an empty slice.
func (c *Client) NearbySearch(ctx context.Context, p types.GeoPoint, radius int, placeType string) ([]Place, error) {
	var places []Place
	err := c.observe(ctx, "nearbysearch", func(ctx context.Context) error {
		resp, err := c.maps.NearbySearch(ctx, &maps.NearbySearchRequest{
			Location: &maps.LatLng{Lat: p.Lat, Lng: p.Lng},
			Radius:   uint(radius),
			Type:     maps.PlaceType(placeType),
		})
		if err != nil {
			return err
		}
		places = make([]Place, 0, len(resp.Results))
		for _, r := range resp.Results {
			pl := Place{
				PlaceID:          r.PlaceID,
				Name:             r.Name,
				Rating:           rating(r.Rating),
				UserRatingsTotal: r.UserRatingsTotal,
				FormattedAddress: r.FormattedAddress,
				Vicinity:         r.Vicinity,
				Location:         geoPoint(r.Geometry.Location),
			}
			if r.OpeningHours != nil {
				pl.OpenNow = r.OpeningHours.OpenNow
			}
			places = append(places, pl)
		}
		return nil
	})
	return places, err
}

// PlaceDetails fetches the requested fields of one place.
func (c *Client) PlaceDetails(ctx context.Context, placeID string, fields []string) (*Place, error) {
	var place *Place
	err := c.observe(ctx, "details", func(ctx context.Context) error {
		mask := make([]maps.PlaceDetailsFieldMask, 0, len(fields))
		for _, f := range fields {
			mask = append(mask, maps.PlaceDetailsFieldMask(f))
		}
		d, err := c.maps.PlaceDetails(ctx, &maps.PlaceDetailsRequest{PlaceID: placeID, Fields: mask})
		if err != nil {
			return err
		}
		if d.PlaceID == "" && d.Name == "" {
			return fmt.Errorf("place %s: %w", placeID, ErrPlaceUnavailable)
		}
		place = &Place{
			PlaceID:          placeID,
			Name:             d.Name,
			Rating:           rating(d.Rating),
			UserRatingsTotal: d.UserRatingsTotal,
			ReviewCount:      len(d.Reviews),
			FormattedAddress: d.FormattedAddress,
			Vicinity:         d.Vicinity,
			Website:          d.Website,
			Location:         geoPoint(d.Geometry.Location),
		}
		if d.OpeningHours != nil {
			place.OpenNow = d.OpeningHours.OpenNow
		}
		return nil
	})
	return place, err
}

func geoPoint(l maps.LatLng) types.GeoPoint {
	return types.GeoPoint{Lat: l.Lat, Lng: l.Lng}
}

// rating undoes float32 widening noise; Maps ratings have one decimal.
func rating(r float32) float64 {
	return math.Round(float64(r)*10) / 10
}
