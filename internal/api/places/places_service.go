package places

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

const (
	activityRadius   = 5000
	restaurantRadius = 1500
)

var (
	activityFields   = []string{"name", "rating", "formatted_address", "geometry", "reviews", "opening_hours", "website"}
	restaurantFields = []string{"name", "rating", "formatted_address", "geometry", "opening_hours", "user_ratings_total"}
)

// Maps is the Google Maps surface the aggregators need.
type Maps interface {
	Geocode(ctx context.Context, address string) (types.GeoPoint, error)
	NearbySearch(ctx context.Context, p types.GeoPoint, radius int, placeType string) ([]Place, error)
	PlaceDetails(ctx context.Context, placeID string, fields []string) (*Place, error)
}

var _ Maps = (*Client)(nil)

// Service aggregates activities and restaurants around a destination.
type Service interface {
	SearchActivities(ctx context.Context, location string) (types.SearchResult[types.Activity], types.ActivitySearch)
	SearchRestaurants(ctx context.Context, location string) types.SearchResult[types.Restaurant]
}

type ServiceImpl struct {
	maps   Maps
	tz     TimezoneFinder
	logger *slog.Logger
}

var _ Service = (*ServiceImpl)(nil)

func NewServiceImpl(maps Maps, tz TimezoneFinder, logger *slog.Logger) *ServiceImpl {
	return &ServiceImpl{maps: maps, tz: tz, logger: logger}
}

// nearbyDetails geocodes location, runs a nearby search and expands every
// hit with a details call. A hit whose details come back empty is dropped;
// any other details failure fails the whole search.
func (s *ServiceImpl) nearbyDetails(ctx context.Context, location string, radius int, placeType string, fields []string) (types.GeoPoint, []Place, error) {
	point, err := s.maps.Geocode(ctx, location)
	if err != nil {
		return types.GeoPoint{}, nil, err
	}

	hits, err := s.maps.NearbySearch(ctx, point, radius, placeType)
	if err != nil {
		return point, nil, err
	}

	details := make([]*Place, len(hits))
	g, gctx := errgroup.WithContext(ctx)
	for i, hit := range hits {
		g.Go(func() error {
			d, err := s.maps.PlaceDetails(gctx, hit.PlaceID, fields)
			if errors.Is(err, ErrPlaceUnavailable) {
				s.logger.WarnContext(gctx, "Dropping place without details", slog.String("place_id", hit.PlaceID))
				return nil
			}
			if err != nil {
				return fmt.Errorf("details %s: %w", hit.PlaceID, err)
			}
			d.PlaceID = hit.PlaceID
			details[i] = d
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return point, nil, err
	}
	out := make([]Place, 0, len(details))
	for _, d := range details {
		if d != nil {
			out = append(out, *d)
		}
	}
	return point, out, nil
}

func tagged[T any](ctx context.Context, l *slog.Logger, span trace.Span, err error) types.SearchResult[T] {
	if errors.Is(err, ErrLocationNotFound) {
		l.InfoContext(ctx, "Nothing found", slog.Any("reason", err))
		span.SetStatus(codes.Ok, "not found")
		return types.NotFound[T]()
	}
	l.ErrorContext(ctx, "Places search failed", slog.Any("error", err))
	span.RecordError(err)
	span.SetStatus(codes.Error, "places search failed")
	return types.Failed[T](err)
}

// SearchActivities finds tourist attractions around location and builds the
// sample packages from them.
func (s *ServiceImpl) SearchActivities(ctx context.Context, location string) (types.SearchResult[types.Activity], types.ActivitySearch) {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "SearchActivities", trace.WithAttributes(
		attribute.String("location", location),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "SearchActivities"), slog.String("location", location))

	point, places, err := s.nearbyDetails(ctx, location, activityRadius, "tourist_attraction", activityFields)
	if err != nil {
		return tagged[types.Activity](ctx, l, span, err), types.ActivitySearch{Packages: []types.ActivityPackage{}}
	}

	activities := make([]types.Activity, 0, len(places))
	for _, p := range places {
		activities = append(activities, types.Activity{
			ID:          p.PlaceID,
			Name:        p.Name,
			Rating:      p.Rating,
			ReviewCount: p.ReviewCount,
			Address:     p.FormattedAddress,
			Location:    p.Location,
			Website:     p.Website,
			BookingLink: "https://www.google.com/maps/place/?q=place_id:" + p.PlaceID,
		})
	}

	extra := types.ActivitySearch{
		Location: point,
		Packages: SamplePackages(activities, location),
	}
	if s.tz != nil {
		extra.Timezone = s.tz.GetTimezoneName(point.Lng, point.Lat)
	}

	span.SetAttributes(attribute.Int("activities.count", len(activities)))
	span.SetStatus(codes.Ok, "")
	if len(activities) == 0 {
		return types.NotFound[types.Activity](), extra
	}
	l.InfoContext(ctx, "Activities found", slog.Int("count", len(activities)), slog.String("timezone", extra.Timezone))
	return types.Found(activities), extra
}

// SamplePackages slices activities into three canned tours.
func SamplePackages(activities []types.Activity, location string) []types.ActivityPackage {
	names := func(from, to int) []string {
		out := []string{}
		for i := from; i < to && i < len(activities); i++ {
			out = append(out, activities[i].Name)
		}
		return out
	}
	return []types.ActivityPackage{
		{
			ID:          "pkg1",
			Name:        location + " Highlights Tour",
			Description: "Experience the best of what the city has to offer with our comprehensive highlights tour.",
			Duration:    "2 days",
			Price:       299,
			Activities:  names(0, 3),
		},
		{
			ID:          "pkg2",
			Name:        location + " Cultural Experience",
			Description: "Immerse yourself in the local culture with visits to historical sites and cultural landmarks.",
			Duration:    "1 day",
			Price:       199,
			Activities:  names(3, 6),
		},
		{
			ID:          "pkg3",
			Name:        location + " Adventure Package",
			Description: "Get your adrenaline pumping with this action-packed adventure package.",
			Duration:    "3 days",
			Price:       499,
			Activities:  names(6, 9),
		},
	}
}

// SearchRestaurants returns restaurants near location, best rated first.
func (s *ServiceImpl) SearchRestaurants(ctx context.Context, location string) types.SearchResult[types.Restaurant] {
	ctx, span := otel.Tracer("PlacesService").Start(ctx, "SearchRestaurants", trace.WithAttributes(
		attribute.String("location", location),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "SearchRestaurants"), slog.String("location", location))

	_, places, err := s.nearbyDetails(ctx, location, restaurantRadius, "restaurant", restaurantFields)
	if err != nil {
		return tagged[types.Restaurant](ctx, l, span, err)
	}

	restaurants := make([]types.Restaurant, 0, len(places))
	for _, p := range places {
		restaurants = append(restaurants, types.Restaurant{
			ID:               p.PlaceID,
			Name:             p.Name,
			Rating:           p.Rating,
			UserRatingsTotal: p.UserRatingsTotal,
			Address:          p.FormattedAddress,
			Location:         p.Location,
			OpenNow:          p.OpenNow,
		})
	}
	SortRestaurants(restaurants)

	span.SetAttributes(attribute.Int("restaurants.count", len(restaurants)))
	span.SetStatus(codes.Ok, "")
	if len(restaurants) == 0 {
		return types.NotFound[types.Restaurant]()
	}
	l.InfoContext(ctx, "Restaurants found", slog.Int("count", len(restaurants)))
	return types.Found(restaurants)
}

// SortRestaurants orders by rating then review count, both descending.
func SortRestaurants(rs []types.Restaurant) {
	sort.SliceStable(rs, func(i, j int) bool {
		if rs[i].Rating != rs[j].Rating {
			return rs[i].Rating > rs[j].Rating
		}
		return rs[i].UserRatingsTotal > rs[j].UserRatingsTotal
	})
}
