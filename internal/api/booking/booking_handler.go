package booking

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/api"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

// Service is the Booking.com surface used by the HTTP layer and the plan pipeline.
type Service interface {
	SearchHotels(ctx context.Context, q HotelQuery) types.SearchResult[types.HotelOffer]
	SearchFlights(ctx context.Context, q FlightQuery) types.SearchResult[types.FlightOffer]
	FlightDetails(ctx context.Context, token string) (*types.FlightOffer, error)
	ResolveAirportCode(ctx context.Context, city string) (string, error)
}

var _ Service = (*Client)(nil)

type HandlerImpl struct {
	service Service
	logger  *slog.Logger
}

func NewHandlerImpl(service Service, logger *slog.Logger) *HandlerImpl {
	return &HandlerImpl{service: service, logger: logger}
}

func travelers(r *http.Request) (adults, children int, err error) {
	if adults, err = api.QueryInt(r, "adults", 1); err != nil {
		return 0, 0, err
	}
	if adults == 0 {
		adults = 1
	}
	if children, err = api.QueryInt(r, "children", 0); err != nil {
		return 0, 0, err
	}
	return adults, children, nil
}

// SearchHotels godoc
// @Summary      Search hotels
// @Description  Resolves the destination and returns up to three priced hotel offers.
// @Tags         Search
// @Produce      json
// @Param        destination query string true  "City name"
// @Param        checkIn     query string true  "Check-in date (YYYY-MM-DD)"
// @Param        checkOut    query string true  "Check-out date (YYYY-MM-DD)"
// @Param        adults      query int    false "Adults" default(1)
// @Param        children    query int    false "Children" default(0)
// @Success      200 {object} api.SearchResponse
// @Failure      400 {object} api.Response
// @Failure      502 {object} api.SearchResponse "Provider failure"
// @Security     BearerAuth
// @Router       /search/hotels [get]
func (h *HandlerImpl) SearchHotels(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "SearchHotels"))
	q := r.URL.Query()

	query := HotelQuery{
		Destination: q.Get("destination"),
		CheckIn:     q.Get("checkIn"),
		CheckOut:    q.Get("checkOut"),
	}
	if query.Destination == "" || query.CheckIn == "" || query.CheckOut == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "destination, checkIn and checkOut are required")
		return
	}
	var err error
	if query.Adults, query.Children, err = travelers(r); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res := h.service.SearchHotels(r.Context(), query)
	l.DebugContext(r.Context(), "Hotel search done", slog.String("status", string(res.Status)))
	api.WriteSearchResult(w, r, res)
}

// SearchFlights godoc
// @Summary      Search flights
// @Description  Returns the cheapest same-day economy fare between two places.
// @Tags         Search
// @Produce      json
// @Param        origin      query string true  "Origin city or airport"
// @Param        destination query string true  "Destination city or airport"
// @Param        departDate  query string true  "Departure date"
// @Param        returnDate  query string false "Return date"
// @Param        adults      query int    false "Adults" default(1)
// @Param        children    query int    false "Children" default(0)
// @Success      200 {object} api.SearchResponse
// @Failure      400 {object} api.Response
// @Failure      502 {object} api.SearchResponse "Provider failure"
// @Security     BearerAuth
// @Router       /search/flights [get]
func (h *HandlerImpl) SearchFlights(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "SearchFlights"))
	q := r.URL.Query()

	query := FlightQuery{
		Origin:      q.Get("origin"),
		Destination: q.Get("destination"),
		DepartDate:  q.Get("departDate"),
		ReturnDate:  q.Get("returnDate"),
	}
	if query.Origin == "" || query.Destination == "" || query.DepartDate == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "origin, destination and departDate are required")
		return
	}
	var err error
	if query.Adults, query.Children, err = travelers(r); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	res := h.service.SearchFlights(r.Context(), query)
	l.DebugContext(r.Context(), "Flight search done", slog.String("status", string(res.Status)))
	api.WriteSearchResult(w, r, res)
}

// FlightDetails godoc
// @Summary      Flight details
// @Description  Expands a flight offer token into its full segment list. A token the provider no longer knows is reported as not_found.
// @Tags         Search
// @Produce      json
// @Param        token query string true "Offer token"
// @Success      200 {object} api.SearchResponse
// @Failure      400 {object} api.Response
// @Failure      502 {object} api.SearchResponse "Provider failure"
// @Security     BearerAuth
// @Router       /search/flights/details [get]
func (h *HandlerImpl) FlightDetails(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "FlightDetails"))
	token := r.URL.Query().Get("token")
	if token == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "token is required")
		return
	}

	offer, err := h.service.FlightDetails(r.Context(), token)
	switch {
	case IsStatus(err, http.StatusNotFound):
		l.InfoContext(r.Context(), "Flight offer token unknown upstream")
		api.WriteSearchResult(w, r, types.NotFound[types.FlightOffer]())
	case err != nil:
		l.ErrorContext(r.Context(), "Flight details failed", slog.Any("error", err))
		api.WriteSearchResult(w, r, types.Failed[types.FlightOffer](err))
	case offer == nil:
		api.WriteSearchResult(w, r, types.NotFound[types.FlightOffer]())
	default:
		api.WriteSearchResult(w, r, types.Found([]types.FlightOffer{*offer}))
	}
}

// AirportCode godoc
// @Summary      Airport code
// @Description  Finds the IATA code of the main airport serving a city.
// @Tags         Search
// @Produce      json
// @Param        city query string true "City name"
// @Success      200 {object} api.SearchResponse
// @Failure      400 {object} api.Response
// @Failure      502 {object} api.SearchResponse "Provider failure"
// @Security     BearerAuth
// @Router       /search/airport-code [get]
func (h *HandlerImpl) AirportCode(w http.ResponseWriter, r *http.Request) {
	l := h.logger.With(slog.String("handler", "AirportCode"))
	city := r.URL.Query().Get("city")
	if city == "" {
		api.ErrorResponse(w, r, http.StatusBadRequest, "city is required")
		return
	}

	code, err := h.service.ResolveAirportCode(r.Context(), city)
	switch {
	case errors.Is(err, ErrLocationNotFound):
		api.WriteSearchResult(w, r, types.NotFound[string]())
	case err != nil:
		l.ErrorContext(r.Context(), "Airport code lookup failed", slog.Any("error", err))
		api.WriteSearchResult(w, r, types.Failed[string](err))
	default:
		api.WriteSearchResult(w, r, types.Found([]string{code}))
	}
}
