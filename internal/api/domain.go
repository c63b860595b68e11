package api

import (
	"net/http"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

// LoginRequest represents the expected JSON body for user login.
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email" example:"user@example.com"`
	Password string `json:"password" validate:"required" example:"password123"`
}

// RegisterRequest represents the expected JSON body for user registration.
type RegisterRequest struct {
	Name     string `json:"name" validate:"required" example:"Jane Doe"`
	Email    string `json:"email" validate:"required,email" example:"newuser@example.com"`
	Password string `json:"password" validate:"required,min=6" example:"Str0ngP@ss!"`
}

// GoogleAuthRequest is sent by clients that completed Google sign-in themselves.
type GoogleAuthRequest struct {
	GoogleID string `json:"googleId" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl"`
}

// RefreshTokenRequest represents the expected JSON body for refreshing tokens.
type RefreshTokenRequest struct {
	RefreshToken string `json:"refresh_token" validate:"required" example:"4f1trt8s..."`
}

// LogoutRequest optionally carries the refresh token to revoke.
type LogoutRequest struct {
	RefreshToken string `json:"refresh_token,omitempty"`
}

// AuthResponse is returned by register, login, google sign-in and refresh.
type AuthResponse struct {
	Success      bool             `json:"success" example:"true"`
	User         types.PublicUser `json:"user"`
	AccessToken  string           `json:"access_token" example:"eyJhbGciOiJI..."`
	RefreshToken string           `json:"refresh_token" example:"9a8b7c..."`
}

// Response represents a generic API response for success or error messages.
type Response struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message,omitempty" example:"Operation successful"`
	Error   string `json:"error,omitempty" example:"Resource not found"`
}

// SearchResponse is the body of every /search endpoint.
type SearchResponse struct {
	Status types.SearchStatus `json:"status" example:"found"`
	Items  any                `json:"items"`
	Error  string             `json:"error,omitempty"`
}

// NewSearchResponse converts an aggregator result into its JSON body.
func NewSearchResponse[T any](r types.SearchResult[T]) SearchResponse {
	resp := SearchResponse{Status: r.Status, Items: r.OrEmpty()}
	if r.Err != nil {
		resp.Error = r.Err.Error()
	}
	return resp
}

// WriteSearchResult writes r with 502 when the search failed upstream and 200
// otherwise.
func WriteSearchResult[T any](w http.ResponseWriter, r *http.Request, res types.SearchResult[T]) {
	status := http.StatusOK
	if res.Status == types.SearchFailed {
		status = http.StatusBadGateway
	}
	WriteJSONResponse(w, r, status, NewSearchResponse(res))
}
