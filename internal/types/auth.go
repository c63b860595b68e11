package types

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// UserAuth represents the core user entity in the domain.
type UserAuth struct {
	ID        string    `json:"id" example:"d290f1ee-6c54-4b01-90e6-d701748f0851"` // Unique identifier (UUID).
	Name      string    `json:"name" example:"Jane Doe"`                           // Display name.
	Email     string    `json:"email" example:"jane.doe@example.com"`              // Unique email address used for login.
	Password  string    `json:"-"`                                                 // Hashed password (never exposed).
	GoogleID  *string   `json:"google_id,omitempty"`                               // Set for accounts created through Google sign-in.
	ImageURL  *string   `json:"image_url,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Claims are the JWT claims issued for access tokens.
type Claims struct {
	UserID string `json:"uid"`
	Email  string `json:"eml"`
	Name   string `json:"usr,omitempty"`
	jwt.RegisteredClaims
}

// AuthTokens is the pair handed back to clients after login, register or refresh.
type AuthTokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
}
