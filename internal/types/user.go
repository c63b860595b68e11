package types

// PublicUser is the subset of UserAuth returned by the auth endpoints.
type PublicUser struct {
	ID       string  `json:"id"`
	Email    string  `json:"email"`
	Name     string  `json:"name"`
	GoogleID *string `json:"googleId,omitempty"`
	ImageURL *string `json:"imageUrl,omitempty"`
}

func (u *UserAuth) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Email:    u.Email,
		Name:     u.Name,
		GoogleID: u.GoogleID,
		ImageURL: u.ImageURL,
	}
}
