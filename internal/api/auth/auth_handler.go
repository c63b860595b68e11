package auth

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/api"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

type AuthHandlerImpl struct {
	authService AuthService
	logger      *slog.Logger
}

func NewAuthHandlerImpl(authService AuthService, logger *slog.Logger) *AuthHandlerImpl {
	return &AuthHandlerImpl{
		authService: authService,
		logger:      logger,
	}
}

func authResponse(user *types.UserAuth, tokens *types.AuthTokens) api.AuthResponse {
	return api.AuthResponse{
		Success:      true,
		User:         user.Public(),
		AccessToken:  tokens.AccessToken,
		RefreshToken: tokens.RefreshToken,
	}
}

// Register godoc
// @Summary      Register
// @Description  Creates an email/password account and signs it in.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body api.RegisterRequest true "Account details"
// @Success      201 {object} api.AuthResponse
// @Failure      400 {object} api.Response "Invalid input or email already exists"
// @Failure      500 {object} api.Response
// @Router       /auth/register [post]
func (h *AuthHandlerImpl) Register(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Register"))

	var req api.RegisterRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid register request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, tokens, err := h.authService.Register(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			api.ErrorResponse(w, r, http.StatusBadRequest, "Email already exists")
			return
		}
		l.ErrorContext(ctx, "Registration failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusCreated, authResponse(user, tokens))
}

// Login godoc
// @Summary      Login
// @Description  Exchanges email and password for an access/refresh token pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body api.LoginRequest true "Credentials"
// @Success      200 {object} api.AuthResponse
// @Failure      400 {object} api.Response
// @Failure      401 {object} api.Response "Invalid email or password"
// @Failure      500 {object} api.Response
// @Router       /auth/login [post]
func (h *AuthHandlerImpl) Login(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Login"))

	var req api.LoginRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid login request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, tokens, err := h.authService.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, types.ErrUnauthenticated) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid email or password")
			return
		}
		l.ErrorContext(ctx, "Login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, authResponse(user, tokens))
}

// GoogleLogin godoc
// @Summary      Google sign-in
// @Description  Finds or creates the account for a Google identity obtained by the client. An email that already belongs to another account is rejected; use the OAuth flow to link it.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body api.GoogleAuthRequest true "Google identity"
// @Success      200 {object} api.AuthResponse
// @Failure      400 {object} api.Response
// @Failure      409 {object} api.Response
// @Failure      500 {object} api.Response
// @Router       /auth/google [post]
func (h *AuthHandlerImpl) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "GoogleLogin"))

	var req api.GoogleAuthRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		l.WarnContext(ctx, "Invalid google login request", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	h.completeProviderLogin(w, r, "google", goth.User{
		UserID:    req.GoogleID,
		Email:     req.Email,
		Name:      req.Name,
		AvatarURL: req.ImageURL,
	}, false)
}

// BeginOAuth godoc
// @Summary      Start OAuth flow
// @Tags         Auth
// @Param        provider path string true "Provider name, e.g. google"
// @Success      307
// @Router       /auth/oauth/{provider} [get]
func (h *AuthHandlerImpl) BeginOAuth(w http.ResponseWriter, r *http.Request) {
	provider := chi.URLParam(r, "provider")
	if _, err := goth.GetProvider(provider); err != nil {
		api.ErrorResponse(w, r, http.StatusNotFound, "Unknown OAuth provider")
		return
	}
	q := r.URL.Query()
	q.Set("provider", provider)
	r.URL.RawQuery = q.Encode()
	gothic.BeginAuthHandler(w, r)
}

// OAuthCallback godoc
// @Summary      OAuth callback
// @Tags         Auth
// @Produce      json
// @Param        provider path string true "Provider name, e.g. google"
// @Success      200 {object} api.AuthResponse
// @Failure      401 {object} api.Response
// @Router       /auth/oauth/{provider}/callback [get]
func (h *AuthHandlerImpl) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "OAuthCallback"))

	provider := chi.URLParam(r, "provider")
	q := r.URL.Query()
	q.Set("provider", provider)
	r.URL.RawQuery = q.Encode()

	gothUser, err := gothic.CompleteUserAuth(w, r)
	if err != nil {
		l.WarnContext(ctx, "OAuth exchange failed", slog.String("provider", provider), slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusUnauthorized, "OAuth authentication failed")
		return
	}
	h.completeProviderLogin(w, r, provider, gothUser, true)
}

func (h *AuthHandlerImpl) completeProviderLogin(w http.ResponseWriter, r *http.Request, provider string, providerUser goth.User, verified bool) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "completeProviderLogin"), slog.String("provider", provider))

	user, err := h.authService.GetOrCreateUserFromProvider(ctx, provider, providerUser, verified)
	if err != nil {
		if errors.Is(err, types.ErrBadRequest) {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
		if errors.Is(err, types.ErrConflict) {
			api.ErrorResponse(w, r, http.StatusConflict, "Email already registered")
			return
		}
		l.ErrorContext(ctx, "Provider login failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	tokens, err := h.authService.GenerateTokens(ctx, user)
	if err != nil {
		l.ErrorContext(ctx, "Failed to issue tokens", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, authResponse(user, tokens))
}

// RefreshToken godoc
// @Summary      Refresh tokens
// @Description  Rotates a refresh token into a new access/refresh pair.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body api.RefreshTokenRequest true "Refresh token"
// @Success      200 {object} api.AuthResponse
// @Failure      400 {object} api.Response
// @Failure      401 {object} api.Response
// @Router       /auth/refresh [post]
func (h *AuthHandlerImpl) RefreshToken(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "RefreshToken"))

	var req api.RefreshTokenRequest
	if err := api.DecodeAndValidate(w, r, &req); err != nil {
		api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
		return
	}

	user, tokens, err := h.authService.RefreshSession(ctx, req.RefreshToken)
	if err != nil {
		if errors.Is(err, types.ErrUnauthenticated) {
			api.ErrorResponse(w, r, http.StatusUnauthorized, "Invalid or expired refresh token")
			return
		}
		l.ErrorContext(ctx, "Token refresh failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error")
		return
	}

	api.WriteJSONResponse(w, r, http.StatusOK, authResponse(user, tokens))
}

// Logout godoc
// @Summary      Logout
// @Description  Revokes the presented access token and, if given, the refresh token.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        body body api.LogoutRequest false "Refresh token to revoke"
// @Success      200 {object} api.Response
// @Failure      401 {object} api.Response
// @Security     BearerAuth
// @Router       /auth/logout [post]
func (h *AuthHandlerImpl) Logout(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Logout"))

	claims, ok := GetClaimsFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	var req api.LogoutRequest
	if r.ContentLength > 0 {
		if err := api.DecodeJSONBody(w, r, &req); err != nil {
			api.ErrorResponse(w, r, http.StatusBadRequest, err.Error())
			return
		}
	}

	if err := h.authService.Logout(ctx, claims, req.RefreshToken); err != nil {
		l.ErrorContext(ctx, "Logout failed", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Failed to logout")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, api.Response{Success: true})
}

// Me godoc
// @Summary      Current user
// @Tags         Auth
// @Produce      json
// @Success      200 {object} types.PublicUser
// @Failure      401 {object} api.Response
// @Failure      404 {object} api.Response
// @Security     BearerAuth
// @Router       /auth/me [get]
func (h *AuthHandlerImpl) Me(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	l := h.logger.With(slog.String("handler", "Me"))

	userID, ok := GetUserIDFromContext(ctx)
	if !ok {
		api.ErrorResponse(w, r, http.StatusUnauthorized, "Authentication required")
		return
	}

	user, err := h.authService.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			api.ErrorResponse(w, r, http.StatusNotFound, "User not found")
			return
		}
		l.ErrorContext(ctx, "Failed to load user", slog.Any("error", err))
		api.ErrorResponse(w, r, http.StatusInternalServerError, "Server error")
		return
	}
	api.WriteJSONResponse(w, r, http.StatusOK, user.Public())
}
