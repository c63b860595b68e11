package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/markbates/goth"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-trip-planner-ai/app/observability/metrics"
	"github.com/FACorreiaa/go-trip-planner-ai/config"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

var _ AuthService = (*AuthServiceImpl)(nil)

type AuthService interface {
	Register(ctx context.Context, name, email, password string) (*types.UserAuth, *types.AuthTokens, error)
	Login(ctx context.Context, email, password string) (*types.UserAuth, *types.AuthTokens, error)
	// GetOrCreateUserFromProvider finds the account for a third-party identity
	// and creates it otherwise. linkByEmail attaches the identity to an existing
	// account with the same email; pass it only for provider-verified identities.
	// Without it an email that is already registered yields ErrConflict.
	GetOrCreateUserFromProvider(ctx context.Context, provider string, providerUser goth.User, linkByEmail bool) (*types.UserAuth, error)
	GenerateTokens(ctx context.Context, user *types.UserAuth) (*types.AuthTokens, error)
	RefreshSession(ctx context.Context, refreshToken string) (*types.UserAuth, *types.AuthTokens, error)
	// Logout denies the access token identified by claims and revokes
	// refreshToken when one is given.
	Logout(ctx context.Context, claims *types.Claims, refreshToken string) error
	GetUserByID(ctx context.Context, userID string) (*types.UserAuth, error)
}

type AuthServiceImpl struct {
	logger   *slog.Logger
	repo     AuthRepo
	cfg      config.JWTConfig
	denylist *TokenDenylist
}

func NewAuthService(repo AuthRepo, cfg *config.Config, denylist *TokenDenylist, logger *slog.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		logger:   logger,
		repo:     repo,
		cfg:      cfg.JWT,
		denylist: denylist,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, name, email, password string) (*types.UserAuth, *types.AuthTokens, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Register")
	defer span.End()
	l := s.logger.With(slog.String("method", "Register"), slog.String("email", email))

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "hash failed")
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	userID, err := s.repo.Register(ctx, name, strings.ToLower(strings.TrimSpace(email)), string(hashed))
	if err != nil {
		if errors.Is(err, types.ErrConflict) {
			l.WarnContext(ctx, "Registration attempt with existing email")
		} else {
			l.ErrorContext(ctx, "Failed to register user", slog.Any("error", err))
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "register failed")
		return nil, nil, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "reload failed")
		return nil, nil, fmt.Errorf("failed to load new user: %w", err)
	}

	tokens, err := s.GenerateTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}

	metrics.Get().RegisterRequestsTotal.Add(ctx, 1)
	l.InfoContext(ctx, "User registered", slog.String("userID", userID))
	span.SetStatus(codes.Ok, "")
	return user, tokens, nil
}

func (s *AuthServiceImpl) Login(ctx context.Context, email, password string) (*types.UserAuth, *types.AuthTokens, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "Login")
	defer span.End()
	l := s.logger.With(slog.String("method", "Login"))

	user, err := s.repo.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			l.WarnContext(ctx, "Login attempt for unknown email")
			span.SetStatus(codes.Error, "unknown email")
			return nil, nil, types.ErrUnauthenticated
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, nil, fmt.Errorf("failed to look up user: %w", err)
	}

	// Accounts created through Google have no password.
	if user.Password == "" {
		span.SetStatus(codes.Error, "no password")
		return nil, nil, types.ErrUnauthenticated
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		l.WarnContext(ctx, "Password mismatch", slog.String("userID", user.ID))
		span.SetStatus(codes.Error, "password mismatch")
		return nil, nil, types.ErrUnauthenticated
	}

	tokens, err := s.GenerateTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	span.SetAttributes(attribute.String("user.id", user.ID))
	span.SetStatus(codes.Ok, "")
	return user, tokens, nil
}

func (s *AuthServiceImpl) GetOrCreateUserFromProvider(ctx context.Context, provider string, providerUser goth.User, linkByEmail bool) (*types.UserAuth, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "GetOrCreateUserFromProvider", trace.WithAttributes(
		attribute.String("auth.provider", provider),
		attribute.Bool("auth.link_by_email", linkByEmail),
	))
	defer span.End()
	l := s.logger.With(slog.String("method", "GetOrCreateUserFromProvider"), slog.String("provider", provider))

	if providerUser.UserID == "" || providerUser.Email == "" {
		span.SetStatus(codes.Error, "incomplete identity")
		return nil, fmt.Errorf("provider identity needs id and email: %w", types.ErrBadRequest)
	}
	providerUser.Provider = provider
	providerUser.Email = strings.ToLower(strings.TrimSpace(providerUser.Email))

	user, err := s.repo.GetUserByGoogleID(ctx, providerUser.UserID)
	if err == nil {
		span.SetStatus(codes.Ok, "existing")
		return user, nil
	}
	if !errors.Is(err, types.ErrNotFound) {
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, err
	}

	existing, err := s.repo.GetUserByEmail(ctx, providerUser.Email)
	switch {
	case err == nil && !linkByEmail:
		l.WarnContext(ctx, "Unverified provider identity claims a registered email", slog.String("userID", existing.ID))
		span.SetStatus(codes.Error, "email taken")
		return nil, fmt.Errorf("email already registered: %w", types.ErrConflict)
	case err == nil:
		if err := s.repo.LinkGoogleAccount(ctx, existing.ID, providerUser.UserID, providerUser.AvatarURL); err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, "link failed")
			return nil, err
		}
		l.InfoContext(ctx, "Linked provider identity to existing account", slog.String("userID", existing.ID))
		span.SetStatus(codes.Ok, "linked")
		return s.repo.GetUserByID(ctx, existing.ID)
	case !errors.Is(err, types.ErrNotFound):
		span.RecordError(err)
		span.SetStatus(codes.Error, "lookup failed")
		return nil, err
	}

	user, err = s.repo.CreateProviderUser(ctx, providerUser)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "create failed")
		return nil, err
	}
	l.InfoContext(ctx, "Created account from provider identity", slog.String("userID", user.ID))
	span.SetStatus(codes.Ok, "created")
	return user, nil
}

func (s *AuthServiceImpl) GenerateTokens(ctx context.Context, user *types.UserAuth) (*types.AuthTokens, error) {
	now := time.Now()
	expiresAt := now.Add(s.cfg.AccessTokenTTL)

	claims := types.Claims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Subject:   user.ID,
			Issuer:    s.cfg.Issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	if s.cfg.Audience != "" {
		claims.Audience = jwt.ClaimStrings{s.cfg.Audience}
	}

	accessToken, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(s.cfg.SecretKey))
	if err != nil {
		return nil, fmt.Errorf("failed to sign access token: %w", err)
	}

	refreshToken := uuid.NewString()
	if err := s.repo.StoreRefreshToken(ctx, user.ID, refreshToken, now.Add(s.cfg.RefreshTokenTTL)); err != nil {
		return nil, fmt.Errorf("failed to store refresh token: %w", err)
	}

	return &types.AuthTokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    expiresAt,
	}, nil
}

// RefreshSession rotates the refresh token: the presented one is revoked and
// a new pair is issued.
func (s *AuthServiceImpl) RefreshSession(ctx context.Context, refreshToken string) (*types.UserAuth, *types.AuthTokens, error) {
	ctx, span := otel.Tracer("AuthService").Start(ctx, "RefreshSession")
	defer span.End()

	userID, err := s.repo.ValidateRefreshTokenAndGetUserID(ctx, refreshToken)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "invalid refresh token")
		return nil, nil, err
	}

	user, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "user lookup failed")
		if errors.Is(err, types.ErrNotFound) {
			return nil, nil, types.ErrUnauthenticated
		}
		return nil, nil, err
	}

	if err := s.repo.InvalidateRefreshToken(ctx, refreshToken); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "revoke failed")
		return nil, nil, err
	}

	tokens, err := s.GenerateTokens(ctx, user)
	if err != nil {
		return nil, nil, err
	}
	span.SetStatus(codes.Ok, "")
	return user, tokens, nil
}

func (s *AuthServiceImpl) Logout(ctx context.Context, claims *types.Claims, refreshToken string) error {
	if claims != nil && claims.ExpiresAt != nil {
		s.denylist.Revoke(claims.ID, claims.ExpiresAt.Time)
	}
	if refreshToken == "" {
		return nil
	}
	if err := s.repo.InvalidateRefreshToken(ctx, refreshToken); err != nil {
		s.logger.ErrorContext(ctx, "Failed to revoke refresh token on logout", slog.Any("error", err))
		return err
	}
	return nil
}

func (s *AuthServiceImpl) GetUserByID(ctx context.Context, userID string) (*types.UserAuth, error) {
	return s.repo.GetUserByID(ctx, userID)
}
