package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/markbates/goth"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	database "github.com/FACorreiaa/go-trip-planner-ai/app/db"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

var _ AuthRepo = (*AuthRepoFactory)(nil)

const uniqueViolation = "23505"

type AuthRepo interface {
	GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error)
	GetUserByID(ctx context.Context, userID string) (*types.UserAuth, error)
	GetUserByGoogleID(ctx context.Context, googleID string) (*types.UserAuth, error)
	// Register inserts a password account and returns its id.
	Register(ctx context.Context, name, email, hashedPassword string) (string, error)
	CreateProviderUser(ctx context.Context, providerUser goth.User) (*types.UserAuth, error)
	LinkGoogleAccount(ctx context.Context, userID, googleID, imageURL string) error

	StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	ValidateRefreshTokenAndGetUserID(ctx context.Context, refreshToken string) (string, error)
	InvalidateRefreshToken(ctx context.Context, refreshToken string) error
	InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error
}

type AuthRepoFactory struct {
	logger *slog.Logger
	pgpool database.DBTX
}

func NewAuthRepoFactory(pgpool database.DBTX, logger *slog.Logger) *AuthRepoFactory {
	return &AuthRepoFactory{
		logger: logger,
		pgpool: pgpool,
	}
}

const userColumns = `id, name, email, COALESCE(password_hash, ''), google_id, image_url, created_at, updated_at`

func scanUser(row pgx.Row) (*types.UserAuth, error) {
	var u types.UserAuth
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.Password, &u.GoogleID, &u.ImageURL, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, types.ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *AuthRepoFactory) getUser(ctx context.Context, op, where string, arg any) (*types.UserAuth, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, op, trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
	))
	defer span.End()

	user, err := scanUser(r.pgpool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE `+where+` = $1`, arg))
	if err != nil {
		if errors.Is(err, types.ErrNotFound) {
			span.SetStatus(codes.Ok, "user not found")
			return nil, err
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "query failed")
		return nil, fmt.Errorf("%s: query failed: %w", op, err)
	}
	span.SetStatus(codes.Ok, "")
	return user, nil
}

func (r *AuthRepoFactory) GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error) {
	return r.getUser(ctx, "GetUserByEmail", "email", email)
}

func (r *AuthRepoFactory) GetUserByID(ctx context.Context, userID string) (*types.UserAuth, error) {
	return r.getUser(ctx, "GetUserByID", "id", userID)
}

func (r *AuthRepoFactory) GetUserByGoogleID(ctx context.Context, googleID string) (*types.UserAuth, error) {
	return r.getUser(ctx, "GetUserByGoogleID", "google_id", googleID)
}

// Register creates a new password account. A duplicate email yields types.ErrConflict.
func (r *AuthRepoFactory) Register(ctx context.Context, name, email, hashedPassword string) (string, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "Register", trace.WithAttributes(
		attribute.String("db.system", "postgresql"),
		attribute.String("db.operation", "INSERT"),
	))
	defer span.End()

	var userID string
	err := r.pgpool.QueryRow(ctx,
		`INSERT INTO users (name, email, password_hash) VALUES ($1, $2, $3) RETURNING id`,
		name, email, hashedPassword).Scan(&userID)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			span.SetStatus(codes.Error, "email exists")
			return "", fmt.Errorf("email %q: %w", email, types.ErrConflict)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return "", fmt.Errorf("register: db insert failed: %w", err)
	}
	span.SetAttributes(attribute.String("user.id", userID))
	span.SetStatus(codes.Ok, "")
	return userID, nil
}

// CreateProviderUser inserts an account without a password for a third-party identity.
func (r *AuthRepoFactory) CreateProviderUser(ctx context.Context, providerUser goth.User) (*types.UserAuth, error) {
	ctx, span := otel.Tracer("AuthRepo").Start(ctx, "CreateProviderUser", trace.WithAttributes(
		attribute.String("auth.provider", providerUser.Provider),
	))
	defer span.End()

	name := providerUser.Name
	if name == "" {
		name = providerUser.NickName
	}
	var imageURL *string
	if providerUser.AvatarURL != "" {
		imageURL = &providerUser.AvatarURL
	}

	user, err := scanUser(r.pgpool.QueryRow(ctx,
		`INSERT INTO users (name, email, google_id, image_url) VALUES ($1, $2, $3, $4)
		 RETURNING `+userColumns,
		name, providerUser.Email, providerUser.UserID, imageURL))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			span.SetStatus(codes.Error, "user exists")
			return nil, fmt.Errorf("provider user %q: %w", providerUser.Email, types.ErrConflict)
		}
		span.RecordError(err)
		span.SetStatus(codes.Error, "insert failed")
		return nil, fmt.Errorf("create provider user: db insert failed: %w", err)
	}
	span.SetStatus(codes.Ok, "")
	return user, nil
}

func (r *AuthRepoFactory) LinkGoogleAccount(ctx context.Context, userID, googleID, imageURL string) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE users SET google_id = $1, image_url = COALESCE(NULLIF($2, ''), image_url), updated_at = now()
		 WHERE id = $3`,
		googleID, imageURL, userID)
	if err != nil {
		return fmt.Errorf("link google account: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return types.ErrNotFound
	}
	return nil
}

func (r *AuthRepoFactory) StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	_, err := r.pgpool.Exec(ctx,
		`INSERT INTO refresh_tokens (user_id, token, expires_at)
         VALUES ($1, $2, $3)`,
		userID, token, expiresAt)
	if err != nil {
		return fmt.Errorf("store refresh token: db insert failed: %w", err)
	}
	return nil
}

// ValidateRefreshTokenAndGetUserID returns the owner of a live refresh token.
// Unknown, expired and revoked tokens all yield types.ErrUnauthenticated.
func (r *AuthRepoFactory) ValidateRefreshTokenAndGetUserID(ctx context.Context, refreshToken string) (string, error) {
	var userID string
	var expiresAt time.Time
	var revokedAt *time.Time

	err := r.pgpool.QueryRow(ctx,
		`SELECT user_id, expires_at, revoked_at
         FROM refresh_tokens
         WHERE token = $1`, refreshToken).Scan(&userID, &expiresAt, &revokedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", fmt.Errorf("invalid refresh token: %w", types.ErrUnauthenticated)
		}
		return "", fmt.Errorf("validate refresh token: query failed: %w", err)
	}

	if revokedAt != nil || time.Now().After(expiresAt) {
		return "", fmt.Errorf("refresh token expired or revoked: %w", types.ErrUnauthenticated)
	}
	return userID, nil
}

func (r *AuthRepoFactory) InvalidateRefreshToken(ctx context.Context, refreshToken string) error {
	tag, err := r.pgpool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = $1
         WHERE token = $2 AND revoked_at IS NULL`,
		time.Now(), refreshToken)
	if err != nil {
		return fmt.Errorf("invalidate refresh token: db update failed: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Already revoked or unknown; logout still succeeds.
		r.logger.WarnContext(ctx, "No active refresh token found to revoke")
	}
	return nil
}

func (r *AuthRepoFactory) InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error {
	_, err := r.pgpool.Exec(ctx,
		`UPDATE refresh_tokens SET revoked_at = $1
		 WHERE user_id = $2 AND revoked_at IS NULL`,
		time.Now(), userID)
	if err != nil {
		return fmt.Errorf("invalidate all tokens: db update failed: %w", err)
	}
	return nil
}
