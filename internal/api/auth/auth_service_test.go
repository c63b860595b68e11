package auth

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/markbates/goth"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/FACorreiaa/go-trip-planner-ai/config"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

// MockAuthRepo is a mock implementation of the AuthRepo interface
type MockAuthRepo struct {
	mock.Mock
}

func (m *MockAuthRepo) GetUserByEmail(ctx context.Context, email string) (*types.UserAuth, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepo) GetUserByID(ctx context.Context, userID string) (*types.UserAuth, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepo) GetUserByGoogleID(ctx context.Context, googleID string) (*types.UserAuth, error) {
	args := m.Called(ctx, googleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepo) Register(ctx context.Context, name, email, hashedPassword string) (string, error) {
	args := m.Called(ctx, name, email, hashedPassword)
	return args.String(0), args.Error(1)
}

func (m *MockAuthRepo) CreateProviderUser(ctx context.Context, providerUser goth.User) (*types.UserAuth, error) {
	args := m.Called(ctx, providerUser)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UserAuth), args.Error(1)
}

func (m *MockAuthRepo) LinkGoogleAccount(ctx context.Context, userID, googleID, imageURL string) error {
	args := m.Called(ctx, userID, googleID, imageURL)
	return args.Error(0)
}

func (m *MockAuthRepo) StoreRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	args := m.Called(ctx, userID, token, expiresAt)
	return args.Error(0)
}

func (m *MockAuthRepo) ValidateRefreshTokenAndGetUserID(ctx context.Context, refreshToken string) (string, error) {
	args := m.Called(ctx, refreshToken)
	return args.String(0), args.Error(1)
}

func (m *MockAuthRepo) InvalidateRefreshToken(ctx context.Context, refreshToken string) error {
	args := m.Called(ctx, refreshToken)
	return args.Error(0)
}

func (m *MockAuthRepo) InvalidateAllUserRefreshTokens(ctx context.Context, userID string) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func testConfig() *config.Config {
	return &config.Config{
		JWT: config.JWTConfig{
			SecretKey:       "test-access-secret",
			AccessTokenTTL:  15 * time.Minute,
			RefreshTokenTTL: 7 * 24 * time.Hour,
			Issuer:          "test-issuer",
			Audience:        "test-audience",
		},
	}
}

func newTestService(repo AuthRepo) (*AuthServiceImpl, *TokenDenylist) {
	denylist := NewTokenDenylist(time.Minute)
	return NewAuthService(repo, testConfig(), denylist, slog.Default()), denylist
}

func TestLogin(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	service, _ := newTestService(mockRepo)
	ctx := context.Background()

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("Success", func(t *testing.T) {
		user := &types.UserAuth{ID: "user123", Name: "testuser", Email: "test@example.com", Password: string(hashedPassword)}
		mockRepo.On("GetUserByEmail", mock.Anything, "test@example.com").Return(user, nil).Once()
		mockRepo.On("StoreRefreshToken", mock.Anything, user.ID, mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

		gotUser, tokens, err := service.Login(ctx, " Test@Example.com ", "password123")

		require.NoError(t, err)
		assert.Equal(t, user.ID, gotUser.ID)
		assert.NotEmpty(t, tokens.AccessToken)
		assert.NotEmpty(t, tokens.RefreshToken)

		claims := &types.Claims{}
		_, err = jwt.ParseWithClaims(tokens.AccessToken, claims, func(*jwt.Token) (interface{}, error) {
			return []byte("test-access-secret"), nil
		})
		require.NoError(t, err)
		assert.Equal(t, "user123", claims.UserID)
		assert.Equal(t, "test-issuer", claims.Issuer)
		assert.NotEmpty(t, claims.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UserNotFound", func(t *testing.T) {
		mockRepo.On("GetUserByEmail", mock.Anything, "missing@example.com").Return(nil, types.ErrNotFound).Once()

		_, _, err := service.Login(ctx, "missing@example.com", "password123")

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})

	t.Run("InvalidPassword", func(t *testing.T) {
		user := &types.UserAuth{ID: "user123", Email: "test@example.com", Password: string(hashedPassword)}
		mockRepo.On("GetUserByEmail", mock.Anything, "test@example.com").Return(user, nil).Once()

		_, _, err := service.Login(ctx, "test@example.com", "wrong")

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})

	t.Run("GoogleOnlyAccount", func(t *testing.T) {
		user := &types.UserAuth{ID: "user456", Email: "g@example.com"}
		mockRepo.On("GetUserByEmail", mock.Anything, "g@example.com").Return(user, nil).Once()

		_, _, err := service.Login(ctx, "g@example.com", "anything")

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})
}

func TestRegister(t *testing.T) {
	mockRepo := new(MockAuthRepo)
	service, _ := newTestService(mockRepo)
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		user := &types.UserAuth{ID: "new-id", Name: "New", Email: "new@example.com"}
		mockRepo.On("Register", mock.Anything, "New", "new@example.com", mock.MatchedBy(func(h string) bool {
			return bcrypt.CompareHashAndPassword([]byte(h), []byte("secret123")) == nil
		})).Return("new-id", nil).Once()
		mockRepo.On("GetUserByID", mock.Anything, "new-id").Return(user, nil).Once()
		mockRepo.On("StoreRefreshToken", mock.Anything, "new-id", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

		gotUser, tokens, err := service.Register(ctx, "New", "new@example.com", "secret123")

		require.NoError(t, err)
		assert.Equal(t, "new-id", gotUser.ID)
		assert.NotEmpty(t, tokens.AccessToken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("EmailExists", func(t *testing.T) {
		mockRepo.On("Register", mock.Anything, "Dup", "dup@example.com", mock.AnythingOfType("string")).
			Return("", types.ErrConflict).Once()

		_, _, err := service.Register(ctx, "Dup", "dup@example.com", "secret123")

		assert.ErrorIs(t, err, types.ErrConflict)
		mockRepo.AssertExpectations(t)
	})
}

func TestGetOrCreateUserFromProvider(t *testing.T) {
	ctx := context.Background()
	gUser := goth.User{UserID: "g-1", Email: "Person@Example.com", Name: "Person", AvatarURL: "https://img"}

	t.Run("ExistingGoogleAccount", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, _ := newTestService(mockRepo)
		existing := &types.UserAuth{ID: "u1"}
		mockRepo.On("GetUserByGoogleID", mock.Anything, "g-1").Return(existing, nil).Once()

		user, err := service.GetOrCreateUserFromProvider(ctx, "google", gUser, true)

		require.NoError(t, err)
		assert.Equal(t, "u1", user.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("LinksByEmail", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, _ := newTestService(mockRepo)
		existing := &types.UserAuth{ID: "u2", Email: "person@example.com"}
		mockRepo.On("GetUserByGoogleID", mock.Anything, "g-1").Return(nil, types.ErrNotFound).Once()
		mockRepo.On("GetUserByEmail", mock.Anything, "person@example.com").Return(existing, nil).Once()
		mockRepo.On("LinkGoogleAccount", mock.Anything, "u2", "g-1", "https://img").Return(nil).Once()
		mockRepo.On("GetUserByID", mock.Anything, "u2").Return(existing, nil).Once()

		user, err := service.GetOrCreateUserFromProvider(ctx, "google", gUser, true)

		require.NoError(t, err)
		assert.Equal(t, "u2", user.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Creates", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, _ := newTestService(mockRepo)
		created := &types.UserAuth{ID: "u3"}
		mockRepo.On("GetUserByGoogleID", mock.Anything, "g-1").Return(nil, types.ErrNotFound).Once()
		mockRepo.On("GetUserByEmail", mock.Anything, "person@example.com").Return(nil, types.ErrNotFound).Once()
		mockRepo.On("CreateProviderUser", mock.Anything, mock.MatchedBy(func(u goth.User) bool {
			return u.Provider == "google" && u.Email == "person@example.com"
		})).Return(created, nil).Once()

		user, err := service.GetOrCreateUserFromProvider(ctx, "google", gUser, true)

		require.NoError(t, err)
		assert.Equal(t, "u3", user.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnverifiedIdentityCannotClaimEmail", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, _ := newTestService(mockRepo)
		victim := &types.UserAuth{ID: "victim-id", Email: "victim@example.com"}
		mockRepo.On("GetUserByGoogleID", mock.Anything, "made-up-id").Return(nil, types.ErrNotFound).Once()
		mockRepo.On("GetUserByEmail", mock.Anything, "victim@example.com").Return(victim, nil).Once()

		user, err := service.GetOrCreateUserFromProvider(ctx, "google",
			goth.User{UserID: "made-up-id", Email: "victim@example.com"}, false)

		assert.ErrorIs(t, err, types.ErrConflict)
		assert.Nil(t, user)
		mockRepo.AssertNotCalled(t, "LinkGoogleAccount", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
		mockRepo.AssertNotCalled(t, "CreateProviderUser", mock.Anything, mock.Anything)
		mockRepo.AssertExpectations(t)
	})

	t.Run("UnverifiedIdentityCreatesNewAccount", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, _ := newTestService(mockRepo)
		created := &types.UserAuth{ID: "u4"}
		mockRepo.On("GetUserByGoogleID", mock.Anything, "g-1").Return(nil, types.ErrNotFound).Once()
		mockRepo.On("GetUserByEmail", mock.Anything, "person@example.com").Return(nil, types.ErrNotFound).Once()
		mockRepo.On("CreateProviderUser", mock.Anything, mock.Anything).Return(created, nil).Once()

		user, err := service.GetOrCreateUserFromProvider(ctx, "google", gUser, false)

		require.NoError(t, err)
		assert.Equal(t, "u4", user.ID)
		mockRepo.AssertExpectations(t)
	})

	t.Run("IncompleteIdentity", func(t *testing.T) {
		service, _ := newTestService(new(MockAuthRepo))
		_, err := service.GetOrCreateUserFromProvider(ctx, "google", goth.User{Email: "x@y.z"}, true)
		assert.ErrorIs(t, err, types.ErrBadRequest)
	})
}

func TestRefreshSession(t *testing.T) {
	ctx := context.Background()

	t.Run("Rotates", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, _ := newTestService(mockRepo)
		user := &types.UserAuth{ID: "u1", Email: "a@b.co"}
		mockRepo.On("ValidateRefreshTokenAndGetUserID", mock.Anything, "old").Return("u1", nil).Once()
		mockRepo.On("GetUserByID", mock.Anything, "u1").Return(user, nil).Once()
		mockRepo.On("InvalidateRefreshToken", mock.Anything, "old").Return(nil).Once()
		mockRepo.On("StoreRefreshToken", mock.Anything, "u1", mock.AnythingOfType("string"), mock.AnythingOfType("time.Time")).Return(nil).Once()

		_, tokens, err := service.RefreshSession(ctx, "old")

		require.NoError(t, err)
		assert.NotEqual(t, "old", tokens.RefreshToken)
		mockRepo.AssertExpectations(t)
	})

	t.Run("Invalid", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, _ := newTestService(mockRepo)
		mockRepo.On("ValidateRefreshTokenAndGetUserID", mock.Anything, "bad").Return("", types.ErrUnauthenticated).Once()

		_, _, err := service.RefreshSession(ctx, "bad")

		assert.ErrorIs(t, err, types.ErrUnauthenticated)
		mockRepo.AssertExpectations(t)
	})
}

func TestLogout(t *testing.T) {
	ctx := context.Background()
	claims := &types.Claims{RegisteredClaims: jwt.RegisteredClaims{
		ID:        "jti-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	}}

	t.Run("Success", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, denylist := newTestService(mockRepo)
		mockRepo.On("InvalidateRefreshToken", mock.Anything, "rt").Return(nil).Once()

		err := service.Logout(ctx, claims, "rt")

		assert.NoError(t, err)
		assert.True(t, denylist.IsRevoked("jti-1"))
		mockRepo.AssertExpectations(t)
	})

	t.Run("Error", func(t *testing.T) {
		mockRepo := new(MockAuthRepo)
		service, _ := newTestService(mockRepo)
		mockRepo.On("InvalidateRefreshToken", mock.Anything, "rt").Return(errors.New("db error")).Once()

		err := service.Logout(ctx, claims, "rt")

		assert.Error(t, err)
		mockRepo.AssertExpectations(t)
	})
}
