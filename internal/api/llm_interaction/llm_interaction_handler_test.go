package llmInteraction

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/FACorreiaa/go-trip-planner-ai/internal/api/auth"
	"github.com/FACorreiaa/go-trip-planner-ai/internal/types"
)

type MockRepo struct {
	mock.Mock
}

func (m *MockRepo) SaveInteraction(ctx context.Context, interaction types.LlmInteraction) (uuid.UUID, error) {
	args := m.Called(ctx, interaction)
	return args.Get(0).(uuid.UUID), args.Error(1)
}

func (m *MockRepo) ListInteractions(ctx context.Context, userID uuid.UUID, limit int) ([]types.LlmInteraction, error) {
	args := m.Called(ctx, userID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]types.LlmInteraction), args.Error(1)
}

func TestHandler_ListInteractions(t *testing.T) {
	userID := uuid.New()
	authed := func(target string) *http.Request {
		r := httptest.NewRequest(http.MethodGet, target, nil)
		return r.WithContext(auth.WithUserID(r.Context(), userID.String()))
	}

	t.Run("default limit", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("ListInteractions", mock.Anything, userID, defaultListLimit).
			Return([]types.LlmInteraction{{Destination: "Paris", Provider: "openai", TotalTokens: 1200}}, nil).Once()
		rr := httptest.NewRecorder()
		NewHandlerImpl(repo, slog.Default()).ListInteractions(rr, authed("/api/llm-interactions"))

		require.Equal(t, http.StatusOK, rr.Code)
		var got []types.LlmInteraction
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
		require.Len(t, got, 1)
		assert.Equal(t, 1200, got[0].TotalTokens)
		repo.AssertExpectations(t)
	})

	t.Run("limit capped", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("ListInteractions", mock.Anything, userID, maxListLimit).Return([]types.LlmInteraction{}, nil).Once()
		rr := httptest.NewRecorder()
		NewHandlerImpl(repo, slog.Default()).ListInteractions(rr, authed("/api/llm-interactions?limit=5000"))
		assert.Equal(t, http.StatusOK, rr.Code)
		repo.AssertExpectations(t)
	})

	t.Run("bad limit", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewHandlerImpl(new(MockRepo), slog.Default()).ListInteractions(rr, authed("/api/llm-interactions?limit=-1"))
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})

	t.Run("unauthenticated", func(t *testing.T) {
		rr := httptest.NewRecorder()
		NewHandlerImpl(new(MockRepo), slog.Default()).ListInteractions(rr, httptest.NewRequest(http.MethodGet, "/api/llm-interactions", nil))
		assert.Equal(t, http.StatusUnauthorized, rr.Code)
	})

	t.Run("repository failure", func(t *testing.T) {
		repo := new(MockRepo)
		repo.On("ListInteractions", mock.Anything, userID, defaultListLimit).Return(nil, errors.New("pool closed")).Once()
		rr := httptest.NewRecorder()
		NewHandlerImpl(repo, slog.Default()).ListInteractions(rr, authed("/api/llm-interactions"))
		assert.Equal(t, http.StatusInternalServerError, rr.Code)
	})
}
