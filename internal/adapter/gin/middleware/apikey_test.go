package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap/zaptest"

	"user-auth-service/internal/usecase/apiclient"
	apperrors "user-auth-service/pkg/errors"
)

// MockClientUsecase is a mock implementation of the apiclient.Usecase interface
type MockClientUsecase struct {
	mock.Mock
}

func (m *MockClientUsecase) CreateClient(ctx context.Context, in apiclient.CreateClientRequest) (*apiclient.CreateClientResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apiclient.CreateClientResponse), args.Error(1)
}

func (m *MockClientUsecase) GetClient(ctx context.Context, id int64) (*apiclient.ClientResponse, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apiclient.ClientResponse), args.Error(1)
}

func (m *MockClientUsecase) UpdateClient(ctx context.Context, in apiclient.UpdateClientRequest) (*apiclient.ClientResponse, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apiclient.ClientResponse), args.Error(1)
}

func (m *MockClientUsecase) DeleteClient(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockClientUsecase) ListClients(ctx context.Context) ([]apiclient.ClientResponse, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]apiclient.ClientResponse), args.Error(1)
}

func (m *MockClientUsecase) ValidateKey(ctx context.Context, key string) (*apiclient.ClientResponse, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*apiclient.ClientResponse), args.Error(1)
}

func setupAPIKeyRouter(t *testing.T) (*gin.Engine, *MockClientUsecase) {
	gin.SetMode(gin.TestMode)
	mockClients := new(MockClientUsecase)

	r := gin.New()
	r.Use(APIKey(mockClients, zaptest.NewLogger(t)))
	r.POST("/check", func(c *gin.Context) {
		client, ok := GetAPIClient(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no client"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"client": client.Name})
	})
	return r, mockClients
}

func apiKeyRequest(r *gin.Engine, key string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/check", nil)
	if key != "" {
		req.Header.Set(APIKeyHeader, key)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== API KEY TESTS ====================

func TestAPIKey_Valid(t *testing.T) {
	r, mockClients := setupAPIKeyRouter(t)

	now := time.Now()
	mockClients.On("ValidateKey", mock.Anything, "valid-key").Return(&apiclient.ClientResponse{
		ID:        1,
		Name:      "billing-system",
		Active:    true,
		CreatedAt: now,
	}, nil)

	w := apiKeyRequest(r, "valid-key")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "billing-system")
	mockClients.AssertExpectations(t)
}

func TestAPIKey_Missing(t *testing.T) {
	r, mockClients := setupAPIKeyRouter(t)

	mockClients.On("ValidateKey", mock.Anything, "").
		Return(nil, apperrors.NewUnauthorizedError("missing API key"))

	w := apiKeyRequest(r, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Body.String(), "unauthorized")
}

func TestAPIKey_Unknown(t *testing.T) {
	r, mockClients := setupAPIKeyRouter(t)

	mockClients.On("ValidateKey", mock.Anything, "bad-key").
		Return(nil, apperrors.NewForbiddenError("invalid API key"))

	w := apiKeyRequest(r, "bad-key")

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "forbidden")
}

func TestAPIKey_InternalErrorMasked(t *testing.T) {
	r, mockClients := setupAPIKeyRouter(t)

	mockClients.On("ValidateKey", mock.Anything, "any-key").
		Return(nil, apperrors.NewInternalError("query failed", assert.AnError))

	w := apiKeyRequest(r, "any-key")

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Contains(t, w.Body.String(), "An internal error occurred")
	assert.NotContains(t, w.Body.String(), "query failed")
}
