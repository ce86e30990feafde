package auth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	domain "user-auth-service/internal/domain/user"
	apperrors "user-auth-service/pkg/errors"
	"user-auth-service/pkg/security"
	"user-auth-service/pkg/token"
)

// MockRepository is a mock implementation of the user.Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) Create(ctx context.Context, u *domain.User) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByCPF(ctx context.Context, cpf string) (*domain.User, error) {
	args := m.Called(ctx, cpf)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByPhone(ctx context.Context, phone string) (*domain.User, error) {
	args := m.Called(ctx, phone)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByVerifyToken(ctx context.Context, tok string) (*domain.User, error) {
	args := m.Called(ctx, tok)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) GetByResetToken(ctx context.Context, tok string) (*domain.User, error) {
	args := m.Called(ctx, tok)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockRepository) Update(ctx context.Context, u *domain.User) (int64, error) {
	args := m.Called(ctx, u)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) Delete(ctx context.Context, id int64) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockRepository) List(ctx context.Context, query string, page, limit int64) ([]domain.User, int64, error) {
	args := m.Called(ctx, query, page, limit)
	return args.Get(0).([]domain.User), args.Get(1).(int64), args.Error(2)
}

func setupTestUsecase(t *testing.T) (*AuthUsecase, *MockRepository, *token.Manager) {
	mockRepo := new(MockRepository)
	tm := token.NewManager("test-secret", 30*time.Minute, 7*24*time.Hour)
	uc := New(mockRepo, tm, zaptest.NewLogger(t))
	return uc, mockRepo, tm
}

// activeUser returns a user whose PasswordHash matches the given
// plaintext password.
func activeUser(t *testing.T, password string) *domain.User {
	hash, err := security.HashPassword(password)
	require.NoError(t, err)
	return &domain.User{
		ID:           1,
		Name:         "John Doe",
		Email:        "john@example.com",
		Role:         domain.RoleClient,
		PasswordHash: hash,
		Active:       true,
	}
}

// ==================== LOGIN TESTS ====================

func TestLogin_Success(t *testing.T) {
	uc, mockRepo, tm := setupTestUsecase(t)
	ctx := context.Background()

	u := activeUser(t, "correct-password")
	mockRepo.On("GetByEmail", ctx, "john@example.com").Return(u, nil)

	resp, err := uc.Login(ctx, LoginRequest{Email: "john@example.com", Password: "correct-password"})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.Equal(t, int64(1800), resp.ExpiresIn)

	assert.NotNil(t, resp.User)
	assert.Equal(t, int64(1), resp.User.ID)
	assert.Equal(t, "john@example.com", resp.User.Email)

	claims, err := tm.Parse(resp.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)
	assert.Equal(t, domain.RoleClient, claims.Role)

	refreshClaims, err := tm.ParseRefresh(resp.RefreshToken)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), refreshClaims.UserID)

	mockRepo.AssertExpectations(t)
}

func TestLogin_WrongPassword(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	u := activeUser(t, "correct-password")
	mockRepo.On("GetByEmail", ctx, "john@example.com").Return(u, nil)

	resp, err := uc.Login(ctx, LoginRequest{Email: "john@example.com", Password: "wrong-password"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Nil(t, resp)
	assert.Equal(t, 401, apperrors.StatusCode(err))
}

func TestLogin_UnknownEmailSameError(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	mockRepo.On("GetByEmail", ctx, "nobody@example.com").Return(nil, nil)

	resp, err := uc.Login(ctx, LoginRequest{Email: "nobody@example.com", Password: "whatever-pass"})

	// Unknown email and wrong password must be indistinguishable.
	assert.ErrorIs(t, err, apperrors.ErrInvalidCredentials)
	assert.Nil(t, resp)
	assert.Equal(t, "incorrect email or password", err.Error())
}

func TestLogin_InactiveUser(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	u := activeUser(t, "correct-password")
	u.Active = false
	mockRepo.On("GetByEmail", ctx, "john@example.com").Return(u, nil)

	resp, err := uc.Login(ctx, LoginRequest{Email: "john@example.com", Password: "correct-password"})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Contains(t, err.Error(), "inactive user")
	assert.Equal(t, 403, apperrors.StatusCode(err))
}

func TestLogin_MissingFields(t *testing.T) {
	uc, mockRepo, _ := setupTestUsecase(t)
	ctx := context.Background()

	resp, err := uc.Login(ctx, LoginRequest{Email: "john@example.com"})

	assert.Error(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 422, apperrors.StatusCode(err))

	mockRepo.AssertNotCalled(t, "GetByEmail", mock.Anything, mock.Anything)
}

// ==================== REFRESH TESTS ====================

func TestRefresh_Success(t *testing.T) {
	uc, mockRepo, tm := setupTestUsecase(t)
	ctx := context.Background()

	pair, err := tm.GeneratePair(1, "john@example.com", domain.RoleClient)
	require.NoError(t, err)

	u := activeUser(t, "irrelevant")
	mockRepo.On("GetByID", ctx, int64(1)).Return(u, nil)

	resp, err := uc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})

	assert.NoError(t, err)
	assert.NotNil(t, resp)
	assert.Equal(t, "bearer", resp.TokenType)
	assert.NotNil(t, resp.User)
	assert.Equal(t, int64(1), resp.User.ID)

	claims, err := tm.Parse(resp.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, int64(1), claims.UserID)

	mockRepo.AssertExpectations(t)
}

func TestRefresh_ClaimsFollowCurrentRole(t *testing.T) {
	uc, mockRepo, tm := setupTestUsecase(t)
	ctx := context.Background()

	// Token was issued while the user was still a client.
	pair, err := tm.GeneratePair(1, "john@example.com", domain.RoleClient)
	require.NoError(t, err)

	u := activeUser(t, "irrelevant")
	u.Role = domain.RoleAdmin
	mockRepo.On("GetByID", ctx, int64(1)).Return(u, nil)

	resp, err := uc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})

	assert.NoError(t, err)
	claims, err := tm.Parse(resp.AccessToken)
	assert.NoError(t, err)
	assert.Equal(t, domain.RoleAdmin, claims.Role)
}

func TestRefresh_AccessTokenRejected(t *testing.T) {
	uc, mockRepo, tm := setupTestUsecase(t)
	ctx := context.Background()

	pair, err := tm.GeneratePair(1, "john@example.com", domain.RoleClient)
	require.NoError(t, err)

	resp, err := uc.Refresh(ctx, RefreshRequest{RefreshToken: pair.AccessToken})

	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	assert.Nil(t, resp)

	mockRepo.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestRefresh_GarbageToken(t *testing.T) {
	uc, _, _ := setupTestUsecase(t)
	ctx := context.Background()

	resp, err := uc.Refresh(ctx, RefreshRequest{RefreshToken: "not-a-jwt"})

	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	assert.Nil(t, resp)
	assert.Equal(t, 401, apperrors.StatusCode(err))
}

func TestRefresh_DeletedUser(t *testing.T) {
	uc, mockRepo, tm := setupTestUsecase(t)
	ctx := context.Background()

	pair, err := tm.GeneratePair(42, "gone@example.com", domain.RoleClient)
	require.NoError(t, err)

	mockRepo.On("GetByID", ctx, int64(42)).Return(nil, nil)

	resp, err := uc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})

	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	assert.Nil(t, resp)
}

func TestRefresh_InactiveUser(t *testing.T) {
	uc, mockRepo, tm := setupTestUsecase(t)
	ctx := context.Background()

	pair, err := tm.GeneratePair(1, "john@example.com", domain.RoleClient)
	require.NoError(t, err)

	u := activeUser(t, "irrelevant")
	u.Active = false
	mockRepo.On("GetByID", ctx, int64(1)).Return(u, nil)

	resp, err := uc.Refresh(ctx, RefreshRequest{RefreshToken: pair.RefreshToken})

	assert.ErrorIs(t, err, apperrors.ErrInvalidToken)
	assert.Nil(t, resp)
}
