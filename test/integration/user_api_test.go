package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"

	"user-auth-service/internal/adapter/cache"
	"user-auth-service/internal/adapter/db/mysql"
	ginhandler "user-auth-service/internal/adapter/gin/handler"
	ginmiddleware "user-auth-service/internal/adapter/gin/middleware"
	ginrouter "user-auth-service/internal/adapter/gin/router"
	"user-auth-service/internal/adapter/repository/cached"
	"user-auth-service/internal/config"
	domain "user-auth-service/internal/domain/user"
	"user-auth-service/internal/usecase/apiclient"
	"user-auth-service/internal/usecase/auth"
	"user-auth-service/internal/usecase/user"
	"user-auth-service/pkg/mailer"
	redisclient "user-auth-service/pkg/redis"
	"user-auth-service/pkg/security"
	"user-auth-service/pkg/token"
)

// APITestSuite runs the REST API end to end: the real router and
// middleware chain, real usecases, repositories on an in-memory SQLite
// database and the Redis cache layer on miniredis. Only the SMTP
// mailer is replaced.
type APITestSuite struct {
	suite.Suite

	db     *gorm.DB
	mr     *miniredis.Miniredis
	rdb    *redis.Client
	tokens *token.Manager
	router *gin.Engine

	adminEmail    string
	adminPassword string
}

func TestAPITestSuite(t *testing.T) {
	suite.Run(t, new(APITestSuite))
}

func (s *APITestSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(s.T())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	s.Require().NoError(err)
	s.Require().NoError(db.AutoMigrate(&mysql.UserSchema{}, &mysql.ClientSchema{}))
	s.db = db

	s.mr = miniredis.RunT(s.T())
	s.rdb = redis.NewClient(&redis.Options{Addr: s.mr.Addr()})

	userCache := cache.NewRedisUserCache(s.rdb, time.Minute, log)
	userRepo := cached.NewCachedUserRepository(mysql.NewUserRepoMySQL(db, log), userCache, log)
	clientRepo := mysql.NewClientRepoMySQL(db, log)

	s.tokens = token.NewManager("integration-secret", 30*time.Minute, 7*24*time.Hour)

	userUC := user.New(userRepo, mailer.NewNoop(log), user.Config{
		BaseURL:        "http://localhost:8000",
		VerifyTokenTTL: 48 * time.Hour,
		ResetTokenTTL:  time.Hour,
	}, log)
	authUC := auth.New(userRepo, s.tokens, log)
	clientUC := apiclient.New(clientRepo, log)

	s.router = ginrouter.SetupRouter(ginrouter.Deps{
		Env:           "test",
		AuthHandler:   ginhandler.NewAuthHandler(authUC, log),
		UserHandler:   ginhandler.NewUserHandler(userUC, log),
		ClientHandler: ginhandler.NewClientHandler(clientUC, log),
		Tokens:        s.tokens,
		Clients:       clientUC,
		DB:            db,
		Redis:         &redisclient.Client{Client: s.rdb},
		Log:           log,
	})

	s.adminEmail = "admin@example.com"
	s.adminPassword = "admin-secret-123"
	s.seedAdmin()
}

// seedAdmin inserts the bootstrap admin the same way startup does.
func (s *APITestSuite) seedAdmin() {
	hash, err := security.HashPassword(s.adminPassword)
	s.Require().NoError(err)

	admin := mysql.UserSchema{
		Name:          "Administrator",
		Username:      "admin",
		Email:         s.adminEmail,
		Role:          domain.RoleAdmin,
		PasswordHash:  hash,
		Active:        true,
		EmailVerified: true,
	}
	s.Require().NoError(s.db.Create(&admin).Error)
}

// ==================== HELPERS ====================

func (s *APITestSuite) do(method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		s.Require().NoError(err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func bearer(tok string) map[string]string {
	return map[string]string{"Authorization": "Bearer " + tok}
}

func apiKey(key string) map[string]string {
	return map[string]string{ginmiddleware.APIKeyHeader: key}
}

func (s *APITestSuite) decode(w *httptest.ResponseRecorder) map[string]any {
	var out map[string]any
	s.Require().NoError(json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

// register creates a client account and returns its response body.
func (s *APITestSuite) register(name, username, email, cpf, phone string) map[string]any {
	w := s.do(http.MethodPost, "/v1/users", gin.H{
		"name":     name,
		"username": username,
		"email":    email,
		"password": "password123",
		"cpf":      cpf,
		"phone":    phone,
	}, nil)
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	return s.decode(w)
}

// login returns the token response body for the given credentials.
func (s *APITestSuite) login(email, password string) map[string]any {
	w := s.do(http.MethodPost, "/v1/auth/login", gin.H{"email": email, "password": password}, nil)
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	return s.decode(w)
}

func (s *APITestSuite) adminToken() string {
	return s.login(s.adminEmail, s.adminPassword)["access_token"].(string)
}

// userRow reads a user row straight from the database, bypassing the
// API and the cache.
func (s *APITestSuite) userRow(email string) mysql.UserSchema {
	var row mysql.UserSchema
	s.Require().NoError(s.db.Where("email = ?", email).First(&row).Error)
	return row
}

// ==================== PROBES ====================

func (s *APITestSuite) TestHealthAndReadiness() {
	w := s.do(http.MethodGet, "/health", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "healthy")
	s.NotEmpty(w.Header().Get(ginmiddleware.RequestIDHeader))

	w = s.do(http.MethodGet, "/ready", nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "ready")

	// Readiness must flip once Redis goes away.
	s.mr.Close()
	w = s.do(http.MethodGet, "/ready", nil, nil)
	s.Equal(http.StatusServiceUnavailable, w.Code)
	s.Contains(w.Body.String(), "not_ready")
}

// ==================== REGISTRATION / LOGIN ====================

func (s *APITestSuite) TestRegisterAndLogin() {
	body := s.register("John Doe", "johndoe", "john@example.com", "529.982.247-25", "11999990001")

	s.Equal("john@example.com", body["email"])
	s.Equal("client", body["role"])
	s.Equal(true, body["active"])
	s.Equal(false, body["email_verified"])
	s.Equal("52998224725", body["cpf"])
	s.Greater(body["id"].(float64), float64(0))

	tokens := s.login("john@example.com", "password123")
	s.NotEmpty(tokens["access_token"])
	s.NotEmpty(tokens["refresh_token"])
	s.Equal("bearer", tokens["token_type"])
	s.Equal("john@example.com", tokens["user"].(map[string]any)["email"])

	w := s.do(http.MethodGet, "/v1/users/me", nil, bearer(tokens["access_token"].(string)))
	s.Equal(http.StatusOK, w.Code)
	s.Equal("johndoe", s.decode(w)["username"])
}

func (s *APITestSuite) TestRegisterRejectsDuplicates() {
	s.register("John Doe", "johndoe", "john@example.com", "52998224725", "11999990001")

	w := s.do(http.MethodPost, "/v1/users", gin.H{
		"name":     "Other John",
		"username": "otherjohn",
		"email":    "john@example.com",
		"password": "password123",
		"cpf":      "11144477735",
		"phone":    "11999990002",
	}, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Contains(w.Body.String(), "email already registered")

	w = s.do(http.MethodPost, "/v1/users", gin.H{
		"name":     "Other John",
		"username": "johndoe",
		"email":    "other@example.com",
		"password": "password123",
		"cpf":      "11144477735",
		"phone":    "11999990002",
	}, nil)
	s.Equal(http.StatusConflict, w.Code)
	s.Contains(w.Body.String(), "username already registered")
}

func (s *APITestSuite) TestRegisterValidation() {
	// Missing everything.
	w := s.do(http.MethodPost, "/v1/users", gin.H{}, nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Contains(w.Body.String(), "validation_error")

	// Checksum failure on an otherwise well-formed CPF.
	w = s.do(http.MethodPost, "/v1/users", gin.H{
		"name":     "John Doe",
		"username": "johndoe",
		"email":    "john@example.com",
		"password": "password123",
		"cpf":      "12345678900",
		"phone":    "11999990001",
	}, nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Contains(w.Body.String(), "invalid CPF number")

	// Malformed JSON is a transport error, not a validation error.
	req := httptest.NewRequest(http.MethodPost, "/v1/users", bytes.NewBufferString("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *APITestSuite) TestLoginFailures() {
	s.register("John Doe", "johndoe", "john@example.com", "52998224725", "11999990001")

	w := s.do(http.MethodPost, "/v1/auth/login", gin.H{"email": "john@example.com", "password": "wrong-password"}, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Contains(w.Body.String(), "incorrect email or password")

	// Unknown accounts fail with the same message as bad passwords.
	w = s.do(http.MethodPost, "/v1/auth/login", gin.H{"email": "ghost@example.com", "password": "password123"}, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
	s.Contains(w.Body.String(), "incorrect email or password")

	// Deactivated accounts are told apart from bad credentials.
	admin := s.adminToken()
	id := s.userRow("john@example.com").ID
	w = s.do(http.MethodPut, fmt.Sprintf("/v1/users/%d", id), gin.H{"active": false}, bearer(admin))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/v1/auth/login", gin.H{"email": "john@example.com", "password": "password123"}, nil)
	s.Equal(http.StatusForbidden, w.Code)
	s.Contains(w.Body.String(), "inactive")
}

func (s *APITestSuite) TestRefreshFlow() {
	s.register("John Doe", "johndoe", "john@example.com", "52998224725", "11999990001")
	tokens := s.login("john@example.com", "password123")

	w := s.do(http.MethodPost, "/v1/auth/refresh", gin.H{"refresh_token": tokens["refresh_token"]}, nil)
	s.Equal(http.StatusOK, w.Code)
	refreshed := s.decode(w)
	s.NotEmpty(refreshed["access_token"])

	// The refreshed access token must be usable.
	w = s.do(http.MethodGet, "/v1/users/me", nil, bearer(refreshed["access_token"].(string)))
	s.Equal(http.StatusOK, w.Code)

	// An access token is not a refresh token.
	w = s.do(http.MethodPost, "/v1/auth/refresh", gin.H{"refresh_token": tokens["access_token"]}, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	// A refresh token is not an access token either.
	w = s.do(http.MethodGet, "/v1/users/me", nil, bearer(tokens["refresh_token"].(string)))
	s.Equal(http.StatusUnauthorized, w.Code)
}

func (s *APITestSuite) TestRefreshRejectedAfterDeactivation() {
	s.register("John Doe", "johndoe", "john@example.com", "52998224725", "11999990001")
	tokens := s.login("john@example.com", "password123")

	admin := s.adminToken()
	id := s.userRow("john@example.com").ID
	w := s.do(http.MethodPut, fmt.Sprintf("/v1/users/%d", id), gin.H{"active": false}, bearer(admin))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())

	w = s.do(http.MethodPost, "/v1/auth/refresh", gin.H{"refresh_token": tokens["refresh_token"]}, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

// ==================== AUTHORIZATION ====================

func (s *APITestSuite) TestClientsOnlySeeThemselves() {
	a := s.register("Alice Silva", "alice", "alice@example.com", "52998224725", "11999990001")
	b := s.register("Bob Santos", "bob", "bob@example.com", "11144477735", "11999990002")

	aliceToken := s.login("alice@example.com", "password123")["access_token"].(string)
	aliceID := int64(a["id"].(float64))
	bobID := int64(b["id"].(float64))

	w := s.do(http.MethodGet, fmt.Sprintf("/v1/users/%d", aliceID), nil, bearer(aliceToken))
	s.Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/v1/users/%d", bobID), nil, bearer(aliceToken))
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/v1/users", nil, bearer(aliceToken))
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/v1/users/%d", bobID), nil, bearer(aliceToken))
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *APITestSuite) TestClientCannotEscalate() {
	a := s.register("Alice Silva", "alice", "alice@example.com", "52998224725", "11999990001")
	aliceToken := s.login("alice@example.com", "password123")["access_token"].(string)
	aliceID := int64(a["id"].(float64))

	w := s.do(http.MethodPut, fmt.Sprintf("/v1/users/%d", aliceID), gin.H{"role": "admin"}, bearer(aliceToken))
	s.Equal(http.StatusForbidden, w.Code)
	s.Contains(w.Body.String(), "only admins can change roles")

	w = s.do(http.MethodPut, fmt.Sprintf("/v1/users/%d", aliceID), gin.H{"active": false}, bearer(aliceToken))
	s.Equal(http.StatusForbidden, w.Code)

	// Updating her own profile data is fine.
	w = s.do(http.MethodPut, fmt.Sprintf("/v1/users/%d", aliceID), gin.H{"name": "Alice Souza"}, bearer(aliceToken))
	s.Equal(http.StatusOK, w.Code)
	s.Equal("Alice Souza", s.decode(w)["name"])
}

func (s *APITestSuite) TestAdminManagesUsers() {
	a := s.register("Alice Silva", "alice", "alice@example.com", "52998224725", "11999990001")
	s.register("Bob Santos", "bob", "bob@example.com", "11144477735", "11999990002")

	admin := s.adminToken()
	aliceID := int64(a["id"].(float64))

	// Admin listing with pagination. Seed admin plus two clients.
	w := s.do(http.MethodGet, "/v1/users?page=1&limit=10", nil, bearer(admin))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	listing := s.decode(w)
	s.Len(listing["users"], 3)
	s.Equal(float64(3), listing["pagination"].(map[string]any)["total"])

	// Search narrows the listing.
	w = s.do(http.MethodGet, "/v1/users?query=alice", nil, bearer(admin))
	s.Require().Equal(http.StatusOK, w.Code)
	s.Len(s.decode(w)["users"], 1)

	// Promotion takes effect immediately.
	w = s.do(http.MethodPut, fmt.Sprintf("/v1/users/%d", aliceID), gin.H{"role": "admin"}, bearer(admin))
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("admin", s.decode(w)["role"])

	aliceToken := s.login("alice@example.com", "password123")["access_token"].(string)
	w = s.do(http.MethodGet, "/v1/users", nil, bearer(aliceToken))
	s.Equal(http.StatusOK, w.Code)

	// Deleting removes the account for good.
	bobID := s.userRow("bob@example.com").ID
	w = s.do(http.MethodDelete, fmt.Sprintf("/v1/users/%d", bobID), nil, bearer(admin))
	s.Equal(http.StatusNoContent, w.Code)

	w = s.do(http.MethodGet, fmt.Sprintf("/v1/users/%d", bobID), nil, bearer(admin))
	s.Equal(http.StatusNotFound, w.Code)
}

// ==================== EMAIL VERIFICATION ====================

func (s *APITestSuite) TestEmailVerificationFlow() {
	s.register("John Doe", "johndoe", "john@example.com", "52998224725", "11999990001")

	row := s.userRow("john@example.com")
	s.Require().NotEmpty(row.VerifyToken)
	s.Require().False(row.EmailVerified)

	w := s.do(http.MethodGet, "/v1/users/verify-email/"+row.VerifyToken, nil, nil)
	s.Equal(http.StatusOK, w.Code)
	s.Contains(w.Body.String(), "email verified")

	verified := s.userRow("john@example.com")
	s.True(verified.EmailVerified)
	s.Empty(verified.VerifyToken)

	// The token is single use.
	w = s.do(http.MethodGet, "/v1/users/verify-email/"+row.VerifyToken, nil, nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
	s.Contains(w.Body.String(), "invalid or expired")
}

// ==================== PASSWORD RESET ====================

func (s *APITestSuite) TestPasswordResetFlow() {
	s.register("John Doe", "johndoe", "john@example.com", "52998224725", "11999990001")

	// The response never discloses whether the email exists.
	w := s.do(http.MethodPost, "/v1/users/password-reset", gin.H{"email": "ghost@example.com"}, nil)
	s.Equal(http.StatusAccepted, w.Code)

	w = s.do(http.MethodPost, "/v1/users/password-reset", gin.H{"email": "john@example.com"}, nil)
	s.Equal(http.StatusAccepted, w.Code)

	resetToken := s.userRow("john@example.com").ResetToken
	s.Require().NotEmpty(resetToken)

	// Weak replacement passwords are rejected, token stays valid.
	w = s.do(http.MethodPost, "/v1/users/password-reset/"+resetToken, gin.H{"password": "short"}, nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)

	w = s.do(http.MethodPost, "/v1/users/password-reset/"+resetToken, gin.H{"password": "brand-new-password"}, nil)
	s.Equal(http.StatusOK, w.Code)

	// Old password is dead, new one works, token is consumed.
	w = s.do(http.MethodPost, "/v1/auth/login", gin.H{"email": "john@example.com", "password": "password123"}, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	s.login("john@example.com", "brand-new-password")

	w = s.do(http.MethodPost, "/v1/users/password-reset/"+resetToken, gin.H{"password": "another-password"}, nil)
	s.Equal(http.StatusUnprocessableEntity, w.Code)
}

// ==================== API CLIENTS ====================

func (s *APITestSuite) TestAPIClientLifecycle() {
	admin := s.adminToken()

	w := s.do(http.MethodPost, "/v1/clients", gin.H{"name": "billing-system", "description": "invoice backend"}, bearer(admin))
	s.Require().Equal(http.StatusCreated, w.Code, w.Body.String())
	created := s.decode(w)
	key := created["token"].(string)
	clientID := int64(created["id"].(float64))
	s.Require().NotEmpty(key)

	// The key is disclosed at creation only.
	w = s.do(http.MethodGet, "/v1/clients", nil, bearer(admin))
	s.Require().Equal(http.StatusOK, w.Code)
	s.NotContains(w.Body.String(), key)

	// A valid key authenticates an external system.
	w = s.do(http.MethodPost, "/v1/clients/validate", nil, apiKey(key))
	s.Equal(http.StatusOK, w.Code)
	s.Equal("billing-system", s.decode(w)["name"])

	// Validation records activity.
	var row mysql.ClientSchema
	s.Require().NoError(s.db.First(&row, clientID).Error)
	s.NotNil(row.LastSeenAt)

	w = s.do(http.MethodPost, "/v1/clients/validate", nil, nil)
	s.Equal(http.StatusUnauthorized, w.Code)

	w = s.do(http.MethodPost, "/v1/clients/validate", nil, apiKey("not-a-real-key"))
	s.Equal(http.StatusForbidden, w.Code)

	// Revocation cuts access without deleting the record.
	w = s.do(http.MethodPut, fmt.Sprintf("/v1/clients/%d", clientID), gin.H{"active": false}, bearer(admin))
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodPost, "/v1/clients/validate", nil, apiKey(key))
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodDelete, fmt.Sprintf("/v1/clients/%d", clientID), nil, bearer(admin))
	s.Equal(http.StatusNoContent, w.Code)
}

func (s *APITestSuite) TestClientManagementIsAdminOnly() {
	s.register("Alice Silva", "alice", "alice@example.com", "52998224725", "11999990001")
	aliceToken := s.login("alice@example.com", "password123")["access_token"].(string)

	w := s.do(http.MethodPost, "/v1/clients", gin.H{"name": "rogue-system"}, bearer(aliceToken))
	s.Equal(http.StatusForbidden, w.Code)

	w = s.do(http.MethodGet, "/v1/clients", nil, bearer(aliceToken))
	s.Equal(http.StatusForbidden, w.Code)
}

func (s *APITestSuite) TestCheckExistsRequiresAPIKey() {
	s.register("John Doe", "johndoe", "john@example.com", "52998224725", "11999990001")

	admin := s.adminToken()
	w := s.do(http.MethodPost, "/v1/clients", gin.H{"name": "signup-frontend"}, bearer(admin))
	s.Require().Equal(http.StatusCreated, w.Code)
	key := s.decode(w)["token"].(string)

	w = s.do(http.MethodPost, "/v1/users/check", gin.H{"cpf": "529.982.247-25", "phone": "11888880000"}, apiKey(key))
	s.Require().Equal(http.StatusOK, w.Code, w.Body.String())
	body := s.decode(w)
	s.Equal(true, body["cpf_exists"])
	s.Equal(false, body["phone_exists"])

	w = s.do(http.MethodPost, "/v1/users/check", gin.H{"cpf": "52998224725"}, nil)
	s.Equal(http.StatusUnauthorized, w.Code)
}

// ==================== CACHE ====================

func (s *APITestSuite) TestCacheStaysConsistentAcrossUpdates() {
	a := s.register("Alice Silva", "alice", "alice@example.com", "52998224725", "11999990001")
	admin := s.adminToken()
	aliceID := int64(a["id"].(float64))
	path := fmt.Sprintf("/v1/users/%d", aliceID)

	// Two reads, the second one served from the cache.
	w := s.do(http.MethodGet, path, nil, bearer(admin))
	s.Require().Equal(http.StatusOK, w.Code)
	w = s.do(http.MethodGet, path, nil, bearer(admin))
	s.Require().Equal(http.StatusOK, w.Code)

	// An update must invalidate, not serve the stale entry.
	w = s.do(http.MethodPut, path, gin.H{"name": "Alice Souza"}, bearer(admin))
	s.Require().Equal(http.StatusOK, w.Code)

	w = s.do(http.MethodGet, path, nil, bearer(admin))
	s.Require().Equal(http.StatusOK, w.Code)
	s.Equal("Alice Souza", s.decode(w)["name"])

	// Reads keep working when Redis is gone.
	s.mr.Close()
	w = s.do(http.MethodGet, path, nil, bearer(admin))
	s.Equal(http.StatusOK, w.Code)
}

// ==================== RATE LIMITING ====================

// A separate router instance with the limiter enabled, so the rest of
// the suite stays unthrottled.
func (s *APITestSuite) TestRateLimiterThrottlesV1() {
	log := zaptest.NewLogger(s.T())
	s.mr.SetTime(time.Unix(1700000000, 0))

	limiter := ginmiddleware.NewRateLimiter(s.rdb, config.RateLimitConfig{
		Enabled:           true,
		RequestsPerSecond: 1,
		BurstCapacity:     2,
	}, log)

	router := ginrouter.SetupRouter(ginrouter.Deps{
		Env:         "test",
		Tokens:      s.tokens,
		RateLimiter: limiter,
		Log:         log,
	})

	send := func(path string) int {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		req.RemoteAddr = "10.0.0.1:40000"
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w.Code
	}

	// Burst of two allowed, third rejected.
	s.Equal(http.StatusUnauthorized, send("/v1/users/me"))
	s.Equal(http.StatusUnauthorized, send("/v1/users/me"))
	s.Equal(http.StatusTooManyRequests, send("/v1/users/me"))

	// Probes are never throttled.
	s.Equal(http.StatusOK, send("/health"))
}
