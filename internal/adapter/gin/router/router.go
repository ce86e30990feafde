package router

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	httpSwagger "github.com/swaggo/http-swagger/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"user-auth-service/internal/adapter/gin/handler"
	"user-auth-service/internal/adapter/gin/middleware"
	domain "user-auth-service/internal/domain/user"
	"user-auth-service/internal/usecase/apiclient"
	redisclient "user-auth-service/pkg/redis"
	"user-auth-service/pkg/token"
)

// Deps bundles everything the router needs to wire routes and
// middleware.
type Deps struct {
	Env string

	AuthHandler   *handler.AuthHandler
	UserHandler   *handler.UserHandler
	ClientHandler *handler.ClientHandler

	Tokens      *token.Manager
	Clients     apiclient.Usecase
	RateLimiter *middleware.RateLimiter

	DB    *gorm.DB
	Redis *redisclient.Client

	Log *zap.Logger
}

// SetupRouter configures and returns a Gin router with all routes and
// middleware.
func SetupRouter(deps Deps) *gin.Engine {
	if deps.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(middleware.Recovery(deps.Log))
	router.Use(middleware.RequestID())
	router.Use(middleware.RequestLogger(deps.Log))

	// Probes stay outside the rate limiter so container healthchecks
	// are never throttled.
	router.GET("/health", healthHandler)
	router.GET("/ready", readyHandler(deps.DB, deps.Redis))

	// Swagger UI over the OpenAPI document
	router.StaticFile("/openapi.json", "./api/openapi.json")
	router.GET("/swagger/*any", gin.WrapH(httpSwagger.Handler(
		httpSwagger.URL("/openapi.json"),
	)))

	authRequired := middleware.Auth(deps.Tokens, deps.Log)
	adminOnly := middleware.RequireRole(domain.RoleAdmin)
	apiKey := middleware.APIKey(deps.Clients, deps.Log)

	// API v1 routes
	v1 := router.Group("/v1")
	if deps.RateLimiter != nil {
		v1.Use(deps.RateLimiter.Handler())
	}
	{
		auth := v1.Group("/auth")
		{
			auth.POST("/login", deps.AuthHandler.Login)
			auth.POST("/refresh", deps.AuthHandler.Refresh)
		}

		users := v1.Group("/users")
		{
			users.POST("", deps.UserHandler.Register)
			users.GET("/verify-email/:token", deps.UserHandler.VerifyEmail)
			users.POST("/password-reset", deps.UserHandler.RequestPasswordReset)
			users.POST("/password-reset/:token", deps.UserHandler.ResetPassword)
			users.POST("/check", apiKey, deps.UserHandler.CheckExists)

			users.GET("/me", authRequired, deps.UserHandler.GetMe)
			users.GET("/:id", authRequired, deps.UserHandler.GetUser)
			users.PUT("/:id", authRequired, deps.UserHandler.UpdateUser)
			users.DELETE("/:id", authRequired, adminOnly, deps.UserHandler.DeleteUser)
			users.GET("", authRequired, adminOnly, deps.UserHandler.ListUsers)
		}

		clients := v1.Group("/clients")
		{
			clients.POST("/validate", apiKey, deps.ClientHandler.Validate)

			manage := clients.Group("", authRequired, adminOnly)
			{
				manage.POST("", deps.ClientHandler.CreateClient)
				manage.GET("", deps.ClientHandler.ListClients)
				manage.GET("/:id", deps.ClientHandler.GetClient)
				manage.PUT("/:id", deps.ClientHandler.UpdateClient)
				manage.DELETE("/:id", deps.ClientHandler.DeleteClient)
			}
		}
	}

	return router
}

// healthHandler reports liveness. It succeeds as long as the process
// accepts requests.
func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "user-auth-service",
	})
}

// readyHandler reports readiness. It fails while the database or Redis
// are unreachable so orchestrators keep traffic away.
func readyHandler(db *gorm.DB, redis *redisclient.Client) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		checks := gin.H{}
		healthy := true

		if db != nil {
			checks["database"] = "ok"
			if sqlDB, err := db.DB(); err != nil {
				checks["database"] = err.Error()
				healthy = false
			} else if err := sqlDB.PingContext(ctx); err != nil {
				checks["database"] = err.Error()
				healthy = false
			}
		}

		if redis != nil {
			checks["redis"] = "ok"
			if err := redis.Ping(ctx); err != nil {
				checks["redis"] = err.Error()
				healthy = false
			}
		}

		if !healthy {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not_ready",
				"checks": checks,
			})
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"status": "ready",
			"checks": checks,
		})
	}
}
