package di

import (
	"fmt"
	"time"

	"user-auth-service/cmd/api/infrastructure"
	"user-auth-service/internal/adapter/cache"
	"user-auth-service/internal/adapter/db/mysql"
	ginhandler "user-auth-service/internal/adapter/gin/handler"
	ginmiddleware "user-auth-service/internal/adapter/gin/middleware"
	"user-auth-service/internal/adapter/repository/cached"
	"user-auth-service/internal/config"
	"user-auth-service/internal/usecase/apiclient"
	"user-auth-service/internal/usecase/auth"
	"user-auth-service/internal/usecase/user"
	"user-auth-service/pkg/mailer"
	redisclient "user-auth-service/pkg/redis"
	"user-auth-service/pkg/token"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Container holds all application dependencies
type Container struct {
	Config      *config.Config
	Logger      *zap.Logger
	DB          *gorm.DB
	RedisClient *redisclient.Client

	TokenManager *token.Manager

	UserUC   user.Usecase
	AuthUC   auth.Usecase
	ClientUC apiclient.Usecase

	RateLimiter *ginmiddleware.RateLimiter

	AuthHandler   *ginhandler.AuthHandler
	UserHandler   *ginhandler.UserHandler
	ClientHandler *ginhandler.ClientHandler
}

// NewContainer creates and initializes all application dependencies
func NewContainer(cfg *config.Config, l *zap.Logger) (*Container, error) {
	// Validate configuration before initializing any dependencies
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Initialize database
	db, err := infrastructure.NewDatabase(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Initialize Redis client
	rdb, err := infrastructure.NewRedisClient(cfg, l)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Redis: %w", err)
	}

	// Initialize cache layer
	userCache := cache.NewRedisUserCache(
		rdb.Client,
		time.Duration(cfg.Redis.CacheTTL)*time.Second,
		l,
	)

	// Initialize repositories
	userRepo := cached.NewCachedUserRepository(mysql.NewUserRepoMySQL(db, l), userCache, l)
	clientRepo := mysql.NewClientRepoMySQL(db, l)

	// Initialize token manager
	tokenManager := token.NewManager(
		cfg.Auth.JWTSecret,
		time.Duration(cfg.Auth.AccessTokenExpireMinutes)*time.Minute,
		time.Duration(cfg.Auth.RefreshTokenExpireDays)*24*time.Hour,
	)

	// Initialize use cases
	userUC := user.New(userRepo, newMailer(cfg, l), user.Config{
		BaseURL:        cfg.App.BaseURL,
		VerifyTokenTTL: time.Duration(cfg.Auth.EmailVerificationTokenExpireHours) * time.Hour,
		ResetTokenTTL:  time.Duration(cfg.Auth.PasswordResetTokenExpireHours) * time.Hour,
	}, l)
	authUC := auth.New(userRepo, tokenManager, l)
	clientUC := apiclient.New(clientRepo, l)

	// Initialize rate limiter
	rateLimiter := ginmiddleware.NewRateLimiter(rdb.Client, cfg.RateLimit, l)

	return &Container{
		Config:        cfg,
		Logger:        l,
		DB:            db,
		RedisClient:   rdb,
		TokenManager:  tokenManager,
		UserUC:        userUC,
		AuthUC:        authUC,
		ClientUC:      clientUC,
		RateLimiter:   rateLimiter,
		AuthHandler:   ginhandler.NewAuthHandler(authUC, l),
		UserHandler:   ginhandler.NewUserHandler(userUC, l),
		ClientHandler: ginhandler.NewClientHandler(clientUC, l),
	}, nil
}

// newMailer selects the outgoing mail implementation. Without a
// configured MAIL_HOST the service still runs, it just logs the links
// it would have mailed.
func newMailer(cfg *config.Config, l *zap.Logger) user.Mailer {
	if cfg.Mail.Host == "" {
		return mailer.NewNoop(l)
	}
	return mailer.NewSMTP(mailer.Config{
		Host:     cfg.Mail.Host,
		Port:     cfg.Mail.Port,
		Username: cfg.Mail.Username,
		Password: cfg.Mail.Password,
		From:     cfg.Mail.From,
		FromName: cfg.Mail.FromName,
	}, l)
}

// Close closes all resources held by the container
func (c *Container) Close() error {
	var errs []error

	// Close Redis connection
	if c.RedisClient != nil {
		if err := c.RedisClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed to close Redis: %w", err))
		}
	}

	// Close database connection
	if c.DB != nil {
		if err := infrastructure.CloseDatabase(c.DB); err != nil {
			errs = append(errs, fmt.Errorf("failed to close database: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("container close errors: %v", errs)
	}

	return nil
}
