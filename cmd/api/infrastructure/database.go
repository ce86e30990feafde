package infrastructure

import (
	"fmt"
	"time"

	"user-auth-service/internal/adapter/db/mysql"
	"user-auth-service/internal/config"
	domain "user-auth-service/internal/domain/user"
	"user-auth-service/pkg/logger"
	"user-auth-service/pkg/security"

	"go.uber.org/zap"
	mysqldriver "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

// NewDatabase connects to MySQL, configures the connection pool, runs
// schema migrations and seeds the initial admin account. The first
// connection is retried until DB_CONNECT_MAX_WAIT_SECONDS elapses, so
// the service survives being started before its database container is
// ready to accept connections.
func NewDatabase(cfg *config.Config, l *zap.Logger) (*gorm.DB, error) {
	gormLogger := logger.NewGormLoggerWithConfig(l, cfg.Logger.SlowQuerySeconds, cfg.Logger.Level)

	db, err := openWithRetry(cfg, &gorm.Config{Logger: gormLogger}, l)
	if err != nil {
		return nil, err
	}

	// Get underlying sql.DB for connection pool configuration
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	// Configure connection pool
	sqlDB.SetMaxOpenConns(cfg.DB.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.DB.MaxIdleConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.DB.ConnMaxLifetime) * time.Second)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.DB.ConnMaxIdleTime) * time.Second)

	l.Info("database connected successfully",
		zap.Int("max_open_conns", cfg.DB.MaxOpenConns),
		zap.Int("max_idle_conns", cfg.DB.MaxIdleConns),
		zap.Int("conn_max_lifetime_seconds", cfg.DB.ConnMaxLifetime),
		zap.Int("conn_max_idle_time_seconds", cfg.DB.ConnMaxIdleTime),
	)

	if err := db.AutoMigrate(&mysql.UserSchema{}, &mysql.ClientSchema{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database schema: %w", err)
	}

	if err := seedAdmin(db, cfg, l); err != nil {
		return nil, err
	}

	return db, nil
}

// openWithRetry opens the GORM connection, retrying every
// DB_CONNECT_RETRY_SECONDS while the database is still coming up.
// gorm.Open pings on initialization, so a returned handle is live.
func openWithRetry(cfg *config.Config, gormCfg *gorm.Config, l *zap.Logger) (*gorm.DB, error) {
	retry := time.Duration(cfg.DB.ConnectRetrySeconds) * time.Second
	if retry <= 0 {
		retry = time.Second
	}
	deadline := time.Now().Add(time.Duration(cfg.DB.ConnectMaxWaitSeconds) * time.Second)

	for {
		db, err := gorm.Open(mysqldriver.Open(cfg.DB.DSN()), gormCfg)
		if err == nil {
			return db, nil
		}

		if time.Now().Add(retry).After(deadline) {
			return nil, fmt.Errorf("database not reachable after %ds: %w", cfg.DB.ConnectMaxWaitSeconds, err)
		}

		l.Warn("database not ready, retrying",
			zap.Error(err),
			zap.String("host", cfg.DB.Host),
			zap.Duration("retry_in", retry),
		)
		time.Sleep(retry)
	}
}

// seedAdmin creates the first admin account from ADMIN_EMAIL and
// ADMIN_PASSWORD when no admin exists yet. Registration only ever
// creates clients, so without the seed there would be nobody able to
// promote them.
func seedAdmin(db *gorm.DB, cfg *config.Config, l *zap.Logger) error {
	if cfg.App.AdminEmail == "" || cfg.App.AdminPassword == "" {
		l.Info("admin seed skipped, ADMIN_EMAIL or ADMIN_PASSWORD not set")
		return nil
	}

	var count int64
	if err := db.Model(&mysql.UserSchema{}).Where("role = ?", domain.RoleAdmin).Count(&count).Error; err != nil {
		return fmt.Errorf("failed to check for existing admin: %w", err)
	}
	if count > 0 {
		return nil
	}

	hash, err := security.HashPassword(cfg.App.AdminPassword)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := mysql.UserSchema{
		Name:          "Administrator",
		Username:      "admin",
		Email:         cfg.App.AdminEmail,
		Role:          domain.RoleAdmin,
		PasswordHash:  hash,
		Active:        true,
		EmailVerified: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return fmt.Errorf("failed to seed admin account: %w", err)
	}

	l.Info("admin account seeded", zap.Int64("id", admin.ID), zap.String("email", cfg.App.AdminEmail))
	return nil
}

// CloseDatabase closes the database connection
func CloseDatabase(db *gorm.DB) error {
	if db == nil {
		return nil
	}

	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if err := sqlDB.Close(); err != nil {
		return fmt.Errorf("failed to close database: %w", err)
	}

	return nil
}
