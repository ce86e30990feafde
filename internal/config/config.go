package config

import (
	"errors"
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	DB        DatabaseConfig
	App       AppConfig
	Auth      AuthConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Mail      MailConfig
	Logger    LoggerConfig
}

// DatabaseConfig holds configuration for the MySQL database
type DatabaseConfig struct {
	Host     string `mapstructure:"MYSQL_HOST"`
	Port     string `mapstructure:"MYSQL_PORT"`
	User     string `mapstructure:"MYSQL_USER"`
	Password string `mapstructure:"MYSQL_PASSWORD"`
	Name     string `mapstructure:"MYSQL_DATABASE"`

	MaxOpenConns    int `mapstructure:"DB_MAX_OPEN_CONNS"`
	MaxIdleConns    int `mapstructure:"DB_MAX_IDLE_CONNS"`
	ConnMaxLifetime int `mapstructure:"DB_CONN_MAX_LIFETIME_SECONDS"`
	ConnMaxIdleTime int `mapstructure:"DB_CONN_MAX_IDLE_TIME_SECONDS"`

	// Startup gate: how often to retry the first connection and how
	// long to keep trying before giving up.
	ConnectRetrySeconds   int `mapstructure:"DB_CONNECT_RETRY_SECONDS"`
	ConnectMaxWaitSeconds int `mapstructure:"DB_CONNECT_MAX_WAIT_SECONDS"`
}

// AppConfig holds configuration for the application server
type AppConfig struct {
	Env                    string `mapstructure:"APP_ENV"`
	HTTPPort               string `mapstructure:"HTTP_PORT"`
	BaseURL                string `mapstructure:"APP_BASE_URL"`
	ShutdownTimeoutSeconds int    `mapstructure:"SHUTDOWN_TIMEOUT_SECONDS"`

	// Seed credentials for the initial admin account, created on
	// startup when no admin exists.
	AdminEmail    string `mapstructure:"ADMIN_EMAIL"`
	AdminPassword string `mapstructure:"ADMIN_PASSWORD"`
}

// AuthConfig holds configuration for token issuance
type AuthConfig struct {
	JWTSecret                string `mapstructure:"JWT_SECRET"`
	JWTAlgorithm             string `mapstructure:"JWT_ALGORITHM"`
	AccessTokenExpireMinutes int    `mapstructure:"ACCESS_TOKEN_EXPIRE_MINUTES"`
	RefreshTokenExpireDays   int    `mapstructure:"REFRESH_TOKEN_EXPIRE_DAYS"`

	EmailVerificationTokenExpireHours int `mapstructure:"EMAIL_VERIFICATION_TOKEN_EXPIRE_HOURS"`
	PasswordResetTokenExpireHours     int `mapstructure:"PASSWORD_RESET_TOKEN_EXPIRE_HOURS"`
}

// RedisConfig holds configuration for the Redis cache
type RedisConfig struct {
	Host         string `mapstructure:"REDIS_HOST"`
	Port         string `mapstructure:"REDIS_PORT"`
	Password     string `mapstructure:"REDIS_PASSWORD"`
	DB           int    `mapstructure:"REDIS_DB"`
	CacheTTL     int    `mapstructure:"REDIS_CACHE_TTL_SECONDS"`
	MaxRetries   int    `mapstructure:"REDIS_MAX_RETRIES"`
	PoolSize     int    `mapstructure:"REDIS_POOL_SIZE"`
	MinIdleConns int    `mapstructure:"REDIS_MIN_IDLE_CONNS"`
}

// RateLimitConfig holds configuration for the request rate limiter
type RateLimitConfig struct {
	Enabled           bool    `mapstructure:"RATE_LIMIT_ENABLED"`
	RequestsPerSecond float64 `mapstructure:"RATE_LIMIT_REQUESTS_PER_SECOND"`
	BurstCapacity     int     `mapstructure:"RATE_LIMIT_BURST_CAPACITY"`
}

// MailConfig holds configuration for outgoing mail. An empty Host
// disables sending.
type MailConfig struct {
	Host     string `mapstructure:"MAIL_HOST"`
	Port     int    `mapstructure:"MAIL_PORT"`
	Username string `mapstructure:"MAIL_USERNAME"`
	Password string `mapstructure:"MAIL_PASSWORD"`
	From     string `mapstructure:"MAIL_FROM"`
	FromName string `mapstructure:"MAIL_FROM_NAME"`
}

// LoggerConfig holds configuration for the logger
type LoggerConfig struct {
	Level            string  `mapstructure:"LOG_LEVEL"`
	Format           string  `mapstructure:"LOG_FORMAT"`
	OutputPath       string  `mapstructure:"LOG_OUTPUT_PATH"`
	SlowQuerySeconds float64 `mapstructure:"LOG_SLOW_QUERY_SECONDS"`
	EnableSampling   bool    `mapstructure:"LOG_ENABLE_SAMPLING"`
	ServiceName      string  `mapstructure:"SERVICE_NAME"`
	ServiceVersion   string  `mapstructure:"SERVICE_VERSION"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (*Config, error) {
	// Set defaults first
	setDefaults()

	viper.AddConfigPath(path)
	viper.SetConfigName("app") // Look for app.env
	viper.SetConfigType("env")

	viper.AutomaticEnv() // Read from environment variables

	// Try to read config file
	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is okay if we have env vars
	}

	var config Config

	// Manually populate config from viper
	config.DB.Host = viper.GetString("MYSQL_HOST")
	config.DB.Port = viper.GetString("MYSQL_PORT")
	config.DB.User = viper.GetString("MYSQL_USER")
	config.DB.Password = viper.GetString("MYSQL_PASSWORD")
	config.DB.Name = viper.GetString("MYSQL_DATABASE")
	config.DB.MaxOpenConns = viper.GetInt("DB_MAX_OPEN_CONNS")
	config.DB.MaxIdleConns = viper.GetInt("DB_MAX_IDLE_CONNS")
	config.DB.ConnMaxLifetime = viper.GetInt("DB_CONN_MAX_LIFETIME_SECONDS")
	config.DB.ConnMaxIdleTime = viper.GetInt("DB_CONN_MAX_IDLE_TIME_SECONDS")
	config.DB.ConnectRetrySeconds = viper.GetInt("DB_CONNECT_RETRY_SECONDS")
	config.DB.ConnectMaxWaitSeconds = viper.GetInt("DB_CONNECT_MAX_WAIT_SECONDS")

	config.App.Env = viper.GetString("APP_ENV")
	config.App.HTTPPort = viper.GetString("HTTP_PORT")
	config.App.BaseURL = viper.GetString("APP_BASE_URL")
	config.App.ShutdownTimeoutSeconds = viper.GetInt("SHUTDOWN_TIMEOUT_SECONDS")
	config.App.AdminEmail = viper.GetString("ADMIN_EMAIL")
	config.App.AdminPassword = viper.GetString("ADMIN_PASSWORD")

	config.Auth.JWTSecret = viper.GetString("JWT_SECRET")
	config.Auth.JWTAlgorithm = viper.GetString("JWT_ALGORITHM")
	config.Auth.AccessTokenExpireMinutes = viper.GetInt("ACCESS_TOKEN_EXPIRE_MINUTES")
	config.Auth.RefreshTokenExpireDays = viper.GetInt("REFRESH_TOKEN_EXPIRE_DAYS")
	config.Auth.EmailVerificationTokenExpireHours = viper.GetInt("EMAIL_VERIFICATION_TOKEN_EXPIRE_HOURS")
	config.Auth.PasswordResetTokenExpireHours = viper.GetInt("PASSWORD_RESET_TOKEN_EXPIRE_HOURS")

	config.Redis.Host = viper.GetString("REDIS_HOST")
	config.Redis.Port = viper.GetString("REDIS_PORT")
	config.Redis.Password = viper.GetString("REDIS_PASSWORD")
	config.Redis.DB = viper.GetInt("REDIS_DB")
	config.Redis.CacheTTL = viper.GetInt("REDIS_CACHE_TTL_SECONDS")
	config.Redis.MaxRetries = viper.GetInt("REDIS_MAX_RETRIES")
	config.Redis.PoolSize = viper.GetInt("REDIS_POOL_SIZE")
	config.Redis.MinIdleConns = viper.GetInt("REDIS_MIN_IDLE_CONNS")

	config.RateLimit.Enabled = viper.GetBool("RATE_LIMIT_ENABLED")
	config.RateLimit.RequestsPerSecond = viper.GetFloat64("RATE_LIMIT_REQUESTS_PER_SECOND")
	config.RateLimit.BurstCapacity = viper.GetInt("RATE_LIMIT_BURST_CAPACITY")

	config.Mail.Host = viper.GetString("MAIL_HOST")
	config.Mail.Port = viper.GetInt("MAIL_PORT")
	config.Mail.Username = viper.GetString("MAIL_USERNAME")
	config.Mail.Password = viper.GetString("MAIL_PASSWORD")
	config.Mail.From = viper.GetString("MAIL_FROM")
	config.Mail.FromName = viper.GetString("MAIL_FROM_NAME")

	config.Logger.Level = viper.GetString("LOG_LEVEL")
	config.Logger.Format = viper.GetString("LOG_FORMAT")
	config.Logger.OutputPath = viper.GetString("LOG_OUTPUT_PATH")
	config.Logger.SlowQuerySeconds = viper.GetFloat64("LOG_SLOW_QUERY_SECONDS")
	config.Logger.EnableSampling = viper.GetBool("LOG_ENABLE_SAMPLING")
	config.Logger.ServiceName = viper.GetString("SERVICE_NAME")
	config.Logger.ServiceVersion = viper.GetString("SERVICE_VERSION")

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("MYSQL_HOST", "localhost")
	viper.SetDefault("MYSQL_PORT", "3306")
	viper.SetDefault("MYSQL_USER", "app")
	viper.SetDefault("MYSQL_PASSWORD", "app")
	viper.SetDefault("MYSQL_DATABASE", "user_auth_service")
	viper.SetDefault("DB_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DB_MAX_IDLE_CONNS", 5)
	viper.SetDefault("DB_CONN_MAX_LIFETIME_SECONDS", 300)
	viper.SetDefault("DB_CONN_MAX_IDLE_TIME_SECONDS", 60)
	viper.SetDefault("DB_CONNECT_RETRY_SECONDS", 2)
	viper.SetDefault("DB_CONNECT_MAX_WAIT_SECONDS", 60)

	viper.SetDefault("APP_ENV", "development")
	viper.SetDefault("HTTP_PORT", "8000")
	viper.SetDefault("APP_BASE_URL", "http://localhost:8000")
	viper.SetDefault("SHUTDOWN_TIMEOUT_SECONDS", 10)

	viper.SetDefault("JWT_ALGORITHM", "HS256")
	viper.SetDefault("ACCESS_TOKEN_EXPIRE_MINUTES", 30)
	viper.SetDefault("REFRESH_TOKEN_EXPIRE_DAYS", 7)
	viper.SetDefault("EMAIL_VERIFICATION_TOKEN_EXPIRE_HOURS", 48)
	viper.SetDefault("PASSWORD_RESET_TOKEN_EXPIRE_HOURS", 1)

	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_CACHE_TTL_SECONDS", 300)
	viper.SetDefault("REDIS_MAX_RETRIES", 3)
	viper.SetDefault("REDIS_POOL_SIZE", 10)
	viper.SetDefault("REDIS_MIN_IDLE_CONNS", 2)

	viper.SetDefault("RATE_LIMIT_ENABLED", true)
	viper.SetDefault("RATE_LIMIT_REQUESTS_PER_SECOND", 10.0)
	viper.SetDefault("RATE_LIMIT_BURST_CAPACITY", 20)

	viper.SetDefault("MAIL_PORT", 587)

	// Logger defaults
	env := viper.GetString("APP_ENV")
	if env == "production" {
		viper.SetDefault("LOG_LEVEL", "info")
		viper.SetDefault("LOG_FORMAT", "json")
		viper.SetDefault("LOG_ENABLE_SAMPLING", true)
	} else {
		viper.SetDefault("LOG_LEVEL", "debug")
		viper.SetDefault("LOG_FORMAT", "console")
		viper.SetDefault("LOG_ENABLE_SAMPLING", false)
	}
	viper.SetDefault("LOG_OUTPUT_PATH", "stdout")
	viper.SetDefault("LOG_SLOW_QUERY_SECONDS", 0.2)
	viper.SetDefault("SERVICE_NAME", "user-auth-service")
	viper.SetDefault("SERVICE_VERSION", "1.0.0")
}

// Validate checks the configuration for values the service cannot
// start without.
func (c *Config) Validate() error {
	if c.Auth.JWTSecret == "" {
		return errors.New("JWT_SECRET must be set")
	}
	if c.App.Env == "production" && c.Auth.JWTSecret == "change-me" {
		return errors.New("JWT_SECRET must be changed from the example value in production")
	}
	if c.Auth.JWTAlgorithm != "HS256" {
		return fmt.Errorf("unsupported JWT_ALGORITHM %q, only HS256 is supported", c.Auth.JWTAlgorithm)
	}
	if c.Auth.AccessTokenExpireMinutes <= 0 {
		return errors.New("ACCESS_TOKEN_EXPIRE_MINUTES must be positive")
	}
	if c.Auth.RefreshTokenExpireDays <= 0 {
		return errors.New("REFRESH_TOKEN_EXPIRE_DAYS must be positive")
	}
	if c.DB.Name == "" {
		return errors.New("MYSQL_DATABASE must be set")
	}
	if c.App.HTTPPort == "" {
		return errors.New("HTTP_PORT must be set")
	}
	return nil
}

// DSN returns the MySQL Data Source Name
func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

// Addr returns the Redis host:port address
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%s", c.Host, c.Port)
}
