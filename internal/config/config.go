package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const defaultJWTSecret = "default_secret"

// Config holds all configuration for the application
type Config struct {
	AppMode string
	Port    string
	Store   StoreConfig
	Remote  RemoteConfig
	JWT     JWTConfig
	Cookie  CookieConfig
	Admin   AdminConfig
	Log     LogConfig
	Refresh RefreshConfig
}

// StoreConfig holds local store configuration
type StoreConfig struct {
	Driver   string // sqlite or mysql
	Path     string // sqlite file, ":memory:" for tests
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// RemoteConfig holds the upstream user feed configuration
type RemoteConfig struct {
	URL        string
	APIKey     string
	Timeout    time.Duration
	RetryCount int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// CookieConfig holds cookie configuration
type CookieConfig struct {
	Secure   bool
	SameSite string
	Domain   string
}

// AdminConfig seeds the first dashboard operator
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string
	Format string
}

// RefreshConfig holds scheduled job configuration. Empty schedules disable the job.
type RefreshConfig struct {
	Schedule             string
	TokenCleanupSchedule string
	WarmOnStart          bool
}

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// .env is optional; production reads the real environment
	_ = godotenv.Load()

	// trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	store, err := loadStoreConfig(appMode)
	if err != nil {
		return nil, err
	}

	remote, err := loadRemoteConfig()
	if err != nil {
		return nil, err
	}

	jwtCfg := loadJWTConfig(appMode)
	if appMode == "prod" && (jwtCfg.Secret == defaultJWTSecret || jwtCfg.RefreshSecret == defaultJWTSecret) {
		return nil, fmt.Errorf("PROD_JWT_SECRET and PROD_JWT_REFRESH_SECRET must be set in prod mode")
	}

	warm, _ := strconv.ParseBool(getEnv("REFRESH_ON_START", "false"))

	config := &Config{
		AppMode: appMode,
		Port:    getEnv("PORT", "3000"),
		Store:   store,
		Remote:  remote,
		JWT:     jwtCfg,
		Cookie:  loadCookieConfig(appMode),
		Admin: AdminConfig{
			Email:    strings.ToLower(strings.TrimSpace(getEnv("ADMIN_EMAIL", ""))),
			Password: getEnv("ADMIN_PASSWORD", ""),
			Name:     getEnv("ADMIN_NAME", "Administrator"),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", defaultLogFormat(appMode)),
		},
		Refresh: RefreshConfig{
			Schedule:             strings.TrimSpace(getEnv("REFRESH_SCHEDULE", "")),
			TokenCleanupSchedule: strings.TrimSpace(getEnv("TOKEN_CLEANUP_SCHEDULE", "@daily")),
			WarmOnStart:          warm,
		},
	}

	return config, nil
}

// loadStoreConfig loads local store config based on mode
func loadStoreConfig(mode string) (StoreConfig, error) {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	driver := strings.ToLower(strings.TrimSpace(getEnv("STORE_DRIVER", "sqlite")))
	if driver != "sqlite" && driver != "mysql" {
		return StoreConfig{}, fmt.Errorf("invalid STORE_DRIVER: '%s' (must be 'sqlite' or 'mysql')", driver)
	}

	return StoreConfig{
		Driver:   driver,
		Path:     getEnv("STORE_PATH", "data/users.db"),
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "lendsqr_admin"),
	}, nil
}

// loadRemoteConfig loads the user feed settings
func loadRemoteConfig() (RemoteConfig, error) {
	url := strings.TrimSpace(getEnv("REMOTE_USERS_URL", ""))
	if url == "" {
		return RemoteConfig{}, fmt.Errorf("REMOTE_USERS_URL is required")
	}

	timeout, err := time.ParseDuration(getEnv("REMOTE_TIMEOUT", "10s"))
	if err != nil || timeout <= 0 {
		return RemoteConfig{}, fmt.Errorf("invalid REMOTE_TIMEOUT: %q", getEnv("REMOTE_TIMEOUT", ""))
	}

	retries, err := strconv.Atoi(getEnv("REMOTE_RETRY_COUNT", "0"))
	if err != nil || retries < 0 {
		return RemoteConfig{}, fmt.Errorf("invalid REMOTE_RETRY_COUNT: %q", getEnv("REMOTE_RETRY_COUNT", ""))
	}

	return RemoteConfig{
		URL:        url,
		APIKey:     getEnv("REMOTE_API_KEY", ""),
		Timeout:    timeout,
		RetryCount: retries,
	}, nil
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", defaultJWTSecret),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", defaultJWTSecret),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

// loadCookieConfig loads cookie config based on mode
func loadCookieConfig(mode string) CookieConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	secure, _ := strconv.ParseBool(getEnv(prefix+"COOKIE_SECURE", "false"))

	return CookieConfig{
		Secure:   secure,
		SameSite: getEnv("COOKIE_SAMESITE", "lax"),
		Domain:   getEnv("COOKIE_DOMAIN", ""),
	}
}

func defaultLogFormat(mode string) string {
	if mode == "dev" {
		return "console"
	}
	return "json"
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" {
		if c.IsDev() {
			return "*"
		}
		return "https://admin.lendsqr.com"
	}
	return origins
}
