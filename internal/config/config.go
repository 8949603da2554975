package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration. It is built once in main and
// passed explicitly into services; nothing reads the environment afterwards.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	App      AppConfig
	Points   PointsConfig
	XAPI     XAPIConfig
	Weekly   WeeklyConfig
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port        string
	FrontendURL string
}

// AppConfig holds session and bootstrap settings
type AppConfig struct {
	SessionTTL         time.Duration
	SessionIdleTimeout time.Duration
	// Wallet addresses promoted to admin on their first login
	AdminWallets []string
}

// PointsConfig holds the earning and anti-abuse rules
type PointsConfig struct {
	BasePointsPerView    int64
	SocialActionPoints   int64
	MinViewDuration      int
	ViewCooldown         time.Duration
	MaxActivePosts       int
	ReferralClaimBonus   int64
	ReferralRetweetBonus int64
	AssetVerifyCooldown  time.Duration
}

// XAPIConfig holds the X.com verification capability settings
type XAPIConfig struct {
	BearerToken string
	BaseURL     string
	Timeout     time.Duration
	// FailOpen treats a misconfigured or unreachable verification backend
	// as verified. Abuse trade-off; keep explicit and auditable.
	FailOpen bool
}

// WeeklyConfig holds the optional automatic prize rotation settings
type WeeklyConfig struct {
	AutoRotate      bool
	RotateInterval  time.Duration
	DefaultItemName string
	DefaultQuantity int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	_ = godotenv.Load()

	config := &Config{
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			DBName:   getEnv("DB_NAME", "roninads"),
		},
		Server: ServerConfig{
			Port:        getEnv("SERVER_PORT", "8080"),
			FrontendURL: getEnv("FRONTEND_URL", ""),
		},
		App: AppConfig{
			SessionTTL:         getEnvDuration("SESSION_TTL", 24*time.Hour),
			SessionIdleTimeout: getEnvDuration("SESSION_IDLE_TIMEOUT", time.Hour),
			AdminWallets:       getEnvList("ADMIN_WALLETS"),
		},
		Points: PointsConfig{
			BasePointsPerView:    getEnvInt64("BASE_POINTS_PER_VIEW", 1),
			SocialActionPoints:   getEnvInt64("SOCIAL_ACTION_POINTS", 1),
			MinViewDuration:      getEnvInt("MIN_VIEW_DURATION_SECONDS", 10),
			ViewCooldown:         getEnvDuration("VIEW_COOLDOWN", 24*time.Hour),
			MaxActivePosts:       getEnvInt("MAX_ACTIVE_POSTS", 3),
			ReferralClaimBonus:   getEnvInt64("REFERRAL_CLAIM_BONUS", 10),
			ReferralRetweetBonus: getEnvInt64("REFERRAL_RETWEET_BONUS", 1),
			AssetVerifyCooldown:  getEnvDuration("ASSET_VERIFY_COOLDOWN", time.Hour),
		},
		XAPI: XAPIConfig{
			BearerToken: getEnv("X_API_BEARER_TOKEN", ""),
			BaseURL:     getEnv("X_API_BASE_URL", "https://api.twitter.com/2"),
			Timeout:     getEnvDuration("X_API_TIMEOUT", 15*time.Second),
			FailOpen:    getEnvBool("X_VERIFY_FAIL_OPEN", true),
		},
		Weekly: WeeklyConfig{
			AutoRotate:      getEnvBool("WEEKLY_AUTO_ROTATE", false),
			RotateInterval:  getEnvDuration("WEEKLY_ROTATE_INTERVAL", 7*24*time.Hour),
			DefaultItemName: getEnv("WEEKLY_DEFAULT_ITEM", "Weekly Prize"),
			DefaultQuantity: getEnvInt("WEEKLY_DEFAULT_QUANTITY", 3),
		},
	}

	if config.Points.BasePointsPerView < 0 {
		return nil, fmt.Errorf("BASE_POINTS_PER_VIEW must not be negative")
	}
	if config.App.SessionTTL <= 0 || config.App.SessionIdleTimeout <= 0 {
		return nil, fmt.Errorf("session TTL and idle timeout must be positive")
	}

	return config, nil
}

// GetDSN returns the PostgreSQL connection string
func (c *Config) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Database.Host,
		c.Database.Port,
		c.Database.User,
		c.Database.Password,
		c.Database.DBName,
	)
}

// getEnv gets an environment variable with a fallback default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvInt64(key string, defaultValue int64) int64 {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvBool(key string, defaultValue bool) bool {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return defaultValue
	}
	return b
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return defaultValue
	}
	return d
}

// getEnvList parses a comma-separated env var, lowercasing entries
func getEnvList(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
