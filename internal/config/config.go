package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    string
	// Database
	DBDriver       string // postgres or sqlite
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	DBSSLMode      string
	SQLitePath     string
	DBMaxOpenConns int
	DBMaxIdleConns int
	// Auth
	JWTSecret             string
	AccessTokenTTLMinutes int
	BcryptCost            int
	AdminEmail            string
	AdminUsername         string
	AdminPassword         string
	// HTTP
	CORSOrigins        []string
	AllowedHosts       []string
	RateLimitPerMinute int
}

func Load() *Config {
	return &Config{
		Port:                  getenv("PORT", "8080"),
		Environment:           getenv("ENVIRONMENT", "development"),
		LogLevel:              getenv("LOG_LEVEL", "info"),
		DBDriver:              strings.ToLower(getenv("DB_DRIVER", "postgres")),
		DBHost:                getenv("DB_HOST", "localhost"),
		DBPort:                getenv("DB_PORT", "5432"),
		DBUser:                getenv("DB_USER", "postgres"),
		DBPassword:            getenv("DB_PASSWORD", "postgres"),
		DBName:                getenv("DB_NAME", "presentation_analytics"),
		DBSSLMode:             getenv("DB_SSLMODE", "disable"),
		SQLitePath:            getenv("SQLITE_PATH", "presentation_analytics.db"),
		DBMaxOpenConns:        getenvInt("DB_MAX_OPEN_CONNS", 25),
		DBMaxIdleConns:        getenvInt("DB_MAX_IDLE_CONNS", 10),
		JWTSecret:             getenv("JWT_SECRET", "supersecret_change_me"),
		AccessTokenTTLMinutes: getenvInt("ACCESS_TOKEN_TTL_MINUTES", 30),
		BcryptCost:            getenvInt("BCRYPT_COST", 0),
		AdminEmail:            getenv("ADMIN_EMAIL", "admin@example.com"),
		AdminUsername:         getenv("ADMIN_USERNAME", "admin"),
		AdminPassword:         getenv("ADMIN_PASSWORD", "admin123"),
		CORSOrigins:           splitList(getenv("CORS_ORIGINS", "http://localhost:3000")),
		AllowedHosts:          splitList(getenv("ALLOWED_HOSTS", "*")),
		RateLimitPerMinute:    getenvInt("RATE_LIMIT_PER_MINUTE", 60),
	}
}

// AccessTTL falls back to 30 minutes when AccessTokenTTLMinutes is not positive.
func (c *Config) AccessTTL() time.Duration {
	if c.AccessTokenTTLMinutes <= 0 {
		return 30 * time.Minute
	}
	return time.Duration(c.AccessTokenTTLMinutes) * time.Minute
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.Environment, "production")
}

func getenv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func getenvInt(key string, fallback int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
