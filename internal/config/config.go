package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Rate limit store constants
const (
	RateLimitStoreMemory = "memory"
	RateLimitStoreRedis  = "redis"
)

// Database driver constants
const (
	DatabaseDriverSQLite   = "sqlite"
	DatabaseDriverPostgres = "postgres"
)

// Route paths shared by the router and the derived URLs below
const (
	ConnectionsPath     = "/connections"
	DiscordCallbackPath = "/api/auth/callback/discord"
)

// DefaultSessionSecret is the development fallback for SESSION_SECRET
const DefaultSessionSecret = "session-secret-change-in-production"

// DefaultDiscordScopes are requested on both the authorize and the token step
var DefaultDiscordScopes = []string{"identify", "guilds", "webhook.incoming"}

type Config struct {
	// Server settings
	ServerAddr            string
	BaseURL               string // Public URL, used for redirect_uri and the connections page
	IsProduction          bool
	ServerShutdownTimeout time.Duration

	// Session settings
	SessionSecret string
	SessionMaxAge int // seconds

	// Identity settings
	JWTSecret string // HS256 secret for bearer identity tokens; empty disables bearer auth

	// Database
	DatabaseDriver string // "sqlite" or "postgres"
	DatabaseDSN    string
	DBInitTimeout  time.Duration

	// Discord OAuth
	DiscordClientID     string
	DiscordClientSecret string
	DiscordScopes       []string
	DiscordAPIURL       string
	DiscordAuthURL      string
	DiscordTokenURL     string

	// OAuth HTTP Client Settings
	OAuthTimeout            time.Duration
	OAuthInsecureSkipVerify bool

	// Metrics
	MetricsEnabled             bool
	MetricsToken               string
	MetricsGaugeUpdateInterval time.Duration // 0 disables the periodic gauge refresh

	// Rate limiting
	EnableRateLimit          bool
	RateLimitStore           string // "memory" or "redis"
	RateLimitCleanupInterval time.Duration
	CallbackRateLimit        int // requests per minute per IP
	ConnectionRateLimit      int // requests per minute per IP

	// Redis (rate limit store)
	RedisAddr         string
	RedisPassword     string
	RedisDB           int
	RedisConnTimeout  time.Duration
	RedisCloseTimeout time.Duration
}

func Load() *Config {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	driver := getEnv("DATABASE_DRIVER", DatabaseDriverSQLite)
	var dsn string
	if driver == DatabaseDriverSQLite {
		dsn = getEnv("DATABASE_DSN", getEnv("DATABASE_PATH", "connectgate.db"))
	} else {
		dsn = getEnv("DATABASE_DSN", "")
	}

	return &Config{
		ServerAddr:            getEnv("SERVER_ADDR", ":8080"),
		BaseURL:               strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		IsProduction:          getEnv("ENVIRONMENT", "development") == "production",
		ServerShutdownTimeout: getEnvDuration("SERVER_SHUTDOWN_TIMEOUT", 5*time.Second),

		SessionSecret: getEnv("SESSION_SECRET", DefaultSessionSecret),
		SessionMaxAge: getEnvInt("SESSION_MAX_AGE", 86400),

		JWTSecret: getEnv("JWT_SECRET", ""),

		DatabaseDriver: driver,
		DatabaseDSN:    dsn,
		DBInitTimeout:  getEnvDuration("DB_INIT_TIMEOUT", 30*time.Second),

		DiscordClientID:     getEnv("DISCORD_CLIENT_ID", ""),
		DiscordClientSecret: getEnv("DISCORD_CLIENT_SECRET", ""),
		DiscordScopes:       getEnvSlice("DISCORD_SCOPES", DefaultDiscordScopes),
		DiscordAPIURL:       getEnv("DISCORD_API_URL", "https://discord.com/api"),
		DiscordAuthURL:      getEnv("DISCORD_AUTH_URL", "https://discord.com/oauth2/authorize"),
		DiscordTokenURL:     getEnv("DISCORD_TOKEN_URL", "https://discord.com/api/oauth2/token"),

		OAuthTimeout:            getEnvDuration("OAUTH_TIMEOUT", 15*time.Second),
		OAuthInsecureSkipVerify: getEnvBool("OAUTH_INSECURE_SKIP_VERIFY", false),

		MetricsEnabled:             getEnvBool("METRICS_ENABLED", false),
		MetricsToken:               getEnv("METRICS_TOKEN", ""),
		MetricsGaugeUpdateInterval: getEnvDuration("METRICS_GAUGE_UPDATE_INTERVAL", 30*time.Second),

		EnableRateLimit:          getEnvBool("ENABLE_RATE_LIMIT", true),
		RateLimitStore:           getEnv("RATE_LIMIT_STORE", RateLimitStoreMemory),
		RateLimitCleanupInterval: getEnvDuration("RATE_LIMIT_CLEANUP_INTERVAL", 5*time.Minute),
		CallbackRateLimit:        getEnvInt("CALLBACK_RATE_LIMIT", 20),
		ConnectionRateLimit:      getEnvInt("CONNECTION_RATE_LIMIT", 30),

		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     getEnv("REDIS_PASSWORD", ""),
		RedisDB:           getEnvInt("REDIS_DB", 0),
		RedisConnTimeout:  getEnvDuration("REDIS_CONN_TIMEOUT", 5*time.Second),
		RedisCloseTimeout: getEnvDuration("REDIS_CLOSE_TIMEOUT", 5*time.Second),
	}
}

// Validate checks settings that would otherwise fail late at request time
func (c *Config) Validate() error {
	parsed, err := url.Parse(c.BaseURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return fmt.Errorf("invalid BASE_URL value: %q (must be an absolute URL)", c.BaseURL)
	}

	switch c.DatabaseDriver {
	case DatabaseDriverSQLite, DatabaseDriverPostgres:
	default:
		return fmt.Errorf(
			"invalid DATABASE_DRIVER value: %q (must be %q or %q)",
			c.DatabaseDriver,
			DatabaseDriverSQLite,
			DatabaseDriverPostgres,
		)
	}

	switch c.RateLimitStore {
	case RateLimitStoreMemory, RateLimitStoreRedis:
	default:
		return fmt.Errorf(
			"invalid RATE_LIMIT_STORE value: %q (must be %q or %q)",
			c.RateLimitStore,
			RateLimitStoreMemory,
			RateLimitStoreRedis,
		)
	}

	if c.EnableRateLimit {
		if c.CallbackRateLimit <= 0 {
			return fmt.Errorf("CALLBACK_RATE_LIMIT must be positive, got %d", c.CallbackRateLimit)
		}
		if c.ConnectionRateLimit <= 0 {
			return fmt.Errorf(
				"CONNECTION_RATE_LIMIT must be positive, got %d",
				c.ConnectionRateLimit,
			)
		}
	}

	return nil
}

// DiscordRedirectURL is the redirect_uri registered with Discord. The authorize
// request and the code exchange must send the identical value.
func (c *Config) DiscordRedirectURL() string {
	return c.BaseURL + DiscordCallbackPath
}

// ConnectionsURL is the page every Discord callback redirects to
func (c *Config) ConnectionsURL() string {
	return c.BaseURL + ConnectionsPath
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return value == "true" || value == "1"
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var i int
		if _, err := fmt.Sscanf(value, "%d", &i); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		// Discord scopes are space separated, everything else comma separated
		parts := splitAndTrim(strings.ReplaceAll(value, " ", ","), ",")
		if len(parts) > 0 {
			return parts
		}
	}
	return defaultValue
}

func splitAndTrim(s, sep string) []string {
	var out []string
	for _, part := range strings.Split(s, sep) {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
