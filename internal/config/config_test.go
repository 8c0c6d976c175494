package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	return &Config{
		BaseURL:             "http://localhost:8080",
		DatabaseDriver:      DatabaseDriverSQLite,
		RateLimitStore:      RateLimitStoreMemory,
		EnableRateLimit:     true,
		CallbackRateLimit:   20,
		ConnectionRateLimit: 30,
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		mutate      func(c *Config)
		expectError bool
		errorMsg    string
	}{
		{
			name:        "valid memory store",
			mutate:      func(c *Config) {},
			expectError: false,
		},
		{
			name:        "valid redis store",
			mutate:      func(c *Config) { c.RateLimitStore = RateLimitStoreRedis },
			expectError: false,
		},
		{
			name:        "valid postgres driver",
			mutate:      func(c *Config) { c.DatabaseDriver = DatabaseDriverPostgres },
			expectError: false,
		},
		{
			name:        "invalid store - typo",
			mutate:      func(c *Config) { c.RateLimitStore = "reddis" },
			expectError: true,
			errorMsg:    `invalid RATE_LIMIT_STORE value: "reddis"`,
		},
		{
			name:        "invalid store - uppercase",
			mutate:      func(c *Config) { c.RateLimitStore = "MEMORY" },
			expectError: true,
			errorMsg:    `invalid RATE_LIMIT_STORE value: "MEMORY"`,
		},
		{
			name:        "invalid database driver",
			mutate:      func(c *Config) { c.DatabaseDriver = "mysql" },
			expectError: true,
			errorMsg:    `invalid DATABASE_DRIVER value: "mysql"`,
		},
		{
			name:        "relative base url",
			mutate:      func(c *Config) { c.BaseURL = "/connections" },
			expectError: true,
			errorMsg:    "invalid BASE_URL value",
		},
		{
			name:        "empty base url",
			mutate:      func(c *Config) { c.BaseURL = "" },
			expectError: true,
			errorMsg:    "invalid BASE_URL value",
		},
		{
			name:        "zero callback rate limit",
			mutate:      func(c *Config) { c.CallbackRateLimit = 0 },
			expectError: true,
			errorMsg:    "CALLBACK_RATE_LIMIT must be positive",
		},
		{
			name:        "negative connection rate limit",
			mutate:      func(c *Config) { c.ConnectionRateLimit = -1 },
			expectError: true,
			errorMsg:    "CONNECTION_RATE_LIMIT must be positive",
		},
		{
			name: "zero limits ignored when rate limiting disabled",
			mutate: func(c *Config) {
				c.EnableRateLimit = false
				c.CallbackRateLimit = 0
				c.ConnectionRateLimit = 0
			},
			expectError: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			err := cfg.Validate()

			if tt.expectError {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errorMsg)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRateLimitStoreConstants(t *testing.T) {
	assert.Equal(t, "memory", RateLimitStoreMemory)
	assert.Equal(t, "redis", RateLimitStoreRedis)
}

func TestDerivedURLs(t *testing.T) {
	cfg := &Config{BaseURL: "https://app.example.com"}

	assert.Equal(t, "https://app.example.com/api/auth/callback/discord", cfg.DiscordRedirectURL())
	assert.Equal(t, "https://app.example.com/connections", cfg.ConnectionsURL())
}

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	assert.Equal(t, ":8080", cfg.ServerAddr)
	assert.Equal(t, DefaultDiscordScopes, cfg.DiscordScopes)
	assert.Equal(t, "https://discord.com/api/oauth2/token", cfg.DiscordTokenURL)
	assert.Equal(t, 15*time.Second, cfg.OAuthTimeout)
	assert.Equal(t, 30*time.Second, cfg.DBInitTimeout)
	assert.Equal(t, 5*time.Second, cfg.ServerShutdownTimeout)
	assert.Equal(t, 5*time.Second, cfg.RedisConnTimeout)
	assert.Equal(t, 5*time.Second, cfg.RedisCloseTimeout)
	assert.Equal(t, 30*time.Second, cfg.MetricsGaugeUpdateInterval)
}

func TestLoad_BaseURLTrailingSlashTrimmed(t *testing.T) {
	t.Setenv("BASE_URL", "https://app.example.com/")

	cfg := Load()

	assert.Equal(t, "https://app.example.com", cfg.BaseURL)
	assert.Equal(t, "https://app.example.com/connections", cfg.ConnectionsURL())
}

func TestLoad_DiscordScopes(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected []string
	}{
		{
			name:     "space separated",
			envValue: "identify guilds",
			expected: []string{"identify", "guilds"},
		},
		{
			name:     "comma separated",
			envValue: "identify, webhook.incoming",
			expected: []string{"identify", "webhook.incoming"},
		},
		{
			name:     "only separators falls back to default",
			envValue: " , ",
			expected: DefaultDiscordScopes,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DISCORD_SCOPES", tt.envValue)

			cfg := Load()

			assert.Equal(t, tt.expected, cfg.DiscordScopes)
		})
	}
}

// TestTimeoutConfigurationFromEnv verifies that timeout values can be configured via environment
func TestTimeoutConfigurationFromEnv(t *testing.T) {
	tests := []struct {
		name     string
		envKey   string
		envValue string
		getter   func(*Config) time.Duration
		expected time.Duration
	}{
		{
			name:     "DB_INIT_TIMEOUT",
			envKey:   "DB_INIT_TIMEOUT",
			envValue: "60s",
			getter:   func(c *Config) time.Duration { return c.DBInitTimeout },
			expected: 60 * time.Second,
		},
		{
			name:     "OAUTH_TIMEOUT",
			envKey:   "OAUTH_TIMEOUT",
			envValue: "3s",
			getter:   func(c *Config) time.Duration { return c.OAuthTimeout },
			expected: 3 * time.Second,
		},
		{
			name:     "SERVER_SHUTDOWN_TIMEOUT",
			envKey:   "SERVER_SHUTDOWN_TIMEOUT",
			envValue: "30s",
			getter:   func(c *Config) time.Duration { return c.ServerShutdownTimeout },
			expected: 30 * time.Second,
		},
		{
			name:     "REDIS_CLOSE_TIMEOUT",
			envKey:   "REDIS_CLOSE_TIMEOUT",
			envValue: "3s",
			getter:   func(c *Config) time.Duration { return c.RedisCloseTimeout },
			expected: 3 * time.Second,
		},
		{
			name:     "invalid value falls back to default",
			envKey:   "OAUTH_TIMEOUT",
			envValue: "soon",
			getter:   func(c *Config) time.Duration { return c.OAuthTimeout },
			expected: 15 * time.Second,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.envKey, tt.envValue)

			cfg := Load()

			actual := tt.getter(cfg)
			assert.Equal(t, tt.expected, actual, "%s should be configurable via env", tt.envKey)
		})
	}
}
