package bootstrap

import (
	"log"

	"github.com/go-authgate/connectgate/internal/config"
)

// validateAllConfiguration validates all configuration settings
func validateAllConfiguration(cfg *config.Config) {
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}
	for _, warning := range configWarnings(cfg) {
		log.Printf("Warning: %s", warning)
	}
}

// configWarnings lists settings that start fine but break a flow at request time
func configWarnings(cfg *config.Config) []string {
	var warnings []string
	if cfg.DiscordClientID == "" || cfg.DiscordClientSecret == "" {
		warnings = append(warnings,
			"DISCORD_CLIENT_ID or DISCORD_CLIENT_SECRET missing, Discord callbacks will fail")
	}
	if cfg.JWTSecret == "" {
		warnings = append(warnings,
			"JWT_SECRET not set, connection endpoints accept session identity only")
	}
	if cfg.IsProduction && cfg.SessionSecret == config.DefaultSessionSecret {
		warnings = append(warnings, "SESSION_SECRET uses the built-in default")
	}
	return warnings
}
