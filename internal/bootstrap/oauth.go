package bootstrap

import (
	"fmt"
	"log"
	"net/http"

	"github.com/go-authgate/connectgate/internal/client"
	"github.com/go-authgate/connectgate/internal/config"
	"github.com/go-authgate/connectgate/internal/discord"

	"github.com/appleboy/go-httpclient"
)

// createOAuthHTTPClient creates an HTTP client for Discord requests with optimized connection pool
func createOAuthHTTPClient(cfg *config.Config) (*http.Client, error) {
	if cfg.OAuthInsecureSkipVerify {
		log.Printf("WARNING: OAuth TLS verification is disabled (OAUTH_INSECURE_SKIP_VERIFY=true)")
	}

	// Create optimized transport with connection pool settings
	transport := client.CreateOptimizedTransport(cfg.OAuthInsecureSkipVerify)

	httpClient, err := httpclient.NewClient(
		httpclient.WithTimeout(cfg.OAuthTimeout),
		httpclient.WithTransport(transport),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OAuth HTTP client: %w", err)
	}

	return httpClient, nil
}

// newDiscordProvider builds the Discord client from configuration
func newDiscordProvider(cfg *config.Config, httpClient *http.Client) *discord.Provider {
	log.Printf("Discord OAuth configured: redirect=%s", cfg.DiscordRedirectURL())
	return discord.NewProvider(discord.Config{
		ClientID:     cfg.DiscordClientID,
		ClientSecret: cfg.DiscordClientSecret,
		RedirectURL:  cfg.DiscordRedirectURL(),
		Scopes:       cfg.DiscordScopes,
		AuthURL:      cfg.DiscordAuthURL,
		TokenURL:     cfg.DiscordTokenURL,
		APIURL:       cfg.DiscordAPIURL,
	}, httpClient)
}
