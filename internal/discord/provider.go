package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/go-authgate/connectgate/internal/core"

	"golang.org/x/oauth2"
)

// Ensure Provider implements core.DiscordClient at compile time
var _ core.DiscordClient = (*Provider)(nil)

// Config contains the Discord application settings
type Config struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
	AuthURL      string
	TokenURL     string
	APIURL       string // e.g. https://discord.com/api
}

// Provider talks to the Discord OAuth2 and REST endpoints
type Provider struct {
	config     *oauth2.Config
	apiURL     string
	httpClient *http.Client
}

// NewProvider creates a Discord provider. httpClient is used for every
// outbound call; nil falls back to http.DefaultClient.
func NewProvider(cfg Config, httpClient *http.Client) *Provider {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Provider{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       cfg.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		apiURL:     strings.TrimRight(cfg.APIURL, "/"),
		httpClient: httpClient,
	}
}

// AuthURL returns the Discord authorize URL. prompt=consent makes Discord
// show the channel picker for webhook.incoming every time.
func (p *Provider) AuthURL(state string) string {
	return p.config.AuthCodeURL(state, oauth2.SetAuthURLParam("prompt", "consent"))
}

// Exchange trades the authorization code for a token. Discord's webhook
// object is not part of oauth2.Token, so the form is posted directly.
func (p *Provider) Exchange(ctx context.Context, code string) (*core.DiscordToken, error) {
	if code == "" {
		return nil, ErrCodeRequired
	}

	form := url.Values{}
	form.Set("client_id", p.config.ClientID)
	form.Set("client_secret", p.config.ClientSecret)
	form.Set("grant_type", "authorization_code")
	form.Set("redirect_uri", p.config.RedirectURL)
	form.Set("code", code)
	form.Set("scope", strings.Join(p.config.Scopes, " "))

	req, err := http.NewRequestWithContext(
		ctx,
		http.MethodPost,
		p.config.Endpoint.TokenURL,
		strings.NewReader(form.Encode()),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/json")

	body, err := p.do(req, "token_exchange")
	if err != nil {
		return nil, err
	}

	// An empty or null body means Discord issued no token
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var token core.DiscordToken
	if err := json.Unmarshal(body, &token); err != nil {
		return nil, fmt.Errorf("failed to decode token response: %w", err)
	}
	return &token, nil
}

// Guilds lists the guilds of the user owning accessToken
func (p *Provider) Guilds(ctx context.Context, accessToken string) ([]core.DiscordGuild, error) {
	if accessToken == "" {
		return nil, ErrAccessTokenRequired
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.apiURL+"/users/@me/guilds", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create guilds request: %w", err)
	}

	// The bearer transport reuses the configured client's transport
	client := oauth2.NewClient(
		context.WithValue(ctx, oauth2.HTTPClient, p.httpClient),
		oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken, TokenType: "Bearer"}),
	)
	client.Timeout = p.httpClient.Timeout

	body, err := p.doWith(client, req, "guilds")
	if err != nil {
		return nil, err
	}

	var guilds []core.DiscordGuild
	if err := json.Unmarshal(body, &guilds); err != nil {
		return nil, fmt.Errorf("failed to decode guilds response: %w", err)
	}
	return guilds, nil
}

func (p *Provider) do(req *http.Request, operation string) ([]byte, error) {
	return p.doWith(p.httpClient, req, operation)
}

func (p *Provider) doWith(client *http.Client, req *http.Request, operation string) ([]byte, error) {
	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("discord %s request failed: %w", operation, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read discord %s response: %w", operation, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Operation: operation,
			Status:    resp.StatusCode,
			Body:      string(body),
		}
	}
	return body, nil
}
