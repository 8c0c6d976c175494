package core

import "context"

// DiscordWebhook is the incoming webhook Discord creates when the
// webhook.incoming scope is granted.
type DiscordWebhook struct {
	ID        string `json:"id"`
	URL       string `json:"url"`
	Name      string `json:"name"`
	GuildID   string `json:"guild_id"`
	ChannelID string `json:"channel_id"`
}

// DiscordToken is the token endpoint response.
type DiscordToken struct {
	AccessToken  string          `json:"access_token"`
	TokenType    string          `json:"token_type"`
	ExpiresIn    int64           `json:"expires_in"`
	RefreshToken string          `json:"refresh_token"`
	Scope        string          `json:"scope"`
	Webhook      *DiscordWebhook `json:"webhook,omitempty"`
}

// DiscordGuild is one entry of the user's guild list.
type DiscordGuild struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DiscordClient is the subset of the Discord API used by the callback flow.
type DiscordClient interface {
	// AuthURL returns the authorize URL for the given state.
	AuthURL(state string) string
	// Exchange trades an authorization code for a token. A nil token with a
	// nil error means the token endpoint answered with an empty body.
	Exchange(ctx context.Context, code string) (*DiscordToken, error)
	// Guilds lists the guilds visible to the access token.
	Guilds(ctx context.Context, accessToken string) ([]DiscordGuild, error)
}
