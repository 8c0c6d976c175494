package handlers

import (
	"context"
	"errors"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-authgate/connectgate/internal/core"
	"github.com/go-authgate/connectgate/internal/discord"
	"github.com/go-authgate/connectgate/internal/middleware"
	"github.com/go-authgate/connectgate/internal/util"

	"github.com/gin-gonic/gin"
)

const (
	providerDiscord = "discord"

	// Fallback used when Discord omits a description or no guild matches the webhook
	unknownValue = "Unknown"
)

// Callback outcomes, used as the metrics result label
const (
	callbackNoCode  = "no_code"
	callbackError   = "error"
	callbackEmpty   = "empty"
	callbackWebhook = "webhook"
	callbackToken   = "token"
)

// errNoCode carries the provider's error_description when the callback has no code
type errNoCode struct {
	reason string
}

func (e *errNoCode) Error() string {
	return "no authorization code: " + e.reason
}

// DiscordHandler handles the Discord OAuth authorization-code flow
type DiscordHandler struct {
	client         core.DiscordClient
	connectionsURL string
	metrics        core.Recorder
}

// NewDiscordHandler creates a new Discord handler. connectionsURL is the
// absolute URL every callback outcome redirects to.
func NewDiscordHandler(
	client core.DiscordClient,
	connectionsURL string,
	m core.Recorder,
) *DiscordHandler {
	return &DiscordHandler{
		client:         client,
		connectionsURL: connectionsURL,
		metrics:        m,
	}
}

// Login redirects the browser to Discord's authorize page
func (h *DiscordHandler) Login(c *gin.Context) {
	state, err := util.GenerateOAuthState()
	if err != nil {
		log.Printf("[Discord] Failed to generate state: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":             "server_error",
			"error_description": "Failed to initiate Discord login",
		})
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, h.client.AuthURL(state))
}

// Callback completes the Discord authorization. Every outcome, including
// failures, ends in a redirect to the connections page.
func (h *DiscordHandler) Callback(c *gin.Context) {
	ctx := c.Request.Context()

	code, err := parseCallback(c)
	if err != nil {
		var noCode *errNoCode
		if errors.As(err, &noCode) {
			log.Printf("[Discord] No code received: ip=%s reason=%s",
				middleware.ClientIPFromContext(c), noCode.reason)
			h.finish(c, callbackNoCode, h.redirectURL(
				"error", "no_code",
				"reason", noCode.reason,
			))
			return
		}
		h.fail(c, err)
		return
	}

	token, err := h.exchange(ctx, code)
	if err != nil {
		h.fail(c, err)
		return
	}
	if token == nil {
		log.Printf("[Discord] Empty token response, redirecting to connections")
		h.finish(c, callbackEmpty, h.connectionsURL)
		return
	}

	guilds, err := h.fetchGuilds(ctx, token.AccessToken)
	if err != nil {
		h.fail(c, err)
		return
	}

	result, target := h.buildRedirect(token, guilds)
	h.finish(c, result, target)
}

// RateLimited answers a throttled callback with the same redirect contract
func (h *DiscordHandler) RateLimited(c *gin.Context) {
	h.finish(c, callbackError, h.redirectURL("error", "rate_limit_exceeded"))
}

// parseCallback returns the authorization code, or *errNoCode when absent
func parseCallback(c *gin.Context) (string, error) {
	code := c.Query("code")
	if code != "" {
		return code, nil
	}

	reason := c.Query("error_description")
	if reason == "" {
		reason = unknownValue
	}
	return "", &errNoCode{reason: reason}
}

// exchange trades the code for a token. A nil token means an empty response body.
func (h *DiscordHandler) exchange(ctx context.Context, code string) (*core.DiscordToken, error) {
	start := time.Now()
	token, err := h.client.Exchange(ctx, code)
	h.metrics.RecordExternalAPICall(providerDiscord, "token_exchange", time.Since(start))
	return token, err
}

// fetchGuilds lists the user's guilds. Without an access token there is
// nothing to ask for and the list is empty.
func (h *DiscordHandler) fetchGuilds(
	ctx context.Context,
	accessToken string,
) ([]core.DiscordGuild, error) {
	if accessToken == "" {
		return nil, nil
	}

	start := time.Now()
	guilds, err := h.client.Guilds(ctx, accessToken)
	h.metrics.RecordExternalAPICall(providerDiscord, "guilds", time.Since(start))
	if err != nil {
		return nil, err
	}

	log.Printf("[Discord] User guilds count: %d", len(guilds))
	return guilds, nil
}

// buildRedirect picks the webhook or the token redirect
func (h *DiscordHandler) buildRedirect(
	token *core.DiscordToken,
	guilds []core.DiscordGuild,
) (string, string) {
	if wh := token.Webhook; wh != nil {
		log.Printf("[Discord] Webhook received: id=%s guild_id=%s channel_id=%s",
			wh.ID, wh.GuildID, wh.ChannelID)

		return callbackWebhook, h.redirectURL(
			"webhook_id", wh.ID,
			"webhook_url", wh.URL,
			"webhook_name", wh.Name,
			"guild_id", wh.GuildID,
			"guild_name", guildName(guilds, wh.GuildID),
			"channel_id", wh.ChannelID,
		)
	}

	log.Printf("[Discord] No webhook in response, redirecting with token only")
	return callbackToken, h.redirectURL(
		"discord_token", token.AccessToken,
		"guild_count", strconv.Itoa(len(guilds)),
	)
}

func guildName(guilds []core.DiscordGuild, guildID string) string {
	for _, g := range guilds {
		if g.ID == guildID {
			return g.Name
		}
	}
	return unknownValue
}

// fail logs the provider response body when there is one and redirects with the error message
func (h *DiscordHandler) fail(c *gin.Context, err error) {
	var apiErr *discord.APIError
	if errors.As(err, &apiErr) && apiErr.Body != "" {
		log.Printf("[Discord] OAuth error: status=%d operation=%s body=%s",
			apiErr.Status, apiErr.Operation, apiErr.Body)
	} else {
		log.Printf("[Discord] OAuth error: %v", err)
	}

	h.finish(c, callbackError, h.redirectURL("error", err.Error()))
}

func (h *DiscordHandler) finish(c *gin.Context, result, target string) {
	h.metrics.RecordOAuthCallback(providerDiscord, result)
	c.Redirect(http.StatusFound, target)
}

// redirectURL appends the key/value pairs to the connections URL in order.
// Values are percent-encoded with spaces as %20.
func (h *DiscordHandler) redirectURL(pairs ...string) string {
	var b strings.Builder
	b.WriteString(h.connectionsURL)
	for i := 0; i+1 < len(pairs); i += 2 {
		if i == 0 {
			b.WriteByte('?')
		} else {
			b.WriteByte('&')
		}
		b.WriteString(pairs[i])
		b.WriteByte('=')
		b.WriteString(strings.ReplaceAll(url.QueryEscape(pairs[i+1]), "+", "%20"))
	}
	return b.String()
}
