package bootstrap

import (
	"github.com/go-authgate/connectgate/internal/config"
	"github.com/go-authgate/connectgate/internal/core"
	"github.com/go-authgate/connectgate/internal/handlers"
	"github.com/go-authgate/connectgate/internal/services"
)

// handlerSet holds all HTTP handlers
type handlerSet struct {
	discord    *handlers.DiscordHandler
	connection *handlers.ConnectionHandler
}

// initializeHandlers creates all HTTP handlers
func initializeHandlers(
	cfg *config.Config,
	discordClient core.DiscordClient,
	connectionService *services.ConnectionService,
	recorder core.Recorder,
) handlerSet {
	return handlerSet{
		discord:    handlers.NewDiscordHandler(discordClient, cfg.ConnectionsURL(), recorder),
		connection: handlers.NewConnectionHandler(connectionService),
	}
}
