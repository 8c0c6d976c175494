package bootstrap

import (
	"github.com/go-authgate/connectgate/internal/core"
	"github.com/go-authgate/connectgate/internal/services"
	"github.com/go-authgate/connectgate/internal/store"
)

// initializeServices creates all business logic services
func initializeServices(db *store.Store, recorder core.Recorder) *services.ConnectionService {
	return services.NewConnectionService(db, recorder)
}
