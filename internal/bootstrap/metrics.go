package bootstrap

import (
	"log"

	"github.com/go-authgate/connectgate/internal/config"
	"github.com/go-authgate/connectgate/internal/core"
	"github.com/go-authgate/connectgate/internal/metrics"
)

// initializeMetrics initializes Prometheus metrics
func initializeMetrics(cfg *config.Config) core.Recorder {
	recorder := metrics.Init(cfg.MetricsEnabled)
	if cfg.MetricsEnabled {
		log.Println("Prometheus metrics initialized")
	} else {
		log.Println("Metrics disabled (using noop implementation)")
	}
	return recorder
}
