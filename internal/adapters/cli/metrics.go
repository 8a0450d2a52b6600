package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/andrescamacho/placement-go/internal/adapters/metrics"
	"github.com/andrescamacho/placement-go/internal/application/mediator"
	"github.com/andrescamacho/placement-go/internal/infrastructure/config"
)

type metricsServer struct {
	server *metrics.Server
}

// startMetrics registers the collectors, instruments the mediator and
// starts the scrape endpoint
func startMetrics(cfg config.MetricsConfig, m mediator.Mediator) (*metricsServer, error) {
	metrics.InitRegistry()

	placementCollector := metrics.NewPlacementMetricsCollector()
	if err := placementCollector.Register(); err != nil {
		return nil, fmt.Errorf("failed to register placement metrics: %w", err)
	}
	metrics.SetGlobalPlacementCollector(placementCollector)

	commandCollector := metrics.NewCommandMetricsCollector()
	if err := commandCollector.Register(); err != nil {
		return nil, fmt.Errorf("failed to register command metrics: %w", err)
	}
	m.Use(metrics.PrometheusMiddleware(commandCollector))

	server, err := metrics.NewServer(cfg.Host, cfg.Port, cfg.Path)
	if err != nil {
		return nil, err
	}
	if err := server.Start(); err != nil {
		return nil, err
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Metrics served on http://%s%s\n", server.Addr(), cfg.Path)
	}
	return &metricsServer{server: server}, nil
}

func (s *metricsServer) Stop() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: metrics server shutdown: %v\n", err)
	}
}
