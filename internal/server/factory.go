// internal/server/factory.go
package server

import (
	"fmt"

	"secgate/internal/authn/manager"
	"secgate/internal/config"
	"secgate/internal/observability"
)

// NewFromConfig creates a new server from configuration
func NewFromConfig(cfg *config.Config) (*Server, error) {
	// Initialize observability
	obs, err := observability.NewProvider(cfg.Observability.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize observability: %w", err)
	}
	logger := obs.Logger

	// Initialize the security pipeline
	pipeline, err := manager.NewManagerFromConfig(cfg, logger, obs.Metrics)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize security pipeline: %w", err)
	}

	// Initialize application routes
	routes := NewRoutes(cfg.Auth.Realm, pipeline.Sessions(), pipeline.RememberMe(), logger)

	// Create complete middleware chain: observability -> propagation ->
	// authentication stages -> routes
	handler := obs.Middleware(pipeline.Middleware(routes))

	srv := New(Config{
		Address:         cfg.Server.Address,
		MetricsAddress:  cfg.Metrics.Address,
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	}, handler, obs.MetricsHandler(), logger)
	srv.closers = append(srv.closers, pipeline)

	return srv, nil
}
