// Package api provides the HTTP query surface for roquery.
//
// It exposes the read-only database over a small JSON API: a health probe
// and a query endpoint that runs every statement through the asynchronous
// dispatcher.
//
// The server follows the same lifecycle pattern as the other components:
//
//	server, err := api.New(deps)
//	server.Start(ctx)
//	defer server.Close()
//
// Thread Safety: All methods are safe for concurrent use from multiple goroutines.
package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/nerrad567/roquery/internal/dispatch"
	"github.com/nerrad567/roquery/internal/infrastructure/config"
	"github.com/nerrad567/roquery/internal/infrastructure/logging"
	"github.com/nerrad567/roquery/internal/rodb"
)

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config     config.Config
	Logger     *logging.Logger
	DB         *rodb.DB
	Dispatcher *dispatch.Dispatcher
	Version    string
}

// Server is the HTTP API server for roquery.
//
// It manages the HTTP listener, routes, and middleware. The server is
// created with New() and started with Start().
type Server struct {
	cfg        config.APIConfig
	logger     *logging.Logger
	db         *rodb.DB
	dispatcher *dispatch.Dispatcher
	version    string
	server     *http.Server
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Parameters:
//   - deps: Required dependencies (config, logger, database, dispatcher)
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.DB == nil {
		return nil, fmt.Errorf("database handle is required")
	}
	if deps.Dispatcher == nil {
		return nil, fmt.Errorf("dispatcher is required")
	}

	return &Server{
		cfg:        deps.Config.API,
		logger:     deps.Logger,
		db:         deps.DB,
		dispatcher: deps.Dispatcher,
		version:    deps.Version,
		server: &http.Server{
			Addr:              fmt.Sprintf("%s:%d", deps.Config.API.Host, deps.Config.API.Port),
			ReadTimeout:       deps.Config.GetReadTimeout(),
			ReadHeaderTimeout: deps.Config.GetReadTimeout(),
			WriteTimeout:      deps.Config.GetWriteTimeout(),
			IdleTimeout:       deps.Config.GetIdleTimeout(),
		},
	}, nil
}

// Start begins listening for HTTP connections.
//
// It builds the router and launches the listener in a background goroutine.
// The server is stopped with Close().
//
// Parameters:
//   - ctx: Unused; kept for lifecycle symmetry with the other components
//
// Returns:
//   - error: Currently always nil; listener errors are logged
func (s *Server) Start(ctx context.Context) error {
	s.server.Handler = s.buildRouter()

	s.logger.Info("API server starting", "address", s.server.Addr)

	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits for in-flight requests to complete, bounded by ctx, then
// forcefully closes remaining connections.
//
// Parameters:
//   - ctx: Bounds the graceful drain
//
// Returns:
//   - error: If shutdown encounters an error
func (s *Server) Close(ctx context.Context) error {
	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}
