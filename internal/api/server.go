package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/engineering-on-display/eod-uaa/internal/chartconfig"
	"github.com/engineering-on-display/eod-uaa/internal/chartdata"
	"github.com/engineering-on-display/eod-uaa/internal/datasets"
	"github.com/engineering-on-display/eod-uaa/internal/infrastructure/config"
	"github.com/engineering-on-display/eod-uaa/internal/infrastructure/logging"
)

// gracefulShutdownTimeout is the maximum time to wait for in-flight requests
// to complete during shutdown.
const gracefulShutdownTimeout = 10 * time.Second

// ChartConfigs is the assembled-configuration cache, implemented by
// *chartconfig.Assembler.
type ChartConfigs interface {
	Get(ctx context.Context, buildingID int) (*chartconfig.ChartConfiguration, error)
	Invalidate(buildingID int) bool
}

// SeriesStore is the raw series cache, implemented by *chartdata.Cache.
type SeriesStore interface {
	Fetch(ctx context.Context, buildingID int) (*chartdata.BuildingTimeSeries, error)
	PollTemperature(ctx context.Context, buildingID int) ([]float64, error)
}

// HealthChecker is implemented by every infrastructure client.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// Deps holds the dependencies required by the API server.
type Deps struct {
	Config   config.APIConfig
	WS       config.WebSocketConfig
	Logger   *logging.Logger
	Charts   ChartConfigs
	Series   SeriesStore
	Datasets datasets.Repository // optional; dataset routes answer 503 without it

	// Health maps component names to checks reported by GET /health.
	Health map[string]HealthChecker

	// Hub is used instead of creating one, so the assembler can be given
	// the hub as a listener before the server exists.
	Hub     *Hub
	Version string
}

// Server is the HTTP API server for the chart core.
type Server struct {
	cfg      config.APIConfig
	wsCfg    config.WebSocketConfig
	logger   *logging.Logger
	charts   ChartConfigs
	series   SeriesStore
	datasets datasets.Repository
	health   map[string]HealthChecker
	version  string
	server   *http.Server
	hub      *Hub
	cancel   context.CancelFunc
}

// New creates a new API server with the given dependencies.
//
// The server is not started until Start() is called.
//
// Returns:
//   - *Server: Configured server ready to start
//   - error: If required dependencies are missing
func New(deps Deps) (*Server, error) {
	if deps.Logger == nil {
		return nil, fmt.Errorf("logger is required")
	}
	if deps.Charts == nil {
		return nil, fmt.Errorf("chart configuration source is required")
	}
	if deps.Series == nil {
		return nil, fmt.Errorf("series store is required")
	}

	s := &Server{
		cfg:      deps.Config,
		wsCfg:    deps.WS,
		logger:   deps.Logger,
		charts:   deps.Charts,
		series:   deps.Series,
		datasets: deps.Datasets,
		health:   deps.Health,
		version:  deps.Version,
		hub:      deps.Hub,
	}
	if s.hub == nil {
		s.hub = NewHub(deps.WS, deps.Logger)
	}
	return s, nil
}

// Hub returns the WebSocket hub.
func (s *Server) Hub() *Hub {
	return s.hub
}

// Start launches the WebSocket hub and the HTTP listener in background
// goroutines. The server can be stopped with Close().
func (s *Server) Start(ctx context.Context) error {
	var srvCtx context.Context
	srvCtx, s.cancel = context.WithCancel(ctx)
	go s.hub.Run(srvCtx)

	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", s.cfg.Host, s.cfg.Port),
		Handler:           s.buildRouter(),
		ReadTimeout:       time.Duration(s.cfg.Timeouts.Read) * time.Second,
		ReadHeaderTimeout: time.Duration(s.cfg.Timeouts.Read) * time.Second,
		WriteTimeout:      time.Duration(s.cfg.Timeouts.Write) * time.Second,
		IdleTimeout:       time.Duration(s.cfg.Timeouts.Idle) * time.Second,
	}

	go func() {
		var err error
		if s.cfg.TLS.Enabled {
			s.logger.Info("API server starting with TLS",
				"address", s.server.Addr,
				"cert", s.cfg.TLS.CertFile,
			)
			err = s.server.ListenAndServeTLS(s.cfg.TLS.CertFile, s.cfg.TLS.KeyFile)
		} else {
			s.logger.Info("API server starting", "address", s.server.Addr)
			err = s.server.ListenAndServe()
		}
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("API server error", "error", err)
		}
	}()

	return nil
}

// Close gracefully shuts down the API server.
//
// It waits up to 10 seconds for in-flight requests to complete,
// then forcefully closes remaining connections.
func (s *Server) Close() error {
	if s.server == nil {
		return nil
	}
	if s.cancel != nil {
		s.cancel()
	}

	ctx, cancel := context.WithTimeout(context.Background(), gracefulShutdownTimeout)
	defer cancel()

	s.logger.Info("API server shutting down")
	if err := s.server.Shutdown(ctx); err != nil {
		return fmt.Errorf("shutting down API server: %w", err)
	}
	return nil
}

// HealthCheck verifies the API server is running.
func (s *Server) HealthCheck(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return fmt.Errorf("api health check: %w", ctx.Err())
	default:
	}

	if s.server == nil {
		return fmt.Errorf("api server not started")
	}
	return nil
}
