// Package server wires configuration, telemetry, the simulation driver, and
// the HTTP read surface into one runnable service.
package server

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/virtualtd/league-engine/internal/config"
	"github.com/virtualtd/league-engine/internal/driver"
	"github.com/virtualtd/league-engine/internal/generate"
	"github.com/virtualtd/league-engine/internal/httpapi"
	"github.com/virtualtd/league-engine/internal/logging"
	"github.com/virtualtd/league-engine/internal/metrics"
	"github.com/virtualtd/league-engine/internal/snapshots"
	"github.com/virtualtd/league-engine/internal/store"
	"github.com/virtualtd/league-engine/internal/store/sqlite"
)

var metricsSetup = metrics.Setup

type Server struct {
	cfg           config.Config
	logger        *slog.Logger
	metrics       *metrics.Recorder
	memStore      *store.MemoryStore
	archive       *sqlite.Store
	runner        *runner
	httpServer    httpServer
	metricsServer httpServer
	metricsStop   func(context.Context) error
}

// New constructs a server with a freshly generated league world.
func New(cfg config.Config, logger *slog.Logger) *Server {
	recorder, metricsSrv, metricsShutdown := buildMetrics(cfg, logger, nil)

	l, pool := generate.World(generate.DefaultConfig(cfg.Teams), cfg.Seed)
	drv := driver.New(l, pool, driver.Config{
		Seed:      cfg.Seed,
		Workers:   cfg.Workers,
		Decisions: driver.LogDecisions(driver.PassivePolicy{}, logger),
		Logger:    logger,
		Metrics:   recorder,
	})

	memStore := store.NewMemoryStore()
	archive := buildArchive(cfg, logger)
	snapWriter := buildSnapshotWriter(cfg, logger)

	run := newRunner(drv, cfg.Seasons, memStore, archive, snapWriter, logger)
	httpSrv := buildHTTPServer(cfg, memStore, archive, logger, recorder, run)

	return &Server{
		cfg:           cfg,
		logger:        logger,
		metrics:       recorder,
		memStore:      memStore,
		archive:       archive,
		runner:        run,
		httpServer:    httpSrv,
		metricsServer: metricsSrv,
		metricsStop:   metricsShutdown,
	}
}

func buildArchive(cfg config.Config, logger *slog.Logger) *sqlite.Store {
	if cfg.DBPath == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o755); err != nil {
		logging.Warn(logger, "archive dir unavailable, continuing without archive", "err", err)
		return nil
	}
	archive, err := sqlite.Open(cfg.DBPath)
	if err != nil {
		logging.Warn(logger, "archive unavailable, continuing without archive", "err", err)
		return nil
	}
	return archive
}

func buildSnapshotWriter(cfg config.Config, logger *slog.Logger) *snapshots.Writer {
	if cfg.SnapshotDir == "" {
		return nil
	}
	if err := os.MkdirAll(cfg.SnapshotDir, 0o755); err != nil {
		logging.Warn(logger, "snapshot dir unavailable, continuing without snapshots", "err", err)
		return nil
	}
	return snapshots.NewWriter(cfg.SnapshotDir, 0)
}

func buildHTTPServer(cfg config.Config, memStore *store.MemoryStore, archive *sqlite.Store, logger *slog.Logger, recorder *metrics.Recorder, run *runner) httpServer {
	var statusFn func() httpapi.Status
	if run != nil {
		statusFn = run.Status
	}

	// The handler takes the archive as an interface; a nil *sqlite.Store must
	// stay a nil interface.
	var archiveAPI httpapi.Archive
	if archive != nil {
		archiveAPI = archive
	}

	handler := httpapi.NewHandler(memStore, archiveAPI, logger, statusFn)
	if logger == nil {
		logger = logging.NewLogger(logging.Config{})
	}
	router := httpapi.NewRouter(handler, logger, recorder)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
	}

	return netHTTPServer{inner: srv}
}

// Run starts the simulation and HTTP server, then waits for context
// cancellation to shut down gracefully.
func (s *Server) Run(ctx context.Context, stop context.CancelFunc) {
	s.startMetrics()
	s.startServer(stop)
	go s.runner.Run(ctx)

	<-ctx.Done()
	logging.Info(s.logger, "shutdown signal received")

	s.gracefulShutdown()
}

func (s *Server) startServer(stop context.CancelFunc) {
	launchServer("http", s.httpServer, s.logger, func(err error) {
		if stop != nil {
			stop()
		}
	})
}

func (s *Server) startMetrics() {
	if s.metricsServer == nil {
		return
	}
	launchServer("metrics", s.metricsServer, s.logger, nil)
}

func (s *Server) gracefulShutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()

	if s.metricsStop != nil {
		if err := s.metricsStop(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics shutdown failed", "error", err)
		}
	}
	if s.metricsServer != nil {
		if err := s.metricsServer.Shutdown(shutdownCtx); err != nil {
			logging.Warn(s.logger, "metrics server shutdown failed", "error", err)
		}
	}
	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		logging.Error(s.logger, "graceful shutdown failed", err)
	}
	if s.archive != nil {
		if err := s.archive.Close(); err != nil {
			logging.Warn(s.logger, "archive close failed", "error", err)
		}
	}

	logging.Info(s.logger, "shutdown complete")
}

func buildMetrics(cfg config.Config, logger *slog.Logger, recorder *metrics.Recorder) (*metrics.Recorder, httpServer, func(context.Context) error) {
	if recorder != nil {
		return recorder, nil, nil
	}

	recCfg := metrics.TelemetryConfig{
		Enabled:      cfg.Metrics.Enabled,
		Port:         cfg.Metrics.Port,
		ServiceName:  cfg.Metrics.ServiceName,
		OtlpEndpoint: cfg.Metrics.OtlpEndpoint,
		OtlpInsecure: cfg.Metrics.OtlpInsecure,
	}

	rec, handler, shutdown, err := metricsSetup(context.Background(), recCfg)
	if err != nil {
		logging.Warn(logger, "metrics setup failed, continuing without telemetry", "err", err)
		return metrics.NewRecorder(), nil, nil
	}

	var metricsSrv httpServer
	if handler != nil && recCfg.Enabled {
		metricsSrv = netHTTPServer{
			inner: &http.Server{
				Addr:    ":" + recCfg.Port,
				Handler: handler,
			},
		}
	}

	return rec, metricsSrv, shutdown
}

func launchServer(name string, srv httpServer, logger *slog.Logger, onError func(error)) {
	go func() {
		logging.Info(logger, "starting "+name+" server", "addr", srv.Addr())
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logging.Warn(logger, name+" server failed", "error", err)
			if onError != nil {
				onError(err)
			}
		}
	}()
}

// Handler exposes the HTTP handler (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler()
}
