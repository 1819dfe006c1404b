package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/MrSnakeDoc/maintmon/internal/config"
	"github.com/MrSnakeDoc/maintmon/internal/httpserver"
	"github.com/MrSnakeDoc/maintmon/internal/httpserver/deps"
	"github.com/MrSnakeDoc/maintmon/internal/logger"
	"github.com/MrSnakeDoc/maintmon/internal/metrics"
	"github.com/MrSnakeDoc/maintmon/internal/monitor"
	"github.com/MrSnakeDoc/maintmon/internal/source/statusapi"
	"github.com/MrSnakeDoc/maintmon/internal/version"
)

type App struct {
	cfg     *config.Config
	logger  logger.Logger
	server  *httpserver.Server
	monitor *monitor.Monitor
}

func New() *App {
	cfg := config.Load()

	loggerClient := logger.New(cfg.LogLevel, cfg.PrettyLog)

	registry := prometheus.NewRegistry()
	recorder := metrics.NewRecorder(registry)

	client := statusapi.NewClient(cfg.StatusURL, cfg.FetchTimeout)

	mon := monitor.New(client, monitor.Options{
		Override: cfg.MaintenanceOverride,
		Interval: cfg.PollInterval,
		Logger:   loggerClient,
		Metrics:  recorder,
	})

	if cfg.MaintenanceOverride {
		loggerClient.Warn("maintenance override enabled by configuration, maintenance mode is forced on")
	}

	// Dependencies passed to routes (extend as needed).
	d := deps.Deps{
		Logger:           loggerClient,
		StartTime:        time.Now(),
		Version:          version.Version,
		Commit:           version.Commit,
		BuildDate:        version.BuildDate,
		GoVersion:        version.GoVersion,
		Monitor:          mon,
		PromRegistry:     registry,
		TrustProxy:       cfg.TrustProxy,
		RecheckBurst:     cfg.RecheckBurst,
		RecheckPerMinute: cfg.RecheckPerMinute,
	}

	server := httpserver.New(cfg, loggerClient, d)

	return &App{
		cfg:     cfg,
		logger:  loggerClient,
		server:  server,
		monitor: mon,
	}
}

func (a *App) Run() error {
	a.logger.Infof("🚀 Starting maintmon v%s on %s", version.Version, a.cfg.ListenPort)
	a.logger.Infof("maintmon %s (commit=%s, built=%s, go=%s)",
		version.Version, version.Commit, version.BuildDate, version.GoVersion)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Start polling the status endpoint (immediate check, then fixed cadence)
	a.monitor.Activate(ctx)
	a.logger.Info("status monitor started",
		logger.String("endpoint", a.cfg.StatusURL),
		logger.Duration("interval", a.cfg.PollInterval))

	errCh := make(chan error, 1)
	go func() {
		if err := a.server.Start(); err != nil {
			errCh <- fmt.Errorf("http server error: %w", err)
		}
	}()

	select {
	case <-ctx.Done():
		a.logger.Info("⏳ Shutting down gracefully...")
	case err := <-errCh:
		return err
	}

	// Stop polling; any in-flight check is discarded.
	a.monitor.Deactivate()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout)
	defer cancel()
	if err := a.server.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("failed to stop server: %w", err)
	}

	a.logger.Info("✅ maintmon stopped cleanly")
	return nil
}
