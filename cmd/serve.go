package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	mcpserver "github.com/mark3labs/mcp-go/server"

	"github.com/teemow/calboard/internal/config"
	"github.com/teemow/calboard/internal/instrumentation"
	"github.com/teemow/calboard/internal/logging"
	"github.com/teemow/calboard/internal/probe"
	"github.com/teemow/calboard/internal/resources"
	"github.com/teemow/calboard/internal/server"
	"github.com/teemow/calboard/internal/tools/agenda_tools"
)

// Supported transports.
const (
	transportHTTP  = "http"
	transportStdio = "stdio"
)

// MetricsConfig holds configuration for the metrics server
type MetricsConfig struct {
	// Enabled determines whether to start the metrics server
	Enabled bool

	// Addr is the address for the metrics server (e.g., ":9090")
	Addr string
}

type serveOptions struct {
	transport  string
	httpAddr   string
	configPath string
	debug      bool
	logFormat  string
	metrics    MetricsConfig
}

func newServeCmd() *cobra.Command {
	var opts serveOptions

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the calendar aggregation server",
		Long: `Start the calendar aggregation server.

Supports two transports:
  - http: JSON API on --http-addr (default)
      GET /api/events?days=N   merged events over [now, now+days)
      GET /api/wall?days=N     today and upcoming from local midnight
      GET /healthz, /readyz, /healthz/detailed
  - stdio: MCP server with the agenda_* tools and the agenda:// resources

Configuration is read from --config (or CALBOARD_CONFIG) and the environment:
  CALENDAR_IDS                    comma separated Google calendar ids and ICS URLs
  TIMEZONE                        IANA time zone for the wall view (default UTC)
  GOOGLE_SERVICE_ACCOUNT_FILE     service account key file
  GOOGLE_SERVICE_ACCOUNT_JSON     inline service account key (JSON or base64)
  FETCH_TIMEOUT                   per-calendar timeout (default 30s)
  PROBE_SCHEDULE                  readiness probe cron schedule, or "off"

An invalid configuration does not stop the server: /readyz reports not
ready and the API answers 500 with the reason.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("metrics-enabled") && os.Getenv("METRICS_ENABLED") == "true" {
				opts.metrics.Enabled = true
			}
			if !cmd.Flags().Changed("metrics-addr") {
				if addr := os.Getenv("METRICS_ADDR"); addr != "" {
					opts.metrics.Addr = addr
				}
			}
			if !cmd.Flags().Changed("http-addr") {
				opts.httpAddr = ""
			}
			return runServe(opts)
		},
	}

	cmd.Flags().StringVar(&opts.transport, "transport", transportHTTP, "Transport type: http or stdio")
	cmd.Flags().StringVar(&opts.httpAddr, "http-addr", config.DefaultListen, "HTTP listen address (overrides LISTEN_ADDR and the config file)")
	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file (default: $"+configPathEnv+")")
	cmd.Flags().BoolVar(&opts.debug, "debug", false, "Enable debug logging")
	cmd.Flags().StringVar(&opts.logFormat, "log-format", "", "Log format: text or json (default: $LOG_FORMAT or text)")
	cmd.Flags().BoolVar(&opts.metrics.Enabled, "metrics-enabled", false, "Serve Prometheus metrics on a separate port (env: METRICS_ENABLED)")
	cmd.Flags().StringVar(&opts.metrics.Addr, "metrics-addr", server.DefaultMetricsAddr, "Metrics server address (env: METRICS_ADDR)")

	return cmd
}

func runServe(opts serveOptions) error {
	if opts.transport != transportHTTP && opts.transport != transportStdio {
		return fmt.Errorf("unsupported transport type: %s (supported: http, stdio)", opts.transport)
	}

	// Setup graceful shutdown
	shutdownCtx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logger, err := newLogger(os.Stderr, opts.debug, opts.logFormat)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	cfg, err := loadConfig(opts.configPath)
	if err != nil {
		return err
	}
	if opts.httpAddr != "" {
		cfg.Listen = opts.httpAddr
	}

	instrConfig := instrumentation.DefaultConfig()
	instrConfig.ServiceVersion = version
	provider, err := instrumentation.NewProvider(shutdownCtx, instrConfig, logger)
	if err != nil {
		return fmt.Errorf("failed to create instrumentation provider: %w", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := provider.Shutdown(ctx); err != nil {
			logger.Warn("error during instrumentation shutdown", logging.Err(err))
		}
	}()

	serverContext, err := server.NewServerContext(shutdownCtx, cfg,
		server.WithLogger(logger),
		server.WithInstrumentation(provider),
	)
	if err != nil {
		return fmt.Errorf("failed to create server context: %w", err)
	}
	defer func() { _ = serverContext.Shutdown() }()

	health := server.NewHealthChecker(serverContext)
	configErr := cfg.Validate()
	if configErr != nil {
		logger.Error("invalid configuration, serving health endpoints only", logging.Err(configErr))
		health.SetReady(false)
	} else {
		logger.Info("configuration loaded",
			slog.Int("calendars", len(cfg.CalendarIDs)),
			slog.String("timezone", cfg.Timezone),
			slog.Duration("fetch_timeout", cfg.FetchTimeout),
		)
	}

	if opts.transport == transportHTTP && configErr == nil && cfg.ProbeEnabled() {
		p, err := probe.New(serverContext, health, cfg.ProbeSchedule, logger)
		if err != nil {
			return err
		}
		go p.Start(shutdownCtx)
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), cfg.FetchTimeout)
			defer cancel()
			p.Stop(ctx)
		}()
	}

	if opts.transport == transportStdio {
		return runStdioServer(serverContext)
	}

	var metricsServer *server.MetricsServer
	if opts.metrics.Enabled && provider.Enabled() {
		metricsServer, err = server.NewMetricsServer(server.MetricsServerConfig{
			Addr:                    opts.metrics.Addr,
			InstrumentationProvider: provider,
			Logger:                  logger,
		})
		if err != nil {
			return fmt.Errorf("failed to create metrics server: %w", err)
		}
		go func() {
			if err := metricsServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", logging.Err(err))
			}
		}()
		defer func() {
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			if err := metricsServer.Shutdown(ctx); err != nil {
				logger.Warn("error during metrics server shutdown", logging.Err(err))
			}
		}()
	}

	return runHTTPServer(shutdownCtx, server.NewHTTPServer(serverContext, health, cfg.Listen, version), serverContext, logger)
}

func runHTTPServer(ctx context.Context, httpServer *server.HTTPServer, sc *server.ServerContext, logger *slog.Logger) error {
	serverDone := make(chan error, 1)
	go func() {
		defer close(serverDone)
		if err := httpServer.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverDone <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received, stopping HTTP server")
		// Mark not ready before draining.
		_ = sc.Shutdown()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), server.DefaultShutdownTimeout)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("error shutting down HTTP server: %w", err)
		}
	case err := <-serverDone:
		if err != nil {
			return fmt.Errorf("HTTP server stopped with error: %w", err)
		}
	}

	logger.Info("HTTP server gracefully stopped")
	return nil
}

func runStdioServer(sc *server.ServerContext) error {
	mcpSrv, err := newMCPServer(sc)
	if err != nil {
		return err
	}

	if err := mcpserver.ServeStdio(mcpSrv); err != nil {
		return fmt.Errorf("server stopped with error: %w", err)
	}
	return nil
}

// newMCPServer creates the MCP server with every tool registered.
func newMCPServer(sc *server.ServerContext) (*mcpserver.MCPServer, error) {
	mcpSrv := mcpserver.NewMCPServer("calboard", version,
		mcpserver.WithToolCapabilities(true),
		mcpserver.WithResourceCapabilities(false, false),
	)
	if err := agenda_tools.RegisterAgendaTools(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register agenda tools: %w", err)
	}
	if err := resources.RegisterAgendaResources(mcpSrv, sc); err != nil {
		return nil, fmt.Errorf("failed to register agenda resources: %w", err)
	}
	return mcpSrv, nil
}
