package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/teemow/calboard/internal/agenda"
	"github.com/teemow/calboard/internal/calendar"
	"github.com/teemow/calboard/internal/config"
	"github.com/teemow/calboard/internal/google"
	"github.com/teemow/calboard/internal/ics"
	"github.com/teemow/calboard/internal/instrumentation"
	"github.com/teemow/calboard/internal/sources"
)

// ServerContext holds the configuration and the lazily built aggregation
// engine shared by the HTTP API, the MCP tools, the CLI and the probe.
type ServerContext struct {
	ctx    context.Context
	cancel context.CancelFunc
	cfg    *config.Config
	loc    *time.Location
	logger *slog.Logger

	provider *instrumentation.Provider
	lister   agenda.Lister // overrides the configured clients when set
	now      func() time.Time

	mu       sync.Mutex
	engine   *agenda.Engine
	shutdown bool
}

// Option configures a ServerContext.
type Option func(*ServerContext)

// WithLogger sets the logger. The default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(sc *ServerContext) {
		if logger != nil {
			sc.logger = logger
		}
	}
}

// WithInstrumentation sets the OpenTelemetry provider used for metrics.
func WithInstrumentation(provider *instrumentation.Provider) Option {
	return func(sc *ServerContext) {
		sc.provider = provider
	}
}

// WithLister replaces the Google and ICS clients with lister. Used by tests
// and by callers that bring their own calendar client.
func WithLister(lister agenda.Lister) Option {
	return func(sc *ServerContext) {
		sc.lister = lister
	}
}

// WithClock overrides time.Now for window computation.
func WithClock(now func() time.Time) Option {
	return func(sc *ServerContext) {
		if now != nil {
			sc.now = now
		}
	}
}

// NewServerContext creates a new server context. An invalid configuration
// does not fail here; it surfaces as a ConfigurationError from Engine so
// that the process can still serve health endpoints.
func NewServerContext(ctx context.Context, cfg *config.Config, opts ...Option) (*ServerContext, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	shutdownCtx, cancel := context.WithCancel(ctx)
	sc := &ServerContext{
		ctx:    shutdownCtx,
		cancel: cancel,
		cfg:    cfg,
		logger: slog.Default(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(sc)
	}

	sc.loc = time.UTC
	if loc, err := cfg.Location(); err == nil {
		sc.loc = loc
	} else {
		sc.logger.Warn("invalid timezone, using UTC", slog.String("timezone", cfg.Timezone))
	}

	return sc, nil
}

// Context returns the server context
func (sc *ServerContext) Context() context.Context {
	return sc.ctx
}

// Config returns the configuration.
func (sc *ServerContext) Config() *config.Config {
	return sc.cfg
}

// Logger returns the server logger.
func (sc *ServerContext) Logger() *slog.Logger {
	return sc.logger
}

// Location returns the display time zone.
func (sc *ServerContext) Location() *time.Location {
	return sc.loc
}

// Now returns the current time according to the configured clock.
func (sc *ServerContext) Now() time.Time {
	return sc.now()
}

// Metrics returns the metrics recorder, or nil when instrumentation is off.
func (sc *ServerContext) Metrics() *instrumentation.Metrics {
	if sc.provider == nil || !sc.provider.Enabled() {
		return nil
	}
	return sc.provider.Metrics()
}

// Engine returns the aggregation engine, building it on first use. A
// configuration problem is returned as a *agenda.ConfigurationError and is
// not cached, so every request reports it.
func (sc *ServerContext) Engine() (*agenda.Engine, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.engine != nil {
		return sc.engine, nil
	}
	if err := sc.cfg.Validate(); err != nil {
		return nil, err
	}

	router, err := sc.buildRouter()
	if err != nil {
		return nil, err
	}

	sc.engine = agenda.NewEngine(agenda.NewFetcher(router, sc.cfg.FetchTimeout), sc.logger)
	return sc.engine, nil
}

func (sc *ServerContext) buildRouter() (agenda.Lister, error) {
	metrics := sc.Metrics()
	if sc.lister != nil {
		return sources.Instrument(sc.lister, instrumentation.SourceCustom, metrics, sc.logger), nil
	}

	var googleLister agenda.Lister
	if sc.cfg.HasGoogleCalendars() {
		creds, err := sc.cfg.Credentials()
		if err != nil {
			return nil, err
		}
		httpClient, err := google.NewHTTPClient(sc.ctx, creds)
		if err != nil {
			return nil, err
		}
		client, err := calendar.NewClient(sc.ctx, httpClient, sc.cfg.GoogleEndpoint)
		if err != nil {
			return nil, agenda.NewConfigurationError("%v", err)
		}
		googleLister = client
	}

	feeds := ics.NewClient(&http.Client{
		Timeout:   sc.cfg.FetchTimeout,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}, sc.logger)
	return sources.NewInstrumentedRouter(googleLister, feeds, metrics, sc.logger), nil
}

// IsShutdown returns whether the server has been shutdown
func (sc *ServerContext) IsShutdown() bool {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.shutdown
}

// Shutdown shuts down the server context
func (sc *ServerContext) Shutdown() error {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.shutdown {
		return nil
	}

	sc.shutdown = true
	sc.cancel()
	return nil
}
