package server

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/teemow/calboard/internal/agenda"
)

// HTTP server timeouts. Write covers a full aggregation, which is bounded by
// the per-fetch timeout.
const (
	DefaultReadHeaderTimeout = 10 * time.Second
	DefaultIdleTimeout       = 120 * time.Second
	writeTimeoutSlack        = 15 * time.Second
)

type endpointIndex struct {
	Name      string            `json:"name"`
	Version   string            `json:"version,omitempty"`
	Endpoints map[string]string `json:"endpoints"`
}

// NewHandler returns the calendar API with health endpoints and middleware
// applied.
func NewHandler(sc *ServerContext, health *HealthChecker, version string) http.Handler {
	mux := http.NewServeMux()
	logger := sc.Logger()

	mux.HandleFunc("GET /api/events", func(w http.ResponseWriter, r *http.Request) {
		days := agenda.ParseDays(r.URL.Query().Get("days"), sc.Config().FlatDefaultDays, agenda.FlatMaxDays)
		report, err := sc.FlatReport(r.Context(), days)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	})

	mux.HandleFunc("GET /api/wall", func(w http.ResponseWriter, r *http.Request) {
		days := agenda.ParseDays(r.URL.Query().Get("days"), sc.Config().WallDefaultDays, agenda.WallMaxDays)
		report, err := sc.WallReport(r.Context(), days)
		if err != nil {
			writeError(w, r, logger, err)
			return
		}
		writeJSON(w, http.StatusOK, report)
	})

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, endpointIndex{
			Name:    "calboard",
			Version: version,
			Endpoints: map[string]string{
				"events": "/api/events?days=30",
				"wall":   "/api/wall?days=7",
				"health": "/healthz",
				"ready":  "/readyz",
			},
		})
	})

	if health != nil {
		health.RegisterHealthEndpoints(mux)
	}

	return withRequestID(withObservability(mux, logger, sc.Metrics()))
}

// HTTPServer serves the calendar API.
type HTTPServer struct {
	sc      *ServerContext
	handler http.Handler
	addr    string

	mu  sync.Mutex
	srv *http.Server
}

// NewHTTPServer creates the API server listening on addr.
func NewHTTPServer(sc *ServerContext, health *HealthChecker, addr, version string) *HTTPServer {
	return &HTTPServer{
		sc:      sc,
		handler: NewHandler(sc, health, version),
		addr:    addr,
	}
}

// Handler returns the fully wrapped handler.
func (s *HTTPServer) Handler() http.Handler {
	return s.handler
}

// Start listens and serves until Shutdown. It returns http.ErrServerClosed
// after a graceful shutdown.
func (s *HTTPServer) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.addr, err)
	}

	s.mu.Lock()
	s.addr = ln.Addr().String()
	s.srv = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: DefaultReadHeaderTimeout,
		WriteTimeout:      s.sc.Config().FetchTimeout + writeTimeoutSlack,
		IdleTimeout:       DefaultIdleTimeout,
	}
	srv := s.srv
	s.mu.Unlock()

	s.sc.Logger().Info("starting HTTP server", slog.String("addr", ln.Addr().String()))
	return srv.Serve(ln)
}

// Shutdown stops accepting connections and waits for in-flight requests.
func (s *HTTPServer) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	srv := s.srv
	s.mu.Unlock()

	if srv == nil {
		return nil
	}
	s.sc.Logger().Info("shutting down HTTP server")
	return srv.Shutdown(ctx)
}

// Addr returns the listen address, resolved once Start has bound it.
func (s *HTTPServer) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}
