// Package server provides the server context and the HTTP API for the
// calboard aggregator.
//
// # Key Components
//
// ServerContext owns the configuration and builds the aggregation engine
// lazily on first use. The engine is cached for the life of the process;
// reports are not. FlatReport and WallReport are shared by the HTTP handlers,
// the MCP tools and the events command.
//
// NewHandler serves:
//   - GET /api/events?days=N: merged events over [now, now+days)
//   - GET /api/wall?days=N: today and upcoming from local midnight
//   - GET /: an index of the endpoints
//   - /healthz, /readyz and /healthz/detailed
//
// A configuration error fails the whole request with HTTP 500 and
// {"error": "..."}. Individual calendar failures never do; they are listed
// in the report's errors field.
//
// MetricsServer exposes Prometheus metrics on a separate port.
package server
