// Package instrumentation provides OpenTelemetry instrumentation for calboard.
//
// This package enables production-grade observability through:
//   - OpenTelemetry metrics for HTTP requests, calendar fetches and aggregation runs
//   - Distributed tracing for aggregations and per-calendar fetches
//   - Prometheus metrics export via /metrics endpoint on dedicated port
//   - OTLP export support for modern observability platforms
//
// # Metrics
//
// Server/HTTP Metrics:
//   - http_requests_total: Counter of HTTP requests by method, path, and status
//   - http_request_duration_seconds: Histogram of HTTP request durations
//
// Calendar Metrics:
//   - calendar_fetch_total: Counter of per-calendar fetches by source, status and reason
//   - calendar_fetch_duration_seconds: Histogram of per-calendar fetch durations
//   - calendar_events_fetched: Histogram of events returned per successful fetch
//   - aggregation_total: Counter of aggregation runs by mode and outcome
//
// MCP Tool Metrics:
//   - mcp_tool_invocations_total: Counter of MCP tool invocations by tool name and status
//   - mcp_tool_duration_seconds: Histogram of MCP tool execution durations
//
// # Tracing
//
// Spans are created for each aggregation (aggregate), each calendar list call
// (calendar.<source>.list) and each MCP tool invocation (tool.<name>).
//
// # Configuration
//
// Instrumentation can be configured via environment variables:
//   - INSTRUMENTATION_ENABLED: Enable/disable instrumentation (default: true)
//   - METRICS_EXPORTER: Metrics exporter type (prometheus, otlp, stdout, default: prometheus)
//   - TRACING_EXPORTER: Tracing exporter type (otlp, stdout, none, default: none)
//   - OTEL_EXPORTER_OTLP_ENDPOINT: OTLP endpoint for traces/metrics
//   - OTEL_TRACES_SAMPLER_ARG: Sampling rate (0.0 to 1.0, default: 0.1)
//   - OTEL_SERVICE_NAME: Service name (default: calboard)
//   - METRICS_DETAILED_LABELS: Add a reduced calendar label to fetch metrics
//
// # Example Usage
//
//	provider, err := instrumentation.NewProvider(ctx, instrumentation.DefaultConfig(), logger)
//	if err != nil {
//		return err
//	}
//	defer provider.Shutdown(ctx)
//
//	provider.Metrics().RecordCalendarFetch(ctx, instrumentation.SourceGoogle, id, "", n, time.Since(start))
package instrumentation
