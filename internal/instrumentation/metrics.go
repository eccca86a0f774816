package instrumentation

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric attribute keys
const (
	attrMethod   = "method"
	attrPath     = "path"
	attrStatus   = "status"
	attrSource   = "source"
	attrReason   = "reason"
	attrCalendar = "calendar"
	attrMode     = "mode"
	attrOutcome  = "outcome"
	attrTool     = "tool"
)

// Metrics provides methods for recording observability metrics.
type Metrics struct {
	// HTTP metrics
	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram

	// Calendar fetch metrics
	calendarFetchTotal    metric.Int64Counter
	calendarFetchDuration metric.Float64Histogram
	calendarEventsFetched metric.Int64Histogram

	// Aggregation metrics
	aggregationTotal metric.Int64Counter

	// MCP Tool metrics
	toolInvocationsTotal metric.Int64Counter
	toolDuration         metric.Float64Histogram

	// detailedLabels adds the calendar label to fetch metrics
	detailedLabels bool
}

// NewMetrics creates a new Metrics instance with all metrics initialized.
// The detailedLabels parameter controls whether high-cardinality labels are included.
func NewMetrics(meter metric.Meter, detailedLabels bool) (*Metrics, error) {
	m := &Metrics{
		detailedLabels: detailedLabels,
	}

	var err error

	m.httpRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_requests_total counter: %w", err)
	}

	m.httpRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.001, 0.01, 0.1, 0.5, 1.0, 2.5, 5.0, 10.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create http_request_duration_seconds histogram: %w", err)
	}

	m.calendarFetchTotal, err = meter.Int64Counter(
		"calendar_fetch_total",
		metric.WithDescription("Total number of per-calendar fetches"),
		metric.WithUnit("{fetch}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_fetch_total counter: %w", err)
	}

	m.calendarFetchDuration, err = meter.Float64Histogram(
		"calendar_fetch_duration_seconds",
		metric.WithDescription("Per-calendar fetch duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_fetch_duration_seconds histogram: %w", err)
	}

	m.calendarEventsFetched, err = meter.Int64Histogram(
		"calendar_events_fetched",
		metric.WithDescription("Number of events returned by a successful calendar fetch"),
		metric.WithUnit("{event}"),
		metric.WithExplicitBucketBoundaries(0, 1, 5, 10, 50, 100, 500, 1000, 2500),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create calendar_events_fetched histogram: %w", err)
	}

	m.aggregationTotal, err = meter.Int64Counter(
		"aggregation_total",
		metric.WithDescription("Total number of aggregation runs by report mode and outcome"),
		metric.WithUnit("{run}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create aggregation_total counter: %w", err)
	}

	m.toolInvocationsTotal, err = meter.Int64Counter(
		"mcp_tool_invocations_total",
		metric.WithDescription("Total number of MCP tool invocations"),
		metric.WithUnit("{invocation}"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_invocations_total counter: %w", err)
	}

	m.toolDuration, err = meter.Float64Histogram(
		"mcp_tool_duration_seconds",
		metric.WithDescription("MCP tool execution duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(0.01, 0.05, 0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create mcp_tool_duration_seconds histogram: %w", err)
	}

	return m, nil
}

// RecordHTTPRequest records an HTTP request with method, path, status code, and duration.
func (m *Metrics) RecordHTTPRequest(ctx context.Context, method, path string, statusCode int, duration time.Duration) {
	if m == nil || m.httpRequestsTotal == nil || m.httpRequestDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrMethod, method),
		attribute.String(attrPath, path),
		attribute.String(attrStatus, strconv.Itoa(statusCode)),
	}

	m.httpRequestsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.httpRequestDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// RecordCalendarFetch records one per-calendar fetch.
//
// Parameters:
//   - source: calendar source kind (google, ics)
//   - calendarID: only recorded, via CalendarLabel, when detailed labels are on
//   - reason: failure class, empty on success
//   - events: number of events returned on success
//   - duration: time taken for the fetch
func (m *Metrics) RecordCalendarFetch(ctx context.Context, source, calendarID, reason string, events int, duration time.Duration) {
	if m == nil || m.calendarFetchTotal == nil || m.calendarFetchDuration == nil {
		return // Instrumentation not initialized
	}

	status := StatusSuccess
	if reason != "" {
		status = StatusError
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrSource, source),
		attribute.String(attrStatus, status),
		attribute.String(attrReason, reason),
	}
	if m.detailedLabels && calendarID != "" {
		attrs = append(attrs, attribute.String(attrCalendar, CalendarLabel(calendarID)))
	}

	m.calendarFetchTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.calendarFetchDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))

	if status == StatusSuccess && m.calendarEventsFetched != nil {
		m.calendarEventsFetched.Record(ctx, int64(events), metric.WithAttributes(attribute.String(attrSource, source)))
	}
}

// RecordAggregation records one aggregation run.
// Outcome is one of OutcomeComplete, OutcomePartial, OutcomeFailed.
func (m *Metrics) RecordAggregation(ctx context.Context, mode, outcome string) {
	if m == nil || m.aggregationTotal == nil {
		return // Instrumentation not initialized
	}

	m.aggregationTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String(attrMode, mode),
		attribute.String(attrOutcome, outcome),
	))
}

// RecordToolInvocation records an MCP tool invocation with tool name, status, and duration.
func (m *Metrics) RecordToolInvocation(ctx context.Context, toolName, status string, duration time.Duration) {
	if m == nil || m.toolInvocationsTotal == nil || m.toolDuration == nil {
		return // Instrumentation not initialized
	}

	attrs := []attribute.KeyValue{
		attribute.String(attrTool, toolName),
		attribute.String(attrStatus, status),
	}

	m.toolInvocationsTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	m.toolDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
}

// AggregationOutcome classifies a run from its success and failure counts.
func AggregationOutcome(succeeded, failed int) string {
	switch {
	case failed == 0:
		return OutcomeComplete
	case succeeded == 0:
		return OutcomeFailed
	default:
		return OutcomePartial
	}
}
