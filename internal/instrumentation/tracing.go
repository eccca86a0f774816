package instrumentation

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// TracerName is the default tracer name for calboard.
const TracerName = "github.com/teemow/calboard"

// Span attribute keys.
const (
	// SpanAttrTool is the MCP tool name attribute.
	SpanAttrTool = "mcp.tool"

	// SpanAttrSource is the calendar source kind (google, ics).
	SpanAttrSource = "calendar.source"

	// SpanAttrCalendar is the reduced calendar label, see CalendarLabel.
	SpanAttrCalendar = "calendar.id"

	// SpanAttrTimeMin and SpanAttrTimeMax bound the requested window.
	SpanAttrTimeMin = "calendar.time_min"
	SpanAttrTimeMax = "calendar.time_max"

	// SpanAttrEventCount is the number of events returned.
	SpanAttrEventCount = "calendar.event_count"

	// SpanAttrReason is the failure class of a fetch.
	SpanAttrReason = "calendar.failure_reason"
)

// SpanAttributeBuilder helps construct OpenTelemetry span attributes
// with consistent naming.
type SpanAttributeBuilder struct {
	attrs []attribute.KeyValue
}

// NewSpanAttributeBuilder creates a new SpanAttributeBuilder.
func NewSpanAttributeBuilder() *SpanAttributeBuilder {
	return &SpanAttributeBuilder{
		attrs: make([]attribute.KeyValue, 0, 6),
	}
}

// WithSource adds the calendar source kind.
func (b *SpanAttributeBuilder) WithSource(source string) *SpanAttributeBuilder {
	b.attrs = append(b.attrs, attribute.String(SpanAttrSource, source))
	return b
}

// WithCalendar adds the reduced calendar label.
func (b *SpanAttributeBuilder) WithCalendar(calendarID string) *SpanAttributeBuilder {
	if calendarID != "" {
		b.attrs = append(b.attrs, attribute.String(SpanAttrCalendar, CalendarLabel(calendarID)))
	}
	return b
}

// WithWindow adds the requested time window in UTC RFC 3339.
func (b *SpanAttributeBuilder) WithWindow(timeMin, timeMax time.Time) *SpanAttributeBuilder {
	b.attrs = append(b.attrs,
		attribute.String(SpanAttrTimeMin, timeMin.UTC().Format(time.RFC3339)),
		attribute.String(SpanAttrTimeMax, timeMax.UTC().Format(time.RFC3339)),
	)
	return b
}

// Build returns the constructed attributes.
func (b *SpanAttributeBuilder) Build() []attribute.KeyValue {
	return b.attrs
}

// StartSpan starts a new span with the given name and attributes.
// The caller is responsible for ending the span with defer span.End().
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, name, trace.WithAttributes(attrs...))
}

// StartToolSpan starts a span for an MCP tool invocation.
func StartToolSpan(ctx context.Context, toolName string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	allAttrs := make([]attribute.KeyValue, 0, len(attrs)+1)
	allAttrs = append(allAttrs, attribute.String(SpanAttrTool, toolName))
	allAttrs = append(allAttrs, attrs...)

	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "tool."+toolName,
		trace.WithAttributes(allAttrs...),
		trace.WithSpanKind(trace.SpanKindServer),
	)
}

// StartCalendarSpan starts a client span named calendar.<source>.list.
func StartCalendarSpan(ctx context.Context, source string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	tracer := otel.GetTracerProvider().Tracer(TracerName)
	return tracer.Start(ctx, "calendar."+source+".list",
		trace.WithAttributes(attrs...),
		trace.WithSpanKind(trace.SpanKindClient),
	)
}

// SetSpanError records an error on the span and sets the status to error.
func SetSpanError(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
}

// SetSpanSuccess sets the span status to OK.
func SetSpanSuccess(span trace.Span) {
	span.SetStatus(codes.Ok, "")
}

// GetTraceID returns the trace ID from the current span in context.
// Returns empty string if no valid span is present.
func GetTraceID(ctx context.Context) string {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		return span.SpanContext().TraceID().String()
	}
	return ""
}
