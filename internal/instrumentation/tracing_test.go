package instrumentation

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestSpanAttributeBuilder(t *testing.T) {
	min := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)

	attrs := NewSpanAttributeBuilder().
		WithSource(SourceGoogle).
		WithCalendar("abc@group.calendar.google.com").
		WithWindow(min, min.AddDate(0, 0, 7)).
		Build()

	want := map[string]string{
		SpanAttrSource:   SourceGoogle,
		SpanAttrCalendar: "group.calendar.google.com",
		SpanAttrTimeMin:  "2024-03-01T00:00:00Z",
		SpanAttrTimeMax:  "2024-03-08T00:00:00Z",
	}
	if len(attrs) != len(want) {
		t.Fatalf("expected %d attributes, got %d", len(want), len(attrs))
	}
	for _, attr := range attrs {
		if got := attr.Value.AsString(); got != want[string(attr.Key)] {
			t.Errorf("attribute %s = %q, want %q", attr.Key, got, want[string(attr.Key)])
		}
	}
}

func TestSpanAttributeBuilder_EmptyCalendar(t *testing.T) {
	attrs := NewSpanAttributeBuilder().WithSource(SourceICS).WithCalendar("").Build()
	if len(attrs) != 1 {
		t.Errorf("expected 1 attribute (only source), got %d", len(attrs))
	}
}

func TestSpans(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	provider, err := NewProvider(ctx, Config{
		ServiceName:       "test-service",
		ServiceVersion:    "1.0.0",
		Enabled:           true,
		MetricsExporter:   ExporterPrometheus,
		TracingExporter:   ExporterNone,
		TraceSamplingRate: 1,
	}, nil)
	if err != nil {
		t.Fatalf("failed to create provider: %v", err)
	}
	defer func() { _ = provider.Shutdown(ctx) }()

	spanCtx, span := StartSpan(ctx, "aggregate")
	if spanCtx == nil || span == nil {
		t.Fatal("expected context and span to be non-nil")
	}
	SetSpanSuccess(span)
	span.End()

	_, toolSpan := StartToolSpan(ctx, "agenda_events")
	SetSpanError(toolSpan, errors.New("test error"))
	SetSpanError(toolSpan, nil) // nil error should be safe
	toolSpan.End()

	_, calSpan := StartCalendarSpan(ctx, SourceICS)
	calSpan.End()
}

func TestGetTraceID_NoSpan(t *testing.T) {
	if id := GetTraceID(context.Background()); id != "" {
		t.Errorf("expected empty trace ID, got %q", id)
	}
}
