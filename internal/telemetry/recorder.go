package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/sdk/trace"
)

// SpanRecorder is an in-memory exporter used by tests to assert on the spans
// a request produced.
type SpanRecorder struct {
	mu    sync.RWMutex
	spans []trace.ReadOnlySpan
}

func NewSpanRecorder() *SpanRecorder {
	return &SpanRecorder{}
}

func (r *SpanRecorder) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.spans = append(r.spans, spans...)
	return nil
}

func (r *SpanRecorder) Shutdown(ctx context.Context) error {
	return nil
}

func (r *SpanRecorder) Spans() []trace.ReadOnlySpan {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]trace.ReadOnlySpan, len(r.spans))
	copy(result, r.spans)
	return result
}

func (r *SpanRecorder) SpansByName(name string) []trace.ReadOnlySpan {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []trace.ReadOnlySpan
	for _, span := range r.spans {
		if span.Name() == name {
			result = append(result, span)
		}
	}
	return result
}

// SpansByOperation returns spans whose "operation" attribute equals operation.
func (r *SpanRecorder) SpansByOperation(operation string) []trace.ReadOnlySpan {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var result []trace.ReadOnlySpan
	for _, span := range r.spans {
		if v, ok := Attribute(span, "operation"); ok && v.AsString() == operation {
			result = append(result, span)
		}
	}
	return result
}

func (r *SpanRecorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.spans = nil
}

// NewRecordingProvider returns a tracer provider that exports synchronously
// into r, so spans are visible as soon as they end.
func NewRecordingProvider(r *SpanRecorder) *trace.TracerProvider {
	return trace.NewTracerProvider(trace.WithSyncer(r))
}

func Attribute(span trace.ReadOnlySpan, key attribute.Key) (attribute.Value, bool) {
	for _, attr := range span.Attributes() {
		if attr.Key == key {
			return attr.Value, true
		}
	}
	return attribute.Value{}, false
}
