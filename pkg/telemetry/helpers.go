package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/wasmbed-project/wasmbed/pkg/version"
)

// GetTracer returns the tracer for this module, registered against
// whichever provider is currently installed.
func GetTracer() oteltrace.Tracer {
	return otel.GetTracerProvider().Tracer(version.TracerName())
}

// NewSpan creates and starts a new span, and a context containing it.
func NewSpan(ctx context.Context, t oteltrace.Tracer, name string, opts ...oteltrace.SpanStartOption) (context.Context, oteltrace.Span) {
	return t.Start(ctx, name, opts...)
}

// RecordErrorOnSpan records any non-nil error against the span and passes
// it through unchanged, so call sites can stay single-expression.
func RecordErrorOnSpan(span oteltrace.Span) func(error) error {
	return func(err error) error {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return err
	}
}

// RecordErrorOnSpanTwo is RecordErrorOnSpan for two-valued returns.
func RecordErrorOnSpanTwo[T any](span oteltrace.Span) func(T, error) (T, error) {
	return func(t T, err error) (T, error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		return t, err
	}
}
