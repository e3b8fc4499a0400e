//go:build unit || !integration

package telemetry

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.opentelemetry.io/otel/codes"
	oteltrace "go.opentelemetry.io/otel/trace"
)

// testSpan records the status calls our helpers are expected to make. The
// embedded interface panics for anything else, which is what we want.
type testSpan struct {
	oteltrace.Span

	err               error
	statusCode        codes.Code
	statusDescription string
}

func (s *testSpan) RecordError(err error, _ ...oteltrace.EventOption) {
	s.err = err
}

func (s *testSpan) SetStatus(code codes.Code, description string) {
	s.statusCode = code
	s.statusDescription = description
}

func TestRecordErrorOnSpan(t *testing.T) {
	span := &testSpan{}
	f := RecordErrorOnSpan(span)

	expectedErr := errors.New("dummy error")
	actualErr := f(expectedErr)

	assert.Equal(t, expectedErr, actualErr)
	assert.Equal(t, expectedErr, span.err)
	assert.Equal(t, codes.Error, span.statusCode)
	assert.Equal(t, expectedErr.Error(), span.statusDescription)
}

func TestRecordErrorOnSpanNilError(t *testing.T) {
	span := &testSpan{}
	f := RecordErrorOnSpan(span)

	assert.NoError(t, f(nil))
	assert.NoError(t, span.err)
	assert.Equal(t, codes.Unset, span.statusCode)
}

func TestRecordErrorOnSpanTwo(t *testing.T) {
	span := &testSpan{}
	f := RecordErrorOnSpanTwo[string](span)

	expectedParam := "blah"
	expectedErr := errors.New("dummy error")

	actualParam, actualErr := f(expectedParam, expectedErr)

	assert.Equal(t, expectedParam, actualParam)
	assert.Equal(t, expectedErr, actualErr)
	assert.Equal(t, expectedErr, span.err)
	assert.Equal(t, codes.Error, span.statusCode)
}

func TestGetTracerIsUsableWithoutSetup(t *testing.T) {
	tracer := GetTracer()
	assert.NotNil(t, tracer)

	_, span := NewSpan(context.Background(), tracer, "telemetry.test")
	span.End()
}
