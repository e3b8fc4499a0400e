// Package telemetry wires the module's otel tracing. Exporters are
// configured entirely from the standard OTEL_* environment variables; when
// no endpoint is defined, spans stay in-process and are never exported.
package telemetry

import (
	"context"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
	oteltrace "go.opentelemetry.io/otel/trace"

	"github.com/wasmbed-project/wasmbed/pkg/version"
)

const (
	otlpEndpoint       = "OTEL_EXPORTER_OTLP_ENDPOINT"
	otlpTracesEndpoint = "OTEL_EXPORTER_OTLP_TRACES_ENDPOINT"
	otlpProtocol       = "OTEL_EXPORTER_OTLP_PROTOCOL"
	otlpTracesProtocol = "OTEL_EXPORTER_OTLP_TRACES_PROTOCOL"

	otlpProtocolHTTP = "http/protobuf"
	otlpProtocolGrpc = "grpc"
)

// SetupFromEnvs installs a trace provider according to the OTEL_* envs.
// Safe to skip entirely; span helpers fall back to the otel no-op provider.
func SetupFromEnvs() {
	newTraceProvider()

	otel.SetErrorHandler(otel.ErrorHandlerFunc(func(err error) {
		log.Err(err).Msg("Error occurred while handling spans")
	}))
}

func newTraceProvider() {
	if !isTracingEnabled() {
		log.Debug().Msgf("OTLP tracing endpoints are not defined. No traces will be exported")
		return
	}

	// The context passed to the exporter is only used when connecting to the endpoint
	ctx := context.Background()
	client, err := getTraceClient()
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize OTLP trace client")
		return
	}

	exp, err := otlptrace.New(ctx, client)
	if err != nil {
		log.Error().Err(err).Msg("failed to initialize OTLP trace exporter")
		return
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(newResource()),
	)

	otel.SetTracerProvider(tp)

	otel.SetTextMapPropagator(
		propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		),
	)
}

func getTraceClient() (client otlptrace.Client, err error) {
	protocol := otlpProtocolHTTP
	if v := os.Getenv(otlpProtocol); v != "" {
		protocol = v
	}
	if v := os.Getenv(otlpTracesProtocol); v != "" {
		protocol = v
	}
	switch protocol {
	case otlpProtocolHTTP:
		client = otlptracehttp.NewClient()
	case otlpProtocolGrpc:
		client = otlptracegrpc.NewClient()
	default:
		err = fmt.Errorf("unknown or unsupported OTLP protocol: %s. No traces will be exported", protocol)
	}
	return
}

func isTracingEnabled() bool {
	_, endpointDefined := os.LookupEnv(otlpEndpoint)
	_, tracingEndpointDefined := os.LookupEnv(otlpTracesEndpoint)
	return endpointDefined || tracingEndpointDefined
}

// Cleanup flushes remaining spans to the exporter and releases resources.
func Cleanup() error {
	type shutdown interface {
		oteltrace.TracerProvider
		Shutdown(ctx context.Context) error
	}
	tracer, ok := otel.GetTracerProvider().(shutdown)
	if ok {
		return tracer.Shutdown(context.Background())
	}
	return nil
}

// newResource returns a resource describing this application.
func newResource() *resource.Resource {
	res, err := resource.Merge(
		resource.Environment(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("wasmbed"),
			semconv.ServiceVersionKey.String(version.Number),
		),
	)

	if err != nil {
		log.Error().Err(err).Msg("failed to create otel resource. Falling back to default resource config")
		res = resource.Default()
	}
	return res
}
