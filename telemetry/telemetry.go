package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"maker-profiles/config"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

const shutdownTimeout = 5 * time.Second

// ShutdownFunc flushes and stops the installed providers.
type ShutdownFunc func(context.Context) error

// Enabled reports whether any OTLP endpoint is configured.
func Enabled(cfg config.TelemetryConfig) bool {
	return cfg.OTLPEndpoint != "" || cfg.OTLPTracesEndpoint != "" || cfg.OTLPMetricsEndpoint != ""
}

// Init installs the global propagator and, when an endpoint is configured,
// OTLP trace and metric providers. Without an endpoint the global no-op
// providers stay in place and the request logger logs empty trace ids.
func Init(ctx context.Context, cfg config.Config) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	if !Enabled(cfg.Telemetry) {
		log.Println("OpenTelemetry disabled: OTEL_EXPORTER_OTLP_ENDPOINT is empty")
		return func(context.Context) error { return nil }, nil
	}

	res, err := resource.New(
		ctx,
		resource.WithFromEnv(),
		resource.WithAttributes(
			semconv.ServiceName(cfg.Telemetry.ServiceName),
			semconv.ServiceVersion(cfg.Telemetry.ServiceVersion),
			attribute.String("deployment.environment", cfg.AppEnv),
		),
	)
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	traceExporter, metricExporter, err := newExporters(ctx, cfg.Telemetry)
	if err != nil {
		return nil, err
	}

	traceProvider := trace.NewTracerProvider(
		trace.WithBatcher(traceExporter),
		trace.WithResource(res),
	)
	metricProvider := metric.NewMeterProvider(
		metric.WithResource(res),
		metric.WithReader(metric.NewPeriodicReader(
			metricExporter,
			metric.WithInterval(cfg.Telemetry.MetricExportInterval),
		)),
	)

	otel.SetTracerProvider(traceProvider)
	otel.SetMeterProvider(metricProvider)
	log.Printf("OpenTelemetry enabled: protocol=%s traces=%s metrics=%s", cfg.Telemetry.OTLPProtocol, traceEndpoint(cfg.Telemetry), metricEndpoint(cfg.Telemetry))

	return func(shutdownCtx context.Context) error {
		shutdownCtx, cancel := context.WithTimeout(shutdownCtx, shutdownTimeout)
		defer cancel()
		return errors.Join(traceProvider.Shutdown(shutdownCtx), metricProvider.Shutdown(shutdownCtx))
	}, nil
}

func traceEndpoint(cfg config.TelemetryConfig) string {
	if cfg.OTLPTracesEndpoint != "" {
		return cfg.OTLPTracesEndpoint
	}
	return cfg.OTLPEndpoint
}

func metricEndpoint(cfg config.TelemetryConfig) string {
	if cfg.OTLPMetricsEndpoint != "" {
		return cfg.OTLPMetricsEndpoint
	}
	return cfg.OTLPEndpoint
}

func usesHTTP(protocol string) bool {
	return protocol == "http/protobuf" || protocol == "http"
}

func newExporters(ctx context.Context, cfg config.TelemetryConfig) (trace.SpanExporter, metric.Exporter, error) {
	if usesHTTP(cfg.OTLPProtocol) {
		return newHTTPExporters(ctx, cfg)
	}
	return newGRPCExporters(ctx, cfg)
}

func newHTTPExporters(ctx context.Context, cfg config.TelemetryConfig) (trace.SpanExporter, metric.Exporter, error) {
	traceOptions := []otlptracehttp.Option{
		otlptracehttp.WithEndpoint(traceEndpoint(cfg)),
		otlptracehttp.WithHeaders(cfg.OTLPHeaders),
		otlptracehttp.WithTimeout(cfg.ExportTimeout),
	}
	metricOptions := []otlpmetrichttp.Option{
		otlpmetrichttp.WithEndpoint(metricEndpoint(cfg)),
		otlpmetrichttp.WithHeaders(cfg.OTLPHeaders),
		otlpmetrichttp.WithTimeout(cfg.ExportTimeout),
	}
	if cfg.OTLPInsecure {
		traceOptions = append(traceOptions, otlptracehttp.WithInsecure())
		metricOptions = append(metricOptions, otlpmetrichttp.WithInsecure())
	}

	traceExporter, err := otlptracehttp.New(ctx, traceOptions...)
	if err != nil {
		return nil, nil, fmt.Errorf("create trace exporter: %w", err)
	}
	metricExporter, err := otlpmetrichttp.New(ctx, metricOptions...)
	if err != nil {
		return nil, nil, fmt.Errorf("create metric exporter: %w", err)
	}
	return traceExporter, metricExporter, nil
}

func newGRPCExporters(ctx context.Context, cfg config.TelemetryConfig) (trace.SpanExporter, metric.Exporter, error) {
	traceOptions := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(traceEndpoint(cfg)),
		otlptracegrpc.WithHeaders(cfg.OTLPHeaders),
		otlptracegrpc.WithTimeout(cfg.ExportTimeout),
	}
	metricOptions := []otlpmetricgrpc.Option{
		otlpmetricgrpc.WithEndpoint(metricEndpoint(cfg)),
		otlpmetricgrpc.WithHeaders(cfg.OTLPHeaders),
		otlpmetricgrpc.WithTimeout(cfg.ExportTimeout),
	}
	if cfg.OTLPInsecure {
		traceOptions = append(traceOptions, otlptracegrpc.WithInsecure())
		metricOptions = append(metricOptions, otlpmetricgrpc.WithInsecure())
	}

	traceExporter, err := otlptracegrpc.New(ctx, traceOptions...)
	if err != nil {
		return nil, nil, fmt.Errorf("create trace exporter: %w", err)
	}
	metricExporter, err := otlpmetricgrpc.New(ctx, metricOptions...)
	if err != nil {
		return nil, nil, fmt.Errorf("create metric exporter: %w", err)
	}
	return traceExporter, metricExporter, nil
}
