package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
)

const (
	headerHoneycombTeam    = "x-honeycomb-team"
	headerHoneycombDataset = "x-honeycomb-dataset"
)

// Settings selects how telemetry leaves the process.
type Settings struct {
	Environment string

	HoneycombAPIKey   string
	HoneycombDataset  string
	HoneycombEndpoint string

	OTLPEndpoint string
	OTLPInsecure bool

	Stdout       bool
	StdoutWriter io.Writer
}

// exportTarget names the span destination picked from Settings.
type exportTarget string

const (
	exportHoneycomb exportTarget = "honeycomb"
	exportOTLP      exportTarget = "otlp"
	exportStdout    exportTarget = "stdout"
	exportNone      exportTarget = "none"
)

func (s Settings) target() exportTarget {
	switch {
	case strings.TrimSpace(s.HoneycombAPIKey) != "":
		return exportHoneycomb
	case strings.TrimSpace(s.OTLPEndpoint) != "":
		return exportOTLP
	case s.Stdout:
		return exportStdout
	default:
		return exportNone
	}
}

func (s Settings) honeycombHeaders() map[string]string {
	return map[string]string{
		headerHoneycombTeam:    strings.TrimSpace(s.HoneycombAPIKey),
		headerHoneycombDataset: s.HoneycombDataset,
	}
}

// Instruments bundles the runtime-wide observability dependencies.
type Instruments struct {
	Logger         *slog.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Init configures slog, OpenTelemetry tracing, and meters for the process.
// It returns initialized instruments plus a shutdown function that should be
// invoked on exit to flush pending spans.
func Init(ctx context.Context, serviceName string, settings Settings) (*Instruments, func(context.Context) error, error) {
	logger := newLogger(os.Stdout)

	environment := settings.Environment
	if environment == "" {
		environment = "local"
	}
	res, err := resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithProcess(),
		resource.WithTelemetrySDK(),
		resource.WithHost(),
		resource.WithAttributes(
			attribute.String("service.name", serviceName),
			attribute.String("deployment.environment", environment),
		),
	)
	if err != nil {
		return nil, nil, err
	}

	tracerOpts := []sdktrace.TracerProviderOption{sdktrace.WithResource(res)}
	spanExporter, err := newSpanExporter(ctx, settings)
	if err != nil {
		return nil, nil, err
	}
	if spanExporter != nil {
		tracerOpts = append(tracerOpts, sdktrace.WithBatcher(spanExporter))
	}
	logger.Info("trace export configured", slog.String("target", string(settings.target())))

	tracerProvider := sdktrace.NewTracerProvider(tracerOpts...)
	otel.SetTracerProvider(tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewManualReader()),
	)
	otel.SetMeterProvider(meterProvider)

	instruments := &Instruments{
		Logger:         logger,
		TracerProvider: tracerProvider,
		MeterProvider:  meterProvider,
	}

	shutdown := func(ctx context.Context) error {
		return errors.Join(meterProvider.Shutdown(ctx), tracerProvider.Shutdown(ctx))
	}

	return instruments, shutdown, nil
}

// Tracer returns a named tracer from the configured provider.
func (i *Instruments) Tracer(name string) trace.Tracer {
	if i == nil || i.TracerProvider == nil {
		return otel.Tracer(name)
	}
	return i.TracerProvider.Tracer(name)
}

// Meter returns a named meter from the configured provider.
func (i *Instruments) Meter(name string) metric.Meter {
	if i == nil || i.MeterProvider == nil {
		return metricnoop.NewMeterProvider().Meter(name)
	}
	return i.MeterProvider.Meter(name)
}

func newLogger(w io.Writer) *slog.Logger {
	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo, AddSource: true})
	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}

// newSpanExporter returns nil when no destination is configured; spans are
// still created for context propagation but never leave the process.
func newSpanExporter(ctx context.Context, settings Settings) (sdktrace.SpanExporter, error) {
	switch settings.target() {
	case exportHoneycomb:
		endpoint := settings.HoneycombEndpoint
		if endpoint == "" {
			endpoint = "api.honeycomb.io"
		}
		return otlptracehttp.New(ctx,
			otlptracehttp.WithEndpoint(endpoint),
			otlptracehttp.WithHeaders(settings.honeycombHeaders()),
		)
	case exportOTLP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(strings.TrimSpace(settings.OTLPEndpoint))}
		if settings.OTLPInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptracehttp.New(ctx, opts...)
	case exportStdout:
		w := settings.StdoutWriter
		if w == nil {
			w = os.Stdout
		}
		return stdouttrace.New(stdouttrace.WithWriter(w))
	default:
		return nil, nil
	}
}
