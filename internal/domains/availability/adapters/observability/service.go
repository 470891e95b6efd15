package observability

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"

	"github.com/Apurer/pharmacy-availability/internal/domains/availability/application"
	"github.com/Apurer/pharmacy-availability/internal/domains/availability/domain"
	"github.com/Apurer/pharmacy-availability/internal/domains/availability/ports"
)

const tracerName = "github.com/Apurer/pharmacy-availability/internal/domains/availability/adapters/observability"

// Service decorates the availability service with tracing, logging, and metrics.
type Service struct {
	inner   ports.Service
	tracer  trace.Tracer
	logger  *slog.Logger
	metrics serviceMetrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

func WithMeter(m metric.Meter) Option {
	return func(s *Service) {
		s.metrics = newServiceMetrics(m)
	}
}

// New wraps the core availability service.
func New(inner ports.Service, opts ...Option) ports.Service {
	s := &Service{
		inner:   inner,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		metrics: newServiceMetrics(nil),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	if s.tracer == nil {
		s.tracer = nooptrace.NewTracerProvider().Tracer(tracerName)
	}
	return s
}

func (s *Service) Aggregate(ctx context.Context, postalCode string) (domain.AggregationResult, error) {
	ctx, span := s.tracer.Start(ctx, "AvailabilityService.Aggregate", trace.WithAttributes(attribute.String("postal_code", postalCode)))
	defer span.End()

	start := time.Now()
	s.logInfo(ctx, "aggregating availability", slog.String("postal_code", postalCode))
	result, err := s.inner.Aggregate(ctx, postalCode)
	if err != nil {
		stage := stageOf(err)
		span.SetAttributes(attribute.String("aggregation.stage", stage))
		s.metrics.recordAggregation(ctx, "failed", stage, time.Since(start))
		return nil, s.handleError(ctx, span, err, "failed to aggregate availability",
			slog.String("postal_code", postalCode), slog.String("stage", stage))
	}

	possible := 0
	for _, record := range result {
		if record.PossibleAvailability {
			possible++
		}
	}
	span.SetAttributes(
		attribute.Int("locations.count", len(result)),
		attribute.Int("locations.possible_availability", possible),
	)
	s.metrics.recordAggregation(ctx, "succeeded", "", time.Since(start))
	s.metrics.recordRecords(ctx, len(result), possible)
	s.logInfo(ctx, "availability aggregated",
		slog.String("postal_code", postalCode),
		slog.Int("locations", len(result)),
		slog.Int("possible_availability", possible))
	return result, nil
}

func stageOf(err error) string {
	var aggErr *application.AggregationError
	if errors.As(err, &aggErr) {
		return string(aggErr.Stage)
	}
	return "unknown"
}

func (s *Service) logInfo(ctx context.Context, msg string, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	s.logger.LogAttrs(ctx, slog.LevelInfo, msg, attrs...)
}

func (s *Service) logError(ctx context.Context, msg string, err error, attrs ...slog.Attr) {
	if s.logger == nil {
		return
	}
	if err != nil {
		attrs = append(attrs, slog.String("error", err.Error()))
	}
	s.logger.LogAttrs(ctx, slog.LevelError, msg, attrs...)
}

func (s *Service) handleError(ctx context.Context, span trace.Span, err error, msg string, attrs ...slog.Attr) error {
	if span != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	s.logError(ctx, msg, err, attrs...)
	return err
}

type serviceMetrics struct {
	aggregations metric.Int64Counter
	duration     metric.Float64Histogram
	records      metric.Int64Counter
	possible     metric.Int64Counter
}

func newServiceMetrics(m metric.Meter) serviceMetrics {
	if m == nil {
		return serviceMetrics{}
	}
	aggregations, _ := m.Int64Counter("availability.service.aggregations", metric.WithDescription("Number of availability aggregations by outcome"))
	duration, _ := m.Float64Histogram("availability.service.aggregation_duration", metric.WithDescription("Aggregation latency"), metric.WithUnit("s"))
	records, _ := m.Int64Counter("availability.service.records", metric.WithDescription("Number of availability records returned"))
	possible, _ := m.Int64Counter("availability.service.possible_availability", metric.WithDescription("Number of records reporting possible availability"))
	return serviceMetrics{aggregations: aggregations, duration: duration, records: records, possible: possible}
}

func (m serviceMetrics) recordAggregation(ctx context.Context, outcome, stage string, elapsed time.Duration) {
	attrs := []attribute.KeyValue{attribute.String("outcome", outcome)}
	if stage != "" {
		attrs = append(attrs, attribute.String("stage", stage))
	}
	if m.aggregations != nil {
		m.aggregations.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
	if m.duration != nil {
		m.duration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(attrs...))
	}
}

func (m serviceMetrics) recordRecords(ctx context.Context, total, possible int) {
	if m.records != nil {
		m.records.Add(ctx, int64(total))
	}
	if m.possible != nil {
		m.possible.Add(ctx, int64(possible))
	}
}

var _ ports.Service = (*Service)(nil)
