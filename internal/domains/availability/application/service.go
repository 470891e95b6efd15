package application

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	nooptrace "go.opentelemetry.io/otel/trace/noop"
	"golang.org/x/sync/semaphore"
	"golang.org/x/sync/singleflight"

	"github.com/Apurer/pharmacy-availability/internal/domains/availability/domain"
	"github.com/Apurer/pharmacy-availability/internal/domains/availability/ports"
)

const tracerName = "github.com/Apurer/pharmacy-availability/internal/domains/availability/application"

const (
	sourceCache = "cache"
	sourceHTTP  = "http"
)

// Service resolves the locations near a postal code and probes each one for slots.
type Service struct {
	cache   ports.LocationCache
	locator ports.StoreLocator
	slots   ports.SlotChecker
	tracer  trace.Tracer

	probeLimit int64
	dedupe     bool
	lookups    singleflight.Group
}

// Option configures the Service.
type Option func(*Service)

// WithTracer records pipeline spans on the given tracer.
func WithTracer(tr trace.Tracer) Option {
	return func(s *Service) {
		s.tracer = tr
	}
}

// WithProbeConcurrency caps in-flight probes per aggregation. Zero or less means unbounded.
func WithProbeConcurrency(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.probeLimit = int64(n)
			return
		}
		s.probeLimit = 0
	}
}

// WithLookupDeduplication collapses concurrent cache misses for the same postal
// code into a single upstream lookup.
func WithLookupDeduplication(enabled bool) Option {
	return func(s *Service) {
		s.dedupe = enabled
	}
}

// NewService wires the aggregator with an owned cache and the two upstream ports.
func NewService(cache ports.LocationCache, locator ports.StoreLocator, slots ports.SlotChecker, opts ...Option) *Service {
	s := &Service{
		cache:   cache,
		locator: locator,
		slots:   slots,
		tracer:  nooptrace.NewTracerProvider().Tracer(tracerName),
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

// Aggregate returns one availability record per location near the postal code.
// The first failure, in resolution or in any probe, fails the whole call.
func (s *Service) Aggregate(ctx context.Context, postalCode string) (domain.AggregationResult, error) {
	if s == nil || s.cache == nil || s.locator == nil || s.slots == nil {
		return nil, ErrNotConfigured
	}
	locations, err := s.resolve(ctx, postalCode)
	if err != nil {
		return nil, &AggregationError{PostalCode: postalCode, Stage: StageResolve, Err: err}
	}
	return s.probeAll(ctx, postalCode, locations)
}

func (s *Service) resolve(ctx context.Context, postalCode string) ([]domain.Location, error) {
	if locations, ok := s.cache.Get(ctx, postalCode); ok {
		_, span := s.tracer.Start(ctx, "list stores", trace.WithAttributes(
			attribute.String("postal_code", postalCode),
			attribute.String("source", sourceCache),
			attribute.Int("locations.count", len(locations)),
		))
		span.End()
		return locations, nil
	}
	if !s.dedupe {
		return s.lookup(ctx, postalCode)
	}
	// The shared lookup outlives any single caller; the client's per-call
	// deadline still bounds it.
	shared := s.lookups.DoChan(postalCode, func() (any, error) {
		return s.lookup(context.WithoutCancel(ctx), postalCode)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-shared:
		if res.Err != nil {
			return nil, res.Err
		}
		return domain.CloneLocations(res.Val.([]domain.Location)), nil
	}
}

// lookup calls the store locator and populates the cache only on success.
func (s *Service) lookup(ctx context.Context, postalCode string) ([]domain.Location, error) {
	ctx, span := s.tracer.Start(ctx, "list stores", trace.WithAttributes(
		attribute.String("postal_code", postalCode),
		attribute.String("source", sourceHTTP),
	))
	defer span.End()

	locations, err := s.locator.Lookup(ctx, postalCode)
	if err != nil {
		recordSpanError(span, err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("locations.count", len(locations)))
	s.cache.Put(ctx, postalCode, locations)
	return locations, nil
}

type probeResult struct {
	location  domain.Location
	available bool
	err       error
}

// probeAll fans out one probe per location and fans the results back in as they
// complete. On the first error it returns immediately; the shared context is
// cancelled and the remaining probes drain into the buffered channel unread.
func (s *Service) probeAll(ctx context.Context, postalCode string, locations []domain.Location) (domain.AggregationResult, error) {
	ctx, span := s.tracer.Start(ctx, "get all store availability", trace.WithAttributes(
		attribute.String("postal_code", postalCode),
		attribute.Int("locations.count", len(locations)),
	))
	defer span.End()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var sem *semaphore.Weighted
	if s.probeLimit > 0 {
		sem = semaphore.NewWeighted(s.probeLimit)
	}

	results := make(chan probeResult, len(locations))
	for _, loc := range locations {
		go func() {
			results <- s.probe(ctx, sem, loc)
		}()
	}

	records := make(domain.AggregationResult, 0, len(locations))
	for range locations {
		r := <-results
		if r.err != nil {
			recordSpanError(span, r.err)
			return nil, &AggregationError{
				PostalCode: postalCode,
				Stage:      StageProbe,
				LocationID: r.location.ID,
				Err:        r.err,
			}
		}
		records = append(records, domain.NewAvailabilityRecord(r.location, r.available))
	}
	return records, nil
}

func (s *Service) probe(ctx context.Context, sem *semaphore.Weighted, loc domain.Location) probeResult {
	if sem != nil {
		if err := sem.Acquire(ctx, 1); err != nil {
			return probeResult{location: loc, err: fmt.Errorf("wait for probe slot: %w", err)}
		}
		defer sem.Release(1)
	}
	ctx, span := s.tracer.Start(ctx, "get store availability", trace.WithAttributes(
		attribute.Int("location.id", int(loc.ID)),
	))
	defer span.End()

	available, err := s.slots.CheckAvailability(ctx, loc.ID)
	if err != nil {
		recordSpanError(span, err)
		return probeResult{location: loc, err: err}
	}
	span.SetAttributes(attribute.Bool("possible_availability", available))
	return probeResult{location: loc, available: available}
}

func recordSpanError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

var _ ports.Service = (*Service)(nil)
