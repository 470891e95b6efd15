package api

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	availabilityserver "github.com/Apurer/pharmacy-availability/go"
	riteaidclient "github.com/Apurer/pharmacy-availability/internal/clients/http/riteaid"
	riteaidadapter "github.com/Apurer/pharmacy-availability/internal/domains/availability/adapters/external/riteaid"
	availabilitymemory "github.com/Apurer/pharmacy-availability/internal/domains/availability/adapters/memory"
	availabilityobs "github.com/Apurer/pharmacy-availability/internal/domains/availability/adapters/observability"
	availabilityapp "github.com/Apurer/pharmacy-availability/internal/domains/availability/application"
	availabilityports "github.com/Apurer/pharmacy-availability/internal/domains/availability/ports"
	platformobservability "github.com/Apurer/pharmacy-availability/internal/platform/observability"
)

const (
	serviceName     = "pharmacy-availability-api"
	shutdownTimeout = 5 * time.Second
)

// Run boots the availability HTTP API and blocks until ctx is cancelled or the
// server fails.
func Run(ctx context.Context, cfg Config) error {
	instruments, shutdown, err := platformobservability.Init(ctx, serviceName, telemetrySettings(cfg))
	if err != nil {
		return fmt.Errorf("failed to initialize observability: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdown(shutdownCtx); err != nil {
			instruments.Logger.Error("failed to shutdown observability", slog.String("error", err.Error()))
		}
	}()
	logger := instruments.Logger

	router, err := NewHandler(cfg, instruments)
	if err != nil {
		return err
	}

	server := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
	}
	serveErr := make(chan error, 1)
	go func() {
		logger.Info("availability API listening", slog.String("addr", server.Addr))
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		logger.Error("availability API server exited", slog.String("addr", server.Addr), slog.String("error", err.Error()))
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down availability API")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown http server: %w", err)
	}
	return nil
}

// NewHandler wires the upstream client, cache, aggregation service and router.
func NewHandler(cfg Config, instruments *platformobservability.Instruments) (http.Handler, error) {
	client, err := riteaidclient.NewClient(cfg.UpstreamConfig(), nil)
	if err != nil {
		return nil, fmt.Errorf("configure upstream client: %w", err)
	}

	const scope = "internal.availability.application"
	cache := availabilityobs.NewCache(
		availabilitymemory.NewLocationCache(availabilitymemory.WithShardCount(cfg.CacheShards)),
		instruments.Meter(scope),
	)
	core := availabilityapp.NewService(
		cache,
		riteaidadapter.NewStoreLocator(client),
		riteaidadapter.NewSlotChecker(client),
		availabilityapp.WithTracer(instruments.Tracer(scope)),
		availabilityapp.WithProbeConcurrency(cfg.ProbeConcurrency),
		availabilityapp.WithLookupDeduplication(cfg.DedupeStoreLookups),
	)
	var service availabilityports.Service = availabilityobs.New(
		core,
		availabilityobs.WithLogger(instruments.Logger),
		availabilityobs.WithTracer(instruments.Tracer(scope)),
		availabilityobs.WithMeter(instruments.Meter(scope)),
	)

	router := availabilityserver.NewRouter(availabilityserver.ApiHandleFunctions{
		AvailabilityAPI: availabilityserver.NewAvailabilityAPI(service),
		HealthAPI:       availabilityserver.NewHealthAPI(cache),
	},
		otelgin.Middleware(serviceName, otelgin.WithTracerProvider(instruments.TracerProvider)),
		availabilityserver.RequestID(),
		availabilityserver.RequestAttributes(),
		availabilityserver.RequestLogger(instruments.Logger),
	)
	return router, nil
}

func telemetrySettings(cfg Config) platformobservability.Settings {
	return platformobservability.Settings{
		Environment:       cfg.Environment,
		HoneycombAPIKey:   cfg.Telemetry.HoneycombAPIKey,
		HoneycombDataset:  cfg.Telemetry.HoneycombDataset,
		HoneycombEndpoint: cfg.Telemetry.HoneycombEndpoint,
		OTLPEndpoint:      cfg.Telemetry.OTLPEndpoint,
		OTLPInsecure:      cfg.Telemetry.OTLPInsecure,
		Stdout:            cfg.Telemetry.Stdout,
	}
}
