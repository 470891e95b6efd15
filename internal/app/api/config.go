package api

import (
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	riteaidclient "github.com/Apurer/pharmacy-availability/internal/clients/http/riteaid"
)

// Config carries environment-driven settings for the API process.
type Config struct {
	Port        string `env:"PORT"        envDefault:"3030"`
	Environment string `env:"ENVIRONMENT" envDefault:"local"`

	StoresURL             string        `env:"STORES_URL"                     envDefault:"https://www.riteaid.com/services/ext/v2/stores/getStores"`
	SlotsURL              string        `env:"SLOTS_URL"                      envDefault:"https://www.riteaid.com/services/ext/v2/vaccine/checkSlots"`
	AttrFilter            string        `env:"STORES_ATTR_FILTER"             envDefault:"PREF-112"`
	FetchMechanismVersion string        `env:"STORES_FETCH_MECHANISM_VERSION" envDefault:"2"`
	Radius                string        `env:"STORES_RADIUS"                  envDefault:"50"`
	UpstreamTimeout       time.Duration `env:"UPSTREAM_TIMEOUT"               envDefault:"10s"`

	ProbeConcurrency   int  `env:"PROBE_CONCURRENCY"    envDefault:"0"`
	DedupeStoreLookups bool `env:"DEDUPE_STORE_LOOKUPS" envDefault:"false"`
	CacheShards        int  `env:"CACHE_SHARDS"         envDefault:"32"`

	Telemetry TelemetryConfig
}

// TelemetryConfig selects where spans are exported.
type TelemetryConfig struct {
	HoneycombAPIKey   string `env:"HONEYCOMB_API_KEY"`
	HoneycombDataset  string `env:"HONEYCOMB_DATASET"  envDefault:"riteaid-covid"`
	HoneycombEndpoint string `env:"HONEYCOMB_ENDPOINT" envDefault:"api.honeycomb.io"`
	OTLPEndpoint      string `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	OTLPInsecure      bool   `env:"OTEL_EXPORTER_OTLP_INSECURE" envDefault:"true"`
	Stdout            bool   `env:"OTEL_TRACES_STDOUT" envDefault:"false"`
}

// LoadConfig reads environment variables, applies defaults, and validates basic constraints.
func LoadConfig() (Config, error) {
	return loadConfig(nil)
}

// loadConfig parses from environ, or from the process environment when environ is nil.
func loadConfig(environ map[string]string) (Config, error) {
	var cfg Config
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	cfg.Port = strings.TrimSpace(cfg.Port)
	cfg.StoresURL = strings.TrimSpace(cfg.StoresURL)
	cfg.SlotsURL = strings.TrimSpace(cfg.SlotsURL)
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	var errs []error
	if port, err := strconv.Atoi(c.Port); err != nil || port <= 0 || port > 65535 {
		errs = append(errs, fmt.Errorf("PORT must be a port number, got %q", c.Port))
	}
	for name, raw := range map[string]string{"STORES_URL": c.StoresURL, "SLOTS_URL": c.SlotsURL} {
		u, err := url.Parse(raw)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, fmt.Errorf("%s must be an absolute URL, got %q", name, raw))
		}
	}
	if c.UpstreamTimeout <= 0 {
		errs = append(errs, errors.New("UPSTREAM_TIMEOUT must be positive"))
	}
	if c.ProbeConcurrency < 0 {
		errs = append(errs, errors.New("PROBE_CONCURRENCY must be zero (unbounded) or positive"))
	}
	if c.CacheShards <= 0 {
		errs = append(errs, errors.New("CACHE_SHARDS must be positive"))
	}
	return errors.Join(errs...)
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// UpstreamConfig maps the settings onto the RiteAid client configuration.
func (c Config) UpstreamConfig() riteaidclient.Config {
	return riteaidclient.Config{
		StoresURL:             c.StoresURL,
		SlotsURL:              c.SlotsURL,
		AttrFilter:            c.AttrFilter,
		FetchMechanismVersion: c.FetchMechanismVersion,
		Radius:                c.Radius,
		Timeout:               c.UpstreamTimeout,
	}
}
