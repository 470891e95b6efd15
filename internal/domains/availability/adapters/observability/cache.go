package observability

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Apurer/pharmacy-availability/internal/domains/availability/domain"
	"github.com/Apurer/pharmacy-availability/internal/domains/availability/ports"
)

// Cache counts location cache hits, misses, and writes.
type Cache struct {
	inner   ports.LocationCache
	lookups metric.Int64Counter
	writes  metric.Int64Counter
}

// NewCache wraps a location cache; a nil meter disables counting.
func NewCache(inner ports.LocationCache, m metric.Meter) *Cache {
	c := &Cache{inner: inner}
	if m != nil {
		c.lookups, _ = m.Int64Counter("availability.cache.lookups", metric.WithDescription("Location cache lookups by result"))
		c.writes, _ = m.Int64Counter("availability.cache.writes", metric.WithDescription("Location cache writes"))
		_, _ = m.Int64ObservableGauge("availability.cache.entries",
			metric.WithDescription("Cached postal codes"),
			metric.WithInt64Callback(func(_ context.Context, o metric.Int64Observer) error {
				o.Observe(int64(inner.Len()))
				return nil
			}))
	}
	return c
}

func (c *Cache) Get(ctx context.Context, postalCode string) ([]domain.Location, bool) {
	locations, ok := c.inner.Get(ctx, postalCode)
	if c.lookups != nil {
		result := "miss"
		if ok {
			result = "hit"
		}
		c.lookups.Add(ctx, 1, metric.WithAttributes(attribute.String("result", result)))
	}
	return locations, ok
}

func (c *Cache) Put(ctx context.Context, postalCode string, locations []domain.Location) {
	c.inner.Put(ctx, postalCode, locations)
	if c.writes != nil {
		c.writes.Add(ctx, 1)
	}
}

func (c *Cache) Len() int {
	return c.inner.Len()
}

var _ ports.LocationCache = (*Cache)(nil)
