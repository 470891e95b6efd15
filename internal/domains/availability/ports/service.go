package ports

import (
	"context"

	"github.com/Apurer/pharmacy-availability/internal/domains/availability/domain"
)

// Service exposes the availability aggregation use case to adapters.
type Service interface {
	Aggregate(ctx context.Context, postalCode string) (domain.AggregationResult, error)
}
