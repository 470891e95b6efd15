package ports

import (
	"context"

	"github.com/Apurer/pharmacy-availability/internal/domains/availability/domain"
)

// LocationCache stores resolved location sets keyed by postal code.
// Implementations must be safe for concurrent use.
type LocationCache interface {
	Get(ctx context.Context, postalCode string) ([]domain.Location, bool)
	Put(ctx context.Context, postalCode string, locations []domain.Location)
	Len() int
}
