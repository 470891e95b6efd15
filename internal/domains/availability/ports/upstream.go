package ports

import (
	"context"

	"github.com/Apurer/pharmacy-availability/internal/domains/availability/domain"
)

// StoreLocator resolves the stores near a postal code.
type StoreLocator interface {
	Lookup(ctx context.Context, postalCode string) ([]domain.Location, error)
}

// SlotChecker reports whether a location might have appointment slots.
type SlotChecker interface {
	CheckAvailability(ctx context.Context, locationID int32) (bool, error)
}
