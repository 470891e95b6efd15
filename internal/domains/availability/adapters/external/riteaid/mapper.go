package riteaid

import (
	riteaidclient "github.com/Apurer/pharmacy-availability/internal/clients/http/riteaid"
	"github.com/Apurer/pharmacy-availability/internal/domains/availability/domain"
)

// ToLocations converts validated locator records into domain locations.
func ToLocations(stores []riteaidclient.Store) []domain.Location {
	locations := make([]domain.Location, 0, len(stores))
	for _, store := range stores {
		locations = append(locations, domain.Location{
			ID:         deref(store.StoreNumber),
			Address:    deref(store.Address),
			PostalCode: deref(store.ZipCode),
			Phone:      deref(store.FullPhone),
		})
	}
	return locations
}

func deref[T any](v *T) T {
	var zero T
	if v == nil {
		return zero
	}
	return *v
}
