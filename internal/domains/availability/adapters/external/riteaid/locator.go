package riteaid

import (
	"context"
	"errors"

	riteaidclient "github.com/Apurer/pharmacy-availability/internal/clients/http/riteaid"
	"github.com/Apurer/pharmacy-availability/internal/domains/availability/domain"
	"github.com/Apurer/pharmacy-availability/internal/domains/availability/ports"
)

const (
	opLookupStores = "riteaid.getStores"
	opCheckSlots   = "riteaid.checkSlots"
)

var (
	_ ports.StoreLocator = (*StoreLocator)(nil)
	_ ports.SlotChecker  = (*SlotChecker)(nil)
)

// StoreLocator implements the store lookup port over the RiteAid client.
type StoreLocator struct {
	client *riteaidclient.Client
}

// NewStoreLocator wires the HTTP client into a locator adapter.
func NewStoreLocator(client *riteaidclient.Client) *StoreLocator {
	return &StoreLocator{client: client}
}

// Lookup returns the stores near the postal code as domain locations.
func (l *StoreLocator) Lookup(ctx context.Context, postalCode string) ([]domain.Location, error) {
	if l == nil || l.client == nil {
		return nil, errors.New("riteaid store locator not configured")
	}
	stores, err := l.client.GetStores(ctx, postalCode)
	if err != nil {
		return nil, toUpstreamError(opLookupStores, err)
	}
	return ToLocations(stores), nil
}

// SlotChecker implements the availability probe port over the RiteAid client.
type SlotChecker struct {
	client *riteaidclient.Client
}

// NewSlotChecker wires the HTTP client into a slot checker adapter.
func NewSlotChecker(client *riteaidclient.Client) *SlotChecker {
	return &SlotChecker{client: client}
}

// CheckAvailability fetches the slot mapping and applies the availability policy.
func (s *SlotChecker) CheckAvailability(ctx context.Context, locationID int32) (bool, error) {
	if s == nil || s.client == nil {
		return false, errors.New("riteaid slot checker not configured")
	}
	slots, err := s.client.CheckSlots(ctx, locationID)
	if err != nil {
		return false, toUpstreamError(opCheckSlots, err)
	}
	return domain.PossibleAvailability(slots), nil
}

func toUpstreamError(operation string, err error) error {
	if errors.Is(err, riteaidclient.ErrDecode) {
		return ports.NewUpstreamError(operation, ports.ErrUpstreamDecode, err)
	}
	return ports.NewUpstreamError(operation, ports.ErrUpstreamNetwork, err)
}
