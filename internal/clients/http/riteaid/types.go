package riteaid

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// GetStoresResponse is the envelope returned by the store locator endpoint.
type GetStoresResponse struct {
	Data *StoresData `json:"Data"`
}

// StoresData carries the store list.
type StoresData struct {
	Stores *[]Store `json:"stores"`
}

// Store is a single locator record. Fields are pointers so missing keys can be told
// apart from zero values.
type Store struct {
	StoreNumber *int32  `json:"storeNumber"`
	Address     *string `json:"address"`
	ZipCode     *string `json:"zipcode"`
	FullPhone   *string `json:"fullPhone"`
}

// CheckSlotsResponse is the envelope returned by the slot-check endpoint.
type CheckSlotsResponse struct {
	Data *SlotsData `json:"Data"`
}

// SlotsData maps slot keys ("1", "2", ...) to open flags. A null flag is kept
// as nil so SlotMap can reject it.
type SlotsData struct {
	Slots *map[string]*bool `json:"slots"`
}

var (
	errMissingField = errors.New("missing required field")
	errFieldCase    = errors.New("field name differs only in case")
)

// encoding/json matches keys case-insensitively; the upstream envelope is
// case-sensitive, so near-miss keys are rejected before the plain decode.
func rejectFoldedKeys(data []byte, names ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return err
	}
	for key := range fields {
		for _, name := range names {
			if key != name && strings.EqualFold(key, name) {
				return fmt.Errorf("%w: %q, want %q", errFieldCase, key, name)
			}
		}
	}
	return nil
}

func (r *GetStoresResponse) UnmarshalJSON(data []byte) error {
	type plain GetStoresResponse
	if err := rejectFoldedKeys(data, "Data"); err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(r))
}

func (d *StoresData) UnmarshalJSON(data []byte) error {
	type plain StoresData
	if err := rejectFoldedKeys(data, "stores"); err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(d))
}

func (s *Store) UnmarshalJSON(data []byte) error {
	type plain Store
	if err := rejectFoldedKeys(data, "storeNumber", "address", "zipcode", "fullPhone"); err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(s))
}

func (r *CheckSlotsResponse) UnmarshalJSON(data []byte) error {
	type plain CheckSlotsResponse
	if err := rejectFoldedKeys(data, "Data"); err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(r))
}

func (d *SlotsData) UnmarshalJSON(data []byte) error {
	type plain SlotsData
	if err := rejectFoldedKeys(data, "slots"); err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(d))
}

// StoreList returns the decoded stores after checking every required field.
func (r *GetStoresResponse) StoreList() ([]Store, error) {
	if r == nil || r.Data == nil {
		return nil, fmt.Errorf("%w: Data", errMissingField)
	}
	if r.Data.Stores == nil {
		return nil, fmt.Errorf("%w: Data.stores", errMissingField)
	}
	stores := *r.Data.Stores
	for i, store := range stores {
		if err := store.validate(); err != nil {
			return nil, fmt.Errorf("Data.stores[%d]: %w", i, err)
		}
	}
	return stores, nil
}

func (s Store) validate() error {
	switch {
	case s.StoreNumber == nil:
		return fmt.Errorf("%w: storeNumber", errMissingField)
	case s.Address == nil:
		return fmt.Errorf("%w: address", errMissingField)
	case s.ZipCode == nil:
		return fmt.Errorf("%w: zipcode", errMissingField)
	case s.FullPhone == nil:
		return fmt.Errorf("%w: fullPhone", errMissingField)
	}
	return nil
}

// SlotMap returns the decoded slot mapping.
func (r *CheckSlotsResponse) SlotMap() (map[string]bool, error) {
	if r == nil || r.Data == nil {
		return nil, fmt.Errorf("%w: Data", errMissingField)
	}
	if r.Data.Slots == nil {
		return nil, fmt.Errorf("%w: Data.slots", errMissingField)
	}
	slots := make(map[string]bool, len(*r.Data.Slots))
	for key, open := range *r.Data.Slots {
		if open == nil {
			return nil, fmt.Errorf("%w: Data.slots[%q]", errMissingField, key)
		}
		slots[key] = *open
	}
	return slots, nil
}
