package domain

// Location is a pharmacy store returned by the store locator.
type Location struct {
	ID         int32
	Address    string
	PostalCode string
	Phone      string
}

// AvailabilityRecord reports whether a single location might have open slots.
type AvailabilityRecord struct {
	LocationID           int32
	Address              string
	PostalCode           string
	Phone                string
	PossibleAvailability bool
}

// AggregationResult holds one record per resolved location, in probe completion order.
type AggregationResult []AvailabilityRecord

// NewAvailabilityRecord copies the location fields into a record.
func NewAvailabilityRecord(loc Location, possible bool) AvailabilityRecord {
	return AvailabilityRecord{
		LocationID:           loc.ID,
		Address:              loc.Address,
		PostalCode:           loc.PostalCode,
		Phone:                loc.Phone,
		PossibleAvailability: possible,
	}
}

// CloneLocations returns a copy of the slice so cached sets stay immutable.
func CloneLocations(locations []Location) []Location {
	if locations == nil {
		return nil
	}
	return append(make([]Location, 0, len(locations)), locations...)
}
