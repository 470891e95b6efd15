package mapper

import "github.com/Apurer/pharmacy-availability/internal/domains/availability/domain"

// Availability is the HTTP representation of one location's availability.
type Availability struct {
	ID                   int32  `json:"id"`
	Address              string `json:"address"`
	PossibleAvailability bool   `json:"possible_availability"`
	Zip                  string `json:"zip"`
	Phone                string `json:"phone"`
}

// FromRecord converts a domain record to its HTTP shape.
func FromRecord(record domain.AvailabilityRecord) Availability {
	return Availability{
		ID:                   record.LocationID,
		Address:              record.Address,
		PossibleAvailability: record.PossibleAvailability,
		Zip:                  record.PostalCode,
		Phone:                record.Phone,
	}
}

// FromResult converts a whole aggregation; the slice is never nil so it encodes as [].
func FromResult(result domain.AggregationResult) []Availability {
	out := make([]Availability, 0, len(result))
	for _, record := range result {
		out = append(out, FromRecord(record))
	}
	return out
}
