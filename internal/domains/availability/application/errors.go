package application

import (
	"errors"
	"fmt"
)

// Stage names the pipeline step an aggregation failed in.
type Stage string

const (
	StageResolve Stage = "resolve"
	StageProbe   Stage = "probe"
)

// ErrNotConfigured is returned when the service is missing a collaborator.
var ErrNotConfigured = errors.New("availability service not configured")

// AggregationError is the terminal failure of one aggregation call. Err is usually
// a *ports.UpstreamError; context cancellation from the caller is passed through.
type AggregationError struct {
	PostalCode string
	Stage      Stage
	LocationID int32
	Err        error
}

func (e *AggregationError) Error() string {
	if e.Stage == StageProbe {
		return fmt.Sprintf("aggregate availability for %q: probe location %d: %v", e.PostalCode, e.LocationID, e.Err)
	}
	return fmt.Sprintf("aggregate availability for %q: %s locations: %v", e.PostalCode, e.Stage, e.Err)
}

func (e *AggregationError) Unwrap() error {
	return e.Err
}
