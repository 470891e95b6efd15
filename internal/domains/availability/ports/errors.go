package ports

import (
	"errors"
	"fmt"
)

var (
	// ErrUpstreamNetwork signals the outbound call itself failed.
	ErrUpstreamNetwork = errors.New("upstream network failure")
	// ErrUpstreamDecode signals the upstream answered with an unexpected shape.
	ErrUpstreamDecode = errors.New("upstream decode failure")
)

// UpstreamError describes a failed call to a third-party endpoint.
// Kind is ErrUpstreamNetwork or ErrUpstreamDecode.
type UpstreamError struct {
	Operation string
	Kind      error
	Err       error
}

// NewUpstreamError builds an UpstreamError for the operation.
func NewUpstreamError(operation string, kind error, err error) *UpstreamError {
	return &UpstreamError{Operation: operation, Kind: kind, Err: err}
}

func (e *UpstreamError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Operation, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Operation, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *UpstreamError) Unwrap() []error {
	errs := make([]error, 0, 2)
	for _, err := range []error{e.Kind, e.Err} {
		if err != nil {
			errs = append(errs, err)
		}
	}
	return errs
}
