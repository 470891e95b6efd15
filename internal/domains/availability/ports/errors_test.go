package ports

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestUpstreamError_MatchesKindAndCause(t *testing.T) {
	err := NewUpstreamError("stores.lookup", ErrUpstreamNetwork, context.DeadlineExceeded)

	require.ErrorIs(t, err, ErrUpstreamNetwork)
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.NotErrorIs(t, err, ErrUpstreamDecode)
	require.Equal(t, "stores.lookup: upstream network failure: context deadline exceeded", err.Error())

	var upstream *UpstreamError
	require.True(t, errors.As(error(err), &upstream))
	require.Equal(t, "stores.lookup", upstream.Operation)
}

func TestUpstreamError_WithoutCause(t *testing.T) {
	err := NewUpstreamError("slots.check", ErrUpstreamDecode, nil)
	require.Equal(t, "slots.check: upstream decode failure", err.Error())
	require.ErrorIs(t, err, ErrUpstreamDecode)
}
