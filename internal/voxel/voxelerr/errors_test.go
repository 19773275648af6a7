package voxelerr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessageIncludesKindAndCause(t *testing.T) {
	cause := errors.New("short read")
	err := Wrap(Truncated, "decode chunk header", cause)

	require.ErrorIs(t, err, cause)
	require.Contains(t, err.Error(), "decode chunk header")
	require.Contains(t, err.Error(), "truncated")
	require.Contains(t, err.Error(), "short read")
}

func TestIsMatchesByKind(t *testing.T) {
	err := New(DisabledPlane, "materials")

	require.True(t, err.Is(Sentinel(DisabledPlane)))
	require.False(t, err.Is(Sentinel(BadMagic)))
}

func TestKindString(t *testing.T) {
	require.Equal(t, "bad_magic", BadMagic.String())
	require.Equal(t, "no_path", NoPath.String())
}
