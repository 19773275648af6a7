package voxelauth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestIssueAndValidate(t *testing.T) {
	token, err := Issue("alice", time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	operator, ok := Validate(token)
	require.True(t, ok)
	require.Equal(t, "alice", operator)
}

func TestValidateRejectsExpired(t *testing.T) {
	token, err := Issue("bob", -time.Minute)
	require.NoError(t, err)

	_, ok := Validate(token)
	require.False(t, ok)
}

func TestValidateRejectsGarbage(t *testing.T) {
	for _, bad := range []string{"", "not-a-jwt", "eyJhbGciOiJIUzI1NiJ9.invalid.signature"} {
		_, ok := Validate(bad)
		require.False(t, ok, "token %q should not validate", bad)
	}
}

func TestSetSecretInvalidatesOldTokens(t *testing.T) {
	token, err := Issue("carol", time.Hour)
	require.NoError(t, err)

	original := secret
	SetSecret([]byte("a completely different signing secret"))
	defer SetSecret(original)

	_, ok := Validate(token)
	require.False(t, ok)
}
