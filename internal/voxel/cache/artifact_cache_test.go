package cache

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestArtifactCacheSetGet(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)
	defer c.Close()

	key := Key{Kind: KindGreedyMesh, Digest: DigestBytes([]byte("chunk-payload"))}
	payload := []byte{1, 2, 3, 4}

	require.True(t, c.Set(context.Background(), key, payload))

	got, ok := c.Get(key)
	require.True(t, ok)
	require.Equal(t, payload, got)
}

func TestArtifactCacheMiss(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)
	defer c.Close()

	_, ok := c.Get(Key{Kind: KindSVOBuffer, Digest: DigestBytes([]byte("missing"))})
	require.False(t, ok)
}

func TestArtifactCacheGetOrCompute(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)
	defer c.Close()

	key := Key{Kind: KindLightingBake, Digest: DigestBytes([]byte("region-0-0-0"))}
	calls := 0
	compute := func() ([]byte, error) {
		calls++
		return []byte("baked"), nil
	}

	first, err := c.GetOrCompute(context.Background(), key, compute)
	require.NoError(t, err)
	require.Equal(t, []byte("baked"), first)

	second, err := c.GetOrCompute(context.Background(), key, compute)
	require.NoError(t, err)
	require.Equal(t, []byte("baked"), second)
	require.Equal(t, 1, calls, "compute must run only on the initial miss")
}

func TestArtifactCacheInvalidate(t *testing.T) {
	c, err := New(DefaultConfig())
	require.NoError(t, err)
	defer c.Close()

	key := Key{Kind: KindMarchingMesh, Digest: DigestBytes([]byte("x"))}
	require.True(t, c.Set(context.Background(), key, []byte("mesh")))

	c.Invalidate(key)
	_, ok := c.Get(key)
	require.False(t, ok)
}

func TestKeyStringDistinguishesKind(t *testing.T) {
	digest := DigestBytes([]byte("same-bytes"))
	a := Key{Kind: KindGreedyMesh, Digest: digest}
	b := Key{Kind: KindNaiveMesh, Digest: digest}
	require.NotEqual(t, a.String(), b.String())
}
