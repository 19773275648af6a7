// Package cache layers a hot in-memory artifact cache (derived meshes,
// exported GPU octree buffers, lighting bakes) above the exact,
// region-keyed acceleration structures in internal/voxel/raytracing.
// Entries are addressed by the blake2b digest of their source bytes plus
// a kind tag, so a stale artifact never collides with a fresh one
// computed from different input.
package cache

import (
	"context"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto"
	"golang.org/x/crypto/blake2b"

	"github.com/almondvoxel/voxelcore/internal/logging"
)

// Kind distinguishes artifact families so that two different derived
// products of the same source bytes never collide under one key.
type Kind string

const (
	KindGreedyMesh    Kind = "greedy_mesh"
	KindNaiveMesh     Kind = "naive_mesh"
	KindMarchingMesh  Kind = "marching_mesh"
	KindSVOBuffer     Kind = "svo_buffer"
	KindLightingBake  Kind = "lighting_bake"
)

// Key is a content-addressed artifact identity: a kind tag plus the
// blake2b-256 digest of whatever bytes produced the artifact (typically
// a chunk's serialized voxel plane, or a region key plus a content
// version counter).
type Key struct {
	Kind   Kind
	Digest [32]byte
}

func (k Key) String() string {
	return fmt.Sprintf("%s:%s", k.Kind, hex.EncodeToString(k.Digest[:]))
}

// DigestBytes hashes arbitrary input bytes into a Key's digest field.
func DigestBytes(data []byte) [32]byte {
	return blake2b.Sum256(data)
}

// Metrics mirrors the counters the teacher's Redis cache tracks, adapted
// to ristretto's push-based stats.
type Metrics struct {
	Hits      int64
	Misses    int64
	CostAdded int64
	KeysAdded int64
}

// ArtifactCache wraps a ristretto cache sized for derived-mesh and
// acceleration-structure payloads: big entries (a built mesh can be
// hundreds of KB), moderate entry count, cost-aware eviction.
type ArtifactCache struct {
	ristretto *ristretto.Cache
	log       *logging.Logger
}

// Config mirrors the knobs ristretto.Config exposes that actually matter
// for this cache's workload.
type Config struct {
	NumCounters int64
	MaxCost     int64
	BufferItems int64
}

// DefaultConfig sizes the cache for a single-process voxel server: ~10k
// tracked keys, 256MiB of artifact bytes.
func DefaultConfig() Config {
	return Config{
		NumCounters: 100_000,
		MaxCost:     256 << 20,
		BufferItems: 64,
	}
}

// New builds an ArtifactCache backed by ristretto.
func New(cfg Config) (*ArtifactCache, error) {
	rc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.NumCounters,
		MaxCost:     cfg.MaxCost,
		BufferItems: cfg.BufferItems,
		Metrics:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("create ristretto cache: %w", err)
	}
	return &ArtifactCache{ristretto: rc, log: logging.ForComponent("artifact_cache")}, nil
}

// Get returns the cached bytes for key, if present. cost is the stored
// entry's byte length; ristretto doesn't return it directly so callers
// that need it should re-derive from len(value).
func (c *ArtifactCache) Get(key Key) ([]byte, bool) {
	value, found := c.ristretto.Get(key.String())
	if !found {
		return nil, false
	}
	return value.([]byte), true
}

// Set stores value under key with a cost equal to its byte length, and
// waits for ristretto to apply the write before returning so a caller
// that immediately re-Gets doesn't race the internal buffer.
func (c *ArtifactCache) Set(ctx context.Context, key Key, value []byte) bool {
	ok := c.ristretto.Set(key.String(), value, int64(len(value)))
	if !ok {
		c.log.Debug("artifact cache rejected set for %s (cost %d)", key, len(value))
		return false
	}
	c.ristretto.Wait()
	return true
}

// SetWithTTL is Set with an explicit expiry, used for artifacts derived
// from a region that's scheduled to be invalidated on a timer (e.g. a
// provisional lighting bake while global illumination is still
// propagating).
func (c *ArtifactCache) SetWithTTL(key Key, value []byte, ttl time.Duration) bool {
	return c.ristretto.SetWithTTL(key.String(), value, int64(len(value)), ttl)
}

// Invalidate drops an artifact, used when the source chunk it was
// derived from goes dirty.
func (c *ArtifactCache) Invalidate(key Key) {
	c.ristretto.Del(key.String())
}

// GetOrCompute returns the cached artifact for key, computing and
// storing it via compute on a miss.
func (c *ArtifactCache) GetOrCompute(ctx context.Context, key Key, compute func() ([]byte, error)) ([]byte, error) {
	if value, ok := c.Get(key); ok {
		return value, nil
	}

	value, err := compute()
	if err != nil {
		return nil, err
	}
	c.Set(ctx, key, value)
	return value, nil
}

// Metrics snapshots ristretto's running counters.
func (c *ArtifactCache) Metrics() Metrics {
	m := c.ristretto.Metrics
	return Metrics{
		Hits:      int64(m.Hits()),
		Misses:    int64(m.Misses()),
		CostAdded: int64(m.CostAdded()),
		KeysAdded: int64(m.KeysAdded()),
	}
}

// Close releases ristretto's background goroutines.
func (c *ArtifactCache) Close() {
	c.ristretto.Close()
}
