package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/almondvoxel/voxelcore/internal/logging"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// RedisDirtyChannel publishes region-dirty notifications over a Redis
// Pub/Sub channel so other nodes holding a copy of the same region can
// invalidate their acceleration cache and artifact cache entries.
type RedisDirtyChannel struct {
	client  *redis.Client
	channel string
	log     *logging.Logger
}

// RedisDirtyConfig mirrors the subset of the teacher's CacheConfig that
// applies to a pure pub/sub connection (no hot-cache TTLs here).
type RedisDirtyConfig struct {
	RedisURL      string
	RedisPassword string
	RedisDB       int
	Channel       string
}

// NewRedisDirtyChannel opens a Redis connection for dirty-key fanout.
func NewRedisDirtyChannel(cfg RedisDirtyConfig) (*RedisDirtyChannel, error) {
	if cfg.Channel == "" {
		cfg.Channel = "voxelcore.region.dirty"
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	return &RedisDirtyChannel{client: client, channel: cfg.Channel, log: logging.ForComponent("redisdirty")}, nil
}

func encodeRegionKey(key voxeltype.RegionKey) string {
	return fmt.Sprintf("%d:%d:%d", key.X, key.Y, key.Z)
}

func decodeRegionKey(payload string) (voxeltype.RegionKey, error) {
	var x, y, z int32
	if _, err := fmt.Sscanf(payload, "%d:%d:%d", &x, &y, &z); err != nil {
		return voxeltype.RegionKey{}, fmt.Errorf("decode region key %q: %w", payload, err)
	}
	return voxeltype.RegionKey{X: x, Y: y, Z: z}, nil
}

// Publish sends a dirty notification for key. Intended to be registered
// as a region.DirtyObserver.
func (r *RedisDirtyChannel) Publish(key voxeltype.RegionKey) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := r.client.Publish(ctx, r.channel, encodeRegionKey(key)).Err(); err != nil {
		r.log.Error("publish dirty notification for %v: %v", key, err)
	}
}

// Subscribe runs handler for every dirty notification received on the
// channel until ctx is cancelled. Blocks the calling goroutine.
func (r *RedisDirtyChannel) Subscribe(ctx context.Context, handler func(voxeltype.RegionKey)) error {
	sub := r.client.Subscribe(ctx, r.channel)
	defer sub.Close()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			key, err := decodeRegionKey(msg.Payload)
			if err != nil {
				r.log.Warn("dropping malformed dirty notification: %v", err)
				continue
			}
			handler(key)
		}
	}
}

// Close releases the Redis connection.
func (r *RedisDirtyChannel) Close() error {
	return r.client.Close()
}
