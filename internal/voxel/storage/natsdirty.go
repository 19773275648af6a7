package storage

import (
	"fmt"
	"sync"
	"time"

	"github.com/nats-io/nats.go"

	"github.com/almondvoxel/voxelcore/internal/logging"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// NatsDirtyChannel is the NATS counterpart to RedisDirtyChannel: durable
// reconnect handling and dedup window, ported from the teacher's
// NATSInvalidator and adapted to voxel region keys.
type NatsDirtyChannel struct {
	conn    *nats.Conn
	subject string
	nodeID  string

	subscription *nats.Subscription

	stopCh chan struct{}
	wg     sync.WaitGroup

	recentKeys   map[voxeltype.RegionKey]time.Time
	keysMutex    sync.RWMutex
	dedupeWindow time.Duration

	log *logging.Logger
}

// NatsDirtyConfig mirrors the teacher's InvalidatorConfig.
type NatsDirtyConfig struct {
	NATSURL       string
	Subject       string
	MaxReconnects int
	ReconnectWait time.Duration
	DedupeWindow  time.Duration
}

// NewNatsDirtyChannel connects to NATS and starts the dedupe janitor.
func NewNatsDirtyChannel(cfg NatsDirtyConfig, nodeID string) (*NatsDirtyChannel, error) {
	if cfg.Subject == "" {
		cfg.Subject = "voxelcore.region.dirty"
	}
	if cfg.MaxReconnects == 0 {
		cfg.MaxReconnects = 10
	}
	if cfg.ReconnectWait == 0 {
		cfg.ReconnectWait = 2 * time.Second
	}
	if cfg.DedupeWindow == 0 {
		cfg.DedupeWindow = 5 * time.Second
	}

	log := logging.ForComponent("natsdirty")

	opts := []nats.Option{
		nats.MaxReconnects(cfg.MaxReconnects),
		nats.ReconnectWait(cfg.ReconnectWait),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			log.Warn("nats disconnected: %v", err)
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			log.Info("nats reconnected to %s", nc.ConnectedUrl())
		}),
	}

	conn, err := nats.Connect(cfg.NATSURL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	channel := &NatsDirtyChannel{
		conn:         conn,
		subject:      cfg.Subject,
		nodeID:       nodeID,
		stopCh:       make(chan struct{}),
		recentKeys:   make(map[voxeltype.RegionKey]time.Time),
		dedupeWindow: cfg.DedupeWindow,
		log:          log,
	}
	channel.startDedupeCleanup()
	return channel, nil
}

// Publish sends a dirty notification for key, skipping if it was already
// published within the dedupe window. Intended as a region.DirtyObserver.
func (n *NatsDirtyChannel) Publish(key voxeltype.RegionKey) {
	if n.isDuplicate(key) {
		return
	}

	data := []byte(fmt.Sprintf("%d:%d:%d:%s", key.X, key.Y, key.Z, n.nodeID))
	if err := n.conn.Publish(n.subject, data); err != nil {
		n.log.Error("publish dirty notification for %v: %v", key, err)
		return
	}
	n.recordKey(key)
}

// Subscribe registers handler for incoming dirty notifications from
// other nodes, ignoring messages this node itself published.
func (n *NatsDirtyChannel) Subscribe(handler func(voxeltype.RegionKey)) error {
	if n.subscription != nil {
		return fmt.Errorf("already subscribed")
	}

	sub, err := n.conn.Subscribe(n.subject, func(msg *nats.Msg) {
		var x, y, z int32
		var nodeID string
		if _, err := fmt.Sscanf(string(msg.Data), "%d:%d:%d:%s", &x, &y, &z, &nodeID); err != nil {
			n.log.Warn("dropping malformed dirty message: %v", err)
			return
		}
		if nodeID == n.nodeID {
			return
		}

		key := voxeltype.RegionKey{X: x, Y: y, Z: z}
		if n.isDuplicate(key) {
			return
		}
		n.recordKey(key)
		handler(key)
	})
	if err != nil {
		return fmt.Errorf("subscribe to %s: %w", n.subject, err)
	}

	n.subscription = sub
	return nil
}

// Close unsubscribes, stops the dedupe janitor, and closes the connection.
func (n *NatsDirtyChannel) Close() error {
	close(n.stopCh)
	n.wg.Wait()

	if n.subscription != nil {
		_ = n.subscription.Unsubscribe()
	}
	n.conn.Close()
	return nil
}

func (n *NatsDirtyChannel) isDuplicate(key voxeltype.RegionKey) bool {
	n.keysMutex.RLock()
	defer n.keysMutex.RUnlock()

	lastSeen, ok := n.recentKeys[key]
	if !ok {
		return false
	}
	return time.Since(lastSeen) < n.dedupeWindow
}

func (n *NatsDirtyChannel) recordKey(key voxeltype.RegionKey) {
	n.keysMutex.Lock()
	defer n.keysMutex.Unlock()
	n.recentKeys[key] = time.Now()
}

func (n *NatsDirtyChannel) startDedupeCleanup() {
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()

		ticker := time.NewTicker(n.dedupeWindow)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				n.cleanupDedupe()
			case <-n.stopCh:
				return
			}
		}
	}()
}

func (n *NatsDirtyChannel) cleanupDedupe() {
	n.keysMutex.Lock()
	defer n.keysMutex.Unlock()

	now := time.Now()
	for key, timestamp := range n.recentKeys {
		if now.Sub(timestamp) > n.dedupeWindow {
			delete(n.recentKeys, key)
		}
	}
}
