// Package storage adapts persistence and dirty-fanout drivers onto
// region.Manager's Loader/Saver/DirtyObserver contracts: BadgerDB for the
// primary chunk store, MongoDB as an alternative document-oriented
// backend, and Redis/NATS publishers for cross-node dirty notification.
package storage

import (
	"fmt"
	"sync"

	"github.com/dgraph-io/badger/v3"

	"github.com/almondvoxel/voxelcore/internal/logging"
	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/serialization"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// BadgerStore persists whole-chunk binary payloads (internal/voxel/
// serialization's v2 format) under a "chunk:x:y:z" key, mirroring the
// teacher's WorldStorage but storing the serializer's binary payload
// (SerializeChunk output, without blob framing) instead of a JSON
// block-delta.
type BadgerStore struct {
	db     *badger.DB
	mutex  sync.RWMutex
	ready  bool
	log    *logging.Logger
}

// NewBadgerStore opens (or creates) a BadgerDB database at dbPath.
func NewBadgerStore(dbPath string) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dbPath)
	opts.Logger = nil

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger db: %w", err)
	}

	return &BadgerStore{db: db, ready: true, log: logging.ForComponent("badgerstore")}, nil
}

func regionChunkKey(key voxeltype.RegionKey) []byte {
	return []byte(fmt.Sprintf("chunk:%d:%d:%d", key.X, key.Y, key.Z))
}

// Close closes the underlying database.
func (bs *BadgerStore) Close() error {
	bs.mutex.Lock()
	defer bs.mutex.Unlock()

	if !bs.ready {
		return nil
	}
	bs.ready = false
	return bs.db.Close()
}

// Loader implements region.Loader: a missing key is not an error, it
// simply returns a default-constructed chunk for the caller to fill in.
func (bs *BadgerStore) Loader(cfg chunk.Config) func(voxeltype.RegionKey) (*chunk.Storage, error) {
	return func(key voxeltype.RegionKey) (*chunk.Storage, error) {
		bs.mutex.RLock()
		defer bs.mutex.RUnlock()

		if !bs.ready {
			return nil, fmt.Errorf("badger store is closed")
		}

		var payload []byte
		err := bs.db.View(func(txn *badger.Txn) error {
			item, err := txn.Get(regionChunkKey(key))
			if err != nil {
				return err
			}
			return item.Value(func(val []byte) error {
				payload = append([]byte{}, val...)
				return nil
			})
		})

		if err == badger.ErrKeyNotFound {
			return chunk.New(cfg), nil
		}
		if err != nil {
			return nil, fmt.Errorf("read chunk %v from badger: %w", key, err)
		}

		if serialization.IsLegacyChunkPayload(payload) {
			migrated, err := serialization.MigrateLegacyChunkPayload(payload)
			if err != nil {
				return nil, fmt.Errorf("migrate legacy chunk %v: %w", key, err)
			}
			payload = migrated
		}

		s, err := serialization.DeserializeChunk(payload)
		if err != nil {
			return nil, fmt.Errorf("deserialize chunk %v: %w", key, err)
		}
		return s, nil
	}
}

// Saver implements region.Saver, writing the serializer's binary form.
func (bs *BadgerStore) Saver() func(voxeltype.RegionKey, *chunk.Storage) error {
	return func(key voxeltype.RegionKey, s *chunk.Storage) error {
		bs.mutex.RLock()
		defer bs.mutex.RUnlock()

		if !bs.ready {
			return fmt.Errorf("badger store is closed")
		}

		payload := serialization.SerializeChunk(s)
		err := bs.db.Update(func(txn *badger.Txn) error {
			return txn.Set(regionChunkKey(key), payload)
		})
		if err != nil {
			return fmt.Errorf("write chunk %v to badger: %w", key, err)
		}

		bs.log.Debug("saved chunk %v (%d bytes)", key, len(payload))
		return nil
	}
}
