// Package region implements the owner of all loaded chunks: LRU-bounded
// residency, pinning, a FIFO deferred task queue, dirty-propagation to
// observers, and a lazily-rebuilt navigation-grid cache.
package region

import (
	"container/list"
	"time"

	"github.com/google/uuid"

	"github.com/almondvoxel/voxelcore/internal/observability"
	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/navigation"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// Loader constructs a chunk for a region key not yet resident. A nil loader
// means newly-assured chunks are default-constructed (zero-filled).
type Loader func(key voxeltype.RegionKey) (*chunk.Storage, error)

// Saver persists a dirty chunk before it's evicted or unloaded.
type Saver func(key voxeltype.RegionKey, s *chunk.Storage) error

// Task is a unit of deferred work the manager runs against an assured
// chunk during Tick.
type Task func(s *chunk.Storage, key voxeltype.RegionKey) error

// DirtyObserver is notified with a region key whenever any resident chunk
// in that slot is marked dirty.
type DirtyObserver func(key voxeltype.RegionKey)

type entry struct {
	chunk     *chunk.Storage
	pinned    bool
	lruElem   *list.Element
}

type taskItem struct {
	id   uuid.UUID
	key  voxeltype.RegionKey
	task Task
}

type navEntry struct {
	grid           *navigation.Grid
	dirty          bool
	rebuildPending bool
	revision       uint64
}

// Manager owns every loaded chunk and the artifacts derived lazily from it.
type Manager struct {
	chunkConfigFor func(key voxeltype.RegionKey) chunk.Config

	resident map[voxeltype.RegionKey]*entry
	lru      *list.List // holds voxeltype.RegionKey values, front = least recent

	maxResident int

	loader Loader
	saver  Saver

	taskQueue []taskItem

	observers []DirtyObserver

	navEnabled     bool
	navBuildConfig navigation.BuildConfig
	navCache       map[voxeltype.RegionKey]*navEntry

	metrics *observability.Metrics
}

// SetMetrics wires a Prometheus collector set; nil (the default) skips
// all metric recording.
func (m *Manager) SetMetrics(metrics *observability.Metrics) { m.metrics = metrics }

// New creates a manager whose chunks are all built from the same config.
func New(defaultConfig chunk.Config) *Manager {
	return NewWithConfigFunc(func(voxeltype.RegionKey) chunk.Config { return defaultConfig })
}

// NewWithConfigFunc allows per-region chunk configuration (e.g. different
// feature sets near the world seam).
func NewWithConfigFunc(configFor func(voxeltype.RegionKey) chunk.Config) *Manager {
	return &Manager{
		chunkConfigFor: configFor,
		resident:       make(map[voxeltype.RegionKey]*entry),
		lru:            list.New(),
		maxResident:    1 << 30,
		navBuildConfig: navigation.DefaultBuildConfig(),
		navCache:       make(map[voxeltype.RegionKey]*navEntry),
	}
}

func (m *Manager) SetLoader(l Loader) { m.loader = l }
func (m *Manager) SetSaver(s Saver)   { m.saver = s }

// SetMaxResident updates the cap and immediately evicts down to it.
func (m *Manager) SetMaxResident(limit int) {
	m.maxResident = limit
	m.EvictUntilWithinLimit()
}

func (m *Manager) Resident() int { return len(m.resident) }

// ChunkDimensions returns the extent every chunk in this manager shares.
// Editing helpers use it to split a world position into a region key and
// local coordinate; per-region-varying configs are expected to agree on
// extent even if they differ in enabled planes.
func (m *Manager) ChunkDimensions() voxeltype.ChunkExtent {
	return m.chunkConfigFor(voxeltype.RegionKey{}).Extent
}

// Assure returns the chunk for key, loading or default-constructing it if
// missing, and touches the LRU. It never evicts.
func (m *Manager) Assure(key voxeltype.RegionKey) (*chunk.Storage, error) {
	if e, ok := m.resident[key]; ok {
		m.touch(e)
		return e.chunk, nil
	}

	var s *chunk.Storage
	if m.loader != nil {
		loaded, err := m.loader(key)
		if err != nil {
			return nil, err
		}
		s = loaded
	} else {
		s = chunk.New(m.chunkConfigFor(key))
	}

	e := &entry{chunk: s}
	m.resident[key] = e
	e.lruElem = m.lru.PushBack(key)

	s.AddDirtyListener(func() {
		m.markNavDirty(key)
		for _, obs := range m.observers {
			obs(key)
		}
	})

	return s, nil
}

// Find looks up a resident chunk without touching the LRU.
func (m *Manager) Find(key voxeltype.RegionKey) (*chunk.Storage, bool) {
	e, ok := m.resident[key]
	if !ok {
		return nil, false
	}
	return e.chunk, true
}

func (m *Manager) touch(e *entry) {
	m.lru.MoveToBack(e.lruElem)
}

// Pin forbids eviction of the given chunk, assuring it first if needed.
func (m *Manager) Pin(key voxeltype.RegionKey) error {
	if _, err := m.Assure(key); err != nil {
		return err
	}
	m.resident[key].pinned = true
	return nil
}

// Unpin clears the pin and re-touches the LRU so the chunk becomes a normal
// (most-recent) eviction candidate again.
func (m *Manager) Unpin(key voxeltype.RegionKey) {
	e, ok := m.resident[key]
	if !ok {
		return
	}
	e.pinned = false
	m.touch(e)
}

// EnqueueTask appends a task to the FIFO queue.
func (m *Manager) EnqueueTask(key voxeltype.RegionKey, task Task) uuid.UUID {
	id := uuid.New()
	m.taskQueue = append(m.taskQueue, taskItem{id: id, key: key, task: task})
	return id
}

// Tick drains up to budget tasks from the queue (unbounded if budget <= 0),
// assuring each task's chunk before invoking it, then evicts down to the
// resident cap. Returns the number of tasks processed.
func (m *Manager) Tick(budget int) (int, error) {
	if m.metrics != nil {
		start := time.Now()
		defer func() { m.metrics.TickDuration.Observe(time.Since(start).Seconds()) }()
	}

	processed := 0
	for len(m.taskQueue) > 0 && (budget <= 0 || processed < budget) {
		item := m.taskQueue[0]
		m.taskQueue = m.taskQueue[1:]

		s, err := m.Assure(item.key)
		if err != nil {
			return processed, err
		}
		if err := item.task(s, item.key); err != nil {
			return processed, err
		}
		processed++
	}
	m.EvictUntilWithinLimit()
	return processed, nil
}

func (m *Manager) AddDirtyObserver(obs DirtyObserver) {
	m.observers = append(m.observers, obs)
}

// ForEachLoaded visits every resident chunk in unspecified order.
func (m *Manager) ForEachLoaded(visit func(key voxeltype.RegionKey, s *chunk.Storage)) {
	for key, e := range m.resident {
		visit(key, e.chunk)
	}
}

type LoadedView struct {
	Key   voxeltype.RegionKey
	Chunk *chunk.Storage
}

// SnapshotLoaded returns resident chunks, by default only the dirty ones.
func (m *Manager) SnapshotLoaded(includeClean bool) []LoadedView {
	var out []LoadedView
	for key, e := range m.resident {
		if includeClean || e.chunk.Dirty() {
			out = append(out, LoadedView{Key: key, Chunk: e.chunk})
		}
	}
	return out
}

// Unload drops a resident chunk, saving it first if dirty and a saver is
// configured. Returns false for a missing or pinned chunk.
func (m *Manager) Unload(key voxeltype.RegionKey) (bool, error) {
	e, ok := m.resident[key]
	if !ok || e.pinned {
		return false, nil
	}
	if e.chunk.Dirty() && m.saver != nil {
		if err := m.saver(key, e.chunk); err != nil {
			return false, err
		}
	}
	delete(m.navCache, key)
	m.lru.Remove(e.lruElem)
	delete(m.resident, key)
	return true, nil
}

// EvictUntilWithinLimit pops the LRU front repeatedly until residency is at
// or below max_resident, skipping missing or pinned entries.
func (m *Manager) EvictUntilWithinLimit() {
	skippedSinceProgress := 0
	for len(m.resident) > m.maxResident && m.lru.Len() > 0 && skippedSinceProgress < m.lru.Len() {
		front := m.lru.Front()
		key := front.Value.(voxeltype.RegionKey)
		e, ok := m.resident[key]
		if !ok {
			m.lru.Remove(front)
			skippedSinceProgress = 0
			continue
		}
		if e.pinned {
			// Pinned entries don't count toward eviction order; move past
			// them without removing the chunk.
			m.lru.MoveToBack(front)
			skippedSinceProgress++
			continue
		}
		if e.chunk.Dirty() && m.saver != nil {
			_ = m.saver(key, e.chunk) // best effort; matches tick's propagate-to-caller policy for tasks, not eviction
		}
		delete(m.navCache, key)
		m.lru.Remove(front)
		delete(m.resident, key)
		skippedSinceProgress = 0
		if m.metrics != nil {
			m.metrics.Evictions.Inc()
		}
	}
	if m.metrics != nil {
		m.metrics.Resident.Set(float64(len(m.resident)))
	}
}
