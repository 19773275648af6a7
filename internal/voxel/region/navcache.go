package region

import (
	"time"

	"github.com/shirou/gopsutil/v3/mem"

	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/navigation"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// EnableNavigation flips the navigation subsystem. Enabling it marks every
// resident chunk's nav entry dirty so the next Tick rebuilds them all.
func (m *Manager) EnableNavigation(enabled bool) {
	m.navEnabled = enabled
	if enabled {
		for key := range m.resident {
			m.markNavDirty(key)
		}
	}
}

func (m *Manager) SetNavigationBuildConfig(cfg navigation.BuildConfig) {
	m.navBuildConfig = cfg
	for key := range m.resident {
		m.markNavDirty(key)
	}
}

// NavigationGrid returns the cached grid for key, or nil if it hasn't been
// built yet or navigation is disabled.
func (m *Manager) NavigationGrid(key voxeltype.RegionKey) *navigation.Grid {
	if !m.navEnabled {
		return nil
	}
	entry, ok := m.navCache[key]
	if !ok {
		return nil
	}
	return entry.grid
}

func (m *Manager) RequestNavigationRebuild(key voxeltype.RegionKey) {
	m.markNavDirty(key)
}

func (m *Manager) navEntryFor(key voxeltype.RegionKey) *navEntry {
	e, ok := m.navCache[key]
	if !ok {
		e = &navEntry{}
		m.navCache[key] = e
	}
	return e
}

// markNavDirty ensures a nav_cache entry exists, marks it dirty, and
// schedules at most one rebuild task between ticks.
func (m *Manager) markNavDirty(key voxeltype.RegionKey) {
	if !m.navEnabled {
		return
	}
	e := m.navEntryFor(key)
	e.dirty = true
	m.scheduleNavRebuild(key, e)
}

func (m *Manager) scheduleNavRebuild(key voxeltype.RegionKey, e *navEntry) {
	if e.rebuildPending {
		return
	}
	e.rebuildPending = true
	m.EnqueueTask(key, func(s *chunk.Storage, taskKey voxeltype.RegionKey) error {
		start := time.Now()
		grid := navigation.Build(s, m.navBuildConfig)
		if m.metrics != nil {
			m.metrics.NavBuildTime.Observe(time.Since(start).Seconds())
		}
		entry := m.navEntryFor(taskKey)
		entry.grid = grid
		entry.dirty = false
		entry.rebuildPending = false
		entry.revision++
		return nil
	})
}

// StitchNavigation collects nav grids for origin and the given neighbors
// and returns the cross-region adjacency graph.
func (m *Manager) StitchNavigation(origin voxeltype.RegionKey, neighbors []voxeltype.RegionKey, extent voxeltype.ChunkExtent) navigation.StitchedGraph {
	graph := navigation.StitchedGraph{}
	keys := append([]voxeltype.RegionKey{origin}, neighbors...)
	for _, key := range keys {
		grid := m.NavigationGrid(key)
		if grid == nil {
			continue
		}
		graph.Regions = append(graph.Regions, navigation.RegionView{Key: key, Grid: grid})
	}
	navigation.StitchNeighborRegions(m.navBuildConfig.Neighbor, extent, &graph)
	return graph
}

// AutoTuneResident sets max_resident from host free memory, replacing any
// limit set earlier: it assumes each resident chunk costs roughly
// bytesPerChunk and keeps usage under the given fraction of free memory.
func (m *Manager) AutoTuneResident(bytesPerChunk int64, fractionOfFree float64) error {
	vm, err := mem.VirtualMemory()
	if err != nil {
		return err
	}
	budget := int64(float64(vm.Available) * fractionOfFree)
	if bytesPerChunk <= 0 {
		bytesPerChunk = 1
	}
	limit := int(budget / bytesPerChunk)
	if limit < 1 {
		limit = 1
	}
	m.SetMaxResident(limit)
	return nil
}
