// Package raytracing builds acceleration structures over chunk voxel data
// (a sparse voxel octree, a clipmap mip pyramid) and the voxel-grid ray
// queries layered on top of them: DDA traversal, cone-traced ambient
// occlusion, and a lighting bake.
package raytracing

import (
	"time"

	"github.com/almondvoxel/voxelcore/internal/observability"
	"github.com/almondvoxel/voxelcore/internal/voxel/chunk"
	"github.com/almondvoxel/voxelcore/internal/voxel/region"
	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

const InvalidIndex uint32 = 0xFFFFFFFF
const maxVoxelID voxeltype.VoxelID = 0xFFFF

// NodeBounds summarizes the material range covered by an octree node or
// clipmap cell.
type NodeBounds struct {
	MinMaterial voxeltype.VoxelID
	MaxMaterial voxeltype.VoxelID
	Occupied    bool
}

func (b *NodeBounds) Include(id voxeltype.VoxelID) {
	if id == voxeltype.EmptyVoxel {
		return
	}
	b.Occupied = true
	if id < b.MinMaterial {
		b.MinMaterial = id
	}
	if id > b.MaxMaterial {
		b.MaxMaterial = id
	}
}

func newNodeBounds() NodeBounds {
	return NodeBounds{MinMaterial: maxVoxelID}
}

// OctreeNode is one node of a SparseVoxelOctree.
type OctreeNode struct {
	Bounds     NodeBounds
	Children   [8]uint32
	FirstChild uint32
	Size       uint32
	Origin     [3]int32
	Leaf       bool
}

// GPUNode is the flat, render-ready encoding of an OctreeNode.
type GPUNode struct {
	Origin        [3]float32
	Size          float32
	Children      [8]uint32
	Leaf          uint32
	MaterialRange [2]uint32
}

// SparseVoxelOctree is a depth-bounded octree over a chunk's voxel plane,
// recording the occupied material range for each node so renderers can
// skip empty subtrees.
type SparseVoxelOctree struct {
	nodes []OctreeNode
}

func (o *SparseVoxelOctree) Root() OctreeNode       { return o.nodes[0] }
func (o *SparseVoxelOctree) Nodes() []OctreeNode    { return o.nodes }

// Build recomputes the octree for the chunk's current voxel plane, down to
// maxDepth (or until a node side reaches 1).
func (o *SparseVoxelOctree) Build(s *chunk.Storage, maxDepth uint32) {
	o.nodes = o.nodes[:0]
	o.nodes = append(o.nodes, OctreeNode{})
	extent := s.Extent()
	o.buildNode(0, s, 0, [3]uint32{extent.X, extent.Y, extent.Z}, [3]uint32{0, 0, 0}, maxDepth)
}

func accumulateBounds(voxels voxeltype.View3D[voxeltype.VoxelID], size, offset [3]uint32) NodeBounds {
	bounds := newNodeBounds()
	for z := uint32(0); z < size[2]; z++ {
		for y := uint32(0); y < size[1]; y++ {
			for x := uint32(0); x < size[0]; x++ {
				px, py, pz := int(offset[0]+x), int(offset[1]+y), int(offset[2]+z)
				if !voxels.Contains(px, py, pz) {
					continue
				}
				bounds.Include(voxels.At(px, py, pz))
			}
		}
	}
	if !bounds.Occupied {
		bounds.MinMaterial = 0
	}
	return bounds
}

func (o *SparseVoxelOctree) buildNode(nodeIndex int, s *chunk.Storage, depth uint32, size, offset [3]uint32, maxDepth uint32) {
	voxels := s.VoxelsConst()
	bounds := accumulateBounds(voxels, size, offset)

	node := &o.nodes[nodeIndex]
	node.Bounds = bounds
	node.Origin = [3]int32{int32(offset[0]), int32(offset[1]), int32(offset[2])}
	node.Size = size[0]
	node.Leaf = depth >= maxDepth || size[0] <= 1 || size[1] <= 1 || size[2] <= 1 || !bounds.Occupied

	if node.Leaf {
		node.FirstChild = InvalidIndex
		for i := range node.Children {
			node.Children[i] = InvalidIndex
		}
		return
	}

	node.FirstChild = uint32(len(o.nodes))
	firstChild := node.FirstChild
	childSize := [3]uint32{
		maxUint32(1, size[0]/2),
		maxUint32(1, size[1]/2),
		maxUint32(1, size[2]/2),
	}

	// All eight children are appended before any of them is built, so they
	// occupy firstChild..firstChild+7. The node pointer may be invalidated by
	// the append's reallocation; re-fetch before writing each child slot.
	for child := uint32(0); child < 8; child++ {
		o.nodes = append(o.nodes, OctreeNode{})
		o.nodes[nodeIndex].Children[child] = firstChild + child
	}

	for child := uint32(0); child < 8; child++ {
		childOffset := offset
		if child&1 != 0 {
			childOffset[0] += childSize[0]
		}
		if child&2 != 0 {
			childOffset[1] += childSize[1]
		}
		if child&4 != 0 {
			childOffset[2] += childSize[2]
		}
		o.buildNode(int(firstChild+child), s, depth+1, childSize, childOffset, maxDepth)
	}
}

func maxUint32(a, b uint32) uint32 {
	if a > b {
		return a
	}
	return b
}

// ExportGPUBuffer flattens the octree into a render-ready node array.
func (o *SparseVoxelOctree) ExportGPUBuffer() []GPUNode {
	buffer := make([]GPUNode, 0, len(o.nodes))
	for _, node := range o.nodes {
		leaf := uint32(0)
		if node.Leaf {
			leaf = 1
		}
		buffer = append(buffer, GPUNode{
			Origin:        [3]float32{float32(node.Origin[0]), float32(node.Origin[1]), float32(node.Origin[2])},
			Size:          float32(node.Size),
			Children:      node.Children,
			Leaf:          leaf,
			MaterialRange: [2]uint32{uint32(node.Bounds.MinMaterial), uint32(node.Bounds.MaxMaterial)},
		})
	}
	return buffer
}

// ClipmapLevel is one mip level of a ClipmapGrid: a dense grid of
// progressively coarser occupancy cells.
type ClipmapLevel struct {
	Dimensions [3]uint32
	Cells      []NodeBounds
}

// ClipmapGrid is a mip pyramid over a chunk's voxel plane, halving each
// axis per level, used for coarse occlusion tests before a fine DDA trace.
type ClipmapGrid struct {
	levelData []ClipmapLevel
}

func (c *ClipmapGrid) Levels() []ClipmapLevel { return c.levelData }

func (c *ClipmapGrid) Build(s *chunk.Storage, levels uint32) {
	c.levelData = c.levelData[:0]
	extent := s.Extent()
	dims := [3]uint32{extent.X, extent.Y, extent.Z}
	voxels := s.VoxelsConst()

	for level := uint32(0); level < levels; level++ {
		entry := ClipmapLevel{Dimensions: dims}
		entry.Cells = make([]NodeBounds, int(dims[0])*int(dims[1])*int(dims[2]))
		for z := uint32(0); z < dims[2]; z++ {
			for y := uint32(0); y < dims[1]; y++ {
				for x := uint32(0); x < dims[0]; x++ {
					cell := &entry.Cells[int(x)+int(dims[0])*(int(y)+int(dims[1])*int(z))]
					if voxels.Contains(int(x), int(y), int(z)) {
						cell.Include(voxels.At(int(x), int(y), int(z)))
					}
				}
			}
		}
		c.levelData = append(c.levelData, entry)
		dims[0] = maxUint32(1, dims[0]/2)
		dims[1] = maxUint32(1, dims[1]/2)
		dims[2] = maxUint32(1, dims[2]/2)
	}
}

// RegionEntry caches the built acceleration structures for a region key.
type RegionEntry struct {
	SVO     SparseVoxelOctree
	Clipmap ClipmapGrid
	Dirty   bool
}

// AccelerationCache tracks per-region SVO/clipmap pairs, rebuilt lazily
// when the backing chunk is dirty.
type AccelerationCache struct {
	regions map[voxeltype.RegionKey]*RegionEntry
	metrics *observability.Metrics
}

func NewAccelerationCache() *AccelerationCache {
	return &AccelerationCache{regions: make(map[voxeltype.RegionKey]*RegionEntry)}
}

// SetMetrics wires a Prometheus collector set; nil (the default) skips
// all metric recording.
func (c *AccelerationCache) SetMetrics(metrics *observability.Metrics) { c.metrics = metrics }

func (c *AccelerationCache) UpdateRegion(key voxeltype.RegionKey, s *chunk.Storage) {
	start := time.Now()
	entry := c.assure(key)
	entry.SVO.Build(s, 5)
	entry.Clipmap.Build(s, 3)
	entry.Dirty = false
	if c.metrics != nil {
		c.metrics.SVOBuildTime.Observe(time.Since(start).Seconds())
	}
}

func (c *AccelerationCache) InvalidateRegion(key voxeltype.RegionKey) {
	c.assure(key).Dirty = true
}

func (c *AccelerationCache) Find(key voxeltype.RegionKey) (*RegionEntry, bool) {
	entry, ok := c.regions[key]
	return entry, ok
}

func (c *AccelerationCache) assure(key voxeltype.RegionKey) *RegionEntry {
	entry, ok := c.regions[key]
	if !ok {
		entry = &RegionEntry{Dirty: true}
		c.regions[key] = entry
	}
	return entry
}

// RebuildDirty walks every resident chunk in manager, clean or dirty, and
// refreshes any region entry that's missing or marked dirty.
func (c *AccelerationCache) RebuildDirty(manager *region.Manager) {
	for _, snapshot := range manager.SnapshotLoaded(true) {
		if snapshot.Chunk == nil {
			continue
		}
		entry, ok := c.Find(snapshot.Key)
		if !ok || entry.Dirty {
			c.UpdateRegion(snapshot.Key, snapshot.Chunk)
		}
	}
}
