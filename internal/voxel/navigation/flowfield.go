package navigation

import (
	"container/heap"
	"math"

	"github.com/almondvoxel/voxelcore/internal/voxel/voxeltype"
)

// FlowField holds per-node next-hop and distance-to-goal, computed by a
// single-source Dijkstra relaxation rooted at the goal.
type FlowField struct {
	Extent   voxeltype.ChunkExtent
	Next     []NodeIndex
	Distance []float32
}

type queueNode struct {
	node NodeIndex
	cost float32
}

type queueHeap []queueNode

func (h queueHeap) Len() int            { return len(h) }
func (h queueHeap) Less(i, j int) bool  { return h[i].cost < h[j].cost }
func (h queueHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *queueHeap) Push(x interface{}) { *h = append(*h, x.(queueNode)) }
func (h *queueHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// ComputeFlowField builds next/distance from the goal outward.
func ComputeFlowField(g *Grid, goal NodeIndex, cfg NeighborConfig) *FlowField {
	field := &FlowField{
		Extent:   g.Extent,
		Next:     make([]NodeIndex, g.Size()),
		Distance: make([]float32, g.Size()),
	}
	for i := range field.Next {
		field.Next[i] = InvalidNode
		field.Distance[i] = float32(math.Inf(1))
	}

	if !g.WalkableAt(goal) {
		return field
	}

	q := &queueHeap{}
	heap.Init(q)
	heap.Push(q, queueNode{node: goal, cost: 0})
	field.Distance[goal] = 0
	field.Next[goal] = goal

	for q.Len() > 0 {
		current := heap.Pop(q).(queueNode)
		if current.cost > field.Distance[current.node]+1e-6 {
			continue
		}

		ForEachNeighbor(g, current.node, cfg, func(edge Edge) {
			candidate := current.cost + edge.Cost
			if candidate+1e-6 < field.Distance[edge.Node] {
				field.Distance[edge.Node] = candidate
				field.Next[edge.Node] = current.node
				heap.Push(q, queueNode{node: edge.Node, cost: candidate})
			}
		})
	}

	return field
}

// FollowFlow walks next-hop pointers from start until it reaches the goal
// (next[n] == n) or max_steps is exhausted; returns empty if any hop is the
// sentinel (unreachable).
func FollowFlow(field *FlowField, start NodeIndex, maxSteps int) []NodeIndex {
	var path []NodeIndex
	if uint64(start) >= uint64(len(field.Next)) {
		return path
	}

	current := start
	for i := 0; i < maxSteps; i++ {
		path = append(path, current)
		next := field.Next[current]
		if next == InvalidNode {
			return nil
		}
		if next == current {
			break
		}
		current = next
	}
	return path
}
