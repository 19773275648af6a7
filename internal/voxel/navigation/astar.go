package navigation

import (
	"container/heap"
	"math"

	"github.com/almondvoxel/voxelcore/internal/voxel/voxelerr"
)

type Path struct {
	Nodes     []NodeIndex
	TotalCost float32
}

func heuristicDistance(g *Grid, node, goal NodeIndex, cfg NeighborConfig) float32 {
	x1, y1, z1 := g.Coordinates(node)
	x2, y2, z2 := g.Coordinates(goal)
	dx := float32(absInt(int(x1) - int(x2)))
	dy := float32(absInt(int(y1) - int(y2)))
	dz := float32(absInt(int(z1) - int(z2)))
	return (dx+dz)*cfg.HorizontalCost + dy*cfg.VerticalCost
}

type frontierNode struct {
	node     NodeIndex
	priority float32
	cost     float32
}

type frontierHeap []frontierNode

func (h frontierHeap) Len() int            { return len(h) }
func (h frontierHeap) Less(i, j int) bool  { return h[i].priority < h[j].priority }
func (h frontierHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *frontierHeap) Push(x interface{}) { *h = append(*h, x.(frontierNode)) }
func (h *frontierHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// AStar runs a standard best-first search over the grid. Returns a
// voxelerr.NoPath error when start/goal aren't walkable or the frontier is
// exhausted without reaching the goal.
func AStar(g *Grid, start, goal NodeIndex, cfg NeighborConfig) (*Path, error) {
	if !g.WalkableAt(start) || !g.WalkableAt(goal) {
		return nil, voxelerr.New(voxelerr.NoPath, "start or goal not walkable")
	}

	gScore := make([]float32, g.Size())
	cameFrom := make([]NodeIndex, g.Size())
	for i := range gScore {
		gScore[i] = float32(math.Inf(1))
		cameFrom[i] = InvalidNode
	}
	gScore[start] = 0

	frontier := &frontierHeap{}
	heap.Init(frontier)
	heap.Push(frontier, frontierNode{node: start, priority: heuristicDistance(g, start, goal, cfg), cost: 0})

	for frontier.Len() > 0 {
		current := heap.Pop(frontier).(frontierNode)

		if current.node == goal {
			path := &Path{TotalCost: current.cost}
			node := goal
			for node != InvalidNode {
				path.Nodes = append(path.Nodes, node)
				if node == start {
					break
				}
				node = cameFrom[node]
			}
			reverse(path.Nodes)
			return path, nil
		}

		ForEachNeighbor(g, current.node, cfg, func(edge Edge) {
			tentative := gScore[current.node] + edge.Cost
			if tentative+1e-6 < gScore[edge.Node] {
				gScore[edge.Node] = tentative
				cameFrom[edge.Node] = current.node
				priority := tentative + heuristicDistance(g, edge.Node, goal, cfg)
				heap.Push(frontier, frontierNode{node: edge.Node, priority: priority, cost: tentative})
			}
		})
	}

	return nil, voxelerr.New(voxelerr.NoPath, "frontier exhausted")
}

func reverse(nodes []NodeIndex) {
	for i, j := 0, len(nodes)-1; i < j; i, j = i+1, j-1 {
		nodes[i], nodes[j] = nodes[j], nodes[i]
	}
}
