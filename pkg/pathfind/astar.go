// Package pathfind implements A* search over the hex grid, bounded by a
// maximum iteration count so a single tick's pathfinding call can never
// stall the tick pipeline. Grounded on the priority-queue A* every engine in
// the retrieval pack implements for its own grid (adapted here to axial hex
// neighbours instead of a square grid), and on SPEC_FULL.md §9's decision
// that cross-room pathfinding is out of scope: Find only ever searches
// within a single room.
package pathfind

import (
	"container/heap"
	"errors"

	"github.com/hexswarm/sim/internal/world"
	"github.com/hexswarm/sim/pkg/hexgrid"
)

// ErrNoPath is returned when no path exists between start and goal within
// maxIterations node expansions.
var ErrNoPath = errors.New("pathfind: no path found")

// Blocked reports whether a position cannot be entered: occupied by another
// entity or marked as wall terrain.
type Blocked func(room hexgrid.Room, pos hexgrid.Axial) bool

// Find searches for a shortest path from start to goal within the same
// room, expanding at most maxIterations nodes. The returned slice excludes
// start and includes goal.
func Find(room hexgrid.Room, start, goal hexgrid.Axial, maxIterations int, blocked Blocked) ([]hexgrid.Axial, error) {
	if start == goal {
		return nil, nil
	}
	open := &nodeHeap{}
	heap.Init(open)
	heap.Push(open, &node{pos: start, g: 0, f: start.HexDistance(goal)})

	cameFrom := map[hexgrid.Axial]hexgrid.Axial{}
	gScore := map[hexgrid.Axial]uint32{start: 0}
	visited := map[hexgrid.Axial]bool{}

	iterations := 0
	for open.Len() > 0 {
		iterations++
		if iterations > maxIterations {
			return nil, ErrNoPath
		}
		cur := heap.Pop(open).(*node)
		if visited[cur.pos] {
			continue
		}
		visited[cur.pos] = true
		if cur.pos == goal {
			return reconstruct(cameFrom, start, goal), nil
		}
		for _, n := range cur.pos.Neighbours() {
			if !n.InDomain() || visited[n] {
				continue
			}
			if blocked != nil && n != goal && blocked(room, n) {
				continue
			}
			tentative := gScore[cur.pos] + 1
			if existing, ok := gScore[n]; ok && existing <= tentative {
				continue
			}
			gScore[n] = tentative
			cameFrom[n] = cur.pos
			heap.Push(open, &node{pos: n, g: tentative, f: tentative + n.HexDistance(goal)})
		}
	}
	return nil, ErrNoPath
}

func reconstruct(cameFrom map[hexgrid.Axial]hexgrid.Axial, start, goal hexgrid.Axial) []hexgrid.Axial {
	var path []hexgrid.Axial
	for at := goal; at != start; at = cameFrom[at] {
		path = append(path, at)
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}

type node struct {
	pos  hexgrid.Axial
	g, f uint32
}

type nodeHeap []*node

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].f < h[j].f }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x interface{}) { *h = append(*h, x.(*node)) }
func (h *nodeHeap) Pop() interface{} {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}

// Refill runs Find from the bot's current position toward goal and replaces
// its PathCache with the result, truncated to GameConfig.PathCacheLen.
// Must be called from inside a world.ExecFunc.
func Refill(w *world.World, bot hexgrid.EntityId, goal hexgrid.Axial) error {
	pos, ok := w.EntityPosition(bot)
	if !ok {
		return ErrNoPath
	}
	cfg := w.Config.Unwrap()
	path, err := Find(pos.Room, pos.Pos, goal, cfg.MaxPathfindingIterations, func(room hexgrid.Room, p hexgrid.Axial) bool {
		wp := hexgrid.WorldPosition{Room: room, Pos: p}
		if w.Positions.Contains(wp) {
			return true
		}
		if t, ok := w.Terrain.Get(wp); ok && t.Kind == world.TerrainWall {
			return true
		}
		return false
	})
	if err != nil {
		return err
	}
	if cfg.PathCacheLen > 0 && len(path) > cfg.PathCacheLen {
		path = path[:cfg.PathCacheLen]
	}
	w.PathCaches.Insert(bot, world.PathCache{Steps: path})
	return nil
}
