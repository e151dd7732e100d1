package engine

import (
	"container/heap"
	"sort"
)

// unvisited marks tiles the search has not reached.
const unvisited = -1

// MovementRange is the set of tiles a unit can end its move on, with the
// minimum accumulated cost for each. The origin is always a member at cost 0.
type MovementRange struct {
	Origin Position
	Budget int
	costs  map[Position]int
}

// Contains reports whether p is reachable within the budget.
func (r *MovementRange) Contains(p Position) bool {
	_, ok := r.costs[p]
	return ok
}

// CostTo returns the minimum accumulated cost to reach p, if p is in range.
func (r *MovementRange) CostTo(p Position) (int, bool) {
	cost, ok := r.costs[p]
	return cost, ok
}

// Len returns the number of reachable tiles, origin included.
func (r *MovementRange) Len() int {
	return len(r.costs)
}

// Tiles returns the reachable tiles in row-major order, so serialized ranges
// are stable across calls.
func (r *MovementRange) Tiles() []RangeTile {
	tiles := make([]RangeTile, 0, len(r.costs))
	for pos, cost := range r.costs {
		tiles = append(tiles, RangeTile{Position: pos, Cost: cost})
	}
	sort.Slice(tiles, func(i, j int) bool {
		if tiles[i].Position.Y != tiles[j].Position.Y {
			return tiles[i].Position.Y < tiles[j].Position.Y
		}
		return tiles[i].Position.X < tiles[j].Position.X
	})
	return tiles
}

// ComputeRange runs a cost-relaxation search from start and returns every
// tile reachable at cumulative cost <= budget via passable, unoccupied tiles.
// A budget of 0 or a fully boxed-in start yields a range of just the origin.
func ComputeRange(g *Grid, start Position, budget int, occupied OccupancySet) *MovementRange {
	rng := &MovementRange{Origin: start, Budget: budget, costs: make(map[Position]int)}
	if g == nil || !g.InBounds(start) {
		return rng
	}
	res := costSearch(g, start, budget, occupied, nil)
	for i, cost := range res.dist {
		if cost == unvisited {
			continue
		}
		rng.costs[Position{X: i % g.Width, Y: i / g.Width}] = cost
	}
	return rng
}

// searchResult holds per-tile minimum costs and predecessor indexes from one
// cost-relaxation pass. Unreached tiles hold unvisited in both slices.
type searchResult struct {
	dist []int
	prev []int
}

// costSearch is the shared Dijkstra core behind ComputeRange and FindPath.
// Neighbors expand in the fixed up/right/down/left order and a candidate cost
// is accepted only if strictly lower than the recorded one, so predecessors
// and therefore reconstructed paths are fully deterministic for identical
// inputs. When goal is non-nil the search stops as soon as the goal tile is
// popped with its minimal cost.
func costSearch(g *Grid, start Position, budget int, occupied OccupancySet, goal *Position) searchResult {
	res := searchResult{
		dist: make([]int, g.Size()),
		prev: make([]int, g.Size()),
	}
	for i := range res.dist {
		res.dist[i] = unvisited
		res.prev[i] = unvisited
	}
	res.dist[g.Index(start)] = 0

	pq := &searchQueue{}
	heap.Init(pq)
	seq := 0
	heap.Push(pq, searchNode{pos: start, cost: 0, seq: seq})

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(searchNode)
		curIdx := g.Index(cur.pos)
		if cur.cost > res.dist[curIdx] {
			continue // stale queue entry
		}
		if goal != nil && cur.pos == *goal {
			break
		}
		for _, step := range neighborSteps {
			next := Position{X: cur.pos.X + step.X, Y: cur.pos.Y + step.Y}
			if !g.InBounds(next) {
				continue
			}
			tile := g.tiles[g.Index(next)]
			if !tile.Passable || occupied.Occupied(next) {
				continue
			}
			candidate := cur.cost + tile.Cost
			if candidate > budget {
				continue
			}
			nextIdx := g.Index(next)
			if res.dist[nextIdx] != unvisited && candidate >= res.dist[nextIdx] {
				continue
			}
			res.dist[nextIdx] = candidate
			res.prev[nextIdx] = curIdx
			seq++
			heap.Push(pq, searchNode{pos: next, cost: candidate, seq: seq})
		}
	}
	return res
}

// searchNode is one frontier entry. seq is the insertion sequence number and
// breaks cost ties so equal-cost tiles pop in the order they were improved.
type searchNode struct {
	pos  Position
	cost int
	seq  int
}

// searchQueue is a min-heap over (cost, seq).
type searchQueue []searchNode

func (q searchQueue) Len() int { return len(q) }

func (q searchQueue) Less(i, j int) bool {
	if q[i].cost != q[j].cost {
		return q[i].cost < q[j].cost
	}
	return q[i].seq < q[j].seq
}

func (q searchQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }

func (q *searchQueue) Push(x any) {
	*q = append(*q, x.(searchNode))
}

func (q *searchQueue) Pop() any {
	old := *q
	n := len(old)
	node := old[n-1]
	*q = old[:n-1]
	return node
}
