package engine

// Path is the ordered tile sequence a unit walks, from its current tile
// (inclusive) to the destination (inclusive). An empty path means no route
// exists within the budget.
type Path []Position

// Cost returns the total movement cost of the path on g: the sum of the entry
// costs of every tile after the first.
func (p Path) Cost(g *Grid) int {
	total := 0
	for i := 1; i < len(p); i++ {
		total += g.TileAt(p[i]).Cost
	}
	return total
}

// Destination returns the final position, if the path is non-empty.
func (p Path) Destination() (Position, bool) {
	if len(p) == 0 {
		return Position{}, false
	}
	return p[len(p)-1], true
}

// FindPath returns the deterministic minimum-cost path from start to dest
// within budget, or an empty path if none exists. The search is the same
// cost-relaxation pass as ComputeRange with an early exit once dest is
// settled, so a path's total cost always equals the range's recorded cost for
// dest. Calling it twice with identical grid, occupancy, start and dest
// yields identical sequences.
func FindPath(g *Grid, start, dest Position, budget int, occupied OccupancySet) Path {
	if g == nil || !g.InBounds(start) || !g.InBounds(dest) {
		return nil
	}
	if start == dest {
		return Path{start}
	}
	res := costSearch(g, start, budget, occupied, &dest)
	destIdx := g.Index(dest)
	if res.dist[destIdx] == unvisited {
		return nil
	}

	// Walk predecessor pointers back to start, then reverse.
	startIdx := g.Index(start)
	var path Path
	for idx := destIdx; idx != unvisited; idx = res.prev[idx] {
		path = append(path, Position{X: idx % g.Width, Y: idx / g.Width})
		if idx == startIdx {
			break
		}
	}
	if len(path) == 0 || path[len(path)-1] != start {
		return nil
	}
	for i, j := 0, len(path)-1; i < j; i, j = i+1, j-1 {
		path[i], path[j] = path[j], path[i]
	}
	return path
}
