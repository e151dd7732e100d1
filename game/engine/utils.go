package engine

// ManhattanDistance calculates the Manhattan distance between two positions
func ManhattanDistance(from, to Position) int {
	dx := from.X - to.X
	if dx < 0 {
		dx = -dx
	}
	dy := from.Y - to.Y
	if dy < 0 {
		dy = -dy
	}
	return dx + dy
}

// CountTerrain counts the tiles of a specific terrain on the grid
func CountTerrain(g *Grid, terrain TerrainType) int {
	count := 0
	for _, tile := range g.tiles {
		if tile.Terrain == terrain {
			count++
		}
	}
	return count
}

// CountPassable counts the enterable tiles on the grid
func CountPassable(g *Grid) int {
	count := 0
	for _, tile := range g.tiles {
		if tile.Passable {
			count++
		}
	}
	return count
}

// UnitAt returns the living unit standing on pos, if any.
func UnitAt(units []*Unit, pos Position) (*Unit, bool) {
	for _, u := range units {
		if u != nil && u.Alive && u.Position == pos {
			return u, true
		}
	}
	return nil, false
}

// MobilityNote summarizes how boxed in a unit is, given the size of its
// current movement range. The analysis tooling prints these next to rosters.
func MobilityNote(u *Unit, rangeSize int) string {
	switch {
	case u.Movement == 0:
		return "IMMOBILE: unit cannot move"
	case rangeSize <= 1:
		return "TRAPPED: no reachable tiles this turn"
	case rangeSize <= u.Movement:
		return "CRAMPED: fewer reachable tiles than movement points"
	default:
		return "OK"
	}
}
