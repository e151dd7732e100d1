package engine

import "fmt"

// neighborSteps is the fixed expansion order for all searches: up, right,
// down, left. Range membership does not depend on this order, but path
// tie-breaking does, so it must never change.
var neighborSteps = [4]Position{{0, -1}, {1, 0}, {0, 1}, {-1, 0}}

// Grid is the immutable tactical map for one battle stage. Tiles are stored
// row-major, indexed y*Width+x.
type Grid struct {
	Width  int
	Height int
	tiles  []Tile
}

// NewGrid builds a grid from a row-major tile slice.
func NewGrid(width, height int, tiles []Tile) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("grid dimensions must be positive, got %dx%d", width, height)
	}
	if len(tiles) != width*height {
		return nil, fmt.Errorf("grid needs %d tiles for %dx%d, got %d", width*height, width, height, len(tiles))
	}
	for i, tile := range tiles {
		if tile.Passable && tile.Cost < 1 {
			return nil, fmt.Errorf("passable tile at index %d must cost at least 1, got %d", i, tile.Cost)
		}
	}
	return &Grid{Width: width, Height: height, tiles: tiles}, nil
}

// Index returns the flat tile index for p. The caller must ensure p is in
// bounds.
func (g *Grid) Index(p Position) int {
	return p.Y*g.Width + p.X
}

// Size returns the total number of tiles.
func (g *Grid) Size() int {
	return g.Width * g.Height
}

// InBounds reports whether p lies on the grid.
func (g *Grid) InBounds(p Position) bool {
	return p.X >= 0 && p.X < g.Width && p.Y >= 0 && p.Y < g.Height
}

// TileAt returns the tile at p. Out-of-bounds positions return an impassable
// zero tile.
func (g *Grid) TileAt(p Position) Tile {
	if !g.InBounds(p) {
		return Tile{}
	}
	return g.tiles[g.Index(p)]
}

// IsPassable reports whether p is on the grid and enterable.
func (g *Grid) IsPassable(p Position) bool {
	return g.InBounds(p) && g.tiles[g.Index(p)].Passable
}

// OccupancySet is the set of tiles held by living units. It is rebuilt from
// the roster on every use, never patched incrementally.
type OccupancySet map[Position]bool

// BuildOccupancy derives the occupancy set from the roster. The unit with
// excludeID is left out so a unit never blocks its own range or path.
func BuildOccupancy(units []*Unit, excludeID string) OccupancySet {
	occ := make(OccupancySet, len(units))
	for _, u := range units {
		if u == nil || !u.Alive || u.ID == excludeID {
			continue
		}
		occ[u.Position] = true
	}
	return occ
}

// Occupied reports whether p is held by a living unit in the set.
func (o OccupancySet) Occupied(p Position) bool {
	return o[p]
}
