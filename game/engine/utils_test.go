package engine

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestManhattanDistance(t *testing.T) {
	tests := []struct {
		from, to Position
		want     int
	}{
		{Position{X: 0, Y: 0}, Position{X: 0, Y: 0}, 0},
		{Position{X: 0, Y: 0}, Position{X: 3, Y: 0}, 3},
		{Position{X: 2, Y: 2}, Position{X: 0, Y: 4}, 4},
		{Position{X: 4, Y: 1}, Position{X: 1, Y: 3}, 5},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, ManhattanDistance(tc.from, tc.to))
		require.Equal(t, tc.want, ManhattanDistance(tc.to, tc.from), "distance is symmetric")
	}
}

func TestCountTerrain(t *testing.T) {
	grid, err := BuildGrid(createValidScenario())
	require.NoError(t, err)

	require.Equal(t, 2, CountTerrain(grid, Water))
	require.Equal(t, 2, CountTerrain(grid, Forest))
	require.Equal(t, 21, CountTerrain(grid, Plains))
	require.Zero(t, CountTerrain(grid, Swamp))
	require.Equal(t, 23, CountPassable(grid))
}

func TestUnitAt(t *testing.T) {
	units := []*Unit{
		testUnit("a", "alliance", 1, 1, 2),
		testUnit("b", "horde", 3, 3, 2),
		nil,
	}
	units[1].Alive = false

	u, ok := UnitAt(units, Position{X: 1, Y: 1})
	require.True(t, ok)
	require.Equal(t, "a", u.ID)

	_, ok = UnitAt(units, Position{X: 3, Y: 3})
	require.False(t, ok, "dead units do not hold tiles")

	_, ok = UnitAt(units, Position{X: 0, Y: 0})
	require.False(t, ok)
}

func TestMobilityNote(t *testing.T) {
	turret := testUnit("turret", "alliance", 0, 0, 0)
	require.True(t, strings.HasPrefix(MobilityNote(turret, 1), "IMMOBILE"))

	scout := testUnit("scout", "alliance", 0, 0, 3)
	require.True(t, strings.HasPrefix(MobilityNote(scout, 1), "TRAPPED"))
	require.True(t, strings.HasPrefix(MobilityNote(scout, 3), "CRAMPED"))
	require.Equal(t, "OK", MobilityNote(scout, 12))
}
