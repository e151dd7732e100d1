package engine

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func createValidScenario() *ScenarioConfig {
	return &ScenarioConfig{
		Name:        "Test Skirmish",
		Description: "A valid test scenario",
		GridWidth:   5,
		GridHeight:  5,
		Layout: []string{
			".....",
			".WW..",
			"..F..",
			"..F..",
			".....",
		},
		Legend: map[string]string{
			".": "plains",
			"W": "water",
			"F": "forest",
		},
		Units: []UnitConfig{
			{ID: "scout", Name: "Scout", Faction: "alliance", X: 0, Y: 0, Movement: 3},
			{ID: "grunt", Faction: "alliance", X: 1, Y: 0, Movement: 2},
			{ID: "raider", Faction: "horde", X: 4, Y: 4, Movement: 3},
		},
		StepDurationMs: 50,
	}
}

func TestValidateScenarioConfig(t *testing.T) {
	require.NoError(t, ValidateScenarioConfig(createValidScenario()))
	require.Error(t, ValidateScenarioConfig(nil))

	tests := []struct {
		name    string
		mutate  func(c *ScenarioConfig)
		wantErr string
	}{
		{
			name:    "missing name",
			mutate:  func(c *ScenarioConfig) { c.Name = "" },
			wantErr: "name is required",
		},
		{
			name:    "missing description",
			mutate:  func(c *ScenarioConfig) { c.Description = "" },
			wantErr: "description is required",
		},
		{
			name:    "grid too narrow",
			mutate:  func(c *ScenarioConfig) { c.GridWidth = MinGridDimension - 1 },
			wantErr: "grid_width",
		},
		{
			name:    "grid too wide",
			mutate:  func(c *ScenarioConfig) { c.GridWidth = MaxGridDimension + 1 },
			wantErr: "grid_width",
		},
		{
			name:    "grid too short",
			mutate:  func(c *ScenarioConfig) { c.GridHeight = MinGridDimension - 1 },
			wantErr: "grid_height",
		},
		{
			name:    "layout row count mismatch",
			mutate:  func(c *ScenarioConfig) { c.Layout = c.Layout[:4] },
			wantErr: "layout must have 5 rows",
		},
		{
			name:    "layout row width mismatch",
			mutate:  func(c *ScenarioConfig) { c.Layout[2] = "..F" },
			wantErr: "row 3 must have 5 characters",
		},
		{
			name:    "character missing from legend",
			mutate:  func(c *ScenarioConfig) { c.Layout[0] = "....X" },
			wantErr: "not in the legend",
		},
		{
			name:    "legend names unknown terrain",
			mutate:  func(c *ScenarioConfig) { c.Legend["F"] = "lava" },
			wantErr: "unknown terrain 'lava'",
		},
		{
			name:    "legend key too long",
			mutate:  func(c *ScenarioConfig) { c.Legend["XY"] = "plains" },
			wantErr: "single character",
		},
		{
			name:    "no units",
			mutate:  func(c *ScenarioConfig) { c.Units = nil },
			wantErr: "at least one unit",
		},
		{
			name: "too many units",
			mutate: func(c *ScenarioConfig) {
				c.Units = c.Units[:1]
				for i := 0; i <= MaxRosterSize; i++ {
					c.Units = append(c.Units, UnitConfig{
						ID: string(rune('a'+i/8)) + string(rune('a'+i%8)), Faction: "alliance", X: i % 5, Y: 4, Movement: 1,
					})
				}
			},
			wantErr: "at most 32 units",
		},
		{
			name:    "unit without id",
			mutate:  func(c *ScenarioConfig) { c.Units[1].ID = "" },
			wantErr: "has no id",
		},
		{
			name:    "duplicate unit ids",
			mutate:  func(c *ScenarioConfig) { c.Units[1].ID = "scout" },
			wantErr: "duplicate unit id 'scout'",
		},
		{
			name:    "unit without faction",
			mutate:  func(c *ScenarioConfig) { c.Units[0].Faction = "" },
			wantErr: "has no faction",
		},
		{
			name:    "negative movement",
			mutate:  func(c *ScenarioConfig) { c.Units[0].Movement = -1 },
			wantErr: "movement must be between",
		},
		{
			name:    "movement above the cap",
			mutate:  func(c *ScenarioConfig) { c.Units[0].Movement = MaxUnitMovement + 1 },
			wantErr: "movement must be between",
		},
		{
			name:    "unit out of bounds",
			mutate:  func(c *ScenarioConfig) { c.Units[0].X = 5 },
			wantErr: "outside the 5x5 grid",
		},
		{
			name: "unit on impassable terrain",
			mutate: func(c *ScenarioConfig) {
				c.Units[0].X, c.Units[0].Y = 1, 1 // water
			},
			wantErr: "starts on impassable water",
		},
		{
			name: "units sharing a tile",
			mutate: func(c *ScenarioConfig) {
				c.Units[1].X, c.Units[1].Y = c.Units[0].X, c.Units[0].Y
			},
			wantErr: "both start at",
		},
		{
			name:    "negative step duration",
			mutate:  func(c *ScenarioConfig) { c.StepDurationMs = -1 },
			wantErr: "step_duration_ms",
		},
		{
			name:    "step duration above the cap",
			mutate:  func(c *ScenarioConfig) { c.StepDurationMs = MaxStepDuration + 1 },
			wantErr: "step_duration_ms",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			config := createValidScenario()
			tc.mutate(config)
			err := ValidateScenarioConfig(config)
			require.Error(t, err)
			require.Contains(t, err.Error(), tc.wantErr)
		})
	}
}

func TestTileForTerrain(t *testing.T) {
	tile, ok := TileForTerrain(Forest)
	require.True(t, ok)
	require.Equal(t, 2, tile.Cost)
	require.True(t, tile.Passable)

	tile, ok = TileForTerrain(Water)
	require.True(t, ok)
	require.False(t, tile.Passable)

	_, ok = TileForTerrain("lava")
	require.False(t, ok)
}

func TestBuildGrid(t *testing.T) {
	grid, err := BuildGrid(createValidScenario())
	require.NoError(t, err)
	require.Equal(t, 5, grid.Width)
	require.Equal(t, 5, grid.Height)

	require.Equal(t, Plains, grid.TileAt(Position{X: 0, Y: 0}).Terrain)
	require.Equal(t, 2, grid.TileAt(Position{X: 2, Y: 2}).Cost, "forest costs 2 to enter")
	require.False(t, grid.IsPassable(Position{X: 1, Y: 1}), "water is impassable")

	broken := createValidScenario()
	broken.Name = ""
	_, err = BuildGrid(broken)
	require.Error(t, err, "building revalidates the scenario")
}

func TestBuildRoster(t *testing.T) {
	units := BuildRoster(createValidScenario())
	require.Len(t, units, 3)

	require.Equal(t, "Scout", units[0].Name)
	require.Equal(t, "grunt", units[1].Name, "name falls back to the id")
	require.Equal(t, Position{X: 4, Y: 4}, units[2].Position)
	for _, u := range units {
		require.True(t, u.Alive)
		require.False(t, u.HasMoved)
	}
}

func TestFactionRotation(t *testing.T) {
	rotation := FactionRotation(createValidScenario())
	require.Equal(t, []string{"alliance", "horde"}, rotation, "factions rotate in order of first appearance")
}

func TestLoadScenarioConfig(t *testing.T) {
	t.Run("loads and validates a file", func(t *testing.T) {
		path := writeScenarioFile(t, t.TempDir(), "skirmish.json", `{
			"name": "Skirmish",
			"description": "Two scouts on a field",
			"grid_width": 3,
			"grid_height": 3,
			"layout": ["...", "...", "..."],
			"legend": {".": "plains"},
			"units": [
				{"id": "a", "faction": "alliance", "x": 0, "y": 0, "movement": 2},
				{"id": "b", "faction": "horde", "x": 2, "y": 2, "movement": 2}
			]
		}`)

		config, err := LoadScenarioConfig(path)
		require.NoError(t, err)
		require.Equal(t, "Skirmish", config.Name)
		require.Equal(t, 3, config.GridWidth)
		require.Len(t, config.Units, 2)
		require.Zero(t, config.StepDurationMs, "step duration is optional")
	})

	t.Run("rejects malformed json", func(t *testing.T) {
		path := writeScenarioFile(t, t.TempDir(), "broken.json", `{"name":`)
		_, err := LoadScenarioConfig(path)
		require.Error(t, err)
	})

	t.Run("rejects invalid scenarios", func(t *testing.T) {
		path := writeScenarioFile(t, t.TempDir(), "invalid.json", `{
			"name": "No units",
			"description": "Fails validation",
			"grid_width": 3,
			"grid_height": 3,
			"layout": ["...", "...", "..."],
			"legend": {".": "plains"},
			"units": []
		}`)
		_, err := LoadScenarioConfig(path)
		require.Error(t, err)
		require.Contains(t, err.Error(), "at least one unit")
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadScenarioConfig(filepath.Join(t.TempDir(), "absent.json"))
		require.Error(t, err)
	})

	t.Run("CONFIG_DIR overrides the configs directory", func(t *testing.T) {
		dir := t.TempDir()
		writeScenarioFile(t, dir, "skirmish.json", `{
			"name": "Elsewhere",
			"description": "Loaded through CONFIG_DIR",
			"grid_width": 3,
			"grid_height": 3,
			"layout": ["...", "...", "..."],
			"legend": {".": "plains"},
			"units": [{"id": "a", "faction": "alliance", "x": 1, "y": 1, "movement": 2}]
		}`)
		t.Setenv("CONFIG_DIR", dir)

		config, err := LoadScenarioConfig("configs/skirmish.json")
		require.NoError(t, err)
		require.Equal(t, "Elsewhere", config.Name)
	})
}

func TestLoadScenarioByName(t *testing.T) {
	_, err := LoadScenarioByName("definitely-not-a-real-scenario")
	require.Error(t, err)
	require.Contains(t, err.Error(), "not found")
}

func writeScenarioFile(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(strings.TrimSpace(contents)), 0o644))
	return path
}
