package engine

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// terrainCatalog maps terrain names to their tile attributes. Scenario
// legends may only reference terrains listed here.
var terrainCatalog = map[TerrainType]Tile{
	Plains: {Terrain: Plains, Cost: 1, Passable: true},
	Road:   {Terrain: Road, Cost: 1, Passable: true},
	Forest: {Terrain: Forest, Cost: 2, Passable: true},
	Hills:  {Terrain: Hills, Cost: 3, Passable: true},
	Swamp:  {Terrain: Swamp, Cost: 4, Passable: true},
	Water:  {Terrain: Water, Passable: false},
	Wall:   {Terrain: Wall, Passable: false},
}

// TileForTerrain returns the catalog tile for a terrain name.
func TileForTerrain(name TerrainType) (Tile, bool) {
	tile, ok := terrainCatalog[name]
	return tile, ok
}

// ValidateScenarioConfig validates a scenario for correctness and playability
func ValidateScenarioConfig(config *ScenarioConfig) error {
	if config == nil {
		return fmt.Errorf("scenario validation: config is nil")
	}
	if config.Name == "" {
		return fmt.Errorf("scenario validation: name is required")
	}
	if config.Description == "" {
		return fmt.Errorf("scenario validation: description is required")
	}

	// Validate grid dimensions
	if config.GridWidth < MinGridDimension || config.GridWidth > MaxGridDimension {
		return fmt.Errorf("scenario validation: grid_width must be between %d and %d, got %d", MinGridDimension, MaxGridDimension, config.GridWidth)
	}
	if config.GridHeight < MinGridDimension || config.GridHeight > MaxGridDimension {
		return fmt.Errorf("scenario validation: grid_height must be between %d and %d, got %d", MinGridDimension, MaxGridDimension, config.GridHeight)
	}

	// Validate layout
	if len(config.Layout) != config.GridHeight {
		return fmt.Errorf("scenario validation: layout must have %d rows to match grid_height, got %d",
			config.GridHeight, len(config.Layout))
	}
	for i, row := range config.Layout {
		if len(row) != config.GridWidth {
			return fmt.Errorf("scenario validation: row %d must have %d characters to match grid_width, got %d",
				i+1, config.GridWidth, len(row))
		}
		for j, char := range row {
			terrainName, ok := config.Legend[string(char)]
			if !ok {
				return fmt.Errorf("scenario validation: character '%c' at row %d, col %d is not in the legend", char, i+1, j+1)
			}
			if _, ok := terrainCatalog[TerrainType(terrainName)]; !ok {
				return fmt.Errorf("scenario validation: legend['%c'] names unknown terrain '%s'", char, terrainName)
			}
		}
	}

	// Validate legend entries themselves so unused-but-broken entries fail too
	for char, terrainName := range config.Legend {
		if len(char) != 1 {
			return fmt.Errorf("scenario validation: legend key '%s' must be a single character", char)
		}
		if _, ok := terrainCatalog[TerrainType(terrainName)]; !ok {
			return fmt.Errorf("scenario validation: legend['%s'] names unknown terrain '%s'", char, terrainName)
		}
	}

	// Validate the roster
	if len(config.Units) == 0 {
		return fmt.Errorf("scenario validation: at least one unit is required")
	}
	if len(config.Units) > MaxRosterSize {
		return fmt.Errorf("scenario validation: at most %d units are allowed, got %d", MaxRosterSize, len(config.Units))
	}
	seenIDs := make(map[string]bool, len(config.Units))
	seenTiles := make(map[Position]string, len(config.Units))
	for i, uc := range config.Units {
		if uc.ID == "" {
			return fmt.Errorf("scenario validation: unit %d has no id", i+1)
		}
		if seenIDs[uc.ID] {
			return fmt.Errorf("scenario validation: duplicate unit id '%s'", uc.ID)
		}
		seenIDs[uc.ID] = true
		if uc.Faction == "" {
			return fmt.Errorf("scenario validation: unit '%s' has no faction", uc.ID)
		}
		if uc.Movement < 0 || uc.Movement > MaxUnitMovement {
			return fmt.Errorf("scenario validation: unit '%s' movement must be between 0 and %d, got %d", uc.ID, MaxUnitMovement, uc.Movement)
		}
		if uc.X < 0 || uc.X >= config.GridWidth || uc.Y < 0 || uc.Y >= config.GridHeight {
			return fmt.Errorf("scenario validation: unit '%s' at (%d,%d) is outside the %dx%d grid",
				uc.ID, uc.X, uc.Y, config.GridWidth, config.GridHeight)
		}
		char := config.Layout[uc.Y][uc.X]
		tile := terrainCatalog[TerrainType(config.Legend[string(char)])]
		if !tile.Passable {
			return fmt.Errorf("scenario validation: unit '%s' starts on impassable %s at (%d,%d)",
				uc.ID, tile.Terrain, uc.X, uc.Y)
		}
		pos := Position{X: uc.X, Y: uc.Y}
		if other, taken := seenTiles[pos]; taken {
			return fmt.Errorf("scenario validation: units '%s' and '%s' both start at (%d,%d)", other, uc.ID, uc.X, uc.Y)
		}
		seenTiles[pos] = uc.ID
	}

	// Validate step duration
	if config.StepDurationMs < 0 || config.StepDurationMs > MaxStepDuration {
		return fmt.Errorf("scenario validation: step_duration_ms must be between 0 and %d, got %d", MaxStepDuration, config.StepDurationMs)
	}

	return nil
}

// BuildGrid constructs the immutable tile grid from a validated scenario.
func BuildGrid(config *ScenarioConfig) (*Grid, error) {
	if err := ValidateScenarioConfig(config); err != nil {
		return nil, err
	}
	tiles := make([]Tile, 0, config.GridWidth*config.GridHeight)
	for _, row := range config.Layout {
		for _, char := range row {
			tiles = append(tiles, terrainCatalog[TerrainType(config.Legend[string(char)])])
		}
	}
	return NewGrid(config.GridWidth, config.GridHeight, tiles)
}

// BuildRoster constructs the initial unit roster from a scenario. Every unit
// starts alive with its action available.
func BuildRoster(config *ScenarioConfig) []*Unit {
	units := make([]*Unit, 0, len(config.Units))
	for _, uc := range config.Units {
		name := uc.Name
		if name == "" {
			name = uc.ID
		}
		units = append(units, &Unit{
			ID:       uc.ID,
			Name:     name,
			Faction:  uc.Faction,
			Position: Position{X: uc.X, Y: uc.Y},
			Movement: uc.Movement,
			Alive:    true,
		})
	}
	return units
}

// FactionRotation returns the factions in order of first appearance in the
// roster. This is the turn order for the battle.
func FactionRotation(config *ScenarioConfig) []string {
	var rotation []string
	seen := make(map[string]bool)
	for _, uc := range config.Units {
		if !seen[uc.Faction] {
			seen[uc.Faction] = true
			rotation = append(rotation, uc.Faction)
		}
	}
	return rotation
}

// LoadScenarioConfig loads a scenario from a JSON file
func LoadScenarioConfig(filename string) (*ScenarioConfig, error) {
	// Support CONFIG_DIR environment variable for alternative config directory
	configPath := filename
	if configDir := os.Getenv("CONFIG_DIR"); configDir != "" {
		if strings.HasPrefix(filename, "configs/") {
			configPath = filepath.Join(configDir, strings.TrimPrefix(filename, "configs/"))
		}
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, err
	}

	var config ScenarioConfig
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, err
	}

	if err := ValidateScenarioConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

// LoadScenarioByName loads a scenario by name from the configs directory
func LoadScenarioByName(scenarioName string) (*ScenarioConfig, error) {
	if !strings.HasSuffix(scenarioName, ".json") {
		scenarioName = scenarioName + ".json"
	}

	configPath := filepath.Join("configs", scenarioName)
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("scenario file '%s' not found", scenarioName)
	}

	return LoadScenarioConfig(configPath)
}
