// Command validate provides a small CLI that validates battle scenario JSON
// files in the ../configs directory. It checks:
//   - JSON structure and required fields
//   - Grid dimensions, layout consistency, and legend coverage
//   - Terrain names against the engine's terrain catalog
//   - Unit rosters: unique IDs, passable in-bounds starting tiles, no two
//     units on one tile, at least two factions
//   - Connectivity: every mobile unit can reach at least one enemy unit via
//     passable tiles (ignoring movement budgets)
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/wricardo/grid-tactics-game/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// If Valid is true, Errors contains informational messages; otherwise it
// accumulates the validation errors that were found.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
}

// validateScenario loads and validates a single scenario JSON file. The
// engine's own validation covers structure and roster placement; this adds
// the faction balance and connectivity checks a playable battle needs.
func validateScenario(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Failed to read file: %v", err))
		return result
	}

	var scenario engine.ScenarioConfig
	if err := json.Unmarshal(data, &scenario); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Invalid JSON: %v", err))
		return result
	}

	if err := engine.ValidateScenarioConfig(&scenario); err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, err.Error())
		return result
	}

	// Faction balance: a battle needs at least two sides
	factions := engine.FactionRotation(&scenario)
	if len(factions) < 2 {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Need at least 2 factions, got %d", len(factions)))
	}

	// Connectivity validation
	if result.Valid {
		connectivity := validateConnectivity(&scenario)
		if !connectivity.Valid {
			result.Valid = false
		}
		result.Errors = append(result.Errors, connectivity.Errors...)
	}

	// Add informational data
	if result.Valid {
		grid, err := engine.BuildGrid(&scenario)
		if err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, fmt.Sprintf("Failed to build grid: %v", err))
			return result
		}

		result.Errors = append(result.Errors, fmt.Sprintf("✓ Name: %s", scenario.Name))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Grid: %dx%d (%d passable tiles)",
			scenario.GridWidth, scenario.GridHeight, engine.CountPassable(grid)))
		result.Errors = append(result.Errors, fmt.Sprintf("✓ Units: %d across factions %s",
			len(scenario.Units), strings.Join(factions, ", ")))
		for _, uc := range scenario.Units {
			note := ""
			if uc.Movement == 0 {
				note = " (immobile)"
			}
			result.Errors = append(result.Errors, fmt.Sprintf("✓ %s (%s) at (%d,%d) move=%d%s",
				uc.ID, uc.Faction, uc.X, uc.Y, uc.Movement, note))
		}
	}

	return result
}

// validateConnectivity ensures every mobile unit can reach at least one enemy
// unit via passable tiles, ignoring movement budgets and occupancy. A unit
// walled off from every opponent can never contribute to the battle.
func validateConnectivity(scenario *engine.ScenarioConfig) ValidationResult {
	result := ValidationResult{
		Valid:  true,
		Errors: []string{},
	}

	grid, err := engine.BuildGrid(scenario)
	if err != nil {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf("Cannot validate connectivity: %v", err))
		return result
	}

	// Flood fill from each unit over passable tiles
	reachableFrom := func(start engine.Position) map[engine.Position]bool {
		visited := map[engine.Position]bool{start: true}
		queue := []engine.Position{start}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]

			for _, d := range []engine.Position{{X: 0, Y: -1}, {X: 1, Y: 0}, {X: 0, Y: 1}, {X: -1, Y: 0}} {
				next := engine.Position{X: current.X + d.X, Y: current.Y + d.Y}
				if !visited[next] && grid.IsPassable(next) {
					visited[next] = true
					queue = append(queue, next)
				}
			}
		}
		return visited
	}

	isolated := 0
	for _, uc := range scenario.Units {
		if uc.Movement == 0 {
			continue // sentries hold their tile on purpose
		}
		reachable := reachableFrom(engine.Position{X: uc.X, Y: uc.Y})

		foundEnemy := false
		for _, other := range scenario.Units {
			if other.Faction == uc.Faction {
				continue
			}
			if reachable[engine.Position{X: other.X, Y: other.Y}] {
				foundEnemy = true
				break
			}
		}

		if !foundEnemy {
			isolated++
			result.Valid = false
			result.Errors = append(result.Errors,
				fmt.Sprintf("Connectivity failure: unit '%s' at (%d,%d) cannot reach any enemy", uc.ID, uc.X, uc.Y))
		}
	}

	if isolated == 0 {
		result.Errors = append(result.Errors, "✓ Connectivity: every mobile unit can reach an enemy")
	}

	return result
}

// main scans ../configs for *.json files and validates each one, printing a
// concise report and exiting with non-zero status if any are invalid.
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding scenario files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No scenario files found in %s\n", configDir)
		os.Exit(1)
	}

	allValid := true
	for _, file := range files {
		result := validateScenario(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println("✅ VALID")
			for _, info := range result.Errors {
				fmt.Println("  " + info)
			}
		} else {
			fmt.Println("❌ INVALID")
			allValid = false
			for _, err := range result.Errors {
				if !strings.HasPrefix(err, "✓") {
					fmt.Println("  ❌ " + err)
				}
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println("✅ All scenarios are valid!")
	} else {
		fmt.Println("❌ Some scenarios have errors")
		os.Exit(1)
	}
}
