// Command analyze prints quick, human-readable heuristics about scenario
// files in the project's configs directory. It summarizes terrain
// distribution, then computes each unit's opening movement range with the
// real range calculator and flags units that start cramped or trapped.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/wricardo/grid-tactics-game/game/engine"
)

func main() {
	configDir := "configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No scenario files found in %s\n", configDir)
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analyzeScenario(file)
	}
}

func analyzeScenario(path string) {
	scenario, err := engine.LoadScenarioConfig(path)
	if err != nil {
		fmt.Printf("Error loading scenario: %v\n", err)
		return
	}

	grid, err := engine.BuildGrid(scenario)
	if err != nil {
		fmt.Printf("Error building grid: %v\n", err)
		return
	}

	fmt.Printf("Name: %s\n", scenario.Name)
	fmt.Printf("Grid: %d x %d\n", scenario.GridWidth, scenario.GridHeight)

	// Terrain distribution
	total := grid.Size()
	passable := engine.CountPassable(grid)
	fmt.Printf("Passable: %d/%d tiles (%.0f%%)\n", passable, total, 100*float64(passable)/float64(total))
	for _, terrain := range []engine.TerrainType{
		engine.Plains, engine.Road, engine.Forest, engine.Hills,
		engine.Swamp, engine.Water, engine.Wall,
	} {
		if count := engine.CountTerrain(grid, terrain); count > 0 {
			fmt.Printf("  %-7s %3d\n", terrain, count)
		}
	}

	// Per-unit opening mobility, computed against the full starting roster
	// so each unit sees the others as obstacles.
	roster := engine.BuildRoster(scenario)
	fmt.Printf("Units: %d\n", len(roster))

	warnings := 0
	for _, u := range roster {
		occupied := engine.BuildOccupancy(roster, u.ID)
		rng := engine.ComputeRange(grid, u.Position, u.Movement, occupied)

		note := engine.MobilityNote(u, rng.Len())
		fmt.Printf("  %s (%s) at (%d,%d) move=%d: %d reachable tiles — %s\n",
			u.ID, u.Faction, u.Position.X, u.Position.Y, u.Movement, rng.Len(), note)
		if note != "OK" {
			warnings++
		}

		// Distance to the closest enemy as a rough engagement estimate
		closest := -1
		closestID := ""
		for _, other := range roster {
			if other.Faction == u.Faction {
				continue
			}
			if d := engine.ManhattanDistance(u.Position, other.Position); closest < 0 || d < closest {
				closest = d
				closestID = other.ID
			}
		}
		if closest >= 0 {
			turns := "several turns"
			switch {
			case u.Movement == 0:
				turns = "never on its own"
			case closest <= u.Movement:
				turns = "within one move"
			case closest <= 2*u.Movement:
				turns = "within two moves"
			}
			fmt.Printf("    nearest enemy: %s at distance %d (%s)\n", closestID, closest, turns)
		}
	}

	if warnings > 0 {
		fmt.Printf("⚠️  %d unit(s) open the battle cramped, trapped or immobile\n", warnings)
	} else {
		fmt.Printf("✅ All units open the battle with full mobility\n")
	}
}
