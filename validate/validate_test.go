package main

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/wricardo/grid-tactics-game/game/engine"
)

func validScenario() *engine.ScenarioConfig {
	return &engine.ScenarioConfig{
		Name:        "Test Skirmish",
		Description: "Validator test scenario",
		GridWidth:   5,
		GridHeight:  5,
		Layout: []string{
			".....",
			".WW..",
			"..F..",
			"..F..",
			".....",
		},
		Legend: map[string]string{".": "plains", "W": "water", "F": "forest"},
		Units: []engine.UnitConfig{
			{ID: "scout", Faction: "alliance", X: 0, Y: 0, Movement: 3},
			{ID: "raider", Faction: "horde", X: 4, Y: 4, Movement: 3},
		},
	}
}

func writeScenario(t *testing.T, scenario *engine.ScenarioConfig) string {
	t.Helper()
	data, err := json.MarshalIndent(scenario, "", "  ")
	if err != nil {
		t.Fatalf("Failed to marshal scenario: %v", err)
	}

	path := filepath.Join(t.TempDir(), "scenario.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("Failed to write scenario: %v", err)
	}
	return path
}

func hasError(result ValidationResult, substr string) bool {
	for _, msg := range result.Errors {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}

func TestValidateScenario_Valid(t *testing.T) {
	result := validateScenario(writeScenario(t, validScenario()))
	if !result.Valid {
		t.Errorf("Expected valid scenario, but got errors: %v", result.Errors)
	}
	if !hasError(result, "✓ Connectivity") {
		t.Errorf("Expected connectivity info line, got: %v", result.Errors)
	}
	if !hasError(result, "✓ Units: 2") {
		t.Errorf("Expected unit count info line, got: %v", result.Errors)
	}
}

func TestValidateScenario_MissingFile(t *testing.T) {
	result := validateScenario(filepath.Join(t.TempDir(), "nope.json"))
	if result.Valid {
		t.Error("Expected invalid result for missing file")
	}
	if !hasError(result, "Failed to read file") {
		t.Errorf("Expected read error, got: %v", result.Errors)
	}
}

func TestValidateScenario_InvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("Failed to write file: %v", err)
	}

	result := validateScenario(path)
	if result.Valid {
		t.Error("Expected invalid result for broken JSON")
	}
	if !hasError(result, "Invalid JSON") {
		t.Errorf("Expected JSON error, got: %v", result.Errors)
	}
}

func TestValidateScenario_EngineValidation(t *testing.T) {
	scenario := validScenario()
	scenario.Units[0].X = 1
	scenario.Units[0].Y = 1 // water tile

	result := validateScenario(writeScenario(t, scenario))
	if result.Valid {
		t.Error("Expected invalid result for unit on impassable tile")
	}
	if !hasError(result, "impassable") {
		t.Errorf("Expected impassable placement error, got: %v", result.Errors)
	}
}

func TestValidateScenario_SingleFaction(t *testing.T) {
	scenario := validScenario()
	scenario.Units[1].Faction = "alliance"

	result := validateScenario(writeScenario(t, scenario))
	if result.Valid {
		t.Error("Expected invalid result for single-faction scenario")
	}
	if !hasError(result, "at least 2 factions") {
		t.Errorf("Expected faction count error, got: %v", result.Errors)
	}
}

func TestValidateConnectivity_WalledOffUnit(t *testing.T) {
	scenario := &engine.ScenarioConfig{
		Name:        "Walled",
		Description: "Connectivity test",
		GridWidth:   5,
		GridHeight:  3,
		Layout: []string{
			"..#..",
			"..#..",
			"..#..",
		},
		Legend: map[string]string{".": "plains", "#": "wall"},
		Units: []engine.UnitConfig{
			{ID: "left", Faction: "alliance", X: 0, Y: 1, Movement: 3},
			{ID: "right", Faction: "horde", X: 4, Y: 1, Movement: 3},
		},
	}

	result := validateConnectivity(scenario)
	if result.Valid {
		t.Error("Expected connectivity failure for wall-divided map")
	}
	if !hasError(result, "cannot reach any enemy") {
		t.Errorf("Expected isolation errors, got: %v", result.Errors)
	}
}

func TestValidateConnectivity_ImmobileUnitSkipped(t *testing.T) {
	scenario := &engine.ScenarioConfig{
		Name:        "Sentry",
		Description: "Connectivity test",
		GridWidth:   5,
		GridHeight:  3,
		Layout: []string{
			".#...",
			"##...",
			".....",
		},
		Legend: map[string]string{".": "plains", "#": "wall"},
		Units: []engine.UnitConfig{
			// The sentry is fully walled in but has movement 0, so it does
			// not count as an isolation failure.
			{ID: "sentry", Faction: "alliance", X: 0, Y: 0, Movement: 0},
			{ID: "scout", Faction: "alliance", X: 0, Y: 2, Movement: 3},
			{ID: "raider", Faction: "horde", X: 4, Y: 2, Movement: 3},
		},
	}

	result := validateConnectivity(scenario)
	if !result.Valid {
		t.Errorf("Expected valid connectivity, got: %v", result.Errors)
	}
}

func TestValidateShippedScenarios(t *testing.T) {
	files, err := filepath.Glob("../configs/*.json")
	if err != nil {
		t.Fatalf("Failed to glob configs: %v", err)
	}
	if len(files) == 0 {
		t.Skip("no shipped scenarios found")
	}

	for _, file := range files {
		result := validateScenario(file)
		if !result.Valid {
			t.Errorf("Shipped scenario %s is invalid: %v", result.File, result.Errors)
		}
	}
}
