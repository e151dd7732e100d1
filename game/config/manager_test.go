package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/wricardo/grid-tactics-game/game/engine"
)

func createValidScenario() *engine.ScenarioConfig {
	return &engine.ScenarioConfig{
		Name:        "Test Skirmish",
		Description: "Config test scenario",
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
		StepDurationMs: 50,
	}
}

func writeScenarioFile(t *testing.T, dir, name string, scenario *engine.ScenarioConfig) {
	t.Helper()
	data, err := json.MarshalIndent(scenario, "", "  ")
	require.NoError(t, err)

	filename := name
	if filepath.Ext(filename) == "" {
		filename = name + ".json"
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, filename), data, 0644))
}

func TestNewManager(t *testing.T) {
	t.Run("valid directory", func(t *testing.T) {
		dir := t.TempDir()
		writeScenarioFile(t, dir, "skirmish", createValidScenario())

		manager, err := NewManager(dir)
		require.NoError(t, err)
		require.Equal(t, "Test Skirmish", manager.GetDefault().Name, "skirmish.json becomes the default")
	})

	t.Run("non-existent directory", func(t *testing.T) {
		_, err := NewManager("/non/existent/path")
		require.Error(t, err)
	})

	t.Run("empty directory falls back to the minimal scenario", func(t *testing.T) {
		manager, err := NewManager(t.TempDir())
		require.NoError(t, err)

		def := manager.GetDefault()
		require.NotNil(t, def)
		require.Equal(t, "default", def.Name)
		require.NoError(t, engine.ValidateScenarioConfig(def), "the fallback must be playable")
	})

	t.Run("no skirmish uses the first loadable scenario", func(t *testing.T) {
		dir := t.TempDir()
		crossing := createValidScenario()
		crossing.Name = "River Crossing"
		writeScenarioFile(t, dir, "crossing", crossing)

		manager, err := NewManager(dir)
		require.NoError(t, err)
		require.Equal(t, "River Crossing", manager.GetDefault().Name)
	})
}

func TestManagerLoadScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "skirmish", createValidScenario())

	ambush := createValidScenario()
	ambush.Name = "Forest Ambush"
	writeScenarioFile(t, dir, "ambush", ambush)

	manager, err := NewManager(dir)
	require.NoError(t, err)

	t.Run("load by ID", func(t *testing.T) {
		scenario, err := manager.LoadScenario("ambush")
		require.NoError(t, err)
		require.Equal(t, "Forest Ambush", scenario.Name)
	})

	t.Run("load with .json suffix", func(t *testing.T) {
		scenario, err := manager.LoadScenario("ambush.json")
		require.NoError(t, err)
		require.Equal(t, "Forest Ambush", scenario.Name)
	})

	t.Run("loads are cached", func(t *testing.T) {
		first, err := manager.LoadScenario("ambush")
		require.NoError(t, err)
		second, err := manager.LoadScenario("ambush")
		require.NoError(t, err)
		require.Same(t, first, second)
	})

	t.Run("not found", func(t *testing.T) {
		_, err := manager.LoadScenario("volcano")
		require.ErrorIs(t, err, ErrScenarioNotFound)
	})

	t.Run("malformed JSON", func(t *testing.T) {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644))
		_, err := manager.LoadScenario("broken")
		require.Error(t, err)
		require.Contains(t, err.Error(), "failed to parse scenario")
	})

	t.Run("invalid scenario", func(t *testing.T) {
		bad := createValidScenario()
		bad.Units = nil
		writeScenarioFile(t, dir, "empty", bad)

		_, err := manager.LoadScenario("empty")
		require.ErrorIs(t, err, ErrInvalidScenario)
	})
}

func TestManagerListScenarios(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "skirmish", createValidScenario())

	crossing := createValidScenario()
	crossing.Name = "River Crossing"
	crossing.Description = "Hold the bridges"
	writeScenarioFile(t, dir, "crossing", crossing)

	// Invalid and non-scenario files are skipped, not errors
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("todo"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad.json"), []byte("{}"), 0644))

	manager, err := NewManager(dir)
	require.NoError(t, err)

	infos, err := manager.ListScenarios()
	require.NoError(t, err)
	require.Len(t, infos, 2)

	byID := make(map[string]bool)
	for _, info := range infos {
		byID[info.ScenarioID] = true
	}
	require.True(t, byID["skirmish"])
	require.True(t, byID["crossing"])

	for _, info := range infos {
		if info.ScenarioID != "crossing" {
			continue
		}
		require.Equal(t, "crossing.json", info.Filename)
		require.Equal(t, "River Crossing", info.Name)
		require.Equal(t, "Hold the bridges", info.Description)
		require.Equal(t, 5, info.GridWidth)
		require.Equal(t, 5, info.GridHeight)
		require.Equal(t, 2, info.Units)
		require.Equal(t, []string{"alliance", "horde"}, info.Factions)
	}
}

func TestManagerSetDefault(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "skirmish", createValidScenario())

	ambush := createValidScenario()
	ambush.Name = "Forest Ambush"
	writeScenarioFile(t, dir, "ambush", ambush)

	manager, err := NewManager(dir)
	require.NoError(t, err)
	require.Equal(t, "Test Skirmish", manager.GetDefault().Name)

	require.NoError(t, manager.SetDefault("ambush"))
	require.Equal(t, "Forest Ambush", manager.GetDefault().Name)

	require.ErrorIs(t, manager.SetDefault("volcano"), ErrScenarioNotFound)
}

func TestManagerSaveScenario(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "skirmish", createValidScenario())

	manager, err := NewManager(dir)
	require.NoError(t, err)

	t.Run("save and reload", func(t *testing.T) {
		custom := createValidScenario()
		custom.Name = "Custom Battle"
		require.NoError(t, manager.SaveScenario("custom", custom))

		_, statErr := os.Stat(filepath.Join(dir, "custom.json"))
		require.NoError(t, statErr)

		loaded, err := manager.LoadScenario("custom")
		require.NoError(t, err)
		require.Equal(t, "Custom Battle", loaded.Name)
	})

	t.Run("invalid scenarios are rejected before writing", func(t *testing.T) {
		bad := createValidScenario()
		bad.GridWidth = 0
		require.ErrorIs(t, manager.SaveScenario("bad", bad), ErrInvalidScenario)

		_, statErr := os.Stat(filepath.Join(dir, "bad.json"))
		require.True(t, os.IsNotExist(statErr))
	})
}

func TestManagerRefreshCache(t *testing.T) {
	dir := t.TempDir()
	writeScenarioFile(t, dir, "skirmish", createValidScenario())

	manager, err := NewManager(dir)
	require.NoError(t, err)

	cached, err := manager.LoadScenario("skirmish")
	require.NoError(t, err)
	require.Equal(t, "Test Skirmish", cached.Name)

	// Rewrite the file behind the manager's back
	renamed := createValidScenario()
	renamed.Name = "Renamed Skirmish"
	writeScenarioFile(t, dir, "skirmish", renamed)

	stale, err := manager.LoadScenario("skirmish")
	require.NoError(t, err)
	require.Equal(t, "Test Skirmish", stale.Name, "cache serves the old copy until refreshed")

	require.NoError(t, manager.RefreshCache())

	fresh, err := manager.LoadScenario("skirmish")
	require.NoError(t, err)
	require.Equal(t, "Renamed Skirmish", fresh.Name)
}
