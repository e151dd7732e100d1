package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/wricardo/grid-tactics-game/game/engine"
	"github.com/wricardo/grid-tactics-game/game/service"
)

var (
	ErrScenarioNotFound = errors.New("scenario not found")
	ErrInvalidScenario  = errors.New("invalid scenario")
)

// Manager handles scenario loading and caching
type Manager struct {
	scenarioDir     string
	defaultScenario *engine.ScenarioConfig
	scenarios       map[string]*engine.ScenarioConfig
	mu              sync.RWMutex
}

// NewManager creates a new scenario manager
func NewManager(scenarioDir string) (*Manager, error) {
	if _, err := os.Stat(scenarioDir); os.IsNotExist(err) {
		return nil, fmt.Errorf("scenario directory does not exist: %s", scenarioDir)
	}

	m := &Manager{
		scenarioDir: scenarioDir,
		scenarios:   make(map[string]*engine.ScenarioConfig),
	}

	if err := m.loadDefaultScenario(); err != nil {
		return nil, fmt.Errorf("failed to load default scenario: %w", err)
	}

	return m, nil
}

// LoadScenario loads a scenario by ID (filename without extension)
func (m *Manager) LoadScenario(name string) (*engine.ScenarioConfig, error) {
	m.mu.RLock()
	if scenario, exists := m.scenarios[name]; exists {
		m.mu.RUnlock()
		return scenario, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if scenario, exists := m.scenarios[name]; exists {
		return scenario, nil
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := os.ReadFile(filepath.Join(m.scenarioDir, filename))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrScenarioNotFound
		}
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}

	var scenario engine.ScenarioConfig
	if err := json.Unmarshal(data, &scenario); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}

	if err := engine.ValidateScenarioConfig(&scenario); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	m.scenarios[name] = &scenario
	return &scenario, nil
}

// ListScenarios returns information about all available scenarios
func (m *Manager) ListScenarios() ([]*service.ScenarioInfo, error) {
	entries, err := os.ReadDir(m.scenarioDir)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario directory: %w", err)
	}

	var infos []*service.ScenarioInfo

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}

		name := strings.TrimSuffix(entry.Name(), ".json")

		scenario, err := m.LoadScenario(name)
		if err != nil {
			// Skip invalid scenarios
			continue
		}

		infos = append(infos, &service.ScenarioInfo{
			Filename:    entry.Name(),
			ScenarioID:  name, // the identifier to use for battle creation
			Name:        scenario.Name,
			Description: scenario.Description,
			GridWidth:   scenario.GridWidth,
			GridHeight:  scenario.GridHeight,
			Units:       len(scenario.Units),
			Factions:    engine.FactionRotation(scenario),
		})
	}

	return infos, nil
}

// GetDefault returns the default scenario
func (m *Manager) GetDefault() *engine.ScenarioConfig {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultScenario
}

// SetDefault sets the default scenario by ID
func (m *Manager) SetDefault(name string) error {
	scenario, err := m.LoadScenario(name)
	if err != nil {
		return err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultScenario = scenario
	return nil
}

// RefreshCache drops all cached scenarios and reloads the default
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.scenarios = make(map[string]*engine.ScenarioConfig)
	m.mu.Unlock()

	return m.loadDefaultScenario()
}

// SaveScenario validates and writes a scenario to disk
func (m *Manager) SaveScenario(name string, scenario *engine.ScenarioConfig) error {
	if err := engine.ValidateScenarioConfig(scenario); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidScenario, err)
	}

	filename := name
	if !strings.HasSuffix(filename, ".json") {
		filename = name + ".json"
	}

	data, err := json.MarshalIndent(scenario, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal scenario: %w", err)
	}

	if err := os.WriteFile(filepath.Join(m.scenarioDir, filename), data, 0644); err != nil {
		return fmt.Errorf("failed to write scenario file: %w", err)
	}

	m.mu.Lock()
	m.scenarios[name] = scenario
	m.mu.Unlock()

	return nil
}

// loadDefaultScenario loads the default scenario: skirmish.json when present,
// otherwise the first loadable scenario, otherwise a built-in minimal one.
// Callers must not hold m.mu.
func (m *Manager) loadDefaultScenario() error {
	scenario, err := m.LoadScenario("skirmish")
	if err != nil {
		infos, listErr := m.ListScenarios()
		if listErr == nil && len(infos) > 0 {
			scenario, err = m.LoadScenario(infos[0].ScenarioID)
		}
		if scenario == nil || err != nil {
			scenario = createMinimalScenario()
		}
	}

	m.mu.Lock()
	m.defaultScenario = scenario
	m.mu.Unlock()
	return nil
}

// createMinimalScenario builds the fallback scenario used when the scenario
// directory holds nothing loadable.
func createMinimalScenario() *engine.ScenarioConfig {
	return &engine.ScenarioConfig{
		Name:        "default",
		Description: "Default minimal scenario",
		GridWidth:   5,
		GridHeight:  5,
		Layout: []string{
			".....",
			".....",
			"..F..",
			".....",
			".....",
		},
		Legend: map[string]string{".": "plains", "F": "forest"},
		Units: []engine.UnitConfig{
			{ID: "scout", Name: "Scout", Faction: "alliance", X: 0, Y: 2, Movement: 4},
			{ID: "raider", Name: "Raider", Faction: "horde", X: 4, Y: 2, Movement: 3},
		},
	}
}
