// Package config provides scenario management for the grid tactics game.
//
// The config package handles:
//   - Loading battle scenarios from JSON files
//   - Scenario validation and verification
//   - Default scenario management
//   - Scenario discovery and listing
//
// Scenario Format:
//
// Scenarios are stored as JSON files in the configs directory. Each scenario
// defines:
//   - Grid layout using character mapping (.=plains, F=forest, W=water, etc.)
//   - A legend mapping layout characters to terrain types
//   - The unit roster with factions, starting tiles and movement budgets
//   - Presentation pacing (per-step animation duration)
//
// Available Scenarios:
//
// The package ships with several scenarios exercising different terrain:
//   - skirmish: open 5x5 field, the default
//   - crossing: a river fordable at two bridges
//   - ambush: forest and hills favoring the defender
//
// Usage:
//
//	manager, err := config.NewManager("configs")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Load specific scenario
//	scenario, err := manager.LoadScenario("crossing")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Get default scenario
//	defaultScenario := manager.GetDefault()
//
//	// List available scenarios
//	infos, err := manager.ListScenarios()
//
// Validation:
//
// All scenarios are validated for:
//   - Proper grid dimensions and layout shape
//   - Legend coverage of every layout character
//   - Known terrain types
//   - Unit placement on passable, unshared tiles
//   - Movement budget and step duration bounds
package config
