// Package engine provides the core battle logic for the Grid Tactics Game.
//
// The engine package implements the tactical movement subsystem:
//   - Grid model with per-tile movement costs and passability
//   - Movement range calculation (cost-weighted reachability)
//   - Deterministic minimum-cost path finding
//   - The selection/movement state machine (Coordinator)
//   - Step-by-step, cancelable movement execution
//   - Typed movement errors with recovery suggestions
//   - Scenario loading and validation
//
// Core Types:
//
// The Engine interface defines the main contract for battle operations,
// implemented by Battle. Grid holds the immutable tactical map, Unit the
// battlefield units, and ScenarioConfig the battle setup loaded from JSON
// files. The Coordinator owns the interaction state machine; the Executor
// walks units along computed paths one tile at a time.
//
// Usage:
//
//	scenario, err := engine.LoadScenarioByName("skirmish")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	battle, err := engine.NewBattle(scenario)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	// Select a unit and move it
//	sel, merr := battle.SelectUnit("A1")
//	result, merr := battle.ExecuteMove(ctx, "A1", engine.Position{X: 3, Y: 2})
//
// Movement Rules:
//
// Each unit has a movement budget: the maximum cumulative tile cost it may
// spend in one move. Range and paths are computed with a cost-relaxation
// search over the four orthogonal neighbors; tiles occupied by other living
// units are obstacles. Exactly one movement may be in flight per battle, and
// an in-flight movement can be canceled at any step boundary. A unit that has
// moved cannot move again until its faction's next turn.
//
// Concurrency:
//
// Battle and Coordinator are safe for concurrent use. ExecuteMove is the only
// blocking operation; it holds no locks while the Executor advances, so state
// queries and CancelMove remain responsive during a movement.
package engine
