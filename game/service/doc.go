// Package service provides the business logic layer for the grid tactics game.
//
// The service package implements:
//   - Multi-battle session management
//   - Scenario loading and listing
//   - Movement operation orchestration
//   - Movement log retrieval with pagination
//   - Event fan-out to transport listeners
//
// Core Interfaces:
//
// BattleService is the main service interface providing high-level battle
// operations. SessionManager handles battle session creation, retrieval, and
// lifecycle. ScenarioManager manages scenario loading and validation.
// EventSink receives per-battle engine events for broadcast.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the battle engine, providing session isolation, scenario management, and
// business logic orchestration. Each battle maintains its own engine instance
// with independent state, so a movement executing in one battle never blocks
// another.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	scenarioMgr := config.NewManager("configs")
//	battleService := service.NewBattleService(sessionMgr, scenarioMgr, hub)
//
//	// Create a new battle
//	info, err := battleService.CreateBattle(ctx, "skirmish")
//	if err != nil {
//		log.Fatal().Err(err).Msg("create battle")
//	}
//
//	// Select a unit and move it
//	sel, err := battleService.SelectUnit(ctx, info.ID, "scout")
//	res, err := battleService.ExecuteMove(ctx, info.ID, "scout", engine.Position{X: 2, Y: 4})
//
// Error Handling:
//
// Recoverable movement failures are returned as *engine.MovementError values;
// transports map their kinds onto protocol status codes. Everything else
// (unknown battles, scenario loading problems) is a plain error.
package service
