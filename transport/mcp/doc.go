// Package mcp provides the Model Context Protocol server for the Grid
// Tactics Game.
//
// The package is a thin proxy: every tool call is translated into a REST API
// request against the game server, so MCP agents and HTTP clients always see
// identical behavior. It implements:
//   - MCP server and tool definitions for battle operations
//   - ASCII map rendering of battle state for text-based agents
//   - Structured movement-error reporting, including the reachable
//     alternatives suggested for unreachable destinations
//
// MCP Tools:
//
// The package exposes the following tools for AI agents:
//   - create_battle / list_battles / battle_state: battle lifecycle
//   - list_scenarios: available scenario configurations
//   - select_unit / deselect: selection and movement-range display
//   - preview_path / movement_range: non-committal queries
//   - execute_move / cancel_move: animated movement and interruption
//   - end_turn / reset_battle: turn flow
//   - movement_log / describe_tile: history and tile inspection
//   - battle_instructions: full rules reference
//
// Transport Modes:
//
// The server supports two transport modes:
//   - Stdio: direct stdio communication for local MCP clients
//   - HTTP: the /mcp endpoint on the game server for remote integration
//
// Usage:
//
//	client := mcp.NewClient("http://localhost:8080")
//	server.ServeStdio(client.GetMCPServer())
//
// Because execute_move blocks while the unit walks its path, the underlying
// HTTP client uses a generous timeout sized for worst-case animated paths.
package mcp
