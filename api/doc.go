// Package api provides the HTTP REST API for the grid tactics game.
//
// The api package implements:
//   - RESTful endpoints for battle operations
//   - Battle lifecycle management endpoints
//   - Scenario listing, inspection and creation
//   - WebSocket upgrade handling for the event stream
//
// Endpoints:
//
// Battle Management:
//   - POST /api/battles - Create a battle ({"scenario_id": "skirmish"})
//   - GET /api/battles - List battles (sort, order, limit query params)
//   - GET /api/battles/{id} - Get battle info
//   - DELETE /api/battles/{id} - Delete a battle
//
// Battle Operations:
//   - GET /api/battles/{id}/state - Full battle state
//   - POST /api/battles/{id}/select - Select a unit ({"unit_id": "scout"})
//   - POST /api/battles/{id}/deselect - Clear the selection
//   - POST /api/battles/{id}/preview - Preview a path ({"x": 2, "y": 3})
//   - POST /api/battles/{id}/move - Execute a move ({"unit_id": "scout", "x": 2, "y": 3})
//   - POST /api/battles/{id}/cancel - Interrupt the executing move
//   - POST /api/battles/{id}/end-turn - Hand the turn to the next faction
//   - POST /api/battles/{id}/reset - Restore the scenario's starting state
//   - GET /api/battles/{id}/units/{unitId}/range - Reachable tiles for a unit
//   - GET /api/battles/{id}/log - Movement log with pagination
//   - GET /api/battles/{id}/tiles/{x}/{y} - Terrain and occupancy of one tile
//   - GET /api/battles/{id}/debug - Interaction state snapshot
//
// Scenarios:
//   - GET /api/scenarios - List available scenarios
//   - GET /api/scenarios/{name} - Get a scenario definition
//   - POST /api/scenarios - Validate and save a scenario
//
// Event Stream:
//   - GET /ws?battle={id} - WebSocket event stream for one battle
//
// Blocking Semantics:
//
// POST /move blocks until the movement animation finishes or is canceled.
// Step-by-step progress is published on the WebSocket stream while the
// request is in flight. Closing the request connection cancels the walk at
// the last completed step.
//
// Error Handling:
//
// Generic errors are returned as {"error": "message"} with an appropriate
// status code. Movement rule violations keep their structured form:
//
//	{
//	  "kind": "destination_occupied",
//	  "message": "tile (2,3) is occupied by grunt",
//	  "unit_id": "scout",
//	  "suggestions": [{"x": 2, "y": 2}]
//	}
//
// Kinds map to statuses: invalid_position is 400, invalid_selection is 404,
// and rule violations (already_moved, insufficient_movement,
// movement_in_progress, destination_occupied, destination_unreachable,
// invalid_action) are 409.
package api
