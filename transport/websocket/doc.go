// Package websocket provides the event-stream transport for the grid tactics
// game.
//
// The websocket package implements:
//   - Real-time engine event delivery (selection, steps, turns)
//   - Battle-aware WebSocket connections
//   - Connection lifecycle management
//   - Slow-client isolation
//
// Architecture:
//
// The package uses a hub-and-spoke model where a central Hub manages all
// WebSocket connections, grouped into one room per battle. The Run loop owns
// all room state; handlers and the game service talk to it exclusively
// through channels, so no locking is needed.
//
// Message Protocol:
//
// Outgoing messages are JSON-encoded engine events tagged with their battle:
//
//	{"battle_id": "ab12", "event": {"type": "movement_step", "unit_id": "scout", ...}}
//
// Incoming messages are ignored; the REST API is the command surface. A
// client subscribes by opening /ws?battle=ab12 and drives the battle over
// HTTP, watching the event stream for animation timing.
//
// Backpressure:
//
// The hub implements service.EventSink, which must never block: events are
// emitted from inside movement execution. The broadcast queue is buffered
// and drops events when full, and a client that stops draining its own send
// buffer is disconnected. Clients recover by refetching battle state over
// REST.
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run()
//
//	svc := service.NewBattleService(sessions, scenarios, hub)
package websocket
