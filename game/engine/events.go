package engine

import "time"

// EventType identifies a battle notification.
type EventType string

const (
	EventSelectionChanged  EventType = "selection_changed"
	EventStateChanged      EventType = "state_changed"
	EventMovementStep      EventType = "movement_step"
	EventMovementCompleted EventType = "movement_completed"
	EventMovementError     EventType = "movement_error"
	EventTurnEnded         EventType = "turn_ended"
	EventBattleReset       EventType = "battle_reset"
)

// Event is a presentation notification emitted by the coordinator and the
// battle. Fields are populated per type; consumers must ignore fields they do
// not understand.
type Event struct {
	Type       EventType      `json:"type"`
	UnitID     string         `json:"unit_id,omitempty"`
	Mode       Mode           `json:"mode,omitempty"`
	Position   *Position      `json:"position,omitempty"`
	Step       int            `json:"step,omitempty"`
	TotalSteps int            `json:"total_steps,omitempty"`
	Range      []RangeTile    `json:"range,omitempty"`
	Path       []Position     `json:"path,omitempty"`
	Result     *MoveResult    `json:"result,omitempty"`
	Turn       *TurnSummary   `json:"turn,omitempty"`
	Err        *MovementError `json:"error,omitempty"`
	Timestamp  int64          `json:"timestamp"`
}

// Notifier receives battle events. Emission is fire-and-forget: the engine
// never waits on a listener, so implementations must be non-blocking (buffer
// or drop, never stall).
type Notifier interface {
	Notify(Event)
}

// NotifierFunc adapts a function to the Notifier interface.
type NotifierFunc func(Event)

// Notify calls f(ev).
func (f NotifierFunc) Notify(ev Event) { f(ev) }

// NopNotifier discards all events. It is the default when no listener is
// attached.
type NopNotifier struct{}

// Notify discards ev.
func (NopNotifier) Notify(Event) {}

// stamp fills the event timestamp just before emission.
func stamp(ev Event) Event {
	ev.Timestamp = time.Now().UnixMilli()
	return ev
}
