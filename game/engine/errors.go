package engine

import "fmt"

// Kind classifies a movement failure. Every kind is an expected, recoverable
// condition: it is returned to the caller as a typed value and always leaves
// the battle in a consistent state.
type Kind string

const (
	// KindInvalidSelection covers unknown, dead or otherwise unselectable units.
	KindInvalidSelection Kind = "invalid_selection"
	// KindAlreadyMoved marks units that already spent their move this turn.
	KindAlreadyMoved Kind = "already_moved"
	// KindInsufficientMovement marks immobile units (movement budget 0).
	KindInsufficientMovement Kind = "insufficient_movement"
	// KindMovementInProgress marks any request that violates movement exclusivity.
	KindMovementInProgress Kind = "movement_in_progress"
	// KindInvalidPosition marks out-of-bounds destinations or a missing grid.
	KindInvalidPosition Kind = "invalid_position"
	// KindDestinationOccupied marks destinations held by another living unit.
	KindDestinationOccupied Kind = "destination_occupied"
	// KindDestinationUnreachable marks destinations outside the unit's range.
	KindDestinationUnreachable Kind = "destination_unreachable"
	// KindPathBlocked marks a range/path disagreement; it indicates a defect,
	// not a valid game state, and is logged as such where it is raised.
	KindPathBlocked Kind = "path_blocked"
	// KindInvalidAction marks requests the turn authority refused (wrong
	// faction's turn) or requests that make no sense in the current mode.
	KindInvalidAction Kind = "invalid_action"
)

// MovementError is a typed, recoverable movement failure. It carries the
// offending unit and position when applicable, and for unreachable
// destinations a short list of nearby reachable alternatives.
type MovementError struct {
	Kind        Kind       `json:"kind"`
	Message     string     `json:"message"`
	UnitID      string     `json:"unit_id,omitempty"`
	Position    *Position  `json:"position,omitempty"`
	Suggestions []Position `json:"suggestions,omitempty"`
}

func (e *MovementError) Error() string {
	if e.UnitID != "" {
		return fmt.Sprintf("%s: %s (unit %s)", e.Kind, e.Message, e.UnitID)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Is supports errors.Is matching on the kind via sentinel values.
func (e *MovementError) Is(target error) bool {
	t, ok := target.(*MovementError)
	return ok && t.Kind == e.Kind
}

func newMovementError(kind Kind, unitID, format string, args ...any) *MovementError {
	return &MovementError{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		UnitID:  unitID,
	}
}

func (e *MovementError) withPosition(p Position) *MovementError {
	pos := p
	e.Position = &pos
	return e
}

// suggestAlternatives returns up to MaxSuggestions tiles orthogonally
// adjacent to the rejected destination that are members of rng, in the fixed
// up/right/down/left order so suggestions are stable.
func suggestAlternatives(dest Position, rng *MovementRange) []Position {
	var alts []Position
	for _, step := range neighborSteps {
		next := Position{X: dest.X + step.X, Y: dest.Y + step.Y}
		if rng.Contains(next) {
			alts = append(alts, next)
			if len(alts) == MaxSuggestions {
				break
			}
		}
	}
	return alts
}
