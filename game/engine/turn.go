package engine

import (
	"fmt"
	"sync"
)

// TurnTracker is the in-process turn authority for a battle. It owns which
// faction is active and the turn counter; the movement machinery consults it
// through the TurnAuthority interface and never mutates it directly.
type TurnTracker struct {
	mu       sync.Mutex
	factions []string
	active   int
	turn     int
}

// NewTurnTracker creates a tracker over the given faction rotation. The first
// faction opens turn 1.
func NewTurnTracker(factions []string) (*TurnTracker, error) {
	if len(factions) == 0 {
		return nil, fmt.Errorf("turn tracker needs at least one faction")
	}
	seen := make(map[string]bool, len(factions))
	for _, f := range factions {
		if f == "" {
			return nil, fmt.Errorf("faction names cannot be empty")
		}
		if seen[f] {
			return nil, fmt.Errorf("duplicate faction %q in rotation", f)
		}
		seen[f] = true
	}
	return &TurnTracker{factions: factions, turn: 1}, nil
}

// ActiveFaction returns the faction whose turn it is.
func (t *TurnTracker) ActiveFaction() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.factions[t.active]
}

// Turn returns the 1-based turn counter. It increments each time the rotation
// wraps back to the first faction.
func (t *TurnTracker) Turn() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.turn
}

// CanUnitAct reports whether the unit belongs to the active faction and still
// has its action: alive, not yet moved, correct turn.
func (t *TurnTracker) CanUnitAct(u *Unit) bool {
	if u == nil || !u.Alive || u.HasMoved {
		return false
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return u.Faction == t.factions[t.active]
}

// CommitUnitMoved acknowledges a completed movement. It fails when the unit's
// faction is no longer active, which can only happen if the turn was ended
// while the movement executed; callers treat that as a warning.
func (t *TurnTracker) CommitUnitMoved(u *Unit) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if u.Faction != t.factions[t.active] {
		return fmt.Errorf("unit %s committed a move during %s's turn", u.ID, t.factions[t.active])
	}
	return nil
}

// EndTurn advances the rotation and refreshes the incoming faction's units:
// their HasMoved flags clear so they may move again. It returns a summary of
// the new turn.
func (t *TurnTracker) EndTurn(units []*Unit) *TurnSummary {
	t.mu.Lock()
	previous := t.factions[t.active]
	t.active = (t.active + 1) % len(t.factions)
	if t.active == 0 {
		t.turn++
	}
	next := t.factions[t.active]
	turn := t.turn
	t.mu.Unlock()

	ready := 0
	for _, u := range units {
		if u == nil || u.Faction != next {
			continue
		}
		u.HasMoved = false
		if u.Alive {
			ready++
		}
	}
	return &TurnSummary{
		Turn:            turn,
		ActiveFaction:   next,
		PreviousFaction: previous,
		UnitsReady:      ready,
	}
}

// Rewind returns the tracker to turn 1 with the first faction active.
func (t *TurnTracker) Rewind() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.active = 0
	t.turn = 1
}

// Restore rewinds the tracker to a persisted turn and active faction. Unknown
// factions are rejected.
func (t *TurnTracker) Restore(turn int, activeFaction string) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, f := range t.factions {
		if f == activeFaction {
			if turn < 1 {
				turn = 1
			}
			t.active = i
			t.turn = turn
			return nil
		}
	}
	return fmt.Errorf("unknown faction %q", activeFaction)
}
