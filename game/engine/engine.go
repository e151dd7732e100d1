package engine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Engine provides the main interface for battle operations
type Engine interface {
	// Battle state management
	GetState() *BattleState
	SetState(state *BattleState) error
	Reset() (*BattleState, error)
	GetScenario() *ScenarioConfig
	GetGrid() *Grid
	GetUnit(unitID string) (Unit, bool)

	// Movement operations
	SelectUnit(unitID string) (*SelectionResult, *MovementError)
	Deselect()
	PreviewPath(dest Position) (Path, *MovementError)
	GetMovementRange(unitID string) ([]RangeTile, *MovementError)
	ExecuteMove(ctx context.Context, unitID string, dest Position) (*MoveResult, *MovementError)
	CancelMove() bool

	// Turn flow
	EndTurn() (*TurnSummary, *MovementError)
	ActiveFaction() string
	Turn() int

	// History and introspection
	GetMovementLog() []MovementRecord
	Inspect() Snapshot
	SetNotifier(n Notifier)
}

// Battle implements the Engine interface for one loaded scenario. The
// coordinator owns the roster and all interaction state; the battle adds the
// turn tracker, the movement log, and event fan-out.
type Battle struct {
	mu       sync.Mutex
	scenario *ScenarioConfig
	grid     *Grid
	tracker  *TurnTracker
	coord    *Coordinator
	notifier *notifierProxy
	log      []MovementRecord
	moveSeq  int
}

// NewBattle creates a battle from a validated scenario. The first faction in
// roster order opens turn 1.
func NewBattle(config *ScenarioConfig) (*Battle, error) {
	grid, err := BuildGrid(config)
	if err != nil {
		return nil, err
	}
	roster := BuildRoster(config)
	tracker, err := NewTurnTracker(FactionRotation(config))
	if err != nil {
		return nil, err
	}

	step := DefaultStepDuration
	if config.StepDurationMs > 0 {
		step = time.Duration(config.StepDurationMs) * time.Millisecond
	}

	proxy := &notifierProxy{target: NopNotifier{}}
	b := &Battle{
		scenario: config,
		grid:     grid,
		tracker:  tracker,
		notifier: proxy,
	}
	b.coord = NewCoordinator(grid, roster, tracker, proxy, NewExecutor(step))
	return b, nil
}

// SetNotifier attaches the event listener for this battle. Passing nil
// detaches it.
func (b *Battle) SetNotifier(n Notifier) {
	b.notifier.set(n)
}

// GetScenario returns the scenario this battle was built from.
func (b *Battle) GetScenario() *ScenarioConfig {
	return b.scenario
}

// GetGrid returns the immutable battle grid.
func (b *Battle) GetGrid() *Grid {
	return b.grid
}

// GetUnit returns a copy of the unit with the given id.
func (b *Battle) GetUnit(unitID string) (Unit, bool) {
	var unit Unit
	found := false
	b.coord.WithRoster(func(units []*Unit) {
		for _, u := range units {
			if u != nil && u.ID == unitID {
				unit = *u
				found = true
				return
			}
		}
	})
	return unit, found
}

// GetState returns a serializable snapshot of the battle.
func (b *Battle) GetState() *BattleState {
	snap := b.coord.Snapshot()
	var units []Unit
	b.coord.WithRoster(func(roster []*Unit) {
		units = make([]Unit, 0, len(roster))
		for _, u := range roster {
			if u != nil {
				units = append(units, *u)
			}
		}
	})

	b.mu.Lock()
	logCopy := append([]MovementRecord(nil), b.log...)
	total := b.moveSeq
	b.mu.Unlock()

	return &BattleState{
		ScenarioName:  b.scenario.Name,
		GridWidth:     b.grid.Width,
		GridHeight:    b.grid.Height,
		Turn:          b.tracker.Turn(),
		ActiveFaction: b.tracker.ActiveFaction(),
		Units:         units,
		Mode:          snap.Mode,
		SelectedUnit:  snap.SelectedUnit,
		MovementLog:   logCopy,
		TotalMoves:    total,
	}
}

// SetState restores a persisted battle snapshot: roster, turn, active faction
// and movement log. Interaction state (selection, previews) is ephemeral and
// resets to None. Restoring is rejected while a movement is executing.
func (b *Battle) SetState(state *BattleState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	if b.coord.Mode() == ModeMoving {
		return newMovementError(KindMovementInProgress, "", "cannot restore state while a movement is executing")
	}
	roster := make([]*Unit, 0, len(state.Units))
	for i := range state.Units {
		u := state.Units[i]
		if !b.grid.InBounds(u.Position) {
			return fmt.Errorf("restore state: unit '%s' at (%d,%d) is outside the %dx%d grid",
				u.ID, u.Position.X, u.Position.Y, b.grid.Width, b.grid.Height)
		}
		roster = append(roster, &u)
	}
	if state.ActiveFaction != "" {
		if err := b.tracker.Restore(state.Turn, state.ActiveFaction); err != nil {
			return fmt.Errorf("restore state: %w", err)
		}
	}

	b.mu.Lock()
	b.log = append([]MovementRecord(nil), state.MovementLog...)
	b.moveSeq = state.TotalMoves
	b.mu.Unlock()

	b.coord.Cancel()
	b.coord.UpdateUnits(roster)
	return nil
}

// Reset rebuilds the battle from its scenario. The movement log is cumulative
// and survives resets, mirroring how analytics consume it.
func (b *Battle) Reset() (*BattleState, error) {
	if b.coord.Mode() == ModeMoving {
		return nil, newMovementError(KindMovementInProgress, "", "cannot reset while a movement is executing")
	}
	b.coord.Cancel()
	b.tracker.Rewind()
	b.coord.UpdateUnits(BuildRoster(b.scenario))

	b.notifier.Notify(stamp(Event{Type: EventBattleReset}))
	return b.GetState(), nil
}

// SelectUnit chooses a unit and computes its movement range.
func (b *Battle) SelectUnit(unitID string) (*SelectionResult, *MovementError) {
	return b.coord.SelectUnit(unitID)
}

// Deselect clears the current selection. It is an alias for CancelMove kept
// for callers that express intent ("clicked away") rather than interruption.
func (b *Battle) Deselect() {
	b.coord.Cancel()
}

// PreviewPath computes the path the selected unit would walk to dest.
func (b *Battle) PreviewPath(dest Position) (Path, *MovementError) {
	return b.coord.PreviewPath(dest)
}

// GetMovementRange computes a unit's movement range without altering the
// selection.
func (b *Battle) GetMovementRange(unitID string) ([]RangeTile, *MovementError) {
	return b.coord.RangeOf(unitID)
}

// ExecuteMove validates and executes a movement, then appends the outcome to
// the movement log. Rejected attempts are logged too, with their error kind.
func (b *Battle) ExecuteMove(ctx context.Context, unitID string, dest Position) (*MoveResult, *MovementError) {
	result, merr := b.coord.ExecuteMove(ctx, unitID, dest)

	record := MovementRecord{
		ID:        uuid.NewString(),
		UnitID:    unitID,
		To:        dest,
		Turn:      b.tracker.Turn(),
		Timestamp: time.Now().UnixMilli(),
	}
	if merr != nil {
		record.Error = string(merr.Kind)
		if u, ok := b.GetUnit(unitID); ok {
			record.From = u.Position
			record.Final = u.Position
		}
	} else {
		record.From = result.From
		record.Final = result.FinalPosition
		record.Path = result.Path
		record.Cost = result.Cost
		record.Completed = result.Completed
		record.Canceled = result.Canceled
	}

	b.mu.Lock()
	b.moveSeq++
	record.MoveNumber = b.moveSeq
	b.log = append(b.log, record)
	b.mu.Unlock()

	return result, merr
}

// CancelMove cancels the in-flight movement, or clears the selection when
// nothing is executing. It reports whether a movement was interrupted.
func (b *Battle) CancelMove() bool {
	return b.coord.Cancel()
}

// EndTurn hands the battle to the next faction and refreshes its units'
// actions. Any selection is dropped first. Ending the turn while a movement
// is executing is rejected.
func (b *Battle) EndTurn() (*TurnSummary, *MovementError) {
	if b.coord.Mode() == ModeMoving {
		return nil, newMovementError(KindMovementInProgress, "", "cannot end the turn while a movement is executing")
	}
	b.coord.Cancel()

	var summary *TurnSummary
	b.coord.WithRoster(func(units []*Unit) {
		summary = b.tracker.EndTurn(units)
	})

	b.notifier.Notify(stamp(Event{Type: EventTurnEnded, Turn: summary}))
	return summary, nil
}

// ActiveFaction returns the faction whose turn it is.
func (b *Battle) ActiveFaction() string {
	return b.tracker.ActiveFaction()
}

// Turn returns the current turn number.
func (b *Battle) Turn() int {
	return b.tracker.Turn()
}

// GetMovementLog returns a copy of the cumulative movement log.
func (b *Battle) GetMovementLog() []MovementRecord {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]MovementRecord(nil), b.log...)
}

// Inspect returns the coordinator's read-only state snapshot.
func (b *Battle) Inspect() Snapshot {
	return b.coord.Snapshot()
}

// notifierProxy is a swappable Notifier indirection so listeners can attach
// after the battle (and its coordinator) exist.
type notifierProxy struct {
	mu     sync.RWMutex
	target Notifier
}

func (p *notifierProxy) Notify(ev Event) {
	p.mu.RLock()
	target := p.target
	p.mu.RUnlock()
	target.Notify(ev)
}

func (p *notifierProxy) set(n Notifier) {
	if n == nil {
		n = NopNotifier{}
	}
	p.mu.Lock()
	p.target = n
	p.mu.Unlock()
}
