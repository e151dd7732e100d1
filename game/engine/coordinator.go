package engine

import (
	"context"
	"sync"

	"github.com/rs/zerolog/log"
)

// TurnAuthority arbitrates turn ownership for the movement machinery. It is
// consumed, never implemented, by the coordinator: the battle wires in its
// TurnTracker, and tests substitute fakes.
type TurnAuthority interface {
	// CanUnitAct reports whether the unit may act right now (its faction's
	// turn, by whatever rules the authority applies).
	CanUnitAct(u *Unit) bool
	// CommitUnitMoved is called exactly once per successfully completed
	// movement. A failure is surfaced to the caller as a warning; the
	// movement itself is never rolled back.
	CommitUnitMoved(u *Unit) error
}

// Coordinator owns the movement interaction state for one battle: which unit
// is selected, its displayed range, the previewed path, and whether a
// movement is executing. It enforces movement exclusivity: at most one
// movement is in flight per coordinator, checked on every entry point.
type Coordinator struct {
	mu        sync.Mutex
	grid      *Grid
	units     []*Unit
	authority TurnAuthority
	notifier  Notifier
	executor  *Executor

	mode     Mode
	selected *Unit
	rng      *MovementRange
	path     Path
	cancelFn context.CancelFunc
}

// NewCoordinator creates a coordinator for the given grid and roster. A nil
// notifier means events are discarded; a nil executor gets the default step
// duration.
func NewCoordinator(grid *Grid, units []*Unit, authority TurnAuthority, notifier Notifier, executor *Executor) *Coordinator {
	if notifier == nil {
		notifier = NopNotifier{}
	}
	if executor == nil {
		executor = NewExecutor(DefaultStepDuration)
	}
	return &Coordinator{
		grid:      grid,
		units:     units,
		authority: authority,
		notifier:  notifier,
		executor:  executor,
		mode:      ModeNone,
	}
}

// UpdateUnits replaces the roster after an external change (deaths,
// reinforcements, restored state) and drops any selection that no longer
// refers to a living unit. Occupancy is derived from the roster per request,
// so no further invalidation is needed. Callers must not swap the roster
// while a movement is executing.
func (c *Coordinator) UpdateUnits(units []*Unit) {
	c.mu.Lock()
	c.units = units
	if c.selected != nil {
		current := c.findUnitLocked(c.selected.ID)
		if current == nil || !current.Alive {
			c.clearLocked()
		} else {
			c.selected = current
		}
	}
	c.mu.Unlock()
}

// WithRoster runs fn on the live roster while holding the coordinator's lock.
// External collaborators (the turn authority, persistence) use it to read or
// mutate units without racing a movement commit. fn must not call back into
// the coordinator.
func (c *Coordinator) WithRoster(fn func(units []*Unit)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.units)
}

// Mode returns the current interaction mode.
func (c *Coordinator) Mode() Mode {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.mode
}

// Snapshot returns a read-only copy of the coordinator state for debugging
// and introspection. It never aliases internal slices.
func (c *Coordinator) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap := Snapshot{Mode: c.mode, Moving: c.mode == ModeMoving}
	if c.selected != nil {
		snap.SelectedUnit = c.selected.ID
	}
	if c.rng != nil {
		snap.Range = c.rng.Tiles()
	}
	if len(c.path) > 0 {
		snap.Path = append([]Position(nil), c.path...)
	}
	return snap
}

// SelectUnit chooses a unit and computes its movement range. Re-selecting the
// unit that is already selected deselects it instead. Selection is rejected
// while a movement is executing and for units that cannot act.
func (c *Coordinator) SelectUnit(unitID string) (*SelectionResult, *MovementError) {
	c.mu.Lock()
	if c.mode == ModeMoving {
		c.mu.Unlock()
		return nil, c.fail(newMovementError(KindMovementInProgress, unitID, "another movement is executing"))
	}
	if c.grid == nil {
		c.mu.Unlock()
		return nil, c.fail(newMovementError(KindInvalidPosition, unitID, "battle grid is not initialized"))
	}
	u := c.findUnitLocked(unitID)
	if merr := c.validateUnitLocked(u, unitID); merr != nil {
		c.mu.Unlock()
		return nil, c.fail(merr)
	}
	if u.Movement <= 0 {
		c.mu.Unlock()
		return nil, c.fail(newMovementError(KindInsufficientMovement, unitID, "unit has no movement points"))
	}

	if c.mode == ModeSelecting && c.selected == u {
		c.clearLocked()
		c.mu.Unlock()
		c.notify(Event{Type: EventSelectionChanged})
		c.notify(Event{Type: EventStateChanged, Mode: ModeNone})
		return &SelectionResult{Deselected: true, Mode: ModeNone}, nil
	}

	occupied := BuildOccupancy(c.units, u.ID)
	c.selected = u
	c.rng = ComputeRange(c.grid, u.Position, u.Movement, occupied)
	c.path = nil
	c.mode = ModeSelecting
	tiles := c.rng.Tiles()
	c.mu.Unlock()

	c.notify(Event{Type: EventSelectionChanged, UnitID: u.ID})
	c.notify(Event{Type: EventStateChanged, Mode: ModeSelecting, UnitID: u.ID, Range: tiles})
	return &SelectionResult{UnitID: u.ID, Mode: ModeSelecting, Range: tiles}, nil
}

// PreviewPath computes and stores the path the selected unit would walk to
// dest. A destination outside the displayed range clears the preview and
// returns an empty path with no error: previews are non-committal. Calling
// it with no selection is an invalid action.
func (c *Coordinator) PreviewPath(dest Position) (Path, *MovementError) {
	c.mu.Lock()
	if c.mode == ModeMoving {
		c.mu.Unlock()
		return nil, c.fail(newMovementError(KindMovementInProgress, "", "another movement is executing"))
	}
	if c.mode != ModeSelecting || c.selected == nil {
		c.mu.Unlock()
		return nil, c.fail(newMovementError(KindInvalidAction, "", "no unit is selected"))
	}
	u := c.selected
	if !c.rng.Contains(dest) {
		c.path = nil
		c.mu.Unlock()
		c.notify(Event{Type: EventStateChanged, Mode: ModeSelecting, UnitID: u.ID})
		return nil, nil
	}

	occupied := BuildOccupancy(c.units, u.ID)
	path := FindPath(c.grid, u.Position, dest, u.Movement, occupied)
	if len(path) == 0 {
		c.path = nil
		c.mu.Unlock()
		log.Error().
			Str("unit", u.ID).
			Int("x", dest.X).
			Int("y", dest.Y).
			Msg("movement range and path finder disagree")
		return nil, c.fail(newMovementError(KindPathBlocked, u.ID, "no path to (%d,%d) despite it being in range", dest.X, dest.Y).withPosition(dest))
	}
	c.path = path
	c.mu.Unlock()

	c.notify(Event{Type: EventStateChanged, Mode: ModeSelecting, UnitID: u.ID, Path: path})
	return path, nil
}

// ExecuteMove validates and executes a movement to dest. Validation never
// trusts a stale preview: occupancy and range are recomputed against the
// roster as it is now. On success the coordinator enters Moving, walks the
// unit along the path, commits position and HasMoved, reports the commit to
// the turn authority, and returns to None. A canceled execution is a result
// (Canceled=true, unit at its last completed step), not an error.
func (c *Coordinator) ExecuteMove(ctx context.Context, unitID string, dest Position) (*MoveResult, *MovementError) {
	c.mu.Lock()
	if c.mode == ModeMoving {
		c.mu.Unlock()
		return nil, c.fail(newMovementError(KindMovementInProgress, unitID, "another movement is executing"))
	}
	if c.grid == nil {
		c.mu.Unlock()
		return nil, c.fail(newMovementError(KindInvalidPosition, unitID, "battle grid is not initialized"))
	}
	u := c.findUnitLocked(unitID)
	if merr := c.validateUnitLocked(u, unitID); merr != nil {
		c.mu.Unlock()
		return nil, c.fail(merr)
	}
	if !c.grid.InBounds(dest) {
		c.mu.Unlock()
		return nil, c.fail(newMovementError(KindInvalidPosition, unitID, "(%d,%d) is outside the %dx%d grid", dest.X, dest.Y, c.grid.Width, c.grid.Height).withPosition(dest))
	}

	occupied := BuildOccupancy(c.units, u.ID)
	stay := dest == u.Position
	if !stay && occupied.Occupied(dest) {
		c.mu.Unlock()
		return nil, c.fail(newMovementError(KindDestinationOccupied, unitID, "(%d,%d) is occupied by another unit", dest.X, dest.Y).withPosition(dest))
	}
	rng := ComputeRange(c.grid, u.Position, u.Movement, occupied)
	if !rng.Contains(dest) {
		c.mu.Unlock()
		merr := newMovementError(KindDestinationUnreachable, unitID, "(%d,%d) is not reachable with %d movement", dest.X, dest.Y, u.Movement).withPosition(dest)
		merr.Suggestions = suggestAlternatives(dest, rng)
		return nil, c.fail(merr)
	}
	path := FindPath(c.grid, u.Position, dest, u.Movement, occupied)
	if len(path) == 0 {
		c.mu.Unlock()
		log.Error().
			Str("unit", u.ID).
			Int("x", dest.X).
			Int("y", dest.Y).
			Msg("movement range and path finder disagree")
		return nil, c.fail(newMovementError(KindPathBlocked, unitID, "no path to (%d,%d) despite it being in range", dest.X, dest.Y).withPosition(dest))
	}

	from := u.Position
	cost := path.Cost(c.grid)
	c.mode = ModeMoving
	c.selected = u
	c.rng = rng
	c.path = path
	execCtx, cancel := context.WithCancel(ctx)
	c.cancelFn = cancel
	c.mu.Unlock()
	defer cancel()

	c.notify(Event{Type: EventStateChanged, Mode: ModeMoving, UnitID: u.ID, Path: path})

	res := c.executor.Animate(execCtx, path, func(pos Position, step, total int) {
		c.mu.Lock()
		u.Position = pos
		c.mu.Unlock()
		p := pos
		c.notify(Event{Type: EventMovementStep, UnitID: u.ID, Position: &p, Step: step, TotalSteps: total})
	})

	c.mu.Lock()
	u.Position = res.FinalPosition
	var warnings []string
	if res.Completed {
		u.HasMoved = true
		if c.authority != nil {
			if err := c.authority.CommitUnitMoved(u); err != nil {
				log.Warn().Err(err).Str("unit", u.ID).Msg("turn authority rejected movement commit")
				warnings = append(warnings, "turn authority rejected commit: "+err.Error())
			}
		}
	}
	c.clearLocked()
	c.cancelFn = nil
	c.mu.Unlock()

	result := &MoveResult{
		UnitID:         u.ID,
		From:           from,
		To:             dest,
		FinalPosition:  res.FinalPosition,
		Path:           path,
		Cost:           cost,
		StepsCompleted: res.StepsCompleted,
		TotalSteps:     len(path) - 1,
		Completed:      res.Completed,
		Canceled:       !res.Completed,
		Warnings:       warnings,
	}
	c.notify(Event{Type: EventMovementCompleted, UnitID: u.ID, Result: result})
	c.notify(Event{Type: EventStateChanged, Mode: ModeNone})
	c.notify(Event{Type: EventSelectionChanged})
	return result, nil
}

// Cancel clears the current selection, or signals the in-flight movement to
// stop at its next step boundary. It is valid in every mode, cannot fail, and
// always leaves (or, for an in-flight movement, eventually leaves) the
// coordinator in None. It reports whether a movement was interrupted.
func (c *Coordinator) Cancel() bool {
	c.mu.Lock()
	if c.mode == ModeMoving {
		cancel := c.cancelFn
		c.mu.Unlock()
		if cancel != nil {
			cancel()
		}
		return true
	}
	hadSelection := c.mode != ModeNone
	c.clearLocked()
	c.mu.Unlock()
	if hadSelection {
		c.notify(Event{Type: EventSelectionChanged})
		c.notify(Event{Type: EventStateChanged, Mode: ModeNone})
	}
	return false
}

// RangeOf computes the movement range of a unit without touching the
// selection state. It is the read-only query behind the range API and the
// analysis tooling.
func (c *Coordinator) RangeOf(unitID string) ([]RangeTile, *MovementError) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.grid == nil {
		return nil, newMovementError(KindInvalidPosition, unitID, "battle grid is not initialized")
	}
	u := c.findUnitLocked(unitID)
	if u == nil {
		return nil, newMovementError(KindInvalidSelection, unitID, "unknown unit %q", unitID)
	}
	if !u.Alive {
		return nil, newMovementError(KindInvalidSelection, unitID, "unit is not alive")
	}
	occupied := BuildOccupancy(c.units, u.ID)
	return ComputeRange(c.grid, u.Position, u.Movement, occupied).Tiles(), nil
}

// findUnitLocked returns the roster unit with the given id, or nil.
func (c *Coordinator) findUnitLocked(unitID string) *Unit {
	for _, u := range c.units {
		if u != nil && u.ID == unitID {
			return u
		}
	}
	return nil
}

// validateUnitLocked applies the shared unit checks for selection and
// execution: the unit must exist, be alive, not have moved, and be cleared by
// the turn authority.
func (c *Coordinator) validateUnitLocked(u *Unit, unitID string) *MovementError {
	if u == nil {
		return newMovementError(KindInvalidSelection, unitID, "unknown unit %q", unitID)
	}
	if !u.Alive {
		return newMovementError(KindInvalidSelection, u.ID, "unit is not alive")
	}
	if u.HasMoved {
		return newMovementError(KindAlreadyMoved, u.ID, "unit has already moved this turn")
	}
	if c.authority != nil && !c.authority.CanUnitAct(u) {
		return newMovementError(KindInvalidAction, u.ID, "unit may not act now")
	}
	return nil
}

// clearLocked resets the interaction state to None.
func (c *Coordinator) clearLocked() {
	c.mode = ModeNone
	c.selected = nil
	c.rng = nil
	c.path = nil
}

// fail emits a movement_error event and returns merr for convenient
// single-line error paths.
func (c *Coordinator) fail(merr *MovementError) *MovementError {
	c.notify(Event{Type: EventMovementError, UnitID: merr.UnitID, Position: merr.Position, Err: merr})
	return merr
}

func (c *Coordinator) notify(ev Event) {
	c.notifier.Notify(stamp(ev))
}
