package service

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/rs/zerolog/log"
	"github.com/wricardo/grid-tactics-game/game/engine"
)

// battleServiceImpl implements the BattleService interface
type battleServiceImpl struct {
	sessions  SessionManager
	scenarios ScenarioManager
	sink      EventSink

	// mu serializes battle creation and deletion. Per-battle operations do
	// not take it: the engine enforces its own exclusivity, and a movement
	// executing in one battle must never stall requests against another.
	mu sync.Mutex
}

// NewBattleService creates a new battle service instance. sink may be nil
// when no event listener (websocket hub) is attached.
func NewBattleService(sessions SessionManager, scenarios ScenarioManager, sink EventSink) BattleService {
	return &battleServiceImpl{
		sessions:  sessions,
		scenarios: scenarios,
		sink:      sink,
	}
}

// getScenarioID returns the scenario_id for a given scenario name, used for
// consistent API responses
func (s *battleServiceImpl) getScenarioID(scenarioName string) string {
	available, err := s.scenarios.ListScenarios()
	if err == nil {
		for _, sc := range available {
			if sc.Name == scenarioName {
				return sc.ScenarioID
			}
		}
	}
	// Fallback: return as-is or "default"
	if scenarioName == "" {
		return "default"
	}
	return scenarioName
}

// wire points the battle's event stream at the sink, tagged with the battle
// id. Attaching is idempotent, so lookups may re-wire restored sessions.
func (s *battleServiceImpl) wire(sess *Session) {
	if s.sink == nil || sess == nil || sess.Engine == nil {
		return
	}
	battleID := sess.ID
	sess.Engine.SetNotifier(engine.NotifierFunc(func(ev engine.Event) {
		s.sink.BroadcastEvent(battleID, ev)
	}))
}

// session resolves a battle session and touches its last-accessed time.
func (s *battleServiceImpl) session(battleID string) (*Session, error) {
	sess, err := s.sessions.Get(battleID)
	if err != nil {
		return nil, fmt.Errorf("battle not found: %w", err)
	}
	s.sessions.UpdateLastAccessed(battleID)
	s.wire(sess)
	return sess, nil
}

// persist saves a session, logging instead of failing: persistence is an
// availability concern, never a gameplay one.
func (s *battleServiceImpl) persist(battleID string) {
	if err := s.sessions.Save(battleID); err != nil {
		log.Warn().Err(err).Str("battle", battleID).Msg("failed to persist battle")
	}
}

func (s *battleServiceImpl) battleInfo(sess *Session) *BattleInfo {
	return &BattleInfo{
		ID:             sess.ID,
		ScenarioID:     s.getScenarioID(sess.Scenario.Name),
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		State:          sess.Engine.GetState(),
		Scenario:       sess.Scenario,
	}
}

// CreateBattle creates a new battle session from a scenario
func (s *battleServiceImpl) CreateBattle(ctx context.Context, scenarioName string) (*BattleInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var scenario *engine.ScenarioConfig
	var err error
	if scenarioName != "" {
		scenario, err = s.scenarios.LoadScenario(scenarioName)
		if err != nil {
			// Provide a helpful error message with available options
			if strings.Contains(err.Error(), "scenario not found") {
				available, listErr := s.scenarios.ListScenarios()
				if listErr == nil && len(available) > 0 {
					var ids []string
					for _, sc := range available {
						ids = append(ids, sc.ScenarioID)
					}
					return nil, fmt.Errorf("scenario '%s' not found. Available scenarios: %v", scenarioName, ids)
				}
				return nil, fmt.Errorf("scenario '%s' not found. Use /api/scenarios to list available scenarios", scenarioName)
			}
			return nil, fmt.Errorf("failed to load scenario %s: %w", scenarioName, err)
		}
	} else {
		scenario = s.scenarios.GetDefault()
	}

	// Let the session manager generate a proper short ID
	sess, err := s.sessions.Create("", scenario)
	if err != nil {
		return nil, fmt.Errorf("failed to create battle: %w", err)
	}
	s.wire(sess)

	info := s.battleInfo(sess)
	// Prefer the caller's identifier when one was given
	if scenarioName != "" {
		info.ScenarioID = scenarioName
	}
	return info, nil
}

// GetBattle retrieves battle session information
func (s *battleServiceImpl) GetBattle(ctx context.Context, battleID string) (*BattleInfo, error) {
	sess, err := s.session(battleID)
	if err != nil {
		return nil, err
	}
	return s.battleInfo(sess), nil
}

// ListBattles returns all active battle sessions
func (s *battleServiceImpl) ListBattles(ctx context.Context) ([]*BattleInfo, error) {
	sessions := s.sessions.List()
	result := make([]*BattleInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, s.battleInfo(sess))
	}
	return result, nil
}

// DeleteBattle removes a battle session
func (s *battleServiceImpl) DeleteBattle(ctx context.Context, battleID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions.Delete(battleID)
}

// SelectUnit selects a unit and returns its movement range. Selecting the
// already-selected unit deselects it.
func (s *battleServiceImpl) SelectUnit(ctx context.Context, battleID, unitID string) (*engine.SelectionResult, error) {
	sess, err := s.session(battleID)
	if err != nil {
		return nil, err
	}
	result, merr := sess.Engine.SelectUnit(unitID)
	if merr != nil {
		return nil, merr
	}
	return result, nil
}

// Deselect drops the battle's current selection
func (s *battleServiceImpl) Deselect(ctx context.Context, battleID string) error {
	sess, err := s.session(battleID)
	if err != nil {
		return err
	}
	sess.Engine.Deselect()
	return nil
}

// PreviewPath returns the path the selected unit would take to dest. An empty
// path with no error means the destination is out of range.
func (s *battleServiceImpl) PreviewPath(ctx context.Context, battleID string, dest engine.Position) (engine.Path, error) {
	sess, err := s.session(battleID)
	if err != nil {
		return nil, err
	}
	path, merr := sess.Engine.PreviewPath(dest)
	if merr != nil {
		return nil, merr
	}
	return path, nil
}

// GetMovementRange returns every tile a unit can reach this turn
func (s *battleServiceImpl) GetMovementRange(ctx context.Context, battleID, unitID string) ([]engine.RangeTile, error) {
	sess, err := s.session(battleID)
	if err != nil {
		return nil, err
	}
	tiles, merr := sess.Engine.GetMovementRange(unitID)
	if merr != nil {
		return nil, merr
	}
	return tiles, nil
}

// ExecuteMove executes a movement and persists the session afterwards. The
// call blocks until the movement completes or is canceled.
func (s *battleServiceImpl) ExecuteMove(ctx context.Context, battleID, unitID string, dest engine.Position) (*MoveResponse, error) {
	sess, err := s.session(battleID)
	if err != nil {
		return nil, err
	}

	result, merr := sess.Engine.ExecuteMove(ctx, unitID, dest)
	// Rejected attempts still land in the movement log, so persist either way.
	s.persist(battleID)
	if merr != nil {
		return nil, merr
	}

	message := fmt.Sprintf("%s moved to (%d,%d), spending %d movement",
		result.UnitID, result.FinalPosition.X, result.FinalPosition.Y, result.Cost)
	if result.Canceled {
		message = fmt.Sprintf("%s stopped at (%d,%d) after %d of %d steps",
			result.UnitID, result.FinalPosition.X, result.FinalPosition.Y, result.StepsCompleted, result.TotalSteps)
	}

	return &MoveResponse{
		Success: result.Completed,
		Result:  result,
		State:   sess.Engine.GetState(),
		Message: message,
	}, nil
}

// CancelMove interrupts the in-flight movement, or clears the selection when
// nothing is executing. It reports whether a movement was interrupted.
func (s *battleServiceImpl) CancelMove(ctx context.Context, battleID string) (bool, error) {
	sess, err := s.session(battleID)
	if err != nil {
		return false, err
	}
	return sess.Engine.CancelMove(), nil
}

// EndTurn hands the battle to the next faction
func (s *battleServiceImpl) EndTurn(ctx context.Context, battleID string) (*engine.TurnSummary, error) {
	sess, err := s.session(battleID)
	if err != nil {
		return nil, err
	}
	summary, merr := sess.Engine.EndTurn()
	if merr != nil {
		return nil, merr
	}
	s.persist(battleID)
	return summary, nil
}

// Reset restores a battle to its scenario's starting state
func (s *battleServiceImpl) Reset(ctx context.Context, battleID string) (*engine.BattleState, error) {
	sess, err := s.session(battleID)
	if err != nil {
		return nil, err
	}
	state, resetErr := sess.Engine.Reset()
	if resetErr != nil {
		return nil, resetErr
	}
	s.persist(battleID)
	return state, nil
}

// GetBattleState retrieves the current battle state
func (s *battleServiceImpl) GetBattleState(ctx context.Context, battleID string) (*engine.BattleState, error) {
	sess, err := s.session(battleID)
	if err != nil {
		return nil, err
	}
	return sess.Engine.GetState(), nil
}

// GetMovementLog returns the paginated movement log
func (s *battleServiceImpl) GetMovementLog(ctx context.Context, battleID string, opts LogOptions) (*LogResponse, error) {
	sess, err := s.session(battleID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetMovementLog()
	total := len(history)

	// Apply defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	// Calculate pagination
	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var moves []engine.MovementRecord
	if opts.Order == "desc" {
		// Reverse order (most recent first)
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			moves = append(moves, history[i])
		}
	} else {
		// Normal chronological order
		if start < total {
			moves = history[start:end]
		}
	}
	if moves == nil {
		moves = []engine.MovementRecord{}
	}

	return &LogResponse{
		Moves:       moves,
		TotalMoves:  total,
		Page:        opts.Page,
		PageSize:    opts.Limit,
		TotalPages:  totalPages,
		HasNext:     opts.Page < totalPages,
		HasPrevious: opts.Page > 1,
	}, nil
}

// DescribeTile reports a tile's terrain, cost and occupant
func (s *battleServiceImpl) DescribeTile(ctx context.Context, battleID string, pos engine.Position) (*TileInfo, error) {
	sess, err := s.session(battleID)
	if err != nil {
		return nil, err
	}

	grid := sess.Engine.GetGrid()
	info := &TileInfo{Position: pos, InBounds: grid.InBounds(pos)}
	if !info.InBounds {
		return info, nil
	}

	tile := grid.TileAt(pos)
	info.Terrain = tile.Terrain
	info.Cost = tile.Cost
	info.Passable = tile.Passable

	state := sess.Engine.GetState()
	for _, u := range state.Units {
		if u.Alive && u.Position == pos {
			info.Occupied = true
			info.OccupiedBy = u.ID
			break
		}
	}
	return info, nil
}

// Introspect exposes the battle's interaction state for debugging
func (s *battleServiceImpl) Introspect(ctx context.Context, battleID string) (*engine.Snapshot, error) {
	sess, err := s.session(battleID)
	if err != nil {
		return nil, err
	}
	snap := sess.Engine.Inspect()
	return &snap, nil
}

// ListScenarios returns available battle scenarios
func (s *battleServiceImpl) ListScenarios(ctx context.Context) ([]*ScenarioInfo, error) {
	return s.scenarios.ListScenarios()
}

// LoadScenario loads a specific scenario configuration
func (s *battleServiceImpl) LoadScenario(ctx context.Context, scenarioName string) (*engine.ScenarioConfig, error) {
	return s.scenarios.LoadScenario(scenarioName)
}

// SaveScenario saves a scenario configuration to disk
func (s *battleServiceImpl) SaveScenario(ctx context.Context, scenarioName string, config *engine.ScenarioConfig) error {
	return s.scenarios.SaveScenario(scenarioName, config)
}
