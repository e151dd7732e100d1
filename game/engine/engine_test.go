package engine

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

func newTestBattle(t *testing.T, stepMs int) *Battle {
	t.Helper()
	config := createValidScenario()
	config.StepDurationMs = stepMs
	battle, err := NewBattle(config)
	require.NoError(t, err)
	return battle
}

func TestNewBattle(t *testing.T) {
	t.Run("builds from a valid scenario", func(t *testing.T) {
		battle := newTestBattle(t, 1)
		require.Equal(t, "alliance", battle.ActiveFaction())
		require.Equal(t, 1, battle.Turn())
		require.Equal(t, 5, battle.GetGrid().Width)
		require.Equal(t, "Test Skirmish", battle.GetScenario().Name)

		state := battle.GetState()
		require.Len(t, state.Units, 3)
		require.Equal(t, ModeNone, state.Mode)
		require.Empty(t, state.MovementLog)
	})

	t.Run("rejects an invalid scenario", func(t *testing.T) {
		config := createValidScenario()
		config.Units = nil
		_, err := NewBattle(config)
		require.Error(t, err)
	})
}

func TestBattleMoveFlow(t *testing.T) {
	battle := newTestBattle(t, 1)

	sel, merr := battle.SelectUnit("scout")
	require.Nil(t, merr)
	require.NotEmpty(t, sel.Range)
	require.Equal(t, ModeSelecting, battle.Inspect().Mode)
	require.Equal(t, "scout", battle.Inspect().SelectedUnit)

	path, merr := battle.PreviewPath(Position{X: 0, Y: 3})
	require.Nil(t, merr)
	require.Len(t, path, 4)

	res, merr := battle.ExecuteMove(context.Background(), "scout", Position{X: 0, Y: 3})
	require.Nil(t, merr)
	require.True(t, res.Completed)
	require.Equal(t, 3, res.Cost)

	scout, ok := battle.GetUnit("scout")
	require.True(t, ok)
	require.Equal(t, Position{X: 0, Y: 3}, scout.Position)
	require.True(t, scout.HasMoved)
	require.Equal(t, ModeNone, battle.Inspect().Mode)

	log := battle.GetMovementLog()
	require.Len(t, log, 1)
	record := log[0]
	require.NotEmpty(t, record.ID)
	require.Equal(t, "scout", record.UnitID)
	require.Equal(t, Position{X: 0, Y: 0}, record.From)
	require.Equal(t, Position{X: 0, Y: 3}, record.Final)
	require.Len(t, record.Path, 4)
	require.Equal(t, 3, record.Cost)
	require.True(t, record.Completed)
	require.Empty(t, record.Error)
	require.Equal(t, 1, record.Turn)
	require.Equal(t, 1, record.MoveNumber)
	require.NotZero(t, record.Timestamp)
}

func TestBattleLogsRejectedMoves(t *testing.T) {
	battle := newTestBattle(t, 1)

	// The grunt holds (1,0); the scout cannot land there.
	_, merr := battle.ExecuteMove(context.Background(), "scout", Position{X: 1, Y: 0})
	require.NotNil(t, merr)
	require.Equal(t, KindDestinationOccupied, merr.Kind)

	log := battle.GetMovementLog()
	require.Len(t, log, 1, "rejected attempts are logged too")
	record := log[0]
	require.Equal(t, "destination_occupied", record.Error)
	require.Equal(t, Position{X: 0, Y: 0}, record.From)
	require.Equal(t, Position{X: 0, Y: 0}, record.Final)
	require.False(t, record.Completed)
	require.Empty(t, record.Path)
	require.Equal(t, 1, record.MoveNumber)

	scout, _ := battle.GetUnit("scout")
	require.False(t, scout.HasMoved, "a rejected move does not consume the action")
}

func TestBattleRespectsTurnOrder(t *testing.T) {
	battle := newTestBattle(t, 1)

	_, merr := battle.SelectUnit("raider")
	require.NotNil(t, merr)
	require.Equal(t, KindInvalidAction, merr.Kind, "horde units wait for their turn")

	_, merr = battle.ExecuteMove(context.Background(), "raider", Position{X: 4, Y: 3})
	require.NotNil(t, merr)
	require.Equal(t, KindInvalidAction, merr.Kind)

	_, merr = battle.EndTurn()
	require.Nil(t, merr)
	require.Equal(t, "horde", battle.ActiveFaction())

	res, merr := battle.ExecuteMove(context.Background(), "raider", Position{X: 4, Y: 3})
	require.Nil(t, merr)
	require.True(t, res.Completed)
}

func TestBattleEndTurn(t *testing.T) {
	battle := newTestBattle(t, 1)

	_, merr := battle.ExecuteMove(context.Background(), "scout", Position{X: 0, Y: 1})
	require.Nil(t, merr)

	summary, merr := battle.EndTurn()
	require.Nil(t, merr)
	require.Equal(t, "horde", summary.ActiveFaction)
	require.Equal(t, "alliance", summary.PreviousFaction)
	require.Equal(t, 1, summary.Turn)
	require.Equal(t, 1, summary.UnitsReady)

	scout, _ := battle.GetUnit("scout")
	require.True(t, scout.HasMoved, "ending the turn refreshes the incoming faction only")

	summary, merr = battle.EndTurn()
	require.Nil(t, merr)
	require.Equal(t, "alliance", summary.ActiveFaction)
	require.Equal(t, 2, summary.Turn)
	require.Equal(t, 2, battle.Turn())

	scout, _ = battle.GetUnit("scout")
	require.False(t, scout.HasMoved, "alliance actions return on its next turn")
}

func TestBattleEndTurnDropsSelection(t *testing.T) {
	battle := newTestBattle(t, 1)

	_, merr := battle.SelectUnit("scout")
	require.Nil(t, merr)

	_, merr = battle.EndTurn()
	require.Nil(t, merr)
	require.Equal(t, ModeNone, battle.Inspect().Mode)
	require.Empty(t, battle.Inspect().SelectedUnit)
}

func TestBattleDeselect(t *testing.T) {
	battle := newTestBattle(t, 1)

	_, merr := battle.SelectUnit("scout")
	require.Nil(t, merr)
	battle.Deselect()
	require.Equal(t, ModeNone, battle.Inspect().Mode)
}

func TestBattleCancelMove(t *testing.T) {
	battle := newTestBattle(t, 50)
	gate := newGateNotifier()
	battle.SetNotifier(gate)

	done := make(chan moveOutcome, 1)
	go func() {
		res, merr := battle.ExecuteMove(context.Background(), "scout", Position{X: 0, Y: 3})
		done <- moveOutcome{res: res, merr: merr}
	}()
	gate.waitReached(t)

	require.True(t, battle.CancelMove())
	close(gate.release)
	out := awaitMove(t, done)

	require.Nil(t, out.merr)
	require.True(t, out.res.Canceled)
	require.Equal(t, Position{X: 0, Y: 1}, out.res.FinalPosition)

	scout, _ := battle.GetUnit("scout")
	require.Equal(t, Position{X: 0, Y: 1}, scout.Position)
	require.False(t, scout.HasMoved)

	log := battle.GetMovementLog()
	require.Len(t, log, 1)
	require.True(t, log[0].Canceled)
	require.False(t, log[0].Completed)
	require.Equal(t, Position{X: 0, Y: 1}, log[0].Final)
	require.Empty(t, log[0].Error, "a canceled movement is not an error")

	require.False(t, battle.CancelMove(), "nothing left to interrupt")
}

func TestBattleReset(t *testing.T) {
	battle := newTestBattle(t, 1)

	_, merr := battle.ExecuteMove(context.Background(), "scout", Position{X: 0, Y: 2})
	require.Nil(t, merr)
	_, merr = battle.EndTurn()
	require.Nil(t, merr)

	state, err := battle.Reset()
	require.NoError(t, err)

	require.Equal(t, 1, state.Turn)
	require.Equal(t, "alliance", state.ActiveFaction)
	for _, u := range state.Units {
		require.False(t, u.HasMoved)
	}
	scout, ok := battle.GetUnit("scout")
	require.True(t, ok)
	require.Equal(t, Position{X: 0, Y: 0}, scout.Position, "units return to their starting tiles")

	require.Len(t, state.MovementLog, 1, "the movement log is cumulative across resets")
	require.Equal(t, 1, state.TotalMoves)
}

func TestBattleStateRoundTrip(t *testing.T) {
	battle := newTestBattle(t, 1)

	_, merr := battle.ExecuteMove(context.Background(), "scout", Position{X: 0, Y: 3})
	require.Nil(t, merr)
	_, merr = battle.EndTurn()
	require.Nil(t, merr)

	state := battle.GetState()

	restored := newTestBattle(t, 1)
	require.NoError(t, restored.SetState(state))

	got := restored.GetState()
	require.Equal(t, state.Turn, got.Turn)
	require.Equal(t, "horde", got.ActiveFaction)
	require.Equal(t, state.TotalMoves, got.TotalMoves)
	require.Len(t, got.MovementLog, len(state.MovementLog))

	scout, ok := restored.GetUnit("scout")
	require.True(t, ok)
	require.Equal(t, Position{X: 0, Y: 3}, scout.Position)
	require.True(t, scout.HasMoved)

	// The restored battle is playable: it is the horde's turn.
	res, merr := restored.ExecuteMove(context.Background(), "raider", Position{X: 4, Y: 3})
	require.Nil(t, merr)
	require.True(t, res.Completed)
}

func TestBattleSetStateRejectsBadSnapshots(t *testing.T) {
	battle := newTestBattle(t, 1)

	require.Error(t, battle.SetState(nil))

	state := battle.GetState()
	state.Units[0].Position = Position{X: 9, Y: 9}
	err := battle.SetState(state)
	require.Error(t, err)
	require.Contains(t, err.Error(), "outside")

	state = battle.GetState()
	state.ActiveFaction = "undead"
	err = battle.SetState(state)
	require.Error(t, err)
	require.Contains(t, err.Error(), "unknown faction")
}

func TestBattleSetNotifier(t *testing.T) {
	battle := newTestBattle(t, 1)
	collector := &eventCollector{}
	battle.SetNotifier(collector)

	_, merr := battle.SelectUnit("scout")
	require.Nil(t, merr)
	require.NotEmpty(t, collector.types(), "listeners attached after creation still get events")

	battle.SetNotifier(nil)
	seen := len(collector.types())
	battle.Deselect()
	require.Len(t, collector.types(), seen, "detached listeners get nothing")
}

func TestBattleGetUnitReturnsCopies(t *testing.T) {
	battle := newTestBattle(t, 1)

	scout, ok := battle.GetUnit("scout")
	require.True(t, ok)
	scout.Position = Position{X: 4, Y: 4}

	again, _ := battle.GetUnit("scout")
	require.Equal(t, Position{X: 0, Y: 0}, again.Position, "callers cannot reach the live roster")

	_, ok = battle.GetUnit("ghost")
	require.False(t, ok)
}
