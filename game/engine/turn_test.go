package engine

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewTurnTracker(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		tracker, err := NewTurnTracker([]string{"alliance", "horde"})
		require.NoError(t, err)
		require.Equal(t, "alliance", tracker.ActiveFaction())
		require.Equal(t, 1, tracker.Turn())
	})

	t.Run("rejects empty rotation", func(t *testing.T) {
		_, err := NewTurnTracker(nil)
		require.Error(t, err)
	})

	t.Run("rejects duplicate factions", func(t *testing.T) {
		_, err := NewTurnTracker([]string{"alliance", "alliance"})
		require.Error(t, err)
	})

	t.Run("rejects empty names", func(t *testing.T) {
		_, err := NewTurnTracker([]string{"alliance", ""})
		require.Error(t, err)
	})
}

func TestTurnTrackerCanUnitAct(t *testing.T) {
	tracker, err := NewTurnTracker([]string{"alliance", "horde"})
	require.NoError(t, err)

	ally := testUnit("A", "alliance", 0, 0, 3)
	enemy := testUnit("H", "horde", 1, 1, 3)

	require.True(t, tracker.CanUnitAct(ally))
	require.False(t, tracker.CanUnitAct(enemy), "not the horde's turn yet")
	require.False(t, tracker.CanUnitAct(nil))

	ally.HasMoved = true
	require.False(t, tracker.CanUnitAct(ally), "spent units cannot act")

	ally.HasMoved = false
	ally.Alive = false
	require.False(t, tracker.CanUnitAct(ally), "dead units cannot act")
}

func TestTurnTrackerEndTurn(t *testing.T) {
	tracker, err := NewTurnTracker([]string{"alliance", "horde"})
	require.NoError(t, err)

	units := []*Unit{
		testUnit("A1", "alliance", 0, 0, 3),
		testUnit("A2", "alliance", 1, 0, 3),
		testUnit("H1", "horde", 4, 4, 3),
	}
	units[2].HasMoved = true // spent last horde turn

	summary := tracker.EndTurn(units)

	require.Equal(t, "horde", summary.ActiveFaction)
	require.Equal(t, "alliance", summary.PreviousFaction)
	require.Equal(t, 1, summary.Turn, "the counter advances only when the rotation wraps")
	require.Equal(t, 1, summary.UnitsReady)
	require.False(t, units[2].HasMoved, "the incoming faction's units are refreshed")

	summary = tracker.EndTurn(units)
	require.Equal(t, "alliance", summary.ActiveFaction)
	require.Equal(t, 2, summary.Turn, "wrapping the rotation starts the next turn")
	require.Equal(t, 2, summary.UnitsReady)
}

func TestTurnTrackerEndTurnSkipsDeadFromReadyCount(t *testing.T) {
	tracker, err := NewTurnTracker([]string{"alliance", "horde"})
	require.NoError(t, err)

	casualty := testUnit("H1", "horde", 4, 4, 3)
	casualty.Alive = false
	casualty.HasMoved = true

	summary := tracker.EndTurn([]*Unit{casualty})
	require.Zero(t, summary.UnitsReady)
	require.False(t, casualty.HasMoved, "flags clear even for dead units so revival starts clean")
}

func TestTurnTrackerCommit(t *testing.T) {
	tracker, err := NewTurnTracker([]string{"alliance", "horde"})
	require.NoError(t, err)

	ally := testUnit("A", "alliance", 0, 0, 3)
	require.NoError(t, tracker.CommitUnitMoved(ally))

	tracker.EndTurn(nil)
	require.Error(t, tracker.CommitUnitMoved(ally), "commits after the turn flipped are rejected")
}

func TestTurnTrackerRestore(t *testing.T) {
	tracker, err := NewTurnTracker([]string{"alliance", "horde"})
	require.NoError(t, err)

	require.NoError(t, tracker.Restore(7, "horde"))
	require.Equal(t, 7, tracker.Turn())
	require.Equal(t, "horde", tracker.ActiveFaction())

	require.Error(t, tracker.Restore(3, "undead"), "unknown factions are rejected")

	require.NoError(t, tracker.Restore(0, "alliance"))
	require.Equal(t, 1, tracker.Turn(), "turns below 1 clamp to 1")

	tracker.Rewind()
	require.Equal(t, 1, tracker.Turn())
	require.Equal(t, "alliance", tracker.ActiveFaction())
}
