package session

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/wricardo/grid-tactics-game/game/engine"
)

func TestManagerWithPersistence(t *testing.T) {
	tempDir := t.TempDir()
	scenarios := newStubScenarios()

	persistence, err := NewFilePersistence(tempDir, scenarios)
	require.NoError(t, err)

	manager := NewManagerWithPersistence(persistence)

	t.Run("create auto-saves", func(t *testing.T) {
		sess, err := manager.Create("auto1", scenarios.GetDefault())
		require.NoError(t, err)
		require.True(t, persistence.Exists(sess.ID), "session should be saved on creation")

		loaded, err := persistence.Load(sess.ID)
		require.NoError(t, err)
		require.Equal(t, sess.ID, loaded.ID)
	})

	t.Run("get falls back to persistence", func(t *testing.T) {
		// A fresh manager simulates a server restart
		restarted := NewManagerWithPersistence(persistence)

		sess, err := restarted.Get("auto1")
		require.NoError(t, err)
		require.Equal(t, "auto1", sess.ID)

		// The loaded session is now cached in memory
		require.Equal(t, 1, restarted.Count())
		again, err := restarted.Get("auto1")
		require.NoError(t, err)
		require.Same(t, sess, again)
	})

	t.Run("save persists changes", func(t *testing.T) {
		sess, err := manager.Get("auto1")
		require.NoError(t, err)

		_, merr := sess.Engine.ExecuteMove(context.Background(), "scout", engine.Position{X: 0, Y: 1})
		require.Nil(t, merr)

		sess.LastAccessedAt = time.Now().Add(time.Minute)
		require.NoError(t, manager.Save("auto1"))

		restarted := NewManagerWithPersistence(persistence)
		loaded, err := restarted.Get("auto1")
		require.NoError(t, err)

		scout, ok := loaded.Engine.GetUnit("scout")
		require.True(t, ok)
		require.Equal(t, engine.Position{X: 0, Y: 1}, scout.Position)
		require.NotEmpty(t, loaded.Engine.GetMovementLog())
		require.WithinDuration(t, sess.LastAccessedAt, loaded.LastAccessedAt, time.Second)
	})

	t.Run("delete removes the persisted file", func(t *testing.T) {
		sess, err := manager.Create("delete_test", scenarios.GetDefault())
		require.NoError(t, err)
		require.True(t, persistence.Exists(sess.ID))

		require.NoError(t, manager.Delete(sess.ID))
		require.False(t, persistence.Exists(sess.ID))

		_, err = manager.Get(sess.ID)
		require.ErrorIs(t, err, ErrSessionNotFound)
	})

	t.Run("load persisted sessions on startup", func(t *testing.T) {
		ids := []string{"startup1", "startup2", "startup3"}
		for _, id := range ids {
			_, err := manager.Create(id, scenarios.GetDefault())
			require.NoError(t, err)
		}

		restarted := NewManagerWithPersistence(persistence)
		require.NoError(t, restarted.LoadPersistedSessions())

		for _, id := range ids {
			sess, err := restarted.Get(id)
			require.NoError(t, err)
			require.Equal(t, id, sess.ID)
		}
		require.GreaterOrEqual(t, len(restarted.List()), len(ids))
	})

	t.Run("prune sessions whose files were deleted", func(t *testing.T) {
		sess, err := manager.Create("prune_test", scenarios.GetDefault())
		require.NoError(t, err)

		require.NoError(t, persistence.Delete(sess.ID))
		pruned := manager.PruneDeletedSessions()
		require.Equal(t, 1, pruned)

		_, err = manager.Get(sess.ID)
		require.ErrorIs(t, err, ErrSessionNotFound)

		// Nothing left to prune on a second sweep
		require.Zero(t, manager.PruneDeletedSessions())
	})

	t.Run("delete from memory keeps the file", func(t *testing.T) {
		sess, err := manager.Create("evict_test", scenarios.GetDefault())
		require.NoError(t, err)

		require.NoError(t, manager.DeleteFromMemory(sess.ID))
		require.True(t, persistence.Exists(sess.ID))

		// The session reloads transparently on the next access
		reloaded, err := manager.Get(sess.ID)
		require.NoError(t, err)
		require.Equal(t, sess.ID, reloaded.ID)
	})
}
