package session

import (
	"time"

	"github.com/wricardo/grid-tactics-game/game/engine"
	"github.com/wricardo/grid-tactics-game/game/service"
)

// SessionPersistence defines the interface for persisting sessions
type SessionPersistence interface {
	// Save persists a session to storage
	Save(session *service.Session) error

	// Load retrieves a session from storage by ID
	Load(id string) (*service.Session, error)

	// Delete removes a session from storage
	Delete(id string) error

	// ListAll returns all persisted session IDs
	ListAll() ([]string, error)

	// Exists checks if a session exists in storage
	Exists(id string) bool
}

// PersistedSessionData is the JSON structure written for each session. The
// scenario is stored by ID (filename stem, not display name) so loading
// survives scenario renames in the display layer.
type PersistedSessionData struct {
	ID             string              `json:"id"`
	ScenarioID     string              `json:"scenario_id"`
	CreatedAt      time.Time           `json:"created_at"`
	LastAccessedAt time.Time           `json:"last_accessed_at"`
	BattleState    *engine.BattleState `json:"battle_state"`
}
