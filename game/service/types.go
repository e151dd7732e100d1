package service

import (
	"time"

	"github.com/wricardo/grid-tactics-game/game/engine"
)

// BattleInfo provides information about a battle session
type BattleInfo struct {
	ID             string                 `json:"id"`
	ScenarioID     string                 `json:"scenario_id"`
	CreatedAt      time.Time              `json:"created_at"`
	LastAccessedAt time.Time              `json:"last_accessed_at"`
	State          *engine.BattleState    `json:"state"`
	Scenario       *engine.ScenarioConfig `json:"scenario"`
}

// MoveResponse contains the result of an executed movement together with the
// battle state it produced.
type MoveResponse struct {
	Success bool                `json:"success"`
	Result  *engine.MoveResult  `json:"result"`
	State   *engine.BattleState `json:"state"`
	Message string              `json:"message"`
}

// LogOptions configures movement log retrieval
type LogOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// LogResponse contains a paginated movement log
type LogResponse struct {
	Moves       []engine.MovementRecord `json:"moves"`
	TotalMoves  int                     `json:"total_moves"`
	Page        int                     `json:"page"`
	PageSize    int                     `json:"page_size"`
	TotalPages  int                     `json:"total_pages"`
	HasNext     bool                    `json:"has_next"`
	HasPrevious bool                    `json:"has_previous"`
}

// ScenarioInfo provides information about a battle scenario
type ScenarioInfo struct {
	Filename    string   `json:"filename"`
	ScenarioID  string   `json:"scenario_id"` // The identifier to use for battle creation
	Name        string   `json:"name"`        // Display name
	Description string   `json:"description"`
	GridWidth   int      `json:"grid_width"`
	GridHeight  int      `json:"grid_height"`
	Units       int      `json:"units"`
	Factions    []string `json:"factions"`
}

// TileInfo describes one grid tile and its occupant, if any
type TileInfo struct {
	Position   engine.Position    `json:"position"`
	InBounds   bool               `json:"in_bounds"`
	Terrain    engine.TerrainType `json:"terrain,omitempty"`
	Cost       int                `json:"cost,omitempty"`
	Passable   bool               `json:"passable"`
	Occupied   bool               `json:"occupied"`
	OccupiedBy string             `json:"occupied_by,omitempty"`
}
