package engine

// TerrainType represents different types of grid tiles
type TerrainType string

const (
	Plains TerrainType = "plains"
	Road   TerrainType = "road"
	Forest TerrainType = "forest"
	Hills  TerrainType = "hills"
	Swamp  TerrainType = "swamp"
	Water  TerrainType = "water"
	Wall   TerrainType = "wall"

	// Validation constants
	MinGridDimension = 3
	MaxGridDimension = 64
	MaxRosterSize    = 32
	MaxUnitMovement  = 20
	MaxStepDuration  = 5000 // milliseconds
	MaxSuggestions   = 4

	WebSocketBufferSize = 256
)

// Tile is a single grid cell. Cost is the movement points spent to enter the
// tile; it is meaningless when Passable is false.
type Tile struct {
	Terrain  TerrainType `json:"terrain"`
	Cost     int         `json:"cost"`
	Passable bool        `json:"passable"`
}

// Position represents x,y grid coordinates
type Position struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// Mode is the coordinator's interaction state.
type Mode string

const (
	ModeNone      Mode = "none"
	ModeSelecting Mode = "selecting"
	ModeMoving    Mode = "moving"
)

// Unit is a single battlefield unit. The roster is owned by the battle; the
// movement machinery only writes Position and HasMoved, and only on commit.
type Unit struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Faction  string   `json:"faction"`
	Position Position `json:"position"`
	Movement int      `json:"movement"`
	HasMoved bool     `json:"has_moved"`
	Alive    bool     `json:"alive"`
}

// UnitConfig describes one roster entry in a scenario file.
type UnitConfig struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Faction  string `json:"faction"`
	X        int    `json:"x"`
	Y        int    `json:"y"`
	Movement int    `json:"movement"`
}

// ScenarioConfig represents the battle setup from JSON
type ScenarioConfig struct {
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	GridWidth      int               `json:"grid_width"`
	GridHeight     int               `json:"grid_height"`
	Layout         []string          `json:"layout"`
	Legend         map[string]string `json:"legend"`
	Units          []UnitConfig      `json:"units"`
	StepDurationMs int               `json:"step_duration_ms"`
}

// BattleState is the serializable snapshot of a battle, used by the API and
// by session persistence. The grid itself is rebuilt from the scenario.
type BattleState struct {
	ScenarioName  string           `json:"scenario_name"`
	GridWidth     int              `json:"grid_width"`
	GridHeight    int              `json:"grid_height"`
	Turn          int              `json:"turn"`
	ActiveFaction string           `json:"active_faction"`
	Units         []Unit           `json:"units"`
	Mode          Mode             `json:"mode"`
	SelectedUnit  string           `json:"selected_unit,omitempty"`
	MovementLog   []MovementRecord `json:"movement_log"`
	TotalMoves    int              `json:"total_moves"`
}

// MovementRecord is one entry in a battle's movement log. Every ExecuteMove
// call produces a record, including rejected and canceled attempts.
type MovementRecord struct {
	ID         string     `json:"id"`
	UnitID     string     `json:"unit_id"`
	From       Position   `json:"from"`
	To         Position   `json:"to"`
	Final      Position   `json:"final"`
	Path       []Position `json:"path,omitempty"`
	Cost       int        `json:"cost"`
	Completed  bool       `json:"completed"`
	Canceled   bool       `json:"canceled,omitempty"`
	Error      string     `json:"error,omitempty"`
	Turn       int        `json:"turn"`
	MoveNumber int        `json:"move_number"`
	Timestamp  int64      `json:"timestamp"`
}

// RangeTile pairs a reachable position with its minimum accumulated cost.
type RangeTile struct {
	Position Position `json:"position"`
	Cost     int      `json:"cost"`
}

// SelectionResult reports the outcome of a SelectUnit call.
type SelectionResult struct {
	UnitID     string      `json:"unit_id,omitempty"`
	Deselected bool        `json:"deselected,omitempty"`
	Mode       Mode        `json:"mode"`
	Range      []RangeTile `json:"range,omitempty"`
}

// MoveResult reports the outcome of an executed movement. Canceled moves are
// results, not errors: the unit stays at the last fully-completed step.
type MoveResult struct {
	UnitID         string     `json:"unit_id"`
	From           Position   `json:"from"`
	To             Position   `json:"to"`
	FinalPosition  Position   `json:"final_position"`
	Path           []Position `json:"path"`
	Cost           int        `json:"cost"`
	StepsCompleted int        `json:"steps_completed"`
	TotalSteps     int        `json:"total_steps"`
	Completed      bool       `json:"completed"`
	Canceled       bool       `json:"canceled"`
	Warnings       []string   `json:"warnings,omitempty"`
}

// TurnSummary reports the outcome of an EndTurn call.
type TurnSummary struct {
	Turn            int    `json:"turn"`
	ActiveFaction   string `json:"active_faction"`
	PreviousFaction string `json:"previous_faction"`
	UnitsReady      int    `json:"units_ready"`
}

// Snapshot is a read-only view of the coordinator state for debugging and
// introspection tooling. It never aliases live state.
type Snapshot struct {
	Mode         Mode        `json:"mode"`
	SelectedUnit string      `json:"selected_unit,omitempty"`
	Range        []RangeTile `json:"range,omitempty"`
	Path         []Position  `json:"path,omitempty"`
	Moving       bool        `json:"moving"`
}
