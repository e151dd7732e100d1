package service

import (
	"context"
	"time"

	"github.com/wricardo/grid-tactics-game/game/engine"
)

// BattleService defines all battle-related operations
type BattleService interface {
	// Battle lifecycle
	CreateBattle(ctx context.Context, scenarioName string) (*BattleInfo, error)
	GetBattle(ctx context.Context, battleID string) (*BattleInfo, error)
	ListBattles(ctx context.Context) ([]*BattleInfo, error)
	DeleteBattle(ctx context.Context, battleID string) error

	// Movement operations
	SelectUnit(ctx context.Context, battleID, unitID string) (*engine.SelectionResult, error)
	Deselect(ctx context.Context, battleID string) error
	PreviewPath(ctx context.Context, battleID string, dest engine.Position) (engine.Path, error)
	GetMovementRange(ctx context.Context, battleID, unitID string) ([]engine.RangeTile, error)
	ExecuteMove(ctx context.Context, battleID, unitID string, dest engine.Position) (*MoveResponse, error)
	CancelMove(ctx context.Context, battleID string) (bool, error)

	// Turn flow
	EndTurn(ctx context.Context, battleID string) (*engine.TurnSummary, error)
	Reset(ctx context.Context, battleID string) (*engine.BattleState, error)

	// Battle state
	GetBattleState(ctx context.Context, battleID string) (*engine.BattleState, error)
	GetMovementLog(ctx context.Context, battleID string, opts LogOptions) (*LogResponse, error)
	DescribeTile(ctx context.Context, battleID string, pos engine.Position) (*TileInfo, error)
	Introspect(ctx context.Context, battleID string) (*engine.Snapshot, error)

	// Scenarios
	ListScenarios(ctx context.Context) ([]*ScenarioInfo, error)
	LoadScenario(ctx context.Context, scenarioName string) (*engine.ScenarioConfig, error)
	SaveScenario(ctx context.Context, scenarioName string, config *engine.ScenarioConfig) error
}

// SessionManager defines battle session storage operations
type SessionManager interface {
	Create(id string, scenario *engine.ScenarioConfig) (*Session, error)
	Get(id string) (*Session, error)
	GetOrCreate(id string, scenario *engine.ScenarioConfig) (*Session, error)
	List() []*Session
	Delete(id string) error
	UpdateLastAccessed(id string) error
	Save(id string) error
}

// ScenarioManager handles scenario configuration loading
type ScenarioManager interface {
	LoadScenario(name string) (*engine.ScenarioConfig, error)
	ListScenarios() ([]*ScenarioInfo, error)
	GetDefault() *engine.ScenarioConfig
	SaveScenario(name string, config *engine.ScenarioConfig) error
}

// EventSink receives engine events tagged with the battle they came from. The
// websocket hub implements it. Implementations must not block: events are
// emitted from inside movement execution.
type EventSink interface {
	BroadcastEvent(battleID string, ev engine.Event)
}

// Session represents an active battle session
type Session struct {
	ID             string
	Engine         engine.Engine
	Scenario       *engine.ScenarioConfig
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
