package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/wricardo/grid-tactics-game/game/engine"
	"github.com/wricardo/grid-tactics-game/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			// Long enough for a full animated movement on a worst-case path.
			Timeout: 60 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Grid Tactics Game",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Grid Tactics Game - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME FLOW:
Turn-based tactical movement on a grid. Each turn, the active faction moves
its units one at a time: select a unit to see its movement range, preview a
path, then execute the move. A unit may move once per turn. End the turn to
hand control to the other faction and refresh its units.

AVAILABLE TOOLS:
- create_battle: Start a new battle from a scenario
- list_battles: List active battles
- list_scenarios: List available scenarios
- battle_state: Get battle state with an ASCII map
- select_unit: Select a unit and compute its movement range
- deselect: Clear the current selection
- preview_path: Preview the exact path to a destination
- movement_range: Compute a unit's reachable tiles
- execute_move: Move a unit to a destination (blocks while it walks)
- cancel_move: Interrupt the executing movement at the next step
- end_turn: Pass the turn to the next faction
- reset_battle: Rebuild the battle from its scenario
- movement_log: View past movements with pagination
- describe_tile: Inspect one tile's terrain, cost and occupant
- battle_instructions: Get the full rules reference

NOTE: The 'intent' parameter on execute_move serves as rubber duck debugging -
explain your reasoning before committing a move!`),
	)

	// Register all tools
	c.registerTools()
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Battle management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_battle",
		Description: "Create a new battle with optional scenario selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"scenario_id": map[string]interface{}{
					"type":        "string",
					"description": "Scenario to load (optional, defaults to the server default)",
				},
			},
		},
	}, c.handleCreateBattle)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_battles",
		Description: "List all active battles",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListBattles)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_scenarios",
		Description: "List available battle scenarios",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListScenarios)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "battle_state",
		Description: "Get the current battle state with an ASCII map",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"battle_id": map[string]interface{}{
					"type":        "string",
					"description": "Battle ID",
				},
			},
			Required: []string{"battle_id"},
		},
	}, c.handleBattleState)

	// Movement operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_unit",
		Description: "Select a unit and compute its movement range. Selecting the already-selected unit deselects it.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"battle_id": map[string]interface{}{
					"type":        "string",
					"description": "Battle ID",
				},
				"unit_id": map[string]interface{}{
					"type":        "string",
					"description": "Unit to select",
				},
			},
			Required: []string{"battle_id", "unit_id"},
		},
	}, c.handleSelectUnit)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "deselect",
		Description: "Clear the current selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"battle_id": map[string]interface{}{
					"type":        "string",
					"description": "Battle ID",
				},
			},
			Required: []string{"battle_id"},
		},
	}, c.handleDeselect)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "preview_path",
		Description: "Preview the exact path the selected unit would walk to a destination. Out-of-range destinations clear the preview without an error.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"battle_id": map[string]interface{}{
					"type":        "string",
					"description": "Battle ID",
				},
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Destination X coordinate (column, 0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Destination Y coordinate (row, 0-based)",
				},
			},
			Required: []string{"battle_id", "x", "y"},
		},
	}, c.handlePreviewPath)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "movement_range",
		Description: "Compute a unit's reachable tiles without changing the selection",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"battle_id": map[string]interface{}{
					"type":        "string",
					"description": "Battle ID",
				},
				"unit_id": map[string]interface{}{
					"type":        "string",
					"description": "Unit to compute the range for",
				},
			},
			Required: []string{"battle_id", "unit_id"},
		},
	}, c.handleMovementRange)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "execute_move",
		Description: "Move a unit to a destination. Blocks while the unit walks the path step by step. The executed path always equals the previewed path for the same board state.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"battle_id": map[string]interface{}{
					"type":        "string",
					"description": "Battle ID",
				},
				"unit_id": map[string]interface{}{
					"type":        "string",
					"description": "Unit to move",
				},
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "Destination X coordinate (column, 0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Destination Y coordinate (row, 0-based)",
				},
				"intent": map[string]interface{}{
					"type":        "string",
					"description": "Brief explanation of the intent behind this move (serves as a rubber duck to help explain your reasoning)",
				},
			},
			Required: []string{"battle_id", "unit_id", "x", "y"},
		},
	}, c.handleExecuteMove)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "cancel_move",
		Description: "Interrupt the executing movement. The unit stops at the last fully-completed step and keeps its action.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"battle_id": map[string]interface{}{
					"type":        "string",
					"description": "Battle ID",
				},
			},
			Required: []string{"battle_id"},
		},
	}, c.handleCancelMove)

	// Turn flow
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "end_turn",
		Description: "End the active faction's turn and refresh the next faction's units",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"battle_id": map[string]interface{}{
					"type":        "string",
					"description": "Battle ID",
				},
			},
			Required: []string{"battle_id"},
		},
	}, c.handleEndTurn)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "reset_battle",
		Description: "Rebuild the battle from its scenario. The movement log survives resets.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"battle_id": map[string]interface{}{
					"type":        "string",
					"description": "Battle ID",
				},
			},
			Required: []string{"battle_id"},
		},
	}, c.handleResetBattle)

	// Introspection
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "movement_log",
		Description: "Get the movement log for a battle",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"battle_id": map[string]interface{}{
					"type":        "string",
					"description": "Battle ID",
				},
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Items per page",
				},
			},
			Required: []string{"battle_id"},
		},
	}, c.handleMovementLog)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "describe_tile",
		Description: "Get detailed information about one tile: terrain, movement cost, passability and occupant. Useful before committing a move.",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"battle_id": map[string]interface{}{
					"type":        "string",
					"description": "Battle ID",
				},
				"x": map[string]interface{}{
					"type":        "integer",
					"description": "X coordinate (column) of the tile to describe (0-based)",
				},
				"y": map[string]interface{}{
					"type":        "integer",
					"description": "Y coordinate (row) of the tile to describe (0-based)",
				},
			},
			Required: []string{"battle_id", "x", "y"},
		},
	}, c.handleDescribeTile)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "battle_instructions",
		Description: "Get the full rules reference for the tactics game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleBattleInstructions)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// Helper methods for API calls

func (c *Client) apiCall(method, path string, body interface{}, result interface{}) error {
	url := c.baseURL + path

	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequest(method, url, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return decodeAPIError(resp)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

// decodeAPIError turns an error response into something readable. Movement
// errors come back as their full structured payload, so the kind and any
// suggested alternative destinations survive the round trip.
func decodeAPIError(resp *http.Response) error {
	var payload struct {
		Error       string            `json:"error"`
		Kind        string            `json:"kind"`
		Message     string            `json:"message"`
		Suggestions []engine.Position `json:"suggestions"`
	}
	json.NewDecoder(resp.Body).Decode(&payload)

	switch {
	case payload.Kind != "":
		msg := fmt.Sprintf("[%s] %s", payload.Kind, payload.Message)
		if len(payload.Suggestions) > 0 {
			alts := make([]string, 0, len(payload.Suggestions))
			for _, p := range payload.Suggestions {
				alts = append(alts, fmt.Sprintf("(%d,%d)", p.X, p.Y))
			}
			msg += fmt.Sprintf(" — reachable alternatives: %s", strings.Join(alts, ", "))
		}
		return fmt.Errorf("%s", msg)
	case payload.Error != "":
		return fmt.Errorf("%s", payload.Error)
	default:
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}
}

// Tool handlers

func (c *Client) handleCreateBattle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	scenarioID, _ := args["scenario_id"].(string)

	body := map[string]string{}
	if scenarioID != "" {
		body["scenario_id"] = scenarioID
	}

	var battle service.BattleInfo
	err := c.apiCall("POST", "/api/battles", body, &battle)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created battle: %s\nScenario: %s\n\n%s",
		battle.ID, battle.ScenarioID, formatBattleInfo(&battle))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListBattles(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count   int                  `json:"count"`
		Battles []service.BattleInfo `json:"battles"`
	}

	err := c.apiCall("GET", "/api/battles", nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Active Battles (%d):\n\n", response.Count)
	for _, b := range response.Battles {
		turn, faction := 0, "?"
		if b.State != nil {
			turn, faction = b.State.Turn, b.State.ActiveFaction
		}
		result += fmt.Sprintf("- %s (Scenario: %s, Turn: %d, Active: %s, Created: %s)\n",
			b.ID, b.ScenarioID, turn, faction, b.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListScenarios(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var scenarios []service.ScenarioInfo
	err := c.apiCall("GET", "/api/scenarios", nil, &scenarios)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := "Available Scenarios:\n\n"
	for _, sc := range scenarios {
		result += fmt.Sprintf("• %s\n  %s\n  Grid: %dx%d, Units: %d, Factions: %s\n\n",
			sc.ScenarioID, sc.Description, sc.GridWidth, sc.GridHeight,
			sc.Units, strings.Join(sc.Factions, " vs "))
	}

	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleBattleState(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	battleID, _ := args["battle_id"].(string)

	var battle service.BattleInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/battles/%s", battleID), nil, &battle)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBattleInfo(&battle)), nil
}

func (c *Client) handleSelectUnit(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	battleID, _ := args["battle_id"].(string)
	unitID, _ := args["unit_id"].(string)

	body := map[string]string{"unit_id": unitID}

	var sel engine.SelectionResult
	err := c.apiCall("POST", fmt.Sprintf("/api/battles/%s/select", battleID), body, &sel)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if sel.Deselected {
		return mcp.NewToolResultText(fmt.Sprintf("Unit %s deselected (it was already selected).", unitID)), nil
	}

	result := fmt.Sprintf("Selected unit: %s\nMode: %s\n%s", sel.UnitID, sel.Mode, formatRange(sel.Range))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleDeselect(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	battleID, _ := args["battle_id"].(string)

	err := c.apiCall("POST", fmt.Sprintf("/api/battles/%s/deselect", battleID), nil, nil)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText("Selection cleared."), nil
}

func (c *Client) handlePreviewPath(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	battleID, _ := args["battle_id"].(string)
	x := int(args["x"].(float64))
	y := int(args["y"].(float64))

	body := map[string]int{"x": x, "y": y}

	var response struct {
		Path    []engine.Position `json:"path"`
		InRange bool              `json:"in_range"`
	}
	err := c.apiCall("POST", fmt.Sprintf("/api/battles/%s/preview", battleID), body, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !response.InRange {
		return mcp.NewToolResultText(fmt.Sprintf(
			"(%d,%d) is not in the selected unit's range; the path preview was cleared.", x, y)), nil
	}

	result := fmt.Sprintf("Path to (%d,%d): %s\nSteps: %d",
		x, y, formatPath(response.Path), len(response.Path)-1)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMovementRange(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	battleID, _ := args["battle_id"].(string)
	unitID, _ := args["unit_id"].(string)

	var response struct {
		UnitID string             `json:"unit_id"`
		Range  []engine.RangeTile `json:"range"`
	}
	err := c.apiCall("GET", fmt.Sprintf("/api/battles/%s/units/%s/range", battleID, unitID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Movement range for %s:\n%s", unitID, formatRange(response.Range))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleExecuteMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	battleID, _ := args["battle_id"].(string)
	unitID, _ := args["unit_id"].(string)
	x := int(args["x"].(float64))
	y := int(args["y"].(float64))
	intent, _ := args["intent"].(string)

	// Intent parameter serves as rubber duck debugging - we don't need to process it further
	_ = intent

	body := map[string]interface{}{
		"unit_id": unitID,
		"x":       x,
		"y":       y,
	}

	var response service.MoveResponse
	err := c.apiCall("POST", fmt.Sprintf("/api/battles/%s/move", battleID), body, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMoveResponse(&response)), nil
}

func (c *Client) handleCancelMove(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	battleID, _ := args["battle_id"].(string)

	var response struct {
		Interrupted bool `json:"interrupted"`
	}
	err := c.apiCall("POST", fmt.Sprintf("/api/battles/%s/cancel", battleID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if response.Interrupted {
		return mcp.NewToolResultText("Movement interrupted; the unit stopped at its last completed step."), nil
	}
	return mcp.NewToolResultText("Nothing was executing; selection cleared."), nil
}

func (c *Client) handleEndTurn(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	battleID, _ := args["battle_id"].(string)

	var summary engine.TurnSummary
	err := c.apiCall("POST", fmt.Sprintf("/api/battles/%s/end-turn", battleID), nil, &summary)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Turn ended for %s.\nTurn %d: %s is now active with %d units ready.",
		summary.PreviousFaction, summary.Turn, summary.ActiveFaction, summary.UnitsReady)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleResetBattle(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	battleID, _ := args["battle_id"].(string)

	var response struct {
		Message string              `json:"message"`
		State   *engine.BattleState `json:"state"`
	}
	err := c.apiCall("POST", fmt.Sprintf("/api/battles/%s/reset", battleID), nil, &response)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := response.Message
	if response.State != nil {
		result += fmt.Sprintf("\nTurn %d, active faction: %s",
			response.State.Turn, response.State.ActiveFaction)
	}
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleMovementLog(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	battleID, _ := args["battle_id"].(string)

	params := "?"
	if page, ok := args["page"].(float64); ok {
		params += fmt.Sprintf("page=%d&", int(page))
	}
	if limit, ok := args["limit"].(float64); ok {
		params += fmt.Sprintf("limit=%d&", int(limit))
	}

	var logResp service.LogResponse
	err := c.apiCall("GET", fmt.Sprintf("/api/battles/%s/log%s", battleID, params), nil, &logResp)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatMovementLog(&logResp)), nil
}

func (c *Client) handleDescribeTile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.Params.Arguments.(map[string]interface{})
	battleID, _ := args["battle_id"].(string)
	x := int(args["x"].(float64))
	y := int(args["y"].(float64))

	var tile service.TileInfo
	err := c.apiCall("GET", fmt.Sprintf("/api/battles/%s/tiles/%d/%d", battleID, x, y), nil, &tile)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if !tile.InBounds {
		return mcp.NewToolResultText(fmt.Sprintf("Tile (%d,%d) is outside the map.", x, y)), nil
	}

	passStr := "IMPASSABLE"
	costStr := "n/a"
	if tile.Passable {
		passStr = "passable"
		costStr = fmt.Sprintf("%d", tile.Cost)
	}
	occupant := "none"
	if tile.Occupied {
		occupant = tile.OccupiedBy
	}

	result := fmt.Sprintf(`Tile (%d,%d):
━━━━━━━━━━━━━━━━━━━━━━━━
Terrain: %s
Movement cost: %s
Passability: %s
Occupant: %s`,
		x, y, tile.Terrain, costStr, passStr, occupant)
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleBattleInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	instructions := `⚔️ Grid Tactics Game - Complete Instructions

GAME OBJECTIVE:
Outmaneuver the opposing faction on a tile grid. Each turn, move your units
into strong positions; a unit may move once per turn.

MOVEMENT RULES:
• Units move along 4-directional paths over passable tiles
• Each tile costs movement points to enter; a unit may spend at most its
  movement budget per move
• Tiles occupied by living units block movement for everyone else
• A unit may "stay" by moving to its own tile; this still spends its action
• Only one unit may be mid-movement at a time, battle-wide

TERRAIN COSTS:
• plains  - cost 1
• road    - cost 1
• forest  - cost 2
• hills   - cost 3
• swamp   - cost 4
• water   - IMPASSABLE
• wall    - IMPASSABLE

MAP LEGEND (battle_state output):
• Terrain uses the scenario's layout characters (see the legend printed
  below each map)
• Units are overlaid as markers; the roster under the map keys each marker
  to its unit, faction and position

TURN FLOW:
1. select_unit - pick a unit of the active faction; its movement range is
   computed and returned as (x,y):cost entries
2. preview_path (optional) - see the exact tile sequence to a destination;
   the executed path is guaranteed to be identical
3. execute_move - walk the unit there step by step; the call blocks until
   the unit arrives (or is canceled)
4. Repeat for your other units, then end_turn

🤖 AI AGENTS - STRATEGY NOTES:

RANGE IS THE SOURCE OF TRUTH:
A destination is reachable iff it appears in the unit's movement range.
Moving anywhere else returns destination_unreachable together with up to 4
adjacent tiles that ARE reachable - use them instead of guessing.

COSTS ARE NOT DISTANCES:
Forest, hills and swamp make straight lines expensive. A longer route over
roads often costs less than a short cut through swamp. Always read the cost
in the range output rather than counting tiles.

OCCUPANCY CHANGES BETWEEN TURNS:
Ranges are computed against the units' positions at request time. After any
unit moves, recompute rather than trusting an old range.

COMMON ERRORS:
• invalid_selection    - unknown or dead unit
• already_moved        - the unit spent its action this turn; end_turn refreshes it
• insufficient_movement - the unit's movement budget is 0 (it can never move)
• invalid_action       - the unit belongs to the faction whose turn it is NOT
• movement_in_progress - another unit is mid-walk; wait or cancel_move
• destination_occupied - another living unit holds that tile
• destination_unreachable - not in range; check the suggested alternatives

CANCELLATION:
cancel_move stops the walking unit at its last completed step. The unit
keeps its action (has_moved stays false) and may move again this turn.

Good luck, commander! ⚔️`

	return mcp.NewToolResultText(instructions), nil
}

// Formatting helpers

// unitMarkers assigns single-character map markers to units in roster order.
var unitMarkers = []rune("123456789abcdefghijklmnopqrstuvw")

// formatBattleInfo renders a battle as a header, an ASCII map and a roster.
// Terrain comes from the scenario layout; living units overlay their tiles.
func formatBattleInfo(b *service.BattleInfo) string {
	if b == nil || b.State == nil {
		return "No battle state available"
	}
	state := b.State

	var result strings.Builder
	result.WriteString(fmt.Sprintf("Battle: %s | Scenario: %s\n", b.ID, state.ScenarioName))
	result.WriteString(fmt.Sprintf("Turn: %d | Active faction: %s | Mode: %s",
		state.Turn, state.ActiveFaction, state.Mode))
	if state.SelectedUnit != "" {
		result.WriteString(fmt.Sprintf(" | Selected: %s", state.SelectedUnit))
	}
	result.WriteString("\n\n")

	// Marker lookup by position, roster order
	markerAt := make(map[engine.Position]rune, len(state.Units))
	for i, u := range state.Units {
		if u.Alive && i < len(unitMarkers) {
			markerAt[u.Position] = unitMarkers[i]
		}
	}

	// Map: scenario layout with unit overlays
	if b.Scenario != nil && len(b.Scenario.Layout) == state.GridHeight {
		for y, row := range b.Scenario.Layout {
			for x, char := range row {
				if marker, ok := markerAt[engine.Position{X: x, Y: y}]; ok {
					result.WriteRune(marker)
				} else {
					result.WriteRune(char)
				}
			}
			result.WriteString("\n")
		}

		legendParts := make([]string, 0, len(b.Scenario.Legend))
		for char, terrain := range b.Scenario.Legend {
			legendParts = append(legendParts, fmt.Sprintf("%s=%s", char, terrain))
		}
		result.WriteString("\nTerrain: " + strings.Join(legendParts, " ") + "\n")
	}

	// Roster keyed to the markers
	result.WriteString("\nUnits:\n")
	for i, u := range state.Units {
		marker := '?'
		if i < len(unitMarkers) {
			marker = unitMarkers[i]
		}
		status := "ready"
		if !u.Alive {
			status = "dead"
		} else if u.HasMoved {
			status = "moved"
		}
		result.WriteString(fmt.Sprintf("  [%c] %s (%s) at (%d,%d) move=%d %s\n",
			marker, u.ID, u.Faction, u.Position.X, u.Position.Y, u.Movement, status))
	}

	return result.String()
}

// formatRange renders range tiles as compact (x,y):cost entries. The engine
// already returns them in deterministic order.
func formatRange(tiles []engine.RangeTile) string {
	if len(tiles) == 0 {
		return "Reachable tiles: none"
	}
	parts := make([]string, 0, len(tiles))
	for _, rt := range tiles {
		parts = append(parts, fmt.Sprintf("(%d,%d):%d", rt.Position.X, rt.Position.Y, rt.Cost))
	}
	return fmt.Sprintf("Reachable tiles (%d): %s", len(tiles), strings.Join(parts, " "))
}

func formatPath(path []engine.Position) string {
	parts := make([]string, 0, len(path))
	for _, p := range path {
		parts = append(parts, fmt.Sprintf("(%d,%d)", p.X, p.Y))
	}
	return strings.Join(parts, " → ")
}

func formatMoveResponse(resp *service.MoveResponse) string {
	if resp == nil || resp.Result == nil {
		return "No move result available"
	}
	r := resp.Result

	var b strings.Builder
	if r.Completed {
		b.WriteString("✓ Move completed\n")
	} else if r.Canceled {
		b.WriteString("✗ Move canceled mid-walk\n")
	} else {
		b.WriteString("✗ Move stopped early\n")
	}

	b.WriteString(fmt.Sprintf("Unit %s: (%d,%d) → (%d,%d), cost %d, steps %d/%d\n",
		r.UnitID, r.From.X, r.From.Y, r.FinalPosition.X, r.FinalPosition.Y,
		r.Cost, r.StepsCompleted, r.TotalSteps))
	if len(r.Path) > 0 {
		b.WriteString("Path: " + formatPath(r.Path) + "\n")
	}
	for _, w := range r.Warnings {
		b.WriteString("Warning: " + w + "\n")
	}

	if resp.State != nil {
		b.WriteString(fmt.Sprintf("\nTurn %d, active faction: %s",
			resp.State.Turn, resp.State.ActiveFaction))
	}
	return b.String()
}

func formatMovementLog(logResp *service.LogResponse) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Movement log (page %d/%d, %d total):\n\n",
		logResp.Page, logResp.TotalPages, logResp.TotalMoves))

	for _, rec := range logResp.Moves {
		line := fmt.Sprintf("#%d turn %d: %s (%d,%d)→(%d,%d)",
			rec.MoveNumber, rec.Turn, rec.UnitID,
			rec.From.X, rec.From.Y, rec.To.X, rec.To.Y)
		switch {
		case rec.Error != "":
			line += fmt.Sprintf(" REJECTED [%s]", rec.Error)
		case rec.Canceled:
			line += fmt.Sprintf(" CANCELED at (%d,%d), cost %d", rec.Final.X, rec.Final.Y, rec.Cost)
		default:
			line += fmt.Sprintf(" cost %d", rec.Cost)
		}
		b.WriteString(line + "\n")
	}

	if logResp.HasNext {
		b.WriteString("\n(more entries on the next page)")
	}
	return b.String()
}
