package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog/log"
	"github.com/wricardo/grid-tactics-game/game/engine"
	"github.com/wricardo/grid-tactics-game/game/service"
	"github.com/wricardo/grid-tactics-game/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service service.BattleService
	hub     *websocket.Hub
	router  *mux.Router
}

// NewServer creates a new API server
func NewServer(battleService service.BattleService, hub *websocket.Hub) *Server {
	s := &Server{
		service: battleService,
		hub:     hub,
		router:  mux.NewRouter(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Battle management
	api.HandleFunc("/battles", s.handleCreateBattle).Methods("POST")
	api.HandleFunc("/battles", s.handleListBattles).Methods("GET")
	api.HandleFunc("/battles/{id}", s.handleGetBattle).Methods("GET")
	api.HandleFunc("/battles/{id}", s.handleDeleteBattle).Methods("DELETE")

	// Battle operations
	api.HandleFunc("/battles/{id}/state", s.handleGetState).Methods("GET")
	api.HandleFunc("/battles/{id}/select", s.handleSelect).Methods("POST")
	api.HandleFunc("/battles/{id}/deselect", s.handleDeselect).Methods("POST")
	api.HandleFunc("/battles/{id}/preview", s.handlePreview).Methods("POST")
	api.HandleFunc("/battles/{id}/move", s.handleMove).Methods("POST")
	api.HandleFunc("/battles/{id}/cancel", s.handleCancel).Methods("POST")
	api.HandleFunc("/battles/{id}/end-turn", s.handleEndTurn).Methods("POST")
	api.HandleFunc("/battles/{id}/reset", s.handleReset).Methods("POST")
	api.HandleFunc("/battles/{id}/units/{unitId}/range", s.handleGetRange).Methods("GET")
	api.HandleFunc("/battles/{id}/log", s.handleGetLog).Methods("GET")
	api.HandleFunc("/battles/{id}/tiles/{x}/{y}", s.handleDescribeTile).Methods("GET")
	api.HandleFunc("/battles/{id}/debug", s.handleDebug).Methods("GET")

	// Scenarios
	api.HandleFunc("/scenarios", s.handleListScenarios).Methods("GET")
	api.HandleFunc("/scenarios", s.handleCreateScenario).Methods("POST")
	api.HandleFunc("/scenarios/{name}", s.handleGetScenario).Methods("GET")

	// WebSocket event stream
	s.router.HandleFunc("/ws", s.handleWebSocket)

	// Health check
	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
}

// ServeHTTP implements http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Response helpers

func respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// respondServiceError maps an error from the service layer to an HTTP
// response. Movement errors keep their structured payload (kind, unit,
// suggestions) so clients can react without parsing message strings.
func respondServiceError(w http.ResponseWriter, err error) {
	var merr *engine.MovementError
	if errors.As(err, &merr) {
		respondJSON(w, statusForKind(merr.Kind), merr)
		return
	}
	if strings.Contains(err.Error(), "not found") {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}
	respondError(w, http.StatusInternalServerError, err.Error())
}

// statusForKind maps movement error kinds to HTTP status codes. Rule
// violations are conflicts: the request was well-formed but the battle
// state forbids it.
func statusForKind(kind engine.Kind) int {
	switch kind {
	case engine.KindInvalidPosition:
		return http.StatusBadRequest
	case engine.KindInvalidSelection:
		return http.StatusNotFound
	case engine.KindAlreadyMoved,
		engine.KindInsufficientMovement,
		engine.KindMovementInProgress,
		engine.KindDestinationOccupied,
		engine.KindDestinationUnreachable,
		engine.KindInvalidAction:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Battle Handlers

func (s *Server) handleCreateBattle(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ScenarioID string `json:"scenario_id,omitempty"`
	}

	if r.Body != nil {
		json.NewDecoder(r.Body).Decode(&req)
	}

	battle, err := s.service.CreateBattle(r.Context(), req.ScenarioID)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	respondJSON(w, http.StatusCreated, battle)
}

func (s *Server) handleListBattles(w http.ResponseWriter, r *http.Request) {
	battles, err := s.service.ListBattles(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	query := r.URL.Query()
	sortBy := query.Get("sort") // "created", "accessed" (default)
	order := query.Get("order") // "asc", "desc" (default)

	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(battles, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = battles[i].CreatedAt, battles[j].CreatedAt
		} else {
			ti, tj = battles[i].LastAccessedAt, battles[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj)
	})

	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(battles) {
			battles = battles[:l]
		}
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(battles),
		"battles": battles,
		"sort":    sortBy,
		"order":   order,
	})
}

func (s *Server) handleGetBattle(w http.ResponseWriter, r *http.Request) {
	battleID := mux.Vars(r)["id"]

	battle, err := s.service.GetBattle(r.Context(), battleID)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, battle)
}

func (s *Server) handleDeleteBattle(w http.ResponseWriter, r *http.Request) {
	battleID := mux.Vars(r)["id"]

	if err := s.service.DeleteBattle(r.Context(), battleID); err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Battle %s deleted", battleID),
	})
}

// Operation Handlers

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	battleID := mux.Vars(r)["id"]

	state, err := s.service.GetBattleState(r.Context(), battleID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	battleID := mux.Vars(r)["id"]

	var req struct {
		UnitID string `json:"unit_id"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	result, err := s.service.SelectUnit(r.Context(), battleID, req.UnitID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleDeselect(w http.ResponseWriter, r *http.Request) {
	battleID := mux.Vars(r)["id"]

	if err := s.service.Deselect(r.Context(), battleID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"message": "Selection cleared"})
}

func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	battleID := mux.Vars(r)["id"]

	var req struct {
		X int `json:"x"`
		Y int `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	path, err := s.service.PreviewPath(r.Context(), battleID, engine.Position{X: req.X, Y: req.Y})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"path":     path,
		"in_range": len(path) > 0,
	})
}

func (s *Server) handleMove(w http.ResponseWriter, r *http.Request) {
	battleID := mux.Vars(r)["id"]

	var req struct {
		UnitID string `json:"unit_id"`
		X      int    `json:"x"`
		Y      int    `json:"y"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	// Blocks until the movement finishes. Closing the connection cancels
	// r.Context() and stops the walk at the last completed step.
	result, err := s.service.ExecuteMove(r.Context(), battleID, req.UnitID, engine.Position{X: req.X, Y: req.Y})
	if err != nil {
		var merr *engine.MovementError
		if errors.As(err, &merr) {
			log.Info().
				Str("battle", battleID).
				Str("unit", req.UnitID).
				Str("kind", string(merr.Kind)).
				Msg("move rejected")
		}
		respondServiceError(w, err)
		return
	}

	log.Info().
		Str("battle", battleID).
		Str("unit", result.Result.UnitID).
		Str("from", fmt.Sprintf("(%d,%d)", result.Result.From.X, result.Result.From.Y)).
		Str("to", fmt.Sprintf("(%d,%d)", result.Result.FinalPosition.X, result.Result.FinalPosition.Y)).
		Int("cost", result.Result.Cost).
		Bool("completed", result.Result.Completed).
		Msg("move executed")

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleCancel(w http.ResponseWriter, r *http.Request) {
	battleID := mux.Vars(r)["id"]

	interrupted, err := s.service.CancelMove(r.Context(), battleID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"interrupted": interrupted,
	})
}

func (s *Server) handleEndTurn(w http.ResponseWriter, r *http.Request) {
	battleID := mux.Vars(r)["id"]

	summary, err := s.service.EndTurn(r.Context(), battleID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	battleID := mux.Vars(r)["id"]

	state, err := s.service.Reset(r.Context(), battleID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Battle reset successfully",
		"state":   state,
	})
}

func (s *Server) handleGetRange(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	battleID := vars["id"]
	unitID := vars["unitId"]

	tiles, err := s.service.GetMovementRange(r.Context(), battleID, unitID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"unit_id": unitID,
		"range":   tiles,
	})
}

func (s *Server) handleGetLog(w http.ResponseWriter, r *http.Request) {
	battleID := mux.Vars(r)["id"]

	opts := service.LogOptions{
		Page:  1,
		Limit: 20,
		Order: "desc",
	}

	query := r.URL.Query()
	if pageStr := query.Get("page"); pageStr != "" {
		if p, err := strconv.Atoi(pageStr); err == nil && p > 0 {
			opts.Page = p
		}
	}
	if limitStr := query.Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			opts.Limit = l
		}
	}
	if order := query.Get("order"); order == "asc" || order == "desc" {
		opts.Order = order
	}

	logResp, err := s.service.GetMovementLog(r.Context(), battleID, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, logResp)
}

func (s *Server) handleDescribeTile(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	battleID := vars["id"]

	x, errX := strconv.Atoi(vars["x"])
	y, errY := strconv.Atoi(vars["y"])
	if errX != nil || errY != nil {
		respondError(w, http.StatusBadRequest, "Tile coordinates must be integers")
		return
	}

	tile, err := s.service.DescribeTile(r.Context(), battleID, engine.Position{X: x, Y: y})
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, tile)
}

func (s *Server) handleDebug(w http.ResponseWriter, r *http.Request) {
	battleID := mux.Vars(r)["id"]

	snap, err := s.service.Introspect(r.Context(), battleID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, snap)
}

// Scenario Handlers

func (s *Server) handleListScenarios(w http.ResponseWriter, r *http.Request) {
	scenarios, err := s.service.ListScenarios(r.Context())
	if err != nil {
		respondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, scenarios)
}

func (s *Server) handleGetScenario(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSuffix(mux.Vars(r)["name"], ".json")

	scenario, err := s.service.LoadScenario(r.Context(), name)
	if err != nil {
		respondError(w, http.StatusNotFound, err.Error())
		return
	}

	respondJSON(w, http.StatusOK, scenario)
}

func (s *Server) handleCreateScenario(w http.ResponseWriter, r *http.Request) {
	var scenario engine.ScenarioConfig
	if err := json.NewDecoder(r.Body).Decode(&scenario); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if scenario.Name == "" {
		respondError(w, http.StatusBadRequest, "Scenario name is required")
		return
	}

	if err := s.service.SaveScenario(r.Context(), scenario.Name, &scenario); err != nil {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("Failed to save scenario: %v", err))
		return
	}

	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "Scenario saved successfully",
		"scenario_id": scenario.Name,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	battleID := r.URL.Query().Get("battle")
	if battleID == "" {
		http.Error(w, "battle parameter required", http.StatusBadRequest)
		return
	}

	// Verify the battle exists before upgrading
	if _, err := s.service.GetBattle(r.Context(), battleID); err != nil {
		http.Error(w, "Invalid battle", http.StatusNotFound)
		return
	}

	s.hub.ServeWS(w, r, battleID)
}

// Health check

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
