package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
	"github.com/wricardo/mcp-training/memorygame/transport/websocket"
)

// Server represents the REST API server
type Server struct {
	service  service.GameService
	hub      *websocket.Hub
	router   *mux.Router
	validate *validator.Validate
}

// NewServer creates a new API server. hub may be nil, which disables /ws.
func NewServer(gameService service.GameService, hub *websocket.Hub) *Server {
	s := &Server{
		service:  gameService,
		hub:      hub,
		router:   mux.NewRouter(),
		validate: validator.New(),
	}

	s.setupRoutes()
	return s
}

// setupRoutes configures all API routes
func (s *Server) setupRoutes() {
	api := s.router.PathPrefix("/api").Subrouter()

	// Session management
	api.HandleFunc("/sessions", s.handleCreateSession).Methods("POST")
	api.HandleFunc("/sessions", s.handleListSessions).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleGetSession).Methods("GET")
	api.HandleFunc("/sessions/{id}", s.handleDeleteSession).Methods("DELETE")

	// Game operations
	api.HandleFunc("/sessions/{id}/board", s.handleGetBoard).Methods("GET")
	api.HandleFunc("/sessions/{id}/select", s.handleSelect).Methods("POST")
	api.HandleFunc("/sessions/{id}/restart", s.handleRestart).Methods("POST")
	api.HandleFunc("/sessions/{id}/result", s.handleGetResult).Methods("GET")
	api.HandleFunc("/sessions/{id}/history", s.handleGetHistory).Methods("GET")

	// Card sets
	api.HandleFunc("/card-sets", s.handleListCardSets).Methods("GET")
	api.HandleFunc("/card-sets", s.handleCreateCardSet).Methods("POST")
	api.HandleFunc("/card-sets/{name}", s.handleGetCardSet).Methods("GET")

	api.HandleFunc("/instructions", s.handleInstructions).Methods("GET")

	// Browser pages
	s.router.Handle("/", http.RedirectHandler("/start", http.StatusFound)).Methods("GET")
	s.router.HandleFunc("/start", s.handleStartPage).Methods("GET")
	s.router.HandleFunc("/game", s.handleNewGame).Methods("GET")
	s.router.HandleFunc("/game/{id}", s.handleGamePage).Methods("GET")
	s.router.HandleFunc("/game/{id}/select", s.handleGameSelect).Methods("POST")
	s.router.HandleFunc("/game/{id}/restart", s.handleGameRestart).Methods("POST")

	s.router.HandleFunc("/healthz", s.handleHealth).Methods("GET")

	// WebSocket
	s.router.HandleFunc("/ws", s.handleWebSocket)
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

// respondServiceError maps service and engine errors to HTTP status codes
func respondServiceError(w http.ResponseWriter, err error) {
	respondError(w, statusFor(err), err.Error())
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrSessionNotFound), errors.Is(err, service.ErrCardSetNotFound):
		return http.StatusNotFound
	case errors.Is(err, engine.ErrInvalidConfiguration), errors.Is(err, service.ErrInvalidCardSet):
		return http.StatusBadRequest
	case errors.Is(err, engine.ErrGameNotFinished), errors.Is(err, engine.ErrGameNotStarted),
		errors.Is(err, engine.ErrEngineClosed):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// decodeBody decodes and validates a JSON request body. With allowEmpty an
// empty body validates the zero value.
func (s *Server) decodeBody(r *http.Request, v interface{}, allowEmpty bool) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		if !allowEmpty || !errors.Is(err, io.EOF) {
			return errors.New("invalid request body")
		}
	}
	if err := s.validate.Struct(v); err != nil {
		return fmt.Errorf("invalid request: %s", validationMessage(err))
	}
	return nil
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Field(), fe.Tag(), fe.Param()))
		} else {
			parts = append(parts, fmt.Sprintf("%s is %s", fe.Field(), fe.Tag()))
		}
	}
	return strings.Join(parts, "; ")
}

// Session Handlers

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	var req service.CreateSessionRequest
	if err := s.decodeBody(r, &req, true); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	session, err := s.service.CreateSession(r.Context(), req)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, session)
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions, err := s.service.ListSessions(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}
	total := len(sessions)

	// Parse query parameters
	query := r.URL.Query()
	sortBy := query.Get("sort")    // "created", "accessed" (default)
	order := query.Get("order")    // "asc", "desc" (default: "desc")
	limitStr := query.Get("limit") // number of sessions to return

	// Set defaults
	if sortBy == "" {
		sortBy = "accessed"
	}
	if order == "" {
		order = "desc"
	}

	sort.Slice(sessions, func(i, j int) bool {
		var ti, tj time.Time
		if sortBy == "created" {
			ti, tj = sessions[i].CreatedAt, sessions[j].CreatedAt
		} else { // "accessed"
			ti, tj = sessions[i].LastAccessedAt, sessions[j].LastAccessedAt
		}

		if order == "asc" {
			return ti.Before(tj)
		}
		return ti.After(tj) // desc
	})

	// Apply limit if specified
	limit := len(sessions)
	if limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 && l < len(sessions) {
			limit = l
		}
	}
	sessions = sessions[:limit]

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"count":    len(sessions),
		"total":    total,
		"sessions": sessions,
		"sort":     sortBy,
		"order":    order,
	})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, session)
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	if err := s.service.DeleteSession(r.Context(), sessionID); err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Session %s deleted", sessionID),
	})
}

// Game Operation Handlers

func (s *Server) handleGetBoard(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	board, err := s.service.GetBoard(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, board)
}

// selectRequest is the body of a card selection. Position is a pointer so
// that card 0 is distinguishable from a missing field.
type selectRequest struct {
	Position *int `json:"position" validate:"required,min=0"`
}

func (s *Server) handleSelect(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	var req selectRequest
	if err := s.decodeBody(r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.service.SelectCard(r.Context(), sessionID, *req.Position)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	// Watchers already get the board from the engine; this adds the messages
	if s.hub != nil && result.Accepted {
		s.hub.BroadcastEvent(strings.ToLower(sessionID), "selection", result.Events)
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleRestart(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	board, err := s.service.Restart(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]interface{}{
		"message": "Game restarted",
		"board":   board,
	})
}

func (s *Server) handleGetResult(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	result, err := s.service.GetResult(r.Context(), sessionID)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

func (s *Server) handleGetHistory(w http.ResponseWriter, r *http.Request) {
	sessionID := mux.Vars(r)["id"]

	// Parse query parameters
	opts := service.HistoryOptions{
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

	history, err := s.service.GetSelectionHistory(r.Context(), sessionID, opts)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, history)
}

// Card Set Handlers

func (s *Server) handleListCardSets(w http.ResponseWriter, r *http.Request) {
	sets, err := s.service.ListCardSets(r.Context())
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, sets)
}

func (s *Server) handleGetCardSet(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	set, err := s.service.LoadCardSet(r.Context(), name)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, set)
}

// createCardSetRequest is the body of a card set upload. ID defaults to the
// name, lowercased with spaces turned into dashes.
type createCardSetRequest struct {
	ID          string        `json:"id,omitempty" validate:"omitempty,max=64,excludesall=/\\"`
	Name        string        `json:"name" validate:"required,max=64"`
	Description string        `json:"description,omitempty"`
	Cards       []engine.Card `json:"cards" validate:"min=8,max=64"`
}

func (s *Server) handleCreateCardSet(w http.ResponseWriter, r *http.Request) {
	var req createCardSetRequest
	if err := s.decodeBody(r, &req, false); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	id := req.ID
	if id == "" {
		id = strings.ReplaceAll(strings.ToLower(strings.TrimSpace(req.Name)), " ", "-")
	}

	set := &engine.CardSet{
		Name:        req.Name,
		Description: req.Description,
		Cards:       req.Cards,
	}
	if err := s.service.SaveCardSet(r.Context(), id, set); err != nil {
		respondServiceError(w, err)
		return
	}

	log.Printf("[CARDSET] saved id=%s cards=%d", id, len(set.Cards))
	respondJSON(w, http.StatusCreated, map[string]interface{}{
		"message":     "Card set saved successfully",
		"card_set_id": id,
	})
}

// WebSocket Handler

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if s.hub == nil {
		http.Error(w, "live updates disabled", http.StatusServiceUnavailable)
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		http.Error(w, "session parameter required", http.StatusBadRequest)
		return
	}

	// Verify session exists
	session, err := s.service.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "Invalid session", http.StatusNotFound)
		return
	}

	// Upgrade to WebSocket
	s.hub.ServeWS(w, r, session.ID)
}

// Health check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}
