package service

import (
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// CreateSessionRequest selects the difficulty and card set of a new game.
// An empty difficulty means easy; an empty card set means the default.
type CreateSessionRequest struct {
	Difficulty string `json:"difficulty,omitempty" validate:"omitempty,oneof=easy medium hard"`
	CardSet    string `json:"card_set,omitempty" validate:"omitempty,max=64"`
}

// SessionInfo provides information about a game session
type SessionInfo struct {
	ID             string            `json:"id"`
	CardSet        string            `json:"card_set"`
	Difficulty     engine.Difficulty `json:"difficulty"`
	CreatedAt      time.Time         `json:"created_at"`
	LastAccessedAt time.Time         `json:"last_accessed_at"`
	Board          *engine.Snapshot  `json:"board"`
}

// SelectionResult contains the result of a card selection
type SelectionResult struct {
	Accepted bool             `json:"accepted"`
	Outcome  engine.Outcome   `json:"outcome"`
	Finished bool             `json:"finished"`
	Board    *engine.Snapshot `json:"board"`
	Result   *ResultInfo      `json:"result,omitempty"`
	Message  string           `json:"message"`
	Events   []GameEvent      `json:"events,omitempty"`
}

// ResultInfo is the summary of a finished game
type ResultInfo struct {
	SessionID   string             `json:"session_id"`
	Difficulty  engine.Difficulty  `json:"difficulty"`
	ErrorCount  int                `json:"error_count"`
	ElapsedTime engine.ElapsedTime `json:"elapsed_time"`
	ElapsedText string             `json:"elapsed_text"`
	Summary     string             `json:"summary"`
}

// GameEvent represents an event that occurred during gameplay
type GameEvent struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"` // "select", "match", "mismatch", "rejected", "finished"
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
	Position  *int      `json:"position,omitempty"`
}

// HistoryOptions configures selection history retrieval
type HistoryOptions struct {
	Page  int    `json:"page"`
	Limit int    `json:"limit"`
	Order string `json:"order"` // "asc" or "desc"
}

// HistoryResponse contains paginated selection history
type HistoryResponse struct {
	Selections      []engine.SelectionEntry `json:"selections"`
	TotalSelections int                     `json:"total_selections"`
	Page            int                     `json:"page"`
	PageSize        int                     `json:"page_size"`
	TotalPages      int                     `json:"total_pages"`
	HasNext         bool                    `json:"has_next"`
	HasPrevious     bool                    `json:"has_previous"`
}

// CardSetInfo provides information about a card set
type CardSetInfo struct {
	Filename    string `json:"filename,omitempty"`
	CardSetID   string `json:"card_set_id"` // The identifier to use for session creation
	Name        string `json:"name"`
	Description string `json:"description"`
	CardCount   int    `json:"card_count"`
	BuiltIn     bool   `json:"built_in,omitempty"`
}
