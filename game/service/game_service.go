package service

import (
	"context"
	"errors"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

var (
	ErrSessionNotFound = errors.New("session not found")
	ErrCardSetNotFound = errors.New("card set not found")
	ErrInvalidCardSet  = errors.New("invalid card set")
)

// GameService defines all game-related operations
type GameService interface {
	// Session Management
	CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error)
	GetSession(ctx context.Context, sessionID string) (*SessionInfo, error)
	ListSessions(ctx context.Context) ([]*SessionInfo, error)
	DeleteSession(ctx context.Context, sessionID string) error

	// Game Operations
	SelectCard(ctx context.Context, sessionID string, position int) (*SelectionResult, error)
	Restart(ctx context.Context, sessionID string) (*engine.Snapshot, error)

	// Game State
	GetBoard(ctx context.Context, sessionID string) (*engine.Snapshot, error)
	GetResult(ctx context.Context, sessionID string) (*ResultInfo, error)
	GetSelectionHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error)

	// Card sets
	ListCardSets(ctx context.Context) ([]*CardSetInfo, error)
	LoadCardSet(ctx context.Context, name string) (*engine.CardSet, error)
	SaveCardSet(ctx context.Context, name string, set *engine.CardSet) error
}

// SessionManager defines session storage operations
type SessionManager interface {
	Create(id string, difficulty engine.Difficulty, cardSetID string, cards *engine.CardSet) (*Session, error)
	Get(id string) (*Session, error)
	List() []*Session
	Delete(id string) error
	// Touch records an access and returns a copy of the session
	Touch(id string) (*Session, error)
}

// ConfigManager handles card set loading
type ConfigManager interface {
	LoadCardSet(name string) (*engine.CardSet, error)
	ListCardSets() ([]*CardSetInfo, error)
	GetDefault() *engine.CardSet
	DefaultID() string
	SaveCardSet(name string, set *engine.CardSet) error
}

// Session represents an active game
type Session struct {
	ID             string
	Engine         *engine.GameEngine
	CardSetID      string
	CardSet        *engine.CardSet
	CreatedAt      time.Time
	LastAccessedAt time.Time
}
