package session

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

var (
	ErrSessionNotFound      = service.ErrSessionNotFound
	ErrSessionAlreadyExists = errors.New("session already exists")
	ErrInvalidSessionID     = errors.New("invalid session ID")
)

const maxIDAttempts = 16

// ChangeHook receives every engine change of every session
type ChangeHook func(sessionID string, change engine.Change)

// Option configures a Manager
type Option func(*Manager)

// WithEngineOptions applies opts to every engine the manager creates
func WithEngineOptions(opts ...engine.Option) Option {
	return func(m *Manager) { m.engineOpts = append(m.engineOpts, opts...) }
}

// WithChangeHook forwards engine changes, tagged with the session ID
func WithChangeHook(hook ChangeHook) Option {
	return func(m *Manager) { m.hook = hook }
}

// Manager handles game session lifecycle
type Manager struct {
	sessions   map[string]*service.Session
	engineOpts []engine.Option
	hook       ChangeHook
	mu         sync.RWMutex
}

// NewManager creates a new session manager
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		sessions: make(map[string]*service.Session),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Create starts a new game under id. An empty id gets a random 4-character ID.
func (m *Manager) Create(id string, difficulty engine.Difficulty, cardSetID string, cards *engine.CardSet) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if id == "" {
		generated, err := m.generateUniqueIDLocked()
		if err != nil {
			return nil, err
		}
		id = generated
	} else if strings.TrimSpace(id) != id || strings.ContainsAny(id, "/?#") {
		return nil, fmt.Errorf("%w: %q", ErrInvalidSessionID, id)
	}

	// Check if session already exists (case-insensitive)
	if m.sessionExists(id) {
		return nil, ErrSessionAlreadyExists
	}

	opts := append([]engine.Option{}, m.engineOpts...)
	if m.hook != nil {
		hook, sessionID := m.hook, id
		opts = append(opts, engine.WithListener(func(change engine.Change) {
			hook(sessionID, change)
		}))
	}

	eng, err := engine.NewEngine(cards, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}
	if err := eng.StartGame(difficulty); err != nil {
		eng.Close()
		return nil, err
	}

	now := time.Now()
	session := &service.Session{
		ID:             id,
		Engine:         eng,
		CardSetID:      cardSetID,
		CardSet:        cards,
		CreatedAt:      now,
		LastAccessedAt: now,
	}

	m.sessions[strings.ToLower(id)] = session
	return session, nil
}

// Get retrieves a session by ID (case-insensitive)
func (m *Manager) Get(id string) (*service.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	return session, nil
}

// List returns copies of all active sessions
func (m *Manager) List() []*service.Session {
	m.mu.RLock()
	defer m.mu.RUnlock()

	result := make([]*service.Session, 0, len(m.sessions))
	for _, session := range m.sessions {
		copied := *session
		result = append(result, &copied)
	}
	return result
}

// Delete removes a session and cancels its timers
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	lowerID := strings.ToLower(id)
	session, exists := m.sessions[lowerID]
	if exists {
		delete(m.sessions, lowerID)
	}
	m.mu.Unlock()

	if !exists {
		return ErrSessionNotFound
	}
	session.Engine.Close()
	return nil
}

// UpdateLastAccessed updates the last accessed time for a session
func (m *Manager) UpdateLastAccessed(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return ErrSessionNotFound
	}
	session.LastAccessedAt = time.Now()
	return nil
}

// Touch records an access and returns a copy of the session. The copy's
// timestamps are safe to read while other requests touch the same session.
func (m *Manager) Touch(id string) (*service.Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session, exists := m.sessions[strings.ToLower(id)]
	if !exists {
		return nil, ErrSessionNotFound
	}
	session.LastAccessedAt = time.Now()
	copied := *session
	return &copied, nil
}

// CleanupExpiredSessions removes and tears down sessions that haven't been
// accessed in the given duration
func (m *Manager) CleanupExpiredSessions(maxAge time.Duration) int {
	m.mu.Lock()
	cutoff := time.Now().Add(-maxAge)
	var expired []*service.Session

	for id, session := range m.sessions {
		if session.LastAccessedAt.Before(cutoff) {
			delete(m.sessions, id)
			expired = append(expired, session)
		}
	}
	m.mu.Unlock()

	for _, session := range expired {
		session.Engine.Close()
	}
	return len(expired)
}

// CloseAll tears down every session, used on shutdown
func (m *Manager) CloseAll() int {
	m.mu.Lock()
	sessions := m.sessions
	m.sessions = make(map[string]*service.Session)
	m.mu.Unlock()

	for _, session := range sessions {
		session.Engine.Close()
	}
	return len(sessions)
}

// Count returns the number of active sessions
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}

// generateUniqueIDLocked draws random IDs until one is free
func (m *Manager) generateUniqueIDLocked() (string, error) {
	for i := 0; i < maxIDAttempts; i++ {
		id := m.generateSessionID()
		if !m.sessionExists(id) {
			return id, nil
		}
	}
	log.Printf("Warning: no free session ID after %d attempts (%d sessions active)", maxIDAttempts, len(m.sessions))
	return "", fmt.Errorf("%w: could not generate a unique ID", ErrInvalidSessionID)
}

// generateSessionID generates a random 4-character session ID
func (m *Manager) generateSessionID() string {
	// Generate 2 random bytes (4 hex characters)
	bytes := make([]byte, 2)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)
}

// sessionExists checks if a session exists (case-insensitive)
func (m *Manager) sessionExists(id string) bool {
	_, exists := m.sessions[strings.ToLower(id)]
	return exists
}
