package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// gameServiceImpl implements the GameService interface
type gameServiceImpl struct {
	sessions SessionManager
	configs  ConfigManager
	mu       sync.RWMutex
}

// NewGameService creates a new game service instance
func NewGameService(sessions SessionManager, configs ConfigManager) GameService {
	return &gameServiceImpl{
		sessions: sessions,
		configs:  configs,
	}
}

// CreateSession deals a new game for the requested difficulty and card set
func (s *gameServiceImpl) CreateSession(ctx context.Context, req CreateSessionRequest) (*SessionInfo, error) {
	difficulty := engine.Easy
	if req.Difficulty != "" {
		d, err := engine.ParseDifficulty(req.Difficulty)
		if err != nil {
			return nil, err
		}
		difficulty = d
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	cardSetID := strings.TrimSpace(req.CardSet)
	var cards *engine.CardSet
	if cardSetID != "" {
		var err error
		cards, err = s.configs.LoadCardSet(cardSetID)
		if err != nil {
			if errors.Is(err, ErrCardSetNotFound) {
				return nil, s.cardSetNotFound(cardSetID)
			}
			return nil, fmt.Errorf("failed to load card set %s: %w", cardSetID, err)
		}
	} else {
		cards = s.configs.GetDefault()
		cardSetID = s.configs.DefaultID()
	}

	// Let session manager generate a proper 4-character ID
	created, err := s.sessions.Create("", difficulty, cardSetID, cards)
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	session, err := s.touch(created.ID)
	if err != nil {
		return nil, err
	}

	log.Printf("[SESSION] created id=%s difficulty=%s card_set=%s", session.ID, difficulty, cardSetID)
	return sessionInfo(session), nil
}

// cardSetNotFound lists the available card sets in the error
func (s *gameServiceImpl) cardSetNotFound(name string) error {
	available, err := s.configs.ListCardSets()
	if err != nil || len(available) == 0 {
		return fmt.Errorf("%w: %s", ErrCardSetNotFound, name)
	}
	ids := make([]string, 0, len(available))
	for _, info := range available {
		ids = append(ids, info.CardSetID)
	}
	return fmt.Errorf("%w: %s (available: %s)", ErrCardSetNotFound, name, strings.Join(ids, ", "))
}

// GetSession retrieves session information
func (s *gameServiceImpl) GetSession(ctx context.Context, sessionID string) (*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	session, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	return sessionInfo(session), nil
}

// ListSessions returns all active sessions
func (s *gameServiceImpl) ListSessions(ctx context.Context) ([]*SessionInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sessions := s.sessions.List()
	result := make([]*SessionInfo, 0, len(sessions))
	for _, sess := range sessions {
		result = append(result, sessionInfo(sess))
	}
	return result, nil
}

// DeleteSession tears down a session and its timers
func (s *gameServiceImpl) DeleteSession(ctx context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.sessions.Delete(sessionID); err != nil {
		return fmt.Errorf("failed to delete session %s: %w", sessionID, err)
	}
	log.Printf("[SESSION] deleted id=%s", sessionID)
	return nil
}

// SelectCard forwards a selection to the session's engine
func (s *gameServiceImpl) SelectCard(ctx context.Context, sessionID string, position int) (*SelectionResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	outcome := sess.Engine.SelectCard(position)
	board := sess.Engine.GetSnapshot()

	result := &SelectionResult{
		Accepted: outcome.Outcome != engine.OutcomeRejected,
		Outcome:  outcome.Outcome,
		Finished: outcome.Finished,
		Board:    &board,
		Events:   selectionEvents(position, outcome, board.Status),
	}
	result.Message = result.Events[len(result.Events)-1].Message

	if outcome.Finished {
		res, err := sess.Engine.GetResult()
		if err == nil {
			result.Result = resultInfo(sess.ID, res)
			result.Message = result.Result.Summary
		}
	}

	log.Printf("[SELECT] session=%s position=%d outcome=%s errors=%d solved=%d/%d",
		sess.ID, position, outcome.Outcome, board.Status.ErrorCount, board.Status.PairsSolved, board.Status.PairsTotal)

	return result, nil
}

// Restart deals a new game at the session's difficulty
func (s *gameServiceImpl) Restart(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	if err := sess.Engine.Restart(); err != nil {
		return nil, fmt.Errorf("failed to restart session %s: %w", sess.ID, err)
	}

	board := sess.Engine.GetSnapshot()
	log.Printf("[RESTART] session=%s difficulty=%s", sess.ID, board.Status.Difficulty)
	return &board, nil
}

// GetBoard returns the visible cards and status
func (s *gameServiceImpl) GetBoard(ctx context.Context, sessionID string) (*engine.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	board := sess.Engine.GetSnapshot()
	return &board, nil
}

// GetResult returns the frozen result once the game is finished
func (s *gameServiceImpl) GetResult(ctx context.Context, sessionID string) (*ResultInfo, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}
	res, err := sess.Engine.GetResult()
	if err != nil {
		return nil, err
	}
	return resultInfo(sess.ID, res), nil
}

// GetSelectionHistory returns paginated selection history for a session
func (s *gameServiceImpl) GetSelectionHistory(ctx context.Context, sessionID string, opts HistoryOptions) (*HistoryResponse, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sess, err := s.touch(sessionID)
	if err != nil {
		return nil, err
	}

	history := sess.Engine.GetHistory()
	total := len(history)

	// Set defaults
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.Limit <= 0 {
		opts.Limit = 20
	}
	if opts.Limit > 100 {
		opts.Limit = 100
	}
	if opts.Order == "" {
		opts.Order = "desc"
	}

	totalPages := (total + opts.Limit - 1) / opts.Limit
	if totalPages == 0 {
		totalPages = 1
	}

	start := (opts.Page - 1) * opts.Limit
	end := start + opts.Limit
	if end > total {
		end = total
	}

	var selections []engine.SelectionEntry
	if opts.Order == "desc" {
		// Most recent first
		for i := total - 1 - start; i >= 0 && i >= total-end; i-- {
			selections = append(selections, history[i])
		}
	} else if start < total {
		selections = history[start:end]
	}

	if selections == nil {
		selections = []engine.SelectionEntry{}
	}

	return &HistoryResponse{
		Selections:      selections,
		TotalSelections: total,
		Page:            opts.Page,
		PageSize:        opts.Limit,
		TotalPages:      totalPages,
		HasNext:         opts.Page < totalPages,
		HasPrevious:     opts.Page > 1,
	}, nil
}

// ListCardSets returns available card sets
func (s *gameServiceImpl) ListCardSets(ctx context.Context) ([]*CardSetInfo, error) {
	return s.configs.ListCardSets()
}

// LoadCardSet loads a specific card set
func (s *gameServiceImpl) LoadCardSet(ctx context.Context, name string) (*engine.CardSet, error) {
	return s.configs.LoadCardSet(name)
}

// SaveCardSet stores a card set for later sessions
func (s *gameServiceImpl) SaveCardSet(ctx context.Context, name string, set *engine.CardSet) error {
	return s.configs.SaveCardSet(name, set)
}

// touch records the access and returns the manager's copy of the session
func (s *gameServiceImpl) touch(sessionID string) (*Session, error) {
	sess, err := s.sessions.Touch(sessionID)
	if err != nil {
		return nil, fmt.Errorf("session %s: %w", sessionID, err)
	}
	return sess, nil
}

func sessionInfo(sess *Session) *SessionInfo {
	board := sess.Engine.GetSnapshot()
	return &SessionInfo{
		ID:             sess.ID,
		CardSet:        sess.CardSetID,
		Difficulty:     board.Status.Difficulty,
		CreatedAt:      sess.CreatedAt,
		LastAccessedAt: sess.LastAccessedAt,
		Board:          &board,
	}
}

func resultInfo(sessionID string, res engine.GameResult) *ResultInfo {
	return &ResultInfo{
		SessionID:   sessionID,
		Difficulty:  res.Difficulty,
		ErrorCount:  res.ErrorCount,
		ElapsedTime: res.ElapsedTime,
		ElapsedText: res.ElapsedTime.String(),
		Summary:     res.Summary(),
	}
}

// selectionEvents describes a selection as a list of events
func selectionEvents(position int, outcome engine.SelectResult, status engine.Status) []GameEvent {
	events := []GameEvent{}

	switch outcome.Outcome {
	case engine.OutcomeRejected:
		events = append(events, newEvent("rejected", &position,
			fmt.Sprintf("Card %d cannot be selected right now (%s)", position, status.State)))
	case engine.OutcomeSelected:
		events = append(events, newEvent("select", &position,
			fmt.Sprintf("Card %d turned face up", position)))
	case engine.OutcomeMatched:
		events = append(events, newEvent("match", &position,
			fmt.Sprintf("Pair found! %d/%d solved", status.PairsSolved, status.PairsTotal)))
	case engine.OutcomeMismatched:
		events = append(events, newEvent("mismatch", &position,
			fmt.Sprintf("No match. Errors: %d. Cards hide again shortly", status.ErrorCount)))
	}

	if outcome.Finished {
		events = append(events, newEvent("finished", nil,
			fmt.Sprintf("All %d pairs solved in %s with %d errors", status.PairsTotal, status.ElapsedText, status.ErrorCount)))
	}
	return events
}

func newEvent(kind string, position *int, message string) GameEvent {
	return GameEvent{
		ID:        NewEventID(),
		Type:      kind,
		Message:   message,
		Timestamp: time.Now(),
		Position:  position,
	}
}

// NewEventID returns a lexically sortable unique event identifier
func NewEventID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}
