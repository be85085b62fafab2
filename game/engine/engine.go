package engine

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/clock"
)

var (
	// ErrInvalidConfiguration is returned for an unknown difficulty or an
	// unusable card set or rules.
	ErrInvalidConfiguration = errors.New("invalid configuration")
	ErrGameNotStarted       = errors.New("game not started")
	ErrGameNotFinished      = errors.New("game not finished")
	ErrEngineClosed         = errors.New("engine closed")
)

// Engine provides the main interface for game operations
type Engine interface {
	// Lifecycle
	StartGame(difficulty Difficulty) error
	Restart() error
	Close()
	IsClosed() bool

	// Play
	SelectCard(position int) SelectResult

	// Queries
	GetVisibleState() []CardView
	GetStatus() Status
	GetSnapshot() Snapshot
	GetResult() (GameResult, error)
	GetHistory() []SelectionEntry
	GetCardSet() *CardSet
}

// Option configures a GameEngine
type Option func(*GameEngine)

// WithClock replaces the wall clock, mainly for tests
func WithClock(c clock.Clock) Option {
	return func(e *GameEngine) { e.clock = c }
}

// WithRules overrides the lockout delay and tick interval
func WithRules(rules Rules) Option {
	return func(e *GameEngine) { e.rules = rules }
}

// WithShuffle replaces the deck permutation
func WithShuffle(shuffle ShuffleFunc) Option {
	return func(e *GameEngine) { e.shuffle = shuffle }
}

// WithRand shuffles decks with the given source
func WithRand(r *rand.Rand) Option {
	return func(e *GameEngine) { e.shuffle = RandomShuffle(r) }
}

// WithListener registers a callback for every engine mutation. The callback
// runs outside the engine lock and may call back into the engine. Timer and
// caller goroutines can invoke it concurrently; Change.Version orders them.
func WithListener(listener func(Change)) Option {
	return func(e *GameEngine) { e.listener = listener }
}

// GameEngine implements the Engine interface. All state is owned by the
// engine and guarded by mu; timer callbacks carry the generation they were
// scheduled in and do nothing once a newer game or Close has bumped it.
type GameEngine struct {
	mu       sync.Mutex
	cards    *CardSet
	rules    Rules
	clock    clock.Clock
	shuffle  ShuffleFunc
	listener func(Change)

	state      State
	difficulty Difficulty
	deck       []Card
	selection  []int
	solved     map[string]bool
	errorCount int
	elapsed    ElapsedTime
	history    []SelectionEntry
	startedAt  time.Time

	generation uint64
	version    uint64
	tick       clock.Timer
	lockout    clock.Timer
	closed     bool
}

// NewEngine creates an idle engine that deals from cards
func NewEngine(cards *CardSet, opts ...Option) (*GameEngine, error) {
	if err := ValidateCardSet(cards); err != nil {
		return nil, err
	}

	e := &GameEngine{
		cards:   cards,
		rules:   DefaultRules(),
		clock:   clock.Real(),
		shuffle: RandomShuffle(nil),
		state:   StateIdle,
		solved:  make(map[string]bool),
	}
	for _, opt := range opts {
		opt(e)
	}

	if err := ValidateRules(e.rules); err != nil {
		return nil, err
	}
	return e, nil
}

// NewEngineWithDefaults creates an idle engine over the classic card set
func NewEngineWithDefaults(opts ...Option) *GameEngine {
	e, err := NewEngine(ClassicCardSet(), opts...)
	if err != nil {
		panic(fmt.Sprintf("classic card set rejected: %v", err))
	}
	return e
}

// StartGame deals a fresh deck for difficulty and starts the clock. Any game
// already in progress is abandoned and its timers cancelled.
func (e *GameEngine) StartGame(difficulty Difficulty) error {
	if !difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfiguration, difficulty)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return ErrEngineClosed
	}

	deck, err := BuildDeck(e.cards, difficulty, e.shuffle)
	if err != nil {
		e.mu.Unlock()
		return err
	}

	e.stopTimersLocked()
	e.generation++

	e.state = StatePlaying
	e.difficulty = difficulty
	e.deck = deck
	e.selection = make([]int, 0, SelectionSize)
	e.solved = make(map[string]bool, difficulty.Pairs())
	e.errorCount = 0
	e.elapsed = ElapsedTime{}
	e.history = []SelectionEntry{}
	e.startedAt = e.clock.Now()
	e.scheduleTickLocked(e.generation)

	change := e.changeLocked(ChangeStarted)
	e.mu.Unlock()

	e.publish(change)
	return nil
}

// Restart starts a new game at the current difficulty
func (e *GameEngine) Restart() error {
	e.mu.Lock()
	difficulty := e.difficulty
	e.mu.Unlock()

	if difficulty == "" {
		return ErrGameNotStarted
	}
	return e.StartGame(difficulty)
}

// SelectCard turns the card at position face up. Selections that cannot be
// honoured are rejected without changing any state.
func (e *GameEngine) SelectCard(position int) SelectResult {
	e.mu.Lock()
	if !e.acceptsLocked(position) {
		e.mu.Unlock()
		return SelectResult{Outcome: OutcomeRejected}
	}

	e.selection = append(e.selection, position)
	result := SelectResult{Outcome: OutcomeSelected}
	kind := ChangeSelected

	if len(e.selection) == SelectionSize {
		first, second := e.deck[e.selection[0]], e.deck[e.selection[1]]
		if first.Identity == second.Identity {
			e.solved[first.Identity] = true
			e.selection = e.selection[:0]
			result.Outcome = OutcomeMatched
			kind = ChangeMatched
		} else {
			e.errorCount++
			e.state = StateLocked
			gen := e.generation
			e.lockout = e.clock.AfterFunc(e.rules.LockoutDelay, func() {
				e.onLockoutExpired(gen)
			})
			result.Outcome = OutcomeMismatched
			kind = ChangeMismatched
		}

		if len(e.solved) == e.difficulty.Pairs() {
			e.finishLocked()
			result.Finished = true
			kind = ChangeFinished
		}
	}

	e.recordLocked(position, result.Outcome)
	change := e.changeLocked(kind)
	e.mu.Unlock()

	e.publish(change)
	return result
}

// Close cancels the tick and any pending lockout. A closed engine rejects
// every selection and cannot start new games. Close is idempotent.
func (e *GameEngine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	e.generation++
	e.stopTimersLocked()
	change := e.changeLocked(ChangeClosed)
	e.mu.Unlock()

	e.publish(change)
}

// IsClosed reports whether Close has been called
func (e *GameEngine) IsClosed() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.closed
}

// GetVisibleState returns the presentation of every deck position
func (e *GameEngine) GetVisibleState() []CardView {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.cardViewsLocked()
}

// GetStatus returns the current state, elapsed time and error count
func (e *GameEngine) GetStatus() Status {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.statusLocked()
}

// GetSnapshot returns the status and visible cards read under one lock
func (e *GameEngine) GetSnapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotLocked()
}

// GetResult returns the frozen result of a finished game
func (e *GameEngine) GetResult() (GameResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != StateFinished {
		return GameResult{}, ErrGameNotFinished
	}
	return GameResult{
		Difficulty:  e.difficulty,
		ErrorCount:  e.errorCount,
		ElapsedTime: e.elapsed,
	}, nil
}

// GetHistory returns the accepted selections of the current game
func (e *GameEngine) GetHistory() []SelectionEntry {
	e.mu.Lock()
	defer e.mu.Unlock()

	out := make([]SelectionEntry, len(e.history))
	copy(out, e.history)
	return out
}

// GetCardSet returns the card set the engine deals from
func (e *GameEngine) GetCardSet() *CardSet {
	return e.cards
}

func (e *GameEngine) acceptsLocked(position int) bool {
	if e.closed || e.state != StatePlaying {
		return false
	}
	if position < 0 || position >= len(e.deck) {
		return false
	}
	if len(e.selection) >= SelectionSize {
		return false
	}
	for _, selected := range e.selection {
		if selected == position {
			return false
		}
	}
	return !e.solved[e.deck[position].Identity]
}

func (e *GameEngine) scheduleTickLocked(gen uint64) {
	e.tick = e.clock.AfterFunc(e.rules.TickInterval, func() {
		e.onTick(gen)
	})
}

func (e *GameEngine) onTick(gen uint64) {
	e.mu.Lock()
	if gen != e.generation || (e.state != StatePlaying && e.state != StateLocked) {
		e.mu.Unlock()
		return
	}
	e.elapsed = e.measureLocked()
	e.scheduleTickLocked(gen)
	change := e.changeLocked(ChangeTick)
	e.mu.Unlock()

	e.publish(change)
}

func (e *GameEngine) onLockoutExpired(gen uint64) {
	e.mu.Lock()
	if gen != e.generation || e.state != StateLocked {
		e.mu.Unlock()
		return
	}
	e.lockout = nil
	e.selection = e.selection[:0]
	e.state = StatePlaying
	change := e.changeLocked(ChangeUnlocked)
	e.mu.Unlock()

	e.publish(change)
}

func (e *GameEngine) finishLocked() {
	e.state = StateFinished
	e.elapsed = e.measureLocked()
	e.stopTimersLocked()
}

// stopTimersLocked cancels the tick and lockout. Stopping a timer that
// already fired or was stopped is a no-op.
func (e *GameEngine) stopTimersLocked() {
	if e.tick != nil {
		e.tick.Stop()
		e.tick = nil
	}
	if e.lockout != nil {
		e.lockout.Stop()
		e.lockout = nil
	}
}

func (e *GameEngine) measureLocked() ElapsedTime {
	return NewElapsedTime(e.clock.Now().Sub(e.startedAt))
}

func (e *GameEngine) recordLocked(position int, outcome Outcome) {
	e.history = append(e.history, SelectionEntry{
		Sequence:   len(e.history) + 1,
		Position:   position,
		Face:       e.deck[position].Face,
		Outcome:    outcome,
		ErrorCount: e.errorCount,
		Timestamp:  e.clock.Now().UnixMilli(),
	})
}

func (e *GameEngine) cardViewsLocked() []CardView {
	views := make([]CardView, len(e.deck))
	for i, card := range e.deck {
		view := CardView{Position: i, Visibility: FaceDown}
		switch {
		case e.solved[card.Identity]:
			view.Visibility = Hidden
		case e.isSelectedLocked(i):
			view.Visibility = FaceUp
			view.Face = card.Face
		}
		views[i] = view
	}
	return views
}

func (e *GameEngine) isSelectedLocked(position int) bool {
	for _, selected := range e.selection {
		if selected == position {
			return true
		}
	}
	return false
}

func (e *GameEngine) statusLocked() Status {
	return Status{
		State:       e.state,
		Difficulty:  e.difficulty,
		Elapsed:     e.elapsed,
		ElapsedText: e.elapsed.String(),
		ErrorCount:  e.errorCount,
		PairsSolved: len(e.solved),
		PairsTotal:  e.difficulty.Pairs(),
		Selected:    len(e.selection),
	}
}

func (e *GameEngine) snapshotLocked() Snapshot {
	return Snapshot{
		Status:  e.statusLocked(),
		Cards:   e.cardViewsLocked(),
		Columns: GridColumns,
	}
}

// changeLocked snapshots the engine under the next version
func (e *GameEngine) changeLocked(kind ChangeKind) Change {
	e.version++
	return Change{Kind: kind, Snapshot: e.snapshotLocked(), Version: e.version}
}

func (e *GameEngine) publish(change Change) {
	if e.listener == nil {
		return
	}
	e.listener(change)
}
