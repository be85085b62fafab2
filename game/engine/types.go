package engine

import (
	"fmt"
	"strings"
	"time"
)

// Difficulty selects how many pairs are dealt
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"

	// Validation constants
	MinCardSetSize = 8
	MaxCardSetSize = 64
	GridColumns    = 4
	SelectionSize  = 2

	DefaultLockoutDelay = 3000 * time.Millisecond
	DefaultTickInterval = 1000 * time.Millisecond
)

// Difficulties lists every playable difficulty in ascending order
var Difficulties = []Difficulty{Easy, Medium, Hard}

// Pairs returns the number of pairs dealt for the difficulty, or 0 if the
// difficulty is not recognized.
func (d Difficulty) Pairs() int {
	switch d {
	case Easy:
		return 4
	case Medium:
		return 6
	case Hard:
		return 8
	}
	return 0
}

// Valid reports whether d is a recognized difficulty
func (d Difficulty) Valid() bool {
	return d.Pairs() > 0
}

// ParseDifficulty converts user input into a Difficulty
func ParseDifficulty(s string) (Difficulty, error) {
	d := Difficulty(strings.ToLower(strings.TrimSpace(s)))
	if !d.Valid() {
		return "", fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfiguration, s)
	}
	return d, nil
}

// Card is one entry of a card set. A dealt deck holds every identity twice.
type Card struct {
	Identity string `json:"key" yaml:"key"`
	Face     string `json:"value" yaml:"value"`
}

// CardSet is the base dataset a deck is dealt from
type CardSet struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Cards       []Card `json:"cards" yaml:"cards"`
}

// State is the engine's lifecycle state
type State string

const (
	StateIdle     State = "idle"
	StatePlaying  State = "playing"
	StateLocked   State = "locked"
	StateFinished State = "finished"
)

// Visibility describes how a card is presented
type Visibility string

const (
	Hidden   Visibility = "hidden"
	FaceUp   Visibility = "face_up"
	FaceDown Visibility = "face_down"
)

// CardView is the presentation of one deck position. Face is only set while
// the card is face up.
type CardView struct {
	Position   int        `json:"position"`
	Visibility Visibility `json:"visibility"`
	Face       string     `json:"face,omitempty"`
}

// ElapsedTime is play time split into whole minutes and seconds
type ElapsedTime struct {
	Minutes int `json:"minutes"`
	Seconds int `json:"seconds"`
}

// NewElapsedTime splits d into minutes and whole seconds, truncating
// fractions of a second.
func NewElapsedTime(d time.Duration) ElapsedTime {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return ElapsedTime{Minutes: total / 60, Seconds: total % 60}
}

// Duration converts the elapsed time back into a time.Duration
func (e ElapsedTime) Duration() time.Duration {
	return time.Duration(e.Minutes)*time.Minute + time.Duration(e.Seconds)*time.Second
}

func (e ElapsedTime) String() string {
	return fmt.Sprintf("%dm %ds", e.Minutes, e.Seconds)
}

// Status is the externally observable progress of a game
type Status struct {
	State       State       `json:"state"`
	Difficulty  Difficulty  `json:"difficulty,omitempty"`
	Elapsed     ElapsedTime `json:"elapsed"`
	ElapsedText string      `json:"elapsed_text"`
	ErrorCount  int         `json:"error_count"`
	PairsSolved int         `json:"pairs_solved"`
	PairsTotal  int         `json:"pairs_total"`
	Selected    int         `json:"selected"`
}

// Snapshot is everything a presentation layer needs to render the board
type Snapshot struct {
	Status  Status     `json:"status"`
	Cards   []CardView `json:"cards"`
	Columns int        `json:"columns"`
}

// GameResult summarizes a finished game
type GameResult struct {
	Difficulty  Difficulty  `json:"difficulty"`
	ErrorCount  int         `json:"error_count"`
	ElapsedTime ElapsedTime `json:"elapsed_time"`
}

// Summary renders the completion line shown to the player
func (r GameResult) Summary() string {
	return fmt.Sprintf("You have completed %s stage with %d errors in %s time.", r.Difficulty, r.ErrorCount, r.ElapsedTime)
}

// Outcome classifies the effect of a SelectCard call
type Outcome string

const (
	OutcomeRejected   Outcome = "rejected"
	OutcomeSelected   Outcome = "selected"
	OutcomeMatched    Outcome = "matched"
	OutcomeMismatched Outcome = "mismatched"
)

// SelectResult reports what a selection did. Finished is true only for the
// selection that completed the game.
type SelectResult struct {
	Outcome  Outcome `json:"outcome"`
	Finished bool    `json:"finished"`
}

// SelectionEntry records an accepted selection
type SelectionEntry struct {
	Sequence   int     `json:"sequence"`
	Position   int     `json:"position"`
	Face       string  `json:"face"`
	Outcome    Outcome `json:"outcome"`
	ErrorCount int     `json:"error_count"`
	Timestamp  int64   `json:"timestamp"`
}

// ChangeKind names an engine mutation
type ChangeKind string

const (
	ChangeStarted    ChangeKind = "started"
	ChangeSelected   ChangeKind = "selected"
	ChangeMatched    ChangeKind = "matched"
	ChangeMismatched ChangeKind = "mismatched"
	ChangeUnlocked   ChangeKind = "unlocked"
	ChangeTick       ChangeKind = "tick"
	ChangeFinished   ChangeKind = "finished"
	ChangeClosed     ChangeKind = "closed"
)

// Change is published to listeners after every engine mutation. Version
// increases with every change of an engine. Listeners run concurrently with
// the engine, so a change can arrive after a newer one; consumers that keep
// the latest board should ignore versions older than the last they saw.
type Change struct {
	Kind     ChangeKind `json:"kind"`
	Snapshot Snapshot   `json:"snapshot"`
	Version  uint64     `json:"version"`
}

// Rules holds the engine's timing parameters
type Rules struct {
	LockoutDelay time.Duration `json:"lockout_delay"`
	TickInterval time.Duration `json:"tick_interval"`
}

// DefaultRules returns the standard 3 second lockout and 1 second tick
func DefaultRules() Rules {
	return Rules{
		LockoutDelay: DefaultLockoutDelay,
		TickInterval: DefaultTickInterval,
	}
}
