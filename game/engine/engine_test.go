package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/clock"
)

var testEpoch = time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

func createTestCardSet() *CardSet {
	return &CardSet{
		Name:        "letters",
		Description: "Card set for engine tests",
		Cards: []Card{
			{Identity: "A", Face: "a"},
			{Identity: "B", Face: "b"},
			{Identity: "C", Face: "c"},
			{Identity: "D", Face: "d"},
			{Identity: "E", Face: "e"},
			{Identity: "F", Face: "f"},
			{Identity: "G", Face: "g"},
			{Identity: "H", Face: "h"},
		},
	}
}

// newTestEngine deals without shuffling, so position i and i+pairs hold the
// same identity.
func newTestEngine(t *testing.T, opts ...Option) (*GameEngine, *clock.Fake) {
	t.Helper()
	fake := clock.NewFake(testEpoch)
	opts = append([]Option{WithClock(fake), WithShuffle(NoShuffle)}, opts...)
	engine, err := NewEngine(createTestCardSet(), opts...)
	if err != nil {
		t.Fatalf("Failed to create engine: %v", err)
	}
	t.Cleanup(engine.Close)
	return engine, fake
}

func TestNewEngine(t *testing.T) {
	engine, _ := newTestEngine(t)

	status := engine.GetStatus()
	if status.State != StateIdle {
		t.Errorf("Expected idle state, got %s", status.State)
	}
	if len(engine.GetVisibleState()) != 0 {
		t.Error("Expected no cards before a game starts")
	}
	if _, err := engine.GetResult(); !errors.Is(err, ErrGameNotFinished) {
		t.Errorf("Expected ErrGameNotFinished, got %v", err)
	}
}

func TestNewEngine_InvalidInput(t *testing.T) {
	t.Run("nil card set", func(t *testing.T) {
		if _, err := NewEngine(nil); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
		}
	})

	t.Run("too few cards", func(t *testing.T) {
		set := createTestCardSet()
		set.Cards = set.Cards[:7]
		if _, err := NewEngine(set); !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
		}
	})

	t.Run("zero lockout", func(t *testing.T) {
		_, err := NewEngine(createTestCardSet(), WithRules(Rules{TickInterval: time.Second}))
		if !errors.Is(err, ErrInvalidConfiguration) {
			t.Errorf("Expected ErrInvalidConfiguration, got %v", err)
		}
	})
}

func TestNewEngineWithDefaults(t *testing.T) {
	engine := NewEngineWithDefaults(WithClock(clock.NewFake(testEpoch)))
	defer engine.Close()

	if engine.GetCardSet().Name != "classic" {
		t.Errorf("Expected classic card set, got %s", engine.GetCardSet().Name)
	}
	if err := engine.StartGame(Hard); err != nil {
		t.Fatalf("Failed to start hard game: %v", err)
	}
	if len(engine.GetVisibleState()) != 16 {
		t.Errorf("Expected 16 cards, got %d", len(engine.GetVisibleState()))
	}
}

func TestStartGame(t *testing.T) {
	tests := []struct {
		difficulty Difficulty
		cards      int
	}{
		{Easy, 8},
		{Medium, 12},
		{Hard, 16},
	}

	for _, test := range tests {
		t.Run(string(test.difficulty), func(t *testing.T) {
			engine, _ := newTestEngine(t, WithShuffle(RandomShuffle(nil)))
			if err := engine.StartGame(test.difficulty); err != nil {
				t.Fatalf("StartGame failed: %v", err)
			}

			status := engine.GetStatus()
			if status.State != StatePlaying {
				t.Errorf("Expected playing, got %s", status.State)
			}
			if status.ErrorCount != 0 || status.PairsSolved != 0 {
				t.Errorf("Expected a fresh game, got %+v", status)
			}
			if status.PairsTotal != test.difficulty.Pairs() {
				t.Errorf("Expected %d pairs, got %d", test.difficulty.Pairs(), status.PairsTotal)
			}

			views := engine.GetVisibleState()
			if len(views) != test.cards {
				t.Fatalf("Expected %d cards, got %d", test.cards, len(views))
			}
			for i, view := range views {
				if view.Position != i {
					t.Errorf("Card %d reports position %d", i, view.Position)
				}
				if view.Visibility != FaceDown || view.Face != "" {
					t.Errorf("Card %d should start face down without a face, got %+v", i, view)
				}
			}

			counts := CountIdentities(engine.deck)
			if len(counts) != test.difficulty.Pairs() {
				t.Errorf("Expected %d identities, got %d", test.difficulty.Pairs(), len(counts))
			}
			for identity, n := range counts {
				if n != 2 {
					t.Errorf("Identity %s appears %d times", identity, n)
				}
			}
		})
	}
}

func TestStartGame_InvalidDifficulty(t *testing.T) {
	engine, fake := newTestEngine(t)

	err := engine.StartGame(Difficulty("impossible"))
	if !errors.Is(err, ErrInvalidConfiguration) {
		t.Fatalf("Expected ErrInvalidConfiguration, got %v", err)
	}
	if engine.GetStatus().State != StateIdle {
		t.Error("Game must not start on invalid difficulty")
	}
	if fake.Pending() != 0 {
		t.Errorf("Expected no timers, got %d", fake.Pending())
	}
}

func TestSelectCard_Match(t *testing.T) {
	engine, _ := newTestEngine(t)
	if err := engine.StartGame(Easy); err != nil {
		t.Fatalf("StartGame failed: %v", err)
	}

	first := engine.SelectCard(0)
	if first.Outcome != OutcomeSelected || first.Finished {
		t.Errorf("Expected selected, got %+v", first)
	}
	views := engine.GetVisibleState()
	if views[0].Visibility != FaceUp || views[0].Face != "a" {
		t.Errorf("Expected card 0 face up showing a, got %+v", views[0])
	}

	second := engine.SelectCard(4)
	if second.Outcome != OutcomeMatched || second.Finished {
		t.Errorf("Expected matched, got %+v", second)
	}

	status := engine.GetStatus()
	if status.PairsSolved != 1 || status.ErrorCount != 0 || status.Selected != 0 {
		t.Errorf("Unexpected status after match: %+v", status)
	}
	if status.State != StatePlaying {
		t.Errorf("Expected playing, got %s", status.State)
	}

	views = engine.GetVisibleState()
	if views[0].Visibility != Hidden || views[4].Visibility != Hidden {
		t.Error("Solved cards should be hidden")
	}
	if views[0].Face != "" {
		t.Error("Hidden cards should not expose their face")
	}
}

func TestSelectCard_Rejections(t *testing.T) {
	t.Run("idle engine", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		if got := engine.SelectCard(0); got.Outcome != OutcomeRejected {
			t.Errorf("Expected rejection, got %+v", got)
		}
	})

	t.Run("same position twice", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		engine.StartGame(Easy)
		engine.SelectCard(1)
		if got := engine.SelectCard(1); got.Outcome != OutcomeRejected {
			t.Errorf("Expected rejection, got %+v", got)
		}
		if engine.GetStatus().Selected != 1 {
			t.Errorf("Selection buffer changed: %d", engine.GetStatus().Selected)
		}
	})

	t.Run("solved card", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		engine.StartGame(Easy)
		engine.SelectCard(0)
		engine.SelectCard(4)
		if got := engine.SelectCard(0); got.Outcome != OutcomeRejected {
			t.Errorf("Expected rejection, got %+v", got)
		}
		if got := engine.SelectCard(4); got.Outcome != OutcomeRejected {
			t.Errorf("Expected rejection, got %+v", got)
		}
	})

	t.Run("out of range", func(t *testing.T) {
		engine, _ := newTestEngine(t)
		engine.StartGame(Easy)
		for _, position := range []int{-1, 8, 100} {
			if got := engine.SelectCard(position); got.Outcome != OutcomeRejected {
				t.Errorf("Position %d: expected rejection, got %+v", position, got)
			}
		}
		if len(engine.GetHistory()) != 0 {
			t.Error("Rejected selections must not be recorded")
		}
	})
}

func TestGameCompletion(t *testing.T) {
	engine, fake := newTestEngine(t)
	engine.StartGame(Easy)

	// one mismatch along the way
	engine.SelectCard(0)
	if got := engine.SelectCard(1); got.Outcome != OutcomeMismatched {
		t.Fatalf("Expected mismatch, got %+v", got)
	}
	fake.Advance(3 * time.Second)

	finishedCount := 0
	for pair := 0; pair < 4; pair++ {
		fake.Advance(10 * time.Second)
		engine.SelectCard(pair)
		if got := engine.SelectCard(pair + 4); got.Finished {
			finishedCount++
		}
	}
	if finishedCount != 1 {
		t.Fatalf("Expected exactly one finishing selection, got %d", finishedCount)
	}

	status := engine.GetStatus()
	if status.State != StateFinished {
		t.Fatalf("Expected finished, got %s", status.State)
	}

	result, err := engine.GetResult()
	if err != nil {
		t.Fatalf("GetResult failed: %v", err)
	}
	want := GameResult{Difficulty: Easy, ErrorCount: 1, ElapsedTime: ElapsedTime{Minutes: 0, Seconds: 43}}
	if result != want {
		t.Errorf("Expected %+v, got %+v", want, result)
	}
	if result.Summary() != "You have completed easy stage with 1 errors in 0m 43s time." {
		t.Errorf("Unexpected summary: %s", result.Summary())
	}

	if fake.Pending() != 0 {
		t.Errorf("Expected all timers cancelled at finish, got %d", fake.Pending())
	}

	// frozen afterwards
	fake.Advance(5 * time.Minute)
	for position := 0; position < 8; position++ {
		if got := engine.SelectCard(position); got.Outcome != OutcomeRejected {
			t.Errorf("Finished game accepted position %d", position)
		}
	}
	after, _ := engine.GetResult()
	if after != result {
		t.Errorf("Result changed after finish: %+v", after)
	}
}

func TestRestart(t *testing.T) {
	engine, fake := newTestEngine(t)

	if err := engine.Restart(); !errors.Is(err, ErrGameNotStarted) {
		t.Errorf("Expected ErrGameNotStarted, got %v", err)
	}

	engine.StartGame(Medium)
	engine.SelectCard(0)
	engine.SelectCard(1)
	fake.Advance(2 * time.Second)

	if err := engine.Restart(); err != nil {
		t.Fatalf("Restart failed: %v", err)
	}

	status := engine.GetStatus()
	if status.State != StatePlaying || status.Difficulty != Medium {
		t.Errorf("Expected playing medium, got %+v", status)
	}
	if status.ErrorCount != 0 || status.Selected != 0 || status.Elapsed != (ElapsedTime{}) {
		t.Errorf("Restart should reset progress, got %+v", status)
	}
	if len(engine.GetHistory()) != 0 {
		t.Error("Restart should clear history")
	}
	if fake.Pending() != 1 {
		t.Errorf("Expected only the new tick pending, got %d", fake.Pending())
	}
}

func TestGetHistory(t *testing.T) {
	engine, fake := newTestEngine(t)
	engine.StartGame(Easy)

	engine.SelectCard(0)
	engine.SelectCard(0)
	engine.SelectCard(2)
	fake.Advance(3 * time.Second)
	engine.SelectCard(1)
	engine.SelectCard(5)

	history := engine.GetHistory()
	if len(history) != 4 {
		t.Fatalf("Expected 4 entries, got %d", len(history))
	}

	want := []struct {
		position int
		outcome  Outcome
		errors   int
	}{
		{0, OutcomeSelected, 0},
		{2, OutcomeMismatched, 1},
		{1, OutcomeSelected, 1},
		{5, OutcomeMatched, 1},
	}
	for i, w := range want {
		entry := history[i]
		if entry.Sequence != i+1 || entry.Position != w.position || entry.Outcome != w.outcome || entry.ErrorCount != w.errors {
			t.Errorf("Entry %d: expected %+v, got %+v", i, w, entry)
		}
	}
	if history[3].Timestamp != testEpoch.Add(3*time.Second).UnixMilli() {
		t.Errorf("Unexpected timestamp %d", history[3].Timestamp)
	}
}
