package bot

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// board builds a snapshot from one visibility code per position:
// "." face down, "-" hidden, anything else a face-up face
func board(state engine.State, cells ...string) *engine.Snapshot {
	snap := &engine.Snapshot{
		Status:  engine.Status{State: state},
		Columns: engine.GridColumns,
	}
	for i, cell := range cells {
		view := engine.CardView{Position: i}
		switch cell {
		case ".":
			view.Visibility = engine.FaceDown
		case "-":
			view.Visibility = engine.Hidden
		default:
			view.Visibility = engine.FaceUp
			view.Face = cell
			snap.Status.Selected++
		}
		snap.Cards = append(snap.Cards, view)
	}
	return snap
}

func TestMemoryStrategy_TurnsUnseenCardsInOrder(t *testing.T) {
	s := NewMemoryStrategy()

	b := board(engine.StatePlaying, ".", ".", ".", ".")
	assert.Equal(t, 0, s.Next(b))

	b = board(engine.StatePlaying, "A", ".", ".", ".")
	s.Observe(b)
	assert.Equal(t, 1, s.Next(b))
}

func TestMemoryStrategy_PlaysRememberedPartner(t *testing.T) {
	s := NewMemoryStrategy()

	// A at 0 and B at 1 seen, then hidden again after the mismatch
	s.Observe(board(engine.StateLocked, "A", "B", ".", "."))
	// A turns up at 2: its partner is 0
	b := board(engine.StatePlaying, ".", ".", "A", ".")
	s.Observe(b)

	assert.Equal(t, 0, s.Next(b))
}

func TestMemoryStrategy_PlaysKnownPairFirst(t *testing.T) {
	s := NewMemoryStrategy()

	s.Observe(board(engine.StateLocked, "A", "B", ".", "."))
	s.Observe(board(engine.StateLocked, ".", ".", "C", "B"))

	b := board(engine.StatePlaying, ".", ".", ".", ".")
	assert.Equal(t, 1, s.Next(b), "B is known at 1 and 3")
}

func TestMemoryStrategy_ForgetsSolvedCards(t *testing.T) {
	s := NewMemoryStrategy()

	s.Observe(board(engine.StatePlaying, "A", ".", ".", "."))
	s.Observe(board(engine.StatePlaying, "-", ".", ".", "-"))

	_, known := s.known[0]
	assert.False(t, known)
	assert.Equal(t, 1, s.Next(board(engine.StatePlaying, "-", ".", ".", "-")))
}

func TestMemoryStrategy_SkipsFailedPairs(t *testing.T) {
	s := NewMemoryStrategy()

	// Two identities share face A and mismatched
	s.Observe(board(engine.StateLocked, "A", "A", ".", "."))

	b := board(engine.StatePlaying, "A", ".", ".", ".")
	s.Observe(b)
	assert.Equal(t, 2, s.Next(b))
}

func TestMemoryStrategy_NothingWhileLocked(t *testing.T) {
	s := NewMemoryStrategy()

	assert.Equal(t, -1, s.Next(board(engine.StateLocked, "A", "B", ".", ".")))
	assert.Equal(t, -1, s.Next(board(engine.StateFinished, "-", "-")))
	assert.Equal(t, -1, s.Next(nil))
}

func TestMemoryStrategy_FallbackAvoidsFailedPairs(t *testing.T) {
	s := NewMemoryStrategy()

	// Two identities share face X; 0 has mismatched with 1 and with 2
	s.Observe(board(engine.StateLocked, "X", "X", ".", "."))
	s.Observe(board(engine.StateLocked, "X", ".", "Y", "."))
	s.Observe(board(engine.StateLocked, ".", ".", "Y", "Z"))

	b := board(engine.StatePlaying, "X", ".", ".", ".")
	s.Observe(b)
	assert.Equal(t, 3, s.Next(b))

	// With every candidate failed the strategy still picks a card
	s.failed[pairKey(0, 3)] = true
	assert.Equal(t, 1, s.Next(b))
}
