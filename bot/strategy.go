package bot

import (
	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// MemoryStrategy picks cards with perfect recall: every face it has seen is
// remembered by position, known pairs are played first, and unseen cards
// are turned in position order otherwise.
//
// Only faces are visible, so two identities sharing a face look like a pair.
// A pair that turns out to mismatch is never tried again.
type MemoryStrategy struct {
	known  map[int]string
	failed map[[2]int]bool
}

func NewMemoryStrategy() *MemoryStrategy {
	s := &MemoryStrategy{}
	s.Reset()
	return s
}

// Reset forgets everything, for a newly dealt deck
func (s *MemoryStrategy) Reset() {
	s.known = make(map[int]string)
	s.failed = make(map[[2]int]bool)
}

// Observe records the faces visible on board and forgets solved cards
func (s *MemoryStrategy) Observe(board *engine.Snapshot) {
	if board == nil {
		return
	}

	var up []int
	for _, card := range board.Cards {
		switch card.Visibility {
		case engine.FaceUp:
			s.known[card.Position] = card.Face
			up = append(up, card.Position)
		case engine.Hidden:
			delete(s.known, card.Position)
		}
	}

	if board.Status.State == engine.StateLocked && len(up) == 2 {
		s.failed[pairKey(up[0], up[1])] = true
	}
}

// Next returns the position to select on board, or -1 when nothing is
// selectable
func (s *MemoryStrategy) Next(board *engine.Snapshot) int {
	if board == nil || board.Status.State != engine.StatePlaying {
		return -1
	}

	first := -1
	for _, card := range board.Cards {
		if card.Visibility == engine.FaceUp {
			first = card.Position
			break
		}
	}

	if first >= 0 {
		if match := s.partnerOf(board, first); match >= 0 {
			return match
		}
		return s.unseen(board, first)
	}

	if pos := s.knownPair(board); pos >= 0 {
		return pos
	}
	return s.unseen(board, -1)
}

// partnerOf returns a face-down position remembered with the same face as pos
func (s *MemoryStrategy) partnerOf(board *engine.Snapshot, pos int) int {
	face := s.known[pos]
	for _, card := range board.Cards {
		if card.Position == pos || card.Visibility != engine.FaceDown {
			continue
		}
		if s.known[card.Position] == face && !s.failed[pairKey(pos, card.Position)] {
			return card.Position
		}
	}
	return -1
}

// knownPair returns the first card of a remembered pair that is still in play
func (s *MemoryStrategy) knownPair(board *engine.Snapshot) int {
	for _, card := range board.Cards {
		if card.Visibility != engine.FaceDown {
			continue
		}
		if _, ok := s.known[card.Position]; !ok {
			continue
		}
		if s.partnerOf(board, card.Position) >= 0 {
			return card.Position
		}
	}
	return -1
}

// unseen returns the first face-down card whose face is unknown. When every
// card has been seen it falls back to a face-down card other than skip,
// preferring one that has not already mismatched with skip.
func (s *MemoryStrategy) unseen(board *engine.Snapshot, skip int) int {
	fallback, lastResort := -1, -1
	for _, card := range board.Cards {
		if card.Position == skip || card.Visibility != engine.FaceDown {
			continue
		}
		if _, ok := s.known[card.Position]; !ok {
			return card.Position
		}
		if skip >= 0 && s.failed[pairKey(skip, card.Position)] {
			if lastResort < 0 {
				lastResort = card.Position
			}
			continue
		}
		if fallback < 0 {
			fallback = card.Position
		}
	}
	if fallback < 0 {
		return lastResort
	}
	return fallback
}

func pairKey(a, b int) [2]int {
	if a > b {
		a, b = b, a
	}
	return [2]int{a, b}
}
