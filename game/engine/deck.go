package engine

import (
	"fmt"
	"math/rand"
)

// ShuffleFunc permutes a deck in place
type ShuffleFunc func(deck []Card)

// RandomShuffle returns a Fisher-Yates shuffle driven by r. A nil r uses the
// math/rand global source.
func RandomShuffle(r *rand.Rand) ShuffleFunc {
	return func(deck []Card) {
		swap := func(i, j int) { deck[i], deck[j] = deck[j], deck[i] }
		if r == nil {
			rand.Shuffle(len(deck), swap)
			return
		}
		r.Shuffle(len(deck), swap)
	}
}

// NoShuffle leaves the deck in dealing order: the first K cards followed by
// the same K cards again.
func NoShuffle(deck []Card) {}

// BuildDeck takes the first Pairs() cards of set, duplicates them and
// shuffles the result.
func BuildDeck(set *CardSet, difficulty Difficulty, shuffle ShuffleFunc) ([]Card, error) {
	pairs := difficulty.Pairs()
	if pairs == 0 {
		return nil, fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfiguration, difficulty)
	}
	if set == nil || len(set.Cards) < pairs {
		return nil, fmt.Errorf("%w: card set cannot deal %d pairs", ErrInvalidConfiguration, pairs)
	}

	base := set.Cards[:pairs]
	deck := make([]Card, 0, pairs*2)
	deck = append(deck, base...)
	deck = append(deck, base...)

	if shuffle != nil {
		shuffle(deck)
	}
	return deck, nil
}

// CountIdentities returns how many times each identity appears in deck
func CountIdentities(deck []Card) map[string]int {
	counts := make(map[string]int, len(deck)/2)
	for _, card := range deck {
		counts[card.Identity]++
	}
	return counts
}
