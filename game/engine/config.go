package engine

import (
	"fmt"
	"strings"
)

// ValidateCardSet checks that a card set can deal every difficulty
func ValidateCardSet(set *CardSet) error {
	if set == nil {
		return fmt.Errorf("%w: card set is nil", ErrInvalidConfiguration)
	}
	if strings.TrimSpace(set.Name) == "" {
		return fmt.Errorf("%w: card set name is required", ErrInvalidConfiguration)
	}
	if len(set.Cards) < MinCardSetSize || len(set.Cards) > MaxCardSetSize {
		return fmt.Errorf("%w: card set %q must have between %d and %d cards, got %d",
			ErrInvalidConfiguration, set.Name, MinCardSetSize, MaxCardSetSize, len(set.Cards))
	}
	return validateCards(set.Cards)
}

func validateCards(cards []Card) error {
	seen := make(map[string]int, len(cards))
	for i, card := range cards {
		if strings.TrimSpace(card.Identity) == "" {
			return fmt.Errorf("%w: card %d has an empty key", ErrInvalidConfiguration, i+1)
		}
		if strings.TrimSpace(card.Face) == "" {
			return fmt.Errorf("%w: card %d (%s) has an empty value", ErrInvalidConfiguration, i+1, card.Identity)
		}
		if prev, dup := seen[card.Identity]; dup {
			return fmt.Errorf("%w: card %d repeats key %q from card %d", ErrInvalidConfiguration, i+1, card.Identity, prev)
		}
		seen[card.Identity] = i + 1
	}
	return nil
}

// ValidateRules checks that both timers have a positive period
func ValidateRules(rules Rules) error {
	if rules.LockoutDelay <= 0 {
		return fmt.Errorf("%w: lockout delay must be positive, got %s", ErrInvalidConfiguration, rules.LockoutDelay)
	}
	if rules.TickInterval <= 0 {
		return fmt.Errorf("%w: tick interval must be positive, got %s", ErrInvalidConfiguration, rules.TickInterval)
	}
	return nil
}

// ClassicCardSet returns the built-in card set used when no other set is chosen
func ClassicCardSet() *CardSet {
	return &CardSet{
		Name:        "classic",
		Description: "Eight fruit cards, enough for every difficulty",
		Cards: []Card{
			{Identity: "apple", Face: "🍎"},
			{Identity: "banana", Face: "🍌"},
			{Identity: "cherry", Face: "🍒"},
			{Identity: "grapes", Face: "🍇"},
			{Identity: "lemon", Face: "🍋"},
			{Identity: "peach", Face: "🍑"},
			{Identity: "pear", Face: "🍐"},
			{Identity: "strawberry", Face: "🍓"},
		},
	}
}
