package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// Run plays one local game in the terminal until the player quits or ctx
// is cancelled. The engine is closed on return.
func Run(ctx context.Context, cards *engine.CardSet, difficulty engine.Difficulty, opts ...engine.Option) error {
	bridge := NewChangeBridge(64)

	opts = append(opts, engine.WithListener(bridge.HandleChange))
	eng, err := engine.NewEngine(cards, opts...)
	if err != nil {
		return err
	}
	defer eng.Close()

	if err := eng.StartGame(difficulty); err != nil {
		return err
	}

	p := tea.NewProgram(NewModel(eng, bridge.Changes()), tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) {
			return nil
		}
		return fmt.Errorf("terminal client: %w", err)
	}
	return nil
}
