package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// ChangeMsg carries an engine change into the Bubble Tea message loop.
type ChangeMsg struct {
	Change engine.Change
}

// ChangeBridge buffers engine changes for the TUI. The engine calls
// HandleChange from its timer goroutines, so it never blocks: when the
// buffer is full the change is dropped. The model re-reads the engine on
// every message, so a dropped tick only delays a redraw.
type ChangeBridge struct {
	changes chan engine.Change
}

// NewChangeBridge creates a bridge holding up to buffer pending changes.
func NewChangeBridge(buffer int) *ChangeBridge {
	return &ChangeBridge{changes: make(chan engine.Change, buffer)}
}

// HandleChange matches the engine.WithListener callback signature.
func (b *ChangeBridge) HandleChange(change engine.Change) {
	select {
	case b.changes <- change:
	default:
	}
}

// Changes returns the receive side of the bridge.
func (b *ChangeBridge) Changes() <-chan engine.Change {
	return b.changes
}

// WaitForChangeCmd blocks on ch and delivers the next change as a ChangeMsg.
func WaitForChangeCmd(ch <-chan engine.Change) tea.Cmd {
	return func() tea.Msg {
		change, ok := <-ch
		if !ok {
			return nil
		}
		return ChangeMsg{Change: change}
	}
}
