package tui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// Model is the Bubble Tea model for a single local game.
type Model struct {
	engine  *engine.GameEngine
	changes <-chan engine.Change

	board    engine.Snapshot
	cursor   int
	result   *engine.GameResult
	message  string
	quitting bool
}

// NewModel wraps an engine whose changes are delivered on changes. The game
// should already be started.
func NewModel(eng *engine.GameEngine, changes <-chan engine.Change) Model {
	m := Model{
		engine:  eng,
		changes: changes,
	}
	m.refresh()
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return WaitForChangeCmd(m.changes)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ChangeMsg:
		m.refresh()
		if msg.Change.Kind == engine.ChangeClosed {
			return m, nil
		}
		return m, WaitForChangeCmd(m.changes)

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	columns := m.columns()

	switch msg.String() {
	case "q", "esc", "ctrl+c":
		m.engine.Close()
		m.quitting = true
		return m, tea.Quit

	case "left", "h":
		if m.cursor%columns > 0 {
			m.cursor--
		}
	case "right", "l":
		if m.cursor%columns < columns-1 && m.cursor+1 < len(m.board.Cards) {
			m.cursor++
		}
	case "up", "k":
		if m.cursor-columns >= 0 {
			m.cursor -= columns
		}
	case "down", "j":
		if m.cursor+columns < len(m.board.Cards) {
			m.cursor += columns
		}

	case "enter", " ":
		res := m.engine.SelectCard(m.cursor)
		m.message = selectionMessage(res, m.cursor)
		m.refresh()

	case "r":
		if err := m.engine.Restart(); err != nil {
			m.message = fmt.Sprintf("Restart failed: %v", err)
			break
		}
		m.cursor = 0
		m.message = "New game dealt"
		m.refresh()
	}

	return m, nil
}

// refresh re-reads the board and, once finished, the result
func (m *Model) refresh() {
	m.board = m.engine.GetSnapshot()
	m.result = nil
	if res, err := m.engine.GetResult(); err == nil {
		m.result = &res
	}
	if m.cursor >= len(m.board.Cards) {
		m.cursor = 0
	}
}

func (m Model) columns() int {
	if m.board.Columns > 0 {
		return m.board.Columns
	}
	return engine.GridColumns
}

func selectionMessage(res engine.SelectResult, position int) string {
	switch res.Outcome {
	case engine.OutcomeSelected:
		return fmt.Sprintf("Card %d turned face up", position)
	case engine.OutcomeMatched:
		return "Pair found!"
	case engine.OutcomeMismatched:
		return "No match"
	default:
		return ""
	}
}

// View implements tea.Model.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	status := m.board.Status
	var b strings.Builder

	b.WriteString(TitleStyle.Render("Memory Match"))
	b.WriteString("\n")
	b.WriteString(StatusStyle.Render(fmt.Sprintf("%s  Time %s  Errors %d  Pairs %d/%d",
		status.Difficulty, status.ElapsedText, status.ErrorCount, status.PairsSolved, status.PairsTotal)))
	b.WriteString("\n")
	b.WriteString(m.renderGrid())
	b.WriteString("\n")

	switch {
	case m.result != nil:
		b.WriteString(CompletedStyle.Render(m.result.Summary()))
	case status.State == engine.StateLocked:
		b.WriteString(LockedStyle.Render("No match. Cards turn back shortly."))
	default:
		b.WriteString(m.message)
	}
	b.WriteString("\n\n")
	b.WriteString(HelpStyle.Render("arrows move • enter select • r restart • q quit"))
	b.WriteString("\n")

	return b.String()
}

func (m Model) renderGrid() string {
	columns := m.columns()
	var rows []string
	for start := 0; start < len(m.board.Cards); start += columns {
		end := start + columns
		if end > len(m.board.Cards) {
			end = len(m.board.Cards)
		}

		cells := make([]string, 0, columns)
		for _, card := range m.board.Cards[start:end] {
			style := CardStyle
			if card.Position == m.cursor {
				style = CursorCardStyle
			}
			cells = append(cells, style.Render(cardLabel(card)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}

func cardLabel(card engine.CardView) string {
	switch card.Visibility {
	case engine.FaceUp:
		return FaceUpStyle.Render(card.Face)
	case engine.Hidden:
		return " "
	default:
		return FlipStyle.Render("FLIP")
	}
}
