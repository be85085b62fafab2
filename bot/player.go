package bot

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

var ErrNoMoves = errors.New("no selectable card")

// Player drives one session to completion
type Player struct {
	client        *Client
	strategy      *MemoryStrategy
	pollInterval  time.Duration
	maxSelections int
	verbose       bool
}

// PlayerOption configures a Player
type PlayerOption func(*Player)

// WithPollInterval sets how often a locked board is re-read
func WithPollInterval(d time.Duration) PlayerOption {
	return func(p *Player) { p.pollInterval = d }
}

// WithMaxSelections bounds the selections spent on one game
func WithMaxSelections(n int) PlayerOption {
	return func(p *Player) { p.maxSelections = n }
}

// WithVerbose logs every selection
func WithVerbose(v bool) PlayerOption {
	return func(p *Player) { p.verbose = v }
}

func NewPlayer(client *Client, opts ...PlayerOption) *Player {
	p := &Player{
		client:        client,
		strategy:      NewMemoryStrategy(),
		pollInterval:  250 * time.Millisecond,
		maxSelections: 500,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Play selects cards until the game on board is finished and returns its
// result
func (p *Player) Play(ctx context.Context, board *engine.Snapshot) (*service.ResultInfo, error) {
	if board == nil {
		var err error
		if board, err = p.client.Board(ctx); err != nil {
			return nil, err
		}
	}

	p.strategy.Reset()
	p.strategy.Observe(board)

	for selections := 0; ; {
		switch board.Status.State {
		case engine.StateFinished:
			return p.client.Result(ctx)

		case engine.StateLocked:
			if err := sleep(ctx, p.pollInterval); err != nil {
				return nil, err
			}
			next, err := p.client.Board(ctx)
			if err != nil {
				return nil, err
			}
			board = next
			p.strategy.Observe(board)
			continue

		case engine.StatePlaying:
		default:
			return nil, fmt.Errorf("session %s is %s", p.client.SessionID(), board.Status.State)
		}

		if selections >= p.maxSelections {
			return nil, fmt.Errorf("gave up after %d selections", selections)
		}

		position := p.strategy.Next(board)
		if position < 0 {
			return nil, ErrNoMoves
		}

		result, err := p.client.Select(ctx, position)
		if err != nil {
			return nil, err
		}
		selections++

		if p.verbose {
			log.Printf("[AUTOPLAY] session=%s position=%d outcome=%s errors=%d solved=%d/%d",
				p.client.SessionID(), position, result.Outcome,
				result.Board.Status.ErrorCount, result.Board.Status.PairsSolved, result.Board.Status.PairsTotal)
		}

		board = result.Board
		p.strategy.Observe(board)
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
