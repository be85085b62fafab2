package bot

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

// Client talks to the REST API on behalf of one session
type Client struct {
	baseURL   string
	sessionID string
	client    *http.Client
}

func NewClient(baseURL string) *Client {
	return &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// SessionID returns the session the client is playing
func (c *Client) SessionID() string {
	return c.sessionID
}

// UseSession points the client at an existing session
func (c *Client) UseSession(id string) {
	c.sessionID = id
}

// CreateSession starts a game and remembers its ID
func (c *Client) CreateSession(ctx context.Context, difficulty, cardSet string) (*engine.Snapshot, error) {
	req := service.CreateSessionRequest{Difficulty: difficulty, CardSet: cardSet}

	var session service.SessionInfo
	if err := c.do(ctx, http.MethodPost, "/api/sessions", req, &session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}

	c.sessionID = session.ID
	return session.Board, nil
}

func (c *Client) Board(ctx context.Context) (*engine.Snapshot, error) {
	var board engine.Snapshot
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/board"), nil, &board); err != nil {
		return nil, fmt.Errorf("get board: %w", err)
	}
	return &board, nil
}

func (c *Client) Select(ctx context.Context, position int) (*service.SelectionResult, error) {
	var result service.SelectionResult
	body := map[string]int{"position": position}
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/select"), body, &result); err != nil {
		return nil, fmt.Errorf("select %d: %w", position, err)
	}
	return &result, nil
}

type restartResponse struct {
	Message string           `json:"message"`
	Board   *engine.Snapshot `json:"board"`
}

func (c *Client) Restart(ctx context.Context) (*engine.Snapshot, error) {
	var resp restartResponse
	if err := c.do(ctx, http.MethodPost, c.sessionPath("/restart"), nil, &resp); err != nil {
		return nil, fmt.Errorf("restart: %w", err)
	}
	return resp.Board, nil
}

func (c *Client) Result(ctx context.Context) (*service.ResultInfo, error) {
	var result service.ResultInfo
	if err := c.do(ctx, http.MethodGet, c.sessionPath("/result"), nil, &result); err != nil {
		return nil, fmt.Errorf("get result: %w", err)
	}
	return &result, nil
}

func (c *Client) sessionPath(suffix string) string {
	return "/api/sessions/" + url.PathEscape(c.sessionID) + suffix
}

func (c *Client) do(ctx context.Context, method, path string, body, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 400 {
		var errResp map[string]string
		if json.Unmarshal(data, &errResp) == nil && errResp["error"] != "" {
			return fmt.Errorf("%s - %s", resp.Status, errResp["error"])
		}
		return fmt.Errorf("%s - %s", resp.Status, string(data))
	}

	if result == nil {
		return nil
	}
	if err := json.Unmarshal(data, result); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	return nil
}
