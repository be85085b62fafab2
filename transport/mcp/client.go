package mcp

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

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

// Client is a thin MCP client that proxies to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Memory Match",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Memory Match - MCP Interface

This is a thin client that proxies all requests to the REST API server.

GAME OBJECTIVE:
Find every pair of matching cards. Cards are dealt face down in rows of four.
A mismatch costs one error and locks the board for three seconds.

AVAILABLE TOOLS:
- create_session: Start a game (easy=4, medium=6, hard=8 pairs)
- list_sessions / get_session / delete_session: Manage games
- board: Show the board; face-down cards are FLIP, solved pairs are --
- select_card: Turn a card face up by position
- restart_game: Deal again at the same difficulty
- game_result: Time and errors of a finished game
- selection_history: Past selections
- list_card_sets: Available card sets
- game_instructions: Full rules`),
	)

	c.registerTools()
}

func sessionIDProperty() map[string]interface{} {
	return map[string]interface{}{
		"type":        "string",
		"description": "Session ID",
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	// Session management
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "create_session",
		Description: "Start a new game with an optional difficulty and card set",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"difficulty": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"easy", "medium", "hard"},
					"description": "Number of pairs: easy 4, medium 6, hard 8 (default easy)",
				},
				"card_set": map[string]interface{}{
					"type":        "string",
					"description": "Card set ID to deal from (optional)",
				},
			},
		},
	}, c.handleCreateSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all active game sessions",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get details of a specific session",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "delete_session",
		Description: "End a session and discard its game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleDeleteSession)

	// Game operations
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board",
		Description: "Show the board, elapsed time and error count",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleBoard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "select_card",
		Description: "Turn the card at a position face up",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"position": map[string]interface{}{
					"type":        "integer",
					"minimum":     0,
					"description": "Zero-based card position, row by row",
				},
			},
			Required: []string{"session_id", "position"},
		},
	}, c.handleSelectCard)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "restart_game",
		Description: "Deal a new game at the same difficulty",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleRestart)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_result",
		Description: "Get the time and errors of a finished game",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
			},
			Required: []string{"session_id"},
		},
	}, c.handleGameResult)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "selection_history",
		Description: "Get paginated selection history",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]interface{}{
				"session_id": sessionIDProperty(),
				"page": map[string]interface{}{
					"type":        "integer",
					"description": "Page number (default 1)",
				},
				"limit": map[string]interface{}{
					"type":        "integer",
					"description": "Selections per page (default 20, max 100)",
				},
				"order": map[string]interface{}{
					"type":        "string",
					"enum":        []string{"asc", "desc"},
					"description": "Oldest or newest first (default desc)",
				},
			},
			Required: []string{"session_id"},
		},
	}, c.handleSelectionHistory)

	// Card sets and help
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_card_sets",
		Description: "List available card sets",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleListCardSets)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "game_instructions",
		Description: "Get the rules of the game",
		InputSchema: mcp.ToolInputSchema{
			Type:       "object",
			Properties: map[string]interface{}{},
		},
	}, c.handleGameInstructions)
}

// GetMCPServer returns the underlying MCP server
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// HTTPHandler serves single JSON-RPC messages over POST
func (c *Client) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// Notifications have no response
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})
}

// apiCall performs a REST request and decodes the JSON response into result
func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result == nil {
		return nil
	}
	if s, ok := result.(*string); ok {
		data, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		*s = string(data)
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(result)
}

func sessionPath(sessionID, suffix string) string {
	return "/api/sessions/" + url.PathEscape(sessionID) + suffix
}

// intArg reads an integer argument; JSON numbers arrive as float64
func intArg(args map[string]interface{}, key string) (int, bool) {
	switch v := args[key].(type) {
	case float64:
		return int(v), true
	case int:
		return v, true
	case json.Number:
		n, err := v.Int64()
		return int(n), err == nil
	default:
		return 0, false
	}
}

func (c *Client) handleCreateSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	difficulty, _ := args["difficulty"].(string)
	cardSet, _ := args["card_set"].(string)

	body := service.CreateSessionRequest{
		Difficulty: difficulty,
		CardSet:    cardSet,
	}

	var session service.SessionInfo
	if err := c.apiCall(ctx, "POST", "/api/sessions", body, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("Created session: %s\n%s", session.ID, formatSessionInfo(&session))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Active Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		state := engine.State("")
		if s.Board != nil {
			state = s.Board.Status.State
		}
		fmt.Fprintf(&b, "- %s (%s, card set: %s, %s, created %s)\n",
			s.ID, s.Difficulty, s.CardSet, state, s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var session service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &session); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&session)), nil
}

func (c *Client) handleDeleteSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var response map[string]string
	if err := c.apiCall(ctx, "DELETE", sessionPath(sessionID, ""), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(response["message"]), nil
}

func (c *Client) handleBoard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var board engine.Snapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/board"), nil, &board); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoard(&board)), nil
}

func (c *Client) handleSelectCard(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)
	position, ok := intArg(args, "position")
	if !ok {
		return mcp.NewToolResultError("position must be an integer"), nil
	}

	body := map[string]int{"position": position}

	var result service.SelectionResult
	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/select"), body, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSelectionResult(&result)), nil
}

func (c *Client) handleRestart(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var response struct {
		Message string           `json:"message"`
		Board   *engine.Snapshot `json:"board"`
	}

	if err := c.apiCall(ctx, "POST", sessionPath(sessionID, "/restart"), nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	result := fmt.Sprintf("%s\n\n%s", response.Message, formatBoard(response.Board))
	return mcp.NewToolResultText(result), nil
}

func (c *Client) handleGameResult(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, _ := request.GetArguments()["session_id"].(string)

	var result service.ResultInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/result"), nil, &result); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("🎉 %s", result.Summary)), nil
}

func (c *Client) handleSelectionHistory(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := request.GetArguments()
	sessionID, _ := args["session_id"].(string)

	params := url.Values{}
	if page, ok := intArg(args, "page"); ok {
		params.Set("page", fmt.Sprint(page))
	}
	if limit, ok := intArg(args, "limit"); ok {
		params.Set("limit", fmt.Sprint(limit))
	}
	if order, ok := args["order"].(string); ok && order != "" {
		params.Set("order", order)
	}

	path := sessionPath(sessionID, "/history")
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var history service.HistoryResponse
	if err := c.apiCall(ctx, "GET", path, nil, &history); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatHistory(&history)), nil
}

func (c *Client) handleListCardSets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var sets []service.CardSetInfo
	if err := c.apiCall(ctx, "GET", "/api/card-sets", nil, &sets); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	b.WriteString("Available Card Sets:\n\n")
	for _, set := range sets {
		fmt.Fprintf(&b, "• %s (%s)\n  %s\n  Cards: %d\n\n", set.CardSetID, set.Name, set.Description, set.CardCount)
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGameInstructions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var instructions string
	if err := c.apiCall(ctx, "GET", "/api/instructions", nil, &instructions); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	instructions += `
## Tool Tips

- Positions count from 0, left to right and then top to bottom, four per row.
- After a mismatch, wait three seconds (call board again) before selecting.
- Remember every face you have seen: selection_history lists them all.
`
	return mcp.NewToolResultText(instructions), nil
}

func formatSessionInfo(session *service.SessionInfo) string {
	return fmt.Sprintf("Session: %s\nDifficulty: %s\nCard set: %s\nCreated: %s\n\n%s",
		session.ID, session.Difficulty, session.CardSet,
		session.CreatedAt.Format("2006-01-02 15:04:05"),
		formatBoard(session.Board))
}

// formatBoard renders the board as a grid of positions. Face-down cards
// show FLIP and solved cards show --.
func formatBoard(board *engine.Snapshot) string {
	if board == nil {
		return "No board available"
	}

	var b strings.Builder
	status := board.Status
	fmt.Fprintf(&b, "Difficulty: %s | State: %s | Time: %s | Errors: %d | Pairs: %d/%d\n\n",
		status.Difficulty, status.State, status.ElapsedText, status.ErrorCount, status.PairsSolved, status.PairsTotal)

	columns := board.Columns
	if columns <= 0 {
		columns = engine.GridColumns
	}
	for i, card := range board.Cards {
		var label string
		switch card.Visibility {
		case engine.Hidden:
			label = "--"
		case engine.FaceUp:
			label = card.Face
		default:
			label = "FLIP"
		}
		fmt.Fprintf(&b, "%2d:%-6s", card.Position, label)
		if (i+1)%columns == 0 {
			b.WriteString("\n")
		}
	}

	switch status.State {
	case engine.StateLocked:
		b.WriteString("\n🔒 Mismatch: cards turn back shortly, selections are ignored until then\n")
	case engine.StateFinished:
		b.WriteString("\n🎉 All pairs found!\n")
	}
	return b.String()
}

func formatSelectionResult(result *service.SelectionResult) string {
	var b strings.Builder
	if result.Accepted {
		fmt.Fprintf(&b, "✓ %s\n", result.Message)
	} else {
		fmt.Fprintf(&b, "✗ %s\n", result.Message)
	}
	if result.Result != nil {
		fmt.Fprintf(&b, "\n🎉 %s\n", result.Result.Summary)
	}
	b.WriteString("\n")
	b.WriteString(formatBoard(result.Board))
	return b.String()
}

func formatHistory(history *service.HistoryResponse) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Selection History (Page %d/%d), Total: %d\n\n",
		history.Page, history.TotalPages, history.TotalSelections)

	for _, entry := range history.Selections {
		fmt.Fprintf(&b, "%d. card %d = %s → %s [Errors: %d]\n",
			entry.Sequence, entry.Position, entry.Face, entry.Outcome, entry.ErrorCount)
	}

	return b.String()
}
