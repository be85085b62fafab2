// Package mcp exposes the memory game to MCP clients.
//
// The Client is a thin proxy: every tool call becomes a request against the
// REST API, so the same sessions are visible to the web pages, WebSocket
// subscribers and MCP agents. Results are rendered as plain text, with the
// board drawn as a grid of positions where face-down cards read FLIP and
// solved cards read --.
//
// Tools:
//   - create_session, list_sessions, get_session, delete_session
//   - board, select_card, restart_game
//   - game_result, selection_history
//   - list_card_sets, game_instructions
//
// The server can be served over stdio (server.ServeStdio) or mounted on an
// HTTP mux with HTTPHandler, which answers one JSON-RPC message per POST.
package mcp
