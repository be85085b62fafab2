// Package api provides the HTTP surface of the memory game server.
//
// Endpoints:
//
// Sessions:
//   - POST /api/sessions - Start a game {"difficulty": "easy|medium|hard", "card_set": "classic"}
//   - GET /api/sessions - List sessions (sort=accessed|created, order=asc|desc, limit=N)
//   - GET /api/sessions/{id} - Get a session
//   - DELETE /api/sessions/{id} - End a session and cancel its timers
//
// Game Operations:
//   - GET /api/sessions/{id}/board - Visible cards and status
//   - POST /api/sessions/{id}/select - Select a card {"position": 3}
//   - POST /api/sessions/{id}/restart - Deal again at the same difficulty
//   - GET /api/sessions/{id}/result - Final result, 409 until the game is finished
//   - GET /api/sessions/{id}/history - Selection history (page, limit, order)
//
// Card Sets:
//   - GET /api/card-sets - List card sets
//   - GET /api/card-sets/{name} - Get a card set
//   - POST /api/card-sets - Save a card set {"name", "description", "cards": [{"key", "value"}]}
//
// Pages:
//   - GET / - Redirects to /start
//   - GET /start - Difficulty selection
//   - GET /game?difficulty=easy - Starts a game and redirects to /game/{id}
//   - GET /game/{id} - Playable board
//
// Other:
//   - GET /api/instructions - Rules as markdown, or HTML with ?format=html
//   - GET /healthz - Health check
//   - GET /ws?session={id} - WebSocket feed of board changes
//
// Error Handling:
//
// Errors are returned as JSON:
//
//	{"error": "session zz99: session not found"}
//
// Unknown sessions and card sets map to 404, invalid requests and card sets
// to 400, and operations that conflict with the game state (result before
// the end, restarting a closed session) to 409. A rejected selection is not
// an error: it returns 200 with "accepted": false.
package api
