// Package websocket pushes live board updates to browsers watching a game
// session.
//
// A central Hub tracks the clients of each session. Each connection gets a
// write pump that drains its send queue and pings the peer, and a read pump
// that only keeps the connection alive: clients act through the REST API,
// never through the socket.
//
// Message Protocol:
//
// Every engine change is sent as JSON:
//
//	{"session_id": "ab12", "event": "mismatched", "board": {"status": {...}, "cards": [...], "columns": 4}, "version": 12}
//
// event is the change kind (started, selected, matched, mismatched,
// unlocked, tick, finished, closed). Face-down cards carry no face, so the
// socket never leaks unrevealed cards. version grows with every change of the
// session's engine; the hub never sends a board older than one already sent.
// Sessions without watchers are not broadcast at all.
//
// The REST API adds a "selection" event after each accepted selection, with
// the human-readable game events as data:
//
//	{"session_id": "ab12", "event": "selection", "data": [{"id": "01J...", "type": "mismatch", "message": "..."}]}
//
// Usage:
//
//	hub := websocket.NewHub()
//	go hub.Run(ctx)
//
//	sessions := session.NewManager(session.WithChangeHook(hub.BroadcastToSession))
//
//	router.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
//		hub.ServeWS(w, r, r.URL.Query().Get("session"))
//	})
package websocket
