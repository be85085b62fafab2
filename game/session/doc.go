// Package session provides session management for the memory match game.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Unique session ID generation
//   - Teardown of each session's engine timers
//   - Session cleanup and expiration
//
// Core Types:
//
// Manager is the main session manager that handles all session operations.
// Each session owns a running engine; deleting or expiring the session closes
// the engine so no tick or lockout fires afterwards.
//
// Session Identifiers:
//
// Sessions use 4-character hexadecimal IDs for easy reference. Lookups are
// case-insensitive and generation retries on collision.
//
// Usage:
//
//	manager := session.NewManager(session.WithChangeHook(func(id string, c engine.Change) {
//		hub.BroadcastToSession(id, c)
//	}))
//
//	sess, err := manager.Create("", engine.Medium, "classic", engine.ClassicCardSet())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer manager.Delete(sess.ID)
package session
