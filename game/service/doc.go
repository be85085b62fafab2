// Package service provides the business logic layer for the memory match game.
//
// The service package implements:
//   - Multi-session game management
//   - Card set selection and storage
//   - Card selection with event reporting
//   - Selection history pagination
//
// Core Interfaces:
//
// GameService is the main service interface providing high-level game operations.
// SessionManager handles session creation, retrieval, and teardown.
// ConfigManager loads and stores card sets.
//
// Architecture:
//
// The service layer sits between the transport layer (HTTP/WebSocket/MCP) and
// the game engine. Each session owns its own engine, and with it the tick and
// lockout timers, so sessions never share mutable state.
//
// Usage:
//
//	sessionMgr := session.NewManager()
//	configMgr, _ := config.NewManager("cardsets")
//	gameService := service.NewGameService(sessionMgr, configMgr)
//
//	info, err := gameService.CreateSession(ctx, service.CreateSessionRequest{Difficulty: "medium"})
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	result, err := gameService.SelectCard(ctx, info.ID, 3)
package service
