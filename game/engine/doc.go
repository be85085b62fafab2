// Package engine provides the core game logic for the memory match game.
//
// The engine package implements the game mechanics including:
//   - Dealing a shuffled deck of pairs for a difficulty
//   - Card selection and pair evaluation
//   - The lockout after a mismatch
//   - The elapsed-time clock and completion detection
//
// Core Types:
//
// The Engine interface defines the main contract for game operations,
// implemented by GameEngine. CardSet is the base dataset a deck is dealt
// from; Snapshot is the read-only view handed to presentation layers.
//
// Usage:
//
//	gameEngine, err := engine.NewEngine(engine.ClassicCardSet())
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer gameEngine.Close()
//
//	if err := gameEngine.StartGame(engine.Medium); err != nil {
//		log.Fatal(err)
//	}
//	result := gameEngine.SelectCard(3)
//	status := gameEngine.GetStatus()
//
// Game Rules:
//
// Easy, medium and hard deal 4, 6 and 8 pairs. Two face-up cards with the
// same key are solved and leave play. A mismatch costs one error and keeps
// both cards face up for three seconds, during which no card can be
// selected. The game finishes when every pair is solved; the clock and error
// count freeze at that moment.
package engine
