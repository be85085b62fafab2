// Package config provides card set and server settings management for the
// memory game.
//
// The config package handles:
//   - Loading card sets from JSON or YAML files
//   - Card set validation and reporting
//   - The built-in classic card set used as the default
//   - Server settings from files and MEMORY_* environment variables
//
// Card Set Format:
//
// A card set file is either a full object or a bare list of cards. A bare
// list is named after its file:
//
//	{"name": "Fruit", "description": "...", "cards": [{"key": "apple", "value": "🍎"}, ...]}
//	[{"key": "apple", "value": "🍎"}, ...]
//
// Keys identify pairs and must be unique; values are what a face-up card
// shows. A set needs at least 8 cards so every difficulty can be dealt.
//
// Usage:
//
//	manager, err := config.NewManager("cardsets")
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	set, err := manager.LoadCardSet("animals")
//	sets, err := manager.ListCardSets()
//
//	settings, err := config.LoadSettings("")
//	rules := settings.Rules()
package config
