package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

var (
	ErrCardSetNotFound = service.ErrCardSetNotFound
	ErrInvalidCardSet  = service.ErrInvalidCardSet
)

// BuiltInCardSetID names the card set compiled into the binary
const BuiltInCardSetID = "classic"

// cardSetExtensions lists the file formats, in lookup order
var cardSetExtensions = []string{".json", ".yaml", ".yml"}

// Manager handles card set loading and caching
type Manager struct {
	dir        string
	defaultID  string
	defaultSet *engine.CardSet
	sets       map[string]*engine.CardSet
	mu         sync.RWMutex
}

// NewManager creates a card set manager over dir. An empty dir serves only
// the built-in card set.
func NewManager(dir string) (*Manager, error) {
	if dir != "" {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("card set directory does not exist: %s", dir)
		}
	}

	m := &Manager{
		dir:  dir,
		sets: make(map[string]*engine.CardSet),
	}
	if err := m.SetDefault(BuiltInCardSetID); err != nil {
		return nil, fmt.Errorf("failed to load default card set: %w", err)
	}
	return m, nil
}

// LoadCardSet loads a card set by name, with or without file extension
func (m *Manager) LoadCardSet(name string) (*engine.CardSet, error) {
	id, err := cardSetID(name)
	if err != nil {
		return nil, err
	}

	m.mu.RLock()
	// Check cache first
	if set, exists := m.sets[id]; exists {
		m.mu.RUnlock()
		return set, nil
	}
	m.mu.RUnlock()

	m.mu.Lock()
	defer m.mu.Unlock()

	// Double-check after acquiring write lock
	if set, exists := m.sets[id]; exists {
		return set, nil
	}

	path := m.findFile(id)
	if path == "" {
		if id == BuiltInCardSetID {
			set := engine.ClassicCardSet()
			m.sets[id] = set
			return set, nil
		}
		return nil, fmt.Errorf("%w: %s", ErrCardSetNotFound, id)
	}

	set, err := readCardSetFile(path)
	if err != nil {
		return nil, err
	}
	if err := engine.ValidateCardSet(set); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidCardSet, filepath.Base(path), err)
	}

	m.sets[id] = set
	return set, nil
}

// ListCardSets returns information about every loadable card set. Files
// that fail to load are skipped.
func (m *Manager) ListCardSets() ([]*service.CardSetInfo, error) {
	files := map[string]string{}
	if m.dir != "" {
		entries, err := os.ReadDir(m.dir)
		if err != nil {
			return nil, fmt.Errorf("failed to read card set directory: %w", err)
		}
		for _, entry := range entries {
			ext := strings.ToLower(filepath.Ext(entry.Name()))
			if entry.IsDir() || !isCardSetExtension(ext) {
				continue
			}
			id := strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name()))
			if _, seen := files[id]; !seen {
				files[id] = entry.Name()
			}
		}
	}

	ids := make([]string, 0, len(files)+1)
	for id := range files {
		ids = append(ids, id)
	}
	if _, overridden := files[BuiltInCardSetID]; !overridden {
		ids = append(ids, BuiltInCardSetID)
	}
	sort.Strings(ids)

	infos := make([]*service.CardSetInfo, 0, len(ids))
	for _, id := range ids {
		set, err := m.LoadCardSet(id)
		if err != nil {
			// Skip invalid card sets
			continue
		}
		infos = append(infos, &service.CardSetInfo{
			Filename:    files[id],
			CardSetID:   id,
			Name:        set.Name,
			Description: set.Description,
			CardCount:   len(set.Cards),
			BuiltIn:     files[id] == "",
		})
	}
	return infos, nil
}

// GetDefault returns the default card set
func (m *Manager) GetDefault() *engine.CardSet {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultSet
}

// DefaultID returns the identifier of the default card set
func (m *Manager) DefaultID() string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.defaultID
}

// SetDefault sets the default card set by name
func (m *Manager) SetDefault(name string) error {
	set, err := m.LoadCardSet(name)
	if err != nil {
		return err
	}
	id, _ := cardSetID(name)

	m.mu.Lock()
	defer m.mu.Unlock()
	m.defaultID = id
	m.defaultSet = set
	return nil
}

// RefreshCache drops cached card sets so the next load rereads the files
func (m *Manager) RefreshCache() error {
	m.mu.Lock()
	m.sets = make(map[string]*engine.CardSet)
	defaultID := m.defaultID
	m.mu.Unlock()

	return m.SetDefault(defaultID)
}

// SaveCardSet writes a card set to disk as JSON
func (m *Manager) SaveCardSet(name string, set *engine.CardSet) error {
	if m.dir == "" {
		return fmt.Errorf("no card set directory configured")
	}
	id, err := cardSetID(name)
	if err != nil {
		return err
	}

	// Validate card set before saving
	if err := engine.ValidateCardSet(set); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCardSet, err)
	}

	data, err := json.MarshalIndent(set, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal card set: %w", err)
	}

	path := filepath.Join(m.dir, id+".json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write card set file: %w", err)
	}

	// Update cache
	m.mu.Lock()
	m.sets[id] = set
	m.mu.Unlock()

	return nil
}

// Count returns the number of cached card sets
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sets)
}

// findFile returns the first existing file for id, or "" if none
func (m *Manager) findFile(id string) string {
	if m.dir == "" {
		return ""
	}
	for _, ext := range cardSetExtensions {
		path := filepath.Join(m.dir, id+ext)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// cardSetID strips a known extension and rejects names that would escape
// the card set directory
func cardSetID(name string) (string, error) {
	id := strings.TrimSpace(name)
	if ext := strings.ToLower(filepath.Ext(id)); isCardSetExtension(ext) {
		id = strings.TrimSuffix(id, filepath.Ext(id))
	}
	if id == "" || id == "." || strings.ContainsAny(id, `/\`) || strings.Contains(id, "..") {
		return "", fmt.Errorf("%w: invalid card set name %q", ErrInvalidCardSet, name)
	}
	return id, nil
}

func isCardSetExtension(ext string) bool {
	for _, known := range cardSetExtensions {
		if ext == known {
			return true
		}
	}
	return false
}

// readCardSetFile parses a JSON or YAML card set file
func readCardSetFile(path string) (*engine.CardSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read card set file: %w", err)
	}
	ext := filepath.Ext(path)
	set, err := decodeCardSet(data, ext, strings.TrimSuffix(filepath.Base(path), ext))
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return set, nil
}

// decodeCardSet accepts either a full card set object or a bare list of
// {key, value} cards, which is named after the file
func decodeCardSet(data []byte, ext, id string) (*engine.CardSet, error) {
	unmarshal := json.Unmarshal
	if ext := strings.ToLower(ext); ext == ".yaml" || ext == ".yml" {
		unmarshal = yaml.Unmarshal
	}

	var cards []engine.Card
	if err := unmarshal(data, &cards); err == nil {
		return &engine.CardSet{Name: id, Cards: cards}, nil
	}

	var set engine.CardSet
	if err := unmarshal(data, &set); err != nil {
		return nil, err
	}
	if set.Name == "" {
		set.Name = id
	}
	return &set, nil
}
