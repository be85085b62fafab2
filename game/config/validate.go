package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/wricardo/mcp-training/memorygame/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Errors holds the problems that make the file unusable; Info holds
// informational lines for valid files.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

// ValidateFile loads and validates a single card set file, collecting every
// problem rather than stopping at the first one
func ValidateFile(path string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(path),
		Valid:  true,
		Errors: []string{},
		Info:   []string{},
	}

	fail := func(format string, args ...interface{}) {
		result.Valid = false
		result.Errors = append(result.Errors, fmt.Sprintf(format, args...))
	}

	data, err := os.ReadFile(path)
	if err != nil {
		fail("Failed to read file: %v", err)
		return result
	}

	ext := filepath.Ext(path)
	set, err := decodeCardSet(data, ext, strings.TrimSuffix(result.File, ext))
	if err != nil {
		fail("Invalid %s: %v", strings.TrimPrefix(strings.ToUpper(ext), "."), err)
		return result
	}

	if strings.TrimSpace(set.Name) == "" {
		fail("Name is required")
	}
	if len(set.Cards) < engine.MinCardSetSize {
		fail("Need at least %d cards to deal hard, got %d", engine.MinCardSetSize, len(set.Cards))
	}
	if len(set.Cards) > engine.MaxCardSetSize {
		fail("At most %d cards allowed, got %d", engine.MaxCardSetSize, len(set.Cards))
	}

	keys := map[string]int{}
	faces := map[string]int{}
	for i, card := range set.Cards {
		n := i + 1
		if strings.TrimSpace(card.Identity) == "" {
			fail("Card %d has an empty key", n)
		} else if prev, dup := keys[card.Identity]; dup {
			fail("Card %d repeats key %q from card %d", n, card.Identity, prev)
		} else {
			keys[card.Identity] = n
		}

		if strings.TrimSpace(card.Face) == "" {
			fail("Card %d has an empty value", n)
		} else if prev, dup := faces[card.Face]; dup {
			// Legal, but two different pairs look alike on the board
			result.Info = append(result.Info, fmt.Sprintf("! Cards %d and %d share the value %q", prev, n, card.Face))
		} else {
			faces[card.Face] = n
		}
	}

	if result.Valid {
		result.Info = append(result.Info,
			fmt.Sprintf("✓ Name: %s", set.Name),
			fmt.Sprintf("✓ Cards: %d", len(set.Cards)),
		)
		for _, d := range engine.Difficulties {
			result.Info = append(result.Info, fmt.Sprintf("✓ %s: %d pairs, %d cards", d, d.Pairs(), 2*d.Pairs()))
		}
		if extra := len(set.Cards) - engine.Hard.Pairs(); extra > 0 {
			result.Info = append(result.Info, fmt.Sprintf("! %d cards after position %d are never dealt", extra, engine.Hard.Pairs()))
		}
	}

	return result
}

// ValidateDir validates every card set file in dir, sorted by file name
func ValidateDir(dir string) ([]ValidationResult, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read card set directory: %w", err)
	}

	var names []string
	for _, entry := range entries {
		if !entry.IsDir() && isCardSetExtension(strings.ToLower(filepath.Ext(entry.Name()))) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)

	results := make([]ValidationResult, 0, len(names))
	for _, name := range names {
		results = append(results, ValidateFile(filepath.Join(dir, name)))
	}
	return results, nil
}

// WriteReport prints a concise report and reports whether every file is valid
func WriteReport(w io.Writer, results []ValidationResult) bool {
	allValid := true
	for _, result := range results {
		fmt.Fprintf(w, "\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Fprintln(w, "✅ VALID")
			for _, info := range result.Info {
				fmt.Fprintln(w, "  "+info)
			}
			continue
		}

		allValid = false
		fmt.Fprintln(w, "❌ INVALID")
		for _, msg := range result.Errors {
			fmt.Fprintln(w, "  ❌ "+msg)
		}
	}

	fmt.Fprintf(w, "\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Fprintln(w, "✅ All card sets are valid!")
	} else {
		fmt.Fprintln(w, "❌ Some card sets have errors")
	}
	return allValid
}
