package engine

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestDifficultyPairs(t *testing.T) {
	tests := []struct {
		difficulty Difficulty
		expected   int
	}{
		{Easy, 4},
		{Medium, 6},
		{Hard, 8},
		{Difficulty("expert"), 0},
		{Difficulty(""), 0},
	}

	for _, test := range tests {
		if got := test.difficulty.Pairs(); got != test.expected {
			t.Errorf("%q: expected %d pairs, got %d", test.difficulty, test.expected, got)
		}
		if test.difficulty.Valid() != (test.expected > 0) {
			t.Errorf("%q: Valid() disagrees with Pairs()", test.difficulty)
		}
	}
}

func TestParseDifficulty(t *testing.T) {
	tests := []struct {
		input    string
		expected Difficulty
		wantErr  bool
	}{
		{"easy", Easy, false},
		{"MEDIUM", Medium, false},
		{" hard ", Hard, false},
		{"", "", true},
		{"nightmare", "", true},
	}

	for _, test := range tests {
		got, err := ParseDifficulty(test.input)
		if test.wantErr {
			if !errors.Is(err, ErrInvalidConfiguration) {
				t.Errorf("%q: expected ErrInvalidConfiguration, got %v", test.input, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", test.input, err)
		}
		if got != test.expected {
			t.Errorf("%q: expected %s, got %s", test.input, test.expected, got)
		}
	}
}

func TestElapsedTime(t *testing.T) {
	tests := []struct {
		duration time.Duration
		expected ElapsedTime
		text     string
	}{
		{0, ElapsedTime{}, "0m 0s"},
		{999 * time.Millisecond, ElapsedTime{}, "0m 0s"},
		{59*time.Second + 600*time.Millisecond, ElapsedTime{Seconds: 59}, "0m 59s"},
		{60 * time.Second, ElapsedTime{Minutes: 1}, "1m 0s"},
		{125 * time.Second, ElapsedTime{Minutes: 2, Seconds: 5}, "2m 5s"},
		{-time.Second, ElapsedTime{}, "0m 0s"},
	}

	for _, test := range tests {
		got := NewElapsedTime(test.duration)
		if got != test.expected {
			t.Errorf("%s: expected %+v, got %+v", test.duration, test.expected, got)
		}
		if got.String() != test.text {
			t.Errorf("%s: expected %q, got %q", test.duration, test.text, got.String())
		}
	}

	if d := (ElapsedTime{Minutes: 2, Seconds: 5}).Duration(); d != 125*time.Second {
		t.Errorf("Expected 125s, got %s", d)
	}
}

func TestCardJSON(t *testing.T) {
	var card Card
	if err := json.Unmarshal([]byte(`{"key":"cat","value":"🐱"}`), &card); err != nil {
		t.Fatalf("Failed to unmarshal card: %v", err)
	}
	if card.Identity != "cat" || card.Face != "🐱" {
		t.Errorf("Unexpected card %+v", card)
	}
}

func TestCardViewOmitsFace(t *testing.T) {
	data, err := json.Marshal(CardView{Position: 3, Visibility: FaceDown})
	if err != nil {
		t.Fatalf("Failed to marshal view: %v", err)
	}
	if string(data) != `{"position":3,"visibility":"face_down"}` {
		t.Errorf("Unexpected JSON %s", data)
	}
}

func TestDefaultRules(t *testing.T) {
	rules := DefaultRules()
	if rules.LockoutDelay != 3*time.Second {
		t.Errorf("Expected 3s lockout, got %s", rules.LockoutDelay)
	}
	if rules.TickInterval != time.Second {
		t.Errorf("Expected 1s tick, got %s", rules.TickInterval)
	}
}
