package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/wricardo/mcp-training/memorygame/game/config"
	"github.com/wricardo/mcp-training/memorygame/game/service"
)

const validCardSet = `name: Planets
description: Eight planets
cards:
  - {key: mercury, value: "☿"}
  - {key: venus, value: "♀"}
  - {key: earth, value: "🜨"}
  - {key: mars, value: "♂"}
  - {key: jupiter, value: "♃"}
  - {key: saturn, value: "♄"}
  - {key: uranus, value: "♅"}
  - {key: neptune, value: "♆"}
`

func TestConstants(t *testing.T) {
	if Version == "" {
		t.Error("Version should not be empty")
	}
	if AppName != "Memory Match Server" {
		t.Errorf("Expected app name Memory Match Server, got %s", AppName)
	}
}

func TestNewApp_Commands(t *testing.T) {
	app := newApp()

	if app.Action == nil {
		t.Error("Expected root command to default to the server")
	}

	expected := []string{"server", "stdio-mcp", "play", "autoplay", "validate"}
	for _, name := range expected {
		found := false
		for _, cmd := range app.Commands {
			if cmd.Name == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("Expected command %s", name)
		}
	}
}

// settingsFromArgs runs the root command with args and returns the loaded settings
func settingsFromArgs(t *testing.T, args ...string) (*config.Settings, error) {
	t.Helper()
	t.Chdir(t.TempDir())

	var settings *config.Settings
	app := newApp()
	app.Action = func(ctx context.Context, cmd *cli.Command) error {
		s, err := loadSettings(cmd)
		settings = s
		return err
	}
	err := app.Run(context.Background(), append([]string{"memorygame"}, args...))
	return settings, err
}

func TestLoadSettings_Defaults(t *testing.T) {
	settings, err := settingsFromArgs(t)
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Server.Port != 8080 {
		t.Errorf("Expected port 8080, got %d", settings.Server.Port)
	}
	if settings.Game.DefaultCardSet != config.BuiltInCardSetID {
		t.Errorf("Expected default card set %s, got %s", config.BuiltInCardSetID, settings.Game.DefaultCardSet)
	}
	if settings.Game.LockoutDelay != 3*time.Second {
		t.Errorf("Expected lockout delay 3s, got %s", settings.Game.LockoutDelay)
	}
}

func TestLoadSettings_FlagsOverride(t *testing.T) {
	settings, err := settingsFromArgs(t, "--host", "127.0.0.1", "--port", "9090", "--card-set-dir", "cards")
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}

	if settings.Addr() != "127.0.0.1:9090" {
		t.Errorf("Expected addr 127.0.0.1:9090, got %s", settings.Addr())
	}
	if settings.Game.CardSetDir != "cards" {
		t.Errorf("Expected card set dir cards, got %s", settings.Game.CardSetDir)
	}
}

func TestLoadSettings_NgrokNeedsToken(t *testing.T) {
	t.Setenv("NGROK_AUTHTOKEN", "")
	t.Setenv("NGROK_AUTH_TOKEN", "")

	if _, err := settingsFromArgs(t, "--ngrok"); err == nil {
		t.Error("Expected error when ngrok is enabled without a token")
	}

	settings, err := settingsFromArgs(t, "--ngrok", "--ngrok-auth", "tok")
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	if !settings.Ngrok.Enabled || settings.Ngrok.AuthToken != "tok" {
		t.Errorf("Unexpected ngrok settings: %+v", settings.Ngrok)
	}
}

func TestLocalURL(t *testing.T) {
	tests := []struct {
		addr string
		want string
	}{
		{":8080", "http://localhost:8080"},
		{"0.0.0.0:8080", "http://localhost:8080"},
		{"127.0.0.1:9090", "http://127.0.0.1:9090"},
		{"example.com:80", "http://example.com:80"},
	}

	for _, tt := range tests {
		if got := localURL(tt.addr); got != tt.want {
			t.Errorf("localURL(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}

func testSettings(t *testing.T) *config.Settings {
	t.Helper()
	t.Chdir(t.TempDir())

	settings, err := config.LoadSettings("")
	if err != nil {
		t.Fatalf("Failed to load settings: %v", err)
	}
	return settings
}

func TestNewApplication(t *testing.T) {
	settings := testSettings(t)

	app, err := newApplication(settings)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer app.shutdown()

	info, err := app.service.CreateSession(context.Background(), service.CreateSessionRequest{Difficulty: "medium"})
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if len(info.Board.Cards) != 12 {
		t.Errorf("Expected 12 cards, got %d", len(info.Board.Cards))
	}
	if info.CardSet != config.BuiltInCardSetID {
		t.Errorf("Expected card set %s, got %s", config.BuiltInCardSetID, info.CardSet)
	}
}

func TestNewApplication_UnknownDefaultCardSet(t *testing.T) {
	settings := testSettings(t)
	settings.Game.DefaultCardSet = "missing"

	if _, err := newApplication(settings); err == nil {
		t.Error("Expected error for unknown default card set")
	}
}

func TestNewApplication_InvalidCardSetDir(t *testing.T) {
	settings := testSettings(t)
	settings.Game.CardSetDir = "/non/existent/path"

	if _, err := newApplication(settings); err == nil {
		t.Error("Expected error for non-existent card set directory")
	}
}

func TestApplicationHandler(t *testing.T) {
	settings := testSettings(t)

	app, err := newApplication(settings)
	if err != nil {
		t.Fatalf("Failed to initialize services: %v", err)
	}
	defer app.shutdown()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go app.hub.Run(ctx)

	server := httptest.NewUnstartedServer(nil)
	server.Config.Handler = app.handler("http://" + server.Listener.Addr().String())
	server.Start()
	defer server.Close()

	resp, err := http.Get(server.URL + "/healthz")
	if err != nil {
		t.Fatalf("Health check failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Errorf("Expected 200 from /healthz, got %d", resp.StatusCode)
	}

	body := `{"jsonrpc":"2.0","id":1,"method":"tools/call","params":{"name":"create_session","arguments":{"difficulty":"hard"}}}`
	resp, err = http.Post(server.URL+"/mcp", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("MCP call failed: %v", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	buf.ReadFrom(resp.Body)
	if !strings.Contains(buf.String(), "Created session") {
		t.Errorf("Expected created session in MCP response, got %s", buf.String())
	}
	if app.sessions.Count() != 1 {
		t.Errorf("Expected 1 session, got %d", app.sessions.Count())
	}
}

func TestValidateTargets(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "planets.yaml"), []byte(validCardSet), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "broken.json"), []byte(`{"name": "broken", "cards": [`), 0644); err != nil {
		t.Fatal(err)
	}

	results, err := validateTargets([]string{dir})
	if err != nil {
		t.Fatalf("validateTargets failed: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("Expected 2 results, got %d", len(results))
	}

	var out bytes.Buffer
	if config.WriteReport(&out, results) {
		t.Error("Expected report to fail with a broken file")
	}

	results, err = validateTargets([]string{filepath.Join(dir, "planets.yaml")})
	if err != nil {
		t.Fatalf("validateTargets failed: %v", err)
	}
	if len(results) != 1 || !results[0].Valid {
		t.Errorf("Expected planets.yaml to be valid, got %+v", results)
	}

	if _, err := validateTargets([]string{filepath.Join(dir, "missing.yaml")}); err == nil {
		t.Error("Expected error for missing file")
	}
}
