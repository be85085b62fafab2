// Command memorygame serves the Memory Match card game.
//
// It supports five commands:
//  1. "server" (default) runs the HTTP server exposing the REST API, HTML pages, WebSocket and an /mcp endpoint
//  2. "stdio-mcp" runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" plays a local game in the terminal
//  4. "autoplay" plays games through the REST API with a perfect-memory bot
//  5. "validate" checks card set files
//
// Settings come from an optional memorygame.yaml, MEMORY_* environment
// variables and the flags below, in increasing precedence. A .env file is
// loaded first when present.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/mark3labs/mcp-go/server"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/mcp-training/memorygame/api"
	"github.com/wricardo/mcp-training/memorygame/bot"
	"github.com/wricardo/mcp-training/memorygame/game/config"
	"github.com/wricardo/mcp-training/memorygame/game/engine"
	"github.com/wricardo/mcp-training/memorygame/game/service"
	"github.com/wricardo/mcp-training/memorygame/game/session"
	"github.com/wricardo/mcp-training/memorygame/transport/mcp"
	"github.com/wricardo/mcp-training/memorygame/transport/websocket"
	"github.com/wricardo/mcp-training/memorygame/tui"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Memory Match Server"
)

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("Warning: Error loading .env file: %v", err)
		}
	} else {
		log.Println("Loaded environment variables from .env file")
	}

	if err := newApp().Run(context.Background(), os.Args); err != nil {
		log.Fatal(err)
	}
}

// newApp builds the command tree. Flags live on the root command and are
// visible to every subcommand.
func newApp() *cli.Command {
	return &cli.Command{
		Name:    "memorygame",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Settings file (yaml, json or toml)",
				Sources: cli.EnvVars("MEMORY_CONFIG"),
			},
			&cli.BoolFlag{
				Name:    "debug",
				Usage:   "Enable debug logging",
				Sources: cli.EnvVars("DEBUG"),
			},
			&cli.StringFlag{
				Name:  "host",
				Usage: "HTTP server host",
			},
			&cli.IntFlag{
				Name:  "port",
				Usage: "HTTP server port",
			},
			&cli.StringFlag{
				Name:    "card-set-dir",
				Usage:   "Directory containing card set files",
				Sources: cli.EnvVars("CARD_SET_DIR"),
			},
			&cli.BoolFlag{
				Name:    "ngrok",
				Usage:   "Enable ngrok tunnel",
				Sources: cli.EnvVars("NGROK_ENABLED"),
			},
			&cli.StringFlag{
				Name:    "ngrok-auth",
				Usage:   "Ngrok auth token",
				Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN"),
			},
			&cli.StringFlag{
				Name:    "ngrok-domain",
				Usage:   "Custom ngrok domain (optional)",
				Sources: cli.EnvVars("NGROK_DOMAIN"),
			},
		},
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			if cmd.Bool("debug") {
				log.SetFlags(log.LstdFlags | log.Lshortfile)
			} else {
				log.SetFlags(log.LstdFlags)
			}
			return ctx, nil
		},
		Action: runServer,
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, pages, WebSocket and MCP endpoint",
				Action:  runServer,
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp-stdio", "mcp"},
				Usage:   "Run MCP stdio server with internal HTTP server",
				Action:  runStdioMCP,
			},
			{
				Name:  "play",
				Usage: "Play a game in the terminal",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "difficulty",
						Aliases: []string{"d"},
						Usage:   "easy, medium or hard",
						Value:   string(engine.Easy),
					},
					&cli.StringFlag{
						Name:  "card-set",
						Usage: "Card set ID (default from settings)",
					},
				},
				Action: runPlay,
			},
			{
				Name:  "autoplay",
				Usage: "Play games through the REST API with a perfect-memory bot",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "url",
						Usage: "Game server URL (default from settings)",
					},
					&cli.StringFlag{
						Name:    "difficulty",
						Aliases: []string{"d"},
						Usage:   "easy, medium or hard",
						Value:   string(engine.Easy),
					},
					&cli.StringFlag{
						Name:  "card-set",
						Usage: "Card set ID (default from the server)",
					},
					&cli.StringFlag{
						Name:  "continue",
						Usage: "Resume playing an existing session by ID",
					},
					&cli.IntFlag{
						Name:  "games",
						Usage: "Number of games to play, restarting between them",
						Value: 1,
					},
					&cli.BoolFlag{
						Name:  "verbose",
						Usage: "Log every selection",
					},
				},
				Action: runAutoplay,
			},
			{
				Name:      "validate",
				Usage:     "Validate card set files",
				ArgsUsage: "[FILE|DIR...]",
				Action:    runValidate,
			},
		},
	}
}

// loadSettings reads the settings file and environment, then applies any
// flags given on the command line.
func loadSettings(cmd *cli.Command) (*config.Settings, error) {
	settings, err := config.LoadSettings(cmd.String("config"))
	if err != nil {
		return nil, err
	}

	if cmd.IsSet("host") {
		settings.Server.Host = cmd.String("host")
	}
	if cmd.IsSet("port") {
		settings.Server.Port = cmd.Int("port")
	}
	if cmd.IsSet("card-set-dir") {
		settings.Game.CardSetDir = cmd.String("card-set-dir")
	}
	if cmd.IsSet("ngrok") {
		settings.Ngrok.Enabled = cmd.Bool("ngrok")
	}
	if cmd.IsSet("ngrok-auth") {
		settings.Ngrok.AuthToken = cmd.String("ngrok-auth")
	}
	if cmd.IsSet("ngrok-domain") {
		settings.Ngrok.Domain = cmd.String("ngrok-domain")
	}

	if err := settings.Validate(); err != nil {
		return nil, err
	}
	return settings, nil
}

// application holds the long-lived services shared by the HTTP server and
// the MCP stdio mode.
type application struct {
	settings *config.Settings
	hub      *websocket.Hub
	sessions *session.Manager
	configs  *config.Manager
	service  service.GameService
}

// newApplication wires card sets, sessions, the WebSocket hub and the game
// service. Every engine change is pushed to the hub.
func newApplication(settings *config.Settings) (*application, error) {
	configs, err := config.NewManager(settings.Game.CardSetDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create card set manager: %w", err)
	}
	if err := configs.SetDefault(settings.Game.DefaultCardSet); err != nil {
		return nil, fmt.Errorf("failed to set default card set: %w", err)
	}

	hub := websocket.NewHub()
	sessions := session.NewManager(
		session.WithEngineOptions(engine.WithRules(settings.Rules())),
		session.WithChangeHook(hub.BroadcastToSession),
	)

	return &application{
		settings: settings,
		hub:      hub,
		sessions: sessions,
		configs:  configs,
		service:  service.NewGameService(sessions, configs),
	}, nil
}

// handler combines the API server and the /mcp endpoint. baseURL is where
// the MCP tools reach the API.
func (a *application) handler(baseURL string) http.Handler {
	mcpClient := mcp.NewClient(baseURL)

	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", api.NewServer(a.service, a.hub))
	mainRouter.Handle("/mcp", mcpClient.HTTPHandler())
	return mainRouter
}

// sessionCleanupRoutine periodically removes sessions that have not been
// accessed within the idle window, until ctx is done.
func (a *application) sessionCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(a.settings.Sessions.CleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			removed := a.sessions.CleanupExpiredSessions(a.settings.Sessions.MaxIdle)
			if removed > 0 {
				log.Printf("Cleaned up %d expired sessions", removed)
			}
		}
	}
}

// shutdown tears down every session so no timers outlive the process
func (a *application) shutdown() {
	if closed := a.sessions.CloseAll(); closed > 0 {
		log.Printf("Closed %d sessions", closed)
	}
}

// localURL returns a URL reaching addr from this machine
func localURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://" + addr
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "localhost"
	}
	return "http://" + net.JoinHostPort(host, port)
}

// runServer starts the HTTP server with REST API, pages, WebSocket hub and
// an /mcp proxy endpoint. If ngrok is enabled it also provisions a public
// tunnel.
func runServer(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	log.Printf("Starting %s v%s (mode: server)", AppName, Version)

	app, err := newApplication(settings)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer app.shutdown()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	go app.hub.Run(ctx)
	go app.sessionCleanupRoutine(ctx)

	addr := settings.Addr()
	mainRouter := app.handler(localURL(addr))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	serveErr := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Printf("HTTP server listening on %s", addr)
		log.Printf("Game UI: %s/", localURL(addr))
		log.Printf("REST API: %s/api", localURL(addr))
		log.Printf("WebSocket: %s/ws?session=<session_id>", strings.Replace(localURL(addr), "http", "ws", 1))
		log.Printf("MCP endpoint: %s/mcp", localURL(addr))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	if settings.Ngrok.Enabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, settings.Ngrok, mainRouter)
		}()
	}

	select {
	case <-ctx.Done():
		log.Println("Shutting down...")
	case err := <-serveErr:
		stop()
		wg.Wait()
		return fmt.Errorf("HTTP server failed: %w", err)
	}

	// Graceful shutdown with timeout
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("HTTP server shutdown error: %v", err)
	}

	wg.Wait()
	log.Println("Server stopped")
	return nil
}

// runNgrokTunnel serves handler through an ngrok tunnel until ctx is done
func runNgrokTunnel(ctx context.Context, settings config.NgrokSettings, handler http.Handler) {
	if settings.AuthToken == "" {
		log.Println("WARNING: Ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or MEMORY_NGROK_AUTH_TOKEN)")
		return
	}

	log.Println("Starting ngrok tunnel...")

	var tunnel ngrokConfig.Tunnel
	if settings.Domain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(settings.Domain))
		log.Printf("Using custom ngrok domain: %s", settings.Domain)
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(settings.AuthToken))
	if err != nil {
		log.Printf("Failed to start ngrok tunnel: %v", err)
		return
	}

	ngrokURL := tun.URL()
	log.Printf("🚀 Ngrok tunnel established: %s", ngrokURL)
	log.Printf("  Game UI (ngrok): %s/", ngrokURL)
	log.Printf("  REST API (ngrok): %s/api", ngrokURL)
	log.Printf("  MCP endpoint (ngrok): %s/mcp", ngrokURL)

	srv := &http.Server{Handler: handler}
	go func() {
		<-ctx.Done()
		srv.Close()
	}()

	if err := srv.Serve(tun); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Printf("Ngrok server error: %v", err)
	}
	log.Println("Ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening
// on the configured port; otherwise it starts an internal HTTP API on a
// random loopback port and targets that.
func runStdioMCP(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	externalURL := localURL(settings.Addr())
	log.Printf("Checking for external API server at %s...", externalURL)

	baseURL := externalURL
	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/healthz")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Printf("External API server found at %s, using it for MCP", externalURL)
	} else {
		log.Printf("No external API server found, starting internal HTTP server")

		app, err := newApplication(settings)
		if err != nil {
			return fmt.Errorf("failed to initialize services: %w", err)
		}
		defer app.shutdown()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		baseURL = "http://" + listener.Addr().String()
		log.Printf("Starting internal HTTP server on %s for MCP stdio", listener.Addr())

		ctx, cancel := context.WithCancel(ctx)
		defer cancel()
		go app.hub.Run(ctx)
		go app.sessionCleanupRoutine(ctx)

		httpServer := &http.Server{Handler: app.handler(baseURL)}
		defer httpServer.Close()

		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Printf("Internal HTTP server error: %v", err)
			}
		}()
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Printf("MCP stdio server ready (API at %s)", baseURL)

	if err := server.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}

// runPlay plays one game in the terminal against a local engine
func runPlay(ctx context.Context, cmd *cli.Command) error {
	settings, err := loadSettings(cmd)
	if err != nil {
		return err
	}

	difficulty, err := engine.ParseDifficulty(cmd.String("difficulty"))
	if err != nil {
		return err
	}

	configs, err := config.NewManager(settings.Game.CardSetDir)
	if err != nil {
		return fmt.Errorf("failed to create card set manager: %w", err)
	}

	cardSetID := cmd.String("card-set")
	if cardSetID == "" {
		cardSetID = settings.Game.DefaultCardSet
	}
	cards, err := configs.LoadCardSet(cardSetID)
	if err != nil {
		return err
	}

	// Log lines would tear the alternate screen
	if !cmd.Bool("debug") {
		log.SetOutput(io.Discard)
	}

	return tui.Run(ctx, cards, difficulty, engine.WithRules(settings.Rules()))
}

// runAutoplay plays one or more games against a running server
func runAutoplay(ctx context.Context, cmd *cli.Command) error {
	baseURL := cmd.String("url")
	if baseURL == "" {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		baseURL = localURL(settings.Addr())
	}

	log.Printf("Connecting to game server at %s", baseURL)
	client := bot.NewClient(baseURL)

	var board *engine.Snapshot
	var err error
	if id := cmd.String("continue"); id != "" {
		client.UseSession(id)
		log.Printf("🔄 Resuming session: %s", id)
		board, err = client.Restart(ctx)
	} else {
		board, err = client.CreateSession(ctx, cmd.String("difficulty"), cmd.String("card-set"))
		if err == nil {
			log.Printf("✨ Session created: %s", client.SessionID())
		}
	}
	if err != nil {
		return err
	}

	player := bot.NewPlayer(client, bot.WithVerbose(cmd.Bool("verbose")))
	games := cmd.Int("games")
	for game := 1; game <= games; game++ {
		if game > 1 {
			if board, err = client.Restart(ctx); err != nil {
				return err
			}
		}

		result, err := player.Play(ctx, board)
		if err != nil {
			return fmt.Errorf("game %d: %w", game, err)
		}
		log.Printf("🎉 Game %d/%d: %s", game, games, result.Summary)
	}

	log.Printf("Session: %s", client.SessionID())
	return nil
}

// runValidate checks every card set file named on the command line, or the
// configured card set directory when none is given
func runValidate(ctx context.Context, cmd *cli.Command) error {
	targets := cmd.Args().Slice()
	if len(targets) == 0 {
		settings, err := loadSettings(cmd)
		if err != nil {
			return err
		}
		if settings.Game.CardSetDir == "" {
			return cli.Exit("no card set directory configured; pass files or set --card-set-dir", 1)
		}
		targets = []string{settings.Game.CardSetDir}
	}

	results, err := validateTargets(targets)
	if err != nil {
		return err
	}

	if !config.WriteReport(os.Stdout, results) {
		return cli.Exit("", 1)
	}
	return nil
}

func validateTargets(targets []string) ([]config.ValidationResult, error) {
	var results []config.ValidationResult
	for _, target := range targets {
		info, err := os.Stat(target)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			results = append(results, config.ValidateFile(target))
			continue
		}
		dirResults, err := config.ValidateDir(target)
		if err != nil {
			return nil, err
		}
		results = append(results, dirResults...)
	}
	return results, nil
}
