// Command grid-tactics-game starts the Grid Tactics Game server.
//
// It supports two modes:
//  1. "serve" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp HTTP endpoint
//  2. "mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//
// Configuration is layered: .env file, environment variables, then CLI flags.
// Flags control host/port, scenario directory, debug logging, and optional
// ngrok tunneling for easy external access during development.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/grid-tactics-game/api"
	"github.com/wricardo/grid-tactics-game/game/config"
	"github.com/wricardo/grid-tactics-game/game/service"
	"github.com/wricardo/grid-tactics-game/game/session"
	"github.com/wricardo/grid-tactics-game/transport/mcp"
	"github.com/wricardo/grid-tactics-game/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Grid Tactics Game Server"
)

// serverConfig is the environment-derived configuration. CLI flags default to
// these values, so flags win when both are set.
type serverConfig struct {
	Host        string `env:"HOST" envDefault:"localhost"`
	Port        int    `env:"PORT" envDefault:"8080"`
	ConfigDir   string `env:"CONFIG_DIR" envDefault:"configs"`
	SessionsDir string `env:"SESSIONS_DIR" envDefault:"sessions"`
	Debug       bool   `env:"DEBUG"`

	NgrokEnabled bool   `env:"NGROK_ENABLED"`
	NgrokAuth    string `env:"NGROK_AUTHTOKEN"`
	NgrokDomain  string `env:"NGROK_DOMAIN"`
}

func main() {
	// Load .env file if it exists (ignore error if not found)
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			fmt.Fprintf(os.Stderr, "warning: error loading .env file: %v\n", err)
		}
	}

	var cfg serverConfig
	if err := env.Parse(&cfg); err != nil {
		fmt.Fprintf(os.Stderr, "failed to parse environment: %v\n", err)
		os.Exit(1)
	}

	cmd := &cli.Command{
		Name:    "grid-tactics-game",
		Usage:   AppName,
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: cfg.Host, Usage: "HTTP server host"},
			&cli.IntFlag{Name: "port", Value: cfg.Port, Usage: "HTTP server port"},
			&cli.StringFlag{Name: "config-dir", Value: cfg.ConfigDir, Usage: "Directory containing battle scenarios"},
			&cli.StringFlag{Name: "sessions-dir", Value: cfg.SessionsDir, Usage: "Directory for persisted battle sessions"},
			&cli.BoolFlag{Name: "debug", Value: cfg.Debug, Usage: "Enable debug logging"},
			&cli.BoolFlag{Name: "ngrok", Value: cfg.NgrokEnabled, Usage: "Enable ngrok tunnel"},
			&cli.StringFlag{Name: "ngrok-auth", Value: cfg.NgrokAuth, Usage: "Ngrok auth token (or use NGROK_AUTHTOKEN env var)"},
			&cli.StringFlag{Name: "ngrok-domain", Value: cfg.NgrokDomain, Usage: "Custom ngrok domain (optional)"},
		},
		Commands: []*cli.Command{
			{
				Name:  "serve",
				Usage: "Run the HTTP server with REST API, WebSocket, and MCP endpoint (default)",
				Action: func(ctx context.Context, c *cli.Command) error {
					return runServe(ctx, configFromCommand(c))
				},
			},
			{
				Name:  "mcp",
				Usage: "Run an MCP stdio server, reusing an external API or starting an internal one",
				Action: func(ctx context.Context, c *cli.Command) error {
					return runStdioMCP(configFromCommand(c))
				},
			},
		},
		// Bare invocation serves, matching how the binary is deployed.
		Action: func(ctx context.Context, c *cli.Command) error {
			return runServe(ctx, configFromCommand(c))
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

// configFromCommand folds flag values back into the config and finalizes
// logging. Flags default to the env values, so this is the merged view.
func configFromCommand(c *cli.Command) serverConfig {
	cfg := serverConfig{
		Host:         c.String("host"),
		Port:         int(c.Int("port")),
		ConfigDir:    c.String("config-dir"),
		SessionsDir:  c.String("sessions-dir"),
		Debug:        c.Bool("debug"),
		NgrokEnabled: c.Bool("ngrok"),
		NgrokAuth:    c.String("ngrok-auth"),
		NgrokDomain:  c.String("ngrok-domain"),
	}

	setupLogging(cfg.Debug)
	return cfg
}

// setupLogging configures the global zerolog logger. Console output keeps
// development readable; debug mode adds caller info and lowers the level.
func setupLogging(debug bool) {
	zerolog.SetGlobalLevel(zerolog.InfoLevel)
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	if debug {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		log.Logger = log.Logger.With().Caller().Logger()
	}
}

// services bundles everything initializeServices wires together.
type services struct {
	battles  service.BattleService
	sessions *session.Manager
	hub      *websocket.Hub
}

// initializeServices wires scenario/session managers, the websocket hub and
// the battle service. It also loads persisted battles from disk.
func initializeServices(cfg serverConfig) (*services, error) {
	// The scenario directory may not exist on a fresh checkout; an empty one
	// still works because the config manager falls back to a built-in
	// scenario.
	if err := os.MkdirAll(cfg.ConfigDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create scenario directory: %w", err)
	}

	scenarioManager, err := config.NewManager(cfg.ConfigDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create scenario manager: %w", err)
	}

	persistence, err := session.NewFilePersistence(cfg.SessionsDir, scenarioManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence)
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		log.Warn().Err(err).Msg("failed to load persisted battles")
	}

	hub := websocket.NewHub()
	battleService := service.NewBattleService(sessionManager, scenarioManager, hub)

	return &services{
		battles:  battleService,
		sessions: sessionManager,
		hub:      hub,
	}, nil
}

// runServe starts the HTTP server with REST API, WebSocket hub, and an /mcp
// proxy endpoint. If ngrok is enabled, it also provisions a public tunnel.
func runServe(ctx context.Context, cfg serverConfig) error {
	svcs, err := initializeServices(cfg)
	if err != nil {
		return err
	}
	go svcs.hub.Run()

	apiServer := api.NewServer(svcs.battles, svcs.hub)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mainRouter := buildMainRouter(apiServer, mcp.NewClient(fmt.Sprintf("http://%s", addr)))

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mainRouter,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()

		log.Info().
			Str("addr", addr).
			Str("api", fmt.Sprintf("http://%s/api", addr)).
			Str("ws", fmt.Sprintf("ws://%s/ws?battle=<battle_id>", addr)).
			Str("mcp", fmt.Sprintf("http://%s/mcp", addr)).
			Msg("HTTP server listening")

		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	// Background maintenance
	go sessionCleanupRoutine(ctx, svcs.sessions)
	go filesystemSyncRoutine(ctx, svcs.sessions)

	if cfg.NgrokEnabled {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrokTunnel(ctx, cfg, mainRouter)
		}()
	}

	sig := <-stop
	log.Info().Str("signal", sig.String()).Msg("shutting down")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// Flush battles to disk so nothing is lost across restarts.
	if err := svcs.sessions.SaveAllSessions(); err != nil {
		log.Warn().Err(err).Msg("failed to persist battles on shutdown")
	}

	wg.Wait()
	log.Info().Msg("server stopped")
	return nil
}

// buildMainRouter mounts the REST API at the root and the MCP message
// endpoint at /mcp.
func buildMainRouter(apiServer *api.Server, mcpClient *mcp.Client) *http.ServeMux {
	mainRouter := http.NewServeMux()
	mainRouter.Handle("/", apiServer)

	mainRouter.HandleFunc("/mcp", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := mcpClient.GetMCPServer().HandleMessage(r.Context(), body)

		w.Header().Set("Content-Type", "application/json")
		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Write(responseData)
	})

	return mainRouter
}

// runNgrokTunnel provisions a public tunnel and serves the router through it
// until ctx is canceled. Failures are logged, never fatal: the local server
// keeps running without the tunnel.
func runNgrokTunnel(ctx context.Context, cfg serverConfig, handler http.Handler) {
	authToken := cfg.NgrokAuth
	if authToken == "" {
		log.Warn().Msg("ngrok enabled but no auth token provided (use --ngrok-auth or NGROK_AUTHTOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if cfg.NgrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(cfg.NgrokDomain))
		log.Info().Str("domain", cfg.NgrokDomain).Msg("using custom ngrok domain")
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(authToken))
	if err != nil {
		log.Error().Err(err).Msg("failed to start ngrok tunnel")
		return
	}
	defer func() {
		if err := tun.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close ngrok tunnel")
		}
	}()

	log.Info().
		Str("url", tun.URL()).
		Str("api", tun.URL()+"/api").
		Str("mcp", tun.URL()+"/mcp").
		Msg("ngrok tunnel established")

	if err := http.Serve(tun, handler); err != nil && err != http.ErrServerClosed {
		log.Error().Err(err).Msg("ngrok server error")
	}
	log.Info().Msg("ngrok tunnel closed")
}

// sessionCleanupRoutine periodically removes battles that have not been
// accessed within the retention window.
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(24 * time.Hour); removed > 0 {
				log.Info().Int("removed", removed).Msg("cleaned up expired battles")
			}
		}
	}
}

// filesystemSyncRoutine prunes in-memory battles whose session files were
// deleted out from under the server, so operators can drop a battle by
// removing its file.
func filesystemSyncRoutine(ctx context.Context, manager *session.Manager) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if pruned := manager.PruneDeletedSessions(); pruned > 0 {
				log.Info().Int("pruned", pruned).Msg("pruned battles whose files were deleted")
			}
		}
	}
}

// runStdioMCP runs an MCP stdio server. It reuses an external API at the
// configured address when one is running; otherwise it starts a minimal
// internal HTTP API bound to a random loopback port and targets that.
func runStdioMCP(cfg serverConfig) error {
	externalURL := fmt.Sprintf("http://%s:%d", cfg.Host, cfg.Port)
	baseURL := externalURL

	testClient := &http.Client{Timeout: 2 * time.Second}
	resp, err := testClient.Get(externalURL + "/health")
	if err == nil && resp.StatusCode < 500 {
		resp.Body.Close()
		log.Info().Str("url", externalURL).Msg("external API server found, using it for MCP")
	} else {
		log.Info().Msg("no external API server found, starting internal HTTP server")

		svcs, err := initializeServices(cfg)
		if err != nil {
			return err
		}
		go svcs.hub.Run()

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}

		internalAddr := listener.Addr().String()
		log.Info().Str("addr", internalAddr).Msg("internal HTTP server for MCP stdio")

		httpServer := &http.Server{Handler: api.NewServer(svcs.battles, svcs.hub)}
		go func() {
			if err := httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
				log.Error().Err(err).Msg("internal HTTP server error")
			}
		}()

		// Give the listener a moment before the first tool call
		time.Sleep(100 * time.Millisecond)
		baseURL = fmt.Sprintf("http://%s", internalAddr)
	}

	mcpClient := mcp.NewClient(baseURL)
	log.Info().Str("base_url", baseURL).Msg("MCP stdio server ready")

	if err := mcpserver.ServeStdio(mcpClient.GetMCPServer()); err != nil {
		return fmt.Errorf("MCP stdio server error: %w", err)
	}
	return nil
}
