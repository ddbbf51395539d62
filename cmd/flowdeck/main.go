package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/nmorane/flowdeck/internal/compose"
	"github.com/nmorane/flowdeck/internal/config"
	"github.com/nmorane/flowdeck/internal/gateway"
	"github.com/nmorane/flowdeck/internal/localstore"
	"github.com/nmorane/flowdeck/internal/tui"
)

// version is set at build time via -ldflags "-X main.version=..."
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// stateDir returns ~/.flowdeck, creating it on first use.
func stateDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	dir := filepath.Join(home, ".flowdeck")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", fmt.Errorf("create state dir: %w", err)
	}
	return dir, nil
}

func sessionPath(dir string) string { return filepath.Join(dir, "session.json") }

// readSession loads the saved session, nil when absent or unreadable.
func readSession(dir string) *gateway.Session {
	data, err := os.ReadFile(sessionPath(dir))
	if err != nil {
		return nil
	}
	var s gateway.Session
	if err := json.Unmarshal(data, &s); err != nil {
		return nil
	}
	return &s
}

func writeSession(dir string, s *gateway.Session) error {
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.WriteFile(sessionPath(dir), data, 0600); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// newLogger writes structured logs to a file since the TUI owns the terminal.
func newLogger(cfg config.LogConfig, dir string) (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	path := cfg.File
	if path == "" {
		path = filepath.Join(dir, "flowdeck.log")
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("open log file: %w", err)
	}
	return zerolog.New(f).Level(level).With().Timestamp().Logger(), nil
}

func run() error {
	if len(os.Args) > 1 {
		switch os.Args[1] {
		case "--version", "version", "-v":
			fmt.Println("flowdeck " + version)
			return nil
		case "help", "--help", "-h":
			printHelp()
			return nil
		case "login":
			return runLogin()
		case "logout":
			return runLogout()
		}
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	dir, err := stateDir()
	if err != nil {
		return err
	}

	log, err := newLogger(cfg.Log, dir)
	if err != nil {
		return err
	}

	session := readSession(dir)
	if session == nil || session.Expired() {
		printGreeting()
		return nil
	}

	client := gateway.New(cfg.Backend.URL, cfg.Backend.AnonKey, cfg.Backend.Timeout, log)
	client.SetSession(session)

	objects, err := gateway.NewObjectStore(
		cfg.Storage.Endpoint, cfg.Storage.AccessKey, cfg.Storage.SecretKey,
		cfg.Storage.Bucket, cfg.Storage.UseSSL, log)
	if err != nil {
		log.Warn().Err(err).Msg("object storage unavailable, downloads disabled")
		objects = nil
	}

	downloadDir := cfg.DownloadDir
	if downloadDir == "" {
		home, _ := os.UserHomeDir()
		downloadDir = filepath.Join(home, "Downloads")
	}

	store := localstore.Open(filepath.Join(dir, "state.json"))
	composer := compose.New(client, log)

	app := tui.NewApp(client, objects, composer, store, downloadDir, log)
	p := tea.NewProgram(app, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("tui error: %w", err)
	}
	return nil
}

func runLogin() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	dir, err := stateDir()
	if err != nil {
		return err
	}
	log, err := newLogger(cfg.Log, dir)
	if err != nil {
		return err
	}

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Email: ")
	email, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read email: %w", err)
	}
	fmt.Print("Password: ")
	password, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("read password: %w", err)
	}
	email = strings.TrimSpace(email)
	password = strings.TrimRight(password, "\r\n")

	client := gateway.New(cfg.Backend.URL, cfg.Backend.AnonKey, cfg.Backend.Timeout, log)
	session, err := client.SignInWithPassword(context.Background(), email, password)
	if err != nil {
		if gateway.IsStatus(err, 400) || gateway.IsStatus(err, 401) {
			return fmt.Errorf("invalid email or password")
		}
		return fmt.Errorf("sign in: %w", err)
	}

	if err := writeSession(dir, session); err != nil {
		return err
	}
	fmt.Printf("Signed in as %s\n", session.User.Email)
	return nil
}

func runLogout() error {
	dir, err := stateDir()
	if err != nil {
		return err
	}
	path := sessionPath(dir)
	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("Already signed out.")
		return nil
	}

	// Best-effort remote revoke before dropping the local session.
	if cfg, err := config.Load(); err == nil {
		if log, err := newLogger(cfg.Log, dir); err == nil {
			if session := readSession(dir); session != nil && !session.Expired() {
				client := gateway.New(cfg.Backend.URL, cfg.Backend.AnonKey, cfg.Backend.Timeout, log)
				client.SetSession(session)
				client.SignOut(context.Background())
			}
		}
	}

	if err := os.Remove(path); err != nil {
		return fmt.Errorf("remove session: %w", err)
	}
	fmt.Println("Signed out.")
	return nil
}

func printGreeting() {
	fmt.Println()
	fmt.Println("  F L O W D E C K")
	fmt.Println()
	fmt.Println("  Your marketing workspace, in the terminal.")
	fmt.Println()
	fmt.Println("  Sign in to continue:")
	fmt.Println("    flowdeck login")
	fmt.Println()
}

func printHelp() {
	fmt.Println(`flowdeck - marketing workspace client

Usage:
  flowdeck            Open the workspace (interactive TUI)
  flowdeck login      Sign in with email and password
  flowdeck logout     Clear your session
  flowdeck version    Show version

Environment:
  FLOWDECK_BACKEND_URL          Backend base URL (required)
  FLOWDECK_ANON_KEY             Backend public API key (required)
  FLOWDECK_STORAGE_ENDPOINT     S3-compatible endpoint for asset downloads
  FLOWDECK_STORAGE_ACCESS_KEY   Storage access key
  FLOWDECK_STORAGE_SECRET_KEY   Storage secret key
  FLOWDECK_STORAGE_BUCKET       Storage bucket (default: creative-storage)
  FLOWDECK_DOWNLOAD_DIR         Where downloads are saved (default: ~/Downloads)
  FLOWDECK_LOG_LEVEL            Log level (default: info)
  FLOWDECK_LOG_FILE             Log file (default: ~/.flowdeck/flowdeck.log)`)
}
