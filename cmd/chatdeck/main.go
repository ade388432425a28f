package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nvu/chatdeck/internal/app"
	"github.com/nvu/chatdeck/internal/model"
	"github.com/nvu/chatdeck/internal/store"
)

func main() {
	cfg, err := model.LoadConfig(model.DefaultConfigPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "config error: %v\n", err)
		os.Exit(1)
	}

	// The TUI owns stdout, so logs go to a file next to the config.
	logger, logFile, err := newLogger()
	if err != nil {
		fmt.Fprintf(os.Stderr, "log file error: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	s, err := store.NewSQLiteStore(dbPath())
	if err != nil {
		fmt.Fprintf(os.Stderr, "database error: %v\n", err)
		os.Exit(1)
	}
	defer s.Close()

	program := tea.NewProgram(
		app.New(cfg, s, logger),
		tea.WithAltScreen(),
	)
	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "chatdeck error: %v\n", err)
		os.Exit(1)
	}
}

// dataDir returns the directory holding the database and log file,
// creating it if needed.
func dataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "."
	}
	dir := filepath.Join(home, ".config", "chatdeck")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "."
	}
	return dir
}

func dbPath() string {
	return filepath.Join(dataDir(), "chatdeck.db")
}

func newLogger() (*log.Logger, *os.File, error) {
	path := filepath.Join(dataDir(), "chatdeck.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening %s: %w", path, err)
	}
	return log.New(file, "", log.LstdFlags), file, nil
}
