package main

import (
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
)

// newLogger opens the log file next to the user's config. The terminal
// belongs to the TUI, so everything goes to the file; when it cannot
// be opened the logger writes nowhere rather than corrupting the
// screen.
func newLogger() *log.Logger {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return log.New(io.Discard)
	}
	path := filepath.Join(homeDir, ".rootmap.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return log.New(io.Discard)
	}
	logger := log.NewWithOptions(file, log.Options{
		ReportTimestamp: true,
		Level:           log.InfoLevel,
	})
	if os.Getenv("ROOTMAP_DEBUG") != "" {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}
