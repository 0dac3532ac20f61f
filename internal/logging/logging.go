// Package logging builds the application's slog logger, optionally teeing
// output to a size-rotated file.
package logging

import (
	"io"
	"log/slog"
	"os"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Config describes the desired logging configuration.
type Config struct {
	Level    string
	Format   string // "text" or "json"
	FilePath string // empty = stdout only
}

// Manager owns the logger's file writer, if any.
type Manager struct {
	closer io.Closer
}

// NewManager creates a Manager and a ready-to-use logger.
func NewManager(cfg Config) (*Manager, *slog.Logger) {
	writer, closer := buildWriter(cfg)
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(writer, opts)
	} else {
		handler = slog.NewJSONHandler(writer, opts)
	}

	return &Manager{closer: closer}, slog.New(handler)
}

// Close releases the log file writer, if one was opened.
func (m *Manager) Close() error {
	if m.closer == nil {
		return nil
	}
	err := m.closer.Close()
	m.closer = nil
	return err
}

func parseLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// buildWriter returns the log output writer. With a file path configured,
// output goes to stdout and a rotated file.
func buildWriter(cfg Config) (io.Writer, io.Closer) {
	if cfg.FilePath == "" {
		return os.Stdout, nil
	}
	lj := &lumberjack.Logger{
		Filename:   cfg.FilePath,
		MaxSize:    100, // MB
		MaxBackups: 3,
		MaxAge:     30, // days
	}
	return io.MultiWriter(os.Stdout, lj), lj
}
