// Package logging builds the zerolog logger used for diagnostics.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config configures the diagnostic logger.
type Config struct {
	// Level is one of trace, debug, info, warn, error or fatal.
	Level string
	// File, when set, receives JSON lines instead of the console.
	File string
	// MaxSizeMB is the size at which File is rotated.
	MaxSizeMB int
	// MaxBackups is the number of rotated files kept.
	MaxBackups int
	// MaxAgeDays is the number of days rotated files are kept.
	MaxAgeDays int
	// Compress gzips rotated files.
	Compress bool
}

// Default returns the configuration used when no flags are given.
func Default() Config {
	return Config{
		Level:      "warn",
		MaxSizeMB:  10,
		MaxBackups: 3,
		MaxAgeDays: 30,
		Compress:   true,
	}
}

// New returns a logger writing to console, or to cfg.File when set.
// If the log directory cannot be created it falls back to console.
func New(cfg Config, console io.Writer) zerolog.Logger {
	var writer io.Writer = zerolog.ConsoleWriter{Out: console, TimeFormat: "15:04:05"}

	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o755); err == nil {
			writer = &lumberjack.Logger{
				Filename:   cfg.File,
				MaxSize:    cfg.MaxSizeMB,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAgeDays,
				Compress:   cfg.Compress,
			}
		}
	}

	return zerolog.New(writer).Level(ParseLevel(cfg.Level)).With().Timestamp().Logger()
}

// ParseLevel maps a level name to a zerolog level, defaulting to warn.
func ParseLevel(s string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	case "fatal":
		return zerolog.FatalLevel
	default:
		return zerolog.WarnLevel
	}
}
