// Package logging wires up the structured logger shared by every
// subsystem, mirroring the teacher's config.SetupLogging: a text handler
// whose level is selected from a string and installed as the default.
package logging

import (
	"log/slog"
	"os"
	"strings"
)

// Setup configures the default slog.Logger for the given level string
// ("debug", "info", "warn", "error" — case-insensitive, default "info").
func Setup(level string) {
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: ParseLevel(level),
	})))
}

// ParseLevel maps a config string to an slog.Level, defaulting to Info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// For attaches a component field, matching the per-subsystem logger the
// daemon loop and tracker each hold.
func For(component string) *slog.Logger {
	return slog.Default().With("component", component)
}
