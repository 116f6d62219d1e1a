// Constructs loggers for the daemon and CLI.
//
// All packages log through log/slog; this package only decides how records
// are rendered. Text mode is meant for terminals, JSON mode for service
// managers and log collectors.
package logging

import (
	"io"
	"log/slog"
)

// Controls the handler style used when constructing a logger.
type Mode int

const (
	// Renders records in a human-readable key=value format.
	ModeText Mode = iota

	// Renders records as single-line JSON objects.
	ModeJSON
)

// Creates a logger writing to w using the requested mode.
//
// A nil level defaults to [slog.LevelInfo].
func New(mode Mode, w io.Writer, level slog.Leveler) *slog.Logger {
	if level == nil {
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	switch mode {
	case ModeJSON:
		return slog.New(slog.NewJSONHandler(w, opts))
	default:
		return slog.New(slog.NewTextHandler(w, opts))
	}
}

// Creates a text-mode logger writing to w.
func NewText(w io.Writer, level slog.Leveler) *slog.Logger {
	return New(ModeText, w, level)
}

// Creates a JSON-mode logger writing to w.
func NewJSON(w io.Writer, level slog.Leveler) *slog.Logger {
	return New(ModeJSON, w, level)
}

// Parses a mode name as accepted by the --log-format flag.
//
// Unrecognized names fall back to text mode.
func ParseMode(name string) Mode {
	if name == "json" {
		return ModeJSON
	}
	return ModeText
}
