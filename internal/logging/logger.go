// Package logging builds the slog loggers shared by the engine, the
// adapters and the command line.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
)

// Format selects the handler behind a logger.
type Format string

const (
	FormatText Format = "text"
	FormatJSON Format = "json"
)

// ParseFormat accepts text or json, case-insensitively. Empty means text.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	default:
		return FormatText, fmt.Errorf("invalid log format %q (want text or json)", s)
	}
}

// Options configure NewWithOptions. The zero value logs info and above as
// text to stderr.
type Options struct {
	Level  slog.Leveler
	Format Format
	// Writer defaults to os.Stderr so stdout stays free for the wizard
	// transcript and JSON-RPC traffic.
	Writer io.Writer
	// Component, when set, is attached to every record.
	Component string
}

// New returns a text logger on stderr at level.
func New(level slog.Level) *slog.Logger {
	return NewWithOptions(Options{Level: level})
}

// NewWithOptions returns a logger built from opts. Attributes keyed
// "error" are renamed "err" so every component reports failures under
// the same key.
func NewWithOptions(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	ho := &slog.HandlerOptions{Level: opts.Level, ReplaceAttr: renameErrorKey}

	var h slog.Handler
	if opts.Format == FormatJSON {
		h = slog.NewJSONHandler(w, ho)
	} else {
		h = slog.NewTextHandler(w, ho)
	}

	l := slog.New(h)
	if opts.Component != "" {
		l = l.With("component", opts.Component)
	}
	return l
}

func renameErrorKey(_ []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}

// NewNop returns a logger that drops every record.
func NewNop() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
