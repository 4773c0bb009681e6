package process

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"os/exec"
	"runtime"
	"slices"
	"strings"

	"github.com/aretw0/walkthrough/internal/logging"
)

// DefaultSchemes are the URL schemes an Opener will hand to the OS.
var DefaultSchemes = []string{"http", "https", "mailto"}

// Opener implements ports.LinkOpener by launching the platform's URL handler
// (open, xdg-open or rundll32). Only URLs with an allowed scheme are passed
// on, so a workflow file cannot make the host execute local paths.
type Opener struct {
	command string
	args    []string
	schemes []string
	logger  *slog.Logger
}

// OpenerOption configures an Opener.
type OpenerOption func(*Opener)

// WithCommand overrides the launcher. The URL is appended to args.
func WithCommand(command string, args ...string) OpenerOption {
	return func(o *Opener) {
		o.command = command
		o.args = args
	}
}

// WithSchemes replaces DefaultSchemes.
func WithSchemes(schemes ...string) OpenerOption {
	return func(o *Opener) {
		o.schemes = schemes
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) OpenerOption {
	return func(o *Opener) {
		o.logger = logger
	}
}

// NewOpener creates an opener for the current OS.
func NewOpener(opts ...OpenerOption) *Opener {
	command, args := defaultCommand(runtime.GOOS)
	o := &Opener{
		command: command,
		args:    args,
		schemes: DefaultSchemes,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

func defaultCommand(goos string) (string, []string) {
	switch goos {
	case "darwin":
		return "open", nil
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler"}
	default:
		return "xdg-open", nil
	}
}

// Open launches the URL handler and waits for it to exit.
func (o *Opener) Open(ctx context.Context, rawURL string) error {
	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid url %q: %w", rawURL, err)
	}
	if !slices.Contains(o.schemes, strings.ToLower(u.Scheme)) {
		return fmt.Errorf("refusing to open %q: scheme %q not allowed", rawURL, u.Scheme)
	}

	args := append(append([]string(nil), o.args...), u.String())
	cmd := exec.CommandContext(ctx, o.command, args...)
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("%s failed: %w: %s", o.command, err, strings.TrimSpace(string(out)))
	}
	o.logger.Debug("opened external link", "url", rawURL, "command", o.command)
	return nil
}
