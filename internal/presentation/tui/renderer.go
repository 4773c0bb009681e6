package tui

import (
	"strings"

	"github.com/aretw0/walkthrough/pkg/runner"
	"github.com/charmbracelet/glamour"
)

// NewRenderer returns a runner.ContentRenderer that renders markdown with
// glamour, wrapped at width columns (no wrapping when width <= 0). If the
// terminal renderer cannot be built the text is passed through.
func NewRenderer(width int) runner.ContentRenderer {
	opts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if width > 0 {
		opts = append(opts, glamour.WithWordWrap(width))
	}
	r, err := glamour.NewTermRenderer(opts...)
	if err != nil {
		return PlainRenderer
	}
	return func(markdown string) (string, error) {
		out, err := r.Render(markdown)
		if err != nil {
			return markdown, err
		}
		return strings.TrimRight(out, "\n"), nil
	}
}

// PlainRenderer returns the markdown unchanged.
func PlainRenderer(markdown string) (string, error) {
	return markdown, nil
}
