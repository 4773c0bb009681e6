package runner

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/walkthrough"
	"github.com/aretw0/walkthrough/pkg/domain"
)

// ContentRenderer transforms the step text before it is printed.
// This allows markdown-to-ANSI rendering without coupling this package to a terminal library.
type ContentRenderer func(string) (string, error)

// TextHandler implements the standard text-based interface.
type TextHandler struct {
	Reader   *bufio.Reader
	Writer   io.Writer
	Renderer ContentRenderer
	// ShowURL prints the recorded URL under each step.
	ShowURL bool

	inputChan chan inputResult
	startOnce sync.Once
}

type inputResult struct {
	text string
	err  error
}

// TextHandlerOption defines configuration for TextHandler.
type TextHandlerOption func(*TextHandler)

// WithTextHandlerRenderer configures the content renderer.
func WithTextHandlerRenderer(renderer ContentRenderer) TextHandlerOption {
	return func(h *TextHandler) {
		h.Renderer = renderer
	}
}

// WithTextHandlerURL prints the step URL after each page.
func WithTextHandlerURL(show bool) TextHandlerOption {
	return func(h *TextHandler) {
		h.ShowURL = show
	}
}

// NewTextHandler creates a handler for standard text IO.
func NewTextHandler(r io.Reader, w io.Writer, opts ...TextHandlerOption) *TextHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	h := &TextHandler{
		Reader: bufio.NewReader(r),
		Writer: w,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// initPump starts the goroutine that reads stdin. Reads cannot be
// cancelled, so the pump outlives individual Input calls and Input selects
// on its channel and the context.
func (h *TextHandler) initPump() {
	h.startOnce.Do(func() {
		h.inputChan = make(chan inputResult)
		go h.pump()
	})
}

func (h *TextHandler) pump() {
	for {
		text, err := h.Reader.ReadString('\n')
		if text != "" {
			h.inputChan <- inputResult{text: text}
		}
		if err != nil {
			if err == io.EOF {
				close(h.inputChan)
				return
			}
			h.inputChan <- inputResult{err: err}
			// Backoff so a persistent read error does not spin.
			time.Sleep(50 * time.Millisecond)
		}
	}
}

// Output prints the step title, its text and the numbered controls.
func (h *TextHandler) Output(ctx context.Context, view walkthrough.View) error {
	var sb strings.Builder

	title := view.Title
	if title == "" {
		title = view.StepID
	}
	fmt.Fprintf(&sb, "\n== %s ==\n\n", title)

	text := view.Text
	if h.Renderer != nil {
		if rendered, err := h.Renderer(text); err == nil {
			text = rendered
		}
	}
	if text = strings.TrimSpace(text); text != "" {
		sb.WriteString(text)
		sb.WriteString("\n\n")
	}

	for i, b := range view.Buttons {
		fmt.Fprintf(&sb, "  [%d] %s\n", i+1, buttonText(b))
	}
	if h.ShowURL && view.URL != "" {
		fmt.Fprintf(&sb, "\n  %s\n", view.URL)
	}

	_, err := io.WriteString(h.Writer, sb.String())
	return err
}

func buttonText(b domain.Button) string {
	label := b.Label
	if b.Action != nil && b.Action.IsExternalLink() {
		label += " ↗"
	}
	if b.Disabled {
		label += " (disabled)"
	}
	return label
}

// Input prompts and returns one sanitized line.
func (h *TextHandler) Input(ctx context.Context) (string, error) {
	h.initPump()

	for {
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
			fmt.Fprint(h.Writer, "> ")
		}

		select {
		case <-ctx.Done():
			return "", ctx.Err()
		case res, ok := <-h.inputChan:
			if !ok {
				return "", io.EOF
			}
			if res.err != nil {
				return "", res.err
			}
			clean, err := SanitizeInput(res.text)
			if err != nil {
				fmt.Fprintf(h.Writer, "Error: %v. Please try again.\n", err)
				continue
			}
			return clean, nil
		}
	}
}

// SystemOutput prints a meta-message with a [System] prefix.
func (h *TextHandler) SystemOutput(ctx context.Context, msg string) error {
	_, err := fmt.Fprintf(h.Writer, "[System] %s\n", msg)
	return err
}
