package runner

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/walkthrough"
	json "github.com/goccy/go-json"
)

// Message is one JSON line written by JSONHandler.
type Message struct {
	Type    string            `json:"type"`
	View    *walkthrough.View `json:"view,omitempty"`
	Message string            `json:"message,omitempty"`
}

const (
	MessageView   = "view"
	MessageSystem = "system"
)

// JSONHandler implements the IOHandler interface for structured JSON-Lines communication.
// Each input line is either a JSON string ("2"), a Command object
// ({"command":"goto","arg":"install"}) or raw text.
type JSONHandler struct {
	Reader  *bufio.Reader
	Writer  io.Writer
	Encoder *json.Encoder

	mu sync.Mutex
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		Encoder: json.NewEncoder(w),
	}
}

// Output emits the view as a single JSON line.
func (h *JSONHandler) Output(ctx context.Context, view walkthrough.View) error {
	return h.encode(Message{Type: MessageView, View: &view})
}

// SystemOutput emits a system message line.
func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	return h.encode(Message{Type: MessageSystem, Message: msg})
}

func (h *JSONHandler) encode(m Message) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.Encoder.Encode(m)
}

// Input reads one line and normalizes it to command text.
func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || strings.TrimSpace(text) == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var s string
	if err := json.Unmarshal([]byte(text), &s); err == nil {
		return SanitizeInput(s)
	}

	var cmd Command
	if err := json.Unmarshal([]byte(text), &cmd); err == nil && cmd.Kind != CommandNone {
		return SanitizeInput(strings.TrimSpace(commandLine(cmd)))
	}

	return SanitizeInput(text)
}

// commandLine renders cmd in the text syntax ParseCommand understands.
func commandLine(cmd Command) string {
	switch cmd.Kind {
	case CommandActivate:
		return cmd.Arg
	case CommandBack:
		return "back"
	case CommandRestart:
		return "restart"
	case CommandPlatform:
		return "platform " + cmd.Arg
	case CommandReset:
		return "reset"
	case CommandGoTo:
		return "go " + cmd.Arg
	case CommandEnable:
		return "enable " + cmd.Arg
	case CommandHelp:
		return "help"
	case CommandQuit:
		return "quit"
	}
	return ""
}
