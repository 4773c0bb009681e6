package http

import (
	"context"
	"fmt"
	"net/http"
	"sync"

	"github.com/aretw0/walkthrough"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/preference"
	"github.com/aretw0/walkthrough/pkg/runner"
	"github.com/aretw0/walkthrough/pkg/session"
	json "github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsMessage is one server-to-client WebSocket frame.
type wsMessage struct {
	Type  string            `json:"type"` // "view", "diff", "reload", "error"
	View  *walkthrough.View `json:"view,omitempty"`
	Data  json.RawMessage   `json:"data,omitempty"`
	Error string            `json:"error,omitempty"`
}

// handleWebSocket drives a session interactively. Clients send runner
// commands ({"command":"activate","arg":"Next"}) and receive the view after
// each one, plus the session's diff and reload events as they happen.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = s.cookieSession(r)
	}
	if _, ok := s.sessions.Get(sessionID); sessionID == "" || !ok {
		http.Error(w, domain.ErrSessionNotFound.Error(), http.StatusNotFound)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	var writeMu sync.Mutex
	send := func(msg wsMessage) error {
		writeMu.Lock()
		defer writeMu.Unlock()
		return conn.WriteJSON(msg)
	}

	events, cancel := s.streams.Subscribe(sessionID)
	defer cancel()
	go func() {
		for ev := range events {
			if err := send(wsMessage{Type: ev.Name, Data: json.RawMessage(ev.Data)}); err != nil {
				return
			}
		}
	}()

	if err := s.sendView(r.Context(), sessionID, nil, send); err != nil {
		return
	}

	for {
		var cmd runner.Command
		if err := conn.ReadJSON(&cmd); err != nil {
			s.logger.Debug("websocket closed", "session_id", sessionID, "err", err)
			return
		}
		var opErr error
		err := s.sessions.WithLock(r.Context(), sessionID, func(ctx context.Context, sess *session.Session) error {
			opErr = applyCommand(ctx, sess.Engine, cmd)
			return nil
		})
		if err != nil {
			_ = send(wsMessage{Type: "error", Error: err.Error()})
			return
		}
		if err := s.sendView(r.Context(), sessionID, opErr, send); err != nil {
			return
		}
	}
}

func (s *Server) sendView(ctx context.Context, sessionID string, opErr error, send func(wsMessage) error) error {
	var view walkthrough.View
	err := s.sessions.WithLock(ctx, sessionID, func(ctx context.Context, sess *session.Session) error {
		view = sess.Engine.View()
		return nil
	})
	if err != nil {
		return send(wsMessage{Type: "error", Error: err.Error()})
	}
	msg := wsMessage{Type: "view", View: &view}
	if opErr != nil {
		msg.Type = "error"
		msg.Error = opErr.Error()
	}
	return send(msg)
}

// applyCommand runs a runner command against eng.
func applyCommand(ctx context.Context, eng *walkthrough.Engine, cmd runner.Command) error {
	switch cmd.Kind {
	case runner.CommandActivate:
		return eng.Activate(ctx, cmd.Arg)
	case runner.CommandBack:
		return eng.GoBack(ctx)
	case runner.CommandRestart:
		return eng.Restart(ctx)
	case runner.CommandPlatform:
		platform := preference.Normalize(cmd.Arg)
		if platform == "" {
			return fmt.Errorf("%w: platform is required", errBadRequest)
		}
		return eng.SetPlatform(ctx, platform)
	case runner.CommandReset:
		return eng.ResetPlatform(ctx)
	case runner.CommandGoTo:
		return eng.GoTo(ctx, cmd.Arg)
	case runner.CommandEnable:
		if !eng.EnableButton(cmd.Arg) {
			return fmt.Errorf("%w: %s", domain.ErrButtonNotFound, cmd.Arg)
		}
		return nil
	}
	return fmt.Errorf("%w: %q", runner.ErrUnknownCommand, cmd.Kind)
}
