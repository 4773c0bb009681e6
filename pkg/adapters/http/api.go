package http

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/aretw0/walkthrough"
	"github.com/aretw0/walkthrough/internal/presentation/graph"
	"github.com/aretw0/walkthrough/pkg/domain"
	stepgraph "github.com/aretw0/walkthrough/pkg/graph"
	"github.com/aretw0/walkthrough/pkg/preference"
	"github.com/aretw0/walkthrough/pkg/session"
	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

// SessionResponse is the body of every JSON session endpoint.
type SessionResponse struct {
	SessionID string            `json:"session_id"`
	View      *walkthrough.View `json:"view,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// GraphResponse describes the loaded workflow.
type GraphResponse struct {
	Source    string            `json:"source"`
	StartStep string            `json:"start_step"`
	Steps     []domain.Step     `json:"steps"`
	Issues    []stepgraph.Issue `json:"issues"`
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Error("response encode failed", "err", err)
	}
}

// handleCreateSession starts a session for API clients. An optional
// {"url": "/?step=x"} body sets the landing URL.
func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	landing := "/"
	if r.ContentLength > 0 {
		var body struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.writeJSON(w, http.StatusBadRequest, SessionResponse{Error: "invalid JSON body"})
			return
		}
		if body.URL != "" {
			landing = body.URL
		}
	}

	id := s.newID()
	sess, _, err := s.sessions.LoadOrStart(r.Context(), id, landing)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, SessionResponse{Error: err.Error()})
		return
	}
	s.recordSessions()

	var view walkthrough.View
	_ = s.sessions.WithLock(r.Context(), id, func(ctx context.Context, sess *session.Session) error {
		view = sess.Engine.View()
		return nil
	})
	status := http.StatusCreated
	if view.State.Phase == domain.PhaseError {
		status = http.StatusServiceUnavailable
	}
	s.writeJSON(w, status, SessionResponse{SessionID: sess.ID, View: &view, Error: view.State.Error})
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	var view walkthrough.View
	err := s.sessions.WithLock(r.Context(), id, func(ctx context.Context, sess *session.Session) error {
		view = sess.Engine.View()
		return nil
	})
	if err != nil {
		s.writeJSON(w, statusFor(err), SessionResponse{SessionID: id, Error: err.Error()})
		return
	}
	s.writeJSON(w, http.StatusOK, SessionResponse{SessionID: id, View: &view})
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if _, ok := s.sessions.Get(id); !ok {
		s.writeJSON(w, http.StatusNotFound, SessionResponse{SessionID: id, Error: domain.ErrSessionNotFound.Error()})
		return
	}
	s.sessions.Delete(r.Context(), id)
	w.WriteHeader(http.StatusNoContent)
}

// apiAction runs op on the session named in the path and answers with the
// resulting view. Failed operations still include the view, since in-place
// errors are part of what the user sees.
func (s *Server) apiAction(op operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "sessionID")
		var view walkthrough.View
		var opErr error
		err := s.sessions.WithLock(r.Context(), id, func(ctx context.Context, sess *session.Session) error {
			opErr = op(ctx, sess.Engine, r)
			view = sess.Engine.View()
			return nil
		})
		if err != nil {
			s.writeJSON(w, statusFor(err), SessionResponse{SessionID: id, Error: err.Error()})
			return
		}
		if opErr != nil {
			s.logger.Debug("api action failed", "session_id", id, "path", r.URL.Path, "err", opErr)
			s.writeJSON(w, statusFor(opErr), SessionResponse{SessionID: id, View: &view, Error: opErr.Error()})
			return
		}
		s.writeJSON(w, http.StatusOK, SessionResponse{SessionID: id, View: &view})
	}
}

// handleGraph returns the workflow as JSON, or as a Mermaid flowchart with
// ?format=mermaid. A ?session= parameter overlays that session's progress.
func (s *Server) handleGraph(w http.ResponseWriter, r *http.Request) {
	g, err := stepgraph.Load(r.Context(), s.source, stepgraph.WithLogger(s.logger))
	if err != nil {
		s.writeJSON(w, http.StatusServiceUnavailable, map[string]string{"error": err.Error()})
		return
	}

	if r.URL.Query().Get("format") != "mermaid" {
		s.writeJSON(w, http.StatusOK, GraphResponse{
			Source:    g.Source(),
			StartStep: g.StartStep(),
			Steps:     g.Steps(),
			Issues:    stepgraph.Validate(g),
		})
		return
	}

	var overlay *graph.GraphOverlay
	if id := r.URL.Query().Get("session"); id != "" {
		if sess, ok := s.sessions.Get(id); ok {
			overlay = graph.OverlayFromState(sess.Engine.State())
		}
	}
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	fmt.Fprint(w, graph.GenerateMermaid(g, overlay))
}

// handleDetect suggests a platform from the user agent and the
// Sec-CH-UA-Platform client hint. Nothing is stored.
func (s *Server) handleDetect(w http.ResponseWriter, r *http.Request) {
	hint := strings.Trim(r.Header.Get("Sec-CH-UA-Platform"), `"`)
	platform := preference.Detect(r.UserAgent(), hint)
	s.writeJSON(w, http.StatusOK, map[string]string{
		"platform":     platform,
		"display_name": preference.DisplayName(platform),
		"description":  preference.Describe(r.UserAgent(), hint),
	})
}

type pinger interface {
	Ping(ctx context.Context) error
}

// handleHealth reports ok, or degraded when the preference store is unreachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":   "ok",
		"version":  strings.TrimSpace(walkthrough.Version),
		"sessions": s.sessions.Len(),
	}
	status := http.StatusOK
	if p, ok := s.store.(pinger); ok {
		if err := p.Ping(r.Context()); err != nil {
			resp["status"] = "degraded"
			resp["preferences"] = err.Error()
			status = http.StatusServiceUnavailable
		}
	}
	s.writeJSON(w, status, resp)
}

// handleEvents streams server-sent events. With a session (query parameter
// or cookie) it sends that session's state diffs. Reload events go to everyone.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("events: streaming not supported")
		return
	}

	sessionID := r.URL.Query().Get("session")
	if sessionID == "" {
		sessionID = s.cookieSession(r)
	}
	if sessionID != "" {
		if _, ok := s.sessions.Get(sessionID); !ok {
			http.Error(w, domain.ErrSessionNotFound.Error(), http.StatusNotFound)
			return
		}
	}

	events, cancel := s.streams.Subscribe(sessionID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()
	s.logger.Debug("events: subscribed", "session_id", sessionID)

	for {
		select {
		case <-r.Context().Done():
			s.logger.Debug("events: client disconnected", "session_id", sessionID)
			return
		case ev, ok := <-events:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", ev.Name, ev.Data)
			flusher.Flush()
		}
	}
}
