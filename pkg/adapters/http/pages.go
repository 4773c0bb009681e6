package http

import (
	"context"
	"html/template"
	"net/http"
	"strings"

	"github.com/aretw0/walkthrough"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/preference"
	"github.com/aretw0/walkthrough/pkg/session"
)

type platformOption struct {
	Value    string
	Label    string
	Selected bool
}

type pageData struct {
	View      walkthrough.View
	Body      template.HTML
	SessionID string
	Platforms []platformOption
	Version   string
}

// handlePage renders the visitor's current step. A "step" query parameter
// that differs from the current step is a browser back/forward move and is
// handled as popstate. A new session deep-links to it instead.
func (s *Server) handlePage(w http.ResponseWriter, r *http.Request) {
	sess, created, err := s.ensureSession(w, r, r.URL.RequestURI())
	if err != nil {
		s.logger.Error("failed to create session", "err", err)
		http.Error(w, "failed to create session", http.StatusInternalServerError)
		return
	}

	var view walkthrough.View
	err = s.sessions.WithLock(r.Context(), sess.ID, func(ctx context.Context, sess *session.Session) error {
		eng := sess.Engine
		target := r.URL.Query().Get(domain.QueryParamStep)
		if !created && target != "" && target != eng.State().CurrentStepID && eng.State().Phase == domain.PhaseReady {
			if err := eng.PopState(ctx, target); err != nil {
				s.logger.Debug("popstate failed", "session_id", sess.ID, "step_id", target, "err", err)
			}
		}
		view = eng.View()
		return nil
	})
	if err != nil {
		http.Error(w, err.Error(), statusFor(err))
		return
	}

	status := http.StatusOK
	switch {
	case view.State.Phase == domain.PhaseError:
		status = http.StatusServiceUnavailable
	case view.Error:
		status = http.StatusNotFound
	}
	s.renderPage(w, status, sess.ID, view)
}

func (s *Server) renderPage(w http.ResponseWriter, status int, sessionID string, view walkthrough.View) {
	data := pageData{
		View:      view,
		Body:      template.HTML(view.Body), // produced by the engine's DOM serializer
		SessionID: sessionID,
		Version:   strings.TrimSpace(walkthrough.Version),
	}
	for _, p := range domain.Platforms {
		data.Platforms = append(data.Platforms, platformOption{
			Value:    p,
			Label:    preference.DisplayName(p),
			Selected: p == view.State.Platform,
		})
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := pageTemplate.Execute(w, data); err != nil {
		s.logger.Error("page render failed", "err", err)
	}
}

// pageAction runs op on the visitor's session and redirects (303) to the
// URL the engine recorded. Engine errors are already shown on the page, so
// they only get logged.
func (s *Server) pageAction(op operation) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, _, err := s.ensureSession(w, r, "/")
		if err != nil {
			s.logger.Error("failed to create session", "err", err)
			http.Error(w, "failed to create session", http.StatusInternalServerError)
			return
		}

		target := "/"
		var opErr error
		err = s.sessions.WithLock(r.Context(), sess.ID, func(ctx context.Context, sess *session.Session) error {
			opErr = op(ctx, sess.Engine, r)
			if u := sess.Engine.CurrentURL(); u != "" {
				target = u
			}
			return nil
		})
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}
		if opErr != nil {
			s.logger.Debug("page action failed", "session_id", sess.ID, "path", r.URL.Path, "err", opErr)
			if statusFor(opErr) == http.StatusBadRequest {
				http.Error(w, opErr.Error(), http.StatusBadRequest)
				return
			}
		}
		http.Redirect(w, r, target, http.StatusSeeOther)
	}
}
