package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/aretw0/walkthrough"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/preference"
	"github.com/aretw0/walkthrough/pkg/runner"
	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
)

var errBadRequest = errors.New("bad request")

// operation is one engine call driven by a request. Page and API routes
// share them and only differ in how they answer.
type operation func(ctx context.Context, eng *walkthrough.Engine, r *http.Request) error

func activate(ctx context.Context, eng *walkthrough.Engine, r *http.Request) error {
	return eng.Activate(ctx, buttonParam(r))
}

func enable(ctx context.Context, eng *walkthrough.Engine, r *http.Request) error {
	id := buttonParam(r)
	if !eng.EnableButton(id) {
		return fmt.Errorf("%w: %s", domain.ErrButtonNotFound, id)
	}
	return nil
}

func back(ctx context.Context, eng *walkthrough.Engine, r *http.Request) error {
	return eng.GoBack(ctx)
}

func restart(ctx context.Context, eng *walkthrough.Engine, r *http.Request) error {
	return eng.Restart(ctx)
}

func setPlatform(ctx context.Context, eng *walkthrough.Engine, r *http.Request) error {
	platform, err := requestValue(r, "platform")
	if err != nil {
		return err
	}
	return eng.SetPlatform(ctx, preference.Normalize(platform))
}

func resetPlatform(ctx context.Context, eng *walkthrough.Engine, r *http.Request) error {
	return eng.ResetPlatform(ctx)
}

func goTo(ctx context.Context, eng *walkthrough.Engine, r *http.Request) error {
	step, err := requestValue(r, "step_id")
	if err != nil {
		return err
	}
	return eng.GoTo(ctx, step)
}

func popState(ctx context.Context, eng *walkthrough.Engine, r *http.Request) error {
	step, err := requestValue(r, "step_id")
	if err != nil {
		return err
	}
	return eng.PopState(ctx, step)
}

// buttonParam returns the unescaped {buttonID}: labels may contain spaces.
func buttonParam(r *http.Request) string {
	raw := chi.URLParam(r, "buttonID")
	if id, err := url.PathUnescape(raw); err == nil {
		return id
	}
	return raw
}

// requestValue reads key from a JSON object body or from form values.
func requestValue(r *http.Request, key string) (string, error) {
	var value string
	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var body map[string]string
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			return "", fmt.Errorf("%w: invalid JSON body: %v", errBadRequest, err)
		}
		value = body[key]
	} else {
		value = r.FormValue(key)
	}
	if strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s is required", errBadRequest, key)
	}
	clean, err := runner.SanitizeInput(value)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return clean, nil
}

// statusFor maps engine errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest), errors.Is(err, runner.ErrUnknownCommand):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrSessionNotFound),
		errors.Is(err, domain.ErrStepNotFound),
		errors.Is(err, domain.ErrButtonNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrButtonDisabled),
		errors.Is(err, domain.ErrHistoryEmpty):
		return http.StatusConflict
	case errors.Is(err, domain.ErrNotReady),
		errors.Is(err, domain.ErrConfigLoad):
		return http.StatusServiceUnavailable
	}
	return http.StatusInternalServerError
}
