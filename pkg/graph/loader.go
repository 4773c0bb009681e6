package graph

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"path"
	"strings"

	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/aretw0/walkthrough/pkg/domain"
	"github.com/aretw0/walkthrough/pkg/ports"
	json "github.com/goccy/go-json"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// configDocument mirrors the on-disk configuration.
// Pointer fields distinguish "absent" from "empty".
type configDocument struct {
	Workflow *workflowDocument `mapstructure:"workflow"`
}

type workflowDocument struct {
	StartStep string                  `mapstructure:"startStep"`
	Steps     map[string]*stepDocument `mapstructure:"steps"`
}

type stepDocument struct {
	Title       *string          `mapstructure:"title"`
	Content     *string          `mapstructure:"content"`
	ContentFile *string          `mapstructure:"contentFile"`
	Actions     []actionDocument `mapstructure:"actions"`
}

type actionDocument struct {
	Label         string `mapstructure:"label"`
	NextStep      string `mapstructure:"nextStep"`
	Type          string `mapstructure:"type"`
	URL           string `mapstructure:"url"`
	StartDisabled bool   `mapstructure:"startDisabled"`
}

// Option configures Load.
type Option func(*loadOptions)

type loadOptions struct {
	logger *slog.Logger
}

// WithLogger reports validation warnings found while loading.
func WithLogger(logger *slog.Logger) Option {
	return func(o *loadOptions) {
		o.logger = logger
	}
}

// Load fetches the configuration from source and builds the StepGraph.
// Fetch failures yield an Unreachable LoadError; structural problems yield
// a Malformed one. Dangling nextStep references are only logged: they are
// reported at navigation time as domain.ErrStepNotFound.
func Load(ctx context.Context, source ports.ConfigSource, opts ...Option) (*StepGraph, error) {
	o := loadOptions{logger: logging.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}

	name := source.Name()
	data, err := source.Load(ctx)
	if err != nil {
		return nil, &LoadError{Kind: Unreachable, Source: name, Err: err}
	}

	g, err := Parse(name, data)
	if err != nil {
		return nil, err
	}

	for _, issue := range Validate(g) {
		o.logger.Warn("workflow graph issue",
			"severity", issue.Severity,
			"step_id", issue.StepID,
			"issue", issue.Message,
		)
	}
	o.logger.Debug("workflow loaded", "source", name, "steps", g.Len(), "start_step", g.StartStep())

	return g, nil
}

// Parse decodes a JSON, YAML or TOML configuration document. TOML is
// selected by a ".toml" name; JSON and YAML are told apart by content.
func Parse(name string, data []byte) (*StepGraph, error) {
	malformed := func(err error) error {
		return &LoadError{Kind: Malformed, Source: name, Err: err}
	}

	raw, err := decodeRaw(name, data)
	if err != nil {
		return nil, malformed(err)
	}

	var doc configDocument
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           &doc,
		TagName:          "mapstructure",
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, malformed(err)
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, malformed(fmt.Errorf("decode workflow: %w", err))
	}

	if doc.Workflow == nil {
		return nil, malformed(fmt.Errorf("missing top-level 'workflow' object"))
	}

	steps := make(map[string]domain.Step, len(doc.Workflow.Steps))
	for id, sd := range doc.Workflow.Steps {
		step, err := toStep(id, sd)
		if err != nil {
			return nil, malformed(fmt.Errorf("step %q: %w", id, err))
		}
		steps[id] = step
	}

	return build(name, doc.Workflow.StartStep, steps)
}

func toStep(id string, sd *stepDocument) (domain.Step, error) {
	if sd == nil {
		return domain.Step{}, fmt.Errorf("definition is empty")
	}
	if sd.Title == nil {
		return domain.Step{}, fmt.Errorf("title is required")
	}
	switch {
	case sd.Content != nil && sd.ContentFile != nil:
		return domain.Step{}, fmt.Errorf("content and contentFile are mutually exclusive")
	case sd.Content == nil && sd.ContentFile == nil:
		return domain.Step{}, fmt.Errorf("one of content or contentFile is required")
	case sd.ContentFile != nil && *sd.ContentFile == "":
		return domain.Step{}, fmt.Errorf("contentFile is empty")
	}

	step := domain.Step{
		ID:      id,
		Title:   *sd.Title,
		Actions: make([]domain.Action, 0, len(sd.Actions)),
	}
	if sd.Content != nil {
		step.Content = *sd.Content
	}
	if sd.ContentFile != nil {
		step.ContentFile = *sd.ContentFile
	}
	for _, ad := range sd.Actions {
		step.Actions = append(step.Actions, domain.Action{
			Label:         ad.Label,
			NextStep:      ad.NextStep,
			Type:          ad.Type,
			URL:           ad.URL,
			StartDisabled: ad.StartDisabled,
		})
	}
	return step, nil
}

// decodeRaw parses TOML for .toml names, JSON when the document starts
// with '{' and YAML otherwise.
func decodeRaw(name string, data []byte) (map[string]any, error) {
	trimmed := bytes.TrimSpace(bytes.TrimPrefix(data, []byte("\xef\xbb\xbf")))
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("configuration is empty")
	}

	var raw map[string]any
	if strings.EqualFold(path.Ext(name), ".toml") {
		if err := toml.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("invalid TOML: %w", err)
		}
		return raw, nil
	}
	if trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &raw); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return raw, nil
	}
	if err := yaml.Unmarshal(trimmed, &raw); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if raw == nil {
		return nil, fmt.Errorf("configuration is empty")
	}
	return raw, nil
}
