// Package config loads CLI settings from an optional walkthrough.yaml (or
// .toml) file and WALKTHROUGH_* environment variables. Flags set on the
// command line take precedence over both; that merge happens in the CLI.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"time"

	"github.com/aretw0/walkthrough/internal/logging"
	"github.com/aretw0/walkthrough/internal/runtime"
	"github.com/aretw0/walkthrough/pkg/location"
	"github.com/aretw0/walkthrough/pkg/persistence/middleware"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "WALKTHROUGH_"

// DefaultFiles are looked up in the working directory when no settings
// path is given.
var DefaultFiles = []string{"walkthrough.yaml", "walkthrough.yml", "walkthrough.toml"}

// Store backends.
const (
	StoreMemory = "memory"
	StoreFile   = "file"
	StoreRedis  = "redis"
	StoreSQLite = "sqlite"
)

// Settings are the tunables shared by the CLI commands.
type Settings struct {
	Config     string `mapstructure:"config"`
	ContentDir string `mapstructure:"content_dir"`

	Store       string        `mapstructure:"store"`
	StorePath   string        `mapstructure:"store_path"`
	RedisAddr   string        `mapstructure:"redis_addr"`
	RedisPrefix string        `mapstructure:"redis_prefix"`
	RedisTTL    time.Duration `mapstructure:"redis_ttl"`

	// StoreKey seals stored preferences with AES-256-GCM when set.
	// StoreKeyFallbacks are previous keys still accepted for reads.
	StoreKey          string   `mapstructure:"store_key"`
	StoreKeyFallbacks []string `mapstructure:"store_key_fallbacks"`

	ActionDelay time.Duration `mapstructure:"action_delay"`
	AnchorDelay time.Duration `mapstructure:"anchor_delay"`

	Port        int           `mapstructure:"port"`
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`
	Metrics     bool          `mapstructure:"metrics"`
	Watch       bool          `mapstructure:"watch"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
}

// Default returns the settings used when nothing is configured.
func Default() Settings {
	return Settings{
		Config:      "workflow_config.json",
		Store:       StoreFile,
		StorePath:   filepath.Join(".walkthrough", "preferences.json"),
		RedisAddr:   "localhost:6379",
		RedisPrefix: "walkthrough:",
		ActionDelay: runtime.DefaultActionDelay,
		AnchorDelay: location.DefaultAnchorDelay,
		Port:        8080,
		IdleTimeout: 30 * time.Minute,
		LogLevel:    "warn",
		LogFormat:   string(logging.FormatText),
	}
}

// Load returns Default overlaid with the settings file at path (or the
// first DefaultFiles entry that exists when path is empty) and then with
// the environment. A missing default file is not an error; a missing
// explicit path is.
func Load(path string, environ []string) (Settings, error) {
	s := Default()

	if path == "" {
		for _, name := range DefaultFiles {
			if _, err := os.Stat(name); err == nil {
				path = name
				break
			}
		}
	}
	if path != "" {
		raw, err := readFile(path)
		if err != nil {
			return s, err
		}
		if err := decode(raw, &s, true); err != nil {
			return s, fmt.Errorf("invalid settings in %s: %w", path, err)
		}
	}

	if err := decode(envMap(environ), &s, false); err != nil {
		return s, fmt.Errorf("invalid %s environment: %w", EnvPrefix, err)
	}
	if err := s.Validate(); err != nil {
		return s, err
	}
	return s, nil
}

// Validate checks value ranges.
func (s Settings) Validate() error {
	switch s.Store {
	case StoreMemory, StoreFile, StoreRedis, StoreSQLite:
	default:
		return fmt.Errorf("unknown store %q (want memory, file, redis or sqlite)", s.Store)
	}
	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("invalid port %d", s.Port)
	}
	if s.ActionDelay < 0 || s.AnchorDelay < 0 {
		return fmt.Errorf("delays must not be negative")
	}
	if _, err := ParseLevel(s.LogLevel); err != nil {
		return err
	}
	if _, err := logging.ParseFormat(s.LogFormat); err != nil {
		return err
	}
	if _, err := s.Encryption(); err != nil {
		return err
	}
	return nil
}

// Encryption returns the store encryption settings, or nil when no
// StoreKey is configured.
func (s Settings) Encryption() (*middleware.EncryptionConfig, error) {
	if s.StoreKey == "" {
		if len(s.StoreKeyFallbacks) > 0 {
			return nil, fmt.Errorf("store_key_fallbacks needs store_key")
		}
		return nil, nil
	}
	active, err := middleware.ParseKey(s.StoreKey)
	if err != nil {
		return nil, fmt.Errorf("invalid store_key: %w", err)
	}
	cfg := &middleware.EncryptionConfig{ActiveKey: active}
	for i, raw := range s.StoreKeyFallbacks {
		k, err := middleware.ParseKey(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid store_key_fallbacks[%d]: %w", i, err)
		}
		cfg.FallbackKeys = append(cfg.FallbackKeys, k)
	}
	return cfg, nil
}

// ParseLevel maps debug, info, warn and error to slog levels.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelWarn, fmt.Errorf("invalid log level %q", s)
	}
	return l, nil
}

func readFile(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading settings: %w", err)
	}
	raw := map[string]any{}
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		err = toml.Unmarshal(data, &raw)
	} else {
		err = yaml.Unmarshal(data, &raw)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing settings %s: %w", path, err)
	}
	return raw, nil
}

// envMap turns WALKTHROUGH_ACTION_DELAY=1s into {"action_delay": "1s"}.
func envMap(environ []string) map[string]any {
	out := map[string]any{}
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if !ok || !strings.HasPrefix(k, EnvPrefix) {
			continue
		}
		out[strings.ToLower(strings.TrimPrefix(k, EnvPrefix))] = v
	}
	return out
}

// decode overlays raw onto s. Strict decoding rejects unknown keys; the
// environment is decoded leniently since unrelated WALKTHROUGH_ variables
// may exist.
func decode(raw map[string]any, s *Settings, strict bool) error {
	if len(raw) == 0 {
		return nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           s,
		WeaklyTypedInput: true,
		ErrorUnused:      strict,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			durationHook,
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return err
	}
	return decoder.Decode(raw)
}

// durationHook reads bare numbers as milliseconds.
func durationHook(from, to reflect.Type, data any) (any, error) {
	if to != reflect.TypeOf(time.Duration(0)) {
		return data, nil
	}
	switch v := data.(type) {
	case int:
		return time.Duration(v) * time.Millisecond, nil
	case int64:
		return time.Duration(v) * time.Millisecond, nil
	case float64:
		return time.Duration(v * float64(time.Millisecond)), nil
	}
	return data, nil
}
