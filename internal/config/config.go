// Package config holds mdstudio's settings.
//
// Settings come from, in increasing precedence: built-in defaults, a TOML or
// YAML file chosen by extension, and MDSTUDIO_* environment variables.
// A missing file is not an error.
package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/dshills/mdstudio/internal/config/loader"
	"github.com/dshills/mdstudio/internal/dirty"
	"github.com/dshills/mdstudio/internal/engine/position"
	"github.com/dshills/mdstudio/internal/logging"
	"github.com/dshills/mdstudio/internal/persist"
	"github.com/dshills/mdstudio/internal/theme"
)

// EnvPrefix is the prefix of environment overrides.
const EnvPrefix = "MDSTUDIO_"

// Config is the full settings tree.
type Config struct {
	Storage StorageConfig
	Logging LoggingConfig
	Editor  EditorConfig
	Theme   ThemeConfig
}

// StorageConfig controls where and how the session is saved.
type StorageConfig struct {
	Path           string
	KeyPrefix      string
	DocumentsDelay time.Duration
	ActiveDelay    time.Duration
}

// LoggingConfig controls log output.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // text, json
	File   string // empty means stderr
}

// EditorConfig controls editing behavior.
type EditorConfig struct {
	ColumnUnit  string // byte, utf16, grapheme
	ClosePrompt string // queue, replace
}

// ThemeConfig holds the theme used when none is stored.
type ThemeConfig struct {
	Default string
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Storage: StorageConfig{
			Path:           DefaultStoragePath(),
			KeyPrefix:      persist.DefaultKeyPrefix,
			DocumentsDelay: persist.DefaultDocumentsDelay,
			ActiveDelay:    persist.DefaultActiveDelay,
		},
		Logging: LoggingConfig{Level: "info", Format: "text"},
		Editor:  EditorConfig{ColumnUnit: position.UnitUTF16.String(), ClosePrompt: dirty.PolicyQueue.String()},
		Theme:   ThemeConfig{Default: string(theme.Light)},
	}
}

// DefaultStoragePath returns the session file under the user config
// directory, or a file in the working directory when there is none.
func DefaultStoragePath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ".mdstudio-session.json"
	}
	return filepath.Join(dir, "mdstudio", "session.json")
}

// DefaultConfigPath returns the config file looked up when none is given.
func DefaultConfigPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "mdstudio", "config.toml")
}

// LoadOption configures Load.
type LoadOption func(*loadOptions)

type loadOptions struct {
	fs      loader.FileSystem
	environ func() []string
}

// WithFS reads config files from fsys.
func WithFS(fsys loader.FileSystem) LoadOption {
	return func(o *loadOptions) {
		o.fs = fsys
	}
}

// WithEnviron reads environment overrides from fn instead of os.Environ.
func WithEnviron(fn func() []string) LoadOption {
	return func(o *loadOptions) {
		o.environ = fn
	}
}

// Load reads path (if non-empty) and the environment over the defaults and
// validates the result.
func Load(path string, opts ...LoadOption) (*Config, error) {
	o := loadOptions{fs: loader.OSFS{}, environ: os.Environ}
	for _, opt := range opts {
		opt(&o)
	}

	merged := make(map[string]any)
	if path != "" {
		l, err := loader.ForPath(o.fs, path)
		if err != nil {
			return nil, err
		}
		fileMap, err := l.Load()
		if err != nil {
			return nil, err
		}
		merged = loader.DeepMerge(merged, fileMap)
	}

	env := loader.NewEnvLoader(EnvPrefix).WithEnviron(o.environ)
	env.AddMapping(EnvPrefix+"LOG_LEVEL", "logging.level")
	env.AddMapping(EnvPrefix+"THEME", "theme.default")
	envMap, err := env.Load()
	if err != nil {
		return nil, err
	}
	merged = loader.DeepMerge(merged, envMap)

	cfg := Default()
	if err := cfg.apply(merged); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// apply copies recognized settings from m. Unknown keys are ignored.
func (c *Config) apply(m map[string]any) error {
	fields := []struct {
		path string
		set  func(any) error
	}{
		{"storage.path", stringField("storage.path", &c.Storage.Path)},
		{"storage.key_prefix", stringField("storage.key_prefix", &c.Storage.KeyPrefix)},
		{"storage.documents_delay", durationField("storage.documents_delay", &c.Storage.DocumentsDelay)},
		{"storage.active_delay", durationField("storage.active_delay", &c.Storage.ActiveDelay)},
		{"logging.level", stringField("logging.level", &c.Logging.Level)},
		{"logging.format", stringField("logging.format", &c.Logging.Format)},
		{"logging.file", stringField("logging.file", &c.Logging.File)},
		{"editor.column_unit", stringField("editor.column_unit", &c.Editor.ColumnUnit)},
		{"editor.close_prompt", stringField("editor.close_prompt", &c.Editor.ClosePrompt)},
		{"theme.default", stringField("theme.default", &c.Theme.Default)},
	}
	for _, f := range fields {
		v, ok := lookup(m, f.path)
		if !ok {
			continue
		}
		if err := f.set(v); err != nil {
			return err
		}
	}
	return nil
}

func lookup(m map[string]any, path string) (any, bool) {
	section, key, _ := strings.Cut(path, ".")
	sub, ok := m[section].(map[string]any)
	if !ok {
		return nil, false
	}
	v, ok := sub[key]
	return v, ok
}

func stringField(path string, dst *string) func(any) error {
	return func(v any) error {
		s, ok := v.(string)
		if !ok {
			return invalid(path, v, "want string, got %T", v)
		}
		*dst = s
		return nil
	}
}

// durationField accepts Go duration strings and integer milliseconds,
// either as numbers or as digit strings.
func durationField(path string, dst *time.Duration) func(any) error {
	return func(v any) error {
		switch d := v.(type) {
		case string:
			if ms, err := strconv.ParseInt(d, 10, 64); err == nil {
				*dst = time.Duration(ms) * time.Millisecond
				return nil
			}
			parsed, err := time.ParseDuration(d)
			if err != nil {
				return invalid(path, v, "%v", err)
			}
			*dst = parsed
		case int:
			*dst = time.Duration(d) * time.Millisecond
		case int64:
			*dst = time.Duration(d) * time.Millisecond
		case uint64:
			*dst = time.Duration(d) * time.Millisecond
		case float64:
			*dst = time.Duration(d * float64(time.Millisecond))
		default:
			return invalid(path, v, "want duration, got %T", v)
		}
		return nil
	}
}

// Validate checks every setting.
func (c *Config) Validate() error {
	if c.Storage.Path == "" {
		return invalid("storage.path", c.Storage.Path, "must not be empty")
	}
	if c.Storage.DocumentsDelay <= 0 {
		return invalid("storage.documents_delay", c.Storage.DocumentsDelay, "must be positive")
	}
	if c.Storage.ActiveDelay <= 0 {
		return invalid("storage.active_delay", c.Storage.ActiveDelay, "must be positive")
	}
	if !logging.ValidLevel(c.Logging.Level) {
		return invalid("logging.level", c.Logging.Level, "unknown level")
	}
	switch c.Logging.Format {
	case "text", "json":
	default:
		return invalid("logging.format", c.Logging.Format, "want text or json")
	}
	if _, ok := position.ParseUnit(c.Editor.ColumnUnit); !ok {
		return invalid("editor.column_unit", c.Editor.ColumnUnit, "want byte, utf16 or grapheme")
	}
	if _, ok := dirty.ParsePolicy(c.Editor.ClosePrompt); !ok {
		return invalid("editor.close_prompt", c.Editor.ClosePrompt, "want queue or replace")
	}
	if _, err := theme.Parse(c.Theme.Default); err != nil {
		return invalid("theme.default", c.Theme.Default, "%v", err)
	}
	return nil
}

// ColumnUnit returns the parsed column unit.
func (c *Config) ColumnUnit() position.Unit {
	u, _ := position.ParseUnit(c.Editor.ColumnUnit)
	return u
}

// ClosePolicy returns the parsed close-prompt policy.
func (c *Config) ClosePolicy() dirty.Policy {
	p, _ := dirty.ParsePolicy(c.Editor.ClosePrompt)
	return p
}

// DefaultTheme returns the parsed default theme.
func (c *Config) DefaultTheme() theme.Theme {
	t, err := theme.Parse(c.Theme.Default)
	if err != nil {
		return theme.Light
	}
	return t
}

// Keys returns the store keys for the configured prefix.
func (c *Config) Keys() persist.Keys {
	return persist.NewKeys(c.Storage.KeyPrefix)
}
