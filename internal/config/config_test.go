package config

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dshills/mdstudio/internal/dirty"
	"github.com/dshills/mdstudio/internal/engine/position"
	"github.com/dshills/mdstudio/internal/theme"
)

type memFS map[string]string

func (m memFS) ReadFile(path string) ([]byte, error) {
	data, ok := m[path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return []byte(data), nil
}

func noEnv() []string { return nil }

func TestDefault(t *testing.T) {
	cfg := Default()
	require.NoError(t, cfg.Validate())
	assert.Equal(t, "mdstudio-", cfg.Storage.KeyPrefix)
	assert.Equal(t, 300*time.Millisecond, cfg.Storage.DocumentsDelay)
	assert.Equal(t, 150*time.Millisecond, cfg.Storage.ActiveDelay)
	assert.Equal(t, position.UnitUTF16, cfg.ColumnUnit())
	assert.Equal(t, dirty.PolicyQueue, cfg.ClosePolicy())
	assert.Equal(t, theme.Light, cfg.DefaultTheme())
	assert.Equal(t, "mdstudio-files", cfg.Keys().Files)
}

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load("/nowhere/config.toml", WithFS(memFS{}), WithEnviron(noEnv))
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoad_TOML(t *testing.T) {
	fsys := memFS{"/c.toml": `
[storage]
path = "/tmp/session.json"
key_prefix = "md-"
documents_delay = "1s"
active_delay = 50

[logging]
level = "debug"
format = "json"

[editor]
column_unit = "grapheme"
close_prompt = "replace"

[theme]
default = "dark"
`}
	cfg, err := Load("/c.toml", WithFS(fsys), WithEnviron(noEnv))
	require.NoError(t, err)

	assert.Equal(t, "/tmp/session.json", cfg.Storage.Path)
	assert.Equal(t, "md-", cfg.Storage.KeyPrefix)
	assert.Equal(t, time.Second, cfg.Storage.DocumentsDelay)
	assert.Equal(t, 50*time.Millisecond, cfg.Storage.ActiveDelay)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.Equal(t, position.UnitGrapheme, cfg.ColumnUnit())
	assert.Equal(t, dirty.PolicyReplace, cfg.ClosePolicy())
	assert.Equal(t, theme.Dark, cfg.DefaultTheme())
}

func TestLoad_YAML(t *testing.T) {
	fsys := memFS{"/c.yaml": "storage:\n  active_delay: 20\ntheme:\n  default: dark\n"}
	cfg, err := Load("/c.yaml", WithFS(fsys), WithEnviron(noEnv))
	require.NoError(t, err)
	assert.Equal(t, 20*time.Millisecond, cfg.Storage.ActiveDelay)
	assert.Equal(t, theme.Dark, cfg.DefaultTheme())
	assert.Equal(t, 300*time.Millisecond, cfg.Storage.DocumentsDelay)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	fsys := memFS{"/c.toml": "[logging]\nlevel = \"warn\"\n[storage]\nkey_prefix = \"file-\"\n"}
	env := func() []string {
		return []string{
			"MDSTUDIO_LOG_LEVEL=error",
			"MDSTUDIO_STORAGE_KEY_PREFIX=env-",
			"MDSTUDIO_STORAGE_DOCUMENTS_DELAY=2s",
			"MDSTUDIO_THEME=dark",
		}
	}
	cfg, err := Load("/c.toml", WithFS(fsys), WithEnviron(env))
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.Logging.Level)
	assert.Equal(t, "env-", cfg.Storage.KeyPrefix)
	assert.Equal(t, 2*time.Second, cfg.Storage.DocumentsDelay)
	assert.Equal(t, theme.Dark, cfg.DefaultTheme())
}

func TestLoad_EnvKeepsStringSettingsAsTyped(t *testing.T) {
	tests := []struct {
		name  string
		env   string
		check func(t *testing.T, cfg *Config)
	}{
		{"numeric key prefix", "MDSTUDIO_STORAGE_KEY_PREFIX=2024", func(t *testing.T, cfg *Config) {
			assert.Equal(t, "2024", cfg.Storage.KeyPrefix)
		}},
		{"duration-like key prefix", "MDSTUDIO_STORAGE_KEY_PREFIX=1h", func(t *testing.T, cfg *Config) {
			assert.Equal(t, "1h", cfg.Storage.KeyPrefix)
		}},
		{"bool-like path", "MDSTUDIO_STORAGE_PATH=true", func(t *testing.T, cfg *Config) {
			assert.Equal(t, "true", cfg.Storage.Path)
		}},
		{"numeric log file", "MDSTUDIO_LOGGING_FILE=1", func(t *testing.T, cfg *Config) {
			assert.Equal(t, "1", cfg.Logging.File)
		}},
		{"bare milliseconds", "MDSTUDIO_STORAGE_ACTIVE_DELAY=300", func(t *testing.T, cfg *Config) {
			assert.Equal(t, 300*time.Millisecond, cfg.Storage.ActiveDelay)
		}},
		{"duration string", "MDSTUDIO_STORAGE_ACTIVE_DELAY=300ms", func(t *testing.T, cfg *Config) {
			assert.Equal(t, 300*time.Millisecond, cfg.Storage.ActiveDelay)
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Load("", WithEnviron(func() []string { return []string{tt.env} }))
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name string
		body string
		path string
	}{
		{"wrong type", "[logging]\nlevel = 3\n", "logging.level"},
		{"bad duration", "[storage]\nactive_delay = \"soon\"\n", "storage.active_delay"},
		{"zero delay", "[storage]\ndocuments_delay = 0\n", "storage.documents_delay"},
		{"bad unit", "[editor]\ncolumn_unit = \"rune\"\n", "editor.column_unit"},
		{"bad policy", "[editor]\nclose_prompt = \"stack\"\n", "editor.close_prompt"},
		{"bad theme", "[theme]\ndefault = \"blue\"\n", "theme.default"},
		{"bad format", "[logging]\nformat = \"xml\"\n", "logging.format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load("/c.toml", WithFS(memFS{"/c.toml": tt.body}), WithEnviron(noEnv))
			require.ErrorIs(t, err, ErrInvalidValue)
			var ferr *FieldError
			require.ErrorAs(t, err, &ferr)
			assert.Equal(t, tt.path, ferr.Path)
		})
	}
}

func TestLoad_UnsupportedExtension(t *testing.T) {
	_, err := Load("/c.json", WithFS(memFS{}), WithEnviron(noEnv))
	assert.Error(t, err)
}

func TestWatch_ReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[theme]\ndefault = \"light\"\n"), 0o644))

	got := make(chan *Config, 4)
	w, err := Watch(t.Context(), path, func(cfg *Config, err error) {
		if err != nil {
			return
		}
		select {
		case got <- cfg:
		default:
		}
	}, WithEnviron(noEnv))
	require.NoError(t, err)
	defer w.Close()

	require.NoError(t, os.WriteFile(path, []byte("[theme]\ndefault = \"dark\"\n"), 0o644))

	select {
	case cfg := <-got:
		assert.Equal(t, theme.Dark, cfg.DefaultTheme())
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}
}

func TestWatch_CloseStops(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")

	w, err := Watch(t.Context(), path, func(*Config, error) {})
	require.NoError(t, err)
	assert.Equal(t, path, w.Path())
	require.NoError(t, w.Close())
	require.NoError(t, w.Close())

	select {
	case <-w.Done():
	default:
		t.Fatal("watcher still running")
	}
}

func TestWatch_CloseWaitsForRunningReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("[theme]\ndefault = \"light\"\n"), 0o644))

	started := make(chan struct{}, 1)
	release := make(chan struct{})
	var calls atomic.Int32
	w, err := Watch(t.Context(), path, func(*Config, error) {
		calls.Add(1)
		select {
		case started <- struct{}{}:
		default:
		}
		<-release
	}, WithEnviron(noEnv))
	require.NoError(t, err)

	require.NoError(t, os.WriteFile(path, []byte("[theme]\ndefault = \"dark\"\n"), 0o644))
	select {
	case <-started:
	case <-time.After(5 * time.Second):
		t.Fatal("no reload after write")
	}

	closed := make(chan struct{})
	go func() {
		_ = w.Close()
		close(closed)
	}()
	select {
	case <-closed:
		t.Fatal("Close returned while a reload was running")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	select {
	case <-closed:
	case <-time.After(5 * time.Second):
		t.Fatal("Close did not return")
	}

	n := calls.Load()
	require.NoError(t, os.WriteFile(path, []byte("[theme]\ndefault = \"light\"\n"), 0o644))
	time.Sleep(3 * ReloadDelay)
	assert.Equal(t, n, calls.Load())
}
