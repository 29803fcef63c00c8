// Package theme keeps the light/dark preference and the temporary
// light-theme override used while exporting.
package theme

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/dshills/mdstudio/internal/persist"
)

// ErrInvalidTheme indicates a theme name other than "light" or "dark".
var ErrInvalidTheme = errors.New("invalid theme")

// Theme is a visual theme name.
type Theme string

const (
	// Light is the light theme.
	Light Theme = "light"
	// Dark is the dark theme.
	Dark Theme = "dark"
)

// Parse validates a theme name.
func Parse(s string) (Theme, error) {
	switch Theme(s) {
	case Light, Dark:
		return Theme(s), nil
	default:
		return "", ErrInvalidTheme
	}
}

// Opposite returns the other theme.
func (t Theme) Opposite() Theme {
	if t == Dark {
		return Light
	}
	return Dark
}

// Listener is called with the effective theme whenever it changes.
type Listener func(Theme)

// Manager owns the persisted preference and any active override.
type Manager struct {
	mu        sync.Mutex
	kv        persist.KV
	key       string
	pref      Theme
	forced    int // active ForceLight overrides
	logger    *slog.Logger
	listeners []Listener
}

// NewManager loads the preference stored under key. A missing or invalid
// stored value falls back to fallback.
func NewManager(kv persist.KV, key string, fallback Theme, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if _, err := Parse(string(fallback)); err != nil {
		fallback = Light
	}

	m := &Manager{kv: kv, key: key, pref: fallback, logger: logger}
	raw, ok, err := kv.Get(key)
	switch {
	case err != nil:
		logger.Warn("reading theme preference failed", "key", key, "error", err)
	case ok:
		if t, perr := Parse(raw); perr == nil {
			m.pref = t
		} else {
			logger.Warn("stored theme is invalid, using default", "value", raw, "default", string(fallback))
		}
	}
	return m
}

// OnChange registers a listener for effective theme changes.
func (m *Manager) OnChange(l Listener) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listeners = append(m.listeners, l)
}

// Preference returns the persisted preference.
func (m *Manager) Preference() Theme {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pref
}

// Effective returns the theme currently in force, taking overrides into
// account.
func (m *Manager) Effective() Theme {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.effectiveLocked()
}

func (m *Manager) effectiveLocked() Theme {
	if m.forced > 0 {
		return Light
	}
	return m.pref
}

// Set stores a new preference. A failed write is logged and the preference
// still applies for this process.
func (m *Manager) Set(t Theme) error {
	if _, err := Parse(string(t)); err != nil {
		return err
	}

	m.mu.Lock()
	before := m.effectiveLocked()
	m.pref = t
	after := m.effectiveLocked()
	m.mu.Unlock()

	if err := m.kv.Set(m.key, string(t)); err != nil {
		m.logger.Warn("saving theme preference failed", "key", m.key, "error", err)
	}
	if before != after {
		m.notify(after)
	}
	return nil
}

// Toggle switches the preference and returns the new value.
func (m *Manager) Toggle() Theme {
	next := m.Preference().Opposite()
	_ = m.Set(next)
	return next
}

// ForceLight forces the light theme until the returned restore function is
// called. Restore is idempotent. Overrides nest.
func (m *Manager) ForceLight() (restore func()) {
	m.mu.Lock()
	before := m.effectiveLocked()
	m.forced++
	m.mu.Unlock()
	if before != Light {
		m.notify(Light)
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			m.mu.Lock()
			m.forced--
			after := m.effectiveLocked()
			m.mu.Unlock()
			if after != Light {
				m.notify(after)
			}
		})
	}
}

// Forced reports whether an override is active.
func (m *Manager) Forced() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.forced > 0
}

func (m *Manager) notify(t Theme) {
	m.mu.Lock()
	listeners := make([]Listener, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.Unlock()

	for _, l := range listeners {
		l(t)
	}
}
