// Package theme holds the color theme registry and the persisted theme
// preference, a sibling key of the note collection in the same storage area.
package theme

import (
	"log/slog"
	"sort"
	"strconv"
	"sync"

	"github.com/notekeep/notekeep/internal/apperr"
	"github.com/notekeep/notekeep/internal/storage"
)

// DefaultID is the theme used when no preference is stored.
const DefaultID = "blue"

// Theme is an opaque color palette; the server only stores and serves it.
type Theme struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Bg1     string `json:"bg1"`
	Bg2     string `json:"bg2"`
	Accent  string `json:"accent"`
	Accent2 string `json:"accent2"`
}

var registry = map[string]Theme{
	"blue":   {ID: "blue", Name: "Sky Blue", Bg1: "#071027", Bg2: "#0f172a", Accent: "#38bdf8", Accent2: "#60a5fa"},
	"purple": {ID: "purple", Name: "Purple Dream", Bg1: "#1a0035", Bg2: "#3b0764", Accent: "#a855f7", Accent2: "#c084fc"},
	"green":  {ID: "green", Name: "Emerald", Bg1: "#022c22", Bg2: "#064e3b", Accent: "#10b981", Accent2: "#34d399"},
	"orange": {ID: "orange", Name: "Sunset Orange", Bg1: "#3b0a0a", Bg2: "#7c2d12", Accent: "#f97316", Accent2: "#fbbf24"},
	"rose":   {ID: "rose", Name: "Rose", Bg1: "#2e0b16", Bg2: "#4a0515", Accent: "#e11d48", Accent2: "#fb7185"},
	"amber":  {ID: "amber", Name: "Amber Gold", Bg1: "#291800", Bg2: "#422006", Accent: "#f59e0b", Accent2: "#fbbf24"},
	"pink":   {ID: "pink", Name: "Pink Glow", Bg1: "#2d0b26", Bg2: "#4b164c", Accent: "#ec4899", Accent2: "#f472b6"},
	"gray":   {ID: "gray", Name: "Steel Gray", Bg1: "#0f172a", Bg2: "#1e293b", Accent: "#94a3b8", Accent2: "#cbd5e1"},
	"white":  {ID: "white", Name: "White", Bg1: "#ffffff", Bg2: "#f8fafc", Accent: "#2563eb", Accent2: "#60a5fa"},
}

// accents is the per-note accent palette for AccentForID.
var accents = []string{"#06b6d4", "#60a5fa", "#34d399", "#f59e0b", "#f97316", "#a78bfa", "#fb7185"}

// List returns every registered theme sorted by id.
func List() []Theme {
	out := make([]Theme, 0, len(registry))
	for _, t := range registry {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Known reports whether id names a registered theme.
func Known(id string) bool {
	_, ok := registry[id]
	return ok
}

// AccentForID returns the deterministic accent color for a note id,
// derived from the digit sum of its decimal representation.
func AccentForID(id int64) string {
	sum := 0
	for _, c := range strconv.FormatInt(id, 10) {
		sum += int(c)
	}
	return accents[sum%len(accents)]
}

// Manager owns the persisted theme preference.
type Manager struct {
	provider storage.Provider
	logger   *slog.Logger

	mu      sync.Mutex
	current string
}

// NewManager loads the stored preference. A stored value wins over
// fallbackID; missing or unknown values fall back to fallbackID, and an
// empty or unknown fallbackID falls back to DefaultID.
func NewManager(p storage.Provider, logger *slog.Logger, fallbackID string) *Manager {
	if _, ok := registry[fallbackID]; !ok {
		fallbackID = DefaultID
	}
	m := &Manager{provider: p, logger: logger, current: fallbackID}

	data, err := p.Read(storage.KeyTheme)
	if err != nil {
		return m
	}
	id := string(data)
	if _, ok := registry[id]; !ok {
		logger.Warn("theme: stored preference unknown, using default",
			slog.String("stored", id), slog.String("default", fallbackID))
		return m
	}
	m.current = id
	return m
}

// Current returns the active theme.
func (m *Manager) Current() Theme {
	m.mu.Lock()
	defer m.mu.Unlock()
	return registry[m.current]
}

// Set switches the active theme and persists the preference.
func (m *Manager) Set(id string) (Theme, error) {
	t, ok := registry[id]
	if !ok {
		return Theme{}, apperr.ErrUnknownTheme
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.current = id
	if err := m.provider.Write(storage.KeyTheme, []byte(id)); err != nil {
		m.logger.Error("theme: persist failed", slog.String("error", err.Error()))
		return t, err
	}
	return t, nil
}
